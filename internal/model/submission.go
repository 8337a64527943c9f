package model

import "time"

// SubmissionRequest is the single form value sent to the queue endpoint.
type SubmissionRequest struct {
	URL string `json:"url"`
}

// SubmissionResult is the outcome of one submission as seen by the client.
// On success URL holds the value echoed by the server, which may differ from
// the submitted one.
type SubmissionResult struct {
	OK         bool          `json:"ok"`
	URL        string        `json:"url,omitempty"`
	Error      string        `json:"error,omitempty"`
	StatusCode int           `json:"status_code,omitempty"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
}

// AddURLResponse is the JSON body returned by the queue endpoint.
type AddURLResponse struct {
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}
