// Package client talks to the remote queue endpoint that accepts submitted URLs.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MikhailRaia/url-submitter/internal/model"
)

// DefaultEndpoint is the path the queue endpoint is served on.
const DefaultEndpoint = "/add_url"

var (
	// ErrTransport is returned when no HTTP response was received.
	ErrTransport = errors.New("queue endpoint unreachable")
	// ErrDecode is returned when the response body is not the expected JSON.
	ErrDecode = errors.New("malformed queue response")
)

type Config struct {
	BaseURL  string
	Endpoint string
	Timeout  time.Duration
}

// QueueClient posts URLs to the queue endpoint. Requests are never retried.
type QueueClient struct {
	http     *resty.Client
	endpoint string
	target   string
}

// NewQueueClient builds a client for the endpoint described by cfg.
func NewQueueClient(cfg Config) *QueueClient {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	httpClient := resty.New().
		SetRetryCount(0).
		SetLogger(restyLogger{}).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout)
	}

	return &QueueClient{
		http:     httpClient,
		endpoint: endpoint,
		target:   strings.TrimRight(cfg.BaseURL, "/") + endpoint,
	}
}

// AddURL submits rawURL as-is in a form-encoded POST. A non-2xx status is not
// an error: it is reported through the returned result. Errors are returned
// only when no usable response arrived, wrapped with ErrTransport or
// ErrDecode. On ErrDecode the result still carries the status code.
func (c *QueueClient) AddURL(ctx context.Context, rawURL string) (*model.SubmissionResult, error) {
	requestID := uuid.NewString()
	start := time.Now()

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetHeader("X-Request-Id", requestID).
		SetFormData(map[string]string{"url": rawURL}).
		Post(c.target)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	log.Debug().
		Str("requestID", requestID).
		Str("endpoint", c.endpoint).
		Int("status", res.StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("Queue endpoint responded")

	result := &model.SubmissionResult{
		OK:         res.IsSuccess(),
		StatusCode: res.StatusCode(),
	}
	if res.StatusCode() == http.StatusTooManyRequests {
		result.RetryAfter = parseRetryAfter(res.Header().Get("Retry-After"), time.Now())
	}

	var body model.AddURLResponse
	if err := json.Unmarshal(res.Body(), &body); err != nil {
		result.OK = false
		return result, fmt.Errorf("%w: status %d: %w", ErrDecode, res.StatusCode(), err)
	}

	if result.OK {
		result.URL = body.URL
	} else {
		result.Error = body.Error
	}

	return result, nil
}

// parseRetryAfter accepts both forms of the header: delay seconds or an HTTP date.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}

	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}

	return 0
}
