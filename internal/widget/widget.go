// Package widget implements the URL submission flow: send one value to the
// queue endpoint and surface the outcome as a transient notification.
package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/MikhailRaia/url-submitter/internal/model"
)

// FallbackErrorMessage is shown when the server gives no usable error text.
const FallbackErrorMessage = "An unexpected error occurred."

var (
	// ErrSubmissionPending is returned by the reject policy while another
	// submission is in flight.
	ErrSubmissionPending = errors.New("a submission is already in flight")
	// ErrSuperseded is returned by the replace policy to a submission that a
	// newer one cancelled.
	ErrSuperseded = errors.New("submission superseded by a newer one")
)

// SuccessMessage formats the notification text for an accepted URL.
func SuccessMessage(url string) string {
	return fmt.Sprintf("Successfully added '%s' to the queue!", url)
}

// QueueClient sends a URL to the queue endpoint.
type QueueClient interface {
	AddURL(ctx context.Context, rawURL string) (*model.SubmissionResult, error)
}

// Notifier displays and removes notifications by identity.
type Notifier interface {
	Show(id, message string, color model.Color) model.Notification
	Dismiss(id string) bool
}

// Widget bridges a single input value to the queue endpoint.
type Widget struct {
	client   QueueClient
	notifier Notifier
	policy   Policy

	// slot is held for the duration of a request under the reject and queue
	// policies.
	slot chan struct{}

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

// New creates a Widget. An empty policy means PolicyReject.
func New(client QueueClient, notifier Notifier, policy Policy) *Widget {
	if policy == "" {
		policy = PolicyReject
	}

	return &Widget{
		client:   client,
		notifier: notifier,
		policy:   policy,
		slot:     make(chan struct{}, 1),
	}
}

// Policy returns the concurrency policy the widget was built with.
func (w *Widget) Policy() Policy {
	return w.policy
}

// InFlight reports whether a submission is currently waiting for the server.
func (w *Widget) InFlight() bool {
	if len(w.slot) > 0 {
		return true
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cancel != nil
}

// Submit sends rawURL exactly as given and shows the outcome. Non-2xx
// responses are reported through the result with a nil error. Transport and
// decode failures show the fallback error notification and are returned.
func (w *Widget) Submit(ctx context.Context, rawURL string) (*model.SubmissionResult, error) {
	switch w.policy {
	case PolicyReplace:
		return w.submitReplacing(ctx, rawURL)
	case PolicyQueue:
		select {
		case w.slot <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	default:
		select {
		case w.slot <- struct{}{}:
		default:
			log.Warn().Str("url", rawURL).Msg("Submission rejected, another one is in flight")
			return nil, ErrSubmissionPending
		}
	}
	defer func() { <-w.slot }()

	return w.submit(ctx, rawURL, nil)
}

func (w *Widget) submitReplacing(ctx context.Context, rawURL string) (*model.SubmissionResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.generation++
	current := w.generation
	w.cancel = cancel
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		if w.generation == current {
			w.cancel = nil
		}
		w.mu.Unlock()
	}()

	// The generation check and the notification happen under one lock, so a
	// newer submission either supersedes this one first or clears its
	// notification afterwards.
	publish := func(show func()) bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.generation != current {
			return false
		}
		show()
		return true
	}

	return w.submit(ctx, rawURL, publish)
}

func (w *Widget) submit(ctx context.Context, rawURL string, publish func(show func()) bool) (*model.SubmissionResult, error) {
	if publish == nil {
		publish = func(show func()) bool {
			show()
			return true
		}
	}

	w.notifier.Dismiss(model.SuccessPopupID)
	w.notifier.Dismiss(model.ErrorPopupID)

	result, err := w.client.AddURL(ctx, rawURL)

	if err != nil && errors.Is(err, context.Canceled) {
		if !publish(func() {}) {
			return nil, ErrSuperseded
		}
		return nil, err
	}

	if err != nil {
		if result == nil {
			result = &model.SubmissionResult{}
		}
		result.OK = false
		result.Error = FallbackErrorMessage

		if !publish(func() {
			w.notifier.Show(model.ErrorPopupID, FallbackErrorMessage, model.ColorError)
		}) {
			return nil, ErrSuperseded
		}

		log.Error().Err(err).Str("url", rawURL).Msg("Submission failed")
		return result, fmt.Errorf("submit %q: %w", rawURL, err)
	}

	if !result.OK {
		if result.Error == "" {
			result.Error = FallbackErrorMessage
		}

		if !publish(func() {
			w.notifier.Show(model.ErrorPopupID, result.Error, model.ColorError)
		}) {
			return nil, ErrSuperseded
		}

		log.Warn().
			Str("url", rawURL).
			Int("status", result.StatusCode).
			Str("error", result.Error).
			Dur("retryAfter", result.RetryAfter).
			Msg("Submission refused by queue endpoint")
		return result, nil
	}

	if !publish(func() {
		w.notifier.Show(model.SuccessPopupID, SuccessMessage(result.URL), model.ColorSuccess)
	}) {
		return nil, ErrSuperseded
	}

	log.Info().
		Str("url", rawURL).
		Str("queued", result.URL).
		Msg("URL added to the queue")
	return result, nil
}
