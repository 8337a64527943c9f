package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MikhailRaia/url-submitter/internal/client"
	"github.com/MikhailRaia/url-submitter/internal/config"
	"github.com/MikhailRaia/url-submitter/internal/handler"
	"github.com/MikhailRaia/url-submitter/internal/notify"
	"github.com/MikhailRaia/url-submitter/internal/widget"
)

type App struct {
	config        *config.Config
	notifications *notify.Manager
	widget        *widget.Widget
	handler       http.Handler
}

// NewApp wires the queue client, notification manager and widget. Extra
// listeners receive every notification transition in addition to the log.
func NewApp(cfg *config.Config, listeners ...notify.Listener) (*App, error) {
	policy, err := widget.ParsePolicy(cfg.SubmitPolicy)
	if err != nil {
		return nil, err
	}

	queueClient := client.NewQueueClient(client.Config{
		BaseURL:  cfg.ServerURL,
		Endpoint: cfg.EndpointPath,
		Timeout:  cfg.RequestTimeout,
	})

	notifications := notify.NewManager(cfg.NotificationTTL, append([]notify.Listener{notify.LogListener{}}, listeners...)...)
	submissionWidget := widget.New(queueClient, notifications, policy)

	return &App{
		config:        cfg,
		notifications: notifications,
		widget:        submissionWidget,
		handler:       handler.NewHandler(submissionWidget, notifications).RegisterRoutes(),
	}, nil
}

// Run serves the submission page until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.notifications.Close()

	srv := &http.Server{
		Addr:              a.config.ListenAddress,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("address", a.config.ListenAddress).
			Str("queue", a.config.ServerURL+a.config.EndpointPath).
			Str("policy", string(a.widget.Policy())).
			Msg("Starting submission page")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down submission page")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// SubmitAll submits each URL in order. Outcomes reach the user through the
// notification listeners. It returns an error if any submission failed or was
// refused.
func (a *App) SubmitAll(ctx context.Context, urls []string, out io.Writer) error {
	defer a.notifications.Close()

	failed := 0
	for _, rawURL := range urls {
		result, err := a.widget.Submit(ctx, rawURL)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			failed++
			continue
		}
		if !result.OK {
			failed++
			if result.RetryAfter > 0 {
				fmt.Fprintf(out, "retry after %s\n", result.RetryAfter)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d submissions failed", failed, len(urls))
	}
	return nil
}
