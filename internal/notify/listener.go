package notify

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/MikhailRaia/url-submitter/internal/model"
)

// LogListener writes every notification transition to the global logger.
type LogListener struct{}

func (LogListener) OnShow(n model.Notification) {
	log.Info().
		Str("id", n.ID).
		Str("token", n.Token).
		Str("color", string(n.Color)).
		Str("message", n.Message).
		Time("expiresAt", n.ExpiresAt).
		Msg("Notification shown")
}

func (LogListener) OnDismiss(n model.Notification, reason DismissReason) {
	log.Debug().
		Str("id", n.ID).
		Str("token", n.Token).
		Str("reason", string(reason)).
		Msg("Notification removed")
}

// WriterListener prints shown notifications as plain lines, e.g.
// "[success] Successfully added 'http://a.o' to the queue!".
type WriterListener struct {
	W io.Writer
}

func (l WriterListener) OnShow(n model.Notification) {
	fmt.Fprintf(l.W, "[%s] %s\n", n.Color, n.Message)
}

func (l WriterListener) OnDismiss(model.Notification, DismissReason) {}
