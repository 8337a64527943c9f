package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/MikhailRaia/url-submitter/internal/logger"
	"github.com/MikhailRaia/url-submitter/internal/model"
	"github.com/MikhailRaia/url-submitter/internal/widget"
)

type Submitter interface {
	Submit(ctx context.Context, rawURL string) (*model.SubmissionResult, error)
	InFlight() bool
}

type Notifications interface {
	Active() []model.Notification
	Dismiss(id string) bool
}

type Handler struct {
	submitter     Submitter
	notifications Notifications
}

func NewHandler(submitter Submitter, notifications Notifications) *Handler {
	return &Handler{
		submitter:     submitter,
		notifications: notifications,
	}
}

func (h *Handler) RegisterRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Use(logger.RequestLogger)

	r.Use(chimiddleware.Compress(5, "text/html", "application/json"))

	r.Get("/", h.handlePage)
	r.Post("/", h.handleSubmit)
	r.Get("/notifications", h.handleNotifications)
	r.Delete("/notifications/{id}", h.handleDismiss)

	return r
}

// handleSubmit consumes the form post itself so the browser never leaves the
// page: the outcome shows up as a notification after the redirect back.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	rawURL := r.PostForm.Get("url")
	result, err := h.submitter.Submit(r.Context(), rawURL)

	if !wantsJSON(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	switch {
	case errors.Is(err, widget.ErrSubmissionPending), errors.Is(err, widget.ErrSuperseded):
		writeJSON(w, http.StatusConflict, model.SubmissionResult{Error: err.Error()})
	case result == nil:
		if err != nil {
			log.Debug().Err(err).Msg("Submission ended without a result")
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	case !result.OK:
		writeJSON(w, http.StatusBadGateway, result)
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

func (h *Handler) handleNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.notifications.Active())
}

func (h *Handler) handleDismiss(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.notifications.Dismiss(id) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	response, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}
