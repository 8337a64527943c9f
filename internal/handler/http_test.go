package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikhailRaia/url-submitter/internal/client"
	"github.com/MikhailRaia/url-submitter/internal/model"
	"github.com/MikhailRaia/url-submitter/internal/widget"
)

type mockSubmitter struct {
	submitFunc func(ctx context.Context, rawURL string) (*model.SubmissionResult, error)
	inFlight   bool
	submitted  []string
}

func (m *mockSubmitter) Submit(ctx context.Context, rawURL string) (*model.SubmissionResult, error) {
	m.submitted = append(m.submitted, rawURL)
	return m.submitFunc(ctx, rawURL)
}

func (m *mockSubmitter) InFlight() bool {
	return m.inFlight
}

type mockNotifications struct {
	active    []model.Notification
	dismissed []string
}

func (m *mockNotifications) Active() []model.Notification {
	if m.active == nil {
		return []model.Notification{}
	}
	return m.active
}

func (m *mockNotifications) Dismiss(id string) bool {
	for i, n := range m.active {
		if n.ID == id {
			m.active = append(m.active[:i], m.active[i+1:]...)
			m.dismissed = append(m.dismissed, id)
			return true
		}
	}
	return false
}

func postForm(t *testing.T, h http.Handler, value string, accept string) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{"url": {value}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandleSubmit_RedirectsBack(t *testing.T) {
	s := &mockSubmitter{submitFunc: func(context.Context, string) (*model.SubmissionResult, error) {
		return &model.SubmissionResult{OK: true, URL: "http://a.o"}, nil
	}}
	h := NewHandler(s, &mockNotifications{}).RegisterRoutes()

	rr := postForm(t, h, "  http://a.o/x ", "")

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.Equal(t, []string{"  http://a.o/x "}, s.submitted)
}

func TestHandleSubmit_JSON(t *testing.T) {
	tests := []struct {
		name       string
		result     *model.SubmissionResult
		err        error
		wantStatus int
		wantError  string
		wantURL    string
	}{
		{
			name:       "success",
			result:     &model.SubmissionResult{OK: true, URL: "https://example.com", StatusCode: 200},
			wantStatus: http.StatusOK,
			wantURL:    "https://example.com",
		},
		{
			name:       "refused",
			result:     &model.SubmissionResult{Error: "invalid url", StatusCode: 400},
			wantStatus: http.StatusBadGateway,
			wantError:  "invalid url",
		},
		{
			name:       "transport failure",
			result:     &model.SubmissionResult{Error: widget.FallbackErrorMessage},
			err:        fmt.Errorf("submit: %w", client.ErrTransport),
			wantStatus: http.StatusBadGateway,
			wantError:  widget.FallbackErrorMessage,
		},
		{
			name:       "pending",
			err:        widget.ErrSubmissionPending,
			wantStatus: http.StatusConflict,
			wantError:  widget.ErrSubmissionPending.Error(),
		},
		{
			name:       "superseded",
			err:        widget.ErrSuperseded,
			wantStatus: http.StatusConflict,
			wantError:  widget.ErrSuperseded.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &mockSubmitter{submitFunc: func(context.Context, string) (*model.SubmissionResult, error) {
				return tt.result, tt.err
			}}
			h := NewHandler(s, &mockNotifications{}).RegisterRoutes()

			rr := postForm(t, h, "https://example.com", "application/json")

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

			var body model.SubmissionResult
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body.Error)
			assert.Equal(t, tt.wantURL, body.URL)
		})
	}
}

func TestHandleSubmit_CanceledWithoutResult(t *testing.T) {
	s := &mockSubmitter{submitFunc: func(context.Context, string) (*model.SubmissionResult, error) {
		return nil, context.Canceled
	}}
	h := NewHandler(s, &mockNotifications{}).RegisterRoutes()

	rr := postForm(t, h, "http://a.o", "application/json")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestHandlePage(t *testing.T) {
	now := time.Now()
	n := &mockNotifications{active: []model.Notification{
		{ID: model.ErrorPopupID, Message: "invalid <url>", Color: model.ColorError, CreatedAt: now, ExpiresAt: now.Add(3 * time.Second)},
	}}
	s := &mockSubmitter{inFlight: true}
	h := NewHandler(s, n).RegisterRoutes()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()

	assert.Contains(t, body, `id="url-form"`)
	assert.Contains(t, body, `id="url"`)
	assert.Contains(t, body, `id="error-popup"`)
	assert.Contains(t, body, "invalid &lt;url&gt;")
	assert.Contains(t, body, "background-color: red")
	assert.Contains(t, body, " disabled>")
	assert.Contains(t, body, `http-equiv="refresh" content="3"`)
}

func TestHandlePage_Empty(t *testing.T) {
	h := NewHandler(&mockSubmitter{}, &mockNotifications{}).RegisterRoutes()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "popup")
	assert.NotContains(t, rr.Body.String(), "refresh")
	assert.NotContains(t, rr.Body.String(), "disabled")
}

func TestHandleNotifications(t *testing.T) {
	n := &mockNotifications{active: []model.Notification{
		{ID: model.SuccessPopupID, Token: "t1", Message: "ok", Color: model.ColorSuccess},
	}}
	h := NewHandler(&mockSubmitter{}, n).RegisterRoutes()

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var got []model.Notification
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, model.SuccessPopupID, got[0].ID)
	assert.Equal(t, model.ColorSuccess, got[0].Color)
}

func TestHandleNotifications_EmptyArray(t *testing.T) {
	h := NewHandler(&mockSubmitter{}, &mockNotifications{}).RegisterRoutes()

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "[]", rr.Body.String())
}

func TestHandleDismiss(t *testing.T) {
	n := &mockNotifications{active: []model.Notification{{ID: model.SuccessPopupID}}}
	h := NewHandler(&mockSubmitter{}, n).RegisterRoutes()

	req := httptest.NewRequest(http.MethodDelete, "/notifications/success-popup", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, []string{model.SuccessPopupID}, n.dismissed)

	req = httptest.NewRequest(http.MethodDelete, "/notifications/success-popup", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRefreshAfter(t *testing.T) {
	now := time.Now()

	assert.Equal(t, 0, refreshAfter(nil, now))
	assert.Equal(t, 3, refreshAfter([]model.Notification{{ExpiresAt: now.Add(2500 * time.Millisecond)}}, now))
	assert.Equal(t, 1, refreshAfter([]model.Notification{
		{ExpiresAt: now.Add(3 * time.Second)},
		{ExpiresAt: now.Add(-time.Second)},
	}, now))
}
