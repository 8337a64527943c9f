package handler

import (
	"html/template"
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MikhailRaia/url-submitter/internal/model"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Add URL</title>
{{- if .Refresh }}
<meta http-equiv="refresh" content="{{ .Refresh }}">
{{- end }}
</head>
<body>
<form id="url-form" method="post" action="/">
<label for="url">URL</label>
<input type="text" id="url" name="url">
<button type="submit"{{ if .Pending }} disabled{{ end }}>Add to queue</button>
</form>
{{- range .Notifications }}
<div id="{{ .ID }}" class="popup popup-{{ .Color }}" style="position: fixed; top: 50%; left: 50%; transform: translate(-50%, -50%); padding: 10px; background-color: {{ .Color.CSS }}; color: white; border-radius: 5px; z-index: 1000;">{{ .Message }}</div>
{{- end }}
</body>
</html>
`))

type pageData struct {
	Notifications []model.Notification
	Pending       bool
	Refresh       int
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	active := h.notifications.Active()

	data := pageData{
		Notifications: active,
		Pending:       h.submitter.InFlight(),
		Refresh:       refreshAfter(active, time.Now()),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("Failed to render submission page")
	}
}

// refreshAfter returns the number of whole seconds until the earliest
// notification expires, or 0 when nothing is shown.
func refreshAfter(active []model.Notification, now time.Time) int {
	if len(active) == 0 {
		return 0
	}

	earliest := active[0].ExpiresAt
	for _, n := range active[1:] {
		if n.ExpiresAt.Before(earliest) {
			earliest = n.ExpiresAt
		}
	}

	seconds := int(math.Ceil(earliest.Sub(now).Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}
