package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"guide_gateway/internal/domain"
)

// Envelope wraps every response body, success or failure.
type Envelope struct {
	Success   bool    `json:"success"`
	Message   *string `json:"message"`
	Data      any     `json:"data"`
	Timestamp string  `json:"timestamp"`
}

// ISO-8601 with milliseconds, always UTC.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

var now = time.Now

func NewEnvelope(status int, data any, message string) Envelope {
	e := Envelope{
		Success:   status >= 200 && status < 300,
		Data:      data,
		Timestamp: now().UTC().Format(timestampLayout),
	}
	if message != "" {
		e.Message = &message
	}
	return e
}

func writeEnvelope(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewEnvelope(status, data, message)); err != nil {
		log.Error().Err(err).Msg("write JSON envelope failed")
	}
}

// writeError renders err with data {} and a status derived from its kind.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)
	ev := log.Warn()
	if status >= 500 {
		ev = log.Error()
	}
	ev.Err(err).
		Int("status", status).
		Str("path", r.URL.Path).
		Str("request_id", chimw.GetReqID(r.Context())).
		Msg("request failed")
	writeEnvelope(w, status, struct{}{}, err.Error())
}

// StatusOf maps the error taxonomy onto HTTP: 400 for validation, the upstream
// status when one is known, 500 otherwise.
func StatusOf(err error) int {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	var ue *domain.UpstreamError
	if errors.As(err, &ue) && ue.Status >= 400 && ue.Status < 600 {
		return ue.Status
	}
	return http.StatusInternalServerError
}
