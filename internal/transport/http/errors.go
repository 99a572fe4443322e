package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"accounts/internal/domain"
	"accounts/internal/i18n"
)

type errorBody struct {
	Path             string            `json:"path"`
	Timestamp        int64             `json:"timestamp"`
	Message          string            `json:"message"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}

// errInternal is the fallback for errors outside the domain taxonomy; the
// underlying cause is logged, never sent to the client.
var errInternal = &domain.Error{Status: http.StatusInternalServerError, MessageKey: "INTERNAL_FAILURE"}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *domain.Error
	if !errors.As(err, &apiErr) {
		slog.Error("unhandled error", "path", r.URL.Path, "error", err)
		apiErr = errInternal
	}

	loc := i18n.FromContext(r.Context())
	body := errorBody{
		Path:      r.URL.Path,
		Timestamp: time.Now().UnixMilli(),
		Message:   loc.Resolve(apiErr.MessageKey),
	}
	if apiErr.Validation != nil {
		body.ValidationErrors = make(map[string]string, len(apiErr.Validation))
		for field, key := range apiErr.Validation {
			body.ValidationErrors[field] = loc.Resolve(key)
		}
	}

	writeJSON(w, apiErr.Status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

type messageBody struct {
	Message string `json:"message"`
}

func writeMessage(w http.ResponseWriter, r *http.Request, key string) {
	loc := i18n.FromContext(r.Context())
	writeJSON(w, http.StatusOK, messageBody{Message: loc.Resolve(key)})
}
