// Package httpx provides JSON request decoding, response writing, and the
// translation of service errors into the wire error shape:
// {"message": "..."} or {"errors": [{"field": "...", "message": "..."}]}.
package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"shelfwise/internal/apperr"
)

type messageBody struct {
	Message string `json:"message"`
}

type fieldErrorBody struct {
	Errors []apperr.FieldError `json:"errors"`
}

// Respond writes v as JSON with the given status code.
func Respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// Error writes err as the structured JSON error body. Internal failures are
// logged with full detail and surface as a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Internal(err)
	}

	status := apperr.HTTPStatus(ae.Kind)
	if ae.Kind == apperr.KindInternal {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		Respond(w, status, messageBody{Message: "Something went wrong"})
		return
	}

	if ae.Kind == apperr.KindValidation && len(ae.Fields) > 0 {
		Respond(w, status, fieldErrorBody{Errors: ae.Fields})
		return
	}

	Respond(w, status, messageBody{Message: ae.Message})
}
