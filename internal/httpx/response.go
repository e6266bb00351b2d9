// Package httpx writes JSON bodies and maps domain errors to HTTP status
// codes for handlers and middleware alike.
package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/ordertrack/internal/domain"
	"github.com/aryan0dhankhar/ordertrack/internal/observability/requestid"
)

// ErrorBody is the shape of every error response
type ErrorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// MessageBody is returned by endpoints that only confirm an action
type MessageBody struct {
	Message string `json:"message"`
}

// JSON writes v with the given status
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// Message writes {"message": msg}
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, MessageBody{Message: msg})
}

// StatusFor maps an error kind to its HTTP status. Conflicts are reported
// as 400 to match the existing client.
func StatusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation, domain.KindConflict:
		return http.StatusBadRequest
	case domain.KindAuthentication:
		return http.StatusUnauthorized
	case domain.KindAuthorization:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as an ErrorBody. Unclassified and internal errors are
// logged with their cause and reach the client only as a generic message.
func Error(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	de, ok := domain.AsError(err)
	if !ok || de.Kind == domain.KindInternal {
		if log == nil {
			log = slog.Default()
		}
		log.ErrorContext(r.Context(), "request failed",
			slog.String("request_id", requestid.FromContext(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		JSON(w, http.StatusInternalServerError, ErrorBody{Message: "Internal server error"})
		return
	}

	body := ErrorBody{Message: de.Message}
	if de.Kind == domain.KindValidation && len(de.Fields) > 0 {
		body.Errors = de.Fields
	}
	JSON(w, StatusFor(de.Kind), body)
}
