package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/ironabhi05/scatch-backend/pkg/errors"
	"github.com/ironabhi05/scatch-backend/pkg/logger"
	"github.com/ironabhi05/scatch-backend/pkg/validator"
)

// ErrorBody is the JSON error envelope: {message, error?}. The error field
// carries machine-readable detail for 4xx responses and is omitted for 500s,
// which stay opaque to the caller.
type ErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// Headers are already sent if encoding fails, so the error is swallowed.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes a bare {message} response.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorBody{Message: message})
}

// WriteError writes the {message, error?} envelope for the given error.
// AppError values map to their own status and message; bare sentinel errors
// map through apperrors.HTTPStatus. Internal errors are logged with full
// detail and surfaced as an opaque 500. The request-scoped logger from
// context (set by the RequestLogger middleware) is preferred over fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status == http.StatusInternalServerError {
			l.ErrorContext(r.Context(), "internal error",
				slog.String("error", appErr.Error()),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			WriteJSON(w, http.StatusInternalServerError, ErrorBody{Message: "Something went wrong"})
			return
		}
		WriteJSON(w, appErr.Status, ErrorBody{Message: appErr.Message, Error: appErr.Code})
		return
	}

	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		WriteJSON(w, http.StatusInternalServerError, ErrorBody{Message: "Something went wrong"})
		return
	}

	WriteJSON(w, status, ErrorBody{Message: err.Error()})
}

// WriteValidationError writes a 400 {message, error} response for a request
// body that failed schema validation at the boundary.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, ErrorBody{
			Message: "request validation failed",
			Error:   valErr.Error(),
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, ErrorBody{Message: err.Error()})
}

// ParseUUID validates that the given string is a valid UUID and returns it.
// If invalid, it writes a 400 response and returns false, signaling the
// caller to return early.
func ParseUUID(w http.ResponseWriter, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(param)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, ErrorBody{Message: "invalid id: " + param})
		return uuid.Nil, false
	}
	return id, true
}
