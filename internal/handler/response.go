package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError so the API has one
// success shape per route and one error shape overall:
//
//	{"error": "not_found", "message": "post not found with id 9"}
//	{"error": "validation_error", "message": "Invalid comment data",
//	 "errors": [{"field": "text", "rule": "required", "message": "text is required"}]}
//
// writeError is the only place where domain errors become status codes.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/photofeed/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string                    `json:"error"`   // Machine-readable error type (e.g., "not_found")
	Message string                    `json:"message"` // Human-readable description
	Errors  []apperror.FieldViolation `json:"errors,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must be set before the body is encoded.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent, all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP status and sends it.
//
// Validation errors become 400 with their field violations, not-found 404,
// forbidden 403 and conflict 409. Everything else is a 500 carrying
// fallback as the message; the raw error never reaches the client.
// It reports the status written so callers can decide whether to log.
func writeError(w http.ResponseWriter, err error, fallback string) int {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status, errorType := http.StatusInternalServerError, "internal_error"
		switch {
		case errors.Is(err, apperror.ErrValidation):
			status, errorType = http.StatusBadRequest, "validation_error"
		case errors.Is(err, apperror.ErrNotFound):
			status, errorType = http.StatusNotFound, "not_found"
		case errors.Is(err, apperror.ErrForbidden):
			status, errorType = http.StatusForbidden, "forbidden"
		case errors.Is(err, apperror.ErrConflict):
			status, errorType = http.StatusConflict, "conflict"
		}

		if status != http.StatusInternalServerError {
			writeJSON(w, status, ErrorResponse{
				Error:   errorType,
				Message: appErr.Message,
				Errors:  appErr.Details,
			})
			return status
		}
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: fallback,
	})
	return http.StatusInternalServerError
}
