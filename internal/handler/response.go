package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// CONSISTENT ERROR FORMAT:
// Every failed API call answers with the same one-field shape:
//
//	{"error": "Passwords do not match"}
//
// The frontend displays that string verbatim, so the messages here are
// user-facing copy, not debug output.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mahirfaisal/locallynk/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status code must be set BEFORE writing the body. Once
// json.Encode calls w.Write, the headers are sent and any later changes are
// silently ignored. Hence: Set header → WriteHeader → Encode.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent — all we can do is log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status and sends
// the documented {"error": ...} body.
//
// ERROR MAPPING:
// The service layer returns apperror values; this is the single place they
// become HTTP. Validation failures, duplicate emails, and bad credentials
// are all client errors (400) with their human-readable message passed
// through. Everything unexpected becomes a generic 500 — raw internal
// errors (SQL text, file paths) must never reach the client.
//
// errors.Is/As UNWRAPPING:
// The service wraps repository errors with fmt.Errorf("...: %w", err), so
// we walk the chain: errors.As extracts the *AppError for its message,
// errors.Is classifies it by sentinel.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError

		switch {
		case errors.Is(err, apperror.ErrValidation),
			errors.Is(err, apperror.ErrConflict),
			errors.Is(err, apperror.ErrInvalidCredentials):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		}

		if status != http.StatusInternalServerError {
			writeJSON(w, status, ErrorResponse{Error: appErr.Message})
			return
		}
	}

	// Unknown error — generic 500, details stay in the server log.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Server error"})
}
