// Package httputil writes JSON responses and maps domain errors to HTTP status.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "regform/pkg/domain-errors"
)

// InternalErrorMessage is the only text a caller ever sees for a server-side failure.
const InternalErrorMessage = "Database error occurred"

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON encodes body as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError maps err to a status and writes {"error": "..."}.
// Client-correctable failures carry their message; anything else is reported
// with InternalErrorMessage so causes never leak.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	msg := InternalErrorMessage
	if status < http.StatusInternalServerError {
		if de, ok := dErrors.As(err); ok {
			msg = de.Message
		}
	}
	WriteJSON(w, status, ErrorResponse{Error: msg})
}

// StatusFor returns the HTTP status for a domain error. The registration API
// reports every client-correctable failure, duplicates included, as 400.
func StatusFor(err error) int {
	de, ok := dErrors.As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch de.Code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeConflict:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeUnavailable, dErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
