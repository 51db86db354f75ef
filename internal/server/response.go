package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/desertthunder/coursetube/internal/shared"
)

type errorBody struct {
	Error string `json:"error"`
}

type successBody struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// StatusFor maps a domain error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, shared.ErrNotFound),
		errors.Is(err, shared.ErrCourseNotFound),
		errors.Is(err, shared.ErrItemNotFound),
		errors.Is(err, shared.ErrNoteNotFound),
		errors.Is(err, shared.ErrPlaylistNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrAPIRequest):
		return http.StatusBadGateway
	case errors.Is(err, shared.ErrMissingCredentials),
		errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError hides the message of unclassified errors.
func writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal server error"
	}
	writeJSON(w, status, errorBody{Error: msg})
}
