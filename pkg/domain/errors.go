package domain

import (
	"errors"
	"net/http"
)

// Common domain errors. Handlers translate these into HTTP statuses via
// HTTPStatus; everything not in this list maps to 500.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrUpstream        = errors.New("upstream service failure")
	ErrNotImplemented  = errors.New("not implemented")
)

// HTTPStatus maps a domain error to its HTTP status code.
// Unrecognized errors are treated as internal failures.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, ErrNotImplemented):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse defines the standard JSON error model returned by all routes.
// Callers see a single message string, never internals or stack traces.
type ErrorResponse struct {
	Error string `json:"error"`
}

// IsUpstream reports whether the error indicates a dependency failure
// rather than a caller mistake.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}
