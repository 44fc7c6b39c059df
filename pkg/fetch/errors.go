package fetch

import (
	"errors"
	"fmt"
)

// Common errors returned by the fetcher.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrNotFound indicates a 404 response.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates a 401 or 403 response.
	ErrUnauthorized = errors.New("Authentication/Authorization failed")
)

// StatusError represents a non-2xx HTTP response classified for callers.
type StatusError struct {
	StatusCode int
	URL        string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	switch e.StatusCode {
	case 404:
		return fmt.Sprintf("resource not found (status 404): %s", e.URL)
	case 401, 403:
		return fmt.Sprintf("Authentication/Authorization failed (status %d): %s", e.StatusCode, e.URL)
	default:
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
	}
}

// Unwrap maps the status onto a sentinel so callers can branch with
// errors.Is, e.g. treating not-found as a non-fatal outcome.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case 404:
		return ErrNotFound
	case 401, 403:
		return ErrUnauthorized
	default:
		return nil
	}
}

// NewStatusError classifies a non-2xx status code.
func NewStatusError(statusCode int, url string) *StatusError {
	return &StatusError{StatusCode: statusCode, URL: url}
}
