package entity

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for domain layer operations.
var (
	// ErrValidationFailed indicates that validation checks have failed
	ErrValidationFailed = errors.New("validation failed")
)

// ValidationError represents a validation error with detailed field information.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap lets callers match any validation error with errors.Is(err, ErrValidationFailed).
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// FetchError is the typed failure returned when a feed cannot be retrieved.
// It is produced by the fetcher and classified by the dispatch engine.
type FetchError struct {
	URL string
	// StatusCode is the HTTP status when the server answered, 0 otherwise.
	StatusCode int
	// Timeout is set when the transport gave up waiting.
	Timeout bool
	// Hint is an optional diagnostic for operators (known proxy failures).
	Hint string
	Err  error
}

func (e *FetchError) Error() string {
	var msg string
	switch {
	case e.StatusCode != 0:
		msg = fmt.Sprintf("fetch %s: HTTP %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	case e.Timeout:
		msg = fmt.Sprintf("fetch %s: timed out", e.URL)
	default:
		msg = fmt.Sprintf("fetch %s", e.URL)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
