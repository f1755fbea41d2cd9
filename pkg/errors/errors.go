// Package errors defines the error taxonomy of the retrieval engine:
// sentinel errors for structural failures plus an AppError wrapper that
// carries an HTTP status for the search service.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmptyCorpus means an index build was attempted over zero documents.
	ErrEmptyCorpus = errors.New("corpus is empty")
	// ErrNotReady means a query was attempted before the engine reached the
	// Ready state.
	ErrNotReady = errors.New("index not ready")
	// ErrDeserialization means a persisted index blob is corrupt or carries
	// an unsupported format version. The caller must rebuild.
	ErrDeserialization = errors.New("index deserialization failed")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInternal        = errors.New("internal error")
	ErrTimeout         = errors.New("operation timed out")
)

// AppError pairs a sentinel error with a human-readable message and the HTTP
// status the search service should respond with.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New wraps a sentinel error into an AppError.
func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Newf is New with Printf-style message formatting.
func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps an error to the HTTP status the search service should
// return for it.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
