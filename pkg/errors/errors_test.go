package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorUnwrap(t *testing.T) {
	err := New(ErrNotReady, http.StatusServiceUnavailable, "index still building")
	if !errors.Is(err, ErrNotReady) {
		t.Error("AppError does not unwrap to its sentinel")
	}
	if got := err.Error(); got != "index not ready: index still building" {
		t.Errorf("Error() = %q", got)
	}
}

func TestNewf(t *testing.T) {
	err := Newf(ErrInvalidInput, http.StatusBadRequest, "limit %d out of range", 9999)
	if err.Message != "limit 9999 out of range" {
		t.Errorf("Message = %q", err.Message)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("Newf result does not unwrap to its sentinel")
	}
}

func TestHTTPStatusCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"not ready", ErrNotReady, http.StatusServiceUnavailable},
		{"timeout", ErrTimeout, http.StatusServiceUnavailable},
		{"internal", ErrInternal, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped sentinel", fmt.Errorf("search: %w", ErrNotReady), http.StatusServiceUnavailable},
		{"app error wins", New(ErrInternal, http.StatusTeapot, "odd"), http.StatusTeapot},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HTTPStatusCode(tc.err); got != tc.want {
				t.Errorf("HTTPStatusCode = %d, want %d", got, tc.want)
			}
		})
	}
}
