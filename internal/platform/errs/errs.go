// Package errs defines the error categories shared across domain services so
// handlers can map failures to HTTP responses without inspecting error text.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound signals that the requested record does not exist or is not
	// visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrForbidden signals that the caller's role does not permit the
	// operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidReference signals that a submitted payload names a record
	// (user, code, diagnosis) that does not exist or belongs elsewhere.
	ErrInvalidReference = errors.New("invalid reference")
)

// NotFound wraps ErrNotFound with a description of the missing record.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}

// Forbidden wraps ErrForbidden with a description of the denied operation.
func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrForbidden}, args...)...)
}

// InvalidReference wraps ErrInvalidReference with the offending reference.
func InvalidReference(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidReference}, args...)...)
}

// HTTPStatus returns the response code for an error produced by a domain
// service. Unrecognized errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidReference):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
