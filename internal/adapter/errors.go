package adapter

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork wraps timeouts and connectivity failures.
	ErrNetwork = errors.New("network error")

	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")

	// ErrEmptyBody is returned when a download succeeds with no content.
	ErrEmptyBody = errors.New("empty response body")

	// ErrMalformedResponse is returned when a body cannot be decoded at all.
	ErrMalformedResponse = errors.New("malformed response")
)

// ServerError is a non-2xx response. It unwraps to the matching sentinel
// (ErrNotFound, ErrUnauthorized, ...) when there is one.
type ServerError struct {
	StatusCode int
	Message    string

	kind error
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error %d", e.StatusCode)
	}
	return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
}

func (e *ServerError) Unwrap() error {
	return e.kind
}
