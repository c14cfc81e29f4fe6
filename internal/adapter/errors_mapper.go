package adapter

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}

	serverErr := &ServerError{StatusCode: resp.StatusCode(), Message: body}

	switch resp.StatusCode() {
	case http.StatusBadRequest:
		serverErr.kind = ErrBadRequest
	case http.StatusUnauthorized:
		serverErr.kind = ErrUnauthorized
	case http.StatusForbidden:
		serverErr.kind = ErrForbidden
	case http.StatusNotFound:
		serverErr.kind = ErrNotFound
	case http.StatusBadGateway:
		serverErr.kind = ErrBadGateway
	case http.StatusInternalServerError:
		serverErr.kind = ErrInternalServerError
	}

	return serverErr
}

// mapTransportError wraps a failure that produced no response at all.
func mapTransportError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrNetwork, err)
}
