package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/tally-sync/internal/adapter"
	"github.com/MKhiriev/tally-sync/internal/app"
	"github.com/MKhiriev/tally-sync/internal/service"
)

type errorResponse struct {
	status  int
	message string
}

// errorResponses is checked in order: the session errors wrap adapter
// errors, so they must match first.
var errorResponses = []struct {
	target error
	errorResponse
}{
	{service.ErrSessionClosed, errorResponse{http.StatusServiceUnavailable, app.MsgSessionClosed}},
	{service.ErrSessionExpired, errorResponse{http.StatusUnauthorized, app.MsgSessionExpired}},
	{service.ErrTokenIsExpired, errorResponse{http.StatusUnauthorized, app.MsgSessionExpired}},
	{service.ErrNoToken, errorResponse{http.StatusUnauthorized, app.MsgNoToken}},
	{service.ErrUnknownDomain, errorResponse{http.StatusNotFound, app.MsgUnknownDomain}},

	{adapter.ErrNetwork, errorResponse{http.StatusBadGateway, app.MsgBackendUnavailable}},
	{adapter.ErrInternalServerError, errorResponse{http.StatusBadGateway, app.MsgBackendUnavailable}},
	{adapter.ErrBadGateway, errorResponse{http.StatusBadGateway, app.MsgBackendUnavailable}},
	{adapter.ErrMalformedResponse, errorResponse{http.StatusBadGateway, app.MsgBackendUnavailable}},
}

func responseFromError(err error) errorResponse {
	for _, r := range errorResponses {
		if errors.Is(err, r.target) {
			return r.errorResponse
		}
	}
	return errorResponse{http.StatusInternalServerError, app.MsgInternalServerError}
}
