package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// TraceIDHeader carries a per-request id so client and server logs can be
// correlated.
const TraceIDHeader = "X-Trace-ID"

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly,
// while allowing extension with additional application-specific behavior.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient creates an HTTPClient with the given per-request timeout.
// Every request carries an X-Trace-ID header: the caller's own, the one
// stored in the request context by [WithTraceID], or a fresh one.
//
// Each call returns an independent client instance with its own
// configuration, connection pool, and state.
//
// Example usage:
//
//	client := utils.NewHTTPClient(30 * time.Second)
//	resp, err := client.R().Get("https://api.example.com/api/sync/delta")
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	ids := NewUUIDGenerator()

	c := resty.New().
		SetTimeout(timeout).
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			if r.Header.Get(TraceIDHeader) != "" {
				return nil
			}
			if traceID, ok := TraceIDFromContext(r.Context()); ok {
				r.SetHeader(TraceIDHeader, traceID)
				return nil
			}
			r.SetHeader(TraceIDHeader, ids.Generate())
			return nil
		})

	return &HTTPClient{Client: c}
}
