// Package http implements the local debug surface of the sync engine.
//
// It exposes the cache and sync state of the running session, a manual
// refresh trigger, the build version and the prometheus metrics. Request
// tracing, access logging and response compression are handled here as
// middleware.
package http
