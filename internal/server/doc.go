// Package server runs the debug HTTP listener.
//
// It owns the listener lifecycle: startup, stop-signal handling and
// graceful shutdown.
package server
