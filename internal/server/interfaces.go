package server

import "context"

// Server defines the lifecycle contract for the servers managed by this
// package.
type Server interface {
	// RunServer starts serving requests and blocks until ctx is done or a
	// stop signal arrives, then shuts down gracefully.
	RunServer(ctx context.Context) error

	// Shutdown gracefully stops the server and frees associated resources.
	Shutdown(ctx context.Context) error
}
