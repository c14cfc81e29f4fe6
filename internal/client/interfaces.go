// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "context"

// Client defines the minimal lifecycle contract for runnable client
// applications.
type Client interface {
	// Run starts the client application and blocks until ctx is done or a
	// stop signal arrives.
	Run(ctx context.Context) error
}

// Session is the part of a session the runtime drives. *service.Session
// implements it.
type Session interface {
	Load(ctx context.Context) error
	Refresh(ctx context.Context, force bool) (bool, error)
	Start(ctx context.Context) error
	Close(ctx context.Context) error
}
