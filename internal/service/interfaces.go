// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"time"

	"github.com/MKhiriev/tally-sync/internal/cache"
	"github.com/MKhiriev/tally-sync/models"
)

// AuthProvider supplies the credentials of the signed-in user. Token
// issuance and renewal happen outside the engine.
type AuthProvider interface {
	// Token returns the bearer token for outbound calls.
	Token(ctx context.Context) (string, error)

	// UserID returns the id of the signed-in user.
	UserID(ctx context.Context) (string, error)
}

// SnapshotFetcher is the part of the server adapter the coordinator needs.
type SnapshotFetcher interface {
	FetchDeltaSnapshot(ctx context.Context, token string) (models.Snapshot, error)
}

// SyncCoordinator fetches delta snapshots and reconciles them with the
// domain caches.
type SyncCoordinator interface {
	// FetchSnapshot performs one delta fetch. Transport and server errors
	// are returned as is; single malformed keys are not errors.
	FetchSnapshot(ctx context.Context, token string) (models.Snapshot, error)

	// ApplySnapshot merges snap into every cache whose key the snapshot
	// carries. Either all merges commit or, when ctx is cancelled before
	// the commit starts, none do.
	ApplySnapshot(ctx context.Context, snap models.Snapshot) error

	// ScheduleRefresh fetches and applies a snapshot if domain needs a
	// refresh or force is set. The bool reports whether a fetch ran.
	ScheduleRefresh(ctx context.Context, domain string, force bool) (bool, error)

	// Refresh is ScheduleRefresh over all domains: it fetches when any
	// domain is stale.
	Refresh(ctx context.Context, force bool) (bool, error)

	// State returns the current fetch state.
	State() State

	// LastError returns the error of the last failed fetch, or nil.
	LastError() error

	// Statuses describes every domain cache.
	Statuses() []cache.Status

	// ResetVerifiedFlags clears the verified-today flags. It is the only
	// operation that downgrades a true flag.
	ResetVerifiedFlags(ctx context.Context) error
}

// Refresher is anything the periodic job can drive.
type Refresher interface {
	Refresh(ctx context.Context, force bool) (bool, error)
}

// SyncJob periodically refreshes stale caches.
type SyncJob interface {
	// Start launches the background refresh goroutine. It refreshes every
	// interval, defaulting to 5 minutes if interval is zero or negative. Any
	// previously running job is stopped before the new one begins.
	Start(ctx context.Context, interval time.Duration)

	// Stop signals the background goroutine to exit and blocks until it has
	// fully terminated.
	Stop()
}
