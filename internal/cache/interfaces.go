// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cache

import (
	"context"
	"time"

	"github.com/MKhiriev/tally-sync/models"
)

// Persister is the durable tier behind a [Cache]. The sqlite cache-entry
// repository implements it.
type Persister interface {
	SaveEntry(ctx context.Context, entry models.PersistedEntry) error
	LoadEntry(ctx context.Context, domain string) (models.PersistedEntry, bool, error)
	DeleteEntry(ctx context.Context, domain string) error
}

// Domain is the type-independent view of a cache used by the coordinator
// and the debug surface.
type Domain interface {
	Name() string
	NeedsRefresh() bool
	Invalidate(ctx context.Context)
	Load(ctx context.Context) error
	Status() Status
}

// Status is a point-in-time description of a cache.
type Status struct {
	Domain        string        `json:"domain"`
	Present       bool          `json:"present"`
	Stale         bool          `json:"stale"`
	Age           time.Duration `json:"age"`
	TTL           time.Duration `json:"ttl"`
	FormatVersion int           `json:"format_version"`
	LastUpdated   *time.Time    `json:"last_updated,omitempty"`
}
