// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"
	"time"

	"github.com/MKhiriev/tally-sync/internal/cache"
	"github.com/MKhiriev/tally-sync/internal/service"
)

// SyncService is the part of a session the debug surface reads and drives.
// *service.Session implements it.
type SyncService interface {
	State() service.State
	LastError() error
	LastSync() time.Time
	Statuses() []cache.Status
	Refresh(ctx context.Context, force bool) (bool, error)
	ScheduleRefresh(ctx context.Context, domain string, force bool) (bool, error)
}

var _ SyncService = (*service.Session)(nil)
