// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"

	"github.com/MKhiriev/tally-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// CacheEntryRepository stores one serialized payload per cache domain.
type CacheEntryRepository interface {
	SaveEntry(ctx context.Context, entry models.PersistedEntry) error
	LoadEntry(ctx context.Context, domain string) (models.PersistedEntry, bool, error)
	DeleteEntry(ctx context.Context, domain string) error
	DeleteAll(ctx context.Context) error
}

// BlobStore keeps one file per image key.
type BlobStore interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
