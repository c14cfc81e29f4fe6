// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/tally-sync/internal/logger"
	"github.com/MKhiriev/tally-sync/models"
)

// cacheEntryRepository is the sqlite-backed implementation of
// [CacheEntryRepository]. Each cache domain owns one row of the
// "cache_entries" table.
type cacheEntryRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewCacheEntryRepository constructs a [CacheEntryRepository] on db.
func NewCacheEntryRepository(db *DB, logger *logger.Logger) CacheEntryRepository {
	logger.Debug().Msg("creating cache entry repository")
	return &cacheEntryRepository{
		db:     db,
		logger: logger,
	}
}

// SaveEntry inserts or replaces the row of entry.Domain.
func (r *cacheEntryRepository) SaveEntry(ctx context.Context, entry models.PersistedEntry) error {
	if entry.Domain == "" {
		return ErrEmptyDomain
	}

	query, args, err := buildUpsertEntryQuery(entry)
	if err != nil {
		r.logger.Err(err).Str("func", "*cacheEntryRepository.SaveEntry").Str("domain", entry.Domain).Msg("error building upsert query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).Str("func", "*cacheEntryRepository.SaveEntry").Str("domain", entry.Domain).Msg("error saving cache entry")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// LoadEntry returns the row of domain. found is false when there is none.
func (r *cacheEntryRepository) LoadEntry(ctx context.Context, domain string) (models.PersistedEntry, bool, error) {
	query, args, err := buildSelectEntryQuery(domain)
	if err != nil {
		return models.PersistedEntry{}, false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var (
		version   int
		updatedAt int64
		payload   []byte
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&version, &updatedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PersistedEntry{}, false, nil
	}
	if err != nil {
		r.logger.Err(err).Str("func", "*cacheEntryRepository.LoadEntry").Str("domain", domain).Msg("error loading cache entry")
		return models.PersistedEntry{}, false, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return models.PersistedEntry{
		Domain:        domain,
		FormatVersion: version,
		UpdatedAt:     time.Unix(0, updatedAt).UTC(),
		Payload:       payload,
	}, true, nil
}

// DeleteEntry removes the row of domain. Deleting a missing row is not an
// error.
func (r *cacheEntryRepository) DeleteEntry(ctx context.Context, domain string) error {
	query, args, err := buildDeleteEntryQuery(domain)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).Str("func", "*cacheEntryRepository.DeleteEntry").Str("domain", domain).Msg("error deleting cache entry")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// DeleteAll wipes every persisted domain.
func (r *cacheEntryRepository) DeleteAll(ctx context.Context) error {
	query, args, err := buildDeleteAllEntriesQuery()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).Str("func", "*cacheEntryRepository.DeleteAll").Msg("error wiping cache entries")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}
