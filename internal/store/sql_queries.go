// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/tally-sync/models"
)

const cacheEntriesTable = "cache_entries"

// psql builds sqlite statements with "?" placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func buildUpsertEntryQuery(entry models.PersistedEntry) (string, []any, error) {
	return psql.
		Insert(cacheEntriesTable).
		Columns("domain", "format_version", "updated_at", "payload").
		Values(entry.Domain, entry.FormatVersion, entry.UpdatedAt.UTC().UnixNano(), entry.Payload).
		Suffix("ON CONFLICT(domain) DO UPDATE SET " +
			"format_version = excluded.format_version, " +
			"updated_at = excluded.updated_at, " +
			"payload = excluded.payload").
		ToSql()
}

func buildSelectEntryQuery(domain string) (string, []any, error) {
	return psql.
		Select("format_version", "updated_at", "payload").
		From(cacheEntriesTable).
		Where(sq.Eq{"domain": domain}).
		ToSql()
}

func buildDeleteEntryQuery(domain string) (string, []any, error) {
	return psql.
		Delete(cacheEntriesTable).
		Where(sq.Eq{"domain": domain}).
		ToSql()
}

func buildDeleteAllEntriesQuery() (string, []any, error) {
	return psql.Delete(cacheEntriesTable).ToSql()
}
