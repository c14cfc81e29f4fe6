// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/tally-sync/models"
)

func Test_buildUpsertEntryQuery(t *testing.T) {
	at := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	entry := models.PersistedEntry{Domain: "habits", FormatVersion: 2, UpdatedAt: at, Payload: []byte(`[]`)}

	query, args, err := buildUpsertEntryQuery(entry)
	require.NoError(t, err)

	q := strings.ToLower(query)
	assert.Contains(t, q, "insert into cache_entries")
	assert.Contains(t, q, "(domain,format_version,updated_at,payload)")
	assert.Contains(t, q, "on conflict(domain) do update set")
	assert.Contains(t, q, "payload = excluded.payload")

	// sqlite placeholders
	assert.Contains(t, query, "?")
	assert.NotContains(t, query, "$1")

	require.Len(t, args, 4)
	assert.Equal(t, "habits", args[0])
	assert.Equal(t, 2, args[1])
	assert.Equal(t, at.UnixNano(), args[2])
	assert.Equal(t, []byte(`[]`), args[3])
}

func Test_buildSelectEntryQuery(t *testing.T) {
	query, args, err := buildSelectEntryQuery("feed")
	require.NoError(t, err)

	assert.Equal(t, "SELECT format_version, updated_at, payload FROM cache_entries WHERE domain = ?", query)
	assert.Equal(t, []any{"feed"}, args)
}

func Test_buildDeleteQueries(t *testing.T) {
	query, args, err := buildDeleteEntryQuery("feed")
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM cache_entries WHERE domain = ?", query)
	assert.Equal(t, []any{"feed"}, args)

	query, args, err = buildDeleteAllEntriesQuery()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM cache_entries", query)
	assert.Empty(t, args)
}
