// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package cache implements the versioned, TTL-gated per-domain cache.
//
// A [Cache] holds exactly one payload per domain. Writes are serialized by
// the cache's own lock, readers never wait for persistence, and a payload
// written with an older format version is never served.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/MKhiriev/tally-sync/internal/logger"
	"github.com/MKhiriev/tally-sync/internal/metrics"
	"github.com/MKhiriev/tally-sync/models"
)

// Entry is a stored payload with its bookkeeping.
type Entry[T any] struct {
	Payload       T
	LastUpdated   time.Time
	FormatVersion int
}

// Cache is a single-writer, many-reader cache of one domain payload.
//
// Payloads are treated as immutable once stored: merge functions and
// callers of Get must build new slices and maps instead of editing the
// returned ones.
type Cache[T any] struct {
	name    string
	ttl     time.Duration
	version int

	mu    sync.RWMutex
	entry *Entry[T]
	seq   uint64

	persister Persister
	persistMu sync.Mutex
	persisted uint64

	now     func() time.Time
	logger  *logger.Logger
	metrics *metrics.Collector
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	persister Persister
	now       func() time.Time
	logger    *logger.Logger
	metrics   *metrics.Collector
}

// WithPersister enables write-through persistence and [Cache.Load].
func WithPersister(p Persister) Option {
	return func(o *options) { o.persister = p }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics enables hit/miss accounting.
func WithMetrics(m *metrics.Collector) Option {
	return func(o *options) { o.metrics = m }
}

// New creates an empty cache for domain name. Entries older than ttl need a
// refresh; entries written with a format version below formatVersion are
// treated as absent.
func New[T any](name string, ttl time.Duration, formatVersion int, opts ...Option) *Cache[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Nop()
	}

	return &Cache[T]{
		name:      name,
		ttl:       ttl,
		version:   formatVersion,
		persister: o.persister,
		now:       o.now,
		logger:    o.logger,
		metrics:   o.metrics,
	}
}

// Name returns the domain name.
func (c *Cache[T]) Name() string {
	return c.name
}

// TTL returns the freshness window.
func (c *Cache[T]) TTL() time.Duration {
	return c.ttl
}

// Get returns the last committed payload. A payload past its TTL is still
// returned; callers use NeedsRefresh to decide whether to fetch.
func (c *Cache[T]) Get() (T, bool) {
	c.mu.RLock()
	e := c.entry
	c.mu.RUnlock()

	if e == nil || e.FormatVersion < c.version {
		c.metrics.RecordCacheLookup(c.name, false)
		var zero T
		return zero, false
	}

	c.metrics.RecordCacheLookup(c.name, true)
	return e.Payload, true
}

// Entry returns a copy of the current entry.
func (c *Cache[T]) Entry() (Entry[T], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.entry == nil || c.entry.FormatVersion < c.version {
		return Entry[T]{}, false
	}
	return *c.entry, true
}

// Put replaces the payload and writes it through to the persister.
func (c *Cache[T]) Put(ctx context.Context, v T) {
	c.Merge(ctx, func(T, bool) T { return v })
}

// Merge replaces the payload with fn(current, present) atomically with
// respect to other writers, then writes it through.
func (c *Cache[T]) Merge(ctx context.Context, fn func(cur T, ok bool) T) T {
	c.mu.Lock()
	var cur T
	ok := c.entry != nil && c.entry.FormatVersion >= c.version
	if ok {
		cur = c.entry.Payload
	}
	next := fn(cur, ok)
	e := &Entry[T]{Payload: next, LastUpdated: c.now(), FormatVersion: c.version}
	c.entry = e
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	c.persist(ctx, seq, e)
	return next
}

// Update is Merge for an existing payload only. When the cache holds
// nothing it writes nothing and returns false, so a partial payload never
// makes an unloaded domain look fresh.
func (c *Cache[T]) Update(ctx context.Context, fn func(cur T) T) (T, bool) {
	c.mu.Lock()
	if c.entry == nil || c.entry.FormatVersion < c.version {
		c.mu.Unlock()
		var zero T
		return zero, false
	}
	next := fn(c.entry.Payload)
	e := &Entry[T]{Payload: next, LastUpdated: c.now(), FormatVersion: c.version}
	c.entry = e
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	c.persist(ctx, seq, e)
	return next, true
}

// Invalidate drops the payload from memory and from the persister.
func (c *Cache[T]) Invalidate(ctx context.Context) {
	c.mu.Lock()
	c.entry = nil
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	if c.persister == nil {
		return
	}

	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	if seq < c.persisted {
		return
	}
	c.persisted = seq
	if err := c.persister.DeleteEntry(ctx, c.name); err != nil {
		c.metrics.RecordPersistFailure(c.name)
		c.logger.Err(err).Str("func", "cache.Invalidate").Str("domain", c.name).Msg("failed to delete persisted entry")
	}
}

// NeedsRefresh reports whether the cache is absent, was written with an
// older format version, or is at least TTL old.
func (c *Cache[T]) NeedsRefresh() bool {
	c.mu.RLock()
	e := c.entry
	c.mu.RUnlock()

	return c.stale(e)
}

func (c *Cache[T]) stale(e *Entry[T]) bool {
	if e == nil || e.FormatVersion < c.version {
		return true
	}
	return c.now().Sub(e.LastUpdated) >= c.ttl
}

// Status describes the cache for diagnostics.
func (c *Cache[T]) Status() Status {
	c.mu.RLock()
	e := c.entry
	c.mu.RUnlock()

	st := Status{
		Domain:        c.name,
		Stale:         c.stale(e),
		TTL:           c.ttl,
		FormatVersion: c.version,
	}
	if e != nil && e.FormatVersion >= c.version {
		updated := e.LastUpdated
		st.Present = true
		st.Age = c.now().Sub(updated)
		st.LastUpdated = &updated
	}
	return st
}

// Load reads the persisted payload, if any, into memory. It never replaces
// a payload already written in this session. A persisted entry with an
// older format version, or one that no longer decodes, is deleted.
func (c *Cache[T]) Load(ctx context.Context) error {
	if c.persister == nil {
		return nil
	}

	log := c.logger.With().Str("func", "cache.Load").Str("domain", c.name).Logger()

	stored, found, err := c.persister.LoadEntry(ctx, c.name)
	if err != nil {
		log.Err(err).Msg("failed to load persisted entry")
		return err
	}
	if !found {
		return nil
	}

	if stored.FormatVersion < c.version {
		log.Info().Int("stored_version", stored.FormatVersion).Int("version", c.version).Msg("dropping persisted entry with old format version")
		return c.persister.DeleteEntry(ctx, c.name)
	}

	var payload T
	if err = json.Unmarshal(stored.Payload, &payload); err != nil {
		log.Err(err).Msg("persisted entry is corrupted, dropping it")
		return c.persister.DeleteEntry(ctx, c.name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil {
		c.entry = &Entry[T]{Payload: payload, LastUpdated: stored.UpdatedAt, FormatVersion: stored.FormatVersion}
	}
	return nil
}

// persist writes e unless a later write already reached the persister.
// Failures are logged and counted; the in-memory write stands.
func (c *Cache[T]) persist(ctx context.Context, seq uint64, e *Entry[T]) {
	if c.persister == nil {
		return
	}

	payload, err := json.Marshal(e.Payload)
	if err != nil {
		c.metrics.RecordPersistFailure(c.name)
		c.logger.Err(err).Str("func", "cache.persist").Str("domain", c.name).Msg("failed to encode payload")
		return
	}

	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	if seq < c.persisted {
		return
	}
	c.persisted = seq

	err = c.persister.SaveEntry(context.WithoutCancel(ctx), models.PersistedEntry{
		Domain:        c.name,
		FormatVersion: e.FormatVersion,
		UpdatedAt:     e.LastUpdated,
		Payload:       payload,
	})
	if err != nil {
		c.metrics.RecordPersistFailure(c.name)
		c.logger.Err(err).Str("func", "cache.persist").Str("domain", c.name).Msg("failed to persist entry")
	}
}
