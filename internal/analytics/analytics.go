// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package analytics caches the recipient analytics dashboard in memory and
// on disk.
//
// Reads go memory, then disk, then absent. Writes update memory at once and
// reach disk in the background; [Cache.Flush] waits for them.
package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MKhiriev/tally-sync/internal/cache"
	"github.com/MKhiriev/tally-sync/internal/logger"
	"github.com/MKhiriev/tally-sync/internal/metrics"
	"github.com/MKhiriev/tally-sync/models"
)

const (
	// Domain is the persisted entry name.
	Domain = "recipient_analytics"

	formatVersion = 1

	defaultTTL       = 5 * time.Minute
	defaultUsableFor = 24 * time.Hour
)

// ErrNoFetcher is returned by Refresh on a cache built without a fetcher.
var ErrNoFetcher = errors.New("analytics cache has no fetcher")

// Fetcher loads fresh analytics from the backend.
type Fetcher interface {
	FetchRecipientAnalytics(ctx context.Context, token string) (models.RecipientAnalytics, error)
}

// TokenSource returns the bearer token of the current session.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type entry struct {
	value     models.RecipientAnalytics
	updatedAt time.Time
}

// Cache is the two-tier recipient analytics cache.
type Cache struct {
	ttl       time.Duration
	usableFor time.Duration

	mu  sync.RWMutex
	mem *entry
	seq uint64

	persister cache.Persister
	persistMu sync.Mutex
	persisted uint64
	pending   sync.WaitGroup

	fetcher Fetcher
	tokens  TokenSource
	flights singleflight.Group

	now     func() time.Time
	logger  *logger.Logger
	metrics *metrics.Collector
}

// Option configures a Cache.
type Option func(*Cache)

// WithFetcher enables Refresh.
func WithFetcher(f Fetcher, tokens TokenSource) Option {
	return func(c *Cache) {
		c.fetcher = f
		c.tokens = tokens
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Cache) { c.metrics = m }
}

// NewCache builds a Cache persisting through p. ttl bounds the memory entry
// and usableFor bounds how old a disk entry may be and still be served.
// Zero durations fall back to 5 minutes and 24 hours.
func NewCache(p cache.Persister, ttl, usableFor time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if usableFor <= 0 {
		usableFor = defaultUsableFor
	}

	c := &Cache{
		ttl:       ttl,
		usableFor: usableFor,
		persister: p,
		now:       time.Now,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the analytics from memory while they are younger than the
// TTL, otherwise from disk while they are younger than usableFor. A disk hit
// is promoted into memory with its original timestamp.
func (c *Cache) Get(ctx context.Context) (models.RecipientAnalytics, bool) {
	c.mu.RLock()
	mem := c.mem
	c.mu.RUnlock()

	if mem != nil && c.now().Sub(mem.updatedAt) < c.ttl {
		c.metrics.RecordAnalyticsLookup(metrics.TierMemory)
		return mem.value, true
	}

	disk, ok := c.fromDisk(ctx)
	if !ok {
		c.metrics.RecordAnalyticsLookup(metrics.TierMiss)
		return models.RecipientAnalytics{}, false
	}

	c.mu.Lock()
	// a Put that raced the disk read wins
	if c.mem == nil || !c.mem.updatedAt.After(disk.updatedAt) {
		c.mem = disk
	}
	c.mu.Unlock()

	c.metrics.RecordAnalyticsLookup(metrics.TierDisk)
	return disk.value, true
}

func (c *Cache) fromDisk(ctx context.Context) (*entry, bool) {
	if c.persister == nil {
		return nil, false
	}

	log := c.logger.With().Str("func", "*analytics.Cache.fromDisk").Str("domain", Domain).Logger()

	stored, found, err := c.persister.LoadEntry(ctx, Domain)
	if err != nil {
		log.Err(err).Msg("failed to read persisted analytics")
		return nil, false
	}
	if !found || stored.FormatVersion < formatVersion {
		return nil, false
	}
	if c.now().Sub(stored.UpdatedAt) >= c.usableFor {
		log.Debug().Time("updated_at", stored.UpdatedAt).Msg("persisted analytics too old to serve")
		return nil, false
	}

	var value models.RecipientAnalytics
	if err = json.Unmarshal(stored.Payload, &value); err != nil {
		log.Err(err).Msg("persisted analytics are corrupted")
		return nil, false
	}

	return &entry{value: value, updatedAt: stored.UpdatedAt}, true
}

// Put stores fresh analytics in memory and persists them asynchronously.
func (c *Cache) Put(ctx context.Context, value models.RecipientAnalytics) {
	e := &entry{value: value, updatedAt: c.now()}

	c.mu.Lock()
	c.mem = e
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	if c.persister == nil {
		return
	}

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		c.persist(context.WithoutCancel(ctx), seq, e)
	}()
}

func (c *Cache) persist(ctx context.Context, seq uint64, e *entry) {
	log := c.logger.With().Str("func", "*analytics.Cache.persist").Str("domain", Domain).Logger()

	payload, err := json.Marshal(e.value)
	if err != nil {
		c.metrics.RecordPersistFailure(Domain)
		log.Err(err).Msg("failed to encode analytics")
		return
	}

	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	if seq < c.persisted {
		return
	}
	c.persisted = seq

	err = c.persister.SaveEntry(ctx, models.PersistedEntry{
		Domain:        Domain,
		FormatVersion: formatVersion,
		UpdatedAt:     e.updatedAt,
		Payload:       payload,
	})
	if err != nil {
		c.metrics.RecordPersistFailure(Domain)
		log.Err(err).Msg("failed to persist analytics")
	}
}

// Flush waits for outstanding disk writes.
func (c *Cache) Flush() {
	c.pending.Wait()
}

// NeedsRefresh reports whether the memory entry is absent or at least TTL
// old.
func (c *Cache) NeedsRefresh() bool {
	c.mu.RLock()
	mem := c.mem
	c.mu.RUnlock()

	return mem == nil || c.now().Sub(mem.updatedAt) >= c.ttl
}

// Refresh fetches analytics when the memory entry is stale or force is set.
// The bool reports whether a fetch ran. A failed fetch keeps the cached
// value. Concurrent refreshes share one request.
func (c *Cache) Refresh(ctx context.Context, force bool) (models.RecipientAnalytics, bool, error) {
	if !force && !c.NeedsRefresh() {
		value, _ := c.Get(ctx)
		return value, false, nil
	}
	if c.fetcher == nil {
		return models.RecipientAnalytics{}, false, ErrNoFetcher
	}

	res, err, _ := c.flights.Do(Domain, func() (any, error) {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}

		value, err := c.fetcher.FetchRecipientAnalytics(ctx, token)
		if err != nil {
			return nil, err
		}

		c.Put(ctx, value)
		return value, nil
	})
	if err != nil {
		return models.RecipientAnalytics{}, true, fmt.Errorf("refresh recipient analytics: %w", err)
	}

	return res.(models.RecipientAnalytics), true, nil
}

// Status describes the memory entry for diagnostics.
func (c *Cache) Status() cache.Status {
	c.mu.RLock()
	mem := c.mem
	c.mu.RUnlock()

	st := cache.Status{
		Domain:        Domain,
		Stale:         c.NeedsRefresh(),
		TTL:           c.ttl,
		FormatVersion: formatVersion,
	}
	if mem != nil {
		updated := mem.updatedAt
		st.Present = true
		st.Age = c.now().Sub(updated)
		st.LastUpdated = &updated
	}
	return st
}

// Clear wipes both tiers. Writes still in flight are waited for first so
// none of them lands after the delete.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.mem = nil
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	c.Flush()

	if c.persister == nil {
		return nil
	}

	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	c.persisted = seq

	if err := c.persister.DeleteEntry(ctx, Domain); err != nil {
		return fmt.Errorf("clear recipient analytics: %w", err)
	}
	return nil
}
