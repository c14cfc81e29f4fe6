// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package imagecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"

	"github.com/MKhiriev/tally-sync/internal/adapter"
	"github.com/MKhiriev/tally-sync/internal/logger"
	"github.com/MKhiriev/tally-sync/internal/metrics"
	"github.com/MKhiriev/tally-sync/internal/store"
	"github.com/MKhiriev/tally-sync/models"
)

const (
	defaultMaxEntries    = 100
	defaultMaxCost       = 50 << 20
	defaultRetryBackoff  = 250 * time.Millisecond
	defaultFlightTimeout = 45 * time.Second

	// downloadAttempts is the total number of signed-URL + download rounds.
	downloadAttempts = 2
)

// Tier is the memory + disk image cache.
type Tier struct {
	memory  *memoryTier
	disk    store.BlobStore
	fetcher Fetcher
	tokens  TokenSource

	flights       singleflight.Group
	flightTimeout time.Duration
	retryBackoff  time.Duration

	observers []EvictionObserver
	logger    *logger.Logger
	metrics   *metrics.Collector
}

// Config holds the tier limits.
type Config struct {
	MaxEntries    int
	MaxCost       int
	FlightTimeout time.Duration
	RetryBackoff  time.Duration
}

// Option configures a Tier.
type Option func(*Tier)

// WithObserver registers an eviction observer.
func WithObserver(o EvictionObserver) Option {
	return func(t *Tier) {
		t.observers = append(t.observers, o)
	}
}

// WithLogger sets the tier logger.
func WithLogger(l *logger.Logger) Option {
	return func(t *Tier) {
		t.logger = l
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(t *Tier) {
		t.metrics = m
	}
}

// NewTier builds a Tier over the given disk store. Zero limits in cfg fall
// back to 100 entries and 50 MiB.
func NewTier(cfg Config, disk store.BlobStore, fetcher Fetcher, tokens TokenSource, opts ...Option) (*Tier, error) {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = defaultMaxEntries
	}
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = defaultMaxCost
	}
	if cfg.FlightTimeout <= 0 {
		cfg.FlightTimeout = defaultFlightTimeout
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}

	t := &Tier{
		disk:          disk,
		fetcher:       fetcher,
		tokens:        tokens,
		flightTimeout: cfg.FlightTimeout,
		retryBackoff:  cfg.RetryBackoff,
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}

	memory, err := newMemoryTier(cfg.MaxEntries, cfg.MaxCost, t.evicted)
	if err != nil {
		return nil, fmt.Errorf("create image memory tier: %w", err)
	}
	t.memory = memory

	return t, nil
}

// evicted notifies observers of every key leaving memory. Only removals
// forced by the memory limits count as evictions in the metrics.
func (t *Tier) evicted(key string, capacity bool) {
	if capacity {
		t.metrics.RecordImageEviction()
	}
	for _, o := range t.observers {
		o.OnEvict(key)
	}
}

// Get returns the image for key, which is the verification id it belongs
// to. Lookups go memory, disk, then network. A missing image is a normal
// result: every failure is logged and reported as (nil, false).
func (t *Tier) Get(ctx context.Context, key string) ([]byte, bool) {
	if key == "" {
		return nil, false
	}

	if data, ok := t.memory.get(key); ok {
		t.metrics.RecordImageLookup(metrics.TierMemory)
		return data, true
	}

	if data, ok := t.fromDisk(ctx, key); ok {
		t.metrics.RecordImageLookup(metrics.TierDisk)
		return data, true
	}

	ch := t.flights.DoChan(key, func() (any, error) {
		// a flight started after the previous one finished finds its result here
		if data, ok := t.memory.get(key); ok {
			return data, nil
		}
		if data, ok := t.fromDisk(ctx, key); ok {
			return data, nil
		}

		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.flightTimeout)
		defer cancel()

		return t.fetch(flightCtx, key)
	})

	select {
	case <-ctx.Done():
		return nil, false
	case res := <-ch:
		if res.Err != nil {
			t.metrics.RecordImageLookup(metrics.TierMiss)
			return nil, false
		}
		t.metrics.RecordImageLookup(metrics.TierNetwork)
		return res.Val.([]byte), true
	}
}

// Peek reports a memory-resident image without touching recency or
// starting a fetch.
func (t *Tier) Peek(key string) bool {
	return t.memory.contains(key)
}

// Prefetch warms the cache for keys concurrently and waits for all of them.
func (t *Tier) Prefetch(ctx context.Context, keys ...string) {
	done := make(chan struct{}, len(keys))
	for _, key := range keys {
		go func() {
			defer func() { done <- struct{}{} }()
			t.Get(ctx, key)
		}()
	}
	for range keys {
		<-done
	}
}

// Resident returns the number of images held in memory.
func (t *Tier) Resident() int {
	entries, _ := t.memory.residency()
	return entries
}

// ResidentCost returns the cumulative cost of the images held in memory.
func (t *Tier) ResidentCost() int {
	_, cost := t.memory.residency()
	return cost
}

// ResidentKeys returns the memory-resident keys, oldest access first.
func (t *Tier) ResidentKeys() []string {
	return t.memory.keys()
}

// Remove drops key from both tiers.
func (t *Tier) Remove(ctx context.Context, key string) error {
	t.memory.remove(key)
	t.publishResidency()
	return t.disk.Delete(ctx, key)
}

// ClearAll empties both tiers. It is used on logout and low-storage signals.
func (t *Tier) ClearAll(ctx context.Context) error {
	t.memory.purge()
	t.publishResidency()

	if err := t.disk.Clear(ctx); err != nil {
		return fmt.Errorf("clear image disk tier: %w", err)
	}
	return nil
}

func (t *Tier) fromDisk(ctx context.Context, key string) ([]byte, bool) {
	data, err := t.disk.Read(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrBlobNotFound) {
			t.logger.Warn().Err(err).
				Str("func", "*Tier.fromDisk").
				Str("key", key).
				Msg("image disk read failed")
		}
		return nil, false
	}

	t.admit(key, data)
	return data, true
}

func (t *Tier) admit(key string, data []byte) {
	t.memory.add(models.ImageBlob{Key: key, Bytes: data, Cost: len(data)})
	t.publishResidency()
}

func (t *Tier) publishResidency() {
	entries, cost := t.memory.residency()
	t.metrics.SetImageResidency(entries, cost)
}

// fetch downloads key with a bounded retry. Every attempt asks for a fresh
// signed URL since the previous one may already be spent.
func (t *Tier) fetch(ctx context.Context, key string) ([]byte, error) {
	log := t.logger.With().Str("func", "*Tier.fetch").Str("key", key).Logger()

	token, err := t.tokens.Token(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("no session token for image fetch")
		t.metrics.RecordImageDownload(metrics.ResultError)
		return nil, err
	}

	var data []byte
	backoff := retry.WithMaxRetries(downloadAttempts-1, retry.NewConstant(t.retryBackoff))

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		signed, err := t.fetcher.RequestImageURL(ctx, token, key)
		if errors.Is(err, adapter.ErrNotFound) {
			return err
		}
		if err != nil {
			return retry.RetryableError(err)
		}

		body, err := t.fetcher.DownloadImage(ctx, signed.URL)
		if err != nil {
			return retry.RetryableError(err)
		}

		data = body
		return nil
	})
	if err != nil {
		if errors.Is(err, adapter.ErrNotFound) {
			log.Debug().Msg("verification has no image")
			t.metrics.RecordImageDownload(metrics.ResultNotFound)
		} else {
			log.Warn().Err(err).Msg("image download failed")
			t.metrics.RecordImageDownload(metrics.ResultError)
		}
		return nil, err
	}
	t.metrics.RecordImageDownload(metrics.ResultOK)

	if err = t.disk.Write(ctx, key, data); err != nil {
		log.Error().Err(err).Msg("image disk write failed")
	}
	t.admit(key, data)

	return data, nil
}
