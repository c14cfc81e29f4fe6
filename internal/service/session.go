// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/tally-sync/internal/activity"
	"github.com/MKhiriev/tally-sync/internal/adapter"
	"github.com/MKhiriev/tally-sync/internal/analytics"
	"github.com/MKhiriev/tally-sync/internal/cache"
	"github.com/MKhiriev/tally-sync/internal/config"
	"github.com/MKhiriev/tally-sync/internal/imagecache"
	"github.com/MKhiriev/tally-sync/internal/logger"
	"github.com/MKhiriev/tally-sync/internal/metrics"
	"github.com/MKhiriev/tally-sync/internal/store"
)

// SessionDeps are the collaborators a Session is built from.
type SessionDeps struct {
	Storages *store.ClientStorages
	Adapter  adapter.ServerAdapter
	Auth     AuthProvider

	// ImageObservers are told about every image evicted from memory.
	ImageObservers []imagecache.EvictionObserver

	Logger  *logger.Logger
	Metrics *metrics.Collector
	Clock   func() time.Time
}

// Session is the lifecycle object of one signed-in user: every cache, the
// image tier, the analytics cache, the coordinator and its background jobs.
// Build one at sign-in and call Logout at sign-out.
type Session struct {
	*Coordinator

	Images    *imagecache.Tier
	Analytics *analytics.Cache
	Tracker   *activity.Tracker

	storages     *store.ClientStorages
	job          SyncJob
	rollover     *DayRollover
	syncInterval time.Duration
	logger       *logger.Logger

	mu      sync.Mutex
	started bool
	closed  bool
}

// NewSession wires a Session from cfg and deps. Nothing runs until Load and
// Start are called.
func NewSession(cfg *config.StructuredConfig, deps SessionDeps) (*Session, error) {
	if deps.Storages == nil || deps.Adapter == nil || deps.Auth == nil {
		return nil, errors.New("session needs storages, adapter and auth")
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	tracker := activity.NewTracker(deps.Clock)

	caches := NewCaches(cfg.Cache,
		cache.WithPersister(deps.Storages.CacheEntries),
		cache.WithClock(deps.Clock),
		cache.WithLogger(deps.Logger),
		cache.WithMetrics(deps.Metrics),
	)

	coordinator, err := NewCoordinator(caches, deps.Adapter, deps.Auth, tracker, cfg.Sync,
		WithClock(deps.Clock),
		WithLogger(deps.Logger),
		WithMetrics(deps.Metrics),
	)
	if err != nil {
		return nil, err
	}

	imageOpts := []imagecache.Option{
		imagecache.WithLogger(deps.Logger),
		imagecache.WithMetrics(deps.Metrics),
	}
	for _, o := range deps.ImageObservers {
		imageOpts = append(imageOpts, imagecache.WithObserver(o))
	}
	images, err := imagecache.NewTier(imagecache.Config{
		MaxEntries: cfg.Cache.ImageMemoryEntries,
		MaxCost:    cfg.Cache.ImageMemoryCost,
	}, deps.Storages.Images, deps.Adapter, deps.Auth, imageOpts...)
	if err != nil {
		return nil, err
	}

	recipient := analytics.NewCache(deps.Storages.CacheEntries, cfg.Cache.AnalyticsTTL, cfg.Cache.AnalyticsUsableFor,
		analytics.WithFetcher(deps.Adapter, deps.Auth),
		analytics.WithClock(deps.Clock),
		analytics.WithLogger(deps.Logger),
		analytics.WithMetrics(deps.Metrics),
	)

	s := &Session{
		Coordinator:  coordinator,
		Images:       images,
		Analytics:    recipient,
		Tracker:      tracker,
		storages:     deps.Storages,
		job:          NewSyncJob(coordinator, deps.Logger),
		syncInterval: cfg.Workers.SyncInterval,
		logger:       deps.Logger,
	}

	s.rollover, err = NewDayRollover(coordinator.Location(), s.rolloverDay, deps.Logger)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Session) rolloverDay(ctx context.Context) error {
	if err := s.ResetVerifiedFlags(ctx); err != nil {
		return err
	}
	pruned := s.Tracker.Prune(s.cooldown)
	s.logger.Debug().Int("pruned", pruned).Str("func", "*Session.rolloverDay").Msg("activity tracker pruned")
	return nil
}

// Load reads the persisted caches. A domain that fails to load stays empty
// and is fetched by the next refresh.
func (s *Session) Load(ctx context.Context) error {
	if err := s.caches.Load(ctx); err != nil {
		s.logger.Warn().Err(err).Str("func", "*Session.Load").Msg("some cache domains could not be loaded")
		return err
	}
	return nil
}

// Start launches the periodic sync job and the day rollover.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.started {
		return nil
	}

	s.job.Start(ctx, s.syncInterval)
	s.rollover.Start()
	s.started = true

	return nil
}

// Refresh is [Coordinator.Refresh] guarded against a closed session.
func (s *Session) Refresh(ctx context.Context, force bool) (bool, error) {
	if s.isClosed() {
		return false, ErrSessionClosed
	}
	return s.Coordinator.Refresh(ctx, force)
}

// ScheduleRefresh is [Coordinator.ScheduleRefresh] guarded against a closed
// session.
func (s *Session) ScheduleRefresh(ctx context.Context, domain string, force bool) (bool, error) {
	if s.isClosed() {
		return false, ErrSessionClosed
	}
	return s.Coordinator.ScheduleRefresh(ctx, domain, force)
}

// Statuses adds the analytics cache to the domain statuses.
func (s *Session) Statuses() []cache.Status {
	return append(s.Coordinator.Statuses(), s.Analytics.Status())
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close stops the background jobs, aborts an in-flight refresh and waits
// for pending analytics writes. Persisted state is kept for the next
// session. Close is idempotent.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.job.Stop()
	s.rollover.Stop(ctx)
	s.Coordinator.shutdown(nil)
	s.Analytics.Flush()

	return nil
}

// Logout closes the session and wipes its memory and disk state.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.Close(ctx); err != nil {
		return err
	}

	var errs []error

	// a snapshot commit still running holds the apply lock; the wipe waits
	// for it and nothing commits after it
	s.Coordinator.shutdown(func() {
		s.caches.InvalidateAll(ctx)
		if err := s.storages.CacheEntries.DeleteAll(ctx); err != nil {
			errs = append(errs, fmt.Errorf("delete cache entries: %w", err))
		}
		s.Tracker.Reset()
	})

	if err := s.Images.ClearAll(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.Analytics.Clear(ctx); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		s.logger.Err(err).Str("func", "*Session.Logout").Msg("logout left some local state behind")
		return err
	}

	s.logger.Info().Str("func", "*Session.Logout").Msg("session state cleared")
	return nil
}
