// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MKhiriev/tally-sync/internal/activity"
	"github.com/MKhiriev/tally-sync/internal/cache"
	"github.com/MKhiriev/tally-sync/internal/config"
	"github.com/MKhiriev/tally-sync/internal/logger"
	"github.com/MKhiriev/tally-sync/internal/metrics"
	"github.com/MKhiriev/tally-sync/internal/utils"
	"github.com/MKhiriev/tally-sync/models"
)

const (
	defaultHabitGraceWindow = 5 * time.Second
	defaultActivityCooldown = 10 * time.Second

	deltaFlightKey = "delta"
	// bounds a shared fetch + apply independently of the callers waiting on it
	refreshFlightTimeout = 45 * time.Second
)

// Coordinator is the [SyncCoordinator]. It also reacts to local mutations
// reported by the host app (see reactions.go).
type Coordinator struct {
	caches  *Caches
	fetcher SnapshotFetcher
	auth    AuthProvider
	tracker *activity.Tracker

	graceWindow time.Duration
	cooldown    time.Duration
	loc         *time.Location

	// applyMu serializes commits, local reactions and shutdown. closed and
	// submitted are guarded by it.
	applyMu   sync.Mutex
	closed    bool
	submitted map[string]struct{}

	flights singleflight.Group
	// done is cancelled by shutdown and aborts an in-flight fetch
	done     context.Context
	stopDone context.CancelFunc

	stateMu  sync.RWMutex
	state    State
	lastErr  error
	lastSync time.Time

	ids     *utils.UUIDGenerator
	now     func() time.Time
	logger  *logger.Logger
	metrics *metrics.Collector
}

var _ SyncCoordinator = (*Coordinator)(nil)

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) { c.now = now }
}

// WithLogger sets the coordinator logger.
func WithLogger(l *logger.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = l }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) CoordinatorOption {
	return func(c *Coordinator) { c.metrics = m }
}

// NewCoordinator wires a Coordinator over caches. tracker must share the
// clock used by the coordinator for recency decisions to line up.
//
// Returns ErrInvalidTimezone if cfg.RolloverTimezone is not a known IANA
// zone.
func NewCoordinator(caches *Caches, fetcher SnapshotFetcher, auth AuthProvider, tracker *activity.Tracker, cfg config.Sync, opts ...CoordinatorOption) (*Coordinator, error) {
	loc, err := loadLocation(cfg.RolloverTimezone)
	if err != nil {
		return nil, err
	}

	done, stopDone := context.WithCancel(context.Background())

	c := &Coordinator{
		caches:      caches,
		fetcher:     fetcher,
		auth:        auth,
		tracker:     tracker,
		graceWindow: cfg.HabitGraceWindow,
		cooldown:    cfg.ActivityCooldown,
		loc:         loc,
		submitted:   make(map[string]struct{}),
		done:        done,
		stopDone:    stopDone,
		ids:         utils.NewUUIDGenerator(),
		now:         time.Now,
		logger:      logger.Nop(),
	}
	if c.graceWindow <= 0 {
		c.graceWindow = defaultHabitGraceWindow
	}
	if c.cooldown <= 0 {
		c.cooldown = defaultActivityCooldown
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidTimezone, name, err)
	}
	return loc, nil
}

// Caches returns the domain caches.
func (c *Coordinator) Caches() *Caches {
	return c.caches
}

// Location returns the zone whose calendar day scopes the daily flags.
func (c *Coordinator) Location() *time.Location {
	return c.loc
}

// State implements SyncCoordinator.
func (c *Coordinator) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// LastError implements SyncCoordinator.
func (c *Coordinator) LastError() error {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.lastErr
}

// LastSync returns the time of the last successful apply.
func (c *Coordinator) LastSync() time.Time {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.lastSync
}

func (c *Coordinator) setState(s State, err error) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	c.state = s
	c.lastErr = err
	if s == StateMergedIdle {
		c.lastSync = c.now()
	}
}

// Statuses implements SyncCoordinator.
func (c *Coordinator) Statuses() []cache.Status {
	return c.caches.Statuses()
}

// FetchSnapshot implements SyncCoordinator.
func (c *Coordinator) FetchSnapshot(ctx context.Context, token string) (models.Snapshot, error) {
	started := c.now()
	snap, err := c.fetcher.FetchDeltaSnapshot(ctx, token)
	c.metrics.RecordSnapshotFetch(c.now().Sub(started), err)
	if err != nil {
		return models.Snapshot{}, mapAdapterError(fmt.Errorf("fetch delta snapshot: %w", err))
	}

	for _, decodeErr := range snap.DecodeErrors {
		c.metrics.RecordDecodeError(decodeErr.Field)
	}

	return snap, nil
}

// ScheduleRefresh implements SyncCoordinator.
func (c *Coordinator) ScheduleRefresh(ctx context.Context, domain string, force bool) (bool, error) {
	d, ok := c.caches.Domain(domain)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownDomain, domain)
	}
	if !force && !d.NeedsRefresh() {
		return false, nil
	}
	return true, c.refresh(ctx)
}

// Refresh implements SyncCoordinator.
func (c *Coordinator) Refresh(ctx context.Context, force bool) (bool, error) {
	if !force && !c.caches.AnyNeedsRefresh() {
		return false, nil
	}
	return true, c.refresh(ctx)
}

// refresh runs one fetch + apply. A caller arriving while a fetch is in
// flight waits for that fetch instead of starting another. The flight does
// not inherit the cancellation of the caller that started it: a caller that
// gives up returns on its own ctx and the fetch goes on for the others.
func (c *Coordinator) refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	ch := c.flights.DoChan(deltaFlightKey, func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshFlightTimeout)
		defer cancel()
		stop := context.AfterFunc(c.done, cancel)
		defer stop()

		c.setState(StateFetching, nil)

		err := c.fetchAndApply(flightCtx)
		if err != nil {
			c.setState(StateFailedIdle, err)
			logger.FromContext(flightCtx).Warn().Err(err).
				Str("func", "*Coordinator.refresh").
				Msg("snapshot refresh failed, keeping cached state")
			return nil, err
		}

		c.setState(StateMergedIdle, nil)
		return nil, nil
	})

	select {
	case <-ctx.Done():
		return fmt.Errorf("refresh: %w", ctx.Err())
	case res := <-ch:
		return res.Err
	}
}

func (c *Coordinator) fetchAndApply(ctx context.Context) error {
	token, err := c.auth.Token(ctx)
	if err != nil {
		return fmt.Errorf("get session token: %w", err)
	}

	snap, err := c.FetchSnapshot(ctx, token)
	if err != nil {
		return err
	}

	return c.ApplySnapshot(ctx, snap)
}

// shutdown aborts an in-flight fetch and stops every later commit and
// reaction. It waits for a commit that is already running, then runs wipe,
// if any, while still holding the apply lock, so no commit can land between
// the wipe and the return.
func (c *Coordinator) shutdown(wipe func()) {
	c.stopDone()

	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	c.closed = true
	if wipe != nil {
		clear(c.submitted)
		wipe()
	}
}

// lockOpen takes the apply lock. It fails with ErrSessionClosed, without
// holding the lock, once shutdown has run.
func (c *Coordinator) lockOpen() error {
	c.applyMu.Lock()
	if c.closed {
		c.applyMu.Unlock()
		return ErrSessionClosed
	}
	return nil
}

// ResetVerifiedFlags implements SyncCoordinator.
func (c *Coordinator) ResetVerifiedFlags(ctx context.Context) error {
	if err := c.lockOpen(); err != nil {
		return err
	}
	defer c.applyMu.Unlock()

	c.caches.VerifiedHabitsToday.Put(ctx, map[string]bool{})
	c.logger.Info().Str("func", "*Coordinator.ResetVerifiedFlags").
		Str("day", c.today()).
		Msg("verified-today flags reset")
	return nil
}

func (c *Coordinator) today() string {
	return c.now().In(c.loc).Format(models.DayLayout)
}

func (c *Coordinator) recentlyActive(domain string) func(key string) bool {
	return func(key string) bool {
		return c.tracker.RecentlyActive(domain, key, c.cooldown)
	}
}
