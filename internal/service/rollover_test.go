package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/tally-sync/internal/logger"
)

func TestDayRollover_Spec(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	r, err := NewDayRollover(berlin, func(context.Context) error { return nil }, logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, "CRON_TZ=Europe/Berlin 0 0 * * *", r.Spec())
}

func TestDayRollover_NextIsLocalMidnight(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	r, err := NewDayRollover(berlin, func(context.Context) error { return nil }, logger.Nop())
	require.NoError(t, err)

	// 23:30 UTC 4 марта = 00:30 по Берлину 5 марта
	next := r.Next(time.Date(2026, 3, 4, 23, 30, 0, 0, time.UTC))
	assert.True(t, next.Equal(time.Date(2026, 3, 6, 0, 0, 0, 0, berlin)), "got %s", next)

	next = r.Next(time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC))
	assert.True(t, next.Equal(time.Date(2026, 3, 5, 0, 0, 0, 0, berlin)), "got %s", next)
}

func TestDayRollover_StartStop(t *testing.T) {
	r, err := NewDayRollover(time.UTC, func(context.Context) error { return nil }, logger.Nop())
	require.NoError(t, err)

	r.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NotPanics(t, func() { r.Stop(ctx) })
}

func TestSession_RolloverDay(t *testing.T) {
	c, _, clock := newTestCoordinator(t)
	ctx := context.Background()

	c.Caches().VerifiedHabitsToday.Put(ctx, map[string]bool{"h1": true})
	c.tracker.Touch("weekly_progress", "h1")
	clock.Advance(time.Minute)

	s := &Session{Coordinator: c, Tracker: c.tracker, logger: logger.Nop()}
	require.NoError(t, s.rolloverDay(ctx))

	flags, ok := c.Caches().VerifiedHabitsToday.Get()
	require.True(t, ok)
	assert.Empty(t, flags)

	_, touched := c.tracker.LastTouched("weekly_progress", "h1")
	assert.False(t, touched, "stale activity is pruned at rollover")
}
