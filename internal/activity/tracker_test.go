// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package activity

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)}
}

func TestTracker_RecentlyActive(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(clock.Now)

	assert.False(t, tr.RecentlyActive("weekly_progress", "h1", 10*time.Second), "untouched key")

	tr.Touch("weekly_progress", "h1")
	assert.True(t, tr.RecentlyActive("weekly_progress", "h1", 10*time.Second))
	assert.True(t, tr.RecentlyActive("weekly_progress", "", 10*time.Second), "domain is touched with the key")
	assert.False(t, tr.RecentlyActive("weekly_progress", "h2", 10*time.Second))
	assert.False(t, tr.RecentlyActive("habits", "h1", 10*time.Second))

	clock.Advance(9 * time.Second)
	assert.True(t, tr.RecentlyActive("weekly_progress", "h1", 10*time.Second))

	// ровно на границе окна активность уже не считается недавней
	clock.Advance(time.Second)
	assert.False(t, tr.RecentlyActive("weekly_progress", "h1", 10*time.Second))
}

func TestTracker_RecentlyActive_NonPositiveWindow(t *testing.T) {
	tr := NewTracker(newFakeClock().Now)
	tr.Touch("habits", "h1")

	assert.False(t, tr.RecentlyActive("habits", "h1", 0))
	assert.False(t, tr.RecentlyActive("habits", "h1", -time.Second))
}

func TestTracker_TouchRefreshes(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(clock.Now)

	tr.Touch("habits", "h1")
	clock.Advance(8 * time.Second)
	tr.Touch("habits", "h1")
	clock.Advance(8 * time.Second)

	assert.True(t, tr.RecentlyActive("habits", "h1", 10*time.Second))

	at, ok := tr.LastTouched("habits", "h1")
	require.True(t, ok)
	assert.Equal(t, clock.Now().Add(-8*time.Second), at)
}

func TestTracker_Prune(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(clock.Now)

	tr.Touch("habits", "old")
	clock.Advance(time.Minute)
	tr.Touch("feed", "new")

	removed := tr.Prune(30 * time.Second)
	assert.Equal(t, 2, removed, "habits domain and habits/old")

	_, ok := tr.LastTouched("habits", "old")
	assert.False(t, ok)
	_, ok = tr.LastTouched("feed", "new")
	assert.True(t, ok)
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker(nil)
	tr.Touch("habits", "h1")
	tr.Reset()

	assert.False(t, tr.RecentlyActive("habits", "h1", time.Hour))
}

func TestTracker_ConcurrentTouch(t *testing.T) {
	tr := NewTracker(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Touch("weekly_progress", "h1")
			_ = tr.RecentlyActive("weekly_progress", "h1", time.Second)
		}()
	}
	wg.Wait()

	assert.True(t, tr.RecentlyActive("weekly_progress", "h1", time.Minute))
}
