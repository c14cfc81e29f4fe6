package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/tally-sync/internal/activity"
	"github.com/MKhiriev/tally-sync/internal/adapter"
	"github.com/MKhiriev/tally-sync/internal/cache"
	"github.com/MKhiriev/tally-sync/internal/config"
	"github.com/MKhiriev/tally-sync/internal/mock"
	"github.com/MKhiriev/tally-sync/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	// среда, неделя 2026-03-02..2026-03-08
	return &fakeClock{now: time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)}
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

type staticAuth struct {
	token string
	err   error
}

func (a staticAuth) Token(context.Context) (string, error) { return a.token, a.err }

func (a staticAuth) UserID(context.Context) (string, error) { return "u1", a.err }

func testSyncConfig() config.Sync {
	return config.Sync{
		HabitGraceWindow: 5 * time.Second,
		ActivityCooldown: 10 * time.Second,
		RolloverTimezone: "UTC",
	}
}

// newTestCoordinator — Coordinator на моке адаптера, без персистентности
func newTestCoordinator(t *testing.T) (*Coordinator, *mock.MockServerAdapter, *fakeClock) {
	t.Helper()
	ctrl := gomock.NewController(t)
	fetcher := mock.NewMockServerAdapter(ctrl)
	clock := newFakeClock()

	caches := NewCaches(config.Defaults().Cache, cache.WithClock(clock.Now))
	c, err := NewCoordinator(caches, fetcher, staticAuth{token: "tok"}, activity.NewTracker(clock.Now), testSyncConfig(), WithClock(clock.Now))
	require.NoError(t, err)

	return c, fetcher, clock
}

func decodeSnapshot(t *testing.T, body string) models.Snapshot {
	t.Helper()
	snap, err := adapter.DecodeSnapshot([]byte(body), time.Now())
	require.NoError(t, err)
	return snap
}

func weeklyRecord(habitID string, current, target int) models.WeeklyProgressRecord {
	return models.WeeklyProgressRecord{
		HabitID:            habitID,
		CurrentCompletions: current,
		TargetCompletions:  target,
		WeekStart:          "2026-03-02",
		WeekEnd:            "2026-03-08",
	}.Normalize()
}

func weeklySnapshot(records ...models.WeeklyProgressRecord) models.Snapshot {
	snap := models.Snapshot{WeeklyProgress: records}
	snap.MarkPresent(models.KeyWeeklyProgress)
	return snap
}

func weeklyFor(t *testing.T, c *Coordinator, habitID string) models.WeeklyProgressRecord {
	t.Helper()
	records, ok := c.Caches().WeeklyProgress.Get()
	require.True(t, ok)
	for _, r := range records {
		if r.HabitID == habitID {
			return r
		}
	}
	require.Failf(t, "no weekly record", "habit %s", habitID)
	return models.WeeklyProgressRecord{}
}
