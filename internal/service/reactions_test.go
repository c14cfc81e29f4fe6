// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/tally-sync/models"
)

func TestOnVerificationSubmitted_SurvivesStaleSnapshot(t *testing.T) {
	c, _, clock := newTestCoordinator(t)
	ctx := context.Background()

	c.Caches().WeeklyProgress.Put(ctx, []models.WeeklyProgressRecord{weeklyRecord("h1", 4, 5)})
	c.Caches().VerifiedHabitsToday.Put(ctx, map[string]bool{})

	require.NoError(t, c.OnVerificationSubmitted(ctx, models.VerificationRecord{ID: "v1", HabitID: "h1"}))

	rec := weeklyFor(t, c, "h1")
	assert.Equal(t, 5, rec.CurrentCompletions)
	assert.True(t, rec.IsWeekComplete)
	require.NotNil(t, rec.LocalUpdatedAt)

	flags, _ := c.Caches().VerifiedHabitsToday.Get()
	assert.True(t, flags["h1"])

	// сервер ещё не учёл верификацию
	clock.Advance(2 * time.Second)
	require.NoError(t, c.ApplySnapshot(ctx, weeklySnapshot(weeklyRecord("h1", 4, 5))))
	assert.Equal(t, 5, weeklyFor(t, c, "h1").CurrentCompletions)

	// после cooldown сервер снова источник истины
	clock.Advance(11 * time.Second)
	require.NoError(t, c.ApplySnapshot(ctx, weeklySnapshot(weeklyRecord("h1", 4, 5))))
	rec = weeklyFor(t, c, "h1")
	assert.Equal(t, 4, rec.CurrentCompletions)
	assert.False(t, rec.IsWeekComplete)
}

func TestOnVerificationSubmitted_RejectedIsHistoryOnly(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	ctx := context.Background()

	c.Caches().WeeklyProgress.Put(ctx, []models.WeeklyProgressRecord{weeklyRecord("h1", 1, 5)})
	c.Caches().VerifiedHabitsToday.Put(ctx, map[string]bool{})
	c.Caches().HabitVerifications.Put(ctx, map[string][]models.VerificationRecord{})
	c.Caches().VerificationsByDay.Put(ctx, map[string][]models.VerificationRecord{})

	rejected := false
	require.NoError(t, c.OnVerificationSubmitted(ctx, models.VerificationRecord{ID: "v1", HabitID: "h1", Result: &rejected}))

	history, _ := c.Caches().HabitVerifications.Get()
	assert.Len(t, history["h1"], 1)
	byDay, _ := c.Caches().VerificationsByDay.Get()
	assert.Len(t, byDay["2026-03-04"], 1)

	flags, _ := c.Caches().VerifiedHabitsToday.Get()
	assert.False(t, flags["h1"])
	assert.Equal(t, 1, weeklyFor(t, c, "h1").CurrentCompletions)
}

func TestOnVerificationSubmitted_OutsideWeekDoesNotBump(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	ctx := context.Background()

	c.Caches().WeeklyProgress.Put(ctx, []models.WeeklyProgressRecord{weeklyRecord("h1", 1, 5)})
	c.Caches().VerifiedHabitsToday.Put(ctx, map[string]bool{})

	lastWeek := time.Date(2026, 2, 25, 9, 0, 0, 0, time.UTC)
	require.NoError(t, c.OnVerificationSubmitted(ctx, models.VerificationRecord{ID: "v0", HabitID: "h1", VerifiedAt: lastWeek}))

	assert.Equal(t, 1, weeklyFor(t, c, "h1").CurrentCompletions)
	flags, _ := c.Caches().VerifiedHabitsToday.Get()
	assert.NotContains(t, flags, "h1")
}

func TestOnVerificationSubmitted_SameIDCountedOnce(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	ctx := context.Background()

	c.Caches().WeeklyProgress.Put(ctx, []models.WeeklyProgressRecord{weeklyRecord("h1", 0, 5)})
	c.Caches().HabitVerifications.Put(ctx, map[string][]models.VerificationRecord{})

	require.NoError(t, c.OnVerificationSubmitted(ctx, models.VerificationRecord{ID: "v1", HabitID: "h1"}))
	require.NoError(t, c.OnVerificationSubmitted(ctx, models.VerificationRecord{ID: "v1", HabitID: "h1"}))
	assert.Equal(t, 1, weeklyFor(t, c, "h1").CurrentCompletions)

	history, _ := c.Caches().HabitVerifications.Get()
	assert.Len(t, history["h1"], 1)

	// другая верификация учитывается
	require.NoError(t, c.OnVerificationSubmitted(ctx, models.VerificationRecord{ID: "v2", HabitID: "h1"}))
	assert.Equal(t, 2, weeklyFor(t, c, "h1").CurrentCompletions)
}

func TestOnVerificationSubmitted_AlreadyInSnapshotNotCounted(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	ctx := context.Background()

	c.Caches().WeeklyProgress.Put(ctx, []models.WeeklyProgressRecord{weeklyRecord("h1", 1, 5)})
	c.Caches().HabitVerifications.Put(ctx, map[string][]models.VerificationRecord{
		"h1": {{ID: "v1", HabitID: "h1", VerifiedAt: time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC)}},
	})

	require.NoError(t, c.OnVerificationSubmitted(ctx, models.VerificationRecord{ID: "v1", HabitID: "h1"}))
	assert.Equal(t, 1, weeklyFor(t, c, "h1").CurrentCompletions)
}

func TestReactions_AfterShutdown(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	ctx := context.Background()

	c.Caches().Habits.Put(ctx, []models.Habit{{ID: "h1"}})
	c.shutdown(nil)

	assert.ErrorIs(t, c.OnHabitCreated(ctx, models.Habit{ID: "h2"}), ErrSessionClosed)
	assert.ErrorIs(t, c.OnHabitDeleted(ctx, "h1", DeleteImmediate, nil), ErrSessionClosed)
	assert.ErrorIs(t, c.OnHabitRestored(ctx, "h1"), ErrSessionClosed)
	assert.ErrorIs(t, c.OnVerificationSubmitted(ctx, models.VerificationRecord{ID: "v1", HabitID: "h1"}), ErrSessionClosed)
	assert.ErrorIs(t, c.ApplySnapshot(ctx, weeklySnapshot(weeklyRecord("h1", 1, 5))), ErrSessionClosed)

	habits, _ := c.Caches().Habits.Get()
	assert.Equal(t, []models.Habit{{ID: "h1"}}, habits)
}

func TestOnVerificationSubmitted_UnloadedDomainsStayEmpty(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	ctx := context.Background()

	require.NoError(t, c.OnVerificationSubmitted(ctx, models.VerificationRecord{ID: "v1", HabitID: "h1"}))

	_, ok := c.Caches().WeeklyProgress.Get()
	assert.False(t, ok)
	_, ok = c.Caches().HabitVerifications.Get()
	assert.False(t, ok)
	assert.True(t, c.Caches().VerifiedHabitsToday.NeedsRefresh())
}

func TestReactions_EmptyHabitID(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	ctx := context.Background()

	assert.ErrorIs(t, c.OnHabitCreated(ctx, models.Habit{}), ErrEmptyHabitID)
	assert.ErrorIs(t, c.OnHabitDeleted(ctx, "", DeleteImmediate, nil), ErrEmptyHabitID)
	assert.ErrorIs(t, c.OnHabitRestored(ctx, ""), ErrEmptyHabitID)
	assert.ErrorIs(t, c.OnVerificationSubmitted(ctx, models.VerificationRecord{}), ErrEmptyHabitID)
}

func TestOnHabitCreated_SurvivesSnapshotWithinGrace(t *testing.T) {
	c, _, clock := newTestCoordinator(t)
	ctx := context.Background()

	c.Caches().Habits.Put(ctx, []models.Habit{})
	require.NoError(t, c.OnHabitCreated(ctx, models.Habit{ID: "new", Name: "Read"}))

	clock.Advance(2 * time.Second)
	require.NoError(t, c.ApplySnapshot(ctx, decodeSnapshot(t, `{"habits": []}`)))

	habits, _ := c.Caches().Habits.Get()
	require.Len(t, habits, 1)
	assert.Equal(t, "new", habits[0].ID)

	clock.Advance(10 * time.Second)
	require.NoError(t, c.ApplySnapshot(ctx, decodeSnapshot(t, `{"habits": []}`)))

	habits, _ = c.Caches().Habits.Get()
	assert.Empty(t, habits)
}

func TestOnHabitDeleted_Staged(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	ctx := context.Background()

	c.Caches().StagedDeletions.Put(ctx, map[string]models.StagedDeletionRecord{})
	require.NoError(t, c.OnHabitDeleted(ctx, "h1", DeleteStaged, nil))

	staged, ok := c.Caches().StagedDeletions.Get()
	require.True(t, ok)
	rec, ok := staged["h1"]
	require.True(t, ok)

	assert.Equal(t, "h1", rec.HabitID)
	assert.Equal(t, "2026-03-04", rec.EffectiveDate)
	assert.Equal(t, "UTC", rec.Timezone)
	require.NotNil(t, rec.StagingID)
	id, err := uuid.Parse(*rec.StagingID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	// сервер ещё не знает об удалении
	require.NoError(t, c.ApplySnapshot(ctx, decodeSnapshot(t, `{"staged_deletions": {}}`)))
	staged, _ = c.Caches().StagedDeletions.Get()
	assert.Contains(t, staged, "h1")

	require.NoError(t, c.OnHabitRestored(ctx, "h1"))
	staged, _ = c.Caches().StagedDeletions.Get()
	assert.NotContains(t, staged, "h1")
}

func TestOnHabitDeleted_StagedKeepsProvidedFields(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	ctx := context.Background()

	c.Caches().StagedDeletions.Put(ctx, map[string]models.StagedDeletionRecord{})
	stagingID := "s-1"
	require.NoError(t, c.OnHabitDeleted(ctx, "h1", DeleteStaged, &models.StagedDeletionRecord{
		EffectiveDate: "2026-03-09",
		Timezone:      "Europe/Berlin",
		StagingID:     &stagingID,
	}))

	staged, _ := c.Caches().StagedDeletions.Get()
	assert.Equal(t, models.StagedDeletionRecord{
		HabitID:       "h1",
		EffectiveDate: "2026-03-09",
		Timezone:      "Europe/Berlin",
		StagingID:     &stagingID,
	}, staged["h1"])
}

func TestOnHabitDeleted_Immediate(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	ctx := context.Background()

	c.Caches().Habits.Put(ctx, []models.Habit{{ID: "h1"}, {ID: "h2"}})
	c.Caches().WeeklyProgress.Put(ctx, []models.WeeklyProgressRecord{weeklyRecord("h1", 1, 5), weeklyRecord("h2", 2, 5)})
	c.Caches().VerifiedHabitsToday.Put(ctx, map[string]bool{"h1": true, "h2": true})
	c.Caches().HabitVerifications.Put(ctx, map[string][]models.VerificationRecord{"h1": {{ID: "v1", HabitID: "h1"}}})
	c.Caches().StagedDeletions.Put(ctx, map[string]models.StagedDeletionRecord{"h1": {HabitID: "h1"}})

	require.NoError(t, c.OnHabitDeleted(ctx, "h1", DeleteImmediate, nil))

	habits, _ := c.Caches().Habits.Get()
	assert.Equal(t, []models.Habit{{ID: "h2"}}, habits)

	weekly, _ := c.Caches().WeeklyProgress.Get()
	require.Len(t, weekly, 1)
	assert.Equal(t, "h2", weekly[0].HabitID)

	flags, _ := c.Caches().VerifiedHabitsToday.Get()
	assert.Equal(t, map[string]bool{"h2": true}, flags)

	history, _ := c.Caches().HabitVerifications.Get()
	assert.Empty(t, history)

	staged, _ := c.Caches().StagedDeletions.Get()
	assert.Empty(t, staged)
}
