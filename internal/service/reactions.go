// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"maps"
	"slices"

	"github.com/MKhiriev/tally-sync/internal/resolver"
	"github.com/MKhiriev/tally-sync/models"
)

// DeleteMode tells how the habit service removed a habit.
type DeleteMode int

const (
	// DeleteImmediate removes the habit outright.
	DeleteImmediate DeleteMode = iota
	// DeleteStaged schedules the removal for a later effective date.
	DeleteStaged
)

// The reactions below only edit domains that already hold a payload. An
// unloaded domain gets the server's view with the next snapshot. They run
// under the apply lock and fail with ErrSessionClosed after shutdown.

// OnHabitCreated adds a habit the user just created. A zero CreatedAt is
// set to now, which starts its grace window.
func (c *Coordinator) OnHabitCreated(ctx context.Context, habit models.Habit) error {
	if habit.ID == "" {
		return ErrEmptyHabitID
	}
	if err := c.lockOpen(); err != nil {
		return err
	}
	defer c.applyMu.Unlock()

	if habit.CreatedAt.IsZero() {
		habit.CreatedAt = c.now()
	}

	c.tracker.Touch(models.KeyHabits, habit.ID)
	c.caches.Habits.Update(ctx, func(cur []models.Habit) []models.Habit {
		out := slices.DeleteFunc(slices.Clone(cur), func(h models.Habit) bool { return h.ID == habit.ID })
		return append(out, habit)
	})

	return nil
}

// OnHabitDeleted reacts to a completed delete. Immediate deletes drop the
// habit and everything keyed by it. Staged deletes record staged, filling a
// missing staging id, effective date and timezone.
func (c *Coordinator) OnHabitDeleted(ctx context.Context, habitID string, mode DeleteMode, staged *models.StagedDeletionRecord) error {
	if habitID == "" {
		return ErrEmptyHabitID
	}

	if err := c.lockOpen(); err != nil {
		return err
	}
	defer c.applyMu.Unlock()

	log := c.logger.With().
		Str("func", "*Coordinator.OnHabitDeleted").
		Str("habit_id", habitID).
		Logger()

	if mode == DeleteStaged {
		rec := models.StagedDeletionRecord{}
		if staged != nil {
			rec = *staged
		}
		rec.HabitID = habitID
		if rec.EffectiveDate == "" {
			rec.EffectiveDate = c.today()
		}
		if rec.Timezone == "" {
			rec.Timezone = c.loc.String()
		}
		if rec.StagingID == nil {
			id := c.ids.Generate()
			rec.StagingID = &id
		}

		c.tracker.Touch(models.KeyStagedDeletions, habitID)
		c.caches.StagedDeletions.Update(ctx, func(cur map[string]models.StagedDeletionRecord) map[string]models.StagedDeletionRecord {
			out := maps.Clone(cur)
			if out == nil {
				out = make(map[string]models.StagedDeletionRecord, 1)
			}
			out[habitID] = rec
			return out
		})

		log.Debug().Str("staging_id", *rec.StagingID).Msg("habit deletion staged")
		return nil
	}

	c.caches.Habits.Update(ctx, func(cur []models.Habit) []models.Habit {
		return slices.DeleteFunc(slices.Clone(cur), func(h models.Habit) bool { return h.ID == habitID })
	})
	c.caches.WeeklyProgress.Update(ctx, func(cur []models.WeeklyProgressRecord) []models.WeeklyProgressRecord {
		return slices.DeleteFunc(slices.Clone(cur), func(w models.WeeklyProgressRecord) bool { return w.HabitID == habitID })
	})
	c.caches.VerifiedHabitsToday.Update(ctx, func(cur map[string]bool) map[string]bool {
		out := maps.Clone(cur)
		delete(out, habitID)
		return out
	})
	c.caches.HabitVerifications.Update(ctx, func(cur map[string][]models.VerificationRecord) map[string][]models.VerificationRecord {
		out := maps.Clone(cur)
		delete(out, habitID)
		return out
	})
	c.caches.StagedDeletions.Update(ctx, func(cur map[string]models.StagedDeletionRecord) map[string]models.StagedDeletionRecord {
		out := maps.Clone(cur)
		delete(out, habitID)
		return out
	})

	log.Debug().Msg("habit removed from caches")
	return nil
}

// OnHabitRestored drops the staged deletion of habitID.
func (c *Coordinator) OnHabitRestored(ctx context.Context, habitID string) error {
	if habitID == "" {
		return ErrEmptyHabitID
	}
	if err := c.lockOpen(); err != nil {
		return err
	}
	defer c.applyMu.Unlock()

	c.caches.StagedDeletions.Update(ctx, func(cur map[string]models.StagedDeletionRecord) map[string]models.StagedDeletionRecord {
		out := maps.Clone(cur)
		delete(out, habitID)
		return out
	})
	return nil
}

// OnVerificationSubmitted folds a verification the backend just accepted
// into the caches as an optimistic update and marks the habit active, so
// the next snapshot does not roll it back.
func (c *Coordinator) OnVerificationSubmitted(ctx context.Context, rec models.VerificationRecord) error {
	if rec.HabitID == "" {
		return ErrEmptyHabitID
	}
	if err := c.lockOpen(); err != nil {
		return err
	}
	defer c.applyMu.Unlock()

	now := c.now()
	if rec.VerifiedAt.IsZero() {
		rec.VerifiedAt = now
	}
	day := rec.Day(c.loc)
	habitID := rec.HabitID
	// a resubmitted verification refreshes the history but is counted once
	counted := c.seenVerification(rec, day)
	if rec.ID != "" {
		c.submitted[rec.ID] = struct{}{}
	}

	c.tracker.Touch(models.KeyWeeklyProgress, habitID)
	c.tracker.Touch(models.KeyHabitVerifications, habitID)
	c.tracker.Touch(models.KeyVerifiedHabitsToday, habitID)

	c.caches.HabitVerifications.Update(ctx, func(cur map[string][]models.VerificationRecord) map[string][]models.VerificationRecord {
		out := maps.Clone(cur)
		if out == nil {
			out = make(map[string][]models.VerificationRecord, 1)
		}
		out[habitID] = resolver.MergeVerifications(out[habitID], []models.VerificationRecord{rec})
		return out
	})
	c.caches.VerificationsByDay.Update(ctx, func(cur map[string][]models.VerificationRecord) map[string][]models.VerificationRecord {
		out := maps.Clone(cur)
		if out == nil {
			out = make(map[string][]models.VerificationRecord, 1)
		}
		out[day] = resolver.MergeVerifications(out[day], []models.VerificationRecord{rec})
		return out
	})

	if rec.Result != nil && !*rec.Result {
		// a rejected verification is history only
		return nil
	}
	if counted {
		return nil
	}

	if day == c.today() {
		c.caches.VerifiedHabitsToday.Update(ctx, func(cur map[string]bool) map[string]bool {
			out := maps.Clone(cur)
			if out == nil {
				out = make(map[string]bool, 1)
			}
			out[habitID] = true
			return out
		})
	}

	c.caches.WeeklyProgress.Update(ctx, func(cur []models.WeeklyProgressRecord) []models.WeeklyProgressRecord {
		out := slices.Clone(cur)
		for i := range out {
			if out[i].HabitID != habitID || !inWeek(out[i], day) {
				continue
			}
			out[i].CurrentCompletions++
			out[i].LocalUpdatedAt = &now
			out[i] = out[i].Normalize()
		}
		return out
	})

	return nil
}

// seenVerification reports whether rec was already folded into the
// caches, by this session or by a snapshot. Records without an id are
// always new.
func (c *Coordinator) seenVerification(rec models.VerificationRecord, day string) bool {
	if rec.ID == "" {
		return false
	}
	if _, ok := c.submitted[rec.ID]; ok {
		return true
	}

	hasID := func(recs []models.VerificationRecord) bool {
		return slices.ContainsFunc(recs, func(r models.VerificationRecord) bool { return r.ID == rec.ID })
	}
	if byHabit, ok := c.caches.HabitVerifications.Get(); ok && hasID(byHabit[rec.HabitID]) {
		return true
	}
	if byDay, ok := c.caches.VerificationsByDay.Get(); ok && hasID(byDay[day]) {
		return true
	}
	return false
}

// inWeek treats a record without week bounds as the current week.
func inWeek(w models.WeeklyProgressRecord, day string) bool {
	if w.WeekStart == "" && w.WeekEnd == "" {
		return true
	}
	return w.Covers(day)
}
