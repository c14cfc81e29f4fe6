// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/MKhiriev/tally-sync/internal/cache"
	"github.com/MKhiriev/tally-sync/internal/resolver"
	"github.com/MKhiriev/tally-sync/models"
)

type commitFunc func(ctx context.Context)

func replaceWith[T any](c *cache.Cache[T], v T) commitFunc {
	return func(ctx context.Context) { c.Put(ctx, v) }
}

func mergeWith[T any](c *cache.Cache[T], fn func(cur T, ok bool) T) commitFunc {
	return func(ctx context.Context) { c.Merge(ctx, fn) }
}

// ApplySnapshot implements SyncCoordinator.
//
// The plan is built first; the commit starts only if ctx is still live and
// then runs to the end, so a cancelled apply leaves every cache untouched.
// Merge functions run under each cache's own lock and read its current
// state, so a local mutation landing between plan and commit is not lost.
// After shutdown nothing is committed and ErrSessionClosed is returned.
func (c *Coordinator) ApplySnapshot(ctx context.Context, snap models.Snapshot) error {
	if err := c.lockOpen(); err != nil {
		return fmt.Errorf("apply snapshot: %w", err)
	}
	defer c.applyMu.Unlock()

	commits := c.plan(snap, c.now())

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("apply snapshot: %w", err)
	}

	commitCtx := context.WithoutCancel(ctx)
	for _, commit := range commits {
		commit(commitCtx)
	}

	return nil
}

func (c *Coordinator) plan(snap models.Snapshot, now time.Time) []commitFunc {
	caches := c.caches
	commits := make([]commitFunc, 0, len(models.SnapshotKeys))

	if snap.Has(models.KeyHabits) {
		server := snap.Habits
		commits = append(commits, mergeWith(caches.Habits, func(cur []models.Habit, _ bool) []models.Habit {
			return mergeHabits(cur, server, now, c.graceWindow)
		}))
	}
	if snap.Has(models.KeyWeeklyProgress) {
		server := snap.WeeklyProgress
		commits = append(commits, mergeWith(caches.WeeklyProgress, func(cur []models.WeeklyProgressRecord, _ bool) []models.WeeklyProgressRecord {
			return c.mergeWeekly(cur, server)
		}))
	}
	if snap.Has(models.KeyVerifiedHabitsToday) {
		server := snap.VerifiedHabitsToday
		commits = append(commits, mergeWith(caches.VerifiedHabitsToday, func(cur map[string]bool, _ bool) map[string]bool {
			return resolver.MergeVerifiedFlags(cur, server)
		}))
	}
	if snap.Has(models.KeyHabitVerifications) {
		server := snap.HabitVerifications
		keep := c.recentlyActive(models.KeyHabitVerifications)
		commits = append(commits, mergeWith(caches.HabitVerifications, func(cur map[string][]models.VerificationRecord, _ bool) map[string][]models.VerificationRecord {
			return resolver.MergeVerificationMap(cur, server, keep)
		}))
	}
	if snap.Has(models.KeyVerificationsByDay) {
		server := snap.VerificationsByDay
		today := now.In(c.loc).Format(models.DayLayout)
		commits = append(commits, mergeWith(caches.VerificationsByDay, func(cur map[string][]models.VerificationRecord, _ bool) map[string][]models.VerificationRecord {
			return resolver.MergeVerificationMap(cur, server, func(day string) bool { return day == today })
		}))
	}
	if snap.Has(models.KeyStagedDeletions) {
		server := snap.StagedDeletions
		recent := c.recentlyActive(models.KeyStagedDeletions)
		commits = append(commits, mergeWith(caches.StagedDeletions, func(cur map[string]models.StagedDeletionRecord, _ bool) map[string]models.StagedDeletionRecord {
			return mergeStagedDeletions(cur, server, recent)
		}))
	}

	if snap.Has(models.KeyFriends) {
		commits = append(commits, replaceWith(caches.Friends, snap.Friends))
	}
	if snap.Has(models.KeyFriendsWithPaymentStatus) {
		commits = append(commits, replaceWith(caches.FriendsWithPaymentStatus, snap.FriendsWithPaymentStatus))
	}
	if snap.Has(models.KeyFeedPosts) {
		commits = append(commits, replaceWith(caches.FeedPosts, snap.FeedPosts))
	}
	if snap.Has(models.KeyCustomHabitTypes) {
		commits = append(commits, replaceWith(caches.CustomHabitTypes, snap.CustomHabitTypes))
	}
	if snap.Has(models.KeyAvailableHabitTypes) {
		commits = append(commits, replaceWith(caches.AvailableHabitTypes, snap.AvailableHabitTypes))
	}
	if snap.Has(models.KeyFriendRequests) {
		commits = append(commits, replaceWith(caches.FriendRequests, snap.FriendRequests))
	}
	if snap.Has(models.KeyContactsOnPlatform) {
		commits = append(commits, replaceWith(caches.ContactsOnPlatform, snap.ContactsOnPlatform))
	}
	if snap.Has(models.KeyPaymentMethod) {
		commits = append(commits, replaceWith(caches.PaymentMethod, snap.PaymentMethod))
	}
	if snap.Has(models.KeyUserProfile) {
		commits = append(commits, replaceWith(caches.UserProfile, snap.UserProfile))
	}
	if snap.Has(models.KeyOnboardingState) {
		commits = append(commits, replaceWith(caches.OnboardingState, snap.OnboardingState))
	}

	return commits
}

func (c *Coordinator) mergeWeekly(local, server []models.WeeklyProgressRecord) []models.WeeklyProgressRecord {
	results := resolver.MergeWeeklyProgressSet(local, server, c.recentlyActive(models.KeyWeeklyProgress))

	for _, r := range results {
		c.metrics.RecordMergeOutcome(r.Outcome.String())
		if r.Anomaly {
			c.logger.Warn().
				Str("func", "*Coordinator.mergeWeekly").
				Str("domain", models.KeyWeeklyProgress).
				Str("habit_id", r.Record.HabitID).
				Str("outcome", r.Outcome.String()).
				Int("completions", r.Record.CurrentCompletions).
				Msg("server weekly progress is behind local state")
		}
	}

	return resolver.Records(results)
}

// mergeHabits takes the server list and keeps local habits it does not
// list yet if they were created less than grace ago.
func mergeHabits(local, server []models.Habit, now time.Time, grace time.Duration) []models.Habit {
	merged := make([]models.Habit, 0, len(server)+1)
	seen := make(map[string]struct{}, len(server))
	for _, h := range server {
		seen[h.ID] = struct{}{}
		merged = append(merged, h)
	}

	for _, h := range local {
		if _, ok := seen[h.ID]; ok {
			continue
		}
		if now.Sub(h.CreatedAt) < grace {
			merged = append(merged, h)
		}
	}

	return merged
}

// mergeStagedDeletions takes the server map and keeps local-only records
// staged recently enough that the server may not know them yet.
func mergeStagedDeletions(local, server map[string]models.StagedDeletionRecord, recent func(habitID string) bool) map[string]models.StagedDeletionRecord {
	merged := maps.Clone(server)
	if merged == nil {
		merged = make(map[string]models.StagedDeletionRecord, len(local))
	}

	for habitID, rec := range local {
		if _, ok := merged[habitID]; ok {
			continue
		}
		if recent(habitID) {
			merged[habitID] = rec
		}
	}

	return merged
}
