// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "time"

// Defaults returns the built-in configuration. UI-critical caches are short
// lived; larger, less volatile caches live longer.
func Defaults() *StructuredConfig {
	return &StructuredConfig{
		Adapter: Adapter{
			RequestTimeout: 30 * time.Second,
			ImageTimeout:   15 * time.Second,
		},
		Storage: Storage{
			DB:    DB{DSN: "tally-cache.db"},
			Files: Files{ImageDir: "images"},
		},
		Cache: Cache{
			HabitsTTL:          5 * time.Minute,
			FriendsTTL:         30 * time.Minute,
			FeedTTL:            5 * time.Minute,
			CustomTypesTTL:     30 * time.Minute,
			VerifiedTodayTTL:   2 * time.Minute,
			WeeklyProgressTTL:  2 * time.Minute,
			VerificationsTTL:   5 * time.Minute,
			StagedDeletionsTTL: 5 * time.Minute,
			FriendRequestsTTL:  5 * time.Minute,
			ProfileTTL:         10 * time.Minute,
			ContactsTTL:        30 * time.Minute,
			ImageMemoryEntries: 100,
			ImageMemoryCost:    50 << 20,
			AnalyticsTTL:       5 * time.Minute,
			AnalyticsUsableFor: 24 * time.Hour,
		},
		Sync: Sync{
			HabitGraceWindow: 5 * time.Second,
			ActivityCooldown: 10 * time.Second,
		},
		Workers: Workers{
			SyncInterval: 5 * time.Minute,
		},
		Log: Log{
			Level: "info",
		},
	}
}
