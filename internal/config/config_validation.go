// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// validate checks that the final merged [StructuredConfig] satisfies all
// invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or one of the ErrInvalid…
// sentinels (wrapped with detail) otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 || cfg.Adapter.ImageTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Storage.DB.DSN == "" || cfg.Storage.Files.ImageDir == "" {
		return ErrInvalidStorageConfigs
	}

	ttls := map[string]time.Duration{
		"habits":           cfg.Cache.HabitsTTL,
		"friends":          cfg.Cache.FriendsTTL,
		"feed":             cfg.Cache.FeedTTL,
		"custom_types":     cfg.Cache.CustomTypesTTL,
		"verified_today":   cfg.Cache.VerifiedTodayTTL,
		"weekly_progress":  cfg.Cache.WeeklyProgressTTL,
		"verifications":    cfg.Cache.VerificationsTTL,
		"staged_deletions": cfg.Cache.StagedDeletionsTTL,
		"friend_requests":  cfg.Cache.FriendRequestsTTL,
		"profile":          cfg.Cache.ProfileTTL,
		"contacts":         cfg.Cache.ContactsTTL,
		"analytics":        cfg.Cache.AnalyticsTTL,
	}
	for name, ttl := range ttls {
		if ttl <= 0 {
			return fmt.Errorf("%w: %s ttl must be positive", ErrInvalidCacheConfigs, name)
		}
	}
	if cfg.Cache.ImageMemoryEntries <= 0 || cfg.Cache.ImageMemoryCost <= 0 {
		return fmt.Errorf("%w: image memory limits must be positive", ErrInvalidCacheConfigs)
	}
	if cfg.Cache.AnalyticsUsableFor < cfg.Cache.AnalyticsTTL {
		return fmt.Errorf("%w: analytics usable window shorter than ttl", ErrInvalidCacheConfigs)
	}

	if cfg.Sync.HabitGraceWindow < 0 || cfg.Sync.ActivityCooldown < 0 {
		return ErrInvalidSyncConfigs
	}
	if cfg.Sync.RolloverTimezone != "" {
		if _, err := time.LoadLocation(cfg.Sync.RolloverTimezone); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSyncConfigs, err)
		}
	}

	if cfg.Workers.SyncInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
