// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"time"
)

// StructuredConfig is the top-level configuration container for the
// tally-sync engine. It aggregates all sub-configurations and is populated
// by merging values from environment variables, command-line flags, an
// optional JSON file and finally built-in defaults.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Adapter holds the backend address and outbound timeouts.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Auth holds the session credentials handed over by the host app.
	Auth Auth `envPrefix:"AUTH_"`

	// Storage holds configuration for the local persistence backends: the
	// sqlite database for cache payloads and the image blob directory.
	Storage Storage `envPrefix:"STORAGE_"`

	// Cache holds per-domain TTLs and image/analytics cache limits.
	Cache Cache `envPrefix:"CACHE_"`

	// Sync holds the reconciliation heuristics.
	Sync Sync `envPrefix:"SYNC_"`

	// Workers holds configuration for background jobs.
	Workers Workers `envPrefix:"WORKERS_"`

	// Debug holds the local debug/metrics HTTP surface settings.
	Debug Debug `envPrefix:"DEBUG_"`

	// Log holds log output settings.
	Log Log `envPrefix:"LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Adapter holds outbound transport settings.
type Adapter struct {
	// HTTPAddress is the backend base URL (e.g. "https://api.example.com").
	// A bare host:port is accepted and treated as http.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds every general API call (snapshot, signed URLs,
	// analytics).
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// ImageTimeout bounds a single image download.
	// Env: ADAPTER_IMAGE_TIMEOUT
	ImageTimeout time.Duration `env:"IMAGE_TIMEOUT"`
}

// Auth holds the bearer token for the session.
type Auth struct {
	// Token is the bearer token issued by the backend.
	// Env: AUTH_TOKEN
	Token string `env:"TOKEN"`
}

// Storage groups the local storage settings.
type Storage struct {
	// DB holds the sqlite database settings.
	DB DB `envPrefix:"DB_"`

	// Files holds the image blob directory settings.
	Files Files `envPrefix:"FILES_"`
}

// DB holds connection settings for the local sqlite database.
type DB struct {
	// DSN is the sqlite data source name, usually a file path.
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Files holds settings of the persistent image tier.
type Files struct {
	// ImageDir is the directory holding one file per cached image.
	// Env: STORAGE_FILES_IMAGE_DIR
	ImageDir string `env:"IMAGE_DIR"`
}

// Cache holds TTLs and capacity limits of every cache.
type Cache struct {
	HabitsTTL          time.Duration `env:"HABITS_TTL"`
	FriendsTTL         time.Duration `env:"FRIENDS_TTL"`
	FeedTTL            time.Duration `env:"FEED_TTL"`
	CustomTypesTTL     time.Duration `env:"CUSTOM_TYPES_TTL"`
	VerifiedTodayTTL   time.Duration `env:"VERIFIED_TODAY_TTL"`
	WeeklyProgressTTL  time.Duration `env:"WEEKLY_PROGRESS_TTL"`
	VerificationsTTL   time.Duration `env:"VERIFICATIONS_TTL"`
	StagedDeletionsTTL time.Duration `env:"STAGED_DELETIONS_TTL"`
	FriendRequestsTTL  time.Duration `env:"FRIEND_REQUESTS_TTL"`
	ProfileTTL         time.Duration `env:"PROFILE_TTL"`
	ContactsTTL        time.Duration `env:"CONTACTS_TTL"`

	// ImageMemoryEntries caps the number of images resident in memory.
	// Env: CACHE_IMAGE_MEMORY_ENTRIES
	ImageMemoryEntries int `env:"IMAGE_MEMORY_ENTRIES"`

	// ImageMemoryCost caps the cumulative cost (bytes) of resident images.
	// Env: CACHE_IMAGE_MEMORY_COST
	ImageMemoryCost int `env:"IMAGE_MEMORY_COST"`

	// AnalyticsTTL is the freshness window of the in-memory analytics entry.
	// Env: CACHE_ANALYTICS_TTL
	AnalyticsTTL time.Duration `env:"ANALYTICS_TTL"`

	// AnalyticsUsableFor is the maximum age of a persisted analytics payload
	// that may still be served.
	// Env: CACHE_ANALYTICS_USABLE_FOR
	AnalyticsUsableFor time.Duration `env:"ANALYTICS_USABLE_FOR"`
}

// Sync holds reconciliation heuristics.
type Sync struct {
	// HabitGraceWindow keeps freshly created habits that the snapshot does
	// not list yet.
	// Env: SYNC_HABIT_GRACE_WINDOW
	HabitGraceWindow time.Duration `env:"HABIT_GRACE_WINDOW"`

	// ActivityCooldown is how long after a local mutation the local value
	// is kept over a lower server value.
	// Env: SYNC_ACTIVITY_COOLDOWN
	ActivityCooldown time.Duration `env:"ACTIVITY_COOLDOWN"`

	// RolloverTimezone is the IANA zone whose midnight resets the daily
	// verification flags. Empty means the process local zone.
	// Env: SYNC_ROLLOVER_TIMEZONE
	RolloverTimezone string `env:"ROLLOVER_TIMEZONE"`
}

// Workers holds configuration for background jobs.
type Workers struct {
	// SyncInterval is how often the periodic refresh runs.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`
}

// Debug holds the local debug HTTP surface settings.
type Debug struct {
	// HTTPAddress is the host:port of the debug/metrics listener. Empty
	// disables the listener.
	// Env: DEBUG_ADDRESS
	HTTPAddress string `env:"ADDRESS"`
}

// Log holds log output settings.
type Log struct {
	// Path is the log file; empty logs to stdout.
	// Env: LOG_PATH
	Path string `env:"PATH"`

	// Level is a zerolog level name.
	// Env: LOG_LEVEL
	Level string `env:"LEVEL"`
}

// GetStructuredConfig loads, merges, and validates the configuration from
// all available sources in the following priority order (first source with
// a non-zero value wins):
//  1. Environment variables
//  2. Command-line flags (os.Args)
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder(os.Args[1:]).
		withEnv().
		withFlags().
		withJSON().
		withDefaults().
		build()
}
