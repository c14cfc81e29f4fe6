package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig is the on-disk JSON layout of the configuration.
// Durations are strings such as "30s" or "5m".
type StructuredJSONConfig struct {
	Adapter struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
		ImageTimeout   Duration `json:"image_timeout"`
	} `json:"adapter,omitempty"`

	Auth struct {
		Token string `json:"token"`
	} `json:"auth,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`

		Files struct {
			ImageDir string `json:"image_dir"`
		} `json:"files,omitempty"`
	} `json:"storage,omitempty"`

	Cache struct {
		HabitsTTL          Duration `json:"habits_ttl"`
		FriendsTTL         Duration `json:"friends_ttl"`
		FeedTTL            Duration `json:"feed_ttl"`
		CustomTypesTTL     Duration `json:"custom_types_ttl"`
		VerifiedTodayTTL   Duration `json:"verified_today_ttl"`
		WeeklyProgressTTL  Duration `json:"weekly_progress_ttl"`
		VerificationsTTL   Duration `json:"verifications_ttl"`
		StagedDeletionsTTL Duration `json:"staged_deletions_ttl"`
		FriendRequestsTTL  Duration `json:"friend_requests_ttl"`
		ProfileTTL         Duration `json:"profile_ttl"`
		ContactsTTL        Duration `json:"contacts_ttl"`
		ImageMemoryEntries int      `json:"image_memory_entries"`
		ImageMemoryCost    int      `json:"image_memory_cost"`
		AnalyticsTTL       Duration `json:"analytics_ttl"`
		AnalyticsUsableFor Duration `json:"analytics_usable_for"`
	} `json:"cache,omitempty"`

	Sync struct {
		HabitGraceWindow Duration `json:"habit_grace_window"`
		ActivityCooldown Duration `json:"activity_cooldown"`
		RolloverTimezone string   `json:"rollover_timezone"`
	} `json:"sync,omitempty"`

	Workers struct {
		SyncInterval Duration `json:"sync_interval"`
	} `json:"workers,omitempty"`

	Debug struct {
		HTTPAddress string `json:"http_address"`
	} `json:"debug,omitempty"`

	Log struct {
		Path  string `json:"path"`
		Level string `json:"level"`
	} `json:"log,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var j StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&j); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Adapter: Adapter{
			HTTPAddress:    j.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(j.Adapter.RequestTimeout),
			ImageTimeout:   time.Duration(j.Adapter.ImageTimeout),
		},
		Auth: Auth{Token: j.Auth.Token},
		Storage: Storage{
			DB:    DB{DSN: j.Storage.DB.DSN},
			Files: Files{ImageDir: j.Storage.Files.ImageDir},
		},
		Cache: Cache{
			HabitsTTL:          time.Duration(j.Cache.HabitsTTL),
			FriendsTTL:         time.Duration(j.Cache.FriendsTTL),
			FeedTTL:            time.Duration(j.Cache.FeedTTL),
			CustomTypesTTL:     time.Duration(j.Cache.CustomTypesTTL),
			VerifiedTodayTTL:   time.Duration(j.Cache.VerifiedTodayTTL),
			WeeklyProgressTTL:  time.Duration(j.Cache.WeeklyProgressTTL),
			VerificationsTTL:   time.Duration(j.Cache.VerificationsTTL),
			StagedDeletionsTTL: time.Duration(j.Cache.StagedDeletionsTTL),
			FriendRequestsTTL:  time.Duration(j.Cache.FriendRequestsTTL),
			ProfileTTL:         time.Duration(j.Cache.ProfileTTL),
			ContactsTTL:        time.Duration(j.Cache.ContactsTTL),
			ImageMemoryEntries: j.Cache.ImageMemoryEntries,
			ImageMemoryCost:    j.Cache.ImageMemoryCost,
			AnalyticsTTL:       time.Duration(j.Cache.AnalyticsTTL),
			AnalyticsUsableFor: time.Duration(j.Cache.AnalyticsUsableFor),
		},
		Sync: Sync{
			HabitGraceWindow: time.Duration(j.Sync.HabitGraceWindow),
			ActivityCooldown: time.Duration(j.Sync.ActivityCooldown),
			RolloverTimezone: j.Sync.RolloverTimezone,
		},
		Workers: Workers{SyncInterval: time.Duration(j.Workers.SyncInterval)},
		Debug:   Debug{HTTPAddress: j.Debug.HTTPAddress},
		Log:     Log{Path: j.Log.Path, Level: j.Log.Level},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
