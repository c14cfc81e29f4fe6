package config

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeTempJSONConfig(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	f, err := os.CreateTemp(t.TempDir(), "config-*.json")
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

// ── newConfigBuilder ──────────────────────────────────────────────────────────

// TestNewConfigBuilder_InitialState verifies that a freshly created builder
// has no error and an empty configs slice.
func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder(nil)
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

// ── build ─────────────────────────────────────────────────────────────────────

// TestBuild_EmptyBuilder verifies that a builder without any source fails
// validation instead of returning a half-empty config.
func TestBuild_EmptyBuilder(t *testing.T) {
	cfg, err := newConfigBuilder(nil).build()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrInvalidAdapterConfigs)
}

// TestBuild_PropagatesBuilderError verifies that a pre-set b.err is wrapped
// and returned, with nil config.
func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder(nil)
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

// TestBuild_DefaultsFillGaps verifies that defaults complete a config that
// only names the backend.
func TestBuild_DefaultsFillGaps(t *testing.T) {
	b := newConfigBuilder(nil)
	b.configs = append(b.configs, &StructuredConfig{Adapter: Adapter{HTTPAddress: "https://api.test"}})
	b.withDefaults()

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "https://api.test", cfg.Adapter.HTTPAddress)
	assert.Equal(t, 30*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, 15*time.Second, cfg.Adapter.ImageTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Cache.VerifiedTodayTTL)
	assert.Equal(t, 30*time.Minute, cfg.Cache.FriendsTTL)
	assert.Equal(t, 5*time.Second, cfg.Sync.HabitGraceWindow)
}

// TestBuild_EarlierSourceWins verifies that defaults never override a value
// supplied by an earlier source.
func TestBuild_EarlierSourceWins(t *testing.T) {
	b := newConfigBuilder(nil)
	b.configs = append(b.configs,
		&StructuredConfig{Adapter: Adapter{HTTPAddress: "https://first"}, Cache: Cache{HabitsTTL: time.Minute}},
		&StructuredConfig{Adapter: Adapter{HTTPAddress: "https://second"}},
	)
	b.withDefaults()

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "https://first", cfg.Adapter.HTTPAddress)
	assert.Equal(t, time.Minute, cfg.Cache.HabitsTTL)
}

// ── withEnv ───────────────────────────────────────────────────────────────────

// TestWithEnv_ReturnsBuilder verifies the fluent interface.
func TestWithEnv_ReturnsBuilder(t *testing.T) {
	b := newConfigBuilder(nil)
	assert.Same(t, b, b.withEnv())
}

// TestWithEnv_ReadsEnvVars verifies that environment variables are picked up.
func TestWithEnv_ReadsEnvVars(t *testing.T) {
	t.Setenv("ADAPTER_ADDRESS", "https://env.test")
	t.Setenv("CACHE_FEED_TTL", "90s")

	b := newConfigBuilder(nil)
	b.withEnv()

	require.Len(t, b.configs, 1)
	assert.Equal(t, "https://env.test", b.configs[0].Adapter.HTTPAddress)
	assert.Equal(t, 90*time.Second, b.configs[0].Cache.FeedTTL)
}

// ── withFlags ─────────────────────────────────────────────────────────────────

// TestWithFlags_ReturnsBuilder verifies the fluent interface.
func TestWithFlags_ReturnsBuilder(t *testing.T) {
	b := newConfigBuilder([]string{"-a", "https://flag.test"})
	assert.Same(t, b, b.withFlags())
	require.Len(t, b.configs, 1)
	assert.Equal(t, "https://flag.test", b.configs[0].Adapter.HTTPAddress)
}

// TestWithFlags_SetsErrorOnUnknownFlag verifies that a bad flag is recorded.
func TestWithFlags_SetsErrorOnUnknownFlag(t *testing.T) {
	b := newConfigBuilder([]string{"-no-such-flag"})
	b.withFlags()
	assert.Error(t, b.err)
}

// ── withJSON ──────────────────────────────────────────────────────────────────

// TestWithJSON_NoOp_WhenNoPathSet verifies that withJSON does nothing when
// no config has a JSONFilePath.
func TestWithJSON_NoOp_WhenNoPathSet(t *testing.T) {
	b := newConfigBuilder(nil)
	b.configs = append(b.configs, &StructuredConfig{})
	b.withJSON()

	assert.Len(t, b.configs, 1)
	assert.NoError(t, b.err)
}

// TestWithJSON_AppendsConfig_WhenValidFile verifies that a valid JSON file is
// parsed and appended.
func TestWithJSON_AppendsConfig_WhenValidFile(t *testing.T) {
	payload := StructuredJSONConfig{}
	payload.Adapter.HTTPAddress = "https://json.test"
	payload.Workers.SyncInterval = Duration(time.Minute)
	path := writeTempJSONConfig(t, payload)

	b := newConfigBuilder(nil)
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: path})
	b.withJSON()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 2)
	assert.Equal(t, "https://json.test", b.configs[1].Adapter.HTTPAddress)
	assert.Equal(t, time.Minute, b.configs[1].Workers.SyncInterval)
}

// TestWithJSON_SetsError_WhenFileNotFound verifies that a missing file path
// sets b.err.
func TestWithJSON_SetsError_WhenFileNotFound(t *testing.T) {
	b := newConfigBuilder(nil)
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: "/nonexistent/config.json"})
	b.withJSON()

	assert.Error(t, b.err)
}

// TestWithJSON_UsesLastPath verifies that when multiple configs have a
// JSONFilePath, the last non-empty one wins.
func TestWithJSON_UsesLastPath(t *testing.T) {
	payload := StructuredJSONConfig{}
	payload.Log.Level = "warn"
	path := writeTempJSONConfig(t, payload)

	b := newConfigBuilder(nil)
	b.configs = append(b.configs,
		&StructuredConfig{JSONFilePath: "/first/is/ignored.json"},
		&StructuredConfig{JSONFilePath: path},
	)
	b.withJSON()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 3)
	assert.Equal(t, "warn", b.configs[2].Log.Level)
}

// ── validate ──────────────────────────────────────────────────────────────────

func TestValidate(t *testing.T) {
	valid := func() *StructuredConfig {
		cfg := Defaults()
		cfg.Adapter.HTTPAddress = "https://api.test"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *StructuredConfig)
		wantErr error
	}{
		{"valid", func(c *StructuredConfig) {}, nil},
		{"no address", func(c *StructuredConfig) { c.Adapter.HTTPAddress = "" }, ErrInvalidAdapterConfigs},
		{"no image timeout", func(c *StructuredConfig) { c.Adapter.ImageTimeout = 0 }, ErrInvalidAdapterConfigs},
		{"no dsn", func(c *StructuredConfig) { c.Storage.DB.DSN = "" }, ErrInvalidStorageConfigs},
		{"no image dir", func(c *StructuredConfig) { c.Storage.Files.ImageDir = "" }, ErrInvalidStorageConfigs},
		{"zero ttl", func(c *StructuredConfig) { c.Cache.FeedTTL = 0 }, ErrInvalidCacheConfigs},
		{"zero image cost", func(c *StructuredConfig) { c.Cache.ImageMemoryCost = 0 }, ErrInvalidCacheConfigs},
		{"usable below ttl", func(c *StructuredConfig) { c.Cache.AnalyticsUsableFor = time.Second }, ErrInvalidCacheConfigs},
		{"negative cooldown", func(c *StructuredConfig) { c.Sync.ActivityCooldown = -time.Second }, ErrInvalidSyncConfigs},
		{"bad timezone", func(c *StructuredConfig) { c.Sync.RolloverTimezone = "Mars/Olympus" }, ErrInvalidSyncConfigs},
		{"zero interval", func(c *StructuredConfig) { c.Workers.SyncInterval = 0 }, ErrInvalidWorkerConfigs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
