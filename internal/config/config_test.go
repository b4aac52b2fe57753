package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonnyWalker81/hydration/backend/internal/analytics"
	"github.com/JonnyWalker81/hydration/backend/internal/models"
)

func TestLoad_DefaultsWithSupabaseEnv(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_SERVICE_KEY", "service-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StorageSupabase, cfg.Storage.Driver)
	assert.Equal(t, 30, cfg.Analytics.LookbackDays)
	assert.Equal(t, "gpt-4", cfg.Insights.Model)
	assert.Equal(t, 1000, cfg.Insights.MaxTokens)
	assert.InDelta(t, 0.7, cfg.Insights.Temperature, 1e-6)
	assert.Equal(t, ChannelNone, cfg.Notifications.Channel)
	assert.Equal(t, 3, cfg.Notifications.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Notifications.RetryDelay)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_PrefixedEnvOverrides(t *testing.T) {
	t.Setenv("HYDRATION_STORAGE_DRIVER", "sqlite")
	t.Setenv("HYDRATION_STORAGE_SQLITE_PATH", filepath.Join(t.TempDir(), "h.db"))
	t.Setenv("HYDRATION_AUTH_DEV_MODE", "true")
	t.Setenv("HYDRATION_ANALYTICS_LOOKBACK_DAYS", "14")
	t.Setenv("PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, StorageSQLite, cfg.Storage.Driver)
	assert.True(t, cfg.Auth.DevMode)
	assert.Equal(t, 14, cfg.Analytics.LookbackDays)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hydration.yaml")
	yaml := `
storage:
  driver: sqlite
  sqlite_path: /tmp/hydration.db
auth:
  dev_mode: true
analytics:
  base_multipliers:
    high: 1.5
  activity_adjustments:
    moderate: 400
notifications:
  channel: desktop
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ChannelDesktop, cfg.Notifications.Channel)
	assert.Equal(t, 1.5, cfg.Analytics.BaseMultipliers["high"])
	assert.Equal(t, 400, cfg.Analytics.ActivityAdjustments["moderate"])
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:        ServerConfig{Env: "development"},
			Storage:       StorageConfig{Driver: StorageSupabase},
			Supabase:      SupabaseConfig{URL: "https://x.supabase.co", ServiceKey: "k"},
			Analytics:     AnalyticsConfig{LookbackDays: 30, DefaultTimezone: "UTC"},
			Notifications: NotificationsConfig{Channel: ChannelNone},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing supabase url", func(c *Config) { c.Supabase.URL = "" }, true},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }, true},
		{"sqlite with dev auth", func(c *Config) {
			c.Storage = StorageConfig{Driver: StorageSQLite, SQLitePath: "h.db"}
			c.Supabase = SupabaseConfig{}
			c.Auth.DevMode = true
		}, false},
		{"sqlite without any verifier", func(c *Config) {
			c.Storage = StorageConfig{Driver: StorageSQLite, SQLitePath: "h.db"}
			c.Supabase = SupabaseConfig{}
		}, true},
		{"dev auth in production", func(c *Config) {
			c.Server.Env = "production"
			c.Auth.DevMode = true
		}, true},
		{"zero lookback", func(c *Config) { c.Analytics.LookbackDays = 0 }, true},
		{"bad timezone", func(c *Config) { c.Analytics.DefaultTimezone = "Mars/Olympus" }, true},
		{"unknown activity level", func(c *Config) {
			c.Analytics.BaseMultipliers = map[string]float64{"extreme": 2}
		}, true},
		{"sms without twilio", func(c *Config) { c.Notifications.Channel = ChannelSMS }, true},
		{"sms with twilio", func(c *Config) {
			c.Notifications = NotificationsConfig{
				Channel:          ChannelSMS,
				TwilioAccountSID: "AC123",
				TwilioAuthToken:  "token",
				TwilioFromNumber: "+15550000000",
			}
		}, false},
		{"unknown channel", func(c *Config) { c.Notifications.Channel = "pigeon" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEngineConfig(t *testing.T) {
	t.Run("zero values keep defaults", func(t *testing.T) {
		got := AnalyticsConfig{}.EngineConfig()
		assert.Equal(t, analytics.DefaultConfig(), got)
	})

	t.Run("overrides", func(t *testing.T) {
		got := AnalyticsConfig{
			MlPerKg:             35,
			BaseMultipliers:     map[string]float64{"high": 1.4},
			ActivityAdjustments: map[string]int{"low": 100},
			TrendThreshold:      0.2,
		}.EngineConfig()

		assert.Equal(t, 35.0, got.MlPerKg)
		assert.Equal(t, 1.4, got.BaseMultipliers[models.ActivityHigh])
		assert.Equal(t, 1.0, got.BaseMultipliers[models.ActivityModerate])
		assert.Equal(t, 100, got.ActivityAdjustments[models.ActivityLow])
		assert.Equal(t, 0.2, got.TrendThreshold)
	})
}
