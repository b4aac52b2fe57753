package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/JonnyWalker81/hydration/backend/internal/analytics"
	"github.com/JonnyWalker81/hydration/backend/internal/models"
)

// Storage drivers
const (
	StorageSupabase = "supabase"
	StorageSQLite   = "sqlite"
)

// Notification channels
const (
	ChannelNone    = "none"
	ChannelSMS     = "sms"
	ChannelDesktop = "desktop"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Supabase      SupabaseConfig      `mapstructure:"supabase"`
	Auth          AuthConfig          `mapstructure:"auth"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	Analytics     AnalyticsConfig     `mapstructure:"analytics"`
	Insights      InsightsConfig      `mapstructure:"insights"`
	Weather       WeatherConfig       `mapstructure:"weather"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
}

type ServerConfig struct {
	Port               string   `mapstructure:"port"`
	Env                string   `mapstructure:"env"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	LogBodies bool   `mapstructure:"log_bodies"`
}

type StorageConfig struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

// AuthConfig controls bearer token verification.
// DevMode accepts the bearer token itself as the user ID and is refused in production.
type AuthConfig struct {
	DevMode bool `mapstructure:"dev_mode"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// AnalyticsConfig tunes the analytics engine and the log window fed to it.
// Zero values keep the engine defaults.
type AnalyticsConfig struct {
	LookbackDays          int                `mapstructure:"lookback_days"`
	DefaultTimezone       string             `mapstructure:"default_timezone"`
	MlPerKg               float64            `mapstructure:"ml_per_kg"`
	ReferenceHeightCm     float64            `mapstructure:"reference_height_cm"`
	BaseMultipliers       map[string]float64 `mapstructure:"base_multipliers"`
	ActivityAdjustments   map[string]int     `mapstructure:"activity_adjustments"`
	HotDayTemperatureC    float64            `mapstructure:"hot_day_temperature_c"`
	TrendThreshold        float64            `mapstructure:"trend_threshold"`
	StreakAchievementDays int                `mapstructure:"streak_achievement_days"`
	GoalRateAchievement   float64            `mapstructure:"goal_rate_achievement"`
}

type InsightsConfig struct {
	OpenAIAPIKey string        `mapstructure:"openai_api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Model        string        `mapstructure:"model"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	Temperature  float32       `mapstructure:"temperature"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type WeatherConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type NotificationsConfig struct {
	Channel          string        `mapstructure:"channel"`
	TwilioAccountSID string        `mapstructure:"twilio_account_sid"`
	TwilioAuthToken  string        `mapstructure:"twilio_auth_token"`
	TwilioFromNumber string        `mapstructure:"twilio_from_number"`
	MaxAttempts      int           `mapstructure:"max_attempts"`
	RetryDelay       time.Duration `mapstructure:"retry_delay"`
}

type KafkaConfig struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

// envFiles are tried in order; the first one that exists is loaded
var envFiles = []string{".env", "config/.env"}

// Load reads configuration from .env, environment variables and an optional
// YAML file. configFile overrides the default search for config.yaml.
func Load(configFile string) (*Config, error) {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", path, err)
			}
			break
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("HYDRATION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional unprefixed names used by hosting platforms and vendor SDKs
	_ = v.BindEnv("server.port", "HYDRATION_SERVER_PORT", "PORT")
	_ = v.BindEnv("supabase.url", "HYDRATION_SUPABASE_URL", "SUPABASE_URL")
	_ = v.BindEnv("supabase.service_key", "HYDRATION_SUPABASE_SERVICE_KEY", "SUPABASE_SERVICE_KEY")
	_ = v.BindEnv("insights.openai_api_key", "HYDRATION_INSIGHTS_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("weather.api_key", "HYDRATION_WEATHER_API_KEY", "OPENWEATHER_API_KEY")
	_ = v.BindEnv("notifications.twilio_account_sid", "HYDRATION_NOTIFICATIONS_TWILIO_ACCOUNT_SID", "TWILIO_ACCOUNT_SID")
	_ = v.BindEnv("notifications.twilio_auth_token", "HYDRATION_NOTIFICATIONS_TWILIO_AUTH_TOKEN", "TWILIO_AUTH_TOKEN")
	_ = v.BindEnv("notifications.twilio_from_number", "HYDRATION_NOTIFICATIONS_TWILIO_FROM_NUMBER", "TWILIO_PHONE_NUMBER")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.cors_allowed_origins", []string{})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.log_bodies", false)

	v.SetDefault("storage.driver", StorageSupabase)
	v.SetDefault("storage.sqlite_path", "data/hydration.db")

	v.SetDefault("auth.dev_mode", false)

	v.SetDefault("rate_limit.requests", 120)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("analytics.lookback_days", 30)
	v.SetDefault("analytics.default_timezone", "UTC")

	v.SetDefault("insights.base_url", "")
	v.SetDefault("insights.model", "gpt-4")
	v.SetDefault("insights.max_tokens", 1000)
	v.SetDefault("insights.temperature", 0.7)
	v.SetDefault("insights.timeout", 15*time.Second)

	v.SetDefault("weather.base_url", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("weather.timeout", 5*time.Second)

	v.SetDefault("notifications.channel", ChannelNone)
	v.SetDefault("notifications.max_attempts", 3)
	v.SetDefault("notifications.retry_delay", 2*time.Second)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "hydration")
}

// Validate checks that all required configuration values are present
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageSupabase:
		if c.Supabase.URL == "" {
			return fmt.Errorf("SUPABASE_URL is required for the supabase storage driver")
		}
		if c.Supabase.ServiceKey == "" {
			return fmt.Errorf("SUPABASE_SERVICE_KEY is required for the supabase storage driver")
		}
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for the sqlite storage driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Auth.DevMode && c.IsProduction() {
		return fmt.Errorf("auth.dev_mode cannot be enabled in production")
	}
	if c.Storage.Driver == StorageSQLite && !c.Auth.DevMode && c.Supabase.URL == "" {
		return fmt.Errorf("sqlite storage needs auth.dev_mode or SUPABASE_URL for token verification")
	}

	if c.Analytics.LookbackDays <= 0 {
		return fmt.Errorf("analytics.lookback_days must be positive")
	}
	if _, err := time.LoadLocation(c.Analytics.DefaultTimezone); err != nil {
		return fmt.Errorf("analytics.default_timezone: %w", err)
	}
	for level := range c.Analytics.BaseMultipliers {
		if !models.ActivityLevel(level).Valid() {
			return fmt.Errorf("analytics.base_multipliers: unknown activity level %q", level)
		}
	}
	for level := range c.Analytics.ActivityAdjustments {
		if !models.ActivityLevel(level).Valid() {
			return fmt.Errorf("analytics.activity_adjustments: unknown activity level %q", level)
		}
	}

	switch c.Notifications.Channel {
	case ChannelNone, ChannelDesktop:
	case ChannelSMS:
		n := c.Notifications
		if n.TwilioAccountSID == "" || n.TwilioAuthToken == "" || n.TwilioFromNumber == "" {
			return fmt.Errorf("TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_PHONE_NUMBER are required for sms notifications")
		}
	default:
		return fmt.Errorf("unknown notifications channel %q", c.Notifications.Channel)
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// EngineConfig builds the immutable analytics configuration
func (a AnalyticsConfig) EngineConfig() analytics.Config {
	cfg := analytics.DefaultConfig()

	if a.MlPerKg > 0 {
		cfg.MlPerKg = a.MlPerKg
	}
	if a.ReferenceHeightCm > 0 {
		cfg.ReferenceHeightCm = a.ReferenceHeightCm
	}
	for level, v := range a.BaseMultipliers {
		cfg.BaseMultipliers[models.ActivityLevel(level)] = v
	}
	for level, v := range a.ActivityAdjustments {
		cfg.ActivityAdjustments[models.ActivityLevel(level)] = v
	}
	if a.HotDayTemperatureC != 0 {
		cfg.HotDayTemperatureC = a.HotDayTemperatureC
	}
	if a.TrendThreshold > 0 {
		cfg.TrendThreshold = a.TrendThreshold
	}
	if a.StreakAchievementDays > 0 {
		cfg.StreakAchievementDays = a.StreakAchievementDays
	}
	if a.GoalRateAchievement > 0 {
		cfg.GoalRateAchievement = a.GoalRateAchievement
	}

	return cfg
}
