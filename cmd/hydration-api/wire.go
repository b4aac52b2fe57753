package main

import (
	"fmt"

	"github.com/JonnyWalker81/hydration/backend/internal/config"
	"github.com/JonnyWalker81/hydration/backend/internal/events"
	"github.com/JonnyWalker81/hydration/backend/internal/insights"
	"github.com/JonnyWalker81/hydration/backend/internal/logger"
	"github.com/JonnyWalker81/hydration/backend/internal/middleware"
	"github.com/JonnyWalker81/hydration/backend/internal/notify"
	"github.com/JonnyWalker81/hydration/backend/internal/repository"
	"github.com/JonnyWalker81/hydration/backend/internal/repository/sqlite"
	"github.com/JonnyWalker81/hydration/backend/internal/weather"
	"github.com/JonnyWalker81/hydration/backend/pkg/supabase"
)

// stores bundles the repositories of the configured storage driver
type stores struct {
	intake      repository.IntakeRepository
	profiles    repository.ProfileRepository
	idempotency repository.IdempotencyRepository
	verifier    middleware.TokenVerifier
	close       func() error
}

func openStores(cfg *config.Config) (*stores, error) {
	var verifier middleware.TokenVerifier
	var client *supabase.Client
	if cfg.Supabase.URL != "" {
		client = supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
		verifier = client
	}
	if cfg.Auth.DevMode {
		logger.Warn("auth dev mode enabled: bearer tokens are used as user IDs")
		verifier = middleware.DevVerifier{}
	}

	switch cfg.Storage.Driver {
	case config.StorageSQLite:
		db, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("using sqlite storage", logger.String("path", db.Path()))
		return &stores{
			intake:      sqlite.NewIntakeRepository(db),
			profiles:    sqlite.NewProfileRepository(db),
			idempotency: sqlite.NewIdempotencyRepository(db),
			verifier:    verifier,
			close:       db.Close,
		}, nil
	case config.StorageSupabase:
		logger.Info("using supabase storage", logger.String("url", cfg.Supabase.URL))
		return &stores{
			intake:      repository.NewIntakeRepository(client),
			profiles:    repository.NewProfileRepository(client),
			idempotency: repository.NewIdempotencyRepository(client),
			verifier:    verifier,
			close:       func() error { return nil },
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// newNotifier builds the configured channel wrapped with retries
func newNotifier(cfg config.NotificationsConfig) notify.Notifier {
	var n notify.Notifier
	switch cfg.Channel {
	case config.ChannelSMS:
		n = notify.NewSMS(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	case config.ChannelDesktop:
		n = notify.NewDesktop()
	default:
		return notify.Noop{}
	}
	return notify.WithRetry(n, cfg.MaxAttempts, cfg.RetryDelay)
}

func newPublisher(cfg config.KafkaConfig) events.Publisher {
	if len(cfg.Brokers) == 0 {
		return events.Noop{}
	}
	logger.Info("publishing domain events to kafka", logger.Any("brokers", cfg.Brokers))
	return events.NewKafkaPublisher(cfg.Brokers, cfg.TopicPrefix)
}

func newInsights(cfg config.InsightsConfig) insights.Generator {
	if cfg.OpenAIAPIKey == "" {
		return insights.Static{}
	}
	return insights.NewOpenAI(insights.Config{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
	})
}

// newWeather returns nil when no API key is configured
func newWeather(cfg config.WeatherConfig) weather.Provider {
	if cfg.APIKey == "" {
		return nil
	}
	return weather.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout)
}
