package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/JonnyWalker81/hydration/backend/internal/analytics"
	"github.com/JonnyWalker81/hydration/backend/internal/apierror"
	"github.com/JonnyWalker81/hydration/backend/internal/handlers"
	"github.com/JonnyWalker81/hydration/backend/internal/logger"
	"github.com/JonnyWalker81/hydration/backend/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server and listen for requests.`,
	RunE:  runServe,
}

var (
	port string
)

const shutdownTimeout = 10 * time.Second

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if port != "" {
		cfg.Server.Port = port
	}

	logger.Info("starting hydration API server",
		logger.String("env", cfg.Server.Env),
		logger.String("storage", cfg.Storage.Driver),
	)

	st, err := openStores(cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.Error("failed to close storage", logger.Err(err))
		}
	}()

	defaultLoc, err := time.LoadLocation(cfg.Analytics.DefaultTimezone)
	if err != nil {
		return fmt.Errorf("invalid default timezone: %w", err)
	}

	publisher := newPublisher(cfg.Kafka)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close event publisher", logger.Err(err))
		}
	}()

	engine := analytics.New(cfg.Analytics.EngineConfig())
	notifier := newNotifier(cfg.Notifications)

	background := &service.Background{}
	intakeService := service.NewIntakeService(st.intake, st.profiles, notifier, publisher, defaultLoc, background)
	profileService := service.NewProfileService(st.profiles)
	hydrationService := service.NewHydrationService(
		st.intake,
		st.profiles,
		engine,
		newWeather(cfg.Weather),
		newInsights(cfg.Insights),
		cfg.Analytics.LookbackDays,
		defaultLoc,
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	apierror.UseJSONFieldNames()

	router := handlers.NewRouter(handlers.RouterConfig{
		Env:            cfg.Server.Env,
		IsProduction:   cfg.IsProduction(),
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		RateLimit:      cfg.RateLimit.Requests,
		RateWindow:     cfg.RateLimit.Window,
		LogBodies:      cfg.Logging.LogBodies,
		Logger:         logger.Default(),
		Verifier:       st.verifier,
		Idempotency:    st.idempotency,
		Intake:         intakeService,
		Profile:        profileService,
		Hydration:      hydrationService,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", logger.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	// Drain goal notifications and publishes before the deferred publisher Close
	if err := background.Wait(shutdownCtx); err != nil {
		logger.Warn("background work did not finish before shutdown", logger.Err(err))
	}
	return nil
}
