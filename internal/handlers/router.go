package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonnyWalker81/hydration/backend/internal/logger"
	"github.com/JonnyWalker81/hydration/backend/internal/middleware"
	"github.com/JonnyWalker81/hydration/backend/internal/repository"
	"github.com/JonnyWalker81/hydration/backend/internal/service"
)

// RouterConfig holds everything the HTTP surface is built from
type RouterConfig struct {
	Env            string
	IsProduction   bool
	AllowedOrigins []string
	RateLimit      int
	RateWindow     time.Duration
	LogBodies      bool
	Logger         logger.Logger

	Verifier    middleware.TokenVerifier
	Idempotency repository.IdempotencyRepository

	Intake    service.IntakeService
	Profile   service.ProfileService
	Hydration service.HydrationService
}

// NewRouter wires middleware and routes onto a new gin engine
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(cfg.Logger, cfg.LogBodies))
	router.Use(middleware.Metrics())
	router.Use(middleware.SecurityHeaders(cfg.IsProduction))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"env":    cfg.Env,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	intakeHandler := NewIntakeHandler(cfg.Intake)
	profileHandler := NewProfileHandler(cfg.Profile)
	hydrationHandler := NewHydrationHandler(cfg.Hydration)

	v1 := router.Group("/api/v1")
	if cfg.RateLimit > 0 {
		v1.Use(middleware.RateLimit(cfg.RateLimit, cfg.RateWindow))
	}
	v1.Use(middleware.Auth(cfg.Verifier))
	if cfg.Idempotency != nil {
		v1.Use(middleware.Idempotency(cfg.Idempotency))
	}
	{
		v1.POST("/intake", intakeHandler.RecordIntake)
		v1.GET("/intake", intakeHandler.ListIntake)
		v1.DELETE("/intake/:id", intakeHandler.DeleteIntake)

		v1.GET("/profile", profileHandler.GetProfile)
		v1.PATCH("/profile", profileHandler.UpdateProfile)

		v1.GET("/analytics/analysis", hydrationHandler.GetAnalysis)
		v1.GET("/analytics/recommendations", hydrationHandler.GetRecommendations)
		v1.GET("/analytics/progress", hydrationHandler.GetProgress)
		v1.GET("/analytics/weekly", hydrationHandler.GetWeekly)
		v1.GET("/analytics/report", hydrationHandler.GetReport)
	}

	return router
}
