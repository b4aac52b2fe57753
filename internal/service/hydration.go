package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonnyWalker81/hydration/backend/internal/analytics"
	"github.com/JonnyWalker81/hydration/backend/internal/insights"
	"github.com/JonnyWalker81/hydration/backend/internal/logger"
	"github.com/JonnyWalker81/hydration/backend/internal/models"
	"github.com/JonnyWalker81/hydration/backend/internal/observability"
	"github.com/JonnyWalker81/hydration/backend/internal/repository"
	"github.com/JonnyWalker81/hydration/backend/internal/weather"
)

type hydrationService struct {
	intakeRepo   repository.IntakeRepository
	profileRepo  repository.ProfileRepository
	engine       *analytics.Engine
	weather      weather.Provider
	insights     insights.Generator
	lookbackDays int
	defaultLoc   *time.Location
	now          func() time.Time
}

// NewHydrationService creates the analytics service. weather may be nil, in
// which case the engine's default environment applies.
func NewHydrationService(
	intakeRepo repository.IntakeRepository,
	profileRepo repository.ProfileRepository,
	engine *analytics.Engine,
	weatherProvider weather.Provider,
	generator insights.Generator,
	lookbackDays int,
	defaultLoc *time.Location,
) HydrationService {
	if generator == nil {
		generator = insights.Static{}
	}
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	if lookbackDays <= 0 {
		lookbackDays = 30
	}
	return &hydrationService{
		intakeRepo:   intakeRepo,
		profileRepo:  profileRepo,
		engine:       engine,
		weather:      weatherProvider,
		insights:     generator,
		lookbackDays: lookbackDays,
		defaultLoc:   defaultLoc,
		now:          time.Now,
	}
}

// userInputs is everything the engine needs for one user
type userInputs struct {
	profile *models.UserProfile
	events  []models.IntakeEvent
	now     time.Time // in the user's location
}

func (s *hydrationService) load(ctx context.Context, userID string) (*userInputs, error) {
	profile, err := loadProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(profileLocation(ctx, profile, s.defaultLoc))
	since := time.Date(now.Year(), now.Month(), now.Day()-(s.lookbackDays-1), 0, 0, 0, 0, now.Location())

	intake, err := s.intakeRepo.ListByUserSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load intake log: %w", err)
	}

	return &userInputs{profile: profile, events: intake, now: now}, nil
}

// environment fetches current weather for the profile's city. Any failure
// yields an empty snapshot so the engine defaults apply.
func (s *hydrationService) environment(ctx context.Context, profile *models.UserProfile) models.EnvironmentSnapshot {
	if s.weather == nil || profile.City == "" {
		return models.EnvironmentSnapshot{}
	}
	env, err := s.weather.Current(ctx, profile.City)
	if err != nil {
		logger.Ctx(ctx).Warn("weather unavailable, using defaults",
			logger.String("city", profile.City),
			logger.Err(err),
		)
		return models.EnvironmentSnapshot{}
	}
	return env
}

func (s *hydrationService) Analysis(ctx context.Context, userID string) (*models.PatternAnalysis, error) {
	in, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	analysis, err := s.engine.Analyze(in.events, in.now.Location())
	if err != nil {
		return nil, err
	}
	observability.RecordReport(observability.ReportAnalysis)
	return analysis, nil
}

func (s *hydrationService) Recommendations(ctx context.Context, userID string) (*models.Recommendation, error) {
	in, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	env := s.environment(ctx, in.profile)
	rec, err := s.engine.Recommend(*in.profile, env, in.events, in.now.Location())
	if err != nil {
		return nil, err
	}
	observability.RecordReport(observability.ReportRecommendation)
	return rec, nil
}

func (s *hydrationService) Progress(ctx context.Context, userID, period string) (*models.ProgressReport, error) {
	in, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	report, err := s.engine.Report(*in.profile, in.events, period, in.now)
	if err != nil {
		return nil, err
	}
	observability.RecordReport(observability.ReportProgress)
	return report, nil
}

func (s *hydrationService) Weekly(ctx context.Context, userID string) (*models.WeeklyStats, error) {
	profile, err := loadProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(profileLocation(ctx, profile, s.defaultLoc))
	intake, err := s.intakeRepo.ListByUserSince(ctx, userID, analytics.StartOfWeek(now))
	if err != nil {
		return nil, fmt.Errorf("failed to load intake log: %w", err)
	}

	stats, err := s.engine.Weekly(intake, now)
	if err != nil {
		return nil, err
	}
	observability.RecordReport(observability.ReportWeekly)
	return stats, nil
}

func (s *hydrationService) FullReport(ctx context.Context, userID string) (*models.HydrationReport, error) {
	in, err := s.load(ctx, userID)
	if err != nil {
		logger.Ctx(ctx).Error("failed to load report inputs, serving fallback", logger.Err(err))
		return s.fallback(), nil
	}

	report, err := s.buildReport(ctx, in)
	if errors.Is(err, analytics.ErrInvalidInput) {
		return nil, err
	}
	if err != nil {
		logger.Ctx(ctx).Error("failed to build report, serving fallback", logger.Err(err))
		return s.fallback(), nil
	}

	observability.RecordReport(observability.ReportFull)
	return report, nil
}

func (s *hydrationService) buildReport(ctx context.Context, in *userInputs) (*models.HydrationReport, error) {
	loc := in.now.Location()

	analysis, err := s.engine.Analyze(in.events, loc)
	if err != nil {
		return nil, err
	}

	env := s.environment(ctx, in.profile)
	rec, err := s.engine.Recommend(*in.profile, env, in.events, loc)
	if err != nil {
		return nil, err
	}

	progress, err := s.engine.Report(*in.profile, in.events, analytics.DefaultPeriod, in.now)
	if err != nil {
		return nil, err
	}

	report := &models.HydrationReport{
		Analysis:        analysis,
		Recommendations: rec,
		Progress:        progress,
		Insights:        s.insights.Insights(ctx, analysis, rec, progress),
		DailyQuote:      s.insights.Quote(ctx),
	}
	if env.TemperatureC != nil || env.Humidity != nil {
		report.Environment = &env
	}
	return report, nil
}

func (s *hydrationService) fallback() *models.HydrationReport {
	observability.RecordReport(observability.ReportFallback)
	report := analytics.FallbackReport()
	report.Insights = insights.FallbackInsights()
	report.DailyQuote = insights.FallbackQuote
	return report
}
