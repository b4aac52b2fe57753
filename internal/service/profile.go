package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonnyWalker81/hydration/backend/internal/analytics"
	"github.com/JonnyWalker81/hydration/backend/internal/logger"
	"github.com/JonnyWalker81/hydration/backend/internal/models"
	"github.com/JonnyWalker81/hydration/backend/internal/repository"
)

type profileService struct {
	profileRepo repository.ProfileRepository
	now         func() time.Time
}

// NewProfileService creates a new profile service
func NewProfileService(profileRepo repository.ProfileRepository) ProfileService {
	return &profileService{profileRepo: profileRepo, now: time.Now}
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	return loadProfile(ctx, s.profileRepo, userID)
}

func (s *profileService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.UserProfile, error) {
	profile, err := loadProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return nil, err
	}

	req.Name.ApplyTo(&profile.Name)
	req.Phone.ApplyTo(&profile.Phone)
	req.Gender.ApplyTo(&profile.Gender)
	req.WeightKg.ApplyTo(&profile.WeightKg)
	req.HeightCm.ApplyTo(&profile.HeightCm)
	req.Timezone.ApplyTo(&profile.Timezone)
	req.City.ApplyTo(&profile.City)

	level := string(profile.ActivityLevel)
	req.ActivityLevel.ApplyTo(&level)
	profile.ActivityLevel = models.ActivityLevel(strings.ToLower(level))

	if req.DailyGoal != nil {
		profile.DailyGoal = *req.DailyGoal
	}
	if req.NotificationsEnabled != nil {
		profile.NotificationsEnabled = *req.NotificationsEnabled
	}

	if err := analytics.ValidateProfile(*profile); err != nil {
		return nil, err
	}
	if profile.DailyGoal < 0 {
		return nil, &analytics.ValidationError{Field: "daily_goal", Message: "must not be negative"}
	}
	if profile.Timezone != "" {
		if _, err := time.LoadLocation(profile.Timezone); err != nil {
			return nil, &analytics.ValidationError{Field: "timezone", Message: "must be an IANA time zone name"}
		}
	}

	profile.UpdatedAt = s.now().UTC()

	saved, err := s.profileRepo.Upsert(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	logger.Ctx(ctx).Info("profile updated",
		logger.String("activity_level", string(saved.ActivityLevel)),
		logger.Int("daily_goal", saved.DailyGoal),
	)
	return saved, nil
}

// loadProfile returns the stored profile or an empty one for userID.
// Absent attributes are resolved to defaults by the analytics engine.
func loadProfile(ctx context.Context, repo repository.ProfileRepository, userID string) (*models.UserProfile, error) {
	profile, err := repo.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return &models.UserProfile{ID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}

// profileLocation resolves the profile's time zone, falling back to def
func profileLocation(ctx context.Context, profile *models.UserProfile, def *time.Location) *time.Location {
	if profile.Timezone == "" {
		return def
	}
	loc, err := time.LoadLocation(profile.Timezone)
	if err != nil {
		logger.Ctx(ctx).Warn("invalid profile timezone, using default",
			logger.String("timezone", profile.Timezone),
			logger.Err(err),
		)
		return def
	}
	return loc
}
