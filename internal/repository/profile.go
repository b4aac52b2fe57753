package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JonnyWalker81/hydration/backend/internal/models"
	"github.com/JonnyWalker81/hydration/backend/pkg/supabase"
)

const profileTable = "profiles"

type profileRepository struct {
	client *supabase.Client
}

// NewProfileRepository creates a Supabase-backed profile repository
func NewProfileRepository(client *supabase.Client) ProfileRepository {
	return &profileRepository{client: client}
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	query := map[string]interface{}{
		"id": fmt.Sprintf("eq.%s", userID),
	}

	profiles, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if len(profiles) == 0 {
		return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}

	return &profiles[0], nil
}

func (r *profileRepository) Upsert(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error) {
	// Every column is sent so cleared fields are written as NULL
	data := map[string]interface{}{
		"id":                    profile.ID,
		"name":                  profile.Name,
		"phone":                 profile.Phone,
		"gender":                profile.Gender,
		"weight_kg":             profile.WeightKg,
		"height_cm":             profile.HeightCm,
		"activity_level":        profile.ActivityLevel,
		"daily_goal":            profile.DailyGoal,
		"timezone":              profile.Timezone,
		"city":                  profile.City,
		"notifications_enabled": profile.NotificationsEnabled,
		"updated_at":            profile.UpdatedAt.UTC(),
	}

	body, err := r.client.Upsert(ctx, profileTable, data, "id")
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}

	var profiles []models.UserProfile
	if err := json.Unmarshal(body, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(profiles) == 0 {
		return nil, fmt.Errorf("no profile returned")
	}

	return &profiles[0], nil
}

func (r *profileRepository) ListNotifiable(ctx context.Context) ([]models.UserProfile, error) {
	query := map[string]interface{}{
		"notifications_enabled": "eq.true",
		"phone":                 "neq.",
	}

	profiles, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifiable profiles: %w", err)
	}

	return profiles, nil
}

func (r *profileRepository) query(ctx context.Context, query map[string]interface{}) ([]models.UserProfile, error) {
	body, err := r.client.Query(ctx, profileTable, query)
	if err != nil {
		return nil, err
	}

	var profiles []models.UserProfile
	if err := json.Unmarshal(body, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return profiles, nil
}
