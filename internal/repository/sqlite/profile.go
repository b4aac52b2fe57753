package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/JonnyWalker81/hydration/backend/internal/models"
	"github.com/JonnyWalker81/hydration/backend/internal/repository"
)

const profileColumns = `id, name, phone, gender, weight_kg, height_cm, activity_level,
	daily_goal, timezone, city, notifications_enabled, updated_at`

type profileRepository struct {
	db *DB
}

// NewProfileRepository creates a SQLite-backed profile repository
func NewProfileRepository(db *DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, userID)

	profile, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", userID, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return profile, nil
}

func (r *profileRepository) Upsert(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			phone = excluded.phone,
			gender = excluded.gender,
			weight_kg = excluded.weight_kg,
			height_cm = excluded.height_cm,
			activity_level = excluded.activity_level,
			daily_goal = excluded.daily_goal,
			timezone = excluded.timezone,
			city = excluded.city,
			notifications_enabled = excluded.notifications_enabled,
			updated_at = excluded.updated_at`,
		p.ID, p.Name, p.Phone, p.Gender, nullFloat(p.WeightKg), nullFloat(p.HeightCm), string(p.ActivityLevel),
		p.DailyGoal, p.Timezone, p.City, p.NotificationsEnabled, formatTime(p.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}

	return r.Get(ctx, p.ID)
}

func (r *profileRepository) ListNotifiable(ctx context.Context) ([]models.UserProfile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+profileColumns+` FROM profiles
		WHERE notifications_enabled = 1 AND phone <> ''
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifiable profiles: %w", err)
	}
	defer rows.Close()

	profiles := []models.UserProfile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profiles: %w", err)
	}
	return profiles, nil
}

func scanProfile(s scanner) (*models.UserProfile, error) {
	var (
		p                models.UserProfile
		weight, height   sql.NullFloat64
		activity, update string
	)
	err := s.Scan(&p.ID, &p.Name, &p.Phone, &p.Gender, &weight, &height, &activity,
		&p.DailyGoal, &p.Timezone, &p.City, &p.NotificationsEnabled, &update)
	if err != nil {
		return nil, err
	}

	if weight.Valid {
		p.WeightKg = models.Float64(weight.Float64)
	}
	if height.Valid {
		p.HeightCm = models.Float64(height.Float64)
	}
	p.ActivityLevel = models.ActivityLevel(activity)
	if p.UpdatedAt, err = parseTime(update); err != nil {
		return nil, err
	}
	return &p, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
