package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JonnyWalker81/hydration/backend/internal/models"
	"github.com/JonnyWalker81/hydration/backend/pkg/supabase"
)

const intakeTable = "intake_events"

type intakeRepository struct {
	client *supabase.Client
}

// NewIntakeRepository creates a Supabase-backed intake repository
func NewIntakeRepository(client *supabase.Client) IntakeRepository {
	return &intakeRepository{client: client}
}

func (r *intakeRepository) Create(ctx context.Context, event *models.IntakeEvent) (*models.IntakeEvent, bool, error) {
	data := map[string]interface{}{
		"id":        event.ID,
		"user_id":   event.UserID,
		"timestamp": event.Timestamp.UTC(),
		"amount":    event.Amount,
		"source":    event.Source,
	}

	body, err := r.client.Insert(ctx, intakeTable, data)
	if err != nil {
		// Offline clients retry with the same UUIDv7; the first write wins
		if supabase.IsConflict(err) {
			existing, getErr := r.GetByID(ctx, event.ID)
			if getErr != nil {
				return nil, false, fmt.Errorf("failed to load existing intake event: %w", getErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to create intake event: %w", err)
	}

	var events []models.IntakeEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(events) == 0 {
		return nil, false, fmt.Errorf("no intake event returned")
	}

	return &events[0], true, nil
}

func (r *intakeRepository) GetByID(ctx context.Context, id string) (*models.IntakeEvent, error) {
	query := map[string]interface{}{
		"id": fmt.Sprintf("eq.%s", id),
	}

	events, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get intake event: %w", err)
	}

	if len(events) == 0 {
		return nil, fmt.Errorf("intake event %s: %w", id, ErrNotFound)
	}

	return &events[0], nil
}

func (r *intakeRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.IntakeEvent, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"order":   "timestamp.desc",
		"limit":   limit,
		"offset":  offset,
	}

	events, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list intake events: %w", err)
	}

	return events, nil
}

func (r *intakeRepository) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]models.IntakeEvent, error) {
	query := map[string]interface{}{
		"user_id":   fmt.Sprintf("eq.%s", userID),
		"timestamp": fmt.Sprintf("gte.%s", since.UTC().Format(time.RFC3339)),
		"order":     "timestamp.asc",
	}

	events, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list intake events: %w", err)
	}

	return events, nil
}

func (r *intakeRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Delete(ctx, intakeTable, id); err != nil {
		var se *supabase.Error
		if errors.As(err, &se) && se.StatusCode == 404 {
			return fmt.Errorf("intake event %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to delete intake event: %w", err)
	}
	return nil
}

func (r *intakeRepository) query(ctx context.Context, query map[string]interface{}) ([]models.IntakeEvent, error) {
	body, err := r.client.Query(ctx, intakeTable, query)
	if err != nil {
		return nil, err
	}

	var events []models.IntakeEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return events, nil
}
