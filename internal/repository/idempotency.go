package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JonnyWalker81/hydration/backend/internal/models"
	"github.com/JonnyWalker81/hydration/backend/pkg/supabase"
)

const idempotencyTable = "idempotency_keys"

type idempotencyRepository struct {
	client *supabase.Client
	now    func() time.Time
}

// NewIdempotencyRepository creates a Supabase-backed idempotency repository
func NewIdempotencyRepository(client *supabase.Client) IdempotencyRepository {
	return &idempotencyRepository{client: client, now: time.Now}
}

func (r *idempotencyRepository) Get(ctx context.Context, key, route, userID string) (*models.IdempotencyKey, error) {
	cutoff := r.now().Add(-IdempotencyTTL).UTC()
	body, err := r.client.Query(ctx, idempotencyTable, map[string]interface{}{
		"key":        "eq." + key,
		"route":      "eq." + route,
		"user_id":    "eq." + userID,
		"created_at": "gte." + cutoff.Format(time.RFC3339Nano),
		"limit":      1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query idempotency key: %w", err)
	}

	var records []models.IdempotencyKey
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("failed to decode idempotency key: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// Store keeps the first live response for a key. An expired record is
// deleted first so the new response can take its place.
func (r *idempotencyRepository) Store(ctx context.Context, key, route, userID string, responseBody []byte, statusCode int) error {
	now := r.now().UTC()

	err := r.client.DeleteWhere(ctx, idempotencyTable, map[string]interface{}{
		"key":        "eq." + key,
		"route":      "eq." + route,
		"user_id":    "eq." + userID,
		"created_at": "lt." + now.Add(-IdempotencyTTL).Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to expire idempotency key: %w", err)
	}

	record := models.IdempotencyKey{
		Key:          key,
		Route:        route,
		UserID:       userID,
		ResponseBody: json.RawMessage(responseBody),
		StatusCode:   statusCode,
		CreatedAt:    now,
	}
	if _, err := r.client.InsertIgnoringDuplicates(ctx, idempotencyTable, record, "key,route,user_id"); err != nil {
		return fmt.Errorf("failed to store idempotency key: %w", err)
	}
	return nil
}
