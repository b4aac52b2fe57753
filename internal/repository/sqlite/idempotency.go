package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/JonnyWalker81/hydration/backend/internal/models"
	"github.com/JonnyWalker81/hydration/backend/internal/repository"
)

type idempotencyRepository struct {
	db  *DB
	now func() time.Time
}

// NewIdempotencyRepository creates a SQLite-backed idempotency repository
func NewIdempotencyRepository(db *DB) repository.IdempotencyRepository {
	return &idempotencyRepository{db: db, now: time.Now}
}

func (r *idempotencyRepository) Get(ctx context.Context, key, route, userID string) (*models.IdempotencyKey, error) {
	var (
		record  models.IdempotencyKey
		body    string
		created string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT key, route, user_id, response_body, status_code, created_at
		FROM idempotency_keys
		WHERE key = ? AND route = ? AND user_id = ?`,
		key, route, userID,
	).Scan(&record.Key, &record.Route, &record.UserID, &body, &record.StatusCode, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query idempotency key: %w", err)
	}

	record.ResponseBody = []byte(body)
	if record.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if r.now().Sub(record.CreatedAt) > repository.IdempotencyTTL {
		return nil, nil
	}
	return &record, nil
}

// Store keeps the first live response for a key. An expired record is replaced.
func (r *idempotencyRepository) Store(ctx context.Context, key, route, userID string, responseBody []byte, statusCode int) error {
	now := r.now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO idempotency_keys (key, route, user_id, response_body, status_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key, route, user_id) DO UPDATE SET
			response_body = excluded.response_body,
			status_code = excluded.status_code,
			created_at = excluded.created_at
		WHERE idempotency_keys.created_at < ?`,
		key, route, userID, string(responseBody), statusCode, formatTime(now),
		formatTime(now.Add(-repository.IdempotencyTTL)),
	)
	if err != nil {
		return fmt.Errorf("failed to store idempotency key: %w", err)
	}
	return nil
}
