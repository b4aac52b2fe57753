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

const intakeColumns = `id, user_id, timestamp, amount, source, created_at`

type intakeRepository struct {
	db  *DB
	now func() time.Time
}

// NewIntakeRepository creates a SQLite-backed intake repository
func NewIntakeRepository(db *DB) repository.IntakeRepository {
	return &intakeRepository{db: db, now: time.Now}
}

func (r *intakeRepository) Create(ctx context.Context, event *models.IntakeEvent) (*models.IntakeEvent, bool, error) {
	source := event.Source
	if source == "" {
		source = "manual"
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO intake_events (`+intakeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		event.ID, event.UserID, formatTime(event.Timestamp), event.Amount, source, formatTime(r.now()),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create intake event: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to create intake event: %w", err)
	}

	stored, err := r.GetByID(ctx, event.ID)
	if err != nil {
		return nil, false, err
	}

	return stored, affected > 0, nil
}

func (r *intakeRepository) GetByID(ctx context.Context, id string) (*models.IntakeEvent, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+intakeColumns+` FROM intake_events WHERE id = ?`, id)

	event, err := scanIntake(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("intake event %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get intake event: %w", err)
	}

	return event, nil
}

func (r *intakeRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.IntakeEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+intakeColumns+` FROM intake_events
		WHERE user_id = ?
		ORDER BY timestamp DESC
		LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list intake events: %w", err)
	}
	return collectIntake(rows)
}

func (r *intakeRepository) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]models.IntakeEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+intakeColumns+` FROM intake_events
		WHERE user_id = ? AND timestamp >= ?
		ORDER BY timestamp ASC`,
		userID, formatTime(since),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list intake events: %w", err)
	}
	return collectIntake(rows)
}

func (r *intakeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM intake_events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete intake event: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("intake event %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIntake(s scanner) (*models.IntakeEvent, error) {
	var (
		event              models.IntakeEvent
		timestamp, created string
	)
	if err := s.Scan(&event.ID, &event.UserID, &timestamp, &event.Amount, &event.Source, &created); err != nil {
		return nil, err
	}

	var err error
	if event.Timestamp, err = parseTime(timestamp); err != nil {
		return nil, err
	}
	if event.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &event, nil
}

func collectIntake(rows *sql.Rows) ([]models.IntakeEvent, error) {
	defer rows.Close()

	events := []models.IntakeEvent{}
	for rows.Next() {
		event, err := scanIntake(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan intake event: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate intake events: %w", err)
	}
	return events, nil
}
