package repository

//go:generate mockgen -source=interfaces.go -destination=mocks/repository.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"github.com/JonnyWalker81/hydration/backend/internal/models"
)

// ErrNotFound is returned when a lookup by ID matches nothing
var ErrNotFound = errors.New("not found")

// IdempotencyTTL bounds how long a stored response can be replayed.
// Offline clients retry queued intake for up to a day.
const IdempotencyTTL = 24 * time.Hour

// IntakeRepository defines the interface for intake event data access
type IntakeRepository interface {
	// Create stores event. When an event with the same ID already exists the
	// stored row is returned with created=false and nothing is written.
	Create(ctx context.Context, event *models.IntakeEvent) (stored *models.IntakeEvent, created bool, err error)
	GetByID(ctx context.Context, id string) (*models.IntakeEvent, error)
	// ListByUser returns the newest events first
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.IntakeEvent, error)
	// ListByUserSince returns events at or after since, oldest first
	ListByUserSince(ctx context.Context, userID string, since time.Time) ([]models.IntakeEvent, error)
	Delete(ctx context.Context, id string) error
}

// ProfileRepository defines the interface for user profile data access
type ProfileRepository interface {
	// Get returns ErrNotFound when the user has never saved a profile
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	Upsert(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error)
	// ListNotifiable returns profiles with notifications enabled and a phone number
	ListNotifiable(ctx context.Context) ([]models.UserProfile, error)
}

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// Get returns nil, nil when no record exists or it is older than IdempotencyTTL
	Get(ctx context.Context, key, route, userID string) (*models.IdempotencyKey, error)
	Store(ctx context.Context, key, route, userID string, responseBody []byte, statusCode int) error
}
