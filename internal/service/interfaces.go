package service

import (
	"context"
	"errors"

	"github.com/JonnyWalker81/hydration/backend/internal/models"
)

var (
	// ErrNotFound is returned for missing resources and for resources owned by another user
	ErrNotFound = errors.New("resource not found")
	// ErrConflict is returned when a client-supplied ID belongs to another user
	ErrConflict = errors.New("resource conflict")
)

// IntakeService defines the interface for intake business logic
type IntakeService interface {
	// RecordIntake stores an intake event. created is false when the ID was
	// already recorded and the stored event is returned unchanged.
	RecordIntake(ctx context.Context, userID string, req *models.CreateIntakeRequest) (event *models.IntakeEvent, created bool, err error)
	ListIntake(ctx context.Context, userID string, limit, offset int) (*models.IntakeListResponse, error)
	DeleteIntake(ctx context.Context, userID, intakeID string) error
}

// ProfileService defines the interface for profile business logic
type ProfileService interface {
	// GetProfile returns the stored profile, or defaults when none was saved
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.UserProfile, error)
}

// HydrationService defines the interface for analytics over a user's intake log
type HydrationService interface {
	Analysis(ctx context.Context, userID string) (*models.PatternAnalysis, error)
	Recommendations(ctx context.Context, userID string) (*models.Recommendation, error)
	Progress(ctx context.Context, userID, period string) (*models.ProgressReport, error)
	Weekly(ctx context.Context, userID string) (*models.WeeklyStats, error)
	// FullReport never fails on I/O; it degrades to the fallback report.
	// Profile validation errors are still returned.
	FullReport(ctx context.Context, userID string) (*models.HydrationReport, error)
}

// ReminderService defines the interface for scheduled hydration reminders
type ReminderService interface {
	SendReminders(ctx context.Context) (*ReminderResult, error)
}

// ReminderResult counts the outcome of one reminder run
type ReminderResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}
