package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonnyWalker81/hydration/backend/internal/analytics"
	"github.com/JonnyWalker81/hydration/backend/internal/events"
	"github.com/JonnyWalker81/hydration/backend/internal/logger"
	"github.com/JonnyWalker81/hydration/backend/internal/models"
	"github.com/JonnyWalker81/hydration/backend/internal/notify"
	"github.com/JonnyWalker81/hydration/backend/internal/observability"
	"github.com/JonnyWalker81/hydration/backend/internal/repository"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
	defaultSource    = "manual"
)

type intakeService struct {
	intakeRepo  repository.IntakeRepository
	profileRepo repository.ProfileRepository
	notifier    notify.Notifier
	publisher   events.Publisher
	defaultLoc  *time.Location
	now         func() time.Time
	// dispatch runs side effects that must not delay the response
	dispatch func(func())
}

// NewIntakeService creates a new intake service. Goal notifications and
// event publishing run on bg after the intake is stored; a nil bg gets a
// private tracker nobody waits on.
func NewIntakeService(
	intakeRepo repository.IntakeRepository,
	profileRepo repository.ProfileRepository,
	notifier notify.Notifier,
	publisher events.Publisher,
	defaultLoc *time.Location,
	bg *Background,
) IntakeService {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	if bg == nil {
		bg = &Background{}
	}
	return &intakeService{
		intakeRepo:  intakeRepo,
		profileRepo: profileRepo,
		notifier:    notifier,
		publisher:   publisher,
		defaultLoc:  defaultLoc,
		now:         time.Now,
		dispatch:    bg.Go,
	}
}

func (s *intakeService) RecordIntake(ctx context.Context, userID string, req *models.CreateIntakeRequest) (*models.IntakeEvent, bool, error) {
	now := s.now()

	event := &models.IntakeEvent{
		UserID:    userID,
		Timestamp: req.Timestamp.UTC(),
		Amount:    req.Amount,
		Source:    req.Source,
	}
	if event.Source == "" {
		event.Source = defaultSource
	}

	if err := analytics.ValidateEvent(*event); err != nil {
		return nil, false, err
	}
	if err := ValidateTimestamp(event.Timestamp, now); err != nil {
		return nil, false, err
	}

	// Client-generated IDs make retries idempotent
	if req.ID != nil && *req.ID != "" {
		if err := ValidateUUIDv7(*req.ID, now); err != nil {
			return nil, false, err
		}
		event.ID = *req.ID
	} else {
		id, err := NewIntakeID()
		if err != nil {
			return nil, false, err
		}
		event.ID = id
	}

	stored, created, err := s.intakeRepo.Create(ctx, event)
	if err != nil {
		return nil, false, fmt.Errorf("failed to record intake: %w", err)
	}
	if stored.UserID != userID {
		return nil, false, ErrConflict
	}

	observability.RecordIntake(created)

	log := logger.Ctx(ctx)
	if !created {
		log.Debug("intake already recorded", logger.String("intake_id", stored.ID))
		return stored, false, nil
	}

	log.Info("intake recorded",
		logger.String("intake_id", stored.ID),
		logger.Float64("amount", stored.Amount),
	)

	recorded := *stored
	bg := context.WithoutCancel(ctx)
	s.dispatch(func() { s.afterRecord(bg, recorded) })

	return stored, true, nil
}

// afterRecord publishes the intake and announces the daily goal when this
// event is the one that crossed it. Failures are logged, never returned.
func (s *intakeService) afterRecord(ctx context.Context, event models.IntakeEvent) {
	log := logger.Ctx(ctx).With(logger.String("intake_id", event.ID))

	if err := s.publisher.IntakeRecorded(ctx, event); err != nil {
		log.Warn("failed to publish intake event", logger.Err(err))
	}

	profile, err := loadProfile(ctx, s.profileRepo, event.UserID)
	if err != nil {
		log.Warn("failed to load profile for goal check", logger.Err(err))
		return
	}
	if profile.DailyGoal <= 0 {
		return
	}

	loc := profileLocation(ctx, profile, s.defaultLoc)
	local := event.Timestamp.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	dayEvents, err := s.intakeRepo.ListByUserSince(ctx, event.UserID, dayStart)
	if err != nil {
		log.Warn("failed to load daily intake for goal check", logger.Err(err))
		return
	}

	// Only the event whose running total crosses the goal announces it, so
	// concurrent checks over the same stored day agree on a single event.
	var before float64
	for _, ev := range dayEvents {
		if ev.Timestamp.Before(dayEnd) && orderedBefore(ev, event) {
			before += ev.Amount
		}
	}
	after := before + event.Amount
	goal := float64(profile.DailyGoal)
	if !(before < goal && after >= goal) {
		return
	}

	log.Info("daily goal achieved",
		logger.Int("daily_goal", profile.DailyGoal),
		logger.Float64("total", after),
	)

	payload := events.GoalAchieved{
		Date:      dayStart.Format("2006-01-02"),
		Total:     after,
		DailyGoal: profile.DailyGoal,
	}
	if err := s.publisher.GoalAchieved(ctx, event.UserID, payload); err != nil {
		log.Warn("failed to publish goal event", logger.Err(err))
	}

	if profile.NotificationsEnabled {
		if err := s.notifier.Send(ctx, profile.Phone, notify.GoalAchievedMessage(profile.Name, profile.DailyGoal)); err != nil {
			log.Warn("failed to send goal notification", logger.Err(err))
		}
	}
}

// orderedBefore orders a day's events by timestamp, then ID
func orderedBefore(a, b models.IntakeEvent) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.ID < b.ID
}

func (s *intakeService) ListIntake(ctx context.Context, userID string, limit, offset int) (*models.IntakeListResponse, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	list, err := s.intakeRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list intake: %w", err)
	}
	if list == nil {
		list = []models.IntakeEvent{}
	}

	return &models.IntakeListResponse{Events: list, Limit: limit, Offset: offset}, nil
}

func (s *intakeService) DeleteIntake(ctx context.Context, userID, intakeID string) error {
	event, err := s.intakeRepo.GetByID(ctx, intakeID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load intake: %w", err)
	}

	// Other users' events are reported as missing
	if event.UserID != userID {
		return ErrNotFound
	}

	if err := s.intakeRepo.Delete(ctx, intakeID); err != nil {
		return fmt.Errorf("failed to delete intake: %w", err)
	}

	logger.Ctx(ctx).Info("intake deleted", logger.String("intake_id", intakeID))
	return nil
}
