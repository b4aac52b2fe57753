package service

import (
	"context"
	"fmt"
	"time"

	"github.com/JonnyWalker81/hydration/backend/internal/logger"
	"github.com/JonnyWalker81/hydration/backend/internal/notify"
	"github.com/JonnyWalker81/hydration/backend/internal/repository"
)

type reminderService struct {
	profileRepo repository.ProfileRepository
	notifier    notify.Notifier
	defaultLoc  *time.Location
	now         func() time.Time
}

// NewReminderService creates a service that nudges every notifiable user
func NewReminderService(profileRepo repository.ProfileRepository, notifier notify.Notifier, defaultLoc *time.Location) ReminderService {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &reminderService{
		profileRepo: profileRepo,
		notifier:    notifier,
		defaultLoc:  defaultLoc,
		now:         time.Now,
	}
}

// SendReminders sends one reminder per notifiable profile. A failed send is
// counted and the run continues with the next user.
func (s *reminderService) SendReminders(ctx context.Context) (*ReminderResult, error) {
	profiles, err := s.profileRepo.ListNotifiable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifiable profiles: %w", err)
	}

	result := &ReminderResult{}
	for i := range profiles {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		p := &profiles[i]
		local := s.now().In(profileLocation(ctx, p, s.defaultLoc))
		if err := s.notifier.Send(ctx, p.Phone, notify.ReminderMessage(p.Name, local)); err != nil {
			logger.Ctx(ctx).Warn("failed to send reminder",
				logger.String("user_id", p.ID),
				logger.Err(err),
			)
			result.Failed++
			continue
		}
		result.Sent++
	}

	logger.Ctx(ctx).Info("reminders sent",
		logger.Int("sent", result.Sent),
		logger.Int("failed", result.Failed),
	)
	return result, nil
}
