// Package notify delivers hydration reminders and goal notifications over
// SMS (Twilio), desktop notifications or nowhere at all.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/JonnyWalker81/hydration/backend/internal/logger"
	"github.com/JonnyWalker81/hydration/backend/internal/observability"
)

// Notifier sends a message to a recipient. Channels without addressing ignore to.
type Notifier interface {
	Send(ctx context.Context, to, message string) error
}

// Noop drops every message
type Noop struct{}

func (Noop) Send(context.Context, string, string) error { return nil }

// GoalAchievedMessage congratulates name on reaching goalMl
func GoalAchievedMessage(name string, goalMl int) string {
	return fmt.Sprintf("Hello %s! Congratulations! You've reached your daily water intake goal of %dml! Keep up the great work! - Water Tracker", name, goalMl)
}

// Greeting picks the salutation for the local hour of now
func Greeting(now time.Time) string {
	switch hour := now.Hour(); {
	case hour < 12:
		return "Good morning"
	case hour < 17:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

// ReminderMessage nudges name to drink, greeting by the local time of now
func ReminderMessage(name string, now time.Time) string {
	return fmt.Sprintf("%s %s!\nTime to take care of yourself! Remember to drink water and stay hydrated.\nYour health matters! - Water Tracker", Greeting(now), name)
}

type retrying struct {
	next     Notifier
	attempts int
	delay    time.Duration
}

// WithRetry retries failed sends up to attempts times, waiting delay between
// tries. Every final outcome is counted in the notifications metric.
func WithRetry(next Notifier, attempts int, delay time.Duration) Notifier {
	if attempts < 1 {
		attempts = 1
	}
	return &retrying{next: next, attempts: attempts, delay: delay}
}

func (r *retrying) Send(ctx context.Context, to, message string) error {
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if err = r.next.Send(ctx, to, message); err == nil {
			observability.RecordNotification(true)
			return nil
		}

		logger.Ctx(ctx).Warn("notification attempt failed",
			logger.Int("attempt", attempt),
			logger.Int("max_attempts", r.attempts),
			logger.Err(err),
		)

		if attempt == r.attempts {
			break
		}
		select {
		case <-ctx.Done():
			observability.RecordNotification(false)
			return ctx.Err()
		case <-time.After(r.delay):
		}
	}

	observability.RecordNotification(false)
	return fmt.Errorf("notification failed after %d attempts: %w", r.attempts, err)
}
