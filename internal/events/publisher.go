// Package events publishes domain events about intake and goals to Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/JonnyWalker81/hydration/backend/internal/models"
)

// Event types, also used as topic suffixes
const (
	TypeIntakeRecorded = "intake.recorded"
	TypeGoalAchieved   = "goal.achieved"
)

// Envelope is the JSON value of every published message
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	UserID     string          `json:"user_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// GoalAchieved is the payload of a goal.achieved event
type GoalAchieved struct {
	Date      string  `json:"date"`
	Total     float64 `json:"total"`
	DailyGoal int     `json:"daily_goal"`
}

// Publisher emits domain events. Implementations must be safe for concurrent use.
type Publisher interface {
	IntakeRecorded(ctx context.Context, event models.IntakeEvent) error
	GoalAchieved(ctx context.Context, userID string, payload GoalAchieved) error
	Close() error
}

// ErrClosed is returned by publishes after Close
var ErrClosed = errors.New("publisher closed")

// messageWriter is the part of *kafka.Writer the publisher uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes envelopes to one topic per event type. Writers are
// created on first use and shared by concurrent publishes.
type KafkaPublisher struct {
	topicPrefix string
	newWriter   func(topic string) messageWriter
	now         func() time.Time

	mu      sync.Mutex
	writers map[string]messageWriter
	closed  bool
}

// NewKafkaPublisher creates a publisher writing to "<topicPrefix>.<event type>" topics
func NewKafkaPublisher(brokers []string, topicPrefix string) *KafkaPublisher {
	addr := kafka.TCP(brokers...)
	return newKafkaPublisher(topicPrefix, func(topic string) messageWriter {
		return &kafka.Writer{
			Addr:  addr,
			Topic: topic,
			// Messages are keyed by user ID; hashing the key keeps one
			// user's events on one partition, in order.
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		}
	})
}

func newKafkaPublisher(topicPrefix string, newWriter func(topic string) messageWriter) *KafkaPublisher {
	return &KafkaPublisher{
		topicPrefix: topicPrefix,
		newWriter:   newWriter,
		now:         time.Now,
		writers:     make(map[string]messageWriter),
	}
}

// Topic returns the full topic name for an event type
func (p *KafkaPublisher) Topic(eventType string) string {
	if p.topicPrefix == "" {
		return eventType
	}
	return p.topicPrefix + "." + eventType
}

func (p *KafkaPublisher) IntakeRecorded(ctx context.Context, event models.IntakeEvent) error {
	return p.publish(ctx, TypeIntakeRecorded, event.UserID, event)
}

func (p *KafkaPublisher) GoalAchieved(ctx context.Context, userID string, payload GoalAchieved) error {
	return p.publish(ctx, TypeGoalAchieved, userID, payload)
}

// Close flushes and releases every writer. Later publishes fail with ErrClosed.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	var firstErr error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close writer for %s: %w", topic, err)
		}
		delete(p.writers, topic)
	}
	return firstErr
}

func (p *KafkaPublisher) writer(topic string) (messageWriter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	if w, ok := p.writers[topic]; ok {
		return w, nil
	}
	w := p.newWriter(topic)
	p.writers[topic] = w
	return w, nil
}

func (p *KafkaPublisher) publish(ctx context.Context, eventType, userID string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	envelope := Envelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		OccurredAt: p.now().UTC(),
		Data:       raw,
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal %s envelope: %w", eventType, err)
	}

	msg := kafka.Message{
		Key:   []byte(userID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}
	w, err := p.writer(p.Topic(eventType))
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	if err := w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return nil
}

// Noop discards every event
type Noop struct{}

func (Noop) IntakeRecorded(context.Context, models.IntakeEvent) error { return nil }
func (Noop) GoalAchieved(context.Context, string, GoalAchieved) error { return nil }
func (Noop) Close() error                                             { return nil }
