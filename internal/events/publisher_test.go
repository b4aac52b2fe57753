package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonnyWalker81/hydration/backend/internal/models"
)

type stubWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *stubWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

// stubTopics hands out one stubWriter per topic and counts creations
type stubTopics struct {
	writers map[string]*stubWriter
	created int
	err     error
}

func newStubTopics() *stubTopics {
	return &stubTopics{writers: make(map[string]*stubWriter)}
}

func (s *stubTopics) newWriter(topic string) messageWriter {
	s.created++
	w := &stubWriter{err: s.err}
	s.writers[topic] = w
	return w
}

func TestKafkaPublisher_IntakeRecorded(t *testing.T) {
	topics := newStubTopics()
	pub := newKafkaPublisher("hydration", topics.newWriter)
	pub.now = func() time.Time { return time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC) }

	event := models.IntakeEvent{
		ID:        "0190e1b2-0000-7000-8000-000000000001",
		UserID:    "user-1",
		Timestamp: time.Date(2024, 3, 4, 8, 30, 0, 0, time.UTC),
		Amount:    250,
	}
	require.NoError(t, pub.IntakeRecorded(context.Background(), event))

	require.Contains(t, topics.writers, "hydration.intake.recorded")
	msgs := topics.writers["hydration.intake.recorded"].messages
	require.Len(t, msgs, 1)
	assert.Equal(t, "user-1", string(msgs[0].Key))
	assert.Equal(t, "event_type", msgs[0].Headers[0].Key)

	var env Envelope
	require.NoError(t, json.Unmarshal(msgs[0].Value, &env))
	assert.Equal(t, TypeIntakeRecorded, env.Type)
	assert.Equal(t, "user-1", env.UserID)
	assert.NotEmpty(t, env.ID)
	assert.True(t, env.OccurredAt.Equal(pub.now()))

	var payload models.IntakeEvent
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, 250.0, payload.Amount)
}

func TestKafkaPublisher_ReusesWriterPerTopic(t *testing.T) {
	topics := newStubTopics()
	pub := newKafkaPublisher("", topics.newWriter)
	ctx := context.Background()

	require.NoError(t, pub.IntakeRecorded(ctx, models.IntakeEvent{UserID: "u"}))
	require.NoError(t, pub.IntakeRecorded(ctx, models.IntakeEvent{UserID: "u"}))
	require.NoError(t, pub.GoalAchieved(ctx, "u", GoalAchieved{Date: "2024-03-04", Total: 2600, DailyGoal: 2500}))

	assert.Equal(t, 2, topics.created)
	assert.Len(t, topics.writers["intake.recorded"].messages, 2)
	assert.Len(t, topics.writers["goal.achieved"].messages, 1)
}

func TestKafkaPublisher_CloseRefusesNewWriters(t *testing.T) {
	topics := newStubTopics()
	pub := newKafkaPublisher("hydration", topics.newWriter)

	require.NoError(t, pub.IntakeRecorded(context.Background(), models.IntakeEvent{UserID: "u"}))
	require.NoError(t, pub.Close())
	assert.True(t, topics.writers["hydration.intake.recorded"].closed)

	err := pub.GoalAchieved(context.Background(), "u", GoalAchieved{})
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, 1, topics.created, "no writer may be created after Close")
}

func TestKafkaPublisher_WrapsWriterError(t *testing.T) {
	topics := newStubTopics()
	topics.err = errors.New("broker down")
	pub := newKafkaPublisher("hydration", topics.newWriter)

	err := pub.IntakeRecorded(context.Background(), models.IntakeEvent{UserID: "u"})
	require.Error(t, err)
	assert.ErrorIs(t, err, topics.err)
}

func TestNewKafkaPublisher_HashesByKey(t *testing.T) {
	pub := NewKafkaPublisher([]string{"localhost:9092"}, "hydration")

	w, ok := pub.newWriter("hydration.goal.achieved").(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "hydration.goal.achieved", w.Topic)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	require.NoError(t, w.Close())
}
