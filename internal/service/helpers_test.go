package service

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/JonnyWalker81/hydration/backend/internal/events"
	"github.com/JonnyWalker81/hydration/backend/internal/models"
)

type sentMessage struct {
	to      string
	message string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, to, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMessage{to: to, message: message})
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	intake []models.IntakeEvent
	goals  []events.GoalAchieved
}

func (p *recordingPublisher) IntakeRecorded(_ context.Context, event models.IntakeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.intake = append(p.intake, event)
	return nil
}

func (p *recordingPublisher) GoalAchieved(_ context.Context, _ string, payload events.GoalAchieved) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.goals = append(p.goals, payload)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func inline(f func()) { f() }

func ptr[T any](v T) *T { return &v }

// reportsCounted reads hydration_analytics_reports_generated_total{kind} from the default registry
func reportsCounted(t *testing.T, kind string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "hydration_analytics_reports_generated_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "kind" && label.GetValue() == kind {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
