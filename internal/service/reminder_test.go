package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/JonnyWalker81/hydration/backend/internal/models"
	"github.com/JonnyWalker81/hydration/backend/internal/repository/mocks"
)

type flakyNotifier struct {
	failFor string
	sent    []sentMessage
}

func (n *flakyNotifier) Send(_ context.Context, to, message string) error {
	if to == n.failFor {
		return errors.New("undeliverable")
	}
	n.sent = append(n.sent, sentMessage{to: to, message: message})
	return nil
}

func TestSendReminders(t *testing.T) {
	repo := mocks.NewMockProfileRepository(gomock.NewController(t))
	repo.EXPECT().ListNotifiable(gomock.Any()).Return([]models.UserProfile{
		{ID: "u1", Name: "Ana", Phone: "+1", Timezone: "Asia/Tokyo"},
		{ID: "u2", Name: "Ben", Phone: "+2"},
		{ID: "u3", Name: "Cy", Phone: "+3"},
	}, nil)

	notifier := &flakyNotifier{failFor: "+3"}
	svc := NewReminderService(repo, notifier, time.UTC).(*reminderService)
	svc.now = func() time.Time { return fixedNow }

	result, err := svc.SendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &ReminderResult{Sent: 2, Failed: 1}, result)

	require.Len(t, notifier.sent, 2)
	// 12:00 UTC is 21:00 in Tokyo
	assert.Contains(t, notifier.sent[0].message, "Good evening Ana!")
	assert.Contains(t, notifier.sent[1].message, "Good afternoon Ben!")
}

func TestSendReminders_ListFailure(t *testing.T) {
	repo := mocks.NewMockProfileRepository(gomock.NewController(t))
	repo.EXPECT().ListNotifiable(gomock.Any()).Return(nil, errors.New("boom"))

	_, err := NewReminderService(repo, &flakyNotifier{}, nil).SendReminders(context.Background())
	assert.Error(t, err)
}
