package analytics

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JonnyWalker81/hydration/backend/internal/models"
)

// at returns 2024-03-<day> <hour>:00 UTC
func at(day, hour int) time.Time {
	return time.Date(2024, time.March, day, hour, 0, 0, 0, time.UTC)
}

func intake(day, hour int, amount float64) models.IntakeEvent {
	return models.IntakeEvent{Timestamp: at(day, hour), Amount: amount}
}

func TestAggregate_GroupsByCalendarDate(t *testing.T) {
	engine := NewDefault()

	events := []models.IntakeEvent{
		intake(10, 8, 250),
		intake(10, 21, 500),
		intake(11, 9, 300),
	}

	totals, err := engine.Aggregate(events, time.UTC)
	require.NoError(t, err)
	require.Equal(t, DailyTotals{"2024-03-10": 750, "2024-03-11": 300}, totals)
}

func TestAggregate_UsesCallerTimezone(t *testing.T) {
	engine := NewDefault()
	eastern := time.FixedZone("UTC-4", -4*60*60)

	events := []models.IntakeEvent{
		{Timestamp: time.Date(2024, time.March, 10, 23, 30, 0, 0, time.UTC), Amount: 200},
		{Timestamp: time.Date(2024, time.March, 11, 0, 30, 0, 0, time.UTC), Amount: 300},
	}

	utc, err := engine.Aggregate(events, nil)
	require.NoError(t, err)
	require.Len(t, utc, 2)

	local, err := engine.Aggregate(events, eastern)
	require.NoError(t, err)
	require.Equal(t, DailyTotals{"2024-03-10": 500}, local)
}

func TestAggregate_EmptyLog(t *testing.T) {
	totals, err := NewDefault().Aggregate(nil, time.UTC)
	require.NoError(t, err)
	require.Empty(t, totals)
	require.Zero(t, totals.Total())
	require.Zero(t, totals.Mean())
}

func TestAggregate_RejectsOutOfRangeAmounts(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
	}{
		{name: "zero", amount: 0},
		{name: "negative", amount: -250},
		{name: "NaN", amount: math.NaN()},
		{name: "positive infinity", amount: math.Inf(1)},
		{name: "above the per-event ceiling", amount: models.MaxIntakeAmount + 1},
		{name: "overflowing", amount: 1e308},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := []models.IntakeEvent{intake(10, 8, 250), intake(10, 9, tt.amount)}

			_, err := NewDefault().Aggregate(events, time.UTC)
			require.ErrorIs(t, err, ErrInvalidInput)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			require.Equal(t, "events[1].amount", ve.Field)
		})
	}
}

func TestAggregate_AcceptsCeilingAmount(t *testing.T) {
	totals, err := NewDefault().Aggregate([]models.IntakeEvent{intake(10, 8, models.MaxIntakeAmount)}, time.UTC)
	require.NoError(t, err)
	require.Equal(t, float64(models.MaxIntakeAmount), totals.Total())
}

func TestDailyTotals_Accessors(t *testing.T) {
	totals := DailyTotals{"2024-03-12": 1500, "2024-03-10": 2500, "2024-03-11": 2000}

	require.Equal(t, []string{"2024-03-10", "2024-03-11", "2024-03-12"}, totals.Days())
	require.Equal(t, []float64{2500, 2000, 1500}, totals.Values())
	require.Equal(t, 6000.0, totals.Total())
	require.Equal(t, 2000.0, totals.Mean())
	require.Equal(t, 2500.0, totals.Best())
}

func TestLongestStreak(t *testing.T) {
	tests := []struct {
		name   string
		totals DailyTotals
		want   int
	}{
		{name: "no days", totals: DailyTotals{}, want: 0},
		{name: "single day", totals: DailyTotals{"2024-03-10": 2000}, want: 1},
		{
			name:   "three consecutive",
			totals: DailyTotals{"2024-03-10": 2000, "2024-03-11": 2000, "2024-03-12": 2000},
			want:   3,
		},
		{
			name: "gap resets run",
			totals: DailyTotals{
				"2024-03-01": 1, "2024-03-02": 1, "2024-03-03": 1,
				"2024-03-05": 1, "2024-03-06": 1,
			},
			want: 3,
		},
		{
			name:   "later run wins",
			totals: DailyTotals{"2024-02-27": 1, "2024-02-28": 1, "2024-02-29": 1, "2024-03-01": 1, "2024-02-20": 1},
			want:   4,
		},
		{
			name:   "crosses month boundary",
			totals: DailyTotals{"2024-02-29": 1, "2024-03-01": 1},
			want:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, LongestStreak(tt.totals))
		})
	}
}

func TestCurrentStreak(t *testing.T) {
	totals := DailyTotals{
		"2024-03-08": 1800,
		"2024-03-10": 2000,
		"2024-03-11": 2100,
		"2024-03-12": 1900,
	}

	tests := []struct {
		name  string
		today time.Time
		want  int
	}{
		{name: "anchored at today", today: at(12, 20), want: 3},
		{name: "today not logged yet", today: at(13, 7), want: 3},
		{name: "stale log", today: at(14, 12), want: 0},
		{name: "stops at gap", today: at(10, 23), want: 1},
		{name: "nothing before today", today: at(1, 9), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CurrentStreak(totals, tt.today))
		})
	}
}

func TestCurrentStreak_UsesTodayLocation(t *testing.T) {
	totals := DailyTotals{"2024-03-11": 2000, "2024-03-12": 2000}
	tokyo := time.FixedZone("UTC+9", 9*60*60)

	// 2024-03-12 20:00 UTC is already 2024-03-13 in UTC+9, so the walk starts at the 12th
	require.Equal(t, 2, CurrentStreak(totals, at(12, 20).In(tokyo)))
}
