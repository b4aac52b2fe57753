package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/JonnyWalker81/hydration/backend/internal/models"
)

// Report composes the progress report for a period. now is the reference
// clock; its location defines calendar days. period is echoed back and
// defaults to "week".
func (e *Engine) Report(profile models.UserProfile, events []models.IntakeEvent, period string, now time.Time) (*models.ProgressReport, error) {
	p, err := e.resolveProfile(profile)
	if err != nil {
		return nil, err
	}
	if err := validateEvents(events); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return EmptyReport(), nil
	}
	if period == "" {
		period = DefaultPeriod
	}

	loc := now.Location()
	totals := aggregate(events, loc)
	analysis := e.analyze(events, totals, loc)
	rate := goalAchievementRate(totals, p.dailyGoal)

	return &models.ProgressReport{
		Period:              period,
		TotalIntake:         totals.Total(),
		DailyAverage:        analysis.DailyAverage,
		GoalAchievementRate: rate,
		ConsistencyScore:    analysis.ConsistencyScore,
		ImprovementAreas:    improvementAreas(analysis, p.dailyGoal),
		Achievements:        e.achievements(analysis.Streak, rate),
		StreakData: models.StreakData{
			CurrentStreak: CurrentStreak(totals, now),
			BestStreak:    analysis.Streak,
		},
	}, nil
}

// EmptyReport is the canonical report for a user with no intake logged
func EmptyReport() *models.ProgressReport {
	return &models.ProgressReport{
		Period:           DefaultPeriod,
		ImprovementAreas: []string{areaStartTracking},
		Achievements:     []string{},
	}
}

// Weekly summarises the calendar week (Monday start) containing now
func (e *Engine) Weekly(events []models.IntakeEvent, now time.Time) (*models.WeeklyStats, error) {
	if err := validateEvents(events); err != nil {
		return nil, err
	}

	start := StartOfWeek(now)
	inWeek := make([]models.IntakeEvent, 0, len(events))
	for _, ev := range events {
		if !ev.Timestamp.Before(start) {
			inWeek = append(inWeek, ev)
		}
	}

	totals := aggregate(inWeek, now.Location())
	days := len(totals)

	return &models.WeeklyStats{
		Streak:        CurrentStreak(totals, now),
		WeeklyAverage: int(math.RoundToEven(totals.Total() / math.Max(float64(days), 1))),
		BestDay:       totals.Best(),
		DaysRecorded:  days,
	}, nil
}

// FallbackReport is served when inputs for a full report cannot be loaded.
// Insights are left for the caller to fill.
func FallbackReport() *models.HydrationReport {
	return &models.HydrationReport{
		Analysis: emptyAnalysis(),
		Recommendations: &models.Recommendation{
			Base:  fallbackRecommendation,
			Total: fallbackRecommendation,
			Tips:  []string{fallbackTip},
		},
		Progress: EmptyReport(),
		Degraded: true,
	}
}

func goalAchievementRate(totals DailyTotals, dailyGoal int) float64 {
	if len(totals) == 0 || dailyGoal <= 0 {
		return 0
	}
	achieved := 0
	for _, total := range totals {
		if total >= float64(dailyGoal) {
			achieved++
		}
	}
	return float64(achieved) / float64(len(totals)) * 100
}

func improvementAreas(analysis *models.PatternAnalysis, dailyGoal int) []string {
	areas := make([]string, 0, 2)
	if analysis.DailyAverage < float64(dailyGoal) {
		areas = append(areas, areaBelowGoal)
	}
	if !containsHour(analysis.PeakHydrationHours, morningHour) && !containsHour(analysis.PeakHydrationHours, lateMorningHour) {
		areas = append(areas, areaMorning)
	}
	return areas
}

func (e *Engine) achievements(longestStreak int, goalRate float64) []string {
	achievements := make([]string, 0, 2)
	if longestStreak >= e.cfg.StreakAchievementDays {
		achievements = append(achievements, fmt.Sprintf("%d-day streak achieved!", e.cfg.StreakAchievementDays))
	}
	if goalRate >= e.cfg.GoalRateAchievement {
		achievements = append(achievements, achievementGoals)
	}
	return achievements
}

// StartOfWeek returns local midnight of the Monday on or before now
func StartOfWeek(now time.Time) time.Time {
	y, m, d := now.Date()
	offset := (int(now.Weekday()) + 6) % 7
	return time.Date(y, m, d-offset, 0, 0, 0, 0, now.Location())
}
