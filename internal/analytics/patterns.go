package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/JonnyWalker81/hydration/backend/internal/models"
)

// ===== Statistical Algorithms =====

// ConsistencyScore is 100 * (1 - coefficient of variation) over the daily
// totals, clamped to [0, 100]. Uses the population standard deviation.
func ConsistencyScore(totals DailyTotals) float64 {
	values := totals.Values()
	if len(values) == 0 {
		return 0
	}

	mean := meanOf(values)
	var std float64
	if len(values) > 1 {
		std = populationStdDev(values, mean)
	}

	var cv float64
	if mean > 0 {
		cv = std / mean
	}
	return clamp(100*(1-cv), 0, 100)
}

// PeakHours returns the count hours of day with the largest accumulated
// volume, largest first. Ties keep ascending hour order. Hours with no
// intake still compete at zero, so any non-empty log yields exactly count
// entries. An empty log yields nil.
func PeakHours(events []models.IntakeEvent, loc *time.Location, count int) []int {
	if len(events) == 0 {
		return nil
	}
	if count <= 0 || count > hoursPerDay {
		count = hoursPerDay
	}
	loc = locationOrUTC(loc)

	var buckets [hoursPerDay]float64
	for _, ev := range events {
		buckets[ev.Timestamp.In(loc).Hour()] += ev.Amount
	}

	hours := make([]int, hoursPerDay)
	for h := range hours {
		hours[h] = h
	}
	sort.SliceStable(hours, func(i, j int) bool {
		return buckets[hours[i]] > buckets[hours[j]]
	})
	return hours[:count]
}

// Trend compares the first and last recorded day. Intermediate days are ignored.
func (e *Engine) Trend(totals DailyTotals) models.IntakeTrend {
	days := totals.Days()
	if len(days) < 2 {
		return models.IntakeTrend{Direction: models.TrendNeutral, ChangeRate: 0}
	}

	first, last := totals[days[0]], totals[days[len(days)-1]]
	var rate float64
	if first > 0 {
		rate = (last - first) / first
	}

	direction := models.TrendStable
	switch {
	case rate > e.cfg.TrendThreshold:
		direction = models.TrendIncreasing
	case rate < -e.cfg.TrendThreshold:
		direction = models.TrendDecreasing
	}
	return models.IntakeTrend{Direction: direction, ChangeRate: rate}
}

// Analyze derives the pattern analysis of a log. Dates and hours are taken in loc.
func (e *Engine) Analyze(events []models.IntakeEvent, loc *time.Location) (*models.PatternAnalysis, error) {
	if err := validateEvents(events); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return emptyAnalysis(), nil
	}

	loc = locationOrUTC(loc)
	return e.analyze(events, aggregate(events, loc), loc), nil
}

func (e *Engine) analyze(events []models.IntakeEvent, totals DailyTotals, loc *time.Location) *models.PatternAnalysis {
	return &models.PatternAnalysis{
		ConsistencyScore:   ConsistencyScore(totals),
		PeakHydrationHours: PeakHours(events, loc, e.cfg.PeakHourCount),
		IntakeTrend:        e.Trend(totals),
		DailyAverage:       totals.Mean(),
		Streak:             LongestStreak(totals),
	}
}

func emptyAnalysis() *models.PatternAnalysis {
	return &models.PatternAnalysis{
		PeakHydrationHours: []int{},
		IntakeTrend:        models.IntakeTrend{Direction: models.TrendNeutral},
	}
}

// ===== Helper Functions =====

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func populationStdDev(values []float64, mean float64) float64 {
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

// clamp maps NaN to lo
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func containsHour(hours []int, hour int) bool {
	for _, h := range hours {
		if h == hour {
			return true
		}
	}
	return false
}
