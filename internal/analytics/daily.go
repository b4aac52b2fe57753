package analytics

import (
	"sort"
	"time"

	"github.com/JonnyWalker81/hydration/backend/internal/models"
)

const (
	dayLayout   = "2006-01-02"
	hoursPerDay = 24
)

// DailyTotals maps a calendar date ("2006-01-02") to the summed intake for that date
type DailyTotals map[string]float64

// Days returns the dates in chronological order
func (d DailyTotals) Days() []string {
	days := make([]string, 0, len(d))
	for day := range d {
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}

// Values returns the totals in chronological order so sums are reproducible
func (d DailyTotals) Values() []float64 {
	days := d.Days()
	values := make([]float64, len(days))
	for i, day := range days {
		values[i] = d[day]
	}
	return values
}

// Total is the sum of all daily totals
func (d DailyTotals) Total() float64 {
	var sum float64
	for _, v := range d.Values() {
		sum += v
	}
	return sum
}

// Mean is the average daily total, 0 when empty
func (d DailyTotals) Mean() float64 {
	if len(d) == 0 {
		return 0
	}
	return d.Total() / float64(len(d))
}

// Best is the largest daily total, 0 when empty
func (d DailyTotals) Best() float64 {
	var best float64
	for _, v := range d {
		if v > best {
			best = v
		}
	}
	return best
}

// Aggregate groups events by the calendar date of their timestamp in loc.
// A nil loc means UTC.
func (e *Engine) Aggregate(events []models.IntakeEvent, loc *time.Location) (DailyTotals, error) {
	if err := validateEvents(events); err != nil {
		return nil, err
	}
	return aggregate(events, locationOrUTC(loc)), nil
}

func aggregate(events []models.IntakeEvent, loc *time.Location) DailyTotals {
	totals := make(DailyTotals)
	for _, ev := range events {
		totals[ev.Timestamp.In(loc).Format(dayLayout)] += ev.Amount
	}
	return totals
}

// ===== Streaks =====

// LongestStreak is the longest run of consecutive calendar days present in totals.
// 0 for no days, otherwise at least 1.
func LongestStreak(totals DailyTotals) int {
	days := totals.Days()
	if len(days) == 0 {
		return 0
	}

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if gap, ok := daysBetween(days[i-1], days[i]); ok && gap == 1 {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	return longest
}

// CurrentStreak counts consecutive days with intake walking backward from today.
// today's location defines the calendar. If nothing is logged yet today the walk
// starts at yesterday, since the day is still open. The walk stops at the first
// gap or zero-total day.
func CurrentStreak(totals DailyTotals, today time.Time) int {
	day := civilDay(today)
	if !(totals[day.Format(dayLayout)] > 0) {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for totals[day.Format(dayLayout)] > 0 {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// civilDay pins t's calendar date to noon UTC so day arithmetic ignores DST
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func daysBetween(from, to string) (int, bool) {
	a, err := time.Parse(dayLayout, from)
	if err != nil {
		return 0, false
	}
	b, err := time.Parse(dayLayout, to)
	if err != nil {
		return 0, false
	}
	return int(b.Sub(a).Hours() / 24), true
}
