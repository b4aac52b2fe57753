// Package analytics turns a log of intake events plus profile and weather
// attributes into consistency scores, trends, streaks, recommendations and
// progress reports. Every operation is a pure function of its inputs.
package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/JonnyWalker81/hydration/backend/internal/models"
)

// DefaultPeriod is the report period used when the caller passes none
const DefaultPeriod = "week"

// Fixed user-facing copy
const (
	tipHotDay  = "It's hot today! Consider increasing your water intake."
	tipWorkout = "Remember to hydrate before, during, and after your workouts."
	tipMorning = "Start your day with a glass of water to boost metabolism."

	areaStartTracking = "Start tracking your water intake"
	areaBelowGoal     = "Increase daily water intake to meet your goal"
	areaMorning       = "Consider adding morning hydration to your routine"

	achievementGoals = "Consistently meeting daily goals"

	fallbackTip            = "Maintain regular water intake throughout the day"
	fallbackRecommendation = 2500
)

// Hours checked by the timing tip and the morning improvement area
const (
	morningHour     = 8
	lateMorningHour = 9
)

// ErrInvalidInput is the sentinel every ValidationError unwraps to
var ErrInvalidInput = errors.New("invalid input")

// ValidationError reports a caller contract violation on a single field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Config holds every tunable of the engine. Treat it as a value: New copies
// the maps, so later changes by the caller do not leak into a running engine.
type Config struct {
	MlPerKg           float64
	ReferenceHeightCm float64

	// BaseMultipliers scales the weight-based base target.
	// ActivityAdjustments is a separate flat bonus. Both apply.
	BaseMultipliers     map[models.ActivityLevel]float64
	ActivityAdjustments map[models.ActivityLevel]int

	ComfortTemperatureC float64
	MlPerDegree         float64
	ComfortHumidity     float64
	MlPerHumidityPoint  float64
	HotDayTemperatureC  float64

	TrendThreshold        float64
	PeakHourCount         int
	StreakAchievementDays int
	GoalRateAchievement   float64

	DefaultWeightKg     float64
	DefaultHeightCm     float64
	DefaultActivity     models.ActivityLevel
	DefaultTemperatureC float64
	DefaultHumidity     float64
}

// DefaultConfig returns the production tuning
func DefaultConfig() Config {
	return Config{
		MlPerKg:           30,
		ReferenceHeightCm: 170,
		BaseMultipliers: map[models.ActivityLevel]float64{
			models.ActivityLow:      0.8,
			models.ActivityModerate: 1.0,
			models.ActivityHigh:     1.2,
		},
		ActivityAdjustments: map[models.ActivityLevel]int{
			models.ActivityLow:      0,
			models.ActivityModerate: 300,
			models.ActivityHigh:     700,
		},
		ComfortTemperatureC:   20,
		MlPerDegree:           15,
		ComfortHumidity:       50,
		MlPerHumidityPoint:    5,
		HotDayTemperatureC:    25,
		TrendThreshold:        0.1,
		PeakHourCount:         3,
		StreakAchievementDays: 7,
		GoalRateAchievement:   80,
		DefaultWeightKg:       70,
		DefaultHeightCm:       170,
		DefaultActivity:       models.ActivityModerate,
		DefaultTemperatureC:   20,
		DefaultHumidity:       50,
	}
}

// Engine computes hydration analytics. It is safe for concurrent use.
type Engine struct {
	cfg Config
}

// New creates an engine from cfg. Missing activity table entries are
// filled from DefaultConfig.
func New(cfg Config) *Engine {
	defaults := DefaultConfig()

	multipliers := make(map[models.ActivityLevel]float64, len(defaults.BaseMultipliers))
	adjustments := make(map[models.ActivityLevel]int, len(defaults.ActivityAdjustments))
	for level, v := range defaults.BaseMultipliers {
		multipliers[level] = v
	}
	for level, v := range defaults.ActivityAdjustments {
		adjustments[level] = v
	}
	for level, v := range cfg.BaseMultipliers {
		multipliers[level] = v
	}
	for level, v := range cfg.ActivityAdjustments {
		adjustments[level] = v
	}
	cfg.BaseMultipliers = multipliers
	cfg.ActivityAdjustments = adjustments

	if cfg.PeakHourCount <= 0 || cfg.PeakHourCount > hoursPerDay {
		cfg.PeakHourCount = defaults.PeakHourCount
	}
	if !cfg.DefaultActivity.Valid() {
		cfg.DefaultActivity = defaults.DefaultActivity
	}

	return &Engine{cfg: cfg}
}

// NewDefault is shorthand for New(DefaultConfig())
func NewDefault() *Engine {
	return New(DefaultConfig())
}

// ===== Validation =====

// ValidateEvent rejects events whose amount is not in (0, models.MaxIntakeAmount]
func ValidateEvent(ev models.IntakeEvent) error {
	if !(ev.Amount > 0) {
		return &ValidationError{Field: "amount", Message: "must be greater than zero"}
	}
	if !(ev.Amount <= models.MaxIntakeAmount) {
		return &ValidationError{Field: "amount", Message: fmt.Sprintf("must be at most %d", models.MaxIntakeAmount)}
	}
	return nil
}

func validateEvents(events []models.IntakeEvent) error {
	for i, ev := range events {
		if err := ValidateEvent(ev); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				return &ValidationError{Field: fmt.Sprintf("events[%d].%s", i, ve.Field), Message: ve.Message}
			}
			return err
		}
	}
	return nil
}

// ValidateProfile rejects non-positive body measurements and unknown activity levels.
// Absent fields are fine; they take the configured defaults.
func ValidateProfile(p models.UserProfile) error {
	if p.WeightKg != nil && !(*p.WeightKg > 0) {
		return &ValidationError{Field: "weight_kg", Message: "must be greater than zero"}
	}
	if p.HeightCm != nil && !(*p.HeightCm > 0) {
		return &ValidationError{Field: "height_cm", Message: "must be greater than zero"}
	}
	if p.ActivityLevel != "" && !p.ActivityLevel.Valid() {
		return &ValidationError{Field: "activity_level", Message: "must be one of low, moderate, high"}
	}
	return nil
}

type resolvedProfile struct {
	weightKg  float64
	heightCm  float64
	activity  models.ActivityLevel
	dailyGoal int
}

func (e *Engine) resolveProfile(p models.UserProfile) (resolvedProfile, error) {
	if err := ValidateProfile(p); err != nil {
		return resolvedProfile{}, err
	}

	r := resolvedProfile{
		weightKg:  e.cfg.DefaultWeightKg,
		heightCm:  e.cfg.DefaultHeightCm,
		activity:  e.cfg.DefaultActivity,
		dailyGoal: p.DailyGoal,
	}
	if p.WeightKg != nil {
		r.weightKg = *p.WeightKg
	}
	if p.HeightCm != nil {
		r.heightCm = *p.HeightCm
	}
	if p.ActivityLevel != "" {
		r.activity = p.ActivityLevel
	}
	return r, nil
}

func (e *Engine) resolveEnvironment(env models.EnvironmentSnapshot) (tempC, humidity float64) {
	tempC, humidity = e.cfg.DefaultTemperatureC, e.cfg.DefaultHumidity
	if env.TemperatureC != nil {
		tempC = *env.TemperatureC
	}
	if env.Humidity != nil {
		humidity = *env.Humidity
	}
	return tempC, humidity
}

func locationOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
