package analytics

import (
	"math"
	"time"

	"github.com/JonnyWalker81/hydration/backend/internal/models"
)

// Recommend blends body size, activity and weather into a daily target in ml.
//
//	base     = floor(weight * MlPerKg * height/ReferenceHeight * BaseMultipliers[activity])
//	weather  = floor(max(0, temp-comfort)*MlPerDegree + max(0, humidity-comfort)*MlPerHumidityPoint)
//	activity = ActivityAdjustments[activity]
//
// events feed only the morning-timing tip.
func (e *Engine) Recommend(profile models.UserProfile, env models.EnvironmentSnapshot, events []models.IntakeEvent, loc *time.Location) (*models.Recommendation, error) {
	p, err := e.resolveProfile(profile)
	if err != nil {
		return nil, err
	}
	if err := validateEvents(events); err != nil {
		return nil, err
	}

	tempC, humidity := e.resolveEnvironment(env)

	base := e.baseRecommendation(p)
	weatherAdj := e.weatherAdjustment(tempC, humidity)
	activityAdj := e.cfg.ActivityAdjustments[p.activity]

	tips := make([]string, 0, 3)
	if tempC > e.cfg.HotDayTemperatureC {
		tips = append(tips, tipHotDay)
	}
	if p.activity == models.ActivityHigh {
		tips = append(tips, tipWorkout)
	}
	if !containsHour(PeakHours(events, loc, e.cfg.PeakHourCount), morningHour) {
		tips = append(tips, tipMorning)
	}

	return &models.Recommendation{
		Base:               base,
		WeatherAdjustment:  weatherAdj,
		ActivityAdjustment: activityAdj,
		Total:              base + weatherAdj + activityAdj,
		Tips:               tips,
	}, nil
}

func (e *Engine) baseRecommendation(p resolvedProfile) int {
	multiplier, ok := e.cfg.BaseMultipliers[p.activity]
	if !ok {
		multiplier = 1
	}
	return int(math.Floor(p.weightKg * e.cfg.MlPerKg * (p.heightCm / e.cfg.ReferenceHeightCm) * multiplier))
}

func (e *Engine) weatherAdjustment(tempC, humidity float64) int {
	tempAdj := math.Max(0, (tempC-e.cfg.ComfortTemperatureC)*e.cfg.MlPerDegree)
	humidityAdj := math.Max(0, (humidity-e.cfg.ComfortHumidity)*e.cfg.MlPerHumidityPoint)
	return int(math.Floor(tempAdj + humidityAdj))
}
