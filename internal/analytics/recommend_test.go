package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JonnyWalker81/hydration/backend/internal/models"
)

func TestRecommend_DefaultProfile(t *testing.T) {
	profile := models.UserProfile{
		WeightKg:      models.Float64(70),
		HeightCm:      models.Float64(170),
		ActivityLevel: models.ActivityModerate,
	}
	env := models.EnvironmentSnapshot{
		TemperatureC: models.Float64(20),
		Humidity:     models.Float64(50),
	}

	rec, err := NewDefault().Recommend(profile, env, nil, time.UTC)
	require.NoError(t, err)
	require.Equal(t, 2100, rec.Base)
	require.Equal(t, 0, rec.WeatherAdjustment)
	require.Equal(t, 300, rec.ActivityAdjustment)
	require.Equal(t, 2400, rec.Total)
	require.Equal(t, []string{tipMorning}, rec.Tips)
}

func TestRecommend_AbsentFieldsUseDefaults(t *testing.T) {
	rec, err := NewDefault().Recommend(models.UserProfile{}, models.EnvironmentSnapshot{}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 2100, rec.Base)
	require.Equal(t, 0, rec.WeatherAdjustment)
	require.Equal(t, 300, rec.ActivityAdjustment)
	require.Equal(t, 2400, rec.Total)
}

func TestRecommend_HotDayHighActivity(t *testing.T) {
	profile := models.UserProfile{
		WeightKg:      models.Float64(80),
		HeightCm:      models.Float64(180),
		ActivityLevel: models.ActivityHigh,
	}
	env := models.EnvironmentSnapshot{
		TemperatureC: models.Float64(30),
		Humidity:     models.Float64(70),
	}
	events := []models.IntakeEvent{intake(10, 8, 500), intake(10, 13, 300)}

	rec, err := NewDefault().Recommend(profile, env, events, time.UTC)
	require.NoError(t, err)
	require.Equal(t, 3049, rec.Base)
	require.Equal(t, 250, rec.WeatherAdjustment)
	require.Equal(t, 700, rec.ActivityAdjustment)
	require.Equal(t, 3999, rec.Total)
	require.Equal(t, []string{tipHotDay, tipWorkout}, rec.Tips)
}

func TestRecommend_ColdDryLowActivity(t *testing.T) {
	profile := models.UserProfile{
		WeightKg:      models.Float64(60),
		ActivityLevel: models.ActivityLow,
	}
	env := models.EnvironmentSnapshot{
		TemperatureC: models.Float64(5),
		Humidity:     models.Float64(20),
	}

	rec, err := NewDefault().Recommend(profile, env, []models.IntakeEvent{intake(10, 8, 250)}, time.UTC)
	require.NoError(t, err)
	require.Equal(t, 1440, rec.Base)
	require.Zero(t, rec.WeatherAdjustment)
	require.Zero(t, rec.ActivityAdjustment)
	require.Equal(t, 1440, rec.Total)
	require.Empty(t, rec.Tips)
}

func TestRecommend_WeatherAdjustmentFloors(t *testing.T) {
	env := models.EnvironmentSnapshot{
		TemperatureC: models.Float64(20.5),
		Humidity:     models.Float64(50),
	}

	rec, err := NewDefault().Recommend(models.UserProfile{}, env, nil, time.UTC)
	require.NoError(t, err)
	// 7.5 ml floors to 7
	require.Equal(t, 7, rec.WeatherAdjustment)
}

func TestRecommend_TotalIsSumOfParts(t *testing.T) {
	engine := NewDefault()
	levels := []models.ActivityLevel{models.ActivityLow, models.ActivityModerate, models.ActivityHigh}

	for _, level := range levels {
		for weight := 40.0; weight <= 120; weight += 13.7 {
			for temp := -5.0; temp <= 40; temp += 7.3 {
				profile := models.UserProfile{
					WeightKg:      models.Float64(weight),
					HeightCm:      models.Float64(155 + weight/2),
					ActivityLevel: level,
				}
				env := models.EnvironmentSnapshot{TemperatureC: models.Float64(temp), Humidity: models.Float64(temp * 2)}

				rec, err := engine.Recommend(profile, env, nil, time.UTC)
				require.NoError(t, err)
				require.Equal(t, rec.Base+rec.WeatherAdjustment+rec.ActivityAdjustment, rec.Total)
				require.GreaterOrEqual(t, rec.WeatherAdjustment, 0)
			}
		}
	}
}

func TestRecommend_RejectsInvalidProfile(t *testing.T) {
	tests := []struct {
		name    string
		profile models.UserProfile
		field   string
	}{
		{name: "zero weight", profile: models.UserProfile{WeightKg: models.Float64(0)}, field: "weight_kg"},
		{name: "negative height", profile: models.UserProfile{HeightCm: models.Float64(-170)}, field: "height_cm"},
		{name: "unknown activity", profile: models.UserProfile{ActivityLevel: "extreme"}, field: "activity_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDefault().Recommend(tt.profile, models.EnvironmentSnapshot{}, nil, time.UTC)
			require.ErrorIs(t, err, ErrInvalidInput)

			ve, ok := err.(*ValidationError)
			require.True(t, ok)
			require.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestNew_CopiesConfig(t *testing.T) {
	cfg := DefaultConfig()
	engine := New(cfg)

	cfg.ActivityAdjustments[models.ActivityModerate] = 9999

	rec, err := engine.Recommend(models.UserProfile{}, models.EnvironmentSnapshot{}, nil, time.UTC)
	require.NoError(t, err)
	require.Equal(t, 300, rec.ActivityAdjustment)
}

func TestNew_CustomTables(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseMultipliers = map[models.ActivityLevel]float64{models.ActivityHigh: 1.5}

	rec, err := New(cfg).Recommend(models.UserProfile{ActivityLevel: models.ActivityHigh}, models.EnvironmentSnapshot{}, nil, time.UTC)
	require.NoError(t, err)
	require.Equal(t, 3150, rec.Base)
}
