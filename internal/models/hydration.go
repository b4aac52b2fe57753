package models

import "time"

// ActivityLevel is the self-reported activity tier of a user
type ActivityLevel string

const (
	ActivityLow      ActivityLevel = "low"
	ActivityModerate ActivityLevel = "moderate"
	ActivityHigh     ActivityLevel = "high"
)

// Valid reports whether the level is one of the known tiers
func (a ActivityLevel) Valid() bool {
	switch a {
	case ActivityLow, ActivityModerate, ActivityHigh:
		return true
	}
	return false
}

// TrendDirection classifies how intake moved across the analysed window
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
	TrendNeutral    TrendDirection = "neutral"
)

// IntakeEvent is a single recorded drink. Amount is in millilitres.
type IntakeEvent struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Amount    float64   `json:"amount"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// UserProfile holds the attributes that drive recommendations.
// Weight and height are pointers so an absent value can fall back to a
// default while an explicit non-positive value is still rejected.
type UserProfile struct {
	ID                   string        `json:"id,omitempty"`
	Name                 string        `json:"name,omitempty"`
	Phone                string        `json:"phone,omitempty"`
	Gender               string        `json:"gender,omitempty"`
	WeightKg             *float64      `json:"weight_kg,omitempty"`
	HeightCm             *float64      `json:"height_cm,omitempty"`
	ActivityLevel        ActivityLevel `json:"activity_level,omitempty"`
	DailyGoal            int           `json:"daily_goal"`
	Timezone             string        `json:"timezone,omitempty"`
	City                 string        `json:"city,omitempty"`
	NotificationsEnabled bool          `json:"notifications_enabled"`
	UpdatedAt            time.Time     `json:"updated_at,omitzero"`
}

// EnvironmentSnapshot is the weather context for a recommendation
type EnvironmentSnapshot struct {
	TemperatureC *float64 `json:"temperature_c,omitempty"`
	Humidity     *float64 `json:"humidity,omitempty"`
}

// IntakeTrend compares the first and last recorded day
type IntakeTrend struct {
	Direction  TrendDirection `json:"trend"`
	ChangeRate float64        `json:"change_rate"`
}

// PatternAnalysis summarises drinking habits over a log
type PatternAnalysis struct {
	ConsistencyScore   float64     `json:"consistency_score"`
	PeakHydrationHours []int       `json:"peak_hydration_hours"`
	IntakeTrend        IntakeTrend `json:"intake_trends"`
	DailyAverage       float64     `json:"daily_average"`
	Streak             int         `json:"streak"`
}

// Recommendation is the personalised daily intake target.
// Total is always Base + WeatherAdjustment + ActivityAdjustment.
type Recommendation struct {
	Base               int      `json:"base_recommendation"`
	WeatherAdjustment  int      `json:"weather_adjustment"`
	ActivityAdjustment int      `json:"activity_adjustment"`
	Total              int      `json:"total_recommendation"`
	Tips               []string `json:"tips"`
}

// StreakData pairs the streak anchored at today with the longest one
type StreakData struct {
	CurrentStreak int `json:"current_streak"`
	BestStreak    int `json:"best_streak"`
}

// ProgressReport is the period summary shown to users
type ProgressReport struct {
	Period              string     `json:"period"`
	TotalIntake         float64    `json:"total_intake"`
	DailyAverage        float64    `json:"daily_average"`
	GoalAchievementRate float64    `json:"goal_achievement_rate"`
	ConsistencyScore    float64    `json:"consistency_score"`
	ImprovementAreas    []string   `json:"improvement_areas"`
	Achievements        []string   `json:"achievements"`
	StreakData          StreakData `json:"streak_data"`
}

// WeeklyStats is the dashboard summary for the current calendar week
type WeeklyStats struct {
	Streak        int     `json:"streak"`
	WeeklyAverage int     `json:"weekly_average"`
	BestDay       float64 `json:"best_day"`
	DaysRecorded  int     `json:"days_recorded"`
}

// Float64 returns a pointer to v
func Float64(v float64) *float64 {
	return &v
}
