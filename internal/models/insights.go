package models

// InsightSource records whether an insight came from the language model or the fallback set
type InsightSource string

const (
	InsightSourceModel    InsightSource = "model"
	InsightSourceFallback InsightSource = "fallback"
)

// Insight is a short narrative observation about a user's hydration
type Insight struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Source      InsightSource `json:"source,omitempty"`
}

// HydrationReport is the full report returned by the analytics endpoint
type HydrationReport struct {
	Analysis        *PatternAnalysis     `json:"analysis"`
	Recommendations *Recommendation      `json:"recommendations"`
	Progress        *ProgressReport      `json:"progress"`
	Insights        []Insight            `json:"ai_insights"`
	Environment     *EnvironmentSnapshot `json:"environment,omitempty"`
	DailyQuote      string               `json:"daily_quote,omitempty"`
	Degraded        bool                 `json:"degraded,omitempty"`
}
