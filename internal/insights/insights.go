// Package insights adds narrative observations to analytics results. It is
// best effort: every failure degrades to a fixed set of fallback insights.
package insights

import (
	"context"

	"github.com/JonnyWalker81/hydration/backend/internal/models"
)

// FallbackQuote is used whenever the daily quote cannot be generated
const FallbackQuote = "Stay hydrated for a healthier you!"

// Generator produces insights and a motivational quote. Implementations
// never fail; they return fallbacks instead.
type Generator interface {
	Insights(ctx context.Context, analysis *models.PatternAnalysis, rec *models.Recommendation, progress *models.ProgressReport) []models.Insight
	Quote(ctx context.Context) string
}

// FallbackInsights returns a fresh copy of the static insights
func FallbackInsights() []models.Insight {
	return []models.Insight{
		{
			Title:       "Stay Consistent",
			Description: "Maintain a regular hydration schedule throughout the day.",
			Source:      models.InsightSourceFallback,
		},
		{
			Title:       "Track Your Progress",
			Description: "Keep logging your water intake to receive personalized insights.",
			Source:      models.InsightSourceFallback,
		},
	}
}

// Static always returns the fallbacks. Used when no model is configured.
type Static struct{}

func (Static) Insights(context.Context, *models.PatternAnalysis, *models.Recommendation, *models.ProgressReport) []models.Insight {
	return FallbackInsights()
}

func (Static) Quote(context.Context) string {
	return FallbackQuote
}
