package insights

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/JonnyWalker81/hydration/backend/internal/logger"
	"github.com/JonnyWalker81/hydration/backend/internal/models"
	"github.com/JonnyWalker81/hydration/backend/internal/observability"
)

const (
	systemPrompt = "You are a hydration expert AI assistant."
	quotePrompt  = "Generate a short, motivational quote about staying hydrated and healthy."
)

var errEmptyReply = errors.New("model returned no usable content")

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config configures the OpenAI generator
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// OpenAI generates insights with a chat completion model
type OpenAI struct {
	client      chatCompleter
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

// NewOpenAI creates a generator backed by the OpenAI API
func NewOpenAI(cfg Config) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return newOpenAI(openai.NewClientWithConfig(clientCfg), cfg)
}

func newOpenAI(client chatCompleter, cfg Config) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &OpenAI{
		client:      client,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}
}

func (g *OpenAI) Insights(ctx context.Context, analysis *models.PatternAnalysis, rec *models.Recommendation, progress *models.ProgressReport) []models.Insight {
	reply, err := g.complete(ctx, BuildPrompt(analysis, rec, progress))
	if err == nil {
		if insights := ParseInsights(reply); len(insights) > 0 {
			return insights
		}
		err = errEmptyReply
	}

	logger.Ctx(ctx).Warn("insight generation failed, using fallback", logger.Err(err))
	observability.RecordInsightFallback()
	return FallbackInsights()
}

func (g *OpenAI) Quote(ctx context.Context) string {
	reply, err := g.complete(ctx, quotePrompt)
	if err != nil {
		logger.Ctx(ctx).Warn("quote generation failed, using fallback", logger.Err(err))
		return FallbackQuote
	}
	quote := strings.Trim(strings.TrimSpace(reply), `"`)
	if quote == "" {
		return FallbackQuote
	}
	return quote
}

func (g *OpenAI) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyReply
	}
	return resp.Choices[0].Message.Content, nil
}

// BuildPrompt renders the analytics results the model is asked to comment on
func BuildPrompt(analysis *models.PatternAnalysis, rec *models.Recommendation, progress *models.ProgressReport) string {
	hours := make([]string, 0, len(analysis.PeakHydrationHours))
	for _, h := range analysis.PeakHydrationHours {
		hours = append(hours, strconv.Itoa(h))
	}

	var b strings.Builder
	b.WriteString("Based on the following hydration data, provide 3-5 key insights and actionable recommendations:\n\n")
	b.WriteString("Analysis:\n")
	fmt.Fprintf(&b, "- Consistency Score: %v\n", analysis.ConsistencyScore)
	fmt.Fprintf(&b, "- Daily Average: %vml\n", analysis.DailyAverage)
	fmt.Fprintf(&b, "- Peak Hydration Hours: %s\n\n", strings.Join(hours, ", "))
	b.WriteString("Current Recommendations:\n")
	fmt.Fprintf(&b, "- Base: %dml\n", rec.Base)
	fmt.Fprintf(&b, "- Weather Adjustment: %dml\n", rec.WeatherAdjustment)
	fmt.Fprintf(&b, "- Activity Adjustment: %dml\n\n", rec.ActivityAdjustment)
	b.WriteString("Progress:\n")
	fmt.Fprintf(&b, "- Goal Achievement Rate: %v%%\n", progress.GoalAchievementRate)
	fmt.Fprintf(&b, "- Current Streak: %d days\n", progress.StreakData.CurrentStreak)
	fmt.Fprintf(&b, "- Best Streak: %d days\n\n", progress.StreakData.BestStreak)
	b.WriteString("Provide insights in a structured format with 'Title:' and 'Description:' lines for each insight.")
	return b.String()
}

// ParseInsights reads "Title:" and "Description:" lines from a model reply.
// Leading list markers and bold markup are ignored; untitled entries are dropped.
func ParseInsights(reply string) []models.Insight {
	var (
		insights []models.Insight
		current  *models.Insight
	)
	flush := func() {
		if current != nil && current.Title != "" {
			insights = append(insights, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(reply, "\n") {
		line = strings.ReplaceAll(strings.TrimSpace(line), "**", "")
		line = strings.TrimLeft(line, "-*#0123456789. ")

		switch {
		case strings.HasPrefix(line, "Title:"):
			flush()
			current = &models.Insight{
				Title:  strings.TrimSpace(strings.TrimPrefix(line, "Title:")),
				Source: models.InsightSourceModel,
			}
		case strings.HasPrefix(line, "Description:") && current != nil:
			current.Description = strings.TrimSpace(strings.TrimPrefix(line, "Description:"))
		}
	}
	flush()

	return insights
}
