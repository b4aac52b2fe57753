package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/JonnyWalker81/hydration/backend/internal/analytics"
	"github.com/JonnyWalker81/hydration/backend/internal/insights"
	"github.com/JonnyWalker81/hydration/backend/internal/models"
)

var reportCmd = &cobra.Command{
	Use:   "report <log.json>",
	Short: "Build a hydration report from an intake log file",
	Long: `Build a full hydration report offline from a JSON file holding a profile,
an optional environment snapshot and a list of intake events. Use "-" to read stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

var (
	reportTimezone string
	reportPeriod   string
	reportChart    bool
	reportNow      string
)

const (
	chartHeight = 10
	chartWidth  = 60
)

func init() {
	reportCmd.Flags().StringVar(&reportTimezone, "tz", "UTC", "IANA time zone that defines calendar days")
	reportCmd.Flags().StringVar(&reportPeriod, "period", analytics.DefaultPeriod, "Label for the progress report period")
	reportCmd.Flags().BoolVar(&reportChart, "chart", true, "Print a chart of daily totals after the report")
	reportCmd.Flags().StringVar(&reportNow, "now", "", "Reference time in RFC3339 (default: current time)")
}

// intakeLog is the offline input format
type intakeLog struct {
	Profile     models.UserProfile         `json:"profile"`
	Environment models.EnvironmentSnapshot `json:"environment"`
	Events      []models.IntakeEvent       `json:"events"`
}

func runReport(cmd *cobra.Command, args []string) error {
	in, err := readIntakeLog(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	loc, err := time.LoadLocation(reportTimezone)
	if err != nil {
		return fmt.Errorf("invalid time zone: %w", err)
	}

	now := time.Now()
	if reportNow != "" {
		if now, err = time.Parse(time.RFC3339, reportNow); err != nil {
			return fmt.Errorf("invalid --now: %w", err)
		}
	}

	engine := analytics.NewDefault()
	if configFile != "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		engine = analytics.New(cfg.Analytics.EngineConfig())
	}

	report, totals, err := buildOfflineReport(cmd.Context(), engine, in, reportPeriod, now.In(loc))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}

	if reportChart {
		if chart := dailyChart(totals); chart != "" {
			fmt.Fprintln(out)
			fmt.Fprintln(out, chart)
		}
	}
	return nil
}

func readIntakeLog(stdin io.Reader, path string) (*intakeLog, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open intake log: %w", err)
		}
		defer f.Close()
		r = f
	}

	var in intakeLog
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("failed to decode intake log: %w", err)
	}
	return &in, nil
}

// buildOfflineReport composes a full report without storage or network.
// Insights are always the static fallbacks.
func buildOfflineReport(ctx context.Context, engine *analytics.Engine, in *intakeLog, period string, now time.Time) (*models.HydrationReport, analytics.DailyTotals, error) {
	loc := now.Location()

	totals, err := engine.Aggregate(in.Events, loc)
	if err != nil {
		return nil, nil, err
	}
	analysis, err := engine.Analyze(in.Events, loc)
	if err != nil {
		return nil, nil, err
	}
	rec, err := engine.Recommend(in.Profile, in.Environment, in.Events, loc)
	if err != nil {
		return nil, nil, err
	}
	progress, err := engine.Report(in.Profile, in.Events, period, now)
	if err != nil {
		return nil, nil, err
	}

	gen := insights.Static{}
	report := &models.HydrationReport{
		Analysis:        analysis,
		Recommendations: rec,
		Progress:        progress,
		Insights:        gen.Insights(ctx, analysis, rec, progress),
		DailyQuote:      gen.Quote(ctx),
	}
	if in.Environment.TemperatureC != nil || in.Environment.Humidity != nil {
		env := in.Environment
		report.Environment = &env
	}
	return report, totals, nil
}

// dailyChart plots daily totals in date order. Empty for fewer than two days.
func dailyChart(totals analytics.DailyTotals) string {
	values := totals.Values()
	if len(values) < 2 {
		return ""
	}
	days := totals.Days()
	caption := fmt.Sprintf("Daily intake (ml), %s to %s", days[0], days[len(days)-1])
	return asciigraph.Plot(values,
		asciigraph.Height(chartHeight),
		asciigraph.Width(chartWidth),
		asciigraph.Caption(caption),
	)
}
