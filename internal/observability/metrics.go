// Package observability holds the Prometheus collectors shared by the
// HTTP layer and the services.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Report kinds
const (
	ReportFull           = "full"
	ReportAnalysis       = "analysis"
	ReportRecommendation = "recommendation"
	ReportProgress       = "progress"
	ReportWeekly         = "weekly"
	ReportFallback       = "fallback"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hydration",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Number of HTTP requests served, labeled by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hydration",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Time spent serving HTTP requests, labeled by method and route.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"method", "route"})

	reportsGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hydration",
		Subsystem: "analytics",
		Name:      "reports_generated_total",
		Help:      "Number of analytics results produced, labeled by kind.",
	}, []string{"kind"})

	insightFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hydration",
		Subsystem: "insights",
		Name:      "fallbacks_total",
		Help:      "Number of times the static insights replaced the language model output.",
	})

	notificationsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hydration",
		Subsystem: "notifications",
		Name:      "sent_total",
		Help:      "Number of notification attempts, labeled by result.",
	}, []string{"result"})

	intakeRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hydration",
		Subsystem: "intake",
		Name:      "recorded_total",
		Help:      "Number of intake submissions, labeled by whether a new row was written.",
	}, []string{"created"})
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration, reportsGenerated, insightFallbacks, notificationsSent, intakeRecorded)
}

// RecordHTTPRequest observes one served request.
func RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordReport counts a produced analytics result of the given kind.
func RecordReport(kind string) {
	reportsGenerated.WithLabelValues(kind).Inc()
}

// RecordInsightFallback counts a static insight substitution.
func RecordInsightFallback() {
	insightFallbacks.Inc()
}

// RecordNotification counts a notification delivery outcome.
func RecordNotification(delivered bool) {
	result := "failed"
	if delivered {
		result = "delivered"
	}
	notificationsSent.WithLabelValues(result).Inc()
}

// RecordIntake counts an intake submission.
func RecordIntake(created bool) {
	intakeRecorded.WithLabelValues(strconv.FormatBool(created)).Inc()
}
