package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors for the report pipeline and the quiz surface. Registered on the
// default registry and exported through /metrics on the HTTP server.
var (
	ReportRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prepwise",
		Name:      "report_runs_total",
		Help:      "Report pipeline runs by outcome (ok, degraded, error).",
	}, []string{"outcome"})

	ReportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "prepwise",
		Name:      "report_duration_seconds",
		Help:      "Wall time of one report pipeline run.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
	})

	SearchCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prepwise",
		Name:      "search_calls_total",
		Help:      "Web search tool invocations by outcome (ok, empty, error).",
	}, []string{"outcome"})

	LLMTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prepwise",
		Name:      "llm_tokens_total",
		Help:      "Tokens consumed per model and direction (prompt, completion).",
	}, []string{"model", "direction"})

	QuizzesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "prepwise",
		Name:      "quizzes_started_total",
		Help:      "Quiz sessions created.",
	})
)
