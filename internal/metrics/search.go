package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and answer Prometheus metrics.
var (
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_duration_seconds",
			Help:      "Ranking duration in seconds, embedding call included",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"mode"},
	)

	SearchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "search_errors_total",
			Help:      "Failed searches by mode",
		},
		[]string{"mode"},
	)

	LowConfidenceTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "low_confidence_total",
			Help:      "Answers withheld because the best score was below the gate",
		},
		[]string{"mode"},
	)

	AnswersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "answers_total",
			Help:      "Composed answers by composition method",
		},
		[]string{"method"}, // llm / template / template_fallback
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Chat completion duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"model", "status"},
	)

	LLMBreakerState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "llm_breaker_state",
			Help:      "LLM circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
	)

	CorpusCases = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "corpus_cases",
			Help:      "Number of cases in the loaded corpus",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search and answer metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchErrorsTotal)
	prometheus.MustRegister(LowConfidenceTotal)
	prometheus.MustRegister(AnswersTotal)
	prometheus.MustRegister(LLMRequestDuration)
	prometheus.MustRegister(LLMBreakerState)
	prometheus.MustRegister(CorpusCases)
	searchMetricsRegistered = true
}
