package consultancy

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// sdkMetrics describes retrieval quality as seen by the embedding program:
// how often each mode runs, how strong its best hit is, and how many chat
// answers had to admit low confidence.
type sdkMetrics struct {
	searches    *prometheus.CounterVec   // mode, outcome
	bestScore   *prometheus.HistogramVec // mode
	answers     *prometheus.CounterVec   // method, confidence
	maintenance *prometheus.CounterVec   // task, status
	latency     *prometheus.HistogramVec // call
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consultancy", Subsystem: "sdk", Name: name, Help: help,
		}, labels)
	}
	histogram := func(name, help string, buckets []float64, label string) *prometheus.HistogramVec {
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "consultancy", Subsystem: "sdk", Name: name, Help: help, Buckets: buckets,
		}, []string{label})
	}

	var err error
	m := &sdkMetrics{}
	if m.searches, err = shared(reg, counter("searches_total",
		"Searches by mode and outcome (hit, empty, error).", "mode", "outcome")); err != nil {
		return nil, err
	}
	if m.bestScore, err = shared(reg, histogram("best_score",
		"Score of the top-ranked case per search.",
		[]float64{0.05, 0.1, 0.25, 0.5, 0.75, 1, 2, 4}, "mode")); err != nil {
		return nil, err
	}
	if m.answers, err = shared(reg, counter("answers_total",
		"Chat answers by composition method and confidence.", "method", "confidence")); err != nil {
		return nil, err
	}
	if m.maintenance, err = shared(reg, counter("maintenance_total",
		"Reindex and ingest runs by status.", "task", "status")); err != nil {
		return nil, err
	}
	if m.latency, err = shared(reg, histogram("call_duration_seconds",
		"Client call latency, embedding and model time included.",
		[]float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 10, 30, 120}, "call")); err != nil {
		return nil, err
	}
	return m, nil
}

// shared registers c, or returns the equivalent collector another Client
// already registered on reg.
func shared[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var dup prometheus.AlreadyRegisteredError
	if !errors.As(err, &dup) {
		return c, fmt.Errorf("consultancy: register %T: %w", c, err)
	}
	existing, ok := dup.ExistingCollector.(T)
	if !ok {
		return c, fmt.Errorf("consultancy: collector already registered as %T", dup.ExistingCollector)
	}
	return existing, nil
}

// observer records client calls. A nil observer is a no-op.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

func (o *observer) searched(mode string, rs []Result, start time.Time, err error) {
	if o == nil {
		return
	}
	took := time.Since(start)

	outcome := "hit"
	switch {
	case err != nil:
		outcome = "error"
	case len(rs) == 0:
		outcome = "empty"
	}
	if o.metrics != nil {
		o.metrics.searches.WithLabelValues(mode, outcome).Inc()
		o.metrics.latency.WithLabelValues("search").Observe(took.Seconds())
		if outcome == "hit" {
			o.metrics.bestScore.WithLabelValues(mode).Observe(rs[0].Score)
		}
	}

	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Warn("search failed", "mode", mode, "took", took, "error", err)
		return
	}
	attrs := []any{"mode", mode, "results", len(rs), "took", took}
	if len(rs) > 0 {
		attrs = append(attrs, "top_case", rs[0].Case.ID, "top_score", rs[0].Score)
	}
	o.logger.Debug("search completed", attrs...)
}

func (o *observer) answered(a *Answer, start time.Time, err error) {
	if o == nil {
		return
	}
	took := time.Since(start)

	if o.metrics != nil {
		o.metrics.latency.WithLabelValues("chat").Observe(took.Seconds())
		if err == nil {
			confidence := "confident"
			if a.LowConfidence {
				confidence = "low"
			}
			o.metrics.answers.WithLabelValues(a.Method, confidence).Inc()
		}
	}

	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Warn("chat rejected", "took", took, "error", err)
		return
	}
	o.logger.Debug("chat answered",
		"method", a.Method,
		"search_mode", a.SearchMode,
		"trade", a.Trade,
		"sources", a.Sources,
		"best_score", a.BestScore,
		"low_confidence", a.LowConfidence,
		"took", took,
	)
}

// maintained records a reindex or ingest run. Failures are logged at error
// level since the corpus or vector store is left as it was.
func (o *observer) maintained(task string, start time.Time, err error, attrs ...any) {
	if o == nil {
		return
	}
	took := time.Since(start)

	if o.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		o.metrics.maintenance.WithLabelValues(task, status).Inc()
		o.metrics.latency.WithLabelValues(task).Observe(took.Seconds())
	}

	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Error(task+" failed", "took", took, "error", err)
		return
	}
	o.logger.Info(task+" completed", append(attrs, "took", took)...)
}
