// Package metrics exposes Prometheus instrumentation for the review pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sevigo/hybrid-warden/internal/core"
)

const namespace = "hybrid_warden"

// Metrics groups the pipeline collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	webhookEvents   *prometheus.CounterVec
	reviews         *prometheus.CounterVec
	files           *prometheus.CounterVec
	stepFailures    *prometheus.CounterVec
	reviewDuration  prometheus.Histogram
	mlProbabilities prometheus.Histogram
}

// New registers the pipeline collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		webhookEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Inbound webhook deliveries by terminal handler state",
		}, []string{"state"}),
		reviews: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_total",
			Help:      "Completed review jobs by final state and overall severity",
		}, []string{"state", "severity"}),
		files: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_analyzed_total",
			Help:      "Files processed by severity, with unanalyzed files counted separately",
		}, []string{"severity"}),
		stepFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_failures_total",
			Help:      "Failed best-effort pipeline steps",
		}, []string{"step"}),
		reviewDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "review_duration_seconds",
			Help:      "Time from job start to terminal state",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		mlProbabilities: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ml_probability",
			Help:      "Classifier probabilities of analyzed files",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 9),
		}),
	}
}

// WebhookEvent counts a delivery that ended the handler in state.
func (m *Metrics) WebhookEvent(state core.State) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(string(state)).Inc()
}

// ObserveOutcome records a finished review job.
func (m *Metrics) ObserveOutcome(outcome *core.Outcome, elapsed time.Duration) {
	if m == nil || outcome == nil {
		return
	}

	severity := "none"
	if outcome.Report != nil {
		severity = outcome.Report.OverallSeverity.String()
		for _, f := range outcome.Report.Files {
			if !f.Analyzed {
				m.files.WithLabelValues("unanalyzed").Inc()
				continue
			}
			m.files.WithLabelValues(f.Severity.String()).Inc()
			m.mlProbabilities.Observe(f.Score.Probability)
		}
	}
	m.reviews.WithLabelValues(string(outcome.State), severity).Inc()

	for _, step := range outcome.FailedSteps() {
		m.stepFailures.WithLabelValues(string(step.Step)).Inc()
	}
	m.reviewDuration.Observe(elapsed.Seconds())
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
