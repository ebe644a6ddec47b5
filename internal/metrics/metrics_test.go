package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/hybrid-warden/internal/core"
)

func TestObserveOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	report := &core.ReviewReport{
		OverallSeverity: core.SeverityHigh,
		Files: []core.FileAnalysisResult{
			{FilePath: "a.py", Severity: core.SeverityHigh, Analyzed: true, Score: core.MLScore{Probability: 0.9}},
			{FilePath: "b.py", Severity: core.SeveritySafe, Analyzed: true},
			{FilePath: "c.py", Analyzed: false},
		},
	}
	m.ObserveOutcome(&core.Outcome{
		State:  core.StateDone,
		Report: report,
		Steps:  []core.StepResult{{Step: core.StateReporting, Err: errors.New("boom")}, {Step: core.StateNotifying}},
	}, 2*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.reviews.WithLabelValues("done", "High")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.files.WithLabelValues("High")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.files.WithLabelValues("Safe")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.files.WithLabelValues("unanalyzed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stepFailures.WithLabelValues("reporting")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.stepFailures.WithLabelValues("notifying")))
}

func TestWebhookEventAndHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.WebhookEvent(core.StateIgnored)
	m.WebhookEvent(core.StateIgnored)
	m.WebhookEvent(core.StateRejected)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.webhookEvents.WithLabelValues("ignored")))

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hybrid_warden_webhook_events_total{state="rejected"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.WebhookEvent(core.StateReceived)
		m.ObserveOutcome(&core.Outcome{State: core.StateDone}, time.Second)
	})
}
