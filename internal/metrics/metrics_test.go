package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/packline/jobdesk-api/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.Transition("production_complete", nil)
	m.Transition("production_complete", errors.New("boom"))
	m.SyncTarget("purchase_order", nil)
	m.ObserveRequest("/api/jobs", http.MethodGet, 200, 10*time.Millisecond)

	count, err := testutil.GatherAndCount(reg, "jobdesk_assignment_transitions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `jobdesk_financial_sync_targets_total{outcome="ok",target="purchase_order"} 1`)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.Transition("x", nil)
		m.SyncTarget("x", nil)
		m.JobRun("x", nil)
		m.ObserveRequest("/", "GET", 200, time.Second)
	})
}
