// Package metrics exposes Prometheus counters for HTTP traffic, workflow
// transitions and financial sync outcomes.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registered collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	transitions  *prometheus.CounterVec
	syncTargets  *prometheus.CounterVec
	jobRuns      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobdesk_http_requests_total",
				Help: "Total number of HTTP requests by route, method and status.",
			},
			[]string{"route", "method", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jobdesk_http_request_duration_seconds",
				Help:    "Latency of HTTP requests by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobdesk_assignment_transitions_total",
				Help: "Total number of assignment workflow transitions by name and outcome.",
			},
			[]string{"transition", "outcome"},
		),
		syncTargets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobdesk_financial_sync_targets_total",
				Help: "Linked documents processed by the financial sync, by target and outcome.",
			},
			[]string{"target", "outcome"},
		),
		jobRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobdesk_background_job_runs_total",
				Help: "Background job runs by job and outcome.",
			},
			[]string{"job", "outcome"},
		),
	}

	reg.MustRegister(m.httpRequests, m.httpLatency, m.transitions, m.syncTargets, m.jobRuns)
	return m
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveRequest records one served request
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Transition records one workflow transition
func (m *Metrics) Transition(name string, err error) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(name, outcome(err)).Inc()
}

// SyncTarget records one linked document of a financial sync
func (m *Metrics) SyncTarget(target string, err error) {
	if m == nil {
		return
	}
	m.syncTargets.WithLabelValues(target, outcome(err)).Inc()
}

// JobRun records one background job run
func (m *Metrics) JobRun(job string, err error) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, outcome(err)).Inc()
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
