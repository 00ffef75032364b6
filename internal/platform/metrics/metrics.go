// Package metrics holds the Prometheus collectors of the reconciliation engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics registers its collectors on a private registry so tests can create as many as they need
type Metrics struct {
	Registry *prometheus.Registry

	passesTotal         *prometheus.CounterVec
	passDuration        *prometheus.HistogramVec
	transactionsTotal   *prometheus.CounterVec
	collaboratorErrors  *prometheus.CounterVec
	outboxPublished     *prometheus.CounterVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		passesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reconciliation_passes_total",
			Help: "Reconciliation passes by final status",
		}, []string{"status"}),
		passDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reconciliation_pass_duration_seconds",
			Help:    "Duration of reconciliation passes",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		transactionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reconciliation_transactions_total",
			Help: "Bank transactions processed by outcome",
		}, []string{"outcome"}),
		collaboratorErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reconciliation_collaborator_errors_total",
			Help: "Collaborator calls that failed after retries",
		}, []string{"collaborator"}),
		outboxPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reconciliation_outbox_messages_total",
			Help: "Outbox messages by publishing result",
		}, []string{"result"}),
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// RecordPass records a finished pass and its per-transaction outcomes
func (m *Metrics) RecordPass(status string, duration time.Duration, result *reconciliation.BulkResult) {
	m.passesTotal.WithLabelValues(status).Inc()
	m.passDuration.WithLabelValues(status).Observe(duration.Seconds())

	if result == nil {
		return
	}
	m.transactionsTotal.WithLabelValues("reconciled").Add(float64(result.Reconciled))
	m.transactionsTotal.WithLabelValues("suggested").Add(float64(result.Suggested))
	m.transactionsTotal.WithLabelValues("unreconciled").Add(float64(result.Unreconciled))
	m.transactionsTotal.WithLabelValues("failed").Add(float64(result.Failed))
	m.transactionsTotal.WithLabelValues("skipped").Add(float64(result.Skipped))
}

func (m *Metrics) IncrCollaboratorError(collaborator string) {
	m.collaboratorErrors.WithLabelValues(collaborator).Inc()
}

func (m *Metrics) IncrOutboxMessage(result string) {
	m.outboxPublished.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
