package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "sessions"

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry            *prometheus.Registry
	authorizations      *prometheus.CounterVec
	sessionsStarted     prometheus.Counter
	sessionsCompleted   prometheus.Counter
	sessionsReaped      prometheus.Counter
	settledAmount       prometheus.Counter
	connectorsCreated   prometheus.Counter
	connectorErrors     *prometheus.CounterVec
	reaperPassDuration  prometheus.Histogram
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New registers every collector on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		authorizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorizations_total",
			Help:      "Tag authorization decisions by outcome.",
		}, []string{"status"}),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "started_total",
			Help:      "Charging sessions created.",
		}),
		sessionsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completed_total",
			Help:      "Charging sessions stopped by the charger.",
		}),
		sessionsReaped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reaped_total",
			Help:      "Running sessions marked failed for lack of progress.",
		}),
		settledAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settled_amount_total",
			Help:      "Sum of prices transferred from payers to charger owners.",
		}),
		connectorsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connectors_discovered_total",
			Help:      "Connectors created from status reports.",
		}),
		connectorErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connector_errors_total",
			Help:      "Connector status reports carrying an error code.",
		}, []string{"code"}),
		reaperPassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reaper_pass_duration_seconds",
			Help:      "Duration of stale session reaper passes.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Internal API requests by route and status code.",
		}, []string{"route", "code"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Internal API latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.authorizations,
		m.sessionsStarted,
		m.sessionsCompleted,
		m.sessionsReaped,
		m.settledAmount,
		m.connectorsCreated,
		m.connectorErrors,
		m.reaperPassDuration,
		m.httpRequests,
		m.httpRequestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Authorization(status string) {
	if m == nil {
		return
	}
	m.authorizations.WithLabelValues(status).Inc()
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
}

// SessionCompleted counts a stop and the amount moved by its settlement.
func (m *Metrics) SessionCompleted(settled decimal.Decimal) {
	if m == nil {
		return
	}
	m.sessionsCompleted.Inc()
	if settled.IsPositive() {
		m.settledAmount.Add(settled.InexactFloat64())
	}
}

func (m *Metrics) SessionsReaped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sessionsReaped.Add(float64(n))
}

func (m *Metrics) ReaperPass(d time.Duration) {
	if m == nil {
		return
	}
	m.reaperPassDuration.Observe(d.Seconds())
}

func (m *Metrics) ConnectorDiscovered() {
	if m == nil {
		return
	}
	m.connectorsCreated.Inc()
}

func (m *Metrics) ConnectorError(code string) {
	if m == nil {
		return
	}
	m.connectorErrors.WithLabelValues(code).Inc()
}

// HTTPRequest records one served request.
func (m *Metrics) HTTPRequest(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.httpRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}
