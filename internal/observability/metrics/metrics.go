package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics captures transport-level request signals.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers HTTP instruments against the default registerer.
func NewHTTPMetrics() *HTTPMetrics {
	return newHTTPMetrics(prometheus.DefaultRegisterer)
}

func newHTTPMetrics(registerer prometheus.Registerer) *HTTPMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reelgate_http_requests_total",
			Help: "Count of HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reelgate_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	registerer.MustRegister(m.requests, m.duration)
	return m
}

// GinMiddleware records request counts and latencies.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// GateMetrics captures metering gate decisions.
type GateMetrics struct {
	verdicts  *prometheus.CounterVec
	renewals  prometheus.Counter
	conflicts prometheus.Counter
}

// NewGateMetrics registers gate instruments against the default registerer.
func NewGateMetrics() *GateMetrics {
	return newGateMetrics(prometheus.DefaultRegisterer)
}

func newGateMetrics(registerer prometheus.Registerer) *GateMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &GateMetrics{
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reelgate_gate_verdicts_total",
			Help: "Count of metering gate verdicts by outcome.",
		}, []string{"outcome"}),
		renewals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reelgate_gate_renewals_total",
			Help: "Count of successful key renewals performed by the gate.",
		}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reelgate_gate_renewal_conflicts_total",
			Help: "Count of optimistic-lock conflicts during renewal.",
		}),
	}

	registerer.MustRegister(m.verdicts, m.renewals, m.conflicts)
	return m
}

// RecordVerdict increments the verdict counter for the given outcome.
func (m *GateMetrics) RecordVerdict(outcome string) {
	if m == nil {
		return
	}
	m.verdicts.WithLabelValues(strings.TrimSpace(outcome)).Inc()
}

// RecordRenewal increments the successful-renewal counter.
func (m *GateMetrics) RecordRenewal() {
	if m == nil {
		return
	}
	m.renewals.Inc()
}

// RecordConflict increments the renewal-conflict counter.
func (m *GateMetrics) RecordConflict() {
	if m == nil {
		return
	}
	m.conflicts.Inc()
}
