// Package observability exposes prometheus metrics for metadata
// resolution and the HTTP API.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tranvictor/nftstake/metadata"
)

const namespace = "nftstake"

// Metrics owns its registry so several instances (one per test) can
// coexist. It implements metadata.Observer.
type Metrics struct {
	registry *prometheus.Registry

	gatewayAttempts *prometheus.CounterVec
	gatewayLatency  *prometheus.HistogramVec
	resolutions     *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
}

var _ metadata.Observer = (*Metrics)(nil)

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		gatewayAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "metadata",
			Name:      "gateway_attempts_total",
			Help:      "Metadata fetch attempts segmented by gateway and outcome.",
		}, []string{"gateway", "outcome"}),
		gatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "metadata",
			Name:      "gateway_duration_seconds",
			Help:      "Latency of metadata fetch attempts per gateway.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"gateway"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "metadata",
			Name:      "resolutions_total",
			Help:      "Token metadata resolutions segmented by outcome.",
		}, []string{"outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed by the API.",
		}, []string{"route", "method", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	m.registry.MustRegister(
		m.gatewayAttempts,
		m.gatewayLatency,
		m.resolutions,
		m.requests,
		m.requestLatency,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) GatewayAttempt(gateway string, ok bool, elapsed time.Duration) {
	outcome := "error"
	if ok {
		outcome = "ok"
	}
	m.gatewayAttempts.WithLabelValues(gateway, outcome).Inc()
	m.gatewayLatency.WithLabelValues(gateway).Observe(elapsed.Seconds())
}

func (m *Metrics) Resolution(outcome string) {
	m.resolutions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestLatency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
