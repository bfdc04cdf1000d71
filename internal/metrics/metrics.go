// Package metrics exposes prometheus counters for the chat endpoints.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Chat outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeBadRequest    = "bad_request"
	OutcomeUnavailable   = "unavailable"
	OutcomeProviderError = "provider_error"
	OutcomeStoreError    = "store_error"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry        *prometheus.Registry
	chatRequests    *prometheus.CounterVec
	providerLatency prometheus.Histogram
	resets          *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		chatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatbot",
			Name:      "chat_requests_total",
			Help:      "Chat turns handled, by transport and outcome.",
		}, []string{"transport", "outcome"}),
		providerLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "chatbot",
			Name:      "provider_request_duration_seconds",
			Help:      "Latency of completion provider calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatbot",
			Name:      "conversation_resets_total",
			Help:      "Conversation clear requests, by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.chatRequests,
		m.providerLatency,
		m.resets,
	)
	return m
}

// Handler serves the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveChat counts one chat turn.
func (m *Metrics) ObserveChat(transport, outcome string) {
	if m == nil {
		return
	}
	m.chatRequests.WithLabelValues(transport, outcome).Inc()
}

// ObserveProvider records the duration of one provider call started at start.
func (m *Metrics) ObserveProvider(start time.Time) {
	if m == nil {
		return
	}
	m.providerLatency.Observe(time.Since(start).Seconds())
}

// ObserveReset counts one clear request.
func (m *Metrics) ObserveReset(outcome string) {
	if m == nil {
		return
	}
	m.resets.WithLabelValues(outcome).Inc()
}
