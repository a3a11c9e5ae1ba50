package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "newsmentor"

// Metrics satisfies the observer interfaces of the news aggregator, the
// LLM and speech clients, and the discussion coordinator.
type Metrics struct {
	registry *prometheus.Registry

	providerFetches  *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	externalCalls    *prometheus.CounterVec
	externalDuration *prometheus.HistogramVec
	turns            *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		providerFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "news_provider_fetches_total",
				Help:      "News provider fetches by outcome",
			},
			[]string{"provider", "outcome"},
		),
		providerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "news_provider_fetch_duration_seconds",
				Help:      "News provider fetch duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		externalCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "external_calls_total",
				Help:      "Calls to generation and synthesis vendors by outcome",
			},
			[]string{"operation", "outcome"},
		),
		externalDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "external_call_duration_seconds",
				Help:      "Vendor call duration in seconds",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 40},
			},
			[]string{"operation"},
		),
		turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "discussion_turns_total",
				Help:      "Discussion operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
	}

	m.registry.MustRegister(
		m.providerFetches,
		m.providerDuration,
		m.externalCalls,
		m.externalDuration,
		m.turns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveFetch(provider, outcome string, elapsed time.Duration) {
	m.providerFetches.WithLabelValues(provider, outcome).Inc()
	m.providerDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveCall(operation, outcome string, elapsed time.Duration) {
	m.externalCalls.WithLabelValues(operation, outcome).Inc()
	m.externalDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveTurn(operation, outcome string) {
	m.turns.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
