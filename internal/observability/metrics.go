package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	Queries           *prometheus.CounterVec
	ShortCircuits     *prometheus.CounterVec
	ProviderErrors    *prometheus.CounterVec
	CompletionLatency prometheus.Histogram
	SessionsMinted    prometheus.Counter
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Queries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Queries by modality and outcome.",
		}, []string{"modality", "outcome"}),
		ShortCircuits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "short_circuits_total",
			Help:      "Answers produced without a completion call.",
		}, []string{"modality"}),
		ProviderErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Provider errors by provider and code.",
		}, []string{"provider", "code"}),
		CompletionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_latency_ms",
			Help:      "Latency of completion backend calls in milliseconds.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000},
		}),
		SessionsMinted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_minted_total",
			Help:      "Session ids minted for requests without one.",
		}),
	}
}

func (m *Metrics) ObserveCompletionLatency(d time.Duration) {
	m.CompletionLatency.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
