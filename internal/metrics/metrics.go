// Package metrics exposes the service's Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vacancy_parser"

// Submission outcomes.
const (
	OutcomeStored     = "stored"
	OutcomeValidation = "validation_error"
	OutcomeUpstream   = "upstream_error"
	OutcomePersist    = "persistence_error"
	OutcomeInternal   = "internal_error"
)

// Metrics holds all service metrics
type Metrics struct {
	Submissions *prometheus.CounterVec

	ClassificationAttempts prometheus.Counter
	ClassificationFailures prometheus.Counter
	ClassificationDuration prometheus.Histogram

	RateLimitDecisions *prometheus.CounterVec

	reg *prometheus.Registry
}

// New registers all metrics on reg. Use prometheus.NewRegistry() in tests to
// avoid duplicate registration on the default registry.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Processed submissions by outcome",
		}, []string{"outcome"}),
		ClassificationAttempts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classification_attempts_total",
			Help:      "Calls made to the classification provider, retries included",
		}),
		ClassificationFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classification_failures_total",
			Help:      "Classifications that failed after exhausting retries",
		}),
		ClassificationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classification_duration_seconds",
			Help:      "Time to classify one submission",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
		}),
		RateLimitDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_decisions_total",
			Help:      "Rate limit decisions by result",
		}, []string{"decision"}),
		reg: reg,
	}
}

// TrackClients exposes the number of clients held by the rate limiter.
func (m *Metrics) TrackClients(count func() float64) {
	promauto.With(m.reg).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ratelimit_tracked_clients",
		Help:      "Client records currently held by the rate limiter",
	}, count)
}

// ObserveRateLimit counts one allowed or blocked decision.
func (m *Metrics) ObserveRateLimit(allowed bool) {
	decision := "blocked"
	if allowed {
		decision = "allowed"
	}
	m.RateLimitDecisions.WithLabelValues(decision).Inc()
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
