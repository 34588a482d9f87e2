package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. Methods are
// nil-safe so callers can run without metrics in tests.
type Metrics struct {
	// Completed essay analyses
	EssaysAnalyzed prometheus.Counter

	// Analyses refused because the free allowance ran out
	QuotaDenials prometheus.Counter

	// Successful license activations
	LicensesActivated prometheus.Counter

	// Evaluator round-trip latency by outcome
	EvaluatorLatency *prometheus.HistogramVec

	// HTTP request latency by route and status
	RequestLatency *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		EssaysAnalyzed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bandcheck_essays_analyzed_total",
			Help: "Total number of completed essay analyses",
		}),
		QuotaDenials: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bandcheck_quota_denials_total",
			Help: "Total analyses refused because the free allowance was exhausted",
		}),
		LicensesActivated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bandcheck_licenses_activated_total",
			Help: "Total successful license activations",
		}),
		EvaluatorLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bandcheck_evaluator_duration_seconds",
			Help:    "Duration of evaluator round trips by outcome",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"outcome"}), // outcome: "ok", "error"

		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bandcheck_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"route", "status"}),
	}
}

// IncrementEssaysAnalyzed records one completed analysis.
func (m *Metrics) IncrementEssaysAnalyzed() {
	if m != nil {
		m.EssaysAnalyzed.Inc()
	}
}

// IncrementQuotaDenials records one refused analysis.
func (m *Metrics) IncrementQuotaDenials() {
	if m != nil {
		m.QuotaDenials.Inc()
	}
}

// IncrementLicensesActivated records one license activation.
func (m *Metrics) IncrementLicensesActivated() {
	if m != nil {
		m.LicensesActivated.Inc()
	}
}

// ObserveEvaluatorLatency records the duration of one evaluator round trip.
func (m *Metrics) ObserveEvaluatorLatency(outcome string, d time.Duration) {
	if m != nil {
		m.EvaluatorLatency.WithLabelValues(outcome).Observe(d.Seconds())
	}
}

// ObserveRequestLatency records the duration of one HTTP request.
func (m *Metrics) ObserveRequestLatency(route, status string, d time.Duration) {
	if m != nil {
		m.RequestLatency.WithLabelValues(route, status).Observe(d.Seconds())
	}
}
