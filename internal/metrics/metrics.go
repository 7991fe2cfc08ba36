// Package metrics exposes Prometheus instruments for fetches and evaluations.
// All methods are safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the signal service.
type Metrics struct {
	registry *prometheus.Registry

	FetchDuration     *prometheus.HistogramVec // labels: source
	FetchFailures     *prometheus.CounterVec   // labels: source
	Evaluations       *prometheus.CounterVec   // labels: recommendation
	IndicatorFailures *prometheus.CounterVec   // labels: indicator
	EvaluationErrors  *prometheus.CounterVec   // labels: kind
	Confidence        prometheus.Histogram
}

// New registers every metric on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trendsignal_fetch_duration_seconds",
			Help:    "Latency of market data fetches.",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendsignal_fetch_failures_total",
			Help: "Market data fetches that failed or returned unusable data.",
		}, []string{"source"}),
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendsignal_evaluations_total",
			Help: "Completed signal evaluations by recommendation.",
		}, []string{"recommendation"}),
		IndicatorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendsignal_indicator_failures_total",
			Help: "Indicators that could not produce a value and scored 0.",
		}, []string{"indicator"}),
		EvaluationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendsignal_evaluation_errors_total",
			Help: "Evaluations that ended in an error, by failure kind.",
		}, []string{"kind"}),
		Confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trendsignal_confidence_pct",
			Help:    "Distribution of confidence scores.",
			Buckets: []float64{0, 33, 67, 100},
		}),
	}
	reg.MustRegister(
		m.FetchDuration, m.FetchFailures, m.Evaluations,
		m.IndicatorFailures, m.EvaluationErrors, m.Confidence,
	)
	return m
}

// ObserveFetch records one fetch attempt.
func (m *Metrics) ObserveFetch(source string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(source).Observe(d.Seconds())
	if err != nil {
		m.FetchFailures.WithLabelValues(source).Inc()
	}
}

// ObserveEvaluation records a finished evaluation.
func (m *Metrics) ObserveEvaluation(recommendation string, confidence int) {
	if m == nil {
		return
	}
	m.Evaluations.WithLabelValues(recommendation).Inc()
	m.Confidence.Observe(float64(confidence))
}

// IndicatorFailed counts an indicator scored as not contributing.
func (m *Metrics) IndicatorFailed(indicator string) {
	if m == nil {
		return
	}
	m.IndicatorFailures.WithLabelValues(indicator).Inc()
}

// EvaluationFailed counts an evaluation error of the given kind.
func (m *Metrics) EvaluationFailed(kind string) {
	if m == nil {
		return
	}
	m.EvaluationErrors.WithLabelValues(kind).Inc()
}

// Handler serves the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
