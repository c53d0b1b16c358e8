// Package metrics holds the Prometheus collectors for the edition service.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pep299/american-standard/internal/llm"
)

// Generation outcomes
const (
	OutcomeGenerated = "generated"
	OutcomeExists    = "exists"
	OutcomeFallback  = "fallback"
	OutcomeFailed    = "failed"
)

// Metrics holds the service collectors.
//
// All metrics are prefixed with "edition_":
//   - edition_http_requests_total{method,route,status}
//   - edition_http_request_duration_seconds{method,route}
//   - edition_model_calls_total{provider,mode,outcome}
//   - edition_model_call_duration_seconds{provider,mode}
//   - edition_pipeline_stage_duration_seconds{stage,outcome}
//   - edition_generations_total{outcome}
//   - edition_articles_generated
type Metrics struct {
	registry prometheus.Gatherer

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ModelCallsTotal   *prometheus.CounterVec
	ModelCallDuration *prometheus.HistogramVec

	StageDuration *prometheus.HistogramVec

	GenerationsTotal  *prometheus.CounterVec
	ArticlesGenerated prometheus.Gauge
}

// New registers the collectors on reg. Passing a fresh registry per
// instance keeps tests free of duplicate registration panics.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	slow := []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120, 300}

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edition_http_requests_total",
				Help: "Total number of HTTP requests served",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edition_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		ModelCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edition_model_calls_total",
				Help: "Total number of model gateway calls",
			},
			[]string{"provider", "mode", "outcome"}, // outcome: "ok", "api_error", "missing_key", "error"
		),
		ModelCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edition_model_call_duration_seconds",
				Help:    "Duration of model gateway calls in seconds",
				Buckets: slow,
			},
			[]string{"provider", "mode"},
		),

		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edition_pipeline_stage_duration_seconds",
				Help:    "Duration of generation pipeline stages in seconds",
				Buckets: slow,
			},
			[]string{"stage", "outcome"},
		),

		GenerationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edition_generations_total",
				Help: "Total number of generation triggers by outcome",
			},
			[]string{"outcome"},
		),
		ArticlesGenerated: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "edition_articles_generated",
				Help: "Number of articles in the most recently generated edition",
			},
		),
	}
}

// ObserveModelCall implements llm.Observer
func (m *Metrics) ObserveModelCall(provider, mode string, err error, elapsed time.Duration) {
	m.ModelCallsTotal.WithLabelValues(provider, mode, callOutcome(err)).Inc()
	m.ModelCallDuration.WithLabelValues(provider, mode).Observe(elapsed.Seconds())
}

func callOutcome(err error) string {
	var apiErr *llm.APIError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, llm.ErrMissingAPIKey):
		return "missing_key"
	case errors.As(err, &apiErr):
		return "api_error"
	default:
		return "error"
	}
}

// ObserveStage implements pipeline.StageObserver
func (m *Metrics) ObserveStage(stage string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.StageDuration.WithLabelValues(stage, outcome).Observe(elapsed.Seconds())
}

// ObserveGeneration counts a generation trigger
func (m *Metrics) ObserveGeneration(outcome string, articles int) {
	m.GenerationsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeGenerated {
		m.ArticlesGenerated.Set(float64(articles))
	}
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
