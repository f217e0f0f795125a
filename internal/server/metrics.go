package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Label names
	LabelCode    = "code"
	LabelMethod  = "method"
	LabelOutcome = "outcome"

	// Outcome values
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeTooLarge = "too_large"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds the Prometheus collectors of one server. Each server owns
// its registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	UploadsTotal    *prometheus.CounterVec
	TokensCounted   prometheus.Counter
	ResultsServed   *prometheus.CounterVec
	BuildInfo       *prometheus.GaugeVec
}

// NewMetrics creates a registry with the process and Go collectors plus
// the word counter metrics.
func NewMetrics(version, commit string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordcounter_http_requests_total",
				Help: "Total number of HTTP requests by status code",
			},
			[]string{LabelCode},
		),

		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wordcounter_http_request_duration_seconds",
				Help:    "HTTP request latency distribution",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{LabelMethod},
		),

		UploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordcounter_uploads_total",
				Help: "Total number of count requests by outcome",
			},
			[]string{LabelOutcome},
		),

		TokensCounted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "wordcounter_tokens_counted_total",
				Help: "Total number of words counted across all stored results",
			},
		),

		ResultsServed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordcounter_results_served_total",
				Help: "Result retrievals by outcome",
			},
			[]string{LabelOutcome},
		),

		BuildInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wordcounter_build_info",
				Help: "Build information of the running binary",
			},
			[]string{"version", "commit"},
		),
	}

	m.BuildInfo.WithLabelValues(orDefault(version, "dev"), orDefault(commit, "unknown")).Set(1)
	return m
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// RecordRequest records one finished HTTP request.
func (m *Metrics) RecordRequest(method string, statusCode int, d time.Duration) {
	m.RequestsTotal.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// RecordUpload records the outcome of a count request; tokens is only
// added for successful ones.
func (m *Metrics) RecordUpload(outcome string, tokens int) {
	m.UploadsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK && tokens > 0 {
		m.TokensCounted.Add(float64(tokens))
	}
}

// RecordResult records the outcome of a result retrieval.
func (m *Metrics) RecordResult(outcome string) {
	m.ResultsServed.WithLabelValues(outcome).Inc()
}

// Registry returns the registry backing these metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry: m.registry,
	})
}
