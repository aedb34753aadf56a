// Package metrics defines the Prometheus collectors for discovery runs and
// exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for repfinder.
type Metrics struct {
	RoundsTotal       prometheus.Counter
	CandidatesTotal   prometheus.Counter
	SurvivorsTotal    prometheus.Counter
	RoundDuration     prometheus.Histogram
	RunsTotal         *prometheus.CounterVec
	RunDuration       prometheus.Histogram
	PatternsPerRun    prometheus.Histogram
	CacheLookupsTotal *prometheus.CounterVec
	JobsInFlight      prometheus.Gauge
	PublishRetries    prometheus.Counter
}

// New creates all collectors and registers them with reg. A nil reg uses
// the default Prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		RoundsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "repfinder_rounds_total",
				Help: "Total discovery rounds scanned.",
			},
		),
		CandidatesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "repfinder_candidates_scanned_total",
				Help: "Total candidate patterns scanned across all rounds.",
			},
		),
		SurvivorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "repfinder_patterns_survived_total",
				Help: "Total candidate patterns that reached the support threshold.",
			},
		),
		RoundDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "repfinder_round_duration_seconds",
				Help:    "Duration of one scan round in seconds.",
				Buckets: []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
		),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "repfinder_runs_total",
				Help: "Total discovery runs by status (ok, error).",
			},
			[]string{"status"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "repfinder_run_duration_seconds",
				Help:    "End-to-end duration of a discovery run in seconds.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120, 600},
			},
		),
		PatternsPerRun: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "repfinder_patterns_per_run",
				Help:    "Number of patterns discovered per run.",
				Buckets: []float64{0, 1, 10, 50, 100, 500, 1000, 5000},
			},
		),
		CacheLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "repfinder_cache_lookups_total",
				Help: "Result cache lookups by outcome (hit, miss).",
			},
			[]string{"result"},
		),
		JobsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "repfinder_jobs_in_flight",
				Help: "Number of discovery jobs currently running.",
			},
		),
		PublishRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "repfinder_publish_retries_total",
				Help: "Result publish attempts that failed and were retried.",
			},
		),
	}

	reg.MustRegister(
		m.RoundsTotal,
		m.CandidatesTotal,
		m.SurvivorsTotal,
		m.RoundDuration,
		m.RunsTotal,
		m.RunDuration,
		m.PatternsPerRun,
		m.CacheLookupsTotal,
		m.JobsInFlight,
		m.PublishRetries,
	)

	return m
}

// ObserveRound records one scanned round.
func (m *Metrics) ObserveRound(candidates, survivors int, d time.Duration) {
	m.RoundsTotal.Inc()
	m.CandidatesTotal.Add(float64(candidates))
	m.SurvivorsTotal.Add(float64(survivors))
	m.RoundDuration.Observe(d.Seconds())
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(patterns int, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(d.Seconds())
	if err == nil {
		m.PatternsPerRun.Observe(float64(patterns))
	}
}

// ObserveCache records a result cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
