// Package metrics records run statistics in a Prometheus registry. Batch runs
// have no scrape endpoint, so the registry is written to a node_exporter
// textfile instead.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder owns a private registry. A nil *Recorder records nothing.
type Recorder struct {
	reg *prometheus.Registry

	assets     *prometheus.CounterVec
	stage      *prometheus.HistogramVec
	weight     *prometheus.GaugeVec
	capital    *prometheus.GaugeVec
	violations *prometheus.CounterVec
	runSeconds prometheus.Gauge
	worth      prometheus.Gauge
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		reg: reg,
		assets: f.NewCounterVec(prometheus.CounterOpts{
			Name: "riskparity_assets_total",
			Help: "Assets seen by the runner, by outcome (allocated, skipped, failed).",
		}, []string{"outcome"}),
		stage: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "riskparity_stage_seconds",
			Help:    "Time spent per asset in each computation stage.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"stage"}),
		weight: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "riskparity_allocation_weight",
			Help: "Combined inverse-risk weight per asset.",
		}, []string{"asset"}),
		capital: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "riskparity_allocation_capital",
			Help: "Capital allocated per asset.",
		}, []string{"asset"}),
		violations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "riskparity_review_violations_total",
			Help: "Allocation review findings by code.",
		}, []string{"code"}),
		runSeconds: f.NewGauge(prometheus.GaugeOpts{
			Name: "riskparity_run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		worth: f.NewGauge(prometheus.GaugeOpts{
			Name: "riskparity_portfolio_worth",
			Help: "Portfolio worth distributed by the last run.",
		}),
	}
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

func (r *Recorder) Asset(outcome string) {
	if r == nil {
		return
	}
	r.assets.WithLabelValues(outcome).Inc()
}

func (r *Recorder) Stage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stage.WithLabelValues(stage).Observe(d.Seconds())
}

func (r *Recorder) Allocation(asset string, weight, capital float64) {
	if r == nil {
		return
	}
	r.weight.WithLabelValues(asset).Set(weight)
	r.capital.WithLabelValues(asset).Set(capital)
}

func (r *Recorder) Violation(code string) {
	if r == nil {
		return
	}
	r.violations.WithLabelValues(code).Inc()
}

func (r *Recorder) Run(d time.Duration, worth float64) {
	if r == nil {
		return
	}
	r.runSeconds.Set(d.Seconds())
	r.worth.Set(worth)
}

// WriteTextfile writes the registry in the Prometheus text format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}
