// Package portfolio runs the per-asset risk pipeline over a batch of price
// tables and allocates capital across the assets that survive it.
package portfolio

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/riskparity/dataset"
	"github.com/rustyeddy/riskparity/internal/metrics"
	"github.com/rustyeddy/riskparity/pkg/id"
	"github.com/rustyeddy/riskparity/risk"
)

// ErrorPolicy decides what happens when one asset fails to compute.
type ErrorPolicy string

const (
	// Abort fails the whole batch on the first asset error.
	Abort ErrorPolicy = "abort"
	// Skip drops the failing asset, records why, and carries on.
	Skip ErrorPolicy = "skip"
)

type Options struct {
	// Confidence is used by the historical estimator. Zero means the Monte
	// Carlo confidence.
	Confidence float64
	MonteCarlo risk.MonteCarlo
	Workers    int // assets evaluated concurrently; <= 0 means 1
	OnError    ErrorPolicy
	Policy     risk.Policy

	NewID func() string
}

// Skipped is an asset left out of the allocation.
type Skipped struct {
	Asset  string
	Reason string
}

type Result struct {
	RunID       string
	Started     time.Time
	Elapsed     time.Duration
	Worth       float64
	Allocations []risk.Allocation
	Skipped     []Skipped
	Decision    risk.Decision
}

type Runner struct {
	opts    Options
	log     zerolog.Logger
	metrics *metrics.Recorder
}

// NewRunner builds a runner. m may be nil.
func NewRunner(opts Options, log zerolog.Logger, m *metrics.Recorder) *Runner {
	if opts.Confidence == 0 {
		opts.Confidence = opts.MonteCarlo.Confidence
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.OnError == "" {
		opts.OnError = Abort
	}
	if opts.NewID == nil {
		opts.NewID = id.New
	}
	return &Runner{
		opts:    opts,
		log:     log.With().Str("component", "runner").Logger(),
		metrics: m,
	}
}

type slot struct {
	asset  risk.Asset
	ok     bool
	failed bool
	skip   string
}

// Run evaluates every table, waits for all of them, then allocates worth
// across the assets that produced complete metrics.
func (r *Runner) Run(ctx context.Context, tables []dataset.Table, worth float64) (*Result, error) {
	started := time.Now()
	if !(worth > 0) || math.IsInf(worth, 0) {
		return nil, &risk.ComputationError{Op: "run", Cause: fmt.Sprintf("portfolio worth must be positive, got %g", worth)}
	}

	res := &Result{RunID: r.opts.NewID(), Started: started, Worth: worth}
	log := r.log.With().Str("run_id", res.RunID).Logger()
	log.Info().Int("tables", len(tables)).Float64("worth", worth).Msg("starting allocation run")

	slots := make([]slot, len(tables))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for i, t := range tables {
		if t.Empty() || !t.HasPriceField() {
			slots[i].skip = fmt.Sprintf("no %s column or no rows", risk.PriceColumn)
			continue
		}

		g.Go(func() error {
			m, err := r.evaluate(gctx, t, uint64(i)+1, worth)
			if err == nil && r.opts.OnError == Skip {
				err = risk.CheckAllocatable(m)
			}
			if err != nil {
				err = risk.WithAsset(err, t.Name)
				if r.opts.OnError == Skip && gctx.Err() == nil {
					slots[i] = slot{failed: true, skip: err.Error()}
					return nil
				}
				return err
			}
			slots[i] = slot{asset: risk.Asset{ID: t.Name, Metrics: m}, ok: true}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("allocation run aborted")
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &risk.ComputationError{Op: "run", Cause: "cancelled", Err: err}
	}

	assets := make([]risk.Asset, 0, len(slots))
	for i, s := range slots {
		if s.ok {
			assets = append(assets, s.asset)
			continue
		}
		res.Skipped = append(res.Skipped, Skipped{Asset: tables[i].Name, Reason: s.skip})
		if s.failed {
			r.metrics.Asset("failed")
		} else {
			r.metrics.Asset("skipped")
		}
		log.Warn().Str("asset", tables[i].Name).Str("reason", s.skip).Msg("asset skipped")
	}
	if len(assets) == 0 {
		return nil, &risk.ComputationError{Op: "run", Cause: fmt.Sprintf("no tables with usable %s data", risk.PriceColumn)}
	}

	allocs, err := risk.Allocate(assets, worth)
	if err != nil {
		return nil, err
	}
	res.Allocations = allocs
	res.Decision = risk.Review(allocs, worth, r.opts.Policy)

	for _, a := range allocs {
		r.metrics.Asset("allocated")
		r.metrics.Allocation(a.ID, a.Weight, a.Capital)
	}
	for _, v := range res.Decision.Violations {
		r.metrics.Violation(v.Code)
		log.Warn().Str("asset", v.Asset).Str("code", v.Code).Msg(v.Msg)
	}

	res.Elapsed = time.Since(started)
	r.metrics.Run(res.Elapsed, worth)
	log.Info().
		Int("allocated", len(allocs)).
		Int("skipped", len(res.Skipped)).
		Dur("elapsed", res.Elapsed).
		Msg("allocation run complete")
	return res, nil
}

// evaluate builds one asset's metrics. stream keeps each asset's Monte Carlo
// draws apart from every other asset's under a shared seed.
func (r *Runner) evaluate(ctx context.Context, t dataset.Table, stream uint64, worth float64) (risk.Metrics, error) {
	start := time.Now()
	m, returns, err := risk.ComputeStatistics(t.Prices())
	r.metrics.Stage("statistics", time.Since(start))
	if err != nil {
		return risk.Metrics{}, err
	}

	start = time.Now()
	hvar, err := risk.HistoricalVaR(returns, r.opts.Confidence)
	r.metrics.Stage("historical_var", time.Since(start))
	if err != nil {
		return risk.Metrics{}, err
	}

	mc := r.opts.MonteCarlo
	mc.Stream = stream
	start = time.Now()
	mcvar, err := mc.VaR(ctx, m.AverageReturn, m.Volatility, worth)
	r.metrics.Stage("monte_carlo_var", time.Since(start))
	if err != nil {
		return risk.Metrics{}, err
	}

	m.HistoricalVaR = hvar
	m.MonteCarloVaR = mcvar
	r.log.Debug().
		Str("asset", t.Name).
		Int("returns", len(returns)).
		Float64("volatility", m.Volatility).
		Float64("historical_var", hvar).
		Float64("monte_carlo_var", mcvar).
		Msg("asset evaluated")
	return m, nil
}
