package risk

import (
	"context"
	"math"
	"math/rand/v2"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// SourceFunc builds the random source for one simulation stream. Streams are
// never shared between goroutines.
type SourceFunc func(stream uint64) rand.Source

// MonteCarlo simulates terminal portfolio values under normally distributed
// daily returns and reads VaR off the resulting distribution.
type MonteCarlo struct {
	Simulations int     // number of independent paths
	HorizonDays int     // daily draws per path
	Confidence  float64 // e.g. 0.95
	Workers     int     // goroutines sharing the paths; <= 0 means GOMAXPROCS

	// Seed fixes the PCG streams when non-zero. Zero draws a fresh seed per call.
	Seed uint64
	// Stream offsets every block stream, so two estimators with the same
	// Seed (e.g. one per asset) do not replay each other's draws.
	Stream uint64
	// NewSource overrides the PCG streams entirely. It is called once per
	// block of paths. Used by tests.
	NewSource SourceFunc
}

// DefaultMonteCarlo returns the estimator used when nothing is configured:
// 10,000 one-year paths at 95% confidence.
func DefaultMonteCarlo() MonteCarlo {
	return MonteCarlo{
		Simulations: DefaultSimulations,
		HorizonDays: DefaultHorizonDays,
		Confidence:  DefaultConfidence,
		Workers:     runtime.GOMAXPROCS(0),
	}
}

// MonteCarloVaR runs DefaultMonteCarlo.
func MonteCarloVaR(ctx context.Context, averageReturn, volatility, worth float64) (float64, error) {
	mc := DefaultMonteCarlo()
	return mc.VaR(ctx, averageReturn, volatility, worth)
}

func (mc *MonteCarlo) validate(mu, sigma, worth float64) error {
	const op = "monte_carlo_var"
	switch {
	case math.IsNaN(sigma) || math.IsInf(sigma, 0):
		return computeErr(op, "volatility must be finite, got %g", sigma)
	case sigma < 0:
		return computeErr(op, "volatility must be non-negative, got %g", sigma)
	case math.IsNaN(mu) || math.IsInf(mu, 0):
		return computeErr(op, "average return must be finite, got %g", mu)
	case math.IsNaN(worth) || math.IsInf(worth, 0):
		return computeErr(op, "portfolio worth must be finite, got %g", worth)
	case mc.Simulations <= 0:
		return computeErr(op, "simulations must be positive, got %d", mc.Simulations)
	case mc.HorizonDays <= 0:
		return computeErr(op, "horizon must be positive, got %d days", mc.HorizonDays)
	}
	return checkConfidence(op, mc.Confidence)
}

// VaR returns the (1-Confidence)*100th percentile of simulated terminal
// values worth * prod(1 + r_t), r_t ~ Normal(averageReturn, volatility).
//
// With a non-zero Seed the result is reproducible whatever Workers is.
// Cancelling ctx before every path finishes yields a ComputationError; a
// partial distribution is never used.
func (mc *MonteCarlo) VaR(ctx context.Context, averageReturn, volatility, worth float64) (float64, error) {
	if err := mc.validate(averageReturn, volatility, worth); err != nil {
		return 0, err
	}

	terminal, err := mc.simulate(ctx, averageReturn, volatility, worth)
	if err != nil {
		return 0, err
	}

	sort.Float64s(terminal)
	return Percentile(terminal, (1-mc.Confidence)*100), nil
}

// pathsPerBlock is the unit of work handed to a worker. Each block owns one
// random stream, so the draws depend on Seed and Stream only, never on how
// many workers share the blocks.
const pathsPerBlock = 256

func (mc *MonteCarlo) simulate(ctx context.Context, mu, sigma, worth float64) ([]float64, error) {
	blocks := (mc.Simulations + pathsPerBlock - 1) / pathsPerBlock
	workers := mc.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > blocks {
		workers = blocks
	}

	seed := mc.Seed
	if seed == 0 && mc.NewSource == nil {
		seed = rand.Uint64()
	}

	terminal := make([]float64, mc.Simulations)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for b := 0; b < blocks; b++ {
		lo := b * pathsPerBlock
		hi := min(lo+pathsPerBlock, mc.Simulations)

		g.Go(func() error {
			src := mc.source(seed, uint64(b))
			return simulatePaths(gctx, terminal[lo:hi], mc.HorizonDays, mu, sigma, worth, src)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, &ComputationError{
			Op:    "monte_carlo_var",
			Cause: "simulation stopped before all paths completed",
			Err:   err,
		}
	}
	return terminal, nil
}

func (mc *MonteCarlo) source(seed, block uint64) rand.Source {
	stream := mc.Stream<<32 | block
	if mc.NewSource != nil {
		return mc.NewSource(stream)
	}
	return rand.NewPCG(seed, stream)
}

// simulatePaths fills out with one terminal value per path. The daily draws
// of a path are generated into a reused buffer before the product is taken.
func simulatePaths(ctx context.Context, out []float64, horizon int, mu, sigma, worth float64, src rand.Source) error {
	norm := distuv.Normal{Mu: mu, Sigma: sigma, Src: src}
	buf := make([]float64, horizon)

	for p := range out {
		if p%256 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for t := range buf {
			buf[t] = norm.Rand()
		}
		floats.AddConst(1, buf)
		out[p] = worth * floats.Prod(buf)
	}
	return nil
}
