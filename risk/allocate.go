package risk

import (
	"math"
)

type measure struct {
	name string
	get  func(Metrics) float64
}

var allocationMeasures = []measure{
	{"volatility", func(m Metrics) float64 { return m.Volatility }},
	{"historical VaR", func(m Metrics) float64 { return m.HistoricalVaR }},
	{"Monte Carlo VaR", func(m Metrics) float64 { return m.MonteCarloVaR }},
}

// CheckAllocatable reports the first risk measure of m that Allocate would
// reject: zero or non-finite.
func CheckAllocatable(m Metrics) error {
	for _, ms := range allocationMeasures {
		v := ms.get(m)
		if v == 0 {
			return &ComputationError{Op: "allocate", Cause: ms.name + " is zero"}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ComputationError{Op: "allocate", Cause: ms.name + " is not finite"}
		}
	}
	return nil
}

// Allocate splits worth across assets. For each of volatility, historical
// VaR and Monte Carlo VaR, every asset's inverse measure is normalized by the
// batch total; the three normalized weights are averaged into one weight per
// asset and multiplied by worth.
//
// The whole batch is required up front. Output order follows input order and
// the same inputs always yield the same allocations.
func Allocate(assets []Asset, worth float64) ([]Allocation, error) {
	const op = "allocate"
	if len(assets) == 0 {
		return nil, computeErr(op, "no assets to allocate")
	}
	if math.IsNaN(worth) || math.IsInf(worth, 0) {
		return nil, computeErr(op, "portfolio worth must be finite, got %g", worth)
	}

	for _, a := range assets {
		if err := CheckAllocatable(a.Metrics); err != nil {
			return nil, WithAsset(err, a.ID)
		}
	}

	inverses := make([][]float64, len(allocationMeasures))
	for mi, ms := range allocationMeasures {
		inv := make([]float64, len(assets))
		total := 0.0
		for ai, a := range assets {
			inv[ai] = 1 / ms.get(a.Metrics)
			total += inv[ai]
		}
		if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
			return nil, computeErr(op, "inverse %s sums to %g", ms.name, total)
		}
		for ai := range inv {
			inv[ai] /= total
		}
		inverses[mi] = inv
	}

	out := make([]Allocation, len(assets))
	for ai, a := range assets {
		w := 0.0
		for mi := range allocationMeasures {
			w += inverses[mi][ai]
		}
		w /= float64(len(allocationMeasures))
		out[ai] = Allocation{
			ID:      a.ID,
			Metrics: a.Metrics,
			Weight:  w,
			Capital: w * worth,
		}
	}
	return out, nil
}
