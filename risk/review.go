package risk

import (
	"fmt"
	"math"
)

// Policy holds the advisory limits an allocation is reviewed against.
type Policy struct {
	// MaxWeight caps a single asset's share of the portfolio; 0 disables it.
	MaxWeight float64 `json:"max_weight" yaml:"max_weight"`
}

type Violation struct {
	Asset string
	Code  string
	Msg   string
}

// Decision is the outcome of Review. Review never alters allocations; it
// only reports inputs the inverse-risk rule treats arithmetically but which
// do not read as risk.
type Decision struct {
	Allowed    bool
	Violations []Violation

	WeightSum  float64
	CapitalSum float64
}

func (d *Decision) add(asset, code, msg string) {
	d.Violations = append(d.Violations, Violation{Asset: asset, Code: code, Msg: msg})
	d.Allowed = false
}

// Review checks a completed allocation against p.
//
// A historical VaR above zero means the tail day was still a gain, and a
// Monte Carlo VaR above worth means the tail path still ended in profit.
// Either way the inverse weighting rewards the asset for "risk" that is
// really upside.
func Review(allocs []Allocation, worth float64, p Policy) Decision {
	d := Decision{Allowed: true}

	for _, a := range allocs {
		d.WeightSum += a.Weight
		d.CapitalSum += a.Capital

		if a.Metrics.HistoricalVaR > 0 {
			d.add(a.ID, "POSITIVE_HISTORICAL_VAR",
				fmt.Sprintf("historical VaR %.4f%% is a gain, not a loss", 100*a.Metrics.HistoricalVaR))
		}
		if worth > 0 && a.Metrics.MonteCarloVaR > worth {
			d.add(a.ID, "POSITIVE_MC_VAR",
				fmt.Sprintf("Monte Carlo tail value %.2f exceeds starting worth %.2f", a.Metrics.MonteCarloVaR, worth))
		}
		if a.Weight < 0 {
			d.add(a.ID, "NEGATIVE_WEIGHT",
				fmt.Sprintf("combined weight %.4f is negative (mixed-sign risk measures)", a.Weight))
		}
		if p.MaxWeight > 0 && a.Weight > p.MaxWeight {
			d.add(a.ID, "WEIGHT_TOO_HIGH",
				fmt.Sprintf("weight %.2f%% exceeds max %.2f%%", 100*a.Weight, 100*p.MaxWeight))
		}
	}

	if len(allocs) > 0 && math.Abs(d.WeightSum-1) > 1e-9 {
		d.add("", "WEIGHT_SUM", fmt.Sprintf("weights sum to %.12f, want 1", d.WeightSum))
	}
	return d
}
