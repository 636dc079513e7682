// Package journal records completed allocation runs.
package journal

import (
	"context"
	"time"

	"github.com/rustyeddy/riskparity/risk"
)

// Run describes one completed allocation run.
type Run struct {
	RunID       string
	Created     time.Time
	Source      string // input path the tables were read from
	Worth       float64
	Currency    string
	Confidence  float64
	Simulations int
	HorizonDays int
	Seed        uint64
	Assets      int // allocated
	Skipped     int
}

// AllocationRecord is one asset's row of a run.
type AllocationRecord struct {
	RunID         string  `db:"run_id"`
	Position      int     `db:"position"`
	Asset         string  `db:"asset"`
	AveragePrice  float64 `db:"average_price"`
	AverageReturn float64 `db:"average_return"`
	Volatility    float64 `db:"volatility"`
	HistoricalVaR float64 `db:"historical_var"`
	MonteCarloVaR float64 `db:"monte_carlo_var"`
	Weight        float64 `db:"weight"`
	Capital       float64 `db:"capital"`
}

// Records converts allocations into records of runID, keeping their order.
func Records(runID string, allocs []risk.Allocation) []AllocationRecord {
	out := make([]AllocationRecord, len(allocs))
	for i, a := range allocs {
		out[i] = AllocationRecord{
			RunID:         runID,
			Position:      i,
			Asset:         a.ID,
			AveragePrice:  a.Metrics.AveragePrice,
			AverageReturn: a.Metrics.AverageReturn,
			Volatility:    a.Metrics.Volatility,
			HistoricalVaR: a.Metrics.HistoricalVaR,
			MonteCarloVaR: a.Metrics.MonteCarloVaR,
			Weight:        a.Weight,
			Capital:       a.Capital,
		}
	}
	return out
}

// Allocation turns a record back into the engine's type.
func (r AllocationRecord) Allocation() risk.Allocation {
	return risk.Allocation{
		ID: r.Asset,
		Metrics: risk.Metrics{
			AveragePrice:  r.AveragePrice,
			AverageReturn: r.AverageReturn,
			Volatility:    r.Volatility,
			HistoricalVaR: r.HistoricalVaR,
			MonteCarloVaR: r.MonteCarloVaR,
		},
		Weight:  r.Weight,
		Capital: r.Capital,
	}
}

type Journal interface {
	RecordRun(ctx context.Context, run Run, allocs []AllocationRecord) error
	Close() error
}
