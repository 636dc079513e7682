package journal

import (
	"time"

	"github.com/rustyeddy/riskparity/risk"
)

func sampleRun(id string, created time.Time) (Run, []AllocationRecord) {
	run := Run{
		RunID:       id,
		Created:     created,
		Source:      "prices.xlsx",
		Worth:       100_000,
		Currency:    "USD",
		Confidence:  0.95,
		Simulations: 10_000,
		HorizonDays: 252,
		Seed:        1<<63 + 7,
		Assets:      2,
		Skipped:     1,
	}
	allocs := Records(id, []risk.Allocation{
		{
			ID: "AAPL",
			Metrics: risk.Metrics{
				AveragePrice:  182.25,
				AverageReturn: 0.0008,
				Volatility:    0.015,
				HistoricalVaR: -0.024,
				MonteCarloVaR: 76050.5,
			},
			Weight:  0.6111111111,
			Capital: 61111.11111,
		},
		{
			ID: "MSFT",
			Metrics: risk.Metrics{
				AveragePrice:  410,
				AverageReturn: 0.0006,
				Volatility:    0.03,
				HistoricalVaR: -0.045,
				MonteCarloVaR: 70100,
			},
			Weight:  0.3888888889,
			Capital: 38888.88889,
		},
	})
	return run, allocs
}
