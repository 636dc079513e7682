// Package risk computes per-asset risk statistics, historical and Monte Carlo
// Value-at-Risk, and the inverse-risk capital allocation derived from them.
//
// The package performs no I/O. Callers hand it cleaned price cells and get
// back plain values or a *ComputationError.
package risk

const (
	// PriceColumn is the column label that carries the closing price.
	PriceColumn = "Close"

	// DefaultConfidence is the VaR confidence level used when none is given.
	DefaultConfidence = 0.95

	// DefaultSimulations is the number of Monte Carlo paths.
	DefaultSimulations = 10_000

	// DefaultHorizonDays is one trading year.
	DefaultHorizonDays = 252
)

// Metrics holds everything the engine knows about a single asset.
type Metrics struct {
	AveragePrice  float64 `json:"average_price" yaml:"average_price"`
	AverageReturn float64 `json:"average_return" yaml:"average_return"`
	Volatility    float64 `json:"volatility" yaml:"volatility"` // population std dev of returns
	HistoricalVaR float64 `json:"historical_var" yaml:"historical_var"`
	MonteCarloVaR float64 `json:"monte_carlo_var" yaml:"monte_carlo_var"`
}

// Asset pairs an identifier (sheet or file name) with its completed metrics.
type Asset struct {
	ID      string
	Metrics Metrics
}

// Allocation is the terminal record produced by Allocate.
type Allocation struct {
	ID      string
	Metrics Metrics
	Weight  float64 // combined normalized weight, sums to 1 across a batch
	Capital float64 // Weight * portfolio worth
}
