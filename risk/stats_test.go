package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasPriceField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		columns []string
		want    bool
	}{
		{"ohlc", []string{"Date", "Open", "High", "Low", "Close", "Volume"}, true},
		{"padded", []string{"Date", " Close "}, true},
		{"adj close only", []string{"Date", "Adj Close"}, false},
		{"lower case", []string{"close"}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, HasPriceField(tt.columns))
		})
	}
}

func TestCoercePrices(t *testing.T) {
	t.Parallel()

	got := CoercePrices([]string{"100", " 101.5 ", "n/a", "", "$1,234.50", "NaN", "inf", "1e2"})
	assert.Equal(t, []float64{100, 101.5, 1234.5, 100}, got)
}

func TestComputeStatistics(t *testing.T) {
	t.Parallel()

	raw := []string{"100", "110", "abc", "", "99", "108.9"}
	m, returns, err := ComputeStatistics(raw)
	require.NoError(t, err)

	require.Len(t, returns, 3)
	assert.InDelta(t, 0.1, returns[0], 1e-12)
	assert.InDelta(t, -0.1, returns[1], 1e-12)
	assert.InDelta(t, 0.1, returns[2], 1e-12)

	assert.InDelta(t, (100+110+99+108.9)/4, m.AveragePrice, 1e-12)

	// population std dev, divide by N
	mean := (returns[0] + returns[1] + returns[2]) / 3
	ss := 0.0
	for _, r := range returns {
		ss += (r - mean) * (r - mean)
	}
	assert.InDelta(t, mean, m.AverageReturn, 1e-12)
	assert.InDelta(t, math.Sqrt(ss/3), m.Volatility, 1e-12)
	assert.InDelta(t, 0.0942809, m.Volatility, 1e-6)

	assert.Zero(t, m.HistoricalVaR)
	assert.Zero(t, m.MonteCarloVaR)
}

func TestComputeStatisticsConstantPrices(t *testing.T) {
	t.Parallel()

	m, returns, err := ComputeStatistics([]string{"50", "50", "50"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, returns)
	assert.Zero(t, m.Volatility)
	assert.Equal(t, 50.0, m.AveragePrice)
}

func TestComputeStatisticsErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		raw   []string
		cause string
	}{
		{"all non-numeric", []string{"a", "b", "", "N/A"}, "no numeric price data"},
		{"empty", nil, "no numeric price data"},
		{"single price", []string{"x", "100"}, "need at least 2 valid prices"},
		{"zero price", []string{"0", "10"}, "non-finite return"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, returns, err := ComputeStatistics(tt.raw)
			require.Error(t, err)
			assert.True(t, IsComputationError(err))
			assert.Contains(t, err.Error(), tt.cause)
			assert.Equal(t, Metrics{}, m)
			assert.Nil(t, returns)
		})
	}
}
