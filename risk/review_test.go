package risk

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func nanValue() float64 { return math.NaN() }

func codes(d Decision) []string {
	var out []string
	for _, v := range d.Violations {
		out = append(out, v.Code)
	}
	return out
}

func TestReviewClean(t *testing.T) {
	t.Parallel()

	allocs, err := Allocate([]Asset{
		{ID: "A", Metrics: Metrics{Volatility: 0.01, HistoricalVaR: -0.02, MonteCarloVaR: 80_000}},
		{ID: "B", Metrics: Metrics{Volatility: 0.02, HistoricalVaR: -0.03, MonteCarloVaR: 70_000}},
	}, 100_000)
	assert.NoError(t, err)

	d := Review(allocs, 100_000, Policy{MaxWeight: 0.9})
	assert.True(t, d.Allowed)
	assert.Empty(t, d.Violations)
	assert.InDelta(t, 1.0, d.WeightSum, 1e-12)
	assert.InDelta(t, 100_000.0, d.CapitalSum, 1e-6)
}

func TestReviewFlagsGainsAndConcentration(t *testing.T) {
	t.Parallel()

	allocs := []Allocation{
		{ID: "GAIN", Metrics: Metrics{HistoricalVaR: 0.001, MonteCarloVaR: 120_000}, Weight: 0.7, Capital: 70_000},
		{ID: "LOSS", Metrics: Metrics{HistoricalVaR: -0.02, MonteCarloVaR: 80_000}, Weight: 0.3, Capital: 30_000},
	}

	d := Review(allocs, 100_000, Policy{MaxWeight: 0.5})
	assert.False(t, d.Allowed)
	assert.Equal(t, []string{"POSITIVE_HISTORICAL_VAR", "POSITIVE_MC_VAR", "WEIGHT_TOO_HIGH"}, codes(d))
	for _, v := range d.Violations {
		assert.Equal(t, "GAIN", v.Asset)
	}
}

func TestReviewWeightSumAndNegativeWeight(t *testing.T) {
	t.Parallel()

	allocs := []Allocation{
		{ID: "A", Metrics: Metrics{HistoricalVaR: -0.01, MonteCarloVaR: 1}, Weight: 1.2},
		{ID: "B", Metrics: Metrics{HistoricalVaR: -0.01, MonteCarloVaR: 1}, Weight: -0.1},
	}

	d := Review(allocs, 100, Policy{})
	assert.Equal(t, []string{"NEGATIVE_WEIGHT", "WEIGHT_SUM"}, codes(d))
}

func TestComputationErrorFormatting(t *testing.T) {
	t.Parallel()

	base := &ComputationError{Op: "allocate", Cause: "volatility is zero"}
	tagged := WithAsset(base, "MSFT")
	assert.Equal(t, "allocate: MSFT: volatility is zero", tagged.Error())
	assert.Equal(t, "allocate: volatility is zero", base.Error())

	wrapped := WithAsset(errors.New("boom"), "X")
	assert.True(t, IsComputationError(wrapped))
	assert.Equal(t, "X: unexpected failure: boom", wrapped.Error())

	assert.Nil(t, WithAsset(nil, "X"))
	assert.False(t, IsComputationError(errors.New("plain")))
}
