package risk

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// HistoricalVaR returns the nearest-rank empirical quantile of returns at the
// given confidence: the element at rank floor((1-confidence)*N) of the
// ascending series. The result is always an observed return, negative for a
// loss.
//
// When the rank lands past the end of the series it is clamped to the last
// element.
func HistoricalVaR(returns []float64, confidence float64) (float64, error) {
	if err := checkConfidence("historical_var", confidence); err != nil {
		return 0, err
	}
	n := len(returns)
	if n == 0 {
		return 0, computeErr("historical_var", "empty return series")
	}
	if floats.HasNaN(returns) {
		return 0, computeErr("historical_var", "return series contains NaN")
	}
	for _, r := range returns {
		if math.IsInf(r, 0) {
			return 0, computeErr("historical_var", "return series contains Inf")
		}
	}

	sorted := make([]float64, n)
	copy(sorted, returns)
	sort.Float64s(sorted)

	k := historicalRank(n, confidence)
	return sorted[k], nil
}

func historicalRank(n int, confidence float64) int {
	k := int(math.Floor((1 - confidence) * float64(n)))
	if k >= n {
		k = n - 1
	}
	if k < 0 {
		k = 0
	}
	return k
}

// Percentile returns the q-th percentile (0..100) of sorted, interpolating
// linearly between the two closest ranks. sorted must be ascending and
// non-empty.
func Percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q / 100 * float64(n-1)
	lo := int(math.Floor(pos))
	if lo < 0 {
		return sorted[0]
	}
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func checkConfidence(op string, confidence float64) error {
	if !(confidence > 0 && confidence < 1) {
		return computeErr(op, "confidence must be in (0, 1), got %g", confidence)
	}
	return nil
}
