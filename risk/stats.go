package risk

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// HasPriceField reports whether a table with the given column labels can be
// priced. Absence is not an error; the caller just leaves the asset out.
func HasPriceField(columns []string) bool {
	for _, c := range columns {
		if strings.TrimSpace(c) == PriceColumn {
			return true
		}
	}
	return false
}

// CoercePrices parses raw cells into prices, silently dropping anything that
// is blank, non-numeric, NaN or infinite. Currency symbols and thousands
// separators left behind by spreadsheet exports are tolerated.
func CoercePrices(raw []string) []float64 {
	out := make([]float64, 0, len(raw))
	for _, cell := range raw {
		if p, ok := parsePrice(cell); ok {
			out = append(out, p)
		}
	}
	return out
}

func parsePrice(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Returns computes period-over-period fractional changes of consecutive
// prices. The result has len(prices)-1 entries.
func Returns(prices []float64) ([]float64, error) {
	if len(prices) < 2 {
		return nil, computeErr("statistics", "need at least 2 valid prices, got %d", len(prices))
	}
	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		r := prices[i]/prices[i-1] - 1
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, computeErr("statistics", "non-finite return at row %d (price %g after %g)", i, prices[i], prices[i-1])
		}
		out[i-1] = r
	}
	return out, nil
}

// ComputeStatistics cleans a raw price column and derives the average price,
// the average return and the population volatility of returns. The cleaned
// return series is returned alongside so both VaR estimators work on the
// same data.
func ComputeStatistics(raw []string) (Metrics, []float64, error) {
	prices := CoercePrices(raw)
	if len(prices) == 0 {
		return Metrics{}, nil, computeErr("statistics", "no numeric price data in %d rows", len(raw))
	}

	returns, err := Returns(prices)
	if err != nil {
		return Metrics{}, nil, err
	}

	avgReturn, vol := stat.PopMeanStdDev(returns, nil)
	m := Metrics{
		AveragePrice:  stat.Mean(prices, nil),
		AverageReturn: avgReturn,
		Volatility:    vol,
	}
	return m, returns, nil
}
