// Package report renders allocation results for people: a console table, a
// pie chart and currency strings.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"CAD": "$",
	"AUD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CHF": "CHF ",
}

// Symbol returns the display prefix for an ISO currency code. Unknown codes
// are used as-is followed by a space; an empty code means dollars.
func Symbol(currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		return "$"
	}
	if s, ok := currencySymbols[code]; ok {
		return s
	}
	return code + " "
}

// FormatMoney renders x rounded to cents with thousands separators:
// FormatMoney(1234.5, "$") == "$1,234.50". Rounding works on the exact
// binary value, half to even, so 2.675 (stored as 2.67499...) gives
// "$2.67". The sign follows the symbol, as in "$-12.00".
func FormatMoney(x float64, symbol string) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return symbol + fmt.Sprint(x)
	}

	s := decimal.NewFromFloatWithExponent(x, math.MinInt32).RoundBank(2).StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	if sign != "" && strings.Trim(whole+frac, "0") == "" {
		sign = ""
	}
	return symbol + sign + group(whole) + "." + frac
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
