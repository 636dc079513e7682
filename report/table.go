package report

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/rustyeddy/riskparity/risk"
)

// Columns is the header shared by the console table and the workbook export.
var Columns = []string{
	"Stock",
	"Average Close",
	"Average Daily Return",
	"Volatility",
	"Historical VaR",
	"Monte Carlo VaR",
	"Allocation",
}

// Row renders one allocation in Columns order. Monte Carlo VaR and the
// allocated capital are money; the other measures are plain numbers.
func Row(a risk.Allocation, currency string) []string {
	sym := Symbol(currency)
	return []string{
		a.ID,
		num(a.Metrics.AveragePrice),
		num(a.Metrics.AverageReturn),
		num(a.Metrics.Volatility),
		num(a.Metrics.HistoricalVaR),
		FormatMoney(a.Metrics.MonteCarloVaR, sym),
		FormatMoney(a.Capital, sym),
	}
}

// WriteTable prints allocs as an aligned text table under a
// "Portfolio Allocation:" title.
func WriteTable(w io.Writer, allocs []risk.Allocation, currency string) error {
	if _, err := fmt.Fprintln(w, "Portfolio Allocation:"); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	writeRow(tw, Columns)
	for _, a := range allocs {
		writeRow(tw, Row(a, currency))
	}
	return tw.Flush()
}

func writeRow(w io.Writer, cells []string) {
	for _, c := range cells {
		fmt.Fprint(w, c, "\t")
	}
	fmt.Fprintln(w)
}

func num(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
