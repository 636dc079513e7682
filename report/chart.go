package report

import (
	"fmt"

	charts "github.com/vicanso/go-charts/v2"

	"github.com/rustyeddy/riskparity/risk"
)

// AllocationChart renders the capital split as a PNG pie chart, one slice
// per asset labelled with its share.
func AllocationChart(allocs []risk.Allocation, title string) ([]byte, error) {
	if len(allocs) == 0 {
		return nil, fmt.Errorf("no allocations to chart")
	}

	values := make([]float64, 0, len(allocs))
	labels := make([]string, 0, len(allocs))
	for _, a := range allocs {
		values = append(values, a.Capital)
		labels = append(labels, fmt.Sprintf("%s (%.1f%%)", a.ID, a.Weight*100))
	}

	p, err := charts.PieRender(
		values,
		charts.TitleTextOptionFunc(title),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: labels,
			Top:  charts.PositionTop,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(800),
		charts.HeightOptionFunc(600),
	)
	if err != nil {
		return nil, fmt.Errorf("render allocation chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encode allocation chart: %w", err)
	}
	return buf, nil
}
