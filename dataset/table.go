// Package dataset loads per-asset price tables from workbooks and CSV files.
package dataset

import (
	"strings"

	"github.com/rustyeddy/riskparity/risk"
)

// Table is one asset's raw data: a header row and the cells below it. Cells
// are kept as text; numeric coercion belongs to the risk engine.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Index returns the position of the named column, or -1.
func (t Table) Index(name string) int {
	for i, c := range t.Columns {
		if strings.TrimSpace(c) == name {
			return i
		}
	}
	return -1
}

// Column returns every cell of the named column. Short rows yield "".
func (t Table) Column(name string) []string {
	idx := t.Index(name)
	if idx < 0 {
		return nil
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out
}

// HasPriceField reports whether the table carries a Close column.
func (t Table) HasPriceField() bool {
	return risk.HasPriceField(t.Columns)
}

// Prices returns the raw Close column.
func (t Table) Prices() []string {
	return t.Column(risk.PriceColumn)
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

func fromRecords(name string, records [][]string) Table {
	t := Table{Name: name}
	if len(records) == 0 {
		return t
	}
	t.Columns = records[0]
	for _, row := range records[1:] {
		if blank(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
