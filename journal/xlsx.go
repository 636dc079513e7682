package journal

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/rustyeddy/riskparity/report"
)

// AllocationSheet is the sheet name of the workbook export.
const AllocationSheet = "Allocation"

// XLSXJournal writes the latest run to a workbook with the console table's
// columns. Each RecordRun replaces the file.
type XLSXJournal struct {
	path string
}

func NewXLSX(path string) (*XLSXJournal, error) {
	if path == "" {
		return nil, fmt.Errorf("xlsx journal needs a file path")
	}
	return &XLSXJournal{path: path}, nil
}

func (j *XLSXJournal) RecordRun(_ context.Context, run Run, allocs []AllocationRecord) error {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", AllocationSheet); err != nil {
		return err
	}

	header := make([]any, len(report.Columns))
	for i, c := range report.Columns {
		header[i] = c
	}
	if err := wb.SetSheetRow(AllocationSheet, "A1", &header); err != nil {
		return err
	}

	for i, a := range allocs {
		cells := report.Row(a.Allocation(), run.Currency)
		row := []any{
			a.Asset,
			a.AveragePrice,
			a.AverageReturn,
			a.Volatility,
			a.HistoricalVaR,
			cells[5],
			cells[6],
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := wb.SetSheetRow(AllocationSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := wb.SaveAs(j.path); err != nil {
		return fmt.Errorf("save %s: %w", j.path, err)
	}
	return nil
}

func (j *XLSXJournal) Close() error { return nil }
