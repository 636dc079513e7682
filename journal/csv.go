package journal

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

var csvHeader = []string{
	"run_id", "created", "source", "currency", "worth",
	"asset", "average_price", "average_return", "volatility",
	"historical_var", "monte_carlo_var", "weight", "capital",
}

// CSVJournal appends one row per allocation to a single file.
type CSVJournal struct {
	w    *csv.Writer
	file *os.File
}

// NewCSV opens path for appending. The header is written when the file is new
// or empty.
func NewCSV(path string) (*CSVJournal, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	w := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			file.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			file.Close()
			return nil, err
		}
	}
	return &CSVJournal{w: w, file: file}, nil
}

func (j *CSVJournal) RecordRun(_ context.Context, run Run, allocs []AllocationRecord) error {
	created := run.Created.UTC().Format(time.RFC3339)
	for _, a := range allocs {
		err := j.w.Write([]string{
			run.RunID,
			created,
			run.Source,
			run.Currency,
			f(run.Worth),
			a.Asset,
			f(a.AveragePrice),
			f(a.AverageReturn),
			f(a.Volatility),
			f(a.HistoricalVaR),
			f(a.MonteCarloVaR),
			f(a.Weight),
			f(a.Capital),
		})
		if err != nil {
			return fmt.Errorf("write allocation %s: %w", a.Asset, err)
		}
	}
	j.w.Flush()
	return j.w.Error()
}

func (j *CSVJournal) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return err
	}
	return j.file.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
