package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const runColumns = `run_id, created, source, worth, currency, confidence, simulations, horizon_days, seed, assets, skipped`

// GetRun returns a single run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	var row runRow
	q := s.db.Rebind(`SELECT ` + runColumns + ` FROM runs WHERE run_id = ?`)
	if err := s.db.GetContext(ctx, &row, q, runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, fmt.Errorf("run %q not found", runID)
		}
		return Run{}, err
	}
	return row.run()
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT ` + runColumns + ` FROM runs ORDER BY created DESC, run_id DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []runRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		return nil, err
	}

	out := make([]Run, 0, len(rows))
	for _, row := range rows {
		r, err := row.run()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ListAllocations returns a run's allocations in their original order.
func (s *Store) ListAllocations(ctx context.Context, runID string) ([]AllocationRecord, error) {
	var out []AllocationRecord
	q := s.db.Rebind(`
		SELECT run_id, position, asset, average_price, average_return, volatility,
		       historical_var, monte_carlo_var, weight, capital
		FROM allocations
		WHERE run_id = ?
		ORDER BY position ASC`)
	if err := s.db.SelectContext(ctx, &out, q, runID); err != nil {
		return nil, err
	}
	return out, nil
}
