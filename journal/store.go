package journal

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Store journals runs into a SQL database through sqlx.
type Store struct {
	db *sqlx.DB
}

// runRow mirrors the runs table. The seed is kept as text because SQL
// integers are signed.
type runRow struct {
	RunID       string    `db:"run_id"`
	Created     time.Time `db:"created"`
	Source      string    `db:"source"`
	Worth       float64   `db:"worth"`
	Currency    string    `db:"currency"`
	Confidence  float64   `db:"confidence"`
	Simulations int       `db:"simulations"`
	HorizonDays int       `db:"horizon_days"`
	Seed        string    `db:"seed"`
	Assets      int       `db:"assets"`
	Skipped     int       `db:"skipped"`
}

func toRow(r Run) runRow {
	return runRow{
		RunID:       r.RunID,
		Created:     r.Created.UTC(),
		Source:      r.Source,
		Worth:       r.Worth,
		Currency:    r.Currency,
		Confidence:  r.Confidence,
		Simulations: r.Simulations,
		HorizonDays: r.HorizonDays,
		Seed:        strconv.FormatUint(r.Seed, 10),
		Assets:      r.Assets,
		Skipped:     r.Skipped,
	}
}

func (row runRow) run() (Run, error) {
	seed, err := strconv.ParseUint(row.Seed, 10, 64)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: bad seed %q: %w", row.RunID, row.Seed, err)
	}
	return Run{
		RunID:       row.RunID,
		Created:     row.Created.UTC(),
		Source:      row.Source,
		Worth:       row.Worth,
		Currency:    row.Currency,
		Confidence:  row.Confidence,
		Simulations: row.Simulations,
		HorizonDays: row.HorizonDays,
		Seed:        seed,
		Assets:      row.Assets,
		Skipped:     row.Skipped,
	}, nil
}

// NewStore opens driver ("sqlite", "sqlite3" or "postgres") at dsn and
// creates the schema if needed.
func NewStore(driver, dsn string) (*Store, error) {
	switch driver {
	case "sqlite", "sqlite3":
		driver = "sqlite3"
	case "postgres":
	default:
		return nil, fmt.Errorf("unsupported journal driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s journal: %w", driver, err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewSQLite opens a SQLite journal file.
func NewSQLite(path string) (*Store, error) {
	return NewStore("sqlite3", path)
}

const insertRun = `
	INSERT INTO runs
	(run_id, created, source, worth, currency, confidence, simulations, horizon_days, seed, assets, skipped)
	VALUES (:run_id, :created, :source, :worth, :currency, :confidence, :simulations, :horizon_days, :seed, :assets, :skipped)`

const insertAllocation = `
	INSERT INTO allocations
	(run_id, position, asset, average_price, average_return, volatility, historical_var, monte_carlo_var, weight, capital)
	VALUES (:run_id, :position, :asset, :average_price, :average_return, :volatility, :historical_var, :monte_carlo_var, :weight, :capital)`

// RecordRun writes the run and its allocations in one transaction.
func (s *Store) RecordRun(ctx context.Context, run Run, allocs []AllocationRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, insertRun, toRow(run)); err != nil {
		return fmt.Errorf("insert run %s: %w", run.RunID, err)
	}
	for _, a := range allocs {
		a.RunID = run.RunID
		if _, err := tx.NamedExecContext(ctx, insertAllocation, a); err != nil {
			return fmt.Errorf("insert allocation %s/%s: %w", run.RunID, a.Asset, err)
		}
	}
	return tx.Commit()
}

func (s *Store) Close() error {
	return s.db.Close()
}
