package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rustyeddy/riskparity/config"
	"github.com/rustyeddy/riskparity/dataset"
	"github.com/rustyeddy/riskparity/internal/logging"
	"github.com/rustyeddy/riskparity/internal/metrics"
	"github.com/rustyeddy/riskparity/journal"
	"github.com/rustyeddy/riskparity/portfolio"
	"github.com/rustyeddy/riskparity/report"
	"github.com/rustyeddy/riskparity/risk"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Allocate a portfolio across the assets of a price file",
	Long: `Compute risk metrics for every asset in the input and allocate the
portfolio worth in inverse proportion to their risk.

The input is an .xlsx workbook with one sheet per asset, a CSV file (optionally
.xz compressed) or a directory of CSV files. Every sheet or file needs a Close
column. When the input path or worth is missing and stdin is a terminal, they
are prompted for.

Examples:
  riskparity run --input prices.xlsx --worth 100000
  riskparity run --config portfolio.yaml --seed 42 --chart allocation.png`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var runFlags struct {
	configPath  string
	input       string
	worth       float64
	confidence  float64
	simulations int
	horizon     int
	seed        uint64
	workers     int
	onError     string
	xlsx        string
	journal     string
	db          string
	chart       string
	metricsFile string
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.StringVarP(&runFlags.configPath, "config", "f", "", "path to config file (YAML or JSON)")
	f.StringVarP(&runFlags.input, "input", "i", "", "workbook, CSV file or directory of CSV files")
	f.Float64VarP(&runFlags.worth, "worth", "w", 0, "total portfolio worth to allocate")
	f.Float64Var(&runFlags.confidence, "confidence", risk.DefaultConfidence, "VaR confidence level")
	f.IntVar(&runFlags.simulations, "simulations", risk.DefaultSimulations, "Monte Carlo paths per asset")
	f.IntVar(&runFlags.horizon, "horizon", risk.DefaultHorizonDays, "Monte Carlo horizon in trading days")
	f.Uint64Var(&runFlags.seed, "seed", 0, "random seed (0 picks one and logs it)")
	f.IntVar(&runFlags.workers, "workers", 0, "Monte Carlo goroutines per asset (0 = GOMAXPROCS)")
	f.StringVar(&runFlags.onError, "on-error", "abort", "what to do when an asset fails: abort|skip")
	f.StringVar(&runFlags.xlsx, "xlsx", "", "allocation workbook to write")
	f.StringVar(&runFlags.journal, "journal", "", "journal type: sqlite|postgres|csv|none")
	f.StringVar(&runFlags.db, "db", "", "journal database path, DSN or CSV file")
	f.StringVar(&runFlags.chart, "chart", "", "write an allocation pie chart PNG")
	f.StringVar(&runFlags.metricsFile, "metrics-file", "", "write Prometheus metrics in text format")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if runFlags.configPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(runFlags.configPath); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	applyRunFlags(cmd, cfg)

	if err := applyLogConfig(cmd, cfg); err != nil {
		return err
	}

	if err := promptMissing(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Risk.Seed == 0 {
		cfg.Risk.Seed = rand.Uint64()
		logger.Info().Uint64("seed", cfg.Risk.Seed).Msg("picked random seed")
	}

	tables, err := dataset.Load(cfg.Input.Path)
	if err != nil {
		return fmt.Errorf("load input: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	rec := metrics.New()
	runner := portfolio.NewRunner(runnerOptions(cfg), logger, rec)
	res, err := runner.Run(ctx, tables, cfg.Portfolio.Worth)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := report.WriteTable(out, res.Allocations, cfg.Portfolio.Currency); err != nil {
		return err
	}
	for _, s := range res.Skipped {
		fmt.Fprintf(out, "  skipped %s: %s\n", s.Asset, s.Reason)
	}

	if err := writeOutputs(ctx, cmd, cfg, res, rec); err != nil {
		return err
	}

	if cfg.Review.FailOnViolation && !res.Decision.Allowed {
		return fmt.Errorf("allocation review failed with %d violation(s)", len(res.Decision.Violations))
	}
	return nil
}

// applyRunFlags lets explicitly set flags win over the config file.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed

	if set("input") {
		cfg.Input.Path = runFlags.input
	}
	if set("worth") {
		cfg.Portfolio.Worth = runFlags.worth
	}
	if set("confidence") {
		cfg.Risk.Confidence = runFlags.confidence
	}
	if set("simulations") {
		cfg.Risk.Simulations = runFlags.simulations
	}
	if set("horizon") {
		cfg.Risk.HorizonDays = runFlags.horizon
	}
	if set("seed") {
		cfg.Risk.Seed = runFlags.seed
	}
	if set("workers") {
		cfg.Risk.Workers = runFlags.workers
	}
	if set("on-error") {
		cfg.Runner.OnError = runFlags.onError
	}
	if set("xlsx") {
		cfg.Output.XLSXFile = runFlags.xlsx
	}
	if set("chart") {
		cfg.Output.ChartFile = runFlags.chart
	}
	if set("metrics-file") {
		cfg.Output.MetricsFile = runFlags.metricsFile
	}
	if set("journal") {
		cfg.Journal.Type = runFlags.journal
	}
	if set("db") {
		switch cfg.Journal.Type {
		case "postgres":
			cfg.Journal.DSN = runFlags.db
		case "csv":
			cfg.Journal.CSVFile = runFlags.db
		default:
			cfg.Journal.DBPath = runFlags.db
		}
	}
}

// applyLogConfig rebuilds the logger from the config file unless the log
// flags were given on the command line.
func applyLogConfig(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	l, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format, noColor)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

func promptMissing(cmd *cobra.Command, cfg *config.Config) error {
	if cfg.Input.Path != "" && cfg.Portfolio.Worth > 0 {
		return nil
	}
	stdin := cmd.InOrStdin()
	if !isTerminal(stdin) {
		if cfg.Input.Path == "" {
			return fmt.Errorf("no input given: use --input or input.path")
		}
		return fmt.Errorf("no portfolio worth given: use --worth or portfolio.worth")
	}

	in := bufio.NewReader(stdin)
	out := cmd.OutOrStdout()
	if cfg.Input.Path == "" {
		path, err := prompt(in, out, "Enter the path to the Excel file: ")
		if err != nil {
			return err
		}
		cfg.Input.Path = path
	}
	if cfg.Portfolio.Worth <= 0 {
		s, err := prompt(in, out, "Enter the total portfolio worth: ")
		if err != nil {
			return err
		}
		worth, err := parseWorth(s)
		if err != nil {
			return err
		}
		cfg.Portfolio.Worth = worth
	}
	return nil
}

// isTerminal reports whether r is an interactive terminal. Only an *os.File
// can be one.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func prompt(in *bufio.Reader, out io.Writer, msg string) (string, error) {
	fmt.Fprint(out, msg)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// parseWorth accepts "100000", "$100,000" and "100,000.50".
func parseWorth(s string) (float64, error) {
	clean := strings.NewReplacer("$", "", ",", "", "_", "").Replace(strings.TrimSpace(s))
	worth, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("portfolio worth %q is not a number", s)
	}
	if !(worth > 0) {
		return 0, fmt.Errorf("portfolio worth must be positive, got %s", s)
	}
	return worth, nil
}

func runnerOptions(cfg *config.Config) portfolio.Options {
	return portfolio.Options{
		Confidence: cfg.Risk.Confidence,
		MonteCarlo: risk.MonteCarlo{
			Simulations: cfg.Risk.Simulations,
			HorizonDays: cfg.Risk.HorizonDays,
			Confidence:  cfg.Risk.Confidence,
			Workers:     cfg.Risk.Workers,
			Seed:        cfg.Risk.Seed,
		},
		Workers: cfg.Runner.Workers,
		OnError: portfolio.ErrorPolicy(cfg.Runner.OnError),
		Policy:  risk.Policy{MaxWeight: cfg.Review.MaxWeight},
	}
}

func writeOutputs(ctx context.Context, cmd *cobra.Command, cfg *config.Config, res *portfolio.Result, rec *metrics.Recorder) error {
	out := cmd.OutOrStdout()
	run := journalRun(cfg, res)
	records := journal.Records(res.RunID, res.Allocations)

	if cfg.Output.XLSXFile != "" {
		x, err := journal.NewXLSX(cfg.Output.XLSXFile)
		if err != nil {
			return err
		}
		if err := x.RecordRun(ctx, run, records); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		fmt.Fprintf(out, "Allocation saved to %s\n", cfg.Output.XLSXFile)
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	if j != nil {
		defer j.Close()
		if err := j.RecordRun(ctx, run, records); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		logger.Info().Str("run_id", res.RunID).Str("journal", cfg.Journal.Type).Msg("run journaled")
	}

	if cfg.Output.ChartFile != "" {
		png, err := report.AllocationChart(res.Allocations, "Portfolio Allocation")
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.Output.ChartFile, png, 0644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Fprintf(out, "Chart saved to %s\n", cfg.Output.ChartFile)
	}

	if cfg.Output.MetricsFile != "" {
		if err := rec.WriteTextfile(cfg.Output.MetricsFile); err != nil {
			return err
		}
	}
	return nil
}

func journalRun(cfg *config.Config, res *portfolio.Result) journal.Run {
	return journal.Run{
		RunID:       res.RunID,
		Created:     res.Started.Add(res.Elapsed).Truncate(time.Second),
		Source:      cfg.Input.Path,
		Worth:       res.Worth,
		Currency:    cfg.Portfolio.Currency,
		Confidence:  cfg.Risk.Confidence,
		Simulations: cfg.Risk.Simulations,
		HorizonDays: cfg.Risk.HorizonDays,
		Seed:        cfg.Risk.Seed,
		Assets:      len(res.Allocations),
		Skipped:     len(res.Skipped),
	}
}

// openJournal returns nil for type "none".
func openJournal(c config.JournalConfig) (journal.Journal, error) {
	switch c.Type {
	case "none":
		return nil, nil
	case "csv":
		return journal.NewCSV(c.CSVFile)
	case "postgres":
		return journal.NewStore("postgres", c.DSN)
	default:
		return journal.NewSQLite(c.DBPath)
	}
}
