package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/riskparity/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "riskparity",
	Short: "Risk-parity portfolio allocation from historical prices",
	Long: `Riskparity splits a portfolio's worth across assets in inverse proportion
to their risk.

For every asset (one workbook sheet or CSV file with a Close column) it computes:
  - Average close and average daily return
  - Volatility of daily returns
  - Historical Value at Risk
  - Monte Carlo Value at Risk over a one-year horizon

The three risk measures are inverted, normalized and averaged into one weight
per asset. Results are printed, written to a workbook and journaled.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

var (
	logLevel  string
	logFormat string
	noColor   bool

	logger = zerolog.Nop()
)

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format: console|json")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored log output")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	l, err := logging.New(cmd.ErrOrStderr(), logLevel, logFormat, noColor)
	if err != nil {
		return err
	}
	logger = l
	return nil
}
