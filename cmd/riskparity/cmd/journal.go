package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/riskparity/journal"
	"github.com/rustyeddy/riskparity/report"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query journaled allocation runs",
	Long: `Query and display allocation runs recorded in the SQL journal.

Subcommands:
  runs  - List recent runs
  show  - Show one run and its allocations as an Org-mode block

Examples:
  riskparity journal runs --limit 5
  riskparity journal show 01HV3K9Q2N6Z8X4B7C1D5E0F3G`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run and its allocations",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalShow,
}

var (
	journalDriver string
	journalDB     string
	journalLimit  int
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalShowCmd)

	journalCmd.PersistentFlags().StringVar(&journalDriver, "driver", "sqlite", "journal database: sqlite|postgres")
	journalCmd.PersistentFlags().StringVarP(&journalDB, "db", "d", "./riskparity.sqlite", "SQLite path or Postgres DSN")
	journalRunsCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "number of runs to list (0 = all)")
}

func openStore() (*journal.Store, error) {
	s, err := journal.NewStore(journalDriver, journalDB)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return s, nil
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context(), journalLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no runs journaled")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tCREATED\tSOURCE\tWORTH\tASSETS\tSKIPPED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n",
			r.RunID,
			r.Created.Local().Format(time.DateTime),
			r.Source,
			report.FormatMoney(r.Worth, report.Symbol(r.Currency)),
			r.Assets,
			r.Skipped,
		)
	}
	return tw.Flush()
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	run, err := s.GetRun(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	allocs, err := s.ListAllocations(cmd.Context(), run.RunID)
	if err != nil {
		return fmt.Errorf("list allocations: %w", err)
	}

	org, err := journal.FormatRunOrg(run, allocs)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), org)
	return nil
}
