package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with fresh flag state. Commands share
// package-level flag variables, so these tests do not run in parallel.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func writePrices(t *testing.T, dir, name string, returns ...float64) {
	t.Helper()

	var b strings.Builder
	b.WriteString("Date,Close\n")
	p := 100.0
	for i := 0; i < 120; i++ {
		fmt.Fprintf(&b, "2024-01-%03d,%.6f\n", i, p)
		p *= 1 + returns[i%len(returns)]
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".csv"), []byte(b.String()), 0644))
}

func priceDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	writePrices(t, dir, "CALM", 0.004, -0.003, 0.002, -0.002)
	writePrices(t, dir, "WILD", 0.03, -0.025, 0.02, -0.03)
	return dir
}

func TestRunAndJournal(t *testing.T) {
	input := priceDir(t)
	work := t.TempDir()
	db := filepath.Join(work, "journal.sqlite")
	xlsx := filepath.Join(work, "allocation.xlsx")
	chart := filepath.Join(work, "allocation.png")
	prom := filepath.Join(work, "riskparity.prom")

	out, err := execute(t, "run",
		"--input", input,
		"--worth", "100000",
		"--simulations", "500",
		"--horizon", "20",
		"--seed", "7",
		"--xlsx", xlsx,
		"--journal", "sqlite",
		"--db", db,
		"--chart", chart,
		"--metrics-file", prom,
		"--log-level", "error",
	)
	require.NoError(t, err, out)

	assert.Contains(t, out, "Portfolio Allocation:")
	assert.Contains(t, out, "CALM")
	assert.Contains(t, out, "WILD")
	assert.Contains(t, out, "Allocation saved to "+xlsx)
	for _, path := range []string{xlsx, chart, prom, db} {
		assert.FileExists(t, path)
	}

	out, err = execute(t, "journal", "runs", "--db", db)
	require.NoError(t, err, out)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "RUN ID"))
	runID := strings.Fields(lines[1])[0]

	out, err = execute(t, "journal", "show", runID, "--db", db)
	require.NoError(t, err, out)
	assert.Contains(t, out, ":RUN_ID:      "+runID)
	assert.Contains(t, out, ":SEED:        7")
	assert.Contains(t, out, "| CALM |")
}

func TestRunFailOnViolation(t *testing.T) {
	input := priceDir(t)
	cfgPath := filepath.Join(t.TempDir(), "portfolio.yaml")
	cfg := fmt.Sprintf(`
portfolio:
  worth: 50000
input:
  path: %s
risk:
  simulations: 300
  horizon_days: 10
  seed: 3
review:
  max_weight: 0.5
  fail_on_violation: true
output:
  xlsx_file: ""
journal:
  type: none
log:
  level: error
`, input)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	out, err := execute(t, "run", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allocation review failed")
	assert.Contains(t, out, "Portfolio Allocation:")
}

func TestRunRequiresInput(t *testing.T) {
	_, err := execute(t, "run", "--worth", "1000", "--journal", "none", "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input given")
}

func TestRunDoesNotPromptWithoutTerminal(t *testing.T) {
	rootCmd.SetIn(strings.NewReader("prices.xlsx\n100000\n"))
	t.Cleanup(func() { rootCmd.SetIn(nil) })

	out, err := execute(t, "run", "--journal", "none", "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input given")
	assert.NotContains(t, out, "Enter the path")
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, isTerminal(strings.NewReader("")))

	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	assert.False(t, isTerminal(f))
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.yaml")

	out, err := execute(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Created default configuration")

	out, err = execute(t, "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Configuration valid")
	assert.Contains(t, out, "Journal: sqlite")
}

func TestParseWorth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"100000", 100000, false},
		{" $100,000.50 ", 100000.5, false},
		{"1_000", 1000, false},
		{"abc", 0, true},
		{"0", 0, true},
		{"-5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseWorth(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrompt(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader("prices.xlsx\n250000"))

	path, err := prompt(in, &out, "Enter the path to the Excel file: ")
	require.NoError(t, err)
	assert.Equal(t, "prices.xlsx", path)

	worth, err := prompt(in, &out, "Enter the total portfolio worth: ")
	require.NoError(t, err)
	assert.Equal(t, "250000", worth)
	assert.Equal(t, "Enter the path to the Excel file: Enter the total portfolio worth: ", out.String())

	_, err = prompt(in, &out, "again: ")
	assert.Error(t, err)
}
