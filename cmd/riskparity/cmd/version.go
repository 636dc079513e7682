package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the riskparity CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "riskparity version %s\n", version)
		fmt.Fprintln(out, "Risk-parity allocation with historical and Monte Carlo VaR")
		fmt.Fprintln(out, "https://github.com/rustyeddy/riskparity")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
