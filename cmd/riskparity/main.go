package main

import (
	"os"

	"github.com/rustyeddy/riskparity/cmd/riskparity/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
