package main

import (
	"os"

	"github.com/rswy/investment-analysis/cmd/invest/commands"
)

// main is the entry point for the investment analysis CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
