// Package main is the entry point for the catering-finance CLI.
package main

import (
	"os"

	"catering-finance/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
