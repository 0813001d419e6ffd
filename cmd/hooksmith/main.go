// Package main provides the entry point for the hooksmith CLI.
package main

import (
	"os"

	"github.com/randalmurphal/hooksmith/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
