package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/stepup-hq/stepup/pkg/cli"
	"github.com/stepup-hq/stepup/pkg/observability"
)

func main() {
	defer observability.RecoverPanic(observability.NewLogger(observability.ErrorLevel, os.Stderr), "stepup-cli")

	// Create root command
	rootCmd := cli.NewRootCommand()

	// Parse flags
	flag.Parse()

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
