package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "secseg",
	Short: "Segment SEC filings into semantic JSON trees",
	Long: `secseg converts HTML regulatory filings (SEC Form 8-K) into typed,
hierarchical semantic trees and writes two JSON renditions per filing:
a verbose human-readable one and a compact machine-consumption one.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
