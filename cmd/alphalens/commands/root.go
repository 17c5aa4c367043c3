package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "alphalens",
	Short: "AlphaLens - stock recommendation engine",
	Long: `AlphaLens Unified CLI

Deterministic stock recommendation backend: technical, fundamental and
sentiment scoring over cached provider data.

Usage:
  go run ./cmd/alphalens [command]

Examples:
  go run ./cmd/alphalens api
  go run ./cmd/alphalens recommend --tickers AAPL,MSFT --horizon 1M
  go run ./cmd/alphalens cache sweep`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
