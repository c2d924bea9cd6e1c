package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "US equity screener - fundamentals, technicals, catalysts, sentiment",
	Long: `US Equity Screener CLI

Resolves a stock universe (S&P 500 fallback chain, NASDAQ-100, sectors or a
YAML file), scores every ticker on four components and writes a ranked CSV
plus a sector-capped top-N JSON.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener screen --mode auto --max-stocks 500
  go run ./cmd/screener universe --mode nasdaq100
  go run ./cmd/screener report NVDA MSFT
  go run ./cmd/screener api --port 8089
  go run ./cmd/screener scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML (default: STRATEGY_FILE or built-in defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
