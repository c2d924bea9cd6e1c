package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/screener/internal/universe"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Resolve and print the stock universe",
	Long: `Resolves the universe for a mode and prints the source attempts,
the serving source and the symbols.

--liquidity applies the liquidity filter (market cap $2B-$200B, price >= $10,
average volume >= 500k by default) through per-ticker profile lookups.

Example:
  go run ./cmd/screener universe
  go run ./cmd/screener universe --mode combined --max-stocks 600
  go run ./cmd/screener universe --liquidity --show-excluded`,
	RunE: runUniverse,
}

var (
	universeMode         string
	universeMaxStocks    int
	universeLiquidity    bool
	universeShowExcluded bool
)

func init() {
	rootCmd.AddCommand(universeCmd)

	// Flags
	universeCmd.Flags().StringVar(&universeMode, "mode", string(universe.ModeAuto), "universe mode")
	universeCmd.Flags().IntVar(&universeMaxStocks, "max-stocks", 0, "maximum tickers (default from strategy)")
	universeCmd.Flags().BoolVar(&universeLiquidity, "liquidity", false, "apply the liquidity filter")
	universeCmd.Flags().BoolVar(&universeShowExcluded, "show-excluded", false, "print every exclusion reason")
}

func runUniverse(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	maxStocks := universeMaxStocks
	if maxStocks == 0 {
		maxStocks = d.strategy.Screening.MaxStocks
	}

	ctx, stop := signalContext()
	defer stop()

	u, err := d.resolver.Resolve(ctx, universe.Mode(universeMode), maxStocks)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	if universeLiquidity {
		filtered, err := universe.FilterProfiles(ctx, d.yahoo, u.Symbols, 0, d.log, d.strategy.Universe.Liquidity.Check)
		if err != nil {
			return fmt.Errorf("liquidity filter: %w", err)
		}
		for ticker, reason := range filtered.Excluded {
			u.Excluded[ticker] = reason
		}
		u.Symbols = filtered.Kept
	}

	PrintHeader("UNIVERSE", [][2]string{
		{"Mode", u.Mode},
		{"Source", string(u.Source)},
		{"Degraded", fmt.Sprintf("%t", u.Degraded)},
		{"Count", fmt.Sprintf("%d", u.Count())},
		{"Excluded", fmt.Sprintf("%d", len(u.Excluded))},
	})

	fmt.Println()
	widths := []int{18, 9, 6, 6, 10}
	PrintTableHeader([]string{"Source", "Outcome", "Count", "Tries", "Duration"}, widths)
	for _, a := range u.Attempts {
		PrintTableRow([]string{
			string(a.Source),
			string(a.Outcome),
			fmt.Sprintf("%d", a.Count),
			fmt.Sprintf("%d", a.Tries),
			a.Duration.Round(time.Millisecond).String(),
		}, widths)
		if a.Error != "" {
			fmt.Printf("   ↳ %s\n", a.Error)
		}
	}

	fmt.Println()
	PrintSymbols(u.Symbols, 12)

	if universeShowExcluded && len(u.Excluded) > 0 {
		fmt.Println()
		fmt.Println("Excluded:")
		tickers := make([]string, 0, len(u.Excluded))
		for t := range u.Excluded {
			tickers = append(tickers, t)
		}
		sort.Strings(tickers)
		for _, t := range tickers {
			PrintKeyValue(t, u.Excluded[t], 6)
		}
	}
	return nil
}
