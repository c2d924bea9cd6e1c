package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/output"
	"github.com/wonny/screener/internal/selection"
	"github.com/wonny/screener/internal/signals"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report TICKER [TICKER...]",
	Short: "Score tickers and print a detailed analysis report",
	Long: `Fetches each ticker, scores it on all four components and prints the
full breakdown: sub-criteria, indicators, catalysts and the rating.

Example:
  go run ./cmd/screener report NVDA
  go run ./cmd/screener report AAPL MSFT GOOGL`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, stop := signalContext()
	defer stop()

	pipeline := selection.NewPipeline(d.yahoo, signals.NewSet(d.log), d.composite, d.log)

	failed := 0
	for _, ticker := range contracts.DedupTickers(args) {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		result, err := pipeline.ScoreTicker(ctx, ticker)
		if err != nil {
			PrintError(fmt.Sprintf("%s: %v", ticker, err))
			failed++
			continue
		}
		if err := output.RenderReport(os.Stdout, result, d.composite.Weights()); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d tickers could not be scored", failed, len(args))
	}
	return nil
}
