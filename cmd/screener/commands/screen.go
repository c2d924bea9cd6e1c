package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/screener/internal/brain"
	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/output"
	"github.com/wonny/screener/internal/universe"
)

// errNoQualifying makes the CLI exit non-zero when nothing met the minimum score
var errNoQualifying = errors.New("no stocks met the minimum score")

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Run a full screening",
	Long: `Resolves the universe, scores every ticker and writes the ranked CSV
and the sector-capped top-N JSON under OUTPUT_DIR.

Ctrl+C stops the run; results scored so far are still written.
Exits non-zero when no stock meets the minimum score.

Example:
  go run ./cmd/screener screen
  go run ./cmd/screener screen --mode nasdaq100 --top 10 --sector-cap 2
  go run ./cmd/screener screen --mode auto --exclude AAPL,MSFT --min-score 65`,
	RunE: runScreen,
}

var (
	screenMode      string
	screenMaxStocks int
	screenExclude   string
	screenMinScore  float64
	screenTopN      int
	screenSectorCap int
	screenLiquidity bool
	screenOutputDir string
)

func init() {
	rootCmd.AddCommand(screenCmd)

	// Flags
	screenCmd.Flags().StringVar(&screenMode, "mode", string(universe.ModeAuto), "universe mode (auto|sp500|nasdaq100|combined|tech|healthcare|growth|file)")
	screenCmd.Flags().IntVar(&screenMaxStocks, "max-stocks", 0, "maximum tickers to analyze (default from strategy)")
	screenCmd.Flags().StringVar(&screenExclude, "exclude", "", "comma separated tickers to skip")
	screenCmd.Flags().Float64Var(&screenMinScore, "min-score", 0, "minimum final score (default from strategy)")
	screenCmd.Flags().IntVar(&screenTopN, "top", 0, "top-N size (default from strategy)")
	screenCmd.Flags().IntVar(&screenSectorCap, "sector-cap", 0, "maximum picks per sector (default from strategy)")
	screenCmd.Flags().BoolVar(&screenLiquidity, "liquidity", false, "apply the liquidity filter before scoring")
	screenCmd.Flags().StringVar(&screenOutputDir, "output", "", "output directory (default OUTPUT_DIR)")
}

func runScreen(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	outDir := screenOutputDir
	if outDir == "" {
		outDir = d.cfg.OutputDir
	}

	runCfg := brain.RunConfig{
		Mode:      universe.Mode(screenMode),
		MaxStocks: screenMaxStocks,
		Exclude:   contracts.ParseTickerList(screenExclude),
		Liquidity: screenLiquidity,
		TopN:      screenTopN,
		SectorCap: screenSectorCap,
		OutputDir: outDir,
	}
	if cmd.Flags().Changed("min-score") {
		runCfg.MinScore = &screenMinScore
	}

	PrintHeader("EQUITY SCREENING", [][2]string{
		{"Mode", screenMode},
		{"Strategy", fmt.Sprintf("%s v%s (%s)", d.strategy.Meta.StrategyID, d.strategy.Meta.Version, short(d.configHash))},
		{"Output", outDir},
		{"Started", time.Now().Format(output.ScreeningDateLayout)},
	})

	ctx, stop := signalContext()
	defer stop()

	res, err := d.orch.Run(ctx, runCfg)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	u := res.Universe
	fmt.Println()
	PrintKeyValue("Universe", fmt.Sprintf("%d tickers from %s", u.Count(), u.Source), 10)
	if u.Degraded {
		PrintWarning(fmt.Sprintf("Universe served by fallback source %s", u.Source))
	}
	if res.Excluded > 0 {
		PrintKeyValue("Excluded", fmt.Sprintf("%d by request", res.Excluded), 10)
	}
	counts := res.Report.Counts
	PrintKeyValue("Analyzed", fmt.Sprintf("%d", counts.Analyzed), 10)
	PrintKeyValue("Qualified", fmt.Sprintf("%d", counts.Qualified), 10)
	PrintKeyValue("Failed", fmt.Sprintf("%d", counts.Failed), 10)

	if res.Report.Stopped {
		PrintWarning("Run interrupted: " + res.Report.StopReason)
	}

	if err := output.RenderTopTable(os.Stdout, res.TopReport); err != nil {
		return err
	}

	fmt.Println()
	if res.CSVPath != "" {
		PrintSuccess("CSV  : " + res.CSVPath)
		PrintSuccess("JSON : " + res.JSONPath)
	}
	fmt.Printf("\nCompleted in %.1fs\n", res.Duration.Seconds())

	if !res.Qualified() {
		PrintError(errNoQualifying.Error())
		return errNoQualifying
	}
	return nil
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
