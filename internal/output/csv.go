package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/selection"
)

// CSVHeader lists the ranked CSV columns in order
var CSVHeader = []string{
	"ticker",
	"company_name",
	"sector",
	"industry",
	"market_cap",
	"final_score",
	"fundamental_score",
	"technical_score",
	"catalyst_score",
	"sentiment_score",
	"rating",
}

// WriteCSV writes one row per result, highest final score first
func WriteCSV(path string, results []contracts.ScreeningResult) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := EncodeCSV(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeCSV writes the ranked CSV to w. The input slice is not reordered.
func EncodeCSV(w io.Writer, results []contracts.ScreeningResult) error {
	ranked := make([]contracts.ScreeningResult, len(results))
	copy(ranked, results)
	selection.Rank(ranked)

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range ranked {
		record := []string{
			r.Ticker,
			r.CompanyName,
			r.Sector,
			r.Industry,
			strconv.FormatFloat(r.MarketCap, 'f', 0, 64),
			formatScore(r.FinalScore),
			formatScore(r.Fundamental.Score),
			formatScore(r.Technical.Score),
			formatScore(r.Catalyst.Score),
			formatScore(r.Sentiment.Score),
			string(r.Rating),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.Ticker, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
