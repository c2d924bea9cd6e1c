package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/selection"
)

// ScreeningDateLayout is the human-readable run time in the JSON artefact
const ScreeningDateLayout = "2006-01-02 15:04:05"

// TopReport is the top-N JSON artefact
// ⭐ SSOT: 상위 N 결과 파일 포맷
type TopReport struct {
	RunID          string               `json:"run_id"`
	Timestamp      string               `json:"timestamp"`
	ScreeningDate  string               `json:"screening_date"`
	ConfigHash     string               `json:"config_hash,omitempty"`
	UniverseSource contracts.SourceKind `json:"universe_source"`
	Degraded       bool                 `json:"degraded"`
	TotalAnalyzed  int                  `json:"total_analyzed"`
	QualifiedCount int                  `json:"qualified_count"`
	FailedCount    int                  `json:"failed_count"`
	TopN           []TopRecord          `json:"top_n"`
}

// TopRecord is one selected result
type TopRecord struct {
	Rank             int              `json:"rank"`
	Ticker           string           `json:"ticker"`
	CompanyName      string           `json:"company_name"`
	Sector           string           `json:"sector"`
	Industry         string           `json:"industry"`
	MarketCap        float64          `json:"market_cap"`
	CurrentPrice     float64          `json:"current_price"`
	FinalScore       float64          `json:"final_score"`
	FundamentalScore float64          `json:"fundamental_score"`
	TechnicalScore   float64          `json:"technical_score"`
	CatalystScore    float64          `json:"catalyst_score"`
	SentimentScore   float64          `json:"sentiment_score"`
	Rating           contracts.Rating `json:"rating"`
	KeyCatalyst      string           `json:"key_catalyst"`
	Rationale        string           `json:"rationale"`
}

// TopInput carries everything NewTopReport needs from a run
type TopInput struct {
	RunID      string
	At         time.Time
	ConfigHash string
	Universe   *contracts.Universe
	Counts     contracts.RunCounts
	Top        []contracts.ScreeningResult
}

// NewTopReport builds the artefact from selected results (already ranked)
func NewTopReport(in TopInput) *TopReport {
	report := &TopReport{
		RunID:          in.RunID,
		Timestamp:      in.At.Format(TimestampLayout),
		ScreeningDate:  in.At.Format(ScreeningDateLayout),
		ConfigHash:     in.ConfigHash,
		TotalAnalyzed:  in.Counts.Analyzed,
		QualifiedCount: in.Counts.Qualified,
		FailedCount:    in.Counts.Failed,
		TopN:           make([]TopRecord, 0, len(in.Top)),
	}
	if in.Universe != nil {
		report.UniverseSource = in.Universe.Source
		report.Degraded = in.Universe.Degraded
	}

	for i := range in.Top {
		r := &in.Top[i]
		report.TopN = append(report.TopN, TopRecord{
			Rank:             i + 1,
			Ticker:           r.Ticker,
			CompanyName:      r.CompanyName,
			Sector:           r.Sector,
			Industry:         r.Industry,
			MarketCap:        r.MarketCap,
			CurrentPrice:     r.CurrentPrice,
			FinalScore:       r.FinalScore,
			FundamentalScore: r.Fundamental.Score,
			TechnicalScore:   r.Technical.Score,
			CatalystScore:    r.Catalyst.Score,
			SentimentScore:   r.Sentiment.Score,
			Rating:           r.Rating,
			KeyCatalyst:      selection.KeyCatalyst(r),
			Rationale:        selection.Rationale(r),
		})
	}
	return report
}

// WriteTopJSON writes the artefact as indented JSON
func WriteTopJSON(path string, report *TopReport) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal top-n json: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write top-n json: %w", err)
	}
	return nil
}

// ReadTopJSON decodes a top-N artefact
func ReadTopJSON(path string) (*TopReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read top-n json: %w", err)
	}
	var report TopReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &report, nil
}

// LatestTopJSON locates and decodes the newest top-N artefact in dir
func LatestTopJSON(dir string) (*TopReport, string, error) {
	path, err := LatestTopJSONPath(dir)
	if err != nil {
		return nil, "", err
	}
	report, err := ReadTopJSON(path)
	if err != nil {
		return nil, path, err
	}
	return report, path, nil
}
