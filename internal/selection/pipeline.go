package selection

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/progress"
	"github.com/wonny/screener/internal/signals"
	"github.com/wonny/screener/pkg/logger"
)

// Pipeline screens a ticker list one ticker at a time.
// Request pacing is enforced by the provider's HTTP client.
// ⭐ SSOT: 스크리닝 배치 루프는 여기서만
type Pipeline struct {
	provider  contracts.MarketDataProvider
	scorers   signals.Set
	composite *CompositeScorer
	observer  progress.Observer
	limit     int
	now       func() time.Time
	logger    *logger.Logger
}

// Report is the outcome of one batch. Results hold only qualifying tickers,
// ranked by final score (ticker breaks ties).
type Report struct {
	RunID      string                      `json:"run_id"`
	MinScore   float64                     `json:"min_score"`
	Results    []contracts.ScreeningResult `json:"results"`
	Counts     contracts.RunCounts         `json:"counts"`
	Skipped    map[string]string           `json:"skipped,omitempty"` // ticker → reason
	Stopped    bool                        `json:"stopped"`           // ended before the list was exhausted
	StopReason string                      `json:"stop_reason,omitempty"`
	StartedAt  time.Time                   `json:"started_at"`
	FinishedAt time.Time                   `json:"finished_at"`
}

// NewPipeline creates a new screening pipeline
func NewPipeline(provider contracts.MarketDataProvider, scorers signals.Set, composite *CompositeScorer, log *logger.Logger) *Pipeline {
	return &Pipeline{
		provider:  provider,
		scorers:   scorers,
		composite: composite,
		observer:  progress.Nop{},
		now:       time.Now,
		logger:    log,
	}
}

// WithObserver attaches a progress observer
func (p *Pipeline) WithObserver(o progress.Observer) *Pipeline {
	p.observer = progress.OrNop(o)
	return p
}

// WithLimit stops the batch after n tickers have been analyzed (0 = no limit)
func (p *Pipeline) WithLimit(n int) *Pipeline {
	p.limit = n
	return p
}

// Screen fetches and scores every ticker, keeping those at or above minScore.
// Per-ticker failures are skipped and counted. Cancelling ctx stops the batch
// early; everything scored before that stays in the report.
func (p *Pipeline) Screen(ctx context.Context, runID string, tickers []string, minScore float64) (*Report, error) {
	if minScore < 0 || minScore > 100 {
		return nil, contracts.NewConfigError("min_score", "must lie within [0,100], got %v", minScore)
	}

	report := &Report{
		RunID:     runID,
		MinScore:  minScore,
		Results:   make([]contracts.ScreeningResult, 0),
		Skipped:   make(map[string]string),
		StartedAt: p.now(),
	}
	total := len(tickers)
	if p.limit > 0 && p.limit < total {
		total = p.limit
	}

	p.emit(progress.Event{Type: progress.ScreenStarted, Stage: contracts.StageScore, RunID: runID, Total: total,
		Message: fmt.Sprintf("Screening %d tickers (min score %.1f)", total, minScore)})

	for i, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			report.Stopped = true
			report.StopReason = err.Error()
			break
		}
		if p.limit > 0 && report.Counts.Analyzed+report.Counts.Failed >= p.limit {
			report.Stopped = true
			report.StopReason = fmt.Sprintf("max stocks %d reached", p.limit)
			break
		}

		result, err := p.screenOne(ctx, ticker)
		if err != nil && ctx.Err() != nil {
			// interrupted mid-fetch: not a data failure
			report.Stopped = true
			report.StopReason = ctx.Err().Error()
			break
		}
		if err != nil {
			report.Counts.Failed++
			report.Skipped[ticker] = err.Error()
			p.emit(progress.Event{Type: progress.ScreenSkipped, Stage: contracts.StageFetch, RunID: runID,
				Ticker: ticker, Index: i + 1, Total: total, Message: err.Error()})
			continue
		}

		report.Counts.Analyzed++
		p.emit(progress.Event{Type: progress.ScreenTicker, Stage: contracts.StageScore, RunID: runID,
			Ticker: ticker, Index: i + 1, Total: total, Score: result.FinalScore,
			Message: fmt.Sprintf("%s scored %.2f (%s)", ticker, result.FinalScore, result.Rating)})

		if result.FinalScore >= minScore {
			report.Results = append(report.Results, *result)
		}
	}

	Rank(report.Results)
	report.Counts.Qualified = len(report.Results)
	report.FinishedAt = p.now()

	eventType := progress.ScreenCompleted
	if report.Stopped {
		eventType = progress.ScreenStopped
	}
	p.emit(progress.Event{Type: eventType, Stage: contracts.StageSelect, RunID: runID,
		Count: report.Counts.Qualified, Total: total,
		Message: fmt.Sprintf("Screening finished: analyzed=%d qualified=%d failed=%d",
			report.Counts.Analyzed, report.Counts.Qualified, report.Counts.Failed)})

	p.logger.WithFields(map[string]interface{}{
		"run_id":    runID,
		"analyzed":  report.Counts.Analyzed,
		"qualified": report.Counts.Qualified,
		"failed":    report.Counts.Failed,
		"stopped":   report.Stopped,
		"duration":  report.FinishedAt.Sub(report.StartedAt).String(),
	}).Info("Screening completed")

	return report, nil
}

// ScoreTicker scores a single ticker without any threshold
func (p *Pipeline) ScoreTicker(ctx context.Context, ticker string) (*contracts.ScreeningResult, error) {
	return p.screenOne(ctx, ticker)
}

// screenOne fetches and scores one ticker. A panicking scorer counts as a failure.
func (p *Pipeline) screenOne(ctx context.Context, ticker string) (result *contracts.ScreeningResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("scoring %s panicked: %v", ticker, r)
		}
	}()

	snap, err := p.provider.GetSnapshot(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, &contracts.SnapshotError{Ticker: ticker, Err: fmt.Errorf("provider returned no data")}
	}

	return p.composite.Combine(snap, p.scorers.ScoreAll(snap), p.now())
}

func (p *Pipeline) emit(e progress.Event) {
	e.Time = p.now()
	p.observer.Notify(e)
}

// Rank sorts results by final score descending; ticker ascending breaks ties
func Rank(results []contracts.ScreeningResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].FinalScore != results[j].FinalScore {
			return results[i].FinalScore > results[j].FinalScore
		}
		return results[i].Ticker < results[j].Ticker
	})
}
