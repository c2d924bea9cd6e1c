// Package brain runs one screening end to end. The CLI, the API server and the
// scheduler all go through the same Orchestrator.
package brain

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/output"
	"github.com/wonny/screener/internal/progress"
	"github.com/wonny/screener/internal/selection"
	"github.com/wonny/screener/internal/signals"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/internal/universe"
	"github.com/wonny/screener/pkg/logger"
)

// ErrRunInProgress is returned by TryRun while another run holds the orchestrator
var ErrRunInProgress = errors.New("a screening run is already in progress")

// Orchestrator coordinates resolve → exclude → screen → select → write
// ⭐ SSOT: 실행 흐름 조율은 여기서만
type Orchestrator struct {
	resolver  *universe.Resolver
	provider  contracts.MarketDataProvider
	profiles  contracts.ProfileProvider
	scorers   signals.Set
	composite *selection.CompositeScorer
	strategy  *strategyconfig.Config
	observer  progress.Observer
	now       func() time.Time

	mu     sync.Mutex
	logger *logger.Logger
}

// RunConfig holds the parameters of one run. Zero values fall back to the strategy file.
type RunConfig struct {
	RunID     string
	Mode      universe.Mode
	MaxStocks int
	Exclude   []string
	Liquidity bool // apply the strategy's liquidity filter after resolution
	MinScore  *float64
	TopN      int
	SectorCap int
	OutputDir string // empty skips writing artefacts
}

// RunResult holds everything a run produced, including partial output of a cancelled run
type RunResult struct {
	RunID           string
	ConfigHash      string
	Universe        *contracts.Universe
	Excluded        int
	Report          *selection.Report
	Top             []contracts.ScreeningResult
	TopReport       *output.TopReport
	CSVPath         string
	JSONPath        string
	CompletedStages []contracts.Stage
	StartedAt       time.Time
	Duration        time.Duration
	Error           error
}

// Qualified reports whether at least one ticker met the minimum score
func (r *RunResult) Qualified() bool {
	return r.Report != nil && len(r.Report.Results) > 0
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	resolver *universe.Resolver,
	provider contracts.MarketDataProvider,
	profiles contracts.ProfileProvider,
	composite *selection.CompositeScorer,
	strategy *strategyconfig.Config,
	log *logger.Logger,
) *Orchestrator {
	if strategy == nil {
		strategy = strategyconfig.Default()
	}
	return &Orchestrator{
		resolver:  resolver,
		provider:  provider,
		profiles:  profiles,
		scorers:   signals.NewSet(log),
		composite: composite,
		strategy:  strategy,
		observer:  progress.Nop{},
		now:       time.Now,
		logger:    log,
	}
}

// WithObserver attaches a progress observer to every run
func (o *Orchestrator) WithObserver(obs progress.Observer) *Orchestrator {
	o.observer = progress.OrNop(obs)
	return o
}

// WithScorers replaces the component scorers
func (o *Orchestrator) WithScorers(s signals.Set) *Orchestrator {
	o.scorers = s
	return o
}

// Strategy returns the strategy the orchestrator was built with
func (o *Orchestrator) Strategy() *strategyconfig.Config {
	return o.strategy
}

// Run executes one screening, waiting for any active run to finish first
func (o *Orchestrator) Run(ctx context.Context, cfg RunConfig) (*RunResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.run(ctx, cfg)
}

// TryRun executes one screening unless another run is active
func (o *Orchestrator) TryRun(ctx context.Context, cfg RunConfig) (*RunResult, error) {
	if !o.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer o.mu.Unlock()
	return o.run(ctx, cfg)
}

func (o *Orchestrator) run(ctx context.Context, cfg RunConfig) (*RunResult, error) {
	cfg, minScore, err := o.normalize(cfg)
	if err != nil {
		return nil, err
	}

	startTime := o.now()
	result := &RunResult{
		RunID:           cfg.RunID,
		CompletedStages: make([]contracts.Stage, 0, len(contracts.AllStages())),
		StartedAt:       startTime,
	}
	if hash, err := strategyconfig.Hash(o.strategy); err != nil {
		o.logger.WithError(err).WithField("run_id", cfg.RunID).Warn("Failed to hash strategy, artefact will carry no config hash")
	} else {
		result.ConfigHash = hash
	}

	observer := o.tagged(cfg.RunID)
	o.resolver.WithObserver(observer)

	o.logger.WithFields(map[string]interface{}{
		"run_id":     cfg.RunID,
		"mode":       string(cfg.Mode),
		"max_stocks": cfg.MaxStocks,
		"min_score":  minScore,
		"top_n":      cfg.TopN,
		"sector_cap": cfg.SectorCap,
		"exclude":    len(cfg.Exclude),
	}).Info("Starting screening run")

	// UNIVERSE
	u, err := o.resolver.Resolve(ctx, cfg.Mode, cfg.MaxStocks)
	if err != nil {
		return o.fail(result, startTime, contracts.StageUniverse, err)
	}
	if cfg.Liquidity {
		if err := o.applyLiquidity(ctx, u); err != nil {
			return o.fail(result, startTime, contracts.StageUniverse, err)
		}
	}
	result.Excluded = ApplyExclusions(u, cfg.Exclude)
	result.Universe = u
	result.CompletedStages = append(result.CompletedStages, contracts.StageUniverse)

	// FETCH + SCORE
	pipeline := selection.NewPipeline(o.provider, o.scorers, o.composite, o.logger).
		WithObserver(observer)
	report, err := pipeline.Screen(ctx, cfg.RunID, u.Symbols, minScore)
	if err != nil {
		return o.fail(result, startTime, contracts.StageScore, err)
	}
	result.Report = report
	result.CompletedStages = append(result.CompletedStages, contracts.StageFetch, contracts.StageScore)

	// SELECT
	result.Top = selection.SelectTop(report.Results, cfg.TopN, cfg.SectorCap)
	result.TopReport = output.NewTopReport(output.TopInput{
		RunID:      cfg.RunID,
		At:         startTime,
		ConfigHash: result.ConfigHash,
		Universe:   u,
		Counts:     report.Counts,
		Top:        result.Top,
	})
	result.CompletedStages = append(result.CompletedStages, contracts.StageSelect)

	// OUTPUT: 취소된 실행도 이미 점수화된 결과는 기록
	if cfg.OutputDir != "" {
		if err := o.write(result, cfg, startTime); err != nil {
			return o.fail(result, startTime, contracts.StageOutput, err)
		}
		result.CompletedStages = append(result.CompletedStages, contracts.StageOutput)
	}

	result.Duration = o.now().Sub(startTime)

	o.logger.WithFields(map[string]interface{}{
		"run_id":    cfg.RunID,
		"source":    string(u.Source),
		"degraded":  u.Degraded,
		"analyzed":  report.Counts.Analyzed,
		"qualified": report.Counts.Qualified,
		"failed":    report.Counts.Failed,
		"selected":  len(result.Top),
		"stopped":   report.Stopped,
		"duration":  result.Duration.Seconds(),
	}).Info("Screening run completed")

	return result, nil
}

// normalize fills defaults from the strategy and rejects bad parameters before any network call
func (o *Orchestrator) normalize(cfg RunConfig) (RunConfig, float64, error) {
	if cfg.RunID == "" {
		cfg.RunID = GenerateRunID()
	}
	if cfg.Mode == "" {
		cfg.Mode = universe.ModeAuto
	}
	mode, err := universe.ParseMode(string(cfg.Mode))
	if err != nil {
		return cfg, 0, err
	}
	cfg.Mode = mode

	if cfg.MaxStocks == 0 {
		cfg.MaxStocks = o.strategy.Screening.MaxStocks
	}
	if cfg.MaxStocks <= 0 {
		return cfg, 0, contracts.NewConfigError("max_stocks", "must be positive, got %d", cfg.MaxStocks)
	}
	if cfg.TopN == 0 {
		cfg.TopN = o.strategy.Screening.TopN
	}
	if cfg.SectorCap == 0 {
		cfg.SectorCap = o.strategy.Screening.SectorCap
	}

	minScore := o.strategy.Screening.MinScore
	if cfg.MinScore != nil {
		minScore = *cfg.MinScore
	}
	if minScore < 0 || minScore > 100 {
		return cfg, 0, contracts.NewConfigError("min_score", "must lie within [0,100], got %v", minScore)
	}
	return cfg, minScore, nil
}

func (o *Orchestrator) applyLiquidity(ctx context.Context, u *contracts.Universe) error {
	if o.profiles == nil {
		return contracts.NewConfigError("liquidity", "requires a profile provider")
	}

	filtered, err := universe.FilterProfiles(ctx, o.profiles, u.Symbols, 0, o.logger, o.strategy.Universe.Liquidity.Check)
	if err != nil {
		return fmt.Errorf("liquidity filter: %w", err)
	}
	if u.Excluded == nil {
		u.Excluded = make(map[string]string)
	}
	for ticker, reason := range filtered.Excluded {
		u.Excluded[ticker] = reason
	}
	u.Symbols = filtered.Kept
	return nil
}

func (o *Orchestrator) write(result *RunResult, cfg RunConfig, at time.Time) error {
	csvPath := filepath.Join(cfg.OutputDir, output.CSVName(at))
	if err := output.WriteCSV(csvPath, result.Report.Results); err != nil {
		return err
	}
	result.CSVPath = csvPath

	n := cfg.TopN
	if n <= 0 {
		n = len(result.Top)
	}
	jsonPath := filepath.Join(cfg.OutputDir, output.TopJSONName(n, at))
	if err := output.WriteTopJSON(jsonPath, result.TopReport); err != nil {
		return err
	}
	result.JSONPath = jsonPath

	o.logger.WithFields(map[string]interface{}{
		"csv":  csvPath,
		"json": jsonPath,
	}).Info("Artefacts written")
	return nil
}

func (o *Orchestrator) fail(result *RunResult, start time.Time, stage contracts.Stage, err error) (*RunResult, error) {
	result.Error = fmt.Errorf("%s failed: %w", stage, err)
	result.Duration = o.now().Sub(start)
	o.logger.WithError(err).WithFields(map[string]interface{}{
		"run_id": result.RunID,
		"stage":  string(stage),
	}).Error("Screening run failed")
	return result, result.Error
}

// tagged stamps the run id on events that lack one
func (o *Orchestrator) tagged(runID string) progress.Observer {
	next := o.observer
	return progress.Func(func(e progress.Event) {
		if e.RunID == "" {
			e.RunID = runID
		}
		next.Notify(e)
	})
}

// ExcludedByRequest is the exclusion reason recorded for --exclude tickers
const ExcludedByRequest = "excluded by request"

// ApplyExclusions drops the requested tickers from u and returns how many were removed
func ApplyExclusions(u *contracts.Universe, exclude []string) int {
	kept, removed := contracts.ExcludeTickers(u.Symbols, exclude)
	if len(removed) == 0 {
		return 0
	}

	if u.Excluded == nil {
		u.Excluded = make(map[string]string, len(removed))
	}
	for _, t := range removed {
		u.Excluded[t] = ExcludedByRequest
	}
	u.Symbols = kept
	return len(removed)
}

// GenerateRunID generates a unique run ID
func GenerateRunID() string {
	return fmt.Sprintf("run_%s_%s", time.Now().Format("20060102_150405"), uuid.NewString()[:8])
}
