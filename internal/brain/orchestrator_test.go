package brain

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/output"
	"github.com/wonny/screener/internal/progress"
	"github.com/wonny/screener/internal/selection"
	"github.com/wonny/screener/internal/signals"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/internal/universe"
	"github.com/wonny/screener/pkg/config"
	"github.com/wonny/screener/pkg/logger"
)

type snapshotStub struct {
	snaps  map[string]*contracts.StockSnapshot
	calls  []string
	onCall func(ticker string)
}

func (s *snapshotStub) GetSnapshot(ctx context.Context, ticker string) (*contracts.StockSnapshot, error) {
	s.calls = append(s.calls, ticker)
	if s.onCall != nil {
		s.onCall(ticker)
	}
	if err := ctx.Err(); err != nil {
		return nil, &contracts.SnapshotError{Ticker: ticker, Err: err}
	}
	snap, ok := s.snaps[ticker]
	if !ok {
		return nil, &contracts.SnapshotError{Ticker: ticker, Err: errors.New("no data")}
	}
	return snap, nil
}

type profileStub map[string]*contracts.StockProfile

func (p profileStub) GetProfile(_ context.Context, ticker string) (*contracts.StockProfile, error) {
	if prof, ok := p[ticker]; ok {
		return prof, nil
	}
	return nil, errors.New("no profile")
}

// flat scores every component with the snapshot's "score" fundamental
type flat struct{ c contracts.Component }

func (f flat) Component() contracts.Component { return f.c }

func (f flat) Score(snap *contracts.StockSnapshot) contracts.ComponentScore {
	v, _ := snap.Fundamentals.Get("score")
	return contracts.ComponentScore{Component: f.c, Score: v}
}

func flatSet() signals.Set {
	return signals.Set{
		Fundamental: flat{contracts.ComponentFundamental},
		Technical:   flat{contracts.ComponentTechnical},
		Catalyst:    flat{contracts.ComponentCatalyst},
		Sentiment:   flat{contracts.ComponentSentiment},
	}
}

func snap(ticker, sector string, score float64) *contracts.StockSnapshot {
	return &contracts.StockSnapshot{
		Ticker:       ticker,
		Fundamentals: contracts.Fundamentals{"score": score},
		Meta:         contracts.StockMetadata{Name: ticker + " Inc", Sector: sector},
	}
}

type fixture struct {
	orch     *Orchestrator
	provider *snapshotStub
	events   *progress.Recorder
}

func newFixture(t *testing.T, symbols []string, snaps ...*contracts.StockSnapshot) *fixture {
	t.Helper()
	log := logger.NewNop()

	resolver := universe.NewResolver(log).
		WithSource(universe.StaticSource(contracts.SourcePrimary, symbols...)).
		WithBands(universe.Bands{contracts.SourcePrimary: {Min: 1}}).
		WithRetry(1, 0)

	composite, err := selection.NewCompositeScorer(selection.DefaultWeights(), selection.DefaultRatingThresholds(), log)
	require.NoError(t, err)

	provider := &snapshotStub{snaps: make(map[string]*contracts.StockSnapshot)}
	for _, s := range snaps {
		provider.snaps[s.Ticker] = s
	}

	events := &progress.Recorder{}
	orch := NewOrchestrator(resolver, provider, nil, composite, strategyconfig.Default(), log).
		WithScorers(flatSet()).
		WithObserver(events)
	return &fixture{orch: orch, provider: provider, events: events}
}

func TestRun_EndToEnd(t *testing.T) {
	f := newFixture(t,
		[]string{"AAA", "BBB", "CCC", "DDD", "EEE"},
		snap("AAA", "Technology", 90),
		snap("BBB", "Technology", 85),
		snap("CCC", "Energy", 70),
		snap("DDD", "Energy", 40),
	)
	dir := t.TempDir()

	res, err := f.orch.Run(context.Background(), RunConfig{
		RunID:     "run-1",
		Mode:      universe.ModeSP500,
		MaxStocks: 10,
		Exclude:   []string{"bbb"},
		TopN:      2,
		OutputDir: dir,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Excluded)
	assert.Equal(t, []string{"AAA", "CCC", "DDD", "EEE"}, res.Universe.Symbols)
	assert.NotContains(t, f.provider.calls, "BBB")
	assert.Equal(t, contracts.RunCounts{Analyzed: 3, Qualified: 2, Failed: 1}, res.Report.Counts)
	require.Len(t, res.Top, 2)
	assert.Equal(t, "AAA", res.Top[0].Ticker)
	assert.True(t, res.Qualified())
	assert.Equal(t, []contracts.Stage{
		contracts.StageUniverse, contracts.StageFetch, contracts.StageScore, contracts.StageSelect, contracts.StageOutput,
	}, res.CompletedStages)

	require.FileExists(t, res.CSVPath)
	top, err := output.ReadTopJSON(res.JSONPath)
	require.NoError(t, err)
	assert.Equal(t, "run-1", top.RunID)
	assert.Equal(t, contracts.SourcePrimary, top.UniverseSource)
	assert.NotEmpty(t, top.ConfigHash)
	assert.Len(t, top.TopN, 2)

	for _, e := range f.events.Events() {
		assert.Equal(t, "run-1", e.RunID, "event %s", e.Type)
	}
}

func TestRun_NoQualifyingResults(t *testing.T) {
	f := newFixture(t, []string{"AAA"}, snap("AAA", "Energy", 10))

	res, err := f.orch.Run(context.Background(), RunConfig{Mode: universe.ModeSP500, MaxStocks: 5})
	require.NoError(t, err)

	assert.False(t, res.Qualified())
	assert.Empty(t, res.Top)
	assert.NotEmpty(t, res.RunID)
	assert.Empty(t, res.CSVPath)
}

func TestRun_CancelledStillWritesPartialResults(t *testing.T) {
	f := newFixture(t,
		[]string{"AAA", "BBB", "CCC"},
		snap("AAA", "Technology", 90),
		snap("BBB", "Technology", 90),
		snap("CCC", "Technology", 90),
	)
	ctx, cancel := context.WithCancel(context.Background())
	f.provider.onCall = func(ticker string) {
		if ticker == "BBB" {
			cancel()
		}
	}
	dir := t.TempDir()

	res, err := f.orch.Run(ctx, RunConfig{Mode: universe.ModeSP500, MaxStocks: 5, OutputDir: dir})
	require.NoError(t, err)

	assert.True(t, res.Report.Stopped)
	assert.Equal(t, []string{"AAA"}, tickers(res.Report.Results))
	require.FileExists(t, res.CSVPath)
	require.FileExists(t, res.JSONPath)
}

func TestRun_ConfigErrorsBeforeNetwork(t *testing.T) {
	f := newFixture(t, []string{"AAA"}, snap("AAA", "Energy", 90))
	bad := 120.0

	tests := []struct {
		name string
		cfg  RunConfig
	}{
		{"unknown mode", RunConfig{Mode: "everything"}},
		{"negative max", RunConfig{MaxStocks: -1}},
		{"min score", RunConfig{MinScore: &bad}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orch.Run(context.Background(), tt.cfg)
			assert.ErrorIs(t, err, contracts.ErrConfiguration)
		})
	}
	assert.Empty(t, f.provider.calls)
	assert.Empty(t, f.events.Events())
}

func TestRun_UniverseFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.orch.resolver.WithSource(universe.NewSource(contracts.SourcePrimary, func(context.Context) ([]string, error) {
		return nil, errors.New("down")
	}))

	res, err := f.orch.Run(context.Background(), RunConfig{Mode: universe.ModeSP500, MaxStocks: 5})
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrSourceUnavailable)
	assert.Empty(t, res.CompletedStages)
	assert.Nil(t, res.Report)
}

func TestRun_Liquidity(t *testing.T) {
	f := newFixture(t,
		[]string{"BIG", "TINY"},
		snap("BIG", "Technology", 90),
		snap("TINY", "Technology", 90),
	)
	f.orch.profiles = profileStub{
		"BIG":  {Ticker: "BIG", MarketCap: 50e9, Price: 120, AverageVolume: 2e6},
		"TINY": {Ticker: "TINY", MarketCap: 1e8, Price: 3, AverageVolume: 1e4},
	}

	res, err := f.orch.Run(context.Background(), RunConfig{Mode: universe.ModeSP500, MaxStocks: 5, Liquidity: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"BIG"}, res.Universe.Symbols)
	excluded, _ := res.Universe.IsExcluded("TINY")
	assert.True(t, excluded)
}

func TestTryRun_Busy(t *testing.T) {
	f := newFixture(t, []string{"AAA"}, snap("AAA", "Energy", 90))
	f.orch.mu.Lock()
	defer f.orch.mu.Unlock()

	_, err := f.orch.TryRun(context.Background(), RunConfig{})
	assert.ErrorIs(t, err, ErrRunInProgress)
}

func TestRun_UnhashableStrategyIsLogged(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&config.Config{LogLevel: "info", LogFormat: "json", Env: "development"}, &buf)

	resolver := universe.NewResolver(log).
		WithSource(universe.StaticSource(contracts.SourcePrimary, "AAA")).
		WithBands(universe.Bands{contracts.SourcePrimary: {Min: 1}}).
		WithRetry(1, 0)
	composite, err := selection.NewCompositeScorer(selection.DefaultWeights(), selection.DefaultRatingThresholds(), log)
	require.NoError(t, err)

	// JSON cannot encode +Inf, so the strategy hash fails
	strategy := strategyconfig.Default()
	strategy.Universe.Liquidity.MaxMarketCap = math.Inf(1)

	provider := &snapshotStub{snaps: map[string]*contracts.StockSnapshot{"AAA": snap("AAA", "Technology", 90)}}
	orch := NewOrchestrator(resolver, provider, nil, composite, strategy, log).WithScorers(flatSet())

	res, err := orch.Run(context.Background(), RunConfig{RunID: "run-hash", Mode: universe.ModeSP500, MaxStocks: 5})
	require.NoError(t, err)

	assert.Empty(t, res.ConfigHash)
	assert.Contains(t, buf.String(), "Failed to hash strategy")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestApplyExclusions(t *testing.T) {
	u := &contracts.Universe{Symbols: []string{"AAPL", "MSFT", "NVDA"}}

	n := ApplyExclusions(u, contracts.ParseTickerList(" aapl, ,nvda,ZZZZ"))

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"MSFT"}, u.Symbols)
	_, reason := u.IsExcluded("AAPL")
	assert.Equal(t, ExcludedByRequest, reason)

	assert.Zero(t, ApplyExclusions(u, nil))
	assert.Equal(t, []string{"MSFT"}, u.Symbols)
}

func TestGenerateRunID_Unique(t *testing.T) {
	a, b := GenerateRunID(), GenerateRunID()
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^run_\d{8}_\d{6}_[0-9a-f]{8}$`, a)
}

func tickers(results []contracts.ScreeningResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Ticker
	}
	return out
}
