package universe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/progress"
	"github.com/wonny/screener/pkg/logger"
)

func symbols(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%03d", prefix, i)
	}
	return out
}

// countingSource fails the first failures calls, then serves its list
type countingSource struct {
	kind     contracts.SourceKind
	list     []string
	failures int
	calls    int
}

func (s *countingSource) Kind() contracts.SourceKind { return s.kind }

func (s *countingSource) Fetch(ctx context.Context) ([]string, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, errors.New("connection reset")
	}
	return s.list, nil
}

func failing(kind contracts.SourceKind) *countingSource {
	return &countingSource{kind: kind, failures: 1 << 30}
}

func newTestResolver() *Resolver {
	return NewResolver(logger.NewNop()).WithRetry(3, 0)
}

func TestResolveAuto_RejectsOutOfBandAndFallsBack(t *testing.T) {
	primary := &countingSource{kind: contracts.SourcePrimary, list: symbols("P", 10)}
	secondary := &countingSource{kind: contracts.SourceSecondaryAPI, list: symbols("S", 500)}

	var rec progress.Recorder
	r := newTestResolver().WithSource(primary).WithSource(secondary).WithObserver(&rec)

	u, err := r.Resolve(context.Background(), ModeAuto, 500)
	require.NoError(t, err)

	assert.Equal(t, contracts.SourceSecondaryAPI, u.Source)
	assert.True(t, u.Degraded)
	assert.Equal(t, 500, u.Count())
	assert.Equal(t, "S000", u.Symbols[0])
	assert.Equal(t, 1, primary.calls, "an out-of-band answer is not retried")

	require.Len(t, u.Attempts, 2)
	assert.Equal(t, contracts.OutcomeRejected, u.Attempts[0].Outcome)
	assert.Equal(t, 10, u.Attempts[0].Count)
	assert.Equal(t, contracts.OutcomeAccepted, u.Attempts[1].Outcome)

	assert.Contains(t, rec.Types(), progress.ResolveRejected)
	assert.Contains(t, rec.Types(), progress.ResolveAccepted)
}

func TestResolveAuto_PrimaryServesUndegraded(t *testing.T) {
	primary := &countingSource{kind: contracts.SourcePrimary, list: symbols("P", 503)}
	u, err := newTestResolver().WithSource(primary).Resolve(context.Background(), ModeAuto, 100)
	require.NoError(t, err)

	assert.False(t, u.Degraded)
	assert.Equal(t, symbols("P", 100), u.Symbols, "truncation keeps source order")
}

func TestResolveAuto_RetriesBeforeFailing(t *testing.T) {
	primary := &countingSource{kind: contracts.SourcePrimary, list: symbols("P", 500), failures: 2}
	u, err := newTestResolver().WithSource(primary).Resolve(context.Background(), ModeAuto, 500)
	require.NoError(t, err)

	assert.Equal(t, contracts.SourcePrimary, u.Source)
	assert.Equal(t, 3, primary.calls)
	assert.Equal(t, 3, u.Attempts[0].Tries)
}

func TestResolveAuto_FallsThroughToHardcoded(t *testing.T) {
	var rec progress.Recorder
	r := newTestResolver().
		WithSource(failing(contracts.SourcePrimary)).
		WithSource(failing(contracts.SourceSecondaryAPI)).
		WithSource(failing(contracts.SourceTertiaryLibrary)).
		WithObserver(&rec)

	u, err := r.Resolve(context.Background(), ModeAuto, 500)
	require.NoError(t, err)

	assert.Equal(t, contracts.SourceHardcoded, u.Source)
	assert.True(t, u.Degraded)
	assert.Equal(t, 500, u.Count())
	require.Len(t, u.Attempts, 4)
	for _, a := range u.Attempts[:3] {
		assert.Equal(t, contracts.OutcomeFailed, a.Outcome)
		assert.Equal(t, 3, a.Tries)
	}
	assert.Contains(t, rec.Types(), progress.ResolveHardcoded)
}

func TestResolveAuto_Exhausted(t *testing.T) {
	r := newTestResolver().
		WithSource(failing(contracts.SourcePrimary)).
		WithSource(failing(contracts.SourceHardcoded))

	_, err := r.Resolve(context.Background(), ModeAuto, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrUniverseExhausted)
	assert.ErrorIs(t, err, contracts.ErrSourceUnavailable)
}

func TestResolve_NormalizesAndDedups(t *testing.T) {
	src := StaticSource(contracts.SourceFile, "AAPL", "aapl", "AAPL")
	r := newTestResolver().WithSource(src)

	symbols, rec := r.attempt(context.Background(), src)
	assert.Equal(t, []string{"AAPL"}, symbols)
	assert.Equal(t, 1, rec.Count)
}

func TestResolve_SingleSourceModesHaveNoFallback(t *testing.T) {
	secondary := &countingSource{kind: contracts.SourceSecondaryAPI, list: symbols("S", 500)}
	r := newTestResolver().
		WithSource(failing(contracts.SourcePrimary)).
		WithSource(secondary)

	_, err := r.Resolve(context.Background(), ModeSP500, 500)
	require.Error(t, err)

	var srcErr *contracts.SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, contracts.SourcePrimary, srcErr.Source)
	assert.Zero(t, secondary.calls)
}

func TestResolve_Nasdaq100Band(t *testing.T) {
	ndx := &countingSource{kind: contracts.SourceNasdaq100, list: symbols("N", 101)}
	u, err := newTestResolver().WithSource(ndx).Resolve(context.Background(), ModeNasdaq100, 500)
	require.NoError(t, err)
	assert.Equal(t, 101, u.Count())

	short := &countingSource{kind: contracts.SourceNasdaq100, list: symbols("N", 40)}
	_, err = newTestResolver().WithSource(short).Resolve(context.Background(), ModeNasdaq100, 500)
	assert.ErrorIs(t, err, contracts.ErrSourceUnavailable)
}

func TestResolve_CombinedIsUnion(t *testing.T) {
	sp := append(symbols("P", 499), "AAPL")
	ndx := append(symbols("N", 99), "aapl")

	u, err := newTestResolver().
		WithSource(StaticSource(contracts.SourcePrimary, sp...)).
		WithSource(StaticSource(contracts.SourceNasdaq100, ndx...)).
		Resolve(context.Background(), ModeCombined, 1000)
	require.NoError(t, err)

	assert.Equal(t, 599, u.Count())
	assert.Equal(t, contracts.SourcePrimary, u.Source)
	assert.Len(t, u.Attempts, 2)
}

func TestResolve_ConfigErrorsBeforeNetwork(t *testing.T) {
	primary := &countingSource{kind: contracts.SourcePrimary, list: symbols("P", 500)}
	r := newTestResolver().WithSource(primary)

	tests := []struct {
		name     string
		mode     Mode
		maxCount int
	}{
		{"unknown mode", Mode("crypto"), 10},
		{"zero max", ModeAuto, 0},
		{"negative max", ModeSP500, -1},
		{"nasdaq source missing", ModeNasdaq100, 10},
		{"sector mode without profiles", ModeTech, 10},
		{"file mode without file", ModeFile, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), tt.mode, tt.maxCount)
			assert.ErrorIs(t, err, contracts.ErrConfiguration)
		})
	}
	assert.Zero(t, primary.calls)
}

func TestResolve_ModeIsCaseInsensitive(t *testing.T) {
	u, err := newTestResolver().Resolve(context.Background(), Mode("AUTO"), 5)
	require.NoError(t, err)
	assert.Equal(t, "auto", u.Mode)
	assert.Equal(t, 5, u.Count())
}

func TestResolve_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	primary := &countingSource{kind: contracts.SourcePrimary, failures: 1 << 30}

	r := NewResolver(logger.NewNop()).WithSource(primary).WithRetry(3, 1<<40).
		WithObserver(progress.Func(func(e progress.Event) {
			if e.Type == progress.ResolveAttempt {
				cancel()
			}
		}))

	_, err := r.Resolve(ctx, ModeAuto, 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, primary.calls)
}

// stubProfiles serves canned profiles; missing tickers fail
type stubProfiles map[string]contracts.StockProfile

func (s stubProfiles) GetProfile(ctx context.Context, ticker string) (*contracts.StockProfile, error) {
	p, ok := s[ticker]
	if !ok {
		return nil, errors.New("not found")
	}
	return &p, nil
}

func sectorUniverse() ([]string, stubProfiles) {
	list := symbols("P", 500)
	profiles := stubProfiles{}
	sectors := []string{"Technology", "Healthcare", "Energy", "Consumer Cyclical"}
	for i, t := range list {
		if i == 7 {
			continue // profile lookup fails
		}
		profiles[t] = contracts.StockProfile{Ticker: t, Sector: sectors[i%4], MarketCap: float64(i) * 1e9}
	}
	return list, profiles
}

func TestResolve_SectorModes(t *testing.T) {
	list, profiles := sectorUniverse()

	tests := []struct {
		mode Mode
		want int
	}{
		{ModeTech, 125},
		{ModeHealthcare, 125},
		{ModeGrowth, 374}, // P007 (Consumer Cyclical) has no profile
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			u, err := newTestResolver().
				WithSource(StaticSource(contracts.SourcePrimary, list...)).
				WithProfiles(profiles).
				Resolve(context.Background(), tt.mode, 1000)
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.Count())
			excluded, reason := u.IsExcluded("P007")
			assert.True(t, excluded)
			assert.Contains(t, reason, "profile unavailable")
		})
	}
}

func TestResolve_SectorModeStopsAtMaxCount(t *testing.T) {
	list, profiles := sectorUniverse()
	u, err := newTestResolver().
		WithSource(StaticSource(contracts.SourcePrimary, list...)).
		WithProfiles(profiles).
		Resolve(context.Background(), ModeTech, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"P000", "P004", "P008"}, u.Symbols)
}

func TestResolve_StrictFilterIsValidEmptyUniverse(t *testing.T) {
	list := symbols("P", 500)
	u, err := newTestResolver().
		WithSource(StaticSource(contracts.SourcePrimary, list...)).
		WithProfiles(stubProfiles{}).
		Resolve(context.Background(), ModeHealthcare, 50)
	require.NoError(t, err)
	assert.True(t, u.IsEmpty())
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "universe_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolve_FileTickers(t *testing.T) {
	path := writeFile(t, "tickers: [aapl, MSFT, AAPL, nvda]\n")

	u, err := newTestResolver().WithUniverseFile(path).Resolve(context.Background(), ModeFile, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, u.Symbols)
	assert.Equal(t, contracts.SourceFile, u.Source)
}

func TestResolve_FileFilters(t *testing.T) {
	list, profiles := sectorUniverse()
	path := writeFile(t, `
filters:
  indices: [sp500]
  sectors: [Technology]
  min_market_cap: 100000000000
  max_stocks: 5
`)

	u, err := newTestResolver().
		WithSource(StaticSource(contracts.SourcePrimary, list...)).
		WithProfiles(profiles).
		WithUniverseFile(path).
		Resolve(context.Background(), ModeFile, 500)
	require.NoError(t, err)
	assert.Equal(t, []string{"P100", "P104", "P108", "P112", "P116"}, u.Symbols)
}

func TestParseFile(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{"tickers", "tickers: [AAPL]", false},
		{"filters", "filters: {indices: [sp500, nasdaq100]}", false},
		{"empty", "name: x", true},
		{"neither", "tickers: []", true},
		{"unknown index", "filters: {indices: [russell]}", true},
		{"no indices", "filters: {sectors: [Technology]}", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFile([]byte(tt.yaml))
			if tt.wantErr {
				assert.ErrorIs(t, err, contracts.ErrConfiguration)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestBand(t *testing.T) {
	b := Band{Min: 480, Max: 520}
	assert.False(t, b.Contains(10))
	assert.True(t, b.Contains(480))
	assert.True(t, b.Contains(520))
	assert.False(t, b.Contains(521))
	assert.True(t, Band{Min: 1}.Contains(100000))
	assert.Error(t, Band{Min: 10, Max: 5}.Validate())
}
