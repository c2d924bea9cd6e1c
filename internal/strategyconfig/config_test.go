package strategyconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/screener/internal/contracts"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, 60.0, cfg.Screening.MinScore)
	assert.Equal(t, 15, cfg.Screening.TopN)
	assert.Equal(t, 3, cfg.Screening.SectorCap)
	assert.Equal(t, 500, cfg.Screening.MaxStocks)
	assert.InDelta(t, 1.0, cfg.Weights.Sum(), 1e-12)
	assert.Equal(t, 480, cfg.Band(contracts.SourcePrimary).Min)
	assert.Empty(t, Warn(cfg))
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, data, err := Load("")
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strategy.yaml")
	yaml := `
meta:
  strategy_id: tech_tilt
weights:
  fundamental: 0.40
  technical: 0.30
  catalyst: 0.20
  sentiment: 0.10
screening:
  top_n: 10
universe:
  bands:
    primary: {min: 490, max: 510}
  backoff: 250ms
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, data, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	assert.Equal(t, "tech_tilt", cfg.Meta.StrategyID)
	assert.Equal(t, 0.40, cfg.Weights.Fundamental)
	assert.Equal(t, 10, cfg.Screening.TopN)
	assert.Equal(t, 60.0, cfg.Screening.MinScore, "unset keys keep defaults")
	assert.Equal(t, 490, cfg.Band(contracts.SourcePrimary).Min)
	assert.Equal(t, 450, cfg.Band(contracts.SourceSecondaryAPI).Min, "other bands keep defaults")
	assert.Equal(t, "250ms", cfg.Universe.BackoffDuration().String())
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown field", "screening: {min_scroe: 50}"},
		{"weights off by one percent", "weights: {fundamental: 0.30, technical: 0.25, catalyst: 0.29, sentiment: 0.15}"},
		{"negative weight", "weights: {fundamental: 0.6, technical: 0.5, catalyst: 0.0, sentiment: -0.1}"},
		{"unordered ratings", "ratings: {strong_buy: 60, buy: 65, hold: 50}"},
		{"min score out of range", "screening: {min_score: 120}"},
		{"max stocks zero", "screening: {max_stocks: 0}"},
		{"inverted band", "universe: {bands: {primary: {min: 520, max: 480}}}"},
		{"zero attempts", "universe: {attempts: 0}"},
		{"bad backoff", "universe: {backoff: soon}"},
		{"liquidity max below min", "universe: {liquidity: {min_market_cap: 5e9, max_market_cap: 1e9}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, contracts.ErrConfiguration)
		})
	}
}

func TestHash_Deterministic(t *testing.T) {
	a, err := Hash(Default())
	require.NoError(t, err)
	assert.Len(t, a, 64)

	b, _ := Hash(Default())
	assert.Equal(t, a, b)

	changed := Default()
	changed.Screening.TopN = 10
	c, _ := Hash(changed)
	assert.NotEqual(t, a, c)
}

func TestWarn(t *testing.T) {
	cfg := Default()
	cfg.Screening.MinScore = 40
	cfg.Weights.Fundamental = 0.55
	cfg.Weights.Catalyst = 0.05

	codes := make([]string, 0)
	for _, w := range Warn(cfg) {
		codes = append(codes, w.Code)
	}
	assert.ElementsMatch(t, []string{"MIN_SCORE_BELOW_HOLD", "DOMINANT_WEIGHT"}, codes)
}
