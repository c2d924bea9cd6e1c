package selection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/screener/internal/contracts"
)

func rankedAcrossSectors(n int, sectors ...string) []contracts.ScreeningResult {
	out := make([]contracts.ScreeningResult, n)
	for i := range out {
		out[i] = contracts.ScreeningResult{
			Ticker:     fmt.Sprintf("T%02d", i),
			Sector:     sectors[i%len(sectors)],
			FinalScore: float64(100 - i),
		}
	}
	return out
}

func TestSelectTop_SectorCap(t *testing.T) {
	ranked := rankedAcrossSectors(20, "Technology", "Technology", "Healthcare", "Energy")

	top := SelectTop(ranked, 10, 3)

	require.Len(t, top, 9, "three sectors capped at three each")
	for sector, count := range SectorCounts(top) {
		assert.LessOrEqual(t, count, 3, sector)
	}
	for i := 1; i < len(top); i++ {
		assert.Greater(t, top[i-1].FinalScore, top[i].FinalScore, "rank order preserved")
	}
	// the highest ranked Technology names win the slots
	assert.Equal(t, []string{"T00", "T01", "T02", "T03", "T04", "T06", "T07", "T10", "T11"}, tickersOf(top))
}

func TestSelectTop_Limits(t *testing.T) {
	ranked := rankedAcrossSectors(20, "A", "B", "C")

	assert.Len(t, SelectTop(ranked, 5, 3), 5)
	assert.Len(t, SelectTop(ranked, 0, 3), 9)
	assert.Len(t, SelectTop(ranked, 0, 0), 20)
	assert.Empty(t, SelectTop(nil, 10, 3))
}

func TestSelectTop_UnknownSectorShareCap(t *testing.T) {
	ranked := rankedAcrossSectors(5, "")
	top := SelectTop(ranked, 10, 2)
	assert.Len(t, top, 2)
	assert.Equal(t, 2, SectorCounts(top)[UnknownSector])
}

func TestRank_TieBreakByTicker(t *testing.T) {
	results := []contracts.ScreeningResult{
		{Ticker: "ZZZ", FinalScore: 70},
		{Ticker: "AAA", FinalScore: 70},
		{Ticker: "MMM", FinalScore: 90},
	}
	Rank(results)
	assert.Equal(t, []string{"MMM", "AAA", "ZZZ"}, tickersOf(results))
}

func TestRationale(t *testing.T) {
	r := &contracts.ScreeningResult{
		Ticker:      "NVDA",
		Sector:      "Technology",
		FinalScore:  82.5,
		Rating:      contracts.RatingStrongBuy,
		Fundamental: contracts.ComponentScore{Score: 95},
		Technical:   contracts.ComponentScore{Score: 80},
		Catalyst: contracts.ComponentScore{
			Score: 70,
			Notes: []string{"Upcoming earnings"},
			Criteria: []contracts.Criterion{
				{Name: "business_catalyst", Points: 20, Max: 20, Unmeasured: true},
			},
		},
	}

	text := Rationale(r)
	assert.Contains(t, text, "NVDA (Technology) rated STRONG BUY at 82.5/100.")
	assert.Contains(t, text, "strong fundamentals, bullish technicals")
	assert.NotContains(t, text, "major catalysts")
	assert.Contains(t, text, "Key catalyst: Upcoming earnings.")
	assert.Contains(t, text, "catalyst/business_catalyst")

	assert.Equal(t, "Fundamental and technical setup", KeyCatalyst(&contracts.ScreeningResult{}))
}
