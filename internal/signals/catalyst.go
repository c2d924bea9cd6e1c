package signals

import (
	"regexp"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/logger"
)

// BusinessCatalystDefault stands in for news/filing analysis, which is not integrated.
// It adds the same points to every ticker.
const BusinessCatalystDefault = 20.0

// MarketCapBandPoints is awarded to mid caps ($2B-$10B) and large caps alike
const MarketCapBandPoints = 5.0

var bullishGrade = regexp.MustCompile(`(?i)buy|outperform`)

// CatalystScorer scores earnings timing, analyst upgrades, business catalyst and market position.
// Sub-budgets: timing 30, upgrades 20, business 20 (unmeasured), market position 20.
// ⭐ SSOT: 촉매 점수는 여기서만
type CatalystScorer struct {
	logger *logger.Logger
}

// NewCatalystScorer creates a new catalyst scorer
func NewCatalystScorer(log *logger.Logger) *CatalystScorer {
	return &CatalystScorer{logger: log}
}

// Component implements contracts.ComponentScorer
func (s *CatalystScorer) Component() contracts.Component {
	return contracts.ComponentCatalyst
}

// Score implements contracts.ComponentScorer
func (s *CatalystScorer) Score(snap *contracts.StockSnapshot) contracts.ComponentScore {
	sh := newSheet(contracts.ComponentCatalyst)
	meta := snap.Meta

	if meta.NextEarningsDate != nil {
		sh.addNote("earnings_timing", 30, 30, "earnings date "+meta.NextEarningsDate.Format("2006-01-02"))
		sh.note("Upcoming earnings")
	} else {
		sh.add("earnings_timing", 0, 30)
	}

	upgrades := countBullish(meta.GradeChanges, 5)
	sh.indicator("recent_bullish_grades", float64(upgrades))
	if upgrades >= 2 {
		sh.add("analyst_upgrades", 20, 20)
		sh.note("Recent analyst upgrades")
	} else {
		sh.add("analyst_upgrades", 0, 20)
	}

	sh.addUnmeasured("business_catalyst", BusinessCatalystDefault, 20, "no news or filing source integrated")

	if meta.Industry != "" {
		sh.addNote("industry_tag", 10, 10, meta.Industry)
		sh.note("Industry: " + meta.Industry)
	} else {
		sh.add("industry_tag", 0, 10)
	}

	capPoints := 0.0
	switch mcap := meta.MarketCap; {
	case mcap >= 2e9 && mcap <= 10e9:
		capPoints = MarketCapBandPoints
		sh.note("Mid cap")
	case mcap > 10e9:
		capPoints = MarketCapBandPoints
		sh.note("Large cap")
	}
	if meta.MarketCap > 0 {
		sh.indicator("market_cap", meta.MarketCap)
	}
	sh.add("market_cap_band", capPoints, 10)

	result := sh.result()
	s.logger.WithFields(map[string]interface{}{
		"ticker": snap.Ticker,
		"score":  result.Score,
	}).Debug("Scored catalysts")
	return result
}

// countBullish counts buy/outperform grades among the n most recent actions
func countBullish(changes []contracts.GradeChange, n int) int {
	if len(changes) > n {
		changes = changes[:n]
	}
	count := 0
	for _, c := range changes {
		if bullishGrade.MatchString(c.ToGrade) {
			count++
		}
	}
	return count
}
