package signals

import (
	"math"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/logger"
)

// Sub-budgets: growth 40, financial health 30, profitability 20, valuation 10
var (
	growthTiers = []tier{{30, 20}, {20, 15}, {10, 10}} // percent
	debtTiers   = []tier{{0.5, 15}, {1.0, 10}, {1.5, 5}}
	ratioTiers  = []tier{{2.0, 15}, {1.5, 10}, {1.0, 5}}
	marginTiers = []tier{{20, 10}, {10, 7}, {5, 4}} // percent
	roeTiers    = []tier{{20, 10}, {15, 7}, {10, 4}} // percent
)

// FundamentalScorer scores growth, balance sheet, profitability and valuation.
// A missing metric scores as its worst tier.
// ⭐ SSOT: 펀더멘털 점수는 여기서만
type FundamentalScorer struct {
	logger *logger.Logger
}

// NewFundamentalScorer creates a new fundamental scorer
func NewFundamentalScorer(log *logger.Logger) *FundamentalScorer {
	return &FundamentalScorer{logger: log}
}

// Component implements contracts.ComponentScorer
func (s *FundamentalScorer) Component() contracts.Component {
	return contracts.ComponentFundamental
}

// Score implements contracts.ComponentScorer
func (s *FundamentalScorer) Score(snap *contracts.StockSnapshot) contracts.ComponentScore {
	sh := newSheet(contracts.ComponentFundamental)
	f := snap.Fundamentals

	revenue := percentOr(f, contracts.MetricRevenueGrowth, math.Inf(-1))
	earnings := percentOr(f, contracts.MetricEarningsGrowth, math.Inf(-1))
	sh.add("revenue_growth", aboveTiers(revenue, growthTiers), 20)
	sh.add("earnings_growth", aboveTiers(earnings, growthTiers), 20)

	debt, ok := f.Get(contracts.MetricDebtToEquity)
	if !ok {
		debt = math.Inf(1)
		sh.note("debt/equity unknown")
	}
	ratio := valueOr(f, contracts.MetricCurrentRatio, math.Inf(-1))
	sh.add("debt_to_equity", belowTiers(debt, debtTiers), 15)
	sh.add("current_ratio", aboveTiers(ratio, ratioTiers), 15)

	margin := percentOr(f, contracts.MetricProfitMargin, math.Inf(-1))
	roe := percentOr(f, contracts.MetricROE, math.Inf(-1))
	sh.add("profit_margin", aboveTiers(margin, marginTiers), 10)
	sh.add("roe", aboveTiers(roe, roeTiers), 10)

	sh.add("peg_ratio", pegPoints(f), 10)

	for _, key := range []string{
		contracts.MetricRevenueGrowth, contracts.MetricEarningsGrowth, contracts.MetricProfitMargin,
		contracts.MetricROE, contracts.MetricDebtToEquity, contracts.MetricCurrentRatio,
		contracts.MetricPEGRatio, contracts.MetricTrailingPE, contracts.MetricForwardPE,
	} {
		if v, ok := f.Get(key); ok {
			sh.indicator(key, v)
		}
	}

	result := sh.result()
	s.logger.WithFields(map[string]interface{}{
		"ticker": snap.Ticker,
		"score":  result.Score,
	}).Debug("Scored fundamentals")
	return result
}

// pegPoints is only awarded for a strictly positive PEG
func pegPoints(f contracts.Fundamentals) float64 {
	peg, ok := f.Get(contracts.MetricPEGRatio)
	switch {
	case !ok || peg <= 0:
		return 0
	case peg < 1:
		return 10
	case peg < 1.5:
		return 7
	case peg < 2:
		return 4
	default:
		return 0
	}
}

func valueOr(f contracts.Fundamentals, key string, fallback float64) float64 {
	if v, ok := f.Get(key); ok && !math.IsNaN(v) {
		return v
	}
	return fallback
}

// percentOr reads a fractional metric as a percentage
func percentOr(f contracts.Fundamentals, key string, fallback float64) float64 {
	if v, ok := f.Get(key); ok && !math.IsNaN(v) {
		return v * 100
	}
	return fallback
}
