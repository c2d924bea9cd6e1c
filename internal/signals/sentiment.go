package signals

import (
	"strings"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/logger"
)

// InsiderConfidenceDefault is the neutral stand-in for insider filing analysis, which is not integrated
const InsiderConfidenceDefault = 20.0

var institutionalTiers = []tier{{70, 40}, {50, 30}, {30, 20}} // percent held

// SentimentScorer scores institutional ownership, insider confidence and the analyst consensus.
// Sub-budgets: institutional 40, insider 40 (unmeasured, neutral 20), analyst 20.
// ⭐ SSOT: 센티먼트 점수는 여기서만
type SentimentScorer struct {
	logger *logger.Logger
}

// NewSentimentScorer creates a new sentiment scorer
func NewSentimentScorer(log *logger.Logger) *SentimentScorer {
	return &SentimentScorer{logger: log}
}

// Component implements contracts.ComponentScorer
func (s *SentimentScorer) Component() contracts.Component {
	return contracts.ComponentSentiment
}

// Score implements contracts.ComponentScorer
func (s *SentimentScorer) Score(snap *contracts.StockSnapshot) contracts.ComponentScore {
	sh := newSheet(contracts.ComponentSentiment)

	held, ok := snap.Fundamentals.Get(contracts.MetricInstitutionalHeld)
	if ok {
		sh.indicator("institutional_pct", held*100)
		sh.add("institutional_ownership", aboveTiers(held*100, institutionalTiers), 40)
	} else {
		sh.add("institutional_ownership", 0, 40)
		sh.note("institutional ownership unknown")
	}

	sh.addUnmeasured("insider_confidence", InsiderConfidenceDefault, 40, "no insider filing source integrated")

	key := strings.ToLower(strings.TrimSpace(snap.Meta.RecommendationKey))
	sh.addNote("analyst_recommendation", recommendationPoints(key), 20, key)

	result := sh.result()
	s.logger.WithFields(map[string]interface{}{
		"ticker": snap.Ticker,
		"score":  result.Score,
	}).Debug("Scored sentiment")
	return result
}

func recommendationPoints(key string) float64 {
	switch key {
	case "strong_buy", "buy":
		return 20
	case "hold":
		return 10
	default:
		return 0
	}
}
