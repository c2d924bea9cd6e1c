package signals

import (
	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/logger"
)

// Set bundles the four component scorers
type Set struct {
	Fundamental contracts.ComponentScorer
	Technical   contracts.ComponentScorer
	Catalyst    contracts.ComponentScorer
	Sentiment   contracts.ComponentScorer
}

// NewSet wires the default scorers
func NewSet(log *logger.Logger) Set {
	return Set{
		Fundamental: NewFundamentalScorer(log),
		Technical:   NewTechnicalScorer(log),
		Catalyst:    NewCatalystScorer(log),
		Sentiment:   NewSentimentScorer(log),
	}
}

// ScoreAll runs every scorer against one snapshot
func (s Set) ScoreAll(snap *contracts.StockSnapshot) map[contracts.Component]contracts.ComponentScore {
	return map[contracts.Component]contracts.ComponentScore{
		contracts.ComponentFundamental: s.Fundamental.Score(snap),
		contracts.ComponentTechnical:   s.Technical.Score(snap),
		contracts.ComponentCatalyst:    s.Catalyst.Score(snap),
		contracts.ComponentSentiment:   s.Sentiment.Score(snap),
	}
}
