package selection

import (
	"fmt"
	"math"
	"time"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/logger"
)

// weightTolerance absorbs float rounding in the weight sum
const weightTolerance = 1e-9

// Weights is the immutable weighting of the four components
type Weights struct {
	Fundamental float64 `json:"fundamental" yaml:"fundamental"`
	Technical   float64 `json:"technical" yaml:"technical"`
	Catalyst    float64 `json:"catalyst" yaml:"catalyst"`
	Sentiment   float64 `json:"sentiment" yaml:"sentiment"`
}

// DefaultWeights returns the standard weighting
func DefaultWeights() Weights {
	return Weights{
		Fundamental: 0.30,
		Technical:   0.25,
		Catalyst:    0.30,
		Sentiment:   0.15,
		// Total: 100%
	}
}

// Sum returns the total weight
func (w Weights) Sum() float64 {
	return w.Fundamental + w.Technical + w.Catalyst + w.Sentiment
}

// Validate checks that weights are non-negative and sum to 1
func (w Weights) Validate() error {
	for _, c := range contracts.AllComponents() {
		if v := w.Of(c); v < 0 || math.IsNaN(v) {
			return contracts.NewConfigError("weights."+string(c), "must be non-negative, got %v", v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > weightTolerance {
		return contracts.NewConfigError("weights", "must sum to 1.0, got %.6f", sum)
	}
	return nil
}

// Of returns the weight of one component
func (w Weights) Of(c contracts.Component) float64 {
	switch c {
	case contracts.ComponentFundamental:
		return w.Fundamental
	case contracts.ComponentTechnical:
		return w.Technical
	case contracts.ComponentCatalyst:
		return w.Catalyst
	case contracts.ComponentSentiment:
		return w.Sentiment
	default:
		return 0
	}
}

// RatingThresholds are the lower bounds of each rating band
type RatingThresholds struct {
	StrongBuy float64 `json:"strong_buy" yaml:"strong_buy"`
	Buy       float64 `json:"buy" yaml:"buy"`
	Hold      float64 `json:"hold" yaml:"hold"`
}

// DefaultRatingThresholds returns the standard bands
func DefaultRatingThresholds() RatingThresholds {
	return RatingThresholds{StrongBuy: 80, Buy: 65, Hold: 50}
}

// Validate checks the bands are strictly decreasing and inside [0,100]
func (t RatingThresholds) Validate() error {
	if t.StrongBuy > 100 || t.Hold < 0 {
		return contracts.NewConfigError("ratings", "thresholds must lie within [0,100]")
	}
	if !(t.StrongBuy > t.Buy && t.Buy > t.Hold) {
		return contracts.NewConfigError("ratings", "thresholds must be strictly decreasing (strong_buy > buy > hold), got %v > %v > %v",
			t.StrongBuy, t.Buy, t.Hold)
	}
	return nil
}

// Rate maps a final score to its rating
func (t RatingThresholds) Rate(score float64) contracts.Rating {
	switch {
	case score >= t.StrongBuy:
		return contracts.RatingStrongBuy
	case score >= t.Buy:
		return contracts.RatingBuy
	case score >= t.Hold:
		return contracts.RatingHold
	default:
		return contracts.RatingPass
	}
}

// RoundScore rounds to two decimals
func RoundScore(v float64) float64 {
	return math.Round(v*100) / 100
}

// CompositeScorer combines the four component scores into a final score and rating.
// Its configuration is fixed at construction.
// ⭐ SSOT: 종합 점수/등급 산출은 여기서만
type CompositeScorer struct {
	weights    Weights
	thresholds RatingThresholds
	logger     *logger.Logger
}

// NewCompositeScorer validates the configuration and creates a scorer
func NewCompositeScorer(weights Weights, thresholds RatingThresholds, log *logger.Logger) (*CompositeScorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	return &CompositeScorer{
		weights:    weights,
		thresholds: thresholds,
		logger:     log,
	}, nil
}

// Weights returns the configured weights
func (c *CompositeScorer) Weights() Weights { return c.weights }

// Thresholds returns the configured rating bands
func (c *CompositeScorer) Thresholds() RatingThresholds { return c.thresholds }

// FinalScore returns Σ weight × component score, rounded to two decimals
func (c *CompositeScorer) FinalScore(fundamental, technical, catalyst, sentiment float64) float64 {
	return RoundScore(fundamental*c.weights.Fundamental +
		technical*c.weights.Technical +
		catalyst*c.weights.Catalyst +
		sentiment*c.weights.Sentiment)
}

// Combine builds the ScreeningResult for one snapshot from its four component scores
func (c *CompositeScorer) Combine(snap *contracts.StockSnapshot, scores map[contracts.Component]contracts.ComponentScore, at time.Time) (*contracts.ScreeningResult, error) {
	for _, comp := range contracts.AllComponents() {
		s, ok := scores[comp]
		if !ok {
			return nil, fmt.Errorf("missing %s score for %s", comp, snap.Ticker)
		}
		if s.Score < 0 || s.Score > 100 || math.IsNaN(s.Score) {
			return nil, fmt.Errorf("%s score %v for %s outside [0,100]", comp, s.Score, snap.Ticker)
		}
	}

	result := &contracts.ScreeningResult{
		Ticker:       snap.Ticker,
		CompanyName:  snap.Meta.Name,
		Sector:       snap.Meta.Sector,
		Industry:     snap.Meta.Industry,
		MarketCap:    snap.Meta.MarketCap,
		CurrentPrice: snap.Price(),
		Fundamental:  scores[contracts.ComponentFundamental],
		Technical:    scores[contracts.ComponentTechnical],
		Catalyst:     scores[contracts.ComponentCatalyst],
		Sentiment:    scores[contracts.ComponentSentiment],
		ScreenedAt:   at,
	}
	result.FinalScore = c.FinalScore(
		result.Fundamental.Score,
		result.Technical.Score,
		result.Catalyst.Score,
		result.Sentiment.Score,
	)
	result.Rating = c.thresholds.Rate(result.FinalScore)

	c.logger.WithFields(map[string]interface{}{
		"ticker":      result.Ticker,
		"final_score": result.FinalScore,
		"rating":      string(result.Rating),
	}).Debug("Combined scores")

	return result, nil
}
