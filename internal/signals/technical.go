package signals

import (
	"errors"
	"fmt"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/indicators"
	"github.com/wonny/screener/pkg/logger"
)

// TechnicalScorer scores trend, momentum, volume and pattern.
// Sub-budgets: trend 30, momentum 30, volume 20, pattern 20.
// An indicator whose window exceeds the history fails its favorable condition.
// ⭐ SSOT: 기술적 점수는 여기서만
type TechnicalScorer struct {
	logger *logger.Logger
}

// NewTechnicalScorer creates a new technical scorer
func NewTechnicalScorer(log *logger.Logger) *TechnicalScorer {
	return &TechnicalScorer{logger: log}
}

// Component implements contracts.ComponentScorer
func (s *TechnicalScorer) Component() contracts.Component {
	return contracts.ComponentTechnical
}

// Score implements contracts.ComponentScorer
func (s *TechnicalScorer) Score(snap *contracts.StockSnapshot) contracts.ComponentScore {
	sh := newSheet(contracts.ComponentTechnical)
	prices := snap.Prices
	closes := prices.Closes()

	s.scoreTrend(sh, closes)
	s.scoreMomentum(sh, closes)
	s.scoreVolume(sh, closes, prices.Volumes())
	s.scorePattern(sh, prices.Highs(), prices.Lows())

	result := sh.result()
	s.logger.WithFields(map[string]interface{}{
		"ticker":  snap.Ticker,
		"periods": prices.Len(),
		"score":   result.Score,
	}).Debug("Scored technicals")
	return result
}

func (s *TechnicalScorer) scoreTrend(sh *sheet, closes []float64) {
	last, hasLast := lastClose(closes)
	if hasLast {
		sh.indicator("price", last)
	}

	sma20, ok20 := s.sma(sh, closes, 20)
	sma50, ok50 := s.sma(sh, closes, 50)
	sma200, ok200 := s.sma(sh, closes, 200)

	sh.add("price_above_sma20", points(hasLast && ok20 && last > sma20, 10), 10)
	sh.add("price_above_sma50", points(hasLast && ok50 && last > sma50, 10), 10)
	sh.add("price_above_sma200", points(hasLast && ok200 && last > sma200, 5), 5)
	sh.add("golden_cross", points(ok50 && ok200 && sma50 > sma200, 5), 5)
}

func (s *TechnicalScorer) scoreMomentum(sh *sheet, closes []float64) {
	rsiPoints := 0.0
	if rsi, err := indicators.RSI(closes, indicators.RSIPeriod); err == nil {
		sh.indicator("rsi", rsi)
		switch {
		case rsi >= 40 && rsi <= 70:
			rsiPoints = 15
		case rsi >= 30 && rsi <= 80:
			rsiPoints = 10
		case rsi < 30:
			rsiPoints = 5 // oversold
		}
	} else {
		s.degraded(sh, "rsi", err)
	}
	sh.add("rsi", rsiPoints, 15)

	histPoints, crossPoints := 0.0, 0.0
	if macd, err := indicators.MACD(closes); err == nil {
		sh.indicator("macd", macd.MACD)
		sh.indicator("macd_signal", macd.Signal)
		sh.indicator("macd_histogram", macd.Histogram)
		if macd.Histogram > 0 {
			histPoints = 10
			if macd.MACD > macd.Signal {
				crossPoints = 5
			}
		}
	} else {
		s.degraded(sh, "macd", err)
	}
	sh.add("macd_histogram", histPoints, 10)
	sh.add("macd_crossover", crossPoints, 5)
}

func (s *TechnicalScorer) scoreVolume(sh *sheet, closes, volumes []float64) {
	if len(volumes) == 0 {
		sh.add("relative_volume", 0, 10)
		sh.add("up_down_volume", 0, 10)
		return
	}

	relative := indicators.RelativeVolume(volumes, 10, 50)
	sh.indicator("relative_volume", relative)
	sh.add("relative_volume", aboveTiers(relative, []tier{{1.5, 10}, {1.2, 5}}), 10)

	upDown := indicators.UpDownVolumeRatio(closes, volumes, 20)
	sh.indicator("up_down_volume_ratio", upDown)
	sh.add("up_down_volume", aboveTiers(upDown, []tier{{1.2, 10}, {1.0, 5}}), 10)
}

func (s *TechnicalScorer) scorePattern(sh *sheet, highs, lows []float64) {
	higherHigh, err := indicators.HigherAt(highs, 10)
	if err != nil {
		s.degraded(sh, "pattern", err)
	}
	// highs and lows come from the same bars, so one length check covers both
	higherLow, _ := indicators.HigherAt(lows, 10)

	sh.add("higher_high", points(higherHigh, 10), 10)
	sh.add("higher_low", points(higherLow, 10), 10)
}

func (s *TechnicalScorer) sma(sh *sheet, closes []float64, period int) (float64, bool) {
	v, err := indicators.SMA(closes, period)
	if err != nil {
		s.degraded(sh, "sma", err)
		return 0, false
	}
	sh.indicator(fmt.Sprintf("sma%d", period), v)
	return v, true
}

// degraded notes an indicator that fell back to its unfavorable state
func (s *TechnicalScorer) degraded(sh *sheet, name string, err error) {
	if errors.Is(err, contracts.ErrInsufficientHistory) {
		sh.note(err.Error())
		return
	}
	sh.note(name + ": " + err.Error())
}

func lastClose(closes []float64) (float64, bool) {
	if len(closes) == 0 {
		return 0, false
	}
	return closes[len(closes)-1], true
}

func points(cond bool, p float64) float64 {
	if cond {
		return p
	}
	return 0
}
