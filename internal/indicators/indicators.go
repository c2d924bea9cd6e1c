// Package indicators computes the price/volume indicators used by the technical scorer.
// Every function guards its window before calling into talib, which panics or
// returns NaN on short input.
package indicators

import (
	"errors"
	"fmt"
	"math"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/screener/internal/contracts"
)

// Standard windows
const (
	RSIPeriod  = 14
	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9
)

// ErrRSIUndefined is returned when the closes never move: average gain and
// average loss are both zero and the ratio is 0/0.
var ErrRSIUndefined = errors.New("rsi undefined: no gains or losses")

func insufficient(name string, need, have int) error {
	return fmt.Errorf("%s needs %d periods, have %d: %w", name, need, have, contracts.ErrInsufficientHistory)
}

func lastValid(series []float64) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	v := series[len(series)-1]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// SMA returns the latest simple moving average over period closes
func SMA(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("sma period must be positive, got %d", period)
	}
	if len(closes) < period {
		return 0, insufficient(fmt.Sprintf("sma%d", period), period, len(closes))
	}
	if period == 1 {
		return closes[len(closes)-1], nil
	}

	v, ok := lastValid(talib.Sma(closes, period))
	if !ok {
		return 0, insufficient(fmt.Sprintf("sma%d", period), period, len(closes))
	}
	return v, nil
}

// EMA returns the latest exponential moving average
func EMA(closes []float64, period int) (float64, error) {
	if period <= 1 {
		return 0, fmt.Errorf("ema period must be greater than 1, got %d", period)
	}
	if len(closes) < period {
		return 0, insufficient(fmt.Sprintf("ema%d", period), period, len(closes))
	}

	v, ok := lastValid(talib.Ema(closes, period))
	if !ok {
		return 0, insufficient(fmt.Sprintf("ema%d", period), period, len(closes))
	}
	return v, nil
}

// RSI returns Wilder's relative strength index over period
func RSI(closes []float64, period int) (float64, error) {
	if period <= 1 {
		return 0, fmt.Errorf("rsi period must be greater than 1, got %d", period)
	}
	if len(closes) < period+1 {
		return 0, insufficient("rsi", period+1, len(closes))
	}
	// Wilder 평균은 전체 구간을 누적하므로 한 번도 움직이지 않은 경우만 0/0
	if flat(closes) {
		return 0, ErrRSIUndefined
	}

	v, ok := lastValid(talib.Rsi(closes, period))
	if !ok {
		return 0, insufficient("rsi", period+1, len(closes))
	}
	return v, nil
}

func flat(closes []float64) bool {
	for i := 1; i < len(closes); i++ {
		if closes[i] != closes[0] {
			return false
		}
	}
	return true
}

// MACDResult holds the latest MACD line, signal line and histogram
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// MACD returns the standard 12/26/9 MACD
func MACD(closes []float64) (MACDResult, error) {
	// talib.Macd 의 lookback = (slow-1) + (signal-1)
	need := MACDSlow + MACDSignal - 1
	if len(closes) < need {
		return MACDResult{}, insufficient("macd", need, len(closes))
	}

	macd, signal, hist := talib.Macd(closes, MACDFast, MACDSlow, MACDSignal)
	m, ok1 := lastValid(macd)
	s, ok2 := lastValid(signal)
	h, ok3 := lastValid(hist)
	if !ok1 || !ok2 || !ok3 {
		return MACDResult{}, insufficient("macd", need, len(closes))
	}
	return MACDResult{MACD: m, Signal: s, Histogram: h}, nil
}

// TailMean returns the mean of the last n values (or all of them when fewer exist)
func TailMean(values []float64, n int) float64 {
	if len(values) == 0 || n <= 0 {
		return 0
	}
	if len(values) > n {
		values = values[len(values)-n:]
	}
	return stat.Mean(values, nil)
}

// RelativeVolume is the recent-window mean volume over the base-window mean volume.
// It is 1 when the base mean is zero.
func RelativeVolume(volumes []float64, recent, base int) float64 {
	baseMean := TailMean(volumes, base)
	if baseMean <= 0 {
		return 1
	}
	return TailMean(volumes, recent) / baseMean
}

// UpDownVolumeRatio compares the mean volume of the last n up days with the last n down days.
// It is 1 when there are no down days and 0 when there are no up days.
func UpDownVolumeRatio(closes, volumes []float64, n int) float64 {
	var up, down []float64
	for i := 1; i < len(closes) && i < len(volumes); i++ {
		switch change := closes[i] - closes[i-1]; {
		case change > 0:
			up = append(up, volumes[i])
		case change < 0:
			down = append(down, volumes[i])
		}
	}

	downMean := TailMean(down, n)
	if downMean <= 0 {
		return 1
	}
	return TailMean(up, n) / downMean
}

// HigherAt reports whether the last value is at or above the value lag bars earlier
// (lag 10 compares the last bar with the 10th from the end)
func HigherAt(values []float64, lag int) (bool, error) {
	if lag <= 0 {
		return false, fmt.Errorf("lag must be positive, got %d", lag)
	}
	if len(values) < lag {
		return false, insufficient("pattern", lag, len(values))
	}
	return values[len(values)-1] >= values[len(values)-lag], nil
}
