package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/screener/internal/contracts"
)

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestSMA(t *testing.T) {
	v, err := SMA(ramp(20, 1, 1), 20)
	require.NoError(t, err)
	assert.InDelta(t, 10.5, v, 1e-9)

	v, err = SMA(ramp(30, 1, 1), 10)
	require.NoError(t, err)
	assert.InDelta(t, 25.5, v, 1e-9)

	_, err = SMA(ramp(199, 1, 1), 200)
	assert.ErrorIs(t, err, contracts.ErrInsufficientHistory)

	_, err = SMA(nil, 20)
	assert.ErrorIs(t, err, contracts.ErrInsufficientHistory)
}

func TestEMA(t *testing.T) {
	v, err := EMA(ramp(50, 10, 0), 12)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, v, 1e-9)

	_, err = EMA(ramp(5, 1, 1), 12)
	assert.ErrorIs(t, err, contracts.ErrInsufficientHistory)
}

func TestRSI(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   float64
	}{
		{"only gains", ramp(30, 100, 1), 100},
		{"only losses", ramp(30, 100, -1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := RSI(tt.closes, RSIPeriod)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, v, 1e-6)
		})
	}

	_, err := RSI(ramp(14, 1, 1), RSIPeriod)
	assert.ErrorIs(t, err, contracts.ErrInsufficientHistory)
}

func TestRSI_FlatSeriesIsUndefined(t *testing.T) {
	_, err := RSI(ramp(60, 100, 0), RSIPeriod)
	assert.ErrorIs(t, err, ErrRSIUndefined)

	// one move anywhere in the series defines it
	closes := ramp(60, 100, 0)
	closes[5] = 101
	_, err = RSI(closes, RSIPeriod)
	assert.NoError(t, err)
}

func TestRSI_StaysInRange(t *testing.T) {
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 100 + float64(i%7) - float64(i%3)*1.5
	}
	v, err := RSI(closes, RSIPeriod)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, v, 0.0)
	assert.LessOrEqual(t, v, 100.0)
}

func TestMACD(t *testing.T) {
	res, err := MACD(ramp(120, 50, 0.5))
	require.NoError(t, err)
	assert.Greater(t, res.MACD, 0.0)
	assert.InDelta(t, res.MACD-res.Signal, res.Histogram, 1e-9)

	_, err = MACD(ramp(33, 50, 0.5))
	assert.ErrorIs(t, err, contracts.ErrInsufficientHistory)
}

func TestTailMean(t *testing.T) {
	assert.Equal(t, 0.0, TailMean(nil, 10))
	assert.InDelta(t, 2.0, TailMean([]float64{1, 2, 3}, 10), 1e-9)
	assert.InDelta(t, 9.5, TailMean(ramp(10, 1, 1), 2), 1e-9)
}

func TestRelativeVolume(t *testing.T) {
	volumes := append(ramp(40, 100, 0), ramp(10, 300, 0)...)
	// base: mean of 50 = (40*100 + 10*300)/50 = 140, recent = 300
	assert.InDelta(t, 300.0/140.0, RelativeVolume(volumes, 10, 50), 1e-9)
	assert.Equal(t, 1.0, RelativeVolume([]float64{0, 0, 0}, 10, 50))
}

func TestUpDownVolumeRatio(t *testing.T) {
	closes := []float64{10, 11, 10, 11, 10, 11}
	volumes := []float64{0, 200, 100, 200, 100, 200}
	assert.InDelta(t, 2.0, UpDownVolumeRatio(closes, volumes, 20), 1e-9)

	assert.Equal(t, 1.0, UpDownVolumeRatio(ramp(10, 1, 1), ramp(10, 5, 0), 20), "no down days")
	assert.Equal(t, 0.0, UpDownVolumeRatio(ramp(10, 10, -1), ramp(10, 5, 0), 20), "no up days")
}

func TestHigherAt(t *testing.T) {
	ok, err := HigherAt(ramp(20, 1, 1), 10)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = HigherAt(ramp(20, 20, -1), 10)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = HigherAt(ramp(9, 1, 1), 10)
	assert.ErrorIs(t, err, contracts.ErrInsufficientHistory)
}
