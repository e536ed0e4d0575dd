package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scalper_bot/internal/models"
)

func constBars(n int, price, rng float64) []models.Bar {
	bars := make([]models.Bar, n)
	t0 := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = models.Bar{
			Open:  price,
			High:  price + rng/2,
			Low:   price - rng/2,
			Close: price,
			Time:  t0.Add(time.Duration(i) * time.Minute),
		}
	}
	return bars
}

func definedCount(s []float64) int {
	n := 0
	for _, v := range s {
		if Defined(v) {
			n++
		}
	}
	return n
}

func TestEMAConstantSeries(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 2000.0
	}

	out, err := EMA(closes, 9)
	require.NoError(t, err)
	require.Len(t, out, len(closes))

	for i := 0; i < 8; i++ {
		assert.True(t, math.IsNaN(out[i]), "index %d must be undefined", i)
	}
	for i := 8; i < len(out); i++ {
		assert.InDelta(t, 2000.0, out[i], 1e-9)
	}
	assert.Equal(t, len(closes)-9+1, definedCount(out))
}

func TestEMASeedIsSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6}
	out, err := EMA(closes, 3)
	require.NoError(t, err)

	// сид на индексе period-1 = SMA первых трёх
	assert.InDelta(t, 2.0, out[2], 1e-9)

	alpha := 2.0 / 4.0
	want := alpha*4 + (1-alpha)*2.0
	assert.InDelta(t, want, out[3], 1e-9)
}

func TestEMAInsufficientData(t *testing.T) {
	_, err := EMA([]float64{1, 2}, 3)
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestRSIAllGainsIs100(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	out, err := RSI(closes, 14)
	require.NoError(t, err)
	assert.Equal(t, len(closes)-14+1, definedCount(out))
	assert.InDelta(t, 100.0, out[len(out)-1], 1e-9)
}

func TestRSIBounds(t *testing.T) {
	closes := []float64{100, 103, 99, 104, 98, 105, 97, 106, 96, 107, 95, 108, 94, 109, 93, 110}
	out, err := RSI(closes, 14)
	require.NoError(t, err)

	for i, v := range out {
		if !Defined(v) {
			continue
		}
		assert.GreaterOrEqual(t, v, 0.0, "index %d", i)
		assert.LessOrEqual(t, v, 100.0, "index %d", i)
	}
}

func TestATRConstantRange(t *testing.T) {
	bars := constBars(25, 2000, 2.0)
	out, err := ATR(bars, 14)
	require.NoError(t, err)

	assert.Equal(t, len(bars)-14+1, definedCount(out))
	// все TR равны high-low, сглаживание ничего не меняет
	assert.InDelta(t, 2.0, out[len(out)-1], 1e-9)
}

func TestATRInsufficientData(t *testing.T) {
	_, err := ATR(constBars(5, 2000, 1), 14)
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestComputeAndReady(t *testing.T) {
	p := Periods{EMAFast: 9, EMAMid: 21, EMASlow: 50, RSI: 14, ATR: 14}

	_, err := Compute(constBars(49, 2000, 1), p)
	require.ErrorIs(t, err, ErrInsufficientData, "меньше самого длинного периода")

	s, err := Compute(constBars(60, 2000, 1), p)
	require.NoError(t, err)
	assert.True(t, s.Ready())
	assert.InDelta(t, 2000.0, s.LastEMAFast(), 1e-9)
	assert.InDelta(t, 2000.0, s.LastEMASlow(), 1e-9)
	assert.InDelta(t, 1.0, s.LastATR(), 1e-9)
}

func TestReadyFalseBeforeWarmup(t *testing.T) {
	// ровно 50 баров: EMA50 определена только на последнем, RSI/ATR давно прогреты
	p := Periods{EMAFast: 9, EMAMid: 21, EMASlow: 50, RSI: 14, ATR: 14}
	s, err := Compute(constBars(50, 2000, 1), p)
	require.NoError(t, err)
	assert.True(t, s.Ready())
	assert.Equal(t, 1, definedCount(s.EMASlow))
}
