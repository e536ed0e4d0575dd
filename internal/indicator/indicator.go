// Package indicator считает серии EMA, Wilder RSI и Wilder ATR по закрытым
// свечам. Серии выровнены по индексу со свечами; до прогрева (index < period-1)
// значения не определены и отдаются как NaN — никогда не фабрикуются.
package indicator

import (
	"errors"
	"math"

	"scalper_bot/internal/models"
)

// ErrInsufficientData — свечей меньше периода; восстановимо, ждём баров.
var ErrInsufficientData = errors.New("insufficient data")

// EMA: сид — простое среднее первых period закрытий, дальше рекуррента
// ema[i] = α·close[i] + (1-α)·ema[i-1], α = 2/(period+1).
func EMA(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		period = 1
	}
	if len(closes) < period {
		return nil, ErrInsufficientData
	}

	out := undefined(len(closes), period-1)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += closes[i]
	}
	out[period-1] = sum / float64(period)

	alpha := 2.0 / float64(period+1)
	for i := period; i < len(closes); i++ {
		out[i] = alpha*closes[i] + (1-alpha)*out[i-1]
	}
	return out, nil
}

// RSI по Уайлдеру. Сид — средний gain/loss по дельтам внутри первых period
// свечей (делитель period), дальше сглаживание
// avg = avg·(period-1)/period + x/period. При avgLoss == 0 RSI = 100.
func RSI(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		period = 1
	}
	if len(closes) < period {
		return nil, ErrInsufficientData
	}

	out := undefined(len(closes), period-1)

	var avgGain, avgLoss float64
	for i := 1; i < period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period-1] = rsiValue(avgGain, avgLoss)

	k := float64(period-1) / float64(period)
	for i := period; i < len(closes); i++ {
		gain, loss := 0.0, 0.0
		if d := closes[i] - closes[i-1]; d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = avgGain*k + gain/float64(period)
		avgLoss = avgLoss*k + loss/float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// ATR: true range = max(high-low, |high-prevClose|, |low-prevClose|),
// сглаживание идентично RSI. Для первой свечи prevClose нет — TR = high-low.
func ATR(bars []models.Bar, period int) ([]float64, error) {
	if period <= 0 {
		period = 1
	}
	if len(bars) < period {
		return nil, ErrInsufficientData
	}

	tr := make([]float64, len(bars))
	tr[0] = bars[0].High - bars[0].Low
	for i := 1; i < len(bars); i++ {
		pc := bars[i-1].Close
		tr[i] = math.Max(bars[i].High-bars[i].Low,
			math.Max(math.Abs(bars[i].High-pc), math.Abs(bars[i].Low-pc)))
	}

	out := undefined(len(bars), period-1)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += tr[i]
	}
	out[period-1] = sum / float64(period)

	k := float64(period-1) / float64(period)
	for i := period; i < len(bars); i++ {
		out[i] = out[i-1]*k + tr[i]/float64(period)
	}
	return out, nil
}

func undefined(n, until int) []float64 {
	out := make([]float64, n)
	for i := 0; i < until && i < n; i++ {
		out[i] = math.NaN()
	}
	return out
}

// Defined — значение серии уже прогрето.
func Defined(v float64) bool { return !math.IsNaN(v) }
