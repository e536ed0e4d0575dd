// Package strategy — двух-таймфреймовый pullback-continuation.
// Тренд по старшему ТФ, вход по младшему. Evaluator без состояния между
// циклами: тренд и откат каждый раз выводятся заново из текущего окна,
// чтобы не накапливать дрейф.
package strategy

import (
	"fmt"
	"math"
	"time"

	"scalper_bot/internal/indicator"
	"scalper_bot/internal/models"
	"scalper_bot/internal/modules/config"
)

// Причины отказа. Полный проход — ReasonPullback.
const (
	ReasonPullback   = "pullback_continuation"
	ReasonOutside    = "outside_session"
	ReasonNoTrend    = "no_trend"
	ReasonNoPullback = "no_pullback"
	ReasonDoji       = "doji_candle"
	ReasonNoRecross  = "rsi_no_recross"
	ReasonWarmingUp  = "warming_up"
)

type Evaluator struct {
	cfg     config.StrategyConfig
	symbol  string
	windows []config.Window
}

func NewEvaluator(cfg *config.Config) *Evaluator {
	return &Evaluator{
		cfg:     cfg.Strategy,
		symbol:  cfg.Symbol,
		windows: cfg.Strategy.Windows(),
	}
}

// Evaluate прогоняет гейты в фиксированном порядке, каждый может
// коротко замкнуть в Signal{SideNone, reason}. Ровно один Signal на вызов;
// Evaluator сам никогда ничего не планирует.
func (e *Evaluator) Evaluate(m1, m5 *indicator.Set, tick models.Tick, spec models.SymbolSpec, now time.Time) models.Signal {
	none := func(reason string) models.Signal {
		return models.Signal{Symbol: e.symbol, Side: models.SideNone, Reason: reason, CreatedAt: now}
	}

	// 1. Спред
	spreadPts := tick.SpreadPoints(spec.Point)
	if spreadPts > e.cfg.MaxSpreadPoints {
		return none(fmt.Sprintf("spread_wide_%dpts", int(math.Round(spreadPts))))
	}

	// 2. Торговое окно
	if !e.inSession(now) {
		return none(ReasonOutside)
	}

	if !m1.Ready() || !m5.Ready() {
		return none(ReasonWarmingUp)
	}

	// 3. Тренд по старшему ТФ
	m5Close := m5.Last().Close
	bullish := m5.LastEMAFast() > m5.LastEMAMid() && m5Close > m5.LastEMASlow()
	bearish := m5.LastEMAFast() < m5.LastEMAMid() && m5Close < m5.LastEMASlow()
	if !bullish && !bearish {
		return none(ReasonNoTrend)
	}

	// 4. Вход по младшему ТФ: цена у быстрой EMA со стороны тренда,
	// не дальше pullback_atr_ratio * ATR.
	m1Close := m1.Last().Close
	emaFast := m1.LastEMAFast()
	atr := m1.LastATR()

	var side models.Side
	if bullish && m1Close > emaFast && m1Close-emaFast < atr*e.cfg.PullbackATRRatio {
		side = models.SideBuy
	}
	if bearish && m1Close < emaFast && emaFast-m1Close < atr*e.cfg.PullbackATRRatio {
		side = models.SideSell
	}
	if side == models.SideNone {
		return none(ReasonNoPullback)
	}

	// 5. Анти-доджи: сигнальная свеча должна иметь тело
	last := m1.Last()
	if r := last.Range(); r > 0 && last.Body()/r < e.cfg.MinBodyRatio {
		return none(ReasonDoji)
	}

	// 6. Опциональный RSI re-cross 50 по направлению тренда
	if e.cfg.UseRSIFilter && !recrossed(m1.RSI, e.cfg.RSIRecrossBars, side == models.SideBuy) {
		return none(ReasonNoRecross)
	}

	entry := tick.Bid
	if side == models.SideBuy {
		entry = tick.Ask
	}
	atrPts := atr
	if spec.Point > 0 {
		atrPts = atr / spec.Point
	}

	return models.Signal{
		Symbol:       e.symbol,
		Side:         side,
		Entry:        entry,
		Reason:       ReasonPullback,
		ATRPoints:    atrPts,
		SpreadPoints: spreadPts,
		CreatedAt:    now,
	}
}

func (e *Evaluator) inSession(now time.Time) bool {
	if len(e.windows) == 0 {
		return true
	}
	for _, w := range e.windows {
		if w.Contains(now) {
			return true
		}
	}
	return false
}

// recrossed — RSI сейчас на нужной стороне от 50 и пересёк 50 в ту же
// сторону в пределах последних n закрытых баров.
func recrossed(rsi []float64, n int, up bool) bool {
	last := len(rsi) - 1
	if last < 1 {
		return false
	}
	cur := rsi[last]
	if !indicator.Defined(cur) {
		return false
	}
	if up && cur <= 50 || !up && cur >= 50 {
		return false
	}
	if n < 1 {
		n = 1
	}
	lo := last - n + 1
	if lo < 1 {
		lo = 1
	}
	for i := last; i >= lo; i-- {
		if !indicator.Defined(rsi[i]) || !indicator.Defined(rsi[i-1]) {
			break
		}
		if up && rsi[i] > 50 && rsi[i-1] <= 50 {
			return true
		}
		if !up && rsi[i] < 50 && rsi[i-1] >= 50 {
			return true
		}
	}
	return false
}
