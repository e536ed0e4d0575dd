// Package targets — расчёт SL/TP и лота. Чистая функция от
// (режим, сигнал, цена входа, спецификация, счёт): без побочных эффектов,
// одинаковый вход всегда даёт одинаковый выход.
package targets

import (
	"fmt"
	"math"

	"scalper_bot/internal/helper"
	"scalper_bot/internal/models"
	"scalper_bot/internal/modules/config"
)

// Targets — рассчитанные стопы и размер.
type Targets struct {
	SL  float64
	TP  float64
	Lot float64

	SLPoints float64
	TPPoints float64

	// Adjusted: дистанции были расширены до минимальной дистанции брокера
	// (stops_level). Невалидные стопы не отправляются и не выбрасываются
	// молча — caller обязан отрепортить Warning.
	Adjusted      bool
	MinStopPoints float64
}

type Calculator struct {
	cfg         config.TargetsConfig
	riskPercent float64
}

func NewCalculator(cfg *config.Config) *Calculator {
	return &Calculator{cfg: cfg.Targets, riskPercent: cfg.Risk.RiskPercent}
}

// Calc считает дистанции по выбранному режиму, направляет их по стороне
// сделки и сайзит лот от денежного риска.
func (c *Calculator) Calc(sig models.Signal, entry float64, spec models.SymbolSpec, acct models.Account) (Targets, error) {
	if entry <= 0 {
		return Targets{}, fmt.Errorf("entry <= 0")
	}
	if spec.Point <= 0 {
		return Targets{}, fmt.Errorf("point <= 0")
	}

	slDist, tpDist, err := c.distances(sig, spec, acct)
	if err != nil {
		return Targets{}, err
	}

	t := Targets{}

	// минимальная дистанция брокера: нарушение чинится расширением
	minStop := float64(spec.StopsLevel) * spec.Point
	if minStop > 0 {
		if slDist < minStop {
			slDist = minStop
			t.Adjusted = true
		}
		if tpDist < minStop {
			tpDist = minStop
			t.Adjusted = true
		}
		t.MinStopPoints = float64(spec.StopsLevel)
	}

	if sig.Side == models.SideBuy {
		t.SL = helper.RoundDownToTick(entry-slDist, spec.Point)
		t.TP = helper.RoundUpToTick(entry+tpDist, spec.Point)
	} else {
		t.SL = helper.RoundUpToTick(entry+slDist, spec.Point)
		t.TP = helper.RoundDownToTick(entry-tpDist, spec.Point)
	}

	t.SLPoints = math.Abs(entry-t.SL) / spec.Point
	t.TPPoints = math.Abs(t.TP-entry) / spec.Point

	lot, err := c.lot(t.SLPoints, spec, acct)
	if err != nil {
		return Targets{}, err
	}
	t.Lot = lot
	return t, nil
}

func (c *Calculator) distances(sig models.Signal, spec models.SymbolSpec, acct models.Account) (sl, tp float64, err error) {
	switch c.cfg.Mode {
	case models.ModeATR:
		pts := math.Max(c.cfg.MinSLPoints, sig.ATRPoints)
		sl = pts * spec.Point
		tp = sl * c.cfg.RiskMultiple

	case models.ModePoints:
		sl = c.cfg.SLPoints * spec.Point
		tp = c.cfg.TPPoints * spec.Point

	case models.ModePips:
		mult := spec.PipMultiplier()
		sl = c.cfg.SLPips * mult * spec.Point
		tp = c.cfg.TPPips * mult * spec.Point

	case models.ModeBalancePct:
		if spec.TickValue <= 0 {
			return 0, 0, fmt.Errorf("tick value <= 0")
		}
		slUSD := acct.Balance * c.cfg.SLPercent / 100
		tpUSD := acct.Balance * c.cfg.TPPercent / 100
		sl = slUSD / spec.TickValue * spec.Point
		tp = tpUSD / spec.TickValue * spec.Point

	default:
		return 0, 0, fmt.Errorf("unknown tp/sl mode %q", c.cfg.Mode)
	}
	if sl <= 0 || tp <= 0 {
		return 0, 0, fmt.Errorf("non-positive stop distance (mode %s)", c.cfg.Mode)
	}
	return sl, tp, nil
}

// lot = денежный риск / (дистанция стопа в пунктах * tick_value),
// приведён к шагу и зажат в [min, max].
func (c *Calculator) lot(slPoints float64, spec models.SymbolSpec, acct models.Account) (float64, error) {
	if slPoints <= 0 {
		return 0, fmt.Errorf("sl distance <= 0")
	}
	if spec.TickValue <= 0 {
		return 0, fmt.Errorf("tick value <= 0")
	}

	riskUSD := acct.Balance * c.riskPercent / 100
	raw := riskUSD / (slPoints * spec.TickValue)
	if raw <= 0 || math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, fmt.Errorf("lot invalid: %.8f", raw)
	}

	step := spec.VolumeStep
	if step <= 0 {
		step = 0.01
	}
	// округляем вниз: лот никогда не превышает денежный риск
	lot := math.Floor(raw/step+1e-9) * step

	if lot < spec.VolumeMin {
		lot = spec.VolumeMin
	}
	if spec.VolumeMax > 0 && lot > spec.VolumeMax {
		lot = spec.VolumeMax
	}
	return lot, nil
}
