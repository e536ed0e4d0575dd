// Package executor — отправка ордеров с ограниченным повтором.
// Дисциплина: в полёте не больше одного OrderRequest; сигнал, пришедший
// во время полёта, дропается, никогда не ставится в очередь.
package executor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"scalper_bot/internal/gateway"
	"scalper_bot/internal/models"
	"scalper_bot/internal/modules/config"
	"scalper_bot/internal/targets"
	"scalper_bot/pkg/logger"
)

var (
	// ErrBusy — предыдущая отправка ещё не достигла терминального состояния.
	ErrBusy = errors.New("execution_in_progress")
	// ErrShadow — shadow-режим: сигнал оценён и отрепорчен, submitOrder не зовём.
	ErrShadow = errors.New("shadow_mode")
)

type Coordinator struct {
	cfg    config.ExecConfig
	symbol string
	mode   models.TPSLMode
	gw     gateway.Gateway
	events chan<- models.Event

	inFlight atomic.Bool
	shadow   atomic.Bool
}

func New(cfg *config.Config, gw gateway.Gateway, events chan<- models.Event) *Coordinator {
	c := &Coordinator{
		cfg:    cfg.Exec,
		symbol: cfg.Symbol,
		mode:   cfg.Targets.Mode,
		gw:     gw,
		events: events,
	}
	c.shadow.Store(cfg.Exec.Shadow)
	return c
}

// Shadow — текущий режим. Переключается оператором на лету.
func (c *Coordinator) Shadow() bool     { return c.shadow.Load() }
func (c *Coordinator) SetShadow(v bool) { c.shadow.Store(v) }

// Submit ведёт протокол: IOC, на ретраибельном отказе ровно один повтор
// FOK по свежей цене, дальше OrderFailed без новых попыток — чтобы не
// пересылать протухший сигнал бесконечно.
func (c *Coordinator) Submit(ctx context.Context, sig models.Signal, t targets.Targets) (models.OrderResult, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		c.emit(models.RiskBlocked{Reason: ErrBusy.Error()})
		return models.OrderResult{}, ErrBusy
	}
	defer c.inFlight.Store(false)

	if c.shadow.Load() {
		logger.Info("[SHADOW] %s lot=%.2f @ %.5f sl=%.5f tp=%.5f — not submitted",
			sig.Side, t.Lot, sig.Entry, t.SL, t.TP)
		return models.OrderResult{}, ErrShadow
	}

	req := models.OrderRequest{
		Symbol:    c.symbol,
		Side:      sig.Side,
		Lot:       t.Lot,
		Price:     sig.Entry,
		SL:        t.SL,
		TP:        t.TP,
		Deviation: c.deviation(sig.SpreadPoints),
		Fill:      models.FillIOC,
		Mode:      c.mode,
		Comment:   fmt.Sprintf("scalper_%s", sig.Side),
	}

	res, err := c.send(ctx, req, sig)
	if err != nil {
		c.emit(models.OrderOutcome{
			OK: false, Requested: req, SpreadPoints: sig.SpreadPoints,
			Detail: fmt.Sprintf("gateway: %v", err),
		})
		return models.OrderResult{}, err
	}
	if res.OK() {
		c.succeed(req, res, sig)
		return res, nil
	}

	if !res.Retcode.Retryable() {
		c.fail(req, res, sig)
		return res, nil
	}

	// единственный fallback: FOK по свежей цене
	tick, err := c.gw.Tick(ctx, c.symbol)
	if err != nil {
		c.fail(req, res, sig)
		return res, nil
	}
	req.Fill = models.FillFOK
	if sig.Side == models.SideBuy {
		req.Price = tick.Ask
	} else {
		req.Price = tick.Bid
	}

	res2, err := c.send(ctx, req, sig)
	if err != nil {
		c.emit(models.OrderOutcome{
			OK: false, Requested: req, SpreadPoints: sig.SpreadPoints,
			Detail: fmt.Sprintf("gateway on fallback: %v", err),
		})
		return models.OrderResult{}, err
	}
	if res2.OK() {
		c.succeed(req, res2, sig)
		return res2, nil
	}
	c.fail(req, res2, sig)
	return res2, nil
}

func (c *Coordinator) send(ctx context.Context, req models.OrderRequest, sig models.Signal) (models.OrderResult, error) {
	c.emit(models.OrderAttempt{
		Side: req.Side, Lot: req.Lot, Price: req.Price,
		SL: req.SL, TP: req.TP, Fill: req.Fill,
	})
	logger.Info("[EXECUTE] %s %s lot=%.2f @ %.5f sl=%.5f tp=%.5f dev=%d",
		req.Fill, req.Side, req.Lot, req.Price, req.SL, req.TP, req.Deviation)
	return c.gw.SubmitOrder(ctx, req)
}

func (c *Coordinator) succeed(req models.OrderRequest, res models.OrderResult, sig models.Signal) {
	logger.Info("[ORDER OK] ticket=%d %s lot=%.2f filled=%.5f sl=%.5f tp=%.5f",
		res.Ticket, req.Side, req.Lot, res.FilledPrice, req.SL, req.TP)
	c.emit(models.OrderOutcome{
		OK: true, Ticket: res.Ticket, Retcode: res.Retcode,
		FilledPrice: res.FilledPrice, Requested: req, SpreadPoints: sig.SpreadPoints,
	})
}

func (c *Coordinator) fail(req models.OrderRequest, res models.OrderResult, sig models.Signal) {
	logger.Error("[ORDER FAIL] retcode=%d %s lot=%.2f req_price=%.5f spread=%.0fpts comment=%q",
		res.Retcode, req.Side, req.Lot, req.Price, sig.SpreadPoints, res.Comment)
	c.emit(models.OrderOutcome{
		OK: false, Retcode: res.Retcode, Requested: req,
		SpreadPoints: sig.SpreadPoints, Detail: res.Comment,
	})
}

// deviation — базовое отклонение, при dynamic расширяется на спред,
// но не больше 3x базы.
func (c *Coordinator) deviation(spreadPts float64) int {
	dev := c.cfg.DeviationPoints
	if !c.cfg.DynamicDeviation {
		return dev
	}
	d := dev + int(math.Round(spreadPts))
	if max := dev * 3; d > max {
		d = max
	}
	return d
}

// emit — one-way, никогда не блокирует воркер.
func (c *Coordinator) emit(e models.Event) {
	select {
	case c.events <- e:
	default:
		logger.Warn("[EVENTS] channel full, drop %s", e.EventKind())
	}
}
