// Package feed — планировщик конвейера. Сам решений не принимает:
// раз в refresh гонит один проход индикаторы -> сигнал -> риск -> стопы ->
// исполнение, раз в секунду шлёт heartbeat. Вся логика выполняется
// последовательно в одном воркере, циклы не перекрываются.
package feed

import (
	"context"
	"errors"
	"time"

	"github.com/opentracing/opentracing-go"

	"scalper_bot/internal/executor"
	"scalper_bot/internal/gateway"
	"scalper_bot/internal/helper"
	"scalper_bot/internal/indicator"
	"scalper_bot/internal/models"
	"scalper_bot/internal/modules/config"
	healthstate "scalper_bot/internal/modules/health/service"
	"scalper_bot/internal/risk"
	"scalper_bot/internal/strategy"
	"scalper_bot/internal/targets"
	"scalper_bot/pkg/logger"
)

type Worker struct {
	cfg    *config.Config
	gw     gateway.Gateway
	eval   *strategy.Evaluator
	rm     *risk.Manager
	calc   *targets.Calculator
	exec   *executor.Coordinator
	events chan<- models.Event
	state  *healthstate.State

	spec    models.SymbolSpec
	periods indicator.Periods

	// состояние воркера, трогается только из run()
	lastM1Bar      time.Time
	barsM1, barsM5 int
	open           map[int64]models.Position
	warmupLogged   bool
}

func NewWorker(
	cfg *config.Config,
	gw gateway.Gateway,
	eval *strategy.Evaluator,
	rm *risk.Manager,
	calc *targets.Calculator,
	exec *executor.Coordinator,
	events chan<- models.Event,
	state *healthstate.State,
) *Worker {
	return &Worker{
		cfg:    cfg,
		gw:     gw,
		eval:   eval,
		rm:     rm,
		calc:   calc,
		exec:   exec,
		events: events,
		state:  state,
		open:   make(map[int64]models.Position),
		periods: indicator.Periods{
			EMAFast: cfg.Strategy.EMAFast,
			EMAMid:  cfg.Strategy.EMAMid,
			EMASlow: cfg.Strategy.EMASlow,
			RSI:     cfg.Strategy.RSIPeriod,
			ATR:     cfg.Strategy.ATRPeriod,
		},
	}
}

// Preflight валидирует инструмент и открывает сессию риска.
// Любая ошибка здесь фатальна для запуска.
func (w *Worker) Preflight(ctx context.Context) error {
	spec, err := w.gw.SymbolSpec(ctx, w.cfg.Symbol)
	if err != nil {
		return err
	}
	if err := gateway.ValidateSpec(spec); err != nil {
		return err
	}
	w.spec = spec

	acct, err := w.gw.Account(ctx)
	if err != nil {
		return err
	}
	w.rm.StartSession(acct.Balance, time.Now())

	logger.Info("[START] symbol=%s point=%v digits=%d lot=[%v..%v] stops_level=%d balance=%.2f",
		spec.Name, spec.Point, spec.Digits, spec.VolumeMin, spec.VolumeMax, spec.StopsLevel, acct.Balance)
	w.state.SetReady(true)
	return nil
}

// Run крутит воркер до отмены контекста. Остановка кооперативная:
// проверяется в начале каждого цикла, in-flight отправка всегда
// довозится до терминального состояния (цикл синхронный).
func (w *Worker) Run(ctx context.Context) {
	tickT := time.NewTicker(w.cfg.Feed.TickEvery)
	refreshT := time.NewTicker(w.cfg.Feed.RefreshEvery)
	hbT := time.NewTicker(w.cfg.Feed.HeartbeatEvery)
	defer tickT.Stop()
	defer refreshT.Stop()
	defer hbT.Stop()

	logger.Info("[START] feed loop: tick=%s refresh=%s", w.cfg.Feed.TickEvery, w.cfg.Feed.RefreshEvery)

	for {
		select {
		case <-ctx.Done():
			logger.Info("[STOP] feed loop stopped")
			w.state.SetReady(false)
			return

		case <-hbT.C:
			// heartbeat идёт всегда, даже когда шлюз лежит —
			// иначе снаружи не видно протухание данных
			w.heartbeat(time.Now())

		case <-tickT.C:
			w.pollTick(ctx)

		case <-refreshT.C:
			w.cycle(ctx)
		}
	}
}

func (w *Worker) heartbeat(now time.Time) {
	w.state.TouchHeartbeat(now, w.barsM1, w.barsM5)
	w.state.SetHalted(w.rm.Halted())
	w.emit(models.Heartbeat{T: now, BarsM1: w.barsM1, BarsM5: w.barsM5})
}

func (w *Worker) pollTick(ctx context.Context) {
	tick, err := w.gw.Tick(ctx, w.cfg.Symbol)
	if err != nil {
		w.state.SetGatewayUp(false)
		return
	}
	w.state.SetGatewayUp(true)
	w.state.TouchTick(tick.Time)
}

// cycle — один проход конвейера. Любая ошибка внутри роняет только
// текущий цикл, воркер всегда доживает до следующего.
func (w *Worker) cycle(ctx context.Context) {
	span := opentracing.StartSpan("evaluate_cycle")
	defer span.Finish()

	now := time.Now()

	m1Bars, err := w.gw.Bars(ctx, w.cfg.Symbol, models.TimeframeM1, w.cfg.Strategy.BarsWindow)
	if err != nil {
		w.gatewayDown("bars M1", err)
		return
	}
	m5Bars, err := w.gw.Bars(ctx, w.cfg.Symbol, models.TimeframeM5, w.cfg.Strategy.BarsWindow)
	if err != nil {
		w.gatewayDown("bars M5", err)
		return
	}
	w.state.SetGatewayUp(true)
	w.barsM1, w.barsM5 = len(m1Bars), len(m5Bars)

	w.reconcilePositions(ctx, now)

	m1, err := indicator.Compute(m1Bars, w.periods)
	if err != nil {
		w.waitForWarmup(err)
		return
	}
	m5, err := indicator.Compute(m5Bars, w.periods)
	if err != nil {
		w.waitForWarmup(err)
		return
	}
	if !m1.Ready() || !m5.Ready() {
		w.waitForWarmup(indicator.ErrInsufficientData)
		return
	}

	w.emit(models.IndicatorsReady{
		Timeframe: models.TimeframeM1,
		EMAFast:   m1.LastEMAFast(),
		EMAMid:    m1.LastEMAMid(),
		EMASlow:   m1.LastEMASlow(),
		RSI:       m1.LastRSI(),
		ATR:       m1.LastATR(),
		Close:     m1.Last().Close,
	})

	// одна оценка на закрытый M1 бар, иначе дублируем сигналы
	if last := m1.Last().Time; !last.After(w.lastM1Bar) {
		return
	}
	w.lastM1Bar = m1.Last().Time

	// бар сильно старше текущего слота — фид протух, на таком не торгуем
	if slot := helper.BarSlot(now, time.Minute); slot.Sub(w.lastM1Bar) > 3*time.Minute {
		logger.Warn("[FEED] stale bars: last M1 %s, slot %s", w.lastM1Bar, slot)
		return
	}

	tick, err := w.gw.Tick(ctx, w.cfg.Symbol)
	if err != nil {
		w.gatewayDown("tick", err)
		return
	}

	sig := w.eval.Evaluate(m1, m5, tick, w.spec, now)
	w.emit(models.SignalRaised{Signal: sig})
	if !sig.Actionable() {
		return
	}
	logger.Info("[SIGNAL] %s @ %.5f spread=%.0fpts atr=%.1fpts", sig.Side, sig.Entry, sig.SpreadPoints, sig.ATRPoints)

	acct, err := w.gw.Account(ctx)
	if err != nil {
		w.gatewayDown("account", err)
		return
	}

	if reason := w.rm.PreTrade(acct, now); reason != "" {
		logger.Info("[RISK STOP] %s", reason)
		w.emit(models.RiskBlocked{Reason: reason})
		return
	}

	t, err := w.calc.Calc(sig, sig.Entry, w.spec, acct)
	if err != nil {
		logger.Error("[TARGETS] %v", err)
		return
	}
	if t.Adjusted {
		// стопы расширены до stops_level: репортим, никогда не молчим
		logger.Warn("[TARGETS] stops widened to min distance %.0fpts: sl=%.5f tp=%.5f",
			t.MinStopPoints, t.SL, t.TP)
		w.emit(models.StopsAdjusted{
			Side: sig.Side, SL: t.SL, TP: t.TP, MinPts: t.MinStopPoints,
		})
	}

	res, err := w.exec.Submit(ctx, sig, t)
	switch {
	case errors.Is(err, executor.ErrShadow), errors.Is(err, executor.ErrBusy):
		return
	case err != nil:
		w.gatewayDown("submit", err)
		return
	}
	if res.OK() {
		w.rm.OnFill()
	}
}

// reconcilePositions зеркалит открытые позиции и скармливает риску
// закрытия (тикет исчез — позиция закрыта, PnL берём из последнего снимка).
func (w *Worker) reconcilePositions(ctx context.Context, now time.Time) {
	positions, err := w.gw.Positions(ctx, w.cfg.Symbol)
	if err != nil {
		return // не критично для цикла
	}

	current := make(map[int64]models.Position, len(positions))
	for _, p := range positions {
		current[p.Ticket] = p
	}
	for ticket, prev := range w.open {
		if _, still := current[ticket]; !still {
			logger.Info("[POSITION CLOSED] ticket=%d profit=%.2f", ticket, prev.Profit)
			w.rm.OnPositionClosed(prev.Profit, now)
			w.emit(models.PositionClosed{Position: prev, At: now})
		}
	}
	w.open = current
	w.emit(models.PositionsSnapshot{Positions: positions})
}

func (w *Worker) gatewayDown(op string, err error) {
	w.state.SetGatewayUp(false)
	logger.Error("[GATEWAY] %s: %v", op, err)
}

func (w *Worker) waitForWarmup(err error) {
	if errors.Is(err, indicator.ErrInsufficientData) {
		if !w.warmupLogged {
			logger.Info("[WARMUP] waiting for bars: M1=%d M5=%d", w.barsM1, w.barsM5)
			w.warmupLogged = true
		}
		return
	}
	logger.Error("[INDICATORS] %v", err)
}

// emit — one-way, воркер никогда не блокируется на подписчиках.
func (w *Worker) emit(e models.Event) {
	select {
	case w.events <- e:
	default:
	}
}
