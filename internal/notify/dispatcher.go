package notify

import (
	"context"
	"strings"
	"time"

	"scalper_bot/internal/models"
	journal "scalper_bot/internal/modules/journal/service"
	"scalper_bot/pkg/logger"
)

// Dispatcher — единственный потребитель канала событий воркера.
// Раскладывает события по нотифайеру и журналу. Heartbeat и снимки
// позиций в телеграм не идут, их место — health-эндпоинт.
type Dispatcher struct {
	events <-chan models.Event
	n      Notifier
	rec    journal.Recorder
	th     *throttle
}

func NewDispatcher(events <-chan models.Event, n Notifier, rec journal.Recorder) *Dispatcher {
	return &Dispatcher{
		events: events,
		n:      n,
		rec:    rec,
		th:     newThrottle(5 * time.Minute),
	}
}

func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-d.events:
			d.handle(ctx, e)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, e models.Event) {
	switch ev := e.(type) {
	case models.SignalRaised:
		if err := d.rec.Signal(ctx, ev.Signal); err != nil {
			logger.Warn("[JOURNAL] signal: %v", err)
		}
		if ev.Signal.Actionable() {
			d.n.Sendf("📈 Сигнал %s %s @ %.5f (ATR %.1fpts, спред %.0fpts)",
				ev.Signal.Side, ev.Signal.Symbol, ev.Signal.Entry,
				ev.Signal.ATRPoints, ev.Signal.SpreadPoints)
		}

	case models.OrderOutcome:
		if err := d.rec.Order(ctx, ev); err != nil {
			logger.Warn("[JOURNAL] order: %v", err)
		}
		if ev.OK {
			d.n.Sendf("✅ Ордер исполнен #%d %s lot=%.2f @ %.5f sl=%.5f tp=%.5f",
				ev.Ticket, ev.Requested.Side, ev.Requested.Lot,
				ev.FilledPrice, ev.Requested.SL, ev.Requested.TP)
		} else {
			d.n.Sendf("❌ Ордер отклонён: retcode=%d %s (%s)",
				ev.Retcode, ev.Requested.Side, ev.Detail)
		}

	case models.RiskBlocked:
		if err := d.rec.RiskEvent(ctx, ev.Reason, time.Now()); err != nil {
			logger.Warn("[JOURNAL] risk: %v", err)
		}
		// одна и та же причина повторяется каждый бар, душим
		if d.th.allow(ev.Reason, time.Now()) {
			d.n.Sendf("⛔️ Торговля заблокирована: %s", ev.Reason)
		}

	case models.StopsAdjusted:
		d.n.Sendf("⚠️ Стопы расширены до минимума брокера (%.0fpts): sl=%.5f tp=%.5f",
			ev.MinPts, ev.SL, ev.TP)

	case models.PositionClosed:
		if err := d.rec.PositionClosed(ctx, ev.Position, ev.At); err != nil {
			logger.Warn("[JOURNAL] position: %v", err)
		}
		emoji := "🟢"
		if ev.Position.Profit < 0 {
			emoji = "🔻"
		}
		d.n.Sendf("%s Позиция #%d закрыта: %s %s lot=%.2f pnl=%.2f",
			emoji, ev.Position.Ticket, ev.Position.Side, ev.Position.Symbol,
			ev.Position.Volume, ev.Position.Profit)

	case models.EmergencyStopDone:
		if err := d.rec.RiskEvent(ctx, "emergency_stop", time.Now()); err != nil {
			logger.Warn("[JOURNAL] emergency stop: %v", err)
		}
		if len(ev.Failures) > 0 {
			d.n.Sendf("⚠️ Аварийная остановка: закрыто %d, не закрылись: %s",
				ev.Closed, strings.Join(ev.Failures, "; "))
		} else {
			d.n.Sendf("✅ Аварийная остановка: закрыто позиций %d. Торговля остановлена.", ev.Closed)
		}

	case models.Heartbeat, models.IndicatorsReady, models.PositionsSnapshot, models.OrderAttempt:
		// наблюдаемость, не для оператора
	}
}
