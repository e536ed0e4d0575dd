package notify

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scalper_bot/internal/models"
	journal "scalper_bot/internal/modules/journal/service"
)

type memNotifier struct {
	msgs []string
}

func (m *memNotifier) Send(msg string)             { m.msgs = append(m.msgs, msg) }
func (m *memNotifier) Sendf(f string, args ...any) { m.Send(fmt.Sprintf(f, args...)) }

// memRecorder — Noop с учётом риск-событий.
type memRecorder struct {
	*journal.Noop
	riskEvents []string
}

func (r *memRecorder) RiskEvent(_ context.Context, reason string, _ time.Time) error {
	r.riskEvents = append(r.riskEvents, reason)
	return nil
}

func newTestDispatcher() (*Dispatcher, *memNotifier) {
	n := &memNotifier{}
	events := make(chan models.Event, 16)
	return NewDispatcher(events, n, journal.NewNoop()), n
}

func TestOrderOutcomeNotified(t *testing.T) {
	d, n := newTestDispatcher()
	ctx := context.Background()

	d.handle(ctx, models.OrderOutcome{
		OK: true, Ticket: 42, FilledPrice: 2000.36,
		Requested: models.OrderRequest{Side: models.SideBuy, Lot: 0.5, SL: 1999, TP: 2001.5},
	})
	d.handle(ctx, models.OrderOutcome{
		OK: false, Retcode: models.RetcodeNoMoney,
		Requested: models.OrderRequest{Side: models.SideBuy}, Detail: "no money",
	})

	assert.Len(t, n.msgs, 2)
	assert.Contains(t, n.msgs[0], "#42")
	assert.Contains(t, n.msgs[1], "10019")
}

func TestRiskBlockedThrottled(t *testing.T) {
	d, n := newTestDispatcher()
	ctx := context.Background()

	// одна причина каждый бар — оператору хватит одного сообщения в окно
	for i := 0; i < 5; i++ {
		d.handle(ctx, models.RiskBlocked{Reason: "max_trades_reached"})
	}
	d.handle(ctx, models.RiskBlocked{Reason: "loss_cooldown"})

	assert.Len(t, n.msgs, 2, "по одному сообщению на причину")
}

func TestQuietEventsNotForwarded(t *testing.T) {
	d, n := newTestDispatcher()
	ctx := context.Background()

	d.handle(ctx, models.Heartbeat{T: time.Now()})
	d.handle(ctx, models.IndicatorsReady{})
	d.handle(ctx, models.PositionsSnapshot{})
	d.handle(ctx, models.OrderAttempt{})
	d.handle(ctx, models.SignalRaised{Signal: models.Signal{Reason: "no_trend"}})

	assert.Empty(t, n.msgs)
}

func TestActionableSignalForwarded(t *testing.T) {
	d, n := newTestDispatcher()

	d.handle(context.Background(), models.SignalRaised{Signal: models.Signal{
		Symbol: "XAUUSD", Side: models.SideBuy, Entry: 2000.35, Reason: "pullback_continuation",
	}})

	assert.Len(t, n.msgs, 1)
	assert.Contains(t, n.msgs[0], "BUY")
}

func TestEmergencyStopJournaledAndNotified(t *testing.T) {
	n := &memNotifier{}
	rec := &memRecorder{Noop: journal.NewNoop()}
	d := NewDispatcher(make(chan models.Event), n, rec)
	ctx := context.Background()

	d.handle(ctx, models.EmergencyStopDone{Closed: 3})
	d.handle(ctx, models.EmergencyStopDone{Closed: 2, Failures: []string{"ticket 2: requote"}})

	assert.Equal(t, []string{"emergency_stop", "emergency_stop"}, rec.riskEvents)
	require.Len(t, n.msgs, 2)
	assert.Contains(t, n.msgs[0], "закрыто позиций 3")
	assert.Contains(t, n.msgs[1], "ticket 2")
}

func TestPositionClosedForwarded(t *testing.T) {
	d, n := newTestDispatcher()

	d.handle(context.Background(), models.PositionClosed{
		Position: models.Position{Ticket: 9, Symbol: "XAUUSD", Side: models.SideBuy, Volume: 0.5, Profit: -30},
		At:       time.Now(),
	})

	assert.Len(t, n.msgs, 1)
	assert.Contains(t, n.msgs[0], "#9")
}
