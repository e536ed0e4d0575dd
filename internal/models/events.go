package models

import "time"

// Event — one-way уведомление из воркера наружу (презентация/журнал/health).
// Воркер только отправляет; подписчики никогда не мутируют состояние воркера.
type Event interface {
	EventKind() string
}

// Heartbeat — признак жизни конвейера, раз в секунду.
type Heartbeat struct {
	T      time.Time
	BarsM1 int
	BarsM5 int
}

func (Heartbeat) EventKind() string { return "heartbeat" }

// IndicatorsReady — снимок последних значений индикаторов после пересчёта.
type IndicatorsReady struct {
	Timeframe Timeframe
	EMAFast   float64
	EMAMid    float64
	EMASlow   float64
	RSI       float64
	ATR       float64
	Close     float64
}

func (IndicatorsReady) EventKind() string { return "indicators_ready" }

// SignalRaised — сигнал стратегии, включая отказы с причиной.
type SignalRaised struct {
	Signal Signal
}

func (SignalRaised) EventKind() string { return "signal" }

// OrderAttempt — попытка отправки ордера.
type OrderAttempt struct {
	Side  Side
	Lot   float64
	Price float64
	SL    float64
	TP    float64
	Fill  FillPolicy
}

func (OrderAttempt) EventKind() string { return "order_attempt" }

// OrderOutcome — терминальный результат отправки (успех или отказ).
type OrderOutcome struct {
	OK           bool
	Ticket       int64
	Retcode      Retcode
	FilledPrice  float64
	Requested    OrderRequest
	SpreadPoints float64
	Detail       string
}

func (OrderOutcome) EventKind() string { return "order_outcome" }

// RiskBlocked — ожидаемый отказ риск-менеджера, не ошибка.
type RiskBlocked struct {
	Reason string
}

func (RiskBlocked) EventKind() string { return "risk_blocked" }

// StopsAdjusted — SL/TP расширены до минимальной дистанции брокера.
type StopsAdjusted struct {
	Side   Side
	OldSL  float64
	OldTP  float64
	SL     float64
	TP     float64
	MinPts float64
}

func (StopsAdjusted) EventKind() string { return "stops_adjusted" }

// PositionClosed — тикет исчез из снимка шлюза, позиция закрыта.
type PositionClosed struct {
	Position Position
	At       time.Time
}

func (PositionClosed) EventKind() string { return "position_closed" }

// PositionsSnapshot — read-only зеркало открытых позиций шлюза.
type PositionsSnapshot struct {
	Positions []Position
}

func (PositionsSnapshot) EventKind() string { return "positions" }

// EmergencyStopDone — итог аварийного закрытия всех позиций.
type EmergencyStopDone struct {
	Closed   int
	Failures []string
}

func (EmergencyStopDone) EventKind() string { return "emergency_stop" }
