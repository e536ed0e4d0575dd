package service

import (
	"context"
	"time"

	"scalper_bot/internal/models"
)

// Noop — журнал без БД. Все записи уходят в никуда.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (*Noop) Signal(context.Context, models.Signal) error { return nil }

func (*Noop) Order(context.Context, models.OrderOutcome) error { return nil }

func (*Noop) RiskEvent(context.Context, string, time.Time) error { return nil }

func (*Noop) PositionClosed(context.Context, models.Position, time.Time) error { return nil }
