// Package service — журнал торговли. Пишет сигналы, ордера и риск-события
// в Postgres; запись best-effort, провал журнала никогда не мешает торговле.
package service

import (
	"context"
	"time"

	"scalper_bot/internal/models"
)

type Recorder interface {
	Signal(ctx context.Context, sig models.Signal) error
	Order(ctx context.Context, out models.OrderOutcome) error
	RiskEvent(ctx context.Context, reason string, at time.Time) error
	PositionClosed(ctx context.Context, p models.Position, at time.Time) error
}
