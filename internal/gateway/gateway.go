package gateway

import (
	"context"
	"errors"

	"scalper_bot/internal/models"
)

// Ошибки шлюза. ErrUnavailable восстановимая — цикл пропускается и
// повторяется на следующем тике; ErrInvalidSymbolSpec фатальна на старте.
var (
	ErrUnavailable       = errors.New("gateway unavailable")
	ErrInvalidSymbolSpec = errors.New("invalid symbol spec")
	ErrPositionNotFound  = errors.New("position not found")
)

// Gateway — брокерский коллаборатор (market data + исполнение).
// Все вызовы блокирующие и делаются только внутри feed-воркера.
type Gateway interface {
	// Bars возвращает count последних ЗАКРЫТЫХ свечей, свежая последняя.
	Bars(ctx context.Context, symbol string, tf models.Timeframe, count int) ([]models.Bar, error)
	Tick(ctx context.Context, symbol string) (models.Tick, error)
	SubmitOrder(ctx context.Context, req models.OrderRequest) (models.OrderResult, error)
	Positions(ctx context.Context, symbol string) ([]models.Position, error)
	ClosePosition(ctx context.Context, ticket int64) error
	Account(ctx context.Context) (models.Account, error)
	SymbolSpec(ctx context.Context, symbol string) (models.SymbolSpec, error)
}

// ValidateSpec — pre-flight проверка спецификации инструмента.
// Ошибка здесь фатальна для сессии.
func ValidateSpec(spec models.SymbolSpec) error {
	switch {
	case spec.Name == "":
		return ErrInvalidSymbolSpec
	case spec.Point <= 0:
		return ErrInvalidSymbolSpec
	case spec.Digits < 0 || spec.Digits > 8:
		return ErrInvalidSymbolSpec
	case spec.TickValue <= 0:
		return ErrInvalidSymbolSpec
	case spec.VolumeMin <= 0 || spec.VolumeStep <= 0 || spec.VolumeMax < spec.VolumeMin:
		return ErrInvalidSymbolSpec
	}
	return nil
}
