package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"

	"scalper_bot/internal/models"
	"scalper_bot/pkg/db"
)

type Pg struct {
	db *db.PgTxManager
}

func NewPg(m *db.PgTxManager) *Pg {
	return &Pg{db: m}
}

func (r *Pg) Signal(ctx context.Context, sig models.Signal) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Signal: %w", err)
		}
	}()
	return r.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, `
			INSERT INTO signals (symbol, side, reason, entry, atr_points, spread_points, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			sig.Symbol, string(sig.Side), sig.Reason, sig.Entry, sig.ATRPoints, sig.SpreadPoints, sig.CreatedAt)
		return err
	})
}

func (r *Pg) Order(ctx context.Context, out models.OrderOutcome) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Order: %w", err)
		}
	}()
	detail, err := sonic.MarshalString(out.Requested)
	if err != nil {
		return err
	}
	return r.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, `
			INSERT INTO orders (ok, ticket, retcode, filled_price, spread_points, detail, request, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
			out.OK, out.Ticket, int(out.Retcode), out.FilledPrice, out.SpreadPoints, out.Detail, detail)
		return err
	})
}

func (r *Pg) RiskEvent(ctx context.Context, reason string, at time.Time) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.RiskEvent: %w", err)
		}
	}()
	return r.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, `
			INSERT INTO risk_events (reason, created_at) VALUES ($1, $2)`,
			reason, at)
		return err
	})
}

func (r *Pg) PositionClosed(ctx context.Context, p models.Position, at time.Time) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.PositionClosed: %w", err)
		}
	}()
	return r.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, `
			INSERT INTO closed_positions (ticket, symbol, side, volume, entry, profit, closed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			p.Ticket, p.Symbol, string(p.Side), p.Volume, p.Entry, p.Profit, at)
		return err
	})
}
