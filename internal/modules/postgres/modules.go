package postgres

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"scalper_bot/internal/modules/config"
	"scalper_bot/pkg/db"
)

// Module поднимает мастер-пул. Пустой DSN — легальная конфигурация
// (журнал работает в noop-режиме), тогда менеджер nil.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(ctx context.Context, cfg *config.Config) (*db.PgTxManager, error) {
				if cfg.DB == "" {
					return nil, nil
				}
				poolMaster, err := db.NewPool(ctx, db.PoolConfig{
					DSN: cfg.DB,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create poolMaster: %w", err)
				}

				err = poolMaster.Ping(ctx)
				if err != nil {
					return nil, err
				}

				return db.NewPgTxManager(poolMaster), nil
			},
		),
	)
}
