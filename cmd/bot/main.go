package main

import (
	"context"

	"go.uber.org/fx"

	"scalper_bot/internal/feed"
	"scalper_bot/internal/modules/config"
	"scalper_bot/internal/modules/health"
	"scalper_bot/internal/modules/journal"
	"scalper_bot/internal/modules/mt5bridge"
	"scalper_bot/internal/modules/postgres"
	"scalper_bot/internal/notify"
	"scalper_bot/pkg/logger"
	"scalper_bot/pkg/tracing"
)

func main() {
	logger.Init("scalper_bot")
	defer logger.Sync()

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config) error {
			_, closeTracer, err := tracing.InitTracer(tracing.Config{
				Host: cfg.Jaeger.Host,
				Port: cfg.Jaeger.Port,
			})
			if err != nil {
				return err
			}
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					closeTracer()
					return nil
				},
			})
			return nil
		}),
		postgres.Module(),
		journal.Module(),
		mt5bridge.Module(),
		feed.Module(),
		notify.Module(),
		health.Module(),
	)
	app.Run()
}
