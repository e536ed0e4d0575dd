package mt5bridge

import (
	"context"

	"go.uber.org/fx"

	"scalper_bot/internal/gateway"
	"scalper_bot/internal/modules/config"
	"scalper_bot/internal/modules/mt5bridge/service"
)

func Module() fx.Option {
	return fx.Module("mt5bridge",
		fx.Provide(
			service.NewClient, // -> *service.Client
			func(c *service.Client) gateway.Gateway { return c },
		),
		// тик-стрим живёт весь аптайм приложения
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, c *service.Client) {
			runCtx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					c.StreamTicks(runCtx, cfg.Symbol)
					return nil
				},
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})
		}),
	)
}
