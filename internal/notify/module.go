package notify

import (
	"context"

	"go.uber.org/fx"

	"scalper_bot/internal/executor"
	"scalper_bot/internal/gateway"
	"scalper_bot/internal/models"
	"scalper_bot/internal/modules/config"
	"scalper_bot/internal/risk"
	"scalper_bot/pkg/logger"
)

func Module() fx.Option {
	return fx.Module("notify",
		// Notifier: если TELEGRAM_* нет — используем stdout
		fx.Provide(
			func(cfg *config.Config, gw gateway.Gateway, rm *risk.Manager, exec *executor.Coordinator, events chan<- models.Event) Notifier {
				if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
					tg, err := NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, cfg.Symbol, gw, rm, exec, events)
					if err == nil {
						return tg
					}
					logger.Error("[TELEGRAM] init failed, falling back to stdout: %v", err)
				}
				return NewStdout()
			},
			NewDispatcher,
		),
		fx.Invoke(func(lc fx.Lifecycle, d *Dispatcher, n Notifier) {
			runCtx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					if tg, ok := n.(*Telegram); ok {
						tg.Start(runCtx)
					}
					go d.Run(runCtx)
					return nil
				},
				OnStop: func(context.Context) error {
					if tg, ok := n.(*Telegram); ok {
						tg.Stop()
					}
					cancel()
					return nil
				},
			})
		}),
	)
}
