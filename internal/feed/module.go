package feed

import (
	"context"

	"go.uber.org/fx"

	"scalper_bot/internal/executor"
	"scalper_bot/internal/models"
	"scalper_bot/internal/risk"
	"scalper_bot/internal/strategy"
	"scalper_bot/internal/targets"
)

func newEventsChan() chan models.Event {
	// буфер с запасом: подписчики медленные (телеграм, журнал),
	// воркер при переполнении дропает, не ждёт
	return make(chan models.Event, 256)
}

func asSendOnly(ch chan models.Event) chan<- models.Event { return ch }
func asRecvOnly(ch chan models.Event) <-chan models.Event { return ch }

func Module() fx.Option {
	return fx.Module("feed",
		fx.Provide(
			newEventsChan,
			asSendOnly,
			asRecvOnly,
			strategy.NewEvaluator, // -> *strategy.Evaluator
			risk.NewManager,       // -> *risk.Manager
			targets.NewCalculator, // -> *targets.Calculator
			executor.New,          // -> *executor.Coordinator
			NewWorker,             // -> *Worker
		),
		fx.Invoke(func(lc fx.Lifecycle, w *Worker) {
			runCtx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					if err := w.Preflight(ctx); err != nil {
						cancel()
						return err
					}
					go w.Run(runCtx)
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
