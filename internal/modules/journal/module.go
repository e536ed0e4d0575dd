package journal

import (
	"go.uber.org/fx"

	"scalper_bot/internal/modules/journal/service"
	"scalper_bot/pkg/db"
	"scalper_bot/pkg/logger"
)

func Module() fx.Option {
	return fx.Module("journal",
		fx.Provide(
			func(m *db.PgTxManager) service.Recorder {
				if m == nil {
					logger.Info("[JOURNAL] DB not configured, journal disabled")
					return service.NewNoop()
				}
				return service.NewPg(m)
			},
		),
	)
}
