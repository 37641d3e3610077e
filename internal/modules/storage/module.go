package storage

import (
	"context"

	"spot_trader/internal/modules/storage/service"
	"spot_trader/pkg/db"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(
			service.NewTrades,
			service.NewSnapshots,
		),
		fx.Invoke(func(lc fx.Lifecycle, tm *db.PgTxManager) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return service.EnsureSchema(ctx, tm)
				},
				OnStop: func(ctx context.Context) error {
					tm.Close()
					return nil
				},
			})
		}),
	)
}
