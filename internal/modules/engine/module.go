package engine

import (
	"context"

	"go.uber.org/fx"

	"spot_trader/internal/modules/config"
	"spot_trader/internal/modules/engine/service"
	exchangesvc "spot_trader/internal/modules/exchange/service"
	gatewaysvc "spot_trader/internal/modules/gateway/service"
	healthsvc "spot_trader/internal/modules/health/service"
	storagesvc "spot_trader/internal/modules/storage/service"
	strategysvc "spot_trader/internal/modules/strategy/service"
)

func Module() fx.Option {
	return fx.Module("engine",
		fx.Provide(
			func(c *exchangesvc.Client) service.BalanceSource { return c },
			func(s *storagesvc.Snapshots) service.SnapshotStore { return s },
			func(h *gatewaysvc.Hub) service.EventSink { return h },
			func(x *strategysvc.Executor) service.CycleRunner { return x },

			service.NewRecorder,
			func(cfg *config.Config, runner service.CycleRunner, rec *service.Recorder, state *healthsvc.State) *service.Scheduler {
				return service.NewScheduler(cfg.CycleInterval, cfg.SnapshotInterval, runner, rec, state)
			},
		),
		fx.Invoke(runScheduler),
	)
}

// runScheduler привязывает жизненный цикл планировщика к приложению.
func runScheduler(lc fx.Lifecycle, s *service.Scheduler) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				s.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
