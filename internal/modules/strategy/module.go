package strategy

import (
	"go.uber.org/fx"

	"spot_trader/internal/models"
	exchangesvc "spot_trader/internal/modules/exchange/service"
	gatewaysvc "spot_trader/internal/modules/gateway/service"
	storagesvc "spot_trader/internal/modules/storage/service"
	"spot_trader/internal/modules/strategy/service"
	"spot_trader/internal/notify"
)

// Module связывает конкретные реализации с контрактами ядра.
func Module() fx.Option {
	return fx.Module("strategy",
		fx.Provide(
			models.NewMemoryStore,

			func(c *exchangesvc.Client) service.Exchange { return c },
			func(ex service.Exchange) service.CandleSource { return ex },
			func(t *storagesvc.Trades) service.TradeLedger { return t },
			func(s *storagesvc.Snapshots) service.SnapshotSource { return s },
			func(h *gatewaysvc.Hub) service.EventSink { return h },
			func(n notify.Notifier) service.Notifier { return n },

			service.NewEvaluator,
			func(e *service.Evaluator) service.SignalSource { return e },
			service.NewAllocationGuard,
			service.NewExecutor,
		),
	)
}
