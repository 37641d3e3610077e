package exchange

import (
	"spot_trader/internal/modules/config"
	"spot_trader/internal/modules/exchange/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("exchange",
		fx.Provide(
			func(cfg *config.Config) *service.Client {
				return service.NewClient(
					cfg.Binance.APIKey,
					cfg.Binance.APISecret,
					service.WithBaseURL(cfg.Binance.BaseURL),
				)
			},
		),
	)
}
