package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"spot_trader/internal/modules/config"
	"spot_trader/internal/modules/engine"
	"spot_trader/internal/modules/exchange"
	"spot_trader/internal/modules/gateway"
	"spot_trader/internal/modules/health"
	"spot_trader/internal/modules/postgres"
	"spot_trader/internal/modules/storage"
	"spot_trader/internal/modules/strategy"
	"spot_trader/internal/notify"
	"spot_trader/pkg/logger"
	"spot_trader/pkg/tracing"
)

const serviceName = "spot_trader"

func main() {
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	logger.SetServiceName(serviceName)
	tracing.SetServiceName(serviceName)

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		postgres.Module(),
		exchange.Module(),
		storage.Module(),
		notify.Module(),
		gateway.Module(),
		health.Module(),
		strategy.Module(),
		engine.Module(),
		fx.Invoke(initTracing),
	)
	app.Run()
}

func initTracing(lc fx.Lifecycle, cfg *config.Config) {
	if cfg.Jaeger.Host == "" {
		return
	}
	_, closeTracer, err := tracing.InitTracer(tracing.Config{
		Host: cfg.Jaeger.Host,
		Port: cfg.Jaeger.Port,
	})
	if err != nil {
		logger.Warn("tracing init failed: %v", err)
		return
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeTracer()
			return nil
		},
	})
}
