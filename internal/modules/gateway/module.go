package gateway

import (
	"context"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"

	"spot_trader/internal/modules/config"
	"spot_trader/internal/modules/gateway/service"
)

func RunHTTP(lc fx.Lifecycle, cfg *config.Config, hub *service.Hub) {
	addr := cfg.Gateway.Addr
	if addr == "" {
		addr = ":8090"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			go func() { _ = srv.Serve(ln) }()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			hub.Close()
			return srv.Shutdown(ctx)
		},
	})
}

func Module() fx.Option {
	return fx.Module("gateway",
		fx.Provide(service.NewHub),
		fx.Invoke(RunHTTP),
	)
}
