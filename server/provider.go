package server

import (
	"context"

	"github.com/caingletaouievyv/tasktracker-api/services/logging"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func RegisterLifecycle(lc fx.Lifecycle, shutdowner fx.Shutdowner, srv *Server, logger *logging.Service) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("server stopped unexpectedly", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(RegisterLifecycle),
)
