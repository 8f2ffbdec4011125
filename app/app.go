package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caingletaouievyv/tasktracker-api/config"
	"github.com/caingletaouievyv/tasktracker-api/database"
	"github.com/caingletaouievyv/tasktracker-api/handlers"
	"github.com/caingletaouievyv/tasktracker-api/middleware/ratelimit"
	"github.com/caingletaouievyv/tasktracker-api/server"
	"github.com/caingletaouievyv/tasktracker-api/services/identity"
	"github.com/caingletaouievyv/tasktracker-api/services/lockout"
	"github.com/caingletaouievyv/tasktracker-api/services/logging"
	"github.com/caingletaouievyv/tasktracker-api/services/refreshtoken"
	"github.com/caingletaouievyv/tasktracker-api/services/session"
	"github.com/caingletaouievyv/tasktracker-api/services/token"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 30 * time.Second

func Models() []any {
	return []any{
		&identity.User{},
		&identity.UserRole{},
		&refreshtoken.RefreshToken{},
	}
}

// storageOptions is the part of the graph needed to reach the database.
// A nil cfg loads configuration from the environment.
func storageOptions(cfg *config.Config) fx.Option {
	return fx.Options(
		config.NewProvider(cfg),
		logging.Module,
		fx.WithLogger(func(logger *logging.Service) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Logger().Named("fx")}
		}),
		fx.Supply(database.WithModels(Models()...)),
		database.Module,
		refreshtoken.Module,
	)
}

// Options is the complete API graph.
func Options(cfg *config.Config) fx.Option {
	return fx.Options(
		storageOptions(cfg),
		lockout.Module,
		ratelimit.Module,
		identity.Module,
		token.Module,
		session.Module,
		server.Module,
		handlers.Module,
	)
}

type App struct {
	fx     *fx.App
	config *config.Config
	logger *logging.Service
	db     *gorm.DB
	server *server.Server
}

func New(cfg *config.Config, extra ...fx.Option) (*App, error) {
	a := &App{}

	opts := append([]fx.Option{
		Options(cfg),
		fx.Populate(&a.config, &a.logger, &a.db, &a.server),
	}, extra...)

	a.fx = fx.New(opts...)
	if err := a.fx.Err(); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *App) Start(ctx context.Context) error {
	return a.fx.Start(ctx)
}

func (a *App) Stop(ctx context.Context) error {
	return a.fx.Stop(ctx)
}

// Run starts the application and blocks until SIGINT/SIGTERM or an fx shutdown.
func (a *App) Run() error {
	startCtx, cancel := context.WithTimeout(context.Background(), a.fx.StartTimeout())
	defer cancel()

	if err := a.Start(startCtx); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var exitCode int
	select {
	case sig := <-sigChan:
		a.logger.Info("received shutdown signal, stopping gracefully", zap.String("signal", sig.String()))
	case shutdown := <-a.fx.Wait():
		exitCode = shutdown.ExitCode
	}

	stopCtx, cancelStop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelStop()

	if err := a.Stop(stopCtx); err != nil {
		a.logger.Error("failed to stop application gracefully", zap.Error(err))
		return err
	}

	if exitCode != 0 {
		return fmt.Errorf("application exited with code %d", exitCode)
	}
	return nil
}

func (a *App) Server() *echo.Echo {
	return a.server.Echo()
}

func (a *App) DB() *gorm.DB {
	return a.db
}

func (a *App) Logger() *logging.Service {
	return a.logger
}

func (a *App) Config() *config.Config {
	return a.config
}
