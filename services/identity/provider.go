package identity

import (
	"context"

	"github.com/caingletaouievyv/tasktracker-api/config"
	"github.com/caingletaouievyv/tasktracker-api/services/lockout"
	"github.com/caingletaouievyv/tasktracker-api/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideService(cfg *config.Config, db *gorm.DB, lockoutSvc *lockout.Service, logger *logging.Service) *Service {
	return NewService(cfg, db, lockoutSvc, logger.Named("identity"))
}

func RegisterAdminSeed(lc fx.Lifecycle, cfg *config.Config, service *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return service.SeedAdmin(ctx, cfg.Admin)
		},
	})
}

var Module = fx.Options(
	fx.Provide(ProvideService),
	fx.Invoke(RegisterAdminSeed),
)
