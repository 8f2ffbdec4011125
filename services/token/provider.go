package token

import (
	"github.com/caingletaouievyv/tasktracker-api/config"
	"github.com/caingletaouievyv/tasktracker-api/services/logging"
	"go.uber.org/fx"
)

func ProvideService(cfg *config.Config, logger *logging.Service) (*Service, error) {
	return NewService(cfg, logger.Named("token"))
}

var Module = fx.Options(
	fx.Provide(ProvideService),
)
