package session

import (
	"github.com/caingletaouievyv/tasktracker-api/services/identity"
	"github.com/caingletaouievyv/tasktracker-api/services/logging"
	"github.com/caingletaouievyv/tasktracker-api/services/refreshtoken"
	"github.com/caingletaouievyv/tasktracker-api/services/token"
	"go.uber.org/fx"
)

func ProvideService(verifier *identity.Service, issuer *token.Service, store refreshtoken.Store, logger *logging.Service) *Service {
	return NewService(verifier, issuer, store, logger.Named("session"))
}

var Module = fx.Options(
	fx.Provide(ProvideService),
)
