package handlers

import (
	"github.com/caingletaouievyv/tasktracker-api/middleware/ratelimit"
	"github.com/caingletaouievyv/tasktracker-api/openapi"
	"github.com/caingletaouievyv/tasktracker-api/server"
	"github.com/caingletaouievyv/tasktracker-api/services/logging"
	"github.com/caingletaouievyv/tasktracker-api/services/token"
	"go.uber.org/fx"
)

func mountRoutes(srv *server.Server, h *AccountHandler, tokens *token.Service, limiter *ratelimit.Limiter, doc *openapi.OpenAPI, logger *logging.Service) {
	RegisterRoutes(srv.Echo(), h, tokens, limiter.Handler(), doc, logger.Named("http"))
}

var Module = fx.Options(
	fx.Provide(NewAccountHandler, NewAccountDocument),
	fx.Invoke(mountRoutes),
)
