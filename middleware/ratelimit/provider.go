package ratelimit

import (
	"github.com/caingletaouievyv/tasktracker-api/config"
	"github.com/caingletaouievyv/tasktracker-api/services/lockout"
	"github.com/caingletaouievyv/tasktracker-api/services/logging"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Limiter guards the unauthenticated account endpoints.
type Limiter struct {
	handler echo.MiddlewareFunc
}

// Handler returns a pass-through middleware when limiting is disabled.
func (l *Limiter) Handler() echo.MiddlewareFunc {
	if l == nil || l.handler == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return l.handler
}

func NewLimiter(cfg config.RateLimitConfig, counter Counter, logger *logging.Service) *Limiter {
	if !cfg.Enabled {
		return &Limiter{}
	}

	return &Limiter{handler: Middleware(Config{
		Counter: counter,
		Rate:    cfg.Requests,
		Period:  cfg.Period,
		Logger:  logger,
	})}
}

func ProvideLimiter(cfg *config.Config, client *redis.Client, logger *logging.Service) *Limiter {
	logger = logger.Named("ratelimit")
	if cfg.RateLimit.Enabled {
		logger.Info("rate limiting enabled",
			zap.Int("requests", cfg.RateLimit.Requests),
			zap.Duration("period", cfg.RateLimit.Period),
			zap.String("store", string(cfg.RateLimit.Store)))
	}

	counter := lockout.NewCounterStore(cfg.RateLimit.Store, client, "ratelimit")
	return NewLimiter(cfg.RateLimit, counter, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideLimiter),
)
