package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/caingletaouievyv/tasktracker-api/services/logging"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Counter increments key inside a fixed window opened by the first hit.
type Counter interface {
	Increment(ctx context.Context, key string, window time.Duration) (int, error)
}

type Config struct {
	Counter        Counter
	Rate           int
	Period         time.Duration
	KeyGenerator   func(c echo.Context) string
	OnLimitReached func(c echo.Context) error
	Logger         *logging.Service
}

// Middleware rejects a client once it has made more than Rate requests in
// Period. A failing counter lets the request through.
func Middleware(cfg Config) echo.MiddlewareFunc {
	if cfg.Rate <= 0 {
		cfg.Rate = 10
	}

	if cfg.Period <= 0 {
		cfg.Period = time.Minute
	}

	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = DefaultKeyGenerator
	}

	if cfg.OnLimitReached == nil {
		cfg.OnLimitReached = DefaultOnLimitReached
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Counter == nil {
				return next(c)
			}

			key := cfg.KeyGenerator(c)
			count, err := cfg.Counter.Increment(c.Request().Context(), key, cfg.Period)
			if err != nil {
				cfg.Logger.Warn("rate limit counter failed, allowing request",
					zap.String("key", key),
					zap.Error(err))
				return next(c)
			}

			header := c.Response().Header()
			header.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Rate))
			header.Set("X-RateLimit-Remaining", strconv.Itoa(max(cfg.Rate-count, 0)))

			if count > cfg.Rate {
				header.Set("Retry-After", strconv.Itoa(int(cfg.Period.Seconds())))
				cfg.Logger.Warn("rate limit reached",
					zap.String("key", key),
					zap.String("path", c.Path()))
				return cfg.OnLimitReached(c)
			}

			return next(c)
		}
	}
}

func DefaultKeyGenerator(c echo.Context) string {
	realIP := c.RealIP()

	if realIP == "" || realIP == "unknown" {
		realIP = "fallback"
	}

	return realIP
}

func DefaultOnLimitReached(c echo.Context) error {
	return echo.NewHTTPError(http.StatusTooManyRequests, "Too Many Requests")
}
