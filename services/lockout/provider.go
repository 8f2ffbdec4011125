package lockout

import (
	"context"

	"github.com/caingletaouievyv/tasktracker-api/config"
	"github.com/caingletaouievyv/tasktracker-api/services/logging"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const redisNamespace = "tasktracker"

func usesRedis(cfg *config.Config) bool {
	return (cfg.Auth.LockoutEnabled && cfg.Auth.LockoutStore == config.CounterStoreRedis) ||
		(cfg.RateLimit.Enabled && cfg.RateLimit.Store == config.CounterStoreRedis)
}

// ProvideRedisClient returns nil when no counter store is configured for redis.
func ProvideRedisClient(lc fx.Lifecycle, cfg *config.Config, logger *logging.Service) *redis.Client {
	if !usesRedis(cfg) {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("redis not reachable at startup", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return client
}

// NewCounterStore picks the store for one counter namespace.
func NewCounterStore(store config.CounterStore, client *redis.Client, namespace string) Store {
	if store == config.CounterStoreRedis && client != nil {
		return NewRedisStore(client, redisNamespace+":"+namespace)
	}
	return NewMemoryStore()
}

func ProvideStore(cfg *config.Config, client *redis.Client, logger *logging.Service) Store {
	logger.Info("lockout store selected", zap.String("store", string(cfg.Auth.LockoutStore)))
	return NewCounterStore(cfg.Auth.LockoutStore, client, "lockout")
}

func ProvideService(cfg *config.Config, store Store, logger *logging.Service) *Service {
	return NewService(&cfg.Auth, store, logger.Named("lockout"))
}

var Module = fx.Options(
	fx.Provide(ProvideRedisClient, ProvideStore, ProvideService),
)
