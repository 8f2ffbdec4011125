package config

import (
	"errors"
	"fmt"
	"strings"
)

var ErrConfiguration = errors.New("configuration error")

const (
	minSecretKeyLength    = 32
	MinRefreshTokenLength = 64
	MaxRefreshTokenLength = 256
)

var weakSecretPatterns = []string{"password", "secret", "test", "example", "default", "change"}

func (c *Config) Validate() error {
	if err := validateJWTConfig(&c.JWT); err != nil {
		return err
	}
	if err := validateRefreshTokenConfig(&c.RefreshToken); err != nil {
		return err
	}
	if err := validateAuthConfig(&c.Auth, &c.Redis); err != nil {
		return err
	}
	if err := validateRateLimitConfig(&c.RateLimit, &c.Redis); err != nil {
		return err
	}
	return validateAdminConfig(&c.Admin)
}

func validateJWTConfig(cfg *JWTConfig) error {
	if cfg.SecretKey == "" {
		return fmt.Errorf("%w: JWT secret key is not configured", ErrConfiguration)
	}

	if len(cfg.SecretKey) < minSecretKeyLength {
		return fmt.Errorf("%w: JWT secret key must be at least %d characters long", ErrConfiguration, minSecretKeyLength)
	}

	lower := strings.ToLower(cfg.SecretKey)
	for _, pattern := range weakSecretPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("%w: JWT secret key contains weak patterns", ErrConfiguration)
		}
	}

	if cfg.AccessExpiry <= 0 {
		return fmt.Errorf("%w: JWT access expiry must be positive", ErrConfiguration)
	}

	return nil
}

func validateRefreshTokenConfig(cfg *RefreshTokenConfig) error {
	if cfg.Expiry <= 0 {
		return fmt.Errorf("%w: refresh token expiry must be positive", ErrConfiguration)
	}

	if cfg.TokenLength < MinRefreshTokenLength {
		return fmt.Errorf("%w: refresh token length must be at least %d bytes", ErrConfiguration, MinRefreshTokenLength)
	}

	if cfg.TokenLength > MaxRefreshTokenLength {
		return fmt.Errorf("%w: refresh token length cannot exceed %d bytes", ErrConfiguration, MaxRefreshTokenLength)
	}

	return nil
}

func validateAuthConfig(cfg *AuthConfig, redis *RedisConfig) error {
	if !cfg.LockoutEnabled {
		return nil
	}

	if cfg.LockoutMaxAttempts < 1 {
		return fmt.Errorf("%w: lockout max attempts must be at least 1", ErrConfiguration)
	}

	if cfg.LockoutDuration <= 0 {
		return fmt.Errorf("%w: lockout duration must be positive", ErrConfiguration)
	}

	return validateCounterStore("lockout", cfg.LockoutStore, redis)
}

func validateRateLimitConfig(cfg *RateLimitConfig, redis *RedisConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.Requests < 1 {
		return fmt.Errorf("%w: rate limit requests must be at least 1", ErrConfiguration)
	}

	if cfg.Period <= 0 {
		return fmt.Errorf("%w: rate limit period must be positive", ErrConfiguration)
	}

	return validateCounterStore("rate limit", cfg.Store, redis)
}

func validateCounterStore(name string, store CounterStore, redis *RedisConfig) error {
	switch store {
	case CounterStoreMemory:
	case CounterStoreRedis:
		if redis.Addr == "" {
			return fmt.Errorf("%w: redis %s store requires REDIS_ADDR", ErrConfiguration, name)
		}
	default:
		return fmt.Errorf("%w: %s store must be: memory or redis", ErrConfiguration, name)
	}

	return nil
}

func validateAdminConfig(cfg *AdminConfig) error {
	set := 0
	for _, v := range []string{cfg.UserName, cfg.Email, cfg.Password} {
		if strings.TrimSpace(v) != "" {
			set++
		}
	}

	if set != 0 && set != 3 {
		return fmt.Errorf("%w: admin credentials are not properly configured", ErrConfiguration)
	}

	return nil
}

func (a AdminConfig) Configured() bool {
	return a.UserName != "" && a.Email != "" && a.Password != ""
}
