package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig          `envPrefix:"APP_"`
	Server       ServerConfig       `envPrefix:"SERVER_"`
	Log          LogConfig          `envPrefix:"LOG_"`
	Database     DatabaseConfig     `envPrefix:"DATABASE_"`
	Redis        RedisConfig        `envPrefix:"REDIS_"`
	Auth         AuthConfig         `envPrefix:"AUTH_"`
	RateLimit    RateLimitConfig    `envPrefix:"RATE_LIMIT_"`
	JWT          JWTConfig          `envPrefix:"JWT_"`
	RefreshToken RefreshTokenConfig `envPrefix:"REFRESH_TOKEN_"`
	Cookie       CookieConfig       `envPrefix:"COOKIE_"`
	Admin        AdminConfig        `envPrefix:"ADMIN_"`
}

type AppConfig struct {
	Name        string `env:"NAME" envDefault:"TaskTracker API"`
	Environment string `env:"ENV" envDefault:"production"`
}

type ServerConfig struct {
	Host           string   `env:"HOST" envDefault:"0.0.0.0"`
	Port           string   `env:"PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"tasktracker.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// CounterStore selects where windowed counters (lockout, rate limit) live.
type CounterStore string

const (
	CounterStoreMemory CounterStore = "memory"
	CounterStoreRedis  CounterStore = "redis"
)

type AuthConfig struct {
	MinLength      int  `env:"MIN_LENGTH" envDefault:"8"`
	RequireUpper   bool `env:"REQUIRE_UPPER" envDefault:"true"`
	RequireLower   bool `env:"REQUIRE_LOWER" envDefault:"true"`
	RequireNumber  bool `env:"REQUIRE_NUMBER" envDefault:"true"`
	RequireSpecial bool `env:"REQUIRE_SPECIAL" envDefault:"false"`
	BcryptCost     int  `env:"BCRYPT_COST" envDefault:"10"`

	LockoutEnabled     bool          `env:"LOCKOUT_ENABLED" envDefault:"true"`
	LockoutMaxAttempts int           `env:"LOCKOUT_MAX_ATTEMPTS" envDefault:"5"`
	LockoutDuration    time.Duration `env:"LOCKOUT_DURATION" envDefault:"30m"`
	LockoutStore       CounterStore  `env:"LOCKOUT_STORE" envDefault:"memory"`
}

type RateLimitConfig struct {
	Enabled  bool          `env:"ENABLED" envDefault:"true"`
	Requests int           `env:"REQUESTS" envDefault:"20"`
	Period   time.Duration `env:"PERIOD" envDefault:"1m"`
	Store    CounterStore  `env:"STORE" envDefault:"memory"`
}

type JWTConfig struct {
	SecretKey    string        `env:"SECRET_KEY"`
	Issuer       string        `env:"ISSUER" envDefault:"TaskTrackerApi"`
	Audience     string        `env:"AUDIENCE" envDefault:"TaskTrackerClient"`
	AccessExpiry time.Duration `env:"ACCESS_EXPIRY" envDefault:"1h"`
}

type RefreshTokenConfig struct {
	Expiry      time.Duration `env:"EXPIRY" envDefault:"168h"`
	TokenLength int           `env:"TOKEN_LENGTH" envDefault:"64"`
}

type CookieConfig struct {
	Name   string `env:"NAME" envDefault:"refreshToken"`
	Path   string `env:"PATH" envDefault:"/"`
	Domain string `env:"DOMAIN"`
	Secure bool   `env:"SECURE" envDefault:"true"`
}

type AdminConfig struct {
	UserName string `env:"USER_NAME"`
	Email    string `env:"EMAIL"`
	Password string `env:"PASSWORD"`
}

// LoadConfig populates cfg from the environment. A *Config is validated
// before it is returned, so a bad deployment fails here and not on the first request.
func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	if err := env.Parse(cfg); err != nil {
		return err
	}

	if c, ok := cfg.(*Config); ok {
		return c.Validate()
	}

	return nil
}
