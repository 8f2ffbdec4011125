package testutils

import (
	"time"

	"github.com/caingletaouievyv/tasktracker-api/config"
	"golang.org/x/crypto/bcrypt"
)

const TestSigningKey = "k7Qz4Lw9Xp2Rv8Nt5Hy3Bm6Jc1Fd0Gs4Ua7Ve"

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "TaskTracker Test",
			Environment: "test",
		},
		Server: config.ServerConfig{
			Host:           "localhost",
			Port:           "8080",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Log: config.LogConfig{
			Level:  "error",
			Format: "json",
			Output: "stdout",
		},
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         ":memory:",
			AutoMigrate: true,
		},
		Auth: config.AuthConfig{
			MinLength:          8,
			RequireUpper:       true,
			RequireLower:       true,
			RequireNumber:      true,
			RequireSpecial:     false,
			BcryptCost:         bcrypt.MinCost,
			LockoutEnabled:     true,
			LockoutMaxAttempts: 5,
			LockoutDuration:    30 * time.Minute,
			LockoutStore:       config.CounterStoreMemory,
		},
		RateLimit: config.RateLimitConfig{
			Enabled:  true,
			Requests: 100,
			Period:   time.Minute,
			Store:    config.CounterStoreMemory,
		},
		JWT: config.JWTConfig{
			SecretKey:    TestSigningKey,
			Issuer:       "TaskTrackerApi",
			Audience:     "TaskTrackerClient",
			AccessExpiry: time.Hour,
		},
		RefreshToken: config.RefreshTokenConfig{
			Expiry:      7 * 24 * time.Hour,
			TokenLength: 64,
		},
		Cookie: config.CookieConfig{
			Name:   "refreshToken",
			Path:   "/",
			Secure: true,
		},
	}
}

var TestPasswords = struct {
	Valid       string
	TooShort    string
	NoUpper     string
	NoLower     string
	NoNumber    string
	WithSpecial string
}{
	Valid:       "Password123",
	TooShort:    "Pass1",
	NoUpper:     "password123",
	NoLower:     "PASSWORD123",
	NoNumber:    "Password",
	WithSpecial: "Password123!",
}

type TestUser struct {
	UserName string
	Email    string
	Password string
}

var TestUsers = struct {
	Alice TestUser
	Bob   TestUser
}{
	Alice: TestUser{UserName: "alice", Email: "alice@tasks.local", Password: "YourPassword123"},
	Bob:   TestUser{UserName: "bob", Email: "bob@tasks.local", Password: "YourPassword456"},
}
