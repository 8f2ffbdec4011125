package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/caingletaouievyv/tasktracker-api/config"
	"github.com/caingletaouievyv/tasktracker-api/services/identity"
	"github.com/caingletaouievyv/tasktracker-api/services/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSigningKeyMissing = fmt.Errorf("%w: JWT signing key is not configured", config.ErrConfiguration)
	ErrInvalidToken      = errors.New("invalid JWT token")
	ErrExpiredToken      = errors.New("JWT token has expired")
	ErrMalformedToken    = errors.New("malformed JWT token")
	ErrInvalidSignature  = errors.New("invalid JWT token signature")
)

type Claims struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

type AccessToken struct {
	Token     string
	ID        string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Service signs access tokens and mints refresh token values. It holds no state
// beyond its configuration.
type Service struct {
	jwt     config.JWTConfig
	refresh config.RefreshTokenConfig
	key     []byte
	logger  *logging.Service
	now     func() time.Time
}

func NewService(cfg *config.Config, logger *logging.Service) (*Service, error) {
	if cfg.JWT.SecretKey == "" {
		return nil, ErrSigningKeyMissing
	}

	return &Service{
		jwt:     cfg.JWT,
		refresh: cfg.RefreshToken,
		key:     []byte(cfg.JWT.SecretKey),
		logger:  logger,
		now:     time.Now,
	}, nil
}

func (s *Service) AccessExpiry() time.Duration {
	return s.jwt.AccessExpiry
}

func (s *Service) RefreshExpiry() time.Duration {
	return s.refresh.Expiry
}

func (s *Service) IssueAccessToken(principal *identity.Principal) (*AccessToken, error) {
	now := s.now()
	expiresAt := now.Add(s.jwt.AccessExpiry)
	jti := uuid.New().String()

	roles := principal.Roles
	if roles == nil {
		roles = []string{}
	}

	claims := Claims{
		Name:  principal.Name,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.jwt.Issuer,
			Subject:   principal.ID,
			Audience:  []string{s.jwt.Audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		s.logger.Error("failed to sign access token", zap.Error(err))
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	s.logger.Debug("access token issued",
		zap.String("user_id", principal.ID),
		zap.String("jti", jti),
		zap.Time("expires_at", expiresAt))

	return &AccessToken{
		Token:     signed,
		ID:        jti,
		Subject:   principal.ID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// IssueRefreshToken returns TokenLength random bytes as unpadded base64url.
func (s *Service) IssueRefreshToken() (string, error) {
	buf := make([]byte, s.refresh.TokenLength)
	if _, err := rand.Read(buf); err != nil {
		s.logger.Error("failed to read random bytes for refresh token", zap.Error(err))
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid algorithm family: %v", token.Header["alg"])
		}
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.jwt.Issuer),
		jwt.WithAudience(s.jwt.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		s.logger.Debug("access token validation failed", zap.Error(err))

		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
