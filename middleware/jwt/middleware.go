package jwt

import (
	"net/http"
	"strings"

	"github.com/caingletaouievyv/tasktracker-api/services/logging"
	"github.com/caingletaouievyv/tasktracker-api/services/token"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	UserIDKey = "_jwt_user_id"
	ClaimsKey = "_jwt_claims"
)

type TokenValidator interface {
	ValidateToken(tokenString string) (*token.Claims, error)
}

func unauthorized() error {
	return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
}

// RequireJWT rejects requests without a valid bearer access token. Every
// rejection carries the same response; the reason is only logged.
func RequireJWT(validator TokenValidator, logger *logging.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				logger.Debug("access token rejected: authorization header missing")
				return unauthorized()
			}

			tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || strings.TrimSpace(tokenString) == "" {
				logger.Debug("access token rejected: not a bearer token")
				return unauthorized()
			}

			claims, err := validator.ValidateToken(strings.TrimSpace(tokenString))
			if err != nil {
				logger.Debug("access token rejected", zap.Error(err))
				return unauthorized()
			}

			c.Set(UserIDKey, claims.Subject)
			c.Set(ClaimsKey, claims)

			return next(c)
		}
	}
}

func GetUserID(c echo.Context) string {
	if userID, ok := c.Get(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

func GetClaims(c echo.Context) *token.Claims {
	if claims, ok := c.Get(ClaimsKey).(*token.Claims); ok {
		return claims
	}
	return nil
}
