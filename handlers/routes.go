package handlers

import (
	"net/http"

	"github.com/caingletaouievyv/tasktracker-api/config"
	jwtmw "github.com/caingletaouievyv/tasktracker-api/middleware/jwt"
	"github.com/caingletaouievyv/tasktracker-api/openapi"
	"github.com/caingletaouievyv/tasktracker-api/services/logging"
	"github.com/labstack/echo/v4"
)

const (
	docsVersion   = "1.0.0"
	bearerScheme  = "bearerAuth"
	refreshScheme = "refreshCookie"
)

// RegisterRoutes mounts the account API and its OpenAPI document under /api.
// limit guards the endpoints reachable without an access token; nil skips it.
func RegisterRoutes(e *echo.Echo, h *AccountHandler, validator jwtmw.TokenValidator, limit echo.MiddlewareFunc, doc *openapi.OpenAPI, logger *logging.Service) {
	api := e.Group("/api")

	var guards []echo.MiddlewareFunc
	if limit != nil {
		guards = append(guards, limit)
	}

	account := api.Group("/account")
	account.POST("/register", h.Register, guards...)
	account.POST("/login", h.Login, guards...)
	account.POST("/refresh", h.Refresh, guards...)
	account.POST("/logout", h.Logout, jwtmw.RequireJWT(validator, logger))

	api.GET("/openapi.json", doc.JSONHandler())
	api.GET("/openapi.yaml", doc.YAMLHandler())
}

func NewAccountDocument(cfg *config.Config) *openapi.OpenAPI {
	doc := openapi.New(cfg.App.Name, docsVersion).
		Description("Account and session endpoints.").
		Tag("account", "Registration, login and refresh token rotation").
		BearerAuth(bearerScheme, "Access token returned by login or refresh").
		CookieAuth(refreshScheme, cfg.Cookie.Name, "HttpOnly refresh token cookie").
		Schema("RegisterRequest", []string{"userName", "email", "password"}, "userName", "email:email", "password:password").
		Schema("LoginRequest", []string{"userName", "password"}, "userName", "password:password").
		Schema("TokenResponse", []string{"accessToken", "expiresAt"}, "accessToken", "expiresAt:date-time").
		Schema("UserResponse", nil, "id:uuid", "userName", "email", "roles:array").
		Schema("MessageResponse", []string{"message"}, "message")

	doc.Document(http.MethodPost, "/api/account/register").
		Summary("Register a user").
		Tags("account").
		RequestBody("RegisterRequest").
		Response(http.StatusOK, "UserResponse", "").
		Response(http.StatusBadRequest, "MessageResponse", "").
		Response(http.StatusTooManyRequests, "MessageResponse", "").
		Build()

	doc.Document(http.MethodPost, "/api/account/login").
		Summary("Log in").
		Tags("account").
		RequestBody("LoginRequest").
		Response(http.StatusOK, "TokenResponse", "").
		ResponseHeader(http.StatusOK, "Set-Cookie", "Refresh token cookie").
		Response(http.StatusUnauthorized, "MessageResponse", "").
		Response(http.StatusTooManyRequests, "MessageResponse", "").
		Build()

	doc.Document(http.MethodPost, "/api/account/refresh").
		Summary("Rotate the refresh token").
		Tags("account").
		Security(refreshScheme).
		Response(http.StatusOK, "TokenResponse", "").
		ResponseHeader(http.StatusOK, "Set-Cookie", "Rotated refresh token cookie").
		Response(http.StatusUnauthorized, "MessageResponse", "").
		Response(http.StatusTooManyRequests, "MessageResponse", "").
		Build()

	doc.Document(http.MethodPost, "/api/account/logout").
		Summary("Log out everywhere").
		Tags("account").
		Security(bearerScheme).
		Response(http.StatusOK, "MessageResponse", "").
		ResponseHeader(http.StatusOK, "Set-Cookie", "Cleared refresh token cookie").
		Response(http.StatusUnauthorized, "MessageResponse", "").
		Build()

	return doc
}
