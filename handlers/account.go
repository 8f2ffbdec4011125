package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/caingletaouievyv/tasktracker-api/config"
	jwtmw "github.com/caingletaouievyv/tasktracker-api/middleware/jwt"
	"github.com/caingletaouievyv/tasktracker-api/services/identity"
	"github.com/caingletaouievyv/tasktracker-api/services/logging"
	"github.com/caingletaouievyv/tasktracker-api/services/refreshtoken"
	"github.com/caingletaouievyv/tasktracker-api/services/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type RegisterRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type UserResponse struct {
	ID       string   `json:"id"`
	UserName string   `json:"userName"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type AccountHandler struct {
	sessions *session.Service
	users    *identity.Service
	cookies  config.CookieConfig
	logger   *logging.Service
}

func NewAccountHandler(sessions *session.Service, users *identity.Service, cfg *config.Config, logger *logging.Service) *AccountHandler {
	return &AccountHandler{
		sessions: sessions,
		users:    users,
		cookies:  cfg.Cookie,
		logger:   logger,
	}
}

func clientInfo(c echo.Context) refreshtoken.ClientInfo {
	return refreshtoken.ClientInfo{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

func unauthorized() error {
	return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
}

func (h *AccountHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	user, err := h.users.Register(c.Request().Context(), req.UserName, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrUserNameTaken),
			errors.Is(err, identity.ErrUserNameRequired),
			errors.Is(err, identity.ErrPasswordPolicy):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return err
		}
	}

	return c.JSON(http.StatusOK, UserResponse{
		ID:       user.ID,
		UserName: user.UserName,
		Email:    user.Email,
		Roles:    user.RoleNames(),
	})
}

func (h *AccountHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	transport := NewCookieTransport(c, h.cookies)
	result, err := h.sessions.Login(c.Request().Context(), req.UserName, req.Password, clientInfo(c), transport)
	if err != nil {
		if errors.Is(err, session.ErrAuthenticationFailed) {
			return unauthorized()
		}
		return err
	}

	return c.JSON(http.StatusOK, TokenResponse{
		AccessToken: result.AccessToken,
		ExpiresAt:   result.ExpiresAt,
	})
}

func (h *AccountHandler) Refresh(c echo.Context) error {
	transport := NewCookieTransport(c, h.cookies)
	result, err := h.sessions.Refresh(c.Request().Context(), clientInfo(c), transport)
	if err != nil {
		if errors.Is(err, session.ErrAuthenticationFailed) {
			return unauthorized()
		}
		return err
	}

	return c.JSON(http.StatusOK, TokenResponse{
		AccessToken: result.AccessToken,
		ExpiresAt:   result.ExpiresAt,
	})
}

func (h *AccountHandler) Logout(c echo.Context) error {
	userID := jwtmw.GetUserID(c)
	if userID == "" {
		return unauthorized()
	}

	if err := h.sessions.Logout(c.Request().Context(), userID, NewCookieTransport(c, h.cookies)); err != nil {
		h.logger.Error("logout failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Logged out"})
}
