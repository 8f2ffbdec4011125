package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/caingletaouievyv/tasktracker-api/config"
	"github.com/caingletaouievyv/tasktracker-api/services/logging"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const HealthPath = "/api/health"

type Server struct {
	echo   *echo.Echo
	cfg    *config.Config
	logger *logging.Service
}

func New(cfg *config.Config, logger *logging.Service) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(logging.RequestLogger(logger, HealthPath))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	e.GET(HealthPath, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return &Server{
		echo:   e,
		cfg:    cfg,
		logger: logger,
	}
}

// errorHandler renders every error as {"message": ...}. Messages of 5xx
// errors are replaced so internal detail never reaches the client.
func errorHandler(logger *logging.Service) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := http.StatusText(code)

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			code = httpErr.Code
			if code < http.StatusInternalServerError {
				message = fmt.Sprint(httpErr.Message)
			} else {
				message = http.StatusText(code)
			}
		}

		if code >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Error(err))
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = c.JSON(code, map[string]string{"message": message})
		}
		if writeErr != nil {
			logger.Warn("failed to write error response", zap.Error(writeErr))
		}
	}
}

func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%s", s.cfg.Server.Host, s.cfg.Server.Port)
}

func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.Addr()))

	if err := s.echo.Start(s.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("stopping server")
	return s.echo.Shutdown(ctx)
}

func (s *Server) Get(path string, handler echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.echo.GET(path, handler, m...)
}

func (s *Server) Post(path string, handler echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.echo.POST(path, handler, m...)
}

func (s *Server) Group(prefix string, m ...echo.MiddlewareFunc) *echo.Group {
	return s.echo.Group(prefix, m...)
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}
