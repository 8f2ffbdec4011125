package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/caingletaouievyv/tasktracker-api/testutils"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	cfg := testutils.GetTestConfig()
	server := New(cfg, nil)

	require.NotNil(t, server)
	assert.Equal(t, cfg, server.cfg)
	assert.NotNil(t, server.Echo())
	assert.Equal(t, "localhost:8080", server.Addr())
}

func TestServer_Health(t *testing.T) {
	server := New(testutils.GetTestConfig(), nil)

	rec := httptest.NewRecorder()
	server.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, HealthPath, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_ErrorHandler(t *testing.T) {
	server := New(testutils.GetTestConfig(), nil)
	server.Get("/denied", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	})
	server.Get("/broken", func(c echo.Context) error {
		return errors.New("database password is hunter2")
	})
	server.Get("/panics", func(c echo.Context) error {
		panic("boom")
	})

	tests := []struct {
		path string
		code int
		body string
	}{
		{"/denied", http.StatusUnauthorized, `{"message":"Unauthorized"}`},
		{"/broken", http.StatusInternalServerError, `{"message":"Internal Server Error"}`},
		{"/panics", http.StatusInternalServerError, `{"message":"Internal Server Error"}`},
		{"/missing", http.StatusNotFound, `{"message":"Not Found"}`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			server.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.code, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestServer_CORS(t *testing.T) {
	server := New(testutils.GetTestConfig(), nil)

	req := httptest.NewRequest(http.MethodOptions, HealthPath, nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodGet)
	rec := httptest.NewRecorder()
	server.Echo().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
}
