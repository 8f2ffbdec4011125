package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/caingletaouievyv/tasktracker-api/middleware/ratelimit"
	"github.com/caingletaouievyv/tasktracker-api/server"
	"github.com/caingletaouievyv/tasktracker-api/services/identity"
	"github.com/caingletaouievyv/tasktracker-api/services/lockout"
	"github.com/caingletaouievyv/tasktracker-api/services/refreshtoken"
	"github.com/caingletaouievyv/tasktracker-api/services/session"
	"github.com/caingletaouievyv/tasktracker-api/services/token"
	"github.com/caingletaouievyv/tasktracker-api/testutils"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAPI(t *testing.T) *echo.Echo {
	t.Helper()
	return setupLimitedAPI(t, nil)
}

func setupLimitedAPI(t *testing.T, limit echo.MiddlewareFunc) *echo.Echo {
	t.Helper()

	cfg := testutils.GetTestConfig()
	db := testutils.SetupTestDB(t, &identity.User{}, &identity.UserRole{}, &refreshtoken.RefreshToken{})

	users := identity.NewService(cfg, db, lockout.NewService(&cfg.Auth, lockout.NewMemoryStore(), nil), nil)
	tokens, err := token.NewService(cfg, nil)
	require.NoError(t, err)
	sessions := session.NewService(users, tokens, refreshtoken.NewGormStore(db, nil), nil)

	srv := server.New(cfg, nil)
	RegisterRoutes(srv.Echo(), NewAccountHandler(sessions, users, cfg, nil), tokens, limit, NewAccountDocument(cfg), nil)

	return srv.Echo()
}

func post(e *echo.Echo, path, body string, configure ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0")
	for _, fn := range configure {
		fn(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func withCookie(cookie *http.Cookie) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value}) }
}

func withBearer(accessToken string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+accessToken) }
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "refreshToken" {
			return cookie
		}
	}
	return nil
}

func decodeToken(t *testing.T, rec *httptest.ResponseRecorder) TokenResponse {
	t.Helper()
	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

const aliceRegistration = `{"userName":"alice","email":"alice@tasks.local","password":"YourPassword123"}`
const aliceLogin = `{"userName":"alice","password":"YourPassword123"}`

func TestAccount_Register(t *testing.T) {
	e := setupAPI(t)

	rec := post(e, "/api/account/register", aliceRegistration)
	require.Equal(t, http.StatusOK, rec.Code)

	var user UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.UserName)
	assert.Equal(t, []string{"User"}, user.Roles)
	assert.NotContains(t, rec.Body.String(), "password")

	t.Run("duplicate", func(t *testing.T) {
		rec := post(e, "/api/account/register", aliceRegistration)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("weak password", func(t *testing.T) {
		rec := post(e, "/api/account/register", `{"userName":"carol","email":"c@tasks.local","password":"short"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := post(e, "/api/account/register", `{"userName":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAccount_Login(t *testing.T) {
	e := setupAPI(t)
	require.Equal(t, http.StatusOK, post(e, "/api/account/register", aliceRegistration).Code)

	rec := post(e, "/api/account/login", aliceLogin)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeToken(t, rec)
	assert.NotEmpty(t, resp.AccessToken)
	assert.False(t, resp.ExpiresAt.IsZero())

	cookie := refreshCookie(t, rec)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Greater(t, cookie.MaxAge, 6*24*3600)
	assert.NotContains(t, rec.Body.String(), cookie.Value)

	t.Run("bad credentials", func(t *testing.T) {
		for _, body := range []string{
			`{"userName":"alice","password":"WrongPassword1"}`,
			`{"userName":"nobody","password":"YourPassword123"}`,
			`{}`,
		} {
			rec := post(e, "/api/account/login", body)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())
			assert.Nil(t, refreshCookie(t, rec))
		}
	})
}

func TestAccount_RefreshAndLogout(t *testing.T) {
	e := setupAPI(t)
	require.Equal(t, http.StatusOK, post(e, "/api/account/register", aliceRegistration).Code)

	login := post(e, "/api/account/login", aliceLogin)
	require.Equal(t, http.StatusOK, login.Code)
	first := refreshCookie(t, login)
	require.NotNil(t, first)

	refreshed := post(e, "/api/account/refresh", "", withCookie(first))
	require.Equal(t, http.StatusOK, refreshed.Code)
	second := refreshCookie(t, refreshed)
	require.NotNil(t, second)
	assert.NotEqual(t, first.Value, second.Value)
	assert.NotEmpty(t, decodeToken(t, refreshed).AccessToken)

	t.Run("replayed refresh token", func(t *testing.T) {
		rec := post(e, "/api/account/refresh", "", withCookie(first))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())
		assert.Nil(t, refreshCookie(t, rec))
	})

	t.Run("missing cookie", func(t *testing.T) {
		rec := post(e, "/api/account/refresh", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("logout requires access token", func(t *testing.T) {
		rec := post(e, "/api/account/logout", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	accessToken := decodeToken(t, refreshed).AccessToken

	logout := post(e, "/api/account/logout", "", withBearer(accessToken), withCookie(second))
	require.Equal(t, http.StatusOK, logout.Code)
	assert.JSONEq(t, `{"message":"Logged out"}`, logout.Body.String())
	cleared := refreshCookie(t, logout)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)

	t.Run("refresh after logout", func(t *testing.T) {
		rec := post(e, "/api/account/refresh", "", withCookie(second))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("logout is idempotent", func(t *testing.T) {
		rec := post(e, "/api/account/logout", "", withBearer(accessToken))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAccount_RateLimited(t *testing.T) {
	e := setupLimitedAPI(t, ratelimit.Middleware(ratelimit.Config{
		Counter: lockout.NewMemoryStore(),
		Rate:    2,
	}))

	for i := 0; i < 2; i++ {
		rec := post(e, "/api/account/login", aliceLogin)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := post(e, "/api/account/login", aliceLogin)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"message":"Too Many Requests"}`, rec.Body.String())

	t.Run("logout is not limited", func(t *testing.T) {
		rec := post(e, "/api/account/logout", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAccount_OpenAPIDocument(t *testing.T) {
	e := setupAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/openapi.json", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	for _, path := range []string{"/api/account/register", "/api/account/login", "/api/account/refresh", "/api/account/logout"} {
		assert.Contains(t, doc.Paths, path)
	}
}
