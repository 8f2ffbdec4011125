package handlers

import (
	"net/http"
	"time"

	"github.com/caingletaouievyv/tasktracker-api/config"
	"github.com/labstack/echo/v4"
)

// CookieTransport carries the refresh token in an HttpOnly, SameSite=Strict
// cookie bound to one request.
type CookieTransport struct {
	c   echo.Context
	cfg config.CookieConfig
	now func() time.Time
}

func NewCookieTransport(c echo.Context, cfg config.CookieConfig) *CookieTransport {
	return &CookieTransport{c: c, cfg: cfg, now: time.Now}
}

func (t *CookieTransport) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     t.cfg.Name,
		Value:    value,
		Path:     t.cfg.Path,
		Domain:   t.cfg.Domain,
		HttpOnly: true,
		Secure:   t.cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (t *CookieTransport) Deliver(value string, expiresAt time.Time) {
	cookie := t.cookie(value)
	cookie.Expires = expiresAt.UTC()
	cookie.MaxAge = int(expiresAt.Sub(t.now()).Seconds())
	t.c.SetCookie(cookie)
}

func (t *CookieTransport) Read() (string, bool) {
	cookie, err := t.c.Cookie(t.cfg.Name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (t *CookieTransport) Clear() {
	cookie := t.cookie("")
	cookie.Expires = time.Unix(0, 0).UTC()
	cookie.MaxAge = -1
	t.c.SetCookie(cookie)
}
