package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/damacus/ironshelf/internal/services"
	"github.com/damacus/ironshelf/internal/utils"
)

// publicPaths are served without a session.
var publicPaths = []string{"/connect", "/health", "/preferences/"}

func isPublic(path string) bool {
	for _, p := range publicPaths {
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}

// Session resolves the sealed session cookie to the live session and stores
// it in the context. Requests without one are sent to /connect; htmx
// requests get an HX-Redirect instead of a 303.
func Session(sealer *services.SessionSealer, sessions *services.SessionManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if sess := lookup(c, sealer, sessions); sess != nil {
				c.Set(utils.ContextKeySession, sess)
				return next(c)
			}

			if isPublic(c.Request().URL.Path) {
				return next(c)
			}

			if c.Request().Header.Get("HX-Request") == "true" {
				c.Response().Header().Set("HX-Redirect", "/connect")
				return c.NoContent(http.StatusUnauthorized)
			}
			return c.Redirect(http.StatusSeeOther, "/connect")
		}
	}
}

// lookup returns nil for a missing, tampered or stale cookie. Tampered and
// stale cookies are cleared so the browser stops sending them.
func lookup(c echo.Context, sealer *services.SessionSealer, sessions *services.SessionManager) *services.Session {
	cookie, err := c.Cookie(utils.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	id, err := sealer.Open(cookie.Value)
	if err == nil {
		if sess, ok := sessions.Lookup(id); ok {
			return sess
		}
	}

	ClearSessionCookie(c)
	return nil
}

// SetSessionCookie seals the session ID into the response cookie.
func SetSessionCookie(c echo.Context, sealer *services.SessionSealer, sess *services.Session) error {
	sealed, err := sealer.Seal(sess.ID)
	if err != nil {
		return err
	}
	c.SetCookie(sessionCookie(c, sealed, 0))
	return nil
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(sessionCookie(c, "", -1))
}

func sessionCookie(c echo.Context, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     utils.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   isSecureRequest(c),
	}
}
