package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csrfServer() *echo.Echo {
	e := echo.New()
	e.Use(CSRF())
	e.GET("/csrf", func(c echo.Context) error {
		return c.String(http.StatusOK, CSRFToken(c))
	})
	e.POST("/submit", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	return e
}

func fetchToken(t *testing.T, e *echo.Echo) (string, *http.Cookie) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/csrf", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	token := strings.TrimSpace(rec.Body.String())
	require.NotEmpty(t, token)
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "csrf" {
			return token, cookie
		}
	}
	t.Fatal("csrf cookie not set")
	return "", nil
}

func TestCSRFMiddlewareRejectsPostWithoutToken(t *testing.T) {
	e := csrfServer()

	for _, htmx := range []bool{true, false} {
		req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader("x=1"))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		if htmx {
			req.Header.Set("HX-Request", "true")
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "htmx=%v", htmx)
	}
}

func TestCSRFMiddlewareAllowsPostWithTokenHeaderAndCookie(t *testing.T) {
	e := csrfServer()
	token, cookie := fetchToken(t, e)

	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader("x=1"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("X-CSRF-Token", token)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFMiddlewareAllowsPlainFormWithTokenField(t *testing.T) {
	e := csrfServer()
	token, cookie := fetchToken(t, e)

	form := url.Values{"_csrf": {token}}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
