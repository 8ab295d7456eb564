package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/damacus/ironshelf/internal/errs"
	"github.com/damacus/ironshelf/internal/i18n"
	"github.com/damacus/ironshelf/internal/logger"
	"github.com/damacus/ironshelf/internal/middleware"
	"github.com/damacus/ironshelf/internal/models"
	"github.com/damacus/ironshelf/internal/services"
	"github.com/damacus/ironshelf/internal/utils"
)

// GetSession returns the session the middleware resolved, or nil.
func GetSession(c echo.Context) *services.Session {
	sess, _ := c.Get(utils.ContextKeySession).(*services.Session)
	return sess
}

func localizer(c echo.Context) *i18n.Localizer {
	if l, ok := c.Get(utils.ContextKeyLocalizer).(*i18n.Localizer); ok {
		return l
	}
	return fallbackCatalog().Localizer(i18n.English)
}

// fallbackCatalog serves handlers mounted without the Locale middleware.
var fallbackCatalog = sync.OnceValue(func() *i18n.Catalog {
	c, _ := i18n.New()
	return c
})

func preferences(c echo.Context) services.Preferences {
	if p, ok := c.Get(utils.ContextKeyPreferences).(services.Preferences); ok {
		return p
	}
	return services.DefaultPreferences()
}

// page builds the root value for a full page render.
func page(c echo.Context, nav string, data any) *models.Page {
	p := &models.Page{
		ActiveNav: nav,
		I18n:      localizer(c),
		Theme:     preferences(c).Theme,
		CSRF:      middleware.CSRFToken(c),
		Data:      data,
	}
	if sess := GetSession(c); sess != nil {
		p.Endpoint = sess.Connection.Endpoint
	}
	return p
}

// partial builds the root value for a fragment render.
func partial(c echo.Context, data any) models.Partial {
	return models.Partial{I18n: localizer(c), CSRF: middleware.CSRFToken(c), Data: data}
}

// HTMXRedirect sets the HX-Redirect header and returns a 200 OK response.
// This is used for HTMX requests that should trigger a client-side redirect.
func HTMXRedirect(c echo.Context, url string) error {
	c.Response().Header().Set("HX-Redirect", url)
	return c.NoContent(http.StatusOK)
}

// browseURL is the browser location for prefix in bucket.
func browseURL(bucket, prefix string) string {
	u := "/buckets/" + url.PathEscape(bucket)
	if prefix != "" {
		u += "?prefix=" + url.QueryEscape(prefix)
	}
	return u
}

// StatusFor maps an error kind to the HTTP status the UI answers with.
func StatusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindPermissionDenied:
		return http.StatusForbidden
	case errs.KindConflict:
		return http.StatusConflict
	case errs.KindInvalidInput:
		return http.StatusBadRequest
	case errs.KindPartialFailure:
		return http.StatusMultiStatus
	case errs.KindTimeout:
		return http.StatusGatewayTimeout
	case errs.KindConnectionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if s, ok := he.Message.(string); ok {
			return s
		}
		return http.StatusText(he.Code)
	}
	var e *errs.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// flash answers an htmx request with a message for the banner.
func flash(c echo.Context, status int, msg string, isErr bool) error {
	return c.Render(status, "flash", partial(c, models.Flash{Message: msg, Error: isErr}))
}

// ErrorHandler renders failures as a banner fragment for htmx requests and
// as the error page otherwise.
func ErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := StatusFor(err)
		msg := errorMessage(err)
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("request failed")
		}

		var rerr error
		switch {
		case c.Request().Method == http.MethodHead:
			rerr = c.NoContent(status)
		case c.Request().Header.Get("HX-Request") == "true":
			rerr = flash(c, status, msg, true)
		case strings.HasPrefix(c.Request().URL.Path, "/health"):
			rerr = c.String(status, msg)
		default:
			rerr = c.Render(status, "error", page(c, "", msg))
		}
		if rerr != nil {
			_ = c.String(status, msg)
		}
	}
}
