package handlers

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/damacus/ironshelf/internal/dispatch"
	"github.com/damacus/ironshelf/internal/services"
)

type PreferencesHandler struct {
	d *dispatch.Dispatcher
}

func NewPreferencesHandler(d *dispatch.Dispatcher) *PreferencesHandler {
	return &PreferencesHandler{d: d}
}

// SetTheme stores the light or dark theme
func (h *PreferencesHandler) SetTheme(c echo.Context) error {
	return h.set(c, services.PrefTheme)
}

// SetLanguage stores the UI language
func (h *PreferencesHandler) SetLanguage(c echo.Context) error {
	return h.set(c, services.PrefLanguage)
}

func (h *PreferencesHandler) set(c echo.Context, key string) error {
	req := dispatch.SetPreference{Key: key, Value: c.FormValue("value")}
	if err := h.d.SetPreference(c.Request().Context(), req); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, back(c))
}

// back is the same-origin page the request came from, or /buckets.
func back(c echo.Context) string {
	ref, err := url.Parse(c.Request().Referer())
	if err != nil || ref.Path == "" || ref.Host != c.Request().Host {
		return "/buckets"
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}
