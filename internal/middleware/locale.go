package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/damacus/ironshelf/internal/i18n"
	"github.com/damacus/ironshelf/internal/services"
	"github.com/damacus/ironshelf/internal/utils"
)

// PreferenceSource yields the saved UI preferences.
type PreferenceSource interface {
	Preferences(ctx context.Context) (services.Preferences, error)
}

// Locale loads the preferences once per request, puts the language on the
// request context and a localizer on the echo context.
func Locale(catalog *i18n.Catalog, prefs PreferenceSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			p, err := prefs.Preferences(req.Context())
			if err != nil {
				p = services.DefaultPreferences()
			}

			c.SetRequest(req.WithContext(i18n.WithLanguage(req.Context(), p.Language)))
			c.Set(utils.ContextKeyLocalizer, catalog.Localizer(p.Language))
			c.Set(utils.ContextKeyPreferences, p)
			return next(c)
		}
	}
}
