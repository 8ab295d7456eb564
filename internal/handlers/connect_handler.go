package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/damacus/ironshelf/internal/dispatch"
	"github.com/damacus/ironshelf/internal/middleware"
	"github.com/damacus/ironshelf/internal/models"
	"github.com/damacus/ironshelf/internal/services"
)

type ConnectHandler struct {
	d               *dispatch.Dispatcher
	sealer          *services.SessionSealer
	rememberSecrets bool
}

func NewConnectHandler(d *dispatch.Dispatcher, sealer *services.SessionSealer, rememberSecrets bool) *ConnectHandler {
	return &ConnectHandler{d: d, sealer: sealer, rememberSecrets: rememberSecrets}
}

// ConnectPage renders the connect form and the saved connections
func (h *ConnectHandler) ConnectPage(c echo.Context) error {
	if GetSession(c) != nil {
		return c.Redirect(http.StatusSeeOther, "/buckets")
	}
	return h.render(c, dispatch.Connect{PathStyle: true})
}

func (h *ConnectHandler) render(c echo.Context, form dispatch.Connect) error {
	profiles, err := h.d.History(c.Request().Context())
	if err != nil {
		return err
	}
	form.SecretKey = ""
	return c.Render(http.StatusOK, "connect", page(c, "connect", models.ConnectView{
		Profiles:        profiles,
		HistoryEnabled:  h.d.HistoryEnabled(),
		RememberSecrets: h.rememberSecrets,
		Form:            form,
	}))
}

// Connect validates the submitted credentials and starts a session
func (h *ConnectHandler) Connect(c echo.Context) error {
	pathStyle, _ := strconv.ParseBool(c.FormValue("pathStyle"))
	req := dispatch.Connect{
		ProfileID: c.FormValue("profileId"),
		Endpoint:  c.FormValue("endpoint"),
		AccessKey: c.FormValue("accessKey"),
		SecretKey: c.FormValue("secretKey"),
		Region:    c.FormValue("region"),
		PathStyle: pathStyle,
	}

	res, err := h.d.Connect(c.Request().Context(), req)
	if err != nil {
		return flash(c, StatusFor(err), errorMessage(err), true)
	}

	if err := middleware.SetSessionCookie(c, h.sealer, res.Session); err != nil {
		return err
	}
	return HTMXRedirect(c, "/buckets")
}

// Disconnect ends the session
func (h *ConnectHandler) Disconnect(c echo.Context) error {
	h.d.Disconnect(c.Request().Context())
	middleware.ClearSessionCookie(c)
	return c.Redirect(http.StatusSeeOther, "/connect")
}

// Forget removes one saved connection, or all with all=true
func (h *ConnectHandler) Forget(c echo.Context) error {
	all, _ := strconv.ParseBool(c.FormValue("all"))
	req := dispatch.ForgetConnection{ID: c.FormValue("id"), All: all}
	if err := h.d.ForgetConnection(c.Request().Context(), req); err != nil {
		return err
	}
	return h.render(c, dispatch.Connect{PathStyle: true})
}
