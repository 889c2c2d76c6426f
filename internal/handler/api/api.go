package api

import (
	"github.com/labstack/echo/v4"

	xhttp "AlertPulse/pkg/http"
)

// API aggregates all Echo route groups behind one pkg/http Handler.
type API struct {
	Notifications *NotificationsEchoHandler
	Settings      *SettingsEchoHandler
	Signals       *SignalsEchoHandler
	WS            *WSEchoHandler
}

func New(n *NotificationsEchoHandler, s *SettingsEchoHandler, sig *SignalsEchoHandler, ws *WSEchoHandler) *API {
	return &API{Notifications: n, Settings: s, Signals: sig, WS: ws}
}

func (a *API) RegisterRoutes(e *echo.Echo) {
	a.Notifications.RegisterRoutes(e)
	a.Settings.RegisterRoutes(e)
	a.Signals.RegisterRoutes(e)
	a.WS.RegisterRoutes(e)
}

var _ xhttp.Handler = (*API)(nil)

// userID extracts the authenticated user from the request. Authentication
// itself is an external collaborator; upstream middleware sets the header.
func userID(c echo.Context) string {
	if uid := c.Request().Header.Get("X-User-ID"); uid != "" {
		return uid
	}
	return c.QueryParam("user_id")
}
