package api

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"AlertPulse/internal/service/livehub"
	xhttp "AlertPulse/pkg/http"
	xlogger "AlertPulse/pkg/logger"
)

// WSEchoHandler upgrades clients into the live notification hub.
type WSEchoHandler struct {
	logger   *xlogger.Logger
	hub      *livehub.Hub
	upgrader websocket.Upgrader
}

func NewWSEchoHandler(logger *xlogger.Logger, hub *livehub.Hub) *WSEchoHandler {
	return &WSEchoHandler{
		logger: logger,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Origin enforcement happens at the gateway.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *WSEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.Connect)
}

func (h *WSEchoHandler) Connect(c echo.Context) error {
	uid := userID(c)
	if uid == "" {
		return xhttp.UnauthorizedResponse(c, "user required")
	}
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err), xlogger.String("user_id", uid))
		return nil
	}
	connID := h.hub.Register(uid, conn)
	h.logger.Info("websocket session opened",
		xlogger.String("user_id", uid),
		xlogger.String("conn_id", connID),
		xlogger.Int("sessions", h.hub.SessionCount()))
	return nil
}
