package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"AlertPulse/internal/domain/models"
	domrepo "AlertPulse/internal/domain/repository"
	xhttp "AlertPulse/pkg/http"
	xlogger "AlertPulse/pkg/logger"
	"AlertPulse/pkg/util"
)

// NotificationsEchoHandler exposes the user-facing notification history and
// state endpoints.
type NotificationsEchoHandler struct {
	logger *xlogger.Logger
	store  domrepo.NotificationStore
}

func NewNotificationsEchoHandler(logger *xlogger.Logger, store domrepo.NotificationStore) *NotificationsEchoHandler {
	return &NotificationsEchoHandler{logger: logger, store: store}
}

func (h *NotificationsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/notifications")
	g.GET("", h.History)
	g.GET("/unread-count", h.UnreadCount)
	g.GET("/groups", h.Groups)
	g.POST("/read", h.MarkRead)
	g.POST("/read-all", h.MarkAllRead)
	g.POST("/archive", h.Archive)
	g.POST("/:id/snooze", h.Snooze)
	g.POST("/:id/actions/:action", h.QuickAction)
}

func (h *NotificationsEchoHandler) History(c echo.Context) error {
	uid := userID(c)
	if uid == "" {
		return xhttp.UnauthorizedResponse(c, "user required")
	}
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	filter := models.HistoryFilter{
		Type:        req.Type,
		Priority:    models.Priority(req.Priority),
		AssetSymbol: req.Asset,
		From:        util.ParseTimeDefault(req.From, time.Time{}),
		To:          util.ParseTimeDefault(req.To, time.Time{}),
		UnreadOnly:  req.Unread,
		Archived:    req.Archived,
		Page:        req.Page,
		Limit:       req.Limit,
	}

	recs, total, err := h.store.FindHistory(c.Request().Context(), uid, filter)
	if err != nil {
		h.logger.Error("history query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, recs, total)
}

func (h *NotificationsEchoHandler) UnreadCount(c echo.Context) error {
	uid := userID(c)
	if uid == "" {
		return xhttp.UnauthorizedResponse(c, "user required")
	}
	count, err := h.store.UnreadCount(c.Request().Context(), uid)
	if err != nil {
		h.logger.Error("unread count error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]int64{"unread": count})
}

func (h *NotificationsEchoHandler) Groups(c echo.Context) error {
	uid := userID(c)
	if uid == "" {
		return xhttp.UnauthorizedResponse(c, "user required")
	}
	groups, err := h.store.FindGroups(c.Request().Context(), uid)
	if err != nil {
		h.logger.Error("groups query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, groups)
}

func (h *NotificationsEchoHandler) MarkRead(c echo.Context) error {
	if userID(c) == "" {
		return xhttp.UnauthorizedResponse(c, "user required")
	}
	req := &models.MarkReadRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.store.MarkRead(c.Request().Context(), req.IDs); err != nil {
		h.logger.Error("mark read error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *NotificationsEchoHandler) MarkAllRead(c echo.Context) error {
	uid := userID(c)
	if uid == "" {
		return xhttp.UnauthorizedResponse(c, "user required")
	}
	if err := h.store.MarkAllRead(c.Request().Context(), uid); err != nil {
		h.logger.Error("mark all read error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *NotificationsEchoHandler) Archive(c echo.Context) error {
	if userID(c) == "" {
		return xhttp.UnauthorizedResponse(c, "user required")
	}
	req := &models.ArchiveRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.store.Archive(c.Request().Context(), req.IDs); err != nil {
		h.logger.Error("archive error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *NotificationsEchoHandler) Snooze(c echo.Context) error {
	if userID(c) == "" {
		return xhttp.UnauthorizedResponse(c, "user required")
	}
	req := &models.SnoozeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	until, ok := util.ParseTime(req.Until)
	if !ok || until.Before(time.Now()) {
		return xhttp.BadRequestResponse(c, "until must be a future timestamp")
	}
	if err := h.store.Snooze(c.Request().Context(), c.Param("id"), until); err != nil {
		h.logger.Error("snooze error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.NoContentResponse(c)
}

// QuickAction executes a notification quick action. view_asset is a
// client-side navigation, acknowledged here; snooze defaults to one hour.
func (h *NotificationsEchoHandler) QuickAction(c echo.Context) error {
	if userID(c) == "" {
		return xhttp.UnauthorizedResponse(c, "user required")
	}
	id := c.Param("id")
	switch c.Param("action") {
	case "view_asset":
		if err := h.store.MarkRead(c.Request().Context(), []string{id}); err != nil {
			return xhttp.AppErrorResponse(c, err)
		}
		return xhttp.NoContentResponse(c)
	case "snooze":
		mins := xhttp.ParseIntDefault(c.QueryParam("minutes"), 60)
		if err := h.store.Snooze(c.Request().Context(), id, time.Now().Add(time.Duration(mins)*time.Minute)); err != nil {
			return xhttp.AppErrorResponse(c, err)
		}
		return xhttp.NoContentResponse(c)
	default:
		return xhttp.NotFoundResponse(c, "unknown action")
	}
}
