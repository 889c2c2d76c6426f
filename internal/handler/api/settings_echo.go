package api

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"AlertPulse/internal/domain/models"
	domrepo "AlertPulse/internal/domain/repository"
	xhttp "AlertPulse/pkg/http"
	xlogger "AlertPulse/pkg/logger"
)

// SettingsEchoHandler exposes per-user alert rules, channel settings and
// device token registration.
type SettingsEchoHandler struct {
	logger *xlogger.Logger
	store  domrepo.SettingsStore
}

func NewSettingsEchoHandler(logger *xlogger.Logger, store domrepo.SettingsStore) *SettingsEchoHandler {
	return &SettingsEchoHandler{logger: logger, store: store}
}

func (h *SettingsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/settings")
	g.GET("/notifications", h.GetNotificationSettings)
	g.PUT("/notifications", h.PutNotificationSettings)
	g.GET("/alerts", h.ListAlertSettings)
	g.POST("/alerts", h.CreateAlertSetting)
	g.PUT("/alerts/:id", h.UpdateAlertSetting)
	g.DELETE("/alerts/:id", h.DeleteAlertSetting)
	g.POST("/devices", h.RegisterDevice)
	g.DELETE("/devices/:token", h.UnregisterDevice)
}

func (h *SettingsEchoHandler) GetNotificationSettings(c echo.Context) error {
	uid := userID(c)
	if uid == "" {
		return xhttp.UnauthorizedResponse(c, "user required")
	}
	settings, err := h.store.GetNotificationSettings(c.Request().Context(), uid)
	if err != nil {
		h.logger.Error("get notification settings error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, settings)
}

func (h *SettingsEchoHandler) PutNotificationSettings(c echo.Context) error {
	uid := userID(c)
	if uid == "" {
		return xhttp.UnauthorizedResponse(c, "user required")
	}
	req := &models.NotificationSettingsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	settings := &models.NotificationSettings{
		UserID:            uid,
		PushEnabled:       req.PushEnabled,
		EmailEnabled:      req.EmailEnabled,
		EmailAddress:      req.EmailAddress,
		SoundEnabled:      req.SoundEnabled,
		GroupingEnabled:   req.GroupingEnabled,
		PriorityThreshold: models.Priority(req.PriorityThreshold),
		QuietHoursEnabled: req.QuietHoursEnabled,
		QuietHoursStart:   req.QuietHoursStart,
		QuietHoursEnd:     req.QuietHoursEnd,
		MaxPerHour:        req.MaxPerHour,
		EmailDigest:       models.DigestPeriod(req.EmailDigest),
	}
	if err := settings.ValidateMaxPerHour(); err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}
	if err := h.store.SaveNotificationSettings(c.Request().Context(), settings); err != nil {
		h.logger.Error("save notification settings error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, settings)
}

func (h *SettingsEchoHandler) ListAlertSettings(c echo.Context) error {
	uid := userID(c)
	if uid == "" {
		return xhttp.UnauthorizedResponse(c, "user required")
	}
	rules, err := h.store.ListAlertSettings(c.Request().Context(), uid)
	if err != nil {
		h.logger.Error("list alert settings error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, rules)
}

func (h *SettingsEchoHandler) CreateAlertSetting(c echo.Context) error {
	uid := userID(c)
	if uid == "" {
		return xhttp.UnauthorizedResponse(c, "user required")
	}
	req := &models.AlertSettingRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rule := alertSettingFromRequest(uid, req)
	if err := h.store.SaveAlertSetting(c.Request().Context(), rule); err != nil {
		h.logger.Error("create alert setting error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, rule)
}

func (h *SettingsEchoHandler) UpdateAlertSetting(c echo.Context) error {
	uid := userID(c)
	if uid == "" {
		return xhttp.UnauthorizedResponse(c, "user required")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return xhttp.BadRequestResponse(c, "invalid rule id")
	}
	req := &models.AlertSettingRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rule := alertSettingFromRequest(uid, req)
	rule.ID = uint(id)
	if err := h.store.SaveAlertSetting(c.Request().Context(), rule); err != nil {
		h.logger.Error("update alert setting error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, rule)
}

func (h *SettingsEchoHandler) DeleteAlertSetting(c echo.Context) error {
	uid := userID(c)
	if uid == "" {
		return xhttp.UnauthorizedResponse(c, "user required")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return xhttp.BadRequestResponse(c, "invalid rule id")
	}
	if err := h.store.DeleteAlertSetting(c.Request().Context(), uid, uint(id)); err != nil {
		h.logger.Error("delete alert setting error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *SettingsEchoHandler) RegisterDevice(c echo.Context) error {
	uid := userID(c)
	if uid == "" {
		return xhttp.UnauthorizedResponse(c, "user required")
	}
	req := &models.DeviceTokenRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	token := &models.DeviceToken{UserID: uid, Token: req.Token, Platform: req.Platform}
	if err := h.store.SaveDeviceToken(c.Request().Context(), token); err != nil {
		h.logger.Error("register device error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, token)
}

func (h *SettingsEchoHandler) UnregisterDevice(c echo.Context) error {
	uid := userID(c)
	if uid == "" {
		return xhttp.UnauthorizedResponse(c, "user required")
	}
	if err := h.store.DeleteDeviceToken(c.Request().Context(), uid, c.Param("token")); err != nil {
		h.logger.Error("unregister device error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.NoContentResponse(c)
}

func alertSettingFromRequest(uid string, req *models.AlertSettingRequest) *models.AlertSetting {
	return &models.AlertSetting{
		UserID:                uid,
		AssetSymbol:           req.AssetSymbol,
		EnablePriceAlerts:     req.EnablePriceAlerts,
		EnableSentimentAlerts: req.EnableSentimentAlerts,
		EnableNarrativeAlerts: req.EnableNarrativeAlerts,
		EnableVolumeAlerts:    req.EnableVolumeAlerts,
		EnableNewsAlerts:      req.EnableNewsAlerts,
		SentimentThreshold:    req.SentimentThreshold,
		PriceChangeThreshold:  req.PriceChangeThreshold,
		PushEnabled:           req.PushEnabled,
		EmailEnabled:          req.EmailEnabled,
		AlertFrequency:        req.AlertFrequency,
	}
}
