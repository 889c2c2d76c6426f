package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"AlertPulse/internal/domain/models"
	domrepo "AlertPulse/internal/domain/repository"
	"AlertPulse/internal/middleware"
	xhttp "AlertPulse/pkg/http"
	xlogger "AlertPulse/pkg/logger"
)

// SignalsEchoHandler accepts direct signal ingestion (for partner systems
// without Kafka access) and exposes the recent-signal audit view.
type SignalsEchoHandler struct {
	logger  *xlogger.Logger
	sink    middleware.SignalSink
	archive domrepo.SignalArchive
}

func NewSignalsEchoHandler(logger *xlogger.Logger, sink middleware.SignalSink, archive domrepo.SignalArchive) *SignalsEchoHandler {
	return &SignalsEchoHandler{logger: logger, sink: sink, archive: archive}
}

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/signals")
	g.POST("", h.Ingest)
	g.GET("/recent", h.Recent)
}

func (h *SignalsEchoHandler) Ingest(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	sig := &models.Signal{
		AssetSymbol: req.AssetSymbol,
		Kind:        models.SignalKind(req.Kind),
		Strength:    req.Strength,
		Description: req.Description,
		Sources:     req.Sources,
		Timestamp:   time.Now().UTC(),
	}
	if err := sig.Validate(); err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}
	if err := h.sink.OnSignal(c.Request().Context(), sig); err != nil {
		h.logger.Error("signal ingest error", xlogger.Error(err), xlogger.String("symbol", sig.AssetSymbol))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.DataResponse(c, 202, map[string]string{"status": "accepted"})
}

func (h *SignalsEchoHandler) Recent(c echo.Context) error {
	req := &models.RecentSignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	signals, err := h.archive.Recent(c.Request().Context(), req.Symbol, req.Kind, req.N)
	if err != nil {
		h.logger.Error("recent signals query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, signals)
}
