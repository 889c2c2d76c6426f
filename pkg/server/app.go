package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "AlertPulse/internal/domain/repository"
	"AlertPulse/internal/service/livehub"
	"AlertPulse/internal/usecase"
	"AlertPulse/pkg/config"
	xhttp "AlertPulse/pkg/http"
	pkgkafka "AlertPulse/pkg/kafka"
	applogger "AlertPulse/pkg/logger"
	"AlertPulse/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	events      domrepo.EventPublisher
	archive     domrepo.SignalArchive
	hub         *livehub.Hub
	anomaly     *usecase.AnomalyScheduler
	digest      *usecase.DigestScheduler
	digestQueue *queue.RedisQueue
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	events domrepo.EventPublisher,
	archive domrepo.SignalArchive,
	hub *livehub.Hub,
	anomaly *usecase.AnomalyScheduler,
	digest *usecase.DigestScheduler,
	digestQueue *queue.RedisQueue,
) *App {
	return &App{
		cfg:         cfg,
		logger:      logger,
		consumer:    consumer,
		kh:          kh,
		events:      events,
		archive:     archive,
		hub:         hub,
		anomaly:     anomaly,
		digest:      digest,
		digestQueue: digestQueue,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.logger

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithRequestMetrics(a.logger, time.Second),
	)

	// Start signal consumer
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start schedulers
	if a.anomaly != nil {
		if err := a.anomaly.Start(); err != nil {
			l.Error("anomaly scheduler start error", applogger.Error(err))
			return err
		}
	}
	if a.digest != nil {
		if err := a.digest.Start(); err != nil {
			l.Error("digest scheduler start error", applogger.Error(err))
			return err
		}
	}

	// Start digest job consumer
	if a.digestQueue != nil {
		if err := a.digestQueue.Start(); err != nil {
			l.Error("digest queue start error", applogger.Error(err))
			return err
		}
		l.Info("digest queue consumer started")
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop accepting new work first
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Stop schedulers and background workers
	if a.anomaly != nil {
		a.anomaly.Stop()
	}
	if a.digest != nil {
		a.digest.Stop()
	}
	if a.digestQueue != nil {
		if err := a.digestQueue.Stop(shutdownCtx); err != nil {
			l.Warn("digest queue stop error", applogger.Error(err))
		}
	}

	// Disconnect live sessions
	if a.hub != nil {
		a.hub.Close()
	}

	// Close infrastructure clients
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			l.Warn("event publisher close error", applogger.Error(err))
		}
	}
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			l.Warn("signal archive close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
