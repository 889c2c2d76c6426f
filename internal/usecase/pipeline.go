package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"AlertPulse/internal/domain/models"
	domrepo "AlertPulse/internal/domain/repository"
	"AlertPulse/internal/service/ratelimit"
	applogger "AlertPulse/pkg/logger"
)

// SignalNotificationPipeline orchestrates evaluation, grouping, rate
// limiting, persistence, and delivery for every incoming signal. Per-user
// work is independent and runs under a bounded fan-out; the only shared
// mutable state is the keyed rate-limit window and the store, both safe under
// concurrent use.
type SignalNotificationPipeline struct {
	evaluator *AlertRuleEvaluator
	factory   *NotificationFactory
	grouping  *GroupingEngine
	limiter   *ratelimit.Windows
	router    *DeliveryRouter

	store    domrepo.NotificationStore
	settings domrepo.SettingsStore
	archive  domrepo.SignalArchive
	events   domrepo.EventPublisher
	metrics  domrepo.Metrics
	logger   *applogger.Logger

	maxFanout int
}

type PipelineOption func(*SignalNotificationPipeline)

// WithMaxFanout caps concurrent per-user processing for one signal.
func WithMaxFanout(n int) PipelineOption {
	return func(p *SignalNotificationPipeline) {
		if n > 0 {
			p.maxFanout = n
		}
	}
}

func NewSignalNotificationPipeline(
	evaluator *AlertRuleEvaluator,
	factory *NotificationFactory,
	grouping *GroupingEngine,
	limiter *ratelimit.Windows,
	router *DeliveryRouter,
	store domrepo.NotificationStore,
	settings domrepo.SettingsStore,
	archive domrepo.SignalArchive,
	events domrepo.EventPublisher,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
	opts ...PipelineOption,
) *SignalNotificationPipeline {
	p := &SignalNotificationPipeline{
		evaluator: evaluator,
		factory:   factory,
		grouping:  grouping,
		limiter:   limiter,
		router:    router,
		store:     store,
		settings:  settings,
		archive:   archive,
		events:    events,
		metrics:   metrics,
		logger:    logger,
		maxFanout: 16,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OnSignal is the single ingestion contract: real-time feed consumers and
// the periodic anomaly scheduler both call it. Malformed signals are rejected
// here and never crash the loop.
func (p *SignalNotificationPipeline) OnSignal(ctx context.Context, sig *models.Signal) error {
	start := time.Now()
	if err := sig.Validate(); err != nil {
		p.metrics.RecordError("signal_invalid")
		p.logger.Warn("rejected malformed signal", applogger.Error(err))
		return fmt.Errorf("invalid signal: %w", err)
	}
	p.metrics.RecordSignal(string(sig.Kind))

	// Append to the archive before fan-out; archive failure is not fatal for
	// delivery.
	if p.archive != nil {
		if err := p.archive.Append(ctx, sig); err != nil {
			p.metrics.RecordError("archive_append")
			p.logger.Warn("signal archive append failed", applogger.Error(err))
		}
	}

	userIDs, err := p.settings.ListSubscribers(ctx, sig.AssetSymbol)
	if err != nil {
		p.metrics.RecordError("subscriber_lookup")
		return fmt.Errorf("list subscribers: %w", err)
	}
	if len(userIDs) == 0 {
		return nil
	}

	sem := make(chan struct{}, p.maxFanout)
	var wg sync.WaitGroup
	for _, userID := range userIDs {
		select {
		case <-ctx.Done():
			// Shutting down: abandon remaining users, at-most-once holds.
			wg.Wait()
			return ctx.Err()
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			defer func() { <-sem }()
			p.processUser(ctx, uid, sig)
		}(userID)
	}
	wg.Wait()

	p.metrics.RecordLatency("signal_process", time.Since(start).Seconds())
	return nil
}

// processUser runs the strictly ordered per-user sequence: resolve rules,
// evaluate, build, group, rate-limit, persist, deliver. Store failure
// abandons this user's record only; other users continue unaffected.
func (p *SignalNotificationPipeline) processUser(ctx context.Context, userID string, sig *models.Signal) {
	rules, err := p.settings.ListAlertSettings(ctx, userID)
	if err != nil {
		p.metrics.RecordError("rule_lookup")
		p.logger.Error("alert settings lookup failed",
			applogger.String("user_id", userID), applogger.Error(err))
		return
	}

	nsettings, err := p.settings.GetNotificationSettings(ctx, userID)
	if err != nil || nsettings == nil {
		nsettings = models.DefaultNotificationSettings(userID)
	}

	// Each resolved rule fires independently: overlapping rules can produce
	// more than one record for one signal, which is intended fan-out.
	for _, rule := range p.evaluator.ResolveRules(userID, rules, sig) {
		if !p.evaluator.ShouldFire(sig, &rule) {
			continue
		}

		rec := p.factory.Build(userID, sig, &rule)
		p.grouping.AssignGroup(ctx, rec, nsettings.GroupingEnabled)

		if !p.limiter.TryConsume(userID, rec.Type, nsettings.HourlyCap(rec.Type)) {
			// Not an error: the signal is simply dropped for this user.
			p.metrics.RecordRateLimited(rec.Type)
			p.logger.Debug("rate limit reached",
				applogger.String("user_id", userID),
				applogger.String("alert_type", rec.Type))
			continue
		}

		// Persistence must be attempted before delivery so history reflects
		// what was sent.
		if err := p.store.Create(ctx, rec); err != nil {
			p.metrics.RecordError("store_create")
			p.logger.Error("notification persist failed, abandoning record",
				applogger.String("user_id", userID),
				applogger.String("notification_id", rec.ID),
				applogger.Error(err))
			continue
		}
		p.metrics.RecordNotification(rec.Type, string(rec.Priority))

		outcome := p.router.Dispatch(ctx, rec, nsettings)

		if p.events != nil {
			if err := p.events.PublishNotification(ctx, rec, outcome); err != nil {
				p.metrics.RecordError("event_publish")
			}
		}

		p.logger.Info("notification dispatched",
			applogger.String("user_id", userID),
			applogger.String("notification_id", rec.ID),
			applogger.String("priority", string(rec.Priority)),
			applogger.Bool("live", outcome.LiveSession),
			applogger.Bool("push", outcome.Push),
			applogger.Bool("email", outcome.Email))
	}
}
