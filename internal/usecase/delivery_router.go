package usecase

import (
	"context"
	"sync"
	"time"

	"AlertPulse/internal/domain/models"
	domrepo "AlertPulse/internal/domain/repository"
	"AlertPulse/internal/service/quiethours"
	applogger "AlertPulse/pkg/logger"
)

// DeliveryRouter fans a persisted notification out to the live-session,
// push, and email channels. The three attempts are independent: a failure or
// skip in one never prevents or delays the others. Every channel is
// at-most-once; the outcome is diagnostics only and never drives retries.
type DeliveryRouter struct {
	live     domrepo.LiveChannel
	push     domrepo.PushChannel
	email    domrepo.EmailChannel
	settings domrepo.SettingsStore
	metrics  domrepo.Metrics
	logger   *applogger.Logger

	channelTimeout time.Duration
	nowFn          func() time.Time
}

type RouterOption func(*DeliveryRouter)

// WithChannelTimeout bounds each channel attempt.
func WithChannelTimeout(d time.Duration) RouterOption {
	return func(r *DeliveryRouter) {
		if d > 0 {
			r.channelTimeout = d
		}
	}
}

// WithRouterClock overrides the time source. Test hook.
func WithRouterClock(now func() time.Time) RouterOption {
	return func(r *DeliveryRouter) { r.nowFn = now }
}

func NewDeliveryRouter(
	live domrepo.LiveChannel,
	push domrepo.PushChannel,
	email domrepo.EmailChannel,
	settings domrepo.SettingsStore,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
	opts ...RouterOption,
) *DeliveryRouter {
	r := &DeliveryRouter{
		live:           live,
		push:           push,
		email:          email,
		settings:       settings,
		metrics:        metrics,
		logger:         logger,
		channelTimeout: 5 * time.Second,
		nowFn:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dispatch attempts delivery on every enabled channel. During quiet hours
// only critical records pass; suppressed records were already persisted by
// the pipeline, so they remain visible in history.
func (r *DeliveryRouter) Dispatch(ctx context.Context, rec *models.NotificationRecord, settings *models.NotificationSettings) models.DeliveryOutcome {
	var outcome models.DeliveryOutcome

	if quiethours.Suppressed(r.nowFn(), settings, rec.Priority) {
		r.logger.Debug("delivery suppressed by quiet hours",
			applogger.String("user_id", rec.UserID),
			applogger.String("priority", string(rec.Priority)))
		return outcome
	}
	if models.PriorityRank(rec.Priority) < models.PriorityRank(settings.PriorityThreshold) {
		return outcome
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	// Live session: fire-and-forget, never blocks pipeline progress.
	wg.Add(1)
	go func() {
		defer wg.Done()
		ok := r.live.Emit(rec.UserID, rec)
		r.metrics.RecordDelivery("live_session", ok)
		mu.Lock()
		outcome.LiveSession = ok
		mu.Unlock()
	}()

	if settings.PushEnabled && r.push.Configured() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, r.channelTimeout)
			defer cancel()
			ok := r.dispatchPush(cctx, rec)
			r.metrics.RecordDelivery("push", ok)
			mu.Lock()
			outcome.Push = ok
			mu.Unlock()
		}()
	}

	if settings.EmailEnabled && r.email.Configured() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, r.channelTimeout)
			defer cancel()
			ok := r.dispatchEmail(cctx, rec, settings)
			r.metrics.RecordDelivery("email", ok)
			mu.Lock()
			outcome.Email = ok
			mu.Unlock()
		}()
	}

	wg.Wait()
	return outcome
}

func (r *DeliveryRouter) dispatchPush(ctx context.Context, rec *models.NotificationRecord) bool {
	tokens, err := r.settings.ListDeviceTokens(ctx, rec.UserID)
	if err != nil || len(tokens) == 0 {
		if err != nil {
			r.logger.Warn("device token lookup failed", applogger.String("user_id", rec.UserID), applogger.Error(err))
		}
		return false
	}
	if err := r.push.Send(ctx, rec, tokens); err != nil {
		r.logger.Warn("push delivery failed",
			applogger.String("user_id", rec.UserID),
			applogger.Error(err))
		return false
	}
	return true
}

func (r *DeliveryRouter) dispatchEmail(ctx context.Context, rec *models.NotificationRecord, settings *models.NotificationSettings) bool {
	// Digest users get their mail from the digest scheduler, not per record.
	if settings.EmailDigest != "" && settings.EmailDigest != models.DigestOff {
		return false
	}
	if err := r.email.SendNotification(ctx, settings.EmailAddress, rec); err != nil {
		r.logger.Warn("email delivery failed",
			applogger.String("user_id", rec.UserID),
			applogger.Error(err))
		return false
	}
	return true
}
