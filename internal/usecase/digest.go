package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"AlertPulse/internal/domain/models"
	domrepo "AlertPulse/internal/domain/repository"
	applogger "AlertPulse/pkg/logger"
	"AlertPulse/pkg/queue"
	"AlertPulse/pkg/util"
)

// digestMsgType is the queue message type handled by DigestJob.
const digestMsgType = "email_digest"

// DigestPayload identifies one user's digest build.
type DigestPayload struct {
	UserID string `json:"user_id"`
	Period string `json:"period"`
	From   int64  `json:"from"` // unix seconds
	To     int64  `json:"to"`
}

// DigestScheduler runs cron ticks per digest period and enqueues one digest
// job per opted-in user. Building and sending happens in queue workers so a
// slow SMTP transport never stalls the tick.
type DigestScheduler struct {
	settings domrepo.SettingsStore
	queue    queue.QueueService
	logger   *applogger.Logger
	cron     *cron.Cron
}

func NewDigestScheduler(settings domrepo.SettingsStore, q queue.QueueService, logger *applogger.Logger) *DigestScheduler {
	return &DigestScheduler{settings: settings, queue: q, logger: logger, cron: cron.New()}
}

func (s *DigestScheduler) Start() error {
	schedules := map[models.DigestPeriod]string{
		models.DigestHourly: "@hourly",
		models.DigestDaily:  "0 8 * * *",
		models.DigestWeekly: "0 8 * * 1",
	}
	for period, spec := range schedules {
		p := period
		if _, err := s.cron.AddFunc(spec, func() { s.tick(p) }); err != nil {
			return fmt.Errorf("digest schedule %s: %w", p, err)
		}
	}
	s.cron.Start()
	s.logger.Info("digest scheduler started")
	return nil
}

func (s *DigestScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *DigestScheduler) tick(period models.DigestPeriod) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	users, err := s.settings.ListDigestUsers(ctx, period)
	if err != nil {
		s.logger.Error("digest user lookup failed",
			applogger.String("period", string(period)), applogger.Error(err))
		return
	}

	to := time.Now()
	from, to := util.AlignRange(to.Add(-periodSpan(period)), to, string(period))
	for _, uid := range users {
		payload := DigestPayload{UserID: uid, Period: string(period), From: from.Unix(), To: to.Unix()}
		if err := s.queue.PublishMessage(ctx, digestMsgType, payload); err != nil {
			s.logger.Warn("digest enqueue failed",
				applogger.String("user_id", uid), applogger.Error(err))
		}
	}
	s.logger.Info("digest tick enqueued",
		applogger.String("period", string(period)),
		applogger.Int("users", len(users)))
}

func periodSpan(p models.DigestPeriod) time.Duration {
	switch p {
	case models.DigestHourly:
		return time.Hour
	case models.DigestDaily:
		return 24 * time.Hour
	case models.DigestWeekly:
		return 7 * 24 * time.Hour
	default:
		return time.Hour
	}
}

// DigestJob builds and sends one user's digest email from persisted history.
type DigestJob struct {
	store    domrepo.NotificationStore
	settings domrepo.SettingsStore
	email    domrepo.EmailChannel
	logger   *applogger.Logger
}

func NewDigestJob(store domrepo.NotificationStore, settings domrepo.SettingsStore, email domrepo.EmailChannel, logger *applogger.Logger) *DigestJob {
	return &DigestJob{store: store, settings: settings, email: email, logger: logger}
}

func (j *DigestJob) Name() string { return "email-digest" }
func (j *DigestJob) Type() string { return digestMsgType }

func (j *DigestJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[DigestPayload](payload)
	if err != nil {
		return fmt.Errorf("digest payload: %w", err)
	}

	ns, err := j.settings.GetNotificationSettings(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("digest settings: %w", err)
	}
	if ns == nil || !ns.EmailEnabled || ns.EmailAddress == "" || !j.email.Configured() {
		return nil
	}

	recs, err := j.store.FindForDigest(ctx, p.UserID, time.Unix(p.From, 0), time.Unix(p.To, 0))
	if err != nil {
		return fmt.Errorf("digest query: %w", err)
	}
	if len(recs) == 0 {
		return nil
	}

	if err := j.email.SendDigest(ctx, ns.EmailAddress, models.DigestPeriod(p.Period), recs); err != nil {
		return fmt.Errorf("digest send: %w", err)
	}
	j.logger.Info("digest sent",
		applogger.String("user_id", p.UserID),
		applogger.String("period", p.Period),
		applogger.Int("alerts", len(recs)))
	return nil
}

var _ queue.Job = (*DigestJob)(nil)
