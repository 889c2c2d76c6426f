package push

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"AlertPulse/internal/domain/models"
	applogger "AlertPulse/pkg/logger"
)

// Sender delivers notifications through Firebase Cloud Messaging. A nil
// messaging client (no credentials configured) is a normal runtime state;
// Send then reports unconfigured and the channel is skipped.
type Sender struct {
	client      *messaging.Client
	logger      *applogger.Logger
	limiter     *rate.Limiter
	sendTimeout time.Duration
}

type Config struct {
	CredentialsFile string
	RatePerSec      int
	SendTimeout     time.Duration
}

// New initializes the FCM client. Missing credentials disable the channel
// without error.
func New(ctx context.Context, cfg Config, logger *applogger.Logger) (*Sender, error) {
	s := &Sender{
		logger:      logger,
		sendTimeout: cfg.SendTimeout,
	}
	if s.sendTimeout <= 0 {
		s.sendTimeout = 5 * time.Second
	}
	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 50
	}
	// burst = rate per sec, so short spikes don't block too hard
	s.limiter = rate.NewLimiter(rate.Limit(perSec), perSec)

	if cfg.CredentialsFile == "" {
		logger.Warn("push gateway not configured, channel disabled")
		return s, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase messaging: %w", err)
	}
	s.client = client
	logger.Info("push gateway initialized")
	return s, nil
}

// Configured reports whether the gateway client is available.
func (s *Sender) Configured() bool { return s != nil && s.client != nil }

// Send pushes the record to every registered device token. Per-token failures
// (invalid token, gateway error) are logged and counted; the first error is
// returned for diagnostics only.
func (s *Sender) Send(ctx context.Context, rec *models.NotificationRecord, tokens []models.DeviceToken) error {
	if !s.Configured() {
		return fmt.Errorf("push gateway not configured")
	}
	if len(tokens) == 0 {
		return fmt.Errorf("no device tokens")
	}

	ctx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	var firstErr error
	for _, t := range tokens {
		if err := s.limiter.Wait(ctx); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			break
		}
		msg := s.buildMessage(rec, t.Token)
		if _, err := s.client.Send(ctx, msg); err != nil {
			s.logger.Warn("push send failed",
				applogger.String("user_id", rec.UserID),
				applogger.String("platform", t.Platform),
				applogger.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *Sender) buildMessage(rec *models.NotificationRecord, token string) *messaging.Message {
	badge := 1
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: rec.Title,
			Body:  rec.Message,
		},
		Data: map[string]string{
			"type":     rec.Type,
			"priority": string(rec.Priority),
			"asset":    rec.AssetSymbol,
			"ref":      rec.Data,
			"group_id": rec.GroupID,
		},
		Android: &messaging.AndroidConfig{
			Priority: androidPriority(rec.Priority),
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "market_alerts",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
					Badge: &badge,
				},
			},
		},
	}
}

func androidPriority(p models.Priority) string {
	if models.PriorityRank(p) >= models.PriorityRank(models.PriorityHigh) {
		return "high"
	}
	return "normal"
}
