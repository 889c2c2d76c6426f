package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"AlertPulse/internal/domain/models"
	applogger "AlertPulse/pkg/logger"
)

// Mailer sends transactional notification emails over SMTP. An empty host
// leaves the transport unconfigured, which is a normal runtime state: sends
// are skipped, not failed.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	logger *applogger.Logger
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func New(cfg Config, logger *applogger.Logger) *Mailer {
	m := &Mailer{from: cfg.From, logger: logger}
	if cfg.Host == "" {
		logger.Warn("mail transport not configured, channel disabled")
		return m
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return m
}

// Configured reports whether the SMTP transport is available.
func (m *Mailer) Configured() bool { return m != nil && m.dialer != nil }

// SendNotification delivers a single-notification email. Subject construction
// is deterministic from priority and title.
func (m *Mailer) SendNotification(ctx context.Context, to string, rec *models.NotificationRecord) error {
	if !m.Configured() {
		return fmt.Errorf("mail transport not configured")
	}
	if to == "" {
		return fmt.Errorf("recipient address empty")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subjectFor(rec.Priority, rec.Title))
	msg.SetBody("text/plain", notificationBody(rec))
	return m.send(ctx, msg)
}

// SendDigest delivers a periodic digest grouping multiple records.
func (m *Mailer) SendDigest(ctx context.Context, to string, period models.DigestPeriod, recs []models.NotificationRecord) error {
	if !m.Configured() {
		return fmt.Errorf("mail transport not configured")
	}
	if to == "" {
		return fmt.Errorf("recipient address empty")
	}
	if len(recs) == 0 {
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Your %s market alert digest (%d alerts)", period, len(recs)))
	msg.SetBody("text/plain", digestBody(period, recs))
	return m.send(ctx, msg)
}

// send runs the blocking SMTP dial in a goroutine so a stalled transport
// degrades to a context error instead of wedging the caller.
func (m *Mailer) send(ctx context.Context, msg *gomail.Message) error {
	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func subjectFor(p models.Priority, title string) string {
	switch p {
	case models.PriorityCritical:
		return "[CRITICAL] " + title
	case models.PriorityHigh:
		return "[ALERT] " + title
	default:
		return title
	}
}

func notificationBody(rec *models.NotificationRecord) string {
	var b strings.Builder
	b.WriteString(rec.Message)
	b.WriteString("\n\n")
	if rec.AssetSymbol != "" {
		fmt.Fprintf(&b, "Asset: %s\n", rec.AssetSymbol)
	}
	fmt.Fprintf(&b, "Priority: %s\n", rec.Priority)
	fmt.Fprintf(&b, "Sent: %s\n", rec.SentAt.Format(time.RFC1123))
	return b.String()
}

func digestBody(period models.DigestPeriod, recs []models.NotificationRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Market alerts from the last %s period:\n\n", period)
	for _, r := range recs {
		fmt.Fprintf(&b, "- [%s] %s: %s (%s)\n", strings.ToUpper(string(r.Priority)), r.Title, r.Message, r.SentAt.Format("Jan 2 15:04"))
	}
	return b.String()
}
