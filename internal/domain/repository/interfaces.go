package repository

import (
	"context"
	"time"

	"AlertPulse/internal/domain/models"
)

// NotificationStore persists and queries notification history. All mutation
// operations are idempotent.
type NotificationStore interface {
	Create(ctx context.Context, rec *models.NotificationRecord) error
	FindHistory(ctx context.Context, userID string, f models.HistoryFilter) ([]models.NotificationRecord, int64, error)
	FindRecent(ctx context.Context, userID, notifType string, since time.Time) ([]models.NotificationRecord, error)
	FindGroups(ctx context.Context, userID string) ([]models.NotificationGroup, error)
	FindForDigest(ctx context.Context, userID string, from, to time.Time) ([]models.NotificationRecord, error)
	MarkRead(ctx context.Context, ids []string) error
	MarkAllRead(ctx context.Context, userID string) error
	Archive(ctx context.Context, ids []string) error
	Snooze(ctx context.Context, id string, until time.Time) error
	UnreadCount(ctx context.Context, userID string) (int64, error)
}

// SettingsStore persists per-user alert rules, channel settings, and device
// tokens.
type SettingsStore interface {
	GetNotificationSettings(ctx context.Context, userID string) (*models.NotificationSettings, error)
	SaveNotificationSettings(ctx context.Context, s *models.NotificationSettings) error
	ListAlertSettings(ctx context.Context, userID string) ([]models.AlertSetting, error)
	SaveAlertSetting(ctx context.Context, s *models.AlertSetting) error
	DeleteAlertSetting(ctx context.Context, userID string, id uint) error
	ListDeviceTokens(ctx context.Context, userID string) ([]models.DeviceToken, error)
	SaveDeviceToken(ctx context.Context, t *models.DeviceToken) error
	DeleteDeviceToken(ctx context.Context, userID, token string) error
	ListSubscribers(ctx context.Context, assetSymbol string) ([]string, error)
	ListDigestUsers(ctx context.Context, period models.DigestPeriod) ([]string, error)
}

// SignalArchive is the append-only audit log of every ingested signal.
type SignalArchive interface {
	Append(ctx context.Context, s *models.Signal) error
	Recent(ctx context.Context, symbol, kind string, limit int) ([]models.Signal, error)
	Close() error
}

// EventPublisher emits fired-notification events for downstream consumers.
// Best effort; publish failures never fail the pipeline.
type EventPublisher interface {
	PublishNotification(ctx context.Context, rec *models.NotificationRecord, outcome models.DeliveryOutcome) error
	Close() error
}

// LiveChannel delivers a record to a user's active real-time sessions.
// Returns true when at least one session received it.
type LiveChannel interface {
	Emit(userID string, rec *models.NotificationRecord) bool
}

// PushChannel delivers a record to the user's registered devices through the
// push gateway.
type PushChannel interface {
	Send(ctx context.Context, rec *models.NotificationRecord, tokens []models.DeviceToken) error
	Configured() bool
}

// EmailChannel delivers single-notification or digest emails. An unconfigured
// transport is a normal runtime state, reported by Configured.
type EmailChannel interface {
	SendNotification(ctx context.Context, to string, rec *models.NotificationRecord) error
	SendDigest(ctx context.Context, to string, period models.DigestPeriod, recs []models.NotificationRecord) error
	Configured() bool
}

// Metrics records pipeline observability counters.
type Metrics interface {
	RecordSignal(kind string)
	RecordNotification(notifType string, priority string)
	RecordDelivery(channel string, ok bool)
	RecordRateLimited(alertType string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
