package repository

import (
	"context"
	"fmt"
	"time"

	"AlertPulse/internal/domain/models"
	"AlertPulse/internal/domain/repository"
	pkgkafka "AlertPulse/pkg/kafka"
)

// KafkaEventPublisher emits fired-notification events to a Kafka topic for
// downstream consumers (audit, analytics). Best effort: callers treat
// publish errors as diagnostics.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaEventPublisher(producer *pkgkafka.Producer, topic string) repository.EventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

type notificationEvent struct {
	NotificationID string                 `json:"notification_id"`
	UserID         string                 `json:"user_id"`
	Type           string                 `json:"type"`
	Priority       string                 `json:"priority"`
	AssetSymbol    string                 `json:"asset_symbol,omitempty"`
	GroupID        string                 `json:"group_id,omitempty"`
	Outcome        models.DeliveryOutcome `json:"outcome"`
	SentAt         time.Time              `json:"sent_at"`
}

func (p *KafkaEventPublisher) PublishNotification(ctx context.Context, rec *models.NotificationRecord, outcome models.DeliveryOutcome) error {
	ev := notificationEvent{
		NotificationID: rec.ID,
		UserID:         rec.UserID,
		Type:           rec.Type,
		Priority:       string(rec.Priority),
		AssetSymbol:    rec.AssetSymbol,
		GroupID:        rec.GroupID,
		Outcome:        outcome,
		SentAt:         rec.SentAt,
	}
	// Key by user id so one user's events stay ordered per partition.
	if err := p.producer.Publish(ctx, p.topic, []byte(rec.UserID), ev); err != nil {
		return fmt.Errorf("publish notification event: %w", err)
	}
	return nil
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
