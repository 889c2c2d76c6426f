package middleware

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	domrepo "AlertPulse/internal/domain/repository"
)

type consumeStartKey struct{}

// ConsumerMetricsHook records per-message consumption latency and errors
// around the Kafka handler.
type ConsumerMetricsHook struct {
	metrics domrepo.Metrics
}

func NewConsumerMetricsHook(m domrepo.Metrics) ConsumerMetricsHook {
	return ConsumerMetricsHook{metrics: m}
}

func (h ConsumerMetricsHook) BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
	return context.WithValue(ctx, consumeStartKey{}, time.Now()), km, data, nil
}

func (h ConsumerMetricsHook) AfterHandle(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
	if start, ok := ctx.Value(consumeStartKey{}).(time.Time); ok {
		h.metrics.RecordLatency("kafka_consume", time.Since(start).Seconds())
	}
}

func (h ConsumerMetricsHook) OnError(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
	h.metrics.RecordError("kafka_consume")
}
