package usecase

import (
	"context"
	"encoding/json"
	"time"

	"AlertPulse/internal/domain/models"
	domrepo "AlertPulse/internal/domain/repository"
	pkgkafka "AlertPulse/pkg/kafka"
)

// KafkaSignalsHandler consumes feed-producer messages from the signals topic
// and forwards them into the pipeline's single ingestion entry point.
type KafkaSignalsHandler struct {
	topic    string
	pipeline *SignalNotificationPipeline
	metrics  domrepo.Metrics
}

func NewKafkaSignalsHandler(topic string, pipeline *SignalNotificationPipeline, metrics domrepo.Metrics) *KafkaSignalsHandler {
	return &KafkaSignalsHandler{topic: topic, pipeline: pipeline, metrics: metrics}
}

func (h *KafkaSignalsHandler) Topic() string { return h.topic }

// incoming message schema mirrors models.Signal; timestamps accepted as
// RFC3339 or unix seconds/millis.
func (h *KafkaSignalsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		AssetSymbol string                `json:"asset_symbol"`
		Kind        string                `json:"kind"`
		Strength    float64               `json:"strength"`
		Description string                `json:"description"`
		Sources     []models.SignalSource `json:"sources"`
		Timestamp   json.RawMessage       `json:"timestamp"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	sig := &models.Signal{
		AssetSymbol: m.AssetSymbol,
		Kind:        models.SignalKind(m.Kind),
		Strength:    m.Strength,
		Description: m.Description,
		Sources:     m.Sources,
		Timestamp:   parseTimestamp(m.Timestamp),
	}

	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(sig.Timestamp).Seconds())

	return h.pipeline.OnSignal(ctx, sig)
}

func parseTimestamp(raw json.RawMessage) time.Time {
	if len(raw) == 0 {
		return time.Now()
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
		return time.Now()
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil && n > 0 {
		if n > 1e11 { // ms
			n = n / 1000
		}
		return time.Unix(n, 0)
	}
	return time.Now()
}

var _ pkgkafka.MessageHandler = (*KafkaSignalsHandler)(nil)
