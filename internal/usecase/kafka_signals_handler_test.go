package usecase

import (
	"context"
	"testing"
	"time"

	"AlertPulse/internal/domain/models"
)

func TestKafkaHandlerDecodesAndForwards(t *testing.T) {
	f := newPipelineFixture(t)
	f.settings.subscribers = []string{"u1"}
	f.settings.rules["u1"] = []models.AlertSetting{{
		UserID:               "u1",
		AssetSymbol:          "BTC",
		EnablePriceAlerts:    true,
		PriceChangeThreshold: 5,
	}}
	h := NewKafkaSignalsHandler("market.signals", f.pipeline, nopMetrics{})

	msg := []byte(`{
		"asset_symbol": "BTC",
		"kind": "price",
		"strength": 60,
		"sources": [{"price_change": 8.0, "current_price": 108, "previous_price": 100}],
		"timestamp": "2024-05-01T12:00:00Z"
	}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if f.store.count() != 1 {
		t.Fatalf("expected one record, got %d", f.store.count())
	}
}

func TestKafkaHandlerBadJSON(t *testing.T) {
	f := newPipelineFixture(t)
	h := NewKafkaSignalsHandler("market.signals", f.pipeline, nopMetrics{})
	if err := h.Handle(context.Background(), []byte(`{not json`)); err == nil {
		t.Fatalf("malformed message should error for DLQ routing")
	}
}

func TestParseTimestampFormats(t *testing.T) {
	want := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if got := parseTimestamp([]byte(`"2024-05-01T12:00:00Z"`)); !got.Equal(want) {
		t.Fatalf("rfc3339: got %v", got)
	}
	if got := parseTimestamp([]byte(`1714564800`)); got.Unix() != want.Unix() {
		t.Fatalf("unix seconds: got %v", got)
	}
	if got := parseTimestamp([]byte(`1714564800000`)); got.Unix() != want.Unix() {
		t.Fatalf("unix millis: got %v", got)
	}
	if got := parseTimestamp(nil); got.IsZero() {
		t.Fatalf("missing timestamp should default to now")
	}
}
