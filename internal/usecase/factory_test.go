package usecase

import (
	"encoding/json"
	"strings"
	"testing"

	"AlertPulse/internal/domain/models"
)

func TestBuildPriceDrop(t *testing.T) {
	f := NewNotificationFactory()
	rule := &models.AlertSetting{PriceChangeThreshold: 5}
	rec := f.Build("u1", priceSignal("BTC", -7.2), rule)

	if rec.ID == "" {
		t.Fatalf("record needs an id")
	}
	if rec.UserID != "u1" || rec.AssetSymbol != "BTC" || rec.Type != "price" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if !strings.Contains(rec.Title, "drop") {
		t.Fatalf("drop title expected, got %q", rec.Title)
	}
	if !strings.Contains(rec.Message, "down 7.2%") {
		t.Fatalf("unexpected message %q", rec.Message)
	}
	if rec.Read || rec.Archived {
		t.Fatalf("new records start unread and unarchived")
	}
}

func TestBuildPriorityTiers(t *testing.T) {
	f := NewNotificationFactory()
	rule := &models.AlertSetting{PriceChangeThreshold: 5}

	cases := []struct {
		change float64
		want   models.Priority
	}{
		{5.0, models.PriorityMedium},
		{7.5, models.PriorityHigh},
		{-7.5, models.PriorityHigh},
		{10.0, models.PriorityCritical},
		{-12.0, models.PriorityCritical},
	}
	for _, tc := range cases {
		rec := f.Build("u1", priceSignal("BTC", tc.change), rule)
		if rec.Priority != tc.want {
			t.Fatalf("change %.1f: priority = %s, want %s", tc.change, rec.Priority, tc.want)
		}
	}
}

func TestBuildStrengthPriority(t *testing.T) {
	f := NewNotificationFactory()
	rule := &models.AlertSetting{SentimentThreshold: 70}

	if rec := f.Build("u1", sentimentSignal("BTC", 84), rule); rec.Priority != models.PriorityMedium {
		t.Fatalf("strength 84 should be medium, got %s", rec.Priority)
	}
	if rec := f.Build("u1", sentimentSignal("BTC", 85), rule); rec.Priority != models.PriorityHigh {
		t.Fatalf("strength 85 should be high, got %s", rec.Priority)
	}
	if rec := f.Build("u1", sentimentSignal("BTC", 95), rule); rec.Priority != models.PriorityCritical {
		t.Fatalf("strength 95 should be critical, got %s", rec.Priority)
	}
}

func TestBuildDataAndActions(t *testing.T) {
	f := NewNotificationFactory()
	rule := &models.AlertSetting{PriceChangeThreshold: 5}
	rec := f.Build("u1", priceSignal("BTC", 6), rule)

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(rec.Data), &data); err != nil {
		t.Fatalf("data payload not json: %v", err)
	}
	if data["asset_symbol"] != "BTC" {
		t.Fatalf("unexpected data payload %v", data)
	}
	if data["price_change"].(float64) != 6.0 {
		t.Fatalf("price change missing from payload")
	}

	var actions []models.QuickAction
	if err := json.Unmarshal([]byte(rec.QuickActions), &actions); err != nil {
		t.Fatalf("actions payload not json: %v", err)
	}
	if len(actions) != 2 || actions[0].ID != "view_asset" || actions[1].ID != "snooze" {
		t.Fatalf("unexpected actions %+v", actions)
	}
}

func TestBuildUniqueIDs(t *testing.T) {
	f := NewNotificationFactory()
	rule := &models.AlertSetting{PriceChangeThreshold: 5}
	a := f.Build("u1", priceSignal("BTC", 6), rule)
	b := f.Build("u1", priceSignal("BTC", 6), rule)
	if a.ID == b.ID {
		t.Fatalf("ids must be unique")
	}
}
