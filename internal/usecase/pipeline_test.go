package usecase

import (
	"context"
	"testing"
	"time"

	"AlertPulse/internal/domain/models"
	"AlertPulse/internal/service/ratelimit"
)

type pipelineFixture struct {
	pipeline *SignalNotificationPipeline
	store    *fakeStore
	settings *fakeSettings
	live     *fakeLive
	events   *fakeEvents
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	store := &fakeStore{}
	settings := newFakeSettings()
	live := &fakeLive{online: true}
	events := &fakeEvents{}
	logger := testLogger(t)

	router := NewDeliveryRouter(live, &fakePush{}, &fakeEmail{}, settings, nopMetrics{}, logger)
	p := NewSignalNotificationPipeline(
		NewAlertRuleEvaluator(),
		NewNotificationFactory(),
		NewGroupingEngine(store),
		ratelimit.New(),
		router,
		store, settings, nil, events, nopMetrics{}, logger,
	)
	return &pipelineFixture{pipeline: p, store: store, settings: settings, live: live, events: events}
}

func TestOnSignalEndToEnd(t *testing.T) {
	f := newPipelineFixture(t)
	f.settings.subscribers = []string{"u1"}
	f.settings.rules["u1"] = []models.AlertSetting{{
		UserID:               "u1",
		AssetSymbol:          "BTC",
		EnablePriceAlerts:    true,
		PriceChangeThreshold: 5,
	}}

	if err := f.pipeline.OnSignal(context.Background(), priceSignal("BTC", 7.5)); err != nil {
		t.Fatalf("pipeline error: %v", err)
	}

	if f.store.count() != 1 {
		t.Fatalf("expected one persisted record, got %d", f.store.count())
	}
	rec := f.store.records[0]
	if rec.Priority != models.PriorityHigh {
		t.Fatalf("7.5%% on a 5%% threshold should be high, got %s", rec.Priority)
	}
	if rec.GroupID == "" {
		t.Fatalf("record left without group id")
	}
	if len(f.live.emitted) != 1 {
		t.Fatalf("live session not attempted")
	}
	if f.events.published != 1 {
		t.Fatalf("fired event not published")
	}
}

func TestOnSignalBelowThresholdNoRecord(t *testing.T) {
	f := newPipelineFixture(t)
	f.settings.subscribers = []string{"u1"}
	f.settings.rules["u1"] = []models.AlertSetting{{
		UserID:               "u1",
		AssetSymbol:          "BTC",
		EnablePriceAlerts:    true,
		PriceChangeThreshold: 5,
	}}

	if err := f.pipeline.OnSignal(context.Background(), priceSignal("BTC", 3)); err != nil {
		t.Fatalf("pipeline error: %v", err)
	}
	if f.store.count() != 0 {
		t.Fatalf("below-threshold signal must not persist, got %d records", f.store.count())
	}
}

func TestOnSignalRejectsInvalid(t *testing.T) {
	f := newPipelineFixture(t)
	sig := &models.Signal{Kind: models.KindPrice, Timestamp: time.Now()}
	if err := f.pipeline.OnSignal(context.Background(), sig); err == nil {
		t.Fatalf("invalid signal must be rejected")
	}
}

func TestOnSignalHourlyCap(t *testing.T) {
	f := newPipelineFixture(t)
	f.settings.subscribers = []string{"u1"}
	f.settings.rules["u1"] = []models.AlertSetting{{
		UserID:               "u1",
		AssetSymbol:          "BTC",
		EnablePriceAlerts:    true,
		PriceChangeThreshold: 5,
	}}
	ns := models.DefaultNotificationSettings("u1")
	ns.MaxPerHour = `{"price": 3}`
	f.settings.notif["u1"] = ns

	for i := 0; i < 4; i++ {
		if err := f.pipeline.OnSignal(context.Background(), priceSignal("BTC", 8)); err != nil {
			t.Fatalf("signal %d: %v", i, err)
		}
	}
	if f.store.count() != 3 {
		t.Fatalf("hourly cap 3 must leave exactly 3 records, got %d", f.store.count())
	}
}

func TestOnSignalStoreFailureIsolated(t *testing.T) {
	f := newPipelineFixture(t)
	f.settings.subscribers = []string{"u1"}
	f.settings.rules["u1"] = []models.AlertSetting{{
		UserID:               "u1",
		AssetSymbol:          "BTC",
		EnablePriceAlerts:    true,
		PriceChangeThreshold: 5,
	}}
	f.store.failNext = true

	if err := f.pipeline.OnSignal(context.Background(), priceSignal("BTC", 8)); err != nil {
		t.Fatalf("store failure must not fail the signal: %v", err)
	}
	if len(f.live.emitted) != 0 {
		t.Fatalf("unpersisted record must not be delivered")
	}
	if f.events.published != 0 {
		t.Fatalf("unpersisted record must not publish an event")
	}

	// Next signal goes through normally.
	if err := f.pipeline.OnSignal(context.Background(), priceSignal("BTC", 8)); err != nil {
		t.Fatalf("pipeline error: %v", err)
	}
	if f.store.count() != 1 {
		t.Fatalf("expected recovery on next signal, got %d records", f.store.count())
	}
}

func TestOnSignalNoSubscribers(t *testing.T) {
	f := newPipelineFixture(t)
	if err := f.pipeline.OnSignal(context.Background(), priceSignal("BTC", 8)); err != nil {
		t.Fatalf("no subscribers is not an error: %v", err)
	}
	if f.store.count() != 0 {
		t.Fatalf("no records expected")
	}
}

func TestOnSignalDefaultRuleApplies(t *testing.T) {
	f := newPipelineFixture(t)
	f.settings.subscribers = []string{"u1"}
	// No configured rules: built-in default (5% price threshold) applies.

	if err := f.pipeline.OnSignal(context.Background(), priceSignal("BTC", 6)); err != nil {
		t.Fatalf("pipeline error: %v", err)
	}
	if f.store.count() != 1 {
		t.Fatalf("default rule should fire, got %d records", f.store.count())
	}
}
