package usecase

import (
	"testing"
	"time"

	"AlertPulse/internal/domain/models"
)

func priceSignal(symbol string, change float64) *models.Signal {
	return &models.Signal{
		AssetSymbol: symbol,
		Kind:        models.KindPrice,
		Strength:    60,
		Sources:     []models.SignalSource{{PriceChange: change, CurrentPrice: 100, PreviousPrice: 95}},
		Timestamp:   time.Now(),
	}
}

func sentimentSignal(symbol string, strength float64) *models.Signal {
	return &models.Signal{
		AssetSymbol: symbol,
		Kind:        models.KindSentiment,
		Strength:    strength,
		Sources:     []models.SignalSource{{OriginPlatform: "x", MentionCount: 40}},
		Timestamp:   time.Now(),
	}
}

func TestResolveRulesAssetBeatsGlobal(t *testing.T) {
	e := NewAlertRuleEvaluator()
	rules := []models.AlertSetting{
		{ID: 1, UserID: "u1", AssetSymbol: "", PriceChangeThreshold: 5},
		{ID: 2, UserID: "u1", AssetSymbol: "BTC", PriceChangeThreshold: 2},
	}
	got := e.ResolveRules("u1", rules, priceSignal("BTC", 3))
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected asset rule only, got %+v", got)
	}
}

func TestResolveRulesGlobalFallback(t *testing.T) {
	e := NewAlertRuleEvaluator()
	rules := []models.AlertSetting{
		{ID: 1, UserID: "u1", AssetSymbol: "", PriceChangeThreshold: 5},
		{ID: 2, UserID: "u1", AssetSymbol: "ETH", PriceChangeThreshold: 2},
	}
	got := e.ResolveRules("u1", rules, priceSignal("BTC", 3))
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected global rule, got %+v", got)
	}
}

func TestResolveRulesBuiltInDefault(t *testing.T) {
	e := NewAlertRuleEvaluator()
	got := e.ResolveRules("u1", nil, priceSignal("BTC", 3))
	if len(got) != 1 {
		t.Fatalf("expected one default rule, got %d", len(got))
	}
	def := got[0]
	if def.UserID != "u1" || def.SentimentThreshold != 70 || def.PriceChangeThreshold != 5.0 {
		t.Fatalf("unexpected default rule %+v", def)
	}
}

func TestResolveRulesMultipleAssetRows(t *testing.T) {
	e := NewAlertRuleEvaluator()
	rules := []models.AlertSetting{
		{ID: 1, UserID: "u1", AssetSymbol: "BTC"},
		{ID: 2, UserID: "u1", AssetSymbol: "BTC"},
	}
	got := e.ResolveRules("u1", rules, priceSignal("BTC", 3))
	if len(got) != 2 {
		t.Fatalf("every matching row evaluates independently, got %d", len(got))
	}
}

func TestShouldFirePriceThresholdInclusive(t *testing.T) {
	e := NewAlertRuleEvaluator()
	rule := &models.AlertSetting{EnablePriceAlerts: true, PriceChangeThreshold: 5}

	if !e.ShouldFire(priceSignal("BTC", 5.0), rule) {
		t.Fatalf("exactly at threshold should fire")
	}
	if !e.ShouldFire(priceSignal("BTC", -6.0), rule) {
		t.Fatalf("drops compare on absolute value")
	}
	if e.ShouldFire(priceSignal("BTC", 4.9), rule) {
		t.Fatalf("below threshold should not fire")
	}
	rule.EnablePriceAlerts = false
	if e.ShouldFire(priceSignal("BTC", 50), rule) {
		t.Fatalf("disabled kind never fires")
	}
}

func TestShouldFirePriceWithoutPayload(t *testing.T) {
	e := NewAlertRuleEvaluator()
	rule := &models.AlertSetting{EnablePriceAlerts: true, PriceChangeThreshold: 5}
	sig := &models.Signal{AssetSymbol: "BTC", Kind: models.KindPrice, Timestamp: time.Now()}
	if e.ShouldFire(sig, rule) {
		t.Fatalf("price signal without price sources should not fire")
	}
}

func TestShouldFireSentimentAndNarrative(t *testing.T) {
	e := NewAlertRuleEvaluator()
	rule := &models.AlertSetting{
		EnableSentimentAlerts: true,
		EnableNarrativeAlerts: true,
		SentimentThreshold:    70,
	}

	if !e.ShouldFire(sentimentSignal("BTC", 70), rule) {
		t.Fatalf("sentiment at threshold should fire")
	}
	if e.ShouldFire(sentimentSignal("BTC", 69.9), rule) {
		t.Fatalf("sentiment below threshold should not fire")
	}

	narrative := sentimentSignal("BTC", 80)
	narrative.Kind = models.KindNarrative
	if !e.ShouldFire(narrative, rule) {
		t.Fatalf("narrative shares the sentiment threshold")
	}
}

func TestShouldFireFlagOnlyKinds(t *testing.T) {
	e := NewAlertRuleEvaluator()
	rule := &models.AlertSetting{EnableVolumeAlerts: true, EnableNewsAlerts: false}

	vol := &models.Signal{AssetSymbol: "BTC", Kind: models.KindVolume, Strength: 10, Timestamp: time.Now()}
	if !e.ShouldFire(vol, rule) {
		t.Fatalf("volume fires on flag alone")
	}
	news := &models.Signal{AssetSymbol: "BTC", Kind: models.KindNews, Strength: 99, Timestamp: time.Now()}
	if e.ShouldFire(news, rule) {
		t.Fatalf("news disabled should not fire")
	}
}
