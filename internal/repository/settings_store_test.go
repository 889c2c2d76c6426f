package repository

import (
	"context"
	"testing"

	"AlertPulse/internal/domain/models"
)

func TestGetNotificationSettingsCreatesDefaults(t *testing.T) {
	s := NewGormSettingsStore(testDB(t))
	ctx := context.Background()

	ns, err := s.GetNotificationSettings(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ns.PushEnabled || ns.EmailEnabled || !ns.GroupingEnabled {
		t.Fatalf("unexpected defaults %+v", ns)
	}
	if ns.QuietHoursStart != "22:00" || ns.QuietHoursEnd != "08:00" {
		t.Fatalf("unexpected quiet hours defaults %+v", ns)
	}

	// Second call reads the persisted row, not a fresh default.
	ns.SoundEnabled = false
	if err := s.SaveNotificationSettings(ctx, ns); err != nil {
		t.Fatalf("save: %v", err)
	}
	again, err := s.GetNotificationSettings(ctx, "u1")
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if again.SoundEnabled {
		t.Fatalf("persisted change lost")
	}
}

func TestAlertSettingCRUD(t *testing.T) {
	s := NewGormSettingsStore(testDB(t))
	ctx := context.Background()

	rule := &models.AlertSetting{
		UserID:               "u1",
		AssetSymbol:          "BTC",
		EnablePriceAlerts:    true,
		PriceChangeThreshold: 2.5,
		AlertFrequency:       "instant",
	}
	if err := s.SaveAlertSetting(ctx, rule); err != nil {
		t.Fatalf("save: %v", err)
	}
	if rule.ID == 0 {
		t.Fatalf("rule id not assigned")
	}

	rules, err := s.ListAlertSettings(ctx, "u1")
	if err != nil || len(rules) != 1 {
		t.Fatalf("list: %v len=%d", err, len(rules))
	}

	rule.PriceChangeThreshold = 10
	if err := s.SaveAlertSetting(ctx, rule); err != nil {
		t.Fatalf("update: %v", err)
	}
	rules, _ = s.ListAlertSettings(ctx, "u1")
	if len(rules) != 1 || rules[0].PriceChangeThreshold != 10 {
		t.Fatalf("update not persisted: %+v", rules)
	}

	if err := s.DeleteAlertSetting(ctx, "u1", rule.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rules, _ = s.ListAlertSettings(ctx, "u1")
	if len(rules) != 0 {
		t.Fatalf("rule not deleted")
	}
}

func TestDeviceTokenReregistration(t *testing.T) {
	s := NewGormSettingsStore(testDB(t))
	ctx := context.Background()

	if err := s.SaveDeviceToken(ctx, &models.DeviceToken{UserID: "u1", Token: "tok", Platform: "ios"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Same physical device signs in as another user.
	if err := s.SaveDeviceToken(ctx, &models.DeviceToken{UserID: "u2", Token: "tok", Platform: "ios"}); err != nil {
		t.Fatalf("re-register: %v", err)
	}

	u1Tokens, _ := s.ListDeviceTokens(ctx, "u1")
	u2Tokens, _ := s.ListDeviceTokens(ctx, "u2")
	if len(u1Tokens) != 0 {
		t.Fatalf("token should have moved away from u1")
	}
	if len(u2Tokens) != 1 || u2Tokens[0].Token != "tok" {
		t.Fatalf("token missing for u2: %+v", u2Tokens)
	}

	if err := s.DeleteDeviceToken(ctx, "u2", "tok"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	u2Tokens, _ = s.ListDeviceTokens(ctx, "u2")
	if len(u2Tokens) != 0 {
		t.Fatalf("token not deleted")
	}
}

func TestListSubscribers(t *testing.T) {
	s := NewGormSettingsStore(testDB(t))
	ctx := context.Background()

	// u1: asset rule. u2: global rule. u3: settings row only. u4: rule for
	// a different asset.
	if err := s.SaveAlertSetting(ctx, &models.AlertSetting{UserID: "u1", AssetSymbol: "BTC"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveAlertSetting(ctx, &models.AlertSetting{UserID: "u2", AssetSymbol: ""}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := s.GetNotificationSettings(ctx, "u3"); err != nil {
		t.Fatalf("settings: %v", err)
	}
	if err := s.SaveAlertSetting(ctx, &models.AlertSetting{UserID: "u4", AssetSymbol: "ETH"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	subs, err := s.ListSubscribers(ctx, "BTC")
	if err != nil {
		t.Fatalf("subscribers: %v", err)
	}
	seen := map[string]bool{}
	for _, uid := range subs {
		seen[uid] = true
	}
	if !seen["u1"] || !seen["u2"] || !seen["u3"] {
		t.Fatalf("missing subscribers: %v", subs)
	}
	if seen["u4"] {
		t.Fatalf("u4 has no BTC or global rule and no settings row: %v", subs)
	}
}

func TestListDigestUsers(t *testing.T) {
	s := NewGormSettingsStore(testDB(t))
	ctx := context.Background()

	daily := models.DefaultNotificationSettings("u1")
	daily.EmailEnabled = true
	daily.EmailAddress = "u1@example.com"
	daily.EmailDigest = models.DigestDaily
	if err := s.SaveNotificationSettings(ctx, daily); err != nil {
		t.Fatalf("save: %v", err)
	}

	off := models.DefaultNotificationSettings("u2")
	off.EmailEnabled = true
	if err := s.SaveNotificationSettings(ctx, off); err != nil {
		t.Fatalf("save: %v", err)
	}

	users, err := s.ListDigestUsers(ctx, models.DigestDaily)
	if err != nil {
		t.Fatalf("digest users: %v", err)
	}
	if len(users) != 1 || users[0] != "u1" {
		t.Fatalf("unexpected digest users %v", users)
	}
}
