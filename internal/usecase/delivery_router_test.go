package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"AlertPulse/internal/domain/models"
)

func routerFixture(t *testing.T) (*DeliveryRouter, *fakeLive, *fakePush, *fakeEmail, *fakeSettings) {
	t.Helper()
	live := &fakeLive{online: true}
	push := &fakePush{configured: true}
	email := &fakeEmail{configured: true}
	settings := newFakeSettings()
	r := NewDeliveryRouter(live, push, email, settings, nopMetrics{}, testLogger(t))
	return r, live, push, email, settings
}

func record(priority models.Priority) *models.NotificationRecord {
	return &models.NotificationRecord{
		ID:       "n1",
		UserID:   "u1",
		Type:     "price",
		Priority: priority,
		Title:    "BTC price drop alert",
		SentAt:   time.Now(),
	}
}

func TestDispatchAllChannels(t *testing.T) {
	r, _, push, email, settings := routerFixture(t)
	settings.tokens["u1"] = []models.DeviceToken{{UserID: "u1", Token: "tok", Platform: "android"}}

	ns := models.DefaultNotificationSettings("u1")
	ns.EmailEnabled = true
	ns.EmailAddress = "u1@example.com"

	outcome := r.Dispatch(context.Background(), record(models.PriorityHigh), ns)
	if !outcome.LiveSession || !outcome.Push || !outcome.Email {
		t.Fatalf("all channels should succeed, got %+v", outcome)
	}
	if push.sent != 1 {
		t.Fatalf("push sent %d times", push.sent)
	}
	if len(email.sent) != 1 || email.sent[0] != "u1@example.com" {
		t.Fatalf("unexpected email sends %v", email.sent)
	}
}

func TestDispatchChannelIndependence(t *testing.T) {
	r, _, push, _, settings := routerFixture(t)
	settings.tokens["u1"] = []models.DeviceToken{{UserID: "u1", Token: "tok", Platform: "ios"}}
	push.err = fmt.Errorf("gateway down")

	ns := models.DefaultNotificationSettings("u1")
	ns.EmailEnabled = true
	ns.EmailAddress = "u1@example.com"

	outcome := r.Dispatch(context.Background(), record(models.PriorityHigh), ns)
	if outcome.Push {
		t.Fatalf("push should report failure")
	}
	if !outcome.LiveSession || !outcome.Email {
		t.Fatalf("push failure must not block other channels: %+v", outcome)
	}
}

func TestDispatchQuietHoursSuppression(t *testing.T) {
	live := &fakeLive{online: true}
	push := &fakePush{configured: true}
	email := &fakeEmail{configured: true}
	settings := newFakeSettings()
	at2300 := time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)
	r := NewDeliveryRouter(live, push, email, settings, nopMetrics{}, testLogger(t),
		WithRouterClock(func() time.Time { return at2300 }))

	ns := models.DefaultNotificationSettings("u1")
	ns.QuietHoursEnabled = true
	ns.QuietHoursStart = "22:00"
	ns.QuietHoursEnd = "08:00"

	outcome := r.Dispatch(context.Background(), record(models.PriorityHigh), ns)
	if outcome.LiveSession || outcome.Push || outcome.Email {
		t.Fatalf("non-critical delivery must be suppressed at 23:00, got %+v", outcome)
	}
	if len(live.emitted) != 0 {
		t.Fatalf("no channel attempt expected")
	}

	crit := r.Dispatch(context.Background(), record(models.PriorityCritical), ns)
	if !crit.LiveSession {
		t.Fatalf("critical must bypass quiet hours")
	}
}

func TestDispatchPriorityThreshold(t *testing.T) {
	r, live, _, _, _ := routerFixture(t)

	ns := models.DefaultNotificationSettings("u1")
	ns.PriorityThreshold = models.PriorityHigh

	if out := r.Dispatch(context.Background(), record(models.PriorityMedium), ns); out.LiveSession {
		t.Fatalf("below-threshold record must not deliver")
	}
	if len(live.emitted) != 0 {
		t.Fatalf("no emission expected below threshold")
	}
	if out := r.Dispatch(context.Background(), record(models.PriorityHigh), ns); !out.LiveSession {
		t.Fatalf("at-threshold record should deliver")
	}
}

func TestDispatchPushSkippedWithoutTokens(t *testing.T) {
	r, _, push, _, _ := routerFixture(t)
	ns := models.DefaultNotificationSettings("u1")

	outcome := r.Dispatch(context.Background(), record(models.PriorityHigh), ns)
	if outcome.Push {
		t.Fatalf("push without registered devices cannot succeed")
	}
	if push.sent != 0 {
		t.Fatalf("gateway must not be called without tokens")
	}
}

func TestDispatchDigestUsersSkipPerRecordEmail(t *testing.T) {
	r, _, _, email, _ := routerFixture(t)
	ns := models.DefaultNotificationSettings("u1")
	ns.EmailEnabled = true
	ns.EmailAddress = "u1@example.com"
	ns.EmailDigest = models.DigestDaily

	outcome := r.Dispatch(context.Background(), record(models.PriorityHigh), ns)
	if outcome.Email {
		t.Fatalf("digest users do not get per-record email")
	}
	if len(email.sent) != 0 {
		t.Fatalf("unexpected email send")
	}
}
