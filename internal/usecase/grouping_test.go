package usecase

import (
	"context"
	"testing"
	"time"

	"AlertPulse/internal/domain/models"
)

func TestAssignGroupReusesRecentGroup(t *testing.T) {
	store := &fakeStore{}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g := NewGroupingEngine(store).WithClock(func() time.Time { return now })

	existing := models.NotificationRecord{
		ID:      "n1",
		UserID:  "u1",
		Type:    "price",
		Title:   "BTC price increase alert",
		GroupID: "g1",
		SentAt:  now.Add(-10 * time.Minute),
	}
	store.records = append(store.records, existing)

	candidate := &models.NotificationRecord{
		ID:     "n2",
		UserID: "u1",
		Type:   "price",
		Title:  "BTC price drop alert",
		SentAt: now,
	}
	got := g.AssignGroup(context.Background(), candidate, true)
	if got != "g1" {
		t.Fatalf("similar title within the hour should reuse group, got %q", got)
	}
	if candidate.GroupID != "g1" {
		t.Fatalf("candidate not updated")
	}
}

func TestAssignGroupNewGroupOutsideWindow(t *testing.T) {
	store := &fakeStore{}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g := NewGroupingEngine(store).WithClock(func() time.Time { return now })

	store.records = append(store.records, models.NotificationRecord{
		ID:      "n1",
		UserID:  "u1",
		Type:    "price",
		Title:   "BTC price increase alert",
		GroupID: "g1",
		SentAt:  now.Add(-2 * time.Hour),
	})

	candidate := &models.NotificationRecord{
		ID:     "n2",
		UserID: "u1",
		Type:   "price",
		Title:  "BTC price increase alert",
		SentAt: now,
	}
	got := g.AssignGroup(context.Background(), candidate, true)
	if got == "" || got == "g1" {
		t.Fatalf("stale record must not anchor a group, got %q", got)
	}
}

func TestAssignGroupDifferentAsset(t *testing.T) {
	store := &fakeStore{}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g := NewGroupingEngine(store).WithClock(func() time.Time { return now })

	store.records = append(store.records, models.NotificationRecord{
		ID:      "n1",
		UserID:  "u1",
		Type:    "price",
		Title:   "BTC price increase alert",
		GroupID: "g1",
		SentAt:  now.Add(-10 * time.Minute),
	})

	candidate := &models.NotificationRecord{
		ID:     "n2",
		UserID: "u1",
		Type:   "price",
		Title:  "ETH price increase alert",
		SentAt: now,
	}
	if got := g.AssignGroup(context.Background(), candidate, true); got == "g1" {
		t.Fatalf("different asset must not share a group")
	}
}

func TestAssignGroupDisabledPassthrough(t *testing.T) {
	store := &fakeStore{}
	g := NewGroupingEngine(store)

	a := &models.NotificationRecord{ID: "n1", UserID: "u1", Type: "price", Title: "BTC price increase alert"}
	b := &models.NotificationRecord{ID: "n2", UserID: "u1", Type: "price", Title: "BTC price increase alert"}
	ga := g.AssignGroup(context.Background(), a, false)
	gb := g.AssignGroup(context.Background(), b, false)
	if ga == "" || gb == "" {
		t.Fatalf("disabled grouping still assigns ids")
	}
	if ga == gb {
		t.Fatalf("disabled grouping must not cluster records")
	}
}
