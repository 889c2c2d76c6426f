package ratelimit

import (
	"testing"
	"time"
)

func TestTryConsumeCap(t *testing.T) {
	w := New()
	for i := 0; i < 3; i++ {
		if !w.TryConsume("u1", "price", 3) {
			t.Fatalf("attempt %d should pass", i+1)
		}
	}
	if w.TryConsume("u1", "price", 3) {
		t.Fatalf("fourth attempt should be rejected")
	}
	if got := w.Remaining("u1", "price", 3); got != 0 {
		t.Fatalf("remaining = %d, want 0", got)
	}
}

func TestTryConsumeUncapped(t *testing.T) {
	w := New()
	for i := 0; i < 100; i++ {
		if !w.TryConsume("u1", "sentiment", 0) {
			t.Fatalf("uncapped attempt rejected")
		}
	}
	if got := w.Remaining("u1", "sentiment", 0); got != -1 {
		t.Fatalf("remaining = %d, want -1", got)
	}
}

func TestWindowIsolatedPerKey(t *testing.T) {
	w := New()
	if !w.TryConsume("u1", "price", 1) {
		t.Fatalf("first consume failed")
	}
	if w.TryConsume("u1", "price", 1) {
		t.Fatalf("u1/price should be exhausted")
	}
	if !w.TryConsume("u1", "news", 1) {
		t.Fatalf("different alert type should have its own window")
	}
	if !w.TryConsume("u2", "price", 1) {
		t.Fatalf("different user should have its own window")
	}
}

func TestWindowResetsAfterSpan(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	w := New().WithClock(func() time.Time { return now })

	if !w.TryConsume("u1", "price", 1) {
		t.Fatalf("first consume failed")
	}
	if w.TryConsume("u1", "price", 1) {
		t.Fatalf("window should be exhausted")
	}

	now = now.Add(time.Hour + time.Minute)
	if !w.TryConsume("u1", "price", 1) {
		t.Fatalf("new window should allow consume")
	}
}

func TestRemainingFreshKey(t *testing.T) {
	w := New()
	if got := w.Remaining("u1", "price", 5); got != 5 {
		t.Fatalf("remaining = %d, want 5", got)
	}
}
