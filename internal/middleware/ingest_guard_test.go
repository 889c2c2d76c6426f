package middleware

import (
	"context"
	"sync"
	"testing"
	"time"

	"AlertPulse/internal/domain/models"
)

type countingSink struct {
	mu sync.Mutex
	n  int
}

func (s *countingSink) OnSignal(context.Context, *models.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return nil
}

func (s *countingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

type countingMetrics struct {
	mu        sync.Mutex
	errors    map[string]int
	latencies map[string]int
}

func (m *countingMetrics) RecordSignal(string)               {}
func (m *countingMetrics) RecordNotification(string, string) {}
func (m *countingMetrics) RecordDelivery(string, bool)       {}
func (m *countingMetrics) RecordRateLimited(string)          {}
func (m *countingMetrics) RecordLatency(op string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latencies == nil {
		m.latencies = map[string]int{}
	}
	m.latencies[op]++
}
func (m *countingMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errors == nil {
		m.errors = map[string]int{}
	}
	m.errors[kind]++
}

func validSignal(symbol string) *models.Signal {
	return &models.Signal{
		AssetSymbol: symbol,
		Kind:        models.KindNews,
		Strength:    50,
		Timestamp:   time.Now(),
	}
}

func TestGuardForwardsValidSignals(t *testing.T) {
	sink := &countingSink{}
	g := NewIngestGuard(sink, &countingMetrics{}, WithMaxPerSec(1000))

	if err := g.OnSignal(context.Background(), validSignal("BTC")); err != nil {
		t.Fatalf("guard error: %v", err)
	}
	if sink.count() != 1 {
		t.Fatalf("signal not forwarded")
	}
}

func TestGuardRejectsInvalid(t *testing.T) {
	sink := &countingSink{}
	m := &countingMetrics{}
	g := NewIngestGuard(sink, m)

	sig := validSignal("")
	if err := g.OnSignal(context.Background(), sig); err == nil {
		t.Fatalf("invalid signal should error")
	}
	if sink.count() != 0 {
		t.Fatalf("invalid signal must not reach the pipeline")
	}
	if m.errors["ingest_validate"] != 1 {
		t.Fatalf("validation error not recorded")
	}
}

func TestGuardThrottlesPerAsset(t *testing.T) {
	sink := &countingSink{}
	m := &countingMetrics{}
	g := NewIngestGuard(sink, m, WithMaxPerSec(1))

	// Two back-to-back signals for one asset: second is dropped silently.
	if err := g.OnSignal(context.Background(), validSignal("BTC")); err != nil {
		t.Fatalf("first signal: %v", err)
	}
	if err := g.OnSignal(context.Background(), validSignal("BTC")); err != nil {
		t.Fatalf("throttled signal must not error: %v", err)
	}
	if sink.count() != 1 {
		t.Fatalf("throttle failed, %d signals forwarded", sink.count())
	}
	if m.errors["ingest_throttle"] != 1 {
		t.Fatalf("throttle drop not recorded")
	}

	// A different asset has its own bucket.
	if err := g.OnSignal(context.Background(), validSignal("ETH")); err != nil {
		t.Fatalf("other asset: %v", err)
	}
	if sink.count() != 2 {
		t.Fatalf("per-asset isolation broken")
	}
}

func TestGuardAdmitsBurstUpToLimit(t *testing.T) {
	sink := &countingSink{}
	m := &countingMetrics{}
	g := NewIngestGuard(sink, m, WithMaxPerSec(5))

	// A burst of six back-to-back signals: the bucket admits five, drops one.
	for i := 0; i < 6; i++ {
		if err := g.OnSignal(context.Background(), validSignal("BTC")); err != nil {
			t.Fatalf("signal %d: %v", i, err)
		}
	}
	if sink.count() != 5 {
		t.Fatalf("burst of 6 at cap 5 forwarded %d signals, want 5", sink.count())
	}
	if m.errors["ingest_throttle"] != 1 {
		t.Fatalf("throttle drop not recorded, got %d", m.errors["ingest_throttle"])
	}
}
