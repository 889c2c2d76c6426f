package middleware

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"AlertPulse/internal/domain/models"
	domrepo "AlertPulse/internal/domain/repository"
)

// SignalSink is the minimal pipeline interface the guard needs.
type SignalSink interface {
	OnSignal(ctx context.Context, sig *models.Signal) error
}

// IngestGuard sits between the signal sources and the pipeline. It validates
// early and throttles floods per asset so a misbehaving feed cannot saturate
// the per-user fan-out. Throttled signals are dropped silently (recorded in
// metrics), matching the no-queue, no-retry ingestion contract.
type IngestGuard struct {
	sink    SignalSink
	metrics domrepo.Metrics

	maxPerSec int
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
}

type GuardOption func(*IngestGuard)

// WithMaxPerSec sets the max accepted signals per second per asset.
func WithMaxPerSec(n int) GuardOption {
	return func(g *IngestGuard) {
		if n > 0 {
			g.maxPerSec = n
		}
	}
}

func NewIngestGuard(sink SignalSink, metrics domrepo.Metrics, opts ...GuardOption) *IngestGuard {
	g := &IngestGuard{
		sink:      sink,
		metrics:   metrics,
		maxPerSec: 10,
		limiters:  make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// OnSignal validates, throttles, and forwards to the pipeline.
func (g *IngestGuard) OnSignal(ctx context.Context, sig *models.Signal) error {
	if err := sig.Validate(); err != nil {
		g.metrics.RecordError("ingest_validate")
		return err
	}
	if !g.allow(sig.AssetSymbol) {
		g.metrics.RecordError("ingest_throttle")
		return nil
	}
	return g.sink.OnSignal(ctx, sig)
}

// allow admits up to maxPerSec signals per second per asset, with a burst of
// the same size so legitimate clusters of signals pass through.
func (g *IngestGuard) allow(symbol string) bool {
	if g.maxPerSec <= 0 {
		return true
	}
	g.mu.Lock()
	lim, ok := g.limiters[symbol]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(g.maxPerSec), g.maxPerSec)
		g.limiters[symbol] = lim
	}
	g.mu.Unlock()
	return lim.Allow()
}
