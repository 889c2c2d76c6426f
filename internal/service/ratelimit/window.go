package ratelimit

import (
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// Windows tracks fixed one-hour delivery windows keyed by (userID, alertType).
// State lives only for the process lifetime; a restart resets quotas, which is
// acceptable for hourly caps.
type Windows struct {
	mu     sync.Mutex
	m      map[string]*window
	span   time.Duration
	nowFn  func() time.Time
	lastGC time.Time
}

func New() *Windows {
	return &Windows{m: make(map[string]*window), span: time.Hour, nowFn: time.Now}
}

// WithClock overrides the time source. Test hook.
func (w *Windows) WithClock(now func() time.Time) *Windows {
	w.nowFn = now
	return w
}

func key(userID, alertType string) string { return userID + "|" + alertType }

// TryConsume consumes one slot for the key. The window is anchored at first
// use; once count reaches max, further attempts in the same window are
// rejected. max <= 0 means uncapped.
func (w *Windows) TryConsume(userID, alertType string, max int) bool {
	if max <= 0 {
		return true
	}
	now := w.nowFn()
	k := key(userID, alertType)

	w.mu.Lock()
	defer w.mu.Unlock()

	b, ok := w.m[k]
	if !ok || !now.Before(b.resetAt) {
		w.m[k] = &window{count: 1, resetAt: now.Add(w.span)}
		w.gcLocked(now)
		return true
	}
	if b.count >= max {
		return false
	}
	b.count++
	return true
}

// Remaining reports how many slots remain in the current window.
func (w *Windows) Remaining(userID, alertType string, max int) int {
	if max <= 0 {
		return -1
	}
	now := w.nowFn()
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.m[key(userID, alertType)]
	if !ok || !now.Before(b.resetAt) {
		return max
	}
	if b.count >= max {
		return 0
	}
	return max - b.count
}

// gcLocked drops expired windows at most once per span to bound the map.
func (w *Windows) gcLocked(now time.Time) {
	if now.Sub(w.lastGC) < w.span {
		return
	}
	w.lastGC = now
	for k, b := range w.m {
		if !now.Before(b.resetAt) {
			delete(w.m, k)
		}
	}
}
