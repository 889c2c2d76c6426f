package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"AlertPulse/internal/domain/models"
	applogger "AlertPulse/pkg/logger"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

// fakeStore is an in-memory NotificationStore.
type fakeStore struct {
	mu        sync.Mutex
	records   []models.NotificationRecord
	failNext  bool
	createErr error
}

func (s *fakeStore) Create(_ context.Context, rec *models.NotificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext {
		s.failNext = false
		return fmt.Errorf("store down")
	}
	if s.createErr != nil {
		return s.createErr
	}
	s.records = append(s.records, *rec)
	return nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *fakeStore) FindHistory(context.Context, string, models.HistoryFilter) ([]models.NotificationRecord, int64, error) {
	return nil, 0, nil
}

func (s *fakeStore) FindRecent(_ context.Context, userID, notifType string, since time.Time) ([]models.NotificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.NotificationRecord
	for _, r := range s.records {
		if r.UserID == userID && r.Type == notifType && r.SentAt.After(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) FindGroups(context.Context, string) ([]models.NotificationGroup, error) {
	return nil, nil
}

func (s *fakeStore) FindForDigest(context.Context, string, time.Time, time.Time) ([]models.NotificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.NotificationRecord(nil), s.records...), nil
}

func (s *fakeStore) MarkRead(context.Context, []string) error       { return nil }
func (s *fakeStore) MarkAllRead(context.Context, string) error      { return nil }
func (s *fakeStore) Archive(context.Context, []string) error        { return nil }
func (s *fakeStore) Snooze(context.Context, string, time.Time) error { return nil }
func (s *fakeStore) UnreadCount(context.Context, string) (int64, error) {
	return int64(s.count()), nil
}

// fakeSettings is an in-memory SettingsStore.
type fakeSettings struct {
	mu          sync.Mutex
	subscribers []string
	rules       map[string][]models.AlertSetting
	notif       map[string]*models.NotificationSettings
	tokens      map[string][]models.DeviceToken
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{
		rules:  map[string][]models.AlertSetting{},
		notif:  map[string]*models.NotificationSettings{},
		tokens: map[string][]models.DeviceToken{},
	}
}

func (s *fakeSettings) GetNotificationSettings(_ context.Context, userID string) (*models.NotificationSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ns, ok := s.notif[userID]; ok {
		return ns, nil
	}
	return models.DefaultNotificationSettings(userID), nil
}

func (s *fakeSettings) SaveNotificationSettings(_ context.Context, ns *models.NotificationSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notif[ns.UserID] = ns
	return nil
}

func (s *fakeSettings) ListAlertSettings(_ context.Context, userID string) ([]models.AlertSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules[userID], nil
}

func (s *fakeSettings) SaveAlertSetting(_ context.Context, r *models.AlertSetting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[r.UserID] = append(s.rules[r.UserID], *r)
	return nil
}

func (s *fakeSettings) DeleteAlertSetting(context.Context, string, uint) error { return nil }

func (s *fakeSettings) ListDeviceTokens(_ context.Context, userID string) ([]models.DeviceToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[userID], nil
}

func (s *fakeSettings) SaveDeviceToken(_ context.Context, t *models.DeviceToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[t.UserID] = append(s.tokens[t.UserID], *t)
	return nil
}

func (s *fakeSettings) DeleteDeviceToken(context.Context, string, string) error { return nil }

func (s *fakeSettings) ListSubscribers(context.Context, string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscribers, nil
}

func (s *fakeSettings) ListDigestUsers(context.Context, models.DigestPeriod) ([]string, error) {
	return nil, nil
}

// fakeLive records emissions.
type fakeLive struct {
	mu      sync.Mutex
	emitted []string
	online  bool
}

func (l *fakeLive) Emit(userID string, _ *models.NotificationRecord) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.emitted = append(l.emitted, userID)
	return l.online
}

// fakePush records sends.
type fakePush struct {
	mu         sync.Mutex
	sent       int
	configured bool
	err        error
}

func (p *fakePush) Send(_ context.Context, _ *models.NotificationRecord, _ []models.DeviceToken) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent++
	return nil
}

func (p *fakePush) Configured() bool { return p.configured }

// fakeEmail records sends.
type fakeEmail struct {
	mu         sync.Mutex
	sent       []string
	digests    int
	configured bool
	err        error
}

func (e *fakeEmail) SendNotification(_ context.Context, to string, _ *models.NotificationRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.sent = append(e.sent, to)
	return nil
}

func (e *fakeEmail) SendDigest(_ context.Context, _ string, _ models.DigestPeriod, _ []models.NotificationRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.digests++
	return nil
}

func (e *fakeEmail) Configured() bool { return e.configured }

// fakeEvents records published events.
type fakeEvents struct {
	mu        sync.Mutex
	published int
}

func (f *fakeEvents) PublishNotification(context.Context, *models.NotificationRecord, models.DeliveryOutcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published++
	return nil
}

func (f *fakeEvents) Close() error { return nil }

// nopMetrics satisfies the Metrics interface.
type nopMetrics struct{}

func (nopMetrics) RecordSignal(string)               {}
func (nopMetrics) RecordNotification(string, string) {}
func (nopMetrics) RecordDelivery(string, bool)       {}
func (nopMetrics) RecordRateLimited(string)          {}
func (nopMetrics) RecordError(string)                {}
func (nopMetrics) RecordLatency(string, float64)     {}
