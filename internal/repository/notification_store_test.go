package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"AlertPulse/internal/domain/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_pragma=busy_timeout(5000)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.NotificationRecord{},
		&models.AlertSetting{},
		&models.NotificationSettings{},
		&models.DeviceToken{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM notification_records")
		db.Exec("DELETE FROM alert_settings")
		db.Exec("DELETE FROM notification_settings")
		db.Exec("DELETE FROM device_tokens")
	})
	return db
}

func seedRecord(t *testing.T, s *GormNotificationStore, id, userID, typ string, p models.Priority, sentAt time.Time) *models.NotificationRecord {
	t.Helper()
	rec := &models.NotificationRecord{
		ID:          id,
		UserID:      userID,
		Title:       "BTC price drop alert",
		Message:     "BTC is down 6.0%",
		Type:        typ,
		Priority:    p,
		AssetSymbol: "BTC",
		GroupID:     "g-" + typ,
		SentAt:      sentAt,
	}
	if err := s.Create(context.Background(), rec); err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
	return rec
}

func TestFindHistoryFilters(t *testing.T) {
	s := NewGormNotificationStore(testDB(t))
	ctx := context.Background()
	now := time.Now()

	seedRecord(t, s, "n1", "u1", "price", models.PriorityHigh, now.Add(-time.Minute))
	seedRecord(t, s, "n2", "u1", "sentiment", models.PriorityMedium, now.Add(-2*time.Minute))
	seedRecord(t, s, "n3", "u2", "price", models.PriorityLow, now.Add(-3*time.Minute))

	recs, total, err := s.FindHistory(ctx, "u1", models.HistoryFilter{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 2 || len(recs) != 2 {
		t.Fatalf("expected 2 records for u1, got total=%d len=%d", total, len(recs))
	}
	if recs[0].ID != "n1" {
		t.Fatalf("newest first expected, got %s", recs[0].ID)
	}

	recs, total, err = s.FindHistory(ctx, "u1", models.HistoryFilter{Type: "price"})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 1 || recs[0].ID != "n1" {
		t.Fatalf("type filter failed: total=%d", total)
	}
}

func TestFindHistoryPagination(t *testing.T) {
	s := NewGormNotificationStore(testDB(t))
	ctx := context.Background()
	now := time.Now()
	for i := 0; i < 5; i++ {
		seedRecord(t, s, fmt.Sprintf("p%d", i), "u1", "price", models.PriorityLow, now.Add(-time.Duration(i)*time.Minute))
	}

	recs, total, err := s.FindHistory(ctx, "u1", models.HistoryFilter{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 5 || len(recs) != 2 {
		t.Fatalf("page 2 of 5 with limit 2: total=%d len=%d", total, len(recs))
	}
	if recs[0].ID != "p2" {
		t.Fatalf("unexpected page start %s", recs[0].ID)
	}
}

func TestMarkReadIdempotent(t *testing.T) {
	s := NewGormNotificationStore(testDB(t))
	ctx := context.Background()
	seedRecord(t, s, "n1", "u1", "price", models.PriorityHigh, time.Now())

	if err := s.MarkRead(ctx, []string{"n1"}); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	var first models.NotificationRecord
	if err := s.db.First(&first, "id = ?", "n1").Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !first.Read || first.ReadAt == nil {
		t.Fatalf("record not marked read: %+v", first)
	}
	readAt := *first.ReadAt

	time.Sleep(10 * time.Millisecond)
	if err := s.MarkRead(ctx, []string{"n1"}); err != nil {
		t.Fatalf("second mark read: %v", err)
	}
	var second models.NotificationRecord
	if err := s.db.First(&second, "id = ?", "n1").Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !second.ReadAt.Equal(readAt) {
		t.Fatalf("repeat mark read must not move read_at: %v vs %v", second.ReadAt, readAt)
	}

	count, err := s.UnreadCount(ctx, "u1")
	if err != nil || count != 0 {
		t.Fatalf("unread count = %d, err %v", count, err)
	}
}

func TestArchiveHidesFromHistory(t *testing.T) {
	s := NewGormNotificationStore(testDB(t))
	ctx := context.Background()
	seedRecord(t, s, "n1", "u1", "price", models.PriorityHigh, time.Now())

	if err := s.Archive(ctx, []string{"n1"}); err != nil {
		t.Fatalf("archive: %v", err)
	}
	_, total, err := s.FindHistory(ctx, "u1", models.HistoryFilter{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 0 {
		t.Fatalf("archived record visible in default history")
	}
	_, total, err = s.FindHistory(ctx, "u1", models.HistoryFilter{Archived: true})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 1 {
		t.Fatalf("archived record missing from archived view")
	}
}

func TestSnoozeHidesUntil(t *testing.T) {
	s := NewGormNotificationStore(testDB(t))
	ctx := context.Background()
	seedRecord(t, s, "n1", "u1", "price", models.PriorityHigh, time.Now())

	if err := s.Snooze(ctx, "n1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("snooze: %v", err)
	}
	_, total, err := s.FindHistory(ctx, "u1", models.HistoryFilter{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 0 {
		t.Fatalf("snoozed record should be hidden")
	}

	if err := s.Snooze(ctx, "n1", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("snooze: %v", err)
	}
	_, total, err = s.FindHistory(ctx, "u1", models.HistoryFilter{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 1 {
		t.Fatalf("expired snooze should restore visibility")
	}
}

func TestFindGroupsAggregation(t *testing.T) {
	s := NewGormNotificationStore(testDB(t))
	ctx := context.Background()
	now := time.Now()

	a := seedRecord(t, s, "n1", "u1", "price", models.PriorityMedium, now.Add(-3*time.Minute))
	b := seedRecord(t, s, "n2", "u1", "price", models.PriorityCritical, now.Add(-2*time.Minute))
	c := seedRecord(t, s, "n3", "u1", "price", models.PriorityLow, now.Add(-time.Minute))
	_ = a
	_ = b
	seedRecord(t, s, "n4", "u1", "sentiment", models.PriorityMedium, now)

	groups, err := s.FindGroups(ctx, "u1")
	if err != nil {
		t.Fatalf("groups: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	var priceGroup *models.NotificationGroup
	for i := range groups {
		if groups[i].Type == "price" {
			priceGroup = &groups[i]
		}
	}
	if priceGroup == nil {
		t.Fatalf("price group missing")
	}
	if priceGroup.Count != 3 {
		t.Fatalf("price group count = %d, want 3", priceGroup.Count)
	}
	if priceGroup.HighestPriority != models.PriorityCritical {
		t.Fatalf("highest priority = %s, want critical", priceGroup.HighestPriority)
	}
	if priceGroup.Latest == nil || priceGroup.Latest.ID != c.ID {
		t.Fatalf("latest should be newest record in group")
	}
}

func TestFindForDigestWindow(t *testing.T) {
	s := NewGormNotificationStore(testDB(t))
	ctx := context.Background()
	now := time.Now().Truncate(time.Hour)

	seedRecord(t, s, "n1", "u1", "price", models.PriorityHigh, now.Add(-30*time.Minute))
	seedRecord(t, s, "n2", "u1", "price", models.PriorityHigh, now.Add(-90*time.Minute))

	recs, err := s.FindForDigest(ctx, "u1", now.Add(-time.Hour), now)
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "n1" {
		t.Fatalf("digest window should cover [from, to): got %d records", len(recs))
	}
}
