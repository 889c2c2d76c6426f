package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"AlertPulse/internal/domain/models"
	"AlertPulse/internal/domain/repository"
)

var _ repository.NotificationStore = (*GormNotificationStore)(nil)

// groupScanCap bounds how many recent records the group aggregation reads.
const groupScanCap = 500

// GormNotificationStore implements NotificationStore on a relational
// database via GORM.
type GormNotificationStore struct {
	db *gorm.DB
}

func NewGormNotificationStore(db *gorm.DB) *GormNotificationStore {
	return &GormNotificationStore{db: db}
}

// Migrate ensures the notification tables exist.
func (s *GormNotificationStore) Migrate() error {
	return s.db.AutoMigrate(&models.NotificationRecord{})
}

func (s *GormNotificationStore) Create(ctx context.Context, rec *models.NotificationRecord) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (s *GormNotificationStore) FindHistory(ctx context.Context, userID string, f models.HistoryFilter) ([]models.NotificationRecord, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.NotificationRecord{}).
		Where("user_id = ?", userID).
		Where("archived = ?", f.Archived)

	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.AssetSymbol != "" {
		q = q.Where("asset_symbol = ?", f.AssetSymbol)
	}
	if !f.From.IsZero() {
		q = q.Where("sent_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("sent_at <= ?", f.To)
	}
	if f.UnreadOnly {
		q = q.Where("read = ?", false)
	}
	// Snoozed records stay hidden until their timestamp passes.
	q = q.Where("snoozed_until IS NULL OR snoozed_until <= ?", time.Now())

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count history: %w", err)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 50
	}

	var recs []models.NotificationRecord
	err := q.Order("sent_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("find history: %w", err)
	}
	return recs, total, nil
}

func (s *GormNotificationStore) FindRecent(ctx context.Context, userID, notifType string, since time.Time) ([]models.NotificationRecord, error) {
	var recs []models.NotificationRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND sent_at >= ?", userID, notifType, since).
		Order("sent_at DESC").
		Limit(groupScanCap).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("find recent: %w", err)
	}
	return recs, nil
}

// FindGroups aggregates by group id: the most recent record represents the
// group, membership is counted, and the highest priority wins. Aggregation
// happens in memory over a bounded recent window so the query stays portable.
func (s *GormNotificationStore) FindGroups(ctx context.Context, userID string) ([]models.NotificationGroup, error) {
	var recs []models.NotificationRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND archived = ? AND group_id <> ''", userID, false).
		Order("sent_at DESC").
		Limit(groupScanCap).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("find groups: %w", err)
	}

	byGroup := make(map[string]*models.NotificationGroup)
	order := make([]string, 0)
	for i := range recs {
		r := &recs[i]
		g, ok := byGroup[r.GroupID]
		if !ok {
			g = &models.NotificationGroup{
				GroupID:         r.GroupID,
				Type:            r.Type,
				HighestPriority: r.Priority,
				Latest:          r, // rows arrive newest first
			}
			byGroup[r.GroupID] = g
			order = append(order, r.GroupID)
		}
		g.Count++
		if models.PriorityRank(r.Priority) > models.PriorityRank(g.HighestPriority) {
			g.HighestPriority = r.Priority
		}
	}

	groups := make([]models.NotificationGroup, 0, len(order))
	for _, id := range order {
		groups = append(groups, *byGroup[id])
	}
	return groups, nil
}

func (s *GormNotificationStore) FindForDigest(ctx context.Context, userID string, from, to time.Time) ([]models.NotificationRecord, error) {
	var recs []models.NotificationRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND archived = ? AND sent_at >= ? AND sent_at < ?", userID, false, from, to).
		Order("sent_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("find for digest: %w", err)
	}
	return recs, nil
}

// MarkRead is idempotent: marking an already-read record again is a no-op
// with the same observable result.
func (s *GormNotificationStore) MarkRead(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	err := s.db.WithContext(ctx).Model(&models.NotificationRecord{}).
		Where("id IN ? AND read = ?", ids, false).
		Updates(map[string]interface{}{"read": true, "read_at": now}).Error
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

func (s *GormNotificationStore) MarkAllRead(ctx context.Context, userID string) error {
	now := time.Now()
	err := s.db.WithContext(ctx).Model(&models.NotificationRecord{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]interface{}{"read": true, "read_at": now}).Error
	if err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

func (s *GormNotificationStore) Archive(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&models.NotificationRecord{}).
		Where("id IN ? AND archived = ?", ids, false).
		Update("archived", true).Error
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	return nil
}

// Snooze suppresses a record's visibility until the given timestamp without
// deleting it.
func (s *GormNotificationStore) Snooze(ctx context.Context, id string, until time.Time) error {
	err := s.db.WithContext(ctx).Model(&models.NotificationRecord{}).
		Where("id = ?", id).
		Update("snoozed_until", until).Error
	if err != nil {
		return fmt.Errorf("snooze: %w", err)
	}
	return nil
}

func (s *GormNotificationStore) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.NotificationRecord{}).
		Where("user_id = ? AND read = ? AND archived = ?", userID, false, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("unread count: %w", err)
	}
	return count, nil
}
