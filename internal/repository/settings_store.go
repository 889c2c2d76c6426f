package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"AlertPulse/internal/domain/models"
	"AlertPulse/internal/domain/repository"
)

// GormSettingsStore implements SettingsStore on a relational database via
// GORM.
type GormSettingsStore struct {
	db *gorm.DB
}

func NewGormSettingsStore(db *gorm.DB) *GormSettingsStore {
	return &GormSettingsStore{db: db}
}

// Migrate ensures the settings tables exist.
func (s *GormSettingsStore) Migrate() error {
	return s.db.AutoMigrate(
		&models.NotificationSettings{},
		&models.AlertSetting{},
		&models.DeviceToken{},
	)
}

// GetNotificationSettings returns the user's channel configuration, creating
// defaults on first use.
func (s *GormSettingsStore) GetNotificationSettings(ctx context.Context, userID string) (*models.NotificationSettings, error) {
	var ns models.NotificationSettings
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&ns).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		def := models.DefaultNotificationSettings(userID)
		if err := s.db.WithContext(ctx).Create(def).Error; err != nil {
			return nil, fmt.Errorf("create default settings: %w", err)
		}
		return def, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &ns, nil
}

func (s *GormSettingsStore) SaveNotificationSettings(ctx context.Context, ns *models.NotificationSettings) error {
	if err := s.db.WithContext(ctx).Save(ns).Error; err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *GormSettingsStore) ListAlertSettings(ctx context.Context, userID string) ([]models.AlertSetting, error) {
	var rules []models.AlertSetting
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("list alert settings: %w", err)
	}
	return rules, nil
}

func (s *GormSettingsStore) SaveAlertSetting(ctx context.Context, rule *models.AlertSetting) error {
	if err := s.db.WithContext(ctx).Save(rule).Error; err != nil {
		return fmt.Errorf("save alert setting: %w", err)
	}
	return nil
}

func (s *GormSettingsStore) DeleteAlertSetting(ctx context.Context, userID string, id uint) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&models.AlertSetting{}).Error
	if err != nil {
		return fmt.Errorf("delete alert setting: %w", err)
	}
	return nil
}

func (s *GormSettingsStore) ListDeviceTokens(ctx context.Context, userID string) ([]models.DeviceToken, error) {
	var tokens []models.DeviceToken
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&tokens).Error
	if err != nil {
		return nil, fmt.Errorf("list device tokens: %w", err)
	}
	return tokens, nil
}

func (s *GormSettingsStore) SaveDeviceToken(ctx context.Context, t *models.DeviceToken) error {
	// Re-registering the same token moves it to the current user.
	var existing models.DeviceToken
	err := s.db.WithContext(ctx).Where("token = ?", t.Token).First(&existing).Error
	if err == nil {
		existing.UserID = t.UserID
		existing.Platform = t.Platform
		return s.db.WithContext(ctx).Save(&existing).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("save device token: %w", err)
	}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("save device token: %w", err)
	}
	return nil
}

func (s *GormSettingsStore) DeleteDeviceToken(ctx context.Context, userID, token string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, token).
		Delete(&models.DeviceToken{}).Error
	if err != nil {
		return fmt.Errorf("delete device token: %w", err)
	}
	return nil
}

// ListSubscribers returns the users whose configuration makes them candidates
// for a signal on the asset: anyone with an asset-specific or global alert
// rule, plus anyone with a notification-settings row (those fall through to
// the built-in default rule).
func (s *GormSettingsStore) ListSubscribers(ctx context.Context, assetSymbol string) ([]string, error) {
	var fromRules []string
	err := s.db.WithContext(ctx).Model(&models.AlertSetting{}).
		Where("asset_symbol = ? OR asset_symbol = ''", assetSymbol).
		Distinct().
		Pluck("user_id", &fromRules).Error
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}

	var fromSettings []string
	err = s.db.WithContext(ctx).Model(&models.NotificationSettings{}).
		Distinct().
		Pluck("user_id", &fromSettings).Error
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}

	seen := make(map[string]struct{}, len(fromRules)+len(fromSettings))
	out := make([]string, 0, len(fromRules)+len(fromSettings))
	for _, lst := range [][]string{fromRules, fromSettings} {
		for _, uid := range lst {
			if _, ok := seen[uid]; ok {
				continue
			}
			seen[uid] = struct{}{}
			out = append(out, uid)
		}
	}
	return out, nil
}

func (s *GormSettingsStore) ListDigestUsers(ctx context.Context, period models.DigestPeriod) ([]string, error) {
	var users []string
	err := s.db.WithContext(ctx).Model(&models.NotificationSettings{}).
		Where("email_enabled = ? AND email_digest = ?", true, period).
		Pluck("user_id", &users).Error
	if err != nil {
		return nil, fmt.Errorf("list digest users: %w", err)
	}
	return users, nil
}

var _ repository.SettingsStore = (*GormSettingsStore)(nil)
