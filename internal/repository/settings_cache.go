package repository

import (
	"context"
	"time"

	"AlertPulse/internal/domain/models"
	"AlertPulse/internal/domain/repository"
	"AlertPulse/pkg/cache"
)

const settingsCacheTTL = time.Minute

// CachedSettingsStore is a read-through cache in front of a SettingsStore.
// The pipeline reads settings for every (signal, user) pair, so the hot reads
// go through the layered cache; every write invalidates the user's keys.
type CachedSettingsStore struct {
	inner repository.SettingsStore
	cache cache.Service
}

func NewCachedSettingsStore(inner repository.SettingsStore, c cache.Service) *CachedSettingsStore {
	return &CachedSettingsStore{inner: inner, cache: c}
}

func notifKey(userID string) string  { return cache.GenerateKey("settings:notif", userID) }
func rulesKey(userID string) string  { return cache.GenerateKey("settings:rules", userID) }
func tokensKey(userID string) string { return cache.GenerateKey("settings:tokens", userID) }

func (s *CachedSettingsStore) GetNotificationSettings(ctx context.Context, userID string) (*models.NotificationSettings, error) {
	var cached models.NotificationSettings
	if err := s.cache.Get(ctx, notifKey(userID), &cached); err == nil {
		return &cached, nil
	}
	ns, err := s.inner.GetNotificationSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, notifKey(userID), ns, settingsCacheTTL)
	return ns, nil
}

func (s *CachedSettingsStore) SaveNotificationSettings(ctx context.Context, ns *models.NotificationSettings) error {
	if err := s.inner.SaveNotificationSettings(ctx, ns); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, notifKey(ns.UserID))
	return nil
}

func (s *CachedSettingsStore) ListAlertSettings(ctx context.Context, userID string) ([]models.AlertSetting, error) {
	var cached []models.AlertSetting
	if err := s.cache.Get(ctx, rulesKey(userID), &cached); err == nil {
		return cached, nil
	}
	rules, err := s.inner.ListAlertSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, rulesKey(userID), rules, settingsCacheTTL)
	return rules, nil
}

func (s *CachedSettingsStore) SaveAlertSetting(ctx context.Context, rule *models.AlertSetting) error {
	if err := s.inner.SaveAlertSetting(ctx, rule); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, rulesKey(rule.UserID))
	return nil
}

func (s *CachedSettingsStore) DeleteAlertSetting(ctx context.Context, userID string, id uint) error {
	if err := s.inner.DeleteAlertSetting(ctx, userID, id); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, rulesKey(userID))
	return nil
}

func (s *CachedSettingsStore) ListDeviceTokens(ctx context.Context, userID string) ([]models.DeviceToken, error) {
	var cached []models.DeviceToken
	if err := s.cache.Get(ctx, tokensKey(userID), &cached); err == nil {
		return cached, nil
	}
	tokens, err := s.inner.ListDeviceTokens(ctx, userID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, tokensKey(userID), tokens, settingsCacheTTL)
	return tokens, nil
}

func (s *CachedSettingsStore) SaveDeviceToken(ctx context.Context, t *models.DeviceToken) error {
	if err := s.inner.SaveDeviceToken(ctx, t); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, tokensKey(t.UserID))
	return nil
}

func (s *CachedSettingsStore) DeleteDeviceToken(ctx context.Context, userID, token string) error {
	if err := s.inner.DeleteDeviceToken(ctx, userID, token); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, tokensKey(userID))
	return nil
}

// ListSubscribers is not cached: its result spans users and staleness here
// would hide newly subscribed users from live signals.
func (s *CachedSettingsStore) ListSubscribers(ctx context.Context, assetSymbol string) ([]string, error) {
	return s.inner.ListSubscribers(ctx, assetSymbol)
}

func (s *CachedSettingsStore) ListDigestUsers(ctx context.Context, period models.DigestPeriod) ([]string, error) {
	return s.inner.ListDigestUsers(ctx, period)
}

var _ repository.SettingsStore = (*CachedSettingsStore)(nil)
