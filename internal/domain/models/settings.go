package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// AlertSetting is a per-user, optionally per-asset rule translating signal
// properties into a fire/no-fire decision. AssetSymbol "" means global.
type AlertSetting struct {
	ID                    uint      `json:"id" gorm:"primaryKey"`
	UserID                string    `json:"user_id" gorm:"size:64;index:idx_alert_settings_user"`
	AssetSymbol           string    `json:"asset_symbol" gorm:"size:20;index"`
	EnablePriceAlerts     bool      `json:"enable_price_alerts"`
	EnableSentimentAlerts bool      `json:"enable_sentiment_alerts"`
	EnableNarrativeAlerts bool      `json:"enable_narrative_alerts"`
	EnableVolumeAlerts    bool      `json:"enable_volume_alerts"`
	EnableNewsAlerts      bool      `json:"enable_news_alerts"`
	SentimentThreshold    float64   `json:"sentiment_threshold"`
	PriceChangeThreshold  float64   `json:"price_change_threshold"`
	PushEnabled           bool      `json:"push_enabled"`
	EmailEnabled          bool      `json:"email_enabled"`
	AlertFrequency        string    `json:"alert_frequency" gorm:"size:20"` // instant, hourly, daily
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// IsGlobal reports whether the rule applies to every asset.
func (a *AlertSetting) IsGlobal() bool { return a.AssetSymbol == "" }

// DefaultAlertSetting is the built-in rule used when a user has configured
// nothing: every kind enabled, sentiment threshold 70, price threshold 5%.
func DefaultAlertSetting(userID string) *AlertSetting {
	return &AlertSetting{
		UserID:                userID,
		EnablePriceAlerts:     true,
		EnableSentimentAlerts: true,
		EnableNarrativeAlerts: true,
		EnableVolumeAlerts:    true,
		EnableNewsAlerts:      true,
		SentimentThreshold:    70,
		PriceChangeThreshold:  5.0,
		PushEnabled:           true,
		EmailEnabled:          false,
		AlertFrequency:        "instant",
	}
}

// DigestPeriod configures email digest batching.
type DigestPeriod string

const (
	DigestOff    DigestPeriod = "off"
	DigestHourly DigestPeriod = "hourly"
	DigestDaily  DigestPeriod = "daily"
	DigestWeekly DigestPeriod = "weekly"
)

// NotificationSettings is the per-user channel configuration.
type NotificationSettings struct {
	UserID            string       `json:"user_id" gorm:"primaryKey;size:64"`
	PushEnabled       bool         `json:"push_enabled"`
	EmailEnabled      bool         `json:"email_enabled"`
	EmailAddress      string       `json:"email_address" gorm:"size:255"`
	SoundEnabled      bool         `json:"sound_enabled"`
	GroupingEnabled   bool         `json:"grouping_enabled"`
	PriorityThreshold Priority     `json:"priority_threshold" gorm:"size:10"`
	QuietHoursEnabled bool         `json:"quiet_hours_enabled"`
	QuietHoursStart   string       `json:"quiet_hours_start" gorm:"size:5"` // "22:00"
	QuietHoursEnd     string       `json:"quiet_hours_end" gorm:"size:5"`   // "08:00"
	MaxPerHour        string       `json:"max_per_hour"`                    // JSON map alertType -> cap
	EmailDigest       DigestPeriod `json:"email_digest" gorm:"size:10"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// DefaultNotificationSettings is created on first use.
func DefaultNotificationSettings(userID string) *NotificationSettings {
	return &NotificationSettings{
		UserID:            userID,
		PushEnabled:       true,
		EmailEnabled:      false,
		SoundEnabled:      true,
		GroupingEnabled:   true,
		PriorityThreshold: PriorityLow,
		QuietHoursEnabled: false,
		QuietHoursStart:   "22:00",
		QuietHoursEnd:     "08:00",
		EmailDigest:       DigestOff,
	}
}

// HourlyCap returns the per-hour cap for an alert type; 0 means uncapped.
func (s *NotificationSettings) HourlyCap(alertType string) int {
	if s.MaxPerHour == "" {
		return 0
	}
	caps := map[string]int{}
	if err := json.Unmarshal([]byte(s.MaxPerHour), &caps); err != nil {
		return 0
	}
	return caps[alertType]
}

// ValidateMaxPerHour checks the per-type cap map. Empty means uncapped;
// anything else must be a JSON object of non-negative integer caps.
func (s *NotificationSettings) ValidateMaxPerHour() error {
	if s.MaxPerHour == "" {
		return nil
	}
	caps := map[string]int{}
	if err := json.Unmarshal([]byte(s.MaxPerHour), &caps); err != nil {
		return fmt.Errorf("max_per_hour must be a JSON object of integer caps: %w", err)
	}
	for alertType, n := range caps {
		if n < 0 {
			return fmt.Errorf("max_per_hour cap for %s must not be negative", alertType)
		}
	}
	return nil
}

// DeviceToken is a registered push target for a user.
type DeviceToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"size:64;index"`
	Token     string    `json:"token" gorm:"size:512;uniqueIndex"`
	Platform  string    `json:"platform" gorm:"size:10"` // ios, android, web
	CreatedAt time.Time `json:"created_at"`
}
