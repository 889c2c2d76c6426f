package models

// Requests for the notification and settings HTTP endpoints. Defined in
// domain for consistency and reuse.

type HistoryRequest struct {
	Type     string `query:"type" json:"type" validate:"omitempty,oneof=price sentiment narrative volume news"`
	Priority string `query:"priority" json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Asset    string `query:"asset" json:"asset"`
	From     string `query:"from" json:"from"`
	To       string `query:"to" json:"to"`
	Unread   bool   `query:"unread" json:"unread"`
	Archived bool   `query:"archived" json:"archived"`
	Page     int    `query:"page" json:"page" default:"1" validate:"gte=1"`
	Limit    int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=200"`
}

type MarkReadRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

type ArchiveRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

type SnoozeRequest struct {
	Until string `json:"until" validate:"required"`
}

type AlertSettingRequest struct {
	AssetSymbol           string  `json:"asset_symbol"`
	EnablePriceAlerts     bool    `json:"enable_price_alerts"`
	EnableSentimentAlerts bool    `json:"enable_sentiment_alerts"`
	EnableNarrativeAlerts bool    `json:"enable_narrative_alerts"`
	EnableVolumeAlerts    bool    `json:"enable_volume_alerts"`
	EnableNewsAlerts      bool    `json:"enable_news_alerts"`
	SentimentThreshold    float64 `json:"sentiment_threshold" validate:"gte=0,lte=100"`
	PriceChangeThreshold  float64 `json:"price_change_threshold" validate:"gte=0"`
	PushEnabled           bool    `json:"push_enabled"`
	EmailEnabled          bool    `json:"email_enabled"`
	AlertFrequency        string  `json:"alert_frequency" default:"instant" validate:"oneof=instant hourly daily"`
}

type NotificationSettingsRequest struct {
	PushEnabled       bool   `json:"push_enabled"`
	EmailEnabled      bool   `json:"email_enabled"`
	EmailAddress      string `json:"email_address" validate:"omitempty,email"`
	SoundEnabled      bool   `json:"sound_enabled"`
	GroupingEnabled   bool   `json:"grouping_enabled"`
	PriorityThreshold string `json:"priority_threshold" default:"low" validate:"oneof=low medium high critical"`
	QuietHoursEnabled bool   `json:"quiet_hours_enabled"`
	QuietHoursStart   string `json:"quiet_hours_start" default:"22:00"`
	QuietHoursEnd     string `json:"quiet_hours_end" default:"08:00"`
	MaxPerHour        string `json:"max_per_hour"`
	EmailDigest       string `json:"email_digest" default:"off" validate:"oneof=off hourly daily weekly"`
}

type DeviceTokenRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required,oneof=ios android web"`
}

type SignalRequest struct {
	AssetSymbol string         `json:"asset_symbol" validate:"required"`
	Kind        string         `json:"kind" validate:"required,oneof=price sentiment narrative volume news"`
	Strength    float64        `json:"strength" validate:"gte=0,lte=100"`
	Description string         `json:"description"`
	Sources     []SignalSource `json:"sources"`
}

type RecentSignalsRequest struct {
	Symbol string `query:"symbol" json:"symbol"`
	Kind   string `query:"kind" json:"kind" validate:"omitempty,oneof=price sentiment narrative volume news"`
	N      int    `query:"n" json:"n" default:"100" validate:"gte=1,lte=2000"`
}
