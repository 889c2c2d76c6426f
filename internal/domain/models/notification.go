package models

import "time"

// Priority orders notifications for suppression and display decisions.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// PriorityRank maps a priority to a comparable weight.
func PriorityRank(p Priority) int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	case PriorityCritical:
		return 3
	default:
		return 1
	}
}

// QuickAction is an action the client may execute against a notification.
type QuickAction struct {
	ID    string `json:"id"`    // view_asset, snooze
	Label string `json:"label"`
}

// NotificationRecord is the persisted, user-visible unit produced when a rule
// fires. Records are never deleted, only archived.
type NotificationRecord struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	UserID       string     `json:"user_id" gorm:"size:64;index:idx_notifications_user"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	Type         string     `json:"type" gorm:"size:30;index"`
	Priority     Priority   `json:"priority" gorm:"size:10"`
	AssetSymbol  string     `json:"asset_symbol,omitempty" gorm:"size:20;index"`
	Data         string     `json:"data,omitempty"` // JSON payload referencing the originating signal
	GroupID      string     `json:"group_id,omitempty" gorm:"size:36;index"`
	Read         bool       `json:"read" gorm:"default:false;index"`
	Archived     bool       `json:"archived" gorm:"default:false;index"`
	SnoozedUntil *time.Time `json:"snoozed_until,omitempty"`
	SentAt       time.Time  `json:"sent_at" gorm:"index"`
	ReadAt       *time.Time `json:"read_at,omitempty"`
	QuickActions string     `json:"quick_actions,omitempty"` // JSON-encoded []QuickAction
}

// NotificationGroup is the aggregate view of a cluster of records sharing a
// group id. It is derived by query, not stored.
type NotificationGroup struct {
	GroupID         string              `json:"group_id"`
	Type            string              `json:"type"`
	Count           int64               `json:"count"`
	HighestPriority Priority            `json:"highest_priority"`
	Latest          *NotificationRecord `json:"latest"`
}

// DeliveryOutcome reports which channels a dispatch reached. Diagnostics
// only; it never drives retries.
type DeliveryOutcome struct {
	LiveSession bool `json:"live_session"`
	Push        bool `json:"push"`
	Email       bool `json:"email"`
}

// HistoryFilter narrows FindHistory queries.
type HistoryFilter struct {
	Type        string
	Priority    Priority
	AssetSymbol string
	From        time.Time
	To          time.Time
	UnreadOnly  bool
	Archived    bool
	Page        int
	Limit       int
}
