package usecase

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"AlertPulse/internal/domain/models"
)

// NotificationFactory builds unsent NotificationRecords from fired signals.
// Title and body come from a finite template switch on kind and direction;
// they are not user-configurable.
//
// Priority tiering is deterministic and part of the contract:
//   - medium by default
//   - high when |price change| >= 1.5x the rule threshold, or strength >= 85
//   - critical when |price change| >= 2x the rule threshold, or strength >= 95
type NotificationFactory struct {
	nowFn func() time.Time
}

func NewNotificationFactory() *NotificationFactory {
	return &NotificationFactory{nowFn: time.Now}
}

// WithClock overrides the time source. Test hook.
func (f *NotificationFactory) WithClock(now func() time.Time) *NotificationFactory {
	f.nowFn = now
	return f
}

// Build returns a value object; persistence and delivery happen downstream.
func (f *NotificationFactory) Build(userID string, sig *models.Signal, rule *models.AlertSetting) *models.NotificationRecord {
	title, body := f.template(sig)
	rec := &models.NotificationRecord{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Message:     body,
		Type:        string(sig.Kind),
		Priority:    f.priority(sig, rule),
		AssetSymbol: sig.AssetSymbol,
		SentAt:      f.nowFn(),
	}

	payload := map[string]interface{}{
		"asset_symbol": sig.AssetSymbol,
		"kind":         sig.Kind,
		"strength":     sig.Strength,
		"timestamp":    sig.Timestamp,
	}
	if ch, ok := sig.PriceChange(); ok {
		payload["price_change"] = ch
	}
	if b, err := json.Marshal(payload); err == nil {
		rec.Data = string(b)
	}

	actions := []models.QuickAction{
		{ID: "view_asset", Label: "View " + sig.AssetSymbol},
		{ID: "snooze", Label: "Snooze"},
	}
	if b, err := json.Marshal(actions); err == nil {
		rec.QuickActions = string(b)
	}
	return rec
}

func (f *NotificationFactory) template(sig *models.Signal) (title, body string) {
	switch sig.Kind {
	case models.KindPrice:
		change, _ := sig.PriceChange()
		if sig.Direction() == "down" {
			title = fmt.Sprintf("%s price drop alert", sig.AssetSymbol)
			body = fmt.Sprintf("%s is down %.1f%%", sig.AssetSymbol, math.Abs(change))
		} else {
			title = fmt.Sprintf("%s price increase alert", sig.AssetSymbol)
			body = fmt.Sprintf("%s is up %.1f%%", sig.AssetSymbol, change)
		}
	case models.KindSentiment:
		title = fmt.Sprintf("%s sentiment shift", sig.AssetSymbol)
		body = fmt.Sprintf("Sentiment for %s reached %.0f/100", sig.AssetSymbol, sig.Strength)
	case models.KindNarrative:
		title = fmt.Sprintf("%s narrative change", sig.AssetSymbol)
		body = fmt.Sprintf("A new narrative is forming around %s (strength %.0f)", sig.AssetSymbol, sig.Strength)
	case models.KindVolume:
		title = fmt.Sprintf("%s volume anomaly", sig.AssetSymbol)
		body = fmt.Sprintf("Unusual activity detected for %s", sig.AssetSymbol)
	case models.KindNews:
		title = fmt.Sprintf("%s news alert", sig.AssetSymbol)
		body = sig.Description
	}
	if sig.Description != "" && sig.Kind != models.KindNews {
		body += ": " + sig.Description
	}
	return title, body
}

func (f *NotificationFactory) priority(sig *models.Signal, rule *models.AlertSetting) models.Priority {
	if sig.Kind == models.KindPrice && rule.PriceChangeThreshold > 0 {
		change, ok := sig.PriceChange()
		if ok {
			abs := math.Abs(change)
			switch {
			case abs >= 2*rule.PriceChangeThreshold:
				return models.PriorityCritical
			case abs >= 1.5*rule.PriceChangeThreshold:
				return models.PriorityHigh
			}
		}
		return models.PriorityMedium
	}
	switch {
	case sig.Strength >= 95:
		return models.PriorityCritical
	case sig.Strength >= 85:
		return models.PriorityHigh
	default:
		return models.PriorityMedium
	}
}
