package usecase

import (
	"math"

	"AlertPulse/internal/domain/models"
)

// AlertRuleEvaluator decides, per rule, whether an incoming signal fires.
// Pure decision functions over supplied data; no side effects.
type AlertRuleEvaluator struct{}

func NewAlertRuleEvaluator() *AlertRuleEvaluator { return &AlertRuleEvaluator{} }

// ResolveRules selects the rules to evaluate for a user and signal:
// asset-specific rows when any exist for the signal's asset, otherwise the
// user's global rows, otherwise the built-in default. A user may legitimately
// hold several matching rows; each fires independently.
func (e *AlertRuleEvaluator) ResolveRules(userID string, rules []models.AlertSetting, sig *models.Signal) []models.AlertSetting {
	var assetRules, globalRules []models.AlertSetting
	for _, r := range rules {
		switch {
		case r.AssetSymbol == sig.AssetSymbol:
			assetRules = append(assetRules, r)
		case r.IsGlobal():
			globalRules = append(globalRules, r)
		}
	}
	if len(assetRules) > 0 {
		return assetRules
	}
	if len(globalRules) > 0 {
		return globalRules
	}
	return []models.AlertSetting{*models.DefaultAlertSetting(userID)}
}

// ShouldFire applies a single rule to the signal. Threshold comparisons are
// boundary-inclusive: a value exactly at the threshold fires.
func (e *AlertRuleEvaluator) ShouldFire(sig *models.Signal, rule *models.AlertSetting) bool {
	switch sig.Kind {
	case models.KindPrice:
		if !rule.EnablePriceAlerts {
			return false
		}
		change, ok := sig.PriceChange()
		if !ok {
			return false
		}
		return math.Abs(change) >= rule.PriceChangeThreshold
	case models.KindSentiment:
		return rule.EnableSentimentAlerts && sig.Strength >= rule.SentimentThreshold
	case models.KindNarrative:
		return rule.EnableNarrativeAlerts && sig.Strength >= rule.SentimentThreshold
	case models.KindVolume:
		return rule.EnableVolumeAlerts
	case models.KindNews:
		return rule.EnableNewsAlerts
	default:
		return false
	}
}
