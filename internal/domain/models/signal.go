package models

import (
	"fmt"
	"time"
)

// SignalKind classifies the analysis feed that produced a signal.
type SignalKind string

const (
	KindPrice     SignalKind = "price"
	KindSentiment SignalKind = "sentiment"
	KindNarrative SignalKind = "narrative"
	KindVolume    SignalKind = "volume"
	KindNews      SignalKind = "news"
)

// SignalSource carries origin detail for a signal. Sentiment-style feeds fill
// OriginPlatform/MentionCount; price feeds fill the price triple.
type SignalSource struct {
	OriginPlatform string  `json:"origin_platform,omitempty"`
	MentionCount   int     `json:"mention_count,omitempty"`
	PriceChange    float64 `json:"price_change,omitempty"`
	CurrentPrice   float64 `json:"current_price,omitempty"`
	PreviousPrice  float64 `json:"previous_price,omitempty"`
}

// Signal is an immutable, timestamped fact about an asset emitted by an
// analysis feed. The pipeline never mutates it.
type Signal struct {
	AssetSymbol string         `json:"asset_symbol"`
	Kind        SignalKind     `json:"kind"`
	Strength    float64        `json:"strength"` // 0-100
	Description string         `json:"description"`
	Sources     []SignalSource `json:"sources"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Validate rejects malformed signals at ingestion.
func (s *Signal) Validate() error {
	if s == nil {
		return fmt.Errorf("signal is nil")
	}
	if s.AssetSymbol == "" {
		return fmt.Errorf("asset symbol empty")
	}
	switch s.Kind {
	case KindPrice, KindSentiment, KindNarrative, KindVolume, KindNews:
	default:
		return fmt.Errorf("unknown signal kind %q", s.Kind)
	}
	if s.Timestamp.IsZero() {
		return fmt.Errorf("timestamp missing")
	}
	if s.Strength < 0 || s.Strength > 100 {
		return fmt.Errorf("strength out of range: %v", s.Strength)
	}
	return nil
}

// PriceChange returns the embedded percentage change from the first price
// source. ok is false when the signal carries no price payload.
func (s *Signal) PriceChange() (change float64, ok bool) {
	for _, src := range s.Sources {
		if src.CurrentPrice != 0 || src.PreviousPrice != 0 || src.PriceChange != 0 {
			return src.PriceChange, true
		}
	}
	return 0, false
}

// Direction derives an up/down hint from the price payload; signals without a
// price source are directionless.
func (s *Signal) Direction() string {
	if ch, ok := s.PriceChange(); ok {
		if ch < 0 {
			return "down"
		}
		return "up"
	}
	return ""
}
