package quiethours

import (
	"time"

	"AlertPulse/internal/domain/models"
)

// IsQuiet reports whether non-urgent delivery is suppressed at now per the
// user's quiet-hours window. Windows with start > end wrap midnight
// (22:00-08:00 covers the whole night).
func IsQuiet(now time.Time, s *models.NotificationSettings) bool {
	if s == nil || !s.QuietHoursEnabled {
		return false
	}
	start, ok := parseClock(s.QuietHoursStart)
	if !ok {
		return false
	}
	end, ok := parseClock(s.QuietHoursEnd)
	if !ok {
		return false
	}
	cur := now.Hour()*60 + now.Minute()
	if start == end {
		return false
	}
	if start < end {
		return cur >= start && cur < end
	}
	// overnight window
	return cur >= start || cur < end
}

// Suppressed reports whether a record of the given priority must be withheld
// from live/push/email channels at now. Critical always bypasses.
func Suppressed(now time.Time, s *models.NotificationSettings, p models.Priority) bool {
	if p == models.PriorityCritical {
		return false
	}
	return IsQuiet(now, s)
}

// parseClock converts "HH:MM" into minutes since midnight.
func parseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
