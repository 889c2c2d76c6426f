package quiethours

import (
	"testing"
	"time"

	"AlertPulse/internal/domain/models"
)

func settings(enabled bool, start, end string) *models.NotificationSettings {
	return &models.NotificationSettings{
		QuietHoursEnabled: enabled,
		QuietHoursStart:   start,
		QuietHoursEnd:     end,
	}
}

func at(hour, min int) time.Time {
	return time.Date(2024, 5, 1, hour, min, 0, 0, time.UTC)
}

func TestOvernightWindow(t *testing.T) {
	s := settings(true, "22:00", "08:00")

	if !IsQuiet(at(23, 0), s) {
		t.Fatalf("23:00 should be quiet")
	}
	if !IsQuiet(at(3, 30), s) {
		t.Fatalf("03:30 should be quiet")
	}
	if IsQuiet(at(12, 0), s) {
		t.Fatalf("12:00 should not be quiet")
	}
	if !IsQuiet(at(22, 0), s) {
		t.Fatalf("window start is inclusive")
	}
	if IsQuiet(at(8, 0), s) {
		t.Fatalf("window end is exclusive")
	}
}

func TestDaytimeWindow(t *testing.T) {
	s := settings(true, "13:00", "14:00")
	if !IsQuiet(at(13, 30), s) {
		t.Fatalf("13:30 should be quiet")
	}
	if IsQuiet(at(14, 0), s) {
		t.Fatalf("14:00 should not be quiet")
	}
}

func TestDisabledOrInvalid(t *testing.T) {
	if IsQuiet(at(23, 0), settings(false, "22:00", "08:00")) {
		t.Fatalf("disabled settings should never be quiet")
	}
	if IsQuiet(at(23, 0), settings(true, "bogus", "08:00")) {
		t.Fatalf("unparseable start should disable the window")
	}
	if IsQuiet(at(23, 0), nil) {
		t.Fatalf("nil settings should never be quiet")
	}
	if IsQuiet(at(23, 0), settings(true, "09:00", "09:00")) {
		t.Fatalf("zero-length window should never be quiet")
	}
}

func TestCriticalBypass(t *testing.T) {
	s := settings(true, "22:00", "08:00")
	if Suppressed(at(23, 0), s, models.PriorityCritical) {
		t.Fatalf("critical must bypass quiet hours")
	}
	if !Suppressed(at(23, 0), s, models.PriorityHigh) {
		t.Fatalf("high priority should be suppressed during quiet hours")
	}
	if Suppressed(at(12, 0), s, models.PriorityLow) {
		t.Fatalf("nothing suppressed outside the window")
	}
}
