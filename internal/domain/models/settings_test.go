package models

import "testing"

func TestHourlyCap(t *testing.T) {
	s := &NotificationSettings{MaxPerHour: `{"price": 3, "news": 10}`}

	if got := s.HourlyCap("price"); got != 3 {
		t.Fatalf("HourlyCap(price) = %d, want 3", got)
	}
	if got := s.HourlyCap("sentiment"); got != 0 {
		t.Fatalf("unlisted type must be uncapped, got %d", got)
	}

	empty := &NotificationSettings{}
	if got := empty.HourlyCap("price"); got != 0 {
		t.Fatalf("empty map must be uncapped, got %d", got)
	}
}

func TestValidateMaxPerHour(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"empty", "", false},
		{"valid", `{"price": 3}`, false},
		{"zero cap", `{"price": 0}`, false},
		{"malformed json", `{"price": `, true},
		{"not an object", `[1, 2]`, true},
		{"non-integer cap", `{"price": "three"}`, true},
		{"negative cap", `{"price": -1}`, true},
	}
	for _, tc := range cases {
		s := &NotificationSettings{MaxPerHour: tc.raw}
		err := s.ValidateMaxPerHour()
		if tc.wantErr && err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
	}
}
