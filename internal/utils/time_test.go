package utils

import (
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "empty string returns local", timezone: "", wantErr: false},
		{name: "Local returns local", timezone: "Local", wantErr: false},
		{name: "valid timezone UTC", timezone: "UTC", wantErr: false},
		{name: "valid timezone Europe/Paris", timezone: "Europe/Paris", wantErr: false},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadLocation() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation() returned nil location without error")
			}
		})
	}
}

func TestStartOfDay(t *testing.T) {
	paris, _ := time.LoadLocation("Europe/Paris")
	in := time.Date(2026, 10, 19, 21, 45, 12, 99, paris)
	got := StartOfDay(in)
	want := time.Date(2026, 10, 19, 0, 0, 0, 0, paris)
	if !got.Equal(want) || got.Location() != paris {
		t.Errorf("StartOfDay() = %v, want %v", got, want)
	}
}

func TestDaysBetween(t *testing.T) {
	paris, _ := time.LoadLocation("Europe/Paris")
	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{
			name: "same day different hours",
			from: time.Date(2026, 10, 19, 1, 0, 0, 0, paris),
			to:   time.Date(2026, 10, 19, 23, 0, 0, 0, paris),
			want: 0,
		},
		{
			name: "across DST end",
			from: time.Date(2026, 10, 24, 12, 0, 0, 0, paris),
			to:   time.Date(2026, 10, 26, 0, 0, 0, 0, paris),
			want: 2,
		},
		{
			name: "past date is negative",
			from: time.Date(2026, 10, 19, 0, 0, 0, 0, paris),
			to:   time.Date(2026, 10, 12, 0, 0, 0, 0, paris),
			want: -7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.from, tt.to); got != tt.want {
				t.Errorf("DaysBetween() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAtTimeOfDay(t *testing.T) {
	base := time.Date(2026, 10, 19, 17, 3, 0, 0, time.UTC)
	got, err := AtTimeOfDay(base, "09:30")
	if err != nil {
		t.Fatalf("AtTimeOfDay() error = %v", err)
	}
	if got.Hour() != 9 || got.Minute() != 30 || got.Day() != 19 {
		t.Errorf("AtTimeOfDay() = %v", got)
	}
	if _, err := AtTimeOfDay(base, "9h30"); err == nil {
		t.Error("expected error for malformed time")
	}
}

func TestValidateTimezone(t *testing.T) {
	tests := []struct {
		timezone string
		want     bool
	}{
		{"", true},
		{"Local", true},
		{"UTC", true},
		{"Europe/Paris", true},
		{"Invalid/Timezone", false},
		{"not-a-timezone", false},
	}

	for _, tt := range tests {
		t.Run(tt.timezone, func(t *testing.T) {
			if got := ValidateTimezone(tt.timezone); got != tt.want {
				t.Errorf("ValidateTimezone(%q) = %v, want %v", tt.timezone, got, tt.want)
			}
		})
	}
}
