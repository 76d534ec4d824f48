package appointment

import (
	"testing"
	"time"
)

func TestParseStartPeriodMarkers(t *testing.T) {
	cases := []struct {
		clock      string
		wantHour   int
		wantMinute int
	}{
		{"12:00 AM", 0, 0},
		{"12:00 PM", 12, 0},
		{"01:30 PM", 13, 30},
		{"11:59 PM", 23, 59},
		{"09:15 AM", 9, 15},
		{"14:05", 14, 5},
		{"12:30 pm", 12, 30},
	}

	for _, tc := range cases {
		ts, err := ParseStart("2026-03-14", tc.clock, time.UTC)
		if err != nil {
			t.Fatalf("ParseStart(%q) error: %v", tc.clock, err)
		}
		if ts.Hour() != tc.wantHour || ts.Minute() != tc.wantMinute {
			t.Fatalf("ParseStart(%q) = %02d:%02d, want %02d:%02d",
				tc.clock, ts.Hour(), ts.Minute(), tc.wantHour, tc.wantMinute)
		}
	}
}

func TestParseStartDefaults(t *testing.T) {
	ts, err := ParseStart("2026-03-14", "", time.UTC)
	if err != nil {
		t.Fatalf("empty clock should default to midnight: %v", err)
	}
	if ts.Hour() != 0 || ts.Minute() != 0 {
		t.Fatalf("got %02d:%02d, want 00:00", ts.Hour(), ts.Minute())
	}

	ts, err = ParseStart("2026-03-14", "10", time.UTC)
	if err != nil {
		t.Fatalf("missing minute should default to :00: %v", err)
	}
	if ts.Hour() != 10 || ts.Minute() != 0 {
		t.Fatalf("got %02d:%02d, want 10:00", ts.Hour(), ts.Minute())
	}
}

func TestParseStartRejectsGarbage(t *testing.T) {
	bad := []struct {
		date  string
		clock string
	}{
		{"", "10:00"},
		{"2026-03-14", "later"},
		{"2026-03-14", "25:00"},
		{"2026-03-14", "10:75"},
		{"2026-03-14", "10:00 XM"},
		{"not-a-date", "10:00"},
		{"2026-13-40", "10:00"},
	}
	for _, tc := range bad {
		if _, err := ParseStart(tc.date, tc.clock, time.UTC); err == nil {
			t.Fatalf("ParseStart(%q, %q) should fail", tc.date, tc.clock)
		}
	}
}
