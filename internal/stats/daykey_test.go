package stats

import (
	"testing"
	"time"
)

func TestDayKeyFormat(t *testing.T) {
	got := DayKey(time.Date(2024, 3, 7, 9, 30, 0, 0, time.UTC))
	if got != "2024-03-07" {
		t.Errorf("DayKey = %q, want 2024-03-07", got)
	}
}

func TestDayKeyUsesLocalCalendarDay(t *testing.T) {
	// 23:30 in UTC-5 is 04:30 the next day in UTC. The key must follow
	// the instant's own location, not UTC.
	est := time.FixedZone("EST", -5*3600)
	instant := time.Date(2024, 1, 1, 23, 30, 0, 0, est)

	if got := DayKey(instant); got != "2024-01-01" {
		t.Errorf("local key = %q, want 2024-01-01", got)
	}
	if got := DayKey(instant.UTC()); got != "2024-01-02" {
		t.Errorf("UTC key = %q, want 2024-01-02", got)
	}
}

func TestDayKeyLexicographicOrder(t *testing.T) {
	// Zero-padded keys sort chronologically as plain strings.
	earlier := DayKey(time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC))
	later := DayKey(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC))
	if !(earlier < later) {
		t.Errorf("expected %q < %q", earlier, later)
	}
}

func TestParseDayKeyRoundTrip(t *testing.T) {
	day, err := parseDayKey("2024-02-29")
	if err != nil {
		t.Fatalf("parseDayKey: %v", err)
	}
	if DayKey(day) != "2024-02-29" {
		t.Errorf("round trip = %q", DayKey(day))
	}
}
