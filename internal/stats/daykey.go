package stats

import "time"

const dayKeyLayout = "2006-01-02"

// DayKey returns the calendar-day identifier for t in t's own location,
// formatted YYYY-MM-DD. Zero-padding keeps lexicographic order equal to
// chronological order, so day keys sort correctly as plain strings.
func DayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

// parseDayKey inverts DayKey. Keys parse to UTC midnight, so the gap
// between two consecutive calendar days is always exactly 24 hours.
func parseDayKey(key string) (time.Time, error) {
	return time.Parse(dayKeyLayout, key)
}
