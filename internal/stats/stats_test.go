package stats

import (
	"reflect"
	"testing"
	"time"

	"focustui/internal/session"
)

func rec(created time.Time, minutes float64, tag *session.TagRef) session.Record {
	return session.Record{
		ID:        created.Format(time.RFC3339Nano),
		CreatedAt: created,
		Duration:  minutes,
		Tag:       tag,
		Mode:      session.ModeTimer,
	}
}

var (
	deepWork = &session.TagRef{Name: "Deep Work", Color: "#8B5CF6"}
	reading  = &session.TagRef{Name: "Reading", Color: "#10B981"}
)

func TestOverview(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 1, 10, 15, 0, 0, 0, loc)
	sessions := []session.Record{
		rec(time.Date(2024, 1, 10, 9, 0, 0, 0, loc), 25, deepWork),
		rec(time.Date(2024, 1, 10, 14, 0, 0, 0, loc), 10.5, nil),
		rec(time.Date(2024, 1, 9, 20, 0, 0, 0, loc), 50, reading),
		rec(time.Date(2023, 12, 1, 8, 0, 0, 0, loc), 30, deepWork),
	}

	ov := Overview(sessions, now)

	if ov.Lifetime.Minutes != 115.5 {
		t.Errorf("lifetime minutes = %v, want 115.5", ov.Lifetime.Minutes)
	}
	if ov.Lifetime.Sessions != 4 {
		t.Errorf("lifetime sessions = %d, want 4", ov.Lifetime.Sessions)
	}
	if ov.Lifetime.ActiveDays != 3 {
		t.Errorf("active days = %d, want 3", ov.Lifetime.ActiveDays)
	}
	if ov.Today.Minutes != 35.5 || ov.Today.Sessions != 2 {
		t.Errorf("today = %v min / %d sessions, want 35.5 / 2", ov.Today.Minutes, ov.Today.Sessions)
	}
	if ov.Daily["2024-01-09"] != 50 {
		t.Errorf("daily[2024-01-09] = %v, want 50", ov.Daily["2024-01-09"])
	}
	if ov.Streak.Current != 2 {
		t.Errorf("current streak = %d, want 2", ov.Streak.Current)
	}
}

func TestOverviewIdempotent(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, loc)
	sessions := []session.Record{
		rec(time.Date(2024, 5, 1, 9, 0, 0, 0, loc), 40, deepWork),
		rec(time.Date(2024, 5, 2, 9, 0, 0, 0, loc), 25, nil),
	}

	first := Overview(sessions, now)
	second := Overview(sessions, now)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated aggregation differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestOverviewEmpty(t *testing.T) {
	ov := Overview(nil, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if ov.Lifetime.Minutes != 0 || ov.Lifetime.Sessions != 0 || ov.Lifetime.ActiveDays != 0 {
		t.Errorf("lifetime not zero: %+v", ov.Lifetime)
	}
	if ov.Streak.Current != 0 || ov.Streak.Best != 0 {
		t.Errorf("streak not zero: %+v", ov.Streak)
	}
}

func TestOverviewBucketsInViewerTimezone(t *testing.T) {
	// A session stored at 03:00 UTC on Jan 2 is still Jan 1 for a
	// viewer five hours west of UTC.
	est := time.FixedZone("EST", -5*3600)
	now := time.Date(2024, 1, 1, 23, 0, 0, 0, est)
	sessions := []session.Record{
		rec(time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC), 25, nil),
	}

	ov := Overview(sessions, now)
	if ov.Today.Minutes != 25 {
		t.Errorf("today minutes = %v, want 25", ov.Today.Minutes)
	}
	if _, ok := ov.Daily["2024-01-02"]; ok {
		t.Error("session bucketed on UTC day, want viewer-local day")
	}
}

func TestDay(t *testing.T) {
	loc := time.UTC
	target := time.Date(2024, 3, 15, 12, 0, 0, 0, loc)
	sessions := []session.Record{
		rec(time.Date(2024, 3, 15, 0, 0, 0, 0, loc), 10, deepWork),         // first instant, included
		rec(time.Date(2024, 3, 15, 23, 59, 59, 0, loc), 5, nil),            // last minute, included
		rec(time.Date(2024, 3, 16, 0, 0, 0, 0, loc), 30, deepWork),         // next day, excluded
		rec(time.Date(2024, 3, 14, 23, 59, 59, 999e6, loc), 30, deepWork),  // prior day, excluded
		rec(time.Date(2024, 3, 15, 9, 30, 0, 0, loc), 25, reading),
	}

	ds := Day(sessions, target)

	if ds.TotalMinutes != 40 {
		t.Errorf("total = %v, want 40", ds.TotalMinutes)
	}
	if ds.Sessions != 3 {
		t.Errorf("sessions = %d, want 3", ds.Sessions)
	}

	// Sum of tag shares must cover the total exactly.
	var tagSum float64
	for _, share := range ds.Tags {
		tagSum += share.Minutes
	}
	if tagSum != ds.TotalMinutes {
		t.Errorf("tag shares sum to %v, want %v", tagSum, ds.TotalMinutes)
	}

	if len(ds.Timeline) != 3 {
		t.Fatalf("timeline entries = %d, want 3", len(ds.Timeline))
	}
	if got := ds.Timeline[2].StartHour; got != 9.5 {
		t.Errorf("start hour = %v, want 9.5", got)
	}
	if got := ds.Timeline[2].Label; got != "09:30" {
		t.Errorf("label = %q, want 09:30", got)
	}
}

func TestDayEmpty(t *testing.T) {
	ds := Day(nil, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	if ds.TotalMinutes != 0 || ds.Sessions != 0 || len(ds.Tags) != 0 || len(ds.Timeline) != 0 {
		t.Errorf("expected zero day stats, got %+v", ds)
	}
}

func TestDayUntaggedFallback(t *testing.T) {
	loc := time.UTC
	target := time.Date(2024, 3, 15, 0, 0, 0, 0, loc)
	sessions := []session.Record{
		rec(time.Date(2024, 3, 15, 9, 0, 0, 0, loc), 20, nil),
		rec(time.Date(2024, 3, 15, 10, 0, 0, 0, loc), 10, &session.TagRef{Name: "", Color: ""}),
	}

	ds := Day(sessions, target)
	if len(ds.Tags) != 1 {
		t.Fatalf("tag shares = %d, want both sessions folded into Untagged", len(ds.Tags))
	}
	if ds.Tags[0].Name != UntaggedName || ds.Tags[0].Color != DefaultTagColor {
		t.Errorf("fallback tag = %+v", ds.Tags[0])
	}
	if ds.Tags[0].Minutes != 30 {
		t.Errorf("fallback minutes = %v, want 30", ds.Tags[0].Minutes)
	}
}

func TestStartOfWeek(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		ref  time.Time
		want string
	}{
		{time.Date(2024, 1, 10, 15, 0, 0, 0, loc), "2024-01-08"}, // Wednesday
		{time.Date(2024, 1, 8, 0, 0, 0, 0, loc), "2024-01-08"},   // Monday itself
		{time.Date(2024, 1, 14, 23, 0, 0, 0, loc), "2024-01-08"}, // Sunday belongs to the week behind it
	}
	for _, tt := range tests {
		got := DayKey(StartOfWeek(tt.ref))
		if got != tt.want {
			t.Errorf("StartOfWeek(%s) = %s, want %s", tt.ref.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestWeek(t *testing.T) {
	loc := time.UTC
	// Wednesday Jan 10 2024; its week runs Mon Jan 8 - Sun Jan 14.
	ref := time.Date(2024, 1, 10, 12, 0, 0, 0, loc)
	sessions := []session.Record{
		rec(time.Date(2024, 1, 8, 9, 0, 0, 0, loc), 25, deepWork),   // Monday
		rec(time.Date(2024, 1, 14, 22, 0, 0, 0, loc), 15, reading),  // Sunday
		rec(time.Date(2024, 1, 10, 9, 0, 0, 0, loc), 30, deepWork),  // Wednesday
		rec(time.Date(2024, 1, 7, 23, 0, 0, 0, loc), 40, deepWork),  // previous Sunday
		rec(time.Date(2024, 1, 3, 9, 0, 0, 0, loc), 20, nil),        // previous Wednesday
		rec(time.Date(2024, 1, 15, 0, 0, 0, 0, loc), 60, deepWork),  // next Monday, excluded
	}

	ws := Week(sessions, ref)

	if ws.TotalMinutes != 70 || ws.Sessions != 3 {
		t.Errorf("week total = %v min / %d sessions, want 70 / 3", ws.TotalMinutes, ws.Sessions)
	}
	if ws.PrevMinutes != 60 {
		t.Errorf("previous week = %v, want 60", ws.PrevMinutes)
	}
	if ws.Days[0].Minutes != 25 {
		t.Errorf("Monday slot = %v, want 25", ws.Days[0].Minutes)
	}
	if ws.Days[6].Minutes != 15 {
		t.Errorf("Sunday slot = %v, want 15", ws.Days[6].Minutes)
	}
	if ws.Days[2].Minutes != 30 {
		t.Errorf("Wednesday slot = %v, want 30", ws.Days[2].Minutes)
	}

	var perDaySum float64
	for _, d := range ws.Days {
		perDaySum += d.Minutes
	}
	if perDaySum != ws.TotalMinutes {
		t.Errorf("per-day sum = %v, want %v", perDaySum, ws.TotalMinutes)
	}
}

func TestYear(t *testing.T) {
	loc := time.UTC
	sessions := []session.Record{
		rec(time.Date(2024, 1, 1, 9, 0, 0, 0, loc), 30, deepWork),
		rec(time.Date(2024, 1, 2, 9, 0, 0, 0, loc), 10, reading),
		rec(time.Date(2024, 1, 2, 14, 0, 0, 0, loc), 35, deepWork),
		rec(time.Date(2024, 6, 20, 9, 0, 0, 0, loc), 5, nil),
		rec(time.Date(2023, 12, 31, 9, 0, 0, 0, loc), 120, deepWork), // other year, excluded
	}

	ys := Year(sessions, 2024, loc)

	if ys.TotalMinutes != 80 || ys.Sessions != 4 {
		t.Errorf("year total = %v min / %d sessions, want 80 / 4", ys.TotalMinutes, ys.Sessions)
	}
	if ys.ActiveDays != 3 {
		t.Errorf("active days = %d, want 3", ys.ActiveDays)
	}
	if ys.AvgSessionMinutes != 20 {
		t.Errorf("avg session = %v, want 20", ys.AvgSessionMinutes)
	}
	if ys.BestDayMinutes != 45 {
		t.Errorf("best day = %v, want 45", ys.BestDayMinutes)
	}
	if ys.BestMonthMinutes != 75 {
		t.Errorf("best month = %v, want 75", ys.BestMonthMinutes)
	}
	if ys.Months[0] != 75 || ys.Months[5] != 5 {
		t.Errorf("months = %v", ys.Months)
	}
	// Jan 1 (30) and Jan 2 (45) qualify; June 20 (5) qualifies alone.
	if ys.BestStreak != 2 {
		t.Errorf("best streak = %d, want 2", ys.BestStreak)
	}
	if b := ys.Days["2024-01-02"]; b.Minutes != 45 || b.Sessions != 2 {
		t.Errorf("day bucket = %+v, want 45 min / 2 sessions", b)
	}
}

func TestYearStreakDoesNotCrossYearBoundary(t *testing.T) {
	loc := time.UTC
	sessions := []session.Record{
		rec(time.Date(2023, 12, 30, 9, 0, 0, 0, loc), 60, nil),
		rec(time.Date(2023, 12, 31, 9, 0, 0, 0, loc), 60, nil),
		rec(time.Date(2024, 1, 1, 9, 0, 0, 0, loc), 60, nil),
	}

	if got := Year(sessions, 2024, loc).BestStreak; got != 1 {
		t.Errorf("2024 best streak = %d, want 1 (no carry-over)", got)
	}
	if got := Year(sessions, 2023, loc).BestStreak; got != 2 {
		t.Errorf("2023 best streak = %d, want 2", got)
	}
}

func TestYearEmpty(t *testing.T) {
	ys := Year(nil, 2024, time.UTC)
	if ys.AvgSessionMinutes != 0 {
		t.Errorf("avg session = %v, want 0 for zero sessions", ys.AvgSessionMinutes)
	}
	if ys.BestDayMinutes != 0 || ys.BestMonthMinutes != 0 || ys.BestStreak != 0 {
		t.Errorf("best values not zero: %+v", ys)
	}
	if len(ys.Tags) != 0 || len(ys.Days) != 0 {
		t.Errorf("expected empty collections, got %+v", ys)
	}
}

func TestTagDistributionSortedDescendingStableTies(t *testing.T) {
	loc := time.UTC
	target := time.Date(2024, 3, 15, 0, 0, 0, 0, loc)
	alpha := &session.TagRef{Name: "Alpha", Color: "#EF4444"}
	beta := &session.TagRef{Name: "Beta", Color: "#EC4899"}
	sessions := []session.Record{
		rec(time.Date(2024, 3, 15, 8, 0, 0, 0, loc), 20, alpha),
		rec(time.Date(2024, 3, 15, 9, 0, 0, 0, loc), 20, beta),
		rec(time.Date(2024, 3, 15, 10, 0, 0, 0, loc), 50, reading),
	}

	ds := Day(sessions, target)
	want := []string{"Reading", "Alpha", "Beta"}
	if len(ds.Tags) != len(want) {
		t.Fatalf("tag shares = %d, want %d", len(ds.Tags), len(want))
	}
	for i, name := range want {
		if ds.Tags[i].Name != name {
			t.Errorf("tags[%d] = %s, want %s (ties keep encounter order)", i, ds.Tags[i].Name, name)
		}
	}
}
