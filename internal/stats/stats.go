// Package stats turns the raw session history into the derived views
// shown on the analyze screens. Every function here is a pure fold over
// the full session list: the store pushes a complete snapshot on each
// change and the caller recomputes from scratch, so repeated calls on
// the same snapshot always produce the same result.
package stats

import (
	"sort"
	"time"

	"focustui/internal/session"
)

const (
	// UntaggedName and DefaultTagColor stand in for a missing or
	// malformed tag snapshot on a historical record.
	UntaggedName    = "Untagged"
	DefaultTagColor = "#3B82F6"

	// StreakThreshold is the minutes of focus a day needs before it
	// counts toward a streak.
	StreakThreshold = 5
)

// TagShare is one slice of a tag distribution: total minutes accumulated
// under one resolved tag name within a scope.
type TagShare struct {
	Name    string
	Color   string
	Minutes float64
}

// LifetimeTotals cover the whole history. ActiveDays counts distinct
// calendar days with at least one session, regardless of length.
type LifetimeTotals struct {
	Minutes    float64
	Sessions   int
	ActiveDays int
}

// TodayTotals cover the current calendar day.
type TodayTotals struct {
	Minutes  float64
	Sessions int
}

// OverviewStats is everything the overview screen needs: lifetime and
// today totals, the per-day minutes map behind the calendar heatmap,
// and the focus streaks.
type OverviewStats struct {
	Lifetime LifetimeTotals
	Today    TodayTotals
	Daily    map[string]float64 // day key -> minutes
	Streak   Streak
}

// Overview folds the whole history using now's calendar day and
// location as the reference point.
func Overview(sessions []session.Record, now time.Time) OverviewStats {
	loc := now.Location()
	todayKey := DayKey(now)
	out := OverviewStats{Daily: make(map[string]float64)}

	for _, s := range sessions {
		key := DayKey(s.CreatedAt.In(loc))
		out.Daily[key] += s.Duration
		out.Lifetime.Minutes += s.Duration
		if key == todayKey {
			out.Today.Minutes += s.Duration
			out.Today.Sessions++
		}
	}
	out.Lifetime.Sessions = len(sessions)
	out.Lifetime.ActiveDays = len(out.Daily)
	out.Streak = Streaks(out.Daily, StreakThreshold, now)
	return out
}

// TimelineEntry places one session on a 24-hour axis. StartHour is
// hour + minute/60 of the local start time.
type TimelineEntry struct {
	StartHour float64
	Minutes   float64
	Color     string
	Label     string
}

// DayStats summarizes a single calendar day.
type DayStats struct {
	TotalMinutes float64
	Sessions     int
	Tags         []TagShare
	Timeline     []TimelineEntry
}

// Day summarizes the sessions recorded on target's calendar day in
// target's location.
func Day(sessions []session.Record, target time.Time) DayStats {
	loc := target.Location()
	start := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	var out DayStats
	tags := newTagFold()
	for _, s := range sessions {
		t := s.CreatedAt.In(loc)
		if t.Before(start) || !t.Before(end) {
			continue
		}
		out.TotalMinutes += s.Duration
		out.Sessions++
		tags.add(s)
		out.Timeline = append(out.Timeline, TimelineEntry{
			StartHour: float64(t.Hour()) + float64(t.Minute())/60,
			Minutes:   s.Duration,
			Color:     resolveTag(s.Tag).Color,
			Label:     t.Format("15:04"),
		})
	}
	out.Tags = tags.shares()
	return out
}

// WeekDay is one slot of the Monday-first per-day breakdown.
type WeekDay struct {
	Date     time.Time
	Minutes  float64
	Sessions int
}

// WeekStats summarizes the Monday-start week containing the reference
// date, with the previous week's total for comparison.
type WeekStats struct {
	Start        time.Time
	TotalMinutes float64
	Sessions     int
	PrevMinutes  float64
	Days         [7]WeekDay // Monday .. Sunday
	Tags         []TagShare
}

// StartOfWeek returns Monday 00:00 of ref's week in ref's location.
func StartOfWeek(ref time.Time) time.Time {
	d := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	offset := int(d.Weekday())
	if offset == 0 {
		offset = 7
	}
	return d.AddDate(0, 0, 1-offset)
}

// weekdayIndex maps time.Weekday to a Monday-first index, Sunday last.
func weekdayIndex(d time.Weekday) int {
	if d == time.Sunday {
		return 6
	}
	return int(d) - 1
}

// Week summarizes the week containing ref.
func Week(sessions []session.Record, ref time.Time) WeekStats {
	loc := ref.Location()
	start := StartOfWeek(ref)
	end := start.AddDate(0, 0, 7)
	prevStart := start.AddDate(0, 0, -7)

	out := WeekStats{Start: start}
	for i := range out.Days {
		out.Days[i].Date = start.AddDate(0, 0, i)
	}

	tags := newTagFold()
	for _, s := range sessions {
		t := s.CreatedAt.In(loc)
		switch {
		case !t.Before(start) && t.Before(end):
			out.TotalMinutes += s.Duration
			out.Sessions++
			idx := weekdayIndex(t.Weekday())
			out.Days[idx].Minutes += s.Duration
			out.Days[idx].Sessions++
			tags.add(s)
		case !t.Before(prevStart) && t.Before(start):
			out.PrevMinutes += s.Duration
		}
	}
	out.Tags = tags.shares()
	return out
}

// TagMinutes is the per-tag slice of a single day bucket.
type TagMinutes struct {
	Minutes float64
	Color   string
}

// DayBucket is one cell of the year heatmap.
type DayBucket struct {
	Minutes  float64
	Sessions int
	Tags     map[string]TagMinutes
}

// YearStats summarizes one calendar year. BestStreak is bounded to the
// year's Jan 1 - Dec 31 range and never carries over from the prior
// year, unlike the lifetime streak in OverviewStats.
type YearStats struct {
	TotalMinutes      float64
	Sessions          int
	ActiveDays        int
	AvgSessionMinutes float64
	BestDayMinutes    float64
	BestMonthMinutes  float64
	BestStreak        int
	Tags              []TagShare
	Days              map[string]DayBucket // day key -> bucket
	Months            [12]float64          // January .. December, minutes
}

// Year summarizes the sessions whose creation time falls in year, as
// seen from loc.
func Year(sessions []session.Record, year int, loc *time.Location) YearStats {
	out := YearStats{Days: make(map[string]DayBucket)}
	tags := newTagFold()

	for _, s := range sessions {
		t := s.CreatedAt.In(loc)
		if t.Year() != year {
			continue
		}
		out.TotalMinutes += s.Duration
		out.Sessions++
		out.Months[int(t.Month())-1] += s.Duration
		tags.add(s)

		key := DayKey(t)
		b := out.Days[key]
		if b.Tags == nil {
			b.Tags = make(map[string]TagMinutes)
		}
		b.Minutes += s.Duration
		b.Sessions++
		ref := resolveTag(s.Tag)
		tm := b.Tags[ref.Name]
		tm.Minutes += s.Duration
		tm.Color = ref.Color
		b.Tags[ref.Name] = tm
		out.Days[key] = b
	}

	out.ActiveDays = len(out.Days)
	for _, b := range out.Days {
		if b.Minutes > out.BestDayMinutes {
			out.BestDayMinutes = b.Minutes
		}
	}
	for _, m := range out.Months {
		if m > out.BestMonthMinutes {
			out.BestMonthMinutes = m
		}
	}
	if out.Sessions > 0 {
		out.AvgSessionMinutes = out.TotalMinutes / float64(out.Sessions)
	}
	out.BestStreak = yearBestStreak(out.Days, StreakThreshold, year, loc)
	out.Tags = tags.shares()
	return out
}

// resolveTag recovers a usable tag from a possibly missing or partial
// snapshot. Name and color fall back independently.
func resolveTag(ref *session.TagRef) session.TagRef {
	out := session.TagRef{Name: UntaggedName, Color: DefaultTagColor}
	if ref != nil {
		if ref.Name != "" {
			out.Name = ref.Name
		}
		if ref.Color != "" {
			out.Color = ref.Color
		}
	}
	return out
}

// tagFold accumulates minutes per resolved tag name, remembering the
// order tags were first seen so equal totals keep a stable order.
type tagFold struct {
	order  []string
	byName map[string]*TagShare
}

func newTagFold() *tagFold {
	return &tagFold{byName: make(map[string]*TagShare)}
}

func (f *tagFold) add(s session.Record) {
	ref := resolveTag(s.Tag)
	share, ok := f.byName[ref.Name]
	if !ok {
		share = &TagShare{Name: ref.Name, Color: ref.Color}
		f.byName[ref.Name] = share
		f.order = append(f.order, ref.Name)
	}
	share.Minutes += s.Duration
}

func (f *tagFold) shares() []TagShare {
	out := make([]TagShare, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, *f.byName[name])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Minutes > out[j].Minutes })
	return out
}
