package stats

import (
	"sort"
	"time"
)

// Streak reports the run of qualifying days ending at now and the
// longest historical run. A day qualifies when its total minutes meet
// the threshold.
type Streak struct {
	Current int
	Best    int
}

// Streaks computes both streaks from a day-key -> minutes map.
//
// The current streak walks backward from now's calendar day. Today is
// allowed to be below threshold without breaking the run by itself: the
// day may still be in progress, so the walk continues from yesterday.
// Only today is forgiven this way; if yesterday also fails, the current
// streak is 0.
func Streaks(dayMinutes map[string]float64, threshold float64, now time.Time) Streak {
	var st Streak
	todayKey := DayKey(now)

	d := now
	for st.Current <= len(dayMinutes) {
		key := DayKey(d)
		if dayMinutes[key] < threshold {
			if key == todayKey && st.Current == 0 {
				d = d.AddDate(0, 0, -1)
				continue
			}
			break
		}
		st.Current++
		d = d.AddDate(0, 0, -1)
	}

	st.Best = bestRun(dayMinutes, threshold)
	return st
}

// bestRun finds the longest chain of calendar-consecutive qualifying
// days anywhere in the map. A gap of exactly one day continues a run;
// anything else starts a new one.
func bestRun(dayMinutes map[string]float64, threshold float64) int {
	keys := make([]string, 0, len(dayMinutes))
	for key, mins := range dayMinutes {
		if mins >= threshold {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return 0
	}
	sort.Strings(keys)

	best, run := 1, 1
	prev, err := parseDayKey(keys[0])
	if err != nil {
		return 0
	}
	for _, key := range keys[1:] {
		day, err := parseDayKey(key)
		if err != nil {
			continue
		}
		if day.Sub(prev) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
		prev = day
	}
	return best
}

// yearBestStreak walks Jan 1 through Dec 31 of year in loc. Unlike the
// lifetime streak it never carries over a year boundary.
func yearBestStreak(days map[string]DayBucket, threshold float64, year int, loc *time.Location) int {
	best, run := 0, 0
	end := time.Date(year, 12, 31, 0, 0, 0, 0, loc)
	for d := time.Date(year, 1, 1, 0, 0, 0, 0, loc); !d.After(end); d = d.AddDate(0, 0, 1) {
		if days[DayKey(d)].Minutes >= threshold {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return best
}
