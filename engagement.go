package attune

import (
	"sort"
	"time"
)

// Streak counts consecutive UTC calendar days with at least one entry,
// ending at now's day. A gap of one day breaks the streak; a day with no
// entry today but one yesterday still counts yesterday as the streak end.
// Streaks are derived from entry timestamps, never stored.
func Streak(dates []time.Time, now time.Time) int {
	days := uniqueDays(dates)
	if len(days) == 0 {
		return 0
	}

	today := now.UTC().Truncate(24 * time.Hour)
	cursor := today
	if days[len(days)-1] != today {
		cursor = today.AddDate(0, 0, -1)
	}

	streak := 0
	for i := len(days) - 1; i >= 0; i-- {
		if !days[i].Equal(cursor) {
			break
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// LongestStreak returns the longest run of consecutive UTC calendar days
// anywhere in the history.
func LongestStreak(dates []time.Time) int {
	days := uniqueDays(dates)
	if len(days) == 0 {
		return 0
	}

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	return longest
}

// uniqueDays collapses timestamps to sorted distinct UTC days.
func uniqueDays(dates []time.Time) []time.Time {
	seen := make(map[time.Time]bool, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := d.UTC().Truncate(24 * time.Hour)
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
