package attune

import (
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2026, 8, d, 10, 30, 0, 0, time.UTC)
}

func TestStreak_ConsecutiveDaysEndingToday(t *testing.T) {
	now := day(15)
	dates := []time.Time{day(13), day(14), day(15)}

	if got := Streak(dates, now); got != 3 {
		t.Errorf("expected streak 3, got %d", got)
	}
}

func TestStreak_YesterdayStillCounts(t *testing.T) {
	now := day(15)
	dates := []time.Time{day(12), day(13), day(14)}

	if got := Streak(dates, now); got != 3 {
		t.Errorf("entry-free today must not break streak, got %d", got)
	}
}

func TestStreak_GapBreaks(t *testing.T) {
	now := day(15)
	dates := []time.Time{day(10), day(11), day(14), day(15)}

	if got := Streak(dates, now); got != 2 {
		t.Errorf("expected streak 2 after gap, got %d", got)
	}
}

func TestStreak_TwoDayGapIsZero(t *testing.T) {
	now := day(15)
	dates := []time.Time{day(12), day(13)}

	if got := Streak(dates, now); got != 0 {
		t.Errorf("streak ending before yesterday must be 0, got %d", got)
	}
}

func TestStreak_MultipleEntriesPerDayCountOnce(t *testing.T) {
	now := day(15)
	dates := []time.Time{
		day(14),
		time.Date(2026, 8, 14, 22, 0, 0, 0, time.UTC),
		day(15),
		time.Date(2026, 8, 15, 23, 59, 0, 0, time.UTC),
	}

	if got := Streak(dates, now); got != 2 {
		t.Errorf("expected streak 2, got %d", got)
	}
}

func TestStreak_Empty(t *testing.T) {
	if got := Streak(nil, day(15)); got != 0 {
		t.Errorf("expected 0 for no entries, got %d", got)
	}
}

func TestLongestStreak(t *testing.T) {
	dates := []time.Time{
		day(1), day(2), day(3), day(4), // run of 4
		day(10), day(11), // run of 2
		day(20),
	}
	if got := LongestStreak(dates); got != 4 {
		t.Errorf("expected longest streak 4, got %d", got)
	}
}

func TestLongestStreak_SingleDay(t *testing.T) {
	if got := LongestStreak([]time.Time{day(5)}); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	if got := LongestStreak(nil); got != 0 {
		t.Errorf("expected 0 for no entries, got %d", got)
	}
}

func TestStreak_TimezoneNormalization(t *testing.T) {
	// 2026-08-15 02:00 +05 is 2026-08-14 21:00 UTC.
	est := time.FixedZone("plus5", 5*3600)
	dates := []time.Time{
		time.Date(2026, 8, 15, 2, 0, 0, 0, est),
		day(15),
	}

	if got := Streak(dates, day(15)); got != 2 {
		t.Errorf("expected streak 2 across UTC day boundary, got %d", got)
	}
}
