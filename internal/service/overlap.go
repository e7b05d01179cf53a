package service

import (
	"strconv"
	"strings"
	"time"
)

// Overlaps reports whether two half-open clock ranges intersect. Ranges that
// merely touch at an edge do not overlap. Times are "HH:MM" strings;
// malformed values never match.
func Overlaps(startA, endA, startB, endB string) bool {
	sa, okA := clockToMinutes(startA)
	ea, okB := clockToMinutes(endA)
	sb, okC := clockToMinutes(startB)
	eb, okD := clockToMinutes(endB)
	if !okA || !okB || !okC || !okD {
		return false
	}
	// An empty or inverted range covers no time at all.
	if sa >= ea || sb >= eb {
		return false
	}
	return sa < eb && sb < ea
}

// MatchesWeekday reports whether the calendar date falls on the given ISO
// weekday (1=Monday .. 7=Sunday).
func MatchesWeekday(date time.Time, weekday int) bool {
	return isoWeekday(date) == weekday
}

// isoWeekday maps time.Weekday (Sunday=0) onto ISO numbering (Sunday=7).
func isoWeekday(date time.Time) int {
	wd := int(date.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// clockToMinutes parses "HH:MM" into minutes since midnight.
func clockToMinutes(raw string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}
