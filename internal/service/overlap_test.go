package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name     string
		aStart   string
		aEnd     string
		bStart   string
		bEnd     string
		expected bool
	}{
		{"partial overlap", "10:00", "11:00", "10:30", "11:30", true},
		{"contained", "09:00", "12:00", "10:00", "11:00", true},
		{"identical", "10:00", "11:00", "10:00", "11:00", true},
		{"edge touch is not overlap", "10:00", "11:00", "11:00", "12:00", false},
		{"disjoint", "08:00", "09:00", "10:00", "11:00", false},
		{"malformed start", "banana", "11:00", "10:00", "12:00", false},
		{"empty range", "10:00", "10:00", "09:00", "12:00", false},
		{"out of range minutes", "10:75", "11:00", "10:00", "12:00", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd))
			// Overlap is symmetric.
			assert.Equal(t, tc.expected, Overlaps(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd))
		})
	}
}

func TestMatchesWeekday(t *testing.T) {
	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)

	assert.True(t, MatchesWeekday(monday, 1))
	assert.False(t, MatchesWeekday(monday, 2))
	// Sunday maps onto ISO weekday 7, never 0.
	assert.True(t, MatchesWeekday(sunday, 7))
	assert.False(t, MatchesWeekday(sunday, 0))
}
