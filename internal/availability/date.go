// Package availability decides which calendar days of a listing can be booked
// and validates candidate check-in/check-out ranges.
//
// Reservations are half-open: a reservation [start, end) occupies every day
// from start up to, but not including, end. A new stay may therefore begin on
// another reservation's checkout day. The same rule drives both the blocked
// date set and the overlap test.
//
// All comparisons are made at day granularity. Day strips the time of day and
// keeps the calendar date as seen in the value's own location.
package availability

import "time"

const day = 24 * time.Hour

// Day returns the calendar date of t as midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of days from a to b, negative when b
// is before a.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)) / day)
}

// DateSet is a set of calendar days.
type DateSet map[time.Time]struct{}

// Add inserts the calendar day of t.
func (s DateSet) Add(t time.Time) {
	s[Day(t)] = struct{}{}
}

// Contains reports whether the calendar day of t is in the set.
func (s DateSet) Contains(t time.Time) bool {
	_, ok := s[Day(t)]
	return ok
}

// Len returns the number of days in the set.
func (s DateSet) Len() int {
	return len(s)
}
