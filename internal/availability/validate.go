package availability

import (
	"fmt"
	"time"
)

// Range is a candidate check-in/check-out pair. To is nil until the guest has
// picked both ends.
type Range struct {
	From time.Time
	To   *time.Time
}

// NewRange returns a complete range.
func NewRange(from, to time.Time) Range {
	return Range{From: from, To: &to}
}

// Complete reports whether both ends are set.
func (r Range) Complete() bool {
	return r.To != nil
}

// Nights returns the number of nights in a complete range, zero otherwise.
func (r Range) Nights() int {
	if r.To == nil {
		return 0
	}
	return DaysBetween(r.From, *r.To)
}

// Result is the outcome of validating a candidate range.
type Result int

const (
	Ok Result = iota
	TooShort
	TooLong
	Overlap
	// Incomplete is returned when the range has no check-out day.
	Incomplete
	// PastDate is returned by Checker when the check-in day is before today.
	PastDate
)

func (r Result) String() string {
	switch r {
	case Ok:
		return "ok"
	case TooShort:
		return "too_short"
	case TooLong:
		return "too_long"
	case Overlap:
		return "overlap"
	case Incomplete:
		return "incomplete"
	case PastDate:
		return "past_date"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// Valid reports whether the range may be submitted.
func (r Result) Valid() bool {
	return r == Ok
}

// Message returns the text shown next to the calendar for r.
func (r Result) Message(minNights, maxNights int) string {
	switch r {
	case Ok:
		return ""
	case TooShort:
		return fmt.Sprintf("The minimum stay is %d nights", minNights)
	case TooLong:
		return fmt.Sprintf("The maximum stay is %d nights", maxNights)
	case Overlap:
		return "The selected dates are not available"
	case Incomplete:
		return "Select check-in and check-out dates"
	case PastDate:
		return "Check-in cannot be in the past"
	default:
		return "Invalid dates"
	}
}

// ValidateRange checks stay length first and overlap second, so a range that
// is too short or too long is reported as such regardless of overlap.
func ValidateRange(r Range, reservations []Interval, minNights, maxNights int) Result {
	if r.To == nil {
		return Incomplete
	}
	nights := r.Nights()
	if nights < minNights {
		return TooShort
	}
	if nights > maxNights {
		return TooLong
	}
	for _, booked := range reservations {
		if Overlaps(r.From, *r.To, booked.Start, booked.End) {
			return Overlap
		}
	}
	return Ok
}

// Overlaps reports whether the candidate [rangeStart, rangeEnd) collides with
// the booked [bookedStart, bookedEnd). It holds when the candidate starts
// inside the booking, ends inside it, or contains it.
func Overlaps(rangeStart, rangeEnd, bookedStart, bookedEnd time.Time) bool {
	rs, re := Day(rangeStart), Day(rangeEnd)
	bs, be := Day(bookedStart), Day(bookedEnd)

	startsInside := !rs.Before(bs) && rs.Before(be)
	endsInside := re.After(bs) && !re.After(be)
	contains := !rs.After(bs) && !re.Before(be)

	return startsInside || endsInside || contains
}
