package availability

import "time"

// Interval is an existing reservation occupying [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Nights returns the number of occupied days.
func (i Interval) Nights() int {
	return DaysBetween(i.Start, i.End)
}

// BuildBlockedDates expands every reservation into the days it occupies. The
// checkout day is not blocked.
func BuildBlockedDates(reservations []Interval) DateSet {
	blocked := make(DateSet)
	for _, r := range reservations {
		end := Day(r.End)
		for d := Day(r.Start); d.Before(end); d = d.Add(day) {
			blocked[d] = struct{}{}
		}
	}
	return blocked
}

// IsDateSelectable reports whether date may be picked in a calendar. Days
// before today are never selectable; once a range start is pending, days
// before it are not selectable either; blocked days are not selectable.
func IsDateSelectable(date time.Time, pendingRangeStart *time.Time, blocked DateSet, today time.Time) bool {
	d := Day(date)
	if d.Before(Day(today)) {
		return false
	}
	if pendingRangeStart != nil && d.Before(Day(*pendingRangeStart)) {
		return false
	}
	return !blocked.Contains(d)
}
