package availability

import "time"

// Checker holds the reservations of one listing together with its stay
// bounds and answers calendar questions against a clock.
type Checker struct {
	MinNights int
	MaxNights int

	reservations []Interval
	blocked      DateSet
	now          func() time.Time
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithClock overrides the clock used to determine today.
func WithClock(now func() time.Time) CheckerOption {
	return func(c *Checker) {
		if now != nil {
			c.now = now
		}
	}
}

// NewChecker creates a Checker. The reservations slice is copied.
func NewChecker(reservations []Interval, minNights, maxNights int, opts ...CheckerOption) *Checker {
	c := &Checker{
		MinNights:    minNights,
		MaxNights:    maxNights,
		reservations: append([]Interval(nil), reservations...),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.blocked = BuildBlockedDates(c.reservations)
	return c
}

// Today returns the current calendar day.
func (c *Checker) Today() time.Time {
	return Day(c.now())
}

// Reservations returns a copy of the reservations.
func (c *Checker) Reservations() []Interval {
	return append([]Interval(nil), c.reservations...)
}

// Blocked returns the blocked day set. Callers must not modify it.
func (c *Checker) Blocked() DateSet {
	return c.blocked
}

// IsSelectable reports whether date can be picked given the pending range
// start, if any.
func (c *Checker) IsSelectable(date time.Time, pendingRangeStart *time.Time) bool {
	return IsDateSelectable(date, pendingRangeStart, c.blocked, c.now())
}

// Validate validates r against the listing. A check-in before today yields
// PastDate; everything else is decided by ValidateRange.
func (c *Checker) Validate(r Range) Result {
	if r.To != nil && Day(r.From).Before(c.Today()) {
		return PastDate
	}
	return ValidateRange(r, c.reservations, c.MinNights, c.MaxNights)
}

// Quote prices a complete range. ok is false when the range is incomplete or
// has no nights.
func (c *Checker) Quote(r Range, pricePerNight int64) (total Total, ok bool) {
	nights := r.Nights()
	if nights <= 0 {
		return Total{}, false
	}
	return ComputeTotal(nights, pricePerNight), true
}
