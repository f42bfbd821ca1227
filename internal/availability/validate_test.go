package availability

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func interval(start, end string) Interval {
	return Interval{Start: date(start), End: date(end)}
}

func TestValidateRange(t *testing.T) {
	reservations := []Interval{interval("2024-06-01", "2024-06-05")}

	tests := []struct {
		name string
		from string
		to   string
		min  int
		max  int
		want Result
	}{
		{name: "ends inside reservation", from: "2024-06-04", to: "2024-06-06", min: 1, max: 20, want: Overlap},
		{name: "starts on checkout day", from: "2024-06-05", to: "2024-06-08", min: 1, max: 20, want: Ok},
		{name: "ends on check-in day", from: "2024-05-28", to: "2024-06-01", min: 1, max: 20, want: Ok},
		{name: "starts inside reservation", from: "2024-06-02", to: "2024-06-09", min: 1, max: 20, want: Overlap},
		{name: "contains reservation", from: "2024-05-30", to: "2024-06-07", min: 1, max: 20, want: Overlap},
		{name: "inside reservation", from: "2024-06-02", to: "2024-06-03", min: 1, max: 20, want: Overlap},
		{name: "identical to reservation", from: "2024-06-01", to: "2024-06-05", min: 1, max: 20, want: Overlap},
		{name: "too short", from: "2024-06-10", to: "2024-06-11", min: 2, max: 20, want: TooShort},
		{name: "too long", from: "2024-06-10", to: "2024-07-10", min: 1, max: 20, want: TooLong},
		{name: "too short wins over overlap", from: "2024-06-02", to: "2024-06-03", min: 2, max: 20, want: TooShort},
		{name: "too long wins over overlap", from: "2024-05-01", to: "2024-07-01", min: 1, max: 20, want: TooLong},
		{name: "exactly min nights", from: "2024-06-10", to: "2024-06-12", min: 2, max: 20, want: Ok},
		{name: "exactly max nights", from: "2024-06-10", to: "2024-06-30", min: 2, max: 20, want: Ok},
		{name: "check-out before check-in", from: "2024-06-12", to: "2024-06-10", min: 1, max: 20, want: TooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateRange(NewRange(date(tt.from), date(tt.to)), reservations, tt.min, tt.max)
			if got != tt.want {
				t.Errorf("ValidateRange(%s..%s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestValidateRangeIncomplete(t *testing.T) {
	got := ValidateRange(Range{From: date("2024-06-10")}, nil, 1, 20)
	if got != Incomplete {
		t.Errorf("ValidateRange() = %v, want %v", got, Incomplete)
	}
}

func TestValidateRangeIgnoresTimeOfDay(t *testing.T) {
	reservations := []Interval{{
		Start: time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 5, 11, 0, 0, 0, time.UTC),
	}}
	from := time.Date(2024, 6, 5, 0, 0, 0, 1, time.UTC)
	to := time.Date(2024, 6, 8, 23, 59, 0, 0, time.UTC)

	if got := ValidateRange(NewRange(from, to), reservations, 1, 20); got != Ok {
		t.Errorf("ValidateRange() = %v, want %v", got, Ok)
	}
}

// Overlap must be reported exactly when the candidate and a reservation
// share an occupied day.
func TestValidateRangeOverlapMatchesSharedDays(t *testing.T) {
	base := date("2024-06-01")
	booked := Interval{Start: base.AddDate(0, 0, 5), End: base.AddDate(0, 0, 9)}
	occupied := BuildBlockedDates([]Interval{booked})

	for start := 0; start < 15; start++ {
		for length := 1; length <= 8; length++ {
			from := base.AddDate(0, 0, start)
			to := from.AddDate(0, 0, length)

			shared := false
			for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
				if occupied.Contains(d) {
					shared = true
					break
				}
			}

			got := ValidateRange(NewRange(from, to), []Interval{booked}, 1, 30)
			if (got == Overlap) != shared {
				t.Errorf("ValidateRange(%s, %d nights) = %v, shared day = %v",
					from.Format("2006-01-02"), length, got, shared)
			}
		}
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                   string
		rangeStart, rangeEnd   string
		bookedStart, bookedEnd string
		want                   bool
	}{
		{"disjoint before", "2024-01-01", "2024-01-03", "2024-01-05", "2024-01-08", false},
		{"disjoint after", "2024-01-09", "2024-01-12", "2024-01-05", "2024-01-08", false},
		{"back to back after", "2024-01-08", "2024-01-10", "2024-01-05", "2024-01-08", false},
		{"back to back before", "2024-01-03", "2024-01-05", "2024-01-05", "2024-01-08", false},
		{"start inside", "2024-01-07", "2024-01-10", "2024-01-05", "2024-01-08", true},
		{"end inside", "2024-01-03", "2024-01-06", "2024-01-05", "2024-01-08", true},
		{"contains", "2024-01-04", "2024-01-09", "2024-01-05", "2024-01-08", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(date(tt.rangeStart), date(tt.rangeEnd), date(tt.bookedStart), date(tt.bookedEnd))
			if got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResultMessage(t *testing.T) {
	if msg := Ok.Message(2, 20); msg != "" {
		t.Errorf("Ok.Message() = %q, want empty", msg)
	}
	if msg := TooShort.Message(2, 20); msg != "The minimum stay is 2 nights" {
		t.Errorf("TooShort.Message() = %q", msg)
	}
	if msg := TooLong.Message(2, 20); msg != "The maximum stay is 20 nights" {
		t.Errorf("TooLong.Message() = %q", msg)
	}
	if Overlap.Valid() || !Ok.Valid() {
		t.Error("Valid() should be true only for Ok")
	}
	if Overlap.String() != "overlap" {
		t.Errorf("Overlap.String() = %q", Overlap.String())
	}
}
