package availability

import (
	"log/slog"

	"github.com/staybook/staybook-go/internal/model"
)

// ParseReservations converts loosely encoded reservations into intervals.
// Entries with a missing, unparsable or empty range are skipped with a
// warning; they never fail the whole calendar.
func ParseReservations(raw []model.RawReservation, logger *slog.Logger) []Interval {
	if logger == nil {
		logger = slog.Default()
	}

	intervals := make([]Interval, 0, len(raw))
	for i, r := range raw {
		startStr, endStr := r.Bounds()
		if startStr == "" || endStr == "" {
			logger.Warn("skipping reservation: missing dates", "index", i)
			continue
		}

		start, err := model.ParseDate(startStr)
		if err != nil {
			logger.Warn("skipping reservation: unparsable start date", "index", i, "start", startStr)
			continue
		}
		end, err := model.ParseDate(endStr)
		if err != nil {
			logger.Warn("skipping reservation: unparsable end date", "index", i, "end", endStr)
			continue
		}

		if !Day(start).Before(Day(end)) {
			logger.Warn("skipping reservation: end is not after start", "index", i, "start", startStr, "end", endStr)
			continue
		}

		intervals = append(intervals, Interval{Start: Day(start), End: Day(end)})
	}
	return intervals
}
