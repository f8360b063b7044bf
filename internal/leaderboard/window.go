package leaderboard

import (
	"time"

	"github.com/osheron/meritum/internal/domain"
)

// windowBounds returns the UTC [start, end) interval containing the
// reference date for the given range. Weeks start on Monday. The all-time
// range has no bounds and returns ok=false.
func windowBounds(timeRange domain.TimeRange, reference time.Time) (start, end time.Time, ok bool) {
	ref := reference.UTC()
	switch timeRange {
	case domain.TimeRangeDaily:
		start = time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 0, 1), true
	case domain.TimeRangeWeekly:
		day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
		// time.Weekday counts Sunday as 0; shift so Monday opens the week.
		offset := (int(day.Weekday()) + 6) % 7
		start = day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7), true
	case domain.TimeRangeMonthly:
		start = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0), true
	default:
		return time.Time{}, time.Time{}, false
	}
}
