package period

import (
	"fmt"
	"time"
)

// QuickRange is a named, now-relative date window offered by the chart
// range picker.
type QuickRange string

const (
	RangeAll      QuickRange = "all"
	RangeWeek     QuickRange = "week"
	RangeMonth    QuickRange = "month"
	RangeQuarter  QuickRange = "quarter"
	RangeHalfYear QuickRange = "half-year"
)

// ParseQuickRange maps a query-string value to a QuickRange.
func ParseQuickRange(s string) (QuickRange, error) {
	switch q := QuickRange(s); q {
	case RangeAll, RangeWeek, RangeMonth, RangeQuarter, RangeHalfYear:
		return q, nil
	}
	return "", fmt.Errorf("unknown range %q", s)
}

// Resolve turns a named window into concrete bounds relative to now.
// "all" resolves to the zero Range. "week" is the trailing seven calendar
// days ending today; the calendar ranges cover the month, quarter or
// half-year that contains now. Bounds are normalized to start-of-day and
// end-of-day UTC, so two calls within the same day yield identical ranges.
func Resolve(q QuickRange, now time.Time) Range {
	u := now.UTC()
	switch q {
	case RangeWeek:
		return Range{Start: StartOfDay(u.AddDate(0, 0, -6)), End: EndOfDay(u)}
	case RangeMonth:
		start := time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Range{Start: start, End: EndOfDay(start.AddDate(0, 1, -1))}
	case RangeQuarter:
		firstMonth := time.Month((int(u.Month())-1)/3*3 + 1)
		start := time.Date(u.Year(), firstMonth, 1, 0, 0, 0, 0, time.UTC)
		return Range{Start: start, End: EndOfDay(start.AddDate(0, 3, -1))}
	case RangeHalfYear:
		firstMonth := time.January
		if u.Month() > time.June {
			firstMonth = time.July
		}
		start := time.Date(u.Year(), firstMonth, 1, 0, 0, 0, 0, time.UTC)
		return Range{Start: start, End: EndOfDay(start.AddDate(0, 6, -1))}
	default:
		return Range{}
	}
}
