// Package period implements calendar-period bucketing for the dashboard
// charts: reducing timestamps to bucket keys, resolving named quick ranges
// into concrete windows, and mapping bucket keys back to their exact spans.
// All functions are pure and operate on UTC calendar fields, so the same
// instant always lands in the same bucket regardless of server timezone.
package period

import (
	"fmt"
	"time"
)

// Granularity selects the width of a chart bucket.
type Granularity string

const (
	Weekly     Granularity = "weekly"
	Monthly    Granularity = "monthly"
	Quarterly  Granularity = "quarterly"
	HalfYearly Granularity = "half-yearly"
)

// ParseGranularity maps a query-string value to a Granularity.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case Weekly, Monthly, Quarterly, HalfYearly:
		return g, nil
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}

// Range is a closed date window. A zero Start or End leaves that side
// unbounded; the zero Range is the unbounded "all time" window.
type Range struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether both bounds are unset.
func (r Range) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether t falls inside the window, treating zero bounds
// as open.
func (r Range) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// BucketKey reduces a timestamp to the key of its calendar bucket:
// monthly "2025-02", quarterly "2025-Q1", half-yearly "2025-H1",
// weekly "2025-W07". Keys sort lexicographically in chronological order
// for monthly, quarterly and half-yearly granularities, and for weekly
// keys within one ISO year.
//
// Weekly keys use ISO-8601 week numbering (Thursday-anchored). The year
// component is the ISO year, which can differ from the calendar year in
// the days around January 1st.
func BucketKey(t time.Time, g Granularity) string {
	u := t.UTC()
	switch g {
	case Weekly:
		year, week := u.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case Quarterly:
		q := (int(u.Month())-1)/3 + 1
		return fmt.Sprintf("%04d-Q%d", u.Year(), q)
	case HalfYearly:
		h := 1
		if u.Month() > time.June {
			h = 2
		}
		return fmt.Sprintf("%04d-H%d", u.Year(), h)
	default:
		return u.Format("2006-01")
	}
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay moves t to 23:59:59.999 UTC. Millisecond precision matches what
// the chart tooltips render.
func EndOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, int(999*time.Millisecond), time.UTC)
}
