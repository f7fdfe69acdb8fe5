package period

import (
	"regexp"
	"strconv"
	"time"
)

var (
	monthKeyRe   = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	quarterKeyRe = regexp.MustCompile(`^(\d{4})-Q([1-4])$`)
	halfKeyRe    = regexp.MustCompile(`^(\d{4})-H([12])$`)
)

// SpanForKey reconstructs the exact calendar bounds of a bucket key, for
// tooltip display. It returns nil for weekly keys, whose approximation has
// no reliable inverse, and for any label that does not match the shape of
// the given granularity. Callers treat nil as "no span available", not as
// an error.
func SpanForKey(label string, g Granularity) *Range {
	switch g {
	case Monthly:
		m := monthKeyRe.FindStringSubmatch(label)
		if m == nil {
			return nil
		}
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return nil
		}
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		return &Range{Start: start, End: EndOfDay(start.AddDate(0, 1, -1))}
	case Quarterly:
		m := quarterKeyRe.FindStringSubmatch(label)
		if m == nil {
			return nil
		}
		year, _ := strconv.Atoi(m[1])
		quarter, _ := strconv.Atoi(m[2])
		start := time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
		return &Range{Start: start, End: EndOfDay(start.AddDate(0, 3, -1))}
	case HalfYearly:
		m := halfKeyRe.FindStringSubmatch(label)
		if m == nil {
			return nil
		}
		year, _ := strconv.Atoi(m[1])
		half, _ := strconv.Atoi(m[2])
		firstMonth := time.January
		if half == 2 {
			firstMonth = time.July
		}
		start := time.Date(year, firstMonth, 1, 0, 0, 0, 0, time.UTC)
		return &Range{Start: start, End: EndOfDay(start.AddDate(0, 6, -1))}
	}
	return nil
}
