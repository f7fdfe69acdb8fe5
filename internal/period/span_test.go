package period_test

import (
	"testing"
	"time"

	"github.com/boddenberg/pf-dashboard-bfa-go/internal/period"
)

func TestSpanForKey_Monthly(t *testing.T) {
	span := period.SpanForKey("2025-02", period.Monthly)
	if span == nil {
		t.Fatal("expected span for valid monthly label")
	}

	wantStart := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, time.February, 28, 23, 59, 59, 999000000, time.UTC)
	if !span.Start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", span.Start, wantStart)
	}
	if !span.End.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", span.End, wantEnd)
	}
}

func TestSpanForKey_MonthlyLeapFebruary(t *testing.T) {
	span := period.SpanForKey("2024-02", period.Monthly)
	if span == nil {
		t.Fatal("expected span for valid monthly label")
	}
	wantEnd := time.Date(2024, time.February, 29, 23, 59, 59, 999000000, time.UTC)
	if !span.End.Equal(wantEnd) {
		t.Errorf("leap february end = %v, want %v", span.End, wantEnd)
	}
}

func TestSpanForKey_Quarterly(t *testing.T) {
	span := period.SpanForKey("2025-Q3", period.Quarterly)
	if span == nil {
		t.Fatal("expected span for valid quarterly label")
	}
	wantStart := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, time.September, 30, 23, 59, 59, 999000000, time.UTC)
	if !span.Start.Equal(wantStart) || !span.End.Equal(wantEnd) {
		t.Errorf("span = %v..%v, want %v..%v", span.Start, span.End, wantStart, wantEnd)
	}
}

func TestSpanForKey_HalfYearly(t *testing.T) {
	span := period.SpanForKey("2025-H2", period.HalfYearly)
	if span == nil {
		t.Fatal("expected span for valid half-yearly label")
	}
	wantStart := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, time.December, 31, 23, 59, 59, 999000000, time.UTC)
	if !span.Start.Equal(wantStart) || !span.End.Equal(wantEnd) {
		t.Errorf("span = %v..%v, want %v..%v", span.Start, span.End, wantStart, wantEnd)
	}
}

func TestSpanForKey_WeeklyUnsupported(t *testing.T) {
	if span := period.SpanForKey("2025-W07", period.Weekly); span != nil {
		t.Errorf("weekly labels have no span, got %v..%v", span.Start, span.End)
	}
}

func TestSpanForKey_Malformed(t *testing.T) {
	tests := []struct {
		label string
		g     period.Granularity
	}{
		{"2025-13", period.Monthly},
		{"2025-00", period.Monthly},
		{"2025-2", period.Monthly},
		{"garbage", period.Monthly},
		{"2025-Q5", period.Quarterly},
		{"2025-02", period.Quarterly},
		{"2025-H3", period.HalfYearly},
		{"", period.Monthly},
	}

	for _, tt := range tests {
		if span := period.SpanForKey(tt.label, tt.g); span != nil {
			t.Errorf("SpanForKey(%q, %s) = %v..%v, want nil", tt.label, tt.g, span.Start, span.End)
		}
	}
}

func TestSpanForKey_RoundTrip(t *testing.T) {
	timestamps := []time.Time{
		time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.February, 14, 13, 37, 0, 0, time.UTC),
		time.Date(2025, time.June, 30, 23, 59, 59, 0, time.UTC),
		time.Date(2025, time.December, 31, 12, 0, 0, 0, time.UTC),
	}

	for _, g := range []period.Granularity{period.Monthly, period.Quarterly, period.HalfYearly} {
		for _, ts := range timestamps {
			key := period.BucketKey(ts, g)
			span := period.SpanForKey(key, g)
			if span == nil {
				t.Fatalf("no span for key %q (%s)", key, g)
			}
			if !span.Contains(ts) {
				t.Errorf("span %v..%v for key %q does not contain %v", span.Start, span.End, key, ts)
			}
			if period.BucketKey(span.Start, g) != key || period.BucketKey(span.End, g) != key {
				t.Errorf("span bounds of %q map outside the bucket", key)
			}
		}
	}
}
