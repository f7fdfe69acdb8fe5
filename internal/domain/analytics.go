package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Chart inputs
// ============================================================

// Record is one raw financial record as the chart engine consumes it,
// source-agnostic: a budget entry or an expense line reduced to the fields
// bucketing needs.
type Record struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurred_at"`
	Category   string          `json:"category,omitempty"`
}

// BucketAmount is one row of a series a backend already aggregated per
// bucket, label included.
type BucketAmount struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// ============================================================
// Chart payloads (match the dashboard frontend)
// ============================================================

// SeriesPoint is one reconciled bucket of the budget-vs-expenses chart.
// Remaining is always Budget minus Expenses, never set independently.
type SeriesPoint struct {
	Label     string          `json:"label"`
	Budget    decimal.Decimal `json:"budget"`
	Expenses  decimal.Decimal `json:"expenses"`
	Remaining decimal.Decimal `json:"remaining"`
}

// Series is a label-ascending sequence of points, one per bucket.
type Series []SeriesPoint

// Totals aggregates a whole series.
type Totals struct {
	Budget    decimal.Decimal `json:"budget"`
	Expenses  decimal.Decimal `json:"expenses"`
	Remaining decimal.Decimal `json:"remaining"`
}

// ChartWindow echoes the resolved date window of a chart. Nil bounds mean
// that side is unbounded.
type ChartWindow struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// ChartComparison is returned by
// GET /v1/customers/{id}/charts/comparison.
type ChartComparison struct {
	Series Series       `json:"series"`
	Totals Totals       `json:"totals"`
	Capped bool         `json:"capped"`
	Window *ChartWindow `json:"window,omitempty"`
}

// TrendPoint is one bucket of the income-vs-expenses chart.
type TrendPoint struct {
	Label    string          `json:"label"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

// ChartTrend is returned by GET /v1/customers/{id}/charts/trend.
type ChartTrend struct {
	Points []TrendPoint `json:"points"`
	Capped bool         `json:"capped"`
	Window *ChartWindow `json:"window,omitempty"`
}

// BucketSpan is returned by GET /v1/charts/buckets/span. Span is null when
// the label has no reconstructible bounds.
type BucketSpan struct {
	Label       string       `json:"label"`
	Granularity string       `json:"granularity"`
	Span        *ChartWindow `json:"span"`
}

// QuickRangeWindow is returned by GET /v1/charts/quick-ranges/{name}.
type QuickRangeWindow struct {
	Name   string       `json:"name"`
	Window *ChartWindow `json:"window"`
}

// ChartStats is returned by GET /v1/metrics/charts.
type ChartStats struct {
	TotalBuilds   int64   `json:"totalBuilds"`
	ErrorRate     float64 `json:"errorRate"`
	CacheHitRate  float64 `json:"cacheHitRate"`
	StaleDiscards int64   `json:"staleDiscards"`
	CappedDrains  int64   `json:"cappedDrains"`
}
