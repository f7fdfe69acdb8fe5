// Package series reconciles bucketed money series into the chart payloads
// the dashboard renders: budget-vs-expenses comparisons and
// income-vs-expenses trends.
package series

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/boddenberg/pf-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/period"
)

// Source is one side of a reconciliation: either raw records that still
// need bucketing, or rows a backend already aggregated per bucket.
type Source struct {
	records     []domain.Record
	buckets     []domain.BucketAmount
	prebucketed bool
}

// FromRecords builds a Source the reconciler buckets itself.
func FromRecords(records []domain.Record) Source {
	return Source{records: records}
}

// FromBuckets builds a Source from server pre-aggregated rows. Labels are
// trusted as-is; rows sharing a label are summed.
func FromBuckets(buckets []domain.BucketAmount) Source {
	return Source{buckets: buckets, prebucketed: true}
}

// sums reduces the source into label -> total.
func (s Source) sums(g period.Granularity) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	if s.prebucketed {
		for _, b := range s.buckets {
			out[b.Label] = out[b.Label].Add(b.Amount)
		}
		return out
	}
	for _, r := range s.records {
		key := period.BucketKey(r.OccurredAt, g)
		out[key] = out[key].Add(r.Amount)
	}
	return out
}

// unionLabels merges the keys of both sides, sorted ascending.
func unionLabels(a, b map[string]decimal.Decimal) []string {
	labels := make([]string, 0, len(a)+len(b))
	for l := range a {
		labels = append(labels, l)
	}
	for l := range b {
		if _, ok := a[l]; !ok {
			labels = append(labels, l)
		}
	}
	sort.Strings(labels)
	return labels
}

// Reconcile merges the budget and expense sides into one series over the
// union of their bucket keys. A bucket present on only one side keeps the
// other side at zero; remaining is budget minus expenses per point, and
// the totals are the column sums of the emitted series.
func Reconcile(budgets, expenses Source, g period.Granularity) (domain.Series, domain.Totals) {
	budgetByLabel := budgets.sums(g)
	expensesByLabel := expenses.sums(g)

	out := make(domain.Series, 0, len(budgetByLabel)+len(expensesByLabel))
	var totals domain.Totals
	for _, label := range unionLabels(budgetByLabel, expensesByLabel) {
		budget := budgetByLabel[label]
		expense := expensesByLabel[label]
		out = append(out, domain.SeriesPoint{
			Label:     label,
			Budget:    budget,
			Expenses:  expense,
			Remaining: budget.Sub(expense),
		})
		totals.Budget = totals.Budget.Add(budget)
		totals.Expenses = totals.Expenses.Add(expense)
	}
	totals.Remaining = totals.Budget.Sub(totals.Expenses)
	return out, totals
}

// Trend buckets signed ledger movements into income and expense columns
// per period: positive amounts count as income, negative ones as expenses
// (by absolute value). Points come out label-ascending with
// balance = income - expenses.
func Trend(transactions []domain.Transaction, g period.Granularity) []domain.TrendPoint {
	income := make(map[string]decimal.Decimal)
	expenses := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		key := period.BucketKey(tx.OccurredAt, g)
		if tx.Amount.IsNegative() {
			expenses[key] = expenses[key].Add(tx.Amount.Abs())
		} else {
			income[key] = income[key].Add(tx.Amount)
		}
	}

	labels := unionLabels(income, expenses)
	out := make([]domain.TrendPoint, 0, len(labels))
	for _, label := range labels {
		in := income[label]
		ex := expenses[label]
		out = append(out, domain.TrendPoint{
			Label:    label,
			Income:   in,
			Expenses: ex,
			Balance:  in.Sub(ex),
		})
	}
	return out
}
