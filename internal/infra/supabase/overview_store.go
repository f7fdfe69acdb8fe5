package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/boddenberg/pf-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/period"
)

// overviewRow maps one row of the expense_overview RPC result.
type overviewRow struct {
	BucketLabel string          `json:"bucket_label"`
	Total       decimal.Decimal `json:"total"`
}

// FetchExpenseOverview calls the expense_overview RPC, which groups a
// customer's expenses per bucket server-side and returns labeled sums.
// The RPC owns its label format; rows are passed through untouched so the
// chart engine reconciles against exactly what the backend aggregated.
func (c *Client) FetchExpenseOverview(ctx context.Context, customerID string, window period.Range, g period.Granularity, category string) ([]domain.BucketAmount, error) {
	ctx, span := tracer.Start(ctx, "Supabase.FetchExpenseOverview")
	defer span.End()
	span.SetAttributes(
		attribute.String("customer.id", customerID),
		attribute.String("granularity", string(g)),
	)

	args := map[string]any{
		"p_customer_id": customerID,
		"p_granularity": string(g),
	}
	if !window.Start.IsZero() {
		args["p_from"] = window.Start.UTC().Format(time.RFC3339)
	}
	if !window.End.IsZero() {
		args["p_to"] = window.End.UTC().Format(time.RFC3339)
	}
	if category != "" {
		args["p_category"] = category
	}

	var buckets []domain.BucketAmount

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := c.doPost(ctx, "rpc/expense_overview", args)
			if err != nil {
				return err
			}

			if len(body) == 0 || string(body) == "[]" {
				buckets = []domain.BucketAmount{}
				return nil
			}

			var rows []overviewRow
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode expense overview: %w", err)
			}

			buckets = make([]domain.BucketAmount, 0, len(rows))
			for _, r := range rows {
				buckets = append(buckets, domain.BucketAmount{
					Label:  r.BucketLabel,
					Amount: r.Total,
				})
			}
			return nil
		})
	})

	if err != nil {
		return nil, classify("supabase/overview", err)
	}

	return buckets, nil
}
