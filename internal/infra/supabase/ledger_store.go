package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/boddenberg/pf-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/period"
)

// ============================================================
// Row mappings
// ============================================================

// transactionRow maps the transactions table columns.
type transactionRow struct {
	ID          string          `json:"id"`
	CustomerID  string          `json:"customer_id"`
	Amount      decimal.Decimal `json:"amount"`
	OccurredAt  string          `json:"occurred_at"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	CreatedAt   string          `json:"created_at"`
}

func (r transactionRow) toDomain() domain.Transaction {
	return domain.Transaction{
		ID:          r.ID,
		CustomerID:  r.CustomerID,
		Amount:      r.Amount,
		OccurredAt:  parseRowTime(r.OccurredAt),
		Category:    r.Category,
		Description: r.Description,
		CreatedAt:   rowCreatedAt(r.CreatedAt),
	}
}

// budgetRow maps the budget_entries table columns.
type budgetRow struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt string          `json:"occurred_at"`
	Notes      string          `json:"notes"`
	CreatedAt  string          `json:"created_at"`
}

func (r budgetRow) toDomain() domain.Budget {
	return domain.Budget{
		ID:         r.ID,
		CustomerID: r.CustomerID,
		Category:   r.Category,
		Amount:     r.Amount,
		OccurredAt: parseRowTime(r.OccurredAt),
		Notes:      r.Notes,
		CreatedAt:  rowCreatedAt(r.CreatedAt),
	}
}

// ============================================================
// Page fetchers (implement port.BudgetPager / port.TransactionPager)
// ============================================================

// FetchBudgetsPage fetches one page of budget entries inside a window,
// reduced to the fields the chart engine buckets on.
func (c *Client) FetchBudgetsPage(ctx context.Context, customerID string, page, pageSize int, window period.Range, category string) ([]domain.Record, error) {
	ctx, span := tracer.Start(ctx, "Supabase.FetchBudgetsPage")
	defer span.End()
	span.SetAttributes(
		attribute.String("customer.id", customerID),
		attribute.Int("page", page),
	)

	var records []domain.Record

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			offset := (page - 1) * pageSize
			path := fmt.Sprintf("budget_entries?customer_id=eq.%s%s&order=occurred_at.asc&limit=%d&offset=%d",
				customerID, windowFilter("occurred_at", window, category), pageSize, offset)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				records = []domain.Record{}
				return nil
			}

			var rows []budgetRow
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode budget entries: %w", err)
			}

			records = make([]domain.Record, 0, len(rows))
			for _, r := range rows {
				records = append(records, domain.Record{
					ID:         r.ID,
					CustomerID: r.CustomerID,
					Amount:     r.Amount,
					OccurredAt: parseRowTime(r.OccurredAt),
					Category:   r.Category,
				})
			}
			return nil
		})
	})

	if err != nil {
		return nil, classify("supabase/budgets", err)
	}

	return records, nil
}

// FetchTransactionsPage fetches one page of signed ledger movements inside
// a window.
func (c *Client) FetchTransactionsPage(ctx context.Context, customerID string, page, pageSize int, window period.Range, category string) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.FetchTransactionsPage")
	defer span.End()
	span.SetAttributes(
		attribute.String("customer.id", customerID),
		attribute.Int("page", page),
	)

	var transactions []domain.Transaction

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			offset := (page - 1) * pageSize
			path := fmt.Sprintf("transactions?customer_id=eq.%s%s&order=occurred_at.asc&limit=%d&offset=%d",
				customerID, windowFilter("occurred_at", window, category), pageSize, offset)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				transactions = []domain.Transaction{}
				return nil
			}

			var rows []transactionRow
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode transactions: %w", err)
			}

			transactions = make([]domain.Transaction, 0, len(rows))
			for _, r := range rows {
				transactions = append(transactions, r.toDomain())
			}
			return nil
		})
	})

	if err != nil {
		return nil, classify("supabase/transactions", err)
	}

	return transactions, nil
}

// ============================================================
// Budget CRUD (implements part of port.LedgerStore)
// ============================================================

// ListBudgets returns every budget entry for a customer, newest first.
func (c *Client) ListBudgets(ctx context.Context, customerID string) ([]domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListBudgets")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", customerID))

	var budgets []domain.Budget

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("budget_entries?customer_id=eq.%s&order=occurred_at.desc", customerID)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				budgets = []domain.Budget{}
				return nil
			}

			var rows []budgetRow
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode budget entries: %w", err)
			}

			budgets = make([]domain.Budget, 0, len(rows))
			for _, r := range rows {
				budgets = append(budgets, r.toDomain())
			}
			return nil
		})
	})

	if err != nil {
		return nil, classify("supabase/budgets", err)
	}

	return budgets, nil
}

// CreateBudget inserts a budget entry and returns the stored row.
func (c *Client) CreateBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateBudget")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", budget.CustomerID))

	data := map[string]any{
		"id":          budget.ID,
		"customer_id": budget.CustomerID,
		"category":    budget.Category,
		"amount":      budget.Amount.String(),
		"occurred_at": budget.OccurredAt.UTC().Format(time.RFC3339),
	}
	if budget.Notes != "" {
		data["notes"] = budget.Notes
	}

	body, err := c.doPost(ctx, "budget_entries", data)
	if err != nil {
		return nil, classify("supabase/budgets", err)
	}

	var rows []budgetRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, classify("supabase/budgets", fmt.Errorf("decode created budget: %w", err))
	}
	if len(rows) == 0 {
		return nil, classify("supabase/budgets", fmt.Errorf("no result returned from budget_entries insert"))
	}

	created := rows[0].toDomain()
	return &created, nil
}

// UpdateBudget patches the mutable columns of a budget entry.
func (c *Client) UpdateBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateBudget")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", budget.CustomerID))

	data := map[string]any{
		"category":    budget.Category,
		"amount":      budget.Amount.String(),
		"occurred_at": budget.OccurredAt.UTC().Format(time.RFC3339),
		"notes":       budget.Notes,
	}

	path := fmt.Sprintf("budget_entries?id=eq.%s&customer_id=eq.%s", budget.ID, budget.CustomerID)
	if err := c.doPatch(ctx, path, data); err != nil {
		return nil, classify("supabase/budgets", err)
	}

	return budget, nil
}

// DeleteBudget removes a budget entry. Deleting an already absent row is
// a no-op, matching PostgREST semantics.
func (c *Client) DeleteBudget(ctx context.Context, customerID, budgetID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteBudget")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", customerID))

	path := fmt.Sprintf("budget_entries?id=eq.%s&customer_id=eq.%s", budgetID, customerID)
	if err := c.doDelete(ctx, path); err != nil {
		return classify("supabase/budgets", err)
	}
	return nil
}

// ============================================================
// Transaction CRUD (implements part of port.LedgerStore)
// ============================================================

// ListTransactions returns one page of a customer's ledger, newest first.
func (c *Client) ListTransactions(ctx context.Context, customerID string, page, pageSize int, window period.Range, category string) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTransactions")
	defer span.End()
	span.SetAttributes(
		attribute.String("customer.id", customerID),
		attribute.Int("page", page),
	)

	var transactions []domain.Transaction

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			offset := (page - 1) * pageSize
			path := fmt.Sprintf("transactions?customer_id=eq.%s%s&order=occurred_at.desc&limit=%d&offset=%d",
				customerID, windowFilter("occurred_at", window, category), pageSize, offset)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				transactions = []domain.Transaction{}
				return nil
			}

			var rows []transactionRow
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode transactions: %w", err)
			}

			transactions = make([]domain.Transaction, 0, len(rows))
			for _, r := range rows {
				transactions = append(transactions, r.toDomain())
			}
			return nil
		})
	})

	if err != nil {
		return nil, classify("supabase/transactions", err)
	}

	return transactions, nil
}

// CreateTransaction inserts a ledger movement and returns the stored row.
func (c *Client) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", tx.CustomerID))

	data := map[string]any{
		"id":          tx.ID,
		"customer_id": tx.CustomerID,
		"amount":      tx.Amount.String(),
		"occurred_at": tx.OccurredAt.UTC().Format(time.RFC3339),
		"category":    tx.Category,
	}
	if tx.Description != "" {
		data["description"] = tx.Description
	}

	body, err := c.doPost(ctx, "transactions", data)
	if err != nil {
		return nil, classify("supabase/transactions", err)
	}

	var rows []transactionRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, classify("supabase/transactions", fmt.Errorf("decode created transaction: %w", err))
	}
	if len(rows) == 0 {
		return nil, classify("supabase/transactions", fmt.Errorf("no result returned from transactions insert"))
	}

	created := rows[0].toDomain()
	return &created, nil
}

// DeleteTransaction removes a ledger movement.
func (c *Client) DeleteTransaction(ctx context.Context, customerID, transactionID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", customerID))

	path := fmt.Sprintf("transactions?id=eq.%s&customer_id=eq.%s", transactionID, customerID)
	if err := c.doDelete(ctx, path); err != nil {
		return classify("supabase/transactions", err)
	}
	return nil
}
