// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/boddenberg/pf-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/period"
)

// ExpenseOverviewFetcher runs the server pre-aggregated expense query:
// one row per bucket, already labeled and summed by the backend.
type ExpenseOverviewFetcher interface {
	FetchExpenseOverview(ctx context.Context, customerID string, window period.Range, g period.Granularity, category string) ([]domain.BucketAmount, error)
}

// BudgetPager fetches one page of raw budget entries inside a window.
// Pages are 1-indexed and come back in occurred_at order.
type BudgetPager interface {
	FetchBudgetsPage(ctx context.Context, customerID string, page, pageSize int, window period.Range, category string) ([]domain.Record, error)
}

// TransactionPager fetches one page of signed ledger movements inside a
// window. Pages are 1-indexed and come back in occurred_at order.
type TransactionPager interface {
	FetchTransactionsPage(ctx context.Context, customerID string, page, pageSize int, window period.Range, category string) ([]domain.Transaction, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// LedgerStore defines the CRUD operations behind the budget and
// transaction screens. Implemented by the Supabase adapter (or any other
// persistence layer).
type LedgerStore interface {
	// Budgets
	ListBudgets(ctx context.Context, customerID string) ([]domain.Budget, error)
	CreateBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error)
	UpdateBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error)
	DeleteBudget(ctx context.Context, customerID, budgetID string) error

	// Transactions
	ListTransactions(ctx context.Context, customerID string, page, pageSize int, window period.Range, category string) ([]domain.Transaction, error)
	CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, customerID, transactionID string) error
}
