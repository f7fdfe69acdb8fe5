package service

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/pf-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/period"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/port"
)

var ledgerTracer = otel.Tracer("service/ledger")

// LedgerService backs the budget and transaction screens of the dashboard.
type LedgerService struct {
	store  port.LedgerStore
	logger *zap.Logger
}

// NewLedgerService creates the ledger service.
func NewLedgerService(store port.LedgerStore, logger *zap.Logger) *LedgerService {
	return &LedgerService{store: store, logger: logger}
}

// ============================================================
// Budgets
// ============================================================

func (s *LedgerService) ListBudgets(ctx context.Context, customerID string) ([]domain.Budget, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListBudgets")
	defer span.End()

	return s.store.ListBudgets(ctx, customerID)
}

func (s *LedgerService) CreateBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.CreateBudget")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", budget.CustomerID))

	if budget.Category == "" {
		return nil, &domain.ErrValidation{Field: "category", Message: "required"}
	}
	if !budget.Amount.IsPositive() {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if budget.OccurredAt.IsZero() {
		return nil, &domain.ErrValidation{Field: "occurred_at", Message: "required"}
	}
	if budget.ID == "" {
		budget.ID = uuid.NewString()
	}

	return s.store.CreateBudget(ctx, budget)
}

func (s *LedgerService) UpdateBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.UpdateBudget")
	defer span.End()

	if budget.ID == "" {
		return nil, &domain.ErrValidation{Field: "id", Message: "required"}
	}
	if budget.Category == "" {
		return nil, &domain.ErrValidation{Field: "category", Message: "required"}
	}
	if !budget.Amount.IsPositive() {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}

	return s.store.UpdateBudget(ctx, budget)
}

func (s *LedgerService) DeleteBudget(ctx context.Context, customerID, budgetID string) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.DeleteBudget")
	defer span.End()

	if budgetID == "" {
		return &domain.ErrValidation{Field: "budgetId", Message: "required"}
	}

	return s.store.DeleteBudget(ctx, customerID, budgetID)
}

// ============================================================
// Transactions
// ============================================================

func (s *LedgerService) ListTransactions(ctx context.Context, customerID string, page, pageSize int, window period.Range, category string) ([]domain.Transaction, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListTransactions")
	defer span.End()

	return s.store.ListTransactions(ctx, customerID, page, pageSize, window, category)
}

func (s *LedgerService) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.CreateTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", tx.CustomerID))

	if tx.Amount.IsZero() {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be non-zero"}
	}
	if tx.Category == "" {
		return nil, &domain.ErrValidation{Field: "category", Message: "required"}
	}
	if tx.OccurredAt.IsZero() {
		return nil, &domain.ErrValidation{Field: "occurred_at", Message: "required"}
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	return s.store.CreateTransaction(ctx, tx)
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, customerID, transactionID string) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.DeleteTransaction")
	defer span.End()

	if transactionID == "" {
		return &domain.ErrValidation{Field: "transactionId", Message: "required"}
	}

	return s.store.DeleteTransaction(ctx, customerID, transactionID)
}
