package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/boddenberg/pf-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/handler"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/infra/cache"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/infra/observability"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/paging"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/period"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/service"
)

// --- Mock ---

type mockLedgerStore struct {
	budgets []domain.Budget
	txs     []domain.Transaction
	err     error
	deleted []string
}

func (m *mockLedgerStore) ListBudgets(_ context.Context, _ string) ([]domain.Budget, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.budgets, nil
}

func (m *mockLedgerStore) CreateBudget(_ context.Context, budget *domain.Budget) (*domain.Budget, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.budgets = append(m.budgets, *budget)
	return budget, nil
}

func (m *mockLedgerStore) UpdateBudget(_ context.Context, budget *domain.Budget) (*domain.Budget, error) {
	if m.err != nil {
		return nil, m.err
	}
	return budget, nil
}

func (m *mockLedgerStore) DeleteBudget(_ context.Context, _, budgetID string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, budgetID)
	return nil
}

func (m *mockLedgerStore) ListTransactions(_ context.Context, _ string, _, _ int, _ period.Range, _ string) ([]domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.txs, nil
}

func (m *mockLedgerStore) CreateTransaction(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.txs = append(m.txs, *tx)
	return tx, nil
}

func (m *mockLedgerStore) DeleteTransaction(_ context.Context, _, transactionID string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, transactionID)
	return nil
}

func newLedgerRouter(store *mockLedgerStore) http.Handler {
	chartSvc := service.NewAnalyticsService(
		&stubOverview{},
		&stubBudgetPager{},
		&stubTransactionPager{},
		cache.New[any](time.Minute, 16),
		observability.NewMetrics(),
		zap.NewNop(),
		paging.Options{},
	)
	ledgerSvc := service.NewLedgerService(store, zap.NewNop())
	return handler.NewRouter(chartSvc, ledgerSvc, nil, observability.NewMetrics(), zap.NewNop())
}

// --- Budgets ---

func TestListBudgetsEndpoint(t *testing.T) {
	store := &mockLedgerStore{budgets: []domain.Budget{
		{ID: "b1", CustomerID: "cust-1", Category: "groceries", Amount: dec("350"), OccurredAt: day("2025-02-01")},
		{ID: "b2", CustomerID: "cust-1", Category: "transport", Amount: dec("120"), OccurredAt: day("2025-02-01")},
	}}
	router := newLedgerRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/v1/customers/cust-1/budgets", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got []domain.Budget
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 budgets, got %d", len(got))
	}
}

func TestCreateBudgetEndpoint(t *testing.T) {
	store := &mockLedgerStore{}
	router := newLedgerRouter(store)

	body := `{"category":"groceries","amount":"350.00","occurred_at":"2025-02-01T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/customers/cust-1/budgets", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var got domain.Budget
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.ID == "" {
		t.Error("expected a generated budget id")
	}
	if got.CustomerID != "cust-1" {
		t.Errorf("customer id = %q, want the path customer", got.CustomerID)
	}
	if !got.Amount.Equal(dec("350.00")) {
		t.Errorf("amount = %s", got.Amount)
	}
}

func TestCreateBudgetEndpoint_InvalidBody(t *testing.T) {
	router := newLedgerRouter(&mockLedgerStore{})

	req := httptest.NewRequest(http.MethodPost, "/v1/customers/cust-1/budgets", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCreateBudgetEndpoint_MissingCategory(t *testing.T) {
	router := newLedgerRouter(&mockLedgerStore{})

	body := `{"amount":"350.00","occurred_at":"2025-02-01T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/customers/cust-1/budgets", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestUpdateBudgetEndpoint(t *testing.T) {
	router := newLedgerRouter(&mockLedgerStore{})

	body := `{"category":"groceries","amount":"400.00","occurred_at":"2025-02-01T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPut, "/v1/customers/cust-1/budgets/b1", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got domain.Budget
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.ID != "b1" {
		t.Errorf("id = %q, want the path id", got.ID)
	}
}

func TestDeleteBudgetEndpoint(t *testing.T) {
	store := &mockLedgerStore{}
	router := newLedgerRouter(store)

	req := httptest.NewRequest(http.MethodDelete, "/v1/customers/cust-1/budgets/b1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "b1" {
		t.Errorf("deleted = %v", store.deleted)
	}
}

// --- Transactions ---

func TestListTransactionsEndpoint(t *testing.T) {
	store := &mockLedgerStore{txs: []domain.Transaction{
		{ID: "t1", CustomerID: "cust-1", Amount: dec("-42.90"), OccurredAt: day("2025-02-10"), Category: "groceries"},
	}}
	router := newLedgerRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/v1/customers/cust-1/transactions?page=2&page_size=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got domain.TransactionPage
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.Page != 2 || got.PageSize != 5 {
		t.Errorf("envelope = page %d size %d", got.Page, got.PageSize)
	}
	if len(got.Transactions) != 1 {
		t.Errorf("expected 1 transaction, got %d", len(got.Transactions))
	}
}

func TestListTransactionsEndpoint_WindowValidation(t *testing.T) {
	router := newLedgerRouter(&mockLedgerStore{})

	req := httptest.NewRequest(http.MethodGet, "/v1/customers/cust-1/transactions?start=2025-01-01", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCreateTransactionEndpoint(t *testing.T) {
	store := &mockLedgerStore{}
	router := newLedgerRouter(store)

	body := `{"amount":"-42.90","category":"groceries","occurred_at":"2025-02-10T12:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/customers/cust-1/transactions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var got domain.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.ID == "" {
		t.Error("expected a generated transaction id")
	}
	if !got.Amount.Equal(dec("-42.90")) {
		t.Errorf("amount = %s", got.Amount)
	}
}

func TestCreateTransactionEndpoint_ZeroAmount(t *testing.T) {
	router := newLedgerRouter(&mockLedgerStore{})

	body := `{"amount":"0","category":"groceries","occurred_at":"2025-02-10T12:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/customers/cust-1/transactions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestDeleteTransactionEndpoint(t *testing.T) {
	store := &mockLedgerStore{}
	router := newLedgerRouter(store)

	req := httptest.NewRequest(http.MethodDelete, "/v1/customers/cust-1/transactions/t1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "t1" {
		t.Errorf("deleted = %v", store.deleted)
	}
}
