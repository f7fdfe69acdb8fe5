package integration_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/boddenberg/pf-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/handler"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/infra/cache"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/infra/observability"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/infra/supabase"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/paging"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/service"
)

// newStack wires the full request path against a fake PostgREST backend:
// Supabase client, chart + ledger services, router. Drains use small pages
// so a handful of fixture rows exercises multi-page fetching.
func newStack(baseURL string) http.Handler {
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	cb := resilience.NewCircuitBreaker("integration")
	cfg := resilience.Config{MaxRetries: 1, InitialBackoff: 5 * time.Millisecond}
	bh := resilience.NewBulkhead(10)
	httpClient := &http.Client{Timeout: 5 * time.Second}

	client := supabase.NewClient(httpClient, baseURL, "anon-key", "service-key", cb, bh, cfg, logger)

	chartSvc := service.NewAnalyticsService(
		client, client, client,
		cache.New[any](time.Minute, 32),
		metrics,
		logger,
		paging.Options{PageSize: 2, MaxPages: 5},
	)
	ledgerSvc := service.NewLedgerService(client, logger)

	return handler.NewRouter(chartSvc, ledgerSvc, nil, metrics, logger)
}

// TestIntegration_ComparisonChart drives the budget-vs-expenses chart
// through the whole stack: the pre-aggregated overview RPC on one side, a
// multi-page budget drain on the other, reconciled into one series.
func TestIntegration_ComparisonChart(t *testing.T) {
	budgetRows := []map[string]any{
		{"id": "b1", "customer_id": "cust-1", "category": "groceries", "amount": "100", "occurred_at": "2025-01-05T00:00:00Z"},
		{"id": "b2", "customer_id": "cust-1", "category": "transport", "amount": "60", "occurred_at": "2025-01-12T00:00:00Z"},
		{"id": "b3", "customer_id": "cust-1", "category": "leisure", "amount": "40", "occurred_at": "2025-01-20T00:00:00Z"},
	}
	var budgetPageCalls atomic.Int32

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/rest/v1/rpc/expense_overview" && r.Method == http.MethodPost:
			fmt.Fprint(w, `[{"bucket_label":"2025-01","total":120},{"bucket_label":"2025-02","total":80}]`)

		case r.URL.Path == "/rest/v1/budget_entries" && r.Method == http.MethodGet:
			budgetPageCalls.Add(1)
			offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
			limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
			end := offset + limit
			if offset > len(budgetRows) {
				offset = len(budgetRows)
			}
			if end > len(budgetRows) {
				end = len(budgetRows)
			}
			json.NewEncoder(w).Encode(budgetRows[offset:end])

		default:
			t.Errorf("unexpected backend call: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer backend.Close()

	router := newStack(backend.URL)

	req := httptest.NewRequest(http.MethodGet, "/v1/customers/cust-1/charts/comparison", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var result domain.ChartComparison
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(result.Series) != 2 {
		t.Fatalf("expected 2 buckets, got %d: %+v", len(result.Series), result.Series)
	}
	jan := result.Series[0]
	if jan.Label != "2025-01" {
		t.Errorf("expected 2025-01 first, got %q", jan.Label)
	}
	if !jan.Budget.Equal(decimal.RequireFromString("200")) {
		t.Errorf("january budget = %s, want 200", jan.Budget)
	}
	if !jan.Expenses.Equal(decimal.RequireFromString("120")) {
		t.Errorf("january expenses = %s, want 120", jan.Expenses)
	}
	if !jan.Remaining.Equal(decimal.RequireFromString("80")) {
		t.Errorf("january remaining = %s, want 80", jan.Remaining)
	}
	feb := result.Series[1]
	if feb.Label != "2025-02" || !feb.Budget.IsZero() || !feb.Remaining.Equal(decimal.RequireFromString("-80")) {
		t.Errorf("february bucket = %+v", feb)
	}
	if !result.Totals.Remaining.IsZero() {
		t.Errorf("totals remaining = %s, want 0", result.Totals.Remaining)
	}
	if result.Capped {
		t.Error("drain must not report capped for a short final page")
	}

	// 3 fixture rows at page size 2 means the drain had to page.
	if calls := budgetPageCalls.Load(); calls < 2 {
		t.Errorf("expected a multi-page budget drain, got %d page calls", calls)
	}
}

// TestIntegration_BudgetCRUD covers create, list and delete against the
// fake backend.
func TestIntegration_BudgetCRUD(t *testing.T) {
	var stored []map[string]any

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/rest/v1/budget_entries" && r.Method == http.MethodPost:
			var row map[string]any
			if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			row["created_at"] = "2025-02-01T10:00:00Z"
			stored = append(stored, row)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode([]map[string]any{row})

		case r.URL.Path == "/rest/v1/budget_entries" && r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(stored)

		case r.URL.Path == "/rest/v1/budget_entries" && r.Method == http.MethodDelete:
			stored = nil
			w.WriteHeader(http.StatusNoContent)

		default:
			t.Errorf("unexpected backend call: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer backend.Close()

	router := newStack(backend.URL)

	// Create
	body := `{"category":"groceries","amount":"350.00","occurred_at":"2025-02-01T00:00:00Z","notes":"monthly cap"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/customers/cust-1/budgets", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var created domain.Budget
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("create: failed to decode response: %v", err)
	}
	if created.ID == "" {
		t.Error("create: expected a generated id")
	}
	if created.CustomerID != "cust-1" {
		t.Errorf("create: customer id = %q", created.CustomerID)
	}
	if created.CreatedAt == nil {
		t.Error("create: expected the stored created_at to round-trip")
	}

	// List
	req = httptest.NewRequest(http.MethodGet, "/v1/customers/cust-1/budgets", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var budgets []domain.Budget
	if err := json.NewDecoder(rec.Body).Decode(&budgets); err != nil {
		t.Fatalf("list: failed to decode response: %v", err)
	}
	if len(budgets) != 1 || budgets[0].ID != created.ID {
		t.Errorf("list: got %+v", budgets)
	}

	// Delete
	req = httptest.NewRequest(http.MethodDelete, "/v1/customers/cust-1/budgets/"+created.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	if len(stored) != 0 {
		t.Errorf("delete: backend still holds %d rows", len(stored))
	}
}

// TestIntegration_BackendDown asserts a broken backend surfaces as 502, not
// as a hang or a 200 with garbage.
func TestIntegration_BackendDown(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer backend.Close()

	router := newStack(backend.URL)

	req := httptest.NewRequest(http.MethodGet, "/v1/customers/cust-1/charts/comparison", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d. Body: %s", rec.Code, rec.Body.String())
	}
}
