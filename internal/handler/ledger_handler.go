package handler

import (
	"encoding/json"
	"net/http"

	"github.com/boddenberg/pf-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Budgets
// ============================================================

func listBudgetsHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/customers/{customerId}/budgets")
		defer span.End()

		customerID := chi.URLParam(r, "customerId")
		if !authorizeCustomer(w, r, customerID) {
			return
		}
		budgets, err := svc.ListBudgets(ctx, customerID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, budgets)
	}
}

func createBudgetHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/customers/{customerId}/budgets")
		defer span.End()

		customerID := chi.URLParam(r, "customerId")
		if !authorizeCustomer(w, r, customerID) {
			return
		}
		var budget domain.Budget
		if err := json.NewDecoder(r.Body).Decode(&budget); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		budget.CustomerID = customerID
		created, err := svc.CreateBudget(ctx, &budget)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateBudgetHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/customers/{customerId}/budgets/{budgetId}")
		defer span.End()

		customerID := chi.URLParam(r, "customerId")
		if !authorizeCustomer(w, r, customerID) {
			return
		}
		var budget domain.Budget
		if err := json.NewDecoder(r.Body).Decode(&budget); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		budget.ID = chi.URLParam(r, "budgetId")
		budget.CustomerID = customerID
		updated, err := svc.UpdateBudget(ctx, &budget)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteBudgetHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/customers/{customerId}/budgets/{budgetId}")
		defer span.End()

		customerID := chi.URLParam(r, "customerId")
		if !authorizeCustomer(w, r, customerID) {
			return
		}
		if err := svc.DeleteBudget(ctx, customerID, chi.URLParam(r, "budgetId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ============================================================
// Transactions
// ============================================================

func listTransactionsHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/customers/{customerId}/transactions")
		defer span.End()

		customerID := chi.URLParam(r, "customerId")
		if !authorizeCustomer(w, r, customerID) {
			return
		}
		page, pageSize := parsePagination(r)
		window, err := parseWindowParams(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		category := r.URL.Query().Get("category")

		transactions, err := svc.ListTransactions(ctx, customerID, page, pageSize, window, category)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.TransactionPage{
			Transactions: transactions,
			Page:         page,
			PageSize:     pageSize,
		})
	}
}

func createTransactionHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/customers/{customerId}/transactions")
		defer span.End()

		customerID := chi.URLParam(r, "customerId")
		if !authorizeCustomer(w, r, customerID) {
			return
		}
		var tx domain.Transaction
		if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		tx.CustomerID = customerID
		created, err := svc.CreateTransaction(ctx, &tx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func deleteTransactionHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/customers/{customerId}/transactions/{transactionId}")
		defer span.End()

		customerID := chi.URLParam(r, "customerId")
		if !authorizeCustomer(w, r, customerID) {
			return
		}
		if err := svc.DeleteTransaction(ctx, customerID, chi.URLParam(r, "transactionId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
