package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/pf-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/infra/observability"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract defined for the dashboard frontend.
func NewRouter(chartSvc *service.AnalyticsService, ledgerSvc *service.LedgerService, verifier *service.TokenVerifier, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(ledgerSvc, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Chart build metrics
		// GET /v1/metrics/charts
		// =============================================
		r.Get("/metrics/charts", chartStatsHandler(metrics, logger))

		if chartSvc == nil || ledgerSvc == nil {
			r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeError(w, http.StatusServiceUnavailable, "dashboard services unavailable: Supabase not configured")
			}))
			return
		}

		// =============================================
		// Bucket & range lookups (no customer data)
		// GET /v1/charts/buckets/span
		// GET /v1/charts/quick-ranges/{name}
		// =============================================
		r.Get("/charts/buckets/span", bucketSpanHandler(chartSvc, logger))
		r.Get("/charts/quick-ranges/{name}", quickRangeHandler(chartSvc, logger))

		// =============================================
		// Customer-scoped routes (protected when a
		// token verifier is configured)
		// =============================================
		r.Group(func(r chi.Router) {
			if verifier != nil {
				r.Use(JWTAuthMiddleware(verifier, logger))
			}

			// Charts
			r.Get("/customers/{customerId}/charts/comparison", chartComparisonHandler(chartSvc, logger))
			r.Get("/customers/{customerId}/charts/trend", chartTrendHandler(chartSvc, logger))

			// Budgets
			r.Get("/customers/{customerId}/budgets", listBudgetsHandler(ledgerSvc, logger))
			r.Post("/customers/{customerId}/budgets", createBudgetHandler(ledgerSvc, logger))
			r.Put("/customers/{customerId}/budgets/{budgetId}", updateBudgetHandler(ledgerSvc, logger))
			r.Delete("/customers/{customerId}/budgets/{budgetId}", deleteBudgetHandler(ledgerSvc, logger))

			// Transactions
			r.Get("/customers/{customerId}/transactions", listTransactionsHandler(ledgerSvc, logger))
			r.Post("/customers/{customerId}/transactions", createTransactionHandler(ledgerSvc, logger))
			r.Delete("/customers/{customerId}/transactions/{transactionId}", deleteTransactionHandler(ledgerSvc, logger))
		})
	})

	return r
}

// ============================================================
// Metrics & Health
// ============================================================

func healthzHandler(ledgerSvc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "pfd-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if ledgerSvc != nil {
			start := time.Now()
			_, err := ledgerSvc.ListBudgets(ctx, "health-check")
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "supabase", Status: status, LatencyMs: latency, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func chartStatsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := metrics.GetChartSnapshot()
		writeJSON(w, http.StatusOK, snapshot)
	}
}

// ============================================================
// Probes
// ============================================================

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
