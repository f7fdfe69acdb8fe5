package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/pf-dashboard-bfa-go/internal/config"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/handler"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/infra/cache"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/infra/observability"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/infra/supabase"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/paging"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("cache_max_items", cfg.CacheMaxItems),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Int("drain_page_size", cfg.DrainPageSize),
		zap.Int("drain_max_pages", cfg.DrainMaxPages),
		zap.Bool("auth_enabled", cfg.AuthEnabled),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "pf-dashboard-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	chartCache := cache.New[any](cfg.CacheTTL, cfg.CacheMaxItems)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxBackoff:     cfg.MaxBackoff,
	}
	cb := resilience.NewCircuitBreaker("supabase")
	bh := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var supabaseClient *supabase.Client
	if cfg.SupabaseURL != "" {
		logger.Info("using Supabase as data backend",
			zap.String("supabase_url", cfg.SupabaseURL),
		)
		supabaseClient = supabase.NewClient(
			httpClient,
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			cb,
			bh,
			resilienceCfg,
			logger,
		)
	}

	// --- Services ---
	var chartSvc *service.AnalyticsService
	var ledgerSvc *service.LedgerService
	if supabaseClient != nil {
		drainOpts := paging.Options{
			PageSize: cfg.DrainPageSize,
			MaxPages: cfg.DrainMaxPages,
		}
		chartSvc = service.NewAnalyticsService(
			supabaseClient,
			supabaseClient,
			supabaseClient,
			chartCache,
			metrics,
			logger,
			drainOpts,
		)
		ledgerSvc = service.NewLedgerService(supabaseClient, logger)
		logger.Info("dashboard services enabled with Supabase store")
	} else {
		logger.Warn("Supabase not configured, dashboard routes unavailable")
	}

	var verifier *service.TokenVerifier
	if cfg.AuthEnabled {
		verifier = service.NewTokenVerifier(cfg.JWTSecret, cfg.SessionWarnThreshold)
	} else {
		logger.Warn("authentication disabled, customer routes are public")
	}

	// --- Router ---
	router := handler.NewRouter(chartSvc, ledgerSvc, verifier, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
