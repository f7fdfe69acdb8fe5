package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/boddenberg/pf-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/infra/observability"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/paging"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/period"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/port"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/series"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/analytics")

// ChartParams selects one chart computation: bucket width, date window and
// optional category filter. Custom, when set, wins over Quick. Now is
// injected for deterministic quick-range resolution; zero means wall clock.
type ChartParams struct {
	Granularity period.Granularity
	Quick       period.QuickRange
	Custom      period.Range
	Category    string
	Now         time.Time
}

func (p ChartParams) effectiveNow() time.Time {
	if p.Now.IsZero() {
		return time.Now()
	}
	return p.Now
}

func (p ChartParams) resolveWindow() period.Range {
	if !p.Custom.IsZero() {
		return p.Custom
	}
	if p.Quick == "" {
		return period.Range{}
	}
	return period.Resolve(p.Quick, p.effectiveNow())
}

// generations tracks the newest chart request per customer and chart so
// slower, superseded builds can be discarded instead of served.
type generations struct {
	mu      sync.Mutex
	current map[string]uint64
}

func newGenerations() *generations {
	return &generations{current: make(map[string]uint64)}
}

// begin registers a new build for key and returns its generation token.
func (g *generations) begin(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current[key]++
	return g.current[key]
}

// isCurrent reports whether gen is still the newest build for key.
func (g *generations) isCurrent(key string, gen uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current[key] == gen
}

// AnalyticsService builds the dashboard charts: it drains raw ledger pages,
// fans out to the pre-aggregated expense overview, and reconciles both into
// render-ready series.
type AnalyticsService struct {
	overview     port.ExpenseOverviewFetcher
	budgets      port.BudgetPager
	transactions port.TransactionPager
	cache        port.Cache[any]
	metrics      *observability.Metrics
	logger       *zap.Logger
	drainOpts    paging.Options
	generations  *generations
}

// NewAnalyticsService creates the analytics service with all dependencies
// injected.
func NewAnalyticsService(
	overview port.ExpenseOverviewFetcher,
	budgets port.BudgetPager,
	transactions port.TransactionPager,
	cache port.Cache[any],
	metrics *observability.Metrics,
	logger *zap.Logger,
	drainOpts paging.Options,
) *AnalyticsService {
	return &AnalyticsService{
		overview:     overview,
		budgets:      budgets,
		transactions: transactions,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
		drainOpts:    drainOpts,
		generations:  newGenerations(),
	}
}

// BuildComparison assembles the budget-vs-expenses chart. Expenses come
// from the pre-aggregated overview, budgets from a full page drain; both
// sides are fetched concurrently and reconciled over the union of their
// buckets. If a newer request for the same customer arrives while this one
// is in flight, the result is discarded with ErrStaleRequest.
func (s *AnalyticsService) BuildComparison(ctx context.Context, customerID string, p ChartParams) (*domain.ChartComparison, error) {
	// Bail out early if the caller already cancelled.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "AnalyticsService.BuildComparison")
	defer span.End()
	span.SetAttributes(
		attribute.String("customer.id", customerID),
		attribute.String("chart.granularity", string(p.Granularity)),
	)

	start := time.Now()
	defer func() {
		s.metrics.RecordChartBuildDuration("comparison", time.Since(start))
	}()

	genKey := "comparison:" + customerID
	gen := s.generations.begin(genKey)
	window := p.resolveWindow()

	cacheKey := chartCacheKey("comparison", customerID, p, window)
	if cached, ok := s.cache.Get(cacheKey); ok {
		if c, ok := cached.(*domain.ChartComparison); ok {
			s.metrics.IncrCacheHit("comparison")
			s.metrics.IncrChartBuild("success")
			return c, nil
		}
	}
	s.metrics.IncrCacheMiss("comparison")

	var (
		overview []domain.BucketAmount
		budgets  paging.Result[domain.Record]
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := s.overview.FetchExpenseOverview(gCtx, customerID, window, p.Granularity, p.Category)
		if err != nil {
			s.logger.Error("failed to fetch expense overview",
				zap.String("customer_id", customerID),
				zap.Error(err),
			)
			s.metrics.IncrExternalError("overview")
			return err
		}
		overview = rows
		return nil
	})

	g.Go(func() error {
		res, err := paging.Drain(gCtx, func(ctx context.Context, page, pageSize int) ([]domain.Record, error) {
			return s.budgets.FetchBudgetsPage(ctx, customerID, page, pageSize, window, p.Category)
		}, s.drainOpts)
		if err != nil {
			s.logger.Error("budget drain failed",
				zap.String("customer_id", customerID),
				zap.Error(err),
			)
			s.metrics.IncrExternalError("budgets")
			return err
		}
		budgets = res
		return nil
	})

	if err := g.Wait(); err != nil {
		s.metrics.IncrChartBuild("error")
		return nil, err
	}

	if !s.generations.isCurrent(genKey, gen) {
		s.metrics.IncrStaleDiscard("comparison")
		s.logger.Debug("discarding superseded comparison build",
			zap.String("customer_id", customerID),
			zap.Uint64("generation", gen),
		)
		return nil, &domain.ErrStaleRequest{Op: "comparison"}
	}

	s.metrics.ObserveDrainPages("budgets", budgets.Pages)
	if budgets.Capped {
		s.metrics.IncrCappedDrain("budgets")
		s.logger.Warn("budget drain hit the page cap, chart may be incomplete",
			zap.String("customer_id", customerID),
			zap.Int("pages", budgets.Pages),
		)
	}

	chartSeries, totals := series.Reconcile(
		series.FromRecords(budgets.Items),
		series.FromBuckets(overview),
		p.Granularity,
	)

	result := &domain.ChartComparison{
		Series: chartSeries,
		Totals: totals,
		Capped: budgets.Capped,
		Window: windowPayload(window),
	}
	s.cache.Set(cacheKey, result)
	s.metrics.IncrChartBuild("success")
	return result, nil
}

// BuildTrend assembles the income-vs-expenses chart from a full drain of
// the customer's ledger, bucketing the signed movements client-side.
func (s *AnalyticsService) BuildTrend(ctx context.Context, customerID string, p ChartParams) (*domain.ChartTrend, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "AnalyticsService.BuildTrend")
	defer span.End()
	span.SetAttributes(
		attribute.String("customer.id", customerID),
		attribute.String("chart.granularity", string(p.Granularity)),
	)

	start := time.Now()
	defer func() {
		s.metrics.RecordChartBuildDuration("trend", time.Since(start))
	}()

	genKey := "trend:" + customerID
	gen := s.generations.begin(genKey)
	window := p.resolveWindow()

	cacheKey := chartCacheKey("trend", customerID, p, window)
	if cached, ok := s.cache.Get(cacheKey); ok {
		if c, ok := cached.(*domain.ChartTrend); ok {
			s.metrics.IncrCacheHit("trend")
			s.metrics.IncrChartBuild("success")
			return c, nil
		}
	}
	s.metrics.IncrCacheMiss("trend")

	res, err := paging.Drain(ctx, func(ctx context.Context, page, pageSize int) ([]domain.Transaction, error) {
		return s.transactions.FetchTransactionsPage(ctx, customerID, page, pageSize, window, p.Category)
	}, s.drainOpts)
	if err != nil {
		s.logger.Error("transaction drain failed",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
		s.metrics.IncrExternalError("transactions")
		s.metrics.IncrChartBuild("error")
		return nil, err
	}

	if !s.generations.isCurrent(genKey, gen) {
		s.metrics.IncrStaleDiscard("trend")
		return nil, &domain.ErrStaleRequest{Op: "trend"}
	}

	s.metrics.ObserveDrainPages("transactions", res.Pages)
	if res.Capped {
		s.metrics.IncrCappedDrain("transactions")
		s.logger.Warn("transaction drain hit the page cap, chart may be incomplete",
			zap.String("customer_id", customerID),
			zap.Int("pages", res.Pages),
		)
	}

	result := &domain.ChartTrend{
		Points: series.Trend(res.Items, p.Granularity),
		Capped: res.Capped,
		Window: windowPayload(window),
	}
	s.cache.Set(cacheKey, result)
	s.metrics.IncrChartBuild("success")
	return result, nil
}

// SpanForLabel maps a bucket label back to its calendar bounds, nil when
// the label has none (weekly keys, malformed input).
func (s *AnalyticsService) SpanForLabel(ctx context.Context, g period.Granularity, label string) *period.Range {
	_, span := tracer.Start(ctx, "AnalyticsService.SpanForLabel")
	defer span.End()
	span.SetAttributes(attribute.String("chart.label", label))

	return period.SpanForKey(label, g)
}

// ResolveQuickRange resolves a named range picker entry against now.
func (s *AnalyticsService) ResolveQuickRange(ctx context.Context, q period.QuickRange, now time.Time) period.Range {
	_, span := tracer.Start(ctx, "AnalyticsService.ResolveQuickRange")
	defer span.End()
	span.SetAttributes(attribute.String("chart.range", string(q)))

	return period.Resolve(q, now)
}

// chartCacheKey folds every build parameter into the cache key, so any
// selection change is a distinct entry.
func chartCacheKey(chart, customerID string, p ChartParams, window period.Range) string {
	return fmt.Sprintf("%s:%s:%s:%s:%d:%d", chart, customerID, p.Granularity, p.Category,
		window.Start.UnixMilli(), window.End.UnixMilli())
}

// windowPayload converts a resolved window into the nullable bounds the
// frontend renders. The unbounded "all" window stays nil entirely.
func windowPayload(w period.Range) *domain.ChartWindow {
	if w.IsZero() {
		return nil
	}
	out := &domain.ChartWindow{}
	if !w.Start.IsZero() {
		start := w.Start
		out.Start = &start
	}
	if !w.End.IsZero() {
		end := w.End
		out.End = &end
	}
	return out
}
