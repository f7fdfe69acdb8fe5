package observability

import (
	"time"

	"github.com/boddenberg/pf-dashboard-bfa-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the dashboard BFA.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	chartBuildDuration *prometheus.HistogramVec
	chartBuildsTotal   *prometheus.CounterVec
	drainPages         *prometheus.HistogramVec
	cappedDrains       *prometheus.CounterVec
	staleDiscards      *prometheus.CounterVec
	externalErrors     *prometheus.CounterVec
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		chartBuildDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pfd_chart_build_duration_seconds",
				Help:    "Duration of chart builds by chart type.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"chart"},
		),
		chartBuildsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pfd_chart_builds_total",
				Help: "Total chart builds processed.",
			},
			[]string{"status"},
		),
		drainPages: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pfd_drain_pages",
				Help:    "Pages fetched per drain by source.",
				Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
			},
			[]string{"source"},
		),
		cappedDrains: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pfd_capped_drains_total",
				Help: "Drains stopped by the page cap with data possibly remaining.",
			},
			[]string{"source"},
		),
		staleDiscards: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pfd_stale_discards_total",
				Help: "Chart builds discarded because a newer request superseded them.",
			},
			[]string{"chart"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pfd_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pfd_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pfd_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// RecordChartBuildDuration records how long one chart build took.
func (m *Metrics) RecordChartBuildDuration(chart string, d time.Duration) {
	m.chartBuildDuration.WithLabelValues(chart).Observe(d.Seconds())
}

// IncrChartBuild increments the chart build counter with a status label.
func (m *Metrics) IncrChartBuild(status string) {
	m.chartBuildsTotal.WithLabelValues(status).Inc()
}

// ObserveDrainPages records how many pages one drain walked.
func (m *Metrics) ObserveDrainPages(source string, pages int) {
	m.drainPages.WithLabelValues(source).Observe(float64(pages))
}

// IncrCappedDrain increments the capped-drain counter.
func (m *Metrics) IncrCappedDrain(source string) {
	m.cappedDrains.WithLabelValues(source).Inc()
}

// IncrStaleDiscard increments the stale-discard counter.
func (m *Metrics) IncrStaleDiscard(chart string) {
	m.staleDiscards.WithLabelValues(chart).Inc()
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// GetChartSnapshot returns a snapshot of chart-related metrics suitable for
// the GET /v1/metrics/charts endpoint.
func (m *Metrics) GetChartSnapshot() *domain.ChartStats {
	// Gather current values from Prometheus counters.
	// Note: Prometheus counters expose cumulative values.
	successCount := getCounterValue(m.chartBuildsTotal, "success")
	errorCount := getCounterValue(m.chartBuildsTotal, "error")
	totalBuilds := successCount + errorCount
	cacheHits := getCounterValue(m.cacheHits, "comparison") + getCounterValue(m.cacheHits, "trend")
	cacheMisses := getCounterValue(m.cacheMisses, "comparison") + getCounterValue(m.cacheMisses, "trend")
	staleDiscards := getCounterValue(m.staleDiscards, "comparison") + getCounterValue(m.staleDiscards, "trend")
	cappedDrains := getCounterValue(m.cappedDrains, "budgets") + getCounterValue(m.cappedDrains, "transactions")

	errorRate := float64(0)
	cacheHitRate := float64(0)
	if totalBuilds > 0 {
		errorRate = errorCount / totalBuilds
	}
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	return &domain.ChartStats{
		TotalBuilds:   int64(totalBuilds),
		ErrorRate:     errorRate,
		CacheHitRate:  cacheHitRate,
		StaleDiscards: int64(staleDiscards),
		CappedDrains:  int64(cappedDrains),
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
