package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/pf-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/period"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Charts
// ============================================================

// parseChartParams reads the shared chart selection from the query string:
// granularity (default monthly), a named range or a custom start/end window,
// an optional category filter and an optional now override for deterministic
// range resolution.
func parseChartParams(r *http.Request) (service.ChartParams, error) {
	q := r.URL.Query()

	granStr := q.Get("granularity")
	if granStr == "" {
		granStr = string(period.Monthly)
	}
	gran, err := period.ParseGranularity(granStr)
	if err != nil {
		return service.ChartParams{}, &domain.ErrValidation{Field: "granularity", Message: err.Error()}
	}

	custom, err := parseWindowParams(r)
	if err != nil {
		return service.ChartParams{}, err
	}

	quick := period.RangeAll
	if rangeStr := q.Get("range"); rangeStr != "" {
		quick, err = period.ParseQuickRange(rangeStr)
		if err != nil {
			return service.ChartParams{}, &domain.ErrValidation{Field: "range", Message: err.Error()}
		}
	}

	var now time.Time
	if nowStr := q.Get("now"); nowStr != "" {
		now, err = parseTimeParam(nowStr)
		if err != nil {
			return service.ChartParams{}, &domain.ErrValidation{Field: "now", Message: "must be RFC3339 or YYYY-MM-DD"}
		}
	}

	return service.ChartParams{
		Granularity: gran,
		Quick:       quick,
		Custom:      custom,
		Category:    q.Get("category"),
		Now:         now,
	}, nil
}

func chartComparisonHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/customers/{customerId}/charts/comparison")
		defer span.End()

		customerID := chi.URLParam(r, "customerId")
		if !authorizeCustomer(w, r, customerID) {
			return
		}
		params, err := parseChartParams(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		comparison, err := svc.BuildComparison(ctx, customerID, params)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, comparison)
	}
}

func chartTrendHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/customers/{customerId}/charts/trend")
		defer span.End()

		customerID := chi.URLParam(r, "customerId")
		if !authorizeCustomer(w, r, customerID) {
			return
		}
		params, err := parseChartParams(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		trend, err := svc.BuildTrend(ctx, customerID, params)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, trend)
	}
}

// ============================================================
// Bucket & Range Lookups
// ============================================================

func bucketSpanHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/charts/buckets/span")
		defer span.End()

		q := r.URL.Query()
		label := q.Get("label")
		if label == "" {
			writeError(w, http.StatusBadRequest, "label is required")
			return
		}
		granStr := q.Get("granularity")
		if granStr == "" {
			granStr = string(period.Monthly)
		}
		gran, err := period.ParseGranularity(granStr)
		if err != nil {
			handleServiceError(w, &domain.ErrValidation{Field: "granularity", Message: err.Error()}, logger)
			return
		}

		bounds := svc.SpanForLabel(ctx, gran, label)
		payload := domain.BucketSpan{Label: label, Granularity: string(gran)}
		if bounds != nil {
			payload.Span = &domain.ChartWindow{Start: &bounds.Start, End: &bounds.End}
		}
		writeJSON(w, http.StatusOK, payload)
	}
}

func quickRangeHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/charts/quick-ranges/{name}")
		defer span.End()

		quick, err := period.ParseQuickRange(chi.URLParam(r, "name"))
		if err != nil {
			handleServiceError(w, &domain.ErrValidation{Field: "name", Message: err.Error()}, logger)
			return
		}

		now := time.Now()
		if nowStr := r.URL.Query().Get("now"); nowStr != "" {
			now, err = parseTimeParam(nowStr)
			if err != nil {
				handleServiceError(w, &domain.ErrValidation{Field: "now", Message: "must be RFC3339 or YYYY-MM-DD"}, logger)
				return
			}
		}

		window := svc.ResolveQuickRange(ctx, quick, now)
		payload := domain.QuickRangeWindow{Name: string(quick)}
		if !window.IsZero() {
			payload.Window = &domain.ChartWindow{Start: &window.Start, End: &window.End}
		}
		writeJSON(w, http.StatusOK, payload)
	}
}
