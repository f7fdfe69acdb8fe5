package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/boddenberg/pf-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/period"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func parsePagination(r *http.Request) (page, pageSize int) {
	page = 1
	pageSize = 20
	if v := r.URL.Query().Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if ps, err := strconv.Atoi(v); err == nil && ps > 0 && ps <= 100 {
			pageSize = ps
		}
	}
	return
}

// parseTimeParam accepts RFC3339 timestamps and plain dates, the two forms
// the frontend date picker sends.
func parseTimeParam(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// parseWindowParams reads optional start/end query parameters into a
// window. Date-only values are widened to the full day.
func parseWindowParams(r *http.Request) (period.Range, error) {
	q := r.URL.Query()
	startStr, endStr := q.Get("start"), q.Get("end")
	if startStr == "" && endStr == "" {
		return period.Range{}, nil
	}
	if startStr == "" || endStr == "" {
		return period.Range{}, &domain.ErrValidation{Field: "start/end", Message: "both bounds are required for a custom range"}
	}

	start, err := parseTimeParam(startStr)
	if err != nil {
		return period.Range{}, &domain.ErrValidation{Field: "start", Message: "must be RFC3339 or YYYY-MM-DD"}
	}
	end, err := parseTimeParam(endStr)
	if err != nil {
		return period.Range{}, &domain.ErrValidation{Field: "end", Message: "must be RFC3339 or YYYY-MM-DD"}
	}
	if len(endStr) == len("2006-01-02") {
		end = period.EndOfDay(end)
	}
	if end.Before(start) {
		return period.Range{}, &domain.ErrValidation{Field: "end", Message: "must not precede start"}
	}
	return period.Range{Start: start, End: end}, nil
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var circuitOpen *domain.ErrCircuitOpen
	var timeout *domain.ErrTimeout
	var validation *domain.ErrValidation
	var unauthorized *domain.ErrUnauthorized
	var stale *domain.ErrStaleRequest
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &timeout):
		logger.Error("request timeout", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &stale):
		// A newer selection already superseded this one; the frontend
		// keeps whatever it is showing and waits for the newer response.
		logger.Debug("stale chart build discarded", zap.String("error", err.Error()))
		w.WriteHeader(http.StatusNoContent)
	case errors.As(err, &external):
		logger.Error("external service failure", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
