package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

type APIHandlers struct {
	analytics *services.Analytics
	metrics   *observability.Metrics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, metrics *observability.Metrics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		metrics:   metrics,
		logger:    logger,
	}
}

type viewInfo struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
}

func (h *APIHandlers) HandleViews(w http.ResponseWriter, r *http.Request) {
	views := models.Views()
	data := make([]viewInfo, 0, len(views))
	for _, v := range views {
		data = append(data, viewInfo{Slug: v.Slug(), Label: v.Label()})
	}
	errors.WriteSuccess(w, data)
}

func (h *APIHandlers) HandleView(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	view, err := models.ParseView(r.PathValue("view"))
	if err != nil {
		errors.WriteError(w, h.logger, appError(err), requestID)
		return
	}

	params, err := paramsFromQuery(r.URL.Query())
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	vm, err := renderView(r.Context(), h.analytics, h.metrics, view, params)
	if err != nil {
		errors.WriteError(w, h.logger, appError(err), requestID)
		return
	}

	errors.WriteSuccessWithHeaders(w, vm, map[string]string{
		"Cache-Control": cacheMaxAge,
	})
}

type aggregateResponse struct {
	Dimension string          `json:"dimension"`
	Metric    string          `json:"metric"`
	Total     string          `json:"total"`
	Buckets   []models.Bucket `json:"buckets"`
}

// HandleAggregate answers ad-hoc group-by queries:
// /api/aggregate?dimension=Region&metric=Sales&top=5
func (h *APIHandlers) HandleAggregate(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	q := r.URL.Query()

	dim, err := models.ParseDimension(q.Get("dimension"))
	if err != nil {
		errors.WriteError(w, h.logger, appError(err), requestID)
		return
	}
	metric, err := models.ParseMetric(q.Get("metric"))
	if err != nil {
		errors.WriteError(w, h.logger, appError(err), requestID)
		return
	}

	top := 0
	if raw := q.Get("top"); raw != "" {
		if top, err = strconv.Atoi(raw); err != nil {
			errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "top must be an integer"), requestID)
			return
		}
	}

	agg, err := h.analytics.Aggregate(r.Context(), dim, metric, top)
	if err != nil {
		errors.WriteError(w, h.logger, appError(err), requestID)
		return
	}

	errors.WriteSuccessWithHeaders(w, aggregateResponse{
		Dimension: dim.Name(),
		Metric:    metric.Name(),
		Total:     agg.Total().String(),
		Buckets:   agg.Buckets,
	}, map[string]string{
		"Cache-Control": cacheMaxAge,
	})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := h.analytics.Dataset(r.Context()); err != nil {
		errors.WriteError(w, h.logger,
			errors.ServiceUnavailable(err, "Dataset is not available"),
			observability.GetRequestID(r.Context()))
		return
	}

	errors.WriteSuccess(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}
