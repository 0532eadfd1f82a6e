package handlers

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/render"
	"sales-dashboard/internal/services"
)

type ExportHandlers struct {
	analytics *services.Analytics
	metrics   *observability.Metrics
	logger    *slog.Logger
}

func NewExportHandlers(analytics *services.Analytics, metrics *observability.Metrics, logger *slog.Logger) *ExportHandlers {
	return &ExportHandlers{
		analytics: analytics,
		metrics:   metrics,
		logger:    logger,
	}
}

type exportFunc func(w io.Writer, ds *models.Dataset) error

// HandleMonthlySalesHTML downloads the monthly sales chart as an interactive
// page.
func (h *ExportHandlers) HandleMonthlySalesHTML(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "html", render.HTMLFileName, render.HTMLContentType, func(w io.Writer, ds *models.Dataset) error {
		return render.WriteHTML(w, services.MonthlySalesChart(ds))
	})
}

func (h *ExportHandlers) HandleMonthlySalesPNG(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "png", render.PNGFileName, render.PNGContentType, func(w io.Writer, ds *models.Dataset) error {
		return render.WritePNG(w, services.MonthlySalesChart(ds))
	})
}

func (h *ExportHandlers) HandleWorkbook(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "xlsx", render.WorkbookFileName, render.WorkbookContentType, func(w io.Writer, ds *models.Dataset) error {
		return render.WriteWorkbook(w, ds, services.SummaryCards(ds))
	})
}

// serve renders into memory first so a failure can still be reported as a
// JSON error instead of a truncated download.
func (h *ExportHandlers) serve(w http.ResponseWriter, r *http.Request, format, filename, contentType string, write exportFunc) {
	requestID := observability.GetRequestID(r.Context())
	ctx, span := observability.StartSpan(r.Context(), "export "+format)
	defer span.End(ctx, h.logger)

	ds, err := h.analytics.Dataset(ctx)
	if err != nil {
		span.SetError(err)
		errors.WriteError(w, h.logger, appError(err), requestID)
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, ds); err != nil {
		span.SetError(err)
		if stderrors.Is(err, render.ErrNoData) {
			errors.WriteError(w, h.logger, errors.NoData(err, "Nothing to export"), requestID)
			return
		}
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Export failed"), requestID)
		return
	}

	h.metrics.IncExport(format)
	h.logger.Info("export served",
		"format", format,
		"bytes", buf.Len(),
		"request_id", requestID,
	)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("write export", "format", format, "error", err, "request_id", requestID)
	}
}
