package server

import (
	"log/slog"
	"net/http"

	"sales-dashboard/internal/handlers"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

type Server struct {
	analytics      *services.Analytics
	metrics        *observability.Metrics
	mux            *http.ServeMux
	logger         *slog.Logger
	apiHandlers    *handlers.APIHandlers
	sseHandlers    *handlers.SSEHandlers
	exportHandlers *handlers.ExportHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(analytics *services.Analytics, metrics *observability.Metrics, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		analytics:      analytics,
		metrics:        metrics,
		mux:            http.NewServeMux(),
		logger:         logger,
		apiHandlers:    handlers.NewAPIHandlers(analytics, metrics, logger),
		sseHandlers:    handlers.NewSSEHandlers(analytics, metrics, logger),
		exportHandlers: handlers.NewExportHandlers(analytics, metrics, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	// REST API endpoints
	s.mux.HandleFunc("GET /api/views", s.apiHandlers.HandleViews)
	s.mux.HandleFunc("GET /api/views/{view}", s.apiHandlers.HandleView)
	s.mux.HandleFunc("GET /api/aggregate", s.apiHandlers.HandleAggregate)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/view", s.sseHandlers.HandleView)

	// Downloads
	s.mux.HandleFunc("GET /export/monthly-sales.html", s.exportHandlers.HandleMonthlySalesHTML)
	s.mux.HandleFunc("GET /export/monthly-sales.png", s.exportHandlers.HandleMonthlySalesPNG)
	s.mux.HandleFunc("GET /export/sales-data.xlsx", s.exportHandlers.HandleWorkbook)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
