package server

import (
	"log/slog"
	"net/http"

	"ecom-insights/internal/handlers"
	"ecom-insights/internal/observability"
)

type Server struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(
	apiHandlers *handlers.APIHandlers,
	sseHandlers *handlers.SSEHandlers,
	metrics *observability.Metrics,
	logger *slog.Logger,
	templateHandlers *TemplateHandlers,
) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: apiHandlers,
		sseHandlers: sseHandlers,
	}
	s.setupRoutes(templateHandlers, metrics)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers, metrics *observability.Metrics) {
	// Dashboard page and operational endpoints
	s.mux.HandleFunc("GET /", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	s.mux.HandleFunc("POST /admin/reload", s.apiHandlers.HandleReload)
	s.mux.Handle("GET /metrics", metrics.Handler())

	// REST API endpoints
	s.mux.HandleFunc("GET /api/products", s.apiHandlers.HandleProducts)
	s.mux.HandleFunc("GET /api/dashboard", s.apiHandlers.HandleDashboard)
	s.mux.HandleFunc("GET /api/categories", s.apiHandlers.HandleCategories)
	s.mux.HandleFunc("GET /api/demographics", s.apiHandlers.HandleDemographics)
	s.mux.HandleFunc("GET /api/revenue-insights", s.apiHandlers.HandleRevenueInsights)
	s.mux.HandleFunc("GET /api/top-products", s.apiHandlers.HandleTopProducts)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/categories", s.sseHandlers.HandleCategories)
	s.mux.HandleFunc("GET /sse/monthly-trends", s.sseHandlers.HandleMonthlyTrends)
	s.mux.HandleFunc("GET /sse/top-products", s.sseHandlers.HandleTopProducts)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
