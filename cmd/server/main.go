package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"ecom-insights/internal/analytics"
	"ecom-insights/internal/config"
	"ecom-insights/internal/dataset"
	"ecom-insights/internal/handlers"
	"ecom-insights/internal/middleware"
	"ecom-insights/internal/observability"
	"ecom-insights/internal/server"
	"ecom-insights/internal/ui/templates"
)

const (
	renderTimeout  = 10 * time.Second
	csvLoadTimeout = 30 * time.Second
	cacheMaxAge    = "public, max-age=300"
)

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Cache-Control", cacheMaxAge)
	if err := templates.Dashboard().Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	metrics := observability.NewMetrics()
	store := dataset.NewStore()
	loader := dataset.NewLoader(cfg.Dataset, logger)

	ctx, cancel := context.WithTimeout(context.Background(), csvLoadTimeout)
	defer cancel()

	start := time.Now()
	if snap, err := loader.Load(ctx); err != nil {
		// Keep serving: endpoints answer with the no-data envelope until a
		// reload succeeds.
		logger.Error("failed to load CSV data", "error", err)
	} else {
		store.Publish(snap)
		metrics.SetDatasetStats(len(snap.Records), int(snap.Excluded))
		logger.Info("CSV data loaded successfully",
			"records", len(snap.Records),
			"excluded", snap.Excluded,
			"duration", time.Since(start),
		)
	}

	engine := analytics.NewEngine(cfg.Analytics)
	apiHandlers := handlers.NewAPIHandlers(store, loader, engine, metrics, cfg.Analytics, logger)
	sseHandlers := handlers.NewSSEHandlers(store, engine, logger)

	templateHandlers := &server.TemplateHandlers{
		Dashboard: handleDashboard,
	}

	srv := server.NewServer(apiHandlers, sseHandlers, metrics, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Metrics(metrics),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
		middleware.Compression(logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down analytics service")
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
