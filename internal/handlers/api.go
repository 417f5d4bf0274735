package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"ecom-insights/internal/analytics"
	"ecom-insights/internal/config"
	"ecom-insights/internal/dataset"
	"ecom-insights/internal/errors"
	"ecom-insights/internal/models"
	"ecom-insights/internal/observability"
)

const version = "1.0.0"

type APIHandlers struct {
	store   *dataset.Store
	loader  *dataset.Loader
	engine  *analytics.Engine
	metrics *observability.Metrics
	cfg     config.AnalyticsConfig
	logger  *slog.Logger
}

func NewAPIHandlers(
	store *dataset.Store,
	loader *dataset.Loader,
	engine *analytics.Engine,
	metrics *observability.Metrics,
	cfg config.AnalyticsConfig,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		store:   store,
		loader:  loader,
		engine:  engine,
		metrics: metrics,
		cfg:     cfg,
		logger:  logger,
	}
}

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

// records returns the current snapshot's records, or nil after writing the
// no-data envelope. A published-but-empty snapshot is a valid state; only a
// snapshot that never loaded is an error.
func (h *APIHandlers) records(w http.ResponseWriter, r *http.Request) ([]models.Transaction, bool) {
	snap, ok := h.store.Current()
	if !ok {
		requestID := observability.GetRequestID(r.Context())
		errors.WriteError(w, h.logger, errors.NoData("No sales data available"), requestID)
		return nil, false
	}
	return snap.Records, true
}

func (h *APIHandlers) HandleProducts(w http.ResponseWriter, r *http.Request) {
	records, ok := h.records(w, r)
	if !ok {
		return
	}

	errors.WriteSuccessWithHeaders(w, h.engine.Products(records), cacheHeaders)
}

func (h *APIHandlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	records, ok := h.records(w, r)
	if !ok {
		return
	}

	errors.WriteSuccessWithHeaders(w, h.engine.Categories(records), cacheHeaders)
}

func (h *APIHandlers) HandleDemographics(w http.ResponseWriter, r *http.Request) {
	records, ok := h.records(w, r)
	if !ok {
		return
	}

	errors.WriteSuccessWithHeaders(w, h.engine.Demographics(records), cacheHeaders)
}

func (h *APIHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	days, err := h.parseDays(r)
	if err != nil {
		requestID := observability.GetRequestID(r.Context())
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	records, ok := h.records(w, r)
	if !ok {
		return
	}

	errors.WriteSuccessWithHeaders(w, h.engine.Dashboard(records, days), cacheHeaders)
}

func (h *APIHandlers) HandleRevenueInsights(w http.ResponseWriter, r *http.Request) {
	records, ok := h.records(w, r)
	if !ok {
		return
	}

	errors.WriteSuccessWithHeaders(w, h.engine.RevenueInsights(records), cacheHeaders)
}

func (h *APIHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := h.parseLimit(r)
	if err != nil {
		requestID := observability.GetRequestID(r.Context())
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	records, ok := h.records(w, r)
	if !ok {
		return
	}

	errors.WriteSuccessWithHeaders(w, h.engine.RankedProducts(records, limit), cacheHeaders)
}

func (h *APIHandlers) parseDays(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return h.cfg.DashboardDefaultDays, nil
	}

	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > config.DashboardDaysMax {
		return 0, errors.Validation(fmt.Sprintf("days must be an integer between 1 and %d", config.DashboardDaysMax))
	}
	return days, nil
}

func (h *APIHandlers) parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return h.cfg.TopProductsDefault, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > h.cfg.TopProductsMax {
		return 0, errors.Validation(fmt.Sprintf("limit must be an integer between 1 and %d", h.cfg.TopProductsMax))
	}
	return limit, nil
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   version,
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.store.Current()
	if !ok {
		requestID := observability.GetRequestID(r.Context())
		errors.WriteError(w, h.logger, errors.NoData("No sales data available"), requestID)
		return
	}

	products := make(map[string]struct{})
	categories := make(map[string]struct{})
	months := make(map[string]struct{})
	for _, tx := range snap.Records {
		products[tx.ProductName] = struct{}{}
		categories[tx.Category] = struct{}{}
		months[tx.PurchaseDate.Format("2006-01")] = struct{}{}
	}

	errors.WriteSuccess(w, map[string]any{
		"snapshot_id":      snap.ID,
		"record_count":     len(snap.Records),
		"excluded_records": snap.Excluded,
		"loaded_at":        snap.LoadedAt.Format(time.RFC3339),
		"products":         len(products),
		"categories":       len(categories),
		"months":           len(months),
	})
}

// HandleReload re-parses the CSV and publishes the result as a new snapshot
// in one atomic swap. In-flight requests keep the snapshot they started with.
func (h *APIHandlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	previous := 0
	if snap, ok := h.store.Current(); ok {
		previous = len(snap.Records)
	}

	snap, err := h.loader.Load(r.Context())
	if err != nil {
		h.logger.Error("dataset reload failed", "error", err, "request_id", requestID)
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Failed to reload dataset"), requestID)
		return
	}

	h.store.Publish(snap)
	h.metrics.SetDatasetStats(len(snap.Records), int(snap.Excluded))
	h.metrics.IncReload()

	h.logger.Info("dataset reloaded",
		"snapshot_id", snap.ID,
		"records", len(snap.Records),
		"excluded", snap.Excluded,
		"previous_records", previous,
		"request_id", requestID,
	)

	errors.WriteSuccess(w, map[string]any{
		"snapshot_id":      snap.ID,
		"records":          len(snap.Records),
		"excluded_records": snap.Excluded,
		"previous_records": previous,
		"loaded_at":        snap.LoadedAt.Format(time.RFC3339),
	})
}
