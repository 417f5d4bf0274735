package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"ecom-insights/internal/analytics"
	"ecom-insights/internal/dataset"
	"ecom-insights/internal/models"
)

const (
	maxTableRows   = 50
	sseTopProducts = 10
	noDataFragment = `<div id="categories-content">No sales data available</div>`
)

var categoryTableTemplate = template.Must(template.New("categoryTable").Parse(`
<div id="categories-content">
<table class="modern-table">
<thead><tr><th>Category</th><th>Revenue</th><th>Avg/Order</th><th>Orders</th><th>Units</th><th>Rating</th><th>Share</th></tr></thead>
<tbody>
{{range .}}<tr>
<td><span class="category-badge">{{.Category}}</span></td>
<td><strong>${{printf "%.2f" .Revenue}}</strong></td>
<td>${{printf "%.2f" .AvgPerTx}}</td>
<td>{{.Transactions}}</td>
<td>{{.Units}}</td>
<td>{{.Rating}}</td>
<td>{{printf "%.1f" .Share}}%</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

type categoryRow struct {
	Category     string
	Revenue      float64
	AvgPerTx     float64
	Transactions int
	Units        int
	Rating       string
	Share        float64
}

type SSEHandlers struct {
	store  *dataset.Store
	engine *analytics.Engine
	logger *slog.Logger
}

func NewSSEHandlers(store *dataset.Store, engine *analytics.Engine, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		store:  store,
		engine: engine,
		logger: logger,
	}
}

func (h *SSEHandlers) renderCategoryTable(metrics []models.CategoryMetric) (string, error) {
	if len(metrics) > maxTableRows {
		metrics = metrics[:maxTableRows]
	}

	rows := make([]categoryRow, 0, len(metrics))
	for _, m := range metrics {
		rating := "n/a"
		if m.AvgRating != nil {
			rating = fmt.Sprintf("%.2f", *m.AvgRating)
		}
		rows = append(rows, categoryRow{
			Category:     m.Category,
			Revenue:      m.TotalRevenue,
			AvgPerTx:     m.AvgRevenuePerTransaction,
			Transactions: m.TransactionCount,
			Units:        m.TotalUnitsSold,
			Rating:       rating,
			Share:        m.RevenuePercentage,
		})
	}

	var buf strings.Builder
	err := categoryTableTemplate.Execute(&buf, rows)
	return buf.String(), err
}

func (h *SSEHandlers) snapshotRecords() ([]models.Transaction, bool) {
	snap, ok := h.store.Current()
	if !ok {
		return nil, false
	}
	return snap.Records, true
}

func (h *SSEHandlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	records, ok := h.snapshotRecords()
	if !ok {
		sse.PatchElements(noDataFragment)
		return
	}

	html, err := h.renderCategoryTable(h.engine.Categories(records).Categories)
	if err != nil {
		h.logger.Error("render category table", "error", err)
		return
	}

	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleMonthlyTrends(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	records, ok := h.snapshotRecords()
	if !ok {
		sse.PatchElements(`<div id="trends-content">No sales data available</div>`)
		return
	}

	payload := h.engine.RevenueInsights(records)
	jsonData, err := json.Marshal(map[string]any{
		"trendsData":   payload.MonthlyTrends,
		"forecastData": payload.Forecasting,
	})
	if err != nil {
		h.logger.Error("marshal trends data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="trends-content">✅ Monthly trends chart data loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	records, ok := h.snapshotRecords()
	if !ok {
		sse.PatchElements(`<div id="products-content">No sales data available</div>`)
		return
	}

	data := h.engine.RankedProducts(records, sseTopProducts)
	jsonData, err := json.Marshal(map[string]any{
		"productsData": data.TopProducts,
	})
	if err != nil {
		h.logger.Error("marshal products data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="products-content">✅ Top products chart data loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	records, ok := h.snapshotRecords()
	if !ok {
		sse.PatchElements(noDataFragment)
		return
	}

	html, err := h.renderCategoryTable(h.engine.Categories(records).Categories)
	if err != nil {
		h.logger.Error("render category table", "error", err)
		return
	}
	sse.PatchElements(html)

	insights := h.engine.RevenueInsights(records)
	products := h.engine.RankedProducts(records, sseTopProducts)

	allSignals, err := json.Marshal(map[string]any{
		"trendsData":   insights.MonthlyTrends,
		"forecastData": insights.Forecasting,
		"productsData": products.TopProducts,
		"segmentsData": insights.CustomerSegments,
	})
	if err != nil {
		h.logger.Error("marshal all signals data", "error", err)
		return
	}
	sse.PatchSignals(allSignals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
