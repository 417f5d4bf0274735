package analytics

import (
	"math"
	"time"

	"ecom-insights/internal/config"
	"ecom-insights/internal/models"
)

const dateLayout = "2006-01-02"

// Engine composes the aggregation primitives into endpoint payloads and owns
// all presentation formatting: money and ratings to 2 decimals, percentages
// to 1, dates ISO. Every method is a pure function of its inputs; callers
// pass the records of one snapshot.
type Engine struct {
	insightsTopN int
}

func NewEngine(cfg config.AnalyticsConfig) *Engine {
	return &Engine{insightsTopN: cfg.InsightsTopProducts}
}

type ProductsSummary struct {
	TotalRevenue float64 `json:"total_revenue"`
}

type ProductsPayload struct {
	Products      []models.ProductMetric `json:"products"`
	TotalProducts int                    `json:"total_products"`
	Summary       ProductsSummary        `json:"summary"`
}

type CategoriesPayload struct {
	Categories      []models.CategoryMetric `json:"categories"`
	TotalCategories int                     `json:"total_categories"`
}

type DemographicsPayload struct {
	AgeGroups      []models.AgeGroupMetric `json:"age_groups"`
	TotalCustomers int                     `json:"total_customers"`
}

type DashboardWindow struct {
	Days      int    `json:"days"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

type DashboardSummary struct {
	TotalRevenue     float64 `json:"total_revenue"`
	TransactionCount int     `json:"transaction_count"`
	TotalUnitsSold   int     `json:"total_units_sold"`
	AvgOrderValue    float64 `json:"avg_order_value"`
}

type DashboardPayload struct {
	Window        DashboardWindow         `json:"window"`
	Summary       DashboardSummary        `json:"summary"`
	Categories    []models.CategoryMetric `json:"categories"`
	MonthlyTrends []models.MonthlyTrend   `json:"monthly_trends"`
}

type InsightsPayload struct {
	MonthlyTrends        []models.MonthlyTrend    `json:"monthly_trends"`
	TopProducts          []models.RankedProduct   `json:"top_products"`
	CategoryDistribution []models.CategoryShare   `json:"category_distribution"`
	CustomerSegments     []models.CustomerSegment `json:"customer_segments"`
	GrowthMetrics        models.GrowthMetrics     `json:"growth_metrics"`
	Forecasting          models.Forecast          `json:"forecasting"`
}

type TopProductsPayload struct {
	TopProducts []models.RankedProduct `json:"top_products"`
	Limit       int                    `json:"limit"`
}

func (e *Engine) Products(records []models.Transaction) ProductsPayload {
	metrics := ProductMetrics(records)
	for i := range metrics {
		metrics[i].Price = round2(metrics[i].Price)
		metrics[i].TotalRevenue = round2(metrics[i].TotalRevenue)
		round2Ptr(metrics[i].AverageRating)
	}
	return ProductsPayload{
		Products:      metrics,
		TotalProducts: len(metrics),
		Summary:       ProductsSummary{TotalRevenue: round2(totalRevenue(records))},
	}
}

func (e *Engine) Categories(records []models.Transaction) CategoriesPayload {
	metrics := CategoryMetrics(records)
	for i := range metrics {
		metrics[i].TotalRevenue = round2(metrics[i].TotalRevenue)
		metrics[i].AvgRevenuePerTransaction = round2(metrics[i].AvgRevenuePerTransaction)
		round2Ptr(metrics[i].AvgRating)
		metrics[i].RevenuePercentage = round1(metrics[i].RevenuePercentage)
	}
	return CategoriesPayload{
		Categories:      metrics,
		TotalCategories: len(metrics),
	}
}

func (e *Engine) Demographics(records []models.Transaction) DemographicsPayload {
	metrics := AgeGroupMetrics(records)
	for i := range metrics {
		metrics[i].AvgSpending = round2(metrics[i].AvgSpending)
		metrics[i].TotalRevenue = round2(metrics[i].TotalRevenue)
		round2Ptr(metrics[i].AvgRating)
		metrics[i].RevenuePercentage = round1(metrics[i].RevenuePercentage)
	}
	return DemographicsPayload{
		AgeGroups:      metrics,
		TotalCustomers: len(records),
	}
}

func (e *Engine) Dashboard(records []models.Transaction, days int) DashboardPayload {
	windowed, start, end, ok := windowRecords(records, days)

	window := DashboardWindow{Days: days}
	if ok {
		window.StartDate = start.Format(dateLayout)
		window.EndDate = end.Format(dateLayout)
	}

	summary := DashboardSummary{
		TotalRevenue:     totalRevenue(windowed),
		TransactionCount: len(windowed),
	}
	for _, tx := range windowed {
		summary.TotalUnitsSold += tx.Quantity
	}
	if summary.TransactionCount > 0 {
		summary.AvgOrderValue = round2(summary.TotalRevenue / float64(summary.TransactionCount))
	}
	summary.TotalRevenue = round2(summary.TotalRevenue)

	categories := e.Categories(windowed).Categories

	trends := MonthlyTrends(windowed)
	roundTrends(trends)

	return DashboardPayload{
		Window:        window,
		Summary:       summary,
		Categories:    categories,
		MonthlyTrends: trends,
	}
}

func (e *Engine) RevenueInsights(records []models.Transaction) InsightsPayload {
	trends := MonthlyTrends(records)
	shares := CategoryShares(records)

	// Classification and forecasting read the unrounded series; rounding is
	// presentation only.
	overall := OverallGrowth(trends)
	trendLabel := ClassifyTrend(overall)
	best := BestMonth(trends)
	seasonal := SeasonalPattern(trends)

	forecast := ForecastNextMonth(trends, shares)
	forecast.PredictedNextMonthRevenue = round2(forecast.PredictedNextMonthRevenue)

	top := TopProducts(records, e.insightsTopN)
	for i := range top {
		top[i].TotalRevenue = round2(top[i].TotalRevenue)
		top[i].RevenueContribution = round1(top[i].RevenueContribution)
	}

	segments := Segments(records)
	for i := range segments {
		segments[i].AvgOrderValue = round2(segments[i].AvgOrderValue)
		segments[i].TotalRevenue = round2(segments[i].TotalRevenue)
	}

	roundTrends(trends)
	for i := range shares {
		shares[i].Revenue = round2(shares[i].Revenue)
		shares[i].Percentage = round1(shares[i].Percentage)
	}
	round1Ptr(overall)

	return InsightsPayload{
		MonthlyTrends:        trends,
		TopProducts:          top,
		CategoryDistribution: shares,
		CustomerSegments:     segments,
		GrowthMetrics: models.GrowthMetrics{
			OverallGrowthRate:   overall,
			RevenueTrend:        trendLabel,
			BestPerformingMonth: best,
			SeasonalPattern:     seasonal,
		},
		Forecasting: forecast,
	}
}

func (e *Engine) RankedProducts(records []models.Transaction, limit int) TopProductsPayload {
	top := TopProducts(records, limit)
	for i := range top {
		top[i].TotalRevenue = round2(top[i].TotalRevenue)
		top[i].RevenueContribution = round1(top[i].RevenueContribution)
	}
	return TopProductsPayload{TopProducts: top, Limit: limit}
}

func windowRecords(records []models.Transaction, days int) ([]models.Transaction, time.Time, time.Time, bool) {
	end, ok := latestDate(records)
	if !ok {
		return make([]models.Transaction, 0), time.Time{}, time.Time{}, false
	}

	// The window anchors at the newest purchase date in the snapshot, not
	// wall clock; a fixed historical dataset would otherwise always be
	// outside "the last N days".
	start := end.AddDate(0, 0, -(days - 1))

	windowed := make([]models.Transaction, 0, len(records))
	for _, tx := range records {
		if !tx.PurchaseDate.Before(start) {
			windowed = append(windowed, tx)
		}
	}
	return windowed, start, end, true
}

func latestDate(records []models.Transaction) (time.Time, bool) {
	var latest time.Time
	found := false
	for i := range records {
		if !found || records[i].PurchaseDate.After(latest) {
			latest = records[i].PurchaseDate
			found = true
		}
	}
	return latest, found
}

func roundTrends(trends []models.MonthlyTrend) {
	for i := range trends {
		trends[i].Revenue = round2(trends[i].Revenue)
		round1Ptr(trends[i].GrowthRate)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2Ptr(p *float64) {
	if p != nil {
		*p = round2(*p)
	}
}

func round1Ptr(p *float64) {
	if p != nil {
		*p = round1(*p)
	}
}
