package models

import "time"

type Transaction struct {
	TransactionID  string
	ProductName    string
	Category       string
	Price          float64
	Quantity       int
	Revenue        float64
	CustomerAge    int
	CustomerRating *float64
	PurchaseDate   time.Time
}

// Rating reports the customer rating and whether one was recorded.
func (t Transaction) Rating() (float64, bool) {
	if t.CustomerRating == nil {
		return 0, false
	}
	return *t.CustomerRating, true
}

type ProductMetric struct {
	ProductName   string   `json:"product_name"`
	Category      string   `json:"category"`
	Price         float64  `json:"price"`
	TotalCount    int      `json:"total_count"`
	AverageRating *float64 `json:"average_rating"`
	TotalRevenue  float64  `json:"total_revenue"`
}

type CategoryMetric struct {
	Category                 string   `json:"category"`
	TotalRevenue             float64  `json:"total_revenue"`
	AvgRevenuePerTransaction float64  `json:"avg_revenue_per_transaction"`
	TransactionCount         int      `json:"transaction_count"`
	AvgRating                *float64 `json:"avg_rating"`
	TotalUnitsSold           int      `json:"total_units_sold"`
	RevenuePercentage        float64  `json:"revenue_percentage"`
}

type AgeGroupMetric struct {
	AgeRange          string   `json:"age_range"`
	CustomerCount     int      `json:"customer_count"`
	AvgSpending       float64  `json:"avg_spending"`
	TotalRevenue      float64  `json:"total_revenue"`
	AvgRating         *float64 `json:"avg_rating"`
	TransactionCount  int      `json:"transaction_count"`
	RevenuePercentage float64  `json:"revenue_percentage"`
}

type MonthlyTrend struct {
	Month            string   `json:"month"`
	Revenue          float64  `json:"revenue"`
	TransactionCount int      `json:"transaction_count"`
	GrowthRate       *float64 `json:"growth_rate"`
}

type CustomerSegment struct {
	Segment       string  `json:"segment"`
	CustomerCount int     `json:"customer_count"`
	AvgOrderValue float64 `json:"avg_order_value"`
	TotalRevenue  float64 `json:"total_revenue"`
	Criteria      string  `json:"criteria"`
}

type RankedProduct struct {
	ProductName         string  `json:"product_name"`
	TotalRevenue        float64 `json:"total_revenue"`
	RevenueContribution float64 `json:"revenue_contribution"`
	Rank                int     `json:"rank"`
}

type CategoryShare struct {
	Category   string  `json:"category"`
	Revenue    float64 `json:"revenue"`
	Percentage float64 `json:"percentage"`
}

type GrowthMetrics struct {
	OverallGrowthRate   *float64 `json:"overall_growth_rate"`
	RevenueTrend        string   `json:"revenue_trend"`
	BestPerformingMonth *string  `json:"best_performing_month"`
	SeasonalPattern     string   `json:"seasonal_pattern"`
}

type Forecast struct {
	PredictedNextMonthRevenue float64  `json:"predicted_next_month_revenue"`
	ConfidenceLevel           string   `json:"confidence_level"`
	KeyDrivers                []string `json:"key_drivers"`
}
