package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecom-insights/internal/models"
)

// monthlyRevenue builds one transaction per month so monthly totals are the
// given values exactly.
func monthlyRevenue(revenues map[string]float64) []models.Transaction {
	records := make([]models.Transaction, 0, len(revenues))
	for month, revenue := range revenues {
		records = append(records, purchase("Widget", "Gadgets", revenue, 1, 30, nil, month+"-15"))
	}
	return records
}

func TestMonthlyTrends(t *testing.T) {
	records := monthlyRevenue(map[string]float64{
		"2024-01": 100,
		"2024-02": 150,
		"2024-03": 120,
	})

	trends := MonthlyTrends(records)
	require.Len(t, trends, 3)

	assert.Equal(t, "2024-01", trends[0].Month)
	assert.Nil(t, trends[0].GrowthRate, "first month has no prior to grow from")
	assert.InDelta(t, 100.0, trends[0].Revenue, 0.001)
	assert.Equal(t, 1, trends[0].TransactionCount)

	require.NotNil(t, trends[1].GrowthRate)
	assert.InDelta(t, 50.0, *trends[1].GrowthRate, 0.001)

	require.NotNil(t, trends[2].GrowthRate)
	assert.InDelta(t, -20.0, *trends[2].GrowthRate, 0.001)
}

func TestMonthlyTrends_ZeroPriorMonth(t *testing.T) {
	records := []models.Transaction{
		{ProductName: "A", Category: "X", Quantity: 1, PurchaseDate: mustDate("2024-01-10")},
		purchase("B", "X", 100, 1, 30, nil, "2024-02-10"),
	}

	trends := MonthlyTrends(records)
	require.Len(t, trends, 2)
	assert.Nil(t, trends[1].GrowthRate, "growth over a zero month is undefined")
}

func TestMonthlyTrends_Empty(t *testing.T) {
	trends := MonthlyTrends(nil)
	assert.NotNil(t, trends)
	assert.Len(t, trends, 0)
}

func TestOverallGrowth(t *testing.T) {
	trends := MonthlyTrends(monthlyRevenue(map[string]float64{
		"2024-01": 100,
		"2024-02": 150,
		"2024-03": 120,
	}))

	growth := OverallGrowth(trends)
	require.NotNil(t, growth)
	assert.InDelta(t, -20.0, *growth, 0.001, "overall growth compares the two latest months")

	assert.Nil(t, OverallGrowth(trends[:1]), "one month is not enough")
	assert.Nil(t, OverallGrowth(nil))
}

func TestClassifyTrend(t *testing.T) {
	growth := func(v float64) *float64 { return &v }

	tests := []struct {
		name   string
		growth *float64
		want   string
	}{
		{"no_growth_rate", nil, "insufficient_data"},
		{"inside_band_positive", growth(2.0), "stable"},
		{"inside_band_negative", growth(-2.0), "stable"},
		{"zero", growth(0), "stable"},
		{"above_band", growth(2.01), "increasing"},
		{"below_band", growth(-2.01), "decreasing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTrend(tt.growth))
		})
	}
}

func TestBestMonth(t *testing.T) {
	trends := MonthlyTrends(monthlyRevenue(map[string]float64{
		"2024-01": 100,
		"2024-02": 300,
		"2024-03": 200,
	}))

	best := BestMonth(trends)
	require.NotNil(t, best)
	assert.Equal(t, "2024-02", *best)

	assert.Nil(t, BestMonth(nil))
}

func TestBestMonth_EarliestWinsTies(t *testing.T) {
	trends := MonthlyTrends(monthlyRevenue(map[string]float64{
		"2024-01": 300,
		"2024-02": 300,
	}))

	best := BestMonth(trends)
	require.NotNil(t, best)
	assert.Equal(t, "2024-01", *best)
}

func TestSeasonalPattern(t *testing.T) {
	trends := MonthlyTrends(monthlyRevenue(map[string]float64{
		"2024-01": 100,
		"2024-02": 300,
		"2024-03": 200,
	}))
	assert.Equal(t, "peak_in_february", SeasonalPattern(trends))

	single := MonthlyTrends(monthlyRevenue(map[string]float64{"2024-01": 100}))
	assert.Equal(t, "insufficient_data", SeasonalPattern(single))
	assert.Equal(t, "insufficient_data", SeasonalPattern(nil))
}

func TestForecastNextMonth(t *testing.T) {
	records := monthlyRevenue(map[string]float64{
		"2024-01": 5000,
		"2024-02": 6000,
		"2024-03": 5500,
	})
	trends := MonthlyTrends(records)
	shares := CategoryShares(records)

	forecast := ForecastNextMonth(trends, shares)

	assert.InDelta(t, 5775.0, forecast.PredictedNextMonthRevenue, 0.001,
		"average of the trailing three months with the 5 percent uplift")
	assert.Equal(t, ConfidenceMedium, forecast.ConfidenceLevel)
	assert.Equal(t, []string{"gadgets_sales", "customer_retention"}, forecast.KeyDrivers)
}

func TestForecastNextMonth_WindowIsTrailingThree(t *testing.T) {
	trends := MonthlyTrends(monthlyRevenue(map[string]float64{
		"2023-12": 90000,
		"2024-01": 5000,
		"2024-02": 6000,
		"2024-03": 5500,
	}))

	forecast := ForecastNextMonth(trends, nil)
	assert.InDelta(t, 5775.0, forecast.PredictedNextMonthRevenue, 0.001,
		"older months fall out of the forecast window")
}

func TestForecastNextMonth_Empty(t *testing.T) {
	forecast := ForecastNextMonth(nil, nil)

	assert.Zero(t, forecast.PredictedNextMonthRevenue)
	assert.Equal(t, ConfidenceLow, forecast.ConfidenceLevel)
	assert.NotNil(t, forecast.KeyDrivers)
	assert.Len(t, forecast.KeyDrivers, 0)
}

func TestForecastConfidence(t *testing.T) {
	tests := []struct {
		name     string
		revenues map[string]float64
		want     string
	}{
		{
			name:     "single_month",
			revenues: map[string]float64{"2024-01": 100},
			want:     ConfidenceLow,
		},
		{
			name: "two_months_steady",
			revenues: map[string]float64{
				"2024-01": 100,
				"2024-02": 110,
			},
			want: ConfidenceMedium,
		},
		{
			name: "steady_growth",
			revenues: map[string]float64{
				"2024-01": 100,
				"2024-02": 101,
				"2024-03": 102,
				"2024-04": 103,
			},
			want: ConfidenceHigh,
		},
		{
			name: "volatile_growth",
			revenues: map[string]float64{
				"2024-01": 100,
				"2024-02": 200,
				"2024-03": 100,
				"2024-04": 300,
			},
			want: ConfidenceLow,
		},
		{
			name: "moderate_swing",
			revenues: map[string]float64{
				"2024-01": 100,
				"2024-02": 110,
				"2024-03": 134.2,
			},
			want: ConfidenceMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trends := MonthlyTrends(monthlyRevenue(tt.revenues))
			assert.Equal(t, tt.want, forecastConfidence(trends))
		})
	}
}

func TestForecastConfidence_NoComputableRates(t *testing.T) {
	// Zero-revenue months everywhere: no growth rate is computable, so the
	// forecast cannot claim any confidence.
	records := []models.Transaction{
		{ProductName: "A", Category: "X", Quantity: 1, PurchaseDate: mustDate("2024-01-10")},
		{ProductName: "B", Category: "X", Quantity: 1, PurchaseDate: mustDate("2024-02-10")},
		{ProductName: "C", Category: "X", Quantity: 1, PurchaseDate: mustDate("2024-03-10")},
	}

	assert.Equal(t, ConfidenceLow, forecastConfidence(MonthlyTrends(records)))
}

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Electronics", "electronics"},
		{"Home & Garden", "home_garden"},
		{"Sports / Outdoors", "sports_outdoors"},
		{"  Trailing  ", "trailing"},
		{"A1 B2", "a1_b2"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, snakeCase(tt.in), "snakeCase(%q)", tt.in)
	}
}
