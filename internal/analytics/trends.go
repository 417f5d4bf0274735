package analytics

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"ecom-insights/internal/models"
)

const monthLayout = "2006-01"

// stableGrowthBand is the +/- percent band treated as flat when classifying
// the revenue trend.
const stableGrowthBand = 2.0

// MonthlyTrends buckets revenue by calendar month, chronologically.
// growth_rate is nil for the first month and whenever the prior month's
// revenue is zero; division by zero is never a valid answer.
func MonthlyTrends(records []models.Transaction) []models.MonthlyTrend {
	type monthAccum struct {
		revenue float64
		count   int
	}

	months := make(map[string]*monthAccum)
	for _, tx := range records {
		key := tx.PurchaseDate.Format(monthLayout)
		if months[key] == nil {
			months[key] = &monthAccum{}
		}
		months[key].revenue += tx.Revenue
		months[key].count++
	}

	keys := make([]string, 0, len(months))
	for key := range months {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	trends := make([]models.MonthlyTrend, 0, len(keys))
	for i, key := range keys {
		trend := models.MonthlyTrend{
			Month:            key,
			Revenue:          months[key].revenue,
			TransactionCount: months[key].count,
		}
		if i > 0 {
			prev := months[keys[i-1]].revenue
			if prev != 0 {
				growth := (trend.Revenue - prev) / prev * 100
				trend.GrowthRate = &growth
			}
		}
		trends = append(trends, trend)
	}
	return trends
}

// OverallGrowth is the month-over-month rate between the two most recent
// months, nil when history is too short or the prior month had no revenue.
func OverallGrowth(trends []models.MonthlyTrend) *float64 {
	if len(trends) < 2 {
		return nil
	}
	prev := trends[len(trends)-2].Revenue
	if prev == 0 {
		return nil
	}
	growth := (trends[len(trends)-1].Revenue - prev) / prev * 100
	return &growth
}

func ClassifyTrend(overallGrowth *float64) string {
	switch {
	case overallGrowth == nil:
		return "insufficient_data"
	case math.Abs(*overallGrowth) <= stableGrowthBand:
		return "stable"
	case *overallGrowth > 0:
		return "increasing"
	default:
		return "decreasing"
	}
}

// BestMonth is the month with the highest revenue, earliest on ties.
func BestMonth(trends []models.MonthlyTrend) *string {
	var best *string
	bestRevenue := math.Inf(-1)
	for i := range trends {
		if trends[i].Revenue > bestRevenue {
			bestRevenue = trends[i].Revenue
			best = &trends[i].Month
		}
	}
	return best
}

// SeasonalPattern labels where revenue peaks, e.g. "peak_in_march".
func SeasonalPattern(trends []models.MonthlyTrend) string {
	if len(trends) < 2 {
		return "insufficient_data"
	}
	best := BestMonth(trends)
	if best == nil {
		return "insufficient_data"
	}
	t, err := time.Parse(monthLayout, *best)
	if err != nil {
		return "insufficient_data"
	}
	return fmt.Sprintf("peak_in_%s", strings.ToLower(t.Month().String()))
}
