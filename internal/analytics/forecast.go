package analytics

import (
	"strings"

	"ecom-insights/internal/models"
)

// The forecast is a deliberately simple heuristic: average of the recent
// months with a flat growth factor, not a fitted model.
const (
	forecastWindowMonths = 3
	forecastGrowthFactor = 1.05
)

// Confidence thresholds over the population variance of recent growth rates,
// in percent-squared units. Tunable constants, not fitted statistics.
const (
	stableVarianceMax   = 25.0
	volatileVarianceMin = 225.0
)

const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// ForecastNextMonth predicts next month's revenue from the trailing months.
// With no history at all it reports zero at low confidence rather than
// failing the whole response.
func ForecastNextMonth(trends []models.MonthlyTrend, shares []models.CategoryShare) models.Forecast {
	predicted := 0.0
	if len(trends) > 0 {
		start := len(trends) - forecastWindowMonths
		if start < 0 {
			start = 0
		}
		window := trends[start:]
		var sum float64
		for _, t := range window {
			sum += t.Revenue
		}
		predicted = sum / float64(len(window)) * forecastGrowthFactor
	}

	return models.Forecast{
		PredictedNextMonthRevenue: predicted,
		ConfidenceLevel:           forecastConfidence(trends),
		KeyDrivers:                keyDrivers(shares),
	}
}

func forecastConfidence(trends []models.MonthlyTrend) string {
	months := len(trends)
	if months < 2 {
		return ConfidenceLow
	}

	start := months - forecastWindowMonths
	if start < 1 {
		start = 1
	}
	rates := make([]float64, 0, forecastWindowMonths)
	for i := start; i < months; i++ {
		if trends[i].GrowthRate != nil {
			rates = append(rates, *trends[i].GrowthRate)
		}
	}
	if len(rates) == 0 {
		return ConfidenceLow
	}

	variance := populationVariance(rates)
	switch {
	case variance > volatileVarianceMin:
		return ConfidenceLow
	case months >= 3 && variance <= stableVarianceMax:
		return ConfidenceHigh
	default:
		return ConfidenceMedium
	}
}

func populationVariance(values []float64) float64 {
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}

// keyDrivers pairs the strongest category with a retention signal, e.g.
// ["electronics_sales", "customer_retention"].
func keyDrivers(shares []models.CategoryShare) []string {
	if len(shares) == 0 {
		return []string{}
	}
	return []string{snakeCase(shares[0].Category) + "_sales", "customer_retention"}
}

func snakeCase(s string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
