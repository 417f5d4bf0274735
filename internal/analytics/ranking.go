package analytics

import (
	"slices"
	"strings"

	"ecom-insights/internal/models"
)

// TopProducts ranks products by total revenue descending, ties broken by
// name ascending so equal-revenue inputs always order the same way.
// revenue_contribution is measured against the revenue of ALL products, not
// just the returned ones.
func TopProducts(records []models.Transaction, limit int) []models.RankedProduct {
	revenues := make(map[string]float64)
	var grand float64
	for _, tx := range records {
		revenues[tx.ProductName] += tx.Revenue
		grand += tx.Revenue
	}

	ranked := make([]models.RankedProduct, 0, len(revenues))
	for name, revenue := range revenues {
		ranked = append(ranked, models.RankedProduct{
			ProductName:         name,
			TotalRevenue:        revenue,
			RevenueContribution: percentage(revenue, grand),
		})
	}

	slices.SortFunc(ranked, func(a, b models.RankedProduct) int {
		if a.TotalRevenue != b.TotalRevenue {
			if a.TotalRevenue > b.TotalRevenue {
				return -1
			}
			return 1
		}
		return strings.Compare(a.ProductName, b.ProductName)
	})

	if limit < 0 {
		limit = 0
	}
	if limit > len(ranked) {
		limit = len(ranked)
	}
	ranked = ranked[:limit]

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
