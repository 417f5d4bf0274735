package analytics

import (
	"slices"
	"strings"
	"time"

	"ecom-insights/internal/models"
)

// ageBuckets is the fixed reporting order; empty buckets are omitted from
// results rather than emitted with zero counts.
var ageBuckets = []string{"18-25", "26-35", "36-45", "46-55", "56+"}

func ageBucket(age int) string {
	switch {
	case age <= 25:
		return "18-25"
	case age <= 35:
		return "26-35"
	case age <= 45:
		return "36-45"
	case age <= 55:
		return "46-55"
	default:
		return "56+"
	}
}

type groupStats struct {
	transactions int
	units        int
	revenue      float64
	ratingSum    float64
	ratingCount  int
}

func (g *groupStats) add(tx models.Transaction) {
	g.transactions++
	g.units += tx.Quantity
	g.revenue += tx.Revenue
	if rating, ok := tx.Rating(); ok {
		g.ratingSum += rating
		g.ratingCount++
	}
}

// avgRating is nil when no transaction in the group carried a rating; a
// group must never report zero for an unmeasured value.
func (g *groupStats) avgRating() *float64 {
	if g.ratingCount == 0 {
		return nil
	}
	mean := g.ratingSum / float64(g.ratingCount)
	return &mean
}

func accumulate(records []models.Transaction, key func(models.Transaction) string) map[string]*groupStats {
	groups := make(map[string]*groupStats)
	for _, tx := range records {
		k := key(tx)
		if groups[k] == nil {
			groups[k] = &groupStats{}
		}
		groups[k].add(tx)
	}
	return groups
}

func totalRevenue(records []models.Transaction) float64 {
	var total float64
	for _, tx := range records {
		total += tx.Revenue
	}
	return total
}

func percentage(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100
}

// ProductMetrics aggregates per product, alphabetically by name. The unit
// price and category come from the most recently dated record for the
// product; on equal dates the later row wins.
func ProductMetrics(records []models.Transaction) []models.ProductMetric {
	type productAccum struct {
		stats      groupStats
		category   string
		price      float64
		latestDate time.Time
	}

	groups := make(map[string]*productAccum)
	for _, tx := range records {
		acc := groups[tx.ProductName]
		if acc == nil {
			acc = &productAccum{}
			groups[tx.ProductName] = acc
		}
		acc.stats.add(tx)
		if !tx.PurchaseDate.Before(acc.latestDate) {
			acc.latestDate = tx.PurchaseDate
			acc.price = tx.Price
			acc.category = tx.Category
		}
	}

	result := make([]models.ProductMetric, 0, len(groups))
	for name, acc := range groups {
		result = append(result, models.ProductMetric{
			ProductName:   name,
			Category:      acc.category,
			Price:         acc.price,
			TotalCount:    acc.stats.units,
			AverageRating: acc.stats.avgRating(),
			TotalRevenue:  acc.stats.revenue,
		})
	}

	slices.SortFunc(result, func(a, b models.ProductMetric) int {
		return strings.Compare(a.ProductName, b.ProductName)
	})
	return result
}

// CategoryMetrics aggregates per category, alphabetically, with each
// category's share of the grand total revenue. Shares are all zero when the
// grand total is zero.
func CategoryMetrics(records []models.Transaction) []models.CategoryMetric {
	groups := accumulate(records, func(tx models.Transaction) string { return tx.Category })
	grand := totalRevenue(records)

	result := make([]models.CategoryMetric, 0, len(groups))
	for category, stats := range groups {
		result = append(result, models.CategoryMetric{
			Category:                 category,
			TotalRevenue:             stats.revenue,
			AvgRevenuePerTransaction: stats.revenue / float64(stats.transactions),
			TransactionCount:         stats.transactions,
			AvgRating:                stats.avgRating(),
			TotalUnitsSold:           stats.units,
			RevenuePercentage:        percentage(stats.revenue, grand),
		})
	}

	slices.SortFunc(result, func(a, b models.CategoryMetric) int {
		return strings.Compare(a.Category, b.Category)
	})
	return result
}

// AgeGroupMetrics aggregates per age bucket in bucket order. The data model
// has no customer identity, so customer_count counts transactions.
func AgeGroupMetrics(records []models.Transaction) []models.AgeGroupMetric {
	groups := accumulate(records, func(tx models.Transaction) string { return ageBucket(tx.CustomerAge) })
	grand := totalRevenue(records)

	result := make([]models.AgeGroupMetric, 0, len(groups))
	for _, bucket := range ageBuckets {
		stats, ok := groups[bucket]
		if !ok {
			continue
		}
		result = append(result, models.AgeGroupMetric{
			AgeRange:          bucket,
			CustomerCount:     stats.transactions,
			AvgSpending:       stats.revenue / float64(stats.transactions),
			TotalRevenue:      stats.revenue,
			AvgRating:         stats.avgRating(),
			TransactionCount:  stats.transactions,
			RevenuePercentage: percentage(stats.revenue, grand),
		})
	}
	return result
}

// CategoryShares is the distribution view: categories by revenue descending
// with their share of the grand total.
func CategoryShares(records []models.Transaction) []models.CategoryShare {
	groups := accumulate(records, func(tx models.Transaction) string { return tx.Category })
	grand := totalRevenue(records)

	result := make([]models.CategoryShare, 0, len(groups))
	for category, stats := range groups {
		result = append(result, models.CategoryShare{
			Category:   category,
			Revenue:    stats.revenue,
			Percentage: percentage(stats.revenue, grand),
		})
	}

	slices.SortFunc(result, func(a, b models.CategoryShare) int {
		if a.Revenue != b.Revenue {
			if a.Revenue > b.Revenue {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Category, b.Category)
	})
	return result
}
