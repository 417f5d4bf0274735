package analytics

import "ecom-insights/internal/models"

// Segment thresholds are order values in dollars. Both boundaries belong to
// the medium band: 50.00 and 200.00 are Medium Value.
const (
	highValueMin   = 200.0
	mediumValueMin = 50.0
)

const (
	SegmentHigh   = "High Value"
	SegmentMedium = "Medium Value"
	SegmentLow    = "Low Value"
)

// Segments classifies every transaction by its own revenue and always emits
// all three segments, zero-valued when empty. customer_count counts
// transactions; the dataset has no customer identity.
func Segments(records []models.Transaction) []models.CustomerSegment {
	type bucket struct {
		count   int
		revenue float64
	}
	var high, medium, low bucket

	for _, tx := range records {
		switch {
		case tx.Revenue > highValueMin:
			high.count++
			high.revenue += tx.Revenue
		case tx.Revenue >= mediumValueMin:
			medium.count++
			medium.revenue += tx.Revenue
		default:
			low.count++
			low.revenue += tx.Revenue
		}
	}

	build := func(name string, b bucket, criteria string) models.CustomerSegment {
		avg := 0.0
		if b.count > 0 {
			avg = b.revenue / float64(b.count)
		}
		return models.CustomerSegment{
			Segment:       name,
			CustomerCount: b.count,
			AvgOrderValue: avg,
			TotalRevenue:  b.revenue,
			Criteria:      criteria,
		}
	}

	return []models.CustomerSegment{
		build(SegmentHigh, high, "Orders > $200"),
		build(SegmentMedium, medium, "Orders $50-$200"),
		build(SegmentLow, low, "Orders < $50"),
	}
}
