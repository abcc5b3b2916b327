package services

import (
	"github.com/shopspring/decimal"

	"shop-telegram/models"
)

// Statistics is the on-demand order summary. TotalRevenue sums totals of paid
// orders only; AverageOrderValue divides that revenue by the full order count.
type Statistics struct {
	Total             int
	ByStatus          map[string]int
	TotalRevenue      decimal.Decimal
	AverageOrderValue decimal.Decimal
}

// AggregateStatistics derives the summary from the full order set in one pass.
func AggregateStatistics(orders []*models.Order) *Statistics {
	stats := &Statistics{
		Total:             len(orders),
		ByStatus:          make(map[string]int),
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
	}
	for _, o := range orders {
		stats.ByStatus[o.Status]++
		if o.IsPaid {
			stats.TotalRevenue = stats.TotalRevenue.Add(o.Total)
		}
	}
	if stats.Total > 0 {
		stats.AverageOrderValue = stats.TotalRevenue.Div(decimal.NewFromInt(int64(stats.Total)))
	}
	return stats
}
