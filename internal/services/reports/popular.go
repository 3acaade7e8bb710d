package reports

import (
	"sort"

	"restaurant-pos/internal/database"
	"restaurant-pos/internal/models"
)

const (
	DefaultPopularLimit = 10
	MaxPopularLimit     = 100
)

func buildPopularQuery(r models.DateRange) (string, []any) {
	b := &queryBuilder{}
	b.dateRange("o.created_at", r)
	return database.SelectPopularProductsSQL + b.clause() + database.PopularProductsGroupBy, b.args
}

// rankPopular orders products by quantity sold, keeping the incoming order
// among equals, and keeps the first limit entries.
func rankPopular(products []models.PopularProduct, limit int) []models.PopularProduct {
	ranked := make([]models.PopularProduct, len(products))
	copy(ranked, products)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalSold > ranked[j].TotalSold
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
