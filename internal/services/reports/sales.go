package reports

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"restaurant-pos/internal/database"
	"restaurant-pos/internal/models"
)

const (
	DefaultSalesLimit = 50
	MaxSalesLimit     = 500
)

func buildSalesQuery(f models.SalesFilter) (string, []any) {
	b := &queryBuilder{}
	b.dateRange("o.created_at", f.Dates)

	if f.Table != "" {
		b.where("o.table_label = " + b.arg(f.Table))
	}
	if f.Product != "" {
		b.where(database.ProductNameExpr + " ILIKE " + b.arg(containsPattern(f.Product)))
	}
	if f.Category != "" {
		if strings.EqualFold(f.Category, models.SpecialCategory) {
			b.where("oi.special_dish_id IS NOT NULL")
		} else {
			b.where("LOWER(c.name) = LOWER(" + b.arg(f.Category) + ")")
		}
	}

	return database.SelectSalesRowsSQL + b.clause() + database.SalesRowsOrderBy, b.args
}

// groupSalesRows folds line-item rows into one record per order, most
// recent order first.
func groupSalesRows(rows []models.SalesRow) []models.SalesOrder {
	orders := []models.SalesOrder{}
	index := make(map[int64]int)

	for _, row := range rows {
		i, ok := index[row.OrderID]
		if !ok {
			orders = append(orders, models.SalesOrder{
				ID:            row.OrderID,
				Table:         row.Table,
				Total:         row.Total,
				Status:        row.Status,
				PaymentMethod: row.PaymentMethod,
				CreatedAt:     row.CreatedAt,
				Items:         []models.SalesItem{},
			})
			i = len(orders) - 1
			index[row.OrderID] = i
		}

		orders[i].Items = append(orders[i].Items, models.SalesItem{
			Product:   row.Product,
			Name:      row.ProductName,
			Category:  row.Category,
			Quantity:  row.Quantity,
			UnitPrice: row.UnitPrice,
			Subtotal:  row.UnitPrice.Mul(decimal.NewFromInt(int64(row.Quantity))),
		})
	}

	sort.SliceStable(orders, func(a, b int) bool {
		if !orders[a].CreatedAt.Equal(orders[b].CreatedAt) {
			return orders[a].CreatedAt.After(orders[b].CreatedAt)
		}
		return orders[a].ID > orders[b].ID
	})
	return orders
}

// salesStatistics counts each order's total once, however many of its
// lines matched.
func salesStatistics(orders []models.SalesOrder) models.SalesStatistics {
	stats := models.SalesStatistics{
		TotalSales:   decimal.Zero,
		AverageOrder: decimal.Zero,
		OrderCount:   len(orders),
	}

	for _, o := range orders {
		stats.TotalSales = stats.TotalSales.Add(o.Total)
		for _, item := range o.Items {
			stats.TotalItems += item.Quantity
		}
	}

	if stats.OrderCount > 0 {
		stats.AverageOrder = stats.TotalSales.Div(decimal.NewFromInt(int64(stats.OrderCount))).Round(2)
	}
	return stats
}

func paginate(orders []models.SalesOrder, limit, offset int) []models.SalesOrder {
	if offset >= len(orders) {
		return []models.SalesOrder{}
	}
	end := offset + limit
	if end > len(orders) {
		end = len(orders)
	}
	return orders[offset:end]
}

// clampLimit applies the default for non-positive values and caps at maxLimit.
func clampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
