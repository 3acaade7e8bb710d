package reports

import (
	"github.com/shopspring/decimal"

	"restaurant-pos/internal/database"
	"restaurant-pos/internal/models"
)

func buildTableSalesQuery(r models.DateRange) (string, []any) {
	b := &queryBuilder{}
	b.dateRange("o.created_at", r)
	return database.SelectTableSalesSQL + b.clause() + database.TableSalesGroupBy, b.args
}

// withAverage fills AverageOrder as revenue per order, rounded to cents.
func withAverage(t models.TableSales) models.TableSales {
	t.AverageOrder = decimal.Zero
	if t.OrderCount > 0 {
		t.AverageOrder = t.Revenue.Div(decimal.NewFromInt(t.OrderCount)).Round(2)
	}
	return t
}
