package reports

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"restaurant-pos/internal/database"
	"restaurant-pos/internal/models"
)

// Repository runs the report queries against PostgreSQL.
type Repository struct {
	db database.Querier
}

func NewRepository(db database.Querier) *Repository {
	return &Repository{db: db}
}

// SalesRows returns one row per delivered line item matching f.
func (r *Repository) SalesRows(ctx context.Context, f models.SalesFilter) ([]models.SalesRow, error) {
	query, args := buildSalesQuery(f)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", database.Classify(err))
	}
	defer rows.Close()

	var result []models.SalesRow
	for rows.Next() {
		var (
			row           models.SalesRow
			menuItemID    *int64
			specialDishID *int64
		)
		err := rows.Scan(
			&row.OrderID, &row.Table, &row.Total, &row.Status, &row.PaymentMethod, &row.CreatedAt,
			&menuItemID, &specialDishID, &row.ProductName, &row.Category, &row.Quantity, &row.UnitPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sales row: %w", err)
		}
		if row.Product, err = models.ProductRefFromColumns(menuItemID, specialDishID); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sales: %w", database.Classify(err))
	}

	return result, nil
}

// PopularProducts returns delivered sales per product in order of first sale.
func (r *Repository) PopularProducts(ctx context.Context, dates models.DateRange) ([]models.PopularProduct, error) {
	query, args := buildPopularQuery(dates)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query popular products: %w", database.Classify(err))
	}
	defer rows.Close()

	var result []models.PopularProduct
	for rows.Next() {
		p, err := scanPopularProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read popular products: %w", database.Classify(err))
	}

	return result, nil
}

func scanPopularProduct(row pgx.Row) (models.PopularProduct, error) {
	var (
		p             models.PopularProduct
		menuItemID    *int64
		specialDishID *int64
	)
	err := row.Scan(&menuItemID, &specialDishID, &p.Name, &p.Price, &p.Category,
		&p.TotalSold, &p.TotalRevenue, &p.OrderCount)
	if err != nil {
		return p, fmt.Errorf("failed to scan product: %w", err)
	}

	ref, err := models.ProductRefFromColumns(menuItemID, specialDishID)
	if err != nil {
		return p, err
	}
	p.ProductID = ref.ID()
	p.Source = ref.Source()
	return p, nil
}

// TableSales returns delivered revenue per table label, highest first.
func (r *Repository) TableSales(ctx context.Context, dates models.DateRange) ([]models.TableSales, error) {
	query, args := buildTableSalesQuery(dates)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query table sales: %w", database.Classify(err))
	}
	defer rows.Close()

	result := []models.TableSales{}
	for rows.Next() {
		var t models.TableSales
		if err := rows.Scan(&t.Table, &t.OrderCount, &t.Revenue, &t.TotalItems); err != nil {
			return nil, fmt.Errorf("failed to scan table sales: %w", err)
		}
		result = append(result, withAverage(t))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table sales: %w", database.Classify(err))
	}

	return result, nil
}

// CountOrders counts orders of any status created within dates.
func (r *Repository) CountOrders(ctx context.Context, dates models.DateRange) (int64, error) {
	b := &queryBuilder{}
	b.dateRange("o.created_at", dates)
	return r.count(ctx, database.CountOrdersSQL+b.clause(), b.args...)
}

// DeliveredRevenue sums delivered order totals within dates, using the
// same day predicate as the sales report.
func (r *Repository) DeliveredRevenue(ctx context.Context, dates models.DateRange) (decimal.Decimal, error) {
	b := &queryBuilder{}
	b.dateRange("o.created_at", dates)

	var revenue decimal.Decimal
	if err := r.db.QueryRow(ctx, database.SumDeliveredRevenueSQL+b.clause(), b.args...).Scan(&revenue); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum revenue: %w", database.Classify(err))
	}
	return revenue, nil
}

// CountOpenOrders counts orders still occupying a table.
func (r *Repository) CountOpenOrders(ctx context.Context) (int64, error) {
	return r.count(ctx, database.CountOpenOrdersSQL, models.OpenStatusValues())
}

func (r *Repository) CountAvailableMenuItems(ctx context.Context) (int64, error) {
	return r.count(ctx, database.CountAvailableMenuItemsSQL)
}

// TopProduct returns the best selling product within dates, or nil when
// nothing was sold.
func (r *Repository) TopProduct(ctx context.Context, dates models.DateRange) (*models.TopProduct, error) {
	b := &queryBuilder{}
	b.dateRange("o.created_at", dates)
	query := database.SelectPopularProductsSQL + b.clause() + database.TopProductGroupBy

	p, err := scanPopularProduct(r.db.QueryRow(ctx, query, b.args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Classify(err)
	}
	return &models.TopProduct{Name: p.Name, Quantity: p.TotalSold}, nil
}

func (r *Repository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count: %w", database.Classify(err))
	}
	return n, nil
}
