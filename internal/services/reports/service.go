package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"restaurant-pos/internal/models"
)

// Store is the read side the reports are computed from.
type Store interface {
	SalesRows(ctx context.Context, f models.SalesFilter) ([]models.SalesRow, error)
	PopularProducts(ctx context.Context, dates models.DateRange) ([]models.PopularProduct, error)
	TableSales(ctx context.Context, dates models.DateRange) ([]models.TableSales, error)
	CountOrders(ctx context.Context, dates models.DateRange) (int64, error)
	DeliveredRevenue(ctx context.Context, dates models.DateRange) (decimal.Decimal, error)
	CountOpenOrders(ctx context.Context) (int64, error)
	TopProduct(ctx context.Context, dates models.DateRange) (*models.TopProduct, error)
	CountAvailableMenuItems(ctx context.Context) (int64, error)
}

type Service struct {
	store Store
	loc   *time.Location
	now   func() time.Time
}

// NewService creates a report service. Calendar days are taken in loc.
func NewService(store Store, loc *time.Location) *Service {
	return &Service{
		store: store,
		loc:   loc,
		now:   time.Now,
	}
}

// Location is the time zone report dates are parsed and evaluated in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// SalesReport returns one page of delivered orders matching f. Statistics
// cover every matching order, not only the page.
func (s *Service) SalesReport(ctx context.Context, f models.SalesFilter) (*models.SalesReport, error) {
	f.Limit = clampLimit(f.Limit, DefaultSalesLimit, MaxSalesLimit)
	if f.Offset < 0 {
		f.Offset = 0
	}

	rows, err := s.store.SalesRows(ctx, f)
	if err != nil {
		return nil, err
	}

	orders := groupSalesRows(rows)
	return &models.SalesReport{
		Orders:     paginate(orders, f.Limit, f.Offset),
		Statistics: salesStatistics(orders),
		Total:      len(orders),
		Limit:      f.Limit,
		Offset:     f.Offset,
	}, nil
}

// PopularProducts ranks delivered products by quantity sold.
func (s *Service) PopularProducts(ctx context.Context, dates models.DateRange, limit int) ([]models.PopularProduct, error) {
	limit = clampLimit(limit, DefaultPopularLimit, MaxPopularLimit)

	products, err := s.store.PopularProducts(ctx, dates)
	if err != nil {
		return nil, err
	}
	return rankPopular(products, limit), nil
}

// TableSales reports delivered revenue per table.
func (s *Service) TableSales(ctx context.Context, dates models.DateRange) ([]models.TableSales, error) {
	return s.store.TableSales(ctx, dates)
}
