package reports

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/internal/models"
)

func date(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := time.ParseInLocation(models.DateLayout, s, time.UTC)
	require.NoError(t, err)
	return &d
}

// scenarioRows is the 9000 order: two tacos, one drink, one special.
func scenarioRows(createdAt time.Time) []models.SalesRow {
	base := models.SalesRow{
		OrderID:       7,
		Table:         "3",
		Total:         decimal.NewFromInt(9000),
		Status:        models.StatusDelivered,
		PaymentMethod: "cash",
		CreatedAt:     createdAt,
	}
	rows := make([]models.SalesRow, 3)
	for i := range rows {
		rows[i] = base
	}
	rows[0].Product, rows[0].ProductName, rows[0].Category, rows[0].Quantity, rows[0].UnitPrice =
		models.MenuItemRef(1), "Tacos al Pastor", "Mains", 2, decimal.NewFromInt(1000)
	rows[1].Product, rows[1].ProductName, rows[1].Category, rows[1].Quantity, rows[1].UnitPrice =
		models.MenuItemRef(5), "Horchata", "Drinks", 1, decimal.NewFromInt(2000)
	rows[2].Product, rows[2].ProductName, rows[2].Category, rows[2].Quantity, rows[2].UnitPrice =
		models.SpecialDishRef(1), "Birria", models.SpecialCategory, 1, decimal.NewFromInt(5000)
	return rows
}

func TestBuildSalesQuery_NoFilters(t *testing.T) {
	query, args := buildSalesQuery(models.SalesFilter{})

	assert.Empty(t, args)
	assert.Contains(t, query, "WHERE o.status = 'delivered'")
	assert.NotContains(t, query, "AND")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(query), "oi.id ASC"))
}

func TestBuildSalesQuery_InclusiveDates(t *testing.T) {
	f := models.SalesFilter{Dates: models.DateRange{Start: date(t, "2024-05-01"), End: date(t, "2024-05-31")}}
	query, args := buildSalesQuery(f)

	assert.Contains(t, query, "o.created_at::date >= $1::date")
	assert.Contains(t, query, "o.created_at::date <= $2::date")
	assert.Equal(t, []any{"2024-05-01", "2024-05-31"}, args)
}

func TestBuildSalesQuery_AllFilters(t *testing.T) {
	f := models.SalesFilter{
		Dates:    models.DateRange{End: date(t, "2024-05-31")},
		Table:    "3",
		Product:  "50%_off",
		Category: "Drinks",
	}
	query, args := buildSalesQuery(f)

	assert.Contains(t, query, "o.created_at::date <= $1::date")
	assert.Contains(t, query, "o.table_label = $2")
	assert.Contains(t, query, "COALESCE(m.name, s.name) ILIKE $3")
	assert.Contains(t, query, "LOWER(c.name) = LOWER($4)")
	assert.Equal(t, []any{"2024-05-31", "3", `%50\%\_off%`, "Drinks"}, args)
}

func TestBuildSalesQuery_SpecialCategory(t *testing.T) {
	query, args := buildSalesQuery(models.SalesFilter{Category: "special"})

	assert.Contains(t, query, "oi.special_dish_id IS NOT NULL")
	assert.Empty(t, args)
}

func TestGroupSalesRows_OneOrderPerID(t *testing.T) {
	createdAt := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
	orders := groupSalesRows(scenarioRows(createdAt))

	require.Len(t, orders, 1)
	o := orders[0]
	assert.Equal(t, int64(7), o.ID)
	assert.True(t, o.Total.Equal(decimal.NewFromInt(9000)))
	require.Len(t, o.Items, 3)
	assert.True(t, o.Items[0].Subtotal.Equal(decimal.NewFromInt(2000)))
	assert.Equal(t, models.SpecialCategory, o.Items[2].Category)
	assert.True(t, o.Items[2].Product.IsSpecial())
}

func TestGroupSalesRows_MostRecentFirst(t *testing.T) {
	early := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	late := early.Add(3 * time.Hour)

	rows := []models.SalesRow{
		{OrderID: 1, CreatedAt: early, Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
		{OrderID: 3, CreatedAt: late, Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
		{OrderID: 2, CreatedAt: late, Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
	}
	orders := groupSalesRows(rows)

	require.Len(t, orders, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{orders[0].ID, orders[1].ID, orders[2].ID})
}

func TestSalesStatistics_NoDoubleCounting(t *testing.T) {
	orders := groupSalesRows(scenarioRows(time.Now()))
	stats := salesStatistics(orders)

	assert.True(t, stats.TotalSales.Equal(decimal.NewFromInt(9000)), stats.TotalSales.String())
	assert.Equal(t, 1, stats.OrderCount)
	assert.Equal(t, 4, stats.TotalItems)
	assert.True(t, stats.AverageOrder.Equal(decimal.NewFromInt(9000)))
}

func TestSalesStatistics_Empty(t *testing.T) {
	stats := salesStatistics(nil)

	assert.True(t, stats.TotalSales.IsZero())
	assert.True(t, stats.AverageOrder.IsZero())
	assert.Zero(t, stats.OrderCount)
	assert.Zero(t, stats.TotalItems)
}

func TestSalesStatistics_AverageRounded(t *testing.T) {
	orders := []models.SalesOrder{
		{ID: 1, Total: decimal.NewFromInt(10)},
		{ID: 2, Total: decimal.NewFromInt(10)},
		{ID: 3, Total: decimal.NewFromInt(11)},
	}
	stats := salesStatistics(orders)

	assert.Equal(t, "10.33", stats.AverageOrder.StringFixed(2))
}

func TestPaginate(t *testing.T) {
	orders := []models.SalesOrder{{ID: 1}, {ID: 2}, {ID: 3}}

	assert.Len(t, paginate(orders, 2, 0), 2)
	assert.Equal(t, int64(3), paginate(orders, 2, 2)[0].ID)
	assert.Empty(t, paginate(orders, 2, 5))
	assert.NotNil(t, paginate(orders, 2, 5))
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero uses default", 0, 10},
		{"negative uses default", -4, 10},
		{"within range", 7, 7},
		{"capped", 1000, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampLimit(tt.limit, 10, 100))
		})
	}
}

func TestRankPopular_StableNonIncreasing(t *testing.T) {
	products := []models.PopularProduct{
		{ProductID: 1, Name: "Tacos", TotalSold: 2},
		{ProductID: 5, Name: "Horchata", TotalSold: 1},
		{ProductID: 1, Name: "Birria", Source: models.SourceSpecialDish, TotalSold: 1},
		{ProductID: 2, Name: "Quesadilla", TotalSold: 4},
	}
	ranked := rankPopular(products, 10)

	require.Len(t, ranked, 4)
	assert.Equal(t, "Quesadilla", ranked[0].Name)
	assert.Equal(t, "Tacos", ranked[1].Name)
	assert.Equal(t, "Horchata", ranked[2].Name)
	assert.Equal(t, "Birria", ranked[3].Name)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].TotalSold, ranked[i].TotalSold)
	}

	assert.Equal(t, "Tacos", products[0].Name, "input must not be reordered")
	assert.Len(t, rankPopular(products, 2), 2)
}

// fakeStore records the ranges it was asked about.
type fakeStore struct {
	mu sync.Mutex

	rows     []models.SalesRow
	popular  []models.PopularProduct
	tables   []models.TableSales
	top      *models.TopProduct
	failOn   string
	err      error
	filter   models.SalesFilter
	revenues []models.DateRange
}

func (f *fakeStore) fail(name string) error {
	if f.failOn == name {
		return f.err
	}
	return nil
}

func (f *fakeStore) SalesRows(_ context.Context, filter models.SalesFilter) ([]models.SalesRow, error) {
	f.filter = filter
	return f.rows, f.fail("sales")
}

func (f *fakeStore) PopularProducts(context.Context, models.DateRange) ([]models.PopularProduct, error) {
	return f.popular, f.fail("popular")
}

func (f *fakeStore) TableSales(context.Context, models.DateRange) ([]models.TableSales, error) {
	return f.tables, f.fail("tables")
}

func (f *fakeStore) CountOrders(_ context.Context, dates models.DateRange) (int64, error) {
	if dates.Start != nil && dates.Start.Day() == 1 && dates.End.Day() != 1 {
		return 40, f.fail("count")
	}
	return 3, f.fail("count")
}

func (f *fakeStore) DeliveredRevenue(_ context.Context, dates models.DateRange) (decimal.Decimal, error) {
	f.mu.Lock()
	f.revenues = append(f.revenues, dates)
	f.mu.Unlock()

	if dates.Start.Equal(*dates.End) {
		return decimal.NewFromInt(9000), f.fail("revenue")
	}
	return decimal.NewFromInt(125000), f.fail("revenue")
}

func (f *fakeStore) CountOpenOrders(context.Context) (int64, error) {
	return 2, f.fail("open")
}

func (f *fakeStore) TopProduct(context.Context, models.DateRange) (*models.TopProduct, error) {
	return f.top, f.fail("top")
}

func (f *fakeStore) CountAvailableMenuItems(context.Context) (int64, error) {
	return 6, f.fail("menu")
}

func newTestService(store Store, now time.Time) *Service {
	svc := NewService(store, now.Location())
	svc.now = func() time.Time { return now }
	return svc
}

func TestService_SalesReport(t *testing.T) {
	store := &fakeStore{rows: scenarioRows(time.Now())}
	svc := NewService(store, time.UTC)

	report, err := svc.SalesReport(context.Background(), models.SalesFilter{Limit: 0, Offset: -3})
	require.NoError(t, err)

	assert.Equal(t, DefaultSalesLimit, store.filter.Limit)
	assert.Equal(t, DefaultSalesLimit, report.Limit)
	assert.Zero(t, report.Offset)
	assert.Equal(t, 1, report.Total)
	require.Len(t, report.Orders, 1)
	assert.Len(t, report.Orders[0].Items, 3)
	assert.Equal(t, 4, report.Statistics.TotalItems)
}

func TestService_SalesReport_StatisticsCoverAllPages(t *testing.T) {
	now := time.Now()
	rows := []models.SalesRow{
		{OrderID: 1, CreatedAt: now, Total: decimal.NewFromInt(100), Quantity: 1, UnitPrice: decimal.NewFromInt(100)},
		{OrderID: 2, CreatedAt: now, Total: decimal.NewFromInt(300), Quantity: 3, UnitPrice: decimal.NewFromInt(100)},
	}
	svc := NewService(&fakeStore{rows: rows}, time.UTC)

	report, err := svc.SalesReport(context.Background(), models.SalesFilter{Limit: 1})
	require.NoError(t, err)

	assert.Len(t, report.Orders, 1)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.Statistics.OrderCount)
	assert.True(t, report.Statistics.TotalSales.Equal(decimal.NewFromInt(400)))
}

func TestService_SalesReport_StoreError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(&fakeStore{failOn: "sales", err: boom}, time.UTC)

	_, err := svc.SalesReport(context.Background(), models.SalesFilter{})
	assert.ErrorIs(t, err, boom)
}

func TestService_PopularProducts(t *testing.T) {
	store := &fakeStore{popular: []models.PopularProduct{
		{Name: "a", TotalSold: 1},
		{Name: "b", TotalSold: 5},
		{Name: "c", TotalSold: 3},
	}}
	svc := NewService(store, time.UTC)

	products, err := svc.PopularProducts(context.Background(), models.DateRange{}, 2)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "b", products[0].Name)
	assert.Equal(t, "c", products[1].Name)
}

func TestService_Dashboard(t *testing.T) {
	loc, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)
	now := time.Date(2024, 5, 14, 23, 30, 0, 0, loc)

	store := &fakeStore{top: &models.TopProduct{Name: "Tacos al Pastor", Quantity: 2}}
	snap, err := newTestService(store, now).Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2024-05-14", snap.Date)
	assert.Equal(t, int64(3), snap.OrdersToday)
	assert.Equal(t, int64(40), snap.OrdersThisMonth)
	assert.True(t, snap.RevenueToday.Equal(decimal.NewFromInt(9000)))
	assert.True(t, snap.RevenueThisMonth.Equal(decimal.NewFromInt(125000)))
	assert.Equal(t, int64(2), snap.OpenOrders)
	assert.Equal(t, int64(6), snap.AvailableMenuItems)
	require.NotNil(t, snap.TopProductToday)
	assert.Equal(t, "Tacos al Pastor", snap.TopProductToday.Name)

	// Revenue today is asked for the same single day a sales report for
	// today would filter on.
	today := models.Day(now)
	wantStart, wantEnd := today.Bounds()
	var found bool
	for _, r := range store.revenues {
		start, end := r.Bounds()
		if *start == *wantStart && *end == *wantEnd {
			found = true
		}
	}
	assert.True(t, found)
	assert.Equal(t, "2024-05-14", *wantStart)
}

func TestService_Dashboard_NoSalesToday(t *testing.T) {
	snap, err := newTestService(&fakeStore{}, time.Now()).Dashboard(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap.TopProductToday)
}

func TestService_Dashboard_AnyFailureFailsSnapshot(t *testing.T) {
	boom := errors.New("boom")
	for _, measure := range []string{"count", "revenue", "open", "top", "menu"} {
		t.Run(measure, func(t *testing.T) {
			store := &fakeStore{failOn: measure, err: boom}
			snap, err := newTestService(store, time.Now()).Dashboard(context.Background())

			assert.Nil(t, snap)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestBuildTableSalesQuery(t *testing.T) {
	query, args := buildTableSalesQuery(models.DateRange{Start: date(t, "2024-05-01")})

	assert.Contains(t, query, "SUM(quantity) AS quantity")
	assert.Contains(t, query, "o.created_at::date >= $1::date")
	assert.Equal(t, []any{"2024-05-01"}, args)
}

func TestWithAverage(t *testing.T) {
	got := withAverage(models.TableSales{OrderCount: 3, Revenue: decimal.NewFromInt(100)})
	assert.Equal(t, "33.33", got.AverageOrder.StringFixed(2))

	got = withAverage(models.TableSales{})
	assert.True(t, got.AverageOrder.IsZero())
}
