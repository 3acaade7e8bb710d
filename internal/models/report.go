package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format accepted in report filters.
const DateLayout = "2006-01-02"

// SpecialCategory is reported as the category of every special dish.
const SpecialCategory = "Special"

// DateRange is an inclusive range of calendar days. A nil bound is open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// ParseDateRange parses YYYY-MM-DD bounds in loc. Empty strings leave the
// bound open.
func ParseDateRange(start, end string, loc *time.Location) (DateRange, error) {
	var r DateRange
	if start != "" {
		t, err := time.ParseInLocation(DateLayout, start, loc)
		if err != nil {
			return DateRange{}, NewValidationError("dateStart", "must be a date in YYYY-MM-DD format")
		}
		r.Start = &t
	}
	if end != "" {
		t, err := time.ParseInLocation(DateLayout, end, loc)
		if err != nil {
			return DateRange{}, NewValidationError("dateEnd", "must be a date in YYYY-MM-DD format")
		}
		r.End = &t
	}
	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		return DateRange{}, NewValidationError("dateEnd", "must not be before dateStart")
	}
	return r, nil
}

// Day returns the single calendar day containing t, in t's location.
func Day(t time.Time) DateRange {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return DateRange{Start: &d, End: &d}
}

// MonthToDate returns the range from the first of t's month through t's day.
func MonthToDate(t time.Time) DateRange {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return DateRange{Start: &first, End: &d}
}

// Bounds returns the bounds formatted as YYYY-MM-DD, nil when open.
func (r DateRange) Bounds() (start, end *string) {
	if r.Start != nil {
		s := r.Start.Format(DateLayout)
		start = &s
	}
	if r.End != nil {
		e := r.End.Format(DateLayout)
		end = &e
	}
	return start, end
}

// SalesFilter narrows the sales report. Zero values mean "no filter".
type SalesFilter struct {
	Dates    DateRange
	Table    string
	Product  string
	Category string
	Limit    int
	Offset   int
}

// SalesRow is one delivered line item joined with its order and product.
type SalesRow struct {
	OrderID       int64
	Table         string
	Total         decimal.Decimal
	Status        OrderStatus
	PaymentMethod string
	CreatedAt     time.Time
	Product       ProductRef
	ProductName   string
	Category      string
	Quantity      int
	UnitPrice     decimal.Decimal
}

type SalesItem struct {
	Product   ProductRef      `json:"product"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SalesOrder is one order of the sales report with its matching items.
type SalesOrder struct {
	ID            int64           `json:"id"`
	Table         string          `json:"table"`
	Total         decimal.Decimal `json:"total"`
	Status        OrderStatus     `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`
	CreatedAt     time.Time       `json:"createdAt"`
	Items         []SalesItem     `json:"items"`
}

type SalesStatistics struct {
	TotalSales   decimal.Decimal `json:"total_ventas"`
	TotalItems   int             `json:"total_items"`
	OrderCount   int             `json:"numero_ordenes"`
	AverageOrder decimal.Decimal `json:"promedio_orden"`
}

type SalesReport struct {
	Orders     []SalesOrder    `json:"orders"`
	Statistics SalesStatistics `json:"statistics"`
	Total      int             `json:"total"`
	Limit      int             `json:"limit"`
	Offset     int             `json:"offset"`
}

// PopularProduct is one product's aggregated delivered sales.
type PopularProduct struct {
	ProductID    int64           `json:"productId"`
	Source       ProductSource   `json:"source"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category"`
	TotalSold    int64           `json:"totalSold"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	OrderCount   int64           `json:"orderCount"`
}

type TopProduct struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

// DashboardSnapshot combines today's and this month's rollups.
type DashboardSnapshot struct {
	Date               string          `json:"date"`
	OrdersToday        int64           `json:"ordersToday"`
	RevenueToday       decimal.Decimal `json:"revenueToday"`
	OpenOrders         int64           `json:"openOrders"`
	OrdersThisMonth    int64           `json:"ordersThisMonth"`
	RevenueThisMonth   decimal.Decimal `json:"revenueThisMonth"`
	TopProductToday    *TopProduct     `json:"topProductToday"`
	AvailableMenuItems int64           `json:"availableMenuItems"`
}

// TableSales is one table's delivered sales.
type TableSales struct {
	Table        string          `json:"table"`
	OrderCount   int64           `json:"orderCount"`
	Revenue      decimal.Decimal `json:"revenue"`
	AverageOrder decimal.Decimal `json:"averageOrder"`
	TotalItems   int64           `json:"totalItems"`
}

// TableOccupancy is a table with the aggregate of its open orders.
type TableOccupancy struct {
	Table             string          `json:"table"`
	Capacity          int             `json:"capacity"`
	Location          string          `json:"location"`
	PendingOrderCount int64           `json:"pendingOrderCount"`
	PendingTotal      decimal.Decimal `json:"pendingTotal"`
	Occupied          bool            `json:"occupied"`
}
