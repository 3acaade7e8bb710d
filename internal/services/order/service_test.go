package order

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/internal/catalog"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

type fakeStore struct {
	inserted  []*models.Order
	insertErr error
	orders    map[int64]*models.Order
}

func (f *fakeStore) InsertOrder(_ context.Context, order *models.Order) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	order.ID = int64(len(f.inserted) + 1)
	order.CreatedAt = time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
	f.inserted = append(f.inserted, order)
	return nil
}

func (f *fakeStore) GetOrder(_ context.Context, id int64) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "order", ID: "x"}
	}
	return o, nil
}

type fakeCatalog map[models.ProductRef]*catalog.Product

func (f fakeCatalog) Resolve(_ context.Context, ref models.ProductRef) (*catalog.Product, error) {
	p, ok := f[ref]
	if !ok {
		return nil, &models.NotFoundError{Resource: string(ref.Source()), ID: "x"}
	}
	return p, nil
}

type fakePublisher struct {
	published []*models.OrderPlacedMessage
	err       error
}

func (f *fakePublisher) PublishOrderPlaced(_ context.Context, msg *models.OrderPlacedMessage) error {
	f.published = append(f.published, msg)
	return f.err
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter("test", &bytes.Buffer{}, slog.LevelDebug)
}

func scenarioRequest() *models.PlaceOrderRequest {
	return &models.PlaceOrderRequest{
		Table: "3",
		Items: []models.OrderItemInput{
			{ID: 1, Quantity: 2, Price: decimal.NewFromInt(1000)},
			{ID: 5, Quantity: 1, Price: decimal.NewFromInt(2000)},
			{ID: 1, Quantity: 1, Price: decimal.NewFromInt(5000), IsSpecialDish: true},
		},
	}
}

func TestPlaceOrder_Scenario9000(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	svc := NewService(store, fakeCatalog{}, pub, testLogger())

	order, err := svc.PlaceOrder(context.Background(), scenarioRequest())
	require.NoError(t, err)

	assert.True(t, order.Total.Equal(decimal.NewFromInt(9000)), "total = %s", order.Total)
	assert.Equal(t, models.StatusDelivered, order.Status)
	assert.Equal(t, models.DefaultPaymentMethod, order.PaymentMethod)
	require.Len(t, order.Items, 3)
	assert.Equal(t, models.SpecialDishRef(1), order.Items[2].Product)
	assert.Len(t, store.inserted, 1)

	require.Len(t, pub.published, 1)
	assert.Equal(t, order.ID, pub.published[0].OrderID)
	assert.Len(t, pub.published[0].Items, 3)
}

func TestPlaceOrder_EmptyItemsNeverReachesStore(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	svc := NewService(store, fakeCatalog{}, pub, testLogger())

	_, err := svc.PlaceOrder(context.Background(), &models.PlaceOrderRequest{Table: "3"})

	assert.True(t, models.IsValidation(err))
	assert.Empty(t, store.inserted)
	assert.Empty(t, pub.published)
}

func TestPlaceOrder_AmountsOutsideColumnRangeNeverReachStore(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, fakeCatalog{}, nil, testLogger())

	_, err := svc.PlaceOrder(context.Background(), &models.PlaceOrderRequest{
		Table: "3",
		Items: []models.OrderItemInput{
			{ID: 1, Quantity: 3, Price: decimal.RequireFromString("0.005")},
			{ID: 2, Quantity: 3000000000, Price: decimal.NewFromInt(1)},
		},
	})

	assert.True(t, models.IsValidation(err))
	assert.Empty(t, store.inserted)
}

func TestPlaceOrder_TotalMatchesSumOfStoredLines(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, fakeCatalog{}, nil, testLogger())

	order, err := svc.PlaceOrder(context.Background(), &models.PlaceOrderRequest{
		Table: "3",
		Items: []models.OrderItemInput{
			{ID: 1, Quantity: 3, Price: decimal.RequireFromString("0.35")},
			{ID: 2, Quantity: 7, Price: decimal.RequireFromString("12.99")},
		},
	})
	require.NoError(t, err)

	sum := decimal.Zero
	for _, item := range order.Items {
		sum = sum.Add(item.UnitPrice.Round(2).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	assert.True(t, order.Total.Equal(sum), "total %s != line sum %s", order.Total, sum)
	assert.True(t, order.Total.Equal(order.Total.Round(2)))
}

func TestPlaceOrder_StoreFailureIsReturned(t *testing.T) {
	aborted := &models.TransactionAbortedError{Op: "insert item 0", Err: errors.New("boom")}
	pub := &fakePublisher{}
	svc := NewService(&fakeStore{insertErr: aborted}, fakeCatalog{}, pub, testLogger())

	_, err := svc.PlaceOrder(context.Background(), scenarioRequest())

	assert.ErrorIs(t, err, aborted)
	assert.Empty(t, pub.published)
}

func TestPlaceOrder_PublishFailureDoesNotFailOrder(t *testing.T) {
	pub := &fakePublisher{err: errors.New("channel closed")}
	svc := NewService(&fakeStore{}, fakeCatalog{}, pub, testLogger())

	order, err := svc.PlaceOrder(context.Background(), scenarioRequest())
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
}

func TestPlaceOrder_NilPublisher(t *testing.T) {
	svc := NewService(&fakeStore{}, fakeCatalog{}, nil, testLogger())

	_, err := svc.PlaceOrder(context.Background(), scenarioRequest())
	assert.NoError(t, err)
}

func TestGetOrder_ResolvesNames(t *testing.T) {
	store := &fakeStore{orders: map[int64]*models.Order{
		7: {
			ID: 7, Table: "3", Status: models.StatusDelivered,
			Items: []models.LineItem{
				{Product: models.MenuItemRef(1), Quantity: 2, UnitPrice: decimal.NewFromInt(1000)},
				{Product: models.SpecialDishRef(1), Quantity: 1, UnitPrice: decimal.NewFromInt(5000)},
				{Product: models.MenuItemRef(99), Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
			},
		},
	}}
	cat := fakeCatalog{
		models.MenuItemRef(1):    {Name: "Tacos al Pastor", Category: "Mains"},
		models.SpecialDishRef(1): {Name: "Birria", Category: models.SpecialCategory},
	}
	svc := NewService(store, cat, nil, testLogger())

	order, err := svc.GetOrder(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Tacos al Pastor", order.Items[0].Name)
	assert.Equal(t, models.SpecialCategory, order.Items[1].Category)
	assert.Empty(t, order.Items[2].Name)
}

func TestGetOrder_Errors(t *testing.T) {
	svc := NewService(&fakeStore{}, fakeCatalog{}, nil, testLogger())

	_, err := svc.GetOrder(context.Background(), 0)
	assert.True(t, models.IsValidation(err))

	_, err = svc.GetOrder(context.Background(), 12)
	assert.True(t, models.IsNotFound(err))
}
