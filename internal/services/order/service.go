package order

import (
	"context"

	"restaurant-pos/internal/catalog"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

// Store persists and loads orders.
type Store interface {
	InsertOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
}

// Resolver looks products up in the catalog.
type Resolver interface {
	Resolve(ctx context.Context, ref models.ProductRef) (*catalog.Product, error)
}

// Publisher announces committed orders.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, msg *models.OrderPlacedMessage) error
}

type Service struct {
	store     Store
	catalog   Resolver
	publisher Publisher
	logger    *logger.Logger
}

// NewService creates an order service. publisher may be nil.
func NewService(store Store, resolver Resolver, publisher Publisher, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		catalog:   resolver,
		publisher: publisher,
		logger:    log,
	}
}

// PlaceOrder validates req and stores it as a settled order. The unit
// prices sent by the caller are stored as given.
func (s *Service) PlaceOrder(ctx context.Context, req *models.PlaceOrderRequest) (*models.Order, error) {
	if err := ValidatePlaceOrderRequest(req); err != nil {
		return nil, err
	}

	items := make([]models.LineItem, 0, len(req.Items))
	for _, in := range req.Items {
		items = append(items, models.LineItem{
			Product:   in.Ref(),
			Quantity:  in.Quantity,
			UnitPrice: in.Price,
		})
	}

	order := &models.Order{
		Table:         string(req.Table),
		Total:         models.OrderTotal(items),
		Status:        models.StatusDelivered,
		PaymentMethod: req.PaymentMethod,
		Items:         items,
	}

	if err := s.store.InsertOrder(ctx, order); err != nil {
		return nil, err
	}

	requestID := logger.RequestID(ctx)
	s.logger.Info("order_placed", "Order placed", requestID, map[string]any{
		"order_id": order.ID,
		"table":    order.Table,
		"total":    order.Total.String(),
		"items":    len(order.Items),
	})

	s.publish(ctx, order)
	return order, nil
}

// publish is best effort: the order is already committed.
func (s *Service) publish(ctx context.Context, order *models.Order) {
	if s.publisher == nil {
		return
	}

	msg := models.NewOrderPlacedMessage(order)
	if err := s.publisher.PublishOrderPlaced(ctx, msg); err != nil {
		s.logger.Error("order_notification_failed", "Failed to publish order notification",
			logger.RequestID(ctx), err, map[string]any{"order_id": order.ID})
	}
}

// GetOrder returns an order with its items named through the catalog.
func (s *Service) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	if id <= 0 {
		return nil, models.NewValidationError("id", "order id must be a positive integer")
	}

	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	for i := range order.Items {
		item := &order.Items[i]
		product, err := s.catalog.Resolve(ctx, item.Product)
		if err != nil {
			if models.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		item.Name = product.Name
		item.Category = product.Category
	}

	return order, nil
}

// IsClientError reports whether err was caused by the request rather than
// the server.
func IsClientError(err error) bool {
	return models.IsValidation(err) || models.IsNotFound(err)
}
