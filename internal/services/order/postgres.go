package order

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"restaurant-pos/internal/database"
	"restaurant-pos/internal/models"
)

// Repository persists orders in PostgreSQL.
type Repository struct {
	db database.Querier
}

func NewRepository(db database.Querier) *Repository {
	return &Repository{db: db}
}

// InsertOrder writes the order header and all of its line items in one
// transaction. On success order.ID and order.CreatedAt are set; on failure
// nothing is written and order is left untouched.
func (r *Repository) InsertOrder(ctx context.Context, order *models.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return abort("begin", err)
	}
	defer tx.Rollback(ctx)

	var (
		orderID   int64
		createdAt time.Time
	)
	err = tx.QueryRow(ctx, database.InsertOrderSQL,
		order.Table, order.Total, order.Status, order.PaymentMethod,
	).Scan(&orderID, &createdAt)
	if err != nil {
		return abort("insert order", err)
	}

	for i, item := range order.Items {
		menuItemID, specialDishID := item.Product.Columns()
		if menuItemID == nil && specialDishID == nil {
			return abort(fmt.Sprintf("insert item %d", i), errors.New("line item has no product"))
		}

		_, err := tx.Exec(ctx, database.InsertOrderItemSQL,
			orderID, menuItemID, specialDishID, item.Quantity, item.UnitPrice)
		if err != nil {
			return abort(fmt.Sprintf("insert item %d", i), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return abort("commit", err)
	}

	order.ID = orderID
	order.CreatedAt = createdAt
	for i := range order.Items {
		order.Items[i].OrderID = orderID
	}
	return nil
}

// abort reports a failed write step. Unreachable-store failures keep their
// connectivity classification.
func abort(op string, err error) error {
	classified := database.Classify(err)
	var conn *models.ConnectivityError
	if errors.As(classified, &conn) {
		return classified
	}
	return &models.TransactionAbortedError{Op: op, Err: err}
}

// GetOrder loads an order and its line items.
func (r *Repository) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	order := &models.Order{}
	err := r.db.QueryRow(ctx, database.GetOrderByIDSQL, id).Scan(
		&order.ID, &order.Table, &order.Total, &order.Status, &order.PaymentMethod, &order.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{Resource: "order", ID: strconv.FormatInt(id, 10)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", database.Classify(err))
	}

	rows, err := r.db.Query(ctx, database.GetOrderItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", database.Classify(err))
	}
	defer rows.Close()

	order.Items = []models.LineItem{}
	for rows.Next() {
		var (
			item          models.LineItem
			menuItemID    *int64
			specialDishID *int64
		)
		if err := rows.Scan(&item.ID, &menuItemID, &specialDishID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		item.Product, err = models.ProductRefFromColumns(menuItemID, specialDishID)
		if err != nil {
			return nil, err
		}
		item.OrderID = order.ID
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order items: %w", database.Classify(err))
	}

	return order, nil
}
