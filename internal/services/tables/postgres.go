package tables

import (
	"context"
	"fmt"

	"restaurant-pos/internal/database"
	"restaurant-pos/internal/models"
)

type Repository struct {
	db database.Querier
}

func NewRepository(db database.Querier) *Repository {
	return &Repository{db: db}
}

// ListOccupancy returns every active table with the count and total of its
// pending and confirmed orders.
func (r *Repository) ListOccupancy(ctx context.Context) ([]models.TableOccupancy, error) {
	rows, err := r.db.Query(ctx, database.ListTableOccupancySQL, models.OpenStatusValues())
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", database.Classify(err))
	}
	defer rows.Close()

	tables := []models.TableOccupancy{}
	for rows.Next() {
		var t models.TableOccupancy
		if err := rows.Scan(&t.Table, &t.Capacity, &t.Location, &t.PendingOrderCount, &t.PendingTotal); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tables: %w", database.Classify(err))
	}

	return tables, nil
}
