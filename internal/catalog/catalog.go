// Package catalog resolves product references against the menu item and
// special dish catalogs.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"restaurant-pos/internal/database"
	"restaurant-pos/internal/models"
)

// Product is a catalog entry as seen at read time.
type Product struct {
	Ref       models.ProductRef
	Name      string
	Category  string
	Price     decimal.Decimal
	Available bool
}

type Catalog struct {
	db database.Querier
}

func New(db database.Querier) *Catalog {
	return &Catalog{db: db}
}

// Resolve looks up ref in the catalog it points at.
func (c *Catalog) Resolve(ctx context.Context, ref models.ProductRef) (*Product, error) {
	p := &Product{Ref: ref}

	var err error
	switch ref.Source() {
	case models.SourceMenuItem:
		err = c.db.QueryRow(ctx, database.GetMenuItemSQL, ref.ID()).
			Scan(&p.Name, &p.Price, &p.Category, &p.Available)
	case models.SourceSpecialDish:
		p.Category = models.SpecialCategory
		err = c.db.QueryRow(ctx, database.GetSpecialDishSQL, ref.ID()).
			Scan(&p.Name, &p.Price, &p.Available)
	default:
		return nil, fmt.Errorf("unknown product source %q", ref.Source())
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{Resource: string(ref.Source()), ID: strconv.FormatInt(ref.ID(), 10)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", ref, database.Classify(err))
	}
	return p, nil
}
