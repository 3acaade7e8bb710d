package tables

import (
	"context"

	"restaurant-pos/internal/models"
)

type Store interface {
	ListOccupancy(ctx context.Context) ([]models.TableOccupancy, error)
}

// Service derives table occupancy from open orders on every read.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) ListTables(ctx context.Context) ([]models.TableOccupancy, error) {
	tables, err := s.store.ListOccupancy(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tables {
		tables[i].Occupied = tables[i].PendingOrderCount > 0
	}
	return tables, nil
}
