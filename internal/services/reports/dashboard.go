package reports

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"restaurant-pos/internal/models"
)

// Dashboard computes today's and this month's rollups concurrently. A failing
// measure fails the whole snapshot; a day without sales only leaves
// TopProductToday nil.
func (s *Service) Dashboard(ctx context.Context) (*models.DashboardSnapshot, error) {
	now := s.now().In(s.loc)
	today := models.Day(now)
	month := models.MonthToDate(now)

	snap := &models.DashboardSnapshot{Date: now.Format(models.DateLayout)}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.store.CountOrders(gctx, today)
		snap.OrdersToday = n
		return measureErr("orders today", err)
	})
	g.Go(func() error {
		v, err := s.store.DeliveredRevenue(gctx, today)
		snap.RevenueToday = v
		return measureErr("revenue today", err)
	})
	g.Go(func() error {
		n, err := s.store.CountOpenOrders(gctx)
		snap.OpenOrders = n
		return measureErr("open orders", err)
	})
	g.Go(func() error {
		n, err := s.store.CountOrders(gctx, month)
		snap.OrdersThisMonth = n
		return measureErr("orders this month", err)
	})
	g.Go(func() error {
		v, err := s.store.DeliveredRevenue(gctx, month)
		snap.RevenueThisMonth = v
		return measureErr("revenue this month", err)
	})
	g.Go(func() error {
		top, err := s.store.TopProduct(gctx, today)
		snap.TopProductToday = top
		return measureErr("top product today", err)
	})
	g.Go(func() error {
		n, err := s.store.CountAvailableMenuItems(gctx)
		snap.AvailableMenuItems = n
		return measureErr("available menu items", err)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func measureErr(measure string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("dashboard %s: %w", measure, err)
}
