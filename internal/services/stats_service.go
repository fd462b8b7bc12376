package services

import (
	"context"

	"busbooking/internal/domain/models"
	"busbooking/internal/offline"
	"busbooking/internal/repositories"

	"golang.org/x/sync/errgroup"
)

const recentBookingsLimit = 5

// StatsService builds the admin dashboard. It needs the authority.
type StatsService struct {
	Authority *repositories.Authority
	Store     *offline.Store
}

func (s StatsService) Dashboard(ctx context.Context) (models.AdminStats, error) {
	var (
		out    models.AdminStats
		totals repositories.BookingTotals
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totals, err = s.Authority.Stats.BookingTotals(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.TotalUsers, err = s.Authority.Users.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.ActiveSchedules, err = s.Authority.Schedules.CountActive(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.RecentBookings, err = s.Authority.Bookings.Recent(gctx, recentBookingsLimit)
		return err
	})
	g.Go(func() (err error) {
		out.PendingSync, err = s.Store.PendingCount(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.AdminStats{}, err
	}

	out.TotalBookings = totals.Total
	out.TodayBookings = totals.Today
	out.Revenue = totals.Revenue
	return out, nil
}
