package repositories

import (
	"context"
	"database/sql"
)

// StatsRepository computes the admin dashboard aggregates.
type StatsRepository struct {
	DB *sql.DB
}

type BookingTotals struct {
	Total   int
	Today   int
	Revenue float64
}

// BookingTotals counts all bookings, today's bookings, and sums the fares
// of confirmed bookings.
func (r StatsRepository) BookingTotals(ctx context.Context) (BookingTotals, error) {
	var t BookingTotals
	err := r.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN DATE(booking_date) = CURDATE() THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN booking_status = 'Confirmed' THEN total_fare ELSE 0 END), 0)
		FROM bookings
	`).Scan(&t.Total, &t.Today, &t.Revenue)
	if err != nil {
		return BookingTotals{}, classify("booking stats", "booking", "", err)
	}
	return t, nil
}
