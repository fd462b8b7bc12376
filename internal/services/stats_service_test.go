package services

import (
	"context"
	"testing"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookingRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"booking_id", "booking_reference", "user_id", "schedule_id",
		"passenger_name", "passenger_age", "passenger_gender",
		"seat_numbers", "seat_count", "total_fare", "booking_status", "booking_date",
		"route_name", "origin_city", "destination_city", "bus_number",
		"travel_date", "departure_time", "arrival_time",
	}).AddRow(1, "BK-0000000001", 3, 7, "Ana", 30, "Female", "Seat-1", 1, 12.5, "Confirmed", time.Now(),
		"North Line", "Manila", "Baguio", "B-12", "2026-11-02", "08:00", "14:00")
}

func TestDashboardRunsQueriesConcurrently(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	store := newTestStore(t)
	_, err = store.Users.Append(context.Background(), pendingUser("offline1"))
	require.NoError(t, err)

	mock.ExpectQuery("COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"total", "today", "revenue"}).AddRow(10, 2, 480.5))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(4))
	mock.ExpectQuery("FROM bus_schedules WHERE travel_date").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(6))
	mock.ExpectQuery(`ORDER BY b.booking_date DESC\s+LIMIT`).
		WithArgs(5).
		WillReturnRows(bookingRow())

	stats, err := StatsService{Authority: repositories.NewAuthority(db), Store: store}.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.AdminStats{
		TotalBookings:   10,
		TotalUsers:      4,
		TodayBookings:   2,
		Revenue:         480.5,
		ActiveSchedules: 6,
		RecentBookings:  stats.RecentBookings,
		PendingSync:     1,
	}, stats)
	require.Len(t, stats.RecentBookings, 1)
	assert.Equal(t, "BK-0000000001", stats.RecentBookings[0].Reference)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardFailsWhenAuthorityDrops(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery("COALESCE").WillReturnError(mysql.ErrInvalidConn)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery("FROM bus_schedules WHERE travel_date").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY b.booking_date DESC\s+LIMIT`).WillReturnRows(bookingRow())

	_, err = StatsService{Authority: repositories.NewAuthority(db), Store: newTestStore(t)}.Dashboard(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
}
