package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (BookingRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return BookingRepository{DB: db}, mock
}

func reserveRequest() models.ReserveRequest {
	return models.ReserveRequest{
		UserID:          4,
		ScheduleID:      9,
		Reference:       "BK-0001",
		PassengerName:   "Ana Cruz",
		PassengerAge:    30,
		PassengerGender: "Female",
		SeatCount:       2,
		BookingDate:     time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC),
	}
}

func TestReserveCommitsAndDecrements(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT available_seats, fare FROM bus_schedules WHERE schedule_id = \\? FOR UPDATE").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"available_seats", "fare"}).AddRow(5, 12.5))
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(int64(4), int64(9), "BK-0001", "Ana Cruz", 30, "Female", "Seat-1, Seat-2", 2, 25.0, "Confirmed", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(77, 1))
	mock.ExpectExec("UPDATE bus_schedules").
		WithArgs(2, int64(9), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := repo.Reserve(context.Background(), reserveRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(77), res.BookingID)
	assert.Equal(t, 25.0, res.TotalFare)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveHonorsQuotedTotal(t *testing.T) {
	repo, mock := newMock(t)
	req := reserveRequest()
	quoted := 20.0
	req.QuotedTotal = &quoted

	// fare went up since the quote; the stored total must not follow it
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"available_seats", "fare"}).AddRow(5, 15.0))
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), 20.0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(78, 1))
	mock.ExpectExec("UPDATE bus_schedules").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := repo.Reserve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 20.0, res.TotalFare)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveInsufficientSeatsRollsBack(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"available_seats", "fare"}).AddRow(1, 12.5))
	mock.ExpectRollback()

	_, err := repo.Reserve(context.Background(), reserveRequest())
	require.Error(t, err)
	assert.True(t, domain.IsInsufficientInventory(err))
	assert.Contains(t, err.Error(), "requested 2, available 1")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveGuardedDecrementRollsBack(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"available_seats", "fare"}).AddRow(2, 12.5))
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(79, 1))
	mock.ExpectExec("UPDATE bus_schedules").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Reserve(context.Background(), reserveRequest())
	assert.True(t, domain.IsInsufficientInventory(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveUnknownSchedule(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"available_seats", "fare"}))
	mock.ExpectRollback()

	_, err := repo.Reserve(context.Background(), reserveRequest())
	assert.True(t, domain.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveDuplicateReference(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"available_seats", "fare"}).AddRow(5, 12.5))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'BK-0001'"})
	mock.ExpectRollback()

	_, err := repo.Reserve(context.Background(), reserveRequest())
	assert.True(t, domain.IsDuplicate(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveLockWaitTimeout(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnError(&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded; try restarting transaction"})
	mock.ExpectRollback()

	_, err := repo.Reserve(context.Background(), reserveRequest())
	assert.True(t, domain.IsConflict(err))
	assert.False(t, domain.IsInternal(err))
	assert.Contains(t, err.Error(), "retry later")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveConnectionLost(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin().WillReturnError(mysql.ErrInvalidConn)

	_, err := repo.Reserve(context.Background(), reserveRequest())
	assert.True(t, domain.IsUnavailable(err))
}

func TestReserveRejectsEmptyReference(t *testing.T) {
	repo, _ := newMock(t)
	req := reserveRequest()
	req.Reference = ""

	_, err := repo.Reserve(context.Background(), req)
	assert.True(t, domain.IsValidation(err))
}

func bookingRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"booking_id", "booking_reference", "user_id", "schedule_id",
		"passenger_name", "passenger_age", "passenger_gender",
		"seat_numbers", "seat_count", "total_fare", "booking_status", "booking_date",
		"route_name", "origin_city", "destination_city", "bus_number",
		"travel_date", "departure_time", "arrival_time",
	}).AddRow(
		77, "OFF-1A2B3C4D", 4, 9,
		"Ana Cruz", 30, "Female",
		"Seat-1, Seat-2", 2, 25.0, "Confirmed", time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC),
		"North Line", "Manila", "Baguio", "BUS-12",
		"2026-11-02", "08:00", "14:00",
	)
}

func TestFindByReference(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("WHERE b.booking_reference = \\?").
		WithArgs("OFF-1A2B3C4D").
		WillReturnRows(bookingRow())

	b, err := repo.FindByReference(context.Background(), "OFF-1A2B3C4D")
	require.NoError(t, err)
	assert.Equal(t, int64(4), b.UserID)
	assert.Equal(t, int64(9), b.ScheduleID)
	assert.Equal(t, "Baguio", b.DestinationCity)

	mock.ExpectQuery("WHERE b.booking_reference = \\?").
		WithArgs("OFF-MISSING").
		WillReturnRows(sqlmock.NewRows([]string{"booking_id"}))
	_, err = repo.FindByReference(context.Background(), "OFF-MISSING")
	assert.True(t, domain.IsNotFound(err))
}

func TestListByUser(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("WHERE b.user_id = \\?").WithArgs(int64(4)).WillReturnRows(bookingRow())

	got, err := repo.ListByUser(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "OFF-1A2B3C4D", got[0].Reference)
}

func TestClassifyInternal(t *testing.T) {
	err := classify("op", "booking", "x", errors.New("syntax error"))
	assert.True(t, domain.IsInternal(err))
	assert.Nil(t, classify("op", "booking", "x", nil))
}
