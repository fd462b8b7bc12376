package services

import (
	"context"
	"testing"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSnapshot(t *testing.T, svc BookingService) {
	t.Helper()
	require.NoError(t, svc.Store.Schedules.ReplaceSnapshot(context.Background(), []models.Schedule{{
		ID: 7, RouteName: "North Line", OriginCity: "Manila", DestinationCity: "Baguio",
		BusNumber: "BUS-12", TravelDate: "2026-11-02", DepartureTime: "08:00",
		TotalSeats: 40, AvailableSeats: 3, Fare: 12.5,
	}}))
}

func TestBookingOfflineCapture(t *testing.T) {
	svc := BookingService{Store: newTestStore(t)}
	seedSnapshot(t, svc)
	ctx := context.Background()
	caller := domain.RequestContext{Username: "ana"}

	b, err := svc.Create(ctx, domain.ModeOffline, caller, models.BookingRequest{
		ScheduleID: 7, PassengerName: "Ana Cruz", PassengerAge: 30, SeatCount: 2,
	})
	require.NoError(t, err)
	assert.True(t, b.IsOffline)
	assert.Regexp(t, `^OFF-`, b.Reference)
	assert.Equal(t, 25.0, b.TotalFare)
	assert.Equal(t, "Pending Sync", b.Status)
	assert.Equal(t, "Other", b.PassengerGender)

	list, err := svc.List(ctx, domain.ModeOffline, caller)
	require.NoError(t, err)
	require.Len(t, list, 1)

	got, err := svc.Get(ctx, domain.ModeOffline, caller, b.Reference)
	require.NoError(t, err)
	assert.Equal(t, b.Reference, got.Reference)

	_, err = svc.Get(ctx, domain.ModeOffline, domain.RequestContext{Username: "ben"}, b.Reference)
	assert.True(t, domain.IsNotFound(err))
}

func TestBookingOfflineChecksSnapshot(t *testing.T) {
	svc := BookingService{Store: newTestStore(t)}
	seedSnapshot(t, svc)
	caller := domain.RequestContext{Username: "ana"}

	_, err := svc.Create(context.Background(), domain.ModeOffline, caller, models.BookingRequest{
		ScheduleID: 7, PassengerName: "Ana", SeatCount: 4,
	})
	assert.True(t, domain.IsInsufficientInventory(err))

	_, err = svc.Create(context.Background(), domain.ModeOffline, caller, models.BookingRequest{
		ScheduleID: 8, PassengerName: "Ana", SeatCount: 1,
	})
	assert.True(t, domain.IsNotFound(err))

	n, err := svc.Store.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBookingCreateRequiresCaller(t *testing.T) {
	svc := BookingService{Store: newTestStore(t)}
	_, err := svc.Create(context.Background(), domain.ModeOffline, domain.RequestContext{}, models.BookingRequest{
		ScheduleID: 7, PassengerName: "Ana", SeatCount: 1,
	})
	assert.True(t, domain.IsValidation(err))
}

func TestBookingOnlineListMergesPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc := BookingService{Authority: repositories.NewAuthority(db), Store: newTestStore(t)}
	seedSnapshot(t, svc)
	caller := domain.RequestContext{UserID: 4, Username: "ana"}

	_, err = svc.Create(context.Background(), domain.ModeOffline, caller, models.BookingRequest{
		ScheduleID: 7, PassengerName: "Ana", SeatCount: 1,
	})
	require.NoError(t, err)

	mock.ExpectQuery("WHERE b.user_id = \\?").WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{
			"booking_id", "booking_reference", "user_id", "schedule_id",
			"passenger_name", "passenger_age", "passenger_gender",
			"seat_numbers", "seat_count", "total_fare", "booking_status", "booking_date",
			"route_name", "origin_city", "destination_city", "bus_number",
			"travel_date", "departure_time", "arrival_time",
		}).AddRow(
			1, "BK-OLD", 4, 7, "Ana", 30, "Female", "Seat-1", 1, 12.5, "Confirmed",
			time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			"North Line", "Manila", "Baguio", "BUS-12", "2025-01-02", "08:00", "14:00",
		))

	list, err := svc.List(context.Background(), domain.ModeOnline, caller)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].IsOffline)
	assert.Equal(t, "BK-OLD", list[1].Reference)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewOnlineReference(t *testing.T) {
	a, b := NewOnlineReference(), NewOnlineReference()
	assert.Regexp(t, `^BK-[0-9A-F]{10}$`, a)
	assert.NotEqual(t, a, b)
}
