package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
)

type BookingRepository struct {
	DB *sql.DB
}

const bookingSelect = `
	SELECT b.booking_id, b.booking_reference, b.user_id, b.schedule_id,
		b.passenger_name, b.passenger_age, b.passenger_gender,
		b.seat_numbers, b.seat_count, b.total_fare, b.booking_status, b.booking_date,
		r.route_name, r.origin_city, r.destination_city, s.bus_number,
		DATE_FORMAT(s.travel_date, '%Y-%m-%d'),
		TIME_FORMAT(s.departure_time, '%H:%i'), TIME_FORMAT(s.arrival_time, '%H:%i')
	FROM bookings b
	JOIN bus_schedules s ON s.schedule_id = b.schedule_id
	JOIN bus_routes r ON r.route_id = s.route_id`

func scanBooking(row rowScanner) (models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.Reference, &b.UserID, &b.ScheduleID,
		&b.PassengerName, &b.PassengerAge, &b.PassengerGender,
		&b.SeatNumbers, &b.SeatCount, &b.TotalFare, &b.Status, &b.BookingDate,
		&b.RouteName, &b.OriginCity, &b.DestinationCity, &b.BusNumber,
		&b.TravelDate, &b.DepartureTime, &b.ArrivalTime,
	)
	return b, err
}

// Reserve is the only path that decrements inventory. Inside one
// transaction it locks the schedule row, checks the remaining seats,
// inserts the booking and decrements available_seats. Any failure rolls
// the whole thing back.
//
// When req.QuotedTotal is set that amount is stored verbatim; otherwise the
// total is the locked row's fare times the seat count.
func (r BookingRepository) Reserve(ctx context.Context, req models.ReserveRequest) (models.Reservation, error) {
	if req.Reference == "" {
		return models.Reservation{}, domain.ValidationError{Field: "booking_reference", Msg: "is required"}
	}
	if req.SeatCount <= 0 {
		return models.Reservation{}, domain.ValidationError{Field: "seat_count", Msg: "must be positive"}
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Reservation{}, classify("begin booking", "booking", req.Reference, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		available int
		fare      float64
	)
	err = tx.QueryRowContext(ctx, `
		SELECT available_seats, fare FROM bus_schedules WHERE schedule_id = ? FOR UPDATE
	`, req.ScheduleID).Scan(&available, &fare)
	if err != nil {
		return models.Reservation{}, classify("lock schedule", "schedule", fmt.Sprint(req.ScheduleID), err)
	}
	if available < req.SeatCount {
		return models.Reservation{}, domain.InsufficientInventoryError{
			ScheduleID: req.ScheduleID,
			Requested:  req.SeatCount,
			Available:  available,
		}
	}

	total := models.QuoteTotal(fare, req.SeatCount)
	if req.QuotedTotal != nil {
		total = *req.QuotedTotal
	}
	bookedAt := req.BookingDate
	if bookedAt.IsZero() {
		bookedAt = time.Now()
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (
			user_id, schedule_id, booking_reference, passenger_name, passenger_age,
			passenger_gender, seat_numbers, seat_count, total_fare, booking_status, booking_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, req.UserID, req.ScheduleID, req.Reference, req.PassengerName, req.PassengerAge,
		req.PassengerGender, models.SeatLabels(req.SeatCount), req.SeatCount, total,
		string(domain.StatusConfirmed), bookedAt)
	if err != nil {
		return models.Reservation{}, classify("insert booking", "booking", req.Reference, err)
	}
	bookingID, err := res.LastInsertId()
	if err != nil {
		return models.Reservation{}, classify("insert booking", "booking", req.Reference, err)
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE bus_schedules
		SET available_seats = available_seats - ?
		WHERE schedule_id = ? AND available_seats >= ?
	`, req.SeatCount, req.ScheduleID, req.SeatCount)
	if err != nil {
		return models.Reservation{}, classify("decrement seats", "schedule", fmt.Sprint(req.ScheduleID), err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.Reservation{}, classify("decrement seats", "schedule", fmt.Sprint(req.ScheduleID), err)
	} else if n != 1 {
		return models.Reservation{}, domain.InsufficientInventoryError{
			ScheduleID: req.ScheduleID,
			Requested:  req.SeatCount,
			Available:  available,
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Reservation{}, classify("commit booking", "booking", req.Reference, err)
	}
	committed = true

	return models.Reservation{
		BookingID:  bookingID,
		Reference:  req.Reference,
		ScheduleID: req.ScheduleID,
		SeatCount:  req.SeatCount,
		TotalFare:  total,
	}, nil
}

// FindByReference loads one booking joined with its schedule.
func (r BookingRepository) FindByReference(ctx context.Context, ref string) (models.Booking, error) {
	b, err := scanBooking(r.DB.QueryRowContext(ctx, bookingSelect+`
		WHERE b.booking_reference = ?
		LIMIT 1`, ref))
	if err != nil {
		return models.Booking{}, classify("find booking", "booking", ref, err)
	}
	return b, nil
}

// ListByUser returns the user's confirmed bookings, newest first.
func (r BookingRepository) ListByUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	return r.list(ctx, "list bookings", bookingSelect+`
		WHERE b.user_id = ?
		ORDER BY b.booking_date DESC`, userID)
}

// Recent returns the latest bookings across all users.
func (r BookingRepository) Recent(ctx context.Context, limit int) ([]models.Booking, error) {
	if limit <= 0 {
		limit = 5
	}
	return r.list(ctx, "recent bookings", bookingSelect+`
		ORDER BY b.booking_date DESC
		LIMIT ?`, limit)
}

func (r BookingRepository) list(ctx context.Context, op, query string, args ...any) ([]models.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, "booking", "", err)
	}
	defer rows.Close()

	out := make([]models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, classify(op, "booking", "", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, "booking", "", err)
	}
	return out, nil
}
