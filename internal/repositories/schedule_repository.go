package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"busbooking/internal/domain/models"
)

type ScheduleRepository struct {
	DB *sql.DB
}

const scheduleSelect = `
	SELECT s.schedule_id, s.route_id, r.route_name, r.origin_city, r.destination_city,
		s.bus_number, DATE_FORMAT(s.travel_date, '%Y-%m-%d'),
		TIME_FORMAT(s.departure_time, '%H:%i'), TIME_FORMAT(s.arrival_time, '%H:%i'),
		s.total_seats, s.available_seats, s.fare
	FROM bus_schedules s
	JOIN bus_routes r ON r.route_id = s.route_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (models.Schedule, error) {
	var s models.Schedule
	err := row.Scan(
		&s.ID, &s.RouteID, &s.RouteName, &s.OriginCity, &s.DestinationCity,
		&s.BusNumber, &s.TravelDate, &s.DepartureTime, &s.ArrivalTime,
		&s.TotalSeats, &s.AvailableSeats, &s.Fare,
	)
	return s, err
}

func (r ScheduleRepository) list(ctx context.Context, op, query string, args ...any) ([]models.Schedule, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, "schedule", "", err)
	}
	defer rows.Close()

	out := make([]models.Schedule, 0)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, classify(op, "schedule", "", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, "schedule", "", err)
	}
	return out, nil
}

// Search finds bookable schedules: origin and destination match by
// substring, travel date exactly, and at least one seat left.
func (r ScheduleRepository) Search(ctx context.Context, q models.ScheduleQuery) ([]models.Schedule, error) {
	return r.list(ctx, "search schedules", scheduleSelect+`
		WHERE r.origin_city LIKE ? AND r.destination_city LIKE ?
		  AND s.travel_date = ? AND s.available_seats > 0
		ORDER BY s.departure_time`,
		"%"+q.Origin+"%", "%"+q.Destination+"%", q.TravelDate)
}

// ListUpcoming returns every schedule from today on. It feeds the offline
// snapshot.
func (r ScheduleRepository) ListUpcoming(ctx context.Context) ([]models.Schedule, error) {
	return r.list(ctx, "list schedules", scheduleSelect+`
		WHERE s.travel_date >= CURDATE()
		ORDER BY s.travel_date, s.departure_time`)
}

func (r ScheduleRepository) GetByID(ctx context.Context, id int64) (models.Schedule, error) {
	s, err := scanSchedule(r.DB.QueryRowContext(ctx, scheduleSelect+`
		WHERE s.schedule_id = ?
		LIMIT 1`, id))
	if err != nil {
		return models.Schedule{}, classify("get schedule", "schedule", fmt.Sprint(id), err)
	}
	return s, nil
}

// CountActive counts schedules that have not departed yet.
func (r ScheduleRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM bus_schedules WHERE travel_date >= CURDATE()`).Scan(&n)
	if err != nil {
		return 0, classify("count schedules", "schedule", "", err)
	}
	return n, nil
}
