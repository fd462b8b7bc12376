package models

import (
	"strings"
	"time"
)

// Schedule is a bus_schedules row joined with its route.
type Schedule struct {
	ID              int64     `json:"schedule_id"`
	RouteID         int64     `json:"route_id"`
	RouteName       string    `json:"route_name"`
	OriginCity      string    `json:"origin_city"`
	DestinationCity string    `json:"destination_city"`
	BusNumber       string    `json:"bus_number"`
	TravelDate      string    `json:"travel_date"`
	DepartureTime   string    `json:"departure_time"`
	ArrivalTime     string    `json:"arrival_time"`
	TotalSeats      int       `json:"total_seats"`
	AvailableSeats  int       `json:"available_seats"`
	Fare            float64   `json:"fare"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// RouteDescription renders the schedule as a one-line route summary.
func (s Schedule) RouteDescription() string {
	return routeDescription(s.RouteName, s.OriginCity, s.DestinationCity, s.TravelDate, s.DepartureTime)
}

// ScheduleQuery filters schedules by origin/destination substring and date.
type ScheduleQuery struct {
	Origin      string `form:"origin" json:"origin"`
	Destination string `form:"destination" json:"destination"`
	TravelDate  string `form:"date" json:"travel_date"`
}

func (q *ScheduleQuery) Normalize() {
	q.Origin = strings.TrimSpace(q.Origin)
	q.Destination = strings.TrimSpace(q.Destination)
	q.TravelDate = strings.TrimSpace(q.TravelDate)
}

// Match applies the offline search rule: case-insensitive substring on
// origin and destination, exact travel date.
func (q ScheduleQuery) Match(s Schedule) bool {
	return strings.Contains(strings.ToLower(s.OriginCity), strings.ToLower(q.Origin)) &&
		strings.Contains(strings.ToLower(s.DestinationCity), strings.ToLower(q.Destination)) &&
		s.TravelDate == q.TravelDate
}

// ScheduleSnapshot is the immutable point-in-time copy used while offline.
type ScheduleSnapshot struct {
	SavedAt   time.Time  `json:"saved_at"`
	Schedules []Schedule `json:"schedules"`
}
