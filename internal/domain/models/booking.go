package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/utils"
)

// Reference prefixes keep client-generated references disjoint from the
// ones the authority generates.
const (
	OnlineReferencePrefix  = "BK-"
	OfflineReferencePrefix = "OFF-"

	MaxSeatsPerBooking = 10
)

// Booking is a confirmed row in the authority's bookings table, joined with
// its schedule for display. Offline bookings are rendered into the same
// shape with IsOffline set.
type Booking struct {
	ID              int64     `json:"booking_id,omitempty"`
	Reference       string    `json:"booking_reference"`
	UserID          int64     `json:"user_id,omitempty"`
	ScheduleID      int64     `json:"schedule_id"`
	PassengerName   string    `json:"passenger_name"`
	PassengerAge    int       `json:"passenger_age"`
	PassengerGender string    `json:"passenger_gender"`
	SeatNumbers     string    `json:"seat_numbers,omitempty"`
	SeatCount       int       `json:"seat_count"`
	TotalFare       float64   `json:"total_fare"`
	Status          string    `json:"booking_status"`
	BookingDate     time.Time `json:"booking_date"`
	RouteName       string    `json:"route_name"`
	OriginCity      string    `json:"origin_city"`
	DestinationCity string    `json:"destination_city"`
	BusNumber       string    `json:"bus_number,omitempty"`
	TravelDate      string    `json:"travel_date"`
	DepartureTime   string    `json:"departure_time"`
	ArrivalTime     string    `json:"arrival_time,omitempty"`
	IsOffline       bool      `json:"is_offline"`
}

// BookingRequest is what a passenger submits, online or offline.
type BookingRequest struct {
	ScheduleID      int64  `json:"schedule_id" validate:"required,gt=0"`
	PassengerName   string `json:"passenger_name" validate:"required,max=100"`
	PassengerAge    int    `json:"passenger_age" validate:"gte=0,lte=130"`
	PassengerGender string `json:"passenger_gender" validate:"omitempty,oneof=Male Female Other"`
	SeatCount       int    `json:"seat_count" validate:"required,gte=1,lte=10"`
}

func (r *BookingRequest) Normalize() {
	r.PassengerName = utils.NormalizeSpace(r.PassengerName)
	r.PassengerGender = strings.TrimSpace(r.PassengerGender)
	if r.PassengerGender == "" {
		r.PassengerGender = "Other"
	}
	if r.SeatCount == 0 {
		r.SeatCount = 1
	}
}

func (r BookingRequest) Validate() error {
	return check(r)
}

// Reservation is the authority's answer to a successful reserve.
type Reservation struct {
	BookingID  int64   `json:"booking_id"`
	Reference  string  `json:"booking_reference"`
	ScheduleID int64   `json:"schedule_id"`
	SeatCount  int     `json:"seat_count"`
	TotalFare  float64 `json:"total_fare"`
}

// ReserveRequest carries everything the authority needs to insert a
// booking row inside the locked transaction.
type ReserveRequest struct {
	UserID          int64
	ScheduleID      int64
	Reference       string
	PassengerName   string
	PassengerAge    int
	PassengerGender string
	SeatCount       int
	BookingDate     time.Time
	// QuotedTotal, when set, is inserted verbatim instead of fare × seats.
	QuotedTotal *float64
}

// PendingBooking is a booking captured while offline. TotalFare is the fare
// quoted at capture time and is honored as-is at sync time. The route
// fields are denormalized because the schedule may be gone by then.
type PendingBooking struct {
	OfflineID       string    `json:"offline_id"`
	Reference       string    `json:"booking_reference" validate:"required,startswith=OFF-"`
	Username        string    `json:"username" validate:"required"`
	ScheduleID      int64     `json:"schedule_id" validate:"required,gt=0"`
	PassengerName   string    `json:"passenger_name" validate:"required,max=100"`
	PassengerAge    int       `json:"passenger_age" validate:"gte=0,lte=130"`
	PassengerGender string    `json:"passenger_gender" validate:"omitempty,oneof=Male Female Other"`
	SeatCount       int       `json:"seat_count" validate:"required,gte=1,lte=10"`
	UnitFare        float64   `json:"unit_fare" validate:"gte=0"`
	TotalFare       float64   `json:"total_fare" validate:"gte=0"`
	RouteName       string    `json:"route_name"`
	OriginCity      string    `json:"origin_city"`
	DestinationCity string    `json:"destination_city"`
	TravelDate      string    `json:"travel_date"`
	DepartureTime   string    `json:"departure_time"`
	BusNumber       string    `json:"bus_number,omitempty"`
	Status          string    `json:"booking_status"`
	Synced          bool      `json:"is_synced"`
	CreatedAt       time.Time `json:"booking_date"`
}

// QuoteTotal multiplies the unit fare by the seat count, rounded to cents.
func QuoteTotal(unitFare float64, seats int) float64 {
	return math.Round(unitFare*float64(seats)*100) / 100
}

func (b PendingBooking) Validate() error {
	if err := check(b); err != nil {
		return err
	}
	if b.TotalFare != QuoteTotal(b.UnitFare, b.SeatCount) {
		return domain.ValidationError{
			Field: "total_fare",
			Msg:   fmt.Sprintf("%.2f does not equal %.2f x %d", b.TotalFare, b.UnitFare, b.SeatCount),
		}
	}
	return nil
}

// RouteDescription is the captured route rendered for display and errors.
func (b PendingBooking) RouteDescription() string {
	return routeDescription(b.RouteName, b.OriginCity, b.DestinationCity, b.TravelDate, b.DepartureTime)
}

// View renders the pending record in the same shape as a confirmed booking.
func (b PendingBooking) View() Booking {
	return Booking{
		Reference:       b.Reference,
		ScheduleID:      b.ScheduleID,
		PassengerName:   b.PassengerName,
		PassengerAge:    b.PassengerAge,
		PassengerGender: b.PassengerGender,
		SeatCount:       b.SeatCount,
		TotalFare:       b.TotalFare,
		Status:          string(domain.StatusPendingSync),
		BookingDate:     b.CreatedAt,
		RouteName:       b.RouteName,
		OriginCity:      b.OriginCity,
		DestinationCity: b.DestinationCity,
		BusNumber:       b.BusNumber,
		TravelDate:      b.TravelDate,
		DepartureTime:   b.DepartureTime,
		IsOffline:       true,
	}
}

// ToReserveRequest turns the pending record into an authority insert that
// keeps the quoted fare and the client reference.
func (b PendingBooking) ToReserveRequest(userID int64) ReserveRequest {
	total := b.TotalFare
	return ReserveRequest{
		UserID:          userID,
		ScheduleID:      b.ScheduleID,
		Reference:       b.Reference,
		PassengerName:   b.PassengerName,
		PassengerAge:    b.PassengerAge,
		PassengerGender: b.PassengerGender,
		SeatCount:       b.SeatCount,
		BookingDate:     b.CreatedAt,
		QuotedTotal:     &total,
	}
}

// SeatLabels renders "Seat-1, Seat-2, ..." for n seats.
func SeatLabels(n int) string {
	labels := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		labels = append(labels, fmt.Sprintf("Seat-%d", i))
	}
	return strings.Join(labels, ", ")
}

func routeDescription(name, origin, destination, date, departure string) string {
	desc := strings.TrimSpace(origin + " -> " + destination)
	if name != "" {
		desc = name + " (" + desc + ")"
	}
	if date != "" {
		desc += " on " + date
	}
	if departure != "" {
		desc += " " + departure
	}
	return desc
}
