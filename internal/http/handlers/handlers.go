package handlers

import (
	"busbooking/internal/services"
)

// Handlers holds the services the routes call. Per-request copies carry
// the request id.
type Handlers struct {
	Auth       services.AuthService
	Bookings   services.BookingService
	Schedules  services.ScheduleService
	Docs       services.DocsService
	Stats      services.StatsService
	Connection services.ConnectionService
	Reconcile  *services.ReconcileService
}
