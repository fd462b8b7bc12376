package models

import "time"

// SyncResult aggregates one reconciliation run. It is never persisted.
type SyncResult struct {
	Success        bool      `json:"success"`
	UsersSynced    int       `json:"users_synced"`
	BookingsSynced int       `json:"bookings_synced"`
	Errors         []string  `json:"errors"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}

// NewSyncResult starts an empty, successful result.
func NewSyncResult(now time.Time) SyncResult {
	return SyncResult{Success: true, Errors: []string{}, StartedAt: now}
}

// AddError appends a per-record error and flips Success.
func (r *SyncResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Success = false
}

// ConnectionStatus is what the presentation layer shows on every page.
type ConnectionStatus struct {
	Online           bool      `json:"online"`
	PendingSyncCount int       `json:"pending_sync_count"`
	CheckedAt        time.Time `json:"checked_at"`
}

// AdminStats is the admin dashboard aggregate.
type AdminStats struct {
	TotalBookings   int       `json:"total_bookings"`
	TotalUsers      int       `json:"total_users"`
	TodayBookings   int       `json:"today_bookings"`
	Revenue         float64   `json:"revenue"`
	ActiveSchedules int       `json:"active_schedules"`
	RecentBookings  []Booking `json:"recent_bookings"`
	PendingSync     int       `json:"pending_sync"`
}
