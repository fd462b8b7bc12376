package services

import (
	"context"

	"busbooking/internal/domain/models"
)

// SyncAuthority is the part of the system of record that reconciliation
// talks to. *repositories.Authority implements it.
type SyncAuthority interface {
	Ping(ctx context.Context) error
	LookupUserByIdentity(ctx context.Context, username, email string) (bool, error)
	InsertUser(ctx context.Context, u models.PendingUser) (int64, error)
	UserID(ctx context.Context, username string) (int64, error)
	CommitOfflineBooking(ctx context.Context, userID int64, b models.PendingBooking) (models.Reservation, error)
	FindBookingByReference(ctx context.Context, ref string) (models.Booking, error)
}
