package repositories

import (
	"context"
	"database/sql"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
)

// Authority is the MySQL system of record. It bundles the repositories and
// exposes the narrow surface reconciliation and the online paths need.
type Authority struct {
	DB        *sql.DB
	Users     UserRepository
	Schedules ScheduleRepository
	Bookings  BookingRepository
	Stats     StatsRepository
}

func NewAuthority(db *sql.DB) *Authority {
	return &Authority{
		DB:        db,
		Users:     UserRepository{DB: db},
		Schedules: ScheduleRepository{DB: db},
		Bookings:  BookingRepository{DB: db},
		Stats:     StatsRepository{DB: db},
	}
}

// Ping confirms the authority answers right now.
func (a *Authority) Ping(ctx context.Context) error {
	if a == nil || a.DB == nil {
		return domain.UnavailableError{Op: "ping"}
	}
	if err := a.DB.PingContext(ctx); err != nil {
		return domain.UnavailableError{Op: "ping", Err: err}
	}
	return nil
}

// LookupUser finds a user by username or email.
func (a *Authority) LookupUser(ctx context.Context, login string) (models.User, error) {
	u, _, err := a.Users.FindByLogin(ctx, login)
	return u, err
}

// LookupUserByIdentity reports whether username or email is already taken.
func (a *Authority) LookupUserByIdentity(ctx context.Context, username, email string) (bool, error) {
	return a.Users.Exists(ctx, username, email)
}

func (a *Authority) InsertUser(ctx context.Context, u models.PendingUser) (int64, error) {
	return a.Users.Insert(ctx, u)
}

func (a *Authority) UserID(ctx context.Context, username string) (int64, error) {
	return a.Users.IDByUsername(ctx, username)
}

func (a *Authority) Reserve(ctx context.Context, req models.ReserveRequest) (models.Reservation, error) {
	return a.Bookings.Reserve(ctx, req)
}

// CommitOfflineBooking reserves seats for a booking captured offline,
// keeping its client reference and quoted total.
func (a *Authority) CommitOfflineBooking(ctx context.Context, userID int64, b models.PendingBooking) (models.Reservation, error) {
	return a.Bookings.Reserve(ctx, b.ToReserveRequest(userID))
}

func (a *Authority) FindBookingByReference(ctx context.Context, ref string) (models.Booking, error) {
	return a.Bookings.FindByReference(ctx, ref)
}
