package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/metrics"
	"busbooking/internal/offline"
	"busbooking/internal/repositories"
	"busbooking/internal/utils"

	"github.com/google/uuid"
)

type BookingService struct {
	Authority *repositories.Authority
	Store     *offline.Store
	RequestID string
	Now       func() time.Time
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// NewOnlineReference issues an authority booking reference.
func NewOnlineReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return models.OnlineReferencePrefix + strings.ToUpper(id[:10])
}

// Create books seats. Online it goes straight through the locked reserve;
// offline it is appended to the log after a local check against the
// snapshot, which is advisory only.
func (s BookingService) Create(ctx context.Context, mode domain.Mode, caller domain.RequestContext, req models.BookingRequest) (models.Booking, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return models.Booking{}, err
	}
	if caller.Username == "" {
		return models.Booking{}, domain.ValidationError{Field: "username", Msg: "login required"}
	}
	if mode == domain.ModeOffline {
		return s.createOffline(ctx, caller, req)
	}

	userID, err := s.resolveUserID(ctx, caller)
	if err != nil {
		return models.Booking{}, err
	}
	res, err := s.Authority.Reserve(ctx, models.ReserveRequest{
		UserID:          userID,
		ScheduleID:      req.ScheduleID,
		Reference:       NewOnlineReference(),
		PassengerName:   req.PassengerName,
		PassengerAge:    req.PassengerAge,
		PassengerGender: req.PassengerGender,
		SeatCount:       req.SeatCount,
		BookingDate:     s.now(),
	})
	if err != nil {
		return models.Booking{}, err
	}
	metrics.RecordBooking(string(domain.ModeOnline))
	utils.LogEvent(s.RequestID, "bookings", "create", fmt.Sprintf("reference=%s seats=%d", res.Reference, res.SeatCount))
	return s.Authority.FindBookingByReference(ctx, res.Reference)
}

func (s BookingService) createOffline(ctx context.Context, caller domain.RequestContext, req models.BookingRequest) (models.Booking, error) {
	sched, ok, err := s.Store.Schedules.Get(ctx, req.ScheduleID)
	if err != nil {
		return models.Booking{}, err
	}
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "schedule", Key: fmt.Sprint(req.ScheduleID)}
	}
	if sched.AvailableSeats < req.SeatCount {
		return models.Booking{}, domain.InsufficientInventoryError{
			ScheduleID: sched.ID,
			Requested:  req.SeatCount,
			Available:  sched.AvailableSeats,
		}
	}

	pending, err := s.Store.Bookings.Append(ctx, models.PendingBooking{
		Username:        caller.Username,
		ScheduleID:      sched.ID,
		PassengerName:   req.PassengerName,
		PassengerAge:    req.PassengerAge,
		PassengerGender: req.PassengerGender,
		SeatCount:       req.SeatCount,
		UnitFare:        sched.Fare,
		TotalFare:       models.QuoteTotal(sched.Fare, req.SeatCount),
		RouteName:       sched.RouteName,
		OriginCity:      sched.OriginCity,
		DestinationCity: sched.DestinationCity,
		TravelDate:      sched.TravelDate,
		DepartureTime:   sched.DepartureTime,
		BusNumber:       sched.BusNumber,
		CreatedAt:       s.now(),
	})
	if err != nil {
		return models.Booking{}, err
	}
	metrics.RecordBooking(string(domain.ModeOffline))
	metrics.RecordCapture("booking")
	if n, err := s.Store.PendingCount(ctx); err == nil {
		metrics.SetPending(n)
	}
	utils.LogEvent(s.RequestID, "bookings", "create_offline", "reference="+pending.Reference)
	return pending.View(), nil
}

// List returns the caller's bookings: confirmed ones from the authority
// when online, plus anything still pending in the offline log.
func (s BookingService) List(ctx context.Context, mode domain.Mode, caller domain.RequestContext) ([]models.Booking, error) {
	pending, err := s.Store.Bookings.ListForOwner(ctx, caller.Username)
	if err != nil {
		return nil, err
	}
	if mode == domain.ModeOffline {
		return pending, nil
	}

	userID, err := s.resolveUserID(ctx, caller)
	if domain.IsNotFound(err) {
		return pending, nil
	}
	if err != nil {
		return nil, err
	}
	confirmed, err := s.Authority.Bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := append(pending, confirmed...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].BookingDate.After(out[j].BookingDate) })
	return out, nil
}

// Get loads one booking by reference. Non-admins only see their own.
func (s BookingService) Get(ctx context.Context, mode domain.Mode, caller domain.RequestContext, ref string) (models.Booking, error) {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	if strings.HasPrefix(ref, models.OfflineReferencePrefix) {
		p, found, err := s.Store.Bookings.FindByReference(ctx, ref)
		if err != nil {
			return models.Booking{}, err
		}
		if found {
			if !caller.IsAdmin() && !strings.EqualFold(p.Username, caller.Username) {
				return models.Booking{}, domain.NotFoundError{Resource: "booking", Key: ref}
			}
			return p.View(), nil
		}
	}
	if mode == domain.ModeOffline {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", Key: ref}
	}

	b, err := s.Authority.FindBookingByReference(ctx, ref)
	if err != nil {
		return models.Booking{}, err
	}
	if !caller.IsAdmin() {
		userID, err := s.resolveUserID(ctx, caller)
		if err != nil || userID != b.UserID {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", Key: ref}
		}
	}
	return b, nil
}

// resolveUserID prefers the id in the token; accounts created offline get
// theirs once reconciliation has inserted them.
func (s BookingService) resolveUserID(ctx context.Context, caller domain.RequestContext) (int64, error) {
	if caller.UserID > 0 {
		return int64(caller.UserID), nil
	}
	return s.Authority.UserID(ctx, caller.Username)
}
