package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/metrics"
	"busbooking/internal/offline"
	"busbooking/internal/utils"

	"github.com/google/uuid"
)

// ReconcileService drains the offline log into the authority.
//
// A run is START -> SYNC_USERS -> SYNC_BOOKINGS -> DONE. Users are fully
// processed first because booking sync resolves usernames through the
// authority. Per-record failures are collected into the result and the
// record stays in the log; only losing the authority ends a run early.
type ReconcileService struct {
	Authority SyncAuthority
	Store     *offline.Store
	Now       func() time.Time

	// OnComplete runs after a run that reached the authority, e.g. to
	// refresh the schedule snapshot.
	OnComplete func(ctx context.Context, res models.SyncResult)

	mu sync.Mutex
}

func NewReconcileService(auth SyncAuthority, store *offline.Store) *ReconcileService {
	return &ReconcileService{Authority: auth, Store: store}
}

func (s *ReconcileService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type requestIDKey struct{}

// WithRequestID tags ctx so the run started with it logs under id. Runs
// without one get a fresh id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	if id == "" {
		id = uuid.NewString()
	}
	return id
}

// errAbort stops the remaining work of a run.
type errAbort struct{ err error }

func (e errAbort) Error() string { return e.err.Error() }
func (e errAbort) Unwrap() error { return e.err }

// Run executes one reconciliation pass. Concurrent callers are serialized.
// The returned error is non-nil only when the run was cut short; the result
// is meaningful either way.
func (s *ReconcileService) Run(ctx context.Context) (models.SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rid := requestIDFrom(ctx)
	logger := utils.Logger("sync").With().Str(utils.FieldRequestID, rid).Logger()
	result := models.NewSyncResult(s.now())

	if err := s.Authority.Ping(ctx); err != nil {
		result.AddError("authority unavailable: nothing to reconcile against")
		s.finish(ctx, &result, "aborted")
		logger.Warn().Err(err).Msg("sync aborted, authority unreachable")
		if !domain.IsUnavailable(err) {
			err = domain.UnavailableError{Op: "sync", Err: err}
		}
		return result, err
	}

	utils.LogEvent(rid, "sync", "start", "reconciliation started")

	err := s.syncUsers(ctx, &result)
	if err == nil {
		err = s.syncBookings(ctx, &result)
	}
	if err != nil {
		var abort errAbort
		if errors.As(err, &abort) {
			err = abort.err
		}
		result.AddError(fmt.Sprintf("sync aborted: %v", err))
		s.finish(ctx, &result, "aborted")
		logger.Warn().Err(err).
			Int("users_synced", result.UsersSynced).
			Int("bookings_synced", result.BookingsSynced).
			Msg("sync aborted")
		return result, err
	}

	status := "success"
	if !result.Success {
		status = "partial"
	}
	s.finish(ctx, &result, status)
	logger.Info().
		Int("users_synced", result.UsersSynced).
		Int("bookings_synced", result.BookingsSynced).
		Int("errors", len(result.Errors)).
		Msg("sync finished")

	if s.OnComplete != nil {
		s.OnComplete(ctx, result)
	}
	return result, nil
}

func (s *ReconcileService) finish(ctx context.Context, result *models.SyncResult, status string) {
	result.FinishedAt = s.now()
	metrics.RecordSyncRun(status, result.FinishedAt.Sub(result.StartedAt))
	if n, err := s.Store.PendingCount(ctx); err == nil {
		metrics.SetPending(n)
	}
}

// stop converts an authority failure into a run abort. Any other error is
// a per-record problem.
func stop(err error) error {
	if domain.IsUnavailable(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errAbort{err: err}
	}
	return nil
}

func (s *ReconcileService) reportCorrupt(result *models.SyncResult, kind string, entries []offline.CorruptEntry) {
	logger := utils.Logger("sync")
	for _, c := range entries {
		cerr := domain.CorruptError{Kind: c.Kind, ID: c.ID, Err: c.Err}
		logger.Error().Err(cerr).Str(utils.FieldRecordID, c.ID).Msg("corrupt offline record left in place")
		metrics.RecordSyncOutcome(kind, "corrupt")
		result.AddError(cerr.Error())
	}
}

func (s *ReconcileService) syncUsers(ctx context.Context, result *models.SyncResult) error {
	logger := utils.Logger("sync")

	entries, corrupt, err := s.Store.Users.Enumerate(ctx)
	if err != nil {
		if abort := stop(err); abort != nil {
			return abort
		}
		result.AddError(fmt.Sprintf("read pending users: %v", err))
		return nil
	}
	s.reportCorrupt(result, "user", corrupt)

	for _, e := range entries {
		u := e.User

		exists, err := s.Authority.LookupUserByIdentity(ctx, u.Username, u.Email)
		if err != nil {
			if abort := stop(err); abort != nil {
				return abort
			}
			metrics.RecordSyncOutcome("user", "failed")
			result.AddError(fmt.Sprintf("user %s (%s): %v", u.Username, e.ID, err))
			continue
		}

		outcome := "synced"
		if exists {
			outcome = "duplicate"
		} else if _, err := s.Authority.InsertUser(ctx, u); err != nil {
			switch {
			case domain.IsDuplicate(err):
				// registered online between lookup and insert
				outcome = "duplicate"
			case stop(err) != nil:
				return stop(err)
			default:
				metrics.RecordSyncOutcome("user", "failed")
				result.AddError(fmt.Sprintf("user %s (%s): %v", u.Username, e.ID, err))
				continue
			}
		}

		if err := s.Store.Users.RemoveEntry(ctx, e); err != nil {
			// the account exists now; the next run converges on it as a duplicate
			logger.Warn().Err(err).Str(utils.FieldRecordID, e.ID).Msg("user synced but offline record not removed")
			result.AddError(fmt.Sprintf("user %s (%s): synced but not removed from offline log: %v", u.Username, e.ID, err))
		}
		metrics.RecordSyncOutcome("user", outcome)
		result.UsersSynced++
		logger.Debug().Str("username", u.Username).Str("outcome", outcome).Msg("user synced")
	}
	return nil
}

func (s *ReconcileService) syncBookings(ctx context.Context, result *models.SyncResult) error {
	logger := utils.Logger("sync")

	entries, corrupt, err := s.Store.Bookings.Enumerate(ctx)
	if err != nil {
		if abort := stop(err); abort != nil {
			return abort
		}
		result.AddError(fmt.Sprintf("read pending bookings: %v", err))
		return nil
	}
	s.reportCorrupt(result, "booking", corrupt)

	for _, e := range entries {
		b := e.Booking
		fail := func(msg string) {
			metrics.RecordSyncOutcome("booking", "failed")
			result.AddError(fmt.Sprintf("booking %s (%s): %s", b.Reference, e.ID, msg))
		}

		userID, err := s.Authority.UserID(ctx, b.Username)
		if err != nil {
			if abort := stop(err); abort != nil {
				return abort
			}
			if domain.IsNotFound(err) {
				fail(fmt.Sprintf("user %q not found", b.Username))
			} else {
				fail(err.Error())
			}
			continue
		}

		outcome := "synced"
		_, err = s.Authority.CommitOfflineBooking(ctx, userID, b)
		if domain.IsNotFound(err) || domain.IsInsufficientInventory(err) {
			// the seat check runs before the reference insert, so a replay of a
			// commit that took the last seats never reports Duplicate
			same, ferr := s.alreadyCommitted(ctx, userID, b)
			switch {
			case ferr == nil && same:
				err = nil
				outcome = "duplicate"
			case ferr != nil && !domain.IsNotFound(ferr):
				if abort := stop(ferr); abort != nil {
					return abort
				}
			}
		}
		switch {
		case err == nil:
		case domain.IsDuplicate(err):
			// an earlier run committed it and died before removing the record
			same, ferr := s.alreadyCommitted(ctx, userID, b)
			if ferr != nil {
				if abort := stop(ferr); abort != nil {
					return abort
				}
				fail(ferr.Error())
				continue
			}
			if !same {
				fail("reference already used by a different booking")
				continue
			}
			outcome = "duplicate"
		case domain.IsNotFound(err):
			fail(fmt.Sprintf("schedule %d not found for %s", b.ScheduleID, b.RouteDescription()))
			continue
		case domain.IsInsufficientInventory(err):
			fail(fmt.Sprintf("not enough seats: %v", err))
			continue
		case stop(err) != nil:
			return stop(err)
		default:
			fail(err.Error())
			continue
		}

		if err := s.Store.Bookings.RemoveEntry(ctx, e); err != nil {
			// committed; the reference check above keeps the next run from
			// decrementing again
			logger.Warn().Err(err).Str(utils.FieldReference, b.Reference).Msg("booking synced but offline record not removed")
			result.AddError(fmt.Sprintf("booking %s (%s): synced but not removed from offline log: %v", b.Reference, e.ID, err))
		}
		metrics.RecordSyncOutcome("booking", outcome)
		result.BookingsSynced++
		logger.Debug().Str(utils.FieldReference, b.Reference).Str("outcome", outcome).Msg("booking synced")
	}
	return nil
}

// alreadyCommitted reports whether the authority row holding b's reference
// is b itself.
func (s *ReconcileService) alreadyCommitted(ctx context.Context, userID int64, b models.PendingBooking) (bool, error) {
	existing, err := s.Authority.FindBookingByReference(ctx, b.Reference)
	if err != nil {
		return false, err
	}
	return existing.UserID == userID && existing.ScheduleID == b.ScheduleID && existing.SeatCount == b.SeatCount, nil
}
