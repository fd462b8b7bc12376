package offline

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"

	"github.com/google/uuid"
)

// BookingEntry is one enumerated pending booking.
type BookingEntry struct {
	ID      string
	Booking models.PendingBooking
	Version uint64
}

// BookingLog stores bookings captured offline.
type BookingLog struct {
	log kvLog
	now func() time.Time
}

// NewReference issues an offline booking reference: OFF- plus eight
// uppercase hex characters.
func NewReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return models.OfflineReferencePrefix + strings.ToUpper(id[:8])
}

// Append persists b with a fresh id. Reference and created_at are filled
// in when the caller left them empty.
func (l *BookingLog) Append(ctx context.Context, b models.PendingBooking) (models.PendingBooking, error) {
	b.OfflineID = uuid.NewString()
	if b.Reference == "" {
		b.Reference = NewReference()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = l.now().UTC()
	}
	b.Status = string(domain.StatusPendingSync)
	b.Synced = false
	if err := b.Validate(); err != nil {
		return models.PendingBooking{}, err
	}

	raw, err := json.Marshal(b)
	if err != nil {
		return models.PendingBooking{}, domain.InternalError{Msg: "encode pending booking", Err: err}
	}
	if err := l.log.put(ctx, b.OfflineID, raw); err != nil {
		return models.PendingBooking{}, err
	}
	return b, nil
}

// Enumerate returns every pending booking oldest first. Records that fail to
// decode are returned separately and left in the log.
func (l *BookingLog) Enumerate(ctx context.Context) ([]BookingEntry, []CorruptEntry, error) {
	raws, err := l.log.list(ctx)
	if err != nil {
		return nil, nil, err
	}

	entries := make([]BookingEntry, 0, len(raws))
	var corrupt []CorruptEntry
	for _, r := range raws {
		var b models.PendingBooking
		if err := json.Unmarshal(r.value, &b); err != nil {
			corrupt = append(corrupt, CorruptEntry{Kind: l.log.kind, ID: r.id, Err: err})
			continue
		}
		b.OfflineID = r.id
		if err := b.Validate(); err != nil {
			corrupt = append(corrupt, CorruptEntry{Kind: l.log.kind, ID: r.id, Err: err})
			continue
		}
		entries = append(entries, BookingEntry{ID: r.id, Booking: b, Version: r.version})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Booking.CreatedAt.Before(entries[j].Booking.CreatedAt)
	})
	return entries, corrupt, nil
}

// ListForOwner renders username's pending bookings, newest first.
func (l *BookingLog) ListForOwner(ctx context.Context, username string) ([]models.Booking, error) {
	entries, _, err := l.Enumerate(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Booking, 0)
	for i := len(entries) - 1; i >= 0; i-- {
		b := entries[i].Booking
		if strings.EqualFold(b.Username, username) {
			out = append(out, b.View())
		}
	}
	return out, nil
}

// FindByReference looks up a pending booking by its OFF- reference.
func (l *BookingLog) FindByReference(ctx context.Context, ref string) (models.PendingBooking, bool, error) {
	entries, _, err := l.Enumerate(ctx)
	if err != nil {
		return models.PendingBooking{}, false, err
	}
	for _, e := range entries {
		if e.Booking.Reference == ref {
			return e.Booking, true, nil
		}
	}
	return models.PendingBooking{}, false, nil
}

// Remove deletes id unconditionally. Missing ids are fine.
func (l *BookingLog) Remove(ctx context.Context, id string) error {
	return l.log.remove(ctx, id)
}

// RemoveEntry deletes e only if it was not rewritten since Enumerate.
func (l *BookingLog) RemoveEntry(ctx context.Context, e BookingEntry) error {
	return l.log.removeIfVersion(ctx, e.ID, e.Version)
}

func (l *BookingLog) Count(ctx context.Context) (int, error) {
	return l.log.count(ctx)
}
