package offline

import (
	"context"
	"encoding/json"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"

	"github.com/google/uuid"
)

// UserEntry is one enumerated pending registration.
type UserEntry struct {
	ID      string
	User    models.PendingUser
	Version uint64
}

// UserLog stores registrations captured offline.
type UserLog struct {
	log kvLog
	now func() time.Time
}

// Append assigns a fresh id, stamps created_at and persists u atomically.
func (l *UserLog) Append(ctx context.Context, u models.PendingUser) (models.PendingUser, error) {
	u.Normalize()
	if err := u.Validate(); err != nil {
		return models.PendingUser{}, err
	}
	u.OfflineID = uuid.NewString()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = l.now().UTC()
	}

	raw, err := json.Marshal(u)
	if err != nil {
		return models.PendingUser{}, domain.InternalError{Msg: "encode pending user", Err: err}
	}
	if err := l.log.put(ctx, u.OfflineID, raw); err != nil {
		return models.PendingUser{}, err
	}
	return u, nil
}

// Enumerate returns every pending registration. Records that fail to decode
// are returned separately and left in the log.
func (l *UserLog) Enumerate(ctx context.Context) ([]UserEntry, []CorruptEntry, error) {
	raws, err := l.log.list(ctx)
	if err != nil {
		return nil, nil, err
	}

	entries := make([]UserEntry, 0, len(raws))
	var corrupt []CorruptEntry
	for _, r := range raws {
		var u models.PendingUser
		if err := json.Unmarshal(r.value, &u); err != nil {
			corrupt = append(corrupt, CorruptEntry{Kind: l.log.kind, ID: r.id, Err: err})
			continue
		}
		u.OfflineID = r.id
		if err := u.Validate(); err != nil {
			corrupt = append(corrupt, CorruptEntry{Kind: l.log.kind, ID: r.id, Err: err})
			continue
		}
		entries = append(entries, UserEntry{ID: r.id, User: u, Version: r.version})
	}
	return entries, corrupt, nil
}

// FindByIdentity returns the pending registration matching username or
// email, used for offline login and duplicate checks.
func (l *UserLog) FindByIdentity(ctx context.Context, username, email string) (models.PendingUser, bool, error) {
	entries, _, err := l.Enumerate(ctx)
	if err != nil {
		return models.PendingUser{}, false, err
	}
	for _, e := range entries {
		if e.User.Matches(username, email) {
			return e.User, true, nil
		}
	}
	return models.PendingUser{}, false, nil
}

// Remove deletes id unconditionally. Missing ids are fine.
func (l *UserLog) Remove(ctx context.Context, id string) error {
	return l.log.remove(ctx, id)
}

// RemoveEntry deletes e only if it was not rewritten since Enumerate.
func (l *UserLog) RemoveEntry(ctx context.Context, e UserEntry) error {
	return l.log.removeIfVersion(ctx, e.ID, e.Version)
}

func (l *UserLog) Count(ctx context.Context) (int, error) {
	return l.log.count(ctx)
}
