package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"

	"github.com/dgraph-io/badger/v4"
)

var snapshotKey = []byte("schedules/snapshot")

// ScheduleCache holds the last schedule snapshot taken from the authority.
// There is no built-in fallback data: an empty cache searches to nothing.
type ScheduleCache struct {
	db  *badger.DB
	now func() time.Time
}

// ReplaceSnapshot swaps the whole snapshot for schedules in one write.
func (c *ScheduleCache) ReplaceSnapshot(ctx context.Context, schedules []models.Schedule) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	if schedules == nil {
		schedules = []models.Schedule{}
	}
	raw, err := json.Marshal(models.ScheduleSnapshot{SavedAt: c.now().UTC(), Schedules: schedules})
	if err != nil {
		return domain.InternalError{Msg: "encode schedule snapshot", Err: err}
	}
	if err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey, raw)
	}); err != nil {
		return fmt.Errorf("replace schedule snapshot: %w", err)
	}
	return nil
}

// Snapshot returns the stored snapshot. ok is false when none was saved.
func (c *ScheduleCache) Snapshot(ctx context.Context) (snap models.ScheduleSnapshot, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return snap, false, fmt.Errorf("context cancelled: %w", err)
	}
	var raw []byte
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey)
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return snap, false, nil
	}
	if err != nil {
		return snap, false, fmt.Errorf("read schedule snapshot: %w", err)
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		return snap, false, domain.CorruptError{Kind: "schedules", ID: "snapshot", Err: err}
	}
	return snap, true, nil
}

// Query filters the snapshot with the offline search rule.
func (c *ScheduleCache) Query(ctx context.Context, q models.ScheduleQuery) ([]models.Schedule, error) {
	q.Normalize()
	snap, _, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Schedule, 0)
	for _, s := range snap.Schedules {
		if q.Match(s) {
			out = append(out, s)
		}
	}
	return out, nil
}

// Get returns one schedule from the snapshot; ok is false when absent.
func (c *ScheduleCache) Get(ctx context.Context, id int64) (models.Schedule, bool, error) {
	snap, _, err := c.Snapshot(ctx)
	if err != nil {
		return models.Schedule{}, false, err
	}
	for _, s := range snap.Schedules {
		if s.ID == id {
			return s, true, nil
		}
	}
	return models.Schedule{}, false, nil
}
