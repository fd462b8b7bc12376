package offline

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// ErrChanged is returned by a compare-and-delete when the record was
// rewritten after it was enumerated. The record is left in place.
var ErrChanged = errors.New("offline record changed since it was read")

// CorruptEntry is a stored record that could not be decoded. It stays in
// the log for manual inspection.
type CorruptEntry struct {
	Kind string
	ID   string
	Err  error
}

type rawEntry struct {
	id      string
	value   []byte
	version uint64
}

// kvLog is the untyped append/enumerate/remove log for one record kind.
type kvLog struct {
	db   *badger.DB
	kind string
}

func (l kvLog) prefix() []byte {
	return []byte(l.kind + "/")
}

func (l kvLog) key(id string) []byte {
	return []byte(l.kind + "/" + id)
}

func (l kvLog) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	return l.db.Update(fn)
}

func (l kvLog) view(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	return l.db.View(fn)
}

// put stores a brand-new record. The id must not exist yet.
func (l kvLog) put(ctx context.Context, id string, value []byte) error {
	key := l.key(id)
	err := l.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return fmt.Errorf("%s id %s already issued", l.kind, id)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, value)
	})
	if err != nil {
		return fmt.Errorf("append %s: %w", l.kind, err)
	}
	return nil
}

// list returns a consistent snapshot of every record of this kind.
func (l kvLog) list(ctx context.Context) ([]rawEntry, error) {
	var out []rawEntry
	prefix := l.prefix()
	err := l.view(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out = append(out, rawEntry{
				id:      string(item.Key()[len(prefix):]),
				value:   val,
				version: item.Version(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", l.kind, err)
	}
	return out, nil
}

func (l kvLog) count(ctx context.Context) (int, error) {
	n := 0
	prefix := l.prefix()
	err := l.view(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", l.kind, err)
	}
	return n, nil
}

// remove deletes id. Removing a missing id is not an error.
func (l kvLog) remove(ctx context.Context, id string) error {
	err := l.update(ctx, func(txn *badger.Txn) error {
		return txn.Delete(l.key(id))
	})
	if err != nil {
		return fmt.Errorf("remove %s %s: %w", l.kind, id, err)
	}
	return nil
}

// removeIfVersion deletes id only if it is still the exact version that was
// enumerated. A record that is already gone counts as removed.
func (l kvLog) removeIfVersion(ctx context.Context, id string, version uint64) error {
	key := l.key(id)
	err := l.update(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if item.Version() != version {
			return ErrChanged
		}
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("remove %s %s: %w", l.kind, id, err)
	}
	return nil
}
