// Package offline is the durable log of writes captured while the authority
// is unreachable, plus the schedule snapshot used for offline search.
//
// Everything lives in one embedded BadgerDB under key prefixes:
//
//	users/<uuid>        pending registrations
//	bookings/<uuid>     pending bookings
//	schedules/snapshot  last schedule snapshot
//
// Each record is a flat JSON document written in its own transaction, so a
// crash never exposes a partial record to Enumerate.
package offline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"busbooking/internal/utils"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// Config holds configuration for the offline store.
type Config struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM. Tests only.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// GCInterval is how often value log GC runs. 0 disables it.
	GCInterval time.Duration

	// GCDiscardRatio is the minimum garbage ratio before GC rewrites a file.
	GCDiscardRatio float64

	// Now stamps created_at and snapshot times. Defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns durable settings for the given directory.
func DefaultConfig(path string) Config {
	return Config{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig returns settings for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts zerolog to BadgerDB's Logger interface.
type badgerLogger struct {
	logger zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Trace().Msgf(format, args...)
}

// Store owns the BadgerDB handle and exposes the per-type logs.
type Store struct {
	db     *badger.DB
	stopGC chan struct{}
	doneGC chan struct{}

	Users     *UserLog
	Bookings  *BookingLog
	Schedules *ScheduleCache
}

// Open opens (creating if needed) the offline store. Caller must Close it.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent offline store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create offline directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.
		WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(badgerLogger{logger: utils.Logger("offline")})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open offline store: %w", err)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	s := &Store{
		db:        db,
		Users:     &UserLog{log: kvLog{db: db, kind: "users"}, now: now},
		Bookings:  &BookingLog{log: kvLog{db: db, kind: "bookings"}, now: now},
		Schedules: &ScheduleCache{db: db, now: now},
	}

	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.stopGC = make(chan struct{})
		s.doneGC = make(chan struct{})
		go s.runGC(cfg.GCInterval, cfg.GCDiscardRatio)
	}
	return s, nil
}

// Close stops GC and closes the database.
func (s *Store) Close() error {
	if s.stopGC != nil {
		close(s.stopGC)
		<-s.doneGC
		s.stopGC = nil
	}
	return s.db.Close()
}

// PendingCount is the number of records still waiting for sync.
func (s *Store) PendingCount(ctx context.Context) (int, error) {
	users, err := s.Users.log.count(ctx)
	if err != nil {
		return 0, err
	}
	bookings, err := s.Bookings.log.count(ctx)
	if err != nil {
		return 0, err
	}
	return users + bookings, nil
}

func (s *Store) runGC(interval time.Duration, ratio float64) {
	defer close(s.doneGC)

	logger := utils.Logger("offline")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopGC:
			return
		case <-ticker.C:
			// ErrNoRewrite means there was nothing worth collecting.
			if err := s.db.RunValueLogGC(ratio); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				logger.Warn().Err(err).Msg("value log gc failed")
			}
		}
	}
}
