// Package connectivity decides, per request, whether the authority is
// reachable. A probe never fails: every error reads as offline.
package connectivity

import (
	"context"
	"database/sql"
	"sync/atomic"
	"time"

	"busbooking/internal/metrics"
	"busbooking/internal/utils"
)

// DefaultTimeout bounds a single probe.
const DefaultTimeout = 2 * time.Second

// Pinger is anything that can prove a round trip to the authority.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// dedicatedConn pings on a connection checked out just for the probe, so a
// healthy idle connection in the pool cannot mask a dead server.
type dedicatedConn struct {
	db *sql.DB
}

func (d dedicatedConn) PingContext(ctx context.Context) error {
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return conn.PingContext(ctx)
}

// Probe checks reachability of the authority on a fresh round trip.
type Probe struct {
	DB      Pinger
	Timeout time.Duration
}

// NewProbe builds a probe over db. A nil db always reads offline.
func NewProbe(db *sql.DB, timeout time.Duration) Probe {
	p := Probe{Timeout: timeout}
	if db != nil {
		p.DB = dedicatedConn{db: db}
	}
	return p
}

// Check returns true only when a ping completed within the timeout.
func (p Probe) Check(ctx context.Context) bool {
	if p.DB == nil {
		return false
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return p.DB.PingContext(ctx) == nil
}

// Monitor wraps a Probe and remembers the last result so state changes can
// be logged and exported. The remembered value is never used to route a
// request; callers always probe.
type Monitor struct {
	probe Probe
	last  atomic.Int32 // 0 unknown, 1 online, 2 offline
}

func NewMonitor(p Probe) *Monitor {
	return &Monitor{probe: p}
}

// ProbeAndRemember runs a fresh check and records the result.
func (m *Monitor) ProbeAndRemember(ctx context.Context) bool {
	online := m.probe.Check(ctx)

	state := int32(2)
	if online {
		state = 1
	}
	prev := m.last.Swap(state)
	metrics.SetAuthorityUp(online)
	if prev != state {
		metrics.RecordTransition(online)
		logger := utils.Logger("connectivity")
		if online {
			logger.Info().Msg("authority reachable")
		} else {
			logger.Warn().Msg("authority unreachable, serving from offline log")
		}
	}
	return online
}

// Last reports the most recent probe result without probing.
func (m *Monitor) Last() (online, known bool) {
	switch m.last.Load() {
	case 1:
		return true, true
	case 2:
		return false, true
	}
	return false, false
}
