package connectivity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slowPinger struct{ delay time.Duration }

func (s slowPinger) PingContext(ctx context.Context) error {
	select {
	case <-time.After(s.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestCheckOnline(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	assert.True(t, NewProbe(db, time.Second).Check(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckPingError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.False(t, NewProbe(db, time.Second).Check(context.Background()))
}

func TestCheckNilDB(t *testing.T) {
	assert.False(t, NewProbe(nil, time.Second).Check(context.Background()))
	assert.False(t, Probe{}.Check(context.Background()))
}

func TestCheckTimeout(t *testing.T) {
	p := Probe{DB: slowPinger{delay: time.Second}, Timeout: 20 * time.Millisecond}

	start := time.Now()
	assert.False(t, p.Check(context.Background()))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestMonitorRemembersLastResult(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	m := NewMonitor(NewProbe(db, time.Second))
	_, known := m.Last()
	assert.False(t, known)

	mock.ExpectPing()
	assert.True(t, m.ProbeAndRemember(context.Background()))
	online, known := m.Last()
	assert.True(t, known)
	assert.True(t, online)

	// no cached answer: the next call hits the database again
	mock.ExpectPing().WillReturnError(errors.New("gone"))
	assert.False(t, m.ProbeAndRemember(context.Background()))
	online, _ = m.Last()
	assert.False(t, online)
	require.NoError(t, mock.ExpectationsWereMet())
}
