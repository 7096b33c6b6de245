package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakePool struct {
	stats sql.DBStats
}

func (f fakePool) Stats() sql.DBStats { return f.stats }

type fakePinger struct {
	err error
}

func (f fakePinger) PingContext(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("ping without deadline")
	}
	return f.err
}

func TestConnectionPoolMonitor(t *testing.T) {
	t.Run("caches metrics and warns when hot", func(t *testing.T) {
		rec := &recordingLogger{}
		m := NewConnectionPoolMonitor(fakePool{stats: sql.DBStats{MaxOpenConnections: 10, InUse: 9, Idle: 1, OpenConnections: 10}}, rec)
		m.Start(time.Hour)
		defer m.Stop()

		metrics := m.GetMetrics()
		assert.Equal(t, 9, metrics.InUse)
		assert.Equal(t, 10, metrics.OpenConnections)
		if assert.Len(t, rec.entries, 1) {
			assert.Equal(t, "warn", rec.entries[0].level)
		}
	})

	t.Run("quiet when the pool has room", func(t *testing.T) {
		rec := &recordingLogger{}
		m := NewConnectionPoolMonitor(fakePool{stats: sql.DBStats{MaxOpenConnections: 10, InUse: 2}}, rec)
		m.Start(time.Hour)
		m.Stop()
		m.Stop()

		assert.Empty(t, rec.entries)
	})

	t.Run("empty before the first sample", func(t *testing.T) {
		m := NewConnectionPoolMonitor(fakePool{}, &recordingLogger{})
		assert.Equal(t, ConnectionPoolMetrics{}, m.GetMetrics())
	})
}

func TestHealthChecker(t *testing.T) {
	assert.NoError(t, NewHealthChecker(fakePinger{}, &recordingLogger{}).Check(context.Background()))

	rec := &recordingLogger{}
	err := NewHealthChecker(fakePinger{err: errors.New("down")}, rec).Check(context.Background())
	assert.EqualError(t, err, "down")
	assert.Len(t, rec.entries, 1)
}
