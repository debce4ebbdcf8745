package sql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/veldt"
	"github.com/syssam/veldt/dialect"
)

func newMockPool(t *testing.T, name string) (*Pool, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPool(name, OpenDB(dialect.Postgres, db)), mock
}

func TestPoolAvailability(t *testing.T) {
	p, mock := newMockPool(t, "main")
	assert.True(t, p.Available())
	assert.Equal(t, dialect.Postgres, p.Dialect())

	mock.ExpectPing()
	require.NoError(t, p.CheckAvailability(context.Background()))
	assert.True(t, p.Available())
	assert.Zero(t, p.MissedCount())

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	require.Error(t, p.CheckAvailability(context.Background()))
	assert.False(t, p.Available())
	assert.Equal(t, int64(1), p.MissedCount())

	mock.ExpectPing()
	require.NoError(t, p.CheckAvailability(context.Background()))
	assert.True(t, p.Available())
	assert.Zero(t, p.MissedCount())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistryGet(t *testing.T) {
	reg := NewRegistry()
	p, _ := newMockPool(t, "main")
	reg.Add(p)

	got, err := reg.Get(context.Background(), "main")
	require.NoError(t, err)
	assert.Same(t, p, got)

	_, err = reg.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, veldt.ErrPoolNotFound)
}

func TestRegistryUnavailableCooldown(t *testing.T) {
	reg := NewRegistry()
	p, mock := newMockPool(t, "main")
	reg.Add(p)
	p.StoreAvailability(false)

	// Inside the cooldown the stale pool is handed out without a ping
	// and the miss counter grows.
	got, err := reg.Get(context.Background(), "main")
	require.NoError(t, err)
	assert.Same(t, p, got)
	assert.False(t, got.Available())
	assert.Equal(t, int64(2), p.MissedCount())

	// Past the cooldown the pool is pinged once before being handed out.
	reg.SetCooldown(time.Nanosecond)
	time.Sleep(time.Millisecond)
	mock.ExpectPing()
	got, err = reg.Get(context.Background(), "main")
	require.NoError(t, err)
	assert.Same(t, p, got)
	assert.True(t, got.Available())
	assert.Zero(t, p.MissedCount())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistryGetFailedRecheck(t *testing.T) {
	reg := NewRegistry()
	reg.SetCooldown(time.Nanosecond)
	p, mock := newMockPool(t, "main")
	reg.Add(p)
	p.StoreAvailability(false)
	time.Sleep(time.Millisecond)

	mock.ExpectPing().WillReturnError(errors.New("still down"))
	got, err := reg.Get(context.Background(), "main")
	require.NoError(t, err)
	assert.Same(t, p, got)
	assert.False(t, got.Available())
	assert.Equal(t, int64(2), p.MissedCount())
}

func TestRegistryCheckAll(t *testing.T) {
	reg := NewRegistry()
	healthy, healthyMock := newMockPool(t, "reader")
	broken, brokenMock := newMockPool(t, "writer")
	reg.Add(healthy)
	reg.Add(broken)

	healthyMock.ExpectPing()
	brokenMock.ExpectPing().WillReturnError(errors.New("down"))

	err := reg.CheckAll(context.Background())
	require.Error(t, err)
	assert.True(t, healthy.Available())
	assert.False(t, broken.Available())
}

func TestRegistryClose(t *testing.T) {
	reg := NewRegistry()
	p, mock := newMockPool(t, "main")
	reg.Add(p)
	mock.ExpectClose()

	require.NoError(t, reg.Close())
	assert.Empty(t, reg.Pools())
}
