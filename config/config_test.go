package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
cooldown: 30s
max-rows: 10000
timestamp-tolerance: 90s
pools:
  - name: main
    dialect: postgres
    dsn: postgres://localhost/app
    max-open-conns: 20
    max-idle-conns: 5
    conn-max-lifetime: 30m
  - name: replica
    dialect: sqlite
    dsn: file:app.db?mode=ro
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, c.Cooldown.Std())
	assert.Equal(t, 10000, c.MaxRows)
	assert.Equal(t, 90*time.Second, c.TimestampTolerance.Std())
	require.Len(t, c.Pools, 2)
	assert.Equal(t, "main", c.Pools[0].Name)
	assert.Equal(t, 20, c.Pools[0].MaxOpenConns)
	assert.Equal(t, 30*time.Minute, c.Pools[0].ConnMaxLifetime.Std())
	assert.Equal(t, "sqlite", c.Pools[1].Dialect)
}

func TestParseDurationSeconds(t *testing.T) {
	c, err := Parse([]byte("cooldown: 45\npools:\n  - {name: main, dialect: sqlite, dsn: 'file::memory:'}\n"))
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, c.Cooldown.Std())
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"no pools", "max-rows: 10\n"},
		{"missing name", "pools:\n  - {dialect: sqlite, dsn: x}\n"},
		{"missing dsn", "pools:\n  - {name: main, dialect: sqlite}\n"},
		{"unknown dialect", "pools:\n  - {name: main, dialect: oracle, dsn: x}\n"},
		{"duplicate name", "pools:\n  - {name: main, dialect: sqlite, dsn: x}\n  - {name: main, dialect: sqlite, dsn: y}\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			assert.Error(t, err)
		})
	}
}

func TestOpenRegistry(t *testing.T) {
	c, err := Parse([]byte("pools:\n  - {name: main, dialect: sqlite, dsn: 'file::memory:'}\n"))
	require.NoError(t, err)
	registry, err := c.OpenRegistry()
	require.NoError(t, err)
	defer registry.Close()
	pool, err := registry.Get(context.Background(), "main")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", pool.Dialect())

	// No stats flag means no instrumentation.
	_, ok := pool.Driver().Stats()
	assert.False(t, ok)
}

func TestOpenRegistryStats(t *testing.T) {
	c, err := Parse([]byte("pools:\n" +
		"  - {name: main, dialect: sqlite, dsn: 'file::memory:'," +
		" log-slow-queries: true, slow-query-threshold: 250ms}\n"))
	require.NoError(t, err)
	registry, err := c.OpenRegistry()
	require.NoError(t, err)
	defer registry.Close()
	pool, err := registry.Get(context.Background(), "main")
	require.NoError(t, err)

	drv := pool.Driver()
	require.NoError(t, drv.Exec(context.Background(), "CREATE TABLE tasks (id INTEGER)", []any{}, nil))
	snap, ok := drv.Stats()
	require.True(t, ok)
	assert.Equal(t, int64(1), snap.TotalExecs)
}

func TestWatchReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "veldt.yml")
	require.NoError(t, os.WriteFile(path, []byte("max-rows: 1\npools:\n  - {name: main, dialect: sqlite, dsn: x}\n"), 0o600))

	reloads := make(chan *Config, 4)
	w, err := Watch(path, func(c *Config) { reloads <- c })
	require.NoError(t, err)
	defer w.Close()

	first := <-reloads
	assert.Equal(t, 1, first.MaxRows)

	require.NoError(t, os.WriteFile(path, []byte("max-rows: 2\npools:\n  - {name: main, dialect: sqlite, dsn: x}\n"), 0o600))
	select {
	case next := <-reloads:
		assert.Equal(t, 2, next.MaxRows)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
}
