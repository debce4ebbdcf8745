package sql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/veldt/dialect"
)

func queryRows(t *testing.T, mock sqlmock.Sqlmock, drv *Driver, stmt string) *Rows {
	t.Helper()
	rows := &Rows{}
	require.NoError(t, drv.Query(context.Background(), stmt, []any{}, rows))
	return rows
}

func TestScanMaps(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.Postgres, db)

	mock.ExpectQuery("SELECT (.+) FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(int64(1), "Alice", "alice@example.com").
			AddRow(int64(2), "Bob", nil))

	maps, err := ScanMaps(queryRows(t, mock, drv, "SELECT id, name, email FROM users"))
	require.NoError(t, err)
	require.Len(t, maps, 2)

	id, _ := maps[0].GetI64("id")
	assert.Equal(t, int64(1), id)
	name, _ := maps[0].GetStr("name")
	assert.Equal(t, "Alice", name)
	assert.Equal(t, []string{"id", "name", "email"}, maps[0].Keys())

	// NULL cells are omitted, not stored as nil.
	assert.False(t, maps[1].Contains("email"))
	assert.Equal(t, []string{"id", "name"}, maps[1].Keys())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScanMapsTypedColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.Postgres, db)

	rows := sqlmock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("settings").OfType("JSONB", nil),
		sqlmock.NewColumn("active").OfType("BOOLEAN", nil),
		sqlmock.NewColumn("score").OfType("NUMERIC", nil),
	).AddRow([]byte(`{"theme": "dark", "tabs": 4}`), "true", "3.14")
	mock.ExpectQuery("SELECT (.+) FROM users").WillReturnRows(rows)

	m, err := ScanMap(queryRows(t, mock, drv, "SELECT settings, active, score FROM users"))
	require.NoError(t, err)
	require.NotNil(t, m)

	settings, ok := m.GetMap("settings")
	require.True(t, ok)
	theme, _ := settings.GetStr("theme")
	assert.Equal(t, "dark", theme)
	active, _ := m.GetBool("active")
	assert.True(t, active)
	score, _ := m.GetF64("score")
	assert.Equal(t, 3.14, score)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScanMapsTemporalColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.MySQL, db)

	ts := time.Date(2023, 11, 8, 9, 30, 15, 0, time.UTC)
	rows := sqlmock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("created_at").OfType("TIMESTAMP", nil),
		sqlmock.NewColumn("birthdate").OfType("DATE", nil),
	).AddRow(ts, ts)
	mock.ExpectQuery("SELECT (.+) FROM users").WillReturnRows(rows)

	m, err := ScanMap(queryRows(t, mock, drv, "SELECT created_at, birthdate FROM users"))
	require.NoError(t, err)
	require.NotNil(t, m)

	created, _ := m.GetStr("created_at")
	assert.Contains(t, created, "2023-11-08 09:30:15")
	birthdate, _ := m.GetStr("birthdate")
	assert.Equal(t, "2023-11-08", birthdate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScanMapEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.SQLite, db)

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	m, err := ScanMap(queryRows(t, mock, drv, "SELECT id FROM users WHERE FALSE"))
	require.NoError(t, err)
	assert.Nil(t, m)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScanValueAndInt64(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.Postgres, db)

	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))
	n, err := ScanInt64(queryRows(t, mock, drv, "SELECT count(*) FROM users"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	mock.ExpectQuery("SELECT count").WillReturnRows(sqlmock.NewRows([]string{"count"}))
	n, err = ScanInt64(queryRows(t, mock, drv, "SELECT count(*) FROM users"))
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
