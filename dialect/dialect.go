// Package dialect provides database dialect abstraction for the engine.
//
// A dialect is identified by a constant string and owns an Encoder that
// renders column DDL, literals, and filter fragments for its back-end.
// The MySQL family (MySQL, MariaDB, TiDB) shares one encoder with small
// flavor differences.
package dialect

import (
	"context"
	"database/sql/driver"
	"strings"
)

// Supported dialects.
const (
	MySQL    = "mysql"
	MariaDB  = "mariadb"
	TiDB     = "tidb"
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// ExecQuerier wraps the basic Exec and Query methods.
type ExecQuerier interface {
	// Exec executes a query that does not return records. For example, in SQL, INSERT or UPDATE.
	// It scans the result into the pointer v. For SQL drivers, it is dialect/sql.Result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns rows, typically a SELECT in SQL.
	// It scans the result into the pointer v. For SQL drivers, it is *dialect/sql.Rows.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all database operations.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	// The provided context is used until the transaction is committed or rolled back.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps database transaction.
type Tx interface {
	ExecQuerier
	driver.Tx
}

// IsMySQLFamily reports whether the dialect belongs to the MySQL family.
func IsMySQLFamily(name string) bool {
	switch name {
	case MySQL, MariaDB, TiDB:
		return true
	}
	return false
}

// EscapeString renders a string literal, doubling embedded single quotes.
// This is the only string-literal emission path.
func EscapeString(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}
