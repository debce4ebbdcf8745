// Package sql executes rendered statements against SQL databases.
//
// It wraps database/sql with the dialect.Driver contract, carries the
// encoder chosen for each connection, and decodes result rows into
// ordered maps.
//
// # Opening connections
//
// Connections are opened by dialect name; the matching database/sql
// driver is resolved by the dialect's encoder:
//
//	drv, err := sql.Open(dialect.Postgres, dsn)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
// An existing *sql.DB can be wrapped with OpenDB, which is what the
// tests do with sqlmock.
//
// # Pools
//
// A Registry holds named pools and tracks their availability. A pool
// that failed a health check is pinged again once its cooldown
// elapses; until then it is handed out stale rather than withheld:
//
//	reg := sql.NewRegistry()
//	reg.Add(sql.NewPool("main", drv))
//	pool, err := reg.Get(ctx, "main")
//
// # Decoding rows
//
// ScanMaps turns a result set into ordered maps keyed by column name,
// decoding JSON, boolean, and temporal columns by their database types:
//
//	rows := &sql.Rows{}
//	if err := drv.Query(ctx, stmt, args, rows); err != nil {
//	    return err
//	}
//	records, err := sql.ScanMaps(rows)
//
// # Session variables
//
// WithVar attaches session variables to a context; the connection sets
// them before the statement and resets them afterwards.
//
// # Instrumentation
//
// EnableStats turns on per-driver collection of query counts,
// durations, and slow query events; WithStatementLog additionally logs
// every statement. Pools opened from a configuration file enable this
// through the stats flags on the pool entry.
package sql
