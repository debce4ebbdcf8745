package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/syssam/veldt/dialect"
)

// QueryStats holds query execution statistics.
type QueryStats struct {
	// TotalQueries is the total number of queries executed.
	TotalQueries atomic.Int64
	// TotalExecs is the total number of exec statements executed.
	TotalExecs atomic.Int64
	// TotalDuration is the total time spent executing queries.
	TotalDuration atomic.Int64 // nanoseconds
	// SlowQueries is the count of queries exceeding the slow threshold.
	SlowQueries atomic.Int64
	// Errors is the count of query errors.
	Errors atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.TotalQueries.Load(),
		TotalExecs:    s.TotalExecs.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowQueries:   s.SlowQueries.Load(),
		Errors:        s.Errors.Load(),
	}
}

// Reset resets all statistics to zero.
func (s *QueryStats) Reset() {
	s.TotalQueries.Store(0)
	s.TotalExecs.Store(0)
	s.TotalDuration.Store(0)
	s.SlowQueries.Store(0)
	s.Errors.Store(0)
}

// StatsSnapshot is a point-in-time snapshot of query statistics.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalExecs    int64
	TotalDuration time.Duration
	SlowQueries   int64
	Errors        int64
}

// AvgQueryDuration returns the average query duration.
func (s StatsSnapshot) AvgQueryDuration() time.Duration {
	total := s.TotalQueries + s.TotalExecs
	if total == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(total)
}

// String returns a human-readable summary of the statistics.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalQueries, s.TotalExecs, s.TotalDuration, s.AvgQueryDuration(),
		s.SlowQueries, s.Errors,
	)
}

// SlowQueryHook is a function called when a slow query is detected.
type SlowQueryHook func(ctx context.Context, query string, args []any, duration time.Duration)

// DefaultSlowThreshold is the slow statement threshold a driver starts
// with when statistics are enabled.
const DefaultSlowThreshold = 100 * time.Millisecond

// statsRecorder carries the counters and hooks of a driver with
// statistics enabled.
type statsRecorder struct {
	stats         QueryStats
	slowThreshold time.Duration
	slowHook      SlowQueryHook
	logStatements bool
}

// StatsOption configures statistics collection on a driver.
type StatsOption func(*statsRecorder)

// WithSlowThreshold sets the threshold for slow query detection.
// Queries taking longer than this duration will be counted as slow queries.
// Default is DefaultSlowThreshold.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(r *statsRecorder) {
		r.slowThreshold = d
	}
}

// WithSlowQueryHook sets a callback function for slow queries.
// The hook is called whenever a query exceeds the slow threshold.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(r *statsRecorder) {
		r.slowHook = hook
	}
}

// WithSlowQueryLog logs slow queries to the default logger.
// This is a convenience wrapper around WithSlowQueryHook.
func WithSlowQueryLog() StatsOption {
	return WithSlowQueryHook(func(_ context.Context, query string, args []any, duration time.Duration) {
		slog.Warn("slow query detected", "duration", duration, "query", query, "args", args)
	})
}

// WithStatementLog logs every statement at debug level along with its
// duration and outcome.
func WithStatementLog() StatsOption {
	return func(r *statsRecorder) {
		r.logStatements = true
	}
}

// EnableStats turns on statistics collection for every statement the
// driver and its transactions run, and returns the live counters.
//
// Example:
//
//	drv, _ := sql.Open("postgres", dsn)
//	stats := drv.EnableStats(
//	    sql.WithSlowThreshold(200*time.Millisecond),
//	    sql.WithSlowQueryLog(),
//	)
//
//	// Later, check statistics:
//	fmt.Println(stats.Stats())
func (d *Driver) EnableStats(opts ...StatsOption) *QueryStats {
	r := &statsRecorder{slowThreshold: DefaultSlowThreshold}
	for _, opt := range opts {
		opt(r)
	}
	d.stats = r
	return &r.stats
}

// Stats returns a snapshot of the driver's statistics. The second
// return reports whether collection is enabled.
func (d *Driver) Stats() (StatsSnapshot, bool) {
	if d.stats == nil {
		return StatsSnapshot{}, false
	}
	return d.stats.stats.Stats(), true
}

// Query runs a query through the connection, recording statistics when
// they are enabled.
func (d *Driver) Query(ctx context.Context, query string, args, v any) error {
	if d.stats == nil {
		return d.Conn.Query(ctx, query, args, v)
	}
	start := time.Now()
	err := d.Conn.Query(ctx, query, args, v)
	d.stats.record(ctx, query, args, start, err, true)
	return err
}

// Exec runs a statement through the connection, recording statistics
// when they are enabled.
func (d *Driver) Exec(ctx context.Context, query string, args, v any) error {
	if d.stats == nil {
		return d.Conn.Exec(ctx, query, args, v)
	}
	start := time.Now()
	err := d.Conn.Exec(ctx, query, args, v)
	d.stats.record(ctx, query, args, start, err, false)
	return err
}

func (r *statsRecorder) record(ctx context.Context, query string, args any, start time.Time, err error, isQuery bool) {
	duration := time.Since(start)
	if isQuery {
		r.stats.TotalQueries.Add(1)
	} else {
		r.stats.TotalExecs.Add(1)
	}
	r.stats.TotalDuration.Add(int64(duration))

	if err != nil {
		r.stats.Errors.Add(1)
	}
	if r.logStatements {
		slog.Debug("statement executed", "query", query, "args", args, "duration", duration, "error", err)
	}
	if duration > r.slowThreshold {
		r.stats.SlowQueries.Add(1)
		if r.slowHook != nil {
			argv, _ := args.([]any)
			r.slowHook(ctx, query, argv, duration)
		}
	}
}

// statsTx wraps a transaction so its statements land in the same
// counters as the driver's.
type statsTx struct {
	dialect.Tx
	rec *statsRecorder
}

func (tx *statsTx) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := tx.Tx.Query(ctx, query, args, v)
	tx.rec.record(ctx, query, args, start, err, true)
	return err
}

func (tx *statsTx) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := tx.Tx.Exec(ctx, query, args, v)
	tx.rec.record(ctx, query, args, start, err, false)
	return err
}

var _ dialect.Tx = (*statsTx)(nil)

// OpenWithStats opens a database connection with statistics collection enabled.
//
// Example:
//
//	drv, stats, err := sql.OpenWithStats("postgres", dsn,
//	    sql.WithSlowThreshold(100*time.Millisecond),
//	    sql.WithSlowQueryLog(),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Monitor statistics periodically
//	go func() {
//	    for range time.Tick(time.Minute) {
//	        log.Printf("Query stats: %s", stats.Stats())
//	    }
//	}()
func OpenWithStats(name, source string, opts ...StatsOption) (*Driver, *QueryStats, error) {
	drv, err := Open(name, source)
	if err != nil {
		return nil, nil, err
	}
	return drv, drv.EnableStats(opts...), nil
}
