package schema

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// QueryContext tracks one statement through its lifecycle: identity,
// text, arguments, timing, and the execution outcome.
type QueryContext struct {
	queryID      uuid.UUID
	sql          string
	args         []any
	startedAt    time.Time
	rowsAffected int64
	lastInsertID int64
}

// NewQueryContext starts tracking a statement.
func NewQueryContext(sql string, args ...any) *QueryContext {
	queryID, err := uuid.NewV7()
	if err != nil {
		queryID = uuid.New()
	}
	return &QueryContext{
		queryID:   queryID,
		sql:       sql,
		args:      args,
		startedAt: time.Now(),
	}
}

// QueryID returns the statement's identifier.
func (qc *QueryContext) QueryID() uuid.UUID { return qc.queryID }

// SQL returns the statement text.
func (qc *QueryContext) SQL() string { return qc.sql }

// Args returns the bound arguments.
func (qc *QueryContext) Args() []any { return qc.args }

// Elapsed returns the time since the statement started.
func (qc *QueryContext) Elapsed() time.Duration { return time.Since(qc.startedAt) }

// RowsAffected returns the recorded row count.
func (qc *QueryContext) RowsAffected() int64 { return qc.rowsAffected }

// LastInsertID returns the recorded insert id, when the driver
// supports one.
func (qc *QueryContext) LastInsertID() int64 { return qc.lastInsertID }

// RecordResult stores the execution outcome.
func (qc *QueryContext) RecordResult(rowsAffected, lastInsertID int64) {
	qc.rowsAffected = rowsAffected
	qc.lastInsertID = lastInsertID
}

// Emit logs the finished statement. Severity scales with execution
// time: debug under a second, info up to three seconds, warn beyond.
func (qc *QueryContext) Emit(ctx context.Context) {
	elapsed := qc.Elapsed()
	level := slog.LevelDebug
	switch {
	case elapsed > 3*time.Second:
		level = slog.LevelWarn
	case elapsed >= time.Second:
		level = slog.LevelInfo
	}
	slog.Log(ctx, level, "query executed",
		"query_id", qc.queryID.String(),
		"query", qc.sql,
		"arguments", qc.args,
		"rows_affected", qc.rowsAffected,
		"execution_time_millis", elapsed.Milliseconds(),
	)
}
