package schema

import (
	"context"
	"fmt"

	"github.com/syssam/veldt"
	vsql "github.com/syssam/veldt/dialect/sql"
	"github.com/syssam/veldt/value"
)

// exec runs a statement and records the outcome.
func exec(ctx context.Context, drv *vsql.Driver, sqlStr string, args []any) (*QueryContext, error) {
	qc := NewQueryContext(sqlStr, args...)
	var res vsql.Result
	if err := drv.Exec(ctx, sqlStr, args, &res); err != nil {
		if cerr := wrapConstraint(sqlStr, err); cerr != err {
			return qc, cerr
		}
		return qc, fmt.Errorf("schema: exec: %w", err)
	}
	rowsAffected, _ := res.RowsAffected()
	lastInsertID, _ := res.LastInsertId()
	qc.RecordResult(rowsAffected, lastInsertID)
	qc.Emit(ctx)
	return qc, nil
}

// execOne runs a statement that must affect exactly one row.
func execOne(ctx context.Context, drv *vsql.Driver, sqlStr string, args []any) (*QueryContext, error) {
	qc, err := exec(ctx, drv, sqlStr, args)
	if err != nil {
		return qc, err
	}
	if qc.RowsAffected() != 1 {
		return qc, &veldt.ArityError{SQL: sqlStr, Affected: qc.RowsAffected()}
	}
	return qc, nil
}

// queryMaps runs a query and decodes every row.
func queryMaps(ctx context.Context, drv *vsql.Driver, sqlStr string, args []any) ([]*value.Map, *QueryContext, error) {
	qc := NewQueryContext(sqlStr, args...)
	var rows vsql.Rows
	if err := drv.Query(ctx, sqlStr, args, &rows); err != nil {
		return nil, qc, fmt.Errorf("schema: query: %w", err)
	}
	maps, err := vsql.ScanMaps(&rows)
	if err != nil {
		return nil, qc, fmt.Errorf("schema: scan: %w", err)
	}
	qc.RecordResult(int64(len(maps)), 0)
	qc.Emit(ctx)
	return maps, qc, nil
}

// queryInt64 runs a query and decodes the first cell as an integer.
func queryInt64(ctx context.Context, drv *vsql.Driver, sqlStr string, args []any) (int64, error) {
	qc := NewQueryContext(sqlStr, args...)
	var rows vsql.Rows
	if err := drv.Query(ctx, sqlStr, args, &rows); err != nil {
		return 0, fmt.Errorf("schema: query: %w", err)
	}
	n, err := vsql.ScanInt64(&rows)
	if err != nil {
		return 0, fmt.Errorf("schema: scan: %w", err)
	}
	qc.Emit(ctx)
	return n, nil
}

var noArgs = []any{}
