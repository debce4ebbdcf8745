package schema

import (
	"context"
	"fmt"

	"github.com/syssam/veldt"
	"github.com/syssam/veldt/dialect"
	"github.com/syssam/veldt/query"
	"github.com/syssam/veldt/value"
)

// prepare interpolates a raw SQL template against params and returns
// the statement with driver placeholders plus the bound arguments.
func (s *Schema) prepare(enc dialect.Encoder, sqlStr string, params *value.Map) (string, []any) {
	stmt, bound := query.PrepareQuery(enc, sqlStr, params)
	args := make([]any, len(bound))
	for i, v := range bound {
		args[i] = v
	}
	return stmt, args
}

// Execute runs a raw statement with ${name} interpolation and #{name}
// binding, returning the number of affected rows.
func (s *Schema) Execute(ctx context.Context, sqlStr string, params *value.Map) (int64, error) {
	drv, err := s.writerDriver(ctx)
	if err != nil {
		return 0, err
	}
	stmt, args := s.prepare(drv.Encoder(), sqlStr, params)
	qc, err := exec(ctx, drv, stmt, args)
	if err != nil {
		return 0, err
	}
	return qc.RowsAffected(), nil
}

// Query runs a raw query with ${name} interpolation and #{name}
// binding, returning decoded rows.
func (s *Schema) Query(ctx context.Context, sqlStr string, params *value.Map) ([]*value.Map, error) {
	drv, err := s.readerDriver(ctx)
	if err != nil {
		return nil, err
	}
	stmt, args := s.prepare(drv.Encoder(), sqlStr, params)
	rows, _, err := queryMaps(ctx, drv, stmt, args)
	if err != nil {
		return nil, err
	}
	if err := s.afterScan(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// QueryOne runs a raw query and returns its first row, or a not-found
// error when the result set is empty.
func (s *Schema) QueryOne(ctx context.Context, sqlStr string, params *value.Map) (*value.Map, error) {
	rows, err := s.Query(ctx, sqlStr, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, veldt.NewNotFoundError(s.entity.ModelName())
	}
	return rows[0], nil
}

// QueryAs runs a raw query and decodes the rows into T.
func QueryAs[T any](ctx context.Context, s *Schema, sqlStr string, params *value.Map) ([]T, error) {
	rows, err := s.Query(ctx, sqlStr, params)
	if err != nil {
		return nil, err
	}
	return decodeRows[T](s, rows)
}

// QueryOneAs runs a raw query and decodes its first row into T.
func QueryOneAs[T any](ctx context.Context, s *Schema, sqlStr string, params *value.Map) (T, error) {
	var zero T
	row, err := s.QueryOne(ctx, sqlStr, params)
	if err != nil {
		return zero, err
	}
	return decodeRow[T](s, row)
}

// Transaction runs fn inside a transaction on the writer pool. The
// transaction commits when fn returns nil and rolls back otherwise; a
// rollback failure is reported together with the original error.
func (s *Schema) Transaction(ctx context.Context, fn func(ctx context.Context, tx dialect.Tx) error) error {
	drv, err := s.writerDriver(ctx)
	if err != nil {
		return err
	}
	tx, err := drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("schema: begin transaction: %w", err)
	}
	if err := fn(ctx, tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w: %v", err, &veldt.RollbackError{Err: rerr})
		}
		return err
	}
	return tx.Commit()
}
