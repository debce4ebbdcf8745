package schema

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/syssam/veldt"
	"github.com/syssam/veldt/dialect"
	"github.com/syssam/veldt/query"
	"github.com/syssam/veldt/value"
)

// formatPagination renders LIMIT/OFFSET with the schema's row cap
// applied to unbounded reads. A zero effective limit emits nothing, so
// limit(0) reads all rows.
func (s *Schema) formatPagination(q *query.Query) string {
	limit := s.effectiveLimit(q)
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf("LIMIT %d OFFSET %d", limit, q.Offset())
}

// selectStatement assembles the SELECT for the query, optionally with
// a join clause between the table and the filters.
func (s *Schema) selectStatement(enc dialect.Encoder, q *query.Query, join string) string {
	sqlStr := "SELECT " + q.FormatTableFields(s.entity, enc) +
		" FROM " + q.FormatTableName(s.entity, enc)
	if join != "" {
		sqlStr += " " + join
	}
	if filters := q.FormatFilters(s.entity, enc); filters != "" {
		sqlStr += " " + filters
	}
	if sort := q.FormatSort(enc); sort != "" {
		sqlStr += " " + sort
	}
	if pagination := s.formatPagination(q); pagination != "" {
		sqlStr += " " + pagination
	}
	return sqlStr + ";"
}

// Find returns the rows the query selects, decoded into maps with
// scan and translation hooks applied.
func (s *Schema) Find(ctx context.Context, q *query.Query) ([]*value.Map, error) {
	if err := s.beforeQuery(q); err != nil {
		return nil, err
	}
	drv, err := s.readerDriver(ctx)
	if err != nil {
		return nil, err
	}
	rows, _, err := queryMaps(ctx, drv, s.selectStatement(drv.Encoder(), q, ""), noArgs)
	if err != nil {
		return nil, err
	}
	if err := s.afterScan(ctx, rows); err != nil {
		return nil, err
	}
	if err := s.translate(q, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// FindOne returns the first row the query selects, or a not-found
// error when nothing matches.
func (s *Schema) FindOne(ctx context.Context, q *query.Query) (*value.Map, error) {
	q.SetLimit(1)
	rows, err := s.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, veldt.NewNotFoundError(s.entity.ModelName())
	}
	return rows[0], nil
}

// FindByID returns the row with the given primary key.
func (s *Schema) FindByID(ctx context.Context, id value.Value) (*value.Map, error) {
	q := query.New(value.FromEntry(s.entity.PrimaryKey(), value.FromEntry("$eq", id)))
	q.SetLimit(1)
	rows, err := s.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, veldt.NewNotFoundErrorWithID(s.entity.ModelName(), id)
	}
	return rows[0], nil
}

// FindAs returns the rows the query selects, decoded into T through a
// JSON round trip.
func FindAs[T any](ctx context.Context, s *Schema, q *query.Query) ([]T, error) {
	rows, err := s.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	return decodeRows[T](s, rows)
}

// FindOneAs returns the first row the query selects, decoded into T.
func FindOneAs[T any](ctx context.Context, s *Schema, q *query.Query) (T, error) {
	var zero T
	row, err := s.FindOne(ctx, q)
	if err != nil {
		return zero, err
	}
	return decodeRow[T](s, row)
}

func decodeRows[T any](s *Schema, rows []*value.Map) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		v, err := decodeRow[T](s, row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeRow[T any](s *Schema, row *value.Map) (T, error) {
	var v T
	data, err := json.Marshal(row)
	if err != nil {
		return v, veldt.NewDecodeError(s.entity.ModelName(), "row", err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, veldt.NewDecodeError(s.entity.ModelName(), "row", err)
	}
	return v, nil
}

// Populate resolves references into this schema for the given rows in
// one statement. Each named column's values are collected across all
// rows, fetched with a single IN query, and the matching records are
// attached back under "<column>_populated". Array-valued columns
// populate to arrays.
func (s *Schema) Populate(ctx context.Context, q *query.Query, rows []*value.Map, columns []string) error {
	if len(rows) == 0 || len(columns) == 0 {
		return nil
	}
	var keys []value.Value
	seen := make(map[string]bool)
	push := func(v value.Value) {
		if value.IsNull(v) {
			return
		}
		repr := value.ToStringUnquoted(v)
		if !seen[repr] {
			seen[repr] = true
			keys = append(keys, v)
		}
	}
	for _, row := range rows {
		for _, col := range columns {
			v, ok := row.Get(col)
			if !ok {
				continue
			}
			if arr, ok := value.AsArray(v); ok {
				for _, item := range arr {
					push(item)
				}
			} else {
				push(v)
			}
		}
	}
	if len(keys) == 0 {
		return nil
	}

	pk := s.entity.PrimaryKey()
	sub := query.New(value.FromEntry(pk, value.FromEntry("$in", keys)))
	sub.SetFields(q.Fields())
	sub.SetLimit(len(keys))
	records, err := s.Find(ctx, sub)
	if err != nil {
		return err
	}
	byKey := make(map[string]*value.Map, len(records))
	for _, record := range records {
		if id, ok := record.Get(pk); ok {
			byKey[value.ToStringUnquoted(id)] = record
		}
	}

	for _, row := range rows {
		for _, col := range columns {
			v, ok := row.Get(col)
			if !ok || value.IsNull(v) {
				continue
			}
			if arr, ok := value.AsArray(v); ok {
				populated := make([]value.Value, 0, len(arr))
				for _, item := range arr {
					if record, ok := byKey[value.ToStringUnquoted(item)]; ok {
						populated = append(populated, record)
					}
				}
				row.Upsert(col+"_populated", populated)
			} else if record, ok := byKey[value.ToStringUnquoted(v)]; ok {
				row.Upsert(col+"_populated", record)
			}
		}
	}
	return nil
}

// PopulateOne resolves references into this schema for a single row.
func (s *Schema) PopulateOne(ctx context.Context, q *query.Query, row *value.Map, columns []string) error {
	if row == nil {
		return nil
	}
	return s.Populate(ctx, q, []*value.Map{row}, columns)
}

// Lookup returns the rows the query selects joined against another
// table through the given join clause.
func (s *Schema) Lookup(ctx context.Context, q *query.Query, join *query.JoinOn) ([]*value.Map, error) {
	if err := s.beforeQuery(q); err != nil {
		return nil, err
	}
	drv, err := s.readerDriver(ctx)
	if err != nil {
		return nil, err
	}
	rows, _, err := queryMaps(ctx, drv, s.selectStatement(drv.Encoder(), q, join.Format()), noArgs)
	if err != nil {
		return nil, err
	}
	if err := s.afterScan(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Exists reports whether any row matches the query.
func (s *Schema) Exists(ctx context.Context, q *query.Query) (bool, error) {
	if err := s.beforeQuery(q); err != nil {
		return false, err
	}
	drv, err := s.readerDriver(ctx)
	if err != nil {
		return false, err
	}
	enc := drv.Encoder()
	sqlStr := "SELECT 1 FROM " + s.fromClause(enc)
	if filters := q.FormatFilters(s.entity, enc); filters != "" {
		sqlStr += " " + filters
	}
	rows, _, err := queryMaps(ctx, drv, sqlStr+" LIMIT 1;", noArgs)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// Count returns the number of rows matching the query.
func (s *Schema) Count(ctx context.Context, q *query.Query) (int64, error) {
	if err := s.beforeQuery(q); err != nil {
		return 0, err
	}
	drv, err := s.readerDriver(ctx)
	if err != nil {
		return 0, err
	}
	enc := drv.Encoder()
	sqlStr := "SELECT count(*) FROM " + s.fromClause(enc)
	if filters := q.FormatFilters(s.entity, enc); filters != "" {
		sqlStr += " " + filters
	}
	return queryInt64(ctx, drv, sqlStr+";", noArgs)
}

// CountMany returns the aggregate projections the query's fields
// request, grouped and filtered as the query specifies.
func (s *Schema) CountMany(ctx context.Context, q *query.Query) ([]*value.Map, error) {
	if err := s.beforeQuery(q); err != nil {
		return nil, err
	}
	drv, err := s.readerDriver(ctx)
	if err != nil {
		return nil, err
	}
	enc := drv.Encoder()
	sqlStr := "SELECT " + q.FormatProjection(enc) + " FROM " + s.fromClause(enc)
	if filters := q.FormatFilters(s.entity, enc); filters != "" {
		sqlStr += " " + filters
	}
	rows, _, err := queryMaps(ctx, drv, sqlStr+";", noArgs)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountManyAs returns the aggregate projections decoded into T.
func CountManyAs[T any](ctx context.Context, s *Schema, q *query.Query) ([]T, error) {
	rows, err := s.CountMany(ctx, q)
	if err != nil {
		return nil, err
	}
	return decodeRows[T](s, rows)
}

// sampleProbability bounds the random probe used by Sample before it
// falls back to a sequential backfill.
const sampleProbability = 0.05

// Sample returns up to size random primary-key values. It probes with
// the dialect's random filter first, then backfills the remainder with
// a NOT IN query when the probe comes up short.
func (s *Schema) Sample(ctx context.Context, size int) ([]value.Value, error) {
	if size <= 0 {
		return nil, nil
	}
	pk := s.entity.PrimaryKey()
	probe := query.New(value.FromEntry("$rand", sampleProbability))
	probe.SetFields([]string{pk})
	probe.SetLimit(size)
	rows, err := s.Find(ctx, probe)
	if err != nil {
		return nil, err
	}
	keys := make([]value.Value, 0, size)
	for _, row := range rows {
		if id, ok := row.Get(pk); ok {
			keys = append(keys, id)
		}
	}
	if len(keys) >= size {
		return keys[:size], nil
	}

	backfill := query.Default()
	if len(keys) > 0 {
		backfill.AddFilter(pk, value.FromEntry("$nin", keys))
	}
	backfill.SetFields([]string{pk})
	backfill.SetLimit(size - len(keys))
	rows, err = s.Find(ctx, backfill)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if id, ok := row.Get(pk); ok {
			keys = append(keys, id)
		}
	}
	return keys, nil
}

// FilterExisting returns the subset of the given primary-key values
// that exist in the table, in database order.
func (s *Schema) FilterExisting(ctx context.Context, values []value.Value) ([]value.Value, error) {
	if len(values) == 0 {
		return nil, nil
	}
	pk := s.entity.PrimaryKey()
	q := query.New(value.FromEntry(pk, value.FromEntry("$in", values)))
	q.SetFields([]string{pk})
	q.SetLimit(len(values))
	rows, err := s.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	existing := make([]value.Value, 0, len(rows))
	for _, row := range rows {
		if id, ok := row.Get(pk); ok {
			existing = append(existing, id)
		}
	}
	return existing, nil
}

// IsUniqueOn reports whether the model is the only record carrying the
// given column values. A two-row probe decides: no match means unique,
// a single match is unique only when it is the model itself.
func (s *Schema) IsUniqueOn(ctx context.Context, m Model, fields *value.Map) (bool, error) {
	if fields.IsEmpty() {
		return false, veldt.NewValidationError("fields", "must be nonempty")
	}
	filters := value.NewMap()
	for _, entry := range fields.Entries() {
		filters.Upsert(entry.Key, value.FromEntry("$eq", entry.Value))
	}
	pk := s.entity.PrimaryKey()
	q := query.New(filters)
	q.SetFields([]string{pk})
	q.SetLimit(2)
	rows, err := s.Find(ctx, q)
	if err != nil {
		return false, err
	}
	switch len(rows) {
	case 0:
		return true, nil
	case 1:
		id, ok := rows[0].Get(pk)
		return ok && value.ToStringUnquoted(id) == value.ToStringUnquoted(m.PrimaryKeyValue()), nil
	default:
		return false, nil
	}
}
