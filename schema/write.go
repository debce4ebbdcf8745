package schema

import (
	"context"
	"strings"

	"github.com/syssam/veldt"
	"github.com/syssam/veldt/column"
	"github.com/syssam/veldt/dialect"
	"github.com/syssam/veldt/query"
	"github.com/syssam/veldt/value"
)

// insertSet selects the columns an insert renders. An auto-generated
// key stays out only when none of the records supplies it, so every
// row in a batch keeps the same arity.
func (s *Schema) insertSet(datas []*value.Map) []*column.Column {
	cols := s.entity.Columns()
	set := make([]*column.Column, 0, len(cols))
	for _, c := range cols {
		if c.AutoIncrement() || c.AutoRandom() {
			supplied := false
			for _, data := range datas {
				if _, ok := data.Get(c.Name); ok {
					supplied = true
					break
				}
			}
			if !supplied {
				continue
			}
		}
		set = append(set, c)
	}
	return set
}

func insertFields(enc dialect.Encoder, cols []*column.Column) []string {
	fields := make([]string, len(cols))
	for i, c := range cols {
		fields[i] = enc.FormatField(c.Name)
	}
	return fields
}

// insertRow renders one VALUES row over the shared column set. Absent
// values encode as the column default or NULL.
func insertRow(enc dialect.Encoder, cols []*column.Column, data *value.Map) string {
	literals := make([]string, len(cols))
	for i, c := range cols {
		v, _ := data.Get(c.Name)
		literals[i] = enc.EncodeValue(c, v)
	}
	return "(" + strings.Join(literals, ", ") + ")"
}

// Insert writes one record and expects exactly one affected row.
func (s *Schema) Insert(ctx context.Context, m Model) error {
	if err := beforeInsert(ctx, m); err != nil {
		return err
	}
	drv, err := s.writerDriver(ctx)
	if err != nil {
		return err
	}
	enc := drv.Encoder()
	data := m.IntoMap()
	cols := s.insertSet([]*value.Map{data})
	sqlStr := "INSERT INTO " + enc.FormatField(s.entity.TableName()) +
		" (" + strings.Join(insertFields(enc, cols), ", ") + ") VALUES " + insertRow(enc, cols, data) + ";"
	qc, err := execOne(ctx, drv, sqlStr, noArgs)
	if err != nil {
		return err
	}
	return afterInsert(ctx, m, qc)
}

// InsertMany writes the records in one statement and expects one
// affected row per record.
func (s *Schema) InsertMany(ctx context.Context, models []Model) error {
	if len(models) == 0 {
		return nil
	}
	drv, err := s.writerDriver(ctx)
	if err != nil {
		return err
	}
	enc := drv.Encoder()
	datas := make([]*value.Map, 0, len(models))
	for _, m := range models {
		if err := beforeInsert(ctx, m); err != nil {
			return err
		}
		datas = append(datas, m.IntoMap())
	}
	cols := s.insertSet(datas)
	rows := make([]string, len(datas))
	for i, data := range datas {
		rows[i] = insertRow(enc, cols, data)
	}
	sqlStr := "INSERT INTO " + enc.FormatField(s.entity.TableName()) +
		" (" + strings.Join(insertFields(enc, cols), ", ") + ") VALUES " + strings.Join(rows, ", ") + ";"
	qc, err := exec(ctx, drv, sqlStr, noArgs)
	if err != nil {
		return err
	}
	if qc.RowsAffected() != int64(len(models)) {
		return &veldt.ArityError{SQL: sqlStr, Affected: qc.RowsAffected()}
	}
	return nil
}

// updateColumns renders the SET list for the record, skipping the
// primary key and read-only columns.
func (s *Schema) updateColumns(enc dialect.Encoder, data *value.Map) []string {
	var sets []string
	for _, c := range s.entity.Columns() {
		if c.Name == s.entity.PrimaryKey() || c.IsReadOnly() {
			continue
		}
		v, ok := data.Get(c.Name)
		if !ok {
			continue
		}
		sets = append(sets, enc.FormatField(c.Name)+" = "+enc.EncodeValue(c, v))
	}
	return sets
}

// Update rewrites one record by primary key and expects exactly one
// affected row.
func (s *Schema) Update(ctx context.Context, m Model) error {
	if err := beforeUpdate(ctx, m); err != nil {
		return err
	}
	drv, err := s.writerDriver(ctx)
	if err != nil {
		return err
	}
	enc := drv.Encoder()
	pkCol := s.entity.GetColumn(s.entity.PrimaryKey())
	sets := s.updateColumns(enc, m.IntoMap())
	sqlStr := "UPDATE " + enc.FormatField(s.entity.TableName()) +
		" SET " + strings.Join(sets, ", ") +
		" WHERE " + enc.FormatField(s.entity.PrimaryKey()) + " = " + enc.EncodeValue(pkCol, m.PrimaryKeyValue()) + ";"
	qc, err := execOne(ctx, drv, sqlStr, noArgs)
	if err != nil {
		return err
	}
	return afterUpdate(ctx, m, qc)
}

// pkSubquery renders the single-row primary-key probe used by the
// *_one mutations, wrapped the way the dialect requires.
func (s *Schema) pkSubquery(enc dialect.Encoder, q *query.Query) string {
	sub := "SELECT " + s.primaryKeyField(enc) +
		" FROM " + s.fromClause(enc)
	if filters := q.FormatFilters(s.entity, enc); filters != "" {
		sub += " " + filters
	}
	if sort := q.FormatSort(enc); sort != "" {
		sub += " " + sort
	}
	sub += " LIMIT 1"
	return enc.SubqueryPredicate(sub)
}

// UpdateOne applies a mutation to the first row the query selects.
func (s *Schema) UpdateOne(ctx context.Context, q *query.Query, m *query.Mutation) error {
	if err := s.beforeQuery(q); err != nil {
		return err
	}
	drv, err := s.writerDriver(ctx)
	if err != nil {
		return err
	}
	enc := drv.Encoder()
	sqlStr := "UPDATE " + s.fromClause(enc) +
		" SET " + m.FormatUpdates(s.entity, enc) +
		" WHERE " + s.primaryKeyField(enc) + " IN " + s.pkSubquery(enc, q) + ";"
	_, err = execOne(ctx, drv, sqlStr, noArgs)
	return err
}

// UpdateMany applies a mutation to every row the query selects and
// reports how many rows changed.
func (s *Schema) UpdateMany(ctx context.Context, q *query.Query, m *query.Mutation) (int64, error) {
	if err := s.beforeQuery(q); err != nil {
		return 0, err
	}
	drv, err := s.writerDriver(ctx)
	if err != nil {
		return 0, err
	}
	enc := drv.Encoder()
	sqlStr := "UPDATE " + s.fromClause(enc) +
		" SET " + m.FormatUpdates(s.entity, enc)
	if filters := q.FormatFilters(s.entity, enc); filters != "" {
		sqlStr += " " + filters
	}
	qc, err := exec(ctx, drv, sqlStr+";", noArgs)
	if err != nil {
		return 0, err
	}
	return qc.RowsAffected(), nil
}

// Upsert inserts the record or rewrites it when the primary key
// already exists.
func (s *Schema) Upsert(ctx context.Context, m Model) error {
	if err := beforeUpsert(ctx, m); err != nil {
		return err
	}
	drv, err := s.writerDriver(ctx)
	if err != nil {
		return err
	}
	enc := drv.Encoder()
	data := m.IntoMap()
	cols := s.insertSet([]*value.Map{data})
	mutations := strings.Join(s.updateColumns(enc, data), ", ")
	sqlStr := "INSERT INTO " + enc.FormatField(s.entity.TableName()) +
		" (" + strings.Join(insertFields(enc, cols), ", ") + ") VALUES " + insertRow(enc, cols, data) + " " +
		enc.OnConflictUpdate(enc.FormatField(s.entity.PrimaryKey()), mutations) + ";"
	qc, err := exec(ctx, drv, sqlStr, noArgs)
	if err != nil {
		return err
	}
	return afterUpsert(ctx, m, qc)
}

// Delete removes one record by primary key and expects exactly one
// affected row.
func (s *Schema) Delete(ctx context.Context, m Model) error {
	if err := beforeDelete(ctx, m); err != nil {
		return err
	}
	qc, err := s.deleteByKey(ctx, m.PrimaryKeyValue())
	if err != nil {
		return err
	}
	return afterDelete(ctx, m, qc)
}

// DeleteByID removes one record by primary key value.
func (s *Schema) DeleteByID(ctx context.Context, id value.Value) error {
	_, err := s.deleteByKey(ctx, id)
	return err
}

func (s *Schema) deleteByKey(ctx context.Context, id value.Value) (*QueryContext, error) {
	drv, err := s.writerDriver(ctx)
	if err != nil {
		return nil, err
	}
	enc := drv.Encoder()
	pkCol := s.entity.GetColumn(s.entity.PrimaryKey())
	sqlStr := "DELETE FROM " + enc.FormatField(s.entity.TableName()) +
		" WHERE " + enc.FormatField(s.entity.PrimaryKey()) + " = " + enc.EncodeValue(pkCol, id) + ";"
	return execOne(ctx, drv, sqlStr, noArgs)
}

// deleteClause renders the aliased DELETE head. The MySQL family needs
// the target alias repeated before FROM.
func (s *Schema) deleteClause(enc dialect.Encoder) string {
	if dialect.IsMySQLFamily(enc.Name()) {
		return "DELETE " + enc.QuoteIdentifier(s.entity.ModelName()) + " FROM " + s.fromClause(enc)
	}
	return "DELETE FROM " + s.fromClause(enc)
}

// DeleteOne removes the first row the query selects.
func (s *Schema) DeleteOne(ctx context.Context, q *query.Query) error {
	if err := s.beforeQuery(q); err != nil {
		return err
	}
	drv, err := s.writerDriver(ctx)
	if err != nil {
		return err
	}
	enc := drv.Encoder()
	sqlStr := s.deleteClause(enc) +
		" WHERE " + s.primaryKeyField(enc) + " IN " + s.pkSubquery(enc, q) + ";"
	_, err = execOne(ctx, drv, sqlStr, noArgs)
	return err
}

// DeleteMany removes every row the query selects and reports how many
// rows went away.
func (s *Schema) DeleteMany(ctx context.Context, q *query.Query) (int64, error) {
	if err := s.beforeQuery(q); err != nil {
		return 0, err
	}
	drv, err := s.writerDriver(ctx)
	if err != nil {
		return 0, err
	}
	enc := drv.Encoder()
	sqlStr := s.deleteClause(enc)
	if filters := q.FormatFilters(s.entity, enc); filters != "" {
		sqlStr += " " + filters
	}
	qc, err := exec(ctx, drv, sqlStr+";", noArgs)
	if err != nil {
		return 0, err
	}
	return qc.RowsAffected(), nil
}
