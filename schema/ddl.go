package schema

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/syssam/veldt/dialect"
	vsql "github.com/syssam/veldt/dialect/sql"
)

// CreateTable creates the entity's table when it does not exist yet.
func (s *Schema) CreateTable(ctx context.Context) error {
	drv, err := s.writerDriver(ctx)
	if err != nil {
		return err
	}
	enc := drv.Encoder()
	columns := s.entity.Columns()
	definitions := make([]string, 0, len(columns))
	for _, c := range columns {
		definitions = append(definitions, enc.ColumnDefinition(c))
	}
	sqlStr := "CREATE TABLE IF NOT EXISTS " + enc.FormatField(s.entity.TableName()) +
		" (\n  " + strings.Join(definitions, ",\n  ") + "\n);"
	_, err = exec(ctx, drv, sqlStr, noArgs)
	return err
}

// SynchronizeSchema adds columns the table is missing. Existing columns
// are never altered or dropped; a NOT NULL constraint that disagrees
// with the declared column is only logged.
func (s *Schema) SynchronizeSchema(ctx context.Context) error {
	drv, err := s.writerDriver(ctx)
	if err != nil {
		return err
	}
	enc := drv.Encoder()
	table := s.entity.TableName()
	existing, err := s.tableColumns(ctx, drv)
	if err != nil {
		return err
	}
	for _, c := range s.entity.Columns() {
		notNull, ok := existing[c.Name]
		if ok {
			if notNull != c.NotNull {
				slog.Warn("table column nullability differs from the declared schema",
					"table", table, "column", c.Name,
					"declared_not_null", c.NotNull, "actual_not_null", notNull)
			}
			continue
		}
		sqlStr := "ALTER TABLE " + enc.FormatField(table) +
			" ADD COLUMN " + enc.ColumnDefinition(c) + ";"
		if _, err := exec(ctx, drv, sqlStr, noArgs); err != nil {
			return fmt.Errorf("schema: add column %q: %w", c.Name, err)
		}
	}
	return nil
}

// tableColumns reads the columns the table currently has, mapped to
// whether each carries a NOT NULL constraint.
func (s *Schema) tableColumns(ctx context.Context, drv *vsql.Driver) (map[string]bool, error) {
	enc := drv.Encoder()
	table := s.entity.TableName()
	var sqlStr string
	switch {
	case dialect.IsMySQLFamily(enc.Name()):
		sqlStr = "SELECT column_name, is_nullable FROM information_schema.columns" +
			" WHERE table_schema = database() AND table_name = " + dialect.EscapeString(table) + ";"
	case enc.Name() == dialect.Postgres:
		sqlStr = "SELECT column_name, is_nullable FROM information_schema.columns" +
			" WHERE table_schema = current_schema() AND table_name = " + dialect.EscapeString(table) + ";"
	default:
		sqlStr = `SELECT p.name AS column_name, p."notnull" AS not_null` +
			" FROM sqlite_master m, pragma_table_info(m.name) p" +
			" WHERE m.name = " + dialect.EscapeString(table) + ";"
	}
	rows, _, err := queryMaps(ctx, drv, sqlStr, noArgs)
	if err != nil {
		return nil, err
	}
	existing := make(map[string]bool, len(rows))
	for _, row := range rows {
		name, ok := row.GetStr("column_name")
		if !ok {
			continue
		}
		if nullable, ok := row.GetStr("is_nullable"); ok {
			existing[name] = strings.EqualFold(nullable, "NO")
		} else {
			n, _ := row.ParseI64("not_null")
			existing[name] = n != 0
		}
	}
	return existing, nil
}

// CreateIndexes creates the entity's indexes and reports how many
// statements ran. On the MySQL family the table's index list is probed
// first so repeated calls stay idempotent.
func (s *Schema) CreateIndexes(ctx context.Context) (int, error) {
	drv, err := s.writerDriver(ctx)
	if err != nil {
		return 0, err
	}
	enc := drv.Encoder()
	table := s.entity.TableName()
	if dialect.IsMySQLFamily(enc.Name()) {
		rows, _, err := queryMaps(ctx, drv, "SHOW INDEXES FROM "+enc.FormatField(table)+";", noArgs)
		if err != nil {
			return 0, err
		}
		// The primary key always shows up; anything beyond it means the
		// secondary indexes were created before.
		if len(rows) > 1 {
			return 0, nil
		}
	}
	statements := enc.CreateIndexes(table, s.entity.Columns())
	for i, sqlStr := range statements {
		if _, err := exec(ctx, drv, sqlStr, noArgs); err != nil {
			return i, fmt.Errorf("schema: create index: %w", err)
		}
	}
	return len(statements), nil
}
