package dialect

import (
	"strconv"
	"strings"

	"github.com/syssam/veldt/column"
	"github.com/syssam/veldt/value"
)

// mysqlEncoder renders SQL for the MySQL family. The flavor distinguishes
// MariaDB, whose UUID and JSON storage types differ, and TiDB, which
// supports AUTO_RANDOM keys.
type mysqlEncoder struct {
	flavor string
}

func (d *mysqlEncoder) Name() string { return d.flavor }

func (d *mysqlEncoder) DriverName() string { return "mysql" }

func (d *mysqlEncoder) QuoteIdentifier(name string) string {
	return "`" + name + "`"
}

func (d *mysqlEncoder) FormatField(name string) string {
	return quoteWith(name, '`')
}

func (d *mysqlEncoder) Placeholder(int) string { return "?" }

func (d *mysqlEncoder) ColumnType(c *column.Column) string {
	if columnType, ok := c.Extra.GetStr("column_type"); ok {
		return columnType
	}
	switch c.BaseType() {
	case "bool":
		return "BOOLEAN"
	case "u64", "usize":
		return "BIGINT UNSIGNED"
	case "i64", "isize":
		return "BIGINT"
	case "u32":
		return "INT UNSIGNED"
	case "i32":
		return "INT"
	case "u16":
		return "SMALLINT UNSIGNED"
	case "i16":
		return "SMALLINT"
	case "u8":
		return "TINYINT UNSIGNED"
	case "i8":
		return "TINYINT"
	case "f64":
		return "DOUBLE"
	case "f32":
		return "FLOAT"
	case "Decimal":
		return "NUMERIC"
	case "String":
		if _, ok := c.DefaultValue(); ok || c.IndexType != "" {
			return "VARCHAR(255)"
		}
		return "TEXT"
	case "DateTime":
		if c.HasAttribute("without_timezone") {
			return "DATETIME(6)"
		}
		return "TIMESTAMP(6)"
	case "Date":
		return "DATE"
	case "Time":
		return "TIME"
	case "Uuid":
		if d.flavor == MariaDB {
			return "UUID"
		}
		return "CHAR(36)"
	case "Vec<u8>":
		return "BLOB"
	default:
		if c.IsArrayType() || c.IsMapType() {
			// MariaDB aliases JSON to LONGTEXT; declaring it directly
			// avoids a surprising SHOW CREATE TABLE rewrite.
			if d.flavor == MariaDB {
				return "LONGTEXT"
			}
			return "JSON"
		}
		return "TEXT"
	}
}

func (d *mysqlEncoder) ColumnDefinition(c *column.Column) string {
	definition := columnField(d, c) + " " + d.ColumnType(c)
	if c.IsPrimaryKey() {
		definition += " PRIMARY KEY"
	}
	switch {
	case c.AutoIncrement():
		definition += " AUTO_INCREMENT"
	case c.AutoRandom():
		if d.flavor == TiDB {
			definition += " AUTO_RANDOM"
		}
	default:
		if defaultValue, ok := c.DefaultValue(); ok {
			definition += " DEFAULT " + d.FormatValue(c, defaultValue)
		} else if c.NotNull {
			definition += " NOT NULL"
		}
	}
	return definition
}

func (d *mysqlEncoder) CreateIndexes(table string, cols []*column.Column) []string {
	escapedTable := d.FormatField(table)
	statements := make([]string, 0, len(cols))
	var textColumns []string
	for _, c := range cols {
		switch c.IndexType {
		case "":
		case "fulltext", "text":
			textColumns = append(textColumns, c.Name)
		case "unique", "spatial":
			statements = append(statements, "CREATE "+strings.ToUpper(c.IndexType)+" INDEX "+
				table+"_"+c.Name+"_index ON "+escapedTable+" ("+c.Name+");")
		case "btree", "hash":
			statements = append(statements, "CREATE INDEX "+
				table+"_"+c.Name+"_index ON "+escapedTable+" ("+c.Name+") USING "+strings.ToUpper(c.IndexType)+";")
		}
	}
	if len(textColumns) > 0 {
		statements = append(statements, "CREATE FULLTEXT INDEX "+
			table+"_text_search_index ON "+escapedTable+" ("+strings.Join(textColumns, ", ")+");")
	}
	return statements
}

func (d *mysqlEncoder) EncodeValue(c *column.Column, v value.Value) string {
	if literal, ok := encodeScalar(d, c, v); ok {
		return literal
	}
	if values, ok := value.AsArray(v); ok {
		return jsonArrayLiteral(d, c, values)
	}
	return encodeJSONString(v)
}

func (d *mysqlEncoder) FormatValue(c *column.Column, s string) string {
	switch c.BaseType() {
	case "bool":
		if s == "true" {
			return "TRUE"
		}
		return "FALSE"
	case "u64", "u32", "u16", "u8", "usize":
		return unsignedLiteral(s)
	case "i64", "i32", "i16", "i8", "isize":
		return signedLiteral(s)
	case "f64", "f32", "Decimal":
		return floatLiteral(s)
	case "String", "Uuid":
		return EscapeString(s)
	case "DateTime":
		switch s {
		case "epoch":
			return "from_unixtime(0)"
		case "now":
			return "current_timestamp(6)"
		case "today":
			return "curdate()"
		case "tomorrow":
			return "curdate() + INTERVAL 1 DAY"
		case "yesterday":
			return "curdate() - INTERVAL 1 DAY"
		}
		return EscapeString(s)
	case "Date":
		switch s {
		case "epoch":
			return "'1970-01-01'"
		case "today":
			return "curdate()"
		case "tomorrow":
			return "curdate() + INTERVAL 1 DAY"
		case "yesterday":
			return "curdate() - INTERVAL 1 DAY"
		}
		return EscapeString(s)
	case "Time":
		switch s {
		case "now":
			return "curtime()"
		case "midnight":
			return "'00:00:00'"
		}
		return EscapeString(s)
	case "Vec<u8>":
		return "'" + s + "'"
	default:
		if c.IsArrayType() {
			return jsonArrayFromList(s)
		}
		if c.IsMapType() {
			return EscapeString(s)
		}
		return "NULL"
	}
}

func (d *mysqlEncoder) FormatFilter(c *column.Column, field string, v value.Value) string {
	if filter, ok := value.AsMap(v); ok {
		if c.IsMapType() {
			return "json_contains(" + field + ", " + d.EncodeValue(c, v) + ")"
		}
		return formatOperatorMap(d, c, field, filter)
	}
	if condition, done := scalarPreamble(d, c, field, v); done {
		return condition
	}
	switch c.BaseType() {
	case "bool":
		return boolFilter(d, c, field, v)
	case "u64", "i64", "u32", "i32", "u16", "i16", "u8", "i8", "usize", "isize":
		return intFilter(d, c, field, v)
	case "String":
		return stringFilter(d, c, field, v, d.fuzzyTerm, comparisonPrefix)
	case "DateTime":
		return temporalPrefixFilter(d, c, field, v, d.datetimeSlice)
	case "Date":
		return temporalPrefixFilter(d, c, field, v, d.dateSlice)
	case "Time":
		return temporalPrefixFilter(d, c, field, v, d.timeSlice)
	case "Uuid":
		return uuidFilter(d, c, field, v)
	default:
		if c.IsArrayType() {
			return d.arrayFilter(c, field, v)
		}
		if c.IsMapType() {
			return "json_contains(" + field + ", " + d.EncodeValue(c, v) + ")"
		}
		if values, ok := value.AsArray(v); ok {
			return bareArrayFilter(d, c, field, values)
		}
		return field + " = " + d.EncodeValue(c, v)
	}
}

func (d *mysqlEncoder) arrayFilter(c *column.Column, field string, v value.Value) string {
	s, ok := value.AsStr(v)
	if !ok {
		return "json_overlaps(" + field + ", " + d.EncodeValue(c, v) + ")"
	}
	if s == "nonempty" {
		return "json_length(" + field + ") > 0"
	}
	if strings.Contains(s, ";") {
		groups := splitSemicolonGroups(s)
		exprs := make([]string, len(groups))
		for i, group := range groups {
			exprs[i] = "json_contains(" + field + ", " + d.FormatValue(c, group) + ")"
		}
		return joinConditions(exprs, " OR ")
	}
	return "json_overlaps(" + field + ", " + d.FormatValue(c, s) + ")"
}

func (d *mysqlEncoder) fuzzyTerm(field, term string) string {
	return field + " LIKE " + EscapeString("%"+term+"%")
}

func (d *mysqlEncoder) datetimeSlice(field string, length int) (string, bool) {
	switch length {
	case 4:
		return "date_format(" + field + ", '%Y')", true
	case 7:
		return "date_format(" + field + ", '%Y-%m')", true
	case 10:
		return "date_format(" + field + ", '%Y-%m-%d')", true
	}
	return "", false
}

func (d *mysqlEncoder) dateSlice(field string, length int) (string, bool) {
	switch length {
	case 4:
		return "date_format(" + field + ", '%Y')", true
	case 7:
		return "date_format(" + field + ", '%Y-%m')", true
	}
	return "", false
}

func (d *mysqlEncoder) timeSlice(field string, length int) (string, bool) {
	switch length {
	case 2:
		return "time_format(" + field + ", '%H')", true
	case 5:
		return "time_format(" + field + ", '%H:%i')", true
	case 8:
		return "time_format(" + field + ", '%H:%i:%S')", true
	}
	return "", false
}

// MySQL has no ILIKE; fold both sides instead.
func (d *mysqlEncoder) caseInsensitiveLike(field, literal string) string {
	return "LOWER(" + field + ") LIKE LOWER(" + literal + ")"
}

func (d *mysqlEncoder) regexCondition(field, literal string) string {
	return field + " RLIKE " + literal
}

func (d *mysqlEncoder) sizeCondition(field string, length int64) string {
	return "json_length(" + field + ") = " + strconv.FormatInt(length, 10)
}

func (d *mysqlEncoder) RandomFilter(probability float64) string {
	return "rand() < " + strconv.FormatFloat(probability, 'f', -1, 64)
}

func (d *mysqlEncoder) ParseTextSearch(filter *value.Map) (string, bool) {
	fields, ok := filter.ParseStrArray("$fields")
	if !ok || len(fields) == 0 {
		return "", false
	}
	search, ok := filter.ParseString("$search")
	if !ok {
		return "", false
	}
	return "match(" + strings.Join(fields, ",") + ") against(" + EscapeString(search) + ")", true
}

func (d *mysqlEncoder) VirtualTables(string, []*column.Column, *value.Map) []string {
	return nil
}

func (d *mysqlEncoder) OnConflictUpdate(_ string, mutations string) string {
	return "ON DUPLICATE KEY UPDATE " + mutations
}

// MySQL rejects self-referencing IN subqueries in UPDATE and DELETE;
// a derived table makes them legal, LIMIT included.
func (d *mysqlEncoder) SubqueryPredicate(sub string) string {
	return "(SELECT * FROM (" + sub + ") AS t)"
}

func (d *mysqlEncoder) LeastFunc() string { return "least" }

func (d *mysqlEncoder) GreatestFunc() string { return "greatest" }
