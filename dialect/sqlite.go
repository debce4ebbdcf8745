package dialect

import (
	"math"
	"strconv"
	"strings"

	"github.com/syssam/veldt/column"
	"github.com/syssam/veldt/value"
)

// sqliteEncoder renders SQL for SQLite. Arrays and maps are stored as
// JSON text and filtered through the json_each and json_tree virtual
// tables.
type sqliteEncoder struct{}

func (d *sqliteEncoder) Name() string { return SQLite }

func (d *sqliteEncoder) DriverName() string { return "sqlite" }

func (d *sqliteEncoder) QuoteIdentifier(name string) string {
	return `"` + name + `"`
}

func (d *sqliteEncoder) FormatField(name string) string {
	return quoteWith(name, '"')
}

func (d *sqliteEncoder) Placeholder(int) string { return "?" }

func (d *sqliteEncoder) ColumnType(c *column.Column) string {
	if columnType, ok := c.Extra.GetStr("column_type"); ok {
		return columnType
	}
	switch c.BaseType() {
	case "bool":
		return "BOOLEAN"
	case "u64", "i64", "u32", "i32", "u16", "i16", "u8", "i8", "usize", "isize":
		return "INTEGER"
	case "f64", "f32":
		return "REAL"
	case "Date":
		return "DATE"
	case "Time":
		return "TIME"
	case "DateTime":
		return "DATETIME"
	case "Vec<u8>":
		return "BLOB"
	default:
		return "TEXT"
	}
}

func (d *sqliteEncoder) ColumnDefinition(c *column.Column) string {
	definition := columnField(d, c) + " " + d.ColumnType(c)
	if c.IsPrimaryKey() {
		definition += " PRIMARY KEY"
	}
	switch {
	case c.AutoIncrement(), c.AutoRandom():
		// an INTEGER PRIMARY KEY aliases the rowid
	default:
		if defaultValue, ok := c.DefaultValue(); ok {
			literal := d.FormatValue(c, defaultValue)
			if strings.Contains(literal, "(") {
				definition += " DEFAULT (" + literal + ")"
			} else {
				definition += " DEFAULT " + literal
			}
		} else if c.NotNull {
			definition += " NOT NULL"
		}
	}
	return definition
}

func (d *sqliteEncoder) CreateIndexes(table string, cols []*column.Column) []string {
	escapedTable := d.FormatField(table)
	statements := make([]string, 0, len(cols))
	for _, c := range cols {
		if c.IndexType == "" {
			continue
		}
		unique := ""
		if c.IndexType == "unique" {
			unique = "UNIQUE "
		}
		statements = append(statements, "CREATE "+unique+"INDEX IF NOT EXISTS "+
			table+"_"+c.Name+"_index ON "+escapedTable+" ("+c.Name+");")
	}
	return statements
}

func (d *sqliteEncoder) EncodeValue(c *column.Column, v value.Value) string {
	if literal, ok := encodeScalar(d, c, v); ok {
		return literal
	}
	if values, ok := value.AsArray(v); ok {
		return jsonArrayLiteral(d, c, values)
	}
	return encodeJSONString(v)
}

func (d *sqliteEncoder) FormatValue(c *column.Column, s string) string {
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
	case "DateTime":
		switch s {
		case "epoch":
			return "datetime(0, 'unixepoch')"
		case "now":
			return "datetime('now', 'localtime')"
		case "today":
			return "datetime('now', 'start of day')"
		case "tomorrow":
			return "datetime('now', 'start of day', '+1 day')"
		case "yesterday":
			return "datetime('now', 'start of day', '-1 day')"
		}
		return EscapeString(s)
	case "Date":
		switch s {
		case "epoch":
			return "'1970-01-01'"
		case "today":
			return "date('now', 'localtime')"
		case "tomorrow":
			return "date('now', '+1 day')"
		case "yesterday":
			return "date('now', '-1 day')"
		}
		return EscapeString(s)
	case "Time":
		switch s {
		case "now":
			return "time('now', 'localtime')"
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
		return EscapeString(s)
	}
}

func (d *sqliteEncoder) FormatFilter(c *column.Column, field string, v value.Value) string {
	if filter, ok := value.AsMap(v); ok {
		if c.IsMapType() {
			return d.mapEntriesFilter(c, filter)
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
		if values, ok := value.AsArray(v); ok {
			return bareArrayFilter(d, c, field, values)
		}
		return field + " = " + d.EncodeValue(c, v)
	}
}

// mapEntriesFilter matches object entries through the json_tree virtual
// table appended to the FROM clause.
func (d *sqliteEncoder) mapEntriesFilter(c *column.Column, filter *value.Map) string {
	conditions := make([]string, 0, filter.Len())
	for _, entry := range filter.Entries() {
		key := EscapeString(entry.Key)
		literal := d.EncodeValue(c, entry.Value)
		conditions = append(conditions, "json_tree.key = "+key+" AND json_tree.value = "+literal)
	}
	return joinConditions(conditions, " OR ")
}

// arrayFilter matches array elements through the json_each virtual table.
func (d *sqliteEncoder) arrayFilter(c *column.Column, field string, v value.Value) string {
	if s, ok := value.AsStr(v); ok {
		if s == "nonempty" {
			return "json_array_length(" + field + ") > 0"
		}
		items := strings.Split(s, ",")
		exprs := make([]string, len(items))
		for i, item := range items {
			exprs[i] = "json_each.value = " + EscapeString(item)
		}
		return "(" + strings.Join(exprs, " OR ") + ")"
	}
	if values, ok := value.AsArray(v); ok {
		exprs := make([]string, len(values))
		for i, item := range values {
			exprs[i] = "json_each.value = " + d.EncodeValue(c, item)
		}
		return "(" + strings.Join(exprs, " OR ") + ")"
	}
	return field + " = " + d.EncodeValue(c, v)
}

func (d *sqliteEncoder) fuzzyTerm(field, term string) string {
	return field + " LIKE " + EscapeString("%"+term+"%")
}

func (d *sqliteEncoder) datetimeSlice(field string, length int) (string, bool) {
	switch length {
	case 4:
		return "strftime('%Y', " + field + ")", true
	case 7:
		return "strftime('%Y-%m', " + field + ")", true
	case 10:
		return "strftime('%Y-%m-%d', " + field + ")", true
	}
	return "", false
}

func (d *sqliteEncoder) dateSlice(field string, length int) (string, bool) {
	switch length {
	case 4:
		return "strftime('%Y', " + field + ")", true
	case 7:
		return "strftime('%Y-%m', " + field + ")", true
	}
	return "", false
}

func (d *sqliteEncoder) timeSlice(field string, length int) (string, bool) {
	switch length {
	case 2:
		return "strftime('%H', " + field + ")", true
	case 5:
		return "strftime('%H:%M', " + field + ")", true
	case 8:
		return "strftime('%H:%M:%S', " + field + ")", true
	}
	return "", false
}

func (d *sqliteEncoder) caseInsensitiveLike(field, literal string) string {
	return "LOWER(" + field + ") LIKE LOWER(" + literal + ")"
}

func (d *sqliteEncoder) regexCondition(field, literal string) string {
	return field + " REGEXP " + literal
}

func (d *sqliteEncoder) sizeCondition(field string, length int64) string {
	return "json_array_length(" + field + ") = " + strconv.FormatInt(length, 10)
}

// random() yields a signed 64-bit integer, so the probability scales
// against its magnitude.
func (d *sqliteEncoder) RandomFilter(probability float64) string {
	threshold := int64(probability * float64(math.MaxInt64))
	return "abs(random()) < " + strconv.FormatInt(threshold, 10)
}

func (d *sqliteEncoder) ParseTextSearch(filter *value.Map) (string, bool) {
	fields, ok := filter.ParseStrArray("$fields")
	if !ok || len(fields) == 0 {
		return "", false
	}
	search, ok := filter.ParseString("$search")
	if !ok {
		return "", false
	}
	return strings.Join(fields, ", ") + " MATCH " + EscapeString(search), true
}

// VirtualTables appends json_each and json_tree sources for the array
// and map columns referenced by the filters.
func (d *sqliteEncoder) VirtualTables(modelName string, cols []*column.Column, filters *value.Map) []string {
	if filters == nil || filters.IsEmpty() {
		return nil
	}
	var tables []string
	for _, c := range cols {
		if !filters.Contains(c.Name) {
			continue
		}
		qualified := d.QuoteIdentifier(modelName) + "." + d.QuoteIdentifier(c.Name)
		switch {
		case c.IsArrayType():
			tables = append(tables, "json_each("+qualified+")")
		case c.IsMapType():
			tables = append(tables, "json_tree("+qualified+")")
		}
	}
	return tables
}

func (d *sqliteEncoder) OnConflictUpdate(pkField, mutations string) string {
	return "ON CONFLICT (" + pkField + ") DO UPDATE SET " + mutations
}

func (d *sqliteEncoder) SubqueryPredicate(sub string) string {
	return "(" + sub + ")"
}

func (d *sqliteEncoder) LeastFunc() string { return "min" }

func (d *sqliteEncoder) GreatestFunc() string { return "max" }
