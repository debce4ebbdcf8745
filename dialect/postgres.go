package dialect

import (
	"slices"
	"strconv"
	"strings"

	"github.com/syssam/veldt/column"
	"github.com/syssam/veldt/value"
)

// postgresEncoder renders SQL for PostgreSQL. Arrays use native array
// types, maps use jsonb, and placeholders are numbered.
type postgresEncoder struct{}

func (d *postgresEncoder) Name() string { return Postgres }

func (d *postgresEncoder) DriverName() string { return "postgres" }

func (d *postgresEncoder) QuoteIdentifier(name string) string {
	return `"` + name + `"`
}

func (d *postgresEncoder) FormatField(name string) string {
	return quoteWith(name, '"')
}

func (d *postgresEncoder) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func (d *postgresEncoder) ColumnType(c *column.Column) string {
	if columnType, ok := c.Extra.GetStr("column_type"); ok {
		return columnType
	}
	switch c.BaseType() {
	case "bool":
		return "BOOLEAN"
	case "u64", "i64", "usize", "isize":
		if c.AutoIncrement() {
			return "BIGSERIAL"
		}
		return "BIGINT"
	case "u32", "i32":
		if c.AutoIncrement() {
			return "SERIAL"
		}
		return "INT"
	case "u16", "i16", "u8", "i8":
		if c.AutoIncrement() {
			return "SMALLSERIAL"
		}
		return "SMALLINT"
	case "f64":
		return "DOUBLE PRECISION"
	case "f32":
		return "REAL"
	case "Decimal":
		return "NUMERIC"
	case "Date":
		return "DATE"
	case "Time":
		return "TIME"
	case "DateTime":
		if c.HasAttribute("without_timezone") {
			return "TIMESTAMP"
		}
		return "TIMESTAMPTZ"
	case "Uuid":
		return "UUID"
	case "Vec<u8>":
		return "BYTEA"
	case "Vec<String>":
		return "TEXT[]"
	case "Vec<Uuid>":
		return "UUID[]"
	case "Vec<u64>", "Vec<i64>":
		return "BIGINT[]"
	case "Vec<u32>", "Vec<i32>":
		return "INT[]"
	case "Map":
		return "JSONB"
	default:
		if c.IsArrayType() {
			return "TEXT[]"
		}
		return "TEXT"
	}
}

func (d *postgresEncoder) ColumnDefinition(c *column.Column) string {
	definition := columnField(d, c) + " " + d.ColumnType(c)
	if c.IsPrimaryKey() {
		definition += " PRIMARY KEY"
	}
	switch {
	case c.AutoIncrement(), c.AutoRandom():
		// serial types generate the key
	default:
		if defaultValue, ok := c.DefaultValue(); ok {
			definition += " DEFAULT " + d.FormatValue(c, defaultValue)
		} else if c.NotNull {
			definition += " NOT NULL"
		}
	}
	return definition
}

func (d *postgresEncoder) CreateIndexes(table string, cols []*column.Column) []string {
	escapedTable := d.FormatField(table)
	statements := make([]string, 0, len(cols))
	type textColumn struct {
		language string
		expr     string
	}
	var textColumns []textColumn
	var languages []string
	for _, c := range cols {
		switch {
		case c.IndexType == "":
		case strings.HasPrefix(c.IndexType, "text"):
			language := "english"
			if lang, ok := strings.CutPrefix(c.IndexType, "text:"); ok {
				language = lang
			}
			if !slices.Contains(languages, language) {
				languages = append(languages, language)
			}
			textColumns = append(textColumns, textColumn{language, "coalesce(" + c.Name + ", '')"})
		case c.IndexType == "unique":
			statements = append(statements, "CREATE UNIQUE INDEX IF NOT EXISTS "+
				table+"_"+c.Name+"_index ON "+escapedTable+" ("+c.Name+");")
		default:
			sortOrder := ""
			if c.IndexType == "btree" {
				sortOrder = " DESC"
			}
			statements = append(statements, "CREATE INDEX IF NOT EXISTS "+
				table+"_"+c.Name+"_index ON "+escapedTable+" USING "+c.IndexType+"("+c.Name+sortOrder+");")
		}
	}
	for _, language := range languages {
		var exprs []string
		for _, tc := range textColumns {
			if tc.language == language {
				exprs = append(exprs, tc.expr)
			}
		}
		vector := "to_tsvector('" + language + "', " + strings.Join(exprs, " || ' ' || ") + ")"
		statements = append(statements, "CREATE INDEX IF NOT EXISTS "+
			table+"_text_search_"+language+"_index ON "+escapedTable+" USING gin("+vector+");")
	}
	return statements
}

func (d *postgresEncoder) EncodeValue(c *column.Column, v value.Value) string {
	if literal, ok := encodeScalar(d, c, v); ok {
		return literal
	}
	if values, ok := value.AsArray(v); ok {
		items := make([]string, len(values))
		for i, item := range values {
			if s, ok := value.AsStr(item); ok {
				items[i] = EscapeString(s)
			} else {
				items[i] = d.EncodeValue(c, item)
			}
		}
		return "ARRAY[" + strings.Join(items, ",") + "]::" + d.ColumnType(c)
	}
	return encodeJSONString(v) + "::" + d.ColumnType(c)
}

func (d *postgresEncoder) FormatValue(c *column.Column, s string) string {
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
			return "'epoch'"
		case "now":
			return "now()"
		case "today":
			return "date_trunc('day', now())"
		case "tomorrow":
			return "date_trunc('day', now()) + '1 day'::INTERVAL"
		case "yesterday":
			return "date_trunc('day', now()) - '1 day'::INTERVAL"
		}
		return EscapeString(s)
	case "Date":
		switch s {
		case "epoch":
			return "'epoch'"
		case "today":
			return "current_date"
		case "tomorrow":
			return "current_date + 1"
		case "yesterday":
			return "current_date - 1"
		}
		return EscapeString(s)
	case "Time":
		switch s {
		case "now":
			return "current_time"
		case "midnight":
			return "'allballs'"
		}
		return EscapeString(s)
	case "Uuid":
		return "'" + s + "'::uuid"
	case "Vec<u8>":
		return `'\x` + s + "'"
	case "Map":
		return EscapeString(s) + "::jsonb"
	default:
		if c.IsArrayType() {
			items := strings.Split(s, ",")
			for i, item := range items {
				items[i] = EscapeString(item)
			}
			return "ARRAY[" + strings.Join(items, ",") + "]::" + d.ColumnType(c)
		}
		return EscapeString(s)
	}
}

func (d *postgresEncoder) FormatFilter(c *column.Column, field string, v value.Value) string {
	if filter, ok := value.AsMap(v); ok {
		if c.IsMapType() {
			return field + " @> " + d.EncodeValue(c, v)
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
		return stringFilter(d, c, field, v, d.fuzzyTerm, pgStringPrefix)
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
			if s, ok := value.AsStr(v); ok {
				// JSON path operator, Postgres 12+
				return field + " @? " + EscapeString(s)
			}
			return field + " @> " + d.EncodeValue(c, v)
		}
		if values, ok := value.AsArray(v); ok {
			return bareArrayFilter(d, c, field, values)
		}
		return field + " = " + d.EncodeValue(c, v)
	}
}

func (d *postgresEncoder) arrayFilter(c *column.Column, field string, v value.Value) string {
	s, ok := value.AsStr(v)
	if !ok {
		return field + " && " + d.EncodeValue(c, v)
	}
	if s == "nonempty" {
		return "array_length(" + field + ", 1) > 0"
	}
	if strings.Contains(s, ";") {
		groups := splitSemicolonGroups(s)
		exprs := make([]string, len(groups))
		for i, group := range groups {
			exprs[i] = field + " @> " + d.FormatValue(c, group)
		}
		return joinConditions(exprs, " OR ")
	}
	return field + " && " + d.FormatValue(c, s)
}

func (d *postgresEncoder) fuzzyTerm(field, term string) string {
	return field + " ~* " + EscapeString(term)
}

// pgStringPrefix also recognizes the regex comparison operators.
func pgStringPrefix(s string) (string, string, bool) {
	index := strings.IndexFunc(s, func(r rune) bool {
		return !strings.ContainsRune("!~*", r)
	})
	if index > 0 {
		return s[:index], strings.TrimSpace(s[index:]), true
	}
	return comparisonPrefix(s)
}

func (d *postgresEncoder) datetimeSlice(field string, length int) (string, bool) {
	switch length {
	case 4:
		return "to_char(" + field + ", 'YYYY')", true
	case 7:
		return "to_char(" + field + ", 'YYYY-MM')", true
	case 10:
		return "to_char(" + field + ", 'YYYY-MM-DD')", true
	}
	return "", false
}

func (d *postgresEncoder) dateSlice(field string, length int) (string, bool) {
	switch length {
	case 4:
		return "to_char(" + field + ", 'YYYY')", true
	case 7:
		return "to_char(" + field + ", 'YYYY-MM')", true
	}
	return "", false
}

func (d *postgresEncoder) timeSlice(field string, length int) (string, bool) {
	switch length {
	case 2:
		return "to_char(" + field + ", 'HH24')", true
	case 5:
		return "to_char(" + field + ", 'HH24:MI')", true
	case 8:
		return "to_char(" + field + ", 'HH24:MI:SS')", true
	}
	return "", false
}

func (d *postgresEncoder) caseInsensitiveLike(field, literal string) string {
	return field + " ILIKE " + literal
}

func (d *postgresEncoder) regexCondition(field, literal string) string {
	return field + " ~* " + literal
}

func (d *postgresEncoder) sizeCondition(field string, length int64) string {
	return "array_length(" + field + ", 1) = " + strconv.FormatInt(length, 10)
}

func (d *postgresEncoder) RandomFilter(probability float64) string {
	return "random() < " + strconv.FormatFloat(probability, 'f', -1, 64)
}

func (d *postgresEncoder) ParseTextSearch(filter *value.Map) (string, bool) {
	fields, ok := filter.ParseStrArray("$fields")
	if !ok || len(fields) == 0 {
		return "", false
	}
	search, ok := filter.ParseString("$search")
	if !ok {
		return "", false
	}
	language := "english"
	if lang, ok := filter.ParseString("$language"); ok && isSearchConfig(lang) {
		language = lang
	}
	text := strings.Join(fields, " || ' ' || ")
	return "to_tsvector('" + language + "', " + text + ") @@ websearch_to_tsquery('" + language + "', " +
		EscapeString(search) + ")", true
}

// isSearchConfig reports whether s is a plain regconfig name. Anything else
// would have to be quoted into to_tsvector, so it is rejected instead.
func isSearchConfig(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && r != '_' {
			return false
		}
	}
	return true
}

func (d *postgresEncoder) VirtualTables(string, []*column.Column, *value.Map) []string {
	return nil
}

func (d *postgresEncoder) OnConflictUpdate(pkField, mutations string) string {
	return "ON CONFLICT (" + pkField + ") DO UPDATE SET " + mutations
}

func (d *postgresEncoder) SubqueryPredicate(sub string) string {
	return "(" + sub + ")"
}

func (d *postgresEncoder) LeastFunc() string { return "least" }

func (d *postgresEncoder) GreatestFunc() string { return "greatest" }
