package dialect

import (
	"fmt"
	"strings"

	"github.com/syssam/veldt/column"
	"github.com/syssam/veldt/value"
)

// An Encoder renders column DDL, literals, and filter fragments for one
// dialect. Encoders are stateless; one instance is chosen at pool
// initialization and shared by every operation on that pool.
type Encoder interface {
	// Name returns the dialect name.
	Name() string
	// DriverName returns the database/sql driver name used by the dialect.
	DriverName() string

	// ColumnType maps the column's semantic type to its DDL type. An
	// extra "column_type" attribute overrides the mapping.
	ColumnType(c *column.Column) string
	// ColumnDefinition renders the full DDL fragment for the column.
	ColumnDefinition(c *column.Column) string
	// CreateIndexes renders idempotent index DDL for the table.
	CreateIndexes(table string, cols []*column.Column) []string

	// EncodeValue renders a typed value as a SQL literal. A nil value
	// renders as DEFAULT when the column declares a default, else NULL.
	EncodeValue(c *column.Column, v value.Value) string
	// FormatValue coerces a string form into a typed SQL literal,
	// honoring the dialect's temporal keywords.
	FormatValue(c *column.Column, s string) string
	// FormatFilter renders a per-column predicate.
	FormatFilter(c *column.Column, field string, v value.Value) string

	// QuoteIdentifier quotes a single identifier segment.
	QuoteIdentifier(name string) string
	// FormatField quotes an identifier, splitting dotted names so each
	// segment is quoted.
	FormatField(name string) string
	// Placeholder returns the n-th bound-parameter placeholder (1-based).
	Placeholder(n int) string

	// RandomFilter renders the `$rand` sampling condition.
	RandomFilter(probability float64) string
	// ParseTextSearch renders the `$text` full-text condition from its
	// $fields/$search (and $language) entries.
	ParseTextSearch(filter *value.Map) (string, bool)
	// VirtualTables returns FROM-clause appendages required by filters
	// on array- or map-typed columns. Only SQLite emits any.
	VirtualTables(modelName string, cols []*column.Column, filters *value.Map) []string

	// OnConflictUpdate renders the duplicate-key update clause of an upsert.
	OnConflictUpdate(pkField string, mutations string) string
	// SubqueryPredicate wraps a primary-key subquery used by single-row
	// UPDATE and DELETE statements.
	SubqueryPredicate(sub string) string
	// LeastFunc and GreatestFunc name the two-argument comparison functions.
	LeastFunc() string
	GreatestFunc() string
}

// New returns the encoder for the named dialect.
func New(name string) (Encoder, error) {
	switch name {
	case MySQL, MariaDB, TiDB:
		return &mysqlEncoder{flavor: name}, nil
	case Postgres:
		return &postgresEncoder{}, nil
	case SQLite:
		return &sqliteEncoder{}, nil
	default:
		return nil, fmt.Errorf("dialect: %q: %w", name, errUnknown)
	}
}

var errUnknown = fmt.Errorf("unknown dialect")

// quoteWith quotes a possibly dotted identifier with the given quote rune.
func quoteWith(field string, quote byte) string {
	q := string(quote)
	if strings.Contains(field, ".") {
		segments := strings.Split(field, ".")
		for i, s := range segments {
			segments[i] = q + s + q
		}
		return strings.Join(segments, ".")
	}
	return q + field + q
}

// joinConditions joins condition fragments, parenthesizing only when more
// than one survives.
func joinConditions(conditions []string, op string) string {
	switch len(conditions) {
	case 0:
		return ""
	case 1:
		return conditions[0]
	default:
		return "(" + strings.Join(conditions, op) + ")"
	}
}

// comparisonPrefix splits a leading comparison operator off a scalar string.
func comparisonPrefix(s string) (op, rhs string, ok bool) {
	for _, prefix := range []string{"<=", ">=", "<>", "<", ">"} {
		if rest, found := strings.CutPrefix(s, prefix); found {
			return prefix, strings.TrimSpace(rest), true
		}
	}
	return "", "", false
}

// filterOperator maps a reserved $op key to its SQL operator. The three
// dialect-specific keys are resolved by the caller.
func filterOperator(name string) (string, bool) {
	switch name {
	case "$eq":
		return "=", true
	case "$ne":
		return "<>", true
	case "$lt":
		return "<", true
	case "$le":
		return "<=", true
	case "$gt":
		return ">", true
	case "$ge":
		return ">=", true
	case "$in":
		return "IN", true
	case "$nin":
		return "NOT IN", true
	case "$betw":
		return "BETWEEN", true
	case "$like":
		return "LIKE", true
	case "$is":
		return "IS", true
	}
	return "", false
}

// encodeNumber renders any numeric value textually.
func encodeNumber(v value.Value) string {
	return value.ToStringUnquoted(v)
}

// encodeJSONString renders a value's compact JSON form as a quoted literal.
func encodeJSONString(v value.Value) string {
	return EscapeString(value.ToStringUnquoted(v))
}

// renderIsOperand renders the operand of an IS comparison, honoring the
// null sentinels.
func renderIsOperand(e Encoder, c *column.Column, v value.Value) string {
	if s, ok := value.AsStr(v); ok {
		switch s {
		case "null":
			return "NULL"
		case "not_null":
			return "NOT NULL"
		}
		return e.FormatValue(c, s)
	}
	return e.EncodeValue(c, v)
}

// encodeList renders a comma-joined literal list for IN / NOT IN.
func encodeList(e Encoder, c *column.Column, values []value.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = e.EncodeValue(c, v)
	}
	return strings.Join(parts, ", ")
}
