package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/veldt/column"
	"github.com/syssam/veldt/dialect"
	"github.com/syssam/veldt/value"
)

// FormatProjection renders the projection list without table
// qualification. An `alias:expr` field renders as `expr AS "alias"`.
func (q *Query) FormatProjection(enc dialect.Encoder) string {
	if len(q.fields) == 0 {
		return "*"
	}
	fields := make([]string, 0, len(q.fields))
	for _, field := range q.fields {
		if alias, expr, ok := strings.Cut(field, ":"); ok {
			fields = append(fields, expr+" AS "+enc.FormatField(strings.TrimSpace(alias)))
		} else {
			fields = append(fields, enc.FormatField(field))
		}
	}
	return strings.Join(fields, ", ")
}

// FormatTableFields renders the projection list with bare fields
// qualified by the model name.
func (q *Query) FormatTableFields(m Entity, enc dialect.Encoder) string {
	if len(q.fields) == 0 {
		return "*"
	}
	modelName := m.ModelName()
	fields := make([]string, 0, len(q.fields))
	for _, field := range q.fields {
		switch {
		case strings.Contains(field, ":"):
			alias, expr, _ := strings.Cut(field, ":")
			fields = append(fields, expr+" AS "+enc.FormatField(strings.TrimSpace(alias)))
		case strings.ContainsAny(field, "`\""):
			fields = append(fields, field)
		case strings.Contains(field, "."):
			fields = append(fields, enc.FormatField(field))
		default:
			fields = append(fields, enc.FormatField(modelName+"."+field))
		}
	}
	return strings.Join(fields, ", ")
}

// FormatTableName renders the FROM clause: the table aliased by the
// model name, plus any virtual tables the filters require. A
// `table_name` extra flag overrides the entity's table.
func (q *Query) FormatTableName(m Entity, enc dialect.Encoder) string {
	tableName, ok := q.extra.GetStr("table_name")
	if !ok {
		tableName = m.TableName()
	}
	from := enc.FormatField(tableName) + " AS " + enc.QuoteIdentifier(m.ModelName())
	if virtual := enc.VirtualTables(m.ModelName(), m.Columns(), q.filters); len(virtual) > 0 {
		from += ", " + strings.Join(virtual, ", ")
	}
	return from
}

// FormatFilters renders the WHERE clause, and the GROUP BY / HAVING
// clauses when the `$group` and `$having` reserved keys are present.
// The result is empty when no condition survives.
func (q *Query) FormatFilters(m Entity, enc dialect.Encoder) string {
	filters := q.filters
	if filters.IsEmpty() {
		return ""
	}
	var expression string
	conditions := make([]string, 0, filters.Len())
	for _, entry := range filters.Entries() {
		if condition := formatFilterEntry(m, enc, entry.Key, entry.Value); condition != "" {
			conditions = append(conditions, condition)
		}
	}
	if len(conditions) > 0 {
		expression = "WHERE " + strings.Join(conditions, " AND ")
	}
	if groups, ok := filters.ParseStrArray("$group"); ok && len(groups) > 0 {
		fields := make([]string, 0, len(groups))
		for _, group := range groups {
			fields = append(fields, enc.FormatField(group))
		}
		expression += " GROUP BY " + strings.Join(fields, ", ")
		if having, ok := filters.GetArray("$having"); ok {
			expression += " HAVING " + formatLogicalFilters(m, enc, having, " AND ")
		}
	}
	return strings.TrimSpace(expression)
}

// formatFilterEntry renders one top-level filter entry. Reserved keys
// dispatch to the logical, sampling, and text-search forms; the rest
// resolve against the entity's columns or a dotted JSON path.
func formatFilterEntry(m Entity, enc dialect.Encoder, key string, v value.Value) string {
	switch key {
	case "$group", "$having":
		return ""
	case "$and":
		if filters, ok := value.AsArray(v); ok {
			return formatLogicalFilters(m, enc, filters, " AND ")
		}
	case "$not":
		if filters, ok := value.AsArray(v); ok {
			return "(NOT " + formatLogicalFilters(m, enc, filters, " AND ") + ")"
		}
	case "$nor":
		if filters, ok := value.AsArray(v); ok {
			return "(NOT " + formatLogicalFilters(m, enc, filters, " OR ") + ")"
		}
	case "$or":
		if filters, ok := value.AsArray(v); ok {
			return formatLogicalFilters(m, enc, filters, " OR ")
		}
	case "$rand":
		if probability, ok := value.ParseF64(v); ok {
			return enc.RandomFilter(probability)
		}
	case "$text":
		if filter, ok := value.AsMap(v); ok {
			if condition, ok := enc.ParseTextSearch(filter); ok {
				return condition
			}
		}
	default:
		if col := getColumn(m, key); col != nil {
			field := enc.FormatField(m.ModelName() + "." + col.Name)
			if sub, ok := subqueryFilter(v); ok {
				return field + " = " + sub
			}
			return enc.FormatFilter(col, field, v)
		}
		if strings.ContainsAny(key, "(`\"") || strings.Contains(key, ".") {
			return formatPathFilter(m, enc, key, v)
		}
	}
	return ""
}

// formatLogicalFilters renders a list of filter objects joined by a
// logical operator. Each object's own entries are AND-ed together.
func formatLogicalFilters(m Entity, enc dialect.Encoder, filters []value.Value, operator string) string {
	conditions := make([]string, 0, len(filters))
	for _, item := range filters {
		filter, ok := value.AsMap(item)
		if !ok {
			continue
		}
		inner := make([]string, 0, filter.Len())
		for _, entry := range filter.Entries() {
			if condition := formatFilterEntry(m, enc, entry.Key, entry.Value); condition != "" {
				inner = append(inner, condition)
			}
		}
		if len(inner) > 0 {
			conditions = append(conditions, joinConditions(inner, " AND "))
		}
	}
	return joinConditions(conditions, operator)
}

// formatPathFilter renders a filter on a key that does not name a
// column directly. When the head of a dotted key names a map column,
// the tail becomes a JSON path lookup; a key carrying quotes or
// parentheses is a pre-rendered expression and passes verbatim;
// anything else is treated as a qualified field.
func formatPathFilter(m Entity, enc dialect.Encoder, key string, v value.Value) string {
	var field string
	jsonPath := false
	if strings.ContainsAny(key, "(`\"") {
		field = key
	} else if head, path, ok := strings.Cut(key, "."); ok {
		if col := getColumn(m, head); col != nil && col.IsMapType() {
			inner := enc.FormatField(m.ModelName() + "." + col.Name)
			if enc.Name() == dialect.Postgres {
				field = "(" + inner + " #> '{" + strings.ReplaceAll(path, ".", ", ") + "}')"
			} else {
				field = "json_extract(" + inner + ", '$." + path + "')"
			}
			jsonPath = true
		}
	}
	if field == "" {
		field = enc.FormatField(key)
	}
	if filter, ok := value.AsMap(v); ok {
		conditions := make([]string, 0, filter.Len())
		for _, entry := range filter.Entries() {
			operator := pathOperator(entry.Key)
			var condition string
			switch {
			case entry.Key == "$in" || entry.Key == "$nin":
				if values, ok := value.AsArray(entry.Value); ok {
					items := make([]string, 0, len(values))
					for _, item := range values {
						items = append(items, pathOperand(item))
					}
					condition = field + " " + operator + " (" + strings.Join(items, ", ") + ")"
				} else if sub, ok := value.AsStr(entry.Value); ok {
					// A string operand is a rendered subquery.
					condition = field + " " + operator + " " + sub
				}
			default:
				if sub, ok := subqueryFilter(entry.Value); ok {
					condition = field + " " + operator + " " + sub
				} else if s, ok := value.AsStr(entry.Value); ok && entry.Key == "$subquery" {
					condition = field + " " + operator + " " + s
				} else if jsonPath {
					condition = formatJSONFilter(enc, field, operator, entry.Value)
				} else {
					condition = field + " " + operator + " " + pathOperand(entry.Value)
				}
			}
			if condition != "" {
				conditions = append(conditions, condition)
			}
		}
		return joinConditions(conditions, " AND ")
	}
	if jsonPath {
		return formatJSONFilter(enc, field, "=", v)
	}
	return field + " = " + pathOperand(v)
}

// formatJSONFilter renders a comparison against a JSON path value.
// Postgres compares the jsonb text form, so scalars stay quoted there.
func formatJSONFilter(enc dialect.Encoder, field, operator string, v value.Value) string {
	postgres := enc.Name() == dialect.Postgres
	if value.IsNull(v) {
		return field + " IS NULL"
	}
	if b, ok := value.AsBool(v); ok {
		keyword := "FALSE"
		if b {
			keyword = "TRUE"
		}
		if postgres {
			return "(" + field + ")::boolean IS " + keyword
		}
		return field + " = " + keyword
	}
	if s, ok := value.AsStr(v); ok {
		switch s {
		case "null":
			return field + " IS NULL"
		case "not_null":
			return field + " IS NOT NULL"
		case "true", "false":
			if postgres {
				return "(" + field + ")::boolean IS " + s
			}
			return field + " = " + s
		}
		if isNumericLiteral(s) {
			if postgres {
				return field + " " + operator + " '" + s + "'"
			}
			return field + " " + operator + " " + s
		}
		return field + " " + operator + " " + dialect.EscapeString(s)
	}
	if numeric := value.ToStringUnquoted(v); isNumericLiteral(numeric) {
		if postgres {
			return field + " " + operator + " '" + numeric + "'"
		}
		return field + " " + operator + " " + numeric
	}
	return field + " " + operator + " " + dialect.EscapeString(value.ToStringUnquoted(v))
}

// FormatSort renders the ORDER BY clause.
func (q *Query) FormatSort(enc dialect.Encoder) string {
	if len(q.orders) == 0 {
		return ""
	}
	entries := make([]string, 0, len(q.orders))
	for _, order := range q.orders {
		expr := enc.FormatField(order.Field())
		if order.Descending() {
			expr += " DESC"
		} else {
			expr += " ASC"
		}
		if order.NullsFirst() {
			expr += " NULLS FIRST"
		} else if order.NullsLast() {
			expr += " NULLS LAST"
		}
		entries = append(entries, expr)
	}
	return "ORDER BY " + strings.Join(entries, ", ")
}

// FormatPagination renders the LIMIT / OFFSET clause. A zero or
// max-int limit disables pagination.
func (q *Query) FormatPagination() string {
	if q.limit == 0 || q.limit == int(^uint(0)>>1) {
		return ""
	}
	return fmt.Sprintf("LIMIT %d OFFSET %d", q.limit, q.offset)
}

// FormatUpdates renders the SET expression of a mutation. Arithmetic
// operators read the current column value; `$min`/`$max` clamp with the
// dialect's comparison functions.
func (m *Mutation) FormatUpdates(e Entity, enc dialect.Encoder) string {
	if m.updates.IsEmpty() {
		return ""
	}
	permissive := len(m.fields) == 0
	editable := func(key string) bool {
		if permissive {
			return true
		}
		for _, field := range m.fields {
			if field == key {
				return true
			}
		}
		return false
	}
	var mutations []string
	appendOps := func(v value.Value, render func(field, literal string, col *column.Column) string) {
		ops, ok := value.AsMap(v)
		if !ok {
			return
		}
		for _, op := range ops.Entries() {
			if !editable(op.Key) {
				continue
			}
			col := getWritableColumn(e, op.Key)
			if col == nil {
				continue
			}
			field := enc.FormatField(op.Key)
			mutations = append(mutations, render(field, enc.EncodeValue(col, op.Value), col))
		}
	}
	for _, entry := range m.updates.Entries() {
		switch entry.Key {
		case "$inc":
			appendOps(entry.Value, func(field, literal string, _ *column.Column) string {
				return field + " = " + literal + " + " + field
			})
		case "$mul":
			appendOps(entry.Value, func(field, literal string, _ *column.Column) string {
				return field + " = " + literal + " * " + field
			})
		case "$min":
			appendOps(entry.Value, func(field, literal string, _ *column.Column) string {
				return field + " = " + enc.LeastFunc() + "(" + literal + ", " + field + ")"
			})
		case "$max":
			appendOps(entry.Value, func(field, literal string, _ *column.Column) string {
				return field + " = " + enc.GreatestFunc() + "(" + literal + ", " + field + ")"
			})
		default:
			if !editable(entry.Key) {
				continue
			}
			col := getWritableColumn(e, entry.Key)
			if col == nil {
				continue
			}
			field := enc.FormatField(entry.Key)
			if sub, ok := subqueryFilter(entry.Value); ok {
				mutations = append(mutations, field+" = "+sub)
			} else {
				mutations = append(mutations, field+" = "+enc.EncodeValue(col, entry.Value))
			}
		}
	}
	return strings.Join(mutations, ", ")
}

// getColumn resolves a possibly model-qualified key to a column.
func getColumn(m Entity, key string) *column.Column {
	if name, field, ok := strings.Cut(key, "."); ok {
		if name != m.ModelName() && name != m.TableName() {
			return nil
		}
		key = field
	}
	return m.GetColumn(key)
}

// getWritableColumn resolves a key to a column that mutations may set.
func getWritableColumn(m Entity, key string) *column.Column {
	col := getColumn(m, key)
	if col == nil || col.IsReadOnly() {
		return nil
	}
	return col
}

// subqueryFilter extracts a `$subquery` operand.
func subqueryFilter(v value.Value) (string, bool) {
	if m, ok := value.AsMap(v); ok {
		return m.GetStr("$subquery")
	}
	return "", false
}

// isNumericLiteral reports whether s parses as a number and may be
// spliced into SQL without quoting.
func isNumericLiteral(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// pathOperator maps a `$`-operator to its comparison for path filters.
func pathOperator(name string) string {
	switch name {
	case "$ne":
		return "<>"
	case "$lt":
		return "<"
	case "$le":
		return "<="
	case "$gt":
		return ">"
	case "$ge":
		return ">="
	case "$in":
		return "IN"
	case "$nin":
		return "NOT IN"
	default:
		return "="
	}
}

// pathOperand renders a filter operand for a qualified-field path.
func pathOperand(v value.Value) string {
	if s, ok := value.AsStr(v); ok {
		return dialect.EscapeString(s)
	}
	return value.ToStringUnquoted(v)
}

// joinConditions joins conditions, parenthesizing compound groups.
func joinConditions(conditions []string, operator string) string {
	switch len(conditions) {
	case 0:
		return ""
	case 1:
		return conditions[0]
	default:
		return "(" + strings.Join(conditions, operator) + ")"
	}
}
