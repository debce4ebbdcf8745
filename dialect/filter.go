package dialect

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/syssam/veldt/column"
	"github.com/syssam/veldt/value"
)

// operatorHooks covers the three filter operators whose rendering differs
// per dialect. Everything else in an operator map renders identically.
type operatorHooks interface {
	Encoder
	// caseInsensitiveLike renders the $ilike condition.
	caseInsensitiveLike(field, literal string) string
	// regexCondition renders the $rlike condition.
	regexCondition(field, literal string) string
	// sizeCondition renders the $size condition.
	sizeCondition(field string, length int64) string
}

// formatOperatorMap renders a `$op -> operand` map as AND-joined conditions.
// Unknown $-prefixed keys are skipped rather than spliced into the SQL.
func formatOperatorMap(d operatorHooks, c *column.Column, field string, filter *value.Map) string {
	conditions := make([]string, 0, filter.Len())
	for _, entry := range filter.Entries() {
		name, operand := entry.Key, entry.Value
		if sub, ok := subqueryOperand(operand); ok {
			if op, known := resolveOperator(name); known {
				conditions = append(conditions, field+" "+op+" "+sub)
			}
			continue
		}
		switch name {
		case "$in", "$nin":
			op, _ := filterOperator(name)
			values, ok := value.AsArray(operand)
			if !ok {
				if s, found := value.AsStr(operand); found {
					conditions = append(conditions, field+" "+op+" ("+escapeCommaList(s)+")")
				}
				continue
			}
			if len(values) == 0 {
				if name == "$in" {
					conditions = append(conditions, "FALSE")
				} else {
					conditions = append(conditions, "TRUE")
				}
				continue
			}
			conditions = append(conditions, field+" "+op+" ("+encodeList(d, c, values)+")")
		case "$betw":
			var minValue, maxValue string
			if values, ok := value.AsArray(operand); ok && len(values) == 2 {
				minValue = d.EncodeValue(c, values[0])
				maxValue = d.EncodeValue(c, values[1])
			} else if values, ok := value.ParseStrArray(operand); ok && len(values) == 2 {
				minValue = d.FormatValue(c, values[0])
				maxValue = d.FormatValue(c, values[1])
			} else {
				continue
			}
			conditions = append(conditions, "("+field+" BETWEEN "+minValue+" AND "+maxValue+")")
		case "$is":
			conditions = append(conditions, field+" IS "+renderIsOperand(d, c, operand))
		case "$ilike":
			conditions = append(conditions, d.caseInsensitiveLike(field, d.EncodeValue(c, operand)))
		case "$rlike":
			conditions = append(conditions, d.regexCondition(field, d.EncodeValue(c, operand)))
		case "$size":
			if length, ok := value.ParseI64(operand); ok {
				conditions = append(conditions, d.sizeCondition(field, length))
			}
		default:
			op, known := filterOperator(name)
			if !known {
				if strings.HasPrefix(name, "$") {
					continue
				}
				op = "="
			}
			conditions = append(conditions, field+" "+op+" "+encodeOperand(d, c, operand))
		}
	}
	return strings.Join(conditions, " AND ")
}

// resolveOperator maps every known operator key, including the three
// dialect-specific ones which still splice verbatim with a subquery operand.
func resolveOperator(name string) (string, bool) {
	if op, ok := filterOperator(name); ok {
		return op, true
	}
	if !strings.HasPrefix(name, "$") {
		return "=", true
	}
	return "", false
}

// subqueryOperand unwraps a `{"$subquery": "..."}` operand.
func subqueryOperand(v value.Value) (string, bool) {
	m, ok := value.AsMap(v)
	if !ok {
		return "", false
	}
	return m.GetStr("$subquery")
}

// encodeOperand encodes an operator's operand, routing strings through
// FormatValue so temporal keywords keep working inside comparisons.
func encodeOperand(e Encoder, c *column.Column, v value.Value) string {
	if s, ok := value.AsStr(v); ok {
		return e.FormatValue(c, s)
	}
	return e.EncodeValue(c, v)
}

// escapeCommaList escapes each comma-separated item as a string literal.
func escapeCommaList(s string) string {
	items := strings.Split(s, ",")
	for i, item := range items {
		items[i] = EscapeString(item)
	}
	return strings.Join(items, ", ")
}

// scalarPreamble handles the filter cases shared by every scalar type:
// JSON null, exact_filter columns, the null sentinels, and the half-open
// temporal range written as a comma pair.
func scalarPreamble(e Encoder, c *column.Column, field string, v value.Value) (string, bool) {
	if value.IsNull(v) {
		return field + " IS NULL", true
	}
	if c.ExactFilter() {
		return field + " = " + e.EncodeValue(c, v), true
	}
	s, ok := value.AsStr(v)
	if !ok {
		return "", false
	}
	switch s {
	case "null":
		return field + " IS NULL", true
	case "not_null":
		return field + " IS NOT NULL", true
	}
	if c.IsTemporalType() {
		if minValue, maxValue, found := strings.Cut(s, ","); found {
			lower := e.FormatValue(c, minValue)
			upper := e.FormatValue(c, maxValue)
			return field + " >= " + lower + " AND " + field + " < " + upper, true
		}
	}
	return "", false
}

// bareArrayFilter renders a plain array value against a scalar column:
// a two-element array means an inclusive range, anything else a membership
// test.
func bareArrayFilter(e Encoder, c *column.Column, field string, values []value.Value) string {
	if len(values) == 2 {
		lower := e.EncodeValue(c, values[0])
		upper := e.EncodeValue(c, values[1])
		return "(" + field + " BETWEEN " + lower + " AND " + upper + ")"
	}
	return field + " IN (" + encodeList(e, c, values) + ")"
}

// boolFilter renders equality on a boolean column with IS so that NULL
// rows match the negative side.
func boolFilter(e Encoder, c *column.Column, field string, v value.Value) string {
	if e.EncodeValue(c, v) == "TRUE" {
		return field + " IS TRUE"
	}
	return field + " IS NOT TRUE"
}

// intFilter renders equality on an integer column, honoring the nonzero
// sentinel and comma-separated membership lists.
func intFilter(e Encoder, c *column.Column, field string, v value.Value) string {
	s, ok := value.AsStr(v)
	if !ok {
		return field + " = " + e.EncodeValue(c, v)
	}
	if s == "nonzero" {
		return field + " <> 0"
	}
	if strings.Contains(s, ",") {
		items := strings.Split(s, ",")
		for i, item := range items {
			items[i] = signedLiteral(strings.TrimSpace(item))
		}
		return field + " IN (" + strings.Join(items, ",") + ")"
	}
	return field + " = " + e.FormatValue(c, s)
}

// stringFilter renders equality on a string column. The empty sentinels
// treat NULL and '' alike; fuzzy-search columns match each comma-separated
// term with the dialect's pattern condition; prefix splits a leading
// operator off the value.
func stringFilter(e Encoder, c *column.Column, field string, v value.Value, fuzzy func(field, term string) string, prefix func(s string) (string, string, bool)) string {
	s, ok := value.AsStr(v)
	if !ok {
		return field + " = " + e.EncodeValue(c, v)
	}
	switch s {
	case "empty":
		// either NULL or empty
		return "(" + field + " = '') IS NOT FALSE"
	case "nonempty":
		return "(" + field + " = '') IS FALSE"
	}
	if c.FuzzySearch() {
		if strings.Contains(s, ",") {
			terms := strings.Split(s, ",")
			exprs := make([]string, len(terms))
			for i, term := range terms {
				exprs[i] = fuzzy(field, term)
			}
			return "(" + strings.Join(exprs, " OR ") + ")"
		}
		return fuzzy(field, s)
	}
	if strings.Contains(s, ",") {
		return field + " IN (" + escapeCommaList(s) + ")"
	}
	if op, rhs, found := prefix(s); found {
		return field + " " + op + " " + EscapeString(rhs)
	}
	return field + " = " + EscapeString(s)
}

// temporalPrefixFilter matches a truncated date or time string against the
// column, using the dialect's slice expression for the recognized prefix
// lengths. The slice callback returns ok=false for lengths it cannot cut.
func temporalPrefixFilter(e Encoder, c *column.Column, field string, v value.Value, slice func(field string, length int) (string, bool)) string {
	s, ok := value.AsStr(v)
	if !ok {
		return field + " = " + e.EncodeValue(c, v)
	}
	literal := e.FormatValue(c, s)
	if lhs, found := slice(field, len(s)); found {
		return lhs + " = " + literal
	}
	return field + " = " + literal
}

// uuidFilter renders equality or membership on a UUID column.
func uuidFilter(e Encoder, c *column.Column, field string, v value.Value) string {
	s, ok := value.AsStr(v)
	if !ok {
		return field + " = " + e.EncodeValue(c, v)
	}
	if strings.Contains(s, ",") {
		items := strings.Split(s, ",")
		for i, item := range items {
			items[i] = e.FormatValue(c, item)
		}
		return field + " IN (" + strings.Join(items, ", ") + ")"
	}
	return field + " = " + e.FormatValue(c, s)
}

// columnField resolves the column's SQL name, honoring the column_name
// attribute, and quotes it.
func columnField(e Encoder, c *column.Column) string {
	name := c.Name
	if alias, ok := c.Extra.GetStr("column_name"); ok {
		name = alias
	}
	return e.FormatField(name)
}

// encodeScalar renders the scalar cases of EncodeValue shared by every
// dialect. It reports false for arrays and objects, which each dialect
// stores differently.
func encodeScalar(e Encoder, c *column.Column, v value.Value) (string, bool) {
	if value.IsNull(v) {
		if _, ok := c.DefaultValue(); ok {
			return "DEFAULT", true
		}
		return "NULL", true
	}
	if b, ok := value.AsBool(v); ok {
		if b {
			return "TRUE", true
		}
		return "FALSE", true
	}
	if s, ok := value.AsStr(v); ok {
		switch s {
		case "":
			if defaultValue, ok := c.DefaultValue(); ok {
				return e.FormatValue(c, defaultValue), true
			}
			return "''", true
		case "null":
			return "NULL", true
		case "not_null":
			return "NOT NULL", true
		}
		return e.FormatValue(c, s), true
	}
	if isNumber(v) {
		return encodeNumber(v), true
	}
	if _, ok := value.AsArray(v); ok {
		return "", false
	}
	if _, ok := value.AsMap(v); ok {
		return "", false
	}
	return encodeNumber(v), true
}

// isNumber reports whether the value is one of the numeric kinds the
// value model produces.
func isNumber(v value.Value) bool {
	switch v.(type) {
	case json.Number, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, decimal.Decimal:
		return true
	}
	return false
}

// jsonArrayLiteral renders an array value as a json_array(...) literal.
// String items are escaped; anything else is encoded recursively.
func jsonArrayLiteral(e Encoder, c *column.Column, values []value.Value) string {
	items := make([]string, len(values))
	for i, v := range values {
		if s, ok := value.AsStr(v); ok {
			items[i] = EscapeString(s)
		} else {
			items[i] = e.EncodeValue(c, v)
		}
	}
	return "json_array(" + strings.Join(items, ",") + ")"
}

// jsonArrayFromList renders a comma-separated string as a json_array(...)
// literal of escaped items.
func jsonArrayFromList(s string) string {
	items := strings.Split(s, ",")
	for i, item := range items {
		items[i] = EscapeString(item)
	}
	return "json_array(" + strings.Join(items, ",") + ")"
}

// unsignedLiteral, signedLiteral, and floatLiteral splice a numeric string
// only when it parses; everything else degrades to NULL so malformed
// input never reaches the statement.
func unsignedLiteral(s string) string {
	if _, err := strconv.ParseUint(s, 10, 64); err != nil {
		return "NULL"
	}
	return s
}

func signedLiteral(s string) string {
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return "NULL"
	}
	return s
}

func floatLiteral(s string) string {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return "NULL"
	}
	return s
}

// splitSemicolonGroups splits a semicolon-separated containment filter into
// per-group values with the semicolons restored to commas.
func splitSemicolonGroups(s string) []string {
	groups := strings.Split(s, ",")
	for i, group := range groups {
		groups[i] = strings.ReplaceAll(group, ";", ",")
	}
	return groups
}
