package query

import (
	"strings"

	"github.com/syssam/veldt/dialect"
	"github.com/syssam/veldt/value"
)

// Builder composes a Query from typed predicates. The type parameter
// is the generated column name type of the entity, so misspelled
// columns fail at compile time. Conditions accumulate in two groups:
// the AND group and the OR group; Build folds them into the reserved
// `$and` and `$or` filter keys.
type Builder[C ~string] struct {
	entity     Entity
	encoder    dialect.Encoder
	fields     []string
	groupBy    []string
	having     []value.Value
	logicalAnd []value.Value
	logicalOr  []value.Value
	orders     []Order
	offset     int
	limit      int
	extra      *value.Map
}

// Condition is the merge surface a builder exposes to builders of
// other entities. All builders in this package implement it.
type Condition interface {
	conditionFilters() []value.Value
	selectedFields() []string
	groupedFields() []string
}

// Subquery renders as a parenthesized SELECT statement.
type Subquery interface {
	BuildSubquery() string
}

// NewBuilder returns a builder for the entity using the dialect
// encoder the caller resolved at pool setup.
func NewBuilder[C ~string](m Entity, enc dialect.Encoder) *Builder[C] {
	return &Builder[C]{
		entity:  m,
		encoder: enc,
		limit:   DefaultLimit,
		extra:   value.NewMap(),
	}
}

// TableName overrides the table the query reads from.
func (b *Builder[C]) TableName(name string) *Builder[C] {
	b.extra.Upsert("table_name", name)
	return b
}

// Alias projects a column under another name.
func (b *Builder[C]) Alias(col C, alias string) *Builder[C] {
	b.fields = append(b.fields, alias+":"+string(col))
	return b
}

// Field adds a column to the projection.
func (b *Builder[C]) Field(col C) *Builder[C] {
	b.fields = append(b.fields, string(col))
	return b
}

// Fields adds columns to the projection.
func (b *Builder[C]) Fields(cols ...C) *Builder[C] {
	for _, col := range cols {
		b.fields = append(b.fields, string(col))
	}
	return b
}

// Aggregate projects an aggregate expression. An empty alias falls
// back to the aggregation's default alias.
func (b *Builder[C]) Aggregate(agg Aggregation[C], alias string) *Builder[C] {
	if alias == "" {
		alias = agg.DefaultAlias()
	}
	b.fields = append(b.fields, alias+":"+agg.Expr(b.encoder))
	return b
}

// Window projects a window function expression. An empty alias falls
// back to the window's default alias.
func (b *Builder[C]) Window(w Window[C], alias string) *Builder[C] {
	if alias == "" {
		alias = w.DefaultAlias()
	}
	b.fields = append(b.fields, alias+":"+w.Expr(b.encoder))
	return b
}

// GroupBy adds grouping columns.
func (b *Builder[C]) GroupBy(cols ...C) *Builder[C] {
	for _, col := range cols {
		b.groupBy = append(b.groupBy, string(col))
	}
	return b
}

func (b *Builder[C]) pushHaving(agg Aggregation[C], operator string, v value.Value) *Builder[C] {
	condition := value.FromEntry(agg.Expr(b.encoder), value.FromEntry(operator, v))
	b.having = append(b.having, condition)
	return b
}

// HavingEq adds an equality condition on an aggregate.
func (b *Builder[C]) HavingEq(agg Aggregation[C], v value.Value) *Builder[C] {
	return b.pushHaving(agg, "$eq", v)
}

// HavingNe adds an inequality condition on an aggregate.
func (b *Builder[C]) HavingNe(agg Aggregation[C], v value.Value) *Builder[C] {
	return b.pushHaving(agg, "$ne", v)
}

// HavingLt adds a less-than condition on an aggregate.
func (b *Builder[C]) HavingLt(agg Aggregation[C], v value.Value) *Builder[C] {
	return b.pushHaving(agg, "$lt", v)
}

// HavingLe adds a less-than-or-equal condition on an aggregate.
func (b *Builder[C]) HavingLe(agg Aggregation[C], v value.Value) *Builder[C] {
	return b.pushHaving(agg, "$le", v)
}

// HavingGt adds a greater-than condition on an aggregate.
func (b *Builder[C]) HavingGt(agg Aggregation[C], v value.Value) *Builder[C] {
	return b.pushHaving(agg, "$gt", v)
}

// HavingGe adds a greater-than-or-equal condition on an aggregate.
func (b *Builder[C]) HavingGe(agg Aggregation[C], v value.Value) *Builder[C] {
	return b.pushHaving(agg, "$ge", v)
}

func (b *Builder[C]) conditionFilters() []value.Value {
	conditions := make([]value.Value, len(b.logicalAnd), len(b.logicalAnd)+1)
	copy(conditions, b.logicalAnd)
	if len(b.logicalOr) > 0 {
		conditions = append(conditions, value.FromEntry("$or", b.logicalOr))
	}
	return conditions
}

func (b *Builder[C]) selectedFields() []string { return b.fields }

func (b *Builder[C]) groupedFields() []string { return b.groupBy }

func (b *Builder[C]) merge(other Condition) {
	b.fields = append(b.fields, other.selectedFields()...)
	b.groupBy = append(b.groupBy, other.groupedFields()...)
}

// And nests another builder's conditions as one AND group.
func (b *Builder[C]) And(other Condition) *Builder[C] {
	b.logicalAnd = append(b.logicalAnd, value.FromEntry("$and", other.conditionFilters()))
	b.merge(other)
	return b
}

// AndNot nests the negation of another builder's conditions in the
// AND group.
func (b *Builder[C]) AndNot(other Condition) *Builder[C] {
	b.logicalAnd = append(b.logicalAnd, value.FromEntry("$not", other.conditionFilters()))
	b.merge(other)
	return b
}

// Or nests another builder's conditions as one branch of the OR group.
func (b *Builder[C]) Or(other Condition) *Builder[C] {
	b.logicalOr = append(b.logicalOr, value.FromEntry("$and", other.conditionFilters()))
	b.merge(other)
	return b
}

// OrNot nests the negation of another builder's conditions as one
// branch of the OR group.
func (b *Builder[C]) OrNot(other Condition) *Builder[C] {
	b.logicalOr = append(b.logicalOr, value.FromEntry("$not", other.conditionFilters()))
	b.merge(other)
	return b
}

func (b *Builder[C]) pushAnd(field string, condition value.Value) *Builder[C] {
	b.logicalAnd = append(b.logicalAnd, value.FromEntry(field, condition))
	return b
}

func (b *Builder[C]) pushOr(field string, condition value.Value) *Builder[C] {
	b.logicalOr = append(b.logicalOr, value.FromEntry(field, condition))
	return b
}

// AndFilter adds a raw column filter to the AND group.
func (b *Builder[C]) AndFilter(col C, v value.Value) *Builder[C] {
	return b.pushAnd(string(col), v)
}

// OrFilter adds a raw column filter to the OR group.
func (b *Builder[C]) OrFilter(col C, v value.Value) *Builder[C] {
	return b.pushOr(string(col), v)
}

// PrimaryKey constrains the entity's primary key.
func (b *Builder[C]) PrimaryKey(v value.Value) *Builder[C] {
	return b.pushAnd(b.entity.PrimaryKey(), value.FromEntry("$eq", v))
}

// Rand samples rows with the given probability.
func (b *Builder[C]) Rand(probability float64) *Builder[C] {
	return b.pushAnd("$rand", probability)
}

// AndEq adds an equality condition.
func (b *Builder[C]) AndEq(col C, v value.Value) *Builder[C] {
	return b.pushAnd(string(col), value.FromEntry("$eq", v))
}

// AndEqIfNotNull adds an equality condition unless the value is null.
func (b *Builder[C]) AndEqIfNotNull(col C, v value.Value) *Builder[C] {
	if value.IsNull(v) {
		return b
	}
	return b.AndEq(col, v)
}

// AndNe adds an inequality condition.
func (b *Builder[C]) AndNe(col C, v value.Value) *Builder[C] {
	return b.pushAnd(string(col), value.FromEntry("$ne", v))
}

// AndNeIfNotNull adds an inequality condition unless the value is null.
func (b *Builder[C]) AndNeIfNotNull(col C, v value.Value) *Builder[C] {
	if value.IsNull(v) {
		return b
	}
	return b.AndNe(col, v)
}

// AndLt adds a less-than condition.
func (b *Builder[C]) AndLt(col C, v value.Value) *Builder[C] {
	return b.pushAnd(string(col), value.FromEntry("$lt", v))
}

// AndLe adds a less-than-or-equal condition.
func (b *Builder[C]) AndLe(col C, v value.Value) *Builder[C] {
	return b.pushAnd(string(col), value.FromEntry("$le", v))
}

// AndGt adds a greater-than condition.
func (b *Builder[C]) AndGt(col C, v value.Value) *Builder[C] {
	return b.pushAnd(string(col), value.FromEntry("$gt", v))
}

// AndGe adds a greater-than-or-equal condition.
func (b *Builder[C]) AndGe(col C, v value.Value) *Builder[C] {
	return b.pushAnd(string(col), value.FromEntry("$ge", v))
}

// AndIn constrains a column to a set of values.
func (b *Builder[C]) AndIn(col C, values []value.Value) *Builder[C] {
	return b.pushAnd(string(col), value.FromEntry("$in", values))
}

// AndNotIn excludes a set of values.
func (b *Builder[C]) AndNotIn(col C, values []value.Value) *Builder[C] {
	return b.pushAnd(string(col), value.FromEntry("$nin", values))
}

// AndInRange constrains a column to the half-open range [min, max).
func (b *Builder[C]) AndInRange(col C, min, max value.Value) *Builder[C] {
	condition := value.NewMap()
	condition.Upsert("$ge", min)
	condition.Upsert("$lt", max)
	return b.pushAnd(string(col), condition)
}

// AndBetween constrains a column to the closed range [min, max].
func (b *Builder[C]) AndBetween(col C, min, max value.Value) *Builder[C] {
	return b.pushAnd(string(col), value.FromEntry("$betw", []value.Value{min, max}))
}

// AndLike adds a LIKE condition.
func (b *Builder[C]) AndLike(col C, pattern string) *Builder[C] {
	return b.pushAnd(string(col), value.FromEntry("$like", pattern))
}

// AndIlike adds a case-insensitive LIKE condition.
func (b *Builder[C]) AndIlike(col C, pattern string) *Builder[C] {
	return b.pushAnd(string(col), value.FromEntry("$ilike", pattern))
}

// AndRlike adds a regular-expression match condition.
func (b *Builder[C]) AndRlike(col C, pattern string) *Builder[C] {
	return b.pushAnd(string(col), value.FromEntry("$rlike", pattern))
}

// AndContains matches values containing the substring.
func (b *Builder[C]) AndContains(col C, s string) *Builder[C] {
	return b.AndLike(col, "%"+s+"%")
}

// AndStartsWith matches values starting with the prefix.
func (b *Builder[C]) AndStartsWith(col C, s string) *Builder[C] {
	return b.AndLike(col, s+"%")
}

// AndEndsWith matches values ending with the suffix.
func (b *Builder[C]) AndEndsWith(col C, s string) *Builder[C] {
	return b.AndLike(col, "%"+s)
}

// AndNull matches NULL values.
func (b *Builder[C]) AndNull(col C) *Builder[C] {
	return b.pushAnd(string(col), nil)
}

// AndNotNull matches non-NULL values.
func (b *Builder[C]) AndNotNull(col C) *Builder[C] {
	return b.pushAnd(string(col), "not_null")
}

// AndEmpty matches NULL or empty values.
func (b *Builder[C]) AndEmpty(col C) *Builder[C] {
	return b.pushAnd(string(col), "empty")
}

// AndNonempty matches non-NULL, nonempty values.
func (b *Builder[C]) AndNonempty(col C) *Builder[C] {
	return b.pushAnd(string(col), "nonempty")
}

// AndOverlaps matches rows whose [left, right] interval overlaps
// [min, max].
func (b *Builder[C]) AndOverlaps(left, right C, min, max value.Value) *Builder[C] {
	condition := value.NewMap()
	condition.Upsert(string(left), value.FromEntry("$le", max))
	condition.Upsert(string(right), value.FromEntry("$ge", min))
	b.logicalAnd = append(b.logicalAnd, condition)
	return b
}

// OrEq adds an equality condition to the OR group.
func (b *Builder[C]) OrEq(col C, v value.Value) *Builder[C] {
	return b.pushOr(string(col), value.FromEntry("$eq", v))
}

// OrEqIfNotNull adds an equality condition to the OR group unless the
// value is null.
func (b *Builder[C]) OrEqIfNotNull(col C, v value.Value) *Builder[C] {
	if value.IsNull(v) {
		return b
	}
	return b.OrEq(col, v)
}

// OrNe adds an inequality condition to the OR group.
func (b *Builder[C]) OrNe(col C, v value.Value) *Builder[C] {
	return b.pushOr(string(col), value.FromEntry("$ne", v))
}

// OrNeIfNotNull adds an inequality condition to the OR group unless
// the value is null.
func (b *Builder[C]) OrNeIfNotNull(col C, v value.Value) *Builder[C] {
	if value.IsNull(v) {
		return b
	}
	return b.OrNe(col, v)
}

// OrLt adds a less-than condition to the OR group.
func (b *Builder[C]) OrLt(col C, v value.Value) *Builder[C] {
	return b.pushOr(string(col), value.FromEntry("$lt", v))
}

// OrLe adds a less-than-or-equal condition to the OR group.
func (b *Builder[C]) OrLe(col C, v value.Value) *Builder[C] {
	return b.pushOr(string(col), value.FromEntry("$le", v))
}

// OrGt adds a greater-than condition to the OR group.
func (b *Builder[C]) OrGt(col C, v value.Value) *Builder[C] {
	return b.pushOr(string(col), value.FromEntry("$gt", v))
}

// OrGe adds a greater-than-or-equal condition to the OR group.
func (b *Builder[C]) OrGe(col C, v value.Value) *Builder[C] {
	return b.pushOr(string(col), value.FromEntry("$ge", v))
}

// OrIn constrains a column to a set of values in the OR group.
func (b *Builder[C]) OrIn(col C, values []value.Value) *Builder[C] {
	return b.pushOr(string(col), value.FromEntry("$in", values))
}

// OrNotIn excludes a set of values in the OR group.
func (b *Builder[C]) OrNotIn(col C, values []value.Value) *Builder[C] {
	return b.pushOr(string(col), value.FromEntry("$nin", values))
}

// OrInRange constrains a column to the half-open range [min, max) in
// the OR group.
func (b *Builder[C]) OrInRange(col C, min, max value.Value) *Builder[C] {
	condition := value.NewMap()
	condition.Upsert("$ge", min)
	condition.Upsert("$lt", max)
	return b.pushOr(string(col), condition)
}

// OrBetween constrains a column to the closed range [min, max] in the
// OR group.
func (b *Builder[C]) OrBetween(col C, min, max value.Value) *Builder[C] {
	return b.pushOr(string(col), value.FromEntry("$betw", []value.Value{min, max}))
}

// OrLike adds a LIKE condition to the OR group.
func (b *Builder[C]) OrLike(col C, pattern string) *Builder[C] {
	return b.pushOr(string(col), value.FromEntry("$like", pattern))
}

// OrIlike adds a case-insensitive LIKE condition to the OR group.
func (b *Builder[C]) OrIlike(col C, pattern string) *Builder[C] {
	return b.pushOr(string(col), value.FromEntry("$ilike", pattern))
}

// OrRlike adds a regular-expression match condition to the OR group.
func (b *Builder[C]) OrRlike(col C, pattern string) *Builder[C] {
	return b.pushOr(string(col), value.FromEntry("$rlike", pattern))
}

// OrContains matches values containing the substring in the OR group.
func (b *Builder[C]) OrContains(col C, s string) *Builder[C] {
	return b.OrLike(col, "%"+s+"%")
}

// OrStartsWith matches values starting with the prefix in the OR group.
func (b *Builder[C]) OrStartsWith(col C, s string) *Builder[C] {
	return b.OrLike(col, s+"%")
}

// OrEndsWith matches values ending with the suffix in the OR group.
func (b *Builder[C]) OrEndsWith(col C, s string) *Builder[C] {
	return b.OrLike(col, "%"+s)
}

// OrNull matches NULL values in the OR group.
func (b *Builder[C]) OrNull(col C) *Builder[C] {
	return b.pushOr(string(col), nil)
}

// OrNotNull matches non-NULL values in the OR group.
func (b *Builder[C]) OrNotNull(col C) *Builder[C] {
	return b.pushOr(string(col), "not_null")
}

// OrOverlaps matches rows whose [left, right] interval overlaps
// [min, max] in the OR group.
func (b *Builder[C]) OrOverlaps(left, right C, min, max value.Value) *Builder[C] {
	condition := value.NewMap()
	condition.Upsert(string(left), value.FromEntry("$le", max))
	condition.Upsert(string(right), value.FromEntry("$ge", min))
	b.logicalOr = append(b.logicalOr, condition)
	return b
}

func (b *Builder[C]) subqueryField(cols []C) string {
	fields := make([]string, 0, len(cols))
	for _, col := range cols {
		fields = append(fields, b.encoder.FormatField(b.entity.ModelName()+"."+string(col)))
	}
	return "(" + strings.Join(fields, ", ") + ")"
}

// AndInSubquery constrains columns to the rows of a subquery.
func (b *Builder[C]) AndInSubquery(cols []C, sub Subquery) *Builder[C] {
	return b.pushAnd(b.subqueryField(cols), value.FromEntry("$in", sub.BuildSubquery()))
}

// AndNotInSubquery excludes the rows of a subquery.
func (b *Builder[C]) AndNotInSubquery(cols []C, sub Subquery) *Builder[C] {
	return b.pushAnd(b.subqueryField(cols), value.FromEntry("$nin", sub.BuildSubquery()))
}

// OrInSubquery constrains columns to the rows of a subquery in the OR
// group.
func (b *Builder[C]) OrInSubquery(cols []C, sub Subquery) *Builder[C] {
	return b.pushOr(b.subqueryField(cols), value.FromEntry("$in", sub.BuildSubquery()))
}

// OrNotInSubquery excludes the rows of a subquery in the OR group.
func (b *Builder[C]) OrNotInSubquery(cols []C, sub Subquery) *Builder[C] {
	return b.pushOr(b.subqueryField(cols), value.FromEntry("$nin", sub.BuildSubquery()))
}

// OrderBy appends a sort order.
func (b *Builder[C]) OrderBy(col C, descending bool) *Builder[C] {
	b.orders = append(b.orders, NewOrder(string(col), descending))
	return b
}

// OrderByWithNulls appends a sort order with explicit NULL placement.
func (b *Builder[C]) OrderByWithNulls(col C, descending, nullsFirst bool) *Builder[C] {
	order := NewOrder(string(col), descending)
	if nullsFirst {
		order = order.WithNullsFirst()
	} else {
		order = order.WithNullsLast()
	}
	b.orders = append(b.orders, order)
	return b
}

// OrderAsc appends an ascending sort order.
func (b *Builder[C]) OrderAsc(col C) *Builder[C] {
	return b.OrderBy(col, false)
}

// OrderDesc appends a descending sort order.
func (b *Builder[C]) OrderDesc(col C) *Builder[C] {
	return b.OrderBy(col, true)
}

// Offset sets the number of rows to skip.
func (b *Builder[C]) Offset(n int) *Builder[C] {
	b.offset = n
	return b
}

// Limit sets the maximum number of rows.
func (b *Builder[C]) Limit(n int) *Builder[C] {
	b.limit = n
	return b
}

// Build folds the accumulated state into a Query. The reserved
// `$group`, `$having`, `$and`, and `$or` keys are introduced here and
// nowhere else.
func (b *Builder[C]) Build() *Query {
	filters := value.NewMap()
	if len(b.groupBy) > 0 {
		filters.Upsert("$group", b.groupBy)
		if len(b.having) > 0 {
			filters.Upsert("$having", b.having)
		}
	}
	if len(b.logicalAnd) > 0 {
		filters.Upsert("$and", b.logicalAnd)
	}
	if len(b.logicalOr) > 0 {
		filters.Upsert("$or", b.logicalOr)
	}
	q := New(filters)
	q.SetFields(b.fields)
	q.orders = append(q.orders, b.orders...)
	q.SetOffset(b.offset)
	q.SetLimit(b.limit)
	q.AppendExtra(b.extra)
	return q
}

// BuildSubquery renders the builder as a parenthesized SELECT.
func (b *Builder[C]) BuildSubquery() string {
	q := b.Build()
	sql := "(SELECT " + q.FormatProjection(b.encoder) +
		" FROM " + b.encoder.FormatField(b.entity.TableName()) +
		" AS " + b.encoder.QuoteIdentifier(b.entity.ModelName())
	if filters := q.FormatFilters(b.entity, b.encoder); filters != "" {
		sql += " " + filters
	}
	if sort := q.FormatSort(b.encoder); sort != "" {
		sql += " " + sort
	}
	if pagination := q.FormatPagination(); pagination != "" {
		sql += " " + pagination
	}
	return sql + ")"
}
