// Package query models queries and mutations and assembles them into
// dialect-specific SQL.
//
// A Query carries a projection, a filter map, sort orders, and
// pagination. Filters use `$`-prefixed operator keys inside per-column
// condition objects; the reserved top-level keys `$and`, `$or`, `$not`,
// `$nor`, `$rand`, `$text`, `$group`, and `$having` compose conditions.
// ReadMap populates a Query from untrusted request parameters, and the
// typed Builder composes one from compile-checked column names:
//
//	q := query.NewBuilder[UserColumn](user, enc).
//	    AndNotIn("status", values).
//	    AndEq("visibility", "Public").
//	    OrderDesc("created_at").
//	    Limit(20).
//	    Build()
//	clause := q.FormatFilters(user, enc)
//
// A Mutation carries a whitelist of editable fields and an update map
// whose `$inc`, `$mul`, `$min`, and `$max` keys fold arithmetic
// operations into the SET expression.
//
// FormatQuery and PrepareQuery interpolate `${name}` splices and
// `#{name}` bindings in handwritten statements.
package query
