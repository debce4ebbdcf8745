package query

// An Order is one entry of a query's ORDER BY list.
type Order struct {
	field      string
	descending bool
	nullsFirst *bool
}

// NewOrder returns an order for the field.
func NewOrder(field string, descending bool) Order {
	return Order{field: field, descending: descending}
}

// WithNullsFirst places null values before all others.
func (o Order) WithNullsFirst() Order {
	first := true
	o.nullsFirst = &first
	return o
}

// WithNullsLast places null values after all others.
func (o Order) WithNullsLast() Order {
	first := false
	o.nullsFirst = &first
	return o
}

// Field returns the sort field.
func (o Order) Field() string { return o.field }

// Descending reports whether the order is descending.
func (o Order) Descending() bool { return o.descending }

// NullsFirst reports whether nulls sort before all values.
func (o Order) NullsFirst() bool { return o.nullsFirst != nil && *o.nullsFirst }

// NullsLast reports whether nulls sort after all values.
func (o Order) NullsLast() bool { return o.nullsFirst != nil && !*o.nullsFirst }
