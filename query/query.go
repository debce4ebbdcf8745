package query

import (
	"strconv"
	"strings"

	"github.com/syssam/veldt"
	"github.com/syssam/veldt/value"
)

// DefaultLimit is the pagination limit applied until a caller sets one.
const DefaultLimit = 10

// A Query models one read operation: projection fields, a filter tree,
// sort order, and pagination. Its filter map mirrors the externally
// visible JSON form.
type Query struct {
	fields  []string
	filters *value.Map
	orders  []Order
	offset  int
	limit   int
	extra   *value.Map
}

// New returns a query with the given filters. A nil filter map is
// treated as empty.
func New(filters *value.Map) *Query {
	if filters == nil {
		filters = value.NewMap()
	}
	return &Query{
		filters: filters,
		limit:   DefaultLimit,
		extra:   value.NewMap(),
	}
}

// Default returns an empty query.
func Default() *Query {
	return New(nil)
}

// ReadMap updates the query from a request map. Recognized keys set the
// projection, sort, and pagination; the rest are merged into the
// filters, with dotted keys nesting into array or object filters.
// Reserved `$`-keys are never taken from request input.
func (q *Query) ReadMap(data *value.Map) error {
	var validation *veldt.ValidationError
	record := func(field, message string) {
		if validation == nil {
			validation = veldt.NewValidationError(field, message)
		} else {
			validation.Record(field, message)
		}
	}
	var currentPage *int
	var sortBy string
	ascending := false
	for _, entry := range data.Entries() {
		key, v := entry.Key, entry.Value
		switch key {
		case "fields", "columns", "select":
			if fields, ok := value.ParseStrArray(v); ok {
				q.fields = fields
			}
		case "sort", "sort_by", "order", "order_by":
			if s, ok := value.ParseString(v); ok {
				sortBy = s
			}
		case "ascending":
			if b, ok := value.ParseBool(v); ok {
				ascending = b
			}
		case "offset", "skip":
			if n, ok := value.ParseI64(v); ok && n >= 0 {
				q.offset = int(n)
			} else {
				record(key, "expected a nonnegative integer")
			}
		case "limit", "page_size":
			if n, ok := value.ParseI64(v); ok && n >= 0 {
				q.limit = int(n)
			} else {
				record(key, "expected a nonnegative integer")
			}
		case "current_page":
			if n, ok := value.ParseI64(v); ok && n >= 1 {
				page := int(n)
				currentPage = &page
			} else {
				record(key, "expected a positive integer")
			}
		case "timestamp":
			q.extra.Upsert("timestamp", v)
		case "nonce", "signature":
			// Verified upstream.
		default:
			if strings.HasPrefix(key, "$") {
				continue
			}
			if strings.Contains(key, ".") {
				q.mergeDottedFilter(key, v)
			} else if v != "" && v != "all" {
				q.filters.Upsert(key, v)
			}
		}
	}
	if sortBy != "" {
		q.orders = []Order{NewOrder(sortBy, !ascending)}
	}
	if currentPage != nil {
		q.offset = q.limit * (*currentPage - 1)
	}
	if validation != nil {
		return validation
	}
	return nil
}

// mergeDottedFilter folds a `parent.path` request key into the filters.
// A numeric path indexes into an array filter; a named path nests into
// an object filter.
func (q *Query) mergeDottedFilter(key string, v value.Value) {
	parent, path, _ := strings.Cut(key, ".")
	if index, err := strconv.Atoi(path); err == nil && index >= 0 {
		existing, ok := q.filters.GetArray(parent)
		if !ok {
			existing = make([]value.Value, index)
		}
		for len(existing) < index {
			existing = append(existing, nil)
		}
		if index < len(existing) {
			existing[index] = v
		} else {
			existing = append(existing, v)
		}
		q.filters.Upsert(parent, existing)
		return
	}
	if nested, ok := q.filters.GetMap(parent); ok {
		nested.Upsert(path, v)
	} else {
		q.filters.Upsert(parent, value.FromEntry(path, v))
	}
}

// AllowFields intersects the projection with the whitelist. An empty
// projection adopts the whitelist itself.
func (q *Query) AllowFields(fields ...string) {
	if len(q.fields) == 0 {
		q.fields = append(q.fields, fields...)
		return
	}
	kept := q.fields[:0]
	for _, field := range q.fields {
		for _, key := range fields {
			if field == key || strings.HasPrefix(field, key+":") {
				kept = append(kept, field)
				break
			}
		}
	}
	q.fields = kept
}

// DenyFields removes the listed fields from the projection.
func (q *Query) DenyFields(fields ...string) {
	kept := q.fields[:0]
	for _, field := range q.fields {
		denied := false
		for _, key := range fields {
			if field == key || strings.HasPrefix(field, key+":") {
				denied = true
				break
			}
		}
		if !denied {
			kept = append(kept, field)
		}
	}
	q.fields = kept
}

// AddFilter adds a key-value pair to the filters.
func (q *Query) AddFilter(key string, v value.Value) {
	q.filters.Upsert(key, v)
}

// AppendFilters moves all entries of the map into the filters.
func (q *Query) AppendFilters(filters *value.Map) {
	q.filters.Append(filters)
}

// SetFields replaces the projection fields.
func (q *Query) SetFields(fields []string) { q.fields = fields }

// SetOrder replaces the sort order.
func (q *Query) SetOrder(orders []Order) { q.orders = orders }

// OrderBy appends a sort entry.
func (q *Query) OrderBy(field string, descending bool) {
	q.orders = append(q.orders, NewOrder(field, descending))
}

// OrderAsc appends an ascending sort entry.
func (q *Query) OrderAsc(field string) { q.OrderBy(field, false) }

// OrderDesc appends a descending sort entry.
func (q *Query) OrderDesc(field string) { q.OrderBy(field, true) }

// SetOffset sets the pagination offset.
func (q *Query) SetOffset(offset int) { q.offset = offset }

// SetLimit sets the pagination limit. Zero disables pagination.
func (q *Query) SetLimit(limit int) { q.limit = limit }

// AppendExtra moves all entries of the map into the extra flags.
func (q *Query) AppendExtra(extra *value.Map) {
	q.extra.Append(extra)
}

// Fields returns the projection fields.
func (q *Query) Fields() []string { return q.fields }

// Filters returns the filter map.
func (q *Query) Filters() *value.Map { return q.filters }

// Order returns the sort order.
func (q *Query) Order() []Order { return q.orders }

// Offset returns the pagination offset.
func (q *Query) Offset() int { return q.offset }

// Limit returns the pagination limit.
func (q *Query) Limit() int { return q.limit }

// Extra returns the extra flags.
func (q *Query) Extra() *value.Map { return q.extra }
