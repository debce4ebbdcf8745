package query

import "github.com/syssam/veldt/column"

// An Entity binds a model to its table metadata. Generated model
// packages implement it alongside a string-based column type whose
// constants enumerate the columns.
type Entity interface {
	// ModelName returns the name used as the table alias in queries.
	ModelName() string
	// TableName returns the table name.
	TableName() string
	// PrimaryKey returns the primary key column name.
	PrimaryKey() string
	// Columns returns the column descriptors in declaration order.
	Columns() []*column.Column
	// GetColumn returns the named column, or nil when unknown.
	GetColumn(name string) *column.Column
}
