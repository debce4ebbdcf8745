package query

import (
	"github.com/syssam/veldt/value"
)

// MutationBuilder composes a Mutation from typed update operations.
// The type parameter is the generated column name type of the entity.
type MutationBuilder[C ~string] struct {
	fields  []string
	updates *value.Map
	inc     *value.Map
	mul     *value.Map
	minOps  *value.Map
	maxOps  *value.Map
}

// NewMutationBuilder returns an empty mutation builder.
func NewMutationBuilder[C ~string]() *MutationBuilder[C] {
	return &MutationBuilder[C]{
		updates: value.NewMap(),
		inc:     value.NewMap(),
		mul:     value.NewMap(),
		minOps:  value.NewMap(),
		maxOps:  value.NewMap(),
	}
}

// AllowFields restricts the mutation to the listed columns.
func (b *MutationBuilder[C]) AllowFields(cols ...C) *MutationBuilder[C] {
	for _, col := range cols {
		b.fields = append(b.fields, string(col))
	}
	return b
}

// Set assigns a value to a column.
func (b *MutationBuilder[C]) Set(col C, v value.Value) *MutationBuilder[C] {
	b.updates.Upsert(string(col), v)
	return b
}

// SetIfNotNull assigns a value unless it is null.
func (b *MutationBuilder[C]) SetIfNotNull(col C, v value.Value) *MutationBuilder[C] {
	if value.IsNull(v) {
		return b
	}
	return b.Set(col, v)
}

// SetNull assigns NULL to a column.
func (b *MutationBuilder[C]) SetNull(col C) *MutationBuilder[C] {
	b.updates.Upsert(string(col), nil)
	return b
}

// SetNow assigns the current timestamp to a column.
func (b *MutationBuilder[C]) SetNow(col C) *MutationBuilder[C] {
	b.updates.Upsert(string(col), "now")
	return b
}

// Inc increments a column by the value.
func (b *MutationBuilder[C]) Inc(col C, v value.Value) *MutationBuilder[C] {
	b.inc.Upsert(string(col), v)
	return b
}

// IncOne increments a column by one.
func (b *MutationBuilder[C]) IncOne(col C) *MutationBuilder[C] {
	return b.Inc(col, int64(1))
}

// Mul multiplies a column by the value.
func (b *MutationBuilder[C]) Mul(col C, v value.Value) *MutationBuilder[C] {
	b.mul.Upsert(string(col), v)
	return b
}

// Min lowers a column to the value when the value is smaller.
func (b *MutationBuilder[C]) Min(col C, v value.Value) *MutationBuilder[C] {
	b.minOps.Upsert(string(col), v)
	return b
}

// Max raises a column to the value when the value is larger.
func (b *MutationBuilder[C]) Max(col C, v value.Value) *MutationBuilder[C] {
	b.maxOps.Upsert(string(col), v)
	return b
}

// Build folds the accumulated operations into a Mutation. The
// arithmetic operator keys `$inc`, `$mul`, `$min`, and `$max` are
// introduced here and nowhere else.
func (b *MutationBuilder[C]) Build() *Mutation {
	updates := value.NewMap()
	for _, entry := range b.updates.Entries() {
		updates.Upsert(entry.Key, entry.Value)
	}
	if !b.inc.IsEmpty() {
		updates.Upsert("$inc", b.inc)
	}
	if !b.mul.IsEmpty() {
		updates.Upsert("$mul", b.mul)
	}
	if !b.minOps.IsEmpty() {
		updates.Upsert("$min", b.minOps)
	}
	if !b.maxOps.IsEmpty() {
		updates.Upsert("$max", b.maxOps)
	}
	m := NewMutation(updates)
	m.fields = append(m.fields, b.fields...)
	return m
}
