package query

import (
	"strings"

	"github.com/syssam/veldt"
	"github.com/syssam/veldt/value"
)

// A Mutation models one write operation: the updates to apply and an
// optional whitelist of editable fields. Reserved `$`-keys carry the
// arithmetic update operators.
type Mutation struct {
	fields  []string
	updates *value.Map
}

// NewMutation returns a mutation with the given updates. A nil update
// map is treated as empty.
func NewMutation(updates *value.Map) *Mutation {
	if updates == nil {
		updates = value.NewMap()
	}
	return &Mutation{updates: updates}
}

// MutationFromEntry returns a mutation with a single update.
func MutationFromEntry(key string, v value.Value) *Mutation {
	return NewMutation(value.FromEntry(key, v))
}

// ReadMap updates the mutation from a request map. The `fields` key
// replaces the editable whitelist; remaining non-`$` keys with nonempty
// values become updates.
func (m *Mutation) ReadMap(data *value.Map) error {
	var validation *veldt.ValidationError
	for _, entry := range data.Entries() {
		key, v := entry.Key, entry.Value
		if key == "fields" {
			if fields, ok := value.ParseStrArray(v); ok && len(fields) > 0 {
				m.fields = fields
			} else if validation == nil {
				validation = veldt.NewValidationError("fields", "must be nonempty")
			} else {
				validation.Record("fields", "must be nonempty")
			}
			continue
		}
		if !strings.HasPrefix(key, "$") && v != "" {
			m.updates.Upsert(key, v)
		}
	}
	if validation != nil {
		return validation
	}
	return nil
}

// AllowFields intersects the editable fields with the whitelist. An
// empty whitelist adopts the list itself.
func (m *Mutation) AllowFields(fields ...string) {
	if len(m.fields) == 0 {
		m.fields = append(m.fields, fields...)
		return
	}
	kept := m.fields[:0]
	for _, field := range m.fields {
		for _, key := range fields {
			if field == key {
				kept = append(kept, field)
				break
			}
		}
	}
	m.fields = kept
}

// DenyFields removes the listed fields from the editable whitelist.
func (m *Mutation) DenyFields(fields ...string) {
	kept := m.fields[:0]
	for _, field := range m.fields {
		denied := false
		for _, key := range fields {
			if field == key {
				denied = true
				break
			}
		}
		if !denied {
			kept = append(kept, field)
		}
	}
	m.fields = kept
}

// AddUpdate adds a key-value pair to the updates.
func (m *Mutation) AddUpdate(key string, v value.Value) {
	m.updates.Upsert(key, v)
}

// AppendUpdates moves all entries of the map into the updates.
func (m *Mutation) AppendUpdates(updates *value.Map) {
	m.updates.Append(updates)
}

// Fields returns the editable fields.
func (m *Mutation) Fields() []string { return m.fields }

// Updates returns the update map.
func (m *Mutation) Updates() *value.Map { return m.updates }
