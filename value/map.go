package value

import (
	"net/netip"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Map is an insertion-ordered mapping from string keys to values.
// Iteration over Entries or Keys always observes insertion order;
// Upsert of an existing key keeps its original position.
type Map struct {
	keys   []string
	values map[string]Value
}

// Entry is a single key/value pair of a Map.
type Entry struct {
	Key   string
	Value Value
}

// NewMap returns an empty ordered map.
func NewMap() *Map {
	return &Map{values: make(map[string]Value)}
}

// FromEntry returns a map holding a single key/value pair.
func FromEntry(key string, v Value) *Map {
	m := NewMap()
	m.Upsert(key, v)
	return m
}

// FromEntries returns a map holding the given pairs in order.
func FromEntries(entries ...Entry) *Map {
	m := NewMap()
	for _, e := range entries {
		m.Upsert(e.Key, e.Value)
	}
	return m
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// IsEmpty reports whether the map holds no entries.
func (m *Map) IsEmpty() bool {
	return m.Len() == 0
}

// Keys returns the keys in insertion order. The slice is shared; callers
// must not mutate it.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// Entries returns the key/value pairs in insertion order.
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	entries := make([]Entry, len(m.keys))
	for i, k := range m.keys {
		entries[i] = Entry{Key: k, Value: m.values[k]}
	}
	return entries
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Contains reports whether the key is present.
func (m *Map) Contains(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Upsert inserts or replaces the value under key and returns the prior
// value, if any. This is the sole mutation that reports the prior value.
func (m *Map) Upsert(key string, v Value) (Value, bool) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	prior, existed := m.values[key]
	if !existed {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
	return prior, existed
}

// Remove deletes the entry under key and returns its value, if any.
func (m *Map) Remove(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	if !ok {
		return nil, false
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return v, true
}

// Append moves all entries of other into m, leaving other empty.
func (m *Map) Append(other *Map) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		m.Upsert(k, other.values[k])
	}
	other.keys = nil
	other.values = make(map[string]Value)
}

// Clone returns a shallow copy preserving order.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	out := NewMap()
	for _, k := range m.keys {
		out.Upsert(k, m.values[k])
	}
	return out
}

// GetBool returns the boolean stored under key.
func (m *Map) GetBool(key string) (bool, bool) {
	v, ok := m.Get(key)
	if !ok {
		return false, false
	}
	return AsBool(v)
}

// GetI64 returns the signed integer stored under key.
func (m *Map) GetI64(key string) (int64, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	return AsI64(v)
}

// GetI32 returns the int32 stored under key.
func (m *Map) GetI32(key string) (int32, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	return AsI32(v)
}

// GetI16 returns the int16 stored under key.
func (m *Map) GetI16(key string) (int16, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	return AsI16(v)
}

// GetI8 returns the int8 stored under key.
func (m *Map) GetI8(key string) (int8, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	return AsI8(v)
}

// GetU64 returns the unsigned integer stored under key.
func (m *Map) GetU64(key string) (uint64, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	return AsU64(v)
}

// GetU32 returns the uint32 stored under key.
func (m *Map) GetU32(key string) (uint32, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	return AsU32(v)
}

// GetU16 returns the uint16 stored under key.
func (m *Map) GetU16(key string) (uint16, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	return AsU16(v)
}

// GetU8 returns the uint8 stored under key.
func (m *Map) GetU8(key string) (uint8, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	return AsU8(v)
}

// GetF64 returns the float stored under key.
func (m *Map) GetF64(key string) (float64, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	return AsF64(v)
}

// GetF32 returns the float32 stored under key.
func (m *Map) GetF32(key string) (float32, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	return AsF32(v)
}

// GetStr returns the string stored under key.
func (m *Map) GetStr(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	return AsStr(v)
}

// GetArray returns the array stored under key.
func (m *Map) GetArray(key string) ([]Value, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	return AsArray(v)
}

// GetMap returns the nested map stored under key.
func (m *Map) GetMap(key string) (*Map, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	return AsMap(v)
}

// ParseBool parses the value under key as a boolean.
func (m *Map) ParseBool(key string) (bool, bool) {
	v, ok := m.Get(key)
	if !ok {
		return false, false
	}
	return ParseBool(v)
}

// ParseI64 parses the value under key as a signed integer.
func (m *Map) ParseI64(key string) (int64, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	return ParseI64(v)
}

// ParseU64 parses the value under key as an unsigned integer.
func (m *Map) ParseU64(key string) (uint64, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	return ParseU64(v)
}

// ParseF64 parses the value under key as a float.
func (m *Map) ParseF64(key string) (float64, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	return ParseF64(v)
}

// ParseString parses the value under key as a trimmed nonempty string.
func (m *Map) ParseString(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	return ParseString(v)
}

// ParseDecimal parses the value under key as a decimal.
func (m *Map) ParseDecimal(key string) (decimal.Decimal, bool) {
	v, ok := m.Get(key)
	if !ok {
		return decimal.Decimal{}, false
	}
	return ParseDecimal(v)
}

// ParseUUID parses the value under key as a UUID.
func (m *Map) ParseUUID(key string) (uuid.UUID, bool) {
	v, ok := m.Get(key)
	if !ok {
		return uuid.Nil, false
	}
	return ParseUUID(v)
}

// ParseDate parses the value under key as a date.
func (m *Map) ParseDate(key string) (time.Time, bool) {
	v, ok := m.Get(key)
	if !ok {
		return time.Time{}, false
	}
	return ParseDate(v)
}

// ParseDateTime parses the value under key as a datetime.
func (m *Map) ParseDateTime(key string) (time.Time, bool) {
	v, ok := m.Get(key)
	if !ok {
		return time.Time{}, false
	}
	return ParseDateTime(v)
}

// ParseDuration parses the value under key as a duration.
func (m *Map) ParseDuration(key string) (time.Duration, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	return ParseDuration(v)
}

// ParseURL parses the value under key as a URL.
func (m *Map) ParseURL(key string) (*url.URL, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	return ParseURL(v)
}

// ParseIP parses the value under key as an IP address.
func (m *Map) ParseIP(key string) (netip.Addr, bool) {
	v, ok := m.Get(key)
	if !ok {
		return netip.Addr{}, false
	}
	return ParseIP(v)
}

// ParseStrArray parses the value under key as a string array.
func (m *Map) ParseStrArray(key string) ([]string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	return ParseStrArray(v)
}

// ParseEnumValues parses the value under key as "|"-delimited enum values.
func (m *Map) ParseEnumValues(key string) ([]Value, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	return ParseEnumValues(v)
}

// Pointer resolves a JSON-Pointer path ("/a/b/0/c") against the map.
// An empty pointer returns the map itself.
func (m *Map) Pointer(pointer string) (Value, bool) {
	if pointer == "" {
		return m, true
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, false
	}
	var current Value = m
	for _, token := range strings.Split(pointer[1:], "/") {
		token = strings.ReplaceAll(token, "~1", "/")
		token = strings.ReplaceAll(token, "~0", "~")
		switch node := current.(type) {
		case *Map:
			v, ok := node.Get(token)
			if !ok {
				return nil, false
			}
			current = v
		case []Value:
			i, err := strconv.Atoi(token)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			current = node[i]
		default:
			return nil, false
		}
	}
	return current, true
}

// GetPopulated returns the populated object stored under "<key>_populated".
func (m *Map) GetPopulated(key string) (*Map, bool) {
	return m.GetMap(key + "_populated")
}

// CloneFromPopulated copies the chosen fields of the populated object under
// "<key>_populated" into the outer map.
func (m *Map) CloneFromPopulated(key string, fields ...string) {
	populated, ok := m.GetPopulated(key)
	if !ok {
		return
	}
	for _, field := range fields {
		if v, ok := populated.Get(field); ok {
			m.Upsert(field, v)
		}
	}
}

// ExtractFromPopulated moves the chosen fields of the populated object under
// "<key>_populated" into the outer map and removes the populated object.
func (m *Map) ExtractFromPopulated(key string, fields ...string) {
	populated, ok := m.GetPopulated(key)
	if !ok {
		return
	}
	for _, field := range fields {
		if v, ok := populated.Remove(field); ok {
			m.Upsert(field, v)
		}
	}
	m.Remove(key + "_populated")
}

// DataEntry wraps a map in the conventional {"entry": …} response envelope.
func DataEntry(entry *Map) *Map {
	return FromEntry("entry", entry)
}

// DataEntries wraps a list of maps in the {"entries": …, "num_entries": …}
// response envelope.
func DataEntries(entries []*Map) *Map {
	items := make([]Value, len(entries))
	for i, e := range entries {
		items[i] = e
	}
	m := FromEntry("entries", items)
	m.Upsert("num_entries", int64(len(entries)))
	return m
}

// DataItem wraps a value in the {"item": …} response envelope.
func DataItem(item Value) *Map {
	return FromEntry("item", item)
}

// DataItems wraps a list of values in the {"items": …, "num_items": …}
// response envelope.
func DataItems(items []Value) *Map {
	m := FromEntry("items", items)
	m.Upsert("num_items", int64(len(items)))
	return m
}
