package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestMapOrderAndUpsert(t *testing.T) {
	m := NewMap()
	m.Upsert("b", int64(1))
	m.Upsert("a", int64(2))
	m.Upsert("c", int64(3))
	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())

	// Replacing a key keeps its position and returns the prior value.
	prior, existed := m.Upsert("a", int64(9))
	assert.True(t, existed)
	assert.Equal(t, int64(2), prior)
	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())

	v, ok := m.Remove("b")
	require.True(t, ok)
	assert.Equal(t, int64(1), v)
	assert.Equal(t, []string{"a", "c"}, m.Keys())

	_, ok = m.Remove("missing")
	assert.False(t, ok)
}

func TestMapAppend(t *testing.T) {
	m := FromEntry("x", int64(1))
	other := FromEntries(Entry{"y", int64(2)}, Entry{"x", int64(3)})
	m.Append(other)
	assert.Equal(t, []string{"x", "y"}, m.Keys())
	i, _ := m.GetI64("x")
	assert.Equal(t, int64(3), i)
	assert.True(t, other.IsEmpty())
}

func TestMapPointer(t *testing.T) {
	inner := FromEntry("c", "deep")
	m := FromEntry("a", FromEntry("b", []Value{inner}))

	v, ok := m.Pointer("/a/b/0/c")
	require.True(t, ok)
	assert.Equal(t, "deep", v)

	_, ok = m.Pointer("/a/missing")
	assert.False(t, ok)
	_, ok = m.Pointer("/a/b/5")
	assert.False(t, ok)

	self, ok := m.Pointer("")
	require.True(t, ok)
	assert.Equal(t, m, self)
}

func TestMapPopulated(t *testing.T) {
	row := FromEntry("author_id", "u1")
	row.Upsert("author_id_populated", FromEntries(
		Entry{"id", "u1"},
		Entry{"name", "alice"},
		Entry{"email", "a@b"},
	))

	clone := row.Clone()
	clone.CloneFromPopulated("author_id", "name")
	name, ok := clone.GetStr("name")
	require.True(t, ok)
	assert.Equal(t, "alice", name)
	assert.True(t, clone.Contains("author_id_populated"))

	row.ExtractFromPopulated("author_id", "name", "email")
	assert.False(t, row.Contains("author_id_populated"))
	email, _ := row.GetStr("email")
	assert.Equal(t, "a@b", email)
}

func TestMapJSONRoundTrip(t *testing.T) {
	src := []byte(`{"z":1,"a":{"k2":true,"k1":null},"list":[1,"two",{"x":0.5}]}`)
	m, err := ParseMap(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "list"}, m.Keys())

	nested, ok := m.GetMap("a")
	require.True(t, ok)
	assert.Equal(t, []string{"k2", "k1"}, nested.Keys())

	out, err := m.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, string(src), string(out))
	// Order survives the round trip byte-for-byte.
	assert.Equal(t, string(src), string(out))
}

func TestMapMsgpackRoundTrip(t *testing.T) {
	m := FromEntries(
		Entry{"second", int64(2)},
		Entry{"first", "1"},
		Entry{"nested", FromEntry("k", true)},
		Entry{"list", []Value{int64(1), "x"}},
	)
	data, err := msgpack.Marshal(m)
	require.NoError(t, err)

	var out Map
	require.NoError(t, msgpack.Unmarshal(data, &out))
	assert.Equal(t, []string{"second", "first", "nested", "list"}, out.Keys())
	nested, ok := out.GetMap("nested")
	require.True(t, ok)
	b, _ := nested.GetBool("k")
	assert.True(t, b)
}

func TestDataEnvelopes(t *testing.T) {
	entry := FromEntry("id", int64(1))
	wrapped := DataEntry(entry)
	got, ok := wrapped.GetMap("entry")
	require.True(t, ok)
	assert.Equal(t, entry, got)

	entries := DataEntries([]*Map{entry, entry})
	n, _ := entries.GetI64("num_entries")
	assert.Equal(t, int64(2), n)

	items := DataItems([]Value{int64(1), int64(2), int64(3)})
	n, _ = items.GetI64("num_items")
	assert.Equal(t, int64(3), n)
}
