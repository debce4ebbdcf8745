// Package column defines the per-field metadata that drives DDL generation,
// value encoding, and the Avro/OpenAPI exporters.
package column

import (
	"strings"

	"github.com/syssam/veldt/value"
)

// Reference is a design-level link to another table's column. It drives
// populate/lookup resolution and validation; no foreign key is enforced.
type Reference struct {
	Table  string
	Column string
}

// A Column describes a single model field. Columns are immutable after
// construction; the engine shares them freely across goroutines.
type Column struct {
	// Name is the column name.
	Name string
	// TypeName is the portable semantic tag: bool, i8..i64, u8..u64,
	// f32, f64, Decimal, String, Uuid, Date, Time, DateTime, Vec<u8>,
	// Vec<T>, Map, or Option<T>.
	TypeName string
	// NotNull marks the column as non-nullable.
	NotNull bool
	// Default is the default value expression; the sentinels
	// "auto_increment" and "auto_random" select key generation.
	Default string
	// IndexType is one of btree, hash, unique, spatial, fulltext, text,
	// or text:<lang>. Empty means unindexed.
	IndexType string
	// Reference links to another table's column.
	Reference *Reference
	// Comment is attached to the DDL where the dialect supports it.
	Comment string
	// Extra carries attribute hints recognized by the encoders and the
	// exporters (primary_key, fuzzy_search, format, length bounds, …).
	Extra *value.Map
}

// New returns a column with the given name and semantic type.
func New(name, typeName string) *Column {
	return &Column{Name: name, TypeName: typeName, Extra: value.NewMap()}
}

// HasAttribute reports whether the extra map carries the attribute.
func (c *Column) HasAttribute(key string) bool {
	return c.Extra.Contains(key)
}

// HasAnyAttributes reports whether any of the attributes is present.
func (c *Column) HasAnyAttributes(keys ...string) bool {
	for _, key := range keys {
		if c.HasAttribute(key) {
			return true
		}
	}
	return false
}

// HasAllAttributes reports whether every attribute is present.
func (c *Column) HasAllAttributes(keys ...string) bool {
	for _, key := range keys {
		if !c.HasAttribute(key) {
			return false
		}
	}
	return true
}

// Attribute returns the attribute value stored in the extra map.
func (c *Column) Attribute(key string) (value.Value, bool) {
	return c.Extra.Get(key)
}

// IsPrimaryKey reports whether the column is the primary key.
func (c *Column) IsPrimaryKey() bool {
	return c.HasAttribute("primary_key")
}

// AutoIncrement reports whether the default selects auto-incremented keys.
func (c *Column) AutoIncrement() bool {
	return c.Default == "auto_increment"
}

// AutoRandom reports whether the default selects random keys (TiDB).
func (c *Column) AutoRandom() bool {
	return c.Default == "auto_random"
}

// DefaultValue returns the default expression unless it is a key-generation
// sentinel.
func (c *Column) DefaultValue() (string, bool) {
	if c.Default == "" || c.AutoIncrement() || c.AutoRandom() {
		return "", false
	}
	return c.Default, true
}

// IsOptionType reports whether the semantic type is Option<T>.
func (c *Column) IsOptionType() bool {
	return strings.HasPrefix(c.TypeName, "Option<")
}

// IsArrayType reports whether the semantic type is Vec<T> for a scalar T.
// Vec<u8> is a byte blob, not an array.
func (c *Column) IsArrayType() bool {
	t := c.BaseType()
	return strings.HasPrefix(t, "Vec<") && t != "Vec<u8>"
}

// IsMapType reports whether the semantic type is Map.
func (c *Column) IsMapType() bool {
	return c.BaseType() == "Map"
}

// IsDatetimeType reports whether the semantic type is DateTime.
func (c *Column) IsDatetimeType() bool {
	return c.BaseType() == "DateTime"
}

// IsTemporalType reports whether the semantic type is Date, Time, or DateTime.
func (c *Column) IsTemporalType() bool {
	switch c.BaseType() {
	case "Date", "Time", "DateTime":
		return true
	}
	return false
}

// IsStringType reports whether the semantic type renders as text.
func (c *Column) IsStringType() bool {
	return c.BaseType() == "String"
}

// BaseType strips the Option<…> wrapper, if any.
func (c *Column) BaseType() string {
	t := c.TypeName
	if inner, ok := strings.CutPrefix(t, "Option<"); ok {
		return strings.TrimSuffix(inner, ">")
	}
	return t
}

// ItemType returns the element type of a Vec<T> column, or "" otherwise.
func (c *Column) ItemType() string {
	t := c.BaseType()
	if inner, ok := strings.CutPrefix(t, "Vec<"); ok && t != "Vec<u8>" {
		return strings.TrimSuffix(inner, ">")
	}
	return ""
}

// FuzzySearch reports whether bare equality on the column should be
// rewritten into a case-insensitive substring match.
func (c *Column) FuzzySearch() bool {
	return c.HasAttribute("fuzzy_search") || c.IndexType == "text" ||
		strings.HasPrefix(c.IndexType, "text:")
}

// IsReadOnly reports whether the column is excluded from mutations.
func (c *Column) IsReadOnly() bool {
	return c.HasAttribute("read_only")
}

// ExactFilter reports whether the column opts out of all filter overlays.
func (c *Column) ExactFilter() bool {
	return c.HasAttribute("exact_filter")
}

// TextSearchLanguage returns the language of a text:<lang> index.
func (c *Column) TextSearchLanguage() (string, bool) {
	if lang, ok := strings.CutPrefix(c.IndexType, "text:"); ok {
		return lang, true
	}
	return "", false
}
