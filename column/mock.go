package column

import (
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/veldt/value"
)

const mockAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomSize returns a synthetic size honoring the column's
// min_length/max_length (string types) or min_items/max_items (array types)
// bounds, defaulting to 1..8.
func (c *Column) RandomSize() int {
	minKey, maxKey := "min_length", "max_length"
	if c.IsArrayType() {
		minKey, maxKey = "min_items", "max_items"
	}
	lo, hi := int64(1), int64(8)
	if v, ok := c.Extra.ParseI64(minKey); ok && v > 0 {
		lo = v
	}
	if v, ok := c.Extra.ParseI64(maxKey); ok && v >= lo {
		hi = v
	}
	if v, ok := c.Extra.ParseI64("length"); ok && v > 0 {
		return int(v)
	}
	if hi < lo {
		hi = lo
	}
	return int(lo + rand.Int63n(hi-lo+1))
}

// MockValue generates synthetic data for the column, honoring enum_values,
// format, the length/item bounds, and nonempty.
func (c *Column) MockValue() value.Value {
	if values, ok := c.Extra.ParseEnumValues("enum_values"); ok && len(values) > 0 {
		return values[rand.Intn(len(values))]
	}
	return mockScalar(c.BaseType(), c)
}

func mockScalar(typeName string, c *Column) value.Value {
	switch typeName {
	case "bool":
		return rand.Intn(2) == 0
	case "i8", "i16", "i32", "i64", "isize":
		return rand.Int63n(1 << 16)
	case "u8", "u16", "u32", "u64", "usize":
		return uint64(rand.Int63n(1 << 16))
	case "f32", "f64":
		return rand.Float64() * 100
	case "Decimal":
		return rand.Float64() * 100
	case "String":
		return mockString(c)
	case "Uuid":
		return uuid.NewString()
	case "Date":
		return time.Now().AddDate(0, 0, -rand.Intn(365)).Format(value.DateLayout)
	case "Time":
		return time.Now().Format(value.TimeLayout)
	case "DateTime":
		return time.Now().Add(-time.Duration(rand.Intn(86400)) * time.Second).
			Format(value.DateTimeLayout)
	case "Vec<u8>":
		return []byte(randomText(c.RandomSize()))
	case "Map":
		return value.FromEntry("key", randomText(4))
	default:
		if item := arrayItemType(typeName); item != "" {
			n := c.RandomSize()
			out := make([]value.Value, n)
			for i := range out {
				out[i] = mockScalar(item, c)
			}
			return out
		}
		return nil
	}
}

func mockString(c *Column) string {
	if format, ok := c.Extra.ParseString("format"); ok {
		switch format {
		case "email":
			return randomText(6) + "@example.com"
		case "uri", "url":
			return "https://example.com/" + randomText(6)
		case "ip", "ipv4":
			return "192.0.2.1"
		case "hostname":
			return randomText(6) + ".example.com"
		case "uuid":
			return uuid.NewString()
		case "date-time":
			return time.Now().Format(value.DateTimeLayout)
		}
	}
	n := c.RandomSize()
	if n < 1 && c.HasAttribute("nonempty") {
		n = 1
	}
	return randomText(n)
}

func randomText(n int) string {
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		sb.WriteByte(mockAlphabet[rand.Intn(len(mockAlphabet))])
	}
	return sb.String()
}
