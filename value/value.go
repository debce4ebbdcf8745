// Package value implements the dynamic value model used across the engine:
// JSON-compatible scalars, arrays, and an insertion-ordered map, together
// with total (never-panicking) accessors and string-form parsers.
package value

import (
	"encoding/json"
	"math"
	"net/netip"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// A Value is any JSON-compatible value: nil, bool, int64, uint64, float64,
// json.Number, string, decimal.Decimal, []any, or *Map. Values decoded from
// JSON documents carry json.Number for numerics so integer precision is not
// lost on the way in.
type Value = any

// Temporal layouts accepted by the datetime parsers.
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02 15:04:05"
)

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	DateTimeLayout + ".999999",
	DateTimeLayout,
	DateLayout,
}

// AsBool returns the boolean view of v if the stored variant is a bool.
func AsBool(v Value) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// AsI64 returns the signed integer view of v. Floats convert only when they
// carry an integral value; out-of-range values report absent.
func AsI64(v Value) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n), true
		}
	case uint:
		if uint64(n) <= math.MaxInt64 {
			return int64(n), true
		}
	case uint32:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint8:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) && n >= math.MinInt64 && n <= math.MaxInt64 {
			return int64(n), true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	}
	return 0, false
}

// AsU64 returns the unsigned integer view of v. Negative values report absent.
func AsU64(v Value) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case uint:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case json.Number:
		if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
			return u, true
		}
	default:
		if i, ok := AsI64(v); ok && i >= 0 {
			return uint64(i), true
		}
	}
	return 0, false
}

// AsI32 narrows to int32; values outside the domain report absent.
func AsI32(v Value) (int32, bool) {
	if i, ok := AsI64(v); ok && i >= math.MinInt32 && i <= math.MaxInt32 {
		return int32(i), true
	}
	return 0, false
}

// AsI16 narrows to int16; values outside the domain report absent.
func AsI16(v Value) (int16, bool) {
	if i, ok := AsI64(v); ok && i >= math.MinInt16 && i <= math.MaxInt16 {
		return int16(i), true
	}
	return 0, false
}

// AsI8 narrows to int8; values outside the domain report absent.
func AsI8(v Value) (int8, bool) {
	if i, ok := AsI64(v); ok && i >= math.MinInt8 && i <= math.MaxInt8 {
		return int8(i), true
	}
	return 0, false
}

// AsU32 narrows to uint32; values outside the domain report absent.
func AsU32(v Value) (uint32, bool) {
	if u, ok := AsU64(v); ok && u <= math.MaxUint32 {
		return uint32(u), true
	}
	return 0, false
}

// AsU16 narrows to uint16; values outside the domain report absent.
func AsU16(v Value) (uint16, bool) {
	if u, ok := AsU64(v); ok && u <= math.MaxUint16 {
		return uint16(u), true
	}
	return 0, false
}

// AsU8 narrows to uint8; values outside the domain report absent.
func AsU8(v Value) (uint8, bool) {
	if u, ok := AsU64(v); ok && u <= math.MaxUint8 {
		return uint8(u), true
	}
	return 0, false
}

// AsF64 returns the float view of v.
func AsF64(v Value) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f, true
		}
	case decimal.Decimal:
		f, _ := n.Float64()
		return f, true
	default:
		if i, ok := AsI64(v); ok {
			return float64(i), true
		}
		if u, ok := AsU64(v); ok {
			return float64(u), true
		}
	}
	return 0, false
}

// AsF32 narrows to float32; values outside the finite float32 domain report absent.
func AsF32(v Value) (float32, bool) {
	if f, ok := AsF64(v); ok && math.Abs(f) <= math.MaxFloat32 {
		return float32(f), true
	}
	return 0, false
}

// AsStr returns the string view of v if the stored variant is a string.
func AsStr(v Value) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// AsArray returns the array view of v.
func AsArray(v Value) ([]Value, bool) {
	a, ok := v.([]Value)
	return a, ok
}

// AsMap returns the ordered-map view of v.
func AsMap(v Value) (*Map, bool) {
	m, ok := v.(*Map)
	return m, ok
}

// IsNull reports whether v is the null representative.
func IsNull(v Value) bool {
	return v == nil
}

// ParseBool accepts booleans and boolean string forms.
func ParseBool(v Value) (bool, bool) {
	if b, ok := AsBool(v); ok {
		return b, true
	}
	if s, ok := AsStr(v); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

// ParseI64 accepts integers and decimal string forms.
func ParseI64(v Value) (int64, bool) {
	if i, ok := AsI64(v); ok {
		return i, true
	}
	if s, ok := AsStr(v); ok {
		if i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

// ParseU64 accepts unsigned integers and decimal string forms.
func ParseU64(v Value) (uint64, bool) {
	if u, ok := AsU64(v); ok {
		return u, true
	}
	if s, ok := AsStr(v); ok {
		if u, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64); err == nil {
			return u, true
		}
	}
	return 0, false
}

// ParseF64 accepts numbers and float string forms.
func ParseF64(v Value) (float64, bool) {
	if f, ok := AsF64(v); ok {
		return f, true
	}
	if s, ok := AsStr(v); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// ParseString returns the trimmed string form of v. Empty strings are absent.
func ParseString(v Value) (string, bool) {
	var s string
	switch x := v.(type) {
	case string:
		s = strings.TrimSpace(x)
	case json.Number:
		s = x.String()
	case bool:
		s = strconv.FormatBool(x)
	case nil:
		return "", false
	default:
		if i, ok := AsI64(v); ok {
			s = strconv.FormatInt(i, 10)
		} else if u, ok := AsU64(v); ok {
			s = strconv.FormatUint(u, 10)
		} else if f, ok := AsF64(v); ok {
			s = strconv.FormatFloat(f, 'f', -1, 64)
		} else {
			return "", false
		}
	}
	if s == "" {
		return "", false
	}
	return s, true
}

// ParseDecimal accepts decimals, numbers, and numeric string forms.
func ParseDecimal(v Value) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, true
	case json.Number:
		if d, err := decimal.NewFromString(x.String()); err == nil {
			return d, true
		}
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(x)); err == nil {
			return d, true
		}
	default:
		if f, ok := AsF64(v); ok {
			return decimal.NewFromFloat(f), true
		}
	}
	return decimal.Decimal{}, false
}

// ParseUUID accepts uuid.UUID values and canonical string forms.
// The nil UUID is treated as absent.
func ParseUUID(v Value) (uuid.UUID, bool) {
	switch x := v.(type) {
	case uuid.UUID:
		if x == uuid.Nil {
			return uuid.Nil, false
		}
		return x, true
	case string:
		if u, err := uuid.Parse(strings.TrimSpace(x)); err == nil && u != uuid.Nil {
			return u, true
		}
	}
	return uuid.Nil, false
}

// ParseDate accepts time values and YYYY-MM-DD string forms.
func ParseDate(v Value) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		if t, err := time.Parse(DateLayout, strings.TrimSpace(x)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseTime accepts time values and HH:MM:SS string forms.
func ParseTime(v Value) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range []string{TimeLayout + ".999999", TimeLayout} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// ParseDateTime accepts time values, RFC 3339 forms, and space-separated
// datetime forms with optional fractional seconds.
func ParseDateTime(v Value) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateTimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// ParseDuration accepts time.Duration values, Go duration strings, and
// bare numbers interpreted as seconds.
func ParseDuration(v Value) (time.Duration, bool) {
	switch x := v.(type) {
	case time.Duration:
		return x, true
	case string:
		if d, err := time.ParseDuration(strings.TrimSpace(x)); err == nil {
			return d, true
		}
	default:
		if f, ok := AsF64(v); ok {
			return time.Duration(f * float64(time.Second)), true
		}
	}
	return 0, false
}

// ParseURL accepts *url.URL values and absolute URL strings.
func ParseURL(v Value) (*url.URL, bool) {
	switch x := v.(type) {
	case *url.URL:
		return x, true
	case string:
		if u, err := url.Parse(strings.TrimSpace(x)); err == nil && u.Scheme != "" {
			return u, true
		}
	}
	return nil, false
}

// ParseIP accepts netip.Addr values and textual IP addresses.
func ParseIP(v Value) (netip.Addr, bool) {
	switch x := v.(type) {
	case netip.Addr:
		return x, true
	case string:
		if a, err := netip.ParseAddr(strings.TrimSpace(x)); err == nil {
			return a, true
		}
	}
	return netip.Addr{}, false
}

// ParseStrArray returns the string forms of an array value, or the
// comma-separated segments of a string value.
func ParseStrArray(v Value) ([]string, bool) {
	switch x := v.(type) {
	case []Value:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s, ok := ParseString(item); ok {
				out = append(out, s)
			}
		}
		return out, true
	case []string:
		return x, true
	case string:
		if x == "" {
			return nil, false
		}
		parts := strings.Split(x, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// ParseEnumValues splits a "|"-delimited string into enum values,
// promoting segments that parse as integers. Array values pass through.
func ParseEnumValues(v Value) ([]Value, bool) {
	switch x := v.(type) {
	case []Value:
		return x, true
	case string:
		if x == "" {
			return nil, false
		}
		parts := strings.Split(x, "|")
		out := make([]Value, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if i, err := strconv.ParseInt(p, 10, 64); err == nil {
				out = append(out, i)
			} else {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// ToStringUnquoted renders v for argument logging and driver binding:
// scalars in their textual form, arrays and maps as compact JSON.
func ToStringUnquoted(v Value) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	case decimal.Decimal:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		if i, ok := AsI64(v); ok {
			return strconv.FormatInt(i, 10)
		}
		if u, ok := AsU64(v); ok {
			return strconv.FormatUint(u, 10)
		}
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
		return ""
	}
}
