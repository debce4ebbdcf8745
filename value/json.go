package value

import (
	"bytes"
	"encoding/json"
	"fmt"
)

var (
	_ json.Marshaler   = (*Map)(nil)
	_ json.Unmarshaler = (*Map)(nil)
)

// MarshalJSON encodes the map as a JSON object preserving insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("value: marshal key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving key order. Numbers decode
// as json.Number so integer precision survives the round trip.
func (m *Map) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("value: expected JSON object, got %v", tok)
	}
	m.keys = nil
	m.values = make(map[string]Value)
	return decodeObject(dec, m)
}

// ParseMap decodes a JSON object into an ordered map.
func ParseMap(data []byte) (*Map, error) {
	m := NewMap()
	if err := m.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseValue decodes any JSON document into a Value whose objects are
// ordered maps and whose numbers are json.Number.
func ParseValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, tok)
}

func decodeObject(dec *json.Decoder, m *Map) error {
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("value: expected object key, got %v", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		v, err := decodeToken(dec, valTok)
		if err != nil {
			return err
		}
		m.Upsert(key, v)
	}
	// Consume the closing brace.
	_, err := dec.Token()
	return err
}

func decodeArray(dec *json.Decoder) ([]Value, error) {
	out := make([]Value, 0, 4)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		v, err := decodeToken(dec, tok)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	_, err := dec.Token()
	return out, err
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := NewMap()
			if err := decodeObject(dec, m); err != nil {
				return nil, err
			}
			return m, nil
		case '[':
			return decodeArray(dec)
		}
		return nil, fmt.Errorf("value: unexpected delimiter %v", t)
	case nil, bool, string, json.Number:
		return t, nil
	default:
		return nil, fmt.Errorf("value: unexpected token %v", tok)
	}
}
