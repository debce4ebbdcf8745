package sql

import (
	"database/sql"
	"strings"
	"time"

	"github.com/syssam/veldt/value"
)

// ScanMaps drains the rows into ordered maps, one per row, keyed by the
// result columns. NULL cells are omitted from the maps. The rows are
// closed on return.
func ScanMaps(rows *Rows) ([]*value.Map, error) {
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	var maps []*value.Map
	for rows.Next() {
		dest := make([]any, len(columns))
		for i := range dest {
			dest[i] = new(any)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		m := value.NewMap()
		for i, name := range columns {
			cell := decodeCell(*(dest[i].(*any)), types[i])
			if cell == nil {
				continue
			}
			m.Upsert(name, cell)
		}
		maps = append(maps, m)
	}
	return maps, rows.Err()
}

// ScanMap returns the first row as an ordered map, or nil when the result
// set is empty.
func ScanMap(rows *Rows) (*value.Map, error) {
	maps, err := ScanMaps(rows)
	if err != nil {
		return nil, err
	}
	if len(maps) == 0 {
		return nil, nil
	}
	return maps[0], nil
}

// ScanValue returns the first column of the first row, or nil when the
// result set is empty.
func ScanValue(rows *Rows) (value.Value, error) {
	defer rows.Close()
	if !rows.Next() {
		return nil, rows.Err()
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	var cell any
	if err := rows.Scan(&cell); err != nil {
		return nil, err
	}
	var columnType *sql.ColumnType
	if len(types) > 0 {
		columnType = types[0]
	}
	return decodeCell(cell, columnType), nil
}

// ScanInt64 returns the first column of the first row as an integer;
// missing rows yield zero.
func ScanInt64(rows *Rows) (int64, error) {
	v, err := ScanValue(rows)
	if err != nil {
		return 0, err
	}
	n, _ := value.ParseI64(v)
	return n, nil
}

// decodeCell normalizes a driver value into the dynamic value model.
// JSON columns decode into nested values; temporal columns render with
// the model's layouts so round trips through filters stay stable.
func decodeCell(cell any, columnType *sql.ColumnType) value.Value {
	switch v := cell.(type) {
	case nil:
		return nil
	case []byte:
		return decodeText(string(v), columnType)
	case string:
		return decodeText(v, columnType)
	case time.Time:
		switch databaseType(columnType) {
		case "DATE":
			return v.Format(value.DateLayout)
		case "TIME":
			return v.Format(value.TimeLayout)
		}
		return v.Format(value.DateTimeLayout)
	case bool, int64, float64:
		return v
	case int, int8, int16, int32:
		n, _ := value.ParseI64(v)
		return n
	case uint, uint8, uint16, uint32, uint64:
		n, _ := value.ParseU64(v)
		return n
	case float32:
		return float64(v)
	default:
		return v
	}
}

// decodeText maps a textual cell through its declared database type.
func decodeText(s string, columnType *sql.ColumnType) value.Value {
	switch databaseType(columnType) {
	case "JSON", "JSONB", "LONGTEXT":
		if v, err := value.ParseValue([]byte(s)); err == nil {
			return v
		}
		return s
	case "BOOLEAN", "BOOL":
		b, _ := value.ParseBool(s)
		return b
	case "BIGINT", "INT", "INT2", "INT4", "INT8", "INTEGER", "SMALLINT", "TINYINT":
		if n, ok := value.ParseI64(s); ok {
			return n
		}
		return s
	case "DOUBLE", "FLOAT4", "FLOAT8", "REAL", "NUMERIC", "DECIMAL":
		if f, ok := value.ParseF64(s); ok {
			return f
		}
		return s
	default:
		return s
	}
}

func databaseType(columnType *sql.ColumnType) string {
	if columnType == nil {
		return ""
	}
	return strings.ToUpper(columnType.DatabaseTypeName())
}
