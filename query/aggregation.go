package query

import (
	"github.com/syssam/veldt/dialect"
)

type aggregateFunc int

const (
	aggregateCount aggregateFunc = iota
	aggregateSum
	aggregateAvg
	aggregateMin
	aggregateMax
	aggregateStddev
	aggregateVariance
	aggregateJSONArray
	aggregateJSONObject
)

// Aggregation is an aggregate function over a column, used in
// projections and HAVING conditions.
type Aggregation[C ~string] struct {
	fn       aggregateFunc
	column   C
	key      C
	distinct bool
}

// Count counts rows with a non-NULL column value, optionally distinct.
func Count[C ~string](col C, distinct bool) Aggregation[C] {
	return Aggregation[C]{fn: aggregateCount, column: col, distinct: distinct}
}

// Sum sums a column.
func Sum[C ~string](col C) Aggregation[C] {
	return Aggregation[C]{fn: aggregateSum, column: col}
}

// Avg averages a column.
func Avg[C ~string](col C) Aggregation[C] {
	return Aggregation[C]{fn: aggregateAvg, column: col}
}

// Min takes the minimum of a column.
func Min[C ~string](col C) Aggregation[C] {
	return Aggregation[C]{fn: aggregateMin, column: col}
}

// Max takes the maximum of a column.
func Max[C ~string](col C) Aggregation[C] {
	return Aggregation[C]{fn: aggregateMax, column: col}
}

// Stddev computes the population standard deviation of a column.
func Stddev[C ~string](col C) Aggregation[C] {
	return Aggregation[C]{fn: aggregateStddev, column: col}
}

// Variance computes the population variance of a column.
func Variance[C ~string](col C) Aggregation[C] {
	return Aggregation[C]{fn: aggregateVariance, column: col}
}

// JSONArrayAgg collects column values into a JSON array.
func JSONArrayAgg[C ~string](col C) Aggregation[C] {
	return Aggregation[C]{fn: aggregateJSONArray, column: col}
}

// JSONObjectAgg collects key/value column pairs into a JSON object.
func JSONObjectAgg[C ~string](key, val C) Aggregation[C] {
	return Aggregation[C]{fn: aggregateJSONObject, column: val, key: key}
}

// Expr renders the aggregate expression for the dialect.
func (a Aggregation[C]) Expr(enc dialect.Encoder) string {
	field := enc.FormatField(string(a.column))
	switch a.fn {
	case aggregateCount:
		if a.distinct {
			return "count(DISTINCT " + field + ")"
		}
		return "count(" + field + ")"
	case aggregateSum:
		return "sum(" + field + ")"
	case aggregateAvg:
		return "avg(" + field + ")"
	case aggregateMin:
		return "min(" + field + ")"
	case aggregateMax:
		return "max(" + field + ")"
	case aggregateStddev:
		return "stddev_pop(" + field + ")"
	case aggregateVariance:
		return "var_pop(" + field + ")"
	case aggregateJSONArray:
		switch {
		case dialect.IsMySQLFamily(enc.Name()):
			return "json_arrayagg(" + field + ")"
		case enc.Name() == dialect.Postgres:
			return "jsonb_agg(" + field + ")"
		default:
			return "json_group_array(" + field + ")"
		}
	case aggregateJSONObject:
		key := enc.FormatField(string(a.key))
		switch {
		case dialect.IsMySQLFamily(enc.Name()):
			return "json_objectagg(" + key + ", " + field + ")"
		case enc.Name() == dialect.Postgres:
			return "jsonb_object_agg(" + key + ", " + field + ")"
		default:
			return "json_group_object(" + key + ", " + field + ")"
		}
	}
	return field
}

// DefaultAlias returns the projection alias used when none is given.
func (a Aggregation[C]) DefaultAlias() string {
	col := string(a.column)
	switch a.fn {
	case aggregateCount:
		if a.distinct {
			return col + "_distinct"
		}
		return col + "_count"
	case aggregateSum:
		return col + "_sum"
	case aggregateAvg:
		return col + "_avg"
	case aggregateMin:
		return col + "_min"
	case aggregateMax:
		return col + "_max"
	case aggregateStddev:
		return col + "_stddev"
	case aggregateVariance:
		return col + "_variance"
	case aggregateJSONArray:
		return col + "_arrayagg"
	case aggregateJSONObject:
		return string(a.key) + "_" + col + "_objectagg"
	}
	return col
}
