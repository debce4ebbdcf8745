package query

import (
	"strconv"

	"github.com/syssam/veldt/dialect"
)

type windowFunc int

const (
	windowCount windowFunc = iota
	windowSum
	windowAvg
	windowMin
	windowMax
	windowRowNumber
	windowRank
	windowDenseRank
	windowPercentRank
	windowCumeDist
	windowNtile
	windowLag
	windowLead
	windowFirstValue
	windowLastValue
	windowNthValue
)

// Window is a window function partitioned by a column, with an
// optional ORDER BY inside the window frame.
type Window[C ~string] struct {
	fn        windowFunc
	column    C
	partition C
	n         int
	sort      string
	desc      bool
	sorted    bool
}

// WindowCount counts rows per partition.
func WindowCount[C ~string](col, partition C) Window[C] {
	return Window[C]{fn: windowCount, column: col, partition: partition}
}

// WindowSum sums a column per partition.
func WindowSum[C ~string](col, partition C) Window[C] {
	return Window[C]{fn: windowSum, column: col, partition: partition}
}

// WindowAvg averages a column per partition.
func WindowAvg[C ~string](col, partition C) Window[C] {
	return Window[C]{fn: windowAvg, column: col, partition: partition}
}

// WindowMin takes the minimum of a column per partition.
func WindowMin[C ~string](col, partition C) Window[C] {
	return Window[C]{fn: windowMin, column: col, partition: partition}
}

// WindowMax takes the maximum of a column per partition.
func WindowMax[C ~string](col, partition C) Window[C] {
	return Window[C]{fn: windowMax, column: col, partition: partition}
}

// RowNumber numbers rows within each partition.
func RowNumber[C ~string](partition C) Window[C] {
	return Window[C]{fn: windowRowNumber, partition: partition}
}

// Rank ranks rows within each partition, with gaps.
func Rank[C ~string](partition C) Window[C] {
	return Window[C]{fn: windowRank, partition: partition}
}

// DenseRank ranks rows within each partition, without gaps.
func DenseRank[C ~string](partition C) Window[C] {
	return Window[C]{fn: windowDenseRank, partition: partition}
}

// PercentRank computes the relative rank of each row.
func PercentRank[C ~string](partition C) Window[C] {
	return Window[C]{fn: windowPercentRank, partition: partition}
}

// CumeDist computes the cumulative distribution of each row.
func CumeDist[C ~string](partition C) Window[C] {
	return Window[C]{fn: windowCumeDist, partition: partition}
}

// Ntile buckets each partition into n groups.
func Ntile[C ~string](n int, partition C) Window[C] {
	return Window[C]{fn: windowNtile, n: n, partition: partition}
}

// Lag reads the column from a preceding row in the partition.
func Lag[C ~string](col C, offset int, partition C) Window[C] {
	return Window[C]{fn: windowLag, column: col, n: offset, partition: partition}
}

// Lead reads the column from a following row in the partition.
func Lead[C ~string](col C, offset int, partition C) Window[C] {
	return Window[C]{fn: windowLead, column: col, n: offset, partition: partition}
}

// FirstValue reads the column from the first row of the window frame.
func FirstValue[C ~string](col, partition C) Window[C] {
	return Window[C]{fn: windowFirstValue, column: col, partition: partition}
}

// LastValue reads the column from the last row of the window frame.
func LastValue[C ~string](col, partition C) Window[C] {
	return Window[C]{fn: windowLastValue, column: col, partition: partition}
}

// NthValue reads the column from the n-th row of the window frame.
func NthValue[C ~string](col C, n int, partition C) Window[C] {
	return Window[C]{fn: windowNthValue, column: col, n: n, partition: partition}
}

// OrderBy sets the sort order inside the window frame.
func (w Window[C]) OrderBy(col C, descending bool) Window[C] {
	w.sort = string(col)
	w.desc = descending
	w.sorted = true
	return w
}

// Expr renders the window expression for the dialect.
func (w Window[C]) Expr(enc dialect.Encoder) string {
	field := enc.FormatField(string(w.column))
	var fn string
	switch w.fn {
	case windowCount:
		fn = "count(" + field + ")"
	case windowSum:
		fn = "sum(" + field + ")"
	case windowAvg:
		fn = "avg(" + field + ")"
	case windowMin:
		fn = "min(" + field + ")"
	case windowMax:
		fn = "max(" + field + ")"
	case windowRowNumber:
		fn = "row_number()"
	case windowRank:
		fn = "rank()"
	case windowDenseRank:
		fn = "dense_rank()"
	case windowPercentRank:
		fn = "percent_rank()"
	case windowCumeDist:
		fn = "cume_dist()"
	case windowNtile:
		fn = "ntile(" + strconv.Itoa(w.n) + ")"
	case windowLag:
		fn = "lag(" + field + ", " + strconv.Itoa(w.n) + ")"
	case windowLead:
		fn = "lead(" + field + ", " + strconv.Itoa(w.n) + ")"
	case windowFirstValue:
		fn = "first_value(" + field + ")"
	case windowLastValue:
		fn = "last_value(" + field + ")"
	case windowNthValue:
		fn = "nth_value(" + field + ", " + strconv.Itoa(w.n) + ")"
	}
	expr := fn + " OVER (PARTITION BY " + enc.FormatField(string(w.partition))
	if w.sorted {
		expr += " ORDER BY " + enc.FormatField(w.sort)
		if w.desc {
			expr += " DESC"
		} else {
			expr += " ASC"
		}
	}
	return expr + ")"
}

// DefaultAlias returns the projection alias used when none is given.
func (w Window[C]) DefaultAlias() string {
	col := string(w.column)
	switch w.fn {
	case windowCount:
		return col + "_count"
	case windowSum:
		return col + "_sum"
	case windowAvg:
		return col + "_avg"
	case windowMin:
		return col + "_min"
	case windowMax:
		return col + "_max"
	case windowRowNumber:
		return "row_number"
	case windowRank:
		return "rank"
	case windowDenseRank:
		return "dense_rank"
	case windowPercentRank:
		return "percent_rank"
	case windowCumeDist:
		return "cume_dist"
	case windowNtile:
		return "ntile"
	case windowLag:
		return col + "_prev"
	case windowLead:
		return col + "_next"
	case windowFirstValue:
		return col + "_first"
	case windowLastValue:
		return col + "_last"
	case windowNthValue:
		return col + "_nth"
	}
	return col
}
