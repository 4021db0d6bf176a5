/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package router

import (
	"hash/crc64"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	querypb "github.com/xelabs/go-mysqlstack/sqlparser/depends/query"
	"github.com/xelabs/go-mysqlstack/sqlparser/depends/sqltypes"
)

// Partitioner maps rule column values to 0-based partition indexes.
// Implementations are pure, the returned slice is never nil.
type Partitioner interface {
	Name() string
	// Partition returns the partitions holding any of the values.
	Partition(values []sqltypes.Value) ([]int, error)
	// PartitionRange returns the partitions which may hold a value in
	// [start, end], a nil side is unbounded.
	PartitionRange(start, end *sqltypes.Value) ([]int, error)
}

// MultiColumnPartitioner routes by more than one rule column.
type MultiColumnPartitioner interface {
	Partitioner
	// PartitionArguments takes one argument per rule column, in rule order.
	PartitionArguments(args []*Argument) ([]int, error)
}

// RuleColumn is a column whose value drives routing.
type RuleColumn struct {
	Name string       `json:"name"`
	Type querypb.Type `json:"type,omitempty"`
}

// Convert converts the value through the column type.
// Columns without a type keep the value as is.
func (col RuleColumn) Convert(v sqltypes.Value) (sqltypes.Value, error) {
	if col.Type == sqltypes.Null || v.IsNull() || v.Type() == col.Type {
		return v, nil
	}
	out, err := sqltypes.NewValue(col.Type, v.Raw())
	if err != nil {
		return sqltypes.NULL, errors.Errorf("router.column[%s].convert.value[%s].to[%v].error:%v", col.Name, v.ToString(), col.Type, err)
	}
	return out, nil
}

// ParseColumnType parses a MySQL type name such as INT64 or VARCHAR.
func ParseColumnType(name string) (querypb.Type, error) {
	if name == "" {
		return sqltypes.Null, nil
	}
	typ, ok := querypb.Type_value[strings.ToUpper(name)]
	if !ok {
		return sqltypes.Null, errors.Errorf("router.unsupported.column.type[%s]", name)
	}
	return querypb.Type(typ), nil
}

var crcTable = crc64.MakeTable(crc64.ECMA)

// hashKey returns the hash key of the value.
// Numeric strings hash like numbers, '05' and 5 land on the same slot.
func hashKey(v sqltypes.Value) uint64 {
	if v.IsNull() {
		return 0
	}
	s := v.ToString()
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return uint64(i)
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return u
	}
	// Fractions truncate toward zero, values outside int64 take the checksum.
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= math.MinInt64 && f < math.MaxInt64 {
		return uint64(int64(math.Trunc(f)))
	}
	return crc64.Checksum(v.Raw(), crcTable)
}

// allPartitions returns [0, n).
func allPartitions(n int) []int {
	idxs := make([]int, n)
	for i := range idxs {
		idxs[i] = i
	}
	return idxs
}

// isSingleValue returns true if start and end are the same point.
func isSingleValue(start, end *sqltypes.Value) bool {
	if start == nil || end == nil {
		return false
	}
	return sqltypes.Compare(*start, *end) == 0
}
