/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package router

import (
	"github.com/xelabs/go-mysqlstack/sqlparser/depends/sqltypes"
)

// CompareType is the comparison kind of an index condition.
type CompareType int

const (
	// CompareEqual is col = v.
	CompareEqual CompareType = iota
	// CompareEqualNullSafe is col <=> v.
	CompareEqualNullSafe
	// CompareBigger is col > v.
	CompareBigger
	// CompareBiggerEqual is col >= v.
	CompareBiggerEqual
	// CompareSmaller is col < v.
	CompareSmaller
	// CompareSmallerEqual is col <= v.
	CompareSmallerEqual
	// CompareInList is col IN (v1, v2...).
	CompareInList
	// CompareInQuery is col IN (SELECT ...).
	CompareInQuery
	// CompareIsNull is col IS NULL.
	CompareIsNull
	// CompareFalse is a statically unsatisfiable condition.
	CompareFalse
)

var compareTypeNames = map[CompareType]string{
	CompareEqual:         "=",
	CompareEqualNullSafe: "<=>",
	CompareBigger:        ">",
	CompareBiggerEqual:   ">=",
	CompareSmaller:       "<",
	CompareSmallerEqual:  "<=",
	CompareInList:        "in",
	CompareInQuery:       "in.query",
	CompareIsNull:        "is.null",
	CompareFalse:         "false",
}

// String returns the operator.
func (t CompareType) String() string {
	if s, ok := compareTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// SubQuery is a cursor over the first column of a sub-select result.
// driver.Rows of go-mysqlstack satisfies it.
type SubQuery interface {
	Next() bool
	RowValues() ([]sqltypes.Value, error)
	LastError() error
	Close() error
}

// Condition is one index condition on a column.
type Condition struct {
	Column string
	Type   CompareType
	Value  sqltypes.Value
	List   []sqltypes.Value
	Query  SubQuery
}

// NewCondition creates a single value condition.
func NewCondition(column string, typ CompareType, value sqltypes.Value) *Condition {
	return &Condition{Column: column, Type: typ, Value: value}
}

// NewInCondition creates an IN list condition.
func NewInCondition(column string, values ...sqltypes.Value) *Condition {
	return &Condition{Column: column, Type: CompareInList, List: values}
}

// NewInQueryCondition creates an IN sub-select condition.
func NewInQueryCondition(column string, query SubQuery) *Condition {
	return &Condition{Column: column, Type: CompareInQuery, Query: query}
}

// NewIsNullCondition creates an IS NULL condition.
func NewIsNullCondition(column string) *Condition {
	return &Condition{Column: column, Type: CompareIsNull, Value: sqltypes.NULL}
}

// NewFalseCondition creates an unsatisfiable condition.
func NewFalseCondition(column string) *Condition {
	return &Condition{Column: column, Type: CompareFalse}
}

// isStart returns true if the condition bounds the column from below.
func (c *Condition) isStart() bool {
	return c.Type == CompareBigger || c.Type == CompareBiggerEqual
}

// isEnd returns true if the condition bounds the column from above.
func (c *Condition) isEnd() bool {
	return c.Type == CompareSmaller || c.Type == CompareSmallerEqual
}

// ResultCursor is a SubQuery over an in-memory result.
type ResultCursor struct {
	qr     *sqltypes.Result
	idx    int
	closed bool
}

// NewResultCursor creates a cursor over the rows of the result.
func NewResultCursor(qr *sqltypes.Result) *ResultCursor {
	return &ResultCursor{qr: qr, idx: -1}
}

// Next moves to the next row.
func (c *ResultCursor) Next() bool {
	if c.closed || c.qr == nil {
		return false
	}
	c.idx++
	return c.idx < len(c.qr.Rows)
}

// RowValues returns the current row.
func (c *ResultCursor) RowValues() ([]sqltypes.Value, error) {
	return c.qr.Rows[c.idx], nil
}

// LastError returns nil, an in-memory cursor never fails.
func (c *ResultCursor) LastError() error {
	return nil
}

// Close closes the cursor.
func (c *ResultCursor) Close() error {
	c.closed = true
	return nil
}

// Closed returns true after Close.
func (c *ResultCursor) Closed() bool {
	return c.closed
}
