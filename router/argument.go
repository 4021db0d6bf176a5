/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package router

import (
	"bytes"
	"fmt"

	"github.com/xelabs/go-mysqlstack/sqlparser/depends/sqltypes"
)

// ArgKind tags an Argument.
type ArgKind int

const (
	// ArgNone means no predicate constrains the column.
	ArgNone ArgKind = iota
	// ArgFixed means an explicit set of candidate values.
	ArgFixed
	// ArgRange means a start/end pair.
	ArgRange
)

// String returns the kind name.
func (k ArgKind) String() string {
	switch k {
	case ArgFixed:
		return "FIXED"
	case ArgRange:
		return "RANGE"
	}
	return "NONE"
}

// Bound is one side of a range.
type Bound struct {
	Value     sqltypes.Value
	Inclusive bool
}

// Argument is the normalized routing input of one rule column.
type Argument struct {
	Kind   ArgKind
	Values []sqltypes.Value
	// nil means unbounded.
	Start *Bound
	End   *Bound
}

// NoneArgument creates a NONE argument.
func NoneArgument() *Argument {
	return &Argument{Kind: ArgNone}
}

// FixedArgument creates a FIXED argument, duplicates are dropped.
func FixedArgument(values ...sqltypes.Value) *Argument {
	return &Argument{Kind: ArgFixed, Values: dedupValues(values)}
}

// RangeArgument creates a RANGE argument.
func RangeArgument(start, end *Bound) *Argument {
	return &Argument{Kind: ArgRange, Start: start, End: end}
}

// StartValue returns the start value or nil if unbounded.
func (arg *Argument) StartValue() *sqltypes.Value {
	if arg.Start == nil {
		return nil
	}
	return &arg.Start.Value
}

// EndValue returns the end value or nil if unbounded.
func (arg *Argument) EndValue() *sqltypes.Value {
	if arg.End == nil {
		return nil
	}
	return &arg.End.Value
}

// String returns the readable argument.
func (arg *Argument) String() string {
	b := bytes.NewBuffer(make([]byte, 0, 64))
	b.WriteString(arg.Kind.String())
	switch arg.Kind {
	case ArgFixed:
		b.WriteString("(")
		for i, v := range arg.Values {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(valueString(v))
		}
		b.WriteString(")")
	case ArgRange:
		if arg.Start == nil {
			b.WriteString("(-inf")
		} else if arg.Start.Inclusive {
			fmt.Fprintf(b, "[%s", valueString(arg.Start.Value))
		} else {
			fmt.Fprintf(b, "(%s", valueString(arg.Start.Value))
		}
		b.WriteString(",")
		if arg.End == nil {
			b.WriteString("+inf)")
		} else if arg.End.Inclusive {
			fmt.Fprintf(b, "%s]", valueString(arg.End.Value))
		} else {
			fmt.Fprintf(b, "%s)", valueString(arg.End.Value))
		}
	}
	return b.String()
}

func valueString(v sqltypes.Value) string {
	if v.IsNull() {
		return "NULL"
	}
	return v.ToString()
}

// dedupValues keeps the first of every group of values comparing equal.
func dedupValues(values []sqltypes.Value) []sqltypes.Value {
	out := make([]sqltypes.Value, 0, len(values))
	for _, v := range values {
		if !containsValue(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func containsValue(values []sqltypes.Value, v sqltypes.Value) bool {
	for _, x := range values {
		if sqltypes.Compare(x, v) == 0 {
			return true
		}
	}
	return false
}

// numeric returns true if v compares by value, strings compare by
// collation on the server and never do.
func numeric(v sqltypes.Value) bool {
	return v.IsIntegral() || v.IsFloat() || v.Type() == sqltypes.Decimal
}

// allNumeric returns true if every non-NULL value is numeric.
func allNumeric(values []sqltypes.Value) bool {
	for _, v := range values {
		if !v.IsNull() && !numeric(v) {
			return false
		}
	}
	return true
}
