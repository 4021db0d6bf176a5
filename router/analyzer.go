/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package router

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/xelabs/go-mysqlstack/sqlparser/depends/sqltypes"
	"github.com/xelabs/go-mysqlstack/xlog"
)

// Analyzer derives the routing argument of one rule column from the
// index conditions of a statement.
type Analyzer struct {
	log *xlog.Log

	// optimizeIsNull skips a NULL range bound instead of making the
	// range empty.
	optimizeIsNull bool
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(log *xlog.Log, optimizeIsNull bool) *Analyzer {
	return &Analyzer{log: log, optimizeIsNull: optimizeIsNull}
}

// columnState is the running state of one column analysis.
type columnState struct {
	optimizeIsNull bool

	// values is meaningful once hasValues is set. Numeric sets are
	// intersected, a set holding strings is merged instead since the
	// server compares strings by collation.
	values    []sqltypes.Value
	hasValues bool

	start, end  *Bound
	alwaysFalse bool
}

func (s *columnState) addValues(values []sqltypes.Value) {
	values = dedupValues(values)
	switch {
	case !s.hasValues:
		s.values, s.hasValues = values, true
	case allNumeric(s.values) && allNumeric(values):
		out := make([]sqltypes.Value, 0, len(s.values))
		for _, v := range s.values {
			if containsValue(values, v) {
				out = append(out, v)
			}
		}
		s.values = out
	default:
		s.values = dedupValues(append(s.values, values...))
	}
	if len(s.values) == 0 {
		s.alwaysFalse = true
	}
}

func (s *columnState) mergeStart(b *Bound) {
	if b.Value.IsNull() {
		if !s.optimizeIsNull {
			s.alwaysFalse = true
		}
		return
	}
	if s.start == nil {
		s.start = b
		return
	}
	switch c := sqltypes.Compare(b.Value, s.start.Value); {
	case c > 0:
		s.start = b
	case c == 0:
		s.start = &Bound{Value: s.start.Value, Inclusive: s.start.Inclusive && b.Inclusive}
	}
}

func (s *columnState) mergeEnd(b *Bound) {
	if b.Value.IsNull() {
		if !s.optimizeIsNull {
			s.alwaysFalse = true
		}
		return
	}
	if s.end == nil {
		s.end = b
		return
	}
	switch c := sqltypes.Compare(b.Value, s.end.Value); {
	case c < 0:
		s.end = b
	case c == 0:
		s.end = &Bound{Value: s.end.Value, Inclusive: s.end.Inclusive && b.Inclusive}
	}
}

// inRange returns true if v lies between the bounds.
func (s *columnState) inRange(v sqltypes.Value) bool {
	if s.start == nil && s.end == nil {
		return true
	}
	if v.IsNull() {
		return false
	}
	if !numeric(v) {
		return true
	}
	if s.start != nil && numeric(s.start.Value) {
		c := sqltypes.Compare(v, s.start.Value)
		if c < 0 || (c == 0 && !s.start.Inclusive) {
			return false
		}
	}
	if s.end != nil && numeric(s.end.Value) {
		c := sqltypes.Compare(v, s.end.Value)
		if c > 0 || (c == 0 && !s.end.Inclusive) {
			return false
		}
	}
	return true
}

// finish checks the range and narrows the value set by it.
func (s *columnState) finish() {
	if s.start != nil && s.end != nil {
		c := sqltypes.Compare(s.start.Value, s.end.Value)
		crossed := c > 0 && numeric(s.start.Value) && numeric(s.end.Value)
		if crossed || (c == 0 && !(s.start.Inclusive && s.end.Inclusive)) {
			s.alwaysFalse = true
			return
		}
		// A point range is a value.
		if c == 0 {
			s.addValues([]sqltypes.Value{s.start.Value})
		}
	}
	if s.hasValues {
		out := make([]sqltypes.Value, 0, len(s.values))
		for _, v := range s.values {
			if s.inRange(v) {
				out = append(out, v)
			}
		}
		s.values = out
		if len(out) == 0 {
			s.alwaysFalse = true
		}
	}
}

func (s *columnState) argument() *Argument {
	switch {
	case s.hasValues:
		return &Argument{Kind: ArgFixed, Values: s.values}
	case s.start != nil || s.end != nil:
		return RangeArgument(s.start, s.end)
	}
	return NoneArgument()
}

// Analyze scans the conditions on the column once and returns its argument.
// alwaysFalse is true if no row can satisfy the conditions, then the
// argument is nil. Conditions on other columns are ignored.
func (a *Analyzer) Analyze(ctx context.Context, col RuleColumn, conds []*Condition) (arg *Argument, alwaysFalse bool, err error) {
	log := a.log
	s := &columnState{optimizeIsNull: a.optimizeIsNull}

	// Sub-queries not drained are closed on return.
	drained := make(map[*Condition]bool)
	defer func() {
		for _, cond := range conds {
			if cond.Query != nil && !drained[cond] && strings.EqualFold(cond.Column, col.Name) {
				cond.Query.Close()
			}
		}
	}()

	for _, cond := range conds {
		if !strings.EqualFold(cond.Column, col.Name) {
			continue
		}

		switch cond.Type {
		case CompareFalse:
			return nil, true, nil
		case CompareEqual:
			if cond.Value.IsNull() {
				return nil, true, nil
			}
			if v, ok := a.convert(col, cond, cond.Value); ok {
				s.addValues([]sqltypes.Value{v})
			}
		case CompareEqualNullSafe:
			if v, ok := a.convert(col, cond, cond.Value); ok {
				s.addValues([]sqltypes.Value{v})
			}
		case CompareIsNull:
			s.addValues([]sqltypes.Value{sqltypes.NULL})
		case CompareInList:
			values := make([]sqltypes.Value, 0, len(cond.List))
			convertible := true
			for _, x := range cond.List {
				if x.IsNull() {
					continue
				}
				v, ok := a.convert(col, cond, x)
				if !ok {
					convertible = false
					break
				}
				values = append(values, v)
			}
			if convertible {
				s.addValues(values)
			}
		case CompareInQuery:
			if cond.Query == nil {
				continue
			}
			drained[cond] = true
			values, convertible, err := a.drain(ctx, col, cond.Query)
			if err != nil {
				return nil, false, err
			}
			if convertible {
				s.addValues(values)
			}
		case CompareBigger, CompareBiggerEqual, CompareSmaller, CompareSmallerEqual:
			v, ok := a.convert(col, cond, cond.Value)
			if !ok {
				continue
			}
			b := &Bound{Value: v, Inclusive: cond.Type == CompareBiggerEqual || cond.Type == CompareSmallerEqual}
			if cond.isStart() {
				s.mergeStart(b)
			} else {
				s.mergeEnd(b)
			}
		default:
			log.Warning("router.analyzer.column[%s].unknown.condition.type[%d]", col.Name, cond.Type)
		}
		if s.alwaysFalse {
			return nil, true, nil
		}
	}

	s.finish()
	if s.alwaysFalse {
		return nil, true, nil
	}
	return s.argument(), false, nil
}

// convert converts a predicate value through the column type, a value that
// does not convert leaves the condition without effect on routing.
func (a *Analyzer) convert(col RuleColumn, cond *Condition, v sqltypes.Value) (sqltypes.Value, bool) {
	out, err := col.Convert(v)
	if err != nil {
		a.log.Warning("router.analyzer.column[%s].condition[%s].skipped:%v", col.Name, cond.Type, err)
		return sqltypes.NULL, false
	}
	return out, true
}

// drain reads the whole sub-query and closes it.
func (a *Analyzer) drain(ctx context.Context, col RuleColumn, q SubQuery) ([]sqltypes.Value, bool, error) {
	defer q.Close()

	convertible := true
	values := make([]sqltypes.Value, 0, 16)
	for q.Next() {
		if err := ctx.Err(); err != nil {
			return nil, false, errors.Wrapf(err, "router.analyzer.column[%s].subquery.drain", col.Name)
		}
		row, err := q.RowValues()
		if err != nil {
			return nil, false, errors.Wrapf(err, "router.analyzer.column[%s].subquery.row", col.Name)
		}
		if len(row) == 0 || row[0].IsNull() {
			continue
		}
		v, err := col.Convert(row[0])
		if err != nil {
			a.log.Warning("router.analyzer.column[%s].subquery.value.skipped:%v", col.Name, err)
			convertible = false
			continue
		}
		values = append(values, v)
	}
	if err := q.LastError(); err != nil {
		return nil, false, errors.Wrapf(err, "router.analyzer.column[%s].subquery", col.Name)
	}
	return values, convertible, nil
}
