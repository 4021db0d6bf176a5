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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	querypb "github.com/xelabs/go-mysqlstack/sqlparser/depends/query"
	"github.com/xelabs/go-mysqlstack/sqlparser/depends/sqltypes"
	"github.com/xelabs/go-mysqlstack/xlog"
)

func int64s(vals ...int64) []sqltypes.Value {
	out := make([]sqltypes.Value, 0, len(vals))
	for _, v := range vals {
		out = append(out, sqltypes.NewInt64(v))
	}
	return out
}

func mockResult(vals ...sqltypes.Value) *sqltypes.Result {
	qr := &sqltypes.Result{Fields: []*querypb.Field{{Name: "id", Type: querypb.Type_INT64}}}
	for _, v := range vals {
		qr.Rows = append(qr.Rows, []sqltypes.Value{v})
	}
	return qr
}

type errorCursor struct {
	*ResultCursor
	err error
}

func (c *errorCursor) LastError() error {
	return c.err
}

func TestAnalyzerFixed(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	analyzer := NewAnalyzer(log, true)
	col := RuleColumn{Name: "id"}
	ctx := context.Background()

	tests := []struct {
		name  string
		conds []*Condition
		want  string
	}{
		{
			"equal",
			[]*Condition{NewCondition("id", CompareEqual, sqltypes.NewInt64(8))},
			"FIXED(8)",
		},
		{
			"equal.case.insensitive",
			[]*Condition{NewCondition("ID", CompareEqual, sqltypes.NewInt64(8))},
			"FIXED(8)",
		},
		{
			"in.list.dedup",
			[]*Condition{NewInCondition("id", int64s(3, 1, 3, 2)...)},
			"FIXED(3,1,2)",
		},
		{
			"in.list.and.bigger",
			[]*Condition{
				NewInCondition("id", int64s(8, 9, 10)...),
				NewCondition("id", CompareBigger, sqltypes.NewInt64(8)),
			},
			"FIXED(9,10)",
		},
		{
			"in.list.intersect",
			[]*Condition{
				NewInCondition("id", int64s(1, 2, 3)...),
				NewInCondition("id", int64s(2, 3, 4)...),
			},
			"FIXED(2,3)",
		},
		{
			"point.range",
			[]*Condition{
				NewCondition("id", CompareBiggerEqual, sqltypes.NewInt64(5)),
				NewCondition("id", CompareSmallerEqual, sqltypes.NewInt64(5)),
			},
			"FIXED(5)",
		},
		{
			"is.null",
			[]*Condition{NewIsNullCondition("id")},
			"FIXED(NULL)",
		},
		{
			"null.safe.equal",
			[]*Condition{NewCondition("id", CompareEqualNullSafe, sqltypes.NULL)},
			"FIXED(NULL)",
		},
		{
			"in.list.skips.null",
			[]*Condition{NewInCondition("id", sqltypes.NULL, sqltypes.NewInt64(1))},
			"FIXED(1)",
		},
		{
			"other.columns.ignored",
			[]*Condition{
				NewCondition("name", CompareEqual, sqltypes.NewVarChar("x")),
				NewCondition("id", CompareEqual, sqltypes.NewInt64(1)),
			},
			"FIXED(1)",
		},
	}
	for _, test := range tests {
		arg, alwaysFalse, err := analyzer.Analyze(ctx, col, test.conds)
		assert.Nil(t, err, test.name)
		assert.False(t, alwaysFalse, test.name)
		assert.Equal(t, test.want, arg.String(), test.name)
	}
}

func TestAnalyzerRange(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	analyzer := NewAnalyzer(log, true)
	col := RuleColumn{Name: "id"}
	ctx := context.Background()

	tests := []struct {
		conds []*Condition
		want  string
	}{
		{
			[]*Condition{NewCondition("id", CompareBigger, sqltypes.NewInt64(8))},
			"RANGE(8,+inf)",
		},
		{
			[]*Condition{
				NewCondition("id", CompareBiggerEqual, sqltypes.NewInt64(1)),
				NewCondition("id", CompareBigger, sqltypes.NewInt64(3)),
				NewCondition("id", CompareSmaller, sqltypes.NewInt64(10)),
				NewCondition("id", CompareSmallerEqual, sqltypes.NewInt64(20)),
			},
			"RANGE(3,10)",
		},
		{
			// Exclusive wins on ties.
			[]*Condition{
				NewCondition("id", CompareBiggerEqual, sqltypes.NewInt64(3)),
				NewCondition("id", CompareBigger, sqltypes.NewInt64(3)),
				NewCondition("id", CompareSmallerEqual, sqltypes.NewInt64(9)),
			},
			"RANGE(3,9]",
		},
		{
			[]*Condition{NewCondition("id", CompareSmallerEqual, sqltypes.NewInt64(9))},
			"RANGE(-inf,9]",
		},
		{
			nil,
			"NONE",
		},
		{
			[]*Condition{NewCondition("name", CompareEqual, sqltypes.NewInt64(1))},
			"NONE",
		},
	}
	for _, test := range tests {
		arg, alwaysFalse, err := analyzer.Analyze(ctx, col, test.conds)
		assert.Nil(t, err)
		assert.False(t, alwaysFalse)
		assert.Equal(t, test.want, arg.String())
	}
}

func TestAnalyzerAlwaysFalse(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	analyzer := NewAnalyzer(log, true)
	col := RuleColumn{Name: "id"}
	ctx := context.Background()

	tests := []struct {
		name  string
		conds []*Condition
	}{
		{
			"contradictory.equalities",
			[]*Condition{
				NewCondition("id", CompareEqual, sqltypes.NewInt64(8)),
				NewCondition("id", CompareEqual, sqltypes.NewInt64(5)),
			},
		},
		{
			"equal.null",
			[]*Condition{NewCondition("id", CompareEqual, sqltypes.NULL)},
		},
		{
			"false",
			[]*Condition{
				NewFalseCondition("id"),
				NewCondition("id", CompareEqual, sqltypes.NewInt64(5)),
			},
		},
		{
			"start.bigger.than.end",
			[]*Condition{
				NewCondition("id", CompareBigger, sqltypes.NewInt64(10)),
				NewCondition("id", CompareSmaller, sqltypes.NewInt64(5)),
			},
		},
		{
			"empty.half.open.point",
			[]*Condition{
				NewCondition("id", CompareBigger, sqltypes.NewInt64(5)),
				NewCondition("id", CompareSmallerEqual, sqltypes.NewInt64(5)),
			},
		},
		{
			"values.outside.range",
			[]*Condition{
				NewInCondition("id", int64s(1, 2)...),
				NewCondition("id", CompareBigger, sqltypes.NewInt64(5)),
			},
		},
		{
			"is.null.with.range",
			[]*Condition{
				NewIsNullCondition("id"),
				NewCondition("id", CompareBigger, sqltypes.NewInt64(5)),
			},
		},
		{
			"in.null.only",
			[]*Condition{NewInCondition("id", sqltypes.NULL)},
		},
	}
	for _, test := range tests {
		arg, alwaysFalse, err := analyzer.Analyze(ctx, col, test.conds)
		assert.Nil(t, err, test.name)
		assert.True(t, alwaysFalse, test.name)
		assert.Nil(t, arg, test.name)
	}
}

func TestAnalyzerNullBound(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	col := RuleColumn{Name: "id"}
	ctx := context.Background()
	conds := func() []*Condition {
		return []*Condition{
			NewCondition("id", CompareBigger, sqltypes.NULL),
			NewCondition("id", CompareSmaller, sqltypes.NewInt64(10)),
		}
	}

	// Optimized, the NULL bound is skipped.
	{
		analyzer := NewAnalyzer(log, true)
		arg, alwaysFalse, err := analyzer.Analyze(ctx, col, conds())
		assert.Nil(t, err)
		assert.False(t, alwaysFalse)
		assert.Equal(t, "RANGE(-inf,10)", arg.String())

		arg, alwaysFalse, err = analyzer.Analyze(ctx, col, []*Condition{
			NewCondition("id", CompareBigger, sqltypes.NULL),
			NewCondition("id", CompareSmaller, sqltypes.NULL),
		})
		assert.Nil(t, err)
		assert.False(t, alwaysFalse)
		assert.Equal(t, "NONE", arg.String())
	}

	// Strict, a NULL bound empties the range.
	{
		analyzer := NewAnalyzer(log, false)
		arg, alwaysFalse, err := analyzer.Analyze(ctx, col, conds())
		assert.Nil(t, err)
		assert.True(t, alwaysFalse)
		assert.Nil(t, arg)

		arg, alwaysFalse, err = analyzer.Analyze(ctx, col, []*Condition{
			NewCondition("id", CompareBigger, sqltypes.NULL),
			NewCondition("id", CompareSmaller, sqltypes.NULL),
		})
		assert.Nil(t, err)
		assert.True(t, alwaysFalse)
		assert.Nil(t, arg)
	}
}

func TestAnalyzerStringValues(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	analyzer := NewAnalyzer(log, true)
	col := RuleColumn{Name: "name"}
	ctx := context.Background()

	tests := []struct {
		name  string
		conds []*Condition
		want  string
	}{
		{
			"case.differs",
			[]*Condition{
				NewCondition("name", CompareEqual, sqltypes.NewVarChar("a")),
				NewCondition("name", CompareEqual, sqltypes.NewVarChar("A")),
			},
			"FIXED(a,A)",
		},
		{
			"trailing.space",
			[]*Condition{
				NewCondition("name", CompareEqual, sqltypes.NewVarChar("abc ")),
				NewCondition("name", CompareEqual, sqltypes.NewVarChar("abc")),
			},
			"FIXED(abc ,abc)",
		},
		{
			"in.list.and.equal",
			[]*Condition{
				NewInCondition("name", sqltypes.NewVarChar("x"), sqltypes.NewVarChar("y")),
				NewCondition("name", CompareEqual, sqltypes.NewVarChar("X")),
			},
			"FIXED(x,y,X)",
		},
		{
			"value.outside.byte.range",
			[]*Condition{
				NewCondition("name", CompareEqual, sqltypes.NewVarChar("a")),
				NewCondition("name", CompareBigger, sqltypes.NewVarChar("B")),
				NewCondition("name", CompareSmaller, sqltypes.NewVarChar("C")),
			},
			"FIXED(a)",
		},
		{
			"crossed.byte.range",
			[]*Condition{
				NewCondition("name", CompareBigger, sqltypes.NewVarChar("b")),
				NewCondition("name", CompareSmaller, sqltypes.NewVarChar("C")),
			},
			"RANGE(b,C)",
		},
	}
	for _, test := range tests {
		arg, alwaysFalse, err := analyzer.Analyze(ctx, col, test.conds)
		assert.Nil(t, err, test.name)
		assert.False(t, alwaysFalse, test.name)
		assert.Equal(t, test.want, arg.String(), test.name)
	}
}

func TestAnalyzerConvert(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	analyzer := NewAnalyzer(log, true)
	col := RuleColumn{Name: "id", Type: sqltypes.Int64}
	ctx := context.Background()

	{
		arg, alwaysFalse, err := analyzer.Analyze(ctx, col, []*Condition{
			NewCondition("id", CompareEqual, sqltypes.NewVarChar("7")),
		})
		assert.Nil(t, err)
		assert.False(t, alwaysFalse)
		assert.Equal(t, "FIXED(7)", arg.String())
		assert.Equal(t, sqltypes.Int64, arg.Values[0].Type())
	}

	// Unconvertible literal leaves the condition without effect.
	{
		arg, alwaysFalse, err := analyzer.Analyze(ctx, col, []*Condition{
			NewCondition("id", CompareEqual, sqltypes.NewVarChar("x")),
			NewCondition("id", CompareBigger, sqltypes.NewVarChar("y")),
		})
		assert.Nil(t, err)
		assert.False(t, alwaysFalse)
		assert.Equal(t, "NONE", arg.String())
	}
	{
		arg, _, err := analyzer.Analyze(ctx, col, []*Condition{
			NewInCondition("id", sqltypes.NewVarChar("1"), sqltypes.NewVarChar("x")),
		})
		assert.Nil(t, err)
		assert.Equal(t, "NONE", arg.String())
	}
}

func TestAnalyzerInQuery(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	analyzer := NewAnalyzer(log, true)
	col := RuleColumn{Name: "id"}
	ctx := context.Background()

	{
		cursor := NewResultCursor(mockResult(sqltypes.NewInt64(1), sqltypes.NULL, sqltypes.NewInt64(2), sqltypes.NewInt64(1)))
		arg, alwaysFalse, err := analyzer.Analyze(ctx, col, []*Condition{NewInQueryCondition("id", cursor)})
		assert.Nil(t, err)
		assert.False(t, alwaysFalse)
		assert.Equal(t, "FIXED(1,2)", arg.String())
		assert.True(t, cursor.Closed())
	}

	// Empty sub-query.
	{
		cursor := NewResultCursor(mockResult())
		_, alwaysFalse, err := analyzer.Analyze(ctx, col, []*Condition{NewInQueryCondition("id", cursor)})
		assert.Nil(t, err)
		assert.True(t, alwaysFalse)
		assert.True(t, cursor.Closed())
	}

	// Short circuit still closes the cursor.
	{
		cursor := NewResultCursor(mockResult(sqltypes.NewInt64(1)))
		_, alwaysFalse, err := analyzer.Analyze(ctx, col, []*Condition{
			NewFalseCondition("id"),
			NewInQueryCondition("id", cursor),
		})
		assert.Nil(t, err)
		assert.True(t, alwaysFalse)
		assert.True(t, cursor.Closed())
	}

	// Cursor error.
	{
		cursor := &errorCursor{ResultCursor: NewResultCursor(mockResult(sqltypes.NewInt64(1))), err: errors.New("mock.cursor.error")}
		_, _, err := analyzer.Analyze(ctx, col, []*Condition{NewInQueryCondition("id", cursor)})
		assert.NotNil(t, err)
		assert.Contains(t, err.Error(), "mock.cursor.error")
		assert.True(t, cursor.Closed())
	}

	// Canceled context.
	{
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		cursor := NewResultCursor(mockResult(sqltypes.NewInt64(1)))
		_, _, err := analyzer.Analyze(cctx, col, []*Condition{NewInQueryCondition("id", cursor)})
		assert.NotNil(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.True(t, cursor.Closed())
	}
}
