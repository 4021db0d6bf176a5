/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package planner

import (
	"context"
	"strings"

	"github.com/radondb/shardkit/router"

	"github.com/pkg/errors"
	"github.com/xelabs/go-mysqlstack/sqlparser"
	"github.com/xelabs/go-mysqlstack/sqlparser/depends/sqltypes"
)

// SubQueryRunner runs a sub-select and returns a cursor over its rows.
type SubQueryRunner func(ctx context.Context, database string, query string) (router.SubQuery, error)

// conditionBuilder collects the index conditions on the rule columns of
// one table from a where clause.
type conditionBuilder struct {
	ctx      context.Context
	database string
	table    string
	alias    string
	columns  []router.RuleColumn
	runner   SubQueryRunner
	conds    []*router.Condition
}

func (b *conditionBuilder) ruleColumn(node sqlparser.Expr) (string, bool) {
	name, ok := columnOf(node, b.table, b.alias)
	if !ok {
		return "", false
	}
	for _, col := range b.columns {
		if strings.EqualFold(col.Name, name) {
			return col.Name, true
		}
	}
	return "", false
}

func (b *conditionBuilder) alwaysFalse() {
	for _, col := range b.columns {
		b.conds = append(b.conds, router.NewFalseCondition(col.Name))
	}
}

// build returns the conditions, opened sub-query cursors are closed on error.
func (b *conditionBuilder) build(where *sqlparser.Where) ([]*router.Condition, error) {
	if where == nil || len(b.columns) == 0 {
		return nil, nil
	}
	for _, filter := range splitAndExpression(nil, where.Expr) {
		if err := b.add(skipParenthesis(filter)); err != nil {
			for _, cond := range b.conds {
				if cond.Query != nil {
					cond.Query.Close()
				}
			}
			return nil, err
		}
	}
	return b.conds, nil
}

func (b *conditionBuilder) add(filter sqlparser.Expr) error {
	switch expr := filter.(type) {
	case sqlparser.BoolVal:
		if !expr {
			b.alwaysFalse()
		}
	case *sqlparser.IsExpr:
		if expr.Operator != sqlparser.IsNullStr {
			return nil
		}
		if col, ok := b.ruleColumn(expr.Expr); ok {
			b.conds = append(b.conds, router.NewIsNullCondition(col))
		}
	case *sqlparser.RangeCond:
		if expr.Operator != sqlparser.BetweenStr {
			return nil
		}
		col, ok := b.ruleColumn(expr.Left)
		if !ok {
			return nil
		}
		from, fok := valueOf(expr.From)
		to, tok := valueOf(expr.To)
		if fok && tok {
			b.conds = append(b.conds,
				router.NewCondition(col, router.CompareBiggerEqual, from),
				router.NewCondition(col, router.CompareSmallerEqual, to),
			)
		}
	case *sqlparser.ComparisonExpr:
		return b.addComparison(expr)
	}
	return nil
}

func (b *conditionBuilder) addComparison(expr *sqlparser.ComparisonExpr) error {
	if expr.Operator == sqlparser.InStr {
		col, ok := b.ruleColumn(expr.Left)
		if !ok {
			return nil
		}
		switch right := expr.Right.(type) {
		case sqlparser.ValTuple:
			values := make([]sqltypes.Value, 0, len(right))
			for _, e := range right {
				v, ok := valueOf(e)
				if !ok {
					return nil
				}
				values = append(values, v)
			}
			b.conds = append(b.conds, router.NewInCondition(col, values...))
		case *sqlparser.Subquery:
			if b.runner == nil {
				return nil
			}
			query := sqlparser.String(right.Select)
			cursor, err := b.runner(b.ctx, b.database, query)
			if err != nil {
				return errors.WithMessagef(err, "planner.subquery[%s]", query)
			}
			b.conds = append(b.conds, router.NewInQueryCondition(col, cursor))
		}
		return nil
	}

	typ, ok := compareTypes[expr.Operator]
	if !ok {
		return nil
	}
	if col, ok := b.ruleColumn(expr.Left); ok {
		if v, ok := valueOf(expr.Right); ok {
			b.conds = append(b.conds, router.NewCondition(col, typ, v))
		}
		return nil
	}
	if col, ok := b.ruleColumn(expr.Right); ok {
		if v, ok := valueOf(expr.Left); ok {
			b.conds = append(b.conds, router.NewCondition(col, compareTypes[flipOperators[expr.Operator]], v))
		}
		return nil
	}

	// Constant comparison like 1 = 0. Strings compare by collation on the
	// server, so only NULL and numeric operands fold.
	if expr.Operator == sqlparser.EqualStr {
		l, lok := valueOf(expr.Left)
		r, rok := valueOf(expr.Right)
		if !lok || !rok {
			return nil
		}
		if l.IsNull() || r.IsNull() || (numeric(l) && numeric(r) && sqltypes.Compare(l, r) != 0) {
			b.alwaysFalse()
		}
	}
	return nil
}
