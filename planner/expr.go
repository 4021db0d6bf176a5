/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package planner

import (
	"strings"

	"github.com/radondb/shardkit/router"

	"github.com/xelabs/go-mysqlstack/sqlparser"
	"github.com/xelabs/go-mysqlstack/sqlparser/depends/common"
	"github.com/xelabs/go-mysqlstack/sqlparser/depends/sqltypes"
)

// flipOperators maps the operator of 'v op col' to 'col op v'.
var flipOperators = map[string]string{
	sqlparser.EqualStr:         sqlparser.EqualStr,
	sqlparser.NullSafeEqualStr: sqlparser.NullSafeEqualStr,
	sqlparser.LessThanStr:      sqlparser.GreaterThanStr,
	sqlparser.GreaterThanStr:   sqlparser.LessThanStr,
	sqlparser.LessEqualStr:     sqlparser.GreaterEqualStr,
	sqlparser.GreaterEqualStr:  sqlparser.LessEqualStr,
}

var compareTypes = map[string]router.CompareType{
	sqlparser.EqualStr:         router.CompareEqual,
	sqlparser.NullSafeEqualStr: router.CompareEqualNullSafe,
	sqlparser.LessThanStr:      router.CompareSmaller,
	sqlparser.GreaterThanStr:   router.CompareBigger,
	sqlparser.LessEqualStr:     router.CompareSmallerEqual,
	sqlparser.GreaterEqualStr:  router.CompareBiggerEqual,
}

// splitAndExpression breaks up the Expr into AND-separated conditions
// and appends them to filters.
func splitAndExpression(filters []sqlparser.Expr, node sqlparser.Expr) []sqlparser.Expr {
	if node == nil {
		return filters
	}
	switch node := node.(type) {
	case *sqlparser.AndExpr:
		filters = splitAndExpression(filters, node.Left)
		return splitAndExpression(filters, node.Right)
	case *sqlparser.ParenExpr:
		if node, ok := node.Expr.(*sqlparser.AndExpr); ok {
			return splitAndExpression(filters, node)
		}
	}
	return append(filters, node)
}

// skipParenthesis skips the parenthesis (if any) of an expression and
// returns the innermost unparenthesized expression.
func skipParenthesis(node sqlparser.Expr) sqlparser.Expr {
	if node, ok := node.(*sqlparser.ParenExpr); ok {
		return skipParenthesis(node.Expr)
	}
	return node
}

// columnOf returns the column name if the expr is a column of the table,
// qualifier is empty, the table name or its alias.
func columnOf(node sqlparser.Expr, table, alias string) (string, bool) {
	col, ok := node.(*sqlparser.ColName)
	if !ok {
		return "", false
	}
	qualifier := col.Qualifier.Name.String()
	if qualifier != "" && qualifier != table && qualifier != alias {
		return "", false
	}
	return col.Name.String(), true
}

// valueOf converts a literal to a value, ok is false for non-literals.
func valueOf(node sqlparser.Expr) (sqltypes.Value, bool) {
	switch node := node.(type) {
	case *sqlparser.NullVal:
		return sqltypes.NULL, true
	case sqlparser.BoolVal:
		if node {
			return sqltypes.NewInt64(1), true
		}
		return sqltypes.NewInt64(0), true
	case *sqlparser.SQLVal:
		switch node.Type {
		case sqlparser.StrVal:
			return sqltypes.MakeTrusted(sqltypes.VarChar, node.Val), true
		case sqlparser.IntVal:
			v, err := sqltypes.NewIntegral(common.BytesToString(node.Val))
			if err != nil {
				return sqltypes.NULL, false
			}
			return v, true
		case sqlparser.FloatVal:
			v, err := sqltypes.NewValue(sqltypes.Float64, node.Val)
			if err != nil {
				return sqltypes.NULL, false
			}
			return v, true
		case sqlparser.HexVal:
			b, err := node.HexDecode()
			if err != nil {
				return sqltypes.NULL, false
			}
			return sqltypes.MakeTrusted(sqltypes.VarBinary, b), true
		}
	}
	return sqltypes.NULL, false
}

// isRuleColumnChanging returns true if any of the update
// expressions modify a rule column.
func isRuleColumnChanging(exprs sqlparser.UpdateExprs, columns []router.RuleColumn) (string, bool) {
	for _, assignment := range exprs {
		name := assignment.Name.Name.String()
		for _, col := range columns {
			if strings.EqualFold(name, col.Name) {
				return col.Name, true
			}
		}
	}
	return "", false
}

func numeric(v sqltypes.Value) bool {
	return v.IsIntegral() || v.IsFloat()
}
