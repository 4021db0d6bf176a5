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

	"github.com/radondb/shardkit/monitor"
	"github.com/radondb/shardkit/router"
	"github.com/radondb/shardkit/xbase"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/xelabs/go-mysqlstack/sqlparser"
	"github.com/xelabs/go-mysqlstack/sqlparser/depends/sqltypes"
	"github.com/xelabs/go-mysqlstack/xlog"
)

const (
	// maxErrorQueryLength is the query length kept in error messages.
	maxErrorQueryLength = 256
)

// Planner turns a statement into the nodes it must be sent to.
type Planner struct {
	log     *xlog.Log
	handler *router.Handler
	cache   *lru.Cache
	runner  SubQueryRunner
}

// NewPlanner creates the planner, size is the parsed statement cache size.
func NewPlanner(log *xlog.Log, handler *router.Handler, size int) (*Planner, error) {
	if size <= 0 {
		size = 1
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &Planner{
		log:     log,
		handler: handler,
		cache:   cache,
	}, nil
}

// SetSubQueryRunner sets the runner of IN (SELECT ...) conditions.
// Without a runner such conditions do not narrow the route.
func (p *Planner) SetSubQueryRunner(runner SubQueryRunner) {
	p.runner = runner
}

// CacheLen returns the number of parsed statements in the cache.
func (p *Planner) CacheLen() int {
	return p.cache.Len()
}

// parse returns the statement, from the cache if possible.
// Cached statements are shared and must be treated read-only.
func (p *Planner) parse(query string) (sqlparser.Statement, error) {
	if v, ok := p.cache.Get(query); ok {
		return v.(sqlparser.Statement), nil
	}
	stmt, err := sqlparser.Parse(query)
	if err != nil {
		return nil, errors.Wrapf(err, "planner.parse.query[%s]", xbase.TruncateQuery(query, maxErrorQueryLength))
	}
	p.cache.Add(query, stmt)
	return stmt, nil
}

// Plan routes the query under the database.
func (p *Planner) Plan(ctx context.Context, database string, query string) (*Plan, error) {
	stmt, err := p.parse(query)
	if err != nil {
		monitor.RouteTotalCounterInc("parse", "error")
		return nil, err
	}

	var plan *Plan
	var typ PlanType
	switch node := stmt.(type) {
	case *sqlparser.Insert:
		typ = PlanTypeInsert
		plan, err = p.planInsert(database, query, node)
	case *sqlparser.Select:
		typ = PlanTypeSelect
		plan, err = p.planSelect(ctx, database, query, node)
	case *sqlparser.Update:
		typ = PlanTypeUpdate
		plan, err = p.planUpdate(ctx, database, query, node)
	case *sqlparser.Delete:
		typ = PlanTypeDelete
		plan, err = p.planDelete(ctx, database, query, node)
	default:
		monitor.RouteTotalCounterInc("unsupported", "error")
		return nil, errors.Errorf("unsupported: query[%s].type[%T]", xbase.TruncateQuery(query, maxErrorQueryLength), stmt)
	}

	if err != nil {
		p.log.Warning("planner.plan[%s].error:%v", xbase.TruncateQuery(query, maxErrorQueryLength), err)
		monitor.RouteTotalCounterInc(string(typ), "error")
		return nil, err
	}
	if plan.IsEmpty() {
		monitor.RouteTotalCounterInc(string(typ), "empty")
	} else {
		monitor.RouteTotalCounterInc(string(typ), "ok")
	}
	return plan, nil
}

func tableOf(database string, name sqlparser.TableName) (string, string) {
	if !name.Qualifier.IsEmpty() {
		database = name.Qualifier.String()
	}
	return database, name.Name.String()
}

func (p *Planner) ruleColumns(database, table string) ([]router.RuleColumn, error) {
	tr, err := p.handler.Router().TableRouter(database, table)
	if err != nil {
		return nil, err
	}
	return tr.RuleColumns, nil
}

func (p *Planner) route(ctx context.Context, database, table, alias string, where *sqlparser.Where) (*router.Result, error) {
	columns, err := p.ruleColumns(database, table)
	if err != nil {
		return nil, err
	}
	builder := &conditionBuilder{
		ctx:      ctx,
		database: database,
		table:    table,
		alias:    alias,
		columns:  columns,
		runner:   p.runner,
	}
	conds, err := builder.build(where)
	if err != nil {
		return nil, err
	}
	return p.handler.Route(ctx, database, table, conds)
}

func (p *Planner) planInsert(database, query string, node *sqlparser.Insert) (*Plan, error) {
	database, table := tableOf(database, node.Table)
	columns, err := p.ruleColumns(database, table)
	if err != nil {
		return nil, err
	}

	if len(node.OnDup) > 0 {
		if col, ok := isRuleColumnChanging(sqlparser.UpdateExprs(node.OnDup), columns); ok {
			return nil, errors.Errorf("unsupported: cannot.update.shard.key[%s]", col)
		}
	}
	rows, ok := node.Rows.(sqlparser.Values)
	if !ok {
		return nil, errors.Errorf("unsupported: rows.can.not.be.subquery[%T]", node.Rows)
	}
	if len(columns) > 0 && len(node.Columns) == 0 {
		return nil, errors.Errorf("unsupported: insert.into.%s.without.column.list", table)
	}

	plan := &Plan{
		Type:     PlanTypeInsert,
		Database: database,
		Table:    table,
		RawQuery: query,
	}
	var nodes []router.TableNode
	index := make(map[router.TableNode]int)
	for i, row := range rows {
		if len(row) != len(node.Columns) && len(node.Columns) > 0 {
			return nil, errors.Errorf("unsupported: row[%d].values.count[%d].mismatch.columns[%d]", i, len(row), len(node.Columns))
		}
		values := make(map[string]sqltypes.Value, len(row))
		for j, column := range node.Columns {
			name := column.String()
			v, ok := valueOf(row[j])
			if !ok {
				for _, col := range columns {
					if strings.EqualFold(col.Name, name) {
						return nil, errors.Errorf("unsupported: shardkey[%s].type.canot.be[%T]", col.Name, row[j])
					}
				}
				continue
			}
			values[name] = v
		}

		result, err := p.handler.RouteRow(database, table, values)
		if err != nil {
			return nil, err
		}
		for _, n := range result.Nodes {
			k, ok := index[n]
			if !ok {
				k = len(plan.Partitions)
				index[n] = k
				nodes = append(nodes, n)
				plan.Partitions = append(plan.Partitions, RowsTuple{Node: n})
			}
			plan.Partitions[k].Rows = append(plan.Partitions[k].Rows, i)
		}
		if plan.Result == nil {
			plan.Result = result
		}
	}
	if plan.Result == nil {
		return nil, errors.New("unsupported: insert.without.rows")
	}
	plan.Result = &router.Result{Table: plan.Result.Table, Replicated: plan.Result.Replicated, Nodes: nodes}
	return plan, nil
}

func (p *Planner) planSelect(ctx context.Context, database, query string, node *sqlparser.Select) (*Plan, error) {
	if len(node.From) != 1 {
		return nil, errors.Errorf("unsupported: select.from.multiple.tables[%s]", xbase.TruncateQuery(query, maxErrorQueryLength))
	}
	aliased, ok := node.From[0].(*sqlparser.AliasedTableExpr)
	if !ok {
		return nil, errors.Errorf("unsupported: select.from[%T]", node.From[0])
	}
	name, ok := aliased.Expr.(sqlparser.TableName)
	if !ok {
		return nil, errors.Errorf("unsupported: select.from.derived.table[%T]", aliased.Expr)
	}
	database, table := tableOf(database, name)
	result, err := p.route(ctx, database, table, aliased.As.String(), node.Where)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Type:     PlanTypeSelect,
		Database: database,
		Table:    table,
		RawQuery: query,
		Result:   result,
	}, nil
}

func (p *Planner) planUpdate(ctx context.Context, database, query string, node *sqlparser.Update) (*Plan, error) {
	if node.Where == nil {
		return nil, errors.New("unsupported: missing.where.clause.in.DML")
	}
	database, table := tableOf(database, node.Table)
	columns, err := p.ruleColumns(database, table)
	if err != nil {
		return nil, err
	}
	if col, ok := isRuleColumnChanging(node.Exprs, columns); ok {
		return nil, errors.Errorf("unsupported: cannot.update.shard.key[%s]", col)
	}
	result, err := p.route(ctx, database, table, "", node.Where)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Type:     PlanTypeUpdate,
		Database: database,
		Table:    table,
		RawQuery: query,
		Result:   result,
	}, nil
}

func (p *Planner) planDelete(ctx context.Context, database, query string, node *sqlparser.Delete) (*Plan, error) {
	if len(node.TableRefs) != 1 {
		return nil, errors.Errorf("unsupported: delete.from.multiple.tables[%s]", xbase.TruncateQuery(query, maxErrorQueryLength))
	}
	aliased, ok := node.TableRefs[0].(*sqlparser.AliasedTableExpr)
	if !ok {
		return nil, errors.Errorf("unsupported: delete.from[%T]", node.TableRefs[0])
	}
	name, ok := aliased.Expr.(sqlparser.TableName)
	if !ok {
		return nil, errors.Errorf("unsupported: delete.from[%T]", aliased.Expr)
	}
	database, table := tableOf(database, name)
	result, err := p.route(ctx, database, table, aliased.As.String(), node.Where)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Type:     PlanTypeDelete,
		Database: database,
		Table:    table,
		RawQuery: query,
		Result:   result,
	}, nil
}
