/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package proxy

import (
	"context"

	"github.com/radondb/shardkit/backend"
	"github.com/radondb/shardkit/planner"
	"github.com/radondb/shardkit/router"
	"github.com/radondb/shardkit/xbase"

	"github.com/pkg/errors"
	"github.com/xelabs/go-mysqlstack/sqlparser/depends/sqltypes"
)

const (
	maxLogQueryLength = 256
)

// NodeResult is the outcome of the statement on one node.
type NodeResult struct {
	Node   router.TableNode
	Rows   []int
	Result *sqltypes.Result
}

// QueryBuilder returns the statement text sent to the node,
// rows are the insert rows routed to it.
type QueryBuilder func(node router.TableNode, rows []int) string

type dispatch struct {
	node router.TableNode
	rows []int
}

// targets picks the nodes the plan is sent to. Reads of a replicated
// table need one member of the group, writes go to every member.
func targets(plan *planner.Plan) []dispatch {
	if plan.Type == planner.PlanTypeInsert {
		out := make([]dispatch, 0, len(plan.Partitions))
		for _, part := range plan.Partitions {
			out = append(out, dispatch{node: part.Node, rows: part.Rows})
		}
		return out
	}

	var out []dispatch
	for _, group := range plan.Result.Group() {
		if group.Kind == router.NodeGroup && plan.Type == planner.PlanTypeSelect {
			out = append(out, dispatch{node: group.First()})
			continue
		}
		for _, node := range group.Nodes {
			out = append(out, dispatch{node: node})
		}
	}
	return out
}

// Execute plans the query and runs it inside the session on every routed node.
// A nil builder sends the query text as is. Execution stops on the first
// failure, the caller decides whether to roll the session back.
func (p *Proxy) Execute(ctx context.Context, session *backend.Session, database string, query string, build QueryBuilder) (*planner.Plan, []NodeResult, error) {
	log := p.log

	plan, err := p.planner.Plan(ctx, database, query)
	if err != nil {
		return nil, nil, err
	}

	var results []NodeResult
	for _, target := range targets(plan) {
		text := query
		if build != nil {
			text = build(target.node, target.rows)
		}
		conn, err := session.Acquire(ctx, target.node.Backend)
		if err != nil {
			return plan, results, err
		}
		qr, err := conn.Execute(text)
		if err != nil {
			log.Error("proxy.execute.on[%s].query[%s].error:%v", target.node, xbase.TruncateQuery(text, maxLogQueryLength), err)
			return plan, results, errors.WithMessagef(err, "proxy.execute.on[%s]", target.node)
		}
		results = append(results, NodeResult{Node: target.node, Rows: target.rows, Result: qr})
	}
	return plan, results, nil
}

// runSubQuery runs a sub-select outside any transaction and returns its rows
// as a cursor. Each replicated group is read once, shard results are appended.
func (p *Proxy) runSubQuery(ctx context.Context, database string, query string) (router.SubQuery, error) {
	plan, err := p.planner.Plan(ctx, database, query)
	if err != nil {
		return nil, err
	}
	if plan.Type != planner.PlanTypeSelect {
		return nil, errors.Errorf("unsupported: subquery.type[%s]", plan.Type)
	}

	merged := &sqltypes.Result{}
	for _, target := range targets(plan) {
		qr, err := p.executeStateless(ctx, target.node.Backend, query)
		if err != nil {
			return nil, err
		}
		if merged.Fields == nil {
			merged.Fields = qr.Fields
		}
		merged.Rows = append(merged.Rows, qr.Rows...)
	}
	merged.RowsAffected = uint64(len(merged.Rows))
	return router.NewResultCursor(merged), nil
}

func (p *Proxy) executeStateless(ctx context.Context, name string, query string) (*sqltypes.Result, error) {
	source, ok := p.scatter.Source(name)
	if !ok {
		return nil, errors.Errorf("proxy.can.not.find.backend[%s]", name)
	}
	conn, err := source.Get(ctx)
	if err != nil {
		return nil, errors.WithMessagef(err, "proxy.stateless.backend[%s]", name)
	}
	defer conn.Recycle()

	qr, err := conn.Execute(query)
	if err != nil {
		return nil, errors.WithMessagef(err, "proxy.stateless.backend[%s]", name)
	}
	return qr, nil
}

// Explain returns the plan of the query, only sub-selects are executed.
func (p *Proxy) Explain(ctx context.Context, database string, query string) (*planner.Plan, error) {
	return p.planner.Plan(ctx, database, query)
}

// Ping runs a health check query on every backend outside any transaction.
func (p *Proxy) Ping(ctx context.Context) error {
	for _, name := range p.scatter.Backends() {
		if _, err := p.executeStateless(ctx, name, "select 1"); err != nil {
			return err
		}
	}
	return nil
}
