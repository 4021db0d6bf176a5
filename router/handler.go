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
	"fmt"
	"strings"

	"github.com/xelabs/go-mysqlstack/sqlparser/depends/sqltypes"
	"github.com/xelabs/go-mysqlstack/xlog"
)

// Handler is the routing entry point of the executor.
type Handler struct {
	log      *xlog.Log
	router   *Router
	analyzer *Analyzer
}

// NewHandler creates the handler over the router.
func NewHandler(log *xlog.Log, router *Router) *Handler {
	return &Handler{
		log:      log,
		router:   router,
		analyzer: NewAnalyzer(log, router.Config().OptimizeIsNull),
	}
}

// Router returns the router.
func (h *Handler) Router() *Router {
	return h.router
}

func (h *Handler) lookup(database, table string) (*TableRouter, error) {
	tr, err := h.router.TableRouter(database, table)
	if err != nil {
		return nil, wrapRoutingError(fmt.Sprintf("%s.%s", database, table), KindUnknownTable, err)
	}
	return tr, nil
}

// RouteRow routes one row being written, the row must land on exactly one node.
// Keys of row are column names, matched case-insensitively.
// Unpartitioned tables return all their nodes.
func (h *Handler) RouteRow(database, table string, row map[string]sqltypes.Value) (*Result, error) {
	tr, err := h.lookup(database, table)
	if err != nil {
		return nil, err
	}
	if !tr.IsPartitioned() {
		return tableResult(tr), nil
	}

	args := make([]*Argument, 0, len(tr.RuleColumns))
	for _, col := range tr.RuleColumns {
		v, ok := rowValue(row, col.Name)
		if !ok {
			return nil, newRoutingError(tr.ID, KindNoPartition, "row.missing.rule.column[%s]", col.Name)
		}
		cv, err := col.Convert(v)
		if err != nil {
			return nil, newRoutingError(tr.ID, KindEvaluation, "row.column[%s].value[%s]:%v", col.Name, valueString(v), err)
		}
		args = append(args, FixedArgument(cv))
	}

	res, err := Calculate(tr, args)
	if err != nil {
		return nil, wrapRoutingError(tr.ID, KindEvaluation, err)
	}
	switch len(res.Nodes) {
	case 0:
		return nil, newRoutingError(tr.ID, KindNoPartition, "row[%s].has.no.partition", argumentsString(args))
	case 1:
		return res, nil
	default:
		return nil, newRoutingError(tr.ID, KindAmbiguous, "row[%s].routed.to.%d.nodes", argumentsString(args), len(res.Nodes))
	}
}

// Route routes a statement by the index conditions of its predicate.
// An unsatisfiable predicate returns an empty result.
// Every sub-query of conds is closed when Route returns.
func (h *Handler) Route(ctx context.Context, database, table string, conds []*Condition) (*Result, error) {
	defer closeQueries(conds)

	tr, err := h.lookup(database, table)
	if err != nil {
		return nil, err
	}
	if !tr.IsPartitioned() {
		return tableResult(tr), nil
	}

	args := make([]*Argument, 0, len(tr.RuleColumns))
	for _, col := range tr.RuleColumns {
		arg, alwaysFalse, err := h.analyzer.Analyze(ctx, col, conds)
		if err != nil {
			return nil, wrapRoutingError(tr.ID, KindEvaluation, err)
		}
		if alwaysFalse {
			h.log.Debug("router.route.table[%s].column[%s].always.false", tr.ID, col.Name)
			return emptyResult(tr.ID), nil
		}
		args = append(args, arg)
	}

	res, err := Calculate(tr, args)
	if err != nil {
		return nil, wrapRoutingError(tr.ID, KindEvaluation, err)
	}
	return res, nil
}

// closeQueries closes every sub-query cursor, closing twice is harmless
// for both ResultCursor and driver rows.
func closeQueries(conds []*Condition) {
	for _, cond := range conds {
		if cond.Query != nil {
			cond.Query.Close()
		}
	}
}

func rowValue(row map[string]sqltypes.Value, column string) (sqltypes.Value, bool) {
	if v, ok := row[column]; ok {
		return v, true
	}
	for k, v := range row {
		if strings.EqualFold(k, column) {
			return v, true
		}
	}
	return sqltypes.NULL, false
}
