/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package router

import (
	"sort"
)

// Calculate resolves the nodes of the table for the arguments,
// one argument per rule column in rule order.
// Every index a partitioner returns is checked against the partition list.
func Calculate(tr *TableRouter, args []*Argument) (*Result, error) {
	if !tr.IsPartitioned() {
		return tableResult(tr), nil
	}
	if len(args) != len(tr.RuleColumns) {
		return nil, newRoutingError(tr.ID, KindConfig, "arguments[%d].must.match.rule.columns[%d]", len(args), len(tr.RuleColumns))
	}

	var err error
	var idxs []int
	var input string
	algo := tr.Partitioner.Name()

	if len(args) > 1 {
		mp, ok := tr.Partitioner.(MultiColumnPartitioner)
		if !ok {
			return nil, newRoutingError(tr.ID, KindConfig, "partitioner[%s].does.not.support.multi.column.routing[%d.columns]", algo, len(args))
		}
		input = argumentsString(args)
		idxs, err = mp.PartitionArguments(args)
	} else {
		arg := args[0]
		input = arg.String()
		switch arg.Kind {
		case ArgNone:
			return newResult(tr.ID, tr.Partition), nil
		case ArgFixed:
			idxs, err = tr.Partitioner.Partition(arg.Values)
		case ArgRange:
			idxs, err = tr.Partitioner.PartitionRange(arg.StartValue(), arg.EndValue())
		}
	}
	if err != nil {
		return nil, newRoutingError(tr.ID, KindEvaluation, "partitioner[%s].input[%s]:%v", algo, input, err)
	}
	if idxs == nil {
		return nil, newRoutingError(tr.ID, KindConfig, "partitioner[%s].returned.nil.for[%s]", algo, input)
	}

	size := len(tr.Partition)
	for _, idx := range idxs {
		if idx < 0 || idx >= size {
			return nil, newRoutingError(tr.ID, KindConfig, "partitioner[%s].index[%d].out.of.range[0,%d).for[%s]", algo, idx, size, input)
		}
	}

	// Configured order, no duplicates.
	sort.Ints(idxs)
	nodes := make([]TableNode, 0, len(idxs))
	for i, idx := range idxs {
		if i > 0 && idxs[i-1] == idx {
			continue
		}
		nodes = append(nodes, tr.Partition[idx])
	}
	return newResult(tr.ID, nodes), nil
}

// tableResult returns every node of an unpartitioned table.
func tableResult(tr *TableRouter) *Result {
	r := newResult(tr.ID, tr.Partition)
	r.Replicated = tr.Type == methodTypeGlobal
	return r
}

func argumentsString(args []*Argument) string {
	s := ""
	for i, arg := range args {
		if i > 0 {
			s += ","
		}
		s += arg.String()
	}
	return s
}
