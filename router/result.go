/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package router

import (
	"encoding/json"
)

// Result is the set of nodes a statement must be sent to.
// An empty result means the predicate can never be true.
type Result struct {
	Table string `json:"table"`
	// Replicated is set for GLOBAL tables, the nodes are identical copies.
	Replicated bool        `json:"replicated,omitempty"`
	Nodes      []TableNode `json:"nodes"`
}

// newResult creates a result, nodes keep their order and duplicates are dropped.
func newResult(table string, nodes []TableNode) *Result {
	r := &Result{Table: table, Nodes: make([]TableNode, 0, len(nodes))}
	seen := make(map[TableNode]struct{}, len(nodes))
	for _, n := range nodes {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		r.Nodes = append(r.Nodes, n)
	}
	return r
}

// emptyResult is the result of an unsatisfiable predicate.
func emptyResult(table string) *Result {
	return &Result{Table: table, Nodes: []TableNode{}}
}

// IsEmpty returns true if no node has to be contacted.
func (r *Result) IsEmpty() bool {
	return len(r.Nodes) == 0
}

// IsMultipleNode returns true if more than one dispatch unit is routed,
// the replicas of a GLOBAL table count as one unit.
func (r *Result) IsMultipleNode() bool {
	return len(r.Group()) > 1
}

// Group returns the dispatch units of the result.
func (r *Result) Group() []GroupTableNode {
	if r.IsEmpty() {
		return nil
	}
	if r.Replicated {
		nodes := make([]TableNode, len(r.Nodes))
		copy(nodes, r.Nodes)
		return []GroupTableNode{{Kind: NodeGroup, Nodes: nodes}}
	}
	groups := make([]GroupTableNode, 0, len(r.Nodes))
	for _, n := range r.Nodes {
		groups = append(groups, GroupTableNode{Kind: NodeSingle, Nodes: []TableNode{n}})
	}
	return groups
}

// Backends returns the nodes grouped by backend, backends in first-seen order.
func (r *Result) Backends() ([]string, map[string][]TableNode) {
	order := make([]string, 0, 4)
	m := make(map[string][]TableNode)
	for _, n := range r.Nodes {
		if _, ok := m[n.Backend]; !ok {
			order = append(order, n.Backend)
		}
		m[n.Backend] = append(m[n.Backend], n)
	}
	return order, m
}

// JSON returns the result in json.
func (r *Result) JSON() string {
	bout, err := json.MarshalIndent(r, "", "\t")
	if err != nil {
		return err.Error()
	}
	return string(bout)
}
