/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package router

import (
	"fmt"
)

// TableNode is one physical table instance.
// It is a plain value, two nodes are equal iff all fields are equal.
type TableNode struct {
	Backend string `json:"backend"`
	Table   string `json:"table"`
	Suffix  string `json:"suffix,omitempty"`
}

// CompositeTableName returns the physical table name with the suffix.
func (n TableNode) CompositeTableName() string {
	return n.Table + n.Suffix
}

// String returns backend.table.
func (n TableNode) String() string {
	return fmt.Sprintf("%s.%s", n.Backend, n.CompositeTableName())
}

// NodeKind tags a GroupTableNode.
type NodeKind int

const (
	// NodeSingle is one node, results of several single nodes are unioned.
	NodeSingle NodeKind = iota
	// NodeGroup is a set of identical replicas treated as one routing unit,
	// writes fan out to every member, reads need any one member.
	NodeGroup
)

// String returns the kind name.
func (k NodeKind) String() string {
	switch k {
	case NodeGroup:
		return "group"
	}
	return "single"
}

// MarshalText makes the kind readable in JSON.
func (k NodeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// GroupTableNode is the dispatch unit handed to the executor.
type GroupTableNode struct {
	Kind  NodeKind    `json:"kind"`
	Nodes []TableNode `json:"nodes"`
}

// First returns the first member.
func (g GroupTableNode) First() TableNode {
	return g.Nodes[0]
}
