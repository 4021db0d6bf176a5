/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package planner

import (
	"github.com/radondb/shardkit/router"

	"github.com/xelabs/go-mysqlstack/sqlparser/depends/common"
)

// RowsTuple is the rows of an insert landing on one node,
// rows are indexes into the values list of the statement.
type RowsTuple struct {
	Node router.TableNode `json:"node"`
	Rows []int            `json:"rows"`
}

// Plan is the routing of one statement.
type Plan struct {
	Type     PlanType `json:"type"`
	Database string   `json:"database"`
	Table    string   `json:"table"`
	RawQuery string   `json:"query"`

	// Result holds every node the statement touches.
	Result *router.Result `json:"result"`

	// Partitions is set for inserts only.
	Partitions []RowsTuple `json:"partitions,omitempty"`
}

// IsEmpty returns true if no backend needs to be contacted.
func (p *Plan) IsEmpty() bool {
	return p.Result.IsEmpty()
}

// JSON returns the plan info.
func (p *Plan) JSON() string {
	out, err := common.ToJSONString(p, false, "", "\t")
	if err != nil {
		return err.Error()
	}
	return out
}
