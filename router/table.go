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
	"strings"

	"github.com/radondb/shardkit/config"

	"github.com/pkg/errors"
	"github.com/xelabs/go-mysqlstack/xlog"
)

// TableRouter binds a logical table to its physical nodes.
// It is immutable after NewTableRouter returns.
type TableRouter struct {
	// ID is database.table.
	ID        string      `json:"id"`
	Type      MethodType  `json:"type"`
	Partition []TableNode `json:"partition"`
	// RuleColumns in rule order, empty for GLOBAL and SINGLE tables.
	RuleColumns []RuleColumn `json:"rule-columns,omitempty"`
	// Partitioner is nil for GLOBAL and SINGLE tables.
	Partitioner Partitioner `json:"partitioner,omitempty"`

	conf *config.TableConfig
}

// NewTableRouter builds the router of a table from its config.
func NewTableRouter(log *xlog.Log, db string, conf *config.TableConfig, rconf *config.RouterConfig) (*TableRouter, error) {
	if conf == nil {
		return nil, errors.New("table.config.can't.be.nil")
	}
	if len(conf.Partitions) == 0 {
		return nil, errors.Errorf("router.table[%s.%s].partitions.can.not.be.empty", db, conf.Name)
	}

	tr := &TableRouter{
		ID:        fmt.Sprintf("%s.%s", db, conf.Name),
		Type:      MethodType(strings.ToUpper(conf.ShardType)),
		Partition: make([]TableNode, 0, len(conf.Partitions)),
		conf:      conf,
	}
	for _, part := range conf.Partitions {
		if part.Backend == "" {
			return nil, errors.Errorf("router.table[%s].partition[%s].backend.can.not.be.empty", tr.ID, part.Table)
		}
		table := part.Table
		if table == "" {
			table = conf.Name
		}
		tr.Partition = append(tr.Partition, TableNode{Backend: part.Backend, Table: table, Suffix: part.Suffix})
	}

	if !tr.Type.IsPartitioned() {
		if tr.Type == methodTypeSingle && len(tr.Partition) != 1 {
			return nil, errors.Errorf("router.single.table[%s].must.have.one.partition", tr.ID)
		}
		return tr, nil
	}

	columns := conf.RuleColumns()
	if len(columns) == 0 {
		return nil, errors.Errorf("router.table[%s].shardkey.can.not.be.empty", tr.ID)
	}
	if len(conf.ShardKeyTypes) > 0 && len(conf.ShardKeyTypes) != len(columns) {
		return nil, errors.Errorf("router.table[%s].shardkey-types[%d].must.match.shardkeys[%d]", tr.ID, len(conf.ShardKeyTypes), len(columns))
	}
	for i, name := range columns {
		col := RuleColumn{Name: name}
		if len(conf.ShardKeyTypes) > 0 {
			typ, err := ParseColumnType(conf.ShardKeyTypes[i])
			if err != nil {
				return nil, err
			}
			col.Type = typ
		}
		tr.RuleColumns = append(tr.RuleColumns, col)
	}

	multi := len(tr.RuleColumns) > 1
	switch tr.Type {
	case methodTypeHash:
		slots := conf.Slots
		if slots == 0 {
			slots = rconf.Slots
		}
		hash := NewHash(log, slots, conf)
		if err := hash.Build(); err != nil {
			return nil, err
		}
		if multi {
			tr.Partitioner = NewMultiHash(hash, len(tr.RuleColumns))
		} else {
			tr.Partitioner = hash
		}
		return tr, nil
	case methodTypeMod:
		mod := NewMod(log, conf)
		if err := mod.Build(); err != nil {
			return nil, err
		}
		tr.Partitioner = mod
	case methodTypeRange:
		rng := NewRange(log, conf)
		if err := rng.Build(); err != nil {
			return nil, err
		}
		tr.Partitioner = rng
	case methodTypeList:
		list := NewList(log, tr.RuleColumns[0], conf)
		if err := list.Build(); err != nil {
			return nil, err
		}
		tr.Partitioner = list
	default:
		return nil, errors.Errorf("router.unsupport.shardtype:[%v]", conf.ShardType)
	}
	return tr, nil
}

// Config returns the table config the router was built from.
func (tr *TableRouter) Config() *config.TableConfig {
	return tr.conf
}

// IsPartitioned returns false if the table carries no partitioner.
func (tr *TableRouter) IsPartitioned() bool {
	return tr.Partitioner != nil
}

// RuleColumn returns the rule column by name, case-insensitive.
func (tr *TableRouter) RuleColumn(name string) (RuleColumn, bool) {
	for _, col := range tr.RuleColumns {
		if strings.EqualFold(col.Name, name) {
			return col, true
		}
	}
	return RuleColumn{}, false
}

// Nodes returns a copy of all nodes in configured order.
func (tr *TableRouter) Nodes() []TableNode {
	nodes := make([]TableNode, len(tr.Partition))
	copy(nodes, tr.Partition)
	return nodes
}
