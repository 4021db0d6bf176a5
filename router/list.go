/*
 * Radon
 *
 * Copyright 2018-2019 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package router

import (
	"strings"

	"github.com/radondb/shardkit/config"

	"github.com/pkg/errors"
	"github.com/xelabs/go-mysqlstack/sqlparser/depends/sqltypes"
	"github.com/xelabs/go-mysqlstack/xlog"
)

// listEntry maps one list value to a partition.
type listEntry struct {
	value sqltypes.Value
	index int
}

// List maps explicit values to partitions.
// The literal NULL in a list names the partition of NULL values.
type List struct {
	log    *xlog.Log
	column RuleColumn

	// table config
	conf *config.TableConfig

	entries []listEntry
	// Values in partition order, for display.
	Values []string `json:"values,omitempty"`
}

// NewList creates new list.
func NewList(log *xlog.Log, column RuleColumn, conf *config.TableConfig) *List {
	return &List{
		log:     log,
		column:  column,
		conf:    conf,
		entries: make([]listEntry, 0, 16),
		Values:  make([]string, 0, 16),
	}
}

// Build used to build the value map from table config.
func (list *List) Build() error {
	for idx, part := range list.conf.Partitions {
		if part.ListValue == "" {
			return errors.Errorf("list.partition[%s].listvalue.can.not.be.empty", part.Table)
		}
		for _, raw := range strings.Split(part.ListValue, ",") {
			raw = strings.TrimSpace(raw)
			v := sqltypes.NULL
			if !strings.EqualFold(raw, "null") {
				var err error
				if v, err = list.column.Convert(sqltypes.NewVarChar(raw)); err != nil {
					return err
				}
			}
			for _, e := range list.entries {
				if sqltypes.Compare(e.value, v) == 0 && e.index != idx {
					return errors.Errorf("partition.list.different.backend.with.same.values[%s]", raw)
				}
			}
			list.entries = append(list.entries, listEntry{value: v, index: idx})
		}
		list.Values = append(list.Values, part.ListValue)
	}
	return nil
}

// Name returns the algorithm name.
func (list *List) Name() string {
	return methodTypeList
}

// Partition returns the partitions of the values, unknown values are skipped.
func (list *List) Partition(values []sqltypes.Value) ([]int, error) {
	idxs := make([]int, 0, len(values))
	for _, v := range values {
		for _, e := range list.entries {
			if e.value.IsNull() != v.IsNull() {
				continue
			}
			if sqltypes.Compare(e.value, v) == 0 {
				idxs = append(idxs, e.index)
				break
			}
		}
	}
	return idxs, nil
}

// PartitionRange returns the partitions owning a list value in [start, end].
func (list *List) PartitionRange(start, end *sqltypes.Value) ([]int, error) {
	idxs := make([]int, 0, len(list.entries))
	for _, e := range list.entries {
		if e.value.IsNull() {
			continue
		}
		if start != nil && sqltypes.Compare(e.value, *start) < 0 {
			continue
		}
		if end != nil && sqltypes.Compare(e.value, *end) > 0 {
			continue
		}
		idxs = append(idxs, e.index)
	}
	return idxs, nil
}
