/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package router

import (
	"github.com/pkg/errors"
	jump "github.com/lithammer/go-jump-consistent-hash"
	"github.com/xelabs/go-mysqlstack/sqlparser/depends/sqltypes"
)

const (
	// maxTuples caps the cartesian product of FIXED arguments,
	// above it every partition is returned.
	maxTuples = 4096
)

var _ MultiColumnPartitioner = &MultiHash{}

// MultiHash hashes the tuple of all rule column values onto the slots of Hash.
type MultiHash struct {
	*Hash
	columns int
}

// NewMultiHash creates a multi-column hash on a built Hash.
func NewMultiHash(hash *Hash, columns int) *MultiHash {
	return &MultiHash{Hash: hash, columns: columns}
}

func tupleKey(tuple []sqltypes.Value) uint64 {
	var key uint64
	for _, v := range tuple {
		key = key*1000003 ^ hashKey(v)
	}
	return key
}

func (m *MultiHash) tupleIndex(tuple []sqltypes.Value) (int, error) {
	slot := int(jump.Hash(tupleKey(tuple), int32(m.slots)))
	idx, ok := m.partitions[slot]
	if !ok {
		return -1, errors.Errorf("hash.slot[%d].has.no.partition", slot)
	}
	return idx, nil
}

// Partition takes one value per rule column as a single tuple.
func (m *MultiHash) Partition(values []sqltypes.Value) ([]int, error) {
	if len(values) != m.columns {
		return nil, errors.Errorf("hash.tuple.values[%d].must.be[%d]", len(values), m.columns)
	}
	idx, err := m.tupleIndex(values)
	if err != nil {
		return nil, err
	}
	return []int{idx}, nil
}

// PartitionRange can not narrow a tuple hash.
func (m *MultiHash) PartitionRange(start, end *sqltypes.Value) ([]int, error) {
	return allPartitions(len(m.conf.Partitions)), nil
}

// PartitionArguments hashes every tuple of the FIXED arguments,
// any other argument kind covers all partitions.
func (m *MultiHash) PartitionArguments(args []*Argument) ([]int, error) {
	if len(args) != m.columns {
		return nil, errors.Errorf("hash.tuple.arguments[%d].must.be[%d]", len(args), m.columns)
	}
	all := allPartitions(len(m.conf.Partitions))
	total := 1
	for _, arg := range args {
		if arg.Kind != ArgFixed {
			return all, nil
		}
		total *= len(arg.Values)
		if total > maxTuples {
			return all, nil
		}
	}

	idxs := make([]int, 0, total)
	tuple := make([]sqltypes.Value, len(args))
	var walk func(col int) error
	walk = func(col int) error {
		if col == len(args) {
			idx, err := m.tupleIndex(tuple)
			if err != nil {
				return err
			}
			idxs = append(idxs, idx)
			return nil
		}
		for _, v := range args[col].Values {
			tuple[col] = v
			if err := walk(col + 1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(0); err != nil {
		return nil, err
	}
	return idxs, nil
}
