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
	"strconv"
	"strings"

	"github.com/radondb/shardkit/config"

	jump "github.com/lithammer/go-jump-consistent-hash"
	"github.com/pkg/errors"
	"github.com/xelabs/go-mysqlstack/sqlparser/depends/sqltypes"
	"github.com/xelabs/go-mysqlstack/xlog"
)

// HashRange tuple.
// [Start, End)
type HashRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// String returns start-end info.
func (r HashRange) String() string {
	return fmt.Sprintf("[%v-%v)", r.Start, r.End)
}

// Hash maps a value to a slot by jump consistent hash,
// every partition owns a continuous slot segment.
type Hash struct {
	log *xlog.Log

	// hash slots
	slots int

	// table config
	conf *config.TableConfig

	// slot -> partition index
	partitions map[int]int

	// Ranges in partition order.
	Ranges []HashRange `json:"ranges,omitempty"`
}

// NewHash creates new hash.
func NewHash(log *xlog.Log, slots int, conf *config.TableConfig) *Hash {
	return &Hash{
		log:        log,
		conf:       conf,
		slots:      slots,
		partitions: make(map[int]int),
		Ranges:     make([]HashRange, 0, 16),
	}
}

// Build used to build hash bitmap from table config.
func (h *Hash) Build() error {
	var err error
	var start, end int

	for idx, part := range h.conf.Partitions {
		segments := strings.Split(part.Segment, "-")
		if len(segments) != 2 {
			return errors.Errorf("hash.partition.segment.malformed[%v]", part.Segment)
		}

		// parse partition segment
		if start, err = strconv.Atoi(segments[0]); err != nil {
			return errors.Errorf("hash.partition.segment.malformed[%v].start.can.not.parser.to.int", part.Segment)
		}
		if end, err = strconv.Atoi(segments[1]); err != nil {
			return errors.Errorf("hash.partition.segment.malformed[%v].end.can.not.parser.to.int", part.Segment)
		}
		if end <= start {
			return errors.Errorf("hash.partition.segment.malformed[%v].start[%v]>=end[%v]", part.Segment, start, end)
		}
		if start < 0 || end > h.slots {
			return errors.Errorf("hash.partition.segment[%v].out.of.slots[0-%v]", part.Segment, h.slots)
		}

		// bitmap
		for i := start; i < end; i++ {
			if _, ok := h.partitions[i]; ok {
				return errors.Errorf("hash.partition.segment[%v].overlapped[%v]", part.Segment, i)
			}
			h.partitions[i] = idx
		}
		h.Ranges = append(h.Ranges, HashRange{Start: start, End: end})
	}

	if len(h.partitions) != h.slots {
		return errors.Errorf("hash.partition.last.segment[%v].upper.bound.must.be[%v]", len(h.partitions), h.slots)
	}
	return nil
}

// Name returns the algorithm name.
func (h *Hash) Name() string {
	return methodTypeHash
}

// Slot returns the slot of the value.
func (h *Hash) Slot(v sqltypes.Value) int {
	return int(jump.Hash(hashKey(v), int32(h.slots)))
}

func (h *Hash) index(v sqltypes.Value) (int, error) {
	slot := h.Slot(v)
	idx, ok := h.partitions[slot]
	if !ok {
		return -1, errors.Errorf("hash.slot[%d].has.no.partition", slot)
	}
	return idx, nil
}

// Partition returns the partitions of the values.
func (h *Hash) Partition(values []sqltypes.Value) ([]int, error) {
	idxs := make([]int, 0, len(values))
	for _, v := range values {
		idx, err := h.index(v)
		if err != nil {
			return nil, err
		}
		idxs = append(idxs, idx)
	}
	return idxs, nil
}

// PartitionRange hashes a point range, any other range covers all partitions.
func (h *Hash) PartitionRange(start, end *sqltypes.Value) ([]int, error) {
	if isSingleValue(start, end) {
		return h.Partition([]sqltypes.Value{*start})
	}
	return allPartitions(len(h.conf.Partitions)), nil
}

