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

	"github.com/radondb/shardkit/config"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/xelabs/go-mysqlstack/sqlparser/depends/sqltypes"
	"github.com/xelabs/go-mysqlstack/xlog"
)

// Interval tuple, [Min, Max), a nil side is unbounded.
type Interval struct {
	Min *decimal.Decimal `json:"min,omitempty"`
	Max *decimal.Decimal `json:"max,omitempty"`
}

func (iv Interval) contains(d decimal.Decimal) bool {
	if iv.Min != nil && d.Cmp(*iv.Min) < 0 {
		return false
	}
	if iv.Max != nil && d.Cmp(*iv.Max) >= 0 {
		return false
	}
	return true
}

// overlaps returns true if the interval meets [s, e], nil is unbounded.
func (iv Interval) overlaps(s, e *decimal.Decimal) bool {
	if iv.Max != nil && s != nil && s.Cmp(*iv.Max) >= 0 {
		return false
	}
	if iv.Min != nil && e != nil && e.Cmp(*iv.Min) < 0 {
		return false
	}
	return true
}

// Range maps a numeric value to the partition whose interval holds it.
// NULL goes to the partition with an unbounded lower side.
type Range struct {
	log  *xlog.Log
	conf *config.TableConfig

	Intervals []Interval `json:"intervals,omitempty"`
}

// NewRange creates new range.
func NewRange(log *xlog.Log, conf *config.TableConfig) *Range {
	return &Range{
		log:       log,
		conf:      conf,
		Intervals: make([]Interval, 0, 16),
	}
}

func parseBound(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Build used to build the intervals from table config.
func (r *Range) Build() error {
	for _, part := range r.conf.Partitions {
		min, err := parseBound(part.Min)
		if err != nil {
			return errors.Errorf("range.partition[%s].min[%s].malformed", part.Table, part.Min)
		}
		max, err := parseBound(part.Max)
		if err != nil {
			return errors.Errorf("range.partition[%s].max[%s].malformed", part.Table, part.Max)
		}
		if min != nil && max != nil && min.Cmp(*max) >= 0 {
			return errors.Errorf("range.partition[%s].min[%s]>=max[%s]", part.Table, part.Min, part.Max)
		}
		r.Intervals = append(r.Intervals, Interval{Min: min, Max: max})
	}
	if len(r.Intervals) == 0 {
		return errors.Errorf("range.table[%s].partitions.can.not.be.empty", r.conf.Name)
	}

	// Sort a copy by lower side to find overlaps.
	sorted := make([]Interval, len(r.Intervals))
	copy(sorted, r.Intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Min == nil {
			return sorted[j].Min != nil
		}
		if sorted[j].Min == nil {
			return false
		}
		return sorted[i].Min.Cmp(*sorted[j].Min) < 0
	})
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.Max == nil || cur.Min == nil || cur.Min.Cmp(*prev.Max) < 0 {
			return errors.Errorf("range.table[%s].partitions.overlapped", r.conf.Name)
		}
	}
	return nil
}

// Name returns the algorithm name.
func (r *Range) Name() string {
	return methodTypeRange
}

func rangeKey(v sqltypes.Value) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.ToString())
	if err != nil {
		return decimal.Zero, errors.Errorf("range.value[%s].is.not.numeric", v.ToString())
	}
	return d, nil
}

// Partition returns the partitions of the values, a value outside every
// interval has no partition.
func (r *Range) Partition(values []sqltypes.Value) ([]int, error) {
	idxs := make([]int, 0, len(values))
	for _, v := range values {
		if v.IsNull() {
			for i, iv := range r.Intervals {
				if iv.Min == nil {
					idxs = append(idxs, i)
					break
				}
			}
			continue
		}
		d, err := rangeKey(v)
		if err != nil {
			return nil, err
		}
		for i, iv := range r.Intervals {
			if iv.contains(d) {
				idxs = append(idxs, i)
				break
			}
		}
	}
	return idxs, nil
}

// PartitionRange returns every partition whose interval meets [start, end].
func (r *Range) PartitionRange(start, end *sqltypes.Value) ([]int, error) {
	var s, e *decimal.Decimal
	if start != nil && !start.IsNull() {
		d, err := rangeKey(*start)
		if err != nil {
			return nil, err
		}
		s = &d
	}
	if end != nil && !end.IsNull() {
		d, err := rangeKey(*end)
		if err != nil {
			return nil, err
		}
		e = &d
	}

	idxs := make([]int, 0, len(r.Intervals))
	for i, iv := range r.Intervals {
		if iv.overlaps(s, e) {
			idxs = append(idxs, i)
		}
	}
	return idxs, nil
}
