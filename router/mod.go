/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package router

import (
	"github.com/radondb/shardkit/config"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/xelabs/go-mysqlstack/sqlparser/depends/sqltypes"
	"github.com/xelabs/go-mysqlstack/xlog"
)

// Mod maps an integer value to partition abs(value % N),
// N is the number of partitions.
type Mod struct {
	log  *xlog.Log
	conf *config.TableConfig
	n    decimal.Decimal
	size int
}

// NewMod creates new mod.
func NewMod(log *xlog.Log, conf *config.TableConfig) *Mod {
	return &Mod{
		log:  log,
		conf: conf,
	}
}

// Build used to build mod from table config.
func (m *Mod) Build() error {
	m.size = len(m.conf.Partitions)
	if m.size == 0 {
		return errors.Errorf("mod.table[%s].partitions.can.not.be.empty", m.conf.Name)
	}
	m.n = decimal.NewFromInt(int64(m.size))
	return nil
}

// Name returns the algorithm name.
func (m *Mod) Name() string {
	return methodTypeMod
}

func modKey(v sqltypes.Value) (decimal.Decimal, error) {
	if v.IsNull() {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v.ToString())
	if err != nil {
		return decimal.Zero, errors.Errorf("mod.value[%s].is.not.numeric", v.ToString())
	}
	return d.Truncate(0), nil
}

func (m *Mod) index(d decimal.Decimal) int {
	return int(d.Mod(m.n).Abs().IntPart())
}

// Partition returns the partitions of the values.
func (m *Mod) Partition(values []sqltypes.Value) ([]int, error) {
	idxs := make([]int, 0, len(values))
	for _, v := range values {
		d, err := modKey(v)
		if err != nil {
			return nil, err
		}
		idxs = append(idxs, m.index(d))
	}
	return idxs, nil
}

// PartitionRange enumerates a bounded range narrower than N,
// any other range covers all partitions.
func (m *Mod) PartitionRange(start, end *sqltypes.Value) ([]int, error) {
	all := allPartitions(m.size)
	if start == nil || end == nil || start.IsNull() || end.IsNull() {
		return all, nil
	}
	s, err := decimal.NewFromString(start.ToString())
	if err != nil {
		return all, nil
	}
	e, err := decimal.NewFromString(end.ToString())
	if err != nil {
		return all, nil
	}
	s, e = s.Floor(), e.Ceil()
	if e.Sub(s).Cmp(m.n) >= 0 {
		return all, nil
	}

	idxs := make([]int, 0, m.size)
	one := decimal.NewFromInt(1)
	for k := s; k.Cmp(e) <= 0; k = k.Add(one) {
		idxs = append(idxs, m.index(k))
	}
	return idxs, nil
}
