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
	"sort"

	"github.com/radondb/shardkit/config"

	"github.com/pkg/errors"
)

var (
	partitionNums = []int{8, 16, 32, 64}
)

// HashUniform used to uniform the hash slots to backends.
// partitionNum 0 means the router default blocks.
func (r *Router) HashUniform(table, shardkey string, backends []string, partitionNum int) (*config.TableConfig, error) {
	if table == "" {
		return nil, errors.New("table.cant.be.null")
	}
	if shardkey == "" {
		return nil, errors.New("shard.key.cant.be.null")
	}

	slots := r.conf.Slots
	blocks := r.conf.Blocks
	if partitionNum != 0 {
		exists := false
		for _, partNum := range partitionNums {
			if partitionNum == partNum {
				exists = true
				break
			}
		}
		if !exists {
			return nil, errors.New("number.of.partitions.must.be.one.of.the.list.[8, 16, 32, 64]")
		}
		blocks = slots / partitionNum
	}

	nums := len(backends)
	if nums == 0 {
		return nil, errors.New("router.compute.backends.is.null")
	}
	if nums >= slots {
		return nil, errors.Errorf("router.compute.backends[%d].too.many:[max:%d]", nums, slots)
	}

	backends = sortedCopy(backends)
	tableConf := &config.TableConfig{
		Name:       table,
		Slots:      slots,
		Blocks:     blocks,
		ShardKey:   shardkey,
		ShardType:  methodTypeHash,
		Partitions: make([]*config.PartitionConfig, 0, 16),
	}

	slotsPerShard := slots / nums
	tablesPerShard := slotsPerShard / blocks
	if tablesPerShard == 0 {
		tablesPerShard = 1
	}
	for s := 0; s < nums; s++ {
		step := s * slotsPerShard
		for i := 0; i < tablesPerShard; i++ {
			min := i*blocks + step
			max := (i+1)*blocks + step
			if i == tablesPerShard-1 {
				if s == nums-1 {
					max = slots
				} else {
					max = step + slotsPerShard
				}
			}
			name := s*tablesPerShard + i
			tableConf.Partitions = append(tableConf.Partitions, &config.PartitionConfig{
				Table:   fmt.Sprintf("%s_%04d", table, name),
				Segment: fmt.Sprintf("%d-%d", min, max),
				Backend: backends[s],
			})
		}
	}
	return tableConf, nil
}

// ModUniform places one partition table per backend, the partition
// index equals the position of the backend in sorted order.
func (r *Router) ModUniform(table, shardkey string, backends []string) (*config.TableConfig, error) {
	if table == "" {
		return nil, errors.New("table.cant.be.null")
	}
	if shardkey == "" {
		return nil, errors.New("shard.key.cant.be.null")
	}
	if len(backends) == 0 {
		return nil, errors.New("router.compute.backends.is.null")
	}

	backends = sortedCopy(backends)
	tableConf := &config.TableConfig{
		Name:       table,
		ShardKey:   shardkey,
		ShardType:  methodTypeMod,
		Partitions: make([]*config.PartitionConfig, 0, len(backends)),
	}
	for i, backend := range backends {
		tableConf.Partitions = append(tableConf.Partitions, &config.PartitionConfig{
			Table:   fmt.Sprintf("%s_%04d", table, i),
			Backend: backend,
		})
	}
	return tableConf, nil
}

// GlobalUniform used to uniform the global table to backends.
func (r *Router) GlobalUniform(table string, backends []string) (*config.TableConfig, error) {
	if table == "" {
		return nil, errors.New("table.cant.be.null")
	}
	nums := len(backends)
	if nums == 0 {
		return nil, errors.New("router.compute.backends.is.null")
	}

	tableConf := &config.TableConfig{
		Name:       table,
		ShardType:  methodTypeGlobal,
		Partitions: make([]*config.PartitionConfig, 0, nums),
	}
	for s := 0; s < nums; s++ {
		tableConf.Partitions = append(tableConf.Partitions, &config.PartitionConfig{
			Table:   table,
			Backend: backends[s],
		})
	}
	return tableConf, nil
}

// SingleUniform used to uniform the single table to backends.
func (r *Router) SingleUniform(table string, backends []string) (*config.TableConfig, error) {
	if table == "" {
		return nil, errors.New("table.cant.be.null")
	}
	if len(backends) == 0 {
		return nil, errors.New("router.compute.backends.is.null")
	}

	return &config.TableConfig{
		Name:      table,
		ShardType: methodTypeSingle,
		Partitions: []*config.PartitionConfig{{
			Table:   table,
			Backend: backends[0],
		}},
	}, nil
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
