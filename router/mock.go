/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package router

import (
	"os"

	"github.com/radondb/shardkit/config"

	"github.com/xelabs/go-mysqlstack/xlog"
)

var (
	mockTmpDir = "/tmp/shardkit_router_test"
)

// MockNewRouter creates a router on a temporary meta dir.
func MockNewRouter(log *xlog.Log) (*Router, func()) {
	return NewRouter(log, mockTmpDir, MockNewRouterConfig()), func() {
		if err := os.RemoveAll(mockTmpDir); err != nil {
			panic(err)
		}
	}
}

// MockNewRouterConfig returns the router config.
func MockNewRouterConfig() *config.RouterConfig {
	return config.DefaultRouterConfig()
}

// MockNewHandler creates a handler with every mock table under database "sbtest".
func MockNewHandler(log *xlog.Log) (*Handler, func()) {
	r, cleanup := MockNewRouter(log)
	if err := r.AddForTest("sbtest", MockConfigs()...); err != nil {
		panic(err)
	}
	return NewHandler(log, r), cleanup
}

// MockHashConfig is a HASH table on id, four partitions over two backends.
func MockHashConfig() *config.TableConfig {
	return &config.TableConfig{
		Name:      "A",
		ShardType: "HASH",
		ShardKey:  "id",
		Partitions: []*config.PartitionConfig{
			{Table: "A0", Segment: "0-1024", Backend: "backend0"},
			{Table: "A1", Segment: "1024-2048", Backend: "backend0"},
			{Table: "A2", Segment: "2048-3072", Backend: "backend1"},
			{Table: "A3", Segment: "3072-4096", Backend: "backend1"},
		},
	}
}

// MockModConfig is a MOD table on id with four partitions.
func MockModConfig() *config.TableConfig {
	return &config.TableConfig{
		Name:          "M",
		ShardType:     "MOD",
		ShardKey:      "id",
		ShardKeyTypes: []string{"INT64"},
		Partitions: []*config.PartitionConfig{
			{Table: "M0", Backend: "backend0"},
			{Table: "M1", Backend: "backend1"},
			{Table: "M2", Backend: "backend0"},
			{Table: "M3", Backend: "backend1"},
		},
	}
}

// MockRangeConfig is a RANGE table on id:
// (-inf, 100), [100, 200), [200, +inf).
func MockRangeConfig() *config.TableConfig {
	return &config.TableConfig{
		Name:      "R",
		ShardType: "RANGE",
		ShardKey:  "id",
		Partitions: []*config.PartitionConfig{
			{Table: "R0", Backend: "backend0", Max: "100"},
			{Table: "R1", Backend: "backend1", Min: "100", Max: "200"},
			{Table: "R2", Backend: "backend2", Min: "200"},
		},
	}
}

// MockListConfig is a LIST table on region.
func MockListConfig() *config.TableConfig {
	return &config.TableConfig{
		Name:          "L",
		ShardType:     "LIST",
		ShardKey:      "region",
		ShardKeyTypes: []string{"VARCHAR"},
		Partitions: []*config.PartitionConfig{
			{Table: "L0", Backend: "backend0", ListValue: "bj,sh"},
			{Table: "L1", Backend: "backend1", ListValue: "gz,sz"},
			{Table: "L2", Backend: "backend2", ListValue: "NULL,hz"},
		},
	}
}

// MockMultiHashConfig is a HASH table on (uid, oid).
func MockMultiHashConfig() *config.TableConfig {
	return &config.TableConfig{
		Name:      "MH",
		ShardType: "HASH",
		ShardKeys: []string{"uid", "oid"},
		Partitions: []*config.PartitionConfig{
			{Table: "MH0", Segment: "0-2048", Backend: "backend0"},
			{Table: "MH1", Segment: "2048-4096", Backend: "backend1"},
		},
	}
}

// MockGlobalConfig is a GLOBAL table replicated on three backends.
func MockGlobalConfig() *config.TableConfig {
	return &config.TableConfig{
		Name:      "G",
		ShardType: "GLOBAL",
		Partitions: []*config.PartitionConfig{
			{Table: "G", Backend: "backend0"},
			{Table: "G", Backend: "backend1"},
			{Table: "G", Backend: "backend2"},
		},
	}
}

// MockSingleConfig is a SINGLE table on backend0.
func MockSingleConfig() *config.TableConfig {
	return &config.TableConfig{
		Name:      "S",
		ShardType: "SINGLE",
		Partitions: []*config.PartitionConfig{
			{Table: "S", Backend: "backend0"},
		},
	}
}

// MockConfigs returns all the mock tables.
func MockConfigs() []*config.TableConfig {
	return []*config.TableConfig{
		MockHashConfig(),
		MockModConfig(),
		MockRangeConfig(),
		MockListConfig(),
		MockMultiHashConfig(),
		MockGlobalConfig(),
		MockSingleConfig(),
	}
}
