/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package router

import (
	"strings"
	"testing"

	"github.com/radondb/shardkit/config"

	"github.com/stretchr/testify/assert"
	"github.com/xelabs/go-mysqlstack/xlog"
)

func TestRouter(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	router, cleanup := MockNewRouter(log)
	defer cleanup()
	assert.NotNil(t, router)
	assert.True(t, router.Config().OptimizeIsNull)
}

func TestRouterTableRouter(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	router, cleanup := MockNewRouter(log)
	defer cleanup()
	assert.Nil(t, router.AddForTest("sbtest", MockHashConfig(), MockGlobalConfig()))

	{
		tr, err := router.TableRouter("sbtest", "A")
		assert.Nil(t, err)
		assert.Equal(t, "sbtest.A", tr.ID)
		assert.Equal(t, MethodType(methodTypeHash), tr.Type)
		col, ok := tr.RuleColumn("ID")
		assert.True(t, ok)
		assert.Equal(t, "id", col.Name)
	}
	{
		conf, err := router.TableConfig("sbtest", "G")
		assert.Nil(t, err)
		assert.Equal(t, "GLOBAL", conf.ShardType)
	}

	tests := []struct {
		db, table string
		want      string
	}{
		{"", "A", "No database selected (errno 1046) (sqlstate 3D000)"},
		{"sbtest", "", "Table '' doesn't exist (errno 1146) (sqlstate 42S02)"},
		{"xx", "A", "Unknown database 'xx' (errno 1049) (sqlstate 42000)"},
		{"sbtest", "xx", "Table 'sbtest.xx' doesn't exist (errno 1146) (sqlstate 42S02)"},
	}
	for _, test := range tests {
		_, err := router.TableRouter(test.db, test.table)
		assert.EqualError(t, err, test.want)
	}

	// Duplicate.
	err := router.AddForTest("sbtest", MockHashConfig())
	assert.EqualError(t, err, "router.add.db[sbtest].table[A].exists")
}

func TestRouterRules(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	router, cleanup := MockNewRouter(log)
	defer cleanup()
	assert.Nil(t, router.AddForTest("sbtest", MockConfigs()...))
	assert.Nil(t, router.AddForTest("db2", MockSingleConfig()))

	rules := router.Rules()
	ids := make([]string, 0, len(rules))
	for _, r := range rules {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"db2.S", "sbtest.A", "sbtest.G", "sbtest.L", "sbtest.M", "sbtest.MH", "sbtest.R", "sbtest.S"}, ids)

	tables := router.Tables()
	assert.Equal(t, []string{"A", "G", "L", "M", "MH", "R", "S"}, tables["sbtest"])
	assert.Equal(t, []string{"S"}, tables["db2"])

	assert.Equal(t, []string{"db2.S", "sbtest.A", "sbtest.G", "sbtest.L", "sbtest.M", "sbtest.MH", "sbtest.R", "sbtest.S"}, router.TablesOnBackend("backend0"))
	assert.Empty(t, router.TablesOnBackend("backend9"))

	js := router.JSON()
	assert.True(t, strings.Contains(js, `"id": "sbtest.MH"`))
	assert.True(t, strings.Contains(js, `"type": "GLOBAL"`))
}

func TestNewTableRouterErrors(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	rconf := config.DefaultRouterConfig()

	single := MockSingleConfig()
	single.Partitions = append(single.Partitions, &config.PartitionConfig{Table: "S", Backend: "backend1"})
	nokey := MockHashConfig()
	nokey.ShardKey = ""
	types := MockModConfig()
	types.ShardKeyTypes = []string{"INT64", "INT64"}
	badType := MockModConfig()
	badType.ShardKeyTypes = []string{"WTF"}
	unknown := MockModConfig()
	unknown.ShardType = "xx"
	noBackend := MockHashConfig()
	noBackend.Partitions[1].Backend = ""

	tests := []struct {
		conf *config.TableConfig
		want string
	}{
		{nil, "table.config.can't.be.nil"},
		{&config.TableConfig{Name: "E", ShardType: "HASH", ShardKey: "id"}, "router.table[sbtest.E].partitions.can.not.be.empty"},
		{noBackend, "router.table[sbtest.A].partition[A1].backend.can.not.be.empty"},
		{single, "router.single.table[sbtest.S].must.have.one.partition"},
		{nokey, "router.table[sbtest.A].shardkey.can.not.be.empty"},
		{types, "router.table[sbtest.M].shardkey-types[2].must.match.shardkeys[1]"},
		{badType, "router.unsupported.column.type[WTF]"},
		{unknown, "router.unsupport.shardtype:[xx]"},
	}
	for _, test := range tests {
		_, err := NewTableRouter(log, "sbtest", test.conf, rconf)
		assert.EqualError(t, err, test.want)
	}
}

func TestTableRouterDefaults(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	conf := MockGlobalConfig()
	conf.Partitions[2].Table = ""
	tr, err := NewTableRouter(log, "sbtest", conf, config.DefaultRouterConfig())
	assert.Nil(t, err)
	assert.False(t, tr.IsPartitioned())
	assert.Equal(t, "G", tr.Nodes()[2].Table)
	assert.Nil(t, tr.RuleColumns)

	tr, err = NewTableRouter(log, "sbtest", MockMultiHashConfig(), config.DefaultRouterConfig())
	assert.Nil(t, err)
	_, ok := tr.Partitioner.(MultiColumnPartitioner)
	assert.True(t, ok)
	assert.Equal(t, 2, len(tr.RuleColumns))
}

func TestRouterCompute(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	router, cleanup := MockNewRouter(log)
	defer cleanup()

	// Hash, default blocks.
	{
		conf, err := router.HashUniform("t1", "id", []string{"backend2", "backend1"}, 0)
		assert.Nil(t, err)
		assert.Equal(t, 32, len(conf.Partitions))
		assert.Equal(t, "t1_0000", conf.Partitions[0].Table)
		assert.Equal(t, "0-128", conf.Partitions[0].Segment)
		assert.Equal(t, "backend1", conf.Partitions[0].Backend)
		assert.Equal(t, "3968-4096", conf.Partitions[31].Segment)
		assert.Equal(t, "backend2", conf.Partitions[31].Backend)

		_, err = NewTableRouter(log, "sbtest", conf, router.Config())
		assert.Nil(t, err)
	}

	// Hash, 8 partitions on 3 backends.
	{
		conf, err := router.HashUniform("t1", "id", []string{"b0", "b1", "b2"}, 8)
		assert.Nil(t, err)
		assert.Equal(t, 6, len(conf.Partitions))
		assert.Equal(t, "0-512", conf.Partitions[0].Segment)
		assert.Equal(t, "512-1365", conf.Partitions[1].Segment)
		assert.Equal(t, "3242-4096", conf.Partitions[5].Segment)

		_, err = NewTableRouter(log, "sbtest", conf, router.Config())
		assert.Nil(t, err)
	}

	// Mod.
	{
		conf, err := router.ModUniform("m", "id", []string{"b1", "b0"})
		assert.Nil(t, err)
		assert.Equal(t, "MOD", conf.ShardType)
		assert.Equal(t, "m_0000", conf.Partitions[0].Table)
		assert.Equal(t, "b0", conf.Partitions[0].Backend)
	}

	// Global and single.
	{
		conf, err := router.GlobalUniform("g", []string{"b0", "b1"})
		assert.Nil(t, err)
		assert.Equal(t, 2, len(conf.Partitions))

		conf, err = router.SingleUniform("s", []string{"b1", "b0"})
		assert.Nil(t, err)
		assert.Equal(t, "b1", conf.Partitions[0].Backend)
	}

	// Errors.
	{
		_, err := router.HashUniform("", "id", []string{"b0"}, 0)
		assert.EqualError(t, err, "table.cant.be.null")
		_, err = router.HashUniform("t", "", []string{"b0"}, 0)
		assert.EqualError(t, err, "shard.key.cant.be.null")
		_, err = router.HashUniform("t", "id", []string{"b0"}, 7)
		assert.EqualError(t, err, "number.of.partitions.must.be.one.of.the.list.[8, 16, 32, 64]")
		_, err = router.HashUniform("t", "id", nil, 0)
		assert.EqualError(t, err, "router.compute.backends.is.null")
		_, err = router.ModUniform("t", "id", nil)
		assert.EqualError(t, err, "router.compute.backends.is.null")
		_, err = router.GlobalUniform("t", nil)
		assert.EqualError(t, err, "router.compute.backends.is.null")
		_, err = router.SingleUniform("", nil)
		assert.EqualError(t, err, "table.cant.be.null")
	}
}
