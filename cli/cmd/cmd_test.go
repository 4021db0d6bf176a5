/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package cmd

import (
	"testing"

	"github.com/radondb/shardkit/fakedb"

	"github.com/stretchr/testify/assert"
	"github.com/xelabs/go-mysqlstack/xlog"
)

func TestCmdVersion(t *testing.T) {
	out, err := executeCommand(NewVersionCommand())
	assert.Nil(t, err)
	assert.Contains(t, out, "shardcli:[")
}

func TestCmdPing(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	fakedbs, _, addr, cleanup := mockAPI(log)
	defer cleanup()

	fakedbs.AddQuery("select 1", fakedb.Result3)
	_, err := executeCommand(NewPingCommand(), "--api", addr)
	assert.Nil(t, err)

	fakedbs.ResetAll()
	_, err = executeCommand(NewPingCommand(), "--api", addr)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "api.response.status[503]")
}

func TestCmdConfig(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	_, proxy, addr, cleanup := mockAPI(log)
	defer cleanup()

	_, err := executeCommand(NewConfigCommand(), "--api", addr)
	assert.NotNil(t, err)
	assert.Equal(t, "config.nothing.to.set", err.Error())

	_, err = executeCommand(NewConfigCommand(), "--api", addr, "--parallel-commit=true")
	assert.Nil(t, err)
	assert.True(t, proxy.Config().Session.ParallelCommit)
	assert.False(t, proxy.Config().Session.ReadOnly)
}

func TestCmdRoute(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	_, _, addr, cleanup := mockAPI(log)
	defer cleanup()

	{
		out, err := executeCommand(NewRouteCommand(), "--api", addr, "--database", "sbtest", "select * from R where id = 150")
		assert.Nil(t, err)
		assert.Contains(t, out, "R1")
		assert.Contains(t, out, "PlanTypeSelect")
	}

	// Unroutable.
	{
		_, err := executeCommand(NewRouteCommand(), "--api", addr, "--database", "sbtest", "update R set id = 1 where id = 2")
		assert.NotNil(t, err)
		assert.Contains(t, err.Error(), "api.response.status[400]")
	}

	// Missing query.
	{
		_, err := executeCommand(NewRouteCommand(), "--api", addr)
		assert.NotNil(t, err)
	}
}

func TestCmdShard(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	_, _, addr, cleanup := mockAPI(log)
	defer cleanup()

	out, err := executeCommand(NewShardCommand(), "rules", "--api", addr)
	assert.Nil(t, err)
	assert.Contains(t, out, "sbtest.MH")

	_, err = executeCommand(NewShardCommand(), "reload", "--api", addr)
	assert.Nil(t, err)

	// Create and drop.
	{
		_, err := executeCommand(NewShardCommand(), "create", "t1", "--api", addr, "--database", "sbtest", "--shardtype", "mod", "--shardkey", "id")
		assert.Nil(t, err)
		out, err := executeCommand(NewShardCommand(), "rules", "--api", addr)
		assert.Nil(t, err)
		assert.Contains(t, out, "sbtest.t1")

		_, err = executeCommand(NewShardCommand(), "drop", "sbtest", "t1", "--api", addr)
		assert.Nil(t, err)
		_, err = executeCommand(NewShardCommand(), "drop", "sbtest", "t1", "--api", addr)
		assert.NotNil(t, err)

		_, err = executeCommand(NewShardCommand(), "create", "t2", "--api", addr, "--database", "sbtest", "--shardtype", "list", "--shardkey", "id")
		assert.NotNil(t, err)
	}
}

func TestCmdBackend(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	_, proxy, addr, cleanup := mockAPI(log)
	defer cleanup()

	_, err := executeCommand(NewBackendCommand(), "add", "--api", addr, "--name", "backend9", "--address", "127.0.0.1:3306", "--user", "mock")
	assert.Nil(t, err)
	_, ok := proxy.Scatter().Source("backend9")
	assert.True(t, ok)

	_, err = executeCommand(NewBackendCommand(), "remove", "backend9", "--api", addr)
	assert.Nil(t, err)
	_, ok = proxy.Scatter().Source("backend9")
	assert.False(t, ok)

	_, err = executeCommand(NewBackendCommand(), "remove", "backend9", "--api", addr)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "api.response.status[500]")

	// Still holds partitions.
	_, err = executeCommand(NewBackendCommand(), "remove", "backend1", "--api", addr)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "api.response.status[409]")
}

func TestCmdDebug(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	_, _, addr, cleanup := mockAPI(log)
	defer cleanup()

	{
		out, err := executeCommand(NewDebugCommand(), "txnz", "--api", addr, "--limit", "5")
		assert.Nil(t, err)
		assert.Contains(t, out, "[]")
	}

	{
		out, err := executeCommand(NewDebugCommand(), "backendz", "--api", addr)
		assert.Nil(t, err)
		assert.Contains(t, out, "backend2")
	}

	{
		out, err := executeCommand(NewDebugCommand(), "configz", "--api", addr)
		assert.Nil(t, err)
		assert.Contains(t, out, "meta-dir")
	}
}

func TestCmdAPIDown(t *testing.T) {
	_, err := executeCommand(NewDebugCommand(), "configz", "--api", "127.0.0.1:1")
	assert.NotNil(t, err)
}
