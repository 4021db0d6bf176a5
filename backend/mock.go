/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package backend

import (
	"github.com/radondb/shardkit/config"
	"github.com/radondb/shardkit/fakedb"

	"github.com/xelabs/go-mysqlstack/sqlparser/depends/sqltypes"
	"github.com/xelabs/go-mysqlstack/xlog"
)

// MockBackendConfigDefault mocks new backend config.
func MockBackendConfigDefault(name, addr string) *config.BackendConfig {
	return &config.BackendConfig{
		Name:           name,
		Address:        addr,
		User:           "mock",
		Password:       "pwd",
		DBName:         "sbtest",
		Charset:        "utf8",
		MaxConnections: 1024,
	}
}

// MockSessionQueries makes the fake servers accept the session
// setting, commit and rollback statements.
func MockSessionQueries(db *fakedb.DB) {
	db.AddQueryPattern("set .*", &sqltypes.Result{})
	db.AddQuery("commit", &sqltypes.Result{})
	db.AddQuery("rollback", &sqltypes.Result{})
}

// MockScatter used to mock a scatter over n fake servers.
func MockScatter(log *xlog.Log, n int) (*Scatter, *fakedb.DB, func()) {
	return MockScatterWithConfig(log, n, nil)
}

// MockScatterWithConfig mocks a scatter whose sessions use the conf.
func MockScatterWithConfig(log *xlog.Log, n int, conf *config.SessionConfig) (*Scatter, *fakedb.DB, func()) {
	scatter := NewScatter(log, "", conf)
	fakedb := fakedb.New(log, n)
	for _, backend := range fakedb.BackendConfs() {
		if err := scatter.Add(backend); err != nil {
			log.Panic("mock.scatter.add.error:%+v", err)
		}
	}
	MockSessionQueries(fakedb)
	return scatter, fakedb, func() {
		fakedb.Close()
		scatter.Close()
	}
}

// MockPool mocks a pool on the fake server address.
func MockPool(log *xlog.Log, conf *config.BackendConfig) (*Pool, func()) {
	pool := NewPool(log, conf)
	return pool, func() {
		pool.Close()
	}
}
