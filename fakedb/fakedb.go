/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package fakedb

import (
	"fmt"
	"io/ioutil"
	"os"
	"sync"

	"github.com/radondb/shardkit/config"

	"github.com/xelabs/go-mysqlstack/driver"
	querypb "github.com/xelabs/go-mysqlstack/sqlparser/depends/query"
	"github.com/xelabs/go-mysqlstack/sqlparser/depends/sqltypes"
	"github.com/xelabs/go-mysqlstack/xlog"
)

var (
	// Result1 result.
	Result1 = &sqltypes.Result{
		Fields: []*querypb.Field{
			{
				Name: "id",
				Type: querypb.Type_INT32,
			},
			{
				Name: "name",
				Type: querypb.Type_VARCHAR,
			},
		},
		Rows: [][]sqltypes.Value{
			{
				sqltypes.MakeTrusted(querypb.Type_INT32, []byte("11")),
				sqltypes.MakeTrusted(querypb.Type_VARCHAR, []byte("1nice name")),
			},
			{
				sqltypes.MakeTrusted(querypb.Type_INT32, []byte("12")),
				sqltypes.NULL,
			},
		},
	}

	// Result3 is an OK packet without rows.
	Result3 = &sqltypes.Result{}
)

// GetTmpDir used to create a test tmp dir
// dir: path specified, can be an empty string
// module: the name of test module
func GetTmpDir(dir, module string, log *xlog.Log) string {
	if dir == "" {
		dir = os.TempDir()
	}
	tmpDir, err := ioutil.TempDir(dir, module)
	if err != nil {
		log.Error("%v.test.can't.create.temp.dir.in:[%v]", module, dir)
	}
	return tmpDir
}

// DB is a set of fake MySQL servers, one handler per server so
// a test can make a single backend misbehave.
type DB struct {
	log          *xlog.Log
	mu           sync.RWMutex
	handlers     []*driver.TestHandler
	listeners    []*driver.Listener
	backendconfs []*config.BackendConfig
	addrs        []string
}

// New creates a new DB with n servers named backend0...backend(n-1).
func New(log *xlog.Log, n int) *DB {
	handlers := make([]*driver.TestHandler, 0, n)
	listeners := make([]*driver.Listener, 0, n)
	addrs := make([]string, 0, n)
	backendconfs := make([]*config.BackendConfig, 0, n)
	for i := 0; i < n; i++ {
		th := driver.NewTestHandler(log)
		l, err := driver.MockMysqlServer(log, th)
		if err != nil {
			panic(err)
		}
		conf := &config.BackendConfig{
			Name:           fmt.Sprintf("backend%d", i),
			Address:        l.Addr(),
			User:           "mock",
			Password:       "pwd",
			DBName:         "sbtest",
			Charset:        "utf8",
			MaxConnections: 1024,
		}
		handlers = append(handlers, th)
		backendconfs = append(backendconfs, conf)
		addrs = append(addrs, l.Addr())
		listeners = append(listeners, l)
	}
	return &DB{
		log:          log,
		handlers:     handlers,
		addrs:        addrs,
		listeners:    listeners,
		backendconfs: backendconfs,
	}
}

// Addrs used to get all address of the server.
func (db *DB) Addrs() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.addrs
}

// BackendConfs used to get all backend configs.
func (db *DB) BackendConfs() []*config.BackendConfig {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.backendconfs
}

// Close used to close all the listeners.
func (db *DB) Close() {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, l := range db.listeners {
		l.Close()
	}
}

// Handler returns the handler of the i-th server.
func (db *DB) Handler(i int) *driver.TestHandler {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.handlers[i]
}

func (db *DB) each(fn func(th *driver.TestHandler)) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	for _, th := range db.handlers {
		fn(th)
	}
}

// AddQuery used to add a query and the return result expected.
func (db *DB) AddQuery(query string, result *sqltypes.Result) {
	db.each(func(th *driver.TestHandler) { th.AddQuery(query, result) })
}

// AddQueryDelay used to add query and return by delay.
func (db *DB) AddQueryDelay(query string, result *sqltypes.Result, delayMS int) {
	db.each(func(th *driver.TestHandler) { th.AddQueryDelay(query, result, delayMS) })
}

// AddQueryError use to add a query and return the error expected.
func (db *DB) AddQueryError(query string, err error) {
	db.each(func(th *driver.TestHandler) { th.AddQueryError(query, err) })
}

// AddQueryPattern used to add an expected result for a set of queries.
func (db *DB) AddQueryPattern(qp string, result *sqltypes.Result) {
	db.each(func(th *driver.TestHandler) { th.AddQueryPattern(qp, result) })
}

// AddQueryErrorPattern use to add a query and return the error expected.
func (db *DB) AddQueryErrorPattern(qp string, err error) {
	db.each(func(th *driver.TestHandler) { th.AddQueryErrorPattern(qp, err) })
}

// AddQueryErrorOn makes the query fail on the i-th server only.
func (db *DB) AddQueryErrorOn(i int, query string, err error) {
	db.Handler(i).AddQueryError(query, err)
}

// GetQueryCalledNum returns how many times all servers executed a query.
func (db *DB) GetQueryCalledNum(query string) int {
	n := 0
	db.each(func(th *driver.TestHandler) { n += th.GetQueryCalledNum(query) })
	return n
}

// GetQueryCalledNumOn returns how many times the i-th server executed a query.
func (db *DB) GetQueryCalledNumOn(i int, query string) int {
	return db.Handler(i).GetQueryCalledNum(query)
}

// ResetAll will reset all, including: query and query patterns.
func (db *DB) ResetAll() {
	db.each(func(th *driver.TestHandler) { th.ResetAll() })
}

// ResetErrors used to reset all the errors.
func (db *DB) ResetErrors() {
	db.each(func(th *driver.TestHandler) { th.ResetErrors() })
}
