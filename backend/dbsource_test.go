/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package backend

import (
	"context"
	"strings"
	"testing"

	"github.com/radondb/shardkit/config"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/xelabs/go-mysqlstack/xlog"
)

func TestDBSourceDSN(t *testing.T) {
	conf := MockBackendConfigDefault("backend0", "127.0.0.1:3306")
	dsn := DSN(conf)
	assert.True(t, strings.HasPrefix(dsn, "mock:pwd@tcp(127.0.0.1:3306)/sbtest?"), dsn)
	assert.True(t, strings.Contains(dsn, "charset=utf8"), dsn)

	conf.AcquireTimeout = 1500
	assert.True(t, strings.Contains(DSN(conf), "timeout=1.5s"), DSN(conf))
}

func TestDBSource(t *testing.T) {
	defer leaktest.Check(t)()
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))

	conf := MockBackendConfigDefault("backend0", "127.0.0.1:1")
	conf.Driver = config.DriverSQL
	conf.AcquireTimeout = 200
	source, err := NewSource(log, conf)
	assert.Nil(t, err)
	defer source.Close()

	db, ok := source.(*DBSource)
	assert.True(t, ok)
	assert.Equal(t, "backend0", db.Name())
	assert.True(t, db.Writable())
	assert.True(t, strings.Contains(db.JSON(), `"driver":"database/sql"`))

	// Nothing listens there.
	_, err = db.Get(context.Background())
	assert.NotNil(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "dbsource[backend0].acquire"), err.Error())
}

func TestNewSource(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	conf := MockBackendConfigDefault("backend0", "127.0.0.1:3306")
	source, err := NewSource(log, conf)
	assert.Nil(t, err)
	defer source.Close()
	_, ok := source.(*Pool)
	assert.True(t, ok)
}
