/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package proxy

import (
	"os"
	"path"
	"time"

	"github.com/radondb/shardkit/backend"
	"github.com/radondb/shardkit/config"
	"github.com/radondb/shardkit/fakedb"
	"github.com/radondb/shardkit/router"

	"github.com/xelabs/go-mysqlstack/xlog"
)

// MockDefaultConfig mocks the default config, metrics are not served.
func MockDefaultConfig() *config.Config {
	conf := &config.Config{
		Server:  config.DefaultServerConfig(),
		Session: config.DefaultSessionConfig(),
		Router:  config.DefaultRouterConfig(),
		Monitor: &config.MonitorConfig{},
		Log:     config.DefaultLogConfig(),
	}
	return conf
}

// MockProxy mocks a proxy over three fake backends with the router mock tables
// created under database sbtest.
func MockProxy(log *xlog.Log) (*fakedb.DB, *Proxy, func()) {
	return MockProxy1(log, MockDefaultConfig())
}

// MockProxy1 mocks the proxy with config.
func MockProxy1(log *xlog.Log, conf *config.Config) (*fakedb.DB, *Proxy, func()) {
	tmpDir := fakedb.GetTmpDir("", "shardkit_mock_", log)

	// Fake backends.
	fakedbs := fakedb.New(log, 3)
	backend.MockSessionQueries(fakedbs)

	fileFormat := "20060102150405.000"
	timestamp := time.Now().UTC().Format(fileFormat)
	metaDir := tmpDir + "/test_shardkit_meta_" + timestamp
	conf.Server.MetaDir = metaDir

	if x := os.MkdirAll(metaDir, 0777); x != nil {
		log.Panic("%+v", x)
	}

	backendsConf := &config.BackendsConfig{Backends: fakedbs.BackendConfs()}
	if err := config.WriteConfig(path.Join(metaDir, "backend.json"), backendsConf); err != nil {
		log.Panic("mock.proxy.write.backends.config.error:%+v", err)
	}

	proxy := NewProxy(log, tmpDir+"/shardkit_mock.json", conf)
	if err := proxy.Start(); err != nil {
		log.Panic("mock.proxy.start.error:%+v", err)
	}

	rt := proxy.Router()
	if err := rt.CreateDatabase("sbtest"); err != nil {
		log.Panic("mock.proxy.create.database.error:%+v", err)
	}
	for _, tbl := range router.MockConfigs() {
		if err := rt.CreateTable("sbtest", tbl); err != nil {
			log.Panic("mock.proxy.create.table.error:%+v", err)
		}
	}
	return fakedbs, proxy, func() {
		proxy.Stop()
		fakedbs.Close()
		os.RemoveAll(tmpDir)
	}
}
