/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package cmd

import (
	"net/http/httptest"
	"strings"

	"github.com/radondb/shardkit/ctl"
	"github.com/radondb/shardkit/fakedb"
	"github.com/radondb/shardkit/proxy"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/xelabs/go-mysqlstack/xlog"
)

// mockAPI serves the admin api of a mock proxy, returns the api address.
func mockAPI(log *xlog.Log) (*fakedb.DB, *proxy.Proxy, string, func()) {
	fakedbs, proxy, cleanup := proxy.MockProxy(log)
	admin := ctl.NewAdmin(log, proxy)
	app, err := admin.NewRouter()
	if err != nil {
		log.Panic("mock.api.router.error:%+v", err)
	}
	api := rest.NewApi()
	api.SetApp(app)
	svr := httptest.NewServer(api.MakeHandler())
	return fakedbs, proxy, strings.TrimPrefix(svr.URL, "http://"), func() {
		svr.Close()
		cleanup()
	}
}
