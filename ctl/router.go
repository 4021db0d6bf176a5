/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package ctl

import (
	v1 "github.com/radondb/shardkit/ctl/v1"

	"github.com/ant0ine/go-json-rest/rest"
)

// NewRouter creates the new router.
func (admin *Admin) NewRouter() (rest.App, error) {
	log := admin.log
	proxy := admin.proxy

	return rest.MakeRouter(
		// radon
		rest.Get("/v1/radon/ping", v1.PingHandler(log, proxy)),
		rest.Put("/v1/radon/config", v1.RadonConfigHandler(log, proxy)),
		rest.Post("/v1/radon/backend", v1.AddBackendHandler(log, proxy)),
		rest.Delete("/v1/radon/backend/:name", v1.RemoveBackendHandler(log, proxy)),

		// shard
		rest.Get("/v1/shard/rules", v1.RulesHandler(log, proxy)),
		rest.Post("/v1/shard/route", v1.RouteHandler(log, proxy)),
		rest.Post("/v1/shard/reload", v1.ShardReloadHandler(log, proxy)),
		rest.Post("/v1/shard/table", v1.CreateTableHandler(log, proxy)),
		rest.Delete("/v1/shard/table/:db/:table", v1.DropTableHandler(log, proxy)),

		// debug
		rest.Get("/v1/debug/txnz/:limit", v1.TxnzHandler(log, proxy)),
		rest.Get("/v1/debug/backendz", v1.BackendzHandler(log, proxy)),
		rest.Get("/v1/debug/configz", v1.ConfigzHandler(log, proxy)),
	)
}
