/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package v1

import (
	"net/http"
	"strings"

	"github.com/radondb/shardkit/config"
	"github.com/radondb/shardkit/proxy"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/pkg/errors"
	"github.com/xelabs/go-mysqlstack/xlog"
)

// RulesHandler impl.
func RulesHandler(log *xlog.Log, proxy *proxy.Proxy) rest.HandlerFunc {
	f := func(w rest.ResponseWriter, r *rest.Request) {
		rulesHandler(log, proxy, w, r)
	}
	return f
}

func rulesHandler(log *xlog.Log, proxy *proxy.Proxy, w rest.ResponseWriter, r *rest.Request) {
	router := proxy.Router()
	w.WriteJson(router.Rules())
}

// RouteParams is the body of a route request.
type RouteParams struct {
	Database string `json:"database"`
	Query    string `json:"query"`
}

// RouteHandler impl.
func RouteHandler(log *xlog.Log, proxy *proxy.Proxy) rest.HandlerFunc {
	f := func(w rest.ResponseWriter, r *rest.Request) {
		routeHandler(log, proxy, w, r)
	}
	return f
}

// routeHandler explains the routing of a statement.
// Returns:
// 1. Status:200, Body:plan JSON
// 2. Status:400, the statement can not be routed
// 3. Status:500, bad request body
func routeHandler(log *xlog.Log, proxy *proxy.Proxy, w rest.ResponseWriter, r *rest.Request) {
	p := RouteParams{}
	if err := r.DecodeJsonPayload(&p); err != nil {
		log.Error("api.v1.route.error:%+v", err)
		rest.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	plan, err := proxy.Explain(r.Context(), p.Database, p.Query)
	if err != nil {
		log.Error("api.v1.route[%s.%s].error:%+v", p.Database, p.Query, err)
		rest.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteJson(plan)
}

// ShardReloadHandler impl.
func ShardReloadHandler(log *xlog.Log, proxy *proxy.Proxy) rest.HandlerFunc {
	f := func(w rest.ResponseWriter, r *rest.Request) {
		shardReloadHandler(log, proxy, w, r)
	}
	return f
}

func shardReloadHandler(log *xlog.Log, proxy *proxy.Proxy, w rest.ResponseWriter, r *rest.Request) {
	router := proxy.Router()
	log.Warning("api.shard.reload.prepare.from[%v]...", r.RemoteAddr)
	if err := router.LoadConfig(); err != nil {
		log.Error("api.v1.shard.reload.error:%+v", err)
		rest.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Warning("api.shard.reload.done...")
}

// TableParams is the body of a create table request.
type TableParams struct {
	Database  string `json:"database"`
	Table     string `json:"table"`
	ShardType string `json:"shardtype"`
	ShardKey  string `json:"shardkey"`
	// Partitions is the number of HASH partition tables, 0 is the default.
	Partitions int `json:"partitions"`
}

// CreateTableHandler impl.
func CreateTableHandler(log *xlog.Log, proxy *proxy.Proxy) rest.HandlerFunc {
	f := func(w rest.ResponseWriter, r *rest.Request) {
		createTableHandler(log, proxy, w, r)
	}
	return f
}

// createTableHandler spreads a new table over all backends and stores its rule.
// Returns:
// 1. Status:200
// 2. Status:400, the rule can not be built
// 3. Status:500, bad request body or the rule can not be stored
func createTableHandler(log *xlog.Log, proxy *proxy.Proxy, w rest.ResponseWriter, r *rest.Request) {
	p := TableParams{}
	if err := r.DecodeJsonPayload(&p); err != nil {
		log.Error("api.v1.create.table.error:%+v", err)
		rest.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if p.Database == "" {
		rest.Error(w, "api.v1.create.table.database.is.empty", http.StatusBadRequest)
		return
	}

	rt := proxy.Router()
	backends := proxy.Scatter().Backends()
	var err error
	var tconf *config.TableConfig
	switch strings.ToUpper(p.ShardType) {
	case "", "HASH":
		tconf, err = rt.HashUniform(p.Table, p.ShardKey, backends, p.Partitions)
	case "MOD":
		tconf, err = rt.ModUniform(p.Table, p.ShardKey, backends)
	case "GLOBAL":
		tconf, err = rt.GlobalUniform(p.Table, backends)
	case "SINGLE":
		tconf, err = rt.SingleUniform(p.Table, backends)
	default:
		err = errors.Errorf("api.v1.create.table.unsupported.shardtype[%s]", p.ShardType)
	}
	if err != nil {
		log.Error("api.v1.create.table[%s.%s].error:%+v", p.Database, p.Table, err)
		rest.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, ok := rt.Tables()[p.Database]; !ok {
		if err := rt.CreateDatabase(p.Database); err != nil {
			log.Error("api.v1.create.table.database[%s].error:%+v", p.Database, err)
			rest.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	if err := rt.CreateTable(p.Database, tconf); err != nil {
		log.Error("api.v1.create.table[%s.%s].error:%+v", p.Database, p.Table, err)
		rest.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Warning("api.v1.create.table[%s.%s].type[%s].partitions[%d].from[%v]", p.Database, p.Table, tconf.ShardType, len(tconf.Partitions), r.RemoteAddr)
}

// DropTableHandler impl.
func DropTableHandler(log *xlog.Log, proxy *proxy.Proxy) rest.HandlerFunc {
	f := func(w rest.ResponseWriter, r *rest.Request) {
		dropTableHandler(log, proxy, w, r)
	}
	return f
}

func dropTableHandler(log *xlog.Log, proxy *proxy.Proxy, w rest.ResponseWriter, r *rest.Request) {
	db := r.PathParam("db")
	table := r.PathParam("table")
	if err := proxy.Router().DropTable(db, table); err != nil {
		log.Error("api.v1.drop.table[%s.%s].error:%+v", db, table, err)
		rest.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Warning("api.v1.drop.table[%s.%s].from[%v]", db, table, r.RemoteAddr)
}
