/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package v1

import (
	"fmt"
	"net/http"

	"github.com/radondb/shardkit/config"
	"github.com/radondb/shardkit/proxy"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/xelabs/go-mysqlstack/xlog"
)

type backendParams struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	User           string `json:"user"`
	Password       string `json:"password"`
	Database       string `json:"database"`
	MaxConnections int    `json:"max-connections"`
	ReadOnly       bool   `json:"read-only"`
	Driver         string `json:"driver"`
	AcquireTimeout int    `json:"acquire-timeout"`
}

// AddBackendHandler impl.
func AddBackendHandler(log *xlog.Log, proxy *proxy.Proxy) rest.HandlerFunc {
	f := func(w rest.ResponseWriter, r *rest.Request) {
		addBackendHandler(log, proxy, w, r)
	}
	return f
}

func addBackendHandler(log *xlog.Log, proxy *proxy.Proxy, w rest.ResponseWriter, r *rest.Request) {
	scatter := proxy.Scatter()
	p := backendParams{}
	err := r.DecodeJsonPayload(&p)
	if err != nil {
		log.Error("api.v1.add.backend.error:%+v", err)
		rest.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if p.Name == "" || p.Address == "" {
		log.Error("api.v1.add.backend.name.or.address.is.empty")
		rest.Error(w, "api.v1.add.backend.name.or.address.is.empty", http.StatusInternalServerError)
		return
	}

	conf := &config.BackendConfig{
		Name:           p.Name,
		Address:        p.Address,
		User:           p.User,
		Password:       p.Password,
		DBName:         p.Database,
		Charset:        "utf8",
		MaxConnections: p.MaxConnections,
		ReadOnly:       p.ReadOnly,
		Driver:         p.Driver,
		AcquireTimeout: p.AcquireTimeout,
	}
	log.Warning("api.v1.add[from:%v].backend[%v@%v]", r.RemoteAddr, conf.Name, conf.Address)

	if err := scatter.Add(conf); err != nil {
		log.Error("api.v1.add.backend[%v].error:%+v", conf.Name, err)
		rest.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := scatter.FlushConfig(); err != nil {
		log.Error("api.v1.add.backend.flush.config.error:%+v", err)
		rest.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// RemoveBackendHandler impl.
func RemoveBackendHandler(log *xlog.Log, proxy *proxy.Proxy) rest.HandlerFunc {
	f := func(w rest.ResponseWriter, r *rest.Request) {
		removeBackendHandler(log, proxy, w, r)
	}
	return f
}

func removeBackendHandler(log *xlog.Log, proxy *proxy.Proxy, w rest.ResponseWriter, r *rest.Request) {
	scatter := proxy.Scatter()
	backend := r.PathParam("name")
	log.Warning("api.v1.remove[from:%v].backend[%v]", r.RemoteAddr, backend)

	// A backend still holding partitions can not go away.
	if tables := proxy.Router().TablesOnBackend(backend); len(tables) > 0 {
		msg := fmt.Sprintf("api.v1.remove.backend[%s].used.by.tables%v", backend, tables)
		log.Error(msg)
		rest.Error(w, msg, http.StatusConflict)
		return
	}

	if err := scatter.Remove(backend); err != nil {
		log.Error("api.v1.remove.backend[%v].error:%+v", backend, err)
		rest.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := scatter.FlushConfig(); err != nil {
		log.Error("api.v1.remove.backend.flush.config.error:%+v", err)
		rest.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
