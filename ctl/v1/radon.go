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

	"github.com/radondb/shardkit/proxy"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/xelabs/go-mysqlstack/xlog"
)

// PingHandler impl.
func PingHandler(log *xlog.Log, proxy *proxy.Proxy) rest.HandlerFunc {
	f := func(w rest.ResponseWriter, r *rest.Request) {
		pingHandler(log, proxy, w, r)
	}
	return f
}

func pingHandler(log *xlog.Log, proxy *proxy.Proxy, w rest.ResponseWriter, r *rest.Request) {
	if err := proxy.Ping(r.Context()); err != nil {
		log.Error("api.v1.ping.error:%+v", err)
		rest.Error(w, err.Error(), http.StatusServiceUnavailable)
	}
}

type radonParams struct {
	ParallelCommit *bool `json:"parallel-commit"`
	ReadOnly       *bool `json:"read-only"`
}

// RadonConfigHandler impl.
func RadonConfigHandler(log *xlog.Log, proxy *proxy.Proxy) rest.HandlerFunc {
	f := func(w rest.ResponseWriter, r *rest.Request) {
		radonConfigHandler(log, proxy, w, r)
	}
	return f
}

func radonConfigHandler(log *xlog.Log, proxy *proxy.Proxy, w rest.ResponseWriter, r *rest.Request) {
	p := radonParams{}
	err := r.DecodeJsonPayload(&p)
	if err != nil {
		log.Error("api.v1.radon.config.error:%+v", err)
		rest.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	log.Warning("api.v1.radon[from:%v].body:%+v", r.RemoteAddr, p)
	if p.ParallelCommit != nil {
		proxy.SetParallelCommit(*p.ParallelCommit)
	}
	if p.ReadOnly != nil {
		proxy.SetReadOnly(*p.ReadOnly)
	}

	// write to file.
	if err := proxy.FlushConfig(); err != nil {
		log.Error("api.v1.radon.flush.config.error:%+v", err)
		rest.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
