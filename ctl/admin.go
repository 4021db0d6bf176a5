/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package ctl

import (
	"context"
	"net/http"

	"github.com/radondb/shardkit/proxy"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/xelabs/go-mysqlstack/xlog"
)

// Admin tuple.
type Admin struct {
	log    *xlog.Log
	proxy  *proxy.Proxy
	server *http.Server
}

// NewAdmin creates the admin api server.
func NewAdmin(log *xlog.Log, proxy *proxy.Proxy) *Admin {
	return &Admin{
		log:   log,
		proxy: proxy,
	}
}

// Start starts http server.
func (admin *Admin) Start() error {
	api := rest.NewApi()
	router, err := admin.NewRouter()
	if err != nil {
		return err
	}

	api.SetApp(router)
	handlers := api.MakeHandler()
	admin.server = &http.Server{Addr: admin.proxy.PeerAddress(), Handler: handlers}

	go func() {
		log := admin.log
		log.Info("http.server.start[%v]...", admin.proxy.PeerAddress())
		if err := admin.server.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("http.server.listen.error:%v", err)
		}
	}()
	return nil
}

// Stop stops http server.
func (admin *Admin) Stop() {
	log := admin.log
	if admin.server == nil {
		return
	}
	admin.server.Shutdown(context.Background())
	log.Info("http.server.gracefully.stop")
}
