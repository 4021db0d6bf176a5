/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package proxy

import (
	"net/http"
	"sync"

	"github.com/radondb/shardkit/backend"
	"github.com/radondb/shardkit/config"
	"github.com/radondb/shardkit/monitor"
	"github.com/radondb/shardkit/planner"
	"github.com/radondb/shardkit/router"

	"github.com/pkg/errors"
	"github.com/xelabs/go-mysqlstack/xlog"
)

// Proxy tuple.
type Proxy struct {
	mu       sync.RWMutex
	log      *xlog.Log
	conf     *config.Config
	confPath string
	router   *router.Router
	handler  *router.Handler
	planner  *planner.Planner
	scatter  *backend.Scatter
	metrics  *http.Server
}

// NewProxy creates new proxy.
func NewProxy(log *xlog.Log, path string, conf *config.Config) *Proxy {
	router := router.NewRouter(log, conf.Server.MetaDir, conf.Router)
	scatter := backend.NewScatter(log, conf.Server.MetaDir, conf.Session)
	return &Proxy{
		log:      log,
		conf:     conf,
		confPath: path,
		router:   router,
		scatter:  scatter,
	}
}

// Start used to start the proxy.
func (p *Proxy) Start() error {
	log := p.log
	conf := p.conf

	log.Info("proxy.server.config[%+v]...", conf.Server)
	log.Info("proxy.session.config[%+v]...", conf.Session)
	log.Info("log.config[%+v]...", conf.Log)

	if err := p.router.LoadConfig(); err != nil {
		log.Error("proxy.router.load.error:%+v", err)
		return err
	}
	if err := p.scatter.LoadConfig(); err != nil {
		log.Error("proxy.scatter.load.config.error:%+v", err)
		return err
	}

	p.handler = router.NewHandler(log, p.router)
	planner, err := planner.NewPlanner(log, p.handler, conf.Router.PlanCacheSize)
	if err != nil {
		log.Error("proxy.planner.init.error:%+v", err)
		return errors.WithMessage(err, "proxy.planner.init")
	}
	planner.SetSubQueryRunner(p.runSubQuery)
	p.planner = planner

	if addr := conf.Monitor.MonitorAddress; addr != "" {
		p.metrics = monitor.Start(log, addr)
	}
	log.Info("proxy.started, backends:%v", p.scatter.Backends())
	return nil
}

// Stop used to stop the proxy.
func (p *Proxy) Stop() {
	log := p.log

	log.Info("proxy.starting.shutdown...")
	if p.metrics != nil {
		if err := p.metrics.Close(); err != nil {
			log.Error("proxy.monitor.close.error:%v", err)
		}
	}
	p.scatter.Close()
	log.Info("proxy.shutdown.complete...")
}

// Config returns the config.
func (p *Proxy) Config() *config.Config {
	return p.conf
}

// Scatter returns the scatter.
func (p *Proxy) Scatter() *backend.Scatter {
	return p.scatter
}

// Router returns the router.
func (p *Proxy) Router() *router.Router {
	return p.router
}

// Handler returns the routing handler.
func (p *Proxy) Handler() *router.Handler {
	return p.handler
}

// Planner returns the planner.
func (p *Proxy) Planner() *planner.Planner {
	return p.planner
}

// PeerAddress returns the admin api address.
func (p *Proxy) PeerAddress() string {
	return p.conf.Server.PeerAddress
}

// SetParallelCommit used to switch commit/rollback fanout mode of new sessions.
func (p *Proxy) SetParallelCommit(enable bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.log.Info("proxy.SetParallelCommit:[%v->%v]", p.conf.Session.ParallelCommit, enable)
	p.conf.Session.ParallelCommit = enable
}

// SetReadOnly used to set the default read-only mode of new sessions.
func (p *Proxy) SetReadOnly(val bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.log.Info("proxy.SetReadOnly:[%v->%v]", p.conf.Session.ReadOnly, val)
	p.conf.Session.ReadOnly = val
}

// FlushConfig used to flush the config to disk.
func (p *Proxy) FlushConfig() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.log.Info("proxy.flush.config.to.file:%v, config:%+v", p.confPath, p.conf.Server)
	if err := config.WriteConfig(p.confPath, p.conf); err != nil {
		p.log.Error("proxy.flush.config.to.file[%v].error:%v", p.confPath, err)
		return err
	}
	return nil
}
