/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package backend

import (
	"io/ioutil"
	"os"
	"path"
	"sort"
	"sync"

	"github.com/radondb/shardkit/config"
	"github.com/radondb/shardkit/monitor"

	"github.com/pkg/errors"
	"github.com/xelabs/go-mysqlstack/xlog"
)

const (
	backendjson = "backend.json"
)

// Scatter is the backend registry.
type Scatter struct {
	log      *xlog.Log
	mu       sync.RWMutex
	txnMgr   *TxnManager
	metadir  string
	backends map[string]Source
}

// NewScatter creates a new scatter.
func NewScatter(log *xlog.Log, metadir string, conf *config.SessionConfig) *Scatter {
	return &Scatter{
		log:      log,
		txnMgr:   NewTxnManager(log, conf),
		metadir:  metadir,
		backends: make(map[string]Source),
	}
}

func backendType(conf *config.BackendConfig) string {
	if conf.ReadOnly {
		return "read-only"
	}
	return "normal"
}

// Add backend node.
func (scatter *Scatter) add(conf *config.BackendConfig) error {
	log := scatter.log
	log.Warning("scatter.add:%v", conf.Name)

	if _, ok := scatter.backends[conf.Name]; ok {
		return errors.Errorf("scatter.backend[%v].duplicate", conf.Name)
	}
	source, err := NewSource(scatter.log, conf)
	if err != nil {
		return err
	}
	scatter.backends[conf.Name] = source
	monitor.BackendInc(backendType(conf))
	return nil
}

// Add used to add a new backend to scatter.
func (scatter *Scatter) Add(conf *config.BackendConfig) error {
	scatter.mu.Lock()
	defer scatter.mu.Unlock()
	return scatter.add(conf)
}

func (scatter *Scatter) remove(name string) error {
	log := scatter.log
	log.Warning("scatter.remove:%v", name)

	source, ok := scatter.backends[name]
	if !ok {
		return errors.Errorf("scatter.backend[%v].can.not.be.found", name)
	}
	delete(scatter.backends, name)
	monitor.BackendDec(backendType(source.Config()))
	source.Close()
	return nil
}

// Remove used to remove a backend from the scatter.
func (scatter *Scatter) Remove(name string) error {
	scatter.mu.Lock()
	defer scatter.mu.Unlock()
	return scatter.remove(name)
}

// Close used to clean the pools connections.
func (scatter *Scatter) Close() {
	scatter.mu.Lock()
	defer scatter.mu.Unlock()

	log := scatter.log
	log.Info("scatter.prepare.to.close....")
	scatter.clear()
	log.Info("scatter.close.done....")
}

func (scatter *Scatter) clear() {
	for _, v := range scatter.backends {
		monitor.BackendDec(backendType(v.Config()))
		v.Close()
	}
	scatter.backends = make(map[string]Source)
}

// FlushConfig used to write the backends to file.
func (scatter *Scatter) FlushConfig() error {
	scatter.mu.Lock()
	defer scatter.mu.Unlock()

	log := scatter.log
	file := path.Join(scatter.metadir, backendjson)

	backends := config.BackendsConfig{Backends: make([]*config.BackendConfig, 0, len(scatter.backends))}
	for _, name := range scatter.names() {
		backends.Backends = append(backends.Backends, scatter.backends[name].Config())
	}

	log.Warning("scatter.flush.to.file[%v].backends.conf:%+v", file, backends.Backends)
	if err := config.WriteConfig(file, backends); err != nil {
		log.Error("scatter.flush.config.to.file[%v].error:%v", file, err)
		return err
	}
	return nil
}

// LoadConfig used to load all backends from metadir/backend.json file.
func (scatter *Scatter) LoadConfig() error {
	scatter.mu.Lock()
	defer scatter.mu.Unlock()

	// Do clear first.
	scatter.clear()

	log := scatter.log
	metadir := scatter.metadir
	file := path.Join(metadir, backendjson)

	// Create it if the backends config not exists.
	if _, err := os.Stat(file); os.IsNotExist(err) {
		if err := os.MkdirAll(metadir, 0744); err != nil {
			return errors.WithStack(err)
		}
		backends := config.BackendsConfig{Backends: []*config.BackendConfig{}}
		if err := config.WriteConfig(file, backends); err != nil {
			log.Error("scatter.flush.backends.to.file[%v].error:%v", file, err)
			return err
		}
	}

	data, err := ioutil.ReadFile(file)
	if err != nil {
		log.Error("scatter.load.from.file[%v].error:%v", file, err)
		return errors.WithStack(err)
	}
	conf, err := config.ReadBackendsConfig(string(data))
	if err != nil {
		log.Error("scatter.parse.json.file[%v].error:%v", file, err)
		return err
	}
	for _, backend := range conf.Backends {
		if err := scatter.add(backend); err != nil {
			log.Error("scatter.add.backend[%+v].error:%v", backend.Name, err)
			return err
		}
		log.Warning("scatter.load.backend:%+v", backend.Name)
	}
	return nil
}

func (scatter *Scatter) names() []string {
	backends := make([]string, 0, len(scatter.backends))
	for k := range scatter.backends {
		backends = append(backends, k)
	}
	sort.Strings(backends)
	return backends
}

// Backends returns all backends.
func (scatter *Scatter) Backends() []string {
	scatter.mu.RLock()
	defer scatter.mu.RUnlock()
	return scatter.names()
}

// Source returns the source of the backend.
func (scatter *Scatter) Source(name string) (Source, bool) {
	scatter.mu.RLock()
	defer scatter.mu.RUnlock()
	source, ok := scatter.backends[name]
	return source, ok
}

// SourceClone used to copy backends to new map.
func (scatter *Scatter) SourceClone() map[string]Source {
	sources := make(map[string]Source)
	scatter.mu.RLock()
	defer scatter.mu.RUnlock()
	for k, v := range scatter.backends {
		sources[k] = v
	}
	return sources
}

// BackendConfigsClone used to clone all the backend configs.
func (scatter *Scatter) BackendConfigsClone() []*config.BackendConfig {
	scatter.mu.RLock()
	defer scatter.mu.RUnlock()
	beConfigs := make([]*config.BackendConfig, 0, 16)
	for _, name := range scatter.names() {
		beConfigs = append(beConfigs, scatter.backends[name].Config())
	}
	return beConfigs
}

// BackendsJSON returns the stats of every backend, ordered by name.
func (scatter *Scatter) BackendsJSON() []string {
	scatter.mu.RLock()
	defer scatter.mu.RUnlock()
	var out []string
	for _, name := range scatter.names() {
		out = append(out, scatter.backends[name].JSON())
	}
	return out
}

// TxnManager returns the session manager.
func (scatter *Scatter) TxnManager() *TxnManager {
	return scatter.txnMgr
}

// CreateSession used to create a session over the current backends.
func (scatter *Scatter) CreateSession() (*Session, error) {
	return scatter.txnMgr.CreateSession(scatter.SourceClone())
}
