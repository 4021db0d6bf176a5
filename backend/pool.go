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
	"sync"
	"time"

	"github.com/radondb/shardkit/config"

	"github.com/pkg/errors"
	"github.com/xelabs/go-mysqlstack/sqlparser/depends/common"
	"github.com/xelabs/go-mysqlstack/xlog"
	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"
)

const (
	defaultMaxConnections = 1024
)

var (
	maxIdleTime = 20 // 20s
	errClosed   = errors.New("can't get connection from the closed pool")
)

var _ Source = &Pool{}

// Pool is a bounded connection source over the go-mysqlstack driver.
// At most MaxConnections connections are handed out at once.
type Pool struct {
	mu          sync.RWMutex
	log         *xlog.Log
	conf        *config.BackendConfig
	sem         *semaphore.Weighted
	connections chan *connection

	inUse atomic.Int64
	gets  atomic.Int64
	hits  atomic.Int64

	// If maxIdleTime reached, the connection will be closed by get.
	maxIdleTime atomic.Int64
}

// NewPool creates the new Pool.
func NewPool(log *xlog.Log, conf *config.BackendConfig) *Pool {
	max := conf.MaxConnections
	if max <= 0 {
		max = defaultMaxConnections
	}
	p := &Pool{
		log:         log,
		conf:        conf,
		sem:         semaphore.NewWeighted(int64(max)),
		connections: make(chan *connection, max),
	}
	p.maxIdleTime.Store(int64(maxIdleTime))
	return p
}

// Name returns the backend name.
func (p *Pool) Name() string {
	return p.conf.Name
}

// Writable returns false for read-only backends.
func (p *Pool) Writable() bool {
	return !p.conf.ReadOnly
}

// Config returns the backend config.
func (p *Pool) Config() *config.BackendConfig {
	return p.conf
}

func (p *Pool) reconnect() (*connection, error) {
	log := p.log
	c := newConnection(log, p)
	if err := c.Dial(); err != nil {
		log.Error("pool.reconnect.dial.error:%+v", err)
		return nil, err
	}
	c.SetTimestamp(time.Now().Unix())
	return c, nil
}

// Get used to get a connection from the pool, it waits for a free
// slot until the ctx or the backend acquire-timeout expires.
func (p *Pool) Get(ctx context.Context) (Connection, error) {
	if p.conf.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(p.conf.AcquireTimeout)*time.Millisecond)
		defer cancel()
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrapf(err, "pool[%s].acquire", p.conf.Name)
	}

	conn, err := p.get()
	if err != nil {
		p.sem.Release(1)
		return nil, err
	}
	conn.held.Store(true)
	p.inUse.Inc()
	return conn, nil
}

func (p *Pool) get() (*connection, error) {
	p.gets.Inc()
	conns := p.getConns()
	if conns == nil {
		return nil, errClosed
	}

	select {
	case conn, more := <-conns:
		if !more {
			return nil, errClosed
		}
		// If the idle time more than 1s,
		// we will do a ping to check the connection is OK or NOT.
		now := time.Now().Unix()
		elapsed := (now - conn.Timestamp())
		if elapsed > 1 {
			// If elapsed time more than 20s, we create new one.
			if elapsed > p.maxIdleTime.Load() {
				conn.Close()
				return p.reconnect()
			}

			if err := conn.Ping(); err != nil {
				conn.Close()
				return p.reconnect()
			}
		}
		p.hits.Inc()
		return conn, nil
	default:
		return p.reconnect()
	}
}

// Put used to put a connection to pool.
func (p *Pool) Put(conn *connection) {
	p.put(conn, true)
	p.release(conn)
}

func (p *Pool) put(conn *connection, updateTs bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.connections == nil {
		conn.Close()
		return
	}

	if updateTs {
		conn.SetTimestamp(time.Now().Unix())
	}
	select {
	case p.connections <- conn:
	default:
		conn.Close()
	}
}

// release frees the slot held by the connection, at most once per Get.
func (p *Pool) release(conn *connection) {
	if conn.held.CompareAndSwap(true, false) {
		p.inUse.Dec()
		p.sem.Release(1)
	}
}

// Close used to close the pool.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.connections == nil {
		return
	}
	close(p.connections)
	for conn := range p.connections {
		conn.Close()
	}
	p.connections = nil
}

func (p *Pool) getConns() chan *connection {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connections
}

// PoolStats is the snapshot of a pool.
type PoolStats struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Driver   string `json:"driver"`
	Capacity int    `json:"capacity"`
	Idle     int    `json:"idle"`
	InUse    int64  `json:"in-use"`
	Gets     int64  `json:"gets"`
	Hits     int64  `json:"hits"`
}

// Stats returns the pool snapshot.
func (p *Pool) Stats() *PoolStats {
	return &PoolStats{
		Name:     p.conf.Name,
		Address:  p.conf.Address,
		Driver:   config.DriverStack,
		Capacity: cap(p.getConns()),
		Idle:     len(p.getConns()),
		InUse:    p.inUse.Load(),
		Gets:     p.gets.Load(),
		Hits:     p.hits.Load(),
	}
}

// JSON returns the pool stats string.
func (p *Pool) JSON() string {
	return toJSON(p.Stats())
}

func toJSON(v interface{}) string {
	out, err := common.ToJSONString(v, false, "", "")
	if err != nil {
		return err.Error()
	}
	return out
}
