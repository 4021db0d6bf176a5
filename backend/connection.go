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
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/radondb/shardkit/monitor"

	"github.com/pkg/errors"
	"github.com/xelabs/go-mysqlstack/driver"
	"github.com/xelabs/go-mysqlstack/sqlparser/depends/sqltypes"
	"github.com/xelabs/go-mysqlstack/xlog"
	"go.uber.org/atomic"
)

var (
	errConnClosed = errors.New("I.am.closed")
	errServerLost = errors.New("Server maybe lost, please try again")
)

var _ Connection = &connection{}

// Connection is one physical connection handed out by a Source.
type Connection interface {
	ID() uint32
	Backend() string
	Execute(string) (*sqltypes.Result, error)
	// Recycle gives the connection back to its source.
	Recycle()
	// Discard closes the connection and frees its source slot.
	Discard() error
	Closed() bool
}

type connection struct {
	log          *xlog.Log
	connectionID uint32
	user         string
	password     string
	address      string
	database     string
	charset      string

	pool *Pool

	// If lastErr is not nil, this connection should be closed.
	lastErr error

	killed atomic.Bool
	closed atomic.Bool
	// held is set while the connection owns a pool slot.
	held   atomic.Bool
	driver driver.Conn

	// Recycle timestamp, in seconds.
	timestamp int64
}

// newConnection creates a new connection.
func newConnection(log *xlog.Log, pool *Pool) *connection {
	conf := pool.conf
	return &connection{
		log:      log,
		pool:     pool,
		user:     conf.User,
		password: conf.Password,
		address:  conf.Address,
		database: conf.DBName,
		charset:  conf.Charset,
	}
}

// Dial used to create a new driver conn.
func (c *connection) Dial() error {
	var err error
	if c.driver, err = driver.NewConn(c.user, c.password, c.address, c.database, c.charset); err != nil {
		c.log.Error("conn[%s].dial.error:%+v", c.address, err)
		monitor.ShardFailureInc(c.Backend(), "dial")
		c.closed.Store(true)
		c.lastErr = errConnClosed
		return errors.WithMessagef(errServerLost, "conn[%s].dial", c.address)
	}
	c.connectionID = c.driver.ConnectionID()
	monitor.BackendConnectionInc(c.Backend())
	return nil
}

// Ping used to do ping.
func (c *connection) Ping() error {
	return c.driver.Ping()
}

// ID returns the connection ID.
func (c *connection) ID() uint32 {
	return c.connectionID
}

// Backend returns the backend name.
func (c *connection) Backend() string {
	return c.pool.conf.Name
}

// SetTimestamp used to set the timestamp.
func (c *connection) SetTimestamp(ts int64) {
	c.timestamp = ts
}

// Timestamp returns Timestamp of connection.
func (c *connection) Timestamp() int64 {
	return c.timestamp
}

// setDeadline used to set deadline for a query.
func (c *connection) setDeadline(timeout int) (chan bool, *sync.WaitGroup) {
	var wg sync.WaitGroup
	done := make(chan bool, 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Millisecond)
	wg.Add(1)
	go func() {
		defer func() {
			wg.Done()
			cancel()
		}()
		select {
		case <-ctx.Done():
			c.killed.Store(true)
			reason := ctx.Err().Error()
			c.Kill(reason)
		case <-done:
			return
		}
	}()
	return done, &wg
}

// Execute used to execute a query through this connection without limits.
func (c *connection) Execute(query string) (*sqltypes.Result, error) {
	return c.ExecuteWithLimits(query, 0)
}

// ExecuteWithLimits used to execute a query through this connection.
// If timeout is 0, means there is no limit.
func (c *connection) ExecuteWithLimits(query string, timeout int) (*sqltypes.Result, error) {
	var err error
	var qr *sqltypes.Result
	log := c.log

	if c.closed.Load() {
		return nil, errors.WithMessagef(errConnClosed, "conn[%s].execute", c.address)
	}

	if timeout > 0 {
		done, wg := c.setDeadline(timeout)
		defer func() {
			close(done)
			wg.Wait()
		}()
	}

	if qr, err = c.driver.FetchAll(query, -1); err != nil {
		log.Error("conn[%s].execute[%s].error:%+v", c.address, query, err)
		c.lastErr = err

		// Connection is killed.
		if c.killed.Load() {
			return nil, errors.Errorf("Query execution was interrupted, timeout[%dms] exceeded", timeout)
		}

		// Connection is broken(closed by server).
		if err == io.EOF {
			return nil, errServerLost
		}
		return nil, err
	}
	return qr, nil
}

// ExecuteStreamFetch returns a row cursor over the query result.
func (c *connection) ExecuteStreamFetch(query string) (driver.Rows, error) {
	return c.driver.Query(query)
}

// Kill used to kill current connection through a new one,
// the pool slots are left to the sessions.
func (c *connection) Kill(reason string) error {
	kill := newConnection(c.log, c.pool)
	if err := kill.Dial(); err != nil {
		return err
	}
	defer kill.Close()

	c.log.Warning("conn[%s, ID:%v].be.killed.by[%v].reason[%s]", c.address, c.ID(), kill.ID(), reason)
	query := fmt.Sprintf("KILL %d", c.connectionID)
	if _, err := kill.Execute(query); err != nil {
		c.log.Warning("conn[%s, ID:%v].kill.error:%+v", c.address, c.ID(), err)
		return err
	}
	return nil
}

// Recycle used to put current to pool, broken connections are discarded.
func (c *connection) Recycle() {
	if c.lastErr != nil || c.Closed() {
		c.Discard()
		return
	}
	c.pool.Put(c)
}

// Discard closes the connection and releases its pool slot.
func (c *connection) Discard() error {
	err := c.Close()
	c.pool.release(c)
	return err
}

// Close used to close connection.
func (c *connection) Close() error {
	c.lastErr = errConnClosed
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c.driver == nil {
		return nil
	}
	monitor.BackendConnectionDec(c.Backend())
	return c.driver.Close()
}

// Closed returns true if the connection is closed.
func (c *connection) Closed() bool {
	if c.closed.Load() {
		return true
	}
	if c.driver != nil {
		return c.driver.Closed()
	}
	return true
}

// LastErr returns the last execute error.
func (c *connection) LastErr() error {
	return c.lastErr
}
