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
	"strings"
	"testing"

	"github.com/radondb/shardkit/config"

	"github.com/fortytw2/leaktest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/xelabs/go-mysqlstack/sqlparser/depends/sqltypes"
	"github.com/xelabs/go-mysqlstack/xlog"
)

func TestSessionAcquire(t *testing.T) {
	defer leaktest.Check(t)()
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	scatter, fdb, cleanup := MockScatter(log, 2)
	defer cleanup()

	sess, err := scatter.CreateSession()
	assert.Nil(t, err)
	defer sess.Close()
	assert.Equal(t, "idle", sess.State())
	assert.NotEmpty(t, sess.XID())

	c1, err := sess.Acquire(context.Background(), "backend1")
	assert.Nil(t, err)
	c2, err := sess.Acquire(context.Background(), "backend1")
	assert.Nil(t, err)
	assert.Equal(t, c1, c2)
	assert.Equal(t, "active", sess.State())

	// Settings are applied once, on enlistment.
	assert.Equal(t, 1, fdb.GetQueryCalledNumOn(1, "set autocommit=0"))
	assert.Equal(t, 1, fdb.GetQueryCalledNumOn(1, "set session transaction read write"))
	assert.Equal(t, 0, fdb.GetQueryCalledNumOn(0, "set autocommit=0"))

	_, err = sess.Acquire(context.Background(), "backend0")
	assert.Nil(t, err)
	assert.Equal(t, []string{"backend1", "backend0"}, sess.Backends())

	// Unknown backend.
	_, err = sess.Acquire(context.Background(), "backendx")
	assert.Equal(t, "session.can.not.get.connection.by.backend[backendx]", err.Error())
}

func TestSessionCommit(t *testing.T) {
	defer leaktest.Check(t)()
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	scatter, fdb, cleanup := MockScatter(log, 3)
	defer cleanup()

	sess, err := scatter.CreateSession()
	assert.Nil(t, err)
	defer sess.Close()

	for _, name := range []string{"backend2", "backend0"} {
		_, err := sess.Acquire(context.Background(), name)
		assert.Nil(t, err)
	}
	assert.Nil(t, sess.Commit())
	assert.Equal(t, 1, fdb.GetQueryCalledNumOn(0, "commit"))
	assert.Equal(t, 0, fdb.GetQueryCalledNumOn(1, "commit"))
	assert.Equal(t, 1, fdb.GetQueryCalledNumOn(2, "commit"))
	assert.Equal(t, "idle", sess.State())
	assert.Empty(t, sess.Backends())

	// Nothing enlisted, nothing sent.
	assert.Nil(t, sess.Rollback())
	assert.Equal(t, 0, fdb.GetQueryCalledNum("rollback"))

	// The registry starts over for the next transaction.
	_, err = sess.Acquire(context.Background(), "backend1")
	assert.Nil(t, err)
	assert.Nil(t, sess.Rollback())
	assert.Equal(t, 1, fdb.GetQueryCalledNumOn(1, "rollback"))
}

func testSessionPartialCommit(t *testing.T, parallel bool) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	conf := config.DefaultSessionConfig()
	conf.ParallelCommit = parallel
	scatter, fdb, cleanup := MockScatterWithConfig(log, 3, conf)
	defer cleanup()

	fdb.AddQueryErrorOn(1, "commit", errors.New("mock.commit.error"))
	sess, err := scatter.CreateSession()
	assert.Nil(t, err)
	defer sess.Close()

	for _, name := range []string{"backend0", "backend1", "backend2"} {
		_, err := sess.Acquire(context.Background(), name)
		assert.Nil(t, err)
	}
	err = sess.Commit()
	serr, ok := err.(*ShardError)
	assert.True(t, ok)
	assert.Equal(t, "commit", serr.Op)
	assert.Equal(t, []string{"backend1"}, serr.FailedBackends())
	assert.Equal(t, []string{"backend0", "backend2"}, serr.Succeeded)
	assert.True(t, strings.Contains(err.Error(), "session.commit.failed.on[backend1:"))

	// Every backend was attempted.
	for i := 0; i < 3; i++ {
		assert.Equal(t, 1, fdb.GetQueryCalledNumOn(i, "commit"))
	}
	assert.Empty(t, sess.Backends())
}

func TestSessionPartialCommit(t *testing.T) {
	defer leaktest.Check(t)()
	testSessionPartialCommit(t, false)
}

func TestSessionPartialCommitParallel(t *testing.T) {
	defer leaktest.Check(t)()
	testSessionPartialCommit(t, true)
}

func TestSessionPropagate(t *testing.T) {
	defer leaktest.Check(t)()
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	scatter, fdb, cleanup := MockScatter(log, 3)
	defer cleanup()

	sess, err := scatter.CreateSession()
	assert.Nil(t, err)
	defer sess.Close()

	for _, name := range []string{"backend0", "backend1"} {
		_, err := sess.Acquire(context.Background(), name)
		assert.Nil(t, err)
	}

	query := "set session transaction isolation level read committed"
	assert.Nil(t, sess.SetIsolation("read-committed"))
	assert.Equal(t, 1, fdb.GetQueryCalledNumOn(0, query))
	assert.Equal(t, 1, fdb.GetQueryCalledNumOn(1, query))

	// Later enlistments get the session settings too.
	_, err = sess.Acquire(context.Background(), "backend2")
	assert.Nil(t, err)
	assert.Equal(t, 1, fdb.GetQueryCalledNumOn(2, query))

	assert.Nil(t, sess.SetReadOnly(true))
	assert.Equal(t, 3, fdb.GetQueryCalledNum("set session transaction read only"))
	assert.Nil(t, sess.SetAutoCommit(true))
	assert.Equal(t, 3, fdb.GetQueryCalledNum("set autocommit=1"))

	err = sess.SetIsolation("snapshot")
	assert.Equal(t, "session.unknown.isolation.level[snapshot]", err.Error())

	// Partial failure names the backend.
	fdb.AddQueryErrorOn(2, "set autocommit=0", errors.New("mock.set.error"))
	err = sess.SetAutoCommit(false)
	serr, ok := err.(*ShardError)
	assert.True(t, ok)
	assert.Equal(t, []string{"backend2"}, serr.FailedBackends())
	assert.Equal(t, []string{"backend0", "backend1"}, serr.Succeeded)
}

func TestSessionClose(t *testing.T) {
	defer leaktest.Check(t)()
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	scatter, fdb, cleanup := MockScatter(log, 2)
	defer cleanup()

	mgr := scatter.TxnManager()
	sess, err := scatter.CreateSession()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), mgr.Sessions())
	assert.Equal(t, 1, len(mgr.Txnz().GetTxnzRows()))

	c0, err := sess.Acquire(context.Background(), "backend0")
	assert.Nil(t, err)
	rows := mgr.Txnz().GetTxnzRows()
	assert.Equal(t, []string{"backend0"}, rows[0].Backends)
	assert.Equal(t, "active", rows[0].State)

	// Open transaction connections are closed, not pooled.
	assert.Nil(t, sess.Close())
	assert.True(t, c0.Closed())
	assert.Equal(t, 0, fdb.GetQueryCalledNum("rollback"))
	source, _ := scatter.Source("backend0")
	assert.Equal(t, 0, source.(*Pool).Stats().Idle)
	assert.Equal(t, int64(0), source.(*Pool).Stats().InUse)

	assert.Equal(t, int64(0), mgr.Sessions())
	assert.Empty(t, mgr.Txnz().GetTxnzRows())
	assert.Equal(t, "closed", sess.State())

	// Closed session.
	assert.Nil(t, sess.Close())
	_, err = sess.Acquire(context.Background(), "backend0")
	assert.NotNil(t, err)
	assert.NotNil(t, sess.Commit())
	assert.NotNil(t, sess.SetReadOnly(true))
}

func TestSessionRecycle(t *testing.T) {
	defer leaktest.Check(t)()
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	scatter, _, cleanup := MockScatter(log, 1)
	defer cleanup()

	sess, err := scatter.CreateSession()
	assert.Nil(t, err)
	defer sess.Close()

	_, err = sess.Acquire(context.Background(), "backend0")
	assert.Nil(t, err)
	assert.Nil(t, sess.Commit())
	source, _ := scatter.Source("backend0")
	assert.Equal(t, 1, source.(*Pool).Stats().Idle)

	// A session isolation level is not leaked to the pool.
	assert.Nil(t, sess.SetIsolation("serializable"))
	_, err = sess.Acquire(context.Background(), "backend0")
	assert.Nil(t, err)
	assert.Nil(t, sess.Commit())
	assert.Equal(t, 0, source.(*Pool).Stats().Idle)
}

func TestSessionRecycleAutoCommit(t *testing.T) {
	defer leaktest.Check(t)()
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	scatter, fdb, cleanup := MockScatter(log, 1)
	defer cleanup()
	fdb.AddQuery("select 1", &sqltypes.Result{})

	sess, err := scatter.CreateSession()
	assert.Nil(t, err)
	defer sess.Close()

	// Commit resets autocommit before the connection is pooled.
	c0, err := sess.Acquire(context.Background(), "backend0")
	assert.Nil(t, err)
	assert.Equal(t, 1, fdb.GetQueryCalledNum("set autocommit=0"))
	assert.Nil(t, sess.Commit())
	assert.Equal(t, 1, fdb.GetQueryCalledNum("set autocommit=1"))
	source, _ := scatter.Source("backend0")
	assert.Equal(t, 1, source.(*Pool).Stats().Idle)

	// A stateless user reuses the reset connection.
	conn, err := source.Get(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, c0.ID(), conn.ID())
	_, err = conn.Execute("select 1")
	assert.Nil(t, err)
	conn.Recycle()
	assert.Equal(t, 1, source.(*Pool).Stats().Idle)

	// A failed reset drops the connection.
	fdb.AddQueryError("set autocommit=1", errors.New("mock.reset.error"))
	c1, err := sess.Acquire(context.Background(), "backend0")
	assert.Nil(t, err)
	assert.Nil(t, sess.Rollback())
	assert.True(t, c1.Closed())
	assert.Equal(t, 0, source.(*Pool).Stats().Idle)
}

func TestSessionAcquireTimeout(t *testing.T) {
	defer leaktest.Check(t)()
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	scatter, fdb, cleanup := MockScatter(log, 1)
	defer cleanup()

	conf := MockBackendConfigDefault("slow", fdb.Addrs()[0])
	conf.MaxConnections = 1
	conf.AcquireTimeout = 50
	assert.Nil(t, scatter.Add(conf))

	s1, err := scatter.CreateSession()
	assert.Nil(t, err)
	defer s1.Close()
	s2, err := scatter.CreateSession()
	assert.Nil(t, err)
	defer s2.Close()

	_, err = s1.Acquire(context.Background(), "slow")
	assert.Nil(t, err)
	_, err = s2.Acquire(context.Background(), "slow")
	assert.NotNil(t, err)
	assert.Equal(t, context.DeadlineExceeded, errors.Cause(err))
	assert.True(t, strings.Contains(err.Error(), "acquire.backend[slow]"))

	// Settings failure gives the connection back.
	assert.Nil(t, s1.Rollback())
	fdb.AddQueryErrorOn(0, "set autocommit=0", errors.New("mock.set.error"))
	_, err = s2.Acquire(context.Background(), "slow")
	assert.NotNil(t, err)
	assert.Empty(t, s2.Backends())
	source, _ := scatter.Source("slow")
	assert.Equal(t, int64(0), source.(*Pool).Stats().InUse)
}

func TestSessionReadOnlySource(t *testing.T) {
	defer leaktest.Check(t)()
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	scatter, fdb, cleanup := MockScatter(log, 1)
	defer cleanup()

	conf := MockBackendConfigDefault("replica", fdb.Addrs()[0])
	conf.ReadOnly = true
	assert.Nil(t, scatter.Add(conf))

	sess, err := scatter.CreateSession()
	assert.Nil(t, err)
	defer sess.Close()

	_, err = sess.Acquire(context.Background(), "replica")
	assert.Nil(t, err)
	assert.Empty(t, sess.Backends())
	assert.Equal(t, 0, fdb.GetQueryCalledNum("set autocommit=0"))

	// Released at the transaction end.
	assert.Nil(t, sess.Commit())
	source, _ := scatter.Source("replica")
	assert.Equal(t, 1, source.(*Pool).Stats().Idle)
}
