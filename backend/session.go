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
	"strings"
	"sync"
	"time"

	"github.com/radondb/shardkit/config"
	"github.com/radondb/shardkit/monitor"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/xelabs/go-mysqlstack/xlog"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

type sessionState int32

const (
	sessionStateIdle sessionState = iota
	sessionStateActive
	sessionStateCommitting
	sessionStateRollingBack
	sessionStateClosed
)

var sessionStates = map[sessionState]string{
	sessionStateIdle:        "idle",
	sessionStateActive:      "active",
	sessionStateCommitting:  "committing",
	sessionStateRollingBack: "rollingback",
	sessionStateClosed:      "closed",
}

func (s sessionState) String() string {
	if name, ok := sessionStates[s]; ok {
		return name
	}
	return "unknown"
}

const (
	opCommit      = "commit"
	opRollback    = "rollback"
	opClose       = "close"
	opIsolation   = "set.isolation"
	opReadOnly    = "set.read.only"
	opAutoCommit  = "set.autocommit"
	opAcquire     = "acquire"
	queryCommit   = "COMMIT"
	queryRollback = "ROLLBACK"
)

// normalizeIsolation accepts both 'READ-COMMITTED' and 'read committed'.
func normalizeIsolation(level string) (string, error) {
	l := strings.ToUpper(strings.TrimSpace(strings.Replace(level, "-", " ", -1)))
	switch l {
	case "", "READ UNCOMMITTED", "READ COMMITTED", "REPEATABLE READ", "SERIALIZABLE":
		return l, nil
	}
	return "", errors.Errorf("session.unknown.isolation.level[%s]", level)
}

func isolationQuery(level string) string {
	return fmt.Sprintf("SET SESSION TRANSACTION ISOLATION LEVEL %s", level)
}

func readOnlyQuery(readOnly bool) string {
	if readOnly {
		return "SET SESSION TRANSACTION READ ONLY"
	}
	return "SET SESSION TRANSACTION READ WRITE"
}

func autoCommitQuery(autoCommit bool) string {
	if autoCommit {
		return "SET autocommit=1"
	}
	return "SET autocommit=0"
}

// Session owns at most one connection per backend for the current
// transaction. All its operations are serialized.
type Session struct {
	log     *xlog.Log
	mu      sync.Mutex
	id      uint64
	xid     string
	mgr     *TxnManager
	sources map[string]Source
	start   time.Time
	state   atomic.Int32

	isolation  string
	readOnly   bool
	autoCommit bool
	parallel   bool

	// enlisted connections of the current transaction, in enlistment order.
	enlisted map[string]Connection
	order    []string
	// backends mirrors order for readers outside the lock.
	backends atomic.Value
	// stateless connections of read-only sources.
	stateless []Connection
}

// NewSession creates a session over the sources.
func NewSession(log *xlog.Log, id uint64, mgr *TxnManager, sources map[string]Source, conf *config.SessionConfig) (*Session, error) {
	if conf == nil {
		conf = config.DefaultSessionConfig()
	}
	isolation, err := normalizeIsolation(conf.Isolation)
	if err != nil {
		return nil, err
	}
	s := &Session{
		log:        log,
		id:         id,
		xid:        uuid.New().String(),
		mgr:        mgr,
		sources:    sources,
		start:      time.Now(),
		isolation:  isolation,
		readOnly:   conf.ReadOnly,
		autoCommit: conf.AutoCommit,
		parallel:   conf.ParallelCommit,
		enlisted:   make(map[string]Connection),
	}
	s.backends.Store([]string{})
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() uint64 {
	return s.id
}

// XID returns the unique session xid.
func (s *Session) XID() string {
	return s.xid
}

// State returns the state name.
func (s *Session) State() string {
	return sessionState(s.state.Load()).String()
}

// Backends returns the enlisted backends in enlistment order.
func (s *Session) Backends() []string {
	return s.backends.Load().([]string)
}

func (s *Session) setState(state sessionState) {
	s.state.Store(int32(state))
}

func (s *Session) checkClosed() error {
	if sessionState(s.state.Load()) == sessionStateClosed {
		return errors.Errorf("session[%d].is.closed", s.id)
	}
	return nil
}

// settingQueries are sent to every newly enlisted connection.
func (s *Session) settingQueries() []string {
	queries := make([]string, 0, 3)
	if s.isolation != "" {
		queries = append(queries, isolationQuery(s.isolation))
	}
	queries = append(queries, readOnlyQuery(s.readOnly), autoCommitQuery(s.autoCommit))
	return queries
}

// Acquire returns the connection of the backend for the current
// transaction, enlisting a new one on the first use.
func (s *Session) Acquire(ctx context.Context, backend string) (Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkClosed(); err != nil {
		return nil, err
	}
	if conn, ok := s.enlisted[backend]; ok {
		return conn, nil
	}

	source, ok := s.sources[backend]
	if !ok {
		return nil, errors.Errorf("session.can.not.get.connection.by.backend[%s]", backend)
	}
	conn, err := source.Get(ctx)
	if err != nil {
		monitor.ShardFailureInc(backend, opAcquire)
		return nil, errors.WithMessagef(err, "session[%d].acquire.backend[%s]", s.id, backend)
	}

	if !source.Writable() {
		s.stateless = append(s.stateless, conn)
		return conn, nil
	}

	for _, query := range s.settingQueries() {
		if _, err := conn.Execute(query); err != nil {
			conn.Discard()
			monitor.ShardFailureInc(backend, opAcquire)
			return nil, errors.WithMessagef(err, "session[%d].backend[%s].apply[%s]", s.id, backend, query)
		}
	}
	s.enlisted[backend] = conn
	s.order = append(s.order, backend)
	s.backends.Store(append([]string(nil), s.order...))
	s.setState(sessionStateActive)
	return conn, nil
}

// fanout runs the query on every enlisted connection, in parallel when
// parallel-commit is set, and returns the per-connection errors.
func (s *Session) fanout(query string) []error {
	errs := make([]error, len(s.order))
	run := func(i int) {
		conn := s.enlisted[s.order[i]]
		_, errs[i] = conn.Execute(query)
	}
	if s.parallel && len(s.order) > 1 {
		var g errgroup.Group
		for i := range s.order {
			i := i
			g.Go(func() error {
				run(i)
				return nil
			})
		}
		// Per backend errors are collected in errs.
		_ = g.Wait()
	} else {
		for i := range s.order {
			run(i)
		}
	}
	return errs
}

func (s *Session) collect(op string, errs []error) *ShardError {
	serr := &ShardError{Op: op}
	for i, backend := range s.order {
		if errs[i] != nil {
			s.log.Error("session[%d].%s.backend[%s].error:%+v", s.id, op, backend, errs[i])
			monitor.ShardFailureInc(backend, op)
			serr.Failed = append(serr.Failed, ShardFailure{Backend: backend, Err: errs[i]})
			continue
		}
		serr.Succeeded = append(serr.Succeeded, backend)
	}
	if len(serr.Failed) == 0 {
		return nil
	}
	return serr
}

// propagate applies a setting query to every enlisted connection.
func (s *Session) propagate(op string, query string) error {
	errs := s.fanout(query)
	if serr := s.collect(op, errs); serr != nil {
		return serr
	}
	return nil
}

// SetIsolation changes the isolation level of the session and of
// every connection already enlisted.
func (s *Session) SetIsolation(level string) error {
	l, err := normalizeIsolation(level)
	if err != nil {
		return err
	}
	if l == "" {
		return errors.New("session.isolation.level.can.not.be.empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkClosed(); err != nil {
		return err
	}
	s.isolation = l
	return s.propagate(opIsolation, isolationQuery(l))
}

// SetReadOnly changes the read-only flag of the session and of
// every connection already enlisted.
func (s *Session) SetReadOnly(readOnly bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkClosed(); err != nil {
		return err
	}
	s.readOnly = readOnly
	return s.propagate(opReadOnly, readOnlyQuery(readOnly))
}

// SetAutoCommit changes autocommit of the session and of
// every connection already enlisted.
func (s *Session) SetAutoCommit(autoCommit bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkClosed(); err != nil {
		return err
	}
	s.autoCommit = autoCommit
	return s.propagate(opAutoCommit, autoCommitQuery(autoCommit))
}

// Commit commits on every enlisted backend and ends the transaction.
func (s *Session) Commit() error {
	return s.finish(opCommit, queryCommit, sessionStateCommitting)
}

// Rollback rolls back on every enlisted backend and ends the transaction.
func (s *Session) Rollback() error {
	return s.finish(opRollback, queryRollback, sessionStateRollingBack)
}

func (s *Session) finish(op string, query string, state sessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkClosed(); err != nil {
		return err
	}
	s.setState(state)
	defer s.setState(sessionStateIdle)

	errs := s.fanout(query)
	serr := s.collect(op, errs)
	for i, backend := range s.order {
		conn := s.enlisted[backend]
		if errs[i] != nil {
			conn.Discard()
			continue
		}
		s.release(conn)
	}
	s.reset()

	if serr != nil {
		monitor.TxnTotalCounterInc(op, "error")
		return serr
	}
	monitor.TxnTotalCounterInc(op, "ok")
	return nil
}

// release gives a healthy connection back. Pooled connections are in
// autocommit mode, so a stateless user never opens an implicit transaction
// on them. Connections that carry a session isolation level or read-only
// mode are dropped so the pool stays on the server defaults.
func (s *Session) release(conn Connection) {
	if s.isolation != "" || s.readOnly {
		conn.Discard()
		return
	}
	if !s.autoCommit {
		if _, err := conn.Execute(autoCommitQuery(true)); err != nil {
			s.log.Warning("session[%d].backend[%s].reset.autocommit.error:%v", s.id, conn.Backend(), err)
			conn.Discard()
			return
		}
	}
	conn.Recycle()
}

// reset empties the registry, the caller holds the lock.
func (s *Session) reset() {
	for _, conn := range s.stateless {
		conn.Recycle()
	}
	s.stateless = nil
	s.enlisted = make(map[string]Connection)
	s.order = nil
	s.backends.Store([]string{})
}

// Close releases every connection, connections of an open transaction
// are closed instead of pooled. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionState(s.state.Load()) == sessionStateClosed {
		return nil
	}

	serr := &ShardError{Op: opClose}
	for _, backend := range s.order {
		if err := s.enlisted[backend].Discard(); err != nil {
			serr.Failed = append(serr.Failed, ShardFailure{Backend: backend, Err: err})
			continue
		}
		serr.Succeeded = append(serr.Succeeded, backend)
	}
	s.reset()
	s.setState(sessionStateClosed)
	if s.mgr != nil {
		s.mgr.Remove(s)
	}

	if len(serr.Failed) > 0 {
		return serr
	}
	return nil
}
