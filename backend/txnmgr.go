/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package backend

import (
	"github.com/radondb/shardkit/config"
	"github.com/radondb/shardkit/monitor"

	"github.com/pkg/errors"
	"github.com/xelabs/go-mysqlstack/xlog"
	"go.uber.org/atomic"
)

// TxnManager creates the sessions and tracks the live ones.
type TxnManager struct {
	log      *xlog.Log
	conf     *config.SessionConfig
	txnid    atomic.Uint64
	sessions atomic.Int64
	txnz     *Txnz
}

// NewTxnManager creates new TxnManager.
func NewTxnManager(log *xlog.Log, conf *config.SessionConfig) *TxnManager {
	if conf == nil {
		conf = config.DefaultSessionConfig()
	}
	return &TxnManager{
		log:  log,
		conf: conf,
		txnz: NewTxnz(),
	}
}

// GetID returns a new session id.
func (mgr *TxnManager) GetID() uint64 {
	return mgr.txnid.Inc()
}

// CreateSession creates a new session over the sources.
func (mgr *TxnManager) CreateSession(sources map[string]Source) (*Session, error) {
	if len(sources) == 0 {
		return nil, errors.New("backends.is.NULL")
	}
	s, err := NewSession(mgr.log, mgr.GetID(), mgr, sources, mgr.conf)
	if err != nil {
		return nil, err
	}
	mgr.sessions.Inc()
	mgr.txnz.Add(s)
	monitor.SessionInc()
	return s, nil
}

// Remove used to remove a session from mgr.
func (mgr *TxnManager) Remove(s *Session) {
	mgr.sessions.Dec()
	mgr.txnz.Remove(s)
	monitor.SessionDec()
}

// Sessions returns the number of live sessions.
func (mgr *TxnManager) Sessions() int64 {
	return mgr.sessions.Load()
}

// Txnz returns the live session registry.
func (mgr *TxnManager) Txnz() *Txnz {
	return mgr.txnz
}
