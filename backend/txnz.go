/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 * This code was derived from https://github.com/youtube/vitess.
 */

package backend

import (
	"sort"
	"sync"
	"time"
)

// Txnz holds a thread safe list of live sessions.
type Txnz struct {
	mu       sync.RWMutex
	sessions map[uint64]*Session
}

// NewTxnz creates a new Txnz.
func NewTxnz() *Txnz {
	return &Txnz{sessions: make(map[uint64]*Session)}
}

// Add adds a session to Txnz.
func (tz *Txnz) Add(s *Session) {
	tz.mu.Lock()
	defer tz.mu.Unlock()
	tz.sessions[s.ID()] = s
}

// Remove removes a session from Txnz.
func (tz *Txnz) Remove(s *Session) {
	tz.mu.Lock()
	defer tz.mu.Unlock()
	delete(tz.sessions, s.ID())
}

// TxnDetailzRow is one live session.
type TxnDetailzRow struct {
	Start     time.Time     `json:"start"`
	Duration  time.Duration `json:"duration"`
	SessionID uint64        `json:"session-id"`
	XID       string        `json:"xid"`
	State     string        `json:"state"`
	Backends  []string      `json:"backends"`
	Color     string        `json:"color"`
}

type byTxStartTime []TxnDetailzRow

func (a byTxStartTime) Len() int           { return len(a) }
func (a byTxStartTime) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byTxStartTime) Less(i, j int) bool { return a[i].Start.Before(a[j].Start) }

// GetTxnzRows returns a list of TxnDetailzRow sorted by start time.
func (tz *Txnz) GetTxnzRows() []TxnDetailzRow {
	tz.mu.RLock()
	rows := []TxnDetailzRow{}
	for _, s := range tz.sessions {
		row := TxnDetailzRow{
			Start:     s.start,
			Duration:  time.Since(s.start),
			SessionID: s.ID(),
			XID:       s.XID(),
			State:     s.State(),
			Backends:  s.Backends(),
		}
		if row.Duration < 10*time.Millisecond {
			row.Color = "low"
		} else if row.Duration < 100*time.Millisecond {
			row.Color = "medium"
		} else {
			row.Color = "high"
		}
		rows = append(rows, row)
	}
	tz.mu.RUnlock()
	sort.Sort(byTxStartTime(rows))
	return rows
}
