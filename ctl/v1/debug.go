/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package v1

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/radondb/shardkit/proxy"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/xelabs/go-mysqlstack/xlog"
)

// TxnzHandler impl.
func TxnzHandler(log *xlog.Log, proxy *proxy.Proxy) rest.HandlerFunc {
	f := func(w rest.ResponseWriter, r *rest.Request) {
		txnzHandler(log, proxy, w, r)
	}
	return f
}

func txnzHandler(log *xlog.Log, proxy *proxy.Proxy, w rest.ResponseWriter, r *rest.Request) {
	type txn struct {
		SessionID uint64        `json:"session-id"`
		XID       string        `json:"xid"`
		Start     time.Time     `json:"start"`
		Duration  time.Duration `json:"duration"`
		State     string        `json:"state"`
		Backends  []string      `json:"backends"`
		Color     string        `json:"color"`
	}

	limit := 100
	if v, err := strconv.Atoi(r.PathParam("limit")); err == nil {
		limit = v
	}

	rsp := []txn{}
	rows := proxy.Scatter().TxnManager().Txnz().GetTxnzRows()
	for i, row := range rows {
		if i >= limit {
			break
		}
		rsp = append(rsp, txn{
			SessionID: row.SessionID,
			XID:       row.XID,
			Start:     row.Start,
			Duration:  row.Duration,
			State:     row.State,
			Backends:  row.Backends,
			Color:     row.Color,
		})
	}
	w.WriteJson(rsp)
}

// BackendzHandler impl.
func BackendzHandler(log *xlog.Log, proxy *proxy.Proxy) rest.HandlerFunc {
	f := func(w rest.ResponseWriter, r *rest.Request) {
		backendzHandler(log, proxy, w, r)
	}
	return f
}

func backendzHandler(log *xlog.Log, proxy *proxy.Proxy, w rest.ResponseWriter, r *rest.Request) {
	stats := []json.RawMessage{}
	for _, js := range proxy.Scatter().BackendsJSON() {
		stats = append(stats, json.RawMessage(js))
	}
	w.WriteJson(stats)
}

// ConfigzHandler impl.
func ConfigzHandler(log *xlog.Log, proxy *proxy.Proxy) rest.HandlerFunc {
	f := func(w rest.ResponseWriter, r *rest.Request) {
		configzHandler(log, proxy, w, r)
	}
	return f
}

func configzHandler(log *xlog.Log, proxy *proxy.Proxy, w rest.ResponseWriter, r *rest.Request) {
	w.WriteJson(proxy.Config())
}
