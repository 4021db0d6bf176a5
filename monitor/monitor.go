/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xelabs/go-mysqlstack/xlog"
)

var (
	webMonitorURL = "/metrics"

	sessionNum = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "session_number",
			Help: "live shard session Number",
		},
	)

	backendConnectionNum = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "connection_number_backend",
			Help: "backend connection Number",
		},
		[]string{"backend"},
	)

	routeTotalCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "route_total",
			Help: "Counter of routings.",
		},
		[]string{"command", "result"},
	)

	txnTotalCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txn_total",
			Help: "Counter of transaction ends.",
		},
		[]string{"op", "result"},
	)

	shardFailureCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shard_failure_total",
			Help: "Counter of per backend commit/rollback/setting failures.",
		},
		[]string{"backend", "op"},
	)

	backendNum = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "backend_number",
			Help: "backend Number",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(sessionNum)
	prometheus.MustRegister(backendConnectionNum)
	prometheus.MustRegister(routeTotalCounter)
	prometheus.MustRegister(txnTotalCounter)
	prometheus.MustRegister(shardFailureCounter)
	prometheus.MustRegister(backendNum)
}

// Start serves the metrics on addr(host:port), the server is returned for Stop.
func Start(log *xlog.Log, addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(webMonitorURL, promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	log.Info("monitor.prometheus.metrics:http://%s%s", addr, webMonitorURL)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("monitor.listen[%s].error:%v", addr, err)
		}
	}()
	return srv
}

// SessionInc add 1
func SessionInc() {
	sessionNum.Inc()
}

// SessionDec dec 1
func SessionDec() {
	sessionNum.Dec()
}

// BackendConnectionInc add 1
func BackendConnectionInc(backend string) {
	backendConnectionNum.WithLabelValues(backend).Inc()
}

// BackendConnectionDec dec 1
func BackendConnectionDec(backend string) {
	backendConnectionNum.WithLabelValues(backend).Dec()
}

// RouteTotalCounterInc add 1
func RouteTotalCounterInc(command string, result string) {
	routeTotalCounter.WithLabelValues(command, result).Inc()
}

// TxnTotalCounterInc add 1
func TxnTotalCounterInc(op string, result string) {
	txnTotalCounter.WithLabelValues(op, result).Inc()
}

// ShardFailureInc add 1
func ShardFailureInc(backend string, op string) {
	shardFailureCounter.WithLabelValues(backend, op).Inc()
}

// BackendInc add 1
func BackendInc(btype string) {
	backendNum.WithLabelValues(btype).Inc()
}

// BackendDec dec 1
func BackendDec(btype string) {
	backendNum.WithLabelValues(btype).Dec()
}
