/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/radondb/shardkit/build"
	"github.com/radondb/shardkit/config"
	"github.com/radondb/shardkit/ctl"
	"github.com/radondb/shardkit/proxy"

	"github.com/xelabs/go-mysqlstack/xlog"
)

var (
	flagConf   string
	fcpu       *os.File
	pprofCPUOn = flag.Bool("pcpu", false, "is cpu prof enable, default false")
)

func init() {
	flag.StringVar(&flagConf, "c", "", "shardd config file")
	flag.StringVar(&flagConf, "config", "", "shardd config file")
}

func usage() {
	fmt.Println("Usage: " + os.Args[0] + " [-c|--config] <shardd-config-file>")
}

func startPprof() {
	nowStr := time.Now().Format(time.RFC3339)
	if *pprofCPUOn {
		cpuFile := "pprof_cpu_" + nowStr
		f, err := os.Create(cpuFile)
		if err != nil {
			fmt.Println("start pprof cpu failed", err)
			os.Exit(1)
		}
		fcpu = f
		pprof.StartCPUProfile(fcpu)
		fmt.Println("[pprof cpu]:\t" + cpuFile)
	}
}

func stopPprof() {
	if *pprofCPUOn {
		pprof.StopCPUProfile()
		fcpu.Close()
	}
}

func main() {
	log := xlog.NewStdLog(xlog.Level(xlog.DEBUG))

	build := build.GetInfo()
	fmt.Printf("shardd:[%+v]\n", build)

	// config
	flag.Usage = func() { usage() }
	flag.Parse()
	if flagConf == "" {
		usage()
		os.Exit(0)
	}

	conf, err := config.LoadConfig(flagConf)
	if err != nil {
		log.Panic("shardd.load.config.error[%v]", err)
	}
	log.SetLevel(conf.Log.Level)

	// pprof
	startPprof()
	defer stopPprof()

	// Proxy, metrics are served by the proxy.
	proxy := proxy.NewProxy(log, flagConf, conf)
	if err := proxy.Start(); err != nil {
		log.Panic("shardd.proxy.start.error[%+v]", err)
	}

	// Admin portal.
	admin := ctl.NewAdmin(log, proxy)
	if err := admin.Start(); err != nil {
		log.Panic("shardd.admin.start.error[%+v]", err)
	}

	// Handle SIGINT and SIGTERM.
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	log.Info("shardd.signal:%+v", <-ch)

	// Stop the proxy and httpserver.
	admin.Stop()
	proxy.Stop()
}
