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

	"github.com/radondb/shardkit/config"
	"github.com/xelabs/go-mysqlstack/xlog"
)

// Source hands out physical connections to one backend.
type Source interface {
	Name() string
	// Writable is false for read replicas, their connections are
	// never enlisted in a transaction.
	Writable() bool
	Get(ctx context.Context) (Connection, error)
	Config() *config.BackendConfig
	JSON() string
	Close()
}

// NewSource creates the source of the backend by its driver.
func NewSource(log *xlog.Log, conf *config.BackendConfig) (Source, error) {
	switch conf.Driver {
	case config.DriverSQL:
		return NewDBSource(log, conf)
	default:
		return NewPool(log, conf), nil
	}
}
