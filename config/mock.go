/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package config

var (
	// MockServerConfig config.
	MockServerConfig = &ServerConfig{
		MetaDir:     "/tmp/test/shardkit-meta",
		PeerAddress: "127.0.0.1:8080",
	}

	// MockSessionConfig config.
	MockSessionConfig = &SessionConfig{
		Isolation: "REPEATABLE READ",
	}

	// MockLogConfig config.
	MockLogConfig = &LogConfig{
		Level: "DEBUG",
	}

	// MockBackendsConfig config.
	MockBackendsConfig = &BackendsConfig{
		Backends: []*BackendConfig{
			{
				Name:           "backend1",
				Address:        "192.168.0.1:3306",
				User:           "mock",
				Password:       "pwd",
				DBName:         "sbtest",
				Charset:        "utf8",
				MaxConnections: 1024,
			},
			{
				Name:           "backend2",
				Address:        "192.168.0.2:3306",
				User:           "mock",
				Password:       "pwd",
				DBName:         "sbtest",
				Charset:        "utf8",
				MaxConnections: 1024,
				ReadOnly:       true,
				Driver:         DriverSQL,
				AcquireTimeout: 500,
			},
		},
	}

	// MockTableConfig config.
	MockTableConfig = &TableConfig{
		Name:      "A",
		ShardType: "HASH",
		ShardKey:  "id",
		Partitions: []*PartitionConfig{
			{
				Table:   "A1",
				Segment: "0-2048",
				Backend: "backend1",
			},
			{
				Table:   "A2",
				Segment: "2048-4096",
				Backend: "backend2",
			},
		},
	}
)
