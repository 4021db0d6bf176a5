/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package config

import (
	"encoding/json"
	"io/ioutil"
	"strings"

	"github.com/radondb/shardkit/xbase"

	"github.com/pkg/errors"
)

// ServerConfig tuple.
type ServerConfig struct {
	MetaDir     string `json:"meta-dir"`
	PeerAddress string `json:"peer-address,omitempty"`
}

// DefaultServerConfig returns default server config.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		MetaDir:     "./shardkit-meta",
		PeerAddress: "127.0.0.1:8080",
	}
}

// UnmarshalJSON interface on ServerConfig.
func (c *ServerConfig) UnmarshalJSON(b []byte) error {
	type confAlias *ServerConfig
	conf := confAlias(DefaultServerConfig())
	if err := json.Unmarshal(b, conf); err != nil {
		return err
	}
	*c = ServerConfig(*conf)
	return nil
}

// SessionConfig tuple.
type SessionConfig struct {
	// Isolation level applied to every connection a session enlists,
	// empty means the backend default.
	Isolation string `json:"isolation"`
	ReadOnly  bool   `json:"read-only"`
	// AutoCommit is false by default, a session is a transaction.
	AutoCommit bool `json:"autocommit"`
	// ParallelCommit fans commit/rollback out concurrently.
	ParallelCommit bool `json:"parallel-commit"`
}

// DefaultSessionConfig returns default session config.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{}
}

// UnmarshalJSON interface on SessionConfig.
func (c *SessionConfig) UnmarshalJSON(b []byte) error {
	type confAlias *SessionConfig
	conf := confAlias(DefaultSessionConfig())
	if err := json.Unmarshal(b, conf); err != nil {
		return err
	}
	*c = SessionConfig(*conf)
	return nil
}

// MonitorConfig tuple.
type MonitorConfig struct {
	MonitorAddress string `json:"monitor-address"`
}

// DefaultMonitorConfig returns default monitor config.
func DefaultMonitorConfig() *MonitorConfig {
	return &MonitorConfig{
		MonitorAddress: "0.0.0.0:13380",
	}
}

// UnmarshalJSON interface on MonitorConfig.
func (c *MonitorConfig) UnmarshalJSON(b []byte) error {
	type confAlias *MonitorConfig
	conf := confAlias(DefaultMonitorConfig())
	if err := json.Unmarshal(b, conf); err != nil {
		return err
	}
	*c = MonitorConfig(*conf)
	return nil
}

// LogConfig tuple.
type LogConfig struct {
	Level string `json:"level"`
}

// DefaultLogConfig returns default log config.
func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		Level: "ERROR",
	}
}

// UnmarshalJSON interface on LogConfig.
func (c *LogConfig) UnmarshalJSON(b []byte) error {
	type confAlias *LogConfig
	conf := confAlias(DefaultLogConfig())
	if err := json.Unmarshal(b, conf); err != nil {
		return err
	}
	*c = LogConfig(*conf)
	return nil
}

const (
	// DriverStack is the go-mysqlstack wire driver.
	DriverStack = "mysqlstack"
	// DriverSQL is database/sql over go-sql-driver/mysql.
	DriverSQL = "database/sql"
)

// BackendConfig tuple.
type BackendConfig struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	User           string `json:"user"`
	Password       string `json:"password"`
	DBName         string `json:"database"`
	Charset        string `json:"charset"`
	MaxConnections int    `json:"max-connections"`
	// ReadOnly backends serve stateless reads and are never enlisted.
	ReadOnly bool   `json:"read-only,omitempty"`
	Driver   string `json:"driver,omitempty"`
	// AcquireTimeout in milliseconds, 0 waits on the caller context only.
	AcquireTimeout int `json:"acquire-timeout,omitempty"`
}

// BackendsConfig tuple.
type BackendsConfig struct {
	Backends []*BackendConfig `json:"backends"`
}

// PartitionConfig tuple.
type PartitionConfig struct {
	Table   string `json:"table"`
	Backend string `json:"backend"`
	Suffix  string `json:"suffix,omitempty"`

	// HASH slot range, "start-end".
	Segment string `json:"segment,omitempty"`
	// LIST values, comma separated.
	ListValue string `json:"listvalue,omitempty"`
	// RANGE bounds [min, max), empty means unbounded.
	Min string `json:"min,omitempty"`
	Max string `json:"max,omitempty"`
}

// TableConfig tuple.
type TableConfig struct {
	Name          string             `json:"name"`
	ShardType     string             `json:"shardtype"`
	ShardKey      string             `json:"shardkey,omitempty"`
	ShardKeys     []string           `json:"shardkeys,omitempty"`
	ShardKeyTypes []string           `json:"shardkey-types,omitempty"`
	Slots         int                `json:"slots-readonly,omitempty"`
	Blocks        int                `json:"blocks-readonly,omitempty"`
	Partitions    []*PartitionConfig `json:"partitions"`
}

// RuleColumns returns the ordered rule columns of the table.
func (c *TableConfig) RuleColumns() []string {
	if len(c.ShardKeys) > 0 {
		return c.ShardKeys
	}
	if c.ShardKey != "" {
		return []string{c.ShardKey}
	}
	return nil
}

// RouterConfig tuple.
type RouterConfig struct {
	Slots  int `json:"slots-readonly"`
	Blocks int `json:"blocks-readonly"`

	// OptimizeIsNull treats a NULL range bound as unconstraining,
	// when false a NULL bound makes the range empty.
	OptimizeIsNull bool `json:"optimize-is-null"`

	// PlanCacheSize is the parsed statement cache size of the planner.
	PlanCacheSize int `json:"plan-cache-size"`
}

// DefaultRouterConfig returns the default router config.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		Slots:          4096,
		Blocks:         128,
		OptimizeIsNull: true,
		PlanCacheSize:  1024,
	}
}

// UnmarshalJSON interface on RouterConfig.
func (c *RouterConfig) UnmarshalJSON(b []byte) error {
	type confAlias *RouterConfig
	conf := confAlias(DefaultRouterConfig())
	if err := json.Unmarshal(b, conf); err != nil {
		return err
	}
	*c = RouterConfig(*conf)
	return nil
}

// Config tuple.
type Config struct {
	Server  *ServerConfig  `json:"server"`
	Session *SessionConfig `json:"session"`
	Router  *RouterConfig  `json:"router"`
	Monitor *MonitorConfig `json:"monitor"`
	Log     *LogConfig     `json:"log"`
}

func checkConfig(conf *Config) {
	if conf.Server == nil {
		conf.Server = DefaultServerConfig()
	}

	if conf.Session == nil {
		conf.Session = DefaultSessionConfig()
	}

	if conf.Router == nil {
		conf.Router = DefaultRouterConfig()
	}

	if conf.Monitor == nil {
		conf.Monitor = DefaultMonitorConfig()
	}

	if conf.Log == nil {
		conf.Log = DefaultLogConfig()
	}
}

// LoadConfig used to load the config from file.
func LoadConfig(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	conf := &Config{}
	if err := json.Unmarshal([]byte(data), conf); err != nil {
		return nil, errors.WithStack(err)
	}
	checkConfig(conf)
	return conf, nil
}

// ReadTableConfig used to read the table config from the data.
func ReadTableConfig(data string) (*TableConfig, error) {
	conf := &TableConfig{}
	if err := json.Unmarshal([]byte(data), conf); err != nil {
		return nil, errors.WithStack(err)
	}
	conf.ShardType = strings.ToUpper(conf.ShardType)
	return conf, nil
}

// ReadBackendsConfig used to read the backend config from the data.
func ReadBackendsConfig(data string) (*BackendsConfig, error) {
	conf := &BackendsConfig{}
	if err := json.Unmarshal([]byte(data), conf); err != nil {
		return nil, errors.WithStack(err)
	}
	return conf, nil
}

// WriteConfig used to write the conf to file.
func WriteConfig(path string, conf interface{}) error {
	b, err := json.MarshalIndent(conf, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}
	return xbase.WriteFile(path, b)
}
