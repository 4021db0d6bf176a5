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
	"database/sql"
	"database/sql/driver"
	"time"

	"github.com/radondb/shardkit/config"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	querypb "github.com/xelabs/go-mysqlstack/sqlparser/depends/query"
	"github.com/xelabs/go-mysqlstack/sqlparser/depends/sqltypes"
	"github.com/xelabs/go-mysqlstack/xlog"
	"go.uber.org/atomic"
)

var _ Source = &DBSource{}

// DBSource is a connection source over database/sql and go-sql-driver/mysql.
type DBSource struct {
	log  *xlog.Log
	conf *config.BackendConfig
	db   *sql.DB
	ids  atomic.Uint32
}

// DSN returns the go-sql-driver/mysql data source name of the backend.
func DSN(conf *config.BackendConfig) string {
	mc := mysql.NewConfig()
	mc.User = conf.User
	mc.Passwd = conf.Password
	mc.Net = "tcp"
	mc.Addr = conf.Address
	mc.DBName = conf.DBName
	if conf.Charset != "" {
		mc.Params = map[string]string{"charset": conf.Charset}
	}
	if conf.AcquireTimeout > 0 {
		mc.Timeout = time.Duration(conf.AcquireTimeout) * time.Millisecond
	}
	return mc.FormatDSN()
}

// NewDBSource creates the source, no connection is made until Get.
func NewDBSource(log *xlog.Log, conf *config.BackendConfig) (*DBSource, error) {
	db, err := sql.Open("mysql", DSN(conf))
	if err != nil {
		return nil, errors.Wrapf(err, "dbsource[%s].open", conf.Name)
	}
	max := conf.MaxConnections
	if max <= 0 {
		max = defaultMaxConnections
	}
	db.SetMaxOpenConns(max)
	db.SetMaxIdleConns(max)
	db.SetConnMaxIdleTime(time.Duration(maxIdleTime) * time.Second)
	return &DBSource{log: log, conf: conf, db: db}, nil
}

// Name returns the backend name.
func (s *DBSource) Name() string {
	return s.conf.Name
}

// Writable returns false for read-only backends.
func (s *DBSource) Writable() bool {
	return !s.conf.ReadOnly
}

// Config returns the backend config.
func (s *DBSource) Config() *config.BackendConfig {
	return s.conf
}

// Get reserves one database/sql connection.
func (s *DBSource) Get(ctx context.Context) (Connection, error) {
	if s.conf.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.conf.AcquireTimeout)*time.Millisecond)
		defer cancel()
	}
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "dbsource[%s].acquire", s.conf.Name)
	}
	return &sqlConnection{source: s, conn: conn, id: s.ids.Inc()}, nil
}

// JSON returns the database/sql stats.
func (s *DBSource) JSON() string {
	st := s.db.Stats()
	stats := &PoolStats{
		Name:     s.conf.Name,
		Address:  s.conf.Address,
		Driver:   config.DriverSQL,
		Capacity: st.MaxOpenConnections,
		Idle:     st.Idle,
		InUse:    int64(st.InUse),
	}
	return toJSON(stats)
}

// Close closes the database/sql pool.
func (s *DBSource) Close() {
	if err := s.db.Close(); err != nil {
		s.log.Error("dbsource[%s].close.error:%+v", s.conf.Name, err)
	}
}

type sqlConnection struct {
	source *DBSource
	conn   *sql.Conn
	id     uint32
	closed atomic.Bool
}

func (c *sqlConnection) ID() uint32 {
	return c.id
}

func (c *sqlConnection) Backend() string {
	return c.source.conf.Name
}

// Execute runs the query, every value is returned as VARBINARY.
func (c *sqlConnection) Execute(query string) (*sqltypes.Result, error) {
	if c.closed.Load() {
		return nil, errors.WithMessagef(errConnClosed, "dbsource[%s].execute", c.Backend())
	}
	rows, err := c.conn.QueryContext(context.Background(), query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	qr := &sqltypes.Result{}
	for _, name := range columns {
		qr.Fields = append(qr.Fields, &querypb.Field{Name: name, Type: sqltypes.VarBinary})
	}
	raws := make([]sql.RawBytes, len(columns))
	dest := make([]interface{}, len(columns))
	for i := range raws {
		dest[i] = &raws[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make([]sqltypes.Value, len(columns))
		for i, raw := range raws {
			if raw == nil {
				row[i] = sqltypes.NULL
				continue
			}
			row[i] = sqltypes.MakeTrusted(sqltypes.VarBinary, append([]byte(nil), raw...))
		}
		qr.Rows = append(qr.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	qr.RowsAffected = uint64(len(qr.Rows))
	return qr, nil
}

// Recycle hands the connection back to database/sql.
func (c *sqlConnection) Recycle() {
	if c.closed.CompareAndSwap(false, true) {
		c.conn.Close()
	}
}

// Discard makes database/sql drop the connection instead of pooling it.
func (c *sqlConnection) Discard() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	// A driver.ErrBadConn from Raw closes the sql.Conn and drops it.
	err := c.conn.Raw(func(interface{}) error {
		return driver.ErrBadConn
	})
	if err != nil && err != driver.ErrBadConn {
		return err
	}
	return nil
}

func (c *sqlConnection) Closed() bool {
	return c.closed.Load()
}
