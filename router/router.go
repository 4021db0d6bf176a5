/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package router

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/radondb/shardkit/config"

	"github.com/pkg/errors"
	"github.com/xelabs/go-mysqlstack/sqldb"
	"github.com/xelabs/go-mysqlstack/xlog"
)

// Schema tuple.
type Schema struct {
	// database name
	DB string `json:"db,omitempty"`
	// tables map, key is table name
	Tables map[string]*TableRouter `json:"tables,omitempty"`
}

// Router is the registry of table routers.
// Table routers are swapped whole, never mutated.
type Router struct {
	log     *xlog.Log
	mu      sync.RWMutex
	metadir string
	conf    *config.RouterConfig

	// schemas map, key is database name
	Schemas map[string]*Schema `json:"schemas,omitempty"`
}

// NewRouter creates the new router.
func NewRouter(log *xlog.Log, metadir string, conf *config.RouterConfig) *Router {
	return &Router{
		log:     log,
		metadir: metadir,
		conf:    conf,
		Schemas: make(map[string]*Schema),
	}
}

// Config returns the router config.
func (r *Router) Config() *config.RouterConfig {
	return r.conf
}

// addTable -- used to add a table router to schema map.
func (r *Router) addTable(db string, tbl *config.TableConfig) error {
	if err := r.checkDatabase(db); err != nil {
		return err
	}
	if tbl == nil {
		return errors.New("table.config.can't.be.nil")
	}

	schema := r.Schemas[db]
	if _, ok := schema.Tables[tbl.Name]; ok {
		return errors.Errorf("router.add.db[%v].table[%v].exists", db, tbl.Name)
	}
	tr, err := NewTableRouter(r.log, db, tbl, r.conf)
	if err != nil {
		return err
	}
	schema.Tables[tbl.Name] = tr
	return nil
}

// removeTable -- used to remove a table router from schema map.
func (r *Router) removeTable(db string, table string) error {
	schema, ok := r.Schemas[db]
	if !ok {
		return errors.Errorf("router.can.not.find.db[%v]", db)
	}
	if _, ok = schema.Tables[table]; !ok {
		return errors.Errorf("router.can.not.find.table[%v]", table)
	}
	delete(schema.Tables, table)
	return nil
}

func (r *Router) addDatabase(db string) error {
	if db == "" {
		return errors.Errorf("router.database.should.not.be.empty")
	}
	if _, ok := r.Schemas[db]; !ok {
		r.Schemas[db] = &Schema{DB: db, Tables: make(map[string]*TableRouter)}
		return nil
	}
	return errors.Errorf("router.database.exists")
}

func (r *Router) dropDatabase(db string) error {
	if _, ok := r.Schemas[db]; !ok {
		return errors.Errorf("router.can.not.find.db[%v]", db)
	}
	delete(r.Schemas, db)
	return nil
}

// checkDatabase is used to check the database exists or not without lock.
func (r *Router) checkDatabase(db string) error {
	if db == "" {
		return sqldb.NewSQLError(sqldb.ER_NO_DB_ERROR)
	}
	if _, ok := r.Schemas[db]; !ok {
		return sqldb.NewSQLError(sqldb.ER_BAD_DB_ERROR, db)
	}
	return nil
}

// clear used to reset Schemas to new.
func (r *Router) clear() {
	r.Schemas = make(map[string]*Schema)
}

// TableRouter returns the router of the table.
func (r *Router) TableRouter(database string, tableName string) (*TableRouter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if database == "" {
		return nil, sqldb.NewSQLError(sqldb.ER_NO_DB_ERROR)
	}
	if tableName == "" {
		return nil, sqldb.NewSQLError(sqldb.ER_NO_SUCH_TABLE, tableName)
	}

	schema, ok := r.Schemas[database]
	if !ok {
		r.log.Error("router.can.not.find.db[%v]", database)
		return nil, sqldb.NewSQLError(sqldb.ER_BAD_DB_ERROR, database)
	}
	tr, ok := schema.Tables[tableName]
	if !ok {
		r.log.Error("router.can.not.find.table[%v]", tableName)
		return nil, sqldb.NewSQLError(sqldb.ER_NO_SUCH_TABLE, database+"."+tableName)
	}
	return tr, nil
}

// TableConfig returns the config by database and tableName.
func (r *Router) TableConfig(database string, tableName string) (*config.TableConfig, error) {
	tr, err := r.TableRouter(database, tableName)
	if err != nil {
		return nil, err
	}
	return tr.Config(), nil
}

// Tables returns all the tables, sorted.
func (r *Router) Tables() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make(map[string][]string)
	for _, schema := range r.Schemas {
		tables := make([]string, 0, 16)
		for name := range schema.Tables {
			tables = append(tables, name)
		}
		sort.Strings(tables)
		list[schema.DB] = tables
	}
	return list
}

// Rules returns all table routers sorted by id.
func (r *Router) Rules() []*TableRouter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules := make([]*TableRouter, 0, 16)
	for _, schema := range r.Schemas {
		for _, tr := range schema.Tables {
			rules = append(rules, tr)
		}
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules
}

// JSON returns the info of router.
func (r *Router) JSON() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bout, err := json.MarshalIndent(r, "", "\t")
	if err != nil {
		return err.Error()
	}
	return string(bout)
}

// TablesOnBackend returns the ids of the tables with a partition on the backend, sorted.
func (r *Router) TablesOnBackend(backend string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, 8)
	for _, schema := range r.Schemas {
		for _, tr := range schema.Tables {
			for _, node := range tr.Partition {
				if node.Backend == backend {
					ids = append(ids, tr.ID)
					break
				}
			}
		}
	}
	sort.Strings(ids)
	return ids
}
