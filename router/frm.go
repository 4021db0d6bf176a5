/*
 * Radon
 *
 * Copyright 2018-2019 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package router

import (
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"strings"

	"github.com/radondb/shardkit/config"

	"github.com/pkg/errors"
)

const (
	// NameCharLen is the max length of a database or table name.
	NameCharLen = 64
	// TableNameSuffix is the length of a partition table suffix like "_0032".
	TableNameSuffix = 5
)

// writeTableFrmData used to write table's json schema to file.
// The file name is : [meta-dir]/[database]/[table].json.
func (r *Router) writeTableFrmData(db string, table string, tconf *config.TableConfig) error {
	log := r.log
	if tconf == nil {
		return errors.New("table.config.can't.be.nil")
	}

	log.Info("frm.write.data[db:%s, table:%s, shardType:%s]", db, table, tconf.ShardType)
	file := path.Join(r.metadir, db, fmt.Sprintf("%s.json", table))
	if err := config.WriteConfig(file, tconf); err != nil {
		log.Error("frm.write.to.file[%v].error:%v", file, err)
		return err
	}
	return nil
}

// removeTableFrmData used to remove table json file.
func (r *Router) removeTableFrmData(db string, table string) error {
	file := path.Join(r.metadir, db, fmt.Sprintf("%s.json", table))
	r.log.Warning("frm.remove.file[%v].for.[db:%s, table:%s]", file, db, table)
	return os.Remove(file)
}

// readTableFrmData used to read json file to TableConfig.
func (r *Router) readTableFrmData(file string) (*config.TableConfig, error) {
	log := r.log
	data, err := ioutil.ReadFile(file)
	if err != nil {
		log.Error("frm.read.from.file[%v].error:%v", file, err)
		return nil, errors.WithStack(err)
	}
	conf, err := config.ReadTableConfig(string(data))
	if err != nil {
		log.Error("frm.read.parse.json.file[%v].error:%v", file, err)
		return nil, err
	}
	return conf, nil
}

// loadTableFromFile used to add a table read from the json file.
func (r *Router) loadTableFromFile(db, file string) error {
	log := r.log
	log.Info("frm.load.table.from.file:%v", file)

	conf, err := r.readTableFrmData(file)
	if err != nil {
		return err
	}
	if err := r.addTable(db, conf); err != nil {
		log.Error("frm.load.table.add.router[%v].error:%+v", file, err)
		return err
	}
	return nil
}

// CreateDatabase adds a database and creates its meta dir.
func (r *Router) CreateDatabase(db string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.log
	if len(db) > NameCharLen {
		return errors.Errorf("frm.database.name[%s].too.long.max[%d]", db, NameCharLen)
	}
	if checkNameInvalid(db) {
		return errors.Errorf("invalid.database.name.currently.not.support.dbname[%v].contains.with.char:'/' or space ' '", db)
	}
	if err := r.addDatabase(db); err != nil {
		log.Error("frm.create.addDatabase.error:%v", err)
		return err
	}
	dir := path.Join(r.metadir, db)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		log.Error("frm.write.mkdir[%v].error:%v", dir, err)
		r.dropDatabase(db)
		return errors.WithStack(err)
	}
	return nil
}

// DropDatabase used to remove a database and all its table files.
func (r *Router) DropDatabase(db string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.dropDatabase(db); err != nil {
		return err
	}
	dir := path.Join(r.metadir, db)
	r.log.Info("frm.drop.database.file[%v]", dir)
	if err := os.RemoveAll(dir); err != nil {
		r.log.Error("frm.drop.database[%v].error:%v", dir, err)
		return errors.WithStack(err)
	}
	return nil
}

// checkNameInvalid used to check if db or table name contains invalid char '/' or ' '.
func checkNameInvalid(name string) bool {
	return strings.ContainsAny(name, " /")
}

// CreateTable adds the table router and flushes its config to disk.
func (r *Router) CreateTable(db string, tableConf *config.TableConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.log
	table := tableConf.Name
	if (len(table) + TableNameSuffix) > NameCharLen {
		return errors.Errorf("frm.table.name[%s].too.long.max[%d]", table, NameCharLen-TableNameSuffix)
	}
	if checkNameInvalid(table) {
		return errors.Errorf("invalid.table.name.currently.not.support.tablename[%v].contains.with.char:'/' or space ' '", table)
	}

	if err := r.addTable(db, tableConf); err != nil {
		log.Error("frm.create.add.route.error:%v", err)
		return err
	}
	if err := r.writeTableFrmData(db, table, tableConf); err != nil {
		r.removeTable(db, table)
		log.Error("frm.create.table[db:%v, table:%v].file.error:%+v", db, table, err)
		return err
	}
	return nil
}

// DropTable used to remove a table from router and remove the schema file from disk.
func (r *Router) DropTable(db, table string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.log
	if err := r.removeTable(db, table); err != nil {
		log.Error("frm.drop.table[%s.%s].remove.route.error:%v", db, table, err)
		return err
	}
	if err := r.removeTableFrmData(db, table); err != nil {
		log.Error("frm.drop.table[%s.%s].remove.frmdata.error:%v", db, table, err)
		return errors.WithStack(err)
	}
	return nil
}

// RefreshTable used to re-load the table from file.
func (r *Router) RefreshTable(db, table string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.log
	if err := r.removeTable(db, table); err != nil {
		log.Error("frm.refresh.table[%s.%s].remove.route.error:%v", db, table, err)
		return err
	}
	file := path.Join(r.metadir, db, fmt.Sprintf("%s.json", table))
	if err := r.loadTableFromFile(db, file); err != nil {
		log.Error("frm.refresh.table[%s.%s].load.table.error:%v", db, table, err)
		return err
	}
	return nil
}

// LoadConfig used to load all table configs stored in metadir,
// every sub dir is a database.
func (r *Router) LoadConfig() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.log
	r.clear()

	if _, err := os.Stat(r.metadir); os.IsNotExist(err) {
		if x := os.MkdirAll(r.metadir, os.ModePerm); x != nil {
			log.Error("router.load.create.dir[%v].error:%v", r.metadir, x)
			return errors.WithStack(x)
		}
		return nil
	}

	frms := make(map[string][]string)
	files, err := ioutil.ReadDir(r.metadir)
	if err != nil {
		log.Error("router.load.readdir[%v].error:%v", r.metadir, err)
		return errors.WithStack(err)
	}
	for _, f := range files {
		if !f.IsDir() {
			continue
		}
		dbName := f.Name()
		subdir := path.Join(r.metadir, dbName)
		subFiles, err := ioutil.ReadDir(subdir)
		if err != nil {
			log.Error("router.load.readsubdir[%v].error:%v", subdir, err)
			return errors.WithStack(err)
		}
		jsons := []string{}
		for _, subFile := range subFiles {
			if !subFile.IsDir() && strings.HasSuffix(subFile.Name(), ".json") {
				jsons = append(jsons, path.Join(subdir, subFile.Name()))
			}
		}
		frms[dbName] = jsons
		if err := r.addDatabase(dbName); err != nil {
			return err
		}
	}

	for db, files := range frms {
		for _, file := range files {
			if err := r.loadTableFromFile(db, file); err != nil {
				log.Error("router.load.table.from.file[%v].error:%+v", file, err)
				return err
			}
		}
	}
	return nil
}

// AddForTest used to add table configs without touching disk.
func (r *Router) AddForTest(db string, confs ...*config.TableConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.Schemas[db]; !ok {
		if err := r.addDatabase(db); err != nil {
			return err
		}
	}
	for _, conf := range confs {
		if err := r.addTable(db, conf); err != nil {
			r.log.Error("frm.for.test.addroute.error:%v", err)
			return err
		}
	}
	return nil
}
