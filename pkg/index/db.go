/*
 * Copyright 2021 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package index keeps track of the events found in a set of iCalendar files.
package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/nlnwa/goical"
	log "github.com/sirupsen/logrus"
)

const (
	uidPrefix  = "uid/"
	filePrefix = "file/"
)

// ErrNotFound is returned when a key is not in the index.
var ErrNotFound = errors.New("index: not found")

// Entry describes where an event is stored.
type Entry struct {
	UID      string    `json:"uid"`
	File     string    `json:"file"`     // Absolute path of the file holding the event
	Calendar int       `json:"calendar"` // Position of the calendar within the file
	Summary  string    `json:"summary,omitempty"`
	Begin    time.Time `json:"begin,omitempty"`
}

type Db struct {
	dbDir string
	db    *badger.DB
	gc    *time.Ticker
	opts  *options
}

// Open opens or creates the index database.
func Open(opts ...Option) (*Db, error) {
	o := newOptions(opts...)
	d := &Db{opts: o}

	var bo badger.Options
	if o.inMemory {
		bo = badger.DefaultOptions("").WithInMemory(true)
	} else {
		d.dbDir = filepath.Join(o.dir, "icaldb")
		if err := os.MkdirAll(d.dbDir, 0777); err != nil {
			return nil, err
		}
		bo = badger.DefaultOptions(d.dbDir)
	}
	bo = bo.WithLogger(log.StandardLogger())

	var err error
	if d.db, err = badger.Open(bo); err != nil {
		return nil, fmt.Errorf("index: could not open database: %w", err)
	}

	if !o.inMemory && o.gcInterval > 0 {
		d.gc = time.NewTicker(o.gcInterval)
		go func() {
			for range d.gc.C {
			again:
				err := d.db.RunValueLogGC(0.7)
				if err == nil {
					goto again
				}
			}
		}()
	}
	return d, nil
}

// Close flushes and closes the database.
func (d *Db) Close() error {
	if d.gc != nil {
		d.gc.Stop()
		for {
			if err := d.db.RunValueLogGC(0.7); err != nil {
				break
			}
		}
	}
	return d.db.Close()
}

// Delete removes the database from disk. The database must be closed first.
func (d *Db) Delete() error {
	if d.dbDir == "" {
		return nil
	}
	return os.RemoveAll(d.dbDir)
}

// IndexFile parses the iCalendar file at path and stores an entry for every event with a UID.
// It returns the number of indexed events.
func (d *Db) IndexFile(path string) (int, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return 0, err
	}

	f, err := os.Open(absPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	cals, err := goical.ParseCalendars(f)
	if err != nil {
		return 0, fmt.Errorf("index: %s: %w", absPath, err)
	}

	var entries []*Entry
	uids := map[string]bool{}
	for i, cal := range cals {
		for _, e := range cal.Events {
			if e.UID == "" {
				log.Debugf("skipping event without UID in %s", absPath)
				continue
			}
			entries = append(entries, &Entry{UID: e.UID, File: absPath, Calendar: i, Summary: e.Name, Begin: e.Begin})
			uids[e.UID] = true
		}
	}

	stale, err := d.fileKeys(absPath)
	if err != nil {
		return 0, err
	}

	wb := d.db.NewWriteBatch()
	defer wb.Cancel()

	for _, key := range stale {
		if uids[string(key[len(uidPrefix):])] {
			continue
		}
		if err := wb.Delete(key); err != nil {
			return 0, err
		}
	}
	for _, entry := range entries {
		value, err := json.Marshal(entry)
		if err != nil {
			return 0, err
		}
		if err := wb.Set([]byte(uidPrefix+entry.UID), value); err != nil {
			return 0, err
		}
	}
	if err := wb.Set([]byte(filePrefix+filepath.Base(absPath)), []byte(absPath)); err != nil {
		return 0, err
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}

	count := len(entries)
	log.Infof("indexed %d events from %s", count, absPath)
	return count, nil
}

// RemoveFile drops the entries of all events stored in the file at path, and the file itself unless its base
// name has since been taken by another indexed file.
func (d *Db) RemoveFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	keys, err := d.fileKeys(absPath)
	if err != nil {
		return err
	}

	wb := d.db.NewWriteBatch()
	defer wb.Cancel()

	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return err
		}
	}
	fileKey := filePrefix + filepath.Base(absPath)
	if val, err := d.get(fileKey); err == nil && string(val) == absPath {
		if err := wb.Delete([]byte(fileKey)); err != nil {
			return err
		}
	}
	if err := wb.Flush(); err != nil {
		return err
	}

	log.Infof("removed %d events from %s", len(keys), absPath)
	return nil
}

// fileKeys returns the keys of all entries pointing into the file at absPath.
func (d *Db) fileKeys(absPath string) ([][]byte, error) {
	var keys [][]byte
	opt := badger.DefaultIteratorOptions
	opt.Prefix = []byte(uidPrefix)
	err := d.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(opt)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				entry := &Entry{}
				if err := json.Unmarshal(val, entry); err != nil {
					log.Warnf("skipping corrupt entry %s: %v", item.Key(), err)
					return nil
				}
				if entry.File == absPath {
					keys = append(keys, item.KeyCopy(nil))
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return keys, err
}

// Get returns the entry for the event with the given UID.
func (d *Db) Get(uid string) (*Entry, error) {
	val, err := d.get(uidPrefix + uid)
	if err != nil {
		return nil, err
	}
	entry := &Entry{}
	if err := json.Unmarshal(val, entry); err != nil {
		return nil, fmt.Errorf("index: corrupt entry for %s: %w", uid, err)
	}
	return entry, nil
}

// FilePath returns the absolute path of an indexed file given its base name.
func (d *Db) FilePath(fileName string) (string, error) {
	val, err := d.get(filePrefix + fileName)
	return string(val), err
}

func (d *Db) get(key string) (val []byte, err error) {
	err = d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		err = ErrNotFound
	}
	return
}

// ListFiles returns the base names of all indexed files in sorted order.
func (d *Db) ListFiles() ([]string, error) {
	result := []string{}
	opt := badger.DefaultIteratorOptions
	opt.PrefetchValues = false
	opt.Prefix = []byte(filePrefix)
	err := d.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(opt)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			result = append(result, string(it.Item().Key()[len(filePrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
