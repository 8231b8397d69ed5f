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

package index

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// IsCalendarFile reports whether name looks like an iCalendar file the indexer should pick up.
func IsCalendarFile(name string) bool {
	if strings.HasSuffix(name, "~") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".ics")
}

// AutoIndexer keeps the index in sync with one or more directories of iCalendar files.
type AutoIndexer struct {
	db         *Db
	dirs       []string
	watchDepth int
	watcher    *fsnotify.Watcher
	cron       *cron.Cron
	queue      chan string
	wg         sync.WaitGroup

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
}

// NewAutoIndexer indexes every calendar file found in dirs and watches them for changes.
// Subdirectories are followed down to watchDepth. If schedule is a non-empty cron spec, all
// directories are also reindexed on that schedule.
func NewAutoIndexer(db *Db, dirs []string, watchDepth int, schedule string) (*AutoIndexer, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	a := &AutoIndexer{
		db:         db,
		dirs:       dirs,
		watchDepth: watchDepth,
		watcher:    watcher,
		queue:      make(chan string, 64),
		pending:    map[string]*time.Timer{},
	}

	workers := db.opts.workers
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		a.wg.Add(1)
		go a.worker()
	}
	go a.fileWatcher()

	if schedule != "" {
		a.cron = cron.New()
		if _, err := a.cron.AddFunc(schedule, a.reindexAll); err != nil {
			a.Shutdown()
			return nil, err
		}
		a.cron.Start()
	}

	for _, dir := range dirs {
		if err := a.addAndIndexDir(dir, 0); err != nil {
			a.Shutdown()
			return nil, err
		}
	}
	return a, nil
}

// Shutdown stops watching and waits for queued files to be indexed.
func (a *AutoIndexer) Shutdown() {
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	for _, t := range a.pending {
		t.Stop()
	}
	a.pending = nil
	close(a.queue)
	a.mu.Unlock()

	_ = a.watcher.Close()
	a.wg.Wait()
}

// Queue schedules path for indexing after delay. A file queued again before the delay has
// passed is only indexed once.
func (a *AutoIndexer) Queue(path string, delay time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	if t, ok := a.pending[path]; ok {
		t.Stop()
	}
	a.pending[path] = time.AfterFunc(delay, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.closed {
			return
		}
		delete(a.pending, path)
		a.queue <- path
	})
}

func (a *AutoIndexer) worker() {
	defer a.wg.Done()
	for path := range a.queue {
		_, err := a.db.IndexFile(path)
		if errors.Is(err, os.ErrNotExist) {
			err = a.db.RemoveFile(path)
		}
		if err != nil {
			log.Warnf("could not index %s: %v", path, err)
		}
	}
}

func (a *AutoIndexer) fileWatcher() {
	for {
		select {
		case event, ok := <-a.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				if IsCalendarFile(event.Name) {
					log.Debugf("removed file: %v", event.Name)
					a.Queue(event.Name, a.db.opts.settleTime)
				}
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			fStat, err := os.Stat(event.Name)
			if err != nil {
				log.Debug(err)
				continue
			}

			if fStat.IsDir() {
				if event.Op&fsnotify.Create == fsnotify.Create {
					if err := a.watcher.Add(event.Name); err != nil {
						log.Errorf("could not watch new directory '%v': %v", event.Name, err)
					}
				}
				continue
			}

			if IsCalendarFile(event.Name) {
				log.Debugf("modified file: %v", event.Name)
				a.Queue(event.Name, a.db.opts.settleTime)
			}

		case err, ok := <-a.watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("watcher: %v", err)
		}
	}
}

func (a *AutoIndexer) reindexAll() {
	log.Infof("reindexing %v", a.dirs)
	for _, dir := range a.dirs {
		if err := a.indexDir(dir, 0, false); err != nil {
			log.Warnf("reindex %s: %v", dir, err)
		}
	}
}

// addAndIndexDir recursively adds directories to the watcher and queues their calendar files.
func (a *AutoIndexer) addAndIndexDir(path string, currentDepth int) error {
	return a.indexDir(path, currentDepth, true)
}

func (a *AutoIndexer) indexDir(path string, currentDepth int, watch bool) error {
	if watch {
		if err := a.watcher.Add(path); err != nil {
			return err
		}
	}

	files, err := os.ReadDir(path)
	if err != nil {
		return err
	}

	for _, file := range files {
		name := filepath.Join(path, file.Name())
		if file.IsDir() {
			if currentDepth < a.watchDepth {
				if err := a.indexDir(name, currentDepth+1, watch); err != nil {
					return err
				}
			}
			continue
		}
		if IsCalendarFile(name) {
			a.Queue(name, 0)
		}
	}
	return nil
}
