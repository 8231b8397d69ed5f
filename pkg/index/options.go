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

import "time"

type options struct {
	dir        string
	inMemory   bool
	gcInterval time.Duration
	workers    int
	settleTime time.Duration
}

// Option configures the index database and the auto indexer.
type Option interface {
	apply(*options)
}

// funcOption wraps a function that modifies options into an
// implementation of the Option interface.
type funcOption struct {
	f func(*options)
}

func (fo *funcOption) apply(po *options) {
	fo.f(po)
}

func newFuncOption(f func(*options)) *funcOption {
	return &funcOption{
		f: f,
	}
}

func defaultOptions() options {
	return options{
		dir:        ".",
		gcInterval: 5 * time.Minute,
		workers:    4,
		settleTime: 2 * time.Second,
	}
}

func newOptions(opts ...Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}
	return &o
}

// WithDir sets the directory where the database is stored. The database itself is put in a subdirectory named icaldb.
// defaults to current directory
func WithDir(dir string) Option {
	return newFuncOption(func(o *options) {
		o.dir = dir
	})
}

// WithInMemory keeps the database in memory only.
// defaults to false
func WithInMemory(inMemory bool) Option {
	return newFuncOption(func(o *options) {
		o.inMemory = inMemory
	})
}

// WithGcInterval sets how often the value log garbage collector is run.
// defaults to 5 minutes
func WithGcInterval(d time.Duration) Option {
	return newFuncOption(func(o *options) {
		o.gcInterval = d
	})
}

// WithWorkers sets the number of files the auto indexer may index concurrently.
// defaults to 4
func WithWorkers(n int) Option {
	return newFuncOption(func(o *options) {
		o.workers = n
	})
}

// WithSettleTime sets how long the auto indexer waits after the last write to a file before indexing it.
// defaults to 2 seconds
func WithSettleTime(d time.Duration) Option {
	return newFuncOption(func(o *options) {
		o.settleTime = d
	})
}
