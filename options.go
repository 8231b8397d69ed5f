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

package goical

import "strings"

const (
	// DefaultFoldWidth is the maximum number of octets in a physical line, excluding the line ending.
	DefaultFoldWidth = 75
	crlf             = "\r\n"
)

// Properties whose values have their own structured grammar where ';' and ',' are syntax.
// Their values are neither unescaped when parsed nor escaped when serialized.
var defaultRawValueProperties = []string{
	"RRULE", "EXRULE", "RDATE", "EXDATE", "GEO", "FREEBUSY", "REQUEST-STATUS", "CATEGORIES", "RESOURCES",
}

type options struct {
	foldWidth  int
	lineEnding string
	rawValues  map[string]bool
}

// Option configures parsing and serialization of iCalendar data.
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
	o := options{
		foldWidth:  DefaultFoldWidth,
		lineEnding: crlf,
		rawValues:  make(map[string]bool, len(defaultRawValueProperties)),
	}
	for _, n := range defaultRawValueProperties {
		o.rawValues[n] = true
	}
	return o
}

var defaults = newOptions()

func newOptions(opts ...Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}
	return &o
}

// WithFoldWidth sets the maximum width in octets of serialized physical lines.
// A width <= 0 disables folding.
// defaults to 75
func WithFoldWidth(width int) Option {
	return newFuncOption(func(o *options) {
		o.foldWidth = width
	})
}

// WithLineEnding sets the line terminator used when serializing.
// defaults to "\r\n"
func WithLineEnding(eol string) Option {
	return newFuncOption(func(o *options) {
		o.lineEnding = eol
	})
}

// WithRawValueProperties adds property names whose values are kept verbatim,
// in addition to RRULE, EXRULE, RDATE, EXDATE, GEO, FREEBUSY, REQUEST-STATUS, CATEGORIES and RESOURCES.
func WithRawValueProperties(names ...string) Option {
	return newFuncOption(func(o *options) {
		for _, n := range names {
			o.rawValues[strings.ToUpper(n)] = true
		}
	})
}
