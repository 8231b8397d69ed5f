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

import (
	"errors"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Unmarshaler is the interface that wraps the functions for parsing iCalendar text into containers.
//
// The input may hold several top level containers. Parsing stops at the first error and no containers are
// returned in that case.
type Unmarshaler interface {
	Unmarshal(r io.Reader) ([]*Container, error)
	UnmarshalLines(lines []string) ([]*Container, error)
	UnmarshalString(s string) ([]*Container, error)
}

type unmarshaler struct {
	opts *options
}

// NewUnmarshaler creates a new Unmarshaler with the supplied options.
func NewUnmarshaler(opts ...Option) Unmarshaler {
	return &unmarshaler{opts: newOptions(opts...)}
}

func (u *unmarshaler) Unmarshal(r io.Reader) ([]*Container, error) {
	return u.parse(NewUnfolder(r))
}

func (u *unmarshaler) UnmarshalLines(lines []string) ([]*Container, error) {
	return u.parse(NewLineUnfolder(lines))
}

func (u *unmarshaler) UnmarshalString(s string) ([]*Container, error) {
	return u.parse(NewLineUnfolder(strings.Split(s, "\n")))
}

// Parse builds containers from the logical lines of src using default options.
func Parse(src *Unfolder) ([]*Container, error) {
	return (&unmarshaler{opts: defaults}).parse(src)
}

// ParseString parses iCalendar text using default options.
func ParseString(s string) ([]*Container, error) {
	return Parse(NewLineUnfolder(strings.Split(s, "\n")))
}

func (u *unmarshaler) parse(src *Unfolder) ([]*Container, error) {
	var roots []*Container
	var stack []*Container

	for src.Next() {
		cl, err := parseContentLine(src.Line(), u.opts.rawValues)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Line = src.LineNumber()
			}
			return nil, err
		}

		switch cl.key() {
		case begin:
			if cl.Value == "" {
				return nil, newStructuralError(src.LineNumber(), "", "BEGIN without container name")
			}
			stack = append(stack, &Container{Name: cl.Value})

		case end:
			if len(stack) == 0 {
				return nil, newStructuralErrorf(src.LineNumber(), cl.Value, "unexpected END:%s", cl.Value)
			}
			top := stack[len(stack)-1]
			if !strings.EqualFold(top.Name, cl.Value) {
				return nil, newStructuralErrorf(src.LineNumber(), top.Name, "expected END:%s, got END:%s", top.Name, cl.Value)
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				roots = append(roots, top)
			} else {
				parent := stack[len(stack)-1]
				parent.Items = append(parent.Items, top)
			}

		default:
			if len(stack) == 0 {
				return nil, newStructuralErrorf(src.LineNumber(), "", "content line %s outside of any container", cl.Name)
			}
			top := stack[len(stack)-1]
			top.Items = append(top.Items, cl)
		}
	}
	if err := src.Err(); err != nil {
		return nil, err
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return nil, newStructuralErrorf(0, top.Name, "unexpected end of input, missing END:%s", top.Name)
	}

	log.Debugf("parsed %d top level containers", len(roots))
	return roots, nil
}
