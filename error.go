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
	"fmt"
	"strings"
)

// ParseError is used when a logical line does not match the content line grammar.
type ParseError struct {
	Line int    // Physical line number where the logical line started, 0 if unknown
	Text string // The offending logical line
	msg  string
}

func newParseError(text string, msg string) *ParseError {
	return &ParseError{Text: text, msg: msg}
}

func newParseErrorf(text string, msg string, param ...interface{}) *ParseError {
	return &ParseError{Text: text, msg: fmt.Sprintf(msg, param...)}
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("goical: %s at line %d: %q", e.msg, e.Line, e.Text)
	}
	return fmt.Sprintf("goical: %s: %q", e.msg, e.Text)
}

// StructuralError is used for unbalanced or mismatched BEGIN/END markers and for content lines
// which are not enclosed by any container.
type StructuralError struct {
	Line int    // Physical line number, 0 if unknown
	Name string // Name of the container involved, if any
	msg  string
}

func newStructuralError(line int, name string, msg string) *StructuralError {
	return &StructuralError{Line: line, Name: name, msg: msg}
}

func newStructuralErrorf(line int, name string, msg string, param ...interface{}) *StructuralError {
	return &StructuralError{Line: line, Name: name, msg: fmt.Sprintf(msg, param...)}
}

func (e *StructuralError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("goical: %s at line %d", e.msg, e.Line)
	}
	return fmt.Sprintf("goical: %s", e.msg)
}

// CardinalityError is used when a container holds a property or component a wrong number of times.
type CardinalityError struct {
	Container string
	Tag       string
	msg       string
}

func newCardinalityError(container, tag string, msg string) *CardinalityError {
	return &CardinalityError{Container: container, Tag: tag, msg: msg}
}

func (e *CardinalityError) Error() string {
	return fmt.Sprintf("goical: %s %s in %s", e.msg, e.Tag, e.Container)
}

// ValueError is used when serializing a content line or container which cannot be represented.
type ValueError struct {
	msg string
}

func newValueErrorf(msg string, param ...interface{}) *ValueError {
	return &ValueError{msg: fmt.Sprintf(msg, param...)}
}

func (e *ValueError) Error() string {
	return "goical: " + e.msg
}

type multiErr []error

func (e multiErr) Error() string {
	switch len(e) {

	case 0:
		return ""

	case 1:
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString("[")
	for i, err := range e {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(err.Error())
	}
	b.WriteString("]")
	return b.String()
}

// Errors returns the wrapped errors.
func (e multiErr) Errors() []error {
	return e
}

func (e multiErr) errOrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
