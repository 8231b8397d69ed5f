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
	"io"
)

// Marshaler is the interface that wraps the Marshal function.
//
// Marshal writes containers as folded iCalendar text and returns the number of bytes written or any error
// encountered. A container is validated completely before any of its lines are written.
type Marshaler interface {
	Marshal(w io.Writer, containers ...*Container) (int64, error)
}

type defaultMarshaler struct {
	opts *options
}

// NewMarshaler creates a new Marshaler with the supplied options.
func NewMarshaler(opts ...Option) Marshaler {
	return &defaultMarshaler{opts: newOptions(opts...)}
}

func (m *defaultMarshaler) Marshal(w io.Writer, containers ...*Container) (int64, error) {
	var bytesWritten int64
	for _, c := range containers {
		lines, err := c.appendLogicalLines(nil, m.opts.rawValues)
		if err != nil {
			return bytesWritten, err
		}
		for _, l := range lines {
			for _, pl := range Fold(l, m.opts.foldWidth) {
				n, err := io.WriteString(w, pl)
				bytesWritten += int64(n)
				if err != nil {
					return bytesWritten, err
				}
				n, err = io.WriteString(w, m.opts.lineEnding)
				bytesWritten += int64(n)
				if err != nil {
					return bytesWritten, err
				}
			}
		}
	}
	return bytesWritten, nil
}
