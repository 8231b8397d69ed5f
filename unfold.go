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
	"bufio"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	sp = ' '
	ht = '\t'
)

// lineSource returns physical lines one at a time and io.EOF when exhausted.
type lineSource interface {
	next() (string, error)
}

type readerSource struct {
	r *bufio.Reader
}

func (s *readerSource) next() (string, error) {
	l, err := s.r.ReadString('\n')
	if err == io.EOF && len(l) > 0 {
		// Last line without line ending
		return l, nil
	}
	return l, err
}

type sliceSource struct {
	lines []string
	idx   int
}

func (s *sliceSource) next() (string, error) {
	if s.idx >= len(s.lines) {
		return "", io.EOF
	}
	s.idx++
	return s.lines[s.idx-1], nil
}

// Unfolder turns physical lines into logical lines by joining continuation lines.
//
// A physical line starting with a space or a horizontal tab continues the previous logical line. The
// whitespace character is removed and the rest is appended to the logical line without separator, even when
// the rest is whitespace only. Empty physical lines are skipped, and so are whitespace-only lines that have no
// logical line to continue.
//
// Unfolder is a single-pass iterator holding at most one logical line in flight:
//
//	u := NewUnfolder(r)
//	for u.Next() {
//		fmt.Println(u.Line())
//	}
//	if err := u.Err(); err != nil {
//		...
//	}
type Unfolder struct {
	src         lineSource
	buf         strings.Builder
	pending     bool
	pendingLine int
	physical    int
	line        string
	lineNumber  int
	err         error
}

// NewUnfolder creates an Unfolder reading physical lines from r.
func NewUnfolder(r io.Reader) *Unfolder {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Unfolder{src: &readerSource{r: br}}
}

// NewLineUnfolder creates an Unfolder where each element of lines is one physical line.
func NewLineUnfolder(lines []string) *Unfolder {
	return &Unfolder{src: &sliceSource{lines: lines}}
}

// Next advances to the next logical line. It returns false when the input is exhausted or an error occurred.
func (u *Unfolder) Next() bool {
	if u.err != nil {
		return false
	}
	for {
		raw, err := u.src.next()
		if err != nil {
			if err != io.EOF {
				u.err = err
				return false
			}
			if !u.pending {
				u.line = ""
				return false
			}
			u.emit()
			return true
		}
		u.physical++

		raw = strings.TrimRight(raw, "\r\n")
		if raw == "" {
			continue
		}

		if u.pending && (raw[0] == sp || raw[0] == ht) {
			u.buf.WriteString(raw[1:])
			continue
		}
		if strings.TrimSpace(raw) == "" {
			continue
		}

		if u.pending {
			u.emit()
			u.start(raw)
			return true
		}
		u.start(raw)
	}
}

func (u *Unfolder) start(raw string) {
	u.buf.WriteString(raw)
	u.pending = true
	u.pendingLine = u.physical
}

func (u *Unfolder) emit() {
	u.line = u.buf.String()
	u.lineNumber = u.pendingLine
	u.buf.Reset()
	u.pending = false
}

// Line returns the current logical line.
func (u *Unfolder) Line() string {
	return u.line
}

// LineNumber returns the physical line number (starting at 1) where the current logical line started.
func (u *Unfolder) LineNumber() int {
	return u.lineNumber
}

// Err returns the first non-EOF error encountered by the Unfolder.
func (u *Unfolder) Err() error {
	return u.err
}

// Unfold returns the logical lines of a sequence of physical lines.
func Unfold(lines []string) []string {
	result := []string{}
	u := NewLineUnfolder(lines)
	for u.Next() {
		result = append(result, u.Line())
	}
	return result
}

// Fold splits a logical line into physical lines of at most width octets. Every physical line after the first
// starts with a single space which is counted in the width. A line is never split inside a UTF-8 sequence and a
// continuation never holds whitespace only, so Unfold reverses Fold.
//
// A width <= 0 disables folding.
func Fold(line string, width int) []string {
	if width <= 0 || len(line) <= width {
		return []string{line}
	}

	end := cut(line, 0, width)
	result := []string{line[:end]}
	for start := end; start < len(line); start = end {
		if strings.TrimSpace(line[start:]) == "" {
			// Trailing whitespace would be lost as a continuation of its own
			result[len(result)-1] += line[start:]
			break
		}
		end = cut(line, start, width-1)
		result = append(result, " "+line[start:end])
	}
	return result
}

// cut returns the end offset of a chunk starting at start which holds at most n octets.
// The chunk always holds at least one rune and never holds whitespace only unless it reaches the end of s.
func cut(s string, start, n int) int {
	end := start + n
	if end >= len(s) {
		return len(s)
	}
	for end > start && !utf8.RuneStart(s[end]) {
		end--
	}
	if end == start {
		_, size := utf8.DecodeRuneInString(s[start:])
		end = start + size
	}
	if strings.TrimSpace(s[start:end]) == "" {
		for end < len(s) {
			r, size := utf8.DecodeRuneInString(s[end:])
			end += size
			if !unicode.IsSpace(r) {
				break
			}
		}
	}
	return end
}
