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
	"strings"
	"testing"
	"testing/iotest"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnfold(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single", "a", []string{"a"}},
		{"two chars", "ab", []string{"ab"}},
		{"two lines", "a\nb", []string{"a", "b"}},
		{"folded", "a\n b", []string{"ab"}},
		{"folded keeps inner space", "a \n b", []string{"a b"}},
		{"folded then plain", "a\n b\nc", []string{"ab", "c"}},
		{"plain then folded", "a\nb\n c", []string{"a", "bc"}},
		{"three lines", "a\nb\nc", []string{"a", "b", "c"}},
		{"folded twice", "a\n b\n c", []string{"abc"}},
		{"folded twice with spaces", "a \n b \n c", []string{"a b c"}},
		{"tab continuation", "a\n\tb", []string{"ab"}},
		{"crlf", "a\r\n b\r\nc\r\n", []string{"ab", "c"}},
		{"empty lines skipped", "\nBEGIN:VCALENDAR\n\n\nEND:VCALENDAR\n", []string{"BEGIN:VCALENDAR", "END:VCALENDAR"}},
		{"leading whitespace lines skipped", "   \n\t\nBEGIN:VCALENDAR\nEND:VCALENDAR", []string{"BEGIN:VCALENDAR", "END:VCALENDAR"}},
		{"whitespace continuation kept", "SUMMARY:a\n  \n b", []string{"SUMMARY:a b"}},
		{"tab only continuation", "a\n\t\t\nb", []string{"a\t", "b"}},
		{"blank line inside fold", "a\n \n b", []string{"ab"}},
		{"last line folded", "BEGIN:VCALENDAR\nEND:VCAL\n ENDAR", []string{"BEGIN:VCALENDAR", "END:VCALENDAR"}},
		{"empty", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Unfold(strings.Split(tt.input, "\n")))
		})
	}
}

func TestUnfoldEmptySlice(t *testing.T) {
	got := Unfold(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestUnfolder_Reader(t *testing.T) {
	input := "\r\nBEGIN:VCALENDAR\r\nDESCRIPTION:a\r\n b\r\n c\r\nEND:VCALENDAR"
	u := NewUnfolder(strings.NewReader(input))

	type line struct {
		text   string
		number int
	}
	var got []line
	for u.Next() {
		got = append(got, line{u.Line(), u.LineNumber()})
	}
	require.NoError(t, u.Err())
	assert.Equal(t, []line{
		{"BEGIN:VCALENDAR", 2},
		{"DESCRIPTION:abc", 3},
		{"END:VCALENDAR", 6},
	}, got)

	// Exhausted unfolder stays exhausted
	assert.False(t, u.Next())
	assert.Equal(t, "", u.Line())
}

func TestUnfolder_ReadError(t *testing.T) {
	readErr := errors.New("disk on fire")
	u := NewUnfolder(iotest.ErrReader(readErr))
	assert.False(t, u.Next())
	assert.ErrorIs(t, u.Err(), readErr)
}

func TestFold(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		width int
		want  []string
	}{
		{"short", "abc", 75, []string{"abc"}},
		{"exact", strings.Repeat("a", 75), 75, []string{strings.Repeat("a", 75)}},
		{"long", strings.Repeat("a", 100), 75, []string{strings.Repeat("a", 75), " " + strings.Repeat("a", 25)}},
		{"several", "abcdefghij", 4, []string{"abcd", " efg", " hij"}},
		{"disabled", strings.Repeat("a", 100), 0, []string{strings.Repeat("a", 100)}},
		{"utf8 boundary", "aaaé", 4, []string{"aaa", " é"}},
		{"trailing whitespace", "abcd  ", 4, []string{"abcd  "}},
		{"inner whitespace", "ab    cd", 4, []string{"ab  ", "   c", " d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fold(tt.line, tt.width))
		})
	}
}

func TestFoldUnfoldRoundTrip(t *testing.T) {
	lines := []string{
		"DESCRIPTION:" + strings.Repeat("Lorem ipsum dolor sit amet, ", 10),
		"SUMMARY:" + strings.Repeat("æøå€", 40),
		"X-SPACES:a" + strings.Repeat(" ", 200) + "b",
		"X-TRAILING:" + strings.Repeat("x", 80) + "     ",
		"X-SHORT:abc",
	}
	for _, width := range []int{1, 2, 5, 13, 75} {
		for _, l := range lines {
			folded := Fold(l, width)
			for i, pl := range folded {
				assert.True(t, utf8.ValidString(pl), "invalid utf-8 in %q", pl)
				if i > 0 {
					assert.True(t, strings.HasPrefix(pl, " "))
					assert.NotEmpty(t, strings.TrimSpace(pl), "whitespace-only continuation")
				}
			}
			assert.Equal(t, []string{l}, Unfold(folded), "width %d", width)
		}
	}
}

func TestFoldWidth(t *testing.T) {
	l := "DESCRIPTION:" + strings.Repeat("0123456789", 30)
	for _, pl := range Fold(l, DefaultFoldWidth) {
		assert.LessOrEqual(t, len(pl), DefaultFoldWidth)
	}
}
