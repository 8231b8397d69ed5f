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

package format

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unformatted = "BEGIN:VCALENDAR\n" +
	"PRODID:x\n" +
	"VERSION:2.0\n" +
	"BEGIN:VEVENT\n" +
	"SUMMARY:a rather long summary which will need to be folded when written\n" +
	"  back with a narrow width\n" +
	"END:VEVENT\n" +
	"END:VCALENDAR\n"

const formatted = "BEGIN:VCALENDAR\r\n" +
	"PRODID:x\r\n" +
	"VERSION:2.0\r\n" +
	"BEGIN:VEVENT\r\n" +
	"SUMMARY:a rather long summary which will need to b\r\n" +
	" e folded when written back with a narrow width\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestFormat(t *testing.T) {
	viper.Set("fold-width", 50)
	defer viper.Set("fold-width", nil)

	path := filepath.Join(t.TempDir(), "cal.ics")
	require.NoError(t, os.WriteFile(path, []byte(unformatted), 0600))

	out := &bytes.Buffer{}
	require.NoError(t, runE(&conf{fileNames: []string{path}}, out))
	assert.Equal(t, formatted, out.String())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, unformatted, string(b), "source is untouched without --write")

	out.Reset()
	require.NoError(t, runE(&conf{write: true, fileNames: []string{path}}, out))
	assert.Empty(t, out.String())
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, formatted, string(b))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")

	// Formatting is idempotent
	require.NoError(t, runE(&conf{write: true, fileNames: []string{path}}, out))
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, formatted, string(b))
}

func TestFormatError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.ics")
	require.NoError(t, os.WriteFile(path, []byte("BEGIN:VCALENDAR\nnot a line\n"), 0600))

	err := runE(&conf{write: true, fileNames: []string{path}}, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), path+": "))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "BEGIN:VCALENDAR\nnot a line\n", string(b))
}
