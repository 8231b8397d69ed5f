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

package validate

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidate(t *testing.T) {
	valid := writeFile(t, "valid.ics", "BEGIN:VCALENDAR\r\nPRODID:x\r\nVERSION:2.0\r\nEND:VCALENDAR\r\n")
	invalid := writeFile(t, "invalid.ics", "BEGIN:VCALENDAR\r\nVERSION:2.0\r\n"+
		"BEGIN:VEVENT\r\nSUMMARY:a\r\nSUMMARY:b\r\nEND:VEVENT\r\nEND:VCALENDAR\r\n")
	broken := writeFile(t, "broken.ics", "BEGIN:VCALENDAR\r\nEND:VEVENT\r\n")
	empty := writeFile(t, "empty.ics", "")

	out := &bytes.Buffer{}
	require.NoError(t, runE(&conf{fileNames: []string{valid}}, out))
	assert.Equal(t, valid+": ok\n", out.String())

	out.Reset()
	err := runE(&conf{quiet: true, fileNames: []string{valid, invalid, broken, empty}}, out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
	assert.Contains(t, err.Error(), "3 of 4 files")

	assert.NotContains(t, out.String(), valid+": ok")
	assert.Contains(t, out.String(), invalid+": goical: missing required PRODID in VCALENDAR\n")
	assert.Contains(t, out.String(), invalid+": goical: more than one SUMMARY in VEVENT\n")
	assert.Contains(t, out.String(), broken+": goical: ")
	assert.Contains(t, out.String(), empty+": no calendars found\n")
}
