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

package cat

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const calendar = "BEGIN:VCALENDAR\n" +
	"PRODID:x\n" +
	"VERSION:2.0\n" +
	"BEGIN:VEVENT\n" +
	"UID:1\n" +
	"BEGIN:VALARM\n" +
	"ACTION:DISPLAY\n" +
	"END:VALARM\n" +
	"END:VEVENT\n" +
	"BEGIN:VEVENT\n" +
	"UID:2\n" +
	"END:VEVENT\n" +
	"END:VCALENDAR\n"

func TestCat(t *testing.T) {
	viper.Set("fold-width", 75)
	defer viper.Set("fold-width", nil)

	path := filepath.Join(t.TempDir(), "cal.ics")
	require.NoError(t, os.WriteFile(path, []byte(calendar), 0644))

	tests := []struct {
		name      string
		conf      conf
		want      string
		wantCount string
	}{
		{
			"whole file",
			conf{},
			"BEGIN:VCALENDAR\r\nPRODID:x\r\nVERSION:2.0\r\n" +
				"BEGIN:VEVENT\r\nUID:1\r\nBEGIN:VALARM\r\nACTION:DISPLAY\r\nEND:VALARM\r\nEND:VEVENT\r\n" +
				"BEGIN:VEVENT\r\nUID:2\r\nEND:VEVENT\r\nEND:VCALENDAR\r\n",
			"Count:  1\n",
		},
		{
			"by name",
			conf{names: []string{"VEVENT"}},
			"BEGIN:VEVENT\r\nUID:1\r\nBEGIN:VALARM\r\nACTION:DISPLAY\r\nEND:VALARM\r\nEND:VEVENT\r\n" +
				"BEGIN:VEVENT\r\nUID:2\r\nEND:VEVENT\r\n",
			"Count:  2\n",
		},
		{
			"nested by name",
			conf{names: []string{"VALARM"}},
			"BEGIN:VALARM\r\nACTION:DISPLAY\r\nEND:VALARM\r\n",
			"Count:  1\n",
		},
		{
			"with count",
			conf{names: []string{"VEVENT"}, count: 1},
			"BEGIN:VEVENT\r\nUID:1\r\nBEGIN:VALARM\r\nACTION:DISPLAY\r\nEND:VALARM\r\nEND:VEVENT\r\n",
			"Count:  1\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
			tt.conf.fileNames = []string{path}
			require.NoError(t, runE(&tt.conf, out, errOut))
			assert.Equal(t, tt.want, out.String())
			assert.Equal(t, tt.wantCount, errOut.String())
		})
	}

	err := runE(&conf{fileNames: []string{filepath.Join(t.TempDir(), "missing.ics")}}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
}
