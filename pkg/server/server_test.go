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

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nlnwa/goical"
	"github.com/nlnwa/goical/pkg/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCalendar = "BEGIN:VCALENDAR\r\n" +
	"PRODID:-//test//EN\r\n" +
	"VERSION:2.0\r\n" +
	"BEGIN:VTIMEZONE\r\n" +
	"TZID:Europe/Oslo\r\n" +
	"END:VTIMEZONE\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:other@example.com\r\n" +
	"SUMMARY:Other\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:a@example.com\r\n" +
	"DTSTART:20200110T080000Z\r\n" +
	"DURATION:PT1H\r\n" +
	"SUMMARY:Meeting\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

type fakeStore struct {
	entries map[string]*index.Entry
	files   []string
	err     error
}

func (s *fakeStore) Get(uid string) (*index.Entry, error) {
	if e, ok := s.entries[uid]; ok {
		return e, nil
	}
	return nil, index.ErrNotFound
}

func (s *fakeStore) ListFiles() ([]string, error) {
	return s.files, s.err
}

func newTestStore(t *testing.T) *fakeStore {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "work.ics")
	require.NoError(t, os.WriteFile(path, []byte(testCalendar), 0644))
	broken := filepath.Join(dir, "broken.ics")
	require.NoError(t, os.WriteFile(broken, []byte("BEGIN:VCALENDAR\r\nbroken\r\n"), 0644))

	return &fakeStore{
		entries: map[string]*index.Entry{
			"a@example.com":      {UID: "a@example.com", File: path},
			"moved@example.com":  {UID: "moved@example.com", File: path},
			"gone@example.com":   {UID: "gone@example.com", File: filepath.Join(dir, "gone.ics")},
			"broken@example.com": {UID: "broken@example.com", File: broken},
		},
		files: []string{"broken.ics", "work.ics"},
	}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestFilesHandler(t *testing.T) {
	h := Handler(newTestStore(t))
	rec := get(t, h, "/files")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var files []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &files))
	assert.Equal(t, []string{"broken.ics", "work.ics"}, files)

	h = Handler(&fakeStore{err: errors.New("db closed")})
	assert.Equal(t, http.StatusInternalServerError, get(t, h, "/files").Code)
}

func TestEventHandler(t *testing.T) {
	h := Handler(newTestStore(t))
	rec := get(t, h, "/events/a@example.com")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", rec.Header().Get("Content-Type"))

	cal, err := goical.ParseCalendar(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	assert.Equal(t, "-//test//EN", cal.Creator)
	assert.Equal(t, []string{"Europe/Oslo"}, cal.TimezoneIDs())
	require.Len(t, cal.Events, 1)
	assert.Equal(t, "a@example.com", cal.Events[0].UID)
	assert.Equal(t, "Meeting", cal.Events[0].Name)
}

func TestEventHandlerJSON(t *testing.T) {
	h := Handler(newTestStore(t))
	rec := get(t, h, "/events/a@example.com?format=json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "a@example.com", got["uid"])
	assert.Equal(t, "Meeting", got["summary"])
	assert.Equal(t, "2020-01-10T08:00:00Z", got["begin"])
	assert.Equal(t, "2020-01-10T09:00:00Z", got["end"])
	assert.Equal(t, false, got["allDay"])
}

func TestEventHandlerErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"unknown uid", "/events/unknown@example.com", http.StatusNotFound},
		{"event no longer in file", "/events/moved@example.com", http.StatusNotFound},
		{"file removed", "/events/gone@example.com", http.StatusNotFound},
		{"unparsable file", "/events/broken@example.com", http.StatusInternalServerError},
		{"unknown route", "/calendars", http.StatusNotFound},
	}
	h := Handler(newTestStore(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, get(t, h, tt.target).Code)
		})
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/files", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandlerMiddleware(t *testing.T) {
	var seen []string
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
	h := Handler(newTestStore(t), mw)
	get(t, h, "/files")
	assert.Equal(t, []string{"/files"}, seen)
}
