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
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/nlnwa/goical"
	"github.com/nlnwa/goical/pkg/index"
	log "github.com/sirupsen/logrus"
)

type filesHandler struct {
	store Store
}

func (h *filesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	files, err := h.store.ListFiles()
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, files)
}

type eventHandler struct {
	store Store
}

type eventJSON struct {
	UID         string        `json:"uid"`
	Summary     string        `json:"summary,omitempty"`
	Description string        `json:"description,omitempty"`
	Location    string        `json:"location,omitempty"`
	URL         string        `json:"url,omitempty"`
	Begin       time.Time     `json:"begin"`
	End         time.Time     `json:"end"`
	AllDay      bool          `json:"allDay"`
	Duration    time.Duration `json:"duration,omitempty"`
	File        string        `json:"file"`
}

func (h *eventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]
	log.Debugf("request uid: %v", uid)

	entry, err := h.store.Get(uid)
	if err != nil {
		handleError(w, err)
		return
	}

	cal, event, err := loadEvent(entry)
	if err != nil {
		handleError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, &eventJSON{
			UID:         event.UID,
			Summary:     event.Name,
			Description: event.Description,
			Location:    event.Location,
			URL:         event.URL,
			Begin:       event.Begin,
			End:         event.EndTime(),
			AllDay:      event.AllDay,
			Duration:    event.Duration,
			File:        entry.File,
		})
		return
	}

	out := goical.NewCalendar(event)
	out.Creator = cal.Creator
	out.Timezones = cal.Clone().Timezones
	c, err := out.Container()
	if err != nil {
		handleError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	if _, err := goical.NewMarshaler().Marshal(w, c); err != nil {
		log.Warnf("writing event %s: %v", uid, err)
	}
}

// loadEvent reads the calendar an entry points to and finds the event in it.
func loadEvent(entry *index.Entry) (*goical.Calendar, *goical.Event, error) {
	f, err := os.Open(entry.File)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	cals, err := goical.ParseCalendars(f)
	if err != nil {
		return nil, nil, err
	}
	if entry.Calendar >= len(cals) {
		return nil, nil, fmt.Errorf("%w: calendar %d in %s", index.ErrNotFound, entry.Calendar, entry.File)
	}
	cal := cals[entry.Calendar]
	for _, e := range cal.Events {
		if e.UID == entry.UID {
			return cal, e, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: event %s in %s", index.ErrNotFound, entry.UID, entry.File)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("writing response: %v", err)
	}
}

func handleError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, index.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		status = http.StatusNotFound
	} else {
		log.Errorf("request failed: %v", err)
	}
	http.Error(w, err.Error(), status)
}
