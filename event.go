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
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nlnwa/goical/internal/timestamp"
	"github.com/nlnwa/whatwg-url/url"
	log "github.com/sirupsen/logrus"
)

const uidDomain = "goical"

// Event is a VEVENT component.
//
// All fields are optional. A zero time means the property is absent. Children which are not mapped to a field,
// like alarms and X- properties, are kept and written back in their original order.
type Event struct {
	UID         string
	Created     time.Time // DTSTAMP
	Begin       time.Time // DTSTART
	AllDay      bool      // DTSTART and DTEND are DATE values
	End         time.Time // DTEND
	Duration    time.Duration
	Name        string // SUMMARY
	Description string
	Location    string
	URL         string

	extra []Item
	zones map[string]*zone // set while extracting
}

// NewEvent creates an event with a generated UID and DTSTAMP set to the current time.
func NewEvent(name string, begin, end time.Time) *Event {
	return &Event{
		UID:     newUID(),
		Created: time.Now().UTC().Truncate(time.Second),
		Begin:   begin,
		End:     end,
		Name:    name,
	}
}

func newUID() string {
	return uuid.New().String() + "@" + uidDomain
}

var eventRules = NewRuleSet[*Event]("VEVENT").
	Extracts("UID", Optional, textField(func(e *Event) *string { return &e.UID })).
	Extracts("DTSTAMP", Optional, func(e *Event, items []Item) error {
		t, _, err := timeField(items, e.zones)
		e.Created = t
		return err
	}).
	Extracts("DTSTART", Optional, func(e *Event, items []Item) error {
		t, isDate, err := timeField(items, e.zones)
		e.Begin, e.AllDay = t, isDate
		return err
	}).
	Extracts("DTEND", Optional, func(e *Event, items []Item) error {
		t, isDate, err := timeField(items, e.zones)
		if err == nil && !t.IsZero() && isDate != e.AllDay && !e.Begin.IsZero() {
			return newValueErrorf("DTSTART and DTEND of VEVENT %s have different value types", e.UID)
		}
		e.End = t
		return err
	}).
	Extracts("DURATION", Optional, func(e *Event, items []Item) error {
		cl, err := singleLine(items)
		if err != nil || cl == nil {
			return err
		}
		if !e.End.IsZero() {
			return newValueErrorf("VEVENT %s has both DTEND and DURATION", e.UID)
		}
		e.Duration, err = timestamp.ParseDuration(cl.Value)
		if err != nil {
			return newValueErrorf("%v in VEVENT %s", err, e.UID)
		}
		return nil
	}).
	Extracts("SUMMARY", Optional, textField(func(e *Event) *string { return &e.Name })).
	Extracts("DESCRIPTION", Optional, textField(func(e *Event) *string { return &e.Description })).
	Extracts("LOCATION", Optional, textField(func(e *Event) *string { return &e.Location })).
	Extracts("URL", Optional, func(e *Event, items []Item) error {
		cl, err := singleLine(items)
		if err != nil || cl == nil {
			return err
		}
		u, err := url.Parse(cl.Value)
		if err != nil {
			return newValueErrorf("illegal URL %q in VEVENT %s: %v", cl.Value, e.UID, err)
		}
		e.URL = u.String()
		return nil
	}).
	Outputs(func(e *Event, c *Container) error {
		uid := e.UID
		if uid == "" {
			uid = newUID()
		}
		c.Append(NewContentLine("UID", uid))
		if !e.Created.IsZero() {
			c.Append(NewContentLine("DTSTAMP", timestamp.FormatUTC(e.Created)))
		}
		if !e.Begin.IsZero() {
			c.Append(timeLine("DTSTART", e.Begin, e.AllDay))
		}
		if !e.End.IsZero() {
			if e.Duration != 0 {
				return newValueErrorf("VEVENT %s has both DTEND and DURATION", uid)
			}
			c.Append(timeLine("DTEND", e.End, e.AllDay))
		}
		if e.Duration != 0 {
			c.Append(NewContentLine("DURATION", timestamp.FormatDuration(e.Duration)))
		}
		for _, f := range []struct{ name, value string }{
			{"SUMMARY", e.Name},
			{"DESCRIPTION", e.Description},
			{"LOCATION", e.Location},
			{"URL", e.URL},
		} {
			if f.value != "" {
				c.Append(NewContentLine(f.name, f.value))
			}
		}
		c.Append(cloneItems(e.extra)...)
		return nil
	}).
	Build()

func textField(field func(e *Event) *string) ExtractFunc[*Event] {
	return func(e *Event, items []Item) error {
		cl, err := singleLine(items)
		if err != nil || cl == nil {
			return err
		}
		*field(e) = cl.Value
		return nil
	}
}

// timeField parses a DATE or DATE-TIME property. A TZID is looked up among the calendar's VTIMEZONE definitions
// in zones first and in the time zone database second. A TZID which cannot be resolved is replaced by UTC.
func timeField(items []Item, zones map[string]*zone) (time.Time, bool, error) {
	cl, err := singleLine(items)
	if err != nil || cl == nil {
		return time.Time{}, false, err
	}

	loc := time.UTC
	var z *zone
	if tzid := cl.Params.First("TZID"); tzid != "" {
		if z = zones[tzid]; z == nil {
			if l, err := time.LoadLocation(strings.TrimPrefix(tzid, "/")); err == nil {
				loc = l
			} else {
				log.Warnf("unknown TZID '%s' in %s, using UTC", tzid, cl.Name)
			}
		}
	}

	t, isDate, err := timestamp.Parse(cl.Value, loc)
	if err != nil {
		return time.Time{}, false, newValueErrorf("illegal %s value %q: %v", cl.Name, cl.Value, err)
	}
	if strings.EqualFold(cl.Params.First("VALUE"), "DATE") && !isDate {
		return time.Time{}, false, newValueErrorf("%s value %q does not match its VALUE parameter", cl.Name, cl.Value)
	}
	if z != nil && !strings.HasSuffix(cl.Value, "Z") {
		t = z.in(t)
	}
	return t, isDate, nil
}

func timeLine(name string, t time.Time, isDate bool) *ContentLine {
	switch {
	case isDate:
		return NewContentLine(name, timestamp.FormatDate(t), &Param{Name: "VALUE", Values: []string{"DATE"}})
	case t.Location() == time.UTC || t.Location() == time.Local:
		return NewContentLine(name, timestamp.FormatUTC(t))
	default:
		return NewContentLine(name, timestamp.FormatLocal(t), &Param{Name: "TZID", Values: []string{t.Location().String()}})
	}
}

// eventFromContainer extracts an event from a VEVENT container. zones holds the VTIMEZONE definitions of the
// enclosing calendar and may be nil.
func eventFromContainer(c *Container, zones map[string]*zone) (*Event, error) {
	e := &Event{zones: zones}
	extra, err := eventRules.Extract(c, e)
	e.zones = nil
	if err != nil {
		return nil, err
	}
	e.extra = cloneItems(extra)
	return e, nil
}

// Container returns the VEVENT representation of e.
func (e *Event) Container() (*Container, error) {
	return eventRules.Output(e)
}

// Extra returns the children of the event which are not mapped to a field.
func (e *Event) Extra() []Item {
	return e.extra
}

// AddExtra appends items which are written after the mapped properties.
func (e *Event) AddExtra(items ...Item) {
	e.extra = append(e.extra, items...)
}

// HasEnd reports whether the event has a DTEND or a DURATION.
func (e *Event) HasEnd() bool {
	return !e.End.IsZero() || e.Duration != 0
}

// EndTime returns DTEND, or DTSTART plus DURATION. An all day event without end lasts one day and any other
// event without end ends when it begins.
func (e *Event) EndTime() time.Time {
	switch {
	case !e.End.IsZero():
		return e.End
	case e.Duration != 0:
		return e.Begin.Add(e.Duration)
	case e.AllDay:
		return e.Begin.AddDate(0, 0, 1)
	}
	return e.Begin
}

// Before orders events by begin time, then by end time.
func (e *Event) Before(o *Event) bool {
	if !e.Begin.Equal(o.Begin) {
		return e.Begin.Before(o.Begin)
	}
	return e.EndTime().Before(o.EndTime())
}

// Intersection returns the time span during which both events take place. ok is false if they do not overlap.
func (e *Event) Intersection(o *Event) (begin, end time.Time, ok bool) {
	begin, end = e.Begin, e.EndTime()
	if o.Begin.After(begin) {
		begin = o.Begin
	}
	if oe := o.EndTime(); oe.Before(end) {
		end = oe
	}
	if !begin.Before(end) {
		return time.Time{}, time.Time{}, false
	}
	return begin, end, true
}

// Clone returns a deep copy of e.
func (e *Event) Clone() *Event {
	r := *e
	r.extra = cloneItems(e.extra)
	return &r
}

// Equal reports whether e and o have equal fields and equal unmapped children.
func (e *Event) Equal(o *Event) bool {
	if e == nil || o == nil {
		return e == o
	}
	if e.UID != o.UID || e.AllDay != o.AllDay || e.Duration != o.Duration || e.Name != o.Name ||
		e.Description != o.Description || e.Location != o.Location || e.URL != o.URL {
		return false
	}
	if !e.Created.Equal(o.Created) || !e.Begin.Equal(o.Begin) || !e.End.Equal(o.End) {
		return false
	}
	if len(e.extra) != len(o.extra) {
		return false
	}
	for i, it := range e.extra {
		if !it.equalItem(o.extra[i]) {
			return false
		}
	}
	return true
}

func (e *Event) String() string {
	return fmt.Sprintf("%s (%s - %s)", e.Name, e.Begin.Format(time.RFC3339), e.EndTime().Format(time.RFC3339))
}

// Events is a list of events.
type Events []*Event

// Sort sorts the events in place using Before.
func (es Events) Sort() {
	sort.SliceStable(es, func(i, j int) bool { return es[i].Before(es[j]) })
}

// Today returns the events taking place on the day of now, in the location of now. If strict is set only
// events which both begin and end within the day are returned, otherwise every event overlapping the day is.
func (es Events) Today(now time.Time, strict bool) Events {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var result Events
	for _, e := range es {
		begin, end := e.Begin, e.EndTime()
		var match bool
		if strict {
			match = !begin.Before(dayStart) && !end.After(dayEnd)
		} else {
			match = begin.Before(dayEnd) && (end.After(dayStart) || (begin.Equal(end) && !begin.Before(dayStart)))
		}
		if match {
			result = append(result, e)
		}
	}
	return result
}
