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
	"io"
	"strings"
)

const (
	// DefaultProductID is written as PRODID when a calendar has no creator.
	DefaultProductID = "-//nlnwa//goical//EN"
	// DefaultVersion is the iCalendar version written when a calendar has none.
	DefaultVersion = "2.0"
)

// Calendar is a VCALENDAR component.
type Calendar struct {
	Creator   string       // PRODID
	Version   string       // VERSION, the maximum version if a range is given
	Scale     *ContentLine // CALSCALE, nil if absent
	Method    *ContentLine // METHOD, nil if absent
	Timezones []*Container // VTIMEZONE definitions, kept verbatim
	Events    Events

	extra []Item
}

// NewCalendar creates a calendar holding events with the default product id and version.
func NewCalendar(events ...*Event) *Calendar {
	return &Calendar{
		Creator: DefaultProductID,
		Version: DefaultVersion,
		Events:  events,
	}
}

var calendarRules = NewRuleSet[*Calendar]("VCALENDAR").
	Extracts("PRODID", Required, func(cal *Calendar, items []Item) error {
		cl, err := singleLine(items)
		if err != nil {
			return err
		}
		cal.Creator = cl.Value
		return nil
	}).
	Extracts("VERSION", Required, func(cal *Calendar, items []Item) error {
		cl, err := singleLine(items)
		if err != nil {
			return err
		}
		v := cl.Value
		if i := strings.LastIndexByte(v, ';'); i >= 0 {
			v = v[i+1:]
		}
		cal.Version = v
		return nil
	}).
	Extracts("CALSCALE", Optional, func(cal *Calendar, items []Item) error {
		cl, err := singleLine(items)
		if cl != nil {
			cal.Scale = cl.Clone()
		}
		return err
	}).
	Extracts("METHOD", Optional, func(cal *Calendar, items []Item) error {
		cl, err := singleLine(items)
		if cl != nil {
			cal.Method = cl.Clone()
		}
		return err
	}).
	Extracts("VTIMEZONE", Multiple, func(cal *Calendar, items []Item) error {
		tzs, err := containersOf(items)
		if err != nil {
			return err
		}
		for _, tz := range tzs {
			cal.Timezones = append(cal.Timezones, tz.Clone())
		}
		return nil
	}).
	Extracts("VEVENT", Multiple, func(cal *Calendar, items []Item) error {
		cs, err := containersOf(items)
		if err != nil {
			return err
		}
		zones := zonesOf(cal.Timezones)
		for _, c := range cs {
			e, err := eventFromContainer(c, zones)
			if err != nil {
				return err
			}
			cal.Events = append(cal.Events, e)
		}
		return nil
	}).
	Outputs(func(cal *Calendar, c *Container) error {
		prodID := cal.Creator
		if prodID == "" {
			prodID = DefaultProductID
		}
		version := cal.Version
		if version == "" {
			version = DefaultVersion
		}
		c.Append(NewContentLine("PRODID", prodID), NewContentLine("VERSION", version))
		for _, cl := range []*ContentLine{cal.Scale, cal.Method} {
			if cl != nil {
				cl = cl.Clone()
				cl.Value = strings.ToUpper(cl.Value)
				c.Append(cl)
			}
		}
		for _, tz := range cal.Timezones {
			c.Append(tz.Clone())
		}
		for _, e := range cal.Events {
			ec, err := e.Container()
			if err != nil {
				return err
			}
			c.Append(ec)
		}
		c.Append(cloneItems(cal.extra)...)
		return nil
	}).
	Build()

// FromContainer extracts a calendar from a VCALENDAR container. The container is not modified.
func FromContainer(c *Container) (*Calendar, error) {
	cal := &Calendar{}
	extra, err := calendarRules.Extract(c, cal)
	if err != nil {
		return nil, err
	}
	cal.extra = cloneItems(extra)
	return cal, nil
}

// ParseCalendars parses all calendars in r.
func ParseCalendars(r io.Reader, opts ...Option) ([]*Calendar, error) {
	containers, err := NewUnmarshaler(opts...).Unmarshal(r)
	if err != nil {
		return nil, err
	}
	cals := make([]*Calendar, 0, len(containers))
	for _, c := range containers {
		cal, err := FromContainer(c)
		if err != nil {
			return nil, err
		}
		cals = append(cals, cal)
	}
	return cals, nil
}

// ParseCalendar parses r which must hold exactly one calendar.
func ParseCalendar(r io.Reader, opts ...Option) (*Calendar, error) {
	cals, err := ParseCalendars(r, opts...)
	if err != nil {
		return nil, err
	}
	if len(cals) != 1 {
		return nil, fmt.Errorf("goical: expected exactly one calendar, found %d", len(cals))
	}
	return cals[0], nil
}

// CheckCalendar reports every cardinality violation in a VCALENDAR container and its events.
func CheckCalendar(c *Container) error {
	var errs multiErr
	if err := calendarRules.Check(c); err != nil {
		if m, ok := err.(multiErr); ok {
			errs = append(errs, m...)
		} else {
			return err
		}
	}
	for _, ev := range c.Containers("VEVENT") {
		if err := eventRules.Check(ev); err != nil {
			errs = append(errs, err.(multiErr)...)
		}
	}
	return errs.errOrNil()
}

// Container returns the VCALENDAR representation of cal.
func (cal *Calendar) Container() (*Container, error) {
	return calendarRules.Output(cal)
}

// WriteTo writes cal as folded iCalendar text.
func (cal *Calendar) WriteTo(w io.Writer) (int64, error) {
	c, err := cal.Container()
	if err != nil {
		return 0, err
	}
	return NewMarshaler().Marshal(w, c)
}

func (cal *Calendar) String() string {
	sb := &strings.Builder{}
	if _, err := cal.WriteTo(sb); err != nil {
		return fmt.Sprintf("<invalid calendar: %v>", err)
	}
	return sb.String()
}

// Extra returns the children of the calendar which are not mapped to a field.
func (cal *Calendar) Extra() []Item {
	return cal.extra
}

// TimezoneIDs returns the TZID of every VTIMEZONE in order.
func (cal *Calendar) TimezoneIDs() []string {
	var ids []string
	for _, tz := range cal.Timezones {
		if cl := tz.Line("TZID"); cl != nil {
			ids = append(ids, cl.Value)
		}
	}
	return ids
}

// Clone returns a deep copy of cal.
func (cal *Calendar) Clone() *Calendar {
	r := &Calendar{Creator: cal.Creator, Version: cal.Version, extra: cloneItems(cal.extra)}
	if cal.Scale != nil {
		r.Scale = cal.Scale.Clone()
	}
	if cal.Method != nil {
		r.Method = cal.Method.Clone()
	}
	for _, tz := range cal.Timezones {
		r.Timezones = append(r.Timezones, tz.Clone())
	}
	for _, e := range cal.Events {
		r.Events = append(r.Events, e.Clone())
	}
	return r
}

// Equal reports whether cal and o have equal properties, timezones and events in the same order.
func (cal *Calendar) Equal(o *Calendar) bool {
	if cal == nil || o == nil {
		return cal == o
	}
	if cal.Creator != o.Creator || cal.Version != o.Version || !cal.Scale.Equal(o.Scale) || !cal.Method.Equal(o.Method) {
		return false
	}
	if len(cal.Timezones) != len(o.Timezones) || len(cal.Events) != len(o.Events) || len(cal.extra) != len(o.extra) {
		return false
	}
	for i, tz := range cal.Timezones {
		if !tz.Equal(o.Timezones[i]) {
			return false
		}
	}
	for i, e := range cal.Events {
		if !e.Equal(o.Events[i]) {
			return false
		}
	}
	for i, it := range cal.extra {
		if !it.equalItem(o.extra[i]) {
			return false
		}
	}
	return true
}

// Merge returns a new calendar with the properties of cal and the events of both calendars. Timezones of o
// are added unless cal already defines the same TZID.
func (cal *Calendar) Merge(o *Calendar) *Calendar {
	r := cal.Clone()
	known := make(map[string]bool)
	for _, id := range r.TimezoneIDs() {
		known[id] = true
	}
	for _, tz := range o.Timezones {
		if cl := tz.Line("TZID"); cl != nil && known[cl.Value] {
			continue
		}
		r.Timezones = append(r.Timezones, tz.Clone())
	}
	for _, e := range o.Events {
		r.Events = append(r.Events, e.Clone())
	}
	return r
}
