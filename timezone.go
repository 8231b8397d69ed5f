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
	"fmt"
	"sort"
	"time"

	"github.com/nlnwa/goical/internal/timestamp"
	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"
)

// zone is a VTIMEZONE reduced to the fixed offsets of its STANDARD and DAYLIGHT observances. All times are
// local wall clock times stored as UTC.
type zone struct {
	id          string
	observances []observance // sorted by start
}

type observance struct {
	start  time.Time    // DTSTART, the first onset
	rule   *rrule.RRule // later onsets, nil if the observance has no RRULE
	offset int          // TZOFFSETTO in seconds east of UTC
}

// zonesOf maps the TZID of each VTIMEZONE to its zone. Definitions without a TZID or without a usable
// observance are left out.
func zonesOf(tzs []*Container) map[string]*zone {
	zones := make(map[string]*zone, len(tzs))
	for _, tz := range tzs {
		id := tz.Line("TZID")
		if id == nil || id.Value == "" {
			continue
		}
		z := &zone{id: id.Value}
		for _, kind := range []string{"STANDARD", "DAYLIGHT"} {
			for _, c := range tz.Containers(kind) {
				o, err := observanceOf(c)
				if err != nil {
					log.Warnf("ignoring %s in VTIMEZONE '%s': %v", kind, z.id, err)
					continue
				}
				z.observances = append(z.observances, o)
			}
		}
		if len(z.observances) == 0 {
			continue
		}
		sort.SliceStable(z.observances, func(i, j int) bool {
			return z.observances[i].start.Before(z.observances[j].start)
		})
		zones[z.id] = z
	}
	return zones
}

func observanceOf(c *Container) (observance, error) {
	to := c.Line("TZOFFSETTO")
	if to == nil {
		return observance{}, errors.New("missing TZOFFSETTO")
	}
	offset, err := timestamp.ParseUTCOffset(to.Value)
	if err != nil {
		return observance{}, err
	}
	o := observance{offset: offset}
	if cl := c.Line("DTSTART"); cl != nil {
		if o.start, _, err = timestamp.Parse(cl.Value, time.UTC); err != nil {
			return observance{}, err
		}
	}
	if cl := c.Line("RRULE"); cl != nil {
		if o.rule, err = rrule.StrToRRule(cl.Value); err != nil {
			return observance{}, fmt.Errorf("illegal RRULE '%s': %w", cl.Value, err)
		}
		o.rule.DTStart(o.start)
	}
	return o, nil
}

// onset returns the last time o took effect at or before wall. ok is false if o starts after wall.
func (o observance) onset(wall time.Time) (t time.Time, ok bool) {
	if o.start.After(wall) {
		return time.Time{}, false
	}
	t = o.start
	if o.rule != nil {
		if r := o.rule.Before(wall, true); r.After(t) {
			t = r
		}
	}
	return t, true
}

// location returns the offset in effect at wall. That is the observance with the latest onset not after wall,
// or the earliest observance if every one starts later.
func (z *zone) location(wall time.Time) *time.Location {
	current := z.observances[0]
	var latest time.Time
	for _, o := range z.observances {
		if t, ok := o.onset(wall); ok && !t.Before(latest) {
			current, latest = o, t
		}
	}
	return time.FixedZone(z.id, current.offset)
}

// in moves the wall clock time t into z.
func (z *zone) in(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), z.location(t))
}
