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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func observanceBlock(kind, start, to, rule string) *Container {
	c := NewContainer(kind)
	if start != "" {
		c.Append(NewContentLine("DTSTART", start))
	}
	if to != "" {
		c.Append(NewContentLine("TZOFFSETTO", to))
	}
	if rule != "" {
		c.Append(NewContentLine("RRULE", rule))
	}
	return c
}

func TestZonesOf(t *testing.T) {
	zones := zonesOf([]*Container{
		NewContainer("VTIMEZONE",
			NewContentLine("TZID", "Two Seasons"),
			observanceBlock("DAYLIGHT", "20200329T020000", "+0200", ""),
			observanceBlock("STANDARD", "20201025T030000", "+0100", ""),
			observanceBlock("STANDARD", "19700101T000000", "+0100", ""),
		),
		NewContainer("VTIMEZONE",
			NewContentLine("TZID", "Yearly"),
			observanceBlock("STANDARD", "19701025T030000", "+0100", "FREQ=YEARLY;BYMONTH=10;BYDAY=-1SU"),
			observanceBlock("DAYLIGHT", "19700329T020000", "+0200", "FREQ=YEARLY;BYMONTH=3;BYDAY=-1SU"),
		),
		NewContainer("VTIMEZONE", NewContentLine("TZID", "Empty")),
		NewContainer("VTIMEZONE", observanceBlock("STANDARD", "", "+0100", "")),
		NewContainer("VTIMEZONE",
			NewContentLine("TZID", "Broken"),
			observanceBlock("STANDARD", "19700101T000000", "one", ""),
			observanceBlock("STANDARD", "19700101T000000", "", ""),
			observanceBlock("STANDARD", "19700101T000000", "+0100", "FREQ=SOMETIMES"),
		),
		NewContainer("VTIMEZONE", NewContentLine("TZID", "No Start"), observanceBlock("STANDARD", "", "-0330", "")),
	})
	require.Len(t, zones, 3)
	require.Contains(t, zones, "Two Seasons")
	require.Contains(t, zones, "Yearly")
	require.Contains(t, zones, "No Start")

	wall := func(year, month, day, hour int) time.Time {
		return time.Date(year, time.Month(month), day, hour, 0, 0, 0, time.UTC)
	}
	tests := []struct {
		name       string
		zone       string
		wall       time.Time
		wantOffset int
	}{
		{"winter", "Two Seasons", wall(2020, 1, 10, 9), 3600},
		{"summer", "Two Seasons", wall(2020, 7, 1, 9), 7200},
		{"at change", "Two Seasons", wall(2020, 3, 29, 2), 7200},
		{"after summer", "Two Seasons", wall(2020, 12, 1, 9), 3600},
		{"summer without rule", "Two Seasons", wall(2021, 7, 1, 9), 3600},
		{"before first observance", "Two Seasons", wall(1960, 1, 1, 0), 3600},
		{"yearly winter", "Yearly", wall(2020, 1, 10, 9), 3600},
		{"yearly summer", "Yearly", wall(2021, 7, 1, 9), 7200},
		{"yearly day before standard", "Yearly", wall(2020, 10, 24, 12), 7200},
		{"yearly at standard", "Yearly", wall(2020, 10, 25, 3), 3600},
		{"yearly at daylight", "Yearly", wall(2020, 3, 29, 2), 7200},
		{"no start", "No Start", wall(2020, 1, 1, 0), -(3*3600 + 30*60)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := zones[tt.zone].in(tt.wall)
			name, offset := got.Zone()
			assert.Equal(t, tt.zone, name)
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wall.Hour(), got.Hour())
			assert.Equal(t, tt.wall.Day(), got.Day())
		})
	}
}
