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

import "strings"

// crlfJoin joins lines with CRLF, including a trailing CRLF.
func crlfJoin(lines ...string) string {
	return strings.Join(lines, "\r\n") + "\r\n"
}

// A calendar with a folded description, a timezone, an alarm and an X- property.
var calFull = crlfJoin(
	"BEGIN:VCALENDAR",
	"PRODID:-//Example Corp.//CalDAV Client//EN",
	"VERSION:2.0",
	"CALSCALE:gregorian",
	"X-WR-CALNAME:Team",
	"BEGIN:VTIMEZONE",
	"TZID:Europe/Oslo",
	"BEGIN:STANDARD",
	"DTSTART:19701025T030000",
	"TZOFFSETFROM:+0200",
	"TZOFFSETTO:+0100",
	"RRULE:FREQ=YEARLY;BYMONTH=10;BYDAY=-1SU",
	"END:STANDARD",
	"END:VTIMEZONE",
	"BEGIN:VEVENT",
	"UID:20200105T104425-1@example.com",
	"DTSTAMP:20200105T104425Z",
	"DTSTART;TZID=Europe/Oslo:20200110T090000",
	"DTEND;TZID=Europe/Oslo:20200110T100000",
	"SUMMARY:Weekly meeting\\, room 1",
	"DESCRIPTION:Lorem ipsum dolor sit amet\\, consectetur adipiscing elit. Sed v",
	" itae facilisis enim. Morbi blandit et lectus venenatis tristique.",
	"LOCATION:Oslo",
	"URL:https://example.com/events/1",
	"X-COLOR:red",
	"BEGIN:VALARM",
	"ACTION:DISPLAY",
	"TRIGGER:-PT15M",
	"END:VALARM",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:20200105T104425-2@example.com",
	"DTSTART;VALUE=DATE:20200111",
	"SUMMARY:Holiday",
	"END:VEVENT",
	"END:VCALENDAR",
)

const calFullDescription = "Lorem ipsum dolor sit amet, consectetur adipiscing elit. Sed vitae facilisis enim. " +
	"Morbi blandit et lectus venenatis tristique."

// The smallest calendar satisfying the calendar rules.
var calMinimal = crlfJoin(
	"BEGIN:VCALENDAR",
	"VERSION:2.0",
	"PRODID:-//minimal//EN",
	"END:VCALENDAR",
)

// A calendar without PRODID and with an event holding two summaries.
var calInvalid = crlfJoin(
	"BEGIN:VCALENDAR",
	"VERSION:2.0",
	"BEGIN:VEVENT",
	"UID:1",
	"SUMMARY:a",
	"SUMMARY:b",
	"END:VEVENT",
	"END:VCALENDAR",
)
