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

/*
Package goical allows parsing, creating and validating iCalendar data.

# iCalendar

iCalendar (RFC 5545) is a line based text format. Each logical line is a content line of the form
NAME;PARAM=VALUE:VALUE. Long lines are folded into several physical lines where every continuation line starts
with a space or a tab. Content lines are grouped into components delimited by BEGIN:<name> and END:<name>.

# Parse iCalendar data

The [Unfolder] turns physical lines into logical lines and [ParseContentLine] splits a logical line into a
[ContentLine]. The [Unmarshaler] combines the two and builds a tree of [Container] values. It is initialized with
[NewUnmarshaler].

[ParseCalendars] and [ParseCalendar] go one step further and map the tree to [Calendar] and [Event] values.

# Write iCalendar data

The [Marshaler] writes containers as folded text with CRLF line endings. It is initialized with [NewMarshaler].
[Calendar.WriteTo] does the same for a calendar.

# Rules

The mapping between a container and a domain type is described by a [RuleSet], built with [NewRuleSet]. A rule set
declares for each property or component how many times it may occur and how it is extracted. Children without a
rule are kept and written back unchanged.
*/
package goical
