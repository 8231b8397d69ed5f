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

// Package timestamp converts between time values and the DATE, DATE-TIME and DURATION value types of iCalendar.
package timestamp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout     = "20060102"
	dateTimeLayout = "20060102T150405"
	utcLayout      = "20060102T150405Z"
)

// Parse parses a DATE or DATE-TIME value. Floating date-times and dates are interpreted in loc.
// isDate is true when value is a DATE.
func Parse(value string, loc *time.Location) (t time.Time, isDate bool, err error) {
	if loc == nil {
		loc = time.UTC
	}
	switch {
	case len(value) == len(dateLayout):
		t, err = time.ParseInLocation(dateLayout, value, loc)
		isDate = true
	case strings.HasSuffix(value, "Z"):
		t, err = time.Parse(utcLayout, value)
	default:
		t, err = time.ParseInLocation(dateTimeLayout, value, loc)
	}
	return
}

// FormatDate formats t as a DATE value.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// FormatUTC formats t as a DATE-TIME value in UTC.
func FormatUTC(t time.Time) string {
	return t.UTC().Format(utcLayout)
}

// FormatLocal formats t as a DATE-TIME value without zone designator. It is meant to be combined with a
// TZID parameter naming the location of t.
func FormatLocal(t time.Time) string {
	return t.Format(dateTimeLayout)
}

// ParseDuration parses a DURATION value like "P1W", "-PT15M" or "P1DT2H30M".
func ParseDuration(value string) (time.Duration, error) {
	s := value
	sign := time.Duration(1)
	switch {
	case strings.HasPrefix(s, "-"):
		sign = -1
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if !strings.HasPrefix(s, "P") || len(s) < 3 {
		return 0, fmt.Errorf("illegal duration '%s'", value)
	}
	s = s[1:]

	var d time.Duration
	inTime := false
	for len(s) > 0 {
		if s[0] == 'T' {
			if inTime || len(s) == 1 {
				return 0, fmt.Errorf("illegal duration '%s'", value)
			}
			inTime = true
			s = s[1:]
			continue
		}
		i := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == 0 || i == len(s) {
			return 0, fmt.Errorf("illegal duration '%s'", value)
		}
		n, err := strconv.ParseInt(s[:i], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("illegal duration '%s': %w", value, err)
		}
		var unit time.Duration
		switch {
		case s[i] == 'W' && !inTime:
			unit = 7 * 24 * time.Hour
		case s[i] == 'D' && !inTime:
			unit = 24 * time.Hour
		case s[i] == 'H' && inTime:
			unit = time.Hour
		case s[i] == 'M' && inTime:
			unit = time.Minute
		case s[i] == 'S' && inTime:
			unit = time.Second
		default:
			return 0, fmt.Errorf("illegal duration '%s'", value)
		}
		if n > (math.MaxInt64-int64(d))/int64(unit) {
			return 0, fmt.Errorf("duration '%s' out of range", value)
		}
		d += time.Duration(n) * unit
		s = s[i+1:]
	}
	return sign * d, nil
}

// ParseUTCOffset parses a UTC-OFFSET value like "+0100" or "-053000" and returns the offset in seconds east
// of UTC.
func ParseUTCOffset(value string) (int, error) {
	if (len(value) != 5 && len(value) != 7) || (value[0] != '+' && value[0] != '-') {
		return 0, fmt.Errorf("illegal UTC offset '%s'", value)
	}
	var parts [3]int
	for i := 1; i < len(value); i++ {
		c := value[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("illegal UTC offset '%s'", value)
		}
		parts[(i-1)/2] = parts[(i-1)/2]*10 + int(c-'0')
	}
	if parts[1] > 59 || parts[2] > 59 {
		return 0, fmt.Errorf("illegal UTC offset '%s'", value)
	}
	offset := parts[0]*3600 + parts[1]*60 + parts[2]
	if value[0] == '-' {
		if offset == 0 {
			return 0, fmt.Errorf("illegal UTC offset '%s'", value)
		}
		offset = -offset
	}
	return offset, nil
}

// FormatDuration formats d as a DURATION value with second precision.
func FormatDuration(d time.Duration) string {
	sb := &strings.Builder{}
	if d < 0 {
		sb.WriteByte('-')
		d = -d
	}
	sb.WriteByte('P')

	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second

	if days > 0 {
		fmt.Fprintf(sb, "%dD", days)
	}
	if hours > 0 || minutes > 0 || seconds > 0 || days == 0 {
		sb.WriteByte('T')
		if hours > 0 {
			fmt.Fprintf(sb, "%dH", hours)
		}
		if minutes > 0 {
			fmt.Fprintf(sb, "%dM", minutes)
		}
		if seconds > 0 || (days == 0 && hours == 0 && minutes == 0) {
			fmt.Fprintf(sb, "%dS", seconds)
		}
	}
	return sb.String()
}
