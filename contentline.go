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
	"strings"
)

const dquote = '"'

// ContentLine is a single NAME;PARAM=VALUE:VALUE record.
//
// Name and parameter names are case insensitive, but keep the case they were written with.
// Value holds the unescaped content.
type ContentLine struct {
	Name   string
	Params Params
	Value  string
}

// NewContentLine creates a content line with the given name, value and parameters.
func NewContentLine(name, value string, params ...*Param) *ContentLine {
	return &ContentLine{Name: name, Value: value, Params: params}
}

// ParseContentLine parses a logical line.
func ParseContentLine(line string) (*ContentLine, error) {
	return parseContentLine(line, defaults.rawValues)
}

func parseContentLine(line string, rawValues map[string]bool) (*ContentLine, error) {
	i := scanName(line)
	if i >= len(line) {
		return nil, newParseError(line, "missing ':'")
	}
	cl := &ContentLine{Name: line[:i]}

	for line[i] == ';' {
		param, next, err := parseParam(line, i+1)
		if err != nil {
			return nil, err
		}
		cl.Params.Add(param.Name, param.Values...)
		i = next
		if i >= len(line) {
			return nil, newParseError(line, "missing ':'")
		}
	}

	// line[i] is the delimiting colon
	value := line[i+1:]
	if rawValues[cl.key()] {
		cl.Value = value
	} else {
		cl.Value = unescape(value)
	}
	return cl, nil
}

// scanName returns the offset of the first unescaped ';' or ':'.
func scanName(line string) int {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case ';', ':':
			return i
		}
	}
	return len(line)
}

// parseParam parses KEY=VALUE[,VALUE]* starting at offset start. It returns the offset of the
// delimiter following the parameter which is either ';', ':' or the end of line.
func parseParam(line string, start int) (*Param, int, error) {
	j := start
	for j < len(line) && line[j] != '=' {
		if line[j] == ';' || line[j] == ':' {
			if j == start {
				return nil, 0, newParseError(line, "dangling ';'")
			}
			return nil, 0, newParseErrorf(line, "missing '=' in parameter '%s'", line[start:j])
		}
		j++
	}
	if j >= len(line) {
		if j == start {
			return nil, 0, newParseError(line, "dangling ';'")
		}
		return nil, 0, newParseErrorf(line, "missing '=' in parameter '%s'", line[start:j])
	}
	if j == start {
		return nil, 0, newParseError(line, "missing parameter name")
	}

	param := &Param{Name: line[start:j]}
	j++
	for {
		v, next, err := scanParamValue(line, j)
		if err != nil {
			return nil, 0, err
		}
		param.Values = append(param.Values, v)
		j = next
		if j < len(line) && line[j] == ',' {
			j++
			continue
		}
		return param, j, nil
	}
}

// scanParamValue reads one parameter value starting at offset start. The value is either quoted or runs
// until the next unescaped ',', ';' or ':'.
func scanParamValue(line string, start int) (string, int, error) {
	if start < len(line) && line[start] == dquote {
		k := start + 1
		for k < len(line) && line[k] != dquote {
			if line[k] == '\\' {
				k++
			}
			k++
		}
		if k >= len(line) {
			return "", 0, newParseError(line, "unterminated quoted parameter value")
		}
		value := unescape(line[start+1 : k])
		k++
		if k < len(line) && !isParamDelimiter(line[k]) {
			return "", 0, newParseErrorf(line, "unexpected character '%c' after quoted parameter value", line[k])
		}
		return value, k, nil
	}

	k := start
	for k < len(line) && !isParamDelimiter(line[k]) {
		if line[k] == '\\' {
			k++
		}
		k++
	}
	if k > len(line) {
		k = len(line)
	}
	return unescape(line[start:k]), k, nil
}

func isParamDelimiter(c byte) bool {
	return c == ',' || c == ';' || c == ':'
}

// unescape resolves \\, \;, \, and \n (or \N). Other backslashes are kept as they are.
func unescape(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\', ';', ',':
				b.WriteByte(s[i+1])
				i++
				continue
			case 'n', 'N':
				b.WriteByte('\n')
				i++
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

var escaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)

// hasControl reports whether s holds a control character other than tab and, if allowNewline is set, newline.
func hasControl(s string, allowNewline bool) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\t' || (c == '\n' && allowNewline) {
			continue
		}
		if c < 0x20 || c == 0x7f {
			return true
		}
	}
	return false
}

// Serialize returns the logical line representing c. A *ValueError is returned if c cannot be represented.
func (c *ContentLine) Serialize() (string, error) {
	return c.serialize(defaults.rawValues, true)
}

// String returns the logical line representing c without validating it. Use Serialize to detect
// values which cannot be represented.
func (c *ContentLine) String() string {
	s, _ := c.serialize(defaults.rawValues, false)
	return s
}

func (c *ContentLine) serialize(rawValues map[string]bool, validate bool) (string, error) {
	raw := rawValues[c.key()]
	if validate {
		if err := c.validate(raw); err != nil {
			return "", err
		}
	}

	sb := &strings.Builder{}
	sb.WriteString(c.Name)
	for _, p := range c.Params {
		sb.WriteByte(';')
		sb.WriteString(p.Name)
		sb.WriteByte('=')
		for i, v := range p.Values {
			if i > 0 {
				sb.WriteByte(',')
			}
			v = escaper.Replace(v)
			if strings.IndexByte(v, ':') >= 0 {
				sb.WriteByte(dquote)
				sb.WriteString(v)
				sb.WriteByte(dquote)
			} else {
				sb.WriteString(v)
			}
		}
	}
	sb.WriteByte(':')
	if raw {
		sb.WriteString(c.Value)
	} else {
		sb.WriteString(escaper.Replace(c.Value))
	}
	return sb.String(), nil
}

func (c *ContentLine) validate(raw bool) error {
	if !validName(c.Name) {
		return newValueErrorf("illegal property name %q", c.Name)
	}
	for _, p := range c.Params {
		if p.Name == "" || strings.ContainsAny(p.Name, ";:,=\"") || hasControl(p.Name, false) {
			return newValueErrorf("illegal parameter name %q in property %s", p.Name, c.Name)
		}
		if len(p.Values) == 0 {
			return newValueErrorf("parameter %s in property %s has no values", p.Name, c.Name)
		}
		for _, v := range p.Values {
			if strings.IndexByte(v, dquote) >= 0 || hasControl(v, true) {
				return newValueErrorf("illegal value %q in parameter %s of property %s", v, p.Name, c.Name)
			}
		}
	}
	if hasControl(c.Value, !raw) {
		return newValueErrorf("illegal control character in value of property %s", c.Name)
	}
	return nil
}

// validName reports whether name is read back unchanged by the parser. An empty name is allowed.
func validName(name string) bool {
	if name != "" && (name[0] == sp || name[0] == ht) {
		return false
	}
	return !strings.ContainsAny(name, ";:\\\",=") && !hasControl(name, false)
}

// CanonicalName returns the upper case name.
func (c *ContentLine) CanonicalName() string {
	return strings.ToUpper(c.Name)
}

// Equal reports whether c and o have the same name, parameters and value.
// Names are compared case insensitively and parameter order is ignored.
func (c *ContentLine) Equal(o *ContentLine) bool {
	if c == nil || o == nil {
		return c == o
	}
	return strings.EqualFold(c.Name, o.Name) && c.Value == o.Value && c.Params.equal(o.Params)
}

// Clone returns a deep copy of c.
func (c *ContentLine) Clone() *ContentLine {
	return &ContentLine{Name: c.Name, Params: c.Params.clone(), Value: c.Value}
}

func (c *ContentLine) key() string {
	return strings.ToUpper(c.Name)
}

func (c *ContentLine) cloneItem() Item {
	return c.Clone()
}

func (c *ContentLine) equalItem(o Item) bool {
	other, ok := o.(*ContentLine)
	return ok && c.Equal(other)
}
