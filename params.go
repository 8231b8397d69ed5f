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

// Param is a named parameter of a content line with one or more values.
type Param struct {
	Name   string
	Values []string
}

// Params is an ordered set of parameters. Names are case insensitive and unique.
type Params []*Param

func (p Params) find(name string) *Param {
	for _, param := range p {
		if strings.EqualFold(param.Name, name) {
			return param
		}
	}
	return nil
}

// Get gets the values associated with the given name. It is case insensitive.
// If the name doesn't exist, Get returns nil.
func (p Params) Get(name string) []string {
	if param := p.find(name); param != nil {
		return param.Values
	}
	return nil
}

// First gets the first value associated with the given name or "" if there is none.
func (p Params) First(name string) string {
	if v := p.Get(name); len(v) > 0 {
		return v[0]
	}
	return ""
}

func (p Params) Has(name string) bool {
	return p.find(name) != nil
}

// Names returns the parameter names in declaration order.
func (p Params) Names() []string {
	names := make([]string, len(p))
	for i, param := range p {
		names[i] = param.Name
	}
	return names
}

// Add appends values to the named parameter, creating it if it doesn't exist.
func (p *Params) Add(name string, values ...string) {
	if param := p.find(name); param != nil {
		param.Values = append(param.Values, values...)
		return
	}
	*p = append(*p, &Param{Name: name, Values: append([]string(nil), values...)})
}

// Set replaces the values of the named parameter, keeping its position if it exists.
func (p *Params) Set(name string, values ...string) {
	if param := p.find(name); param != nil {
		param.Values = append([]string(nil), values...)
		return
	}
	p.Add(name, values...)
}

func (p *Params) Delete(name string) {
	var result Params
	for _, param := range *p {
		if !strings.EqualFold(param.Name, name) {
			result = append(result, param)
		}
	}
	*p = result
}

func (p Params) clone() Params {
	if p == nil {
		return nil
	}
	r := make(Params, len(p))
	for i, param := range p {
		r[i] = &Param{Name: param.Name, Values: append([]string(nil), param.Values...)}
	}
	return r
}

// equal compares two parameter sets regardless of declaration order.
func (p Params) equal(o Params) bool {
	if len(p) != len(o) {
		return false
	}
	for _, param := range p {
		other := o.find(param.Name)
		if other == nil || len(other.Values) != len(param.Values) {
			return false
		}
		for i, v := range param.Values {
			if other.Values[i] != v {
				return false
			}
		}
	}
	return true
}
