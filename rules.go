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
	"strings"
)

// Cardinality describes how many times a tag may occur within a container.
type Cardinality int8

const (
	Optional Cardinality = iota // Zero or one occurrence
	Required                    // Exactly one occurrence
	Multiple                    // Any number of occurrences
)

func (c Cardinality) String() string {
	switch c {
	case Optional:
		return "optional"
	case Required:
		return "required"
	case Multiple:
		return "multiple"
	}
	return fmt.Sprintf("Cardinality(%d)", int8(c))
}

// ExtractFunc receives the children matching a rule's tag in document order. For a missing optional tag
// items is empty.
type ExtractFunc[T any] func(target T, items []Item) error

// OutputFunc appends the representation of source to c.
type OutputFunc[T any] func(source T, c *Container) error

type rule[T any] struct {
	tag         string
	cardinality Cardinality
	extract     ExtractFunc[T]
}

// RuleSetBuilder collects extraction and output rules for a domain type. Rules are applied in the order
// they are added.
type RuleSetBuilder[T any] struct {
	name    string
	rules   []rule[T]
	outputs []OutputFunc[T]
}

// NewRuleSet starts building the rules for containers named containerName.
func NewRuleSet[T any](containerName string) *RuleSetBuilder[T] {
	return &RuleSetBuilder[T]{name: containerName}
}

// Extracts registers fn as the handler for children named tag.
func (b *RuleSetBuilder[T]) Extracts(tag string, cardinality Cardinality, fn ExtractFunc[T]) *RuleSetBuilder[T] {
	b.rules = append(b.rules, rule[T]{tag: strings.ToUpper(tag), cardinality: cardinality, extract: fn})
	return b
}

// Outputs registers fn to be run when building a container from a value.
func (b *RuleSetBuilder[T]) Outputs(fn OutputFunc[T]) *RuleSetBuilder[T] {
	b.outputs = append(b.outputs, fn)
	return b
}

// Build returns the immutable rule set. It panics if a tag is registered twice.
func (b *RuleSetBuilder[T]) Build() *RuleSet[T] {
	rs := &RuleSet[T]{
		name:    b.name,
		rules:   append([]rule[T](nil), b.rules...),
		outputs: append([]OutputFunc[T](nil), b.outputs...),
		claimed: make(map[string]bool, len(b.rules)),
	}
	for _, r := range rs.rules {
		if rs.claimed[r.tag] {
			panic(fmt.Sprintf("goical: tag %s registered twice for %s", r.tag, b.name))
		}
		rs.claimed[r.tag] = true
	}
	return rs
}

// RuleSet maps the children of a container to and from a domain type. It is safe for concurrent use.
type RuleSet[T any] struct {
	name    string
	rules   []rule[T]
	outputs []OutputFunc[T]
	claimed map[string]bool
}

// Name returns the name of the containers handled by the rule set.
func (rs *RuleSet[T]) Name() string {
	return rs.name
}

// Tags returns the registered tags in registration order.
func (rs *RuleSet[T]) Tags() []string {
	tags := make([]string, len(rs.rules))
	for i, r := range rs.rules {
		tags[i] = r.tag
	}
	return tags
}

// Extract hands the children of c to the registered handlers. It fails on the first cardinality violation or
// handler error. Children not claimed by any rule are returned in document order.
func (rs *RuleSet[T]) Extract(c *Container, target T) (unused []Item, err error) {
	if !strings.EqualFold(c.Name, rs.name) {
		return nil, newStructuralErrorf(0, c.Name, "expected %s, got %s", rs.name, c.Name)
	}

	ix := c.Index()
	for _, r := range rs.rules {
		items := ix.Get(r.tag)
		if err := checkCardinality(rs.name, r.tag, r.cardinality, len(items)); err != nil {
			return nil, err
		}
		if err := r.extract(target, items); err != nil {
			return nil, err
		}
	}

	for _, it := range c.Items {
		if !rs.claimed[it.key()] {
			unused = append(unused, it)
		}
	}
	return unused, nil
}

// Check returns all cardinality violations of c, or nil if there are none.
func (rs *RuleSet[T]) Check(c *Container) error {
	if !strings.EqualFold(c.Name, rs.name) {
		return newStructuralErrorf(0, c.Name, "expected %s, got %s", rs.name, c.Name)
	}

	var errs multiErr
	ix := c.Index()
	for _, r := range rs.rules {
		if err := checkCardinality(rs.name, r.tag, r.cardinality, ix.Count(r.tag)); err != nil {
			errs = append(errs, err)
		}
	}
	return errs.errOrNil()
}

// Output creates a new container and runs the output functions in registration order.
func (rs *RuleSet[T]) Output(source T) (*Container, error) {
	c := NewContainer(rs.name)
	for _, fn := range rs.outputs {
		if err := fn(source, c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func checkCardinality(container, tag string, cardinality Cardinality, count int) error {
	switch {
	case cardinality == Required && count == 0:
		return newCardinalityError(container, tag, "missing required")
	case cardinality != Multiple && count > 1:
		return newCardinalityError(container, tag, "more than one")
	}
	return nil
}

// singleLine returns the content line among items, or nil if items is empty. Items must not hold more than
// one element.
func singleLine(items []Item) (*ContentLine, error) {
	if len(items) == 0 {
		return nil, nil
	}
	cl, ok := items[0].(*ContentLine)
	if !ok {
		return nil, fmt.Errorf("goical: expected property %s, got component", ItemName(items[0]))
	}
	return cl, nil
}

// containersOf returns the containers among items.
func containersOf(items []Item) ([]*Container, error) {
	result := make([]*Container, 0, len(items))
	for _, it := range items {
		c, ok := it.(*Container)
		if !ok {
			return nil, fmt.Errorf("goical: expected component %s, got property", ItemName(it))
		}
		result = append(result, c)
	}
	return result, nil
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	r := make([]Item, len(items))
	for i, it := range items {
		r[i] = it.cloneItem()
	}
	return r
}
