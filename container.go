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

const (
	begin = "BEGIN"
	end   = "END"
)

// Item is a child of a Container. It is either a *ContentLine or a *Container.
type Item interface {
	key() string
	cloneItem() Item
	equalItem(Item) bool
}

// ItemName returns the name of a content line or container.
func ItemName(item Item) string {
	switch v := item.(type) {
	case *ContentLine:
		return v.Name
	case *Container:
		return v.Name
	}
	return ""
}

// Container is a BEGIN:<Name> ... END:<Name> block. It exclusively owns its items.
type Container struct {
	Name  string
	Items []Item
}

// NewContainer creates a container with the given name and items.
func NewContainer(name string, items ...Item) *Container {
	return &Container{Name: name, Items: items}
}

func (c *Container) Len() int {
	return len(c.Items)
}

// Append adds items at the end of the container.
func (c *Container) Append(items ...Item) {
	c.Items = append(c.Items, items...)
}

// Remove removes item from the container. It returns false if item is not a child of c.
func (c *Container) Remove(item Item) bool {
	for i, it := range c.Items {
		if it == item {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Delete removes all immediate children with the given name. It is case insensitive.
func (c *Container) Delete(name string) {
	k := strings.ToUpper(name)
	var result []Item
	for _, it := range c.Items {
		if it.key() != k {
			result = append(result, it)
		}
	}
	c.Items = result
}

// Has reports whether c has an immediate child with the given name.
func (c *Container) Has(name string) bool {
	k := strings.ToUpper(name)
	for _, it := range c.Items {
		if it.key() == k {
			return true
		}
	}
	return false
}

// Line gets the first content line with the given name. It is case insensitive.
// If there is no such line, Line returns nil.
func (c *Container) Line(name string) *ContentLine {
	k := strings.ToUpper(name)
	for _, it := range c.Items {
		if cl, ok := it.(*ContentLine); ok && cl.key() == k {
			return cl
		}
	}
	return nil
}

// Lines gets all content lines with the given name in order.
func (c *Container) Lines(name string) []*ContentLine {
	k := strings.ToUpper(name)
	var result []*ContentLine
	for _, it := range c.Items {
		if cl, ok := it.(*ContentLine); ok && cl.key() == k {
			result = append(result, cl)
		}
	}
	return result
}

// Containers gets all sub-containers with the given name in order.
func (c *Container) Containers(name string) []*Container {
	k := strings.ToUpper(name)
	var result []*Container
	for _, it := range c.Items {
		if sub, ok := it.(*Container); ok && sub.key() == k {
			result = append(result, sub)
		}
	}
	return result
}

// Index groups the immediate children of c by name in one pass.
func (c *Container) Index() *ChildIndex {
	ix := &ChildIndex{items: make(map[string][]Item)}
	for _, it := range c.Items {
		k := it.key()
		if _, ok := ix.items[k]; !ok {
			ix.names = append(ix.names, k)
		}
		ix.items[k] = append(ix.items[k], it)
	}
	return ix
}

// Clone returns a deep copy of c.
func (c *Container) Clone() *Container {
	r := &Container{Name: c.Name}
	if c.Items != nil {
		r.Items = make([]Item, len(c.Items))
		for i, it := range c.Items {
			r.Items[i] = it.cloneItem()
		}
	}
	return r
}

// Equal reports whether c and o have the same name and structurally equal items in the same order.
func (c *Container) Equal(o *Container) bool {
	if c == nil || o == nil {
		return c == o
	}
	if !strings.EqualFold(c.Name, o.Name) || len(c.Items) != len(o.Items) {
		return false
	}
	for i, it := range c.Items {
		if !it.equalItem(o.Items[i]) {
			return false
		}
	}
	return true
}

// LogicalLines returns the unfolded lines representing c, starting with BEGIN:<Name> and ending with END:<Name>.
func (c *Container) LogicalLines() ([]string, error) {
	return c.appendLogicalLines(nil, defaults.rawValues)
}

func (c *Container) appendLogicalLines(dst []string, rawValues map[string]bool) ([]string, error) {
	if c.Name == "" {
		return dst, newValueErrorf("container has empty name")
	}
	if hasControl(c.Name, false) || strings.ContainsAny(c.Name, "\\;,:") {
		return dst, newValueErrorf("illegal container name %q", c.Name)
	}

	dst = append(dst, begin+":"+c.Name)
	for _, it := range c.Items {
		var err error
		switch v := it.(type) {
		case *ContentLine:
			if k := v.key(); k == begin || k == end {
				return dst, newValueErrorf("property %s in %s would be read as a container marker", v.Name, c.Name)
			}
			var l string
			if l, err = v.serialize(rawValues, true); err == nil {
				dst = append(dst, l)
			}
		case *Container:
			dst, err = v.appendLogicalLines(dst, rawValues)
		}
		if err != nil {
			return dst, err
		}
	}
	return append(dst, end+":"+c.Name), nil
}

// String returns c as folded iCalendar text.
func (c *Container) String() string {
	sb := &strings.Builder{}
	if _, err := NewMarshaler().Marshal(sb, c); err != nil {
		return fmt.Sprintf("<invalid container %s: %v>", c.Name, err)
	}
	return sb.String()
}

func (c *Container) key() string {
	return strings.ToUpper(c.Name)
}

func (c *Container) cloneItem() Item {
	return c.Clone()
}

func (c *Container) equalItem(o Item) bool {
	other, ok := o.(*Container)
	return ok && c.Equal(other)
}

// ChildIndex is a keyed view of the immediate children of a container.
type ChildIndex struct {
	names []string
	items map[string][]Item
}

// Names returns the upper case names of the children in order of first occurrence.
func (ix *ChildIndex) Names() []string {
	return ix.names
}

// Get returns the children with the given name in order. It is case insensitive.
func (ix *ChildIndex) Get(name string) []Item {
	return ix.items[strings.ToUpper(name)]
}

// Count returns the number of children with the given name.
func (ix *ChildIndex) Count(name string) int {
	return len(ix.Get(name))
}
