// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package structure

import "fmt"

// Property is a key/value attached to exactly one Element.
//
// Two implementations exist: the flat property used by edges and for the
// nested level of vertex properties, and *VertexProperty, which is itself an
// Element.
type Property interface {
	// Key returns the property key.
	Key() string

	// Value returns the property value.
	Value() any

	// IsHidden reports whether the property lives in the hidden namespace.
	IsHidden() bool

	// Element returns the owning element.
	Element() Element
}

// elementProperty is the single-valued property variant used by edges and by
// the nested level of vertex properties.
type elementProperty struct {
	owner  Element
	key    string
	value  any
	hidden bool
}

func (p *elementProperty) Key() string    { return p.key }
func (p *elementProperty) Value() any     { return p.value }
func (p *elementProperty) IsHidden() bool { return p.hidden }
func (p *elementProperty) Element() Element {
	return p.owner
}

func (p *elementProperty) String() string {
	if p.hidden {
		return fmt.Sprintf("hp[%s->%v]", p.key, p.value)
	}
	return fmt.Sprintf("p[%s->%v]", p.key, p.value)
}

// VertexProperty is one occurrence of a vertex property. Vertex properties
// are multi-valued per key, and each occurrence is a first-class element that
// may carry one level of nested properties of its own.
//
// Nesting stops there: the nested properties are flat key/values and cannot
// carry further properties.
type VertexProperty struct {
	vertex *Vertex
	id     any
	key    string
	value  any
	hidden bool
	nested []*elementProperty
}

// ID returns the occurrence identifier.
func (p *VertexProperty) ID() any { return p.id }

// Label returns the property key; a vertex property is labeled by its key.
func (p *VertexProperty) Label() string { return p.key }

// Kind returns KindVertexProperty.
func (p *VertexProperty) Kind() Kind { return KindVertexProperty }

// Key returns the property key.
func (p *VertexProperty) Key() string { return p.key }

// Value returns the property value.
func (p *VertexProperty) Value() any { return p.value }

// IsHidden reports whether the occurrence lives in the hidden namespace.
func (p *VertexProperty) IsHidden() bool { return p.hidden }

// Element returns the owning vertex.
func (p *VertexProperty) Element() Element { return p.vertex }

// Vertex returns the owning vertex with its concrete type.
func (p *VertexProperty) Vertex() *Vertex { return p.vertex }

// Set attaches a nested visible property to this occurrence, replacing any
// existing nested property under the same key.
func (p *VertexProperty) Set(key string, value any) Property {
	for _, n := range p.nested {
		if n.key == key && !n.hidden {
			n.value = value
			return n
		}
	}
	n := &elementProperty{owner: p, key: key, value: value}
	p.nested = append(p.nested, n)
	return n
}

// PropertySlice returns the nested properties in insertion order, optionally
// restricted to keys.
func (p *VertexProperty) PropertySlice(keys ...string) []Property {
	out := make([]Property, 0, len(p.nested))
	for _, n := range p.nested {
		if len(keys) == 0 || containsKey(keys, n.key) {
			out = append(out, n)
		}
	}
	return out
}

// Property returns the first visible nested property under key.
func (p *VertexProperty) Property(key string) (Property, bool) {
	for _, n := range p.nested {
		if n.key == key && !n.hidden {
			return n, true
		}
	}
	return nil, false
}

func (p *VertexProperty) String() string {
	if p.hidden {
		return fmt.Sprintf("hvp[%s->%v]", p.key, p.value)
	}
	return fmt.Sprintf("vp[%s->%v]", p.key, p.value)
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
