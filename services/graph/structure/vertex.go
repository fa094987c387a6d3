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

import (
	"fmt"
	"sync/atomic"
)

// vertexPropertySeq hands out occurrence identifiers for vertex properties.
var vertexPropertySeq atomic.Int64

// Vertex is a graph vertex. Its identifier and label are fixed at
// construction; properties are multi-valued per key and each occurrence is a
// *VertexProperty.
//
// Not safe for concurrent mutation.
type Vertex struct {
	id    any
	label string
	props []*VertexProperty
}

// NewVertex creates a vertex with the given identifier and label. The
// identifier must be comparable; it is never reassigned.
func NewVertex(id any, label string) *Vertex {
	return &Vertex{id: id, label: label}
}

// ID returns the vertex identifier.
func (v *Vertex) ID() any { return v.id }

// Label returns the vertex label.
func (v *Vertex) Label() string { return v.label }

// Kind returns KindVertex.
func (v *Vertex) Kind() Kind { return KindVertex }

// AddProperty appends a visible property occurrence under key.
func (v *Vertex) AddProperty(key string, value any) *VertexProperty {
	return v.addProperty(key, value, false)
}

// AddHiddenProperty appends a hidden property occurrence under key.
func (v *Vertex) AddHiddenProperty(key string, value any) *VertexProperty {
	return v.addProperty(key, value, true)
}

func (v *Vertex) addProperty(key string, value any, hidden bool) *VertexProperty {
	p := &VertexProperty{
		vertex: v,
		id:     vertexPropertySeq.Add(1),
		key:    key,
		value:  value,
		hidden: hidden,
	}
	v.props = append(v.props, p)
	return p
}

// PropertySlice returns all property occurrences in insertion order, both
// visible and hidden, optionally restricted to keys.
func (v *Vertex) PropertySlice(keys ...string) []Property {
	out := make([]Property, 0, len(v.props))
	for _, p := range v.props {
		if len(keys) == 0 || containsKey(keys, p.key) {
			out = append(out, p)
		}
	}
	return out
}

// Property returns the first visible occurrence under key.
func (v *Vertex) Property(key string) (Property, bool) {
	for _, p := range v.props {
		if p.key == key && !p.hidden {
			return p, true
		}
	}
	return nil, false
}

// VisibleProperties returns the visible occurrences under key in insertion
// order.
func (v *Vertex) VisibleProperties(key string) []*VertexProperty {
	var out []*VertexProperty
	for _, p := range v.props {
		if p.key == key && !p.hidden {
			out = append(out, p)
		}
	}
	return out
}

// HiddenProperties returns the hidden occurrences under key in insertion
// order.
func (v *Vertex) HiddenProperties(key string) []*VertexProperty {
	var out []*VertexProperty
	for _, p := range v.props {
		if p.key == key && p.hidden {
			out = append(out, p)
		}
	}
	return out
}

// RemoveProperties drops every visible occurrence under key.
func (v *Vertex) RemoveProperties(key string) {
	kept := v.props[:0]
	for _, p := range v.props {
		if p.key != key || p.hidden {
			kept = append(kept, p)
		}
	}
	v.props = kept
}

func (v *Vertex) String() string {
	return fmt.Sprintf("v[%v]", v.id)
}
