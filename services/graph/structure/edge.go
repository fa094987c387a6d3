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

// Edge is a directed edge between two vertices. Identifier, label, and both
// endpoints are fixed at construction. Edge properties are single-valued per
// key within each namespace.
//
// Not safe for concurrent mutation.
type Edge struct {
	id    any
	label string
	out   *Vertex
	in    *Vertex
	props []*elementProperty
}

// NewEdge creates an edge from out to in with the given identifier and label.
func NewEdge(id any, label string, out, in *Vertex) *Edge {
	return &Edge{id: id, label: label, out: out, in: in}
}

// ID returns the edge identifier.
func (e *Edge) ID() any { return e.id }

// Label returns the edge label.
func (e *Edge) Label() string { return e.label }

// Kind returns KindEdge.
func (e *Edge) Kind() Kind { return KindEdge }

// OutVertex returns the vertex the edge leaves.
func (e *Edge) OutVertex() *Vertex { return e.out }

// InVertex returns the vertex the edge arrives at.
func (e *Edge) InVertex() *Vertex { return e.in }

// SetProperty sets the visible property under key, replacing any existing
// visible value.
func (e *Edge) SetProperty(key string, value any) Property {
	return e.setProperty(key, value, false)
}

// SetHiddenProperty sets the hidden property under key, replacing any
// existing hidden value.
func (e *Edge) SetHiddenProperty(key string, value any) Property {
	return e.setProperty(key, value, true)
}

func (e *Edge) setProperty(key string, value any, hidden bool) Property {
	for _, p := range e.props {
		if p.key == key && p.hidden == hidden {
			p.value = value
			return p
		}
	}
	p := &elementProperty{owner: e, key: key, value: value, hidden: hidden}
	e.props = append(e.props, p)
	return p
}

// PropertySlice returns the edge's properties in insertion order, both
// visible and hidden, optionally restricted to keys.
func (e *Edge) PropertySlice(keys ...string) []Property {
	out := make([]Property, 0, len(e.props))
	for _, p := range e.props {
		if len(keys) == 0 || containsKey(keys, p.key) {
			out = append(out, p)
		}
	}
	return out
}

// Property returns the visible property under key, if present.
func (e *Edge) Property(key string) (Property, bool) {
	for _, p := range e.props {
		if p.key == key && !p.hidden {
			return p, true
		}
	}
	return nil, false
}

// HiddenProperty returns the hidden property under key, if present.
func (e *Edge) HiddenProperty(key string) (Property, bool) {
	for _, p := range e.props {
		if p.key == key && p.hidden {
			return p, true
		}
	}
	return nil, false
}

// RemoveProperty drops the visible property under key, if present.
func (e *Edge) RemoveProperty(key string) {
	kept := e.props[:0]
	for _, p := range e.props {
		if p.key != key || p.hidden {
			kept = append(kept, p)
		}
	}
	e.props = kept
}

func (e *Edge) String() string {
	return fmt.Sprintf("e[%v][%v-%s->%v]", e.id, e.out.ID(), e.label, e.in.ID())
}
