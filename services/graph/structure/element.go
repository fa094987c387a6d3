// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package structure provides the property-graph element model.
//
// The model is closed over three element kinds: Vertex, Edge, and
// VertexProperty (a vertex property that is itself an element and may carry
// one level of nested properties). Identifiers are opaque, comparable, and
// assigned exactly once at construction; there is no way to rebind an
// element's identifier afterwards.
//
// # Property Namespaces
//
// Every property is either visible or hidden. Hidden status is a flag on the
// property, never a marker encoded into the key string, so a literal key can
// never collide with a hidden key of the same spelling. Edge properties are
// single-valued per key and namespace; vertex properties are multi-valued.
//
// # Ownership
//
// A Property belongs to exactly one Element and holds a reference back to it.
// Elements own their properties; callers must not share Property values
// between elements.
package structure

// Kind identifies the concrete variant of an Element.
//
// The set is closed. Code dispatching on Kind should switch over all three
// constants so new variants fail loudly at review time rather than silently
// at run time.
type Kind int

const (
	// KindVertex is a graph vertex.
	KindVertex Kind = iota

	// KindEdge is a directed edge between two vertices.
	KindEdge

	// KindVertexProperty is a vertex property occurrence (a meta-property).
	KindVertexProperty
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindVertex:
		return "vertex"
	case KindEdge:
		return "edge"
	case KindVertexProperty:
		return "vertexproperty"
	default:
		return "unknown"
	}
}

// Direction selects which adjacent edges of a vertex are of interest.
type Direction int

const (
	// DirectionOut selects edges leaving the vertex.
	DirectionOut Direction = iota

	// DirectionIn selects edges arriving at the vertex.
	DirectionIn

	// DirectionBoth selects edges in either orientation.
	DirectionBoth
)

// String returns the lowercase name of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionOut:
		return "out"
	case DirectionIn:
		return "in"
	case DirectionBoth:
		return "both"
	default:
		return "unknown"
	}
}

// Reserved accessor keys. A filter keyed on one of these tests an element's
// intrinsic attributes rather than its property map. The tilde prefix keeps
// them out of the space of ordinary property keys.
const (
	// IDAccessor selects an element's identifier.
	IDAccessor = "~id"

	// LabelAccessor selects an element's label.
	LabelAccessor = "~label"

	// KeyAccessor selects a vertex property's own key.
	KeyAccessor = "~key"

	// ValueAccessor selects a vertex property's own value.
	ValueAccessor = "~value"
)

// PropertyType selects what a property projection produces. It is one point
// in a 2x2 space: {wrapper, unwrapped value} x {visible, hidden}.
type PropertyType int

const (
	// PropertyTypeProperty yields visible property wrappers.
	PropertyTypeProperty PropertyType = iota

	// PropertyTypeValue yields visible property values.
	PropertyTypeValue

	// PropertyTypeHiddenProperty yields hidden property wrappers.
	PropertyTypeHiddenProperty

	// PropertyTypeHiddenValue yields hidden property values.
	PropertyTypeHiddenValue
)

// ForValues reports whether the selector unwraps properties to their values.
func (t PropertyType) ForValues() bool {
	return t == PropertyTypeValue || t == PropertyTypeHiddenValue
}

// ForHiddens reports whether the selector targets the hidden namespace.
func (t PropertyType) ForHiddens() bool {
	return t == PropertyTypeHiddenProperty || t == PropertyTypeHiddenValue
}

// String returns the lowercase name of the selector.
func (t PropertyType) String() string {
	switch t {
	case PropertyTypeProperty:
		return "property"
	case PropertyTypeValue:
		return "value"
	case PropertyTypeHiddenProperty:
		return "hidden_property"
	case PropertyTypeHiddenValue:
		return "hidden_value"
	default:
		return "unknown"
	}
}

// Element is the common surface of Vertex, Edge, and VertexProperty.
//
// The variant set is closed; Kind() tells callers which concrete type they
// hold. Elements are not safe for concurrent mutation. Read-only access from
// multiple goroutines is safe once mutation has stopped.
type Element interface {
	// ID returns the opaque identifier assigned at construction.
	ID() any

	// Label returns the element label. For a VertexProperty the label is
	// its key.
	Label() string

	// Kind returns the concrete variant tag.
	Kind() Kind

	// PropertySlice returns the element's properties in insertion order,
	// spanning both namespaces. When keys is non-empty only properties
	// under one of those keys are returned.
	PropertySlice(keys ...string) []Property

	// Property returns the first visible property under key, if present.
	Property(key string) (Property, bool)
}
