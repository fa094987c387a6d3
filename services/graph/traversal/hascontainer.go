// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package traversal

import (
	"fmt"

	"github.com/AleutianAI/vireo/services/graph/structure"
)

// HasContainer is an immutable (key, predicate, value) filter evaluated
// against graph elements. A nil value is legal only with an existence
// predicate; that combination is enforced at construction, never at test
// time.
//
// Evaluation is pure. The same container may be shared by any number of
// pipelines over immutable element snapshots.
type HasContainer struct {
	key   string
	pred  Predicate
	value any
}

// NewHasContainer builds a container. It returns ErrNilPredicateValue when
// value is nil and pred is outside the existence family.
func NewHasContainer(key string, pred Predicate, value any) (HasContainer, error) {
	if value == nil && !pred.IsExistence() {
		return HasContainer{}, fmt.Errorf("%w: key %q, predicate %s", ErrNilPredicateValue, key, pred)
	}
	return HasContainer{key: key, pred: pred, value: value}, nil
}

// Key returns the container's key.
func (h HasContainer) Key() string { return h.key }

// Predicate returns the container's predicate.
func (h HasContainer) Predicate() Predicate { return h.pred }

// Value returns the container's comparison value; nil for existence tests.
func (h HasContainer) Value() any { return h.value }

// Test evaluates the container against an element.
//
// With a nil value the result is property presence for Within and property
// absence for Without. The reserved accessors ~id and ~label test the
// element's intrinsic attributes; ~key and ~value apply only when the
// element is itself a vertex property occurrence. Any other key tests the
// visible property namespace: existentially over a vertex's multi-valued
// occurrences, and against the single value for edges and occurrences.
func (h HasContainer) Test(el structure.Element) bool {
	if h.value == nil {
		_, present := el.Property(h.key)
		if h.pred == Without {
			return !present
		}
		return present
	}

	switch h.key {
	case structure.IDAccessor:
		return h.pred.Test(el.ID(), h.value)
	case structure.LabelAccessor:
		return h.pred.Test(el.Label(), h.value)
	}

	if vp, ok := el.(*structure.VertexProperty); ok {
		switch h.key {
		case structure.ValueAccessor:
			return h.pred.Test(vp.Value(), h.value)
		case structure.KeyAccessor:
			return h.pred.Test(vp.Key(), h.value)
		}
	}

	switch v := el.(type) {
	case *structure.Vertex:
		for _, p := range v.VisibleProperties(h.key) {
			if h.pred.Test(p.Value(), h.value) {
				return true
			}
		}
		return false
	default:
		p, ok := el.Property(h.key)
		return ok && h.pred.Test(p.Value(), h.value)
	}
}

// String renders the container for step descriptions and error context.
func (h HasContainer) String() string {
	if h.value == nil {
		if h.pred == Within {
			return fmt.Sprintf("[%s]", h.key)
		}
		return fmt.Sprintf("[!%s]", h.key)
	}
	return fmt.Sprintf("[%s,%s,%v]", h.key, h.pred, h.value)
}

// TestAll reports whether every container accepts the element. An empty set
// is vacuously true.
func TestAll(el structure.Element, containers []HasContainer) bool {
	for _, h := range containers {
		if !h.Test(el) {
			return false
		}
	}
	return true
}
