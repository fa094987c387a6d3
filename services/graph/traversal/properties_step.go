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
	"strings"

	"github.com/AleutianAI/vireo/services/graph/structure"
)

// PropertiesStep is the flat-map projection from an element to its
// properties. The PropertyType selector picks one point in the 2x2 space of
// {wrapper, value} x {visible, hidden}; the key set restricts which
// properties are considered, with the empty set meaning all keys.
//
// An element with no matching properties yields an empty fan-out, which is
// not an error; the pipeline moves on to the next upstream element.
type PropertiesStep struct {
	flatMapStep
	returnType structure.PropertyType
	keys       []string
}

func newPropertiesStep(returnType structure.PropertyType, keys ...string) *PropertiesStep {
	s := &PropertiesStep{
		returnType: returnType,
		keys:       append([]string(nil), keys...),
	}
	s.fn = func(tr *Traverser) ([]any, error) {
		el, ok := tr.Get().(structure.Element)
		if !ok {
			return nil, fmt.Errorf("%w: %s expected a graph element, got %T", ErrTypeMismatch, s, tr.Get())
		}
		var out []any
		for _, p := range el.PropertySlice(s.keys...) {
			if p.IsHidden() != s.returnType.ForHiddens() {
				continue
			}
			if s.returnType.ForValues() {
				out = append(out, p.Value())
			} else {
				out = append(out, p)
			}
		}
		return out, nil
	}
	return s
}

// ReturnType returns the step's selector.
func (s *PropertiesStep) ReturnType() structure.PropertyType {
	return s.returnType
}

// Keys returns the requested property keys; empty means all.
func (s *PropertiesStep) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Reverse replaces this step, in place, with the structurally inverse
// mapping from a property back to its owning element. The substitution is
// only sound because this step's source and target types are exactly the
// Element/Property pair; no other step in this package declares the
// capability.
func (s *PropertiesStep) Reverse() error {
	return ReplaceStep(s.traversal, s, newPropertyElementStep())
}

func (s *PropertiesStep) String() string {
	if len(s.keys) == 0 {
		return fmt.Sprintf("properties(%s)", s.returnType)
	}
	return fmt.Sprintf("properties(%s,[%s])", s.returnType, strings.Join(s.keys, ","))
}

var _ Reversible = (*PropertiesStep)(nil)
