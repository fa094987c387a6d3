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

import "testing"

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindVertex, "vertex"},
		{KindEdge, "edge"},
		{KindVertexProperty, "vertexproperty"},
		{Kind(99), "unknown"},
	}

	for _, tc := range tests {
		if got := tc.kind.String(); got != tc.expected {
			t.Errorf("Kind(%d).String() = %q, expected %q", tc.kind, got, tc.expected)
		}
	}
}

func TestPropertyType_Axes(t *testing.T) {
	tests := []struct {
		pt         PropertyType
		forValues  bool
		forHiddens bool
	}{
		{PropertyTypeProperty, false, false},
		{PropertyTypeValue, true, false},
		{PropertyTypeHiddenProperty, false, true},
		{PropertyTypeHiddenValue, true, true},
	}

	for _, tc := range tests {
		if got := tc.pt.ForValues(); got != tc.forValues {
			t.Errorf("%s.ForValues() = %v, expected %v", tc.pt, got, tc.forValues)
		}
		if got := tc.pt.ForHiddens(); got != tc.forHiddens {
			t.Errorf("%s.ForHiddens() = %v, expected %v", tc.pt, got, tc.forHiddens)
		}
	}
}

func TestVertex_MultiValuedProperties(t *testing.T) {
	v := NewVertex(1, "person")
	v.AddProperty("name", "a")
	v.AddProperty("name", "b")
	v.AddHiddenProperty("name", "secret")

	visible := v.VisibleProperties("name")
	if len(visible) != 2 {
		t.Fatalf("expected 2 visible occurrences, got %d", len(visible))
	}
	if visible[0].Value() != "a" || visible[1].Value() != "b" {
		t.Errorf("expected insertion order [a b], got [%v %v]", visible[0].Value(), visible[1].Value())
	}

	hidden := v.HiddenProperties("name")
	if len(hidden) != 1 || hidden[0].Value() != "secret" {
		t.Errorf("expected 1 hidden occurrence with value secret, got %v", hidden)
	}

	// The visible accessor must never see the hidden namespace.
	p, ok := v.Property("name")
	if !ok || p.IsHidden() {
		t.Errorf("Property(name) = %v, %v; expected first visible occurrence", p, ok)
	}
}

func TestVertex_PropertySliceFilters(t *testing.T) {
	v := NewVertex("x", "thing")
	v.AddProperty("a", 1)
	v.AddProperty("b", 2)
	v.AddHiddenProperty("c", 3)

	if got := len(v.PropertySlice()); got != 3 {
		t.Errorf("PropertySlice() returned %d properties, expected 3", got)
	}
	if got := len(v.PropertySlice("a", "c")); got != 2 {
		t.Errorf("PropertySlice(a, c) returned %d properties, expected 2", got)
	}
	if got := len(v.PropertySlice("missing")); got != 0 {
		t.Errorf("PropertySlice(missing) returned %d properties, expected 0", got)
	}
}

func TestVertexProperty_IsElement(t *testing.T) {
	v := NewVertex(7, "person")
	vp := v.AddProperty("name", "marko")
	vp.Set("acl", "public")

	if vp.Kind() != KindVertexProperty {
		t.Fatalf("vertex property kind = %v, expected vertexproperty", vp.Kind())
	}
	if vp.Label() != "name" {
		t.Errorf("vertex property label = %q, expected its key", vp.Label())
	}
	if vp.Element() != Element(v) {
		t.Errorf("vertex property owner mismatch")
	}

	nested, ok := vp.Property("acl")
	if !ok || nested.Value() != "public" {
		t.Errorf("nested property acl = %v, %v; expected public", nested, ok)
	}
	if nested.Element() != Element(vp) {
		t.Errorf("nested property must be owned by the occurrence")
	}

	// Occurrence identifiers are distinct.
	other := v.AddProperty("name", "madeleine")
	if vp.ID() == other.ID() {
		t.Errorf("two occurrences share identifier %v", vp.ID())
	}
}

func TestEdge_SingleValuedProperties(t *testing.T) {
	out := NewVertex(1, "person")
	in := NewVertex(2, "person")
	e := NewEdge(10, "knows", out, in)

	e.SetProperty("weight", 5)
	e.SetProperty("weight", 7)

	p, ok := e.Property("weight")
	if !ok || p.Value() != 7 {
		t.Fatalf("edge property weight = %v, %v; expected replacement to 7", p, ok)
	}

	e.SetHiddenProperty("weight", 99)
	hp, ok := e.HiddenProperty("weight")
	if !ok || hp.Value() != 99 {
		t.Fatalf("hidden weight = %v, %v; expected 99", hp, ok)
	}

	// Namespaces are independent: removing the visible property leaves the
	// hidden one in place.
	e.RemoveProperty("weight")
	if _, ok := e.Property("weight"); ok {
		t.Errorf("visible weight survived removal")
	}
	if _, ok := e.HiddenProperty("weight"); !ok {
		t.Errorf("hidden weight removed alongside visible")
	}
}

func TestEdge_Endpoints(t *testing.T) {
	out := NewVertex(1, "person")
	in := NewVertex(2, "software")
	e := NewEdge(10, "created", out, in)

	if e.OutVertex() != out || e.InVertex() != in {
		t.Errorf("endpoints not preserved")
	}
	if e.Label() != "created" {
		t.Errorf("label = %q, expected created", e.Label())
	}
}
