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
	"reflect"
)

// Predicate is the closed set of comparison operators usable in a
// has-container. Within and Without double as the existence family when the
// container value is nil.
type Predicate int

const (
	// Equal tests left == right.
	Equal Predicate = iota

	// NotEqual tests left != right.
	NotEqual

	// GreaterThan tests left > right.
	GreaterThan

	// GreaterThanOrEqual tests left >= right.
	GreaterThanOrEqual

	// LessThan tests left < right.
	LessThan

	// LessThanOrEqual tests left <= right.
	LessThanOrEqual

	// Within tests membership of left in the right-hand collection. With a
	// nil container value it tests property presence.
	Within

	// Without is the negation of Within. With a nil container value it
	// tests property absence.
	Without
)

// String returns the lowercase name of the predicate.
func (p Predicate) String() string {
	switch p {
	case Equal:
		return "eq"
	case NotEqual:
		return "neq"
	case GreaterThan:
		return "gt"
	case GreaterThanOrEqual:
		return "gte"
	case LessThan:
		return "lt"
	case LessThanOrEqual:
		return "lte"
	case Within:
		return "within"
	case Without:
		return "without"
	default:
		return "unknown"
	}
}

// IsExistence reports whether the predicate belongs to the existence family.
func (p Predicate) IsExistence() bool {
	return p == Within || p == Without
}

// Test evaluates the predicate over two values.
//
// Numbers compare across Go numeric types (an int property matches a float64
// literal from a decoded document). Ordering predicates over incomparable
// values evaluate to false rather than panicking; the predicate itself is
// pure and side-effect free.
func (p Predicate) Test(left, right any) bool {
	switch p {
	case Equal:
		return equalValues(left, right)
	case NotEqual:
		return !equalValues(left, right)
	case GreaterThan:
		c, ok := compareValues(left, right)
		return ok && c > 0
	case GreaterThanOrEqual:
		c, ok := compareValues(left, right)
		return ok && c >= 0
	case LessThan:
		c, ok := compareValues(left, right)
		return ok && c < 0
	case LessThanOrEqual:
		c, ok := compareValues(left, right)
		return ok && c <= 0
	case Within:
		return containsValue(right, left)
	case Without:
		return !containsValue(right, left)
	default:
		return false
	}
}

// equalValues compares two values, normalizing numeric types first.
func equalValues(left, right any) bool {
	if lf, lok := toFloat(left); lok {
		if rf, rok := toFloat(right); rok {
			return lf == rf
		}
		return false
	}
	return reflect.DeepEqual(left, right)
}

// compareValues orders two values. The second return is false when the
// values are incomparable.
func compareValues(left, right any) (int, bool) {
	if lf, lok := toFloat(left); lok {
		rf, rok := toFloat(right)
		if !rok {
			return 0, false
		}
		switch {
		case lf < rf:
			return -1, true
		case lf > rf:
			return 1, true
		default:
			return 0, true
		}
	}
	ls, lok := left.(string)
	rs, rok := right.(string)
	if lok && rok {
		switch {
		case ls < rs:
			return -1, true
		case ls > rs:
			return 1, true
		default:
			return 0, true
		}
	}
	return 0, false
}

// containsValue tests membership of needle in collection. A non-collection
// right-hand side degenerates to equality, so within(x) behaves as eq(x).
func containsValue(collection, needle any) bool {
	rv := reflect.ValueOf(collection)
	if !rv.IsValid() {
		return false
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return equalValues(needle, collection)
	}
	for i := 0; i < rv.Len(); i++ {
		if equalValues(needle, rv.Index(i).Interface()) {
			return true
		}
	}
	return false
}

// toFloat widens any Go numeric type to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
