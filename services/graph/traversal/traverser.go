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

// Traverser is the unit of flow through a pipeline: it wraps one value of
// the current stage's type. Traversers are created by the source step and
// consumed one at a time as execution is pulled from the terminal end; no
// traverser outlives the step that processes it.
type Traverser struct {
	value any
}

// NewTraverser wraps a value.
func NewTraverser(value any) *Traverser {
	return &Traverser{value: value}
}

// Get returns the wrapped value.
func (t *Traverser) Get() any {
	return t.value
}

// Split derives a downstream traverser carrying a new value.
func (t *Traverser) Split(value any) *Traverser {
	return &Traverser{value: value}
}
