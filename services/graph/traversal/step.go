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

// Step is one stage of a pipeline. Steps are pulled from the terminal end:
// each Next call produces the step's next downstream traverser, demanding
// values from the upstream step as needed. Execution is cooperative and
// single-threaded; no step buffers more than one upstream value's fan-out at
// a time.
//
// A step never holds a direct pointer to its neighbors. It addresses them
// through its owning traversal and its own position, so an in-place step
// substitution leaves the rest of the pipeline untouched.
type Step interface {
	// Next returns the next downstream traverser, or ErrTraversalExhausted
	// once the lazy sequence ends. Exhaustion is normal termination, not a
	// failure, and is sticky: subsequent calls keep returning it.
	Next() (*Traverser, error)

	// String describes the step for error context.
	String() string

	// bind attaches the step to its owning traversal at position index.
	// Called by the traversal when the step is appended or spliced in.
	bind(t *Traversal, index int)
}

// Reversible is the capability of a step that has a semantically inverse
// step able to replace it in place. The substitution is sound only for the
// Element/Property pair; only PropertiesStep implements this interface, which
// keeps the limitation a compile-time property of the package rather than a
// run-time assumption.
type Reversible interface {
	Step

	// Reverse splices the inverse step into this step's position in its
	// owning traversal.
	Reverse() error
}

// baseStep carries the traversal handle and position shared by all steps.
type baseStep struct {
	traversal *Traversal
	index     int
}

func (s *baseStep) bind(t *Traversal, index int) {
	s.traversal = t
	s.index = index
}

// upstream returns the step one position closer to the source.
func (s *baseStep) upstream() (Step, error) {
	if s.index == 0 {
		return nil, ErrNoSourceStep
	}
	return s.traversal.steps[s.index-1], nil
}

// ReplaceStep splices replacement into current's position in t, leaving the
// order and identity of every other step untouched. The replacement is bound
// to t at that exact position. Steps are located by identity, not equality.
func ReplaceStep(t *Traversal, current, replacement Step) error {
	for i, s := range t.steps {
		if s == current {
			replacement.bind(t, i)
			t.steps[i] = replacement
			return nil
		}
	}
	return ErrStepNotFound
}
