// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package traversal implements the step-pipeline execution model: ordered
// chains of lazy, type-narrowing transformation steps over streams of graph
// elements, plus the has-container predicate primitive those steps filter
// with.
//
// # Execution Model
//
// A Traversal owns its steps exclusively. Execution is demand-driven and
// single-threaded: pulling the traversal pulls the terminal step, which
// pulls its upstream, down to the source. A traversal instance is
// single-pass; restarting means re-deriving it from its source. Abandoning a
// traversal before exhaustion is always safe since no resources are pinned
// beyond the current traverser.
//
// # Step Rewriting
//
// Steps declaring the Reversible capability can be substituted in place by
// their semantic inverse via ReplaceStep, used for query rewriting. The
// capability is implemented only where the inversion is type-sound.
package traversal

import (
	"context"
	"errors"

	"github.com/AleutianAI/vireo/services/graph/structure"
)

// Traversal is an ordered pipeline of steps producing a lazy result
// sequence. Build it fluently, then drain it with Next or ToList.
//
// Not safe for concurrent use; access to a single traversal must be
// serialized by the caller.
type Traversal struct {
	ctx      context.Context
	steps    []Step
	buildErr error
	done     bool
}

// New creates an empty traversal. The context is checked between pulls;
// cancelling it aborts the pipeline at the next demand.
func New(ctx context.Context) *Traversal {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Traversal{ctx: ctx}
}

// V appends the graph-vertex source step. It must be the first step.
func (t *Traversal) V(g structure.Graph) *Traversal {
	if len(t.steps) > 0 {
		t.fail(ErrMisplacedSourceStep)
		return t
	}
	return t.addStep(newGraphStep(g))
}

// Inject appends a source step feeding the given values. It must be the
// first step.
func (t *Traversal) Inject(values ...any) *Traversal {
	if len(t.steps) > 0 {
		t.fail(ErrMisplacedSourceStep)
		return t
	}
	return t.addStep(newInjectStep(values...))
}

// Has appends a filter keeping elements whose key satisfies the predicate
// against value. An invalid container combination fails the build; the error
// is visible immediately through Err.
func (t *Traversal) Has(key string, pred Predicate, value any) *Traversal {
	h, err := NewHasContainer(key, pred, value)
	if err != nil {
		t.fail(err)
		return t
	}
	return t.addStep(newHasStep(h))
}

// HasAll appends a filter over an explicit container conjunction.
func (t *Traversal) HasAll(containers ...HasContainer) *Traversal {
	return t.addStep(newHasStep(containers...))
}

// Properties appends a projection to visible property wrappers.
func (t *Traversal) Properties(keys ...string) *Traversal {
	return t.addStep(newPropertiesStep(structure.PropertyTypeProperty, keys...))
}

// Values appends a projection to visible property values.
func (t *Traversal) Values(keys ...string) *Traversal {
	return t.addStep(newPropertiesStep(structure.PropertyTypeValue, keys...))
}

// Hiddens appends a projection to hidden property wrappers.
func (t *Traversal) Hiddens(keys ...string) *Traversal {
	return t.addStep(newPropertiesStep(structure.PropertyTypeHiddenProperty, keys...))
}

// HiddenValues appends a projection to hidden property values.
func (t *Traversal) HiddenValues(keys ...string) *Traversal {
	return t.addStep(newPropertiesStep(structure.PropertyTypeHiddenValue, keys...))
}

// AddStep appends an arbitrary step, binding it to this traversal.
func (t *Traversal) AddStep(s Step) *Traversal {
	return t.addStep(s)
}

func (t *Traversal) addStep(s Step) *Traversal {
	s.bind(t, len(t.steps))
	t.steps = append(t.steps, s)
	return t
}

func (t *Traversal) fail(err error) {
	if t.buildErr == nil {
		t.buildErr = err
	}
}

// Err returns the first construction error, if any. A traversal with a
// build error never yields values.
func (t *Traversal) Err() error {
	return t.buildErr
}

// Steps returns the pipeline's steps in order. The returned slice is a
// copy; the traversal retains exclusive ownership of its steps.
func (t *Traversal) Steps() []Step {
	return append([]Step(nil), t.steps...)
}

// Next pulls the next result from the terminal step. It returns
// ErrTraversalExhausted once the sequence ends; exhaustion is sticky.
func (t *Traversal) Next() (any, error) {
	if t.buildErr != nil {
		return nil, t.buildErr
	}
	if t.done {
		return nil, ErrTraversalExhausted
	}
	if len(t.steps) == 0 {
		return nil, ErrNoSourceStep
	}
	tr, err := t.steps[len(t.steps)-1].Next()
	if err != nil {
		t.done = true
		return nil, err
	}
	return tr.Get(), nil
}

// ToList drains the traversal into a slice. Exhaustion terminates the drain
// normally; any other error aborts it and is returned with the partial
// results discarded.
func (t *Traversal) ToList() ([]any, error) {
	var out []any
	for {
		v, err := t.Next()
		if err != nil {
			if errors.Is(err, ErrTraversalExhausted) {
				return out, nil
			}
			return nil, err
		}
		out = append(out, v)
	}
}
