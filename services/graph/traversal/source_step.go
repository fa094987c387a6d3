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
	"github.com/AleutianAI/vireo/services/graph/structure"
)

// graphStep is the source step that feeds a traversal from a graph's
// vertices. The vertex set is fetched once, on the first pull.
type graphStep struct {
	baseStep
	graph  structure.Graph
	loaded bool
	buf    []*structure.Vertex
	pos    int
}

func newGraphStep(g structure.Graph) *graphStep {
	return &graphStep{graph: g}
}

func (s *graphStep) Next() (*Traverser, error) {
	if err := s.traversal.ctx.Err(); err != nil {
		return nil, err
	}
	if !s.loaded {
		vs, err := s.graph.Vertices(s.traversal.ctx)
		if err != nil {
			return nil, err
		}
		s.buf, s.loaded = vs, true
	}
	if s.pos >= len(s.buf) {
		return nil, ErrTraversalExhausted
	}
	v := s.buf[s.pos]
	s.pos++
	return NewTraverser(v), nil
}

func (s *graphStep) String() string {
	return "V()"
}

// injectStep is the source step that feeds a traversal from a fixed slice of
// values. Used by tests and by callers that already hold elements.
type injectStep struct {
	baseStep
	values []any
	pos    int
}

func newInjectStep(values ...any) *injectStep {
	return &injectStep{values: append([]any(nil), values...)}
}

func (s *injectStep) Next() (*Traverser, error) {
	if err := s.traversal.ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.values) {
		return nil, ErrTraversalExhausted
	}
	v := s.values[s.pos]
	s.pos++
	return NewTraverser(v), nil
}

func (s *injectStep) String() string {
	return "inject"
}
