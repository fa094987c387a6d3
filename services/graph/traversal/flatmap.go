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

// flatMapStep is the execution shape shared by transformation steps: it
// consumes one upstream traverser and produces zero or more downstream
// traversers. The fan-out of the current upstream value is the only buffered
// state; when it drains, the next upstream value is demanded.
type flatMapStep struct {
	baseStep
	fn  func(*Traverser) ([]any, error)
	buf []any
	pos int
}

func (s *flatMapStep) Next() (*Traverser, error) {
	for {
		if err := s.traversal.ctx.Err(); err != nil {
			return nil, err
		}
		if s.pos < len(s.buf) {
			v := s.buf[s.pos]
			s.pos++
			return NewTraverser(v), nil
		}
		up, err := s.upstream()
		if err != nil {
			return nil, err
		}
		tr, err := up.Next()
		if err != nil {
			// Includes ErrTraversalExhausted: upstream termination ends
			// this step's sequence too.
			return nil, err
		}
		out, err := s.fn(tr)
		if err != nil {
			return nil, err
		}
		s.buf, s.pos = out, 0
	}
}
