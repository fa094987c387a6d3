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

// HasStep filters elements through a conjunction of has-containers. An
// element passes only when every container accepts it; an empty container
// set passes everything.
type HasStep struct {
	flatMapStep
	containers []HasContainer
}

func newHasStep(containers ...HasContainer) *HasStep {
	s := &HasStep{containers: append([]HasContainer(nil), containers...)}
	s.fn = func(tr *Traverser) ([]any, error) {
		el, ok := tr.Get().(structure.Element)
		if !ok {
			return nil, fmt.Errorf("%w: %s expected a graph element, got %T", ErrTypeMismatch, s, tr.Get())
		}
		if TestAll(el, s.containers) {
			return []any{el}, nil
		}
		return nil, nil
	}
	return s
}

// Containers returns a copy of the step's filter set.
func (s *HasStep) Containers() []HasContainer {
	return append([]HasContainer(nil), s.containers...)
}

func (s *HasStep) String() string {
	return fmt.Sprintf("has(%v)", s.containers)
}
