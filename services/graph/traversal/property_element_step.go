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

// PropertyElementStep maps a property back to its owning element. It is the
// semantic inverse of PropertiesStep and exists to be spliced into that
// step's position during rewriting.
type PropertyElementStep struct {
	flatMapStep
}

func newPropertyElementStep() *PropertyElementStep {
	s := &PropertyElementStep{}
	s.fn = func(tr *Traverser) ([]any, error) {
		p, ok := tr.Get().(structure.Property)
		if !ok {
			return nil, fmt.Errorf("%w: %s expected a property, got %T", ErrTypeMismatch, s, tr.Get())
		}
		return []any{p.Element()}, nil
	}
	return s
}

func (s *PropertyElementStep) String() string {
	return "propertyElement"
}
