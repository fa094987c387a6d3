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

import "errors"

// Sentinel errors for pipeline construction and execution.
var (
	// ErrTraversalExhausted signals normal termination of a pipeline's
	// lazy sequence. It is not a failure; callers stop pulling when they
	// see it.
	ErrTraversalExhausted = errors.New("traversal exhausted")

	// ErrNilPredicateValue is returned when a has-container is built with
	// a nil value and a predicate outside the existence family
	// (Within/Without). The combination is rejected at construction so
	// pipelines fail while being built, not mid-execution.
	ErrNilPredicateValue = errors.New("nil value requires an existence predicate (within/without)")

	// ErrTypeMismatch is returned when a step receives a traverser whose
	// value is outside the step's declared source type. Execution aborts
	// at the point of use; nothing is coerced.
	ErrTypeMismatch = errors.New("step received value outside its source type")

	// ErrStepNotFound is returned when a step substitution cannot locate
	// the target step in its owning traversal.
	ErrStepNotFound = errors.New("step not found in traversal")

	// ErrMisplacedSourceStep is returned when a source step is appended to
	// a traversal that already has steps.
	ErrMisplacedSourceStep = errors.New("source step must be the first step of a traversal")

	// ErrNoSourceStep is returned when a traversal is pulled without a
	// source step at its head.
	ErrNoSourceStep = errors.New("traversal has no source step")
)
