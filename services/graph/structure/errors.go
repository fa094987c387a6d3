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

import "errors"

// Sentinel errors for graph storage operations.
var (
	// ErrVertexNotFound is returned when an operation references a vertex
	// identifier absent from the graph.
	ErrVertexNotFound = errors.New("vertex not found")

	// ErrNilEndpoint is returned when CreateEdge is given a nil endpoint.
	ErrNilEndpoint = errors.New("edge endpoint must not be nil")

	// ErrForeignElement is returned when SetProperty is given an element
	// that does not belong to the graph.
	ErrForeignElement = errors.New("element does not belong to this graph")

	// ErrDuplicateEdge is returned when an edge identifier already exists.
	ErrDuplicateEdge = errors.New("duplicate edge identifier")

	// ErrGraphClosed is returned when operating on a closed graph.
	ErrGraphClosed = errors.New("graph is closed")
)
