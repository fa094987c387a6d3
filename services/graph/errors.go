// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import "errors"

// Sentinel errors for the graph service.
var (
	// ErrGraphExists indicates a graph with the requested name already exists.
	ErrGraphExists = errors.New("graph already exists")

	// ErrGraphNotFound indicates no graph is registered under the name.
	ErrGraphNotFound = errors.New("graph not found")

	// ErrTooManyGraphs indicates the configured graph limit was reached.
	ErrTooManyGraphs = errors.New("graph limit reached")

	// ErrUnknownBackend indicates an unrecognized storage backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")

	// ErrLoadInProgress indicates another load is already running against
	// this graph. Decodes hold an exclusive per-graph transaction and
	// cannot be interleaved.
	ErrLoadInProgress = errors.New("load in progress")

	// ErrInvalidQuery indicates a query request that cannot be compiled
	// into a traversal.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrVertexNotFound indicates the requested vertex identifier is not
	// present in the graph.
	ErrVertexNotFound = errors.New("vertex not found")
)
