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

import "context"

// Graph is the storage collaborator consumed by the decoder and by traversal
// sources. Implementations decide durability; the engine only relies on the
// contract below.
//
// A Graph coordinates one transaction at a time via Tx(). Callers that
// decode concurrently against the same graph must serialize those calls
// themselves; the engine does not.
type Graph interface {
	// UpsertVertex returns the vertex with the given identifier, creating
	// it with the label if absent. A nil id receives a generated
	// identifier.
	UpsertVertex(ctx context.Context, id any, label string) (*Vertex, error)

	// FindVertex returns the vertex with the given identifier, if present.
	FindVertex(ctx context.Context, id any) (*Vertex, bool)

	// CreateEdge creates an edge from out to in. Both endpoints must
	// already belong to the graph.
	CreateEdge(ctx context.Context, id any, label string, out, in *Vertex) (*Edge, error)

	// SetProperty attaches a property to an element previously obtained
	// from this graph. Vertex properties accumulate per key; edge
	// properties replace per key.
	SetProperty(ctx context.Context, el Element, key string, value any, hidden bool) error

	// Vertices returns all vertices. Order is implementation-defined but
	// stable within a transaction.
	Vertices(ctx context.Context) ([]*Vertex, error)

	// Edges returns all edges.
	Edges(ctx context.Context) ([]*Edge, error)

	// Tx returns the graph's transaction handle.
	Tx() Transaction

	// Variables returns the graph-wide variable store, when supported.
	Variables() (Variables, bool)

	// Close releases all resources held by the graph.
	Close() error
}

// Transaction is the unit of atomicity offered by a Graph. Mutations made
// through the graph accumulate in the open transaction until Commit or
// Rollback. Neither call is retried by the engine; a failure surfaces to the
// caller as-is.
type Transaction interface {
	// Commit makes the accumulated mutations durable.
	Commit() error

	// Rollback discards the accumulated mutations.
	Rollback() error
}

// Variables is the graph-wide key/value store for graphs that support it.
type Variables interface {
	// Get returns the variable under key.
	Get(key string) (any, bool)

	// Set stores value under key.
	Set(key string, value any)

	// Keys returns all variable keys.
	Keys() []string
}
