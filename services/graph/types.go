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

// Backend names accepted by CreateGraphRequest.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

// CreateGraphRequest is the request body for POST /v1/graphs.
type CreateGraphRequest struct {
	// Name identifies the graph. Required.
	Name string `json:"name" binding:"required"`

	// Backend selects the storage backend: "memory" or "badger".
	// Default: the service's configured default backend.
	Backend string `json:"backend"`
}

// GraphInfo describes one managed graph.
type GraphInfo struct {
	// Name is the graph identifier.
	Name string `json:"name"`

	// Backend is the storage backend the graph runs on.
	Backend string `json:"backend"`

	// CreatedAt is the creation time in RFC 3339 format.
	CreatedAt string `json:"created_at"`
}

// ListGraphsResponse is the response for GET /v1/graphs.
type ListGraphsResponse struct {
	Graphs []GraphInfo `json:"graphs"`
}

// LoadResponse is the response for POST /v1/graphs/:name/load.
type LoadResponse struct {
	// Vertices is the total vertex count after the load.
	Vertices int `json:"vertices"`

	// Edges is the total edge count after the load.
	Edges int `json:"edges"`

	// DurationMs is the wall-clock decode time in milliseconds.
	DurationMs int64 `json:"duration_ms"`
}

// HasClause is one predicate filter in a query.
type HasClause struct {
	// Key is the property key or a reserved accessor ("~id", "~label",
	// "~key", "~value"). Required.
	Key string `json:"key" binding:"required"`

	// Predicate is one of: eq, neq, gt, gte, lt, lte, within, without.
	// Required.
	Predicate string `json:"predicate" binding:"required"`

	// Value is the right-hand operand. May be null only for the existence
	// predicates within/without.
	Value any `json:"value"`
}

// QueryRequest is the request body for POST /v1/graphs/:name/query.
//
// The request compiles into a vertex traversal: every Has clause filters the
// vertex stream, then the projection selects what each surviving vertex
// contributes to the result.
type QueryRequest struct {
	// Has is the ordered list of predicate filters. May be empty.
	Has []HasClause `json:"has"`

	// Keys restricts the projection to the given property keys.
	// Empty means all keys.
	Keys []string `json:"keys"`

	// Projection selects the result shape: "vertices" (default), "values",
	// "properties", "hidden_values" or "hidden_properties".
	Projection string `json:"projection"`

	// Limit caps the number of results. Default: the service's configured
	// query limit.
	Limit int `json:"limit"`
}

// PropertyView is the wire form of one property occurrence.
type PropertyView struct {
	Key    string `json:"key"`
	Value  any    `json:"value"`
	Hidden bool   `json:"hidden,omitempty"`
}

// VertexView is the wire form of one vertex.
type VertexView struct {
	ID         any            `json:"id"`
	Label      string         `json:"label"`
	Properties []PropertyView `json:"properties,omitempty"`
}

// QueryResponse is the response for POST /v1/graphs/:name/query.
type QueryResponse struct {
	// Results holds the projected values. Shape depends on the requested
	// projection: VertexView for "vertices"/"properties" axes, raw values
	// for the value axes.
	Results []any `json:"results"`

	// Count is len(Results).
	Count int `json:"count"`
}

// VariablesResponse is the response for GET /v1/graphs/:name/variables.
type VariablesResponse struct {
	Variables map[string]any `json:"variables"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is the response for GET /v1/graphs/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Graphs  int    `json:"graphs"`
}
