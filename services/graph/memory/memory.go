// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package memory provides an in-memory structure.Graph.
//
// The graph supports variables and transactional rollback via copy-on-write
// snapshots: the first mutation after a commit or rollback captures the
// current state, and Rollback restores it. Commit simply drops the snapshot.
// This gives decoders the begin/commit/rollback discipline they need without
// any durability machinery.
//
// # Thread Safety
//
// All methods are safe for concurrent use, but transactional callers (the
// decoder) must still serialize whole decode passes themselves; interleaved
// mutations from two writers share one transaction.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/AleutianAI/vireo/services/graph/structure"
	"github.com/google/uuid"
)

// Graph is an in-memory property graph.
type Graph struct {
	mu        sync.RWMutex
	vertices  map[any]*structure.Vertex
	vertexIDs []any
	edges     map[any]*structure.Edge
	edgeIDs   []any
	vars      map[string]any
	snap      *snapshot
	closed    bool
}

// snapshot captures graph state at transaction begin.
type snapshot struct {
	vertices  map[any]*structure.Vertex
	vertexIDs []any
	edges     map[any]*structure.Edge
	edgeIDs   []any
	vars      map[string]any
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		vertices: make(map[any]*structure.Vertex),
		edges:    make(map[any]*structure.Edge),
		vars:     make(map[string]any),
	}
}

// UpsertVertex returns the vertex with the given identifier, creating it
// with the label when absent. A nil identifier receives a generated UUID.
func (g *Graph) UpsertVertex(ctx context.Context, id any, label string) (*structure.Vertex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil, structure.ErrGraphClosed
	}
	if id == nil {
		id = uuid.NewString()
	}
	if v, ok := g.vertices[id]; ok {
		return v, nil
	}
	g.ensureSnapshot()
	v := structure.NewVertex(id, label)
	g.vertices[id] = v
	g.vertexIDs = append(g.vertexIDs, id)
	return v, nil
}

// FindVertex returns the vertex with the given identifier.
func (g *Graph) FindVertex(ctx context.Context, id any) (*structure.Vertex, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.vertices[id]
	return v, ok
}

// CreateEdge creates an edge between two vertices of this graph. A nil
// identifier receives a generated UUID.
func (g *Graph) CreateEdge(ctx context.Context, id any, label string, out, in *structure.Vertex) (*structure.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if out == nil || in == nil {
		return nil, structure.ErrNilEndpoint
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil, structure.ErrGraphClosed
	}
	if g.vertices[out.ID()] != out || g.vertices[in.ID()] != in {
		return nil, fmt.Errorf("%w: edge %v", structure.ErrForeignElement, id)
	}
	if id == nil {
		id = uuid.NewString()
	}
	if _, ok := g.edges[id]; ok {
		return nil, fmt.Errorf("%w: %v", structure.ErrDuplicateEdge, id)
	}
	g.ensureSnapshot()
	e := structure.NewEdge(id, label, out, in)
	g.edges[id] = e
	g.edgeIDs = append(g.edgeIDs, id)
	return e, nil
}

// SetProperty attaches a property to an element of this graph. Vertex
// properties accumulate per key; edge properties replace per key. Nested
// properties on a vertex property occurrence are always visible.
func (g *Graph) SetProperty(ctx context.Context, el structure.Element, key string, value any, hidden bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return structure.ErrGraphClosed
	}
	g.ensureSnapshot()
	switch v := el.(type) {
	case *structure.Vertex:
		if g.vertices[v.ID()] != v {
			return fmt.Errorf("%w: vertex %v", structure.ErrForeignElement, v.ID())
		}
		if hidden {
			v.AddHiddenProperty(key, value)
		} else {
			v.AddProperty(key, value)
		}
	case *structure.Edge:
		if g.edges[v.ID()] != v {
			return fmt.Errorf("%w: edge %v", structure.ErrForeignElement, v.ID())
		}
		if hidden {
			v.SetHiddenProperty(key, value)
		} else {
			v.SetProperty(key, value)
		}
	case *structure.VertexProperty:
		if g.vertices[v.Vertex().ID()] != v.Vertex() {
			return fmt.Errorf("%w: vertex property %v", structure.ErrForeignElement, v.ID())
		}
		v.Set(key, value)
	default:
		return fmt.Errorf("%w: %T", structure.ErrForeignElement, el)
	}
	return nil
}

// Vertices returns all vertices in insertion order.
func (g *Graph) Vertices(ctx context.Context) ([]*structure.Vertex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*structure.Vertex, 0, len(g.vertexIDs))
	for _, id := range g.vertexIDs {
		out = append(out, g.vertices[id])
	}
	return out, nil
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges(ctx context.Context) ([]*structure.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*structure.Edge, 0, len(g.edgeIDs))
	for _, id := range g.edgeIDs {
		out = append(out, g.edges[id])
	}
	return out, nil
}

// Tx returns the graph's transaction handle.
func (g *Graph) Tx() structure.Transaction {
	return &memTx{g: g}
}

// Variables returns the graph-wide variable store. Always supported.
func (g *Graph) Variables() (structure.Variables, bool) {
	return &memVars{g: g}, true
}

// Close marks the graph closed. Further mutations fail with ErrGraphClosed.
func (g *Graph) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return nil
}

// ensureSnapshot captures state before the first mutation of a transaction.
// Callers hold the write lock.
func (g *Graph) ensureSnapshot() {
	if g.snap != nil {
		return
	}
	g.snap = &snapshot{
		vertices:  make(map[any]*structure.Vertex, len(g.vertices)),
		vertexIDs: append([]any(nil), g.vertexIDs...),
		edges:     make(map[any]*structure.Edge, len(g.edges)),
		edgeIDs:   append([]any(nil), g.edgeIDs...),
		vars:      make(map[string]any, len(g.vars)),
	}
	clones := make(map[any]*structure.Vertex, len(g.vertices))
	for id, v := range g.vertices {
		clones[id] = cloneVertex(v)
	}
	g.snap.vertices = clones
	for id, e := range g.edges {
		g.snap.edges[id] = cloneEdge(e, clones)
	}
	for k, v := range g.vars {
		g.snap.vars[k] = v
	}
}

// cloneVertex deep-copies a vertex and its property occurrences. Property
// values themselves are shared; the engine treats them as immutable.
func cloneVertex(v *structure.Vertex) *structure.Vertex {
	c := structure.NewVertex(v.ID(), v.Label())
	for _, p := range v.PropertySlice() {
		vp := p.(*structure.VertexProperty)
		var cp *structure.VertexProperty
		if vp.IsHidden() {
			cp = c.AddHiddenProperty(vp.Key(), vp.Value())
		} else {
			cp = c.AddProperty(vp.Key(), vp.Value())
		}
		for _, n := range vp.PropertySlice() {
			cp.Set(n.Key(), n.Value())
		}
	}
	return c
}

// cloneEdge deep-copies an edge, rebinding its endpoints to the cloned
// vertices.
func cloneEdge(e *structure.Edge, vertices map[any]*structure.Vertex) *structure.Edge {
	c := structure.NewEdge(e.ID(), e.Label(), vertices[e.OutVertex().ID()], vertices[e.InVertex().ID()])
	for _, p := range e.PropertySlice() {
		if p.IsHidden() {
			c.SetHiddenProperty(p.Key(), p.Value())
		} else {
			c.SetProperty(p.Key(), p.Value())
		}
	}
	return c
}

// memTx implements structure.Transaction over the snapshot discipline.
type memTx struct {
	g *Graph
}

// Commit makes the mutations since the last commit or rollback permanent by
// dropping the snapshot.
func (t *memTx) Commit() error {
	t.g.mu.Lock()
	defer t.g.mu.Unlock()
	t.g.snap = nil
	return nil
}

// Rollback restores the state captured at the first mutation of the
// transaction. A rollback with no open transaction is a no-op.
func (t *memTx) Rollback() error {
	t.g.mu.Lock()
	defer t.g.mu.Unlock()
	if t.g.snap == nil {
		return nil
	}
	t.g.vertices = t.g.snap.vertices
	t.g.vertexIDs = t.g.snap.vertexIDs
	t.g.edges = t.g.snap.edges
	t.g.edgeIDs = t.g.snap.edgeIDs
	t.g.vars = t.g.snap.vars
	t.g.snap = nil
	return nil
}

// memVars implements structure.Variables over the graph's variable map, so
// variable writes participate in the same transaction as element writes.
type memVars struct {
	g *Graph
}

func (v *memVars) Get(key string) (any, bool) {
	v.g.mu.RLock()
	defer v.g.mu.RUnlock()
	val, ok := v.g.vars[key]
	return val, ok
}

func (v *memVars) Set(key string, value any) {
	v.g.mu.Lock()
	defer v.g.mu.Unlock()
	v.g.ensureSnapshot()
	v.g.vars[key] = value
}

func (v *memVars) Keys() []string {
	v.g.mu.RLock()
	defer v.g.mu.RUnlock()
	keys := make([]string, 0, len(v.g.vars))
	for k := range v.g.vars {
		keys = append(keys, k)
	}
	return keys
}
