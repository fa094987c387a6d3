// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graphson

import (
	"context"

	"github.com/AleutianAI/vireo/services/graph/structure"
)

// DetachedVertex is a graph-independent snapshot of one vertex record. It
// exists only for the hand-off between the decoder and a maker function and
// is consumed exactly once.
type DetachedVertex struct {
	ID         any
	Label      string
	Properties map[string]any
	Hiddens    map[string]any
}

// DetachedEdge is a graph-independent snapshot of one edge record. Endpoint
// vertices are carried as identifier/label pairs, not live references.
type DetachedEdge struct {
	ID         any
	Label      string
	OutV       any
	OutVLabel  string
	InV        any
	InVLabel   string
	Properties map[string]any
	Hiddens    map[string]any
}

// VertexMaker turns a detached vertex into a live one. The single-record
// entry points call it once per vertex record.
type VertexMaker func(dv *DetachedVertex) (*structure.Vertex, error)

// EdgeMaker turns a detached edge into a live one.
type EdgeMaker func(de *DetachedEdge) (*structure.Edge, error)

// GraphVertexMaker returns a VertexMaker that upserts into g and attaches
// the record's visible and hidden properties.
func GraphVertexMaker(ctx context.Context, g structure.Graph) VertexMaker {
	return func(dv *DetachedVertex) (*structure.Vertex, error) {
		v, err := g.UpsertVertex(ctx, dv.ID, dv.Label)
		if err != nil {
			return nil, err
		}
		if err := applyProperties(ctx, g, v, dv.Properties, false); err != nil {
			return nil, err
		}
		if err := applyProperties(ctx, g, v, dv.Hiddens, true); err != nil {
			return nil, err
		}
		return v, nil
	}
}

// GraphEdgeMaker returns an EdgeMaker that resolves both endpoints in g,
// upserting them by identifier and label when absent, then creates the edge.
func GraphEdgeMaker(ctx context.Context, g structure.Graph) EdgeMaker {
	return func(de *DetachedEdge) (*structure.Edge, error) {
		out, err := g.UpsertVertex(ctx, de.OutV, de.OutVLabel)
		if err != nil {
			return nil, err
		}
		in, err := g.UpsertVertex(ctx, de.InV, de.InVLabel)
		if err != nil {
			return nil, err
		}
		e, err := g.CreateEdge(ctx, de.ID, de.Label, out, in)
		if err != nil {
			return nil, err
		}
		if err := applyProperties(ctx, g, e, de.Properties, false); err != nil {
			return nil, err
		}
		if err := applyProperties(ctx, g, e, de.Hiddens, true); err != nil {
			return nil, err
		}
		return e, nil
	}
}

func applyProperties(ctx context.Context, g structure.Graph, el structure.Element, props map[string]any, hidden bool) error {
	for _, key := range sortedKeys(props) {
		if err := g.SetProperty(ctx, el, key, props[key], hidden); err != nil {
			return err
		}
	}
	return nil
}
