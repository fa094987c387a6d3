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
	"fmt"

	"github.com/AleutianAI/vireo/services/graph/structure"
)

// batchWriter applies decoded records to the target graph under the batched
// transaction discipline. Every mutation bumps a counter; when the counter
// reaches the reader's batch size the open transaction is committed and the
// counter resets. Previously decoded vertices are kept in a lookup cache so
// edge endpoint resolution stays off the graph's query path.
type batchWriter struct {
	reader   *Reader
	g        structure.Graph
	pending  int
	vertices map[any]*structure.Vertex
}

func newBatchWriter(r *Reader, g structure.Graph) *batchWriter {
	return &batchWriter{
		reader:   r,
		g:        g,
		vertices: make(map[any]*structure.Vertex),
	}
}

func (bw *batchWriter) writeVertex(ctx context.Context, rec *vertexRecord) (*structure.Vertex, error) {
	if rec.ID == nil {
		return nil, fmt.Errorf("%w: vertex without id", ErrMalformedRecord)
	}
	if !scalarID(rec.ID) {
		return nil, fmt.Errorf("%w: vertex id %v is not a scalar", ErrMalformedRecord, rec.ID)
	}
	if v, ok := bw.vertices[rec.ID]; ok {
		return v, nil
	}

	// An id-key override stores the record identifier as a plain property
	// and lets the target graph assign the element identifier.
	elementID := rec.ID
	if bw.reader.vertexIDKey != "" {
		elementID = nil
	}
	v, err := bw.g.UpsertVertex(ctx, elementID, rec.Label)
	if err != nil {
		return nil, fmt.Errorf("graphson: vertex %v: %w", rec.ID, err)
	}
	bw.vertices[rec.ID] = v
	bw.bump()
	if bw.reader.vertexIDKey != "" {
		if err := bw.setProperty(ctx, v, bw.reader.vertexIDKey, rec.ID, false); err != nil {
			return nil, fmt.Errorf("graphson: vertex %v: %w", rec.ID, err)
		}
	}
	if err := bw.writeProperties(ctx, v, rec.Properties, rec.Hiddens); err != nil {
		return nil, fmt.Errorf("graphson: vertex %v: %w", rec.ID, err)
	}
	if err := bw.maybeCommit(); err != nil {
		return nil, err
	}
	return v, nil
}

func (bw *batchWriter) writeEdge(ctx context.Context, rec *edgeRecord) (*structure.Edge, error) {
	if rec.ID != nil && !scalarID(rec.ID) {
		return nil, fmt.Errorf("%w: edge id %v is not a scalar", ErrMalformedRecord, rec.ID)
	}
	out, err := bw.resolve(ctx, rec.OutV)
	if err != nil {
		return nil, fmt.Errorf("graphson: edge %v: outV: %w", rec.ID, err)
	}
	in, err := bw.resolve(ctx, rec.InV)
	if err != nil {
		return nil, fmt.Errorf("graphson: edge %v: inV: %w", rec.ID, err)
	}

	elementID := rec.ID
	if bw.reader.edgeIDKey != "" {
		elementID = nil
	}
	e, err := bw.g.CreateEdge(ctx, elementID, rec.Label, out, in)
	if err != nil {
		return nil, fmt.Errorf("graphson: edge %v: %w", rec.ID, err)
	}
	bw.bump()
	if bw.reader.edgeIDKey != "" && rec.ID != nil {
		if err := bw.setProperty(ctx, e, bw.reader.edgeIDKey, rec.ID, false); err != nil {
			return nil, fmt.Errorf("graphson: edge %v: %w", rec.ID, err)
		}
	}
	if err := bw.writeProperties(ctx, e, rec.Properties, rec.Hiddens); err != nil {
		return nil, fmt.Errorf("graphson: edge %v: %w", rec.ID, err)
	}
	if err := bw.maybeCommit(); err != nil {
		return nil, err
	}
	return e, nil
}

// resolve looks an endpoint up in the decode-pass cache first, then in the
// target graph for endpoints that predate this document.
func (bw *batchWriter) resolve(ctx context.Context, id any) (*structure.Vertex, error) {
	if id == nil {
		return nil, fmt.Errorf("%w: missing endpoint id", ErrMalformedRecord)
	}
	if !scalarID(id) {
		return nil, fmt.Errorf("%w: endpoint id %v is not a scalar", ErrMalformedRecord, id)
	}
	if v, ok := bw.vertices[id]; ok {
		return v, nil
	}
	if v, ok := bw.g.FindVertex(ctx, id); ok {
		bw.vertices[id] = v
		return v, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownVertex, id)
}

func (bw *batchWriter) writeProperties(ctx context.Context, el structure.Element, props, hiddens map[string]any) error {
	for _, key := range sortedKeys(props) {
		if err := bw.setProperty(ctx, el, key, props[key], false); err != nil {
			return err
		}
	}
	for _, key := range sortedKeys(hiddens) {
		if err := bw.setProperty(ctx, el, key, hiddens[key], true); err != nil {
			return err
		}
	}
	return nil
}

func (bw *batchWriter) setProperty(ctx context.Context, el structure.Element, key string, value any, hidden bool) error {
	value, err := bw.reader.coerce(key, value)
	if err != nil {
		return err
	}
	if err := bw.g.SetProperty(ctx, el, key, value, hidden); err != nil {
		return err
	}
	bw.bump()
	return nil
}

func (bw *batchWriter) bump() {
	bw.pending++
}

func (bw *batchWriter) maybeCommit() error {
	if bw.pending < bw.reader.batchSize {
		return nil
	}
	return bw.commit()
}

func (bw *batchWriter) commit() error {
	if err := bw.g.Tx().Commit(); err != nil {
		return fmt.Errorf("%w: commit after %d mutations: %v", ErrTransaction, bw.pending, err)
	}
	bw.reader.log.Debug("graphson batch committed", "mutations", bw.pending)
	bw.pending = 0
	return nil
}

// rollback discards the in-flight batch. A rollback failure is logged and
// dropped; the decode error that triggered the rollback is the one the
// caller needs to see.
func (bw *batchWriter) rollback() {
	if err := bw.g.Tx().Rollback(); err != nil {
		bw.reader.log.Warn("graphson rollback failed", "error", err)
	}
	bw.pending = 0
}
