// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graphson decodes the JSON wire format for property graphs into a
// structure.Graph. Documents are consumed token by token so a large graph
// never has to fit in memory; individual vertex and edge records are small
// and are decoded whole.
//
// Decoding is transactional: mutations accumulate in the target graph's open
// transaction and are committed every batch-size mutations. A failure rolls
// back the in-flight batch and surfaces to the caller; batches committed
// before the failure stay committed.
package graphson

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/AleutianAI/vireo/services/graph/structure"
)

// DefaultBatchSize is the number of mutations buffered between commits when
// WithBatchSize is not given.
const DefaultBatchSize = 1000

// ValueMapper coerces a decoded property value before it reaches the target
// graph. The wire format only carries JSON scalars; a mapper lets callers
// restore richer types (timestamps, durations, decimals) keyed off the
// property name. Returning an error aborts the decode.
type ValueMapper func(key string, value any) (any, error)

// Reader decodes wire-format documents into a target graph.
type Reader struct {
	batchSize   int
	vertexIDKey string
	edgeIDKey   string
	mapValue    ValueMapper
	log         *slog.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithBatchSize sets how many mutations accumulate before an intermediate
// commit. Values below 1 are clamped to 1.
func WithBatchSize(n int) Option {
	return func(r *Reader) {
		if n < 1 {
			n = 1
		}
		r.batchSize = n
	}
}

// WithVertexIDKey stores each vertex record's identifier under the given
// property key instead of using it as the element identifier. Use this when
// the target store assigns its own identifiers. Endpoint resolution for
// edges still uses the record identifiers.
func WithVertexIDKey(key string) Option {
	return func(r *Reader) { r.vertexIDKey = key }
}

// WithEdgeIDKey stores each edge record's identifier under the given
// property key instead of using it as the element identifier.
func WithEdgeIDKey(key string) Option {
	return func(r *Reader) { r.edgeIDKey = key }
}

// WithValueMapper installs a property-value coercion hook.
func WithValueMapper(fn ValueMapper) Option {
	return func(r *Reader) { r.mapValue = fn }
}

// WithLogger routes decode progress logging. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(r *Reader) { r.log = log }
}

// NewReader returns a Reader with the given options applied over defaults.
func NewReader(opts ...Option) *Reader {
	r := &Reader{
		batchSize: DefaultBatchSize,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type vertexRecord struct {
	ID         any            `json:"id"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties"`
	Hiddens    map[string]any `json:"hiddens"`
	OutE       []edgeRecord   `json:"outE"`
	InE        []edgeRecord   `json:"inE"`
}

type edgeRecord struct {
	ID         any            `json:"id"`
	Label      string         `json:"label"`
	OutV       any            `json:"outV"`
	OutVLabel  string         `json:"outVLabel"`
	InV        any            `json:"inV"`
	InVLabel   string         `json:"inVLabel"`
	Properties map[string]any `json:"properties"`
	Hiddens    map[string]any `json:"hiddens"`
}

// ReadGraph decodes a whole document from src into g. Vertices are upserted
// by identifier before any edge is resolved, so edges may only reference
// identifiers declared in the same document or already present in g. An
// unrecognized top-level field aborts the decode.
func (r *Reader) ReadGraph(ctx context.Context, src io.Reader, g structure.Graph) error {
	dec := json.NewDecoder(src)

	if err := expectDelim(dec, '{'); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	bw := newBatchWriter(r, g)
	if err := r.readTopLevel(ctx, dec, g, bw); err != nil {
		bw.rollback()
		return err
	}
	if err := expectDelim(dec, '}'); err != nil {
		bw.rollback()
		return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return bw.commit()
}

func (r *Reader) readTopLevel(ctx context.Context, dec *json.Decoder, g structure.Graph, bw *batchWriter) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: reading field name: %v", ErrMalformedRecord, err)
		}
		field, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: expected field name, got %v", ErrMalformedRecord, tok)
		}

		switch field {
		case fieldProperties:
			if err := r.readVariables(dec, g); err != nil {
				return err
			}
		case fieldVertices:
			if err := readArray(dec, field, func(rec *vertexRecord) error {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				_, err := bw.writeVertex(ctx, rec)
				return err
			}); err != nil {
				return err
			}
		case fieldEdges:
			if err := readArray(dec, field, func(rec *edgeRecord) error {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				_, err := bw.writeEdge(ctx, rec)
				return err
			}); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %q", ErrUnexpectedField, field)
		}
	}
	return nil
}

// readVariables applies the flat "properties" mapping as graph variables.
// Graphs without variable support still consume the object so the token
// stream stays aligned.
func (r *Reader) readVariables(dec *json.Decoder, g structure.Graph) error {
	var props map[string]any
	if err := dec.Decode(&props); err != nil {
		return fmt.Errorf("%w: graph variables: %v", ErrMalformedRecord, err)
	}
	vars, ok := g.Variables()
	if !ok {
		return nil
	}
	for _, key := range sortedKeys(props) {
		value, err := r.coerce(key, props[key])
		if err != nil {
			return err
		}
		vars.Set(key, value)
	}
	return nil
}

// ReadVertex decodes exactly one vertex record from src and hands it to vm.
// When the record embeds adjacency under "outE"/"inE", the edges matching
// dir are handed to em after the vertex; a nil em skips adjacency entirely.
func (r *Reader) ReadVertex(ctx context.Context, src io.Reader, dir structure.Direction, vm VertexMaker, em EdgeMaker) (*structure.Vertex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rec vertexRecord
	if err := json.NewDecoder(src).Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: vertex: %v", ErrMalformedRecord, err)
	}
	dv, err := r.detachVertex(&rec)
	if err != nil {
		return nil, err
	}
	v, err := vm(dv)
	if err != nil {
		return nil, fmt.Errorf("graphson: vertex %v: %w", rec.ID, err)
	}
	if em == nil {
		return v, nil
	}
	if dir == structure.DirectionOut || dir == structure.DirectionBoth {
		if err := r.makeAdjacent(rec.OutE, em); err != nil {
			return nil, err
		}
	}
	if dir == structure.DirectionIn || dir == structure.DirectionBoth {
		if err := r.makeAdjacent(rec.InE, em); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// ReadEdge decodes exactly one edge record from src and hands it to em.
func (r *Reader) ReadEdge(ctx context.Context, src io.Reader, em EdgeMaker) (*structure.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rec edgeRecord
	if err := json.NewDecoder(src).Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: edge: %v", ErrMalformedRecord, err)
	}
	de, err := r.detachEdge(&rec)
	if err != nil {
		return nil, err
	}
	e, err := em(de)
	if err != nil {
		return nil, fmt.Errorf("graphson: edge %v: %w", rec.ID, err)
	}
	return e, nil
}

func (r *Reader) makeAdjacent(recs []edgeRecord, em EdgeMaker) error {
	for i := range recs {
		de, err := r.detachEdge(&recs[i])
		if err != nil {
			return err
		}
		if _, err := em(de); err != nil {
			return fmt.Errorf("graphson: edge %v: %w", recs[i].ID, err)
		}
	}
	return nil
}

func (r *Reader) detachVertex(rec *vertexRecord) (*DetachedVertex, error) {
	if rec.ID != nil && !scalarID(rec.ID) {
		return nil, fmt.Errorf("%w: vertex id %v is not a scalar", ErrMalformedRecord, rec.ID)
	}
	props, err := r.coerceAll(rec.Properties)
	if err != nil {
		return nil, err
	}
	hiddens, err := r.coerceAll(rec.Hiddens)
	if err != nil {
		return nil, err
	}
	return &DetachedVertex{
		ID:         rec.ID,
		Label:      rec.Label,
		Properties: props,
		Hiddens:    hiddens,
	}, nil
}

func (r *Reader) detachEdge(rec *edgeRecord) (*DetachedEdge, error) {
	if rec.ID != nil && !scalarID(rec.ID) {
		return nil, fmt.Errorf("%w: edge id %v is not a scalar", ErrMalformedRecord, rec.ID)
	}
	for _, endpoint := range []any{rec.OutV, rec.InV} {
		if endpoint != nil && !scalarID(endpoint) {
			return nil, fmt.Errorf("%w: edge %v: endpoint id %v is not a scalar",
				ErrMalformedRecord, rec.ID, endpoint)
		}
	}
	props, err := r.coerceAll(rec.Properties)
	if err != nil {
		return nil, err
	}
	hiddens, err := r.coerceAll(rec.Hiddens)
	if err != nil {
		return nil, err
	}
	return &DetachedEdge{
		ID:         rec.ID,
		Label:      rec.Label,
		OutV:       rec.OutV,
		OutVLabel:  rec.OutVLabel,
		InV:        rec.InV,
		InVLabel:   rec.InVLabel,
		Properties: props,
		Hiddens:    hiddens,
	}, nil
}

func (r *Reader) coerce(key string, value any) (any, error) {
	if r.mapValue == nil {
		return value, nil
	}
	mapped, err := r.mapValue(key, value)
	if err != nil {
		return nil, fmt.Errorf("graphson: mapping value for %q: %w", key, err)
	}
	return mapped, nil
}

func (r *Reader) coerceAll(props map[string]any) (map[string]any, error) {
	if r.mapValue == nil || len(props) == 0 {
		return props, nil
	}
	mapped := make(map[string]any, len(props))
	for key, value := range props {
		v, err := r.coerce(key, value)
		if err != nil {
			return nil, err
		}
		mapped[key] = v
	}
	return mapped, nil
}

// readArray streams one record at a time out of a JSON array.
func readArray[T any](dec *json.Decoder, field string, fn func(*T) error) error {
	if err := expectDelim(dec, '['); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedRecord, field, err)
	}
	for dec.More() {
		var rec T
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformedRecord, field, err)
		}
		if err := fn(&rec); err != nil {
			return err
		}
	}
	if err := expectDelim(dec, ']'); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedRecord, field, err)
	}
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// scalarID reports whether a decoded identifier token can serve as an
// element identity. Wire identifiers are JSON scalars; an object or array
// in an id position is a malformed record, not an identity, and must be
// rejected before it reaches a cache lookup.
func scalarID(id any) bool {
	switch id.(type) {
	case string, float64, bool, json.Number:
		return true
	default:
		return false
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
