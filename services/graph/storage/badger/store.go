// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/AleutianAI/vireo/services/graph/structure"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	vertexPrefix   = "v:"
	edgePrefix     = "e:"
	variablePrefix = "g:var:"
)

// Store is a BadgerDB-backed property graph.
//
// Mutations are written through to a lazily opened read-write badger
// transaction; Tx().Commit makes them durable and Tx().Rollback discards
// them. Reads go through the same transaction so a decode pass sees its own
// uncommitted writes.
//
// Materialized elements are cached so repeated lookups of the same
// identifier return the same pointer; the cache is dropped on rollback
// because the live objects then no longer match the stored state.
//
// All methods are safe for concurrent use, but as with every
// structure.Graph, callers running whole transactional passes must serialize
// those passes themselves.
type Store struct {
	mu       sync.Mutex
	db       *badger.DB
	gc       *GCRunner
	log      *slog.Logger
	txn      *badger.Txn
	vertices map[string]*structure.Vertex
	edges    map[string]*structure.Edge
	closed   bool
}

var _ structure.Graph = (*Store)(nil)

// NewStore opens a BadgerDB-backed graph with the given configuration.
// Call Close when done.
func NewStore(cfg Config) (*Store, error) {
	db, err := open(cfg)
	if err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	s := &Store{
		db:       db,
		log:      log,
		vertices: make(map[string]*structure.Vertex),
		edges:    make(map[string]*structure.Edge),
	}

	if cfg.GCInterval > 0 && !cfg.InMemory {
		runner, err := NewGCRunner(db, cfg.GCInterval, cfg.GCDiscardRatio, cfg.Logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("create GC runner: %w", err)
		}
		s.gc = runner
		runner.Start()
	}

	return s, nil
}

// propDoc is the stored form of one property occurrence.
type propDoc struct {
	Key    string    `json:"key"`
	Value  any       `json:"value"`
	Hidden bool      `json:"hidden,omitempty"`
	Nested []propDoc `json:"nested,omitempty"`
}

type vertexDoc struct {
	ID    json.RawMessage `json:"id"`
	Label string          `json:"label"`
	Props []propDoc       `json:"props,omitempty"`
}

type edgeDoc struct {
	ID    json.RawMessage `json:"id"`
	Label string          `json:"label"`
	OutV  json.RawMessage `json:"outV"`
	InV   json.RawMessage `json:"inV"`
	Props []propDoc       `json:"props,omitempty"`
}

func encodeID(id any) (string, error) {
	b, err := json.Marshal(id)
	if err != nil {
		return "", fmt.Errorf("encode identifier %v: %w", id, err)
	}
	return string(b), nil
}

// writeTxn returns the open read-write transaction, starting one if needed.
func (s *Store) writeTxn() *badger.Txn {
	if s.txn == nil {
		s.txn = s.db.NewTransaction(true)
	}
	return s.txn
}

// UpsertVertex returns the vertex with the given identifier, creating it
// with the label when absent. A nil identifier receives a generated UUID.
func (s *Store) UpsertVertex(ctx context.Context, id any, label string) (*structure.Vertex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, structure.ErrGraphClosed
	}
	if id == nil {
		id = uuid.NewString()
	}
	key, err := encodeID(id)
	if err != nil {
		return nil, err
	}
	if v, ok := s.vertices[key]; ok {
		return v, nil
	}
	if v, err := s.loadVertex(key); err == nil {
		return v, nil
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, err
	}

	v := structure.NewVertex(id, label)
	if err := s.putVertex(key, v); err != nil {
		return nil, err
	}
	s.vertices[key] = v
	return v, nil
}

// FindVertex returns the vertex with the given identifier.
func (s *Store) FindVertex(ctx context.Context, id any) (*structure.Vertex, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false
	}
	key, err := encodeID(id)
	if err != nil {
		return nil, false
	}
	if v, ok := s.vertices[key]; ok {
		return v, true
	}
	v, err := s.loadVertex(key)
	if err != nil {
		return nil, false
	}
	return v, true
}

// CreateEdge creates an edge between two vertices of this store. A nil
// identifier receives a generated UUID.
func (s *Store) CreateEdge(ctx context.Context, id any, label string, out, in *structure.Vertex) (*structure.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if out == nil || in == nil {
		return nil, structure.ErrNilEndpoint
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, structure.ErrGraphClosed
	}
	if err := s.checkOwnedVertex(out); err != nil {
		return nil, err
	}
	if err := s.checkOwnedVertex(in); err != nil {
		return nil, err
	}
	if id == nil {
		id = uuid.NewString()
	}
	key, err := encodeID(id)
	if err != nil {
		return nil, err
	}
	if _, ok := s.edges[key]; ok {
		return nil, fmt.Errorf("%w: %v", structure.ErrDuplicateEdge, id)
	}
	if _, err := s.writeTxn().Get([]byte(edgePrefix + key)); err == nil {
		return nil, fmt.Errorf("%w: %v", structure.ErrDuplicateEdge, id)
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("lookup edge %v: %w", id, err)
	}

	e := structure.NewEdge(id, label, out, in)
	if err := s.putEdge(key, e); err != nil {
		return nil, err
	}
	s.edges[key] = e
	return e, nil
}

// SetProperty attaches a property to an element of this store and rewrites
// the owning element's document. Vertex properties accumulate per key; edge
// properties replace per key.
func (s *Store) SetProperty(ctx context.Context, el structure.Element, key string, value any, hidden bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return structure.ErrGraphClosed
	}

	switch v := el.(type) {
	case *structure.Vertex:
		if err := s.checkOwnedVertex(v); err != nil {
			return err
		}
		if hidden {
			v.AddHiddenProperty(key, value)
		} else {
			v.AddProperty(key, value)
		}
		return s.rewriteVertex(v)
	case *structure.Edge:
		ek, err := encodeID(v.ID())
		if err != nil {
			return err
		}
		if s.edges[ek] != v {
			return fmt.Errorf("%w: edge %v", structure.ErrForeignElement, v.ID())
		}
		if hidden {
			v.SetHiddenProperty(key, value)
		} else {
			v.SetProperty(key, value)
		}
		return s.putEdge(ek, v)
	case *structure.VertexProperty:
		if err := s.checkOwnedVertex(v.Vertex()); err != nil {
			return err
		}
		v.Set(key, value)
		return s.rewriteVertex(v.Vertex())
	default:
		return fmt.Errorf("%w: %T", structure.ErrForeignElement, el)
	}
}

// Vertices returns all vertices in identifier key order.
func (s *Store) Vertices(ctx context.Context) ([]*structure.Vertex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, structure.ErrGraphClosed
	}

	var out []*structure.Vertex
	err := s.iterate(vertexPrefix, func(key string, raw []byte) error {
		v, err := s.materializeVertex(key, raw)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Edges returns all edges in identifier key order.
func (s *Store) Edges(ctx context.Context) ([]*structure.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, structure.ErrGraphClosed
	}

	var out []*structure.Edge
	err := s.iterate(edgePrefix, func(key string, raw []byte) error {
		e, err := s.materializeEdge(key, raw)
		if err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Tx returns the store's transaction handle.
func (s *Store) Tx() structure.Transaction {
	return &storeTx{s: s}
}

// Variables returns the store's graph-wide variable store.
func (s *Store) Variables() (structure.Variables, bool) {
	return &storeVars{s: s}, true
}

// Close discards any open transaction, stops garbage collection and closes
// the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.txn != nil {
		s.txn.Discard()
		s.txn = nil
	}
	if s.gc != nil {
		s.gc.Stop()
	}
	return s.db.Close()
}

func (s *Store) checkOwnedVertex(v *structure.Vertex) error {
	key, err := encodeID(v.ID())
	if err != nil {
		return err
	}
	if s.vertices[key] != v {
		return fmt.Errorf("%w: vertex %v", structure.ErrForeignElement, v.ID())
	}
	return nil
}

func (s *Store) rewriteVertex(v *structure.Vertex) error {
	key, err := encodeID(v.ID())
	if err != nil {
		return err
	}
	return s.putVertex(key, v)
}

func (s *Store) putVertex(key string, v *structure.Vertex) error {
	doc := vertexDoc{
		ID:    json.RawMessage(key),
		Label: v.Label(),
		Props: vertexProps(v),
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode vertex %v: %w", v.ID(), err)
	}
	if err := s.writeTxn().Set([]byte(vertexPrefix+key), raw); err != nil {
		return fmt.Errorf("write vertex %v: %w", v.ID(), err)
	}
	return nil
}

func (s *Store) putEdge(key string, e *structure.Edge) error {
	outKey, err := encodeID(e.OutVertex().ID())
	if err != nil {
		return err
	}
	inKey, err := encodeID(e.InVertex().ID())
	if err != nil {
		return err
	}
	doc := edgeDoc{
		ID:    json.RawMessage(key),
		Label: e.Label(),
		OutV:  json.RawMessage(outKey),
		InV:   json.RawMessage(inKey),
		Props: edgeProps(e),
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode edge %v: %w", e.ID(), err)
	}
	if err := s.writeTxn().Set([]byte(edgePrefix+key), raw); err != nil {
		return fmt.Errorf("write edge %v: %w", e.ID(), err)
	}
	return nil
}

func vertexProps(v *structure.Vertex) []propDoc {
	props := v.PropertySlice()
	out := make([]propDoc, 0, len(props))
	for _, p := range props {
		doc := propDoc{Key: p.Key(), Value: p.Value(), Hidden: p.IsHidden()}
		if vp, ok := p.(*structure.VertexProperty); ok {
			for _, n := range vp.PropertySlice() {
				doc.Nested = append(doc.Nested, propDoc{
					Key:    n.Key(),
					Value:  n.Value(),
					Hidden: n.IsHidden(),
				})
			}
		}
		out = append(out, doc)
	}
	return out
}

func edgeProps(e *structure.Edge) []propDoc {
	props := e.PropertySlice()
	out := make([]propDoc, 0, len(props))
	for _, p := range props {
		out = append(out, propDoc{Key: p.Key(), Value: p.Value(), Hidden: p.IsHidden()})
	}
	return out
}

// loadVertex reads and materializes one vertex by encoded identifier,
// installing it in the cache. Callers hold s.mu.
func (s *Store) loadVertex(key string) (*structure.Vertex, error) {
	item, err := s.writeTxn().Get([]byte(vertexPrefix + key))
	if err != nil {
		return nil, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("read vertex %s: %w", key, err)
	}
	return s.materializeVertex(key, raw)
}

func (s *Store) materializeVertex(key string, raw []byte) (*structure.Vertex, error) {
	if v, ok := s.vertices[key]; ok {
		return v, nil
	}
	var doc vertexDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode vertex %s: %w", key, err)
	}
	var id any
	if err := json.Unmarshal(doc.ID, &id); err != nil {
		return nil, fmt.Errorf("decode vertex id %s: %w", key, err)
	}

	v := structure.NewVertex(id, doc.Label)
	for _, p := range doc.Props {
		var vp *structure.VertexProperty
		if p.Hidden {
			vp = v.AddHiddenProperty(p.Key, p.Value)
		} else {
			vp = v.AddProperty(p.Key, p.Value)
		}
		for _, n := range p.Nested {
			vp.Set(n.Key, n.Value)
		}
	}
	s.vertices[key] = v
	return v, nil
}

func (s *Store) materializeEdge(key string, raw []byte) (*structure.Edge, error) {
	if e, ok := s.edges[key]; ok {
		return e, nil
	}
	var doc edgeDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode edge %s: %w", key, err)
	}
	var id any
	if err := json.Unmarshal(doc.ID, &id); err != nil {
		return nil, fmt.Errorf("decode edge id %s: %w", key, err)
	}

	out, err := s.loadVertex(string(doc.OutV))
	if err != nil {
		return nil, fmt.Errorf("edge %s out endpoint: %w", key, err)
	}
	in, err := s.loadVertex(string(doc.InV))
	if err != nil {
		return nil, fmt.Errorf("edge %s in endpoint: %w", key, err)
	}

	e := structure.NewEdge(id, doc.Label, out, in)
	for _, p := range doc.Props {
		if p.Hidden {
			e.SetHiddenProperty(p.Key, p.Value)
		} else {
			e.SetProperty(p.Key, p.Value)
		}
	}
	s.edges[key] = e
	return e, nil
}

// iterate walks every key under prefix in the open transaction, handing the
// stripped key and raw value to fn.
func (s *Store) iterate(prefix string, fn func(key string, raw []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)

	it := s.writeTxn().NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		key := string(item.Key()[len(prefix):])
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("read %s%s: %w", prefix, key, err)
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	return nil
}

// storeTx commits or discards the store's open badger transaction.
type storeTx struct {
	s *Store
}

func (t *storeTx) Commit() error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.s.txn == nil {
		return nil
	}
	err := t.s.txn.Commit()
	t.s.txn = nil
	if err != nil {
		// The materialized cache no longer matches stored state.
		t.s.dropCache()
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (t *storeTx) Rollback() error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.s.txn == nil {
		return nil
	}
	t.s.txn.Discard()
	t.s.txn = nil
	t.s.dropCache()
	return nil
}

func (s *Store) dropCache() {
	s.vertices = make(map[string]*structure.Vertex)
	s.edges = make(map[string]*structure.Edge)
}

// storeVars stores graph variables under the g:var: key prefix, inside the
// store's transaction like any other mutation.
type storeVars struct {
	s *Store
}

func (v *storeVars) Get(key string) (any, bool) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.closed {
		return nil, false
	}
	item, err := v.s.writeTxn().Get([]byte(variablePrefix + key))
	if err != nil {
		return nil, false
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, false
	}
	return value, true
}

func (v *storeVars) Set(key string, value any) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.closed {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		v.s.log.Warn("graph variable not serializable", "key", key, "error", err)
		return
	}
	if err := v.s.writeTxn().Set([]byte(variablePrefix+key), raw); err != nil {
		v.s.log.Warn("graph variable write failed", "key", key, "error", err)
	}
}

func (v *storeVars) Keys() []string {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.closed {
		return nil
	}
	var keys []string
	_ = v.s.iterate(variablePrefix, func(key string, _ []byte) error {
		keys = append(keys, key)
		return nil
	})
	return keys
}
