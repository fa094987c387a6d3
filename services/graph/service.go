// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph provides the HTTP service for the property-graph engine.
//
// The service manages named graphs on pluggable storage backends and exposes
// endpoints for:
//   - Creating, listing and dropping graphs
//   - Loading wire-format documents into a graph
//   - Running predicate-filtered traversal queries
//   - Reading single vertices and graph variables
package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/AleutianAI/vireo/services/graph/graphson"
	"github.com/AleutianAI/vireo/services/graph/memory"
	badgerstore "github.com/AleutianAI/vireo/services/graph/storage/badger"
	"github.com/AleutianAI/vireo/services/graph/structure"
	"github.com/AleutianAI/vireo/services/graph/traversal"
)

// ServiceConfig configures the graph service.
type ServiceConfig struct {
	// MaxGraphs is the maximum number of graphs the service manages.
	// Default: 16
	MaxGraphs int

	// DefaultBackend is the backend used when a create request names none.
	// Default: "memory"
	DefaultBackend string

	// DataDir is the directory for badger-backed graphs. Each graph gets
	// a subdirectory named after it. Required when badger graphs are
	// created.
	DataDir string

	// BatchSize is the decode batch size for load operations.
	// Default: graphson.DefaultBatchSize
	BatchSize int

	// QueryLimit is the default result cap for queries. Default: 1000
	QueryLimit int

	// QueryTimeout bounds a single query. Default: 30s
	QueryTimeout time.Duration

	// Logger is the service logger. Default: slog.Default()
	Logger *slog.Logger
}

// DefaultServiceConfig returns sensible defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxGraphs:      16,
		DefaultBackend: BackendMemory,
		BatchSize:      graphson.DefaultBatchSize,
		QueryLimit:     1000,
		QueryTimeout:   30 * time.Second,
	}
}

// managedGraph pairs a graph with its metadata and load lock.
type managedGraph struct {
	name      string
	backend   string
	g         structure.Graph
	createdAt time.Time

	// loadMu serializes decode passes: a decode owns the graph's open
	// transaction for its whole duration.
	loadMu sync.Mutex
}

// Service manages named graphs.
//
// Thread Safety:
//
//	Service is safe for concurrent use. Loads against the same graph are
//	rejected while one is running; queries may run concurrently with each
//	other.
type Service struct {
	config ServiceConfig
	log    *slog.Logger

	mu     sync.RWMutex
	graphs map[string]*managedGraph
}

// NewService creates a graph service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.MaxGraphs <= 0 {
		cfg.MaxGraphs = 16
	}
	if cfg.DefaultBackend == "" {
		cfg.DefaultBackend = BackendMemory
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = graphson.DefaultBatchSize
	}
	if cfg.QueryLimit <= 0 {
		cfg.QueryLimit = 1000
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 30 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		config: cfg,
		log:    log,
		graphs: make(map[string]*managedGraph),
	}
}

// CreateGraph registers a new named graph on the requested backend.
func (s *Service) CreateGraph(ctx context.Context, name, backend string) (GraphInfo, error) {
	if backend == "" {
		backend = s.config.DefaultBackend
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.graphs[name]; ok {
		return GraphInfo{}, fmt.Errorf("%w: %s", ErrGraphExists, name)
	}
	if len(s.graphs) >= s.config.MaxGraphs {
		return GraphInfo{}, fmt.Errorf("%w: %d", ErrTooManyGraphs, s.config.MaxGraphs)
	}

	var g structure.Graph
	switch backend {
	case BackendMemory:
		g = memory.New()
	case BackendBadger:
		cfg := badgerstore.DefaultConfig()
		cfg.Path = filepath.Join(s.config.DataDir, name)
		cfg.Logger = s.log
		store, err := badgerstore.NewStore(cfg)
		if err != nil {
			return GraphInfo{}, fmt.Errorf("open badger graph %s: %w", name, err)
		}
		g = store
	default:
		return GraphInfo{}, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}

	mg := &managedGraph{
		name:      name,
		backend:   backend,
		g:         g,
		createdAt: time.Now().UTC(),
	}
	s.graphs[name] = mg
	s.log.Info("graph created", "graph", name, "backend", backend)
	return mg.info(), nil
}

// DropGraph closes and removes a graph. Badger data files stay on disk.
func (s *Service) DropGraph(ctx context.Context, name string) error {
	s.mu.Lock()
	mg, ok := s.graphs[name]
	if ok {
		delete(s.graphs, name)
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrGraphNotFound, name)
	}
	if err := mg.g.Close(); err != nil {
		return fmt.Errorf("close graph %s: %w", name, err)
	}
	s.log.Info("graph dropped", "graph", name)
	return nil
}

// ListGraphs returns metadata for every managed graph.
func (s *Service) ListGraphs(ctx context.Context) []GraphInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]GraphInfo, 0, len(s.graphs))
	for _, mg := range s.graphs {
		out = append(out, mg.info())
	}
	return out
}

// GraphCount returns the number of managed graphs.
func (s *Service) GraphCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.graphs)
}

// Load decodes a wire-format document from src into the named graph. Only
// one load may run against a graph at a time; concurrent loads are rejected
// with ErrLoadInProgress rather than queued, so callers can retry with
// backoff.
func (s *Service) Load(ctx context.Context, name string, src io.Reader) (LoadResponse, error) {
	mg, err := s.lookup(name)
	if err != nil {
		return LoadResponse{}, err
	}

	if !mg.loadMu.TryLock() {
		return LoadResponse{}, fmt.Errorf("%w: %s", ErrLoadInProgress, name)
	}
	defer mg.loadMu.Unlock()

	start := time.Now()
	reader := graphson.NewReader(
		graphson.WithBatchSize(s.config.BatchSize),
		graphson.WithLogger(s.log),
	)
	err = reader.ReadGraph(ctx, src, mg.g)
	recordLoadMetrics(ctx, time.Since(start), err == nil)
	if err != nil {
		s.log.Warn("graph load failed", "graph", name, "error", err)
		return LoadResponse{}, err
	}

	vs, err := mg.g.Vertices(ctx)
	if err != nil {
		return LoadResponse{}, err
	}
	es, err := mg.g.Edges(ctx)
	if err != nil {
		return LoadResponse{}, err
	}

	resp := LoadResponse{
		Vertices:   len(vs),
		Edges:      len(es),
		DurationMs: time.Since(start).Milliseconds(),
	}
	s.log.Info("graph loaded", "graph", name,
		"vertices", resp.Vertices, "edges", resp.Edges, "duration_ms", resp.DurationMs)
	return resp, nil
}

// Query compiles the request into a traversal over the named graph and
// collects up to Limit results.
func (s *Service) Query(ctx context.Context, name string, req QueryRequest) (QueryResponse, error) {
	mg, err := s.lookup(name)
	if err != nil {
		return QueryResponse{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	limit := req.Limit
	if limit <= 0 || limit > s.config.QueryLimit {
		limit = s.config.QueryLimit
	}

	t := traversal.New(ctx).V(mg.g)
	for _, clause := range req.Has {
		pred, perr := parsePredicate(clause.Predicate)
		if perr != nil {
			return QueryResponse{}, perr
		}
		t = t.Has(clause.Key, pred, clause.Value)
	}

	projectVertices := false
	switch req.Projection {
	case "", "vertices":
		projectVertices = true
	case "values":
		t = t.Values(req.Keys...)
	case "properties":
		t = t.Properties(req.Keys...)
	case "hidden_values":
		t = t.HiddenValues(req.Keys...)
	case "hidden_properties":
		t = t.Hiddens(req.Keys...)
	default:
		return QueryResponse{}, fmt.Errorf("%w: projection %q", ErrInvalidQuery, req.Projection)
	}
	if err := t.Err(); err != nil {
		return QueryResponse{}, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	start := time.Now()
	results := make([]any, 0, min(limit, 64))
	for len(results) < limit {
		value, err := t.Next()
		if errors.Is(err, traversal.ErrTraversalExhausted) {
			break
		}
		if err != nil {
			recordQueryMetrics(ctx, req.Projection, time.Since(start), len(results))
			return QueryResponse{}, err
		}
		results = append(results, projectResult(value, projectVertices))
	}
	recordQueryMetrics(ctx, req.Projection, time.Since(start), len(results))

	return QueryResponse{Results: results, Count: len(results)}, nil
}

// GetVertex returns the wire form of one vertex. String identifiers are
// matched as-is, then re-tried as a number so JSON-decoded numeric ids stay
// addressable.
func (s *Service) GetVertex(ctx context.Context, name, id string) (VertexView, error) {
	mg, err := s.lookup(name)
	if err != nil {
		return VertexView{}, err
	}

	v, ok := mg.g.FindVertex(ctx, id)
	if !ok {
		if n, perr := parseNumericID(id); perr == nil {
			v, ok = mg.g.FindVertex(ctx, n)
		}
	}
	if !ok {
		return VertexView{}, fmt.Errorf("%w: %s", ErrVertexNotFound, id)
	}
	return vertexView(v), nil
}

// GetVariables returns the named graph's variable store contents.
func (s *Service) GetVariables(ctx context.Context, name string) (map[string]any, error) {
	mg, err := s.lookup(name)
	if err != nil {
		return nil, err
	}

	vars, ok := mg.g.Variables()
	if !ok {
		return map[string]any{}, nil
	}
	out := make(map[string]any)
	for _, key := range vars.Keys() {
		if value, ok := vars.Get(key); ok {
			out[key] = value
		}
	}
	return out, nil
}

// Close closes every managed graph.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for name, mg := range s.graphs {
		if err := mg.g.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close graph %s: %w", name, err)
		}
		delete(s.graphs, name)
	}
	return firstErr
}

func (s *Service) lookup(name string) (*managedGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mg, ok := s.graphs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGraphNotFound, name)
	}
	return mg, nil
}

func (mg *managedGraph) info() GraphInfo {
	return GraphInfo{
		Name:      mg.name,
		Backend:   mg.backend,
		CreatedAt: mg.createdAt.Format(time.RFC3339),
	}
}

// parsePredicate maps a wire predicate name to its traversal predicate.
func parsePredicate(name string) (traversal.Predicate, error) {
	switch name {
	case "eq":
		return traversal.Equal, nil
	case "neq":
		return traversal.NotEqual, nil
	case "gt":
		return traversal.GreaterThan, nil
	case "gte":
		return traversal.GreaterThanOrEqual, nil
	case "lt":
		return traversal.LessThan, nil
	case "lte":
		return traversal.LessThanOrEqual, nil
	case "within":
		return traversal.Within, nil
	case "without":
		return traversal.Without, nil
	default:
		return 0, fmt.Errorf("%w: predicate %q", ErrInvalidQuery, name)
	}
}

func parseNumericID(id string) (any, error) {
	var n float64
	if _, err := fmt.Sscanf(id, "%g", &n); err != nil {
		return nil, err
	}
	return n, nil
}

func projectResult(value any, asVertex bool) any {
	if !asVertex {
		if p, ok := value.(structure.Property); ok {
			return PropertyView{Key: p.Key(), Value: p.Value(), Hidden: p.IsHidden()}
		}
		return value
	}
	if v, ok := value.(*structure.Vertex); ok {
		return vertexView(v)
	}
	return value
}

func vertexView(v *structure.Vertex) VertexView {
	props := v.PropertySlice()
	view := VertexView{
		ID:         v.ID(),
		Label:      v.Label(),
		Properties: make([]PropertyView, 0, len(props)),
	}
	for _, p := range props {
		view.Properties = append(view.Properties, PropertyView{
			Key:    p.Key(),
			Value:  p.Value(),
			Hidden: p.IsHidden(),
		})
	}
	return view
}
