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
	"strings"
	"testing"
	"time"

	"github.com/AleutianAI/vireo/services/graph/memory"
	"github.com/AleutianAI/vireo/services/graph/structure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const selfLoopDoc = `{
	"vertices": [
		{"id": 1, "label": "person", "properties": {"name": "marko"}}
	],
	"edges": [
		{"id": 10, "label": "knows",
		 "outV": 1, "outVLabel": "person",
		 "inV": 1, "inVLabel": "person"}
	]
}`

func TestReadGraph_SelfLoop(t *testing.T) {
	ctx := context.Background()
	g := memory.New()

	err := NewReader().ReadGraph(ctx, strings.NewReader(selfLoopDoc), g)
	require.NoError(t, err)

	vs, err := g.Vertices(ctx)
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, "person", vs[0].Label())

	es, err := g.Edges(ctx)
	require.NoError(t, err)
	require.Len(t, es, 1)
	assert.Equal(t, "knows", es[0].Label())
	assert.Same(t, es[0].OutVertex(), es[0].InVertex(), "self-loop shares its endpoint")
}

func TestReadGraph_IdempotentPerCall(t *testing.T) {
	ctx := context.Background()
	r := NewReader()

	for i := 0; i < 2; i++ {
		g := memory.New()
		require.NoError(t, r.ReadGraph(ctx, strings.NewReader(selfLoopDoc), g))

		vs, err := g.Vertices(ctx)
		require.NoError(t, err)
		assert.Len(t, vs, 1, "pass %d", i)

		es, err := g.Edges(ctx)
		require.NoError(t, err)
		assert.Len(t, es, 1, "pass %d", i)
	}
}

func TestReadGraph_UnknownTopLevelField(t *testing.T) {
	ctx := context.Background()
	g := memory.New()

	doc := `{"vertices": [], "bogus": 1}`
	err := NewReader().ReadGraph(ctx, strings.NewReader(doc), g)
	require.ErrorIs(t, err, ErrUnexpectedField)
	assert.Contains(t, err.Error(), "bogus")
}

func TestReadGraph_MissingEndpointRollsBack(t *testing.T) {
	ctx := context.Background()
	g := memory.New()

	doc := `{
		"vertices": [{"id": 1, "label": "person"}],
		"edges": [{"id": 10, "label": "knows",
			"outV": 99, "outVLabel": "person",
			"inV": 1, "inVLabel": "person"}]
	}`
	err := NewReader().ReadGraph(ctx, strings.NewReader(doc), g)
	require.ErrorIs(t, err, ErrUnknownVertex)

	vs, verr := g.Vertices(ctx)
	require.NoError(t, verr)
	assert.Empty(t, vs, "failed decode must leave no vertices behind")

	es, eerr := g.Edges(ctx)
	require.NoError(t, eerr)
	assert.Empty(t, es)
}

// Batches committed before a failure stay committed. With a batch size of
// one, the vertex commit lands before the broken edge is ever seen.
func TestReadGraph_EarlierBatchesSurviveFailure(t *testing.T) {
	ctx := context.Background()
	g := memory.New()

	doc := `{
		"vertices": [{"id": 1, "label": "person"}],
		"edges": [{"id": 10, "label": "knows",
			"outV": 99, "outVLabel": "person",
			"inV": 1, "inVLabel": "person"}]
	}`
	err := NewReader(WithBatchSize(1)).ReadGraph(ctx, strings.NewReader(doc), g)
	require.ErrorIs(t, err, ErrUnknownVertex)

	vs, verr := g.Vertices(ctx)
	require.NoError(t, verr)
	assert.Len(t, vs, 1, "batch committed before the failure is not undone")
}

func TestReadGraph_Properties(t *testing.T) {
	ctx := context.Background()
	g := memory.New()

	doc := `{
		"properties": {"creator": "marko"},
		"vertices": [
			{"id": 1, "label": "person",
			 "properties": {"name": "marko", "age": 29},
			 "hiddens": {"acl": "private"}}
		]
	}`
	require.NoError(t, NewReader().ReadGraph(ctx, strings.NewReader(doc), g))

	vars, ok := g.Variables()
	require.True(t, ok)
	creator, ok := vars.Get("creator")
	require.True(t, ok)
	assert.Equal(t, "marko", creator)

	v, ok := g.FindVertex(ctx, float64(1))
	require.True(t, ok)
	name, ok := v.Property("name")
	require.True(t, ok)
	assert.Equal(t, "marko", name.Value())

	_, ok = v.Property("acl")
	assert.False(t, ok, "hidden property invisible to default lookup")
	hidden := v.HiddenProperties("acl")
	require.Len(t, hidden, 1)
	assert.Equal(t, "private", hidden[0].Value())
}

func TestReadGraph_ValueMapper(t *testing.T) {
	ctx := context.Background()
	g := memory.New()

	mapper := func(key string, value any) (any, error) {
		if key != "since" {
			return value, nil
		}
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("since must be a string, got %T", value)
		}
		return time.Parse(time.RFC3339, s)
	}

	doc := `{
		"vertices": [
			{"id": 1, "label": "person",
			 "properties": {"since": "2024-06-01T00:00:00Z"}}
		]
	}`
	require.NoError(t, NewReader(WithValueMapper(mapper)).ReadGraph(ctx, strings.NewReader(doc), g))

	v, ok := g.FindVertex(ctx, float64(1))
	require.True(t, ok)
	p, ok := v.Property("since")
	require.True(t, ok)
	since, ok := p.Value().(time.Time)
	require.True(t, ok, "mapper output reaches the stored property")
	assert.Equal(t, 2024, since.Year())
}

func TestReadGraph_VertexIDKeyOverride(t *testing.T) {
	ctx := context.Background()
	g := memory.New()

	err := NewReader(WithVertexIDKey("uid")).ReadGraph(ctx, strings.NewReader(selfLoopDoc), g)
	require.NoError(t, err)

	vs, verr := g.Vertices(ctx)
	require.NoError(t, verr)
	require.Len(t, vs, 1)

	v := vs[0]
	assert.NotEqual(t, float64(1), v.ID(), "element id is store-assigned")
	uid, ok := v.Property("uid")
	require.True(t, ok)
	assert.Equal(t, float64(1), uid.Value(), "record id lands under the override key")

	// Endpoint resolution still works off record ids.
	es, eerr := g.Edges(ctx)
	require.NoError(t, eerr)
	require.Len(t, es, 1)
	assert.Same(t, v, es[0].OutVertex())
}

func TestReadVertex_DirectionFilter(t *testing.T) {
	ctx := context.Background()

	doc := `{
		"id": 1, "label": "person",
		"properties": {"name": "marko"},
		"outE": [
			{"id": 10, "label": "knows",
			 "outV": 1, "outVLabel": "person",
			 "inV": 2, "inVLabel": "person"}
		],
		"inE": [
			{"id": 11, "label": "created",
			 "outV": 3, "outVLabel": "person",
			 "inV": 1, "inVLabel": "person"}
		]
	}`

	cases := []struct {
		name       string
		dir        structure.Direction
		wantLabels []string
	}{
		{"out only", structure.DirectionOut, []string{"knows"}},
		{"in only", structure.DirectionIn, []string{"created"}},
		{"both", structure.DirectionBoth, []string{"knows", "created"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := memory.New()
			r := NewReader()

			v, err := r.ReadVertex(ctx, strings.NewReader(doc),
				tc.dir, GraphVertexMaker(ctx, g), GraphEdgeMaker(ctx, g))
			require.NoError(t, err)
			assert.Equal(t, float64(1), v.ID())

			es, eerr := g.Edges(ctx)
			require.NoError(t, eerr)
			labels := make([]string, len(es))
			for i, e := range es {
				labels[i] = e.Label()
			}
			assert.ElementsMatch(t, tc.wantLabels, labels)
		})
	}
}

func TestReadEdge_SingleRecord(t *testing.T) {
	ctx := context.Background()
	g := memory.New()

	doc := `{"id": 10, "label": "knows",
		"outV": 1, "outVLabel": "person",
		"inV": 2, "inVLabel": "person",
		"properties": {"weight": 0.5}}`

	e, err := NewReader().ReadEdge(ctx, strings.NewReader(doc), GraphEdgeMaker(ctx, g))
	require.NoError(t, err)
	assert.Equal(t, "knows", e.Label())
	assert.Equal(t, float64(1), e.OutVertex().ID())
	assert.Equal(t, float64(2), e.InVertex().ID())

	w, ok := e.Property("weight")
	require.True(t, ok)
	assert.Equal(t, 0.5, w.Value())
}

func TestReadGraph_MalformedDocument(t *testing.T) {
	ctx := context.Background()
	g := memory.New()

	err := NewReader().ReadGraph(ctx, strings.NewReader(`[1, 2]`), g)
	require.ErrorIs(t, err, ErrMalformedRecord)
}

// Identifiers are wire scalars. A record carrying an object or array in an
// id position must fail as malformed and roll back, never reach an identity
// lookup.
func TestReadGraph_NonScalarIDsRollBack(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "object vertex id",
			doc:  `{"vertices": [{"id": {"x": 1}, "label": "person"}]}`,
		},
		{
			name: "array vertex id",
			doc:  `{"vertices": [{"id": [1], "label": "person"}]}`,
		},
		{
			name: "object edge id",
			doc: `{
				"vertices": [{"id": 1, "label": "person"}],
				"edges": [{"id": {"x": 10}, "label": "knows",
					"outV": 1, "outVLabel": "person",
					"inV": 1, "inVLabel": "person"}]
			}`,
		},
		{
			name: "object endpoint id",
			doc: `{
				"vertices": [{"id": 1, "label": "person"}],
				"edges": [{"id": 10, "label": "knows",
					"outV": {"x": 1}, "outVLabel": "person",
					"inV": 1, "inVLabel": "person"}]
			}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			g := memory.New()

			err := NewReader().ReadGraph(ctx, strings.NewReader(tt.doc), g)
			require.ErrorIs(t, err, ErrMalformedRecord)

			vs, verr := g.Vertices(ctx)
			require.NoError(t, verr)
			assert.Empty(t, vs, "failed decode must leave no vertices behind")

			es, eerr := g.Edges(ctx)
			require.NoError(t, eerr)
			assert.Empty(t, es)
		})
	}
}

func TestReadVertex_NonScalarID(t *testing.T) {
	ctx := context.Background()
	g := memory.New()

	doc := `{"id": {"x": 1}, "label": "person"}`
	_, err := NewReader().ReadVertex(ctx, strings.NewReader(doc),
		structure.DirectionBoth, GraphVertexMaker(ctx, g), nil)
	require.ErrorIs(t, err, ErrMalformedRecord)
}

func TestReadEdge_NonScalarEndpoint(t *testing.T) {
	ctx := context.Background()
	g := memory.New()

	doc := `{"id": 10, "label": "knows",
		"outV": [1], "outVLabel": "person",
		"inV": 2, "inVLabel": "person"}`
	_, err := NewReader().ReadEdge(ctx, strings.NewReader(doc), GraphEdgeMaker(ctx, g))
	require.ErrorIs(t, err, ErrMalformedRecord)
}

func TestReadVertex_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := memory.New()

	doc := `{"id": 1, "label": "person"}`
	_, err := NewReader().ReadVertex(ctx, strings.NewReader(doc),
		structure.DirectionBoth, GraphVertexMaker(ctx, g), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestReadEdge_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := memory.New()

	doc := `{"id": 10, "label": "knows",
		"outV": 1, "outVLabel": "person",
		"inV": 2, "inVLabel": "person"}`
	_, err := NewReader().ReadEdge(ctx, strings.NewReader(doc), GraphEdgeMaker(ctx, g))
	require.ErrorIs(t, err, context.Canceled)
}
