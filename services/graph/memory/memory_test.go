// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package memory

import (
	"context"
	"testing"

	"github.com/AleutianAI/vireo/services/graph/structure"
	"github.com/AleutianAI/vireo/services/graph/traversal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertVertex_ReusesExisting(t *testing.T) {
	ctx := context.Background()
	g := New()

	v1, err := g.UpsertVertex(ctx, 1, "person")
	require.NoError(t, err)

	v2, err := g.UpsertVertex(ctx, 1, "ignored-label")
	require.NoError(t, err)

	assert.Same(t, v1, v2, "upsert by existing id must return the same vertex")
	assert.Equal(t, "person", v2.Label(), "the original label wins")
}

func TestUpsertVertex_GeneratesIDWhenNil(t *testing.T) {
	ctx := context.Background()
	g := New()

	v, err := g.UpsertVertex(ctx, nil, "person")
	require.NoError(t, err)
	require.NotNil(t, v.ID())
	assert.NotEmpty(t, v.ID().(string))
}

func TestCreateEdge_RejectsForeignEndpoints(t *testing.T) {
	ctx := context.Background()
	g := New()

	stranger := structure.NewVertex(99, "person")
	local, err := g.UpsertVertex(ctx, 1, "person")
	require.NoError(t, err)

	_, err = g.CreateEdge(ctx, 10, "knows", stranger, local)
	require.ErrorIs(t, err, structure.ErrForeignElement)
}

func TestCreateEdge_DuplicateID(t *testing.T) {
	ctx := context.Background()
	g := New()

	a, _ := g.UpsertVertex(ctx, 1, "person")
	b, _ := g.UpsertVertex(ctx, 2, "person")

	_, err := g.CreateEdge(ctx, 10, "knows", a, b)
	require.NoError(t, err)

	_, err = g.CreateEdge(ctx, 10, "knows", b, a)
	require.ErrorIs(t, err, structure.ErrDuplicateEdge)
}

func TestRollback_RestoresPriorState(t *testing.T) {
	ctx := context.Background()
	g := New()

	// Committed base state.
	a, err := g.UpsertVertex(ctx, 1, "person")
	require.NoError(t, err)
	require.NoError(t, g.SetProperty(ctx, a, "name", "marko", false))
	require.NoError(t, g.Tx().Commit())

	// Uncommitted mutations on top.
	b, err := g.UpsertVertex(ctx, 2, "person")
	require.NoError(t, err)
	_, err = g.CreateEdge(ctx, 10, "knows", a, b)
	require.NoError(t, err)
	require.NoError(t, g.SetProperty(ctx, a, "age", 29, false))

	require.NoError(t, g.Tx().Rollback())

	vs, err := g.Vertices(ctx)
	require.NoError(t, err)
	require.Len(t, vs, 1, "rolled-back vertex must be gone")

	es, err := g.Edges(ctx)
	require.NoError(t, err)
	assert.Empty(t, es, "rolled-back edge must be gone")

	survivor := vs[0]
	_, ok := survivor.Property("name")
	assert.True(t, ok, "committed property survives rollback")
	_, ok = survivor.Property("age")
	assert.False(t, ok, "uncommitted property must not survive rollback")
}

func TestRollback_WithoutOpenTransactionIsNoop(t *testing.T) {
	g := New()
	require.NoError(t, g.Tx().Rollback())
}

func TestVariables_Transactional(t *testing.T) {
	g := New()
	vars, ok := g.Variables()
	require.True(t, ok)

	vars.Set("creator", "marko")
	require.NoError(t, g.Tx().Commit())

	vars.Set("creator", "stephen")
	require.NoError(t, g.Tx().Rollback())

	got, ok := vars.Get("creator")
	require.True(t, ok)
	assert.Equal(t, "marko", got)
}

func TestClose_RejectsMutations(t *testing.T) {
	ctx := context.Background()
	g := New()
	require.NoError(t, g.Close())

	_, err := g.UpsertVertex(ctx, 1, "person")
	require.ErrorIs(t, err, structure.ErrGraphClosed)
}

func TestTraversal_OverGraphSource(t *testing.T) {
	ctx := context.Background()
	g := New()

	marko, _ := g.UpsertVertex(ctx, 1, "person")
	require.NoError(t, g.SetProperty(ctx, marko, "name", "marko", false))
	require.NoError(t, g.SetProperty(ctx, marko, "age", 29, false))

	vadas, _ := g.UpsertVertex(ctx, 2, "person")
	require.NoError(t, g.SetProperty(ctx, vadas, "name", "vadas", false))
	require.NoError(t, g.SetProperty(ctx, vadas, "age", 27, false))

	got, err := traversal.New(ctx).
		V(g).
		Has("age", traversal.GreaterThan, 28).
		Values("name").
		ToList()
	require.NoError(t, err)
	assert.Equal(t, []any{"marko"}, got)
}
