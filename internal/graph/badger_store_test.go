package graph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memgraph/pkg/errors"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	store := NewBadgerStoreWithOptions(BadgerStoreOptions{InMemory: true})
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testNode(hash string) *MemoryNode {
	return &MemoryNode{
		Hash:           hash,
		ContentPreview: "preview for " + hash,
		MemoryType:     "note",
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	}
}

func TestBadgerStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewBadgerStoreWithOptions(BadgerStoreOptions{InMemory: true})

	// Open is idempotent
	require.NoError(t, store.Open())
	require.NoError(t, store.Open())

	require.NoError(t, store.CreateNode(ctx, testNode("h1")))
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	// Re-opening after close establishes a fresh handle
	require.NoError(t, store.Open())
	require.NoError(t, store.Close())
}

func TestBadgerStore_ImplicitOpen(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// No explicit Open: the first operation opens the store
	exists, err := store.NodeExists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBadgerStore_ExclusiveLock(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first := NewBadgerStore(dir)
	require.NoError(t, first.Open())
	defer first.Close()

	second := NewBadgerStore(dir)
	err := second.Open()
	require.Error(t, err)
	assert.True(t, errors.IsLocked(err), "expected locked error, got %v", err)

	// Releasing the first owner frees the path for the second
	require.NoError(t, first.Close())
	require.NoError(t, second.Open())
	require.NoError(t, second.CreateNode(ctx, testNode("h1")))
	require.NoError(t, second.Close())
}

func TestBadgerStore_CreateNode(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.CreateNode(ctx, testNode("h1")))

	exists, err := store.NodeExists(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, exists)

	// Creating the same hash again fails with already-exists
	err = store.CreateNode(ctx, testNode("h1"))
	require.Error(t, err)
	assert.True(t, errors.IsAlreadyExists(err))

	node, err := store.GetNode(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, "preview for h1", node.ContentPreview)
	assert.Equal(t, "note", node.MemoryType)
}

func TestBadgerStore_CreateNode_Malformed(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	err := store.CreateNode(ctx, &MemoryNode{Hash: ""})
	require.Error(t, err)
	assert.True(t, errors.IsMalformed(err))
}

func TestBadgerStore_GetNode_NotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.GetNode(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestBadgerStore_CreateEdge(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.CreateNode(ctx, testNode("a")))
	require.NoError(t, store.CreateNode(ctx, testNode("b")))

	err := store.CreateEdge(ctx, &Edge{
		From:      "a",
		To:        "b",
		Type:      RelationshipRelatesTo,
		Strength:  0.8,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	require.NoError(t, err)

	edges, err := store.OutgoingEdges(ctx, "a")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "b", edges[0].To)
	assert.Equal(t, RelationshipRelatesTo, edges[0].Type)
	assert.Equal(t, 0.8, edges[0].Strength)
	assert.NotEmpty(t, edges[0].ID)
}

func TestBadgerStore_CreateEdge_SelfLoop(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.CreateNode(ctx, testNode("a")))

	err := store.CreateEdge(ctx, &Edge{From: "a", To: "a", Type: RelationshipRelatesTo})
	require.Error(t, err)
	assert.True(t, errors.IsMalformed(err))
}

func TestBadgerStore_CreateEdge_MissingEndpoint(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.CreateNode(ctx, testNode("a")))

	err := store.CreateEdge(ctx, &Edge{From: "a", To: "ghost", Type: RelationshipRelatesTo})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	// The failed edge must leave no trace
	edges, err := store.OutgoingEdges(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestBadgerStore_ParallelEdges(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.CreateNode(ctx, testNode("a")))
	require.NoError(t, store.CreateNode(ctx, testNode("b")))

	now := time.Now().UTC().Format(time.RFC3339)
	require.NoError(t, store.CreateEdge(ctx, &Edge{From: "a", To: "b", Type: RelationshipRelatesTo, Strength: 0.8, CreatedAt: now}))
	require.NoError(t, store.CreateEdge(ctx, &Edge{From: "a", To: "b", Type: RelationshipContradicts, Resolution: "unresolved", CreatedAt: now}))

	edges, err := store.OutgoingEdges(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, edges, 2)
}

func TestBadgerStore_Counts(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, hash := range []string{"a", "b", "c"} {
		require.NoError(t, store.CreateNode(ctx, testNode(hash)))
	}

	now := time.Now().UTC().Format(time.RFC3339)
	require.NoError(t, store.CreateEdge(ctx, &Edge{From: "a", To: "b", Type: RelationshipRelatesTo, Strength: 0.8, CreatedAt: now}))
	require.NoError(t, store.CreateEdge(ctx, &Edge{From: "a", To: "c", Type: RelationshipSupersedes, Reason: "update", CreatedAt: now}))
	require.NoError(t, store.CreateEdge(ctx, &Edge{From: "b", To: "c", Type: RelationshipSupersedes, Reason: "update", CreatedAt: now}))

	nodes, err := store.CountNodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), nodes)

	relates, err := store.CountEdgesByType(ctx, RelationshipRelatesTo)
	require.NoError(t, err)
	assert.Equal(t, int64(1), relates)

	supersedes, err := store.CountEdgesByType(ctx, RelationshipSupersedes)
	require.NoError(t, err)
	assert.Equal(t, int64(2), supersedes)

	causedBy, err := store.CountEdgesByType(ctx, RelationshipCausedBy)
	require.NoError(t, err)
	assert.Equal(t, int64(0), causedBy)
}
