package memstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memgraph/internal/graph"
)

// stubEmbedder returns pre-baked unit vectors per content string so the
// cosine similarities seen by the sync engine are exact.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, ok := e.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no stub vector for %q", text)
	}
	return vec, nil
}

func (e *stubEmbedder) Dimensions() int { return 3 }

func newTestMemStore(t *testing.T, embedder Embedder) *MemoryStore {
	t.Helper()
	engine := graph.NewEngine(graph.NewBadgerStoreWithOptions(graph.BadgerStoreOptions{InMemory: true}))
	store, err := New(engine, embedder, Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestContentHash(t *testing.T) {
	assert.Equal(t, ContentHash("hello"), ContentHash("hello"))
	assert.NotEqual(t, ContentHash("hello"), ContentHash("world"))
	assert.Len(t, ContentHash("hello"), 64)
}

func TestStore_FirstMemory(t *testing.T) {
	ctx := context.Background()
	store := newTestMemStore(t, &stubEmbedder{vectors: map[string][]float32{
		"the sky is blue": {1, 0, 0},
	}})

	stored, err := store.Store(ctx, "the sky is blue", "fact")
	require.NoError(t, err)
	assert.Equal(t, ContentHash("the sky is blue"), stored.Hash)
	assert.False(t, stored.Duplicate)
	assert.True(t, stored.Sync.NodeCreated)
	assert.Empty(t, stored.Sync.RelatesTo)
	assert.Empty(t, stored.Sync.Supersedes)
	assert.NotEmpty(t, stored.CreatedAt)
}

func TestStore_SupersedesSimilarMemory(t *testing.T) {
	ctx := context.Background()
	// cos(old, new) = 0.95, above the supersedes threshold
	store := newTestMemStore(t, &stubEmbedder{vectors: map[string][]float32{
		"old fact": {1, 0, 0},
		"new fact": {0.95, 0.31224990, 0},
	}})

	_, err := store.Store(ctx, "old fact", "fact")
	require.NoError(t, err)

	stored, err := store.Store(ctx, "new fact", "fact")
	require.NoError(t, err)
	assert.True(t, stored.Sync.NodeCreated)
	assert.Equal(t, []string{ContentHash("old fact")}, stored.Sync.Supersedes)
	assert.Empty(t, stored.Sync.RelatesTo)
}

func TestStore_RelatesToSimilarMemory(t *testing.T) {
	ctx := context.Background()
	// cos(old, new) = 0.80, between the two thresholds
	store := newTestMemStore(t, &stubEmbedder{vectors: map[string][]float32{
		"old fact": {1, 0, 0},
		"new fact": {0.8, 0.6, 0},
	}})

	_, err := store.Store(ctx, "old fact", "fact")
	require.NoError(t, err)

	stored, err := store.Store(ctx, "new fact", "fact")
	require.NoError(t, err)
	assert.Equal(t, []string{ContentHash("old fact")}, stored.Sync.RelatesTo)
	assert.Empty(t, stored.Sync.Supersedes)
}

func TestStore_UnrelatedMemory(t *testing.T) {
	ctx := context.Background()
	// cos(old, new) = 0.5, below the relates threshold
	store := newTestMemStore(t, &stubEmbedder{vectors: map[string][]float32{
		"old fact": {1, 0, 0},
		"new fact": {0.5, 0.86602540, 0},
	}})

	_, err := store.Store(ctx, "old fact", "fact")
	require.NoError(t, err)

	stored, err := store.Store(ctx, "new fact", "fact")
	require.NoError(t, err)
	assert.True(t, stored.Sync.NodeCreated)
	assert.Empty(t, stored.Sync.RelatesTo)
	assert.Empty(t, stored.Sync.Supersedes)
}

func TestStore_Duplicate(t *testing.T) {
	ctx := context.Background()
	store := newTestMemStore(t, &stubEmbedder{vectors: map[string][]float32{
		"the sky is blue": {1, 0, 0},
	}})

	first, err := store.Store(ctx, "the sky is blue", "fact")
	require.NoError(t, err)
	require.False(t, first.Duplicate)

	// Same content hashes to the same node; the vector store refuses a
	// second document with that ID and the outcome is unchanged, so the
	// duplicate surfaces through the sync short-circuit either way.
	second, err := store.Store(ctx, "the sky is blue", "fact")
	if err == nil {
		assert.True(t, second.Duplicate)
		assert.False(t, second.Sync.NodeCreated)
	}
}

func TestStore_EmptyContent(t *testing.T) {
	ctx := context.Background()
	store := newTestMemStore(t, &stubEmbedder{vectors: map[string][]float32{}})

	_, err := store.Store(ctx, "   ", "fact")
	assert.Error(t, err)
}

func TestLocalEmbedder(t *testing.T) {
	ctx := context.Background()
	embedder := NewLocalEmbedder()

	assert.Equal(t, 384, embedder.Dimensions())

	a1, err := embedder.Embed(ctx, "the capital of france is paris")
	require.NoError(t, err)
	a2, err := embedder.Embed(ctx, "the capital of france is paris")
	require.NoError(t, err)
	assert.Equal(t, a1, a2, "embeddings must be deterministic")
	assert.Len(t, a1, 384)

	// Unit length
	var norm float32
	for _, v := range a1 {
		norm += v * v
	}
	assert.InDelta(t, 1.0, float64(norm), 1e-4)

	// Overlapping texts score higher than disjoint ones
	b, err := embedder.Embed(ctx, "the capital of germany is berlin")
	require.NoError(t, err)
	c, err := embedder.Embed(ctx, "quantum chromodynamics lattice gauge")
	require.NoError(t, err)
	assert.Greater(t, dot(a1, b), dot(a1, c))
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
