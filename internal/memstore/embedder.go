package memstore

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Embedder converts memory content to a vector for similarity search
type Embedder interface {
	// Embed converts a single text to an embedding vector
	Embed(ctx context.Context, text string) ([]float32, error)
	// Dimensions returns the embedding vector size
	Dimensions() int
}

// ============================================================================
// OpenAI Embedder
// ============================================================================

// OpenAIEmbedder produces embeddings through the OpenAI embeddings API
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEmbedder creates an embedder for the given model
// (e.g. "text-embedding-3-small")
func NewOpenAIEmbedder(apiKey, model string) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Embed converts text to an embedding vector
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	return resp.Data[0].Embedding, nil
}

// Dimensions returns the embedding size for the configured model
func (e *OpenAIEmbedder) Dimensions() int {
	switch e.model {
	case "text-embedding-3-large":
		return 3072
	default:
		return 1536
	}
}

// ============================================================================
// Local Embedder
// ============================================================================

// LocalEmbedder produces deterministic embeddings without any external
// service by hashing tokens into a fixed-size bag-of-words vector.
// Texts sharing words land near each other, which is enough for
// offline runs and tests; production deployments configure the OpenAI
// embedder instead.
type LocalEmbedder struct {
	dimensions int
}

// NewLocalEmbedder creates a local hash-based embedder
func NewLocalEmbedder() *LocalEmbedder {
	return &LocalEmbedder{dimensions: 384}
}

// Embed converts text to a deterministic embedding vector
func (e *LocalEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embedding := make([]float32, e.dimensions)

	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New64a()
		h.Write([]byte(word))
		hash := h.Sum64()

		dim := int(hash % uint64(e.dimensions))
		// Sign from a higher hash bit spreads tokens over both halves
		// of the range, avoiding an all-positive vector.
		if hash&(1<<63) != 0 {
			embedding[dim] -= 1
		} else {
			embedding[dim] += 1
		}
	}

	return normalize(embedding), nil
}

// Dimensions returns the embedding size
func (e *LocalEmbedder) Dimensions() int {
	return e.dimensions
}

// normalize converts a vector to unit length
func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}

	norm = float32(math.Sqrt(float64(norm)))
	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = v / norm
	}
	return normalized
}
