// Package memstore is the primary memory storage collaborator: it
// persists memory content bodies with their embeddings in an embedded
// vector store (chromem-go), answers the ranked similarity search, and
// triggers the provenance graph sync once per newly persisted record.
package memstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"memgraph/internal/graph"
	"memgraph/pkg/logger"
)

const collectionName = "memories"

// MemoryStore persists memories and drives provenance sync. It owns
// the graph engine for the process lifetime and serializes sync calls
// with a mutex, providing the one-writer-per-store-path mutual
// exclusion the engine requires of its callers.
type MemoryStore struct {
	db          *chromem.DB
	collection  *chromem.Collection
	embedder    Embedder
	engine      *graph.Engine
	searchLimit int

	mu     sync.Mutex // serializes provenance sync calls
	logger *zap.Logger
}

// Options configures the memory store
type Options struct {
	// Path is the persistence directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps memories in RAM. Used by tests.
	InMemory bool
	// SearchLimit is how many similar memories the vector search
	// returns as sync candidates. Defaults to 10.
	SearchLimit int
}

// New creates a memory store backed by chromem-go
func New(engine *graph.Engine, embedder Embedder, opts Options) (*MemoryStore, error) {
	var db *chromem.DB
	if opts.InMemory {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(opts.Path, false)
		if err != nil {
			return nil, fmt.Errorf("open memory store: %w", err)
		}
	}

	// Embeddings are always supplied explicitly, so the collection
	// needs no embedding func of its own.
	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("open collection: %w", err)
	}

	searchLimit := opts.SearchLimit
	if searchLimit < 1 {
		searchLimit = 10
	}

	return &MemoryStore{
		db:          db,
		collection:  collection,
		embedder:    embedder,
		engine:      engine,
		searchLimit: searchLimit,
		logger:      logger.Get(),
	}, nil
}

// StoredMemory reports the outcome of storing one memory
type StoredMemory struct {
	Hash       string           `json:"hash"`
	MemoryType string           `json:"memory_type"`
	CreatedAt  string           `json:"created_at"`
	Duplicate  bool             `json:"duplicate"`
	Sync       graph.SyncResult `json:"sync"`
}

// Store persists a memory and syncs it into the provenance graph.
// Similar memories are queried before the new document is inserted, so
// the candidate list never contains the memory itself (the sync engine
// would skip it anyway). Storing content whose hash already exists is
// reported as a duplicate; the graph sync short-circuits on it.
func (s *MemoryStore) Store(ctx context.Context, content, memoryType string) (*StoredMemory, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("empty memory content")
	}

	hash := ContentHash(content)
	createdAt := time.Now().UTC().Format(time.RFC3339)

	embedding, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("embed memory: %w", err)
	}

	candidates := s.similar(ctx, embedding)

	err = s.collection.AddDocument(ctx, chromem.Document{
		ID:        hash,
		Content:   content,
		Embedding: embedding,
		Metadata: map[string]string{
			"memory_type": memoryType,
			"created_at":  createdAt,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("store memory: %w", err)
	}

	s.mu.Lock()
	result := s.engine.SyncWithProvenance(ctx, hash, content, memoryType, createdAt, candidates)
	s.mu.Unlock()

	s.logger.Info("Memory stored",
		zap.String("hash", hash[:16]),
		zap.Bool("node_created", result.NodeCreated),
		zap.Int("candidates", len(candidates)),
	)

	return &StoredMemory{
		Hash:       hash,
		MemoryType: memoryType,
		CreatedAt:  createdAt,
		Duplicate:  !result.NodeCreated,
		Sync:       result,
	}, nil
}

// similar runs the vector search and maps results to sync candidates,
// ranked most similar first. Search failures degrade to an empty
// candidate list; the memory is still stored and synced without edges.
func (s *MemoryStore) similar(ctx context.Context, embedding []float32) []graph.Candidate {
	count := s.collection.Count()
	if count == 0 {
		return nil
	}

	limit := s.searchLimit
	if limit > count {
		limit = count
	}

	results, err := s.collection.QueryEmbedding(ctx, embedding, limit, nil, nil)
	if err != nil {
		s.logger.Error("Similarity search failed", zap.Error(err))
		return nil
	}

	candidates := make([]graph.Candidate, 0, len(results))
	for _, result := range results {
		candidates = append(candidates, graph.Candidate{
			Hash:       result.ID,
			Similarity: float64(result.Similarity),
		})
	}
	return candidates
}

// Close releases the graph engine and its exclusive store lock. The
// chromem database itself holds no handle that outlives the process.
func (s *MemoryStore) Close() error {
	return s.engine.Close()
}

// ContentHash returns the hex-encoded SHA-256 of the memory content;
// it is the node identity in the provenance graph.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
