package graph

import (
	"context"
	"time"

	"go.uber.org/zap"

	"memgraph/pkg/errors"
	"memgraph/pkg/logger"
)

// Engine maintains the memory provenance graph. It owns the decision
// logic (node repository, edge creation, sync orchestration, chain
// walking, stats) on top of a Store backend.
//
// Provenance maintenance is a best-effort side channel to the primary
// memory write path, so no method on this surface propagates an error
// except Stats: failures are logged and degrade to a conservative
// sentinel (false, empty slice). Callers who need typed failure kinds
// work against the Store directly.
//
// The engine adds no locking beyond the store's connection state. When
// several logical callers share one engine, they serialize calls
// themselves (the memory store collaborator does exactly that).
type Engine struct {
	store  Store
	logger *zap.Logger
}

// NewEngine creates a provenance engine on the given store backend.
// The engine is an explicitly constructed dependency; whoever triggers
// syncs owns it for the process lifetime.
func NewEngine(store Store) *Engine {
	return &Engine{
		store:  store,
		logger: logger.Get(),
	}
}

// Open acquires the underlying store handle. Idempotent; operations on
// a closed engine open it implicitly.
func (e *Engine) Open() error {
	return e.store.Open()
}

// Close releases the underlying store handle and its exclusive lock.
// Callers using a bounded session must guarantee Close runs on every
// exit path so the lock never leaks across process boundaries.
func (e *Engine) Close() error {
	return e.store.Close()
}

// NodeExists checks whether a memory node is already in the graph.
// Errors degrade to false.
func (e *Engine) NodeExists(ctx context.Context, hash string) bool {
	exists, err := e.store.NodeExists(ctx, hash)
	if err != nil {
		e.logger.Error("Error checking node existence",
			zap.String("hash", shortHash(hash)),
			zap.Error(err),
		)
		return false
	}
	return exists
}

// AddMemoryNode adds a memory node to the graph. Returns false without
// mutation when a node with the same hash already exists. Empty
// memType defaults to "unknown", empty createdAt to the current time.
func (e *Engine) AddMemoryNode(ctx context.Context, hash, content, memType, createdAt string) bool {
	if hash == "" {
		e.logger.Error("Rejected memory node with empty hash")
		return false
	}

	memTypeSafe := sanitizeText(memType, maxMemoryTypeLen)
	if memTypeSafe == "" {
		memTypeSafe = defaultMemoryType
	}
	if createdAt == "" {
		createdAt = nowISO()
	}

	err := e.store.CreateNode(ctx, &MemoryNode{
		Hash:           hash,
		ContentPreview: sanitizeText(content, maxPreviewLen),
		MemoryType:     memTypeSafe,
		CreatedAt:      createdAt,
	})
	if errors.IsAlreadyExists(err) {
		e.logger.Debug("Node already exists", zap.String("hash", shortHash(hash)))
		return false
	}
	if err != nil {
		e.logger.Error("Error adding memory node",
			zap.String("hash", shortHash(hash)),
			zap.Error(err),
		)
		return false
	}

	e.logger.Info("Added memory node",
		zap.String("hash", shortHash(hash)),
		zap.String("memory_type", memTypeSafe),
	)
	return true
}

// EnsureNodeExists creates a stub node when the hash has not been
// synced yet, so an edge to it can satisfy the endpoints-must-exist
// invariant. Idempotent; the stub is never upgraded by this engine.
func (e *Engine) EnsureNodeExists(ctx context.Context, hash string) bool {
	if hash == "" {
		e.logger.Error("Rejected stub node with empty hash")
		return false
	}

	err := e.store.CreateNode(ctx, &MemoryNode{
		Hash:           hash,
		ContentPreview: stubPreview,
		MemoryType:     stubMemoryType,
		CreatedAt:      nowISO(),
	})
	if errors.IsAlreadyExists(err) {
		return true
	}
	if err != nil {
		e.logger.Error("Error creating stub node",
			zap.String("hash", shortHash(hash)),
			zap.Error(err),
		)
		return false
	}

	e.logger.Debug("Created stub node", zap.String("hash", shortHash(hash)))
	return true
}

// AddRelatesTo creates a RELATES_TO edge between memories
func (e *Engine) AddRelatesTo(ctx context.Context, fromHash, toHash string, strength float64, createdAt string) bool {
	if createdAt == "" {
		createdAt = nowISO()
	}
	err := e.store.CreateEdge(ctx, &Edge{
		From:      fromHash,
		To:        toHash,
		Type:      RelationshipRelatesTo,
		Strength:  strength,
		CreatedAt: createdAt,
	})
	if err != nil {
		e.logger.Error("Error creating RELATES_TO edge",
			zap.String("from", shortHash(fromHash)),
			zap.String("to", shortHash(toHash)),
			zap.Error(err),
		)
		return false
	}
	e.logger.Debug("Created RELATES_TO",
		zap.String("from", shortHash(fromHash)),
		zap.String("to", shortHash(toHash)),
		zap.Float64("strength", strength),
	)
	return true
}

// AddSupersedes creates a SUPERSEDES edge (new memory replaces old).
// Empty reason defaults to "Updated information".
func (e *Engine) AddSupersedes(ctx context.Context, newHash, oldHash, reason, createdAt string) bool {
	if reason == "" {
		reason = "Updated information"
	}
	if createdAt == "" {
		createdAt = nowISO()
	}
	err := e.store.CreateEdge(ctx, &Edge{
		From:      newHash,
		To:        oldHash,
		Type:      RelationshipSupersedes,
		Reason:    sanitizeText(reason, maxReasonLen),
		CreatedAt: createdAt,
	})
	if err != nil {
		e.logger.Error("Error creating SUPERSEDES edge",
			zap.String("from", shortHash(newHash)),
			zap.String("to", shortHash(oldHash)),
			zap.Error(err),
		)
		return false
	}
	e.logger.Info("Created SUPERSEDES",
		zap.String("from", shortHash(newHash)),
		zap.String("to", shortHash(oldHash)),
	)
	return true
}

// AddContradicts creates a CONTRADICTS edge between conflicting
// memories. Contradiction is not derivable from similarity alone, so
// this stays a manual primitive for external callers; the sync
// orchestrator never produces it. Empty resolution defaults to
// "unresolved".
func (e *Engine) AddContradicts(ctx context.Context, hashA, hashB, resolution, detectedAt string) bool {
	if resolution == "" {
		resolution = "unresolved"
	}
	if detectedAt == "" {
		detectedAt = nowISO()
	}
	err := e.store.CreateEdge(ctx, &Edge{
		From:       hashA,
		To:         hashB,
		Type:       RelationshipContradicts,
		Resolution: sanitizeText(resolution, maxReasonLen),
		CreatedAt:  detectedAt,
	})
	if err != nil {
		e.logger.Error("Error creating CONTRADICTS edge",
			zap.String("from", shortHash(hashA)),
			zap.String("to", shortHash(hashB)),
			zap.Error(err),
		)
		return false
	}
	e.logger.Info("Created CONTRADICTS",
		zap.String("from", shortHash(hashA)),
		zap.String("to", shortHash(hashB)),
	)
	return true
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// shortHash truncates a content hash for log output
func shortHash(hash string) string {
	if len(hash) > 16 {
		return hash[:16] + "..."
	}
	return hash
}
