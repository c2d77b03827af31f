package graph

import (
	"context"

	"go.uber.org/zap"
)

// SyncWithProvenance adds a newly stored memory to the graph and infers
// provenance edges from the ranked candidate list the vector search
// produced.
//
// Edges are only ever derived at first insertion: when the node already
// exists the call returns an all-empty result without evaluating any
// candidate, so a re-sync never refreshes edges even if the candidate
// list changed. At most MaxRelationsPerMemory candidates are considered,
// taken by slicing the raw list before the self-hash check. Individual
// edge failures are logged and omitted from the result; they never
// abort the remaining candidates.
func (e *Engine) SyncWithProvenance(ctx context.Context, hash, content, memType, createdAt string, candidates []Candidate) SyncResult {
	result := SyncResult{
		RelatesTo:   []string{},
		Supersedes:  []string{},
		Contradicts: []string{},
	}

	result.NodeCreated = e.AddMemoryNode(ctx, hash, content, memType, createdAt)
	if !result.NodeCreated {
		return result
	}

	if len(candidates) > MaxRelationsPerMemory {
		candidates = candidates[:MaxRelationsPerMemory]
	}

	for _, candidate := range candidates {
		if candidate.Hash == hash {
			continue
		}

		// Target may not have synced yet; a stub satisfies the
		// edge-endpoints-must-exist invariant.
		e.EnsureNodeExists(ctx, candidate.Hash)

		switch Classify(candidate.Similarity) {
		case RelationshipSupersedes:
			if e.AddSupersedes(ctx, hash, candidate.Hash, "High similarity update", createdAt) {
				result.Supersedes = append(result.Supersedes, candidate.Hash)
			}
		case RelationshipRelatesTo:
			if e.AddRelatesTo(ctx, hash, candidate.Hash, candidate.Similarity, createdAt) {
				result.RelatesTo = append(result.RelatesTo, candidate.Hash)
			}
		}
	}

	e.logger.Info("Synced memory with provenance",
		zap.String("hash", shortHash(hash)),
		zap.Int("relates_to", len(result.RelatesTo)),
		zap.Int("supersedes", len(result.Supersedes)),
	)
	return result
}
