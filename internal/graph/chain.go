package graph

import (
	"context"

	"go.uber.org/zap"
)

// DefaultChainDepth is the traversal depth used when callers do not
// specify one.
const DefaultChainDepth = 3

// ProvenanceChain walks outgoing SUPERSEDES and RELATES_TO edges
// transitively up to depth hops and returns the relation chain ordered
// by ascending hop depth; entries at the same depth surface in
// discovery order. Depth is caller-supplied with no enforced upper
// bound. Errors yield an empty chain.
func (e *Engine) ProvenanceChain(ctx context.Context, hash string, depth int) []ChainEntry {
	chain := []ChainEntry{}
	if depth < 1 {
		return chain
	}

	visited := map[string]bool{hash: true}
	frontier := []string{hash}

	for hop := 1; hop <= depth && len(frontier) > 0; hop++ {
		var next []string
		for _, current := range frontier {
			edges, err := e.store.OutgoingEdges(ctx, current)
			if err != nil {
				e.logger.Error("Error getting provenance chain",
					zap.String("hash", shortHash(hash)),
					zap.Error(err),
				)
				return []ChainEntry{}
			}

			for _, edge := range edges {
				if edge.Type != RelationshipSupersedes && edge.Type != RelationshipRelatesTo {
					continue
				}
				if visited[edge.To] {
					continue
				}
				visited[edge.To] = true

				node, err := e.store.GetNode(ctx, edge.To)
				if err != nil {
					e.logger.Error("Error getting provenance chain",
						zap.String("hash", shortHash(hash)),
						zap.Error(err),
					)
					return []ChainEntry{}
				}

				chain = append(chain, ChainEntry{
					Hash:         edge.To,
					Preview:      node.ContentPreview,
					Relationship: edge.Type,
					Depth:        hop,
				})
				next = append(next, edge.To)
			}
		}
		frontier = next
	}

	return chain
}
