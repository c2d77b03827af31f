package graph

import (
	"context"

	"go.uber.org/zap"
)

// Stats counts nodes and edges by type. Unlike the rest of the engine
// surface this returns an explicit error when the store cannot answer,
// so callers can tell an empty graph from unavailable stats.
func (e *Engine) Stats(ctx context.Context) (GraphStats, error) {
	var stats GraphStats

	nodes, err := e.store.CountNodes(ctx)
	if err != nil {
		e.logger.Error("Error getting stats", zap.Error(err))
		return GraphStats{}, err
	}
	stats.Nodes = nodes

	counts := make([]int64, len(relationshipTypes))
	for i, rel := range relationshipTypes {
		n, err := e.store.CountEdgesByType(ctx, rel)
		if err != nil {
			e.logger.Error("Error getting stats",
				zap.String("relationship", string(rel)),
				zap.Error(err),
			)
			return GraphStats{}, err
		}
		counts[i] = n
		stats.TotalEdges += n
	}

	stats.EdgesRelatesTo = counts[0]
	stats.EdgesSupersedes = counts[1]
	stats.EdgesContradicts = counts[2]
	stats.EdgesCausedBy = counts[3]
	stats.EdgesDerivedFrom = counts[4]

	return stats, nil
}
