package graph

import "context"

// Store is the low-level graph store contract. Implementations own the
// connection lifecycle as a {Closed, Open} state machine: Open is lazy
// and idempotent, Close releases the handle, and any operation while
// Closed triggers an implicit open. Re-opening after Close is legal and
// establishes a fresh handle.
//
// Operations return typed errors (pkg/errors kinds) so callers that use
// the store directly can tell lock contention from not-found from
// malformed input. The Engine above converts these to the best-effort
// sentinels its public surface promises.
type Store interface {
	// Open acquires the store handle. Idempotent.
	Open() error
	// Close releases the store handle and any exclusive lock it holds.
	Close() error

	// NodeExists probes for a node by content hash.
	NodeExists(ctx context.Context, hash string) (bool, error)
	// CreateNode inserts a node, failing with KindAlreadyExists if a
	// node with the same hash is present.
	CreateNode(ctx context.Context, node *MemoryNode) error
	// GetNode fetches a node, failing with KindNotFound if absent.
	GetNode(ctx context.Context, hash string) (*MemoryNode, error)

	// CreateEdge inserts a directed typed edge. Both endpoints must
	// exist (KindNotFound otherwise) and self-loops are rejected
	// (KindMalformed). Parallel edges of different types between the
	// same pair are allowed.
	CreateEdge(ctx context.Context, edge *Edge) error
	// OutgoingEdges returns all edges originating from the given hash.
	OutgoingEdges(ctx context.Context, hash string) ([]Edge, error)

	// CountNodes returns the total node count.
	CountNodes(ctx context.Context) (int64, error)
	// CountEdgesByType returns the edge count for one relationship kind.
	CountEdgesByType(ctx context.Context, rel RelationshipType) (int64, error)
}
