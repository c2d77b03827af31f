package graph

// ============================================================================
// Provenance Graph Types
// ============================================================================

// RelationshipType labels a directed edge between memory nodes
type RelationshipType string

const (
	// RelationshipRelatesTo links topically related memories
	RelationshipRelatesTo RelationshipType = "RELATES_TO"
	// RelationshipSupersedes links a newer memory to the one it replaces
	RelationshipSupersedes RelationshipType = "SUPERSEDES"
	// RelationshipContradicts links memories carrying conflicting information
	RelationshipContradicts RelationshipType = "CONTRADICTS"
	// RelationshipCausedBy is reserved for future causal provenance
	RelationshipCausedBy RelationshipType = "CAUSED_BY"
	// RelationshipDerivedFrom is reserved for future derivation provenance
	RelationshipDerivedFrom RelationshipType = "DERIVED_FROM"
	// RelationshipNone means no edge should be created
	RelationshipNone RelationshipType = ""
)

// relationshipTypes lists every recognized edge kind, in stats order.
var relationshipTypes = []RelationshipType{
	RelationshipRelatesTo,
	RelationshipSupersedes,
	RelationshipContradicts,
	RelationshipCausedBy,
	RelationshipDerivedFrom,
}

// Provenance detection thresholds and limits
const (
	// RelatesToThreshold is the minimum similarity for a RELATES_TO edge
	RelatesToThreshold = 0.75
	// SupersedesThreshold is the minimum similarity for a SUPERSEDES edge
	SupersedesThreshold = 0.90
	// MaxRelationsPerMemory caps classified edges created per sync call
	MaxRelationsPerMemory = 5
)

// Field length limits applied before any free text reaches the store
const (
	maxPreviewLen    = 200
	maxMemoryTypeLen = 50
	maxReasonLen     = 100
)

// Memory type defaults and the reserved stub marker
const (
	defaultMemoryType = "unknown"
	stubMemoryType    = "stub"
	stubPreview       = "(stub - created for edge)"
)

// MemoryNode is a memory in the provenance graph, keyed by content hash.
// Only a truncated preview is stored; content bodies live in the memory
// store, not the graph.
type MemoryNode struct {
	Hash           string `json:"hash"`
	ContentPreview string `json:"content_preview"`
	MemoryType     string `json:"memory_type"`
	CreatedAt      string `json:"created_at"` // ISO-8601
}

// Edge is a directed, typed relationship between two memory nodes.
// Strength is set for RELATES_TO, Reason for SUPERSEDES, Resolution for
// CONTRADICTS; the other fields stay zero.
type Edge struct {
	ID         string           `json:"id"`
	From       string           `json:"from"`
	To         string           `json:"to"`
	Type       RelationshipType `json:"type"`
	Strength   float64          `json:"strength,omitempty"`
	Reason     string           `json:"reason,omitempty"`
	Resolution string           `json:"resolution,omitempty"`
	CreatedAt  string           `json:"created_at"` // ISO-8601
}

// Candidate is one (hash, similarity) pair from the external vector search
type Candidate struct {
	Hash       string  `json:"hash"`
	Similarity float64 `json:"similarity"`
}

// SyncResult reports what a single SyncWithProvenance call created
type SyncResult struct {
	NodeCreated bool     `json:"node_created"`
	RelatesTo   []string `json:"relates_to"`
	Supersedes  []string `json:"supersedes"`
	Contradicts []string `json:"contradicts"`
}

// ChainEntry is one hop in a provenance chain
type ChainEntry struct {
	Hash         string           `json:"hash"`
	Preview      string           `json:"preview"`
	Relationship RelationshipType `json:"relationship"`
	Depth        int              `json:"depth"`
}

// GraphStats aggregates node and per-type edge counts
type GraphStats struct {
	Nodes            int64 `json:"nodes"`
	EdgesRelatesTo   int64 `json:"edges_relates_to"`
	EdgesSupersedes  int64 `json:"edges_supersedes"`
	EdgesContradicts int64 `json:"edges_contradicts"`
	EdgesCausedBy    int64 `json:"edges_caused_by"`
	EdgesDerivedFrom int64 `json:"edges_derived_from"`
	TotalEdges       int64 `json:"total_edges"`
}
