package graph

import (
	"context"
	"fmt"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"memgraph/pkg/errors"
)

// Neo4jStore is the remote graph store backend for deployments that
// already run a Neo4j server. Every value reaches the query through a
// bound parameter, never through string interpolation; relationship
// types are the one thing Cypher cannot parameterize, so those come
// from the RelationshipType whitelist only.
//
// Unlike the embedded backend, exclusivity is the server's concern and
// check-then-create is not transactional here. The single-writer
// assumption from the sync contract must hold for this backend.
type Neo4jStore struct {
	uri      string
	user     string
	password string

	mu     sync.Mutex // guards driver and the open/closed transition
	driver neo4j.DriverWithContext
}

// NewNeo4jStore creates a remote store backend. The connection is lazy;
// no driver is created until Open or the first operation.
func NewNeo4jStore(uri, user, password string) *Neo4jStore {
	return &Neo4jStore{uri: uri, user: user, password: password}
}

// Open creates the driver and verifies connectivity. Idempotent.
func (s *Neo4jStore) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openLocked()
}

func (s *Neo4jStore) openLocked() error {
	if s.driver != nil {
		return nil
	}
	driver, err := neo4j.NewDriverWithContext(s.uri, neo4j.BasicAuth(s.user, s.password, ""))
	if err != nil {
		return errors.NewStoreUnavailable("open", err)
	}
	if err := driver.VerifyConnectivity(context.Background()); err != nil {
		_ = driver.Close(context.Background())
		return errors.NewStoreUnavailable("verify connectivity", err)
	}
	s.driver = driver
	return nil
}

// Close releases the driver. Closing a closed store is a no-op.
func (s *Neo4jStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.driver == nil {
		return nil
	}
	err := s.driver.Close(context.Background())
	s.driver = nil
	if err != nil {
		return errors.NewStoreUnavailable("close", err)
	}
	return nil
}

func (s *Neo4jStore) handle() (neo4j.DriverWithContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.openLocked(); err != nil {
		return nil, err
	}
	return s.driver, nil
}

// NodeExists probes for a node by content hash
func (s *Neo4jStore) NodeExists(ctx context.Context, hash string) (bool, error) {
	driver, err := s.handle()
	if err != nil {
		return false, err
	}
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		`MATCH (m:Memory {hash: $hash}) RETURN m.hash LIMIT 1`,
		map[string]interface{}{"hash": hash},
	)
	if err != nil {
		return false, errors.NewStoreUnavailable("node exists", err)
	}
	exists := result.Next(ctx)
	if err := result.Err(); err != nil {
		return false, errors.NewStoreUnavailable("node exists", err)
	}
	return exists, nil
}

// CreateNode inserts a node. Check-then-create is two statements on
// this backend; callers must hold the single-writer contract.
func (s *Neo4jStore) CreateNode(ctx context.Context, node *MemoryNode) error {
	if node == nil || node.Hash == "" {
		return errors.NewMalformedHash("")
	}
	exists, err := s.NodeExists(ctx, node.Hash)
	if err != nil {
		return err
	}
	if exists {
		return errors.NewNodeExists(node.Hash)
	}

	driver, err := s.handle()
	if err != nil {
		return err
	}
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err = session.Run(ctx, `
		CREATE (m:Memory {
			hash: $hash,
			content_preview: $preview,
			created_at: $createdAt,
			memory_type: $memType
		})
	`, map[string]interface{}{
		"hash":      node.Hash,
		"preview":   node.ContentPreview,
		"createdAt": node.CreatedAt,
		"memType":   node.MemoryType,
	})
	if err != nil {
		return errors.NewStoreUnavailable("create node", err)
	}
	return nil
}

// GetNode fetches a node by content hash
func (s *Neo4jStore) GetNode(ctx context.Context, hash string) (*MemoryNode, error) {
	driver, err := s.handle()
	if err != nil {
		return nil, err
	}
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (m:Memory {hash: $hash})
		RETURN m.hash AS hash, m.content_preview AS preview,
		       m.memory_type AS mem_type, m.created_at AS created_at
	`, map[string]interface{}{"hash": hash})
	if err != nil {
		return nil, errors.NewStoreUnavailable("get node", err)
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, errors.NewStoreUnavailable("get node", err)
		}
		return nil, errors.NewNodeNotFound(hash)
	}

	record := result.Record()
	return &MemoryNode{
		Hash:           recordString(record, "hash"),
		ContentPreview: recordString(record, "preview"),
		MemoryType:     recordString(record, "mem_type"),
		CreatedAt:      recordString(record, "created_at"),
	}, nil
}

// CreateEdge inserts a directed typed edge between existing nodes
func (s *Neo4jStore) CreateEdge(ctx context.Context, edge *Edge) error {
	if edge == nil || edge.From == "" || edge.To == "" {
		return errors.NewMalformedHash("")
	}
	if edge.From == edge.To {
		return errors.NewSelfLoop(edge.From)
	}
	query, err := edgeCreateQuery(edge.Type)
	if err != nil {
		return err
	}

	driver, err := s.handle()
	if err != nil {
		return err
	}
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, map[string]interface{}{
		"from":       edge.From,
		"to":         edge.To,
		"strength":   edge.Strength,
		"reason":     edge.Reason,
		"resolution": edge.Resolution,
		"createdAt":  edge.CreatedAt,
	})
	if err != nil {
		return errors.NewStoreUnavailable("create edge", err)
	}
	// The MATCH yields no row when an endpoint is missing, so CREATE
	// silently does nothing; surface that as a missing endpoint.
	if _, err := result.Single(ctx); err != nil {
		return errors.NewEndpointMissing(edge.From, edge.To)
	}
	return nil
}

// edgeCreateQuery returns the Cypher for one relationship kind. The
// type is spliced from the whitelist because Cypher has no parameter
// slot for relationship types; every value is still bound.
func edgeCreateQuery(rel RelationshipType) (string, error) {
	switch rel {
	case RelationshipRelatesTo:
		return `
			MATCH (a:Memory {hash: $from}), (b:Memory {hash: $to})
			CREATE (a)-[r:RELATES_TO {strength: $strength, created_at: $createdAt}]->(b)
			RETURN r
		`, nil
	case RelationshipSupersedes:
		return `
			MATCH (a:Memory {hash: $from}), (b:Memory {hash: $to})
			CREATE (a)-[r:SUPERSEDES {reason: $reason, created_at: $createdAt}]->(b)
			RETURN r
		`, nil
	case RelationshipContradicts:
		return `
			MATCH (a:Memory {hash: $from}), (b:Memory {hash: $to})
			CREATE (a)-[r:CONTRADICTS {resolution: $resolution, detected_at: $createdAt}]->(b)
			RETURN r
		`, nil
	case RelationshipCausedBy, RelationshipDerivedFrom:
		return fmt.Sprintf(`
			MATCH (a:Memory {hash: $from}), (b:Memory {hash: $to})
			CREATE (a)-[r:%s {created_at: $createdAt}]->(b)
			RETURN r
		`, rel), nil
	default:
		return "", errors.New(errors.ErrorTypeGraph, errors.KindMalformed,
			fmt.Sprintf("unknown relationship type: %q", rel), nil)
	}
}

// OutgoingEdges returns all edges originating from the given hash
func (s *Neo4jStore) OutgoingEdges(ctx context.Context, hash string) ([]Edge, error) {
	driver, err := s.handle()
	if err != nil {
		return nil, err
	}
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (a:Memory {hash: $hash})-[r]->(b:Memory)
		RETURN type(r) AS rel_type, b.hash AS to_hash,
		       r.strength AS strength, r.reason AS reason,
		       r.resolution AS resolution,
		       coalesce(r.created_at, r.detected_at) AS created_at
		ORDER BY created_at
	`, map[string]interface{}{"hash": hash})
	if err != nil {
		return nil, errors.NewStoreUnavailable("outgoing edges", err)
	}

	var edges []Edge
	for result.Next(ctx) {
		record := result.Record()
		edges = append(edges, Edge{
			From:       hash,
			To:         recordString(record, "to_hash"),
			Type:       RelationshipType(recordString(record, "rel_type")),
			Strength:   recordFloat(record, "strength"),
			Reason:     recordString(record, "reason"),
			Resolution: recordString(record, "resolution"),
			CreatedAt:  recordString(record, "created_at"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, errors.NewStoreUnavailable("outgoing edges", err)
	}
	return edges, nil
}

// CountNodes returns the total node count
func (s *Neo4jStore) CountNodes(ctx context.Context) (int64, error) {
	return s.count(ctx, `MATCH (m:Memory) RETURN count(m) AS n`)
}

// CountEdgesByType returns the edge count for one relationship kind
func (s *Neo4jStore) CountEdgesByType(ctx context.Context, rel RelationshipType) (int64, error) {
	if !isKnownRelationship(rel) {
		return 0, errors.New(errors.ErrorTypeGraph, errors.KindMalformed,
			fmt.Sprintf("unknown relationship type: %q", rel), nil)
	}
	return s.count(ctx, fmt.Sprintf(`MATCH ()-[r:%s]->() RETURN count(r) AS n`, rel))
}

func (s *Neo4jStore) count(ctx context.Context, query string) (int64, error) {
	driver, err := s.handle()
	if err != nil {
		return 0, err
	}
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return 0, errors.NewStoreUnavailable("count", err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return 0, errors.NewStoreUnavailable("count", err)
	}
	if n, ok := record.Get("n"); ok {
		if v, ok := n.(int64); ok {
			return v, nil
		}
	}
	return 0, errors.NewStoreUnavailable("count", fmt.Errorf("unexpected count result"))
}

func isKnownRelationship(rel RelationshipType) bool {
	for _, known := range relationshipTypes {
		if rel == known {
			return true
		}
	}
	return false
}

// Record helpers

func recordString(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func recordFloat(record *neo4j.Record, key string) float64 {
	val, ok := record.Get(key)
	if !ok {
		return 0
	}
	if f, ok := val.(float64); ok {
		return f
	}
	return 0
}
