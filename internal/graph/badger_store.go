package graph

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"memgraph/pkg/errors"
)

// Key prefixes for the embedded store layout. Single-byte prefixes keep
// prefix scans cheap.
const (
	prefixNode     = byte(0x01) // node:hash -> JSON(MemoryNode)
	prefixEdge     = byte(0x02) // edge:id -> JSON(Edge)
	prefixOutgoing = byte(0x03) // outgoing:fromHash:createdAt:id -> id
)

const keySep = byte(0x00)

// BadgerStore is the embedded graph store backend. BadgerDB grants at
// most one process a directory lock per storage path, which models the
// exclusive-ownership contract directly: Open acquires the lock, Close
// releases it, and a second owner fails Open with a locked error.
//
// Check-then-create sequences run inside a single read-write badger
// transaction, so duplicate nodes cannot race into existence on this
// backend even under concurrent writers.
type BadgerStore struct {
	path     string
	inMemory bool

	mu sync.Mutex // guards db and the open/closed transition
	db *badger.DB
}

// BadgerStoreOptions configures the embedded store
type BadgerStoreOptions struct {
	// Path is the data directory. Created if missing. Ignored when
	// InMemory is set.
	Path string
	// InMemory keeps all data in RAM. Used by tests.
	InMemory bool
}

// NewBadgerStore creates an embedded store for the given data directory.
// The connection is lazy; no lock is taken until Open or the first
// operation.
func NewBadgerStore(path string) *BadgerStore {
	return &BadgerStore{path: path}
}

// NewBadgerStoreWithOptions creates an embedded store with custom options
func NewBadgerStoreWithOptions(opts BadgerStoreOptions) *BadgerStore {
	return &BadgerStore{path: opts.Path, inMemory: opts.InMemory}
}

// Open acquires the badger handle and the exclusive directory lock.
// Idempotent: opening an already-open store is a no-op. Re-opening
// after Close establishes a fresh handle.
func (s *BadgerStore) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openLocked()
}

func (s *BadgerStore) openLocked() error {
	if s.db != nil {
		return nil
	}

	opts := badger.DefaultOptions(s.path).WithLogger(nil)
	if s.inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		if strings.Contains(err.Error(), "directory lock") {
			return errors.NewStoreLocked(s.path, err)
		}
		return errors.NewStoreUnavailable("open", err)
	}
	s.db = db
	return nil
}

// Close releases the badger handle and the directory lock. Closing a
// closed store is a no-op.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return errors.NewStoreUnavailable("close", err)
	}
	return nil
}

// handle returns the open badger handle, opening the store implicitly
// if it is closed.
func (s *BadgerStore) handle() (*badger.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.openLocked(); err != nil {
		return nil, err
	}
	return s.db, nil
}

// NodeExists probes for a node by content hash
func (s *BadgerStore) NodeExists(ctx context.Context, hash string) (bool, error) {
	db, err := s.handle()
	if err != nil {
		return false, err
	}

	exists := false
	err = db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(nodeKey(hash))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, errors.NewStoreUnavailable("node exists", err)
	}
	return exists, nil
}

// CreateNode inserts a node. The existence check and the write share
// one transaction, making create-if-absent atomic.
func (s *BadgerStore) CreateNode(ctx context.Context, node *MemoryNode) error {
	if node == nil || node.Hash == "" {
		return errors.NewMalformedHash("")
	}
	db, err := s.handle()
	if err != nil {
		return err
	}

	return db.Update(func(txn *badger.Txn) error {
		key := nodeKey(node.Hash)
		if _, err := txn.Get(key); err == nil {
			return errors.NewNodeExists(node.Hash)
		} else if err != badger.ErrKeyNotFound {
			return errors.NewStoreUnavailable("create node", err)
		}

		data, err := json.Marshal(node)
		if err != nil {
			return errors.NewStoreUnavailable("encode node", err)
		}
		if err := txn.Set(key, data); err != nil {
			return errors.NewStoreUnavailable("create node", err)
		}
		return nil
	})
}

// GetNode fetches a node by content hash
func (s *BadgerStore) GetNode(ctx context.Context, hash string) (*MemoryNode, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	var node MemoryNode
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(nodeKey(hash))
		if err == badger.ErrKeyNotFound {
			return errors.NewNodeNotFound(hash)
		}
		if err != nil {
			return errors.NewStoreUnavailable("get node", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &node)
		})
	})
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// CreateEdge inserts a directed typed edge. Endpoint checks and the two
// writes (edge record plus outgoing index entry) share one transaction.
func (s *BadgerStore) CreateEdge(ctx context.Context, edge *Edge) error {
	if edge == nil || edge.From == "" || edge.To == "" {
		return errors.NewMalformedHash("")
	}
	if edge.From == edge.To {
		return errors.NewSelfLoop(edge.From)
	}
	db, err := s.handle()
	if err != nil {
		return err
	}

	return db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(nodeKey(edge.From)); err != nil {
			return errors.NewEndpointMissing(edge.From, edge.To)
		}
		if _, err := txn.Get(nodeKey(edge.To)); err != nil {
			return errors.NewEndpointMissing(edge.From, edge.To)
		}

		if edge.ID == "" {
			edge.ID = uuid.NewString()
		}
		data, err := json.Marshal(edge)
		if err != nil {
			return errors.NewStoreUnavailable("encode edge", err)
		}
		if err := txn.Set(edgeKey(edge.ID), data); err != nil {
			return errors.NewStoreUnavailable("create edge", err)
		}
		// Index key embeds the insertion time so outgoing edges
		// iterate in creation order. The edge's own CreatedAt string
		// is too coarse for ordering (second resolution).
		if err := txn.Set(outgoingKey(edge.From, uint64(time.Now().UnixNano()), edge.ID), []byte(edge.ID)); err != nil {
			return errors.NewStoreUnavailable("index edge", err)
		}
		return nil
	})
}

// OutgoingEdges returns all edges originating from the given hash, in
// creation order
func (s *BadgerStore) OutgoingEdges(ctx context.Context, hash string) ([]Edge, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	var edges []Edge
	err = db.View(func(txn *badger.Txn) error {
		prefix := outgoingPrefix(hash)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var edgeID []byte
			if err := it.Item().Value(func(val []byte) error {
				edgeID = append([]byte(nil), val...)
				return nil
			}); err != nil {
				return err
			}

			item, err := txn.Get(edgeKey(string(edgeID)))
			if err != nil {
				return err
			}
			var edge Edge
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &edge)
			}); err != nil {
				return err
			}
			edges = append(edges, edge)
		}
		return nil
	})
	if err != nil {
		return nil, errors.NewStoreUnavailable("outgoing edges", err)
	}
	return edges, nil
}

// CountNodes returns the total node count
func (s *BadgerStore) CountNodes(ctx context.Context) (int64, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}

	var count int64
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte{prefixNode}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, errors.NewStoreUnavailable("count nodes", err)
	}
	return count, nil
}

// CountEdgesByType returns the edge count for one relationship kind
func (s *BadgerStore) CountEdgesByType(ctx context.Context, rel RelationshipType) (int64, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}

	var count int64
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte{prefixEdge}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var edge Edge
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &edge)
			}); err != nil {
				return err
			}
			if edge.Type == rel {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return 0, errors.NewStoreUnavailable("count edges", err)
	}
	return count, nil
}

// Key construction helpers

func nodeKey(hash string) []byte {
	return append([]byte{prefixNode}, hash...)
}

func edgeKey(id string) []byte {
	return append([]byte{prefixEdge}, id...)
}

func outgoingPrefix(from string) []byte {
	key := append([]byte{prefixOutgoing}, from...)
	return append(key, keySep)
}

func outgoingKey(from string, insertedAt uint64, id string) []byte {
	key := outgoingPrefix(from)
	key = binary.BigEndian.AppendUint64(key, insertedAt)
	return append(key, id...)
}
