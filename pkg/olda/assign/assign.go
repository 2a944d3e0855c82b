// Package assign implements the copy-on-write assignment store: a forest
// of topic-assignment overrides keyed by (particle-store-id, document
// index, word index), where each non-root node shadows its parent. This
// avoids the O(total words) copy per particle resample that a flat
// per-particle map would require.
package assign

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/oklog/ulid/v2"

	"github.com/cognicore/olda/pkg/olda/internalerr"
)

// NodeID identifies a node (one per live or historical particle) in the
// assignment forest.
type NodeID = ulid.ULID

// position is a (document index, word index) pair within a document.
type position struct {
	Doc  int
	Word int
}

type cacheKey struct {
	Node NodeID
	Pos  position
}

// Store is the copy-on-write assignment forest. It is not safe for
// concurrent use; see spec §5 for the single-threaded execution model this
// mirrors.
type Store struct {
	tables map[NodeID]map[position]int
	parent map[NodeID]*NodeID

	// cache memoizes resolved Get lookups so repeated ancestor walks for
	// read-heavy rejuvenation passes don't re-walk the parent chain every
	// time. Set invalidates only the written node's own entry, so a value
	// cached for a descendant is not refreshed if an ancestor is written
	// later; the particle store never writes a node after creating
	// children of it, so there the cache never changes a result.
	cache *lru.Cache[cacheKey, int]
}

// cacheSize bounds the ancestor-resolution cache. It is sized generously
// relative to a typical reservoir window (documents * words per document)
// rather than tuned against any one corpus.
const cacheSize = 1 << 16

// New creates an empty assignment store.
func New() *Store {
	cache, err := lru.New[cacheKey, int](cacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which cacheSize
		// never is.
		panic(fmt.Sprintf("assign: unexpected lru.New error: %v", err))
	}
	return &Store{
		tables: make(map[NodeID]map[position]int),
		parent: make(map[NodeID]*NodeID),
		cache:  cache,
	}
}

// NewRoot registers id as a root node with no parent.
func (s *Store) NewRoot(id NodeID) {
	s.tables[id] = make(map[position]int)
	s.parent[id] = nil
}

// NewChild registers id as a child of parentID. Lookups that miss in id's
// own table fall through to parentID.
func (s *Store) NewChild(id, parentID NodeID) {
	s.tables[id] = make(map[position]int)
	p := parentID
	s.parent[id] = &p
}

// NewDocument ensures node id can record overrides for document d. The
// copy-on-write table is sparse, so this is a no-op placeholder kept for
// symmetry with the per-document lifecycle described in the data model;
// Set lazily creates entries regardless.
func (s *Store) NewDocument(id NodeID, doc int) {
	_, _ = id, doc
}

// Set writes topic t for (doc, word) into id's own local table. It never
// affects ancestors or other descendants.
func (s *Store) Set(id NodeID, doc, word, topic int) {
	tbl, ok := s.tables[id]
	if !ok {
		tbl = make(map[position]int)
		s.tables[id] = tbl
	}
	pos := position{Doc: doc, Word: word}
	tbl[pos] = topic
	s.cache.Remove(cacheKey{Node: id, Pos: pos})
}

// Get resolves the topic assigned to (doc, word) as seen from node id,
// walking to ancestors as needed. Fails with ErrAssignmentMissing if no
// node on the path to a root defines the position.
func (s *Store) Get(id NodeID, doc, word int) (int, error) {
	pos := position{Doc: doc, Word: word}
	key := cacheKey{Node: id, Pos: pos}
	if v, ok := s.cache.Get(key); ok {
		return v, nil
	}

	cur := id
	for {
		if tbl, ok := s.tables[cur]; ok {
			if t, ok := tbl[pos]; ok {
				s.cache.Add(key, t)
				return t, nil
			}
		}
		parent, known := s.parent[cur]
		if !known {
			return 0, fmt.Errorf("assign: node %s: %w", cur, internalerr.ErrAssignmentMissing)
		}
		if parent == nil {
			return 0, fmt.Errorf("assign: root %s: %w", cur, internalerr.ErrAssignmentMissing)
		}
		cur = *parent
	}
}

// Prune is an optimization hook reserved for reclaiming forest nodes that
// are no longer reachable from any live particle or needed ancestor chain.
// It is a no-op in this implementation, as permitted by spec §9.
func (s *Store) Prune(liveIDs []NodeID) {
	_ = liveIDs
}
