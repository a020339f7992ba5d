// Package barrel implements the sharded inverted index: one file per
// shard mapping term_id to its posting list, a routing table from term_id
// to shard name, and a bounded in-memory cache of loaded shards.
package barrel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/scoutindex/scoutindex/pkg/atomicfile"
	"github.com/scoutindex/scoutindex/pkg/scouterrors"
)

// Posting is one document's term frequency within a shard's posting list.
type Posting struct {
	TF int `json:"tf"`
}

// TermEntry is one term_id's record inside a shard.
type TermEntry struct {
	Token    string             `json:"token"`
	DF       int                `json:"df"`
	Postings map[string]Posting `json:"postings"`
}

// Metadata describes a shard's self-reported size.
type Metadata struct {
	TermCount    int    `json:"term_count"`
	PostingCount int    `json:"posting_count"`
	BarrelName   string `json:"barrel_name"`
}

// Shard is one barrel: a partition of the inverted index.
type Shard struct {
	Metadata      Metadata              `json:"metadata"`
	InvertedIndex map[string]*TermEntry `json:"inverted_index"`
}

func newShard(name string) *Shard {
	return &Shard{
		Metadata:      Metadata{BarrelName: name},
		InvertedIndex: make(map[string]*TermEntry),
	}
}

// recomputeMetadata keeps term_count/posting_count consistent with the
// shard's actual contents.
func (s *Shard) recomputeMetadata() {
	s.Metadata.TermCount = len(s.InvertedIndex)
	postings := 0
	for _, te := range s.InvertedIndex {
		postings += len(te.Postings)
	}
	s.Metadata.PostingCount = postings
}

// Store owns the on-disk barrel directory, the routing table, and the
// bounded cache of resident shards.
type Store struct {
	dir           string
	routingPath   string
	mu            sync.Mutex
	routing       map[int64]string // term_id -> shard name
	maxShardIndex int              // highest shard index seen, -1 if none
	cache         *cache
}

// NewStore opens (or bootstraps) a barrel store rooted at dir, with a
// routing table file at routingPath and a bounded cache of capacity
// cacheSize.
func NewStore(dir, routingPath string, cacheSize int) (*Store, error) {
	s := &Store{
		dir:           dir,
		routingPath:   routingPath,
		routing:       make(map[int64]string),
		maxShardIndex: -1,
	}
	s.cache = newCache(cacheSize, s.writeBack)

	data, err := os.ReadFile(routingPath)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, &scouterrors.IOError{Path: routingPath, Op: "read", Err: err}
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &scouterrors.IOError{Path: routingPath, Op: "parse", Err: err}
	}
	for k, v := range raw {
		var termID int64
		if _, err := fmt.Sscanf(k, "%d", &termID); err != nil {
			continue
		}
		s.routing[termID] = v
		if idx, ok := shardIndex(v); ok && idx > s.maxShardIndex {
			s.maxShardIndex = idx
		}
	}
	return s, nil
}

func shardIndex(name string) (int, bool) {
	var idx int
	if _, err := fmt.Sscanf(name, "barrel_%03d", &idx); err != nil {
		return 0, false
	}
	return idx, true
}

func shardName(idx int) string {
	return fmt.Sprintf("barrel_%03d", idx)
}

func (s *Store) shardPath(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// ShardOf consults the routing table for term_id. ok=false means the term
// is unrouted; the caller must assign one via AssignShard before writing.
func (s *Store) ShardOf(termID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.routing[termID]
	return name, ok
}

// AssignShard applies the shard-assignment policy: shard index is
// term_id mod K, where K is one plus the maximum existing shard index
// in the routing table. It records the mapping and returns the shard name.
func (s *Store) AssignShard(termID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := s.maxShardIndex + 1
	if k < 1 {
		k = 1
	}
	idx := int(termID % int64(k))
	if idx < 0 {
		idx += k
	}
	name := shardName(idx)
	s.routing[termID] = name
	if idx > s.maxShardIndex {
		s.maxShardIndex = idx
	}
	return name
}

// Bootstrap seeds the routing table's shard-count input with shardCount
// shards (barrel_000 .. barrel_NNN) so K is fixed before any add-document
// call and term-relevant shard loading is meaningful from the first bulk
// build. An already-populated routing table that spans more shards wins;
// Bootstrap never shrinks the shard set.
func (s *Store) Bootstrap(shardCount int) error {
	if shardCount < 1 {
		shardCount = 1
	}

	s.mu.Lock()
	if s.maxShardIndex >= shardCount-1 {
		s.mu.Unlock()
		return nil
	}
	s.maxShardIndex = shardCount - 1
	s.mu.Unlock()

	for idx := 0; idx < shardCount; idx++ {
		shard, err := s.Load(shardName(idx))
		if err != nil {
			return err
		}
		s.Touch(shard)
	}
	return s.FlushAll()
}

// Load returns the in-memory shard for name, fetching it from the cache
// (loading from disk on miss). If the shard file is absent, an empty
// scaffold with zeroed metadata is created, needed by the first write into
// a new shard.
func (s *Store) Load(name string) (*Shard, error) {
	return s.cache.get(name, func() (*Shard, error) {
		path := s.shardPath(name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return newShard(name), nil
			}
			return nil, &scouterrors.IOError{Path: path, Op: "read", Err: err}
		}

		var shard Shard
		if err := json.Unmarshal(data, &shard); err != nil {
			return nil, &scouterrors.CorruptShardError{ShardName: name, Reason: err.Error()}
		}
		if shard.InvertedIndex == nil {
			shard.InvertedIndex = make(map[string]*TermEntry)
		}
		return &shard, nil
	})
}

// LoadExisting returns the in-memory shard for name without scaffolding:
// an absent file when the routing table points at it is CorruptShard.
func (s *Store) LoadExisting(name string) (*Shard, error) {
	return s.cache.get(name, func() (*Shard, error) {
		path := s.shardPath(name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, &scouterrors.CorruptShardError{ShardName: name, Reason: "routed shard file is absent"}
			}
			return nil, &scouterrors.IOError{Path: path, Op: "read", Err: err}
		}

		var shard Shard
		if err := json.Unmarshal(data, &shard); err != nil {
			return nil, &scouterrors.CorruptShardError{ShardName: name, Reason: err.Error()}
		}
		if shard.InvertedIndex == nil {
			shard.InvertedIndex = make(map[string]*TermEntry)
		}
		return &shard, nil
	})
}

// Touch marks a shard as dirty so it is written back before eviction, and
// recomputes its metadata. Callers mutate the *Shard returned by Load/
// LoadExisting in place and then call Touch.
func (s *Store) Touch(shard *Shard) {
	shard.recomputeMetadata()
	s.cache.markDirty(shard.Metadata.BarrelName)
}

func (s *Store) writeBack(shard *Shard) error {
	data, err := json.Marshal(shard)
	if err != nil {
		return &scouterrors.IOError{Path: s.shardPath(shard.Metadata.BarrelName), Op: "marshal", Err: err}
	}
	if err := atomicfile.Write(s.shardPath(shard.Metadata.BarrelName), data); err != nil {
		return &scouterrors.IOError{Path: s.shardPath(shard.Metadata.BarrelName), Op: "write", Err: err}
	}
	return nil
}

// FlushAll writes back every dirty cached shard. The cache entry is
// either clean (matches disk) or written back before this, or any public
// API, returns.
func (s *Store) FlushAll() error {
	return s.cache.flushAll()
}

// SaveRoutingTable persists the term_id -> shard name mapping.
func (s *Store) SaveRoutingTable() error {
	s.mu.Lock()
	out := make(map[string]string, len(s.routing))
	for termID, name := range s.routing {
		out[fmt.Sprintf("%d", termID)] = name
	}
	s.mu.Unlock()

	data, err := json.Marshal(out)
	if err != nil {
		return &scouterrors.IOError{Path: s.routingPath, Op: "marshal", Err: err}
	}
	if err := atomicfile.Write(s.routingPath, data); err != nil {
		return &scouterrors.IOError{Path: s.routingPath, Op: "write", Err: err}
	}
	return nil
}

// SetObserver wires a cache observer (the metrics manager) into the
// barrel cache so hits, misses and evictions are exported.
func (s *Store) SetObserver(o CacheObserver) {
	s.cache.setObserver(o)
}

// Stats reports cache hit/miss/eviction counters for observability.
func (s *Store) Stats() (hits, misses, evictions int64) {
	return s.cache.stats()
}
