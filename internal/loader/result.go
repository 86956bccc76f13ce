package loader

import (
	"encoding/json"
	"fmt"
	"sync"
)

// ResourceIdentifier names one resource by type and id.
type ResourceIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// RelationshipLink is the linkage attached to a record for one relationship:
// a single identifier (or null) for to-one edges, a list (possibly empty,
// never null) for to-many edges.
type RelationshipLink struct {
	ToMany bool
	One    *ResourceIdentifier
	Many   []ResourceIdentifier
}

// MarshalJSON renders the linkage as {"data": ...} with null for an absent
// to-one target and [] for an empty to-many set.
func (l RelationshipLink) MarshalJSON() ([]byte, error) {
	if l.ToMany {
		many := l.Many
		if many == nil {
			many = []ResourceIdentifier{}
		}
		return json.Marshal(map[string]any{"data": many})
	}
	if l.One == nil {
		return json.Marshal(map[string]any{"data": nil})
	}
	return json.Marshal(map[string]any{"data": l.One})
}

// LinkedRecord is a fetched record plus the relationship linkage attached
// during include resolution. Linkage writes are serialized internally because
// sibling include branches attach different relationships concurrently.
type LinkedRecord struct {
	Type          string
	ID            string
	Row           map[string]any
	Relationships map[string]RelationshipLink

	mu sync.Mutex
}

func (r *LinkedRecord) setRelationship(name string, link RelationshipLink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Relationships == nil {
		r.Relationships = make(map[string]RelationshipLink)
	}
	r.Relationships[name] = link
}

// Identifier returns the record's resource identifier.
func (r *LinkedRecord) Identifier() ResourceIdentifier {
	return ResourceIdentifier{Type: r.Type, ID: r.ID}
}

// IncludedSet deduplicates fetched related resources across one whole
// include-tree traversal, keyed by (type, id). It is safe for concurrent
// insertion from sibling branches.
type IncludedSet struct {
	mu        sync.Mutex
	resources map[ResourceIdentifier]*LinkedRecord
	order     []ResourceIdentifier
}

// NewIncludedSet returns an empty set.
func NewIncludedSet() *IncludedSet {
	return &IncludedSet{resources: make(map[ResourceIdentifier]*LinkedRecord)}
}

// Upsert inserts a fetched record, or returns the existing entry when the
// (type, id) pair is already present. added reports a fresh insertion;
// duplicates are reused, never re-transformed.
func (s *IncludedSet) Upsert(typ string, id any, row map[string]any) (rec *LinkedRecord, added bool) {
	key := ResourceIdentifier{Type: typ, ID: fmt.Sprint(id)}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.resources[key]; ok {
		return existing, false
	}
	rec = &LinkedRecord{Type: key.Type, ID: key.ID, Row: row}
	s.resources[key] = rec
	s.order = append(s.order, key)
	return rec, true
}

// Get returns the entry for (typ, id) if present.
func (s *IncludedSet) Get(typ string, id any) (*LinkedRecord, bool) {
	key := ResourceIdentifier{Type: typ, ID: fmt.Sprint(id)}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.resources[key]
	return rec, ok
}

// Len returns the number of distinct included resources.
func (s *IncludedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.resources)
}

// Resources returns the included resources in insertion order.
func (s *IncludedSet) Resources() []*LinkedRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*LinkedRecord, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.resources[key])
	}
	return out
}

// Result is the outcome of one ResolveIncludes call: the root records with
// relationship linkage attached, and every related resource fetched along the
// include tree, deduplicated.
type Result struct {
	Records  []*LinkedRecord
	Included *IncludedSet
}

// loadState is the per-call mutable state of one top-level resolve: the
// shared included set plus the set of already-processed tree paths guarding
// against redundant work and self-referential recursion.
type loadState struct {
	mu             sync.Mutex
	included       *IncludedSet
	processedPaths map[string]struct{}
}

func newLoadState() *loadState {
	return &loadState{
		included:       NewIncludedSet(),
		processedPaths: make(map[string]struct{}),
	}
}

// markPath records a dotted tree path as processed, returning false if it was
// already seen in this call.
func (s *loadState) markPath(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.processedPaths[path]; ok {
		return false
	}
	s.processedPaths[path] = struct{}{}
	return true
}
