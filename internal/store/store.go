// Package store keeps encoded result images in memory, keyed by a generated
// identifier and an output kind.
//
// The store is an explicit collaborator handed to the transports; nothing in
// the pipeline reaches for it. Entries live for the lifetime of the process
// unless evicted, either explicitly or by the optional capacity bound.
package store

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Output kinds stored per processed image.
const (
	KindCanny        = "canny"
	KindFuzzy        = "fuzzy"
	KindSegmentation = "segmentation"
	KindMarkers      = "markers"
)

// Kinds lists every output kind in presentation order.
var Kinds = []string{KindCanny, KindFuzzy, KindSegmentation, KindMarkers}

// ValidKind reports whether kind is one of Kinds.
func ValidKind(kind string) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// ErrNotFound is returned by Get for unknown identifiers or kinds.
var ErrNotFound = errors.New("image not found")

// Store is a thread-safe map from (id, kind) to PNG bytes.
//
// With a positive capacity, inserting a new identifier beyond the capacity
// evicts the oldest identifier with all of its kinds.
type Store struct {
	mu       sync.RWMutex
	entries  map[string]map[string][]byte
	order    []string
	capacity int
}

// New creates an empty store. capacity <= 0 means unbounded.
func New(capacity int) *Store {
	return &Store{
		entries:  make(map[string]map[string][]byte),
		capacity: capacity,
	}
}

// NewID returns a fresh random identifier.
func NewID() string {
	return uuid.NewString()
}

// PutSet stores a set of outputs under a new identifier and returns it.
func (s *Store) PutSet(images map[string][]byte) string {
	id := NewID()
	set := make(map[string][]byte, len(images))
	for kind, data := range images {
		set[kind] = data
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = set
	s.order = append(s.order, id)
	s.evictLocked()
	return id
}

// Put stores a single output under a new identifier and returns it.
func (s *Store) Put(kind string, data []byte) string {
	return s.PutSet(map[string][]byte{kind: data})
}

// Get returns the bytes stored for (id, kind).
func (s *Store) Get(id, kind string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	data, ok := set[kind]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

// Has reports whether id is stored.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[id]
	return ok
}

// Len returns the number of stored identifiers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Evict removes an identifier and all of its outputs.
// Unknown identifiers are ignored.
func (s *Store) Evict(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return
	}
	delete(s.entries, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Clear removes everything.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]map[string][]byte)
	s.order = nil
	s.mu.Unlock()
}

func (s *Store) evictLocked() {
	if s.capacity <= 0 {
		return
	}
	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.entries, oldest)
	}
}
