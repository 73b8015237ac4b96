package storage

import "sync"

// MemoryStore is the default visited store: a mutex-guarded set that
// lives for a single crawl.
type MemoryStore struct {
	seen map[string]bool
	mu   sync.Mutex
}

// NewMemoryStore creates an empty in-memory visited store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]bool)}
}

// MarkVisited implements VisitedStore.
func (s *MemoryStore) MarkVisited(normalizedURL string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[normalizedURL] {
		return false, nil
	}
	s.seen[normalizedURL] = true
	return true, nil
}

// Seen implements VisitedStore.
func (s *MemoryStore) Seen(normalizedURL string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[normalizedURL], nil
}

// Count implements VisitedStore.
func (s *MemoryStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen), nil
}

// Close implements VisitedStore.
func (s *MemoryStore) Close() error { return nil }
