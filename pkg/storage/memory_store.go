package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory implementation of DocumentStore.
// Contents do not survive a process restart.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]Document),
	}
}

func (s *MemoryStore) key(collection, key string) string {
	return fmt.Sprintf("%s:%s", collection, key)
}

// Get retrieves a document from memory.
func (s *MemoryStore) Get(_ context.Context, collection, key string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[s.key(collection, key)]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, collection, key)
	}
	return doc, nil
}

// Put stores a document in memory.
func (s *MemoryStore) Put(_ context.Context, collection, key string, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[s.key(collection, key)] = doc
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}
