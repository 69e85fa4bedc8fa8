package upload

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStore is an in-memory upload store for development and testing.
type MemoryStore struct {
	mu    sync.Mutex
	files map[string][]byte

	// StoreErrAfter, when >= 0, makes Store fail once that many files have
	// been stored. Used to exercise rollback paths in tests.
	StoreErrAfter int
	// DeleteErr, when set, is returned by every Delete call.
	DeleteErr error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte), StoreErrAfter: -1}
}

// Store keeps the upload bytes in memory under the key.
// PRE: key is non-empty
// POST: Bytes retained; returns reference (key) and a memory:// URL
func (s *MemoryStore) Store(ctx context.Context, r io.Reader, key, originalName string) (StoredFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return StoredFile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.StoreErrAfter >= 0 && len(s.files) >= s.StoreErrAfter {
		return StoredFile{}, fmt.Errorf("store failed for %q (injected)", key)
	}
	s.files[key] = data

	return StoredFile{
		Reference:    key,
		URL:          "memory://" + key,
		OriginalName: originalName,
	}, nil
}

// Delete removes the upload from memory.
// PRE: reference was returned by a prior Store call
// POST: Entry removed unless DeleteErr is injected
func (s *MemoryStore) Delete(ctx context.Context, reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.files, reference)
	return nil
}

// Len returns the number of stored files.
// INVARIANT: Store contents are not mutated
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// Get returns the stored bytes for a reference.
// INVARIANT: Store contents are not mutated
func (s *MemoryStore) Get(reference string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[reference]
	return data, ok
}
