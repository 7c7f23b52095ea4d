// Package drafts persists unsaved editor content keyed by repository path,
// so in-progress edits survive page reloads without touching the branch.
package drafts

import (
	"context"
	"sync"
)

// Store holds draft content keyed by file path.
//
//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -o ../internal/fakes/draftstore.go . Store
type Store interface {
	// Get returns the draft for key. The bool reports whether a draft exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put stores or replaces the draft for key.
	Put(ctx context.Context, key string, content []byte) error
	// Delete removes the draft for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Memory is an in-process Store, suitable for tests and single-session use.
type Memory struct {
	mu sync.RWMutex
	m  map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{m: make(map[string][]byte)}
}

// Get implements Store.
func (s *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

// Put implements Store.
func (s *Memory) Put(_ context.Context, key string, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(content))
	copy(stored, content)
	s.m[key] = stored
	return nil
}

// Delete implements Store.
func (s *Memory) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.m, key)
	return nil
}
