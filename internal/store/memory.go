// Package store contains the in-memory transcript store. It mirrors the
// repository's contract so the daemon can run without Postgres and tests can
// exercise the pipeline end to end.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/callsift/callsift/internal/model"
	"github.com/callsift/callsift/internal/repository"
)

// MemoryStore keeps transcripts in two maps guarded by an RWMutex: byPath
// backs the dedup gate, byID backs worker lookups.
type MemoryStore struct {
	mu     sync.RWMutex
	byPath map[string]*model.Transcript
	byID   map[string]*model.Transcript
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byPath: make(map[string]*model.Transcript),
		byID:   make(map[string]*model.Transcript),
	}
}

// ExistsByPath reports whether a record was already created for the path.
func (m *MemoryStore) ExistsByPath(_ context.Context, path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byPath[path]
	return ok, nil
}

// Create inserts a record, enforcing the same filepath uniqueness the
// Postgres schema provides via its UNIQUE constraint.
func (m *MemoryStore) Create(_ context.Context, t *model.Transcript) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byPath[t.Filepath]; ok {
		return repository.ErrDuplicatePath
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	cp := *t
	m.byPath[cp.Filepath] = &cp
	m.byID[cp.ID] = &cp
	return nil
}

// Get returns a record copy by id.
func (m *MemoryStore) Get(_ context.Context, id string) (*model.Transcript, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// List returns the most recent transcripts, newest first.
func (m *MemoryStore) List(_ context.Context, limit int) ([]*model.Transcript, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Transcript, 0, len(m.byID))
	for _, rec := range m.byID {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
