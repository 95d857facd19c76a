package graph

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dusk-indust/kinship/internal/archive"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
// Archives are cloned on the way in and out.
type MemStore struct {
	mu       sync.RWMutex
	archives map[string]*archive.Archive
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{archives: make(map[string]*archive.Archive)}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// SaveArchive stores a copy of a keyed by its slug.
func (m *MemStore) SaveArchive(_ context.Context, a *archive.Archive) error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("mem: save archive: id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archives[a.ID] = a.Clone()
	return nil
}

// GetArchive returns a copy of the archive, or nil if not found.
func (m *MemStore) GetArchive(_ context.Context, id string) (*archive.Archive, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.archives[id]
	if !ok {
		return nil, nil
	}
	return a.Clone(), nil
}

// ListArchives returns summaries sorted by UpdatedAt, newest first.
func (m *MemStore) ListArchives(_ context.Context) ([]ArchiveSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ArchiveSummary, 0, len(m.archives))
	for _, a := range m.archives {
		out = append(out, ArchiveSummary{
			ID:            a.ID,
			Name:          a.Name,
			MemberCount:   len(a.Members),
			RelationCount: len(a.Relations),
			UpdatedAt:     a.UpdatedAt,
		})
	}
	sortSummaries(out)
	return out, nil
}

// DeleteArchive removes an archive.
func (m *MemStore) DeleteArchive(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.archives[id]; !ok {
		return fmt.Errorf("mem: delete archive %s: %w", id, ErrNotFound)
	}
	delete(m.archives, id)
	return nil
}

// DeleteMember removes a member and its relations from a stored archive.
func (m *MemStore) DeleteMember(_ context.Context, archiveID, memberID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.archives[archiveID]
	if !ok {
		return fmt.Errorf("mem: delete member: archive %s: %w", archiveID, ErrNotFound)
	}
	if err := a.RemoveMember(memberID); err != nil {
		return fmt.Errorf("mem: delete member %s: %w", memberID, ErrNotFound)
	}
	return nil
}

// Stats returns archive, member and relation counts.
func (m *MemStore) Stats(_ context.Context) (*StoreStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := &StoreStats{ArchiveCount: len(m.archives)}
	for _, a := range m.archives {
		st.MemberCount += len(a.Members)
		st.RelationCount += len(a.Relations)
	}
	return st, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}

// sortSummaries orders by UpdatedAt descending, then ID for stability.
func sortSummaries(s []ArchiveSummary) {
	sort.Slice(s, func(i, j int) bool {
		if !s[i].UpdatedAt.Equal(s[j].UpdatedAt) {
			return s[i].UpdatedAt.After(s[j].UpdatedAt)
		}
		return s[i].ID < s[j].ID
	})
}
