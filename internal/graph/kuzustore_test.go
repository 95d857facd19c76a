//go:build cgo

package graph

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/kinship/internal/archive"
)

// newTestStore creates a fresh in-memory KuzuStore with an initialized schema.
// It registers a cleanup function to close the store when the test finishes.
func newTestStore(t *testing.T) *KuzuStore {
	t.Helper()
	s, err := NewKuzuStore()
	require.NoError(t, err, "NewKuzuStore should not fail")
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.InitSchema(context.Background()), "InitSchema should not fail")
	return s
}

func TestKuzuStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		return newTestStore(t)
	})
}

func TestKuzuStore_InitSchema(t *testing.T) {
	s, err := NewKuzuStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()

	// First call creates the tables.
	require.NoError(t, s.InitSchema(ctx))

	// Second call should be idempotent (IF NOT EXISTS).
	require.NoError(t, s.InitSchema(ctx))
}

func TestKuzuStore_DropsDanglingRelations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := fixtureArchive("a", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	a.Relations = append(a.Relations, archive.Relation{
		ID: "dangling", FromMemberID: "me", ToMemberID: "ghost", Type: archive.RelationSibling,
	})
	require.NoError(t, s.SaveArchive(ctx, a))

	got, err := s.GetArchive(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, got.Relations, 3)
}

func TestKuzuStore_FilePersistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "graph")
	ctx := context.Background()

	s, err := NewKuzuFileStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.InitSchema(ctx))
	require.NoError(t, s.SaveArchive(ctx, fixtureArchive("a", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, s.Close())

	s, err = NewKuzuFileStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got, err := s.GetArchive(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Members, 4)
	assert.Len(t, got.Relations, 3)
}
