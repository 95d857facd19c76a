package graph

import (
	"context"
	"errors"
	"io"

	"github.com/dusk-indust/kinship/internal/archive"
)

// ErrNotFound is returned by delete operations on missing records.
var ErrNotFound = errors.New("not found")

// Store is the persistence interface for family archives.
// Implementations: SQLiteStore (default), KuzuStore (graph index, cgo),
// MemStore (testing).
type Store interface {
	io.Closer

	// InitSchema is called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// SaveArchive upserts a full snapshot. Members and relations missing from
	// the snapshot are removed; member and relation order is preserved.
	SaveArchive(ctx context.Context, a *archive.Archive) error

	// GetArchive returns the archive with the given slug, or nil if not found.
	GetArchive(ctx context.Context, id string) (*archive.Archive, error)

	// ListArchives returns summaries, most recently updated first.
	ListArchives(ctx context.Context) ([]ArchiveSummary, error)

	DeleteArchive(ctx context.Context, id string) error

	// DeleteMember removes a member and every relation touching it.
	DeleteMember(ctx context.Context, archiveID, memberID string) error

	Stats(ctx context.Context) (*StoreStats, error)
}
