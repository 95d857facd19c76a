//go:build cgo

package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/dusk-indust/kinship/internal/archive"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// Members are nodes and every relation type has its own relationship table,
// so archives can be explored with Cypher outside this package.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
//
// Relations whose endpoints are not members of the archive cannot be
// represented as edges and are dropped on save.
type KuzuStore struct {
	mu   sync.Mutex // one connection, serialized
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given directory path. KuzuDB creates the directory itself for new databases.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	// Ensure parent directory exists (KuzuDB creates the leaf directory).
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// relTables maps stored relation types to their relationship tables.
var relTables = map[archive.RelationType]string{
	archive.RelationParent:  "PARENT_OF",
	archive.RelationSpouse:  "SPOUSE_OF",
	archive.RelationSibling: "SIBLING_OF",
}

// relTableOrder fixes iteration order over relTables.
var relTableOrder = []archive.RelationType{
	archive.RelationParent,
	archive.RelationSpouse,
	archive.RelationSibling,
}

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Order matters: node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Archive(
		id STRING,
		name STRING,
		hero_image STRING,
		root_member_id STRING,
		created_at INT64,
		updated_at INT64,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Member(
		key STRING,
		id STRING,
		archive_id STRING,
		ord INT64,
		name STRING,
		gender STRING,
		data STRING,
		PRIMARY KEY(key)
	)`,
	`CREATE REL TABLE IF NOT EXISTS PARENT_OF(FROM Member TO Member, id STRING, ord INT64, created_at INT64)`,
	`CREATE REL TABLE IF NOT EXISTS SPOUSE_OF(FROM Member TO Member, id STRING, ord INT64, created_at INT64)`,
	`CREATE REL TABLE IF NOT EXISTS SIBLING_OF(FROM Member TO Member, id STRING, ord INT64, created_at INT64)`,
}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// SaveArchive replaces the stored archive node, its members and their edges
// inside one transaction.
func (s *KuzuStore) SaveArchive(_ context.Context, a *archive.Archive) error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("kuzu: save archive: id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inTx(func() error {
		if err := s.deleteArchiveLocked(a.ID); err != nil {
			return err
		}
		if err := s.exec(
			`CREATE (a:Archive {
				id: $id, name: $name, hero_image: $hero, root_member_id: $root,
				created_at: $created, updated_at: $updated
			})`,
			map[string]any{
				"id":      a.ID,
				"name":    a.Name,
				"hero":    a.HeroImage,
				"root":    a.RootMemberID,
				"created": toMillis(a.CreatedAt),
				"updated": toMillis(a.UpdatedAt),
			},
		); err != nil {
			return err
		}

		for i, m := range a.Members {
			data, err := json.Marshal(m)
			if err != nil {
				return fmt.Errorf("kuzu: encode member %s: %w", m.ID, err)
			}
			if err := s.exec(
				`CREATE (m:Member {
					key: $key, id: $id, archive_id: $archive, ord: $ord,
					name: $name, gender: $gender, data: $data
				})`,
				map[string]any{
					"key":     memberKey(a.ID, m.ID),
					"id":      m.ID,
					"archive": a.ID,
					"ord":     int64(i),
					"name":    m.Name,
					"gender":  string(m.Gender),
					"data":    string(data),
				},
			); err != nil {
				return err
			}
		}

		for i, r := range a.Relations {
			table, ok := relTables[r.Type]
			if !ok {
				return fmt.Errorf("kuzu: unsupported relation type: %s", r.Type)
			}
			cypher := fmt.Sprintf(
				`MATCH (a:Member {key: $src}), (b:Member {key: $dst})
				 CREATE (a)-[:%s {id: $id, ord: $ord, created_at: $created}]->(b)`, table)
			if err := s.exec(cypher, map[string]any{
				"src":     memberKey(a.ID, r.FromMemberID),
				"dst":     memberKey(a.ID, r.ToMemberID),
				"id":      r.ID,
				"ord":     int64(i),
				"created": toMillis(r.CreatedAt),
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteArchive removes the archive node and every member node with its edges.
func (s *KuzuStore) DeleteArchive(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.query("MATCH (a:Archive {id: $id}) RETURN a.id", map[string]any{"id": id})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("kuzu: delete archive %s: %w", id, ErrNotFound)
	}
	return s.inTx(func() error { return s.deleteArchiveLocked(id) })
}

func (s *KuzuStore) deleteArchiveLocked(id string) error {
	if err := s.exec(
		"MATCH (m:Member) WHERE m.archive_id = $id DETACH DELETE m",
		map[string]any{"id": id},
	); err != nil {
		return err
	}
	return s.exec("MATCH (a:Archive {id: $id}) DELETE a", map[string]any{"id": id})
}

// DeleteMember detaches and deletes a member node and clears the archive
// root when it pointed at the member.
func (s *KuzuStore) DeleteMember(_ context.Context, archiveID, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memberKey(archiveID, memberID)
	rows, err := s.query("MATCH (m:Member {key: $key}) RETURN m.id", map[string]any{"key": key})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("kuzu: delete member %s: %w", memberID, ErrNotFound)
	}
	return s.inTx(func() error {
		if err := s.exec("MATCH (m:Member {key: $key}) DETACH DELETE m", map[string]any{"key": key}); err != nil {
			return err
		}
		return s.exec(
			`MATCH (a:Archive {id: $id}) WHERE a.root_member_id = $member
			 SET a.root_member_id = ''`,
			map[string]any{"id": archiveID, "member": memberID},
		)
	})
}

// ---------- Read operations ----------

// GetArchive rebuilds an archive from its node, member nodes and edges, or
// returns nil if not found.
func (s *KuzuStore) GetArchive(_ context.Context, id string) (*archive.Archive, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.query(
		`MATCH (a:Archive {id: $id})
		 RETURN a.id, a.name, a.hero_image, a.root_member_id, a.created_at, a.updated_at`,
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	r := rows[0]
	a := &archive.Archive{
		ID:           toString(r[0]),
		Name:         toString(r[1]),
		HeroImage:    toString(r[2]),
		RootMemberID: toString(r[3]),
		CreatedAt:    fromMillis(toInt64(r[4])),
		UpdatedAt:    fromMillis(toInt64(r[5])),
		Members:      []archive.Member{},
		Relations:    []archive.Relation{},
	}

	memberRows, err := s.query(
		"MATCH (m:Member) WHERE m.archive_id = $id RETURN m.data ORDER BY m.ord",
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	for _, mr := range memberRows {
		var m archive.Member
		if err := json.Unmarshal([]byte(toString(mr[0])), &m); err != nil {
			return nil, fmt.Errorf("kuzu: decode member: %w", err)
		}
		a.Members = append(a.Members, m)
	}

	type orderedRelation struct {
		ord int64
		rel archive.Relation
	}
	var rels []orderedRelation
	for _, typ := range relTableOrder {
		cypher := fmt.Sprintf(
			`MATCH (a:Member)-[r:%s]->(b:Member) WHERE a.archive_id = $id
			 RETURN r.id, a.id, b.id, r.ord, r.created_at`, relTables[typ])
		relRows, err := s.query(cypher, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		for _, rr := range relRows {
			rels = append(rels, orderedRelation{
				ord: toInt64(rr[3]),
				rel: archive.Relation{
					ID:           toString(rr[0]),
					FromMemberID: toString(rr[1]),
					ToMemberID:   toString(rr[2]),
					Type:         typ,
					CreatedAt:    fromMillis(toInt64(rr[4])),
				},
			})
		}
	}
	sort.Slice(rels, func(i, j int) bool { return rels[i].ord < rels[j].ord })
	for _, o := range rels {
		a.Relations = append(a.Relations, o.rel)
	}
	return a, nil
}

// ListArchives returns summaries, most recently updated first.
func (s *KuzuStore) ListArchives(_ context.Context) ([]ArchiveSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.query("MATCH (a:Archive) RETURN a.id, a.name, a.updated_at", nil)
	if err != nil {
		return nil, err
	}
	out := make([]ArchiveSummary, 0, len(rows))
	for _, r := range rows {
		id := toString(r[0])
		members, err := s.count(
			"MATCH (m:Member) WHERE m.archive_id = $id RETURN count(m)",
			map[string]any{"id": id},
		)
		if err != nil {
			return nil, err
		}
		relations := 0
		for _, typ := range relTableOrder {
			n, err := s.count(
				fmt.Sprintf("MATCH (a:Member)-[r:%s]->(:Member) WHERE a.archive_id = $id RETURN count(r)", relTables[typ]),
				map[string]any{"id": id},
			)
			if err != nil {
				return nil, err
			}
			relations += n
		}
		out = append(out, ArchiveSummary{
			ID:            id,
			Name:          toString(r[1]),
			MemberCount:   members,
			RelationCount: relations,
			UpdatedAt:     fromMillis(toInt64(r[2])),
		})
	}
	sortSummaries(out)
	return out, nil
}

// ---------- Stats ----------

// Stats returns counts of archive and member nodes and all relationship edges.
func (s *KuzuStore) Stats(_ context.Context) (*StoreStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	archives, err := s.count("MATCH (a:Archive) RETURN count(a)", nil)
	if err != nil {
		return nil, err
	}
	members, err := s.count("MATCH (m:Member) RETURN count(m)", nil)
	if err != nil {
		return nil, err
	}
	relations := 0
	for _, typ := range relTableOrder {
		// Table name is a fixed internal constant, not user input.
		n, err := s.count(fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r)", relTables[typ]), nil)
		if err != nil {
			return nil, err
		}
		relations += n
	}
	return &StoreStats{ArchiveCount: archives, MemberCount: members, RelationCount: relations}, nil
}

// ---------- Internal helpers ----------

// inTx runs fn between BEGIN TRANSACTION and COMMIT, rolling back on error.
func (s *KuzuStore) inTx(fn func() error) error {
	if err := s.exec("BEGIN TRANSACTION", nil); err != nil {
		return err
	}
	if err := fn(); err != nil {
		_ = s.exec("ROLLBACK", nil)
		return err
	}
	return s.exec("COMMIT", nil)
}

// exec runs a Cypher statement that produces no result rows. Statements
// with parameters are prepared first.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	if len(params) == 0 {
		res, err := s.conn.Query(cypher)
		if err != nil {
			return fmt.Errorf("kuzu: query: %w", err)
		}
		res.Close()
		return nil
	}
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// count runs a single-value count query.
func (s *KuzuStore) count(cypher string, params map[string]any) (int, error) {
	rows, err := s.query(cypher, params)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return int(toInt64(rows[0][0])), nil
}

// memberKey scopes member IDs to their archive: "archiveID/memberID".
func memberKey(archiveID, memberID string) string {
	return archiveID + "/" + memberID
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case uint64:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
