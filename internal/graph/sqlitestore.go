package graph

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dusk-indust/kinship/internal/archive"
)

// SQLiteStore implements Store on a single SQLite file. The table layout
// mirrors the hosted families/members schema plus a relations table.
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check that SQLiteStore satisfies Store.
var _ Store = (*SQLiteStore)(nil)

// OpenSQLiteStore opens (creating if needed) the database at path.
// InitSchema must still be called before use.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}
	clean := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: create parent directory: %w", err)
	}
	dsn := clean + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// One writer at a time; SaveArchive relies on transactions not interleaving.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ---------- Schema setup ----------

// sqliteDDL is executed in order by InitSchema.
var sqliteDDL = []string{
	`CREATE TABLE IF NOT EXISTS families (
		slug           TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		hero_image     TEXT NOT NULL DEFAULT '',
		root_member_id TEXT NOT NULL DEFAULT '',
		created_at     INTEGER NOT NULL,
		updated_at     INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS members (
		family_slug  TEXT NOT NULL REFERENCES families(slug) ON DELETE CASCADE,
		id           TEXT NOT NULL,
		order_index  INTEGER NOT NULL,
		name         TEXT NOT NULL,
		gender       TEXT NOT NULL DEFAULT '',
		relationship TEXT NOT NULL DEFAULT '',
		display_role TEXT NOT NULL DEFAULT '',
		generation   INTEGER NOT NULL DEFAULT 0,
		birth_date   TEXT NOT NULL DEFAULT '',
		death_date   TEXT NOT NULL DEFAULT '',
		biography    TEXT NOT NULL DEFAULT '',
		photo_url    TEXT NOT NULL DEFAULT '',
		life_path    TEXT NOT NULL DEFAULT '[]',
		photos       TEXT NOT NULL DEFAULT '[]',
		videos       TEXT NOT NULL DEFAULT '[]',
		quotes       TEXT NOT NULL DEFAULT '[]',
		PRIMARY KEY (family_slug, id)
	)`,
	`CREATE TABLE IF NOT EXISTS relations (
		family_slug    TEXT NOT NULL REFERENCES families(slug) ON DELETE CASCADE,
		id             TEXT NOT NULL,
		order_index    INTEGER NOT NULL,
		from_member_id TEXT NOT NULL,
		to_member_id   TEXT NOT NULL,
		relation_type  TEXT NOT NULL,
		created_at     INTEGER NOT NULL,
		PRIMARY KEY (family_slug, id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_families_updated ON families(updated_at DESC)`,
}

// InitSchema creates all tables if they do not exist.
func (s *SQLiteStore) InitSchema(ctx context.Context) error {
	for _, stmt := range sqliteDDL {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: init schema: %w", err)
		}
	}
	return nil
}

// ---------- Write operations ----------

// SaveArchive replaces the stored snapshot of a inside one transaction.
func (s *SQLiteStore) SaveArchive(ctx context.Context, a *archive.Archive) (err error) {
	if a == nil || strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("sqlite: save archive: id is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO families (slug, name, hero_image, root_member_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(slug) DO UPDATE SET
		   name = excluded.name,
		   hero_image = excluded.hero_image,
		   root_member_id = excluded.root_member_id,
		   updated_at = excluded.updated_at`,
		a.ID, a.Name, a.HeroImage, a.RootMemberID, toMillis(a.CreatedAt), toMillis(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: upsert family: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM members WHERE family_slug = ?`, a.ID); err != nil {
		return fmt.Errorf("sqlite: clear members: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM relations WHERE family_slug = ?`, a.ID); err != nil {
		return fmt.Errorf("sqlite: clear relations: %w", err)
	}

	for i, m := range a.Members {
		media, mErr := encodeMedia(m)
		if mErr != nil {
			return fmt.Errorf("sqlite: encode member %s: %w", m.ID, mErr)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO members (
			   family_slug, id, order_index, name, gender, relationship, display_role,
			   generation, birth_date, death_date, biography, photo_url,
			   life_path, photos, videos, quotes
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, m.ID, i, m.Name, string(m.Gender), m.Relationship, m.DisplayRole,
			m.Generation, m.BirthDate, m.DeathDate, m.Biography, m.PhotoURL,
			media[0], media[1], media[2], media[3],
		)
		if err != nil {
			return fmt.Errorf("sqlite: insert member %s: %w", m.ID, err)
		}
	}

	for i, r := range a.Relations {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO relations (
			   family_slug, id, order_index, from_member_id, to_member_id, relation_type, created_at
			 ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, r.ID, i, r.FromMemberID, r.ToMemberID, string(r.Type), toMillis(r.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("sqlite: insert relation %s: %w", r.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// DeleteArchive removes a family and, by cascade, its members and relations.
func (s *SQLiteStore) DeleteArchive(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM families WHERE slug = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete archive: %w", err)
	}
	return expectAffected(res, "sqlite: delete archive "+id)
}

// DeleteMember removes a member and every relation touching it. The family
// root is cleared when it pointed at the member.
func (s *SQLiteStore) DeleteMember(ctx context.Context, archiveID, memberID string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM members WHERE family_slug = ? AND id = ?`, archiveID, memberID)
	if err != nil {
		return fmt.Errorf("sqlite: delete member: %w", err)
	}
	if err = expectAffected(res, "sqlite: delete member "+memberID); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`DELETE FROM relations WHERE family_slug = ? AND (from_member_id = ? OR to_member_id = ?)`,
		archiveID, memberID, memberID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: delete member relations: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE families SET root_member_id = '', updated_at = ? WHERE slug = ? AND root_member_id = ?`,
		toMillis(time.Now()), archiveID, memberID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: clear root: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// ---------- Read operations ----------

// GetArchive loads a family with its members and relations in stored order,
// or returns nil if not found.
func (s *SQLiteStore) GetArchive(ctx context.Context, id string) (*archive.Archive, error) {
	var (
		a                archive.Archive
		created, updated int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT slug, name, hero_image, root_member_id, created_at, updated_at
		 FROM families WHERE slug = ?`, id,
	).Scan(&a.ID, &a.Name, &a.HeroImage, &a.RootMemberID, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get archive: %w", err)
	}
	a.CreatedAt = fromMillis(created)
	a.UpdatedAt = fromMillis(updated)

	members, err := s.loadMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	relations, err := s.loadRelations(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Members = members
	a.Relations = relations
	return &a, nil
}

func (s *SQLiteStore) loadMembers(ctx context.Context, archiveID string) ([]archive.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, gender, relationship, display_role, generation, birth_date,
		        death_date, biography, photo_url, life_path, photos, videos, quotes
		 FROM members WHERE family_slug = ? ORDER BY order_index`, archiveID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query members: %w", err)
	}
	defer rows.Close()

	members := []archive.Member{}
	for rows.Next() {
		var (
			m      archive.Member
			gender string
			media  [4]string
		)
		if err := rows.Scan(&m.ID, &m.Name, &gender, &m.Relationship, &m.DisplayRole, &m.Generation,
			&m.BirthDate, &m.DeathDate, &m.Biography, &m.PhotoURL,
			&media[0], &media[1], &media[2], &media[3]); err != nil {
			return nil, fmt.Errorf("sqlite: scan member: %w", err)
		}
		m.Gender = archive.Gender(gender)
		if err := decodeMedia(&m, media); err != nil {
			return nil, fmt.Errorf("sqlite: decode member %s: %w", m.ID, err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: members: %w", err)
	}
	return members, nil
}

func (s *SQLiteStore) loadRelations(ctx context.Context, archiveID string) ([]archive.Relation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, from_member_id, to_member_id, relation_type, created_at
		 FROM relations WHERE family_slug = ? ORDER BY order_index`, archiveID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query relations: %w", err)
	}
	defer rows.Close()

	relations := []archive.Relation{}
	for rows.Next() {
		var (
			r       archive.Relation
			typ     string
			created int64
		)
		if err := rows.Scan(&r.ID, &r.FromMemberID, &r.ToMemberID, &typ, &created); err != nil {
			return nil, fmt.Errorf("sqlite: scan relation: %w", err)
		}
		r.Type = archive.RelationType(typ)
		r.CreatedAt = fromMillis(created)
		relations = append(relations, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: relations: %w", err)
	}
	return relations, nil
}

// ListArchives returns summaries, most recently updated first.
func (s *SQLiteStore) ListArchives(ctx context.Context) ([]ArchiveSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.slug, f.name, f.updated_at,
		        (SELECT count(*) FROM members m WHERE m.family_slug = f.slug),
		        (SELECT count(*) FROM relations r WHERE r.family_slug = f.slug)
		 FROM families f
		 ORDER BY f.updated_at DESC, f.slug`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list archives: %w", err)
	}
	defer rows.Close()

	out := []ArchiveSummary{}
	for rows.Next() {
		var (
			sum     ArchiveSummary
			updated int64
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &updated, &sum.MemberCount, &sum.RelationCount); err != nil {
			return nil, fmt.Errorf("sqlite: scan summary: %w", err)
		}
		sum.UpdatedAt = fromMillis(updated)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Stats counts rows in every table.
func (s *SQLiteStore) Stats(ctx context.Context) (*StoreStats, error) {
	var st StoreStats
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT count(*) FROM families),
		        (SELECT count(*) FROM members),
		        (SELECT count(*) FROM relations)`,
	).Scan(&st.ArchiveCount, &st.MemberCount, &st.RelationCount)
	if err != nil {
		return nil, fmt.Errorf("sqlite: stats: %w", err)
	}
	return &st, nil
}

// ---------- Internal helpers ----------

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.UnixMilli(v).UTC()
}

func expectAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// encodeMedia serializes the list-valued member fields as JSON columns:
// life path, photos, videos, quotes.
func encodeMedia(m archive.Member) ([4]string, error) {
	var out [4]string
	for i, v := range []any{m.LifePath, m.Photos, m.Videos, m.Quotes} {
		b, err := json.Marshal(v)
		if err != nil {
			return out, err
		}
		out[i] = string(b)
	}
	return out, nil
}

func decodeMedia(m *archive.Member, cols [4]string) error {
	targets := []any{&m.LifePath, &m.Photos, &m.Videos, &m.Quotes}
	for i, col := range cols {
		if col == "" || col == "null" {
			continue
		}
		if err := json.Unmarshal([]byte(col), targets[i]); err != nil {
			return err
		}
	}
	return nil
}
