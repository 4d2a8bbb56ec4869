package pubsite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/pubsite/content"
)

// Store wraps a SQLite database holding the validated posts and authors of
// the last content load.
type Store struct {
	db *sql.DB
}

// Tag is a post tag with its URL slug.
type Tag struct {
	Slug string
	Name string
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers continue while a reload rewrites the tables; writers
	// wait on busy_timeout instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// schemaVersion is bumped whenever a column changes encoding. The tables
// only hold a snapshot of the content directory, so older ones are dropped
// and refilled on the next load.
const schemaVersion = 2

func (s *Store) ensureSchema() error {
	var version int
	if err := s.db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return err
	}
	if version != schemaVersion {
		if _, err := s.db.Exec(`DROP TABLE IF EXISTS posts; DROP TABLE IF EXISTS authors;`); err != nil {
			return err
		}
	}
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    slug TEXT PRIMARY KEY,
    id TEXT NOT NULL,
    file_path TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    author TEXT NOT NULL,
    category TEXT NOT NULL,
    pub_datetime INTEGER NOT NULL,
    mod_datetime INTEGER,
    sort_time INTEGER NOT NULL,
    featured INTEGER NOT NULL DEFAULT 0,
    draft INTEGER NOT NULL DEFAULT 0,
    tags TEXT NOT NULL,
    tag_slugs TEXT NOT NULL,
    og_image_kind INTEGER NOT NULL DEFAULT 0,
    og_image_src TEXT NOT NULL DEFAULT '',
    og_image_width INTEGER NOT NULL DEFAULT 0,
    og_image_height INTEGER NOT NULL DEFAULT 0,
    og_image_format TEXT NOT NULL DEFAULT '',
    canonical_url TEXT NOT NULL DEFAULT '',
    edit_post TEXT NOT NULL DEFAULT '',
    body TEXT NOT NULL,
    checksum TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS posts_sort ON posts (sort_time DESC);
CREATE TABLE IF NOT EXISTS authors (
    slug TEXT PRIMARY KEY,
    id TEXT NOT NULL,
    name TEXT NOT NULL,
    avatar TEXT NOT NULL,
    occupation TEXT NOT NULL,
    company TEXT NOT NULL,
    email TEXT NOT NULL,
    socials TEXT NOT NULL
);
PRAGMA user_version = ` + fmt.Sprint(schemaVersion) + `;
`)
	return err
}

// StoredPost is a post plus the checksum of its source document.
type StoredPost struct {
	content.BlogPost
	Checksum string
}

// Replace swaps the whole published set for posts and authors in a single
// transaction.
func (s *Store) Replace(ctx context.Context, posts []StoredPost, authors []content.Author) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM authors`); err != nil {
		return err
	}
	for _, p := range posts {
		if err := insertPost(ctx, tx, p); err != nil {
			return fmt.Errorf("insert post %s: %w", p.ID, err)
		}
	}
	for _, a := range authors {
		socials, err := json.Marshal(a.Socials)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO authors (slug, id, name, avatar, occupation, company, email, socials) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			a.Slug, a.ID, a.Name, a.Avatar, a.Occupation, a.Company, a.Email, string(socials)); err != nil {
			return fmt.Errorf("insert author %s: %w", a.ID, err)
		}
	}
	return tx.Commit()
}

func insertPost(ctx context.Context, tx *sql.Tx, p StoredPost) error {
	var mod sql.NullInt64
	if p.ModDatetime != nil {
		mod = sql.NullInt64{Int64: p.ModDatetime.UnixNano(), Valid: true}
	}
	var og content.OGImage
	if p.OGImage != nil {
		og = *p.OGImage
	}
	editPost := ""
	if p.EditPost != nil {
		b, err := json.Marshal(p.EditPost)
		if err != nil {
			return err
		}
		editPost = string(b)
	}
	tags, err := json.Marshal(nonNil(p.Tags))
	if err != nil {
		return err
	}
	tagSlugs := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		tagSlugs[i] = content.Slugify(t)
	}
	slugs, err := json.Marshal(tagSlugs)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO posts (
    slug, id, file_path, title, description, author, category, pub_datetime, mod_datetime, sort_time,
    featured, draft, tags, tag_slugs, og_image_kind, og_image_src, og_image_width, og_image_height,
    og_image_format, canonical_url, edit_post, body, checksum
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Slug, p.ID, p.FilePath, p.Title, p.Description, p.Author, string(p.Category),
		p.PubDatetime.UnixNano(), mod, p.SortTime().UnixNano(),
		boolInt(p.Featured), boolInt(p.Draft), string(tags), string(slugs),
		int(og.Kind), og.Src(), og.Asset.Width, og.Asset.Height, og.Asset.Format,
		p.CanonicalURL, editPost, p.Body, p.Checksum)
	return err
}

const postColumns = `slug, id, file_path, title, description, author, category, pub_datetime, mod_datetime,
    featured, draft, tags, og_image_kind, og_image_src, og_image_width, og_image_height, og_image_format,
    canonical_url, edit_post, body, checksum`

// publishedClause selects non-draft posts dated at or before the cutoff.
const publishedClause = `draft = 0 AND pub_datetime <= ?`

// ListPosts returns posts published at cutoff ordered newest first. If tag
// is non-empty, results are filtered to posts carrying that tag.
func (s *Store) ListPosts(tag string, cutoff time.Time) ([]StoredPost, error) {
	if tag == "" {
		return s.queryPosts(`SELECT `+postColumns+` FROM posts WHERE `+publishedClause+` ORDER BY sort_time DESC, slug`, cutoff.UnixNano())
	}
	return s.queryPosts(`SELECT `+postColumns+` FROM posts WHERE `+publishedClause+` AND EXISTS (SELECT 1 FROM json_each(tag_slugs) WHERE value = ?) ORDER BY sort_time DESC, slug`,
		cutoff.UnixNano(), content.Slugify(tag))
}

// ListPostsByAuthor returns published posts whose author is name.
func (s *Store) ListPostsByAuthor(name string, cutoff time.Time) ([]StoredPost, error) {
	return s.queryPosts(`SELECT `+postColumns+` FROM posts WHERE `+publishedClause+` AND author = ? ORDER BY sort_time DESC, slug`,
		cutoff.UnixNano(), name)
}

// ListAllPosts returns every valid post, drafts and scheduled ones included.
func (s *Store) ListAllPosts() ([]StoredPost, error) {
	return s.queryPosts(`SELECT ` + postColumns + ` FROM posts ORDER BY sort_time DESC, slug`)
}

// GetPost returns a single post published at cutoff.
func (s *Store) GetPost(slug string, cutoff time.Time) (StoredPost, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ? AND `+publishedClause, slug, cutoff.UnixNano())
	return scanPost(row)
}

// GetPostAny returns a post by slug regardless of published status.
func (s *Store) GetPostAny(slug string) (StoredPost, error) {
	return scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug))
}

// ListTags returns the distinct tags of posts published at cutoff, sorted
// by slug. The first spelling seen for a slug is kept as its name.
func (s *Store) ListTags(cutoff time.Time) ([]Tag, error) {
	rows, err := s.db.Query(`SELECT tags FROM posts WHERE `+publishedClause+` ORDER BY sort_time DESC, slug`, cutoff.UnixNano())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]string)
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		var names []string
		if err := json.Unmarshal([]byte(tags), &names); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
		for _, t := range names {
			slug := content.Slugify(t)
			if _, ok := seen[slug]; !ok && slug != "" {
				seen[slug] = t
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result := make([]Tag, 0, len(seen))
	for slug, name := range seen {
		result = append(result, Tag{Slug: slug, Name: name})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Slug < result[j].Slug })
	return result, nil
}

// ListAuthors returns all authors ordered by name.
func (s *Store) ListAuthors() ([]content.Author, error) {
	rows, err := s.db.Query(`SELECT slug, id, name, avatar, occupation, company, email, socials FROM authors ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []content.Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// GetAuthor returns one author by slug.
func (s *Store) GetAuthor(slug string) (content.Author, error) {
	return scanAuthor(s.db.QueryRow(`SELECT slug, id, name, avatar, occupation, company, email, socials FROM authors WHERE slug = ?`, slug))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) queryPosts(query string, args ...any) ([]StoredPost, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []StoredPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func scanPost(row rowScanner) (StoredPost, error) {
	var (
		p                 StoredPost
		category, tags    string
		editPost          string
		pub               int64
		mod               sql.NullInt64
		featured, draft   int
		ogKind            int
		ogSrc, ogFormat   string
		ogWidth, ogHeight int
	)
	err := row.Scan(&p.Slug, &p.ID, &p.FilePath, &p.Title, &p.Description, &p.Author, &category, &pub, &mod,
		&featured, &draft, &tags, &ogKind, &ogSrc, &ogWidth, &ogHeight, &ogFormat,
		&p.CanonicalURL, &editPost, &p.Body, &p.Checksum)
	if err != nil {
		return StoredPost{}, err
	}
	p.Category = content.Category(category)
	p.PubDatetime = time.Unix(0, pub).UTC()
	if mod.Valid {
		t := time.Unix(0, mod.Int64).UTC()
		p.ModDatetime = &t
	}
	p.Featured = featured == 1
	p.Draft = draft == 1
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return StoredPost{}, fmt.Errorf("decode tags of %s: %w", p.Slug, err)
	}
	switch content.OGImageKind(ogKind) {
	case content.OGImageAsset:
		p.OGImage = &content.OGImage{Kind: content.OGImageAsset, Asset: content.ImageAsset{
			Src: ogSrc, Width: ogWidth, Height: ogHeight, Format: ogFormat,
		}}
	case content.OGImageURL:
		p.OGImage = &content.OGImage{Kind: content.OGImageURL, URL: ogSrc}
	}
	if editPost != "" {
		p.EditPost = &content.EditPostOverride{}
		if err := json.Unmarshal([]byte(editPost), p.EditPost); err != nil {
			return StoredPost{}, fmt.Errorf("decode edit_post of %s: %w", p.Slug, err)
		}
	}
	return p, nil
}

func scanAuthor(row rowScanner) (content.Author, error) {
	var a content.Author
	var socials string
	if err := row.Scan(&a.Slug, &a.ID, &a.Name, &a.Avatar, &a.Occupation, &a.Company, &a.Email, &socials); err != nil {
		return content.Author{}, err
	}
	if err := json.Unmarshal([]byte(socials), &a.Socials); err != nil {
		return content.Author{}, fmt.Errorf("decode socials of %s: %w", a.Slug, err)
	}
	return a, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
