// Package sqlite implements the search index on an SQLite FTS5 table.
// Rank search uses bm25 over a porter-stemmed index; similarity search
// scores every chunk with trigram similarity.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"resumechat/internal/domain"
	"resumechat/internal/index/sqlite/migrations"
	"resumechat/internal/logger"
	"resumechat/internal/textsim"
)

const (
	rankSQL = `SELECT rowid, section, content, type, bm25(resume_chunks_fts) AS rank_score
		FROM resume_chunks_fts WHERE resume_chunks_fts MATCH ?
		ORDER BY rank_score ASC, rowid ASC LIMIT ?`
	allChunksSQL  = `SELECT rowid, section, content, type FROM resume_chunks_fts ORDER BY rowid`
	profileSQL    = `SELECT profile_json FROM resume_profile ORDER BY id DESC LIMIT 1`
	insertChunk   = `INSERT INTO resume_chunks_fts (rowid, section, content, type, source) VALUES (?, ?, ?, ?, ?)`
	insertProfile = `INSERT INTO resume_profile (profile_json) VALUES (?)`
)

// Index is an SQLite-backed search index.
type Index struct {
	db   *sql.DB
	path string
}

// Open creates or opens the index database at path, defaulting to ~/.resumechat/data/index.db.
func Open(ctx context.Context, path string) (*Index, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".resumechat", "data", "index.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Index{db: db, path: path}
	if err := s.migrate(ctx, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	logger.FromContext(ctx).Debug("SQLite index ready", "path", path)
	return s, nil
}

func (s *Index) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *Index) Path() string { return s.path }

func (s *Index) migrate(ctx context.Context, fsys embed.FS) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}
	var current int
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var upFiles []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			upFiles = append(upFiles, e.Name())
		}
	}
	sort.Strings(upFiles)
	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// matchExpr turns free text into an FTS5 query: quoted non-stopword terms joined by OR.
func matchExpr(query string) string {
	terms := textsim.Terms(query)
	if len(terms) == 0 {
		return ""
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " OR ")
}

func (s *Index) RankSearch(ctx context.Context, query string, limit int) ([]domain.Row, error) {
	expr := matchExpr(query)
	if expr == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, rankSQL, expr, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: rank search: %w", err)
	}
	defer rows.Close()
	var out []domain.Row
	for rows.Next() {
		var (
			r    domain.Row
			typ  string
			rank float64
		)
		if err := rows.Scan(&r.ID, &r.Section, &r.Content, &typ, &rank); err != nil {
			return nil, fmt.Errorf("sqlite: scan chunk: %w", err)
		}
		r.Type = domain.ChunkType(typ)
		// bm25 is lower-is-better and negative
		r.Score = -rank
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Index) SimilaritySearch(ctx context.Context, query string, limit int) ([]domain.Row, error) {
	q := textsim.Trigrams(query)
	if len(q) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, allChunksSQL)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list chunks: %w", err)
	}
	defer rows.Close()
	var out []domain.Row
	for rows.Next() {
		var (
			r   domain.Row
			typ string
		)
		if err := rows.Scan(&r.ID, &r.Section, &r.Content, &typ); err != nil {
			return nil, fmt.Errorf("sqlite: scan chunk: %w", err)
		}
		r.Type = domain.ChunkType(typ)
		if r.Score = textsim.SetSimilarity(q, textsim.Trigrams(r.Content)); r.Score > 0 {
			out = append(out, r)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Index) LatestProfile(ctx context.Context) ([]byte, error) {
	var doc string
	if err := s.db.QueryRowContext(ctx, profileSQL).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoProfile
		}
		return nil, fmt.Errorf("sqlite: load profile: %w", err)
	}
	return []byte(doc), nil
}

// ReplaceCorpus deletes the previous generation and inserts corpus in one transaction.
func (s *Index) ReplaceCorpus(ctx context.Context, corpus domain.Corpus) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for _, stmt := range []string{"DELETE FROM resume_profile", "DELETE FROM resume_chunks_fts"} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: clear corpus: %w", err)
		}
	}
	if _, err = tx.ExecContext(ctx, insertProfile, string(corpus.Profile)); err != nil {
		return fmt.Errorf("sqlite: insert profile: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertChunk)
	if err != nil {
		return fmt.Errorf("sqlite: prepare chunk insert: %w", err)
	}
	defer stmt.Close()
	for i, c := range corpus.Chunks {
		if _, err = stmt.ExecContext(ctx, int64(i+1), c.Section, c.Content, string(c.Type), corpus.Source); err != nil {
			return fmt.Errorf("sqlite: insert chunk %d: %w", i, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}
