// Package postgres implements the search index on PostgreSQL full-text search
// (ts_rank over an english tsvector) and pg_trgm similarity.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"resumechat/internal/domain"
	"resumechat/internal/index/postgres/migrations"
	"resumechat/internal/logger"
)

const (
	rankSQL = "SELECT id, section, content, COALESCE(metadata->>'type', 'line') AS type, " +
		"ts_rank(tsv, plainto_tsquery('english', $1))::float8 AS score " +
		"FROM resume_chunks WHERE tsv @@ plainto_tsquery('english', $1) " +
		"ORDER BY score DESC, id ASC LIMIT $2"

	similaritySQL = "SELECT id, section, content, COALESCE(metadata->>'type', 'line') AS type, " +
		"similarity(content, $1)::float8 AS score " +
		"FROM resume_chunks WHERE similarity(content, $1) > 0 " +
		"ORDER BY score DESC, id ASC LIMIT $2"

	profileSQL = "SELECT profile_json::text FROM resume_profile ORDER BY id DESC LIMIT 1"

	truncateSQL      = "TRUNCATE TABLE resume_profile, resume_chunks RESTART IDENTITY"
	insertProfileSQL = "INSERT INTO resume_profile (profile_json) VALUES ($1::jsonb)"
	insertChunkSQL   = "INSERT INTO resume_chunks (section, content, metadata) VALUES ($1, $2, $3::jsonb)"
)

// DB is the minimal database interface the index depends on (pgxpool or pgxmock).
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Index is a PostgreSQL-backed search index.
type Index struct {
	db   DB
	pool *pgxpool.Pool
}

// New wraps an existing connection. Close does not close db.
func New(db DB) *Index {
	return &Index{db: db}
}

// Open connects to dsn, verifies the connection, and applies the schema.
func Open(ctx context.Context, dsn string) (*Index, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres: dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: new pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	idx := &Index{db: pool, pool: pool}
	if err := idx.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.FromContext(ctx).Info("Postgres index ready")
	return idx, nil
}

// Migrate applies every embedded *.up.sql file in name order. The schema is idempotent.
func (s *Index) Migrate(ctx context.Context) error {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("postgres: reading migrations: %w", err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		content, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return fmt.Errorf("postgres: reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("postgres: executing migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *Index) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Index) RankSearch(ctx context.Context, query string, limit int) ([]domain.Row, error) {
	return s.search(ctx, rankSQL, query, limit)
}

func (s *Index) SimilaritySearch(ctx context.Context, query string, limit int) ([]domain.Row, error) {
	return s.search(ctx, similaritySQL, query, limit)
}

func (s *Index) search(ctx context.Context, sql, query string, limit int) ([]domain.Row, error) {
	rows, err := s.db.Query(ctx, sql, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: query chunks: %w", err)
	}
	defer rows.Close()
	var out []domain.Row
	for rows.Next() {
		var (
			r   domain.Row
			typ string
		)
		if err := rows.Scan(&r.ID, &r.Section, &r.Content, &typ, &r.Score); err != nil {
			return nil, fmt.Errorf("postgres: scan chunk: %w", err)
		}
		r.Type = domain.ChunkType(typ)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate chunks: %w", err)
	}
	return out, nil
}

func (s *Index) LatestProfile(ctx context.Context) ([]byte, error) {
	var doc string
	if err := s.db.QueryRow(ctx, profileSQL).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoProfile
		}
		return nil, fmt.Errorf("postgres: load profile: %w", err)
	}
	return []byte(doc), nil
}

type chunkMetadata struct {
	Source string `json:"source"`
	Type   string `json:"type"`
}

// ReplaceCorpus truncates both tables and reinserts the corpus in one transaction.
func (s *Index) ReplaceCorpus(ctx context.Context, corpus domain.Corpus) error {
	return s.withTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, truncateSQL); err != nil {
			return fmt.Errorf("postgres: truncate corpus: %w", err)
		}
		if _, err := tx.Exec(ctx, insertProfileSQL, string(corpus.Profile)); err != nil {
			return fmt.Errorf("postgres: insert profile: %w", err)
		}
		for i, c := range corpus.Chunks {
			meta, err := json.Marshal(chunkMetadata{Source: corpus.Source, Type: string(c.Type)})
			if err != nil {
				return fmt.Errorf("postgres: chunk %d metadata: %w", i, err)
			}
			if _, err := tx.Exec(ctx, insertChunkSQL, c.Section, c.Content, string(meta)); err != nil {
				return fmt.Errorf("postgres: insert chunk %d: %w", i, err)
			}
		}
		return nil
	})
}

func (s *Index) withTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				logger.FromContext(ctx).Warn("Transaction rollback failed after panic", "error", rbErr)
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				logger.FromContext(ctx).Warn("Transaction rollback failed", "error", rbErr)
			}
		} else if cmErr := tx.Commit(ctx); cmErr != nil {
			err = fmt.Errorf("postgres: commit: %w", cmErr)
		}
	}()
	return fn(tx)
}
