package domain

import (
	"context"
	"errors"
)

var (
	// ErrNoProfile is returned when no profile document has been ingested.
	ErrNoProfile = errors.New("no profile document ingested")
	// ErrInvalidProfile is returned when a profile document is not valid JSON.
	ErrInvalidProfile = errors.New("profile document is not valid JSON")
)

// ChunkType is the structural role of a chunk within the résumé.
type ChunkType string

const (
	ChunkBullet ChunkType = "bullet"
	ChunkHeader ChunkType = "header"
	ChunkLine   ChunkType = "line"
)

// Chunk is an addressable unit of résumé text produced by segmentation.
type Chunk struct {
	Section string
	Content string
	Type    ChunkType
}

// Method records which retrieval tier produced a hit.
type Method string

const (
	MethodExact Method = "exact"
	MethodFuzzy Method = "fuzzy"
)

// Row is a chunk as stored in a search index, with the score assigned by one query.
type Row struct {
	ID      int64
	Section string
	Content string
	Type    ChunkType
	Score   float64
}

// Hit is a scored chunk returned by one retrieval tier.
type Hit struct {
	ChunkID int64
	Section string
	Content string
	Score   float64
	Method  Method
	Type    ChunkType
}

// Citation ties one rendered answer line to the chunk it was copied from.
type Citation struct {
	ChunkID int64  `json:"chunkId"`
	Section string `json:"section"`
	Snippet string `json:"snippet"`
}

// FactMatch is the structured field a query was routed to.
type FactMatch struct {
	FieldPath string
	Label     string
}

// Answer is the terminal output of one chat request.
type Answer struct {
	CanAnswer  bool
	Text       string
	Citations  []Citation
	UsedFields []string
	DebugHits  []Hit
}

// SearchIndex exposes the two query shapes retrieval depends on.
type SearchIndex interface {
	RankSearch(ctx context.Context, query string, limit int) ([]Row, error)
	SimilaritySearch(ctx context.Context, query string, limit int) ([]Row, error)
}

// ProfileStore returns the most recent structured profile document as raw JSON.
type ProfileStore interface {
	LatestProfile(ctx context.Context) ([]byte, error)
}

// Corpus is one full generation of ingested data.
type Corpus struct {
	Source  string
	Profile []byte
	Chunks  []Chunk
}

// CorpusWriter replaces the whole corpus atomically.
type CorpusWriter interface {
	ReplaceCorpus(ctx context.Context, corpus Corpus) error
}

// Index is a storage backend implementing every capability the core needs.
type Index interface {
	SearchIndex
	ProfileStore
	CorpusWriter
	Close() error
}
