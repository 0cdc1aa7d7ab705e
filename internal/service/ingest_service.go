package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"resumechat/internal/chunker"
	"resumechat/internal/domain"
	"resumechat/internal/logger"
	"resumechat/internal/profile"
)

// IngestReport summarizes one corpus generation.
type IngestReport struct {
	Source string
	Chunks []domain.Chunk
	ByType map[domain.ChunkType]int
}

// Total returns the number of chunks written.
func (r IngestReport) Total() int { return len(r.Chunks) }

// Ingestor builds a corpus from a résumé text file and a profile JSON file
// and replaces the indexed corpus with it.
type Ingestor struct {
	writer domain.CorpusWriter
}

func NewIngestor(writer domain.CorpusWriter) *Ingestor {
	return &Ingestor{writer: writer}
}

// LoadCorpus reads and segments both inputs without writing anything.
func LoadCorpus(resumePath, profilePath string) (domain.Corpus, error) {
	text, err := os.ReadFile(resumePath)
	if err != nil {
		return domain.Corpus{}, fmt.Errorf("reading resume: %w", err)
	}
	doc, err := os.ReadFile(profilePath)
	if err != nil {
		return domain.Corpus{}, fmt.Errorf("reading profile: %w", err)
	}
	if _, err := profile.Parse(doc); err != nil {
		return domain.Corpus{}, fmt.Errorf("%s: %w", profilePath, err)
	}
	return domain.Corpus{
		Source:  filepath.Base(resumePath),
		Profile: doc,
		Chunks:  chunker.Segment(string(text)),
	}, nil
}

// Ingest loads the inputs and atomically replaces the corpus.
func (i *Ingestor) Ingest(ctx context.Context, resumePath, profilePath string) (IngestReport, error) {
	corpus, err := LoadCorpus(resumePath, profilePath)
	if err != nil {
		return IngestReport{}, err
	}
	if err := i.writer.ReplaceCorpus(ctx, corpus); err != nil {
		return IngestReport{}, fmt.Errorf("replacing corpus: %w", err)
	}
	report := IngestReport{
		Source: corpus.Source,
		Chunks: corpus.Chunks,
		ByType: make(map[domain.ChunkType]int),
	}
	for _, c := range corpus.Chunks {
		report.ByType[c.Type]++
	}
	logger.FromContext(ctx).Info("Ingested resume",
		"source", report.Source,
		"chunks", report.Total(),
		"bullets", report.ByType[domain.ChunkBullet],
		"headers", report.ByType[domain.ChunkHeader],
		"lines", report.ByType[domain.ChunkLine],
	)
	return report, nil
}
