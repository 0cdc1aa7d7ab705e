package cli

import (
	"fmt"

	"resumechat/internal/config"
	"resumechat/internal/domain"
	"resumechat/internal/index/memory"
	"resumechat/internal/index/postgres"
	"resumechat/internal/index/sqlite"
	"resumechat/internal/logger"
	"resumechat/internal/service"
)

// openIndex opens the configured backend.
func (a *app) openIndex() (domain.Index, error) {
	switch a.cfg.Index.Type {
	case config.IndexPostgres:
		idx, err := postgres.Open(a.ctx, a.cfg.Index.Postgres.ResolveDSN())
		if err != nil {
			return nil, err
		}
		return idx, nil
	case config.IndexSQLite:
		idx, err := sqlite.Open(a.ctx, a.cfg.Index.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return idx, nil
	case config.IndexMemory:
		return memory.NewIndex(), nil
	default:
		return nil, fmt.Errorf("unknown index type: %s", a.cfg.Index.Type)
	}
}

// prepare opens the index and, when configured, ingests the inputs into it.
// The returned report is zero when nothing was ingested.
func (a *app) prepare() (domain.Index, service.IngestReport, error) {
	idx, err := a.openIndex()
	if err != nil {
		return nil, service.IngestReport{}, err
	}
	if !a.cfg.Ingest.OnStart {
		return idx, service.IngestReport{}, nil
	}
	report, err := service.NewIngestor(idx).Ingest(a.ctx, a.cfg.Ingest.ResumePath, a.cfg.Ingest.ProfilePath)
	if err != nil {
		a.closeIndex(idx)
		return nil, service.IngestReport{}, fmt.Errorf("ingest failed: %w", err)
	}
	return idx, report, nil
}

func (a *app) chatService(idx domain.Index, rec service.Recorder) *service.ChatService {
	th := a.cfg.Retrieval.Thresholds()
	return service.NewChatService(idx, service.Options{
		Limit:      a.cfg.Retrieval.Limit,
		Thresholds: &th,
		Aliases:    a.cfg.Expander.Aliases,
		Recorder:   rec,
	})
}

func (a *app) closeIndex(idx domain.Index) {
	if err := idx.Close(); err != nil {
		logger.FromContext(a.ctx).Warn("Failed to close index", "error", err)
	}
}
